package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/MihaiMalos/elearning-client/internal/api"
	"github.com/MihaiMalos/elearning-client/internal/cache"
	"github.com/MihaiMalos/elearning-client/internal/models"
	"github.com/MihaiMalos/elearning-client/internal/session"
	"github.com/MihaiMalos/elearning-client/pkg/logger"
	"go.uber.org/zap"
)

// CourseRepository adapts the course, enrollment, material and user
// endpoints and applies the cross-request derivations (enrollment
// annotation, counts, participant join) that single endpoints cannot
// answer on their own.
type CourseRepository struct {
	api       CourseAPI
	session   *session.Store
	userCache *cache.UserCache
}

// NewCourseRepository creates a course repository. The user cache may
// be nil, in which case participant lookups always hit the backend.
func NewCourseRepository(apiClient CourseAPI, sessionStore *session.Store, userCache *cache.UserCache) *CourseRepository {
	return &CourseRepository{
		api:       apiClient,
		session:   sessionStore,
		userCache: userCache,
	}
}

// ListCourses fetches the course list and annotates each entry with the
// caller's enrollment status. The annotation is recomputed wholesale
// from a fresh my-enrollments fetch on every call - one join per list
// refresh, never an incremental patch.
//
// Teachers have no enrollments, so the second fetch is skipped when the
// stored role says teacher. A failed enrollment fetch degrades to
// all-unenrolled rather than failing the whole listing.
func (r *CourseRepository) ListCourses(ctx context.Context, search string) ([]models.CourseView, error) {
	courses, err := r.api.Courses(ctx, search)
	if err != nil {
		return nil, err
	}

	enrolledIDs := map[int]bool{}
	role, hasRole := r.session.UserRole()
	if r.session.Token() != "" && (!hasRole || role != models.RoleTeacher) {
		enrollments, err := r.api.MyEnrollments(ctx)
		if err != nil {
			logger.Warn("Failed to fetch enrollments for course annotation", zap.Error(err))
		}
		for _, enrollment := range enrollments {
			enrolledIDs[enrollment.CourseID] = true
		}
	}

	views := make([]models.CourseView, 0, len(courses))
	for _, course := range courses {
		views = append(views, models.CourseView{
			Course:     course,
			IsEnrolled: enrolledIDs[course.ID],
		})
	}
	return views, nil
}

// Course fetches one course by id.
func (r *CourseRepository) Course(ctx context.Context, courseID int) (models.Course, error) {
	return r.api.CourseByID(ctx, courseID)
}

// CreateCourse creates a course owned by the calling teacher.
func (r *CourseRepository) CreateCourse(ctx context.Context, title, description string) (models.Course, error) {
	return r.api.CreateCourse(ctx, api.CourseRequest{Title: title, Description: description})
}

// UpdateCourse replaces a course's title and description.
func (r *CourseRepository) UpdateCourse(ctx context.Context, courseID int, title, description string) (models.Course, error) {
	return r.api.UpdateCourse(ctx, courseID, api.CourseRequest{Title: title, Description: description})
}

// DeleteCourse removes a course.
func (r *CourseRepository) DeleteCourse(ctx context.Context, courseID int) error {
	return r.api.DeleteCourse(ctx, courseID)
}

// Enroll enrolls the calling student in a course.
func (r *CourseRepository) Enroll(ctx context.Context, courseID int) (models.Enrollment, error) {
	return r.api.Enroll(ctx, api.EnrollRequest{CourseID: courseID})
}

// EnrollStudent enrolls a named student; used by teachers.
func (r *CourseRepository) EnrollStudent(ctx context.Context, courseID, studentID int) (models.Enrollment, error) {
	return r.api.Enroll(ctx, api.EnrollRequest{CourseID: courseID, StudentID: studentID})
}

// MyEnrollments lists the caller's enrollments.
func (r *CourseRepository) MyEnrollments(ctx context.Context) ([]models.Enrollment, error) {
	return r.api.MyEnrollments(ctx)
}

// EnrollmentFor scans the caller's enrollments for one course. The
// second return reports whether an enrollment exists.
func (r *CourseRepository) EnrollmentFor(ctx context.Context, courseID int) (models.Enrollment, bool, error) {
	enrollments, err := r.api.MyEnrollments(ctx)
	if err != nil {
		return models.Enrollment{}, false, err
	}
	for _, enrollment := range enrollments {
		if enrollment.CourseID == courseID {
			return enrollment, true, nil
		}
	}
	return models.Enrollment{}, false, nil
}

// CourseEnrollments lists all enrollments of one course.
func (r *CourseRepository) CourseEnrollments(ctx context.Context, courseID int) ([]models.Enrollment, error) {
	return r.api.CourseEnrollments(ctx, courseID)
}

// EnrollmentCount derives a course's enrollment count as the length of
// its enrollment list; there is no dedicated count endpoint, so the
// number is eventually consistent with concurrent enrollments.
func (r *CourseRepository) EnrollmentCount(ctx context.Context, courseID int) (int, error) {
	enrollments, err := r.api.CourseEnrollments(ctx, courseID)
	if err != nil {
		return 0, err
	}
	return len(enrollments), nil
}

// Unenroll deletes an enrollment.
func (r *CourseRepository) Unenroll(ctx context.Context, enrollmentID int) error {
	return r.api.DeleteEnrollment(ctx, enrollmentID)
}

// Materials lists the uploaded files of a course.
func (r *CourseRepository) Materials(ctx context.Context, courseID int) ([]models.CourseMaterial, error) {
	return r.api.CourseMaterials(ctx, courseID)
}

// UploadMaterials uploads files to a course. Per-file rejections are
// reported inside the result, not as an error.
func (r *CourseRepository) UploadMaterials(ctx context.Context, courseID int, files []api.UploadFile) (models.UploadResult, error) {
	return r.api.UploadMaterials(ctx, courseID, files)
}

// DeleteMaterial removes one uploaded file.
func (r *CourseRepository) DeleteMaterial(ctx context.Context, materialID int) error {
	return r.api.DeleteMaterial(ctx, materialID)
}

// MaterialContent downloads a material and returns its body as text.
// Only meaningful for text-kind materials; callers gate on Kind().
func (r *CourseRepository) MaterialContent(ctx context.Context, materialID int) (string, error) {
	raw, err := r.api.DownloadMaterial(ctx, materialID)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// SearchStudents searches student accounts by name/email.
func (r *CourseRepository) SearchStudents(ctx context.Context, query string) ([]models.User, error) {
	return r.api.Users(ctx, models.RoleStudent, query)
}

// User fetches one user record through the TTL cache when configured.
func (r *CourseRepository) User(ctx context.Context, userID int) (models.User, error) {
	if r.userCache != nil {
		return r.userCache.GetByID(ctx, userID)
	}
	return r.api.UserByID(ctx, userID)
}

// Participants resolves a course's people: the teacher first, then
// every enrolled student, fetched concurrently. Individual user fetches
// that fail are dropped from the result instead of failing the batch -
// the list is best-effort display data, and one missing record should
// not blank the whole screen.
func (r *CourseRepository) Participants(ctx context.Context, course models.Course) ([]models.User, error) {
	enrollments, err := r.api.CourseEnrollments(ctx, course.ID)
	if err != nil {
		return nil, err
	}

	studentIDs := make([]int, 0, len(enrollments))
	seen := map[int]bool{}
	for _, enrollment := range enrollments {
		if !seen[enrollment.StudentID] {
			seen[enrollment.StudentID] = true
			studentIDs = append(studentIDs, enrollment.StudentID)
		}
	}

	var (
		mu           sync.Mutex
		wg           sync.WaitGroup
		participants []models.User
	)

	fetch := func(userID int) {
		defer wg.Done()
		user, err := r.User(ctx, userID)
		if err != nil {
			logger.Debug("Dropping unresolvable participant",
				zap.Int("user_id", userID), zap.Error(err))
			return
		}
		mu.Lock()
		participants = append(participants, user)
		mu.Unlock()
	}

	wg.Add(1)
	go fetch(course.TeacherID)
	for _, studentID := range studentIDs {
		wg.Add(1)
		go fetch(studentID)
	}
	wg.Wait()

	// Teacher first, then students by id for a stable display order
	sort.Slice(participants, func(i, j int) bool {
		if (participants[i].ID == course.TeacherID) != (participants[j].ID == course.TeacherID) {
			return participants[i].ID == course.TeacherID
		}
		return participants[i].ID < participants[j].ID
	})

	return participants, nil
}

// ClearCaches drops cached user records, called on logout.
func (r *CourseRepository) ClearCaches() {
	if r.userCache != nil {
		r.userCache.Clear()
	}
}
