package state

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/MihaiMalos/elearning-client/internal/api"
	"github.com/MihaiMalos/elearning-client/internal/models"
	"github.com/MihaiMalos/elearning-client/internal/repository"
)

// CourseDetailState backs one course's detail screen: the course
// record, the caller's enrollment, the material list, the participant
// roster and an inline text preview for text materials.
type CourseDetailState struct {
	repo *repository.CourseRepository

	mu              sync.RWMutex
	ctx             context.Context
	cancel          context.CancelFunc
	gen             int
	loading         bool
	errMsg          string
	course          *models.Course
	enrollment      *models.Enrollment
	enrollmentCount int
	materials       []models.CourseMaterial
	participants    []models.User
	preview         string
	failedUploads   []string
	onChange        func()
}

// NewCourseDetailState creates the holder for one course screen.
func NewCourseDetailState(repo *repository.CourseRepository) *CourseDetailState {
	ctx, cancel := context.WithCancel(context.Background())
	return &CourseDetailState{
		repo:   repo,
		ctx:    ctx,
		cancel: cancel,
	}
}

// SetOnChange registers a callback invoked after every state change.
func (s *CourseDetailState) SetOnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Close abandons in-flight loads; late results are discarded.
func (s *CourseDetailState) Close() {
	s.cancel()
}

// Load resolves the screen's route argument and fetches the course with
// its enrollment, count and materials. A non-numeric id fails locally
// without any network call. A failed material listing degrades to an
// empty list rather than blanking the already-fetched course.
func (s *CourseDetailState) Load(courseID string) {
	id, err := strconv.Atoi(strings.TrimSpace(courseID))
	if err != nil || id <= 0 {
		s.publish(func() {
			s.errMsg = "invalid course id: " + courseID
		})
		return
	}

	gen := s.begin()

	course, err := s.repo.Course(s.ctx, id)
	if err != nil {
		s.finish(gen, func() {
			s.errMsg = err.Error()
		})
		return
	}

	enrollment, enrolled, err := s.repo.EnrollmentFor(s.ctx, id)
	if err != nil {
		s.finish(gen, func() {
			s.errMsg = err.Error()
		})
		return
	}

	count, err := s.repo.EnrollmentCount(s.ctx, id)
	if err != nil {
		count = course.EnrollmentCount
	}

	materials, err := s.repo.Materials(s.ctx, id)
	if err != nil {
		materials = nil
	}

	s.finish(gen, func() {
		s.course = &course
		if enrolled {
			s.enrollment = &enrollment
		} else {
			s.enrollment = nil
		}
		s.enrollmentCount = count
		s.materials = materials
	})
}

// Enroll enrolls the caller in the loaded course and refreshes the
// enrollment view.
func (s *CourseDetailState) Enroll() {
	course, ok := s.loadedCourse()
	if !ok {
		return
	}

	gen := s.begin()
	enrollment, err := s.repo.Enroll(s.ctx, course.ID)
	if err != nil {
		s.finish(gen, func() {
			s.errMsg = err.Error()
		})
		return
	}
	count, countErr := s.repo.EnrollmentCount(s.ctx, course.ID)
	s.finish(gen, func() {
		s.enrollment = &enrollment
		if countErr == nil {
			s.enrollmentCount = count
		} else {
			s.enrollmentCount++
		}
	})
}

// Unenroll removes the caller's enrollment in the loaded course.
func (s *CourseDetailState) Unenroll() {
	s.mu.RLock()
	enrollment := s.enrollment
	s.mu.RUnlock()
	if enrollment == nil {
		return
	}

	gen := s.begin()
	if err := s.repo.Unenroll(s.ctx, enrollment.ID); err != nil {
		s.finish(gen, func() {
			s.errMsg = err.Error()
		})
		return
	}
	s.finish(gen, func() {
		s.enrollment = nil
		if s.enrollmentCount > 0 {
			s.enrollmentCount--
		}
	})
}

// LoadParticipants fetches the course roster; loaded lazily because the
// fan-out is the most expensive call on this screen.
func (s *CourseDetailState) LoadParticipants() {
	course, ok := s.loadedCourse()
	if !ok {
		return
	}

	gen := s.begin()
	users, err := s.repo.Participants(s.ctx, course)
	s.finish(gen, func() {
		if err != nil {
			s.errMsg = err.Error()
			return
		}
		s.participants = users
	})
}

// Upload sends files to the loaded course and refreshes the material
// list. Per-file rejections land in FailedUploads, not in the error.
func (s *CourseDetailState) Upload(files []api.UploadFile) {
	course, ok := s.loadedCourse()
	if !ok {
		return
	}

	gen := s.begin()
	result, err := s.repo.UploadMaterials(s.ctx, course.ID, files)
	if err != nil {
		s.finish(gen, func() {
			s.errMsg = err.Error()
		})
		return
	}
	materials, listErr := s.repo.Materials(s.ctx, course.ID)
	s.finish(gen, func() {
		s.failedUploads = result.FailedFiles
		if listErr == nil {
			s.materials = materials
		}
	})
}

// DeleteMaterial removes one material and refreshes the list.
func (s *CourseDetailState) DeleteMaterial(materialID int) {
	course, ok := s.loadedCourse()
	if !ok {
		return
	}

	gen := s.begin()
	if err := s.repo.DeleteMaterial(s.ctx, materialID); err != nil {
		s.finish(gen, func() {
			s.errMsg = err.Error()
		})
		return
	}
	materials, listErr := s.repo.Materials(s.ctx, course.ID)
	s.finish(gen, func() {
		if listErr == nil {
			s.materials = materials
		}
	})
}

// ViewMaterial loads an inline preview for text materials. Non-text
// kinds get a fixed placeholder instead of a download.
func (s *CourseDetailState) ViewMaterial(material models.CourseMaterial) {
	if material.Kind() != models.FileKindText {
		s.publish(func() {
			s.preview = "Preview is only available for text files."
		})
		return
	}

	gen := s.begin()
	content, err := s.repo.MaterialContent(s.ctx, material.ID)
	s.finish(gen, func() {
		if err != nil {
			s.errMsg = err.Error()
			return
		}
		s.preview = content
	})
}

// ClearPreview dismisses the inline preview.
func (s *CourseDetailState) ClearPreview() {
	s.publish(func() {
		s.preview = ""
	})
}

// Course returns the loaded course, if any.
func (s *CourseDetailState) Course() (models.Course, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.course == nil {
		return models.Course{}, false
	}
	return *s.course, true
}

// IsEnrolled reports whether the caller holds an enrollment in the
// loaded course.
func (s *CourseDetailState) IsEnrolled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enrollment != nil
}

// Enrollment returns the caller's enrollment, if any.
func (s *CourseDetailState) Enrollment() (models.Enrollment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.enrollment == nil {
		return models.Enrollment{}, false
	}
	return *s.enrollment, true
}

// EnrollmentCount returns the derived number of enrolled students.
func (s *CourseDetailState) EnrollmentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enrollmentCount
}

// Materials returns the loaded material list.
func (s *CourseDetailState) Materials() []models.CourseMaterial {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.CourseMaterial(nil), s.materials...)
}

// Participants returns the loaded roster.
func (s *CourseDetailState) Participants() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.User(nil), s.participants...)
}

// Preview returns the inline text preview, empty when dismissed.
func (s *CourseDetailState) Preview() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.preview
}

// FailedUploads returns the per-file rejections of the last upload.
func (s *CourseDetailState) FailedUploads() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.failedUploads...)
}

// IsLoading reports whether an operation is in flight.
func (s *CourseDetailState) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the latest failure message, empty when none.
func (s *CourseDetailState) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

func (s *CourseDetailState) loadedCourse() (models.Course, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.course == nil {
		return models.Course{}, false
	}
	return *s.course, true
}

func (s *CourseDetailState) begin() int {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.loading = true
	s.errMsg = ""
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
	return gen
}

func (s *CourseDetailState) finish(gen int, apply func()) {
	s.mu.Lock()
	if s.ctx.Err() != nil || gen != s.gen {
		s.mu.Unlock()
		return
	}
	apply()
	s.loading = false
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (s *CourseDetailState) publish(apply func()) {
	s.mu.Lock()
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	apply()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}
