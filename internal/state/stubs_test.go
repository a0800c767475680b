package state

import (
	"context"
	"sync/atomic"

	"github.com/MihaiMalos/elearning-client/internal/api"
	"github.com/MihaiMalos/elearning-client/internal/models"
)

// stubAuthAPI implements repository.AuthAPI with overridable funcs.
type stubAuthAPI struct {
	login       func(username, password string) (string, string, error)
	currentUser func() (models.User, error)
}

func (s *stubAuthAPI) Login(ctx context.Context, username, password string) (string, string, error) {
	return s.login(username, password)
}

func (s *stubAuthAPI) Register(ctx context.Context, req api.RegisterRequest) (models.User, error) {
	return models.User{Email: req.Email, Username: req.Username, Role: req.Role}, nil
}

func (s *stubAuthAPI) CurrentUser(ctx context.Context) (models.User, error) {
	return s.currentUser()
}

// stubCourseAPI implements repository.CourseAPI with overridable funcs;
// unset funcs return zero values. calls counts every method invocation.
type stubCourseAPI struct {
	calls atomic.Int64

	courses           func(search string) ([]models.Course, error)
	courseByID        func(courseID int) (models.Course, error)
	myEnrollments     func() ([]models.Enrollment, error)
	courseEnrollments func(courseID int) ([]models.Enrollment, error)
	enroll            func(req api.EnrollRequest) (models.Enrollment, error)
	courseMaterials   func(courseID int) ([]models.CourseMaterial, error)
	downloadMaterial  func(materialID int) ([]byte, error)
	userByID          func(userID int) (models.User, error)
}

func (s *stubCourseAPI) Courses(ctx context.Context, search string) ([]models.Course, error) {
	s.calls.Add(1)
	if s.courses != nil {
		return s.courses(search)
	}
	return nil, nil
}

func (s *stubCourseAPI) CourseByID(ctx context.Context, courseID int) (models.Course, error) {
	s.calls.Add(1)
	if s.courseByID != nil {
		return s.courseByID(courseID)
	}
	return models.Course{}, nil
}

func (s *stubCourseAPI) CreateCourse(ctx context.Context, req api.CourseRequest) (models.Course, error) {
	s.calls.Add(1)
	return models.Course{Title: req.Title, Description: req.Description}, nil
}

func (s *stubCourseAPI) UpdateCourse(ctx context.Context, courseID int, req api.CourseRequest) (models.Course, error) {
	s.calls.Add(1)
	return models.Course{ID: courseID, Title: req.Title}, nil
}

func (s *stubCourseAPI) DeleteCourse(ctx context.Context, courseID int) error {
	s.calls.Add(1)
	return nil
}

func (s *stubCourseAPI) Enroll(ctx context.Context, req api.EnrollRequest) (models.Enrollment, error) {
	s.calls.Add(1)
	if s.enroll != nil {
		return s.enroll(req)
	}
	return models.Enrollment{CourseID: req.CourseID}, nil
}

func (s *stubCourseAPI) MyEnrollments(ctx context.Context) ([]models.Enrollment, error) {
	s.calls.Add(1)
	if s.myEnrollments != nil {
		return s.myEnrollments()
	}
	return nil, nil
}

func (s *stubCourseAPI) CourseEnrollments(ctx context.Context, courseID int) ([]models.Enrollment, error) {
	s.calls.Add(1)
	if s.courseEnrollments != nil {
		return s.courseEnrollments(courseID)
	}
	return nil, nil
}

func (s *stubCourseAPI) DeleteEnrollment(ctx context.Context, enrollmentID int) error {
	s.calls.Add(1)
	return nil
}

func (s *stubCourseAPI) CourseMaterials(ctx context.Context, courseID int) ([]models.CourseMaterial, error) {
	s.calls.Add(1)
	if s.courseMaterials != nil {
		return s.courseMaterials(courseID)
	}
	return nil, nil
}

func (s *stubCourseAPI) UploadMaterials(ctx context.Context, courseID int, files []api.UploadFile) (models.UploadResult, error) {
	s.calls.Add(1)
	return models.UploadResult{TotalFiles: len(files)}, nil
}

func (s *stubCourseAPI) DeleteMaterial(ctx context.Context, materialID int) error {
	s.calls.Add(1)
	return nil
}

func (s *stubCourseAPI) DownloadMaterial(ctx context.Context, materialID int) ([]byte, error) {
	s.calls.Add(1)
	if s.downloadMaterial != nil {
		return s.downloadMaterial(materialID)
	}
	return nil, nil
}

func (s *stubCourseAPI) Users(ctx context.Context, role models.UserRole, search string) ([]models.User, error) {
	s.calls.Add(1)
	return nil, nil
}

func (s *stubCourseAPI) UserByID(ctx context.Context, userID int) (models.User, error) {
	s.calls.Add(1)
	if s.userByID != nil {
		return s.userByID(userID)
	}
	return models.User{ID: userID}, nil
}

// stubChatAPI implements repository.ChatAPI.
type stubChatAPI struct {
	send func(req api.ChatRequest) (models.ChatAnswer, error)
}

func (s *stubChatAPI) SendChatMessage(ctx context.Context, req api.ChatRequest) (models.ChatAnswer, error) {
	return s.send(req)
}
