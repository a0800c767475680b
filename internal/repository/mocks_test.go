package repository

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/MihaiMalos/elearning-client/internal/api"
	"github.com/MihaiMalos/elearning-client/internal/models"
)

type mockAuthAPI struct {
	mock.Mock
}

func (m *mockAuthAPI) Login(ctx context.Context, username, password string) (string, string, error) {
	args := m.Called(ctx, username, password)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *mockAuthAPI) Register(ctx context.Context, req api.RegisterRequest) (models.User, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *mockAuthAPI) CurrentUser(ctx context.Context) (models.User, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.User), args.Error(1)
}

type mockCourseAPI struct {
	mock.Mock
}

func (m *mockCourseAPI) Courses(ctx context.Context, search string) ([]models.Course, error) {
	args := m.Called(ctx, search)
	return args.Get(0).([]models.Course), args.Error(1)
}

func (m *mockCourseAPI) CourseByID(ctx context.Context, courseID int) (models.Course, error) {
	args := m.Called(ctx, courseID)
	return args.Get(0).(models.Course), args.Error(1)
}

func (m *mockCourseAPI) CreateCourse(ctx context.Context, req api.CourseRequest) (models.Course, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(models.Course), args.Error(1)
}

func (m *mockCourseAPI) UpdateCourse(ctx context.Context, courseID int, req api.CourseRequest) (models.Course, error) {
	args := m.Called(ctx, courseID, req)
	return args.Get(0).(models.Course), args.Error(1)
}

func (m *mockCourseAPI) DeleteCourse(ctx context.Context, courseID int) error {
	args := m.Called(ctx, courseID)
	return args.Error(0)
}

func (m *mockCourseAPI) Enroll(ctx context.Context, req api.EnrollRequest) (models.Enrollment, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(models.Enrollment), args.Error(1)
}

func (m *mockCourseAPI) MyEnrollments(ctx context.Context) ([]models.Enrollment, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Enrollment), args.Error(1)
}

func (m *mockCourseAPI) CourseEnrollments(ctx context.Context, courseID int) ([]models.Enrollment, error) {
	args := m.Called(ctx, courseID)
	return args.Get(0).([]models.Enrollment), args.Error(1)
}

func (m *mockCourseAPI) DeleteEnrollment(ctx context.Context, enrollmentID int) error {
	args := m.Called(ctx, enrollmentID)
	return args.Error(0)
}

func (m *mockCourseAPI) CourseMaterials(ctx context.Context, courseID int) ([]models.CourseMaterial, error) {
	args := m.Called(ctx, courseID)
	return args.Get(0).([]models.CourseMaterial), args.Error(1)
}

func (m *mockCourseAPI) UploadMaterials(ctx context.Context, courseID int, files []api.UploadFile) (models.UploadResult, error) {
	args := m.Called(ctx, courseID, files)
	return args.Get(0).(models.UploadResult), args.Error(1)
}

func (m *mockCourseAPI) DeleteMaterial(ctx context.Context, materialID int) error {
	args := m.Called(ctx, materialID)
	return args.Error(0)
}

func (m *mockCourseAPI) DownloadMaterial(ctx context.Context, materialID int) ([]byte, error) {
	args := m.Called(ctx, materialID)
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockCourseAPI) Users(ctx context.Context, role models.UserRole, search string) ([]models.User, error) {
	args := m.Called(ctx, role, search)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *mockCourseAPI) UserByID(ctx context.Context, userID int) (models.User, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.User), args.Error(1)
}
