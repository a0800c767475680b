package repository

import (
	"context"

	"github.com/MihaiMalos/elearning-client/internal/api"
	"github.com/MihaiMalos/elearning-client/internal/models"
)

// AuthAPI is the slice of the backend client the auth repository needs.
// Narrow interfaces keep the repositories mockable in tests.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (token, scheme string, err error)
	Register(ctx context.Context, req api.RegisterRequest) (models.User, error)
	CurrentUser(ctx context.Context) (models.User, error)
}

// CourseAPI is the slice of the backend client the course repository needs.
type CourseAPI interface {
	Courses(ctx context.Context, search string) ([]models.Course, error)
	CourseByID(ctx context.Context, courseID int) (models.Course, error)
	CreateCourse(ctx context.Context, req api.CourseRequest) (models.Course, error)
	UpdateCourse(ctx context.Context, courseID int, req api.CourseRequest) (models.Course, error)
	DeleteCourse(ctx context.Context, courseID int) error
	Enroll(ctx context.Context, req api.EnrollRequest) (models.Enrollment, error)
	MyEnrollments(ctx context.Context) ([]models.Enrollment, error)
	CourseEnrollments(ctx context.Context, courseID int) ([]models.Enrollment, error)
	DeleteEnrollment(ctx context.Context, enrollmentID int) error
	CourseMaterials(ctx context.Context, courseID int) ([]models.CourseMaterial, error)
	UploadMaterials(ctx context.Context, courseID int, files []api.UploadFile) (models.UploadResult, error)
	DeleteMaterial(ctx context.Context, materialID int) error
	DownloadMaterial(ctx context.Context, materialID int) ([]byte, error)
	Users(ctx context.Context, role models.UserRole, search string) ([]models.User, error)
	UserByID(ctx context.Context, userID int) (models.User, error)
}

// ChatAPI is the slice of the backend client the chat flow needs.
type ChatAPI interface {
	SendChatMessage(ctx context.Context, req api.ChatRequest) (models.ChatAnswer, error)
}
