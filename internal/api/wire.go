package api

import (
	"encoding/json"
	"time"

	"github.com/MihaiMalos/elearning-client/internal/models"
)

// Wire shapes of the backend (snake_case JSON). They exist only inside
// this package; every client method converts them to domain types so the
// rest of the code never sees backend field names.

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type userResponse struct {
	ID        int      `json:"id"`
	Email     string   `json:"email"`
	Username  string   `json:"username"`
	Role      string   `json:"role"`
	CreatedAt wireTime `json:"created_at"`
	UpdatedAt wireTime `json:"updated_at"`
}

func (u userResponse) toModel() models.User {
	return models.User{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		Role:      models.UserRole(u.Role),
		CreatedAt: u.CreatedAt.Time,
		UpdatedAt: u.UpdatedAt.Time,
	}
}

type courseResponse struct {
	ID              int      `json:"id"`
	Title           string   `json:"title"`
	Description     *string  `json:"description"`
	TeacherID       int      `json:"teacher_id"`
	TeacherUsername *string  `json:"teacher_username"`
	MaterialsCount  int      `json:"materials_count"`
	EnrollmentCount int      `json:"enrollments_count"`
	CreatedAt       wireTime `json:"created_at"`
	UpdatedAt       wireTime `json:"updated_at"`
}

func (c courseResponse) toModel() models.Course {
	course := models.Course{
		ID:              c.ID,
		Title:           c.Title,
		TeacherID:       c.TeacherID,
		MaterialsCount:  c.MaterialsCount,
		EnrollmentCount: c.EnrollmentCount,
		CreatedAt:       c.CreatedAt.Time,
		UpdatedAt:       c.UpdatedAt.Time,
	}
	if c.Description != nil {
		course.Description = *c.Description
	}
	if c.TeacherUsername != nil {
		course.TeacherName = *c.TeacherUsername
	}
	return course
}

type enrollmentResponse struct {
	ID                int      `json:"id"`
	StudentID         int      `json:"student_id"`
	CourseID          int      `json:"course_id"`
	EnrolledAt        wireTime `json:"enrolled_at"`
	Progress          float64  `json:"progress"`
	CourseTitle       *string  `json:"course_title"`
	CourseDescription *string  `json:"course_description"`
	TeacherUsername   *string  `json:"teacher_username"`
}

func (e enrollmentResponse) toModel() models.Enrollment {
	enrollment := models.Enrollment{
		ID:         e.ID,
		StudentID:  e.StudentID,
		CourseID:   e.CourseID,
		EnrolledAt: e.EnrolledAt.Time,
		Progress:   e.Progress,
	}
	if e.CourseTitle != nil {
		enrollment.CourseTitle = *e.CourseTitle
	}
	if e.CourseDescription != nil {
		enrollment.CourseDescription = *e.CourseDescription
	}
	if e.TeacherUsername != nil {
		enrollment.TeacherName = *e.TeacherUsername
	}
	return enrollment
}

type materialResponse struct {
	ID               int      `json:"id"`
	CourseID         int      `json:"course_id"`
	Filename         string   `json:"filename"`
	OriginalFilename string   `json:"original_filename"`
	FileSize         int64    `json:"file_size"`
	MimeType         string   `json:"mime_type"`
	UploadedAt       wireTime `json:"uploaded_at"`
}

func (m materialResponse) toModel() models.CourseMaterial {
	return models.CourseMaterial{
		ID:               m.ID,
		CourseID:         m.CourseID,
		FileName:         m.Filename,
		OriginalFileName: m.OriginalFilename,
		MimeType:         m.MimeType,
		FileSizeBytes:    m.FileSize,
		UploadedAt:       m.UploadedAt.Time,
	}
}

type uploadResponse struct {
	UploadedFiles []materialResponse `json:"uploaded_files"`
	TotalFiles    int                `json:"total_files"`
	FailedFiles   []string           `json:"failed_files"`
}

func (u uploadResponse) toModel() models.UploadResult {
	uploaded := make([]models.CourseMaterial, 0, len(u.UploadedFiles))
	for _, f := range u.UploadedFiles {
		uploaded = append(uploaded, f.toModel())
	}
	return models.UploadResult{
		Uploaded:    uploaded,
		TotalFiles:  u.TotalFiles,
		FailedFiles: u.FailedFiles,
	}
}

type chatResponse struct {
	Answer          string `json:"answer"`
	CourseID        int    `json:"course_id"`
	RetrievedChunks int    `json:"retrieved_chunks"`
}

func (c chatResponse) toModel() models.ChatAnswer {
	return models.ChatAnswer{
		Answer:          c.Answer,
		CourseID:        c.CourseID,
		RetrievedChunks: c.RetrievedChunks,
	}
}

type registerBody struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type courseBody struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

type enrollmentBody struct {
	CourseID  int  `json:"course_id"`
	StudentID *int `json:"student_id,omitempty"`
}

type chatBody struct {
	CourseID int    `json:"course_id"`
	Question string `json:"question"`
}

// errorBody is FastAPI's error envelope. Detail is usually a string but
// validation errors carry a structured list.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// wireTime tolerates both RFC3339 timestamps and the backend's naive
// "2006-01-02T15:04:05" datetimes (no zone, optional fraction).
type wireTime struct {
	time.Time
}

var wireTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

func (t *wireTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	var lastErr error
	for _, layout := range wireTimeLayouts {
		parsed, err := time.Parse(layout, raw)
		if err == nil {
			t.Time = parsed
			return nil
		}
		lastErr = err
	}
	return lastErr
}

func (t wireTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(time.RFC3339))
}
