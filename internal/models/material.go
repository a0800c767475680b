package models

import (
	"strings"
	"time"
)

// FileKind is derived client-side from the mime type; it is never
// transmitted by the backend.
type FileKind string

const (
	FileKindPDF     FileKind = "pdf"
	FileKindText    FileKind = "text"
	FileKindUnknown FileKind = "unknown"
)

// CourseMaterial describes an uploaded file attached to a course.
type CourseMaterial struct {
	ID               int
	CourseID         int
	FileName         string
	OriginalFileName string
	MimeType         string
	FileSizeBytes    int64
	UploadedAt       time.Time
}

// Kind classifies the material by mime type substring matching.
func (m CourseMaterial) Kind() FileKind {
	mime := strings.ToLower(m.MimeType)
	switch {
	case strings.Contains(mime, "pdf"):
		return FileKindPDF
	case strings.Contains(mime, "text"):
		return FileKindText
	default:
		return FileKindUnknown
	}
}

// UploadResult reports a multi-file upload. Per-file failures land in
// FailedFiles alongside the successfully stored materials; they never
// fail the upload as a whole.
type UploadResult struct {
	Uploaded    []CourseMaterial
	TotalFiles  int
	FailedFiles []string
}
