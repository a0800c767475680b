package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCourseMaterial_Kind(t *testing.T) {
	tests := []struct {
		name     string
		mimeType string
		expected FileKind
	}{
		{name: "pdf", mimeType: "application/pdf", expected: FileKindPDF},
		{name: "plain text", mimeType: "text/plain", expected: FileKindText},
		{name: "markdown", mimeType: "text/markdown", expected: FileKindText},
		{name: "uppercase mime", mimeType: "APPLICATION/PDF", expected: FileKindPDF},
		{name: "octet stream", mimeType: "application/octet-stream", expected: FileKindUnknown},
		{name: "empty", mimeType: "", expected: FileKindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			material := CourseMaterial{MimeType: tt.mimeType}
			assert.Equal(t, tt.expected, material.Kind())
		})
	}
}

func TestUserRole_Valid(t *testing.T) {
	assert.True(t, RoleTeacher.Valid())
	assert.True(t, RoleStudent.Valid())
	assert.False(t, UserRole("admin").Valid())
	assert.False(t, UserRole("").Valid())
}
