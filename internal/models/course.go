package models

import "time"

// Course is the backend's course representation. Enrollment status is
// deliberately not part of it: the list endpoint has no notion of "this
// caller is enrolled", so that annotation lives on CourseView instead.
type Course struct {
	ID              int
	Title           string
	Description     string
	TeacherID       int
	TeacherName     string
	MaterialsCount  int
	EnrollmentCount int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CourseView pairs a fetched course with the caller-derived enrollment
// flag. It is produced fresh by the repository join on every list
// refresh and is never patched incrementally, so a stale flag cannot
// outlive one fetch cycle.
type CourseView struct {
	Course     Course
	IsEnrolled bool
}
