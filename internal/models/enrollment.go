package models

import "time"

// Enrollment links a student to a course. The denormalized course and
// teacher fields are only populated by the my-enrollments endpoint.
type Enrollment struct {
	ID                int
	StudentID         int
	CourseID          int
	EnrolledAt        time.Time
	Progress          float64
	CourseTitle       string
	CourseDescription string
	TeacherName       string
}
