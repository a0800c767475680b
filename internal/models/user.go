package models

import "time"

// UserRole matches the backend's role enumeration.
type UserRole string

const (
	RoleTeacher UserRole = "teacher"
	RoleStudent UserRole = "student"
)

// Valid reports whether the role is one the backend knows about.
func (r UserRole) Valid() bool {
	return r == RoleTeacher || r == RoleStudent
}

// User represents a platform account (teacher or student). Users are
// immutable once fetched; stale records are re-fetched, not patched.
type User struct {
	ID        int
	Email     string
	Username  string
	Role      UserRole
	CreatedAt time.Time
	UpdatedAt time.Time
}
