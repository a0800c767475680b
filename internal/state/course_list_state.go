package state

import (
	"context"
	"strings"
	"sync"

	"github.com/MihaiMalos/elearning-client/internal/models"
	"github.com/MihaiMalos/elearning-client/internal/repository"
	"github.com/MihaiMalos/elearning-client/internal/session"
)

// CourseListState backs the course catalog screen: the annotated course
// list, a client-side search filter and the student-search results used
// by teachers when enrolling someone by hand.
type CourseListState struct {
	repo    *repository.CourseRepository
	session *session.Store

	mu             sync.RWMutex
	ctx            context.Context
	cancel         context.CancelFunc
	gen            int
	loading        bool
	errMsg         string
	courses        []models.CourseView
	searchQuery    string
	studentResults []models.User
	onChange       func()
}

// NewCourseListState creates the holder. Nothing is loaded until the
// first Load call.
func NewCourseListState(repo *repository.CourseRepository, sessionStore *session.Store) *CourseListState {
	ctx, cancel := context.WithCancel(context.Background())
	return &CourseListState{
		repo:    repo,
		session: sessionStore,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// SetOnChange registers a callback invoked after every state change.
func (s *CourseListState) SetOnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Close abandons in-flight loads; late results are discarded.
func (s *CourseListState) Close() {
	s.cancel()
}

// Load refreshes the full annotated course list. A refresh issued while
// an older one is still in flight wins; the stale result is dropped.
func (s *CourseListState) Load() {
	gen := s.begin()
	views, err := s.repo.ListCourses(s.ctx, "")
	s.finish(gen, func() {
		if err != nil {
			s.errMsg = err.Error()
			return
		}
		s.courses = views
	})
}

// Enroll enrolls the caller in a course and refreshes the list so the
// annotation reflects the new membership.
func (s *CourseListState) Enroll(courseID int) {
	gen := s.begin()
	_, err := s.repo.Enroll(s.ctx, courseID)
	if err != nil {
		s.finish(gen, func() {
			s.errMsg = err.Error()
		})
		return
	}
	views, err := s.repo.ListCourses(s.ctx, "")
	s.finish(gen, func() {
		if err != nil {
			s.errMsg = err.Error()
			return
		}
		s.courses = views
	})
}

// CreateCourse creates a course for the calling teacher, then reloads.
func (s *CourseListState) CreateCourse(title, description string) {
	gen := s.begin()
	_, err := s.repo.CreateCourse(s.ctx, title, description)
	if err != nil {
		s.finish(gen, func() {
			s.errMsg = err.Error()
		})
		return
	}
	views, err := s.repo.ListCourses(s.ctx, "")
	s.finish(gen, func() {
		if err != nil {
			s.errMsg = err.Error()
			return
		}
		s.courses = views
	})
}

// DeleteCourse removes a course, then reloads.
func (s *CourseListState) DeleteCourse(courseID int) {
	gen := s.begin()
	if err := s.repo.DeleteCourse(s.ctx, courseID); err != nil {
		s.finish(gen, func() {
			s.errMsg = err.Error()
		})
		return
	}
	views, err := s.repo.ListCourses(s.ctx, "")
	s.finish(gen, func() {
		if err != nil {
			s.errMsg = err.Error()
			return
		}
		s.courses = views
	})
}

// SearchStudents refreshes the student-search results for the
// enroll-a-student dialog.
func (s *CourseListState) SearchStudents(query string) {
	gen := s.begin()
	users, err := s.repo.SearchStudents(s.ctx, query)
	s.finish(gen, func() {
		if err != nil {
			s.errMsg = err.Error()
			return
		}
		s.studentResults = users
	})
}

// EnrollStudent enrolls a named student in a course; teacher-only on the
// backend, which answers 403 otherwise.
func (s *CourseListState) EnrollStudent(courseID, studentID int) {
	gen := s.begin()
	_, err := s.repo.EnrollStudent(s.ctx, courseID, studentID)
	s.finish(gen, func() {
		if err != nil {
			s.errMsg = err.Error()
		}
	})
}

// SetSearchQuery updates the client-side filter; no network call.
func (s *CourseListState) SetSearchQuery(query string) {
	s.mu.Lock()
	s.searchQuery = query
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Courses returns the last loaded annotated list.
func (s *CourseListState) Courses() []models.CourseView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.CourseView(nil), s.courses...)
}

// Filtered applies the search query over title, description and teacher
// name, case-insensitively, without touching the network.
func (s *CourseListState) Filtered() []models.CourseView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := strings.ToLower(strings.TrimSpace(s.searchQuery))
	if query == "" {
		return append([]models.CourseView(nil), s.courses...)
	}

	var filtered []models.CourseView
	for _, view := range s.courses {
		if strings.Contains(strings.ToLower(view.Course.Title), query) ||
			strings.Contains(strings.ToLower(view.Course.Description), query) ||
			strings.Contains(strings.ToLower(view.Course.TeacherName), query) {
			filtered = append(filtered, view)
		}
	}
	return filtered
}

// MyCourses narrows the list to the caller's own: for teachers the
// courses they own, for students the ones they are enrolled in.
func (s *CourseListState) MyCourses() []models.CourseView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	role, hasRole := s.session.UserRole()
	userID, hasID := s.session.UserID()

	var mine []models.CourseView
	for _, view := range s.courses {
		switch {
		case hasRole && role == models.RoleTeacher:
			if hasID && view.Course.TeacherID == userID {
				mine = append(mine, view)
			}
		default:
			if view.IsEnrolled {
				mine = append(mine, view)
			}
		}
	}
	return mine
}

// StudentResults returns the last student-search results.
func (s *CourseListState) StudentResults() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.User(nil), s.studentResults...)
}

// IsLoading reports whether an operation is in flight.
func (s *CourseListState) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the latest failure message, empty when none.
func (s *CourseListState) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

func (s *CourseListState) begin() int {
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

func (s *CourseListState) finish(gen int, apply func()) {
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
