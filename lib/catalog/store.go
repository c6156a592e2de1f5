package catalog

import (
	"sync/atomic"
)

// Store hands out read-only snapshots of the catalog. The whole course
// slice is swapped atomically on reload so concurrent readers never see a
// half-written catalog and queries need no locks.
type Store struct {
	courses atomic.Pointer[[]Course]
}

func NewStore(courses []Course) *Store {
	s := &Store{}
	s.Swap(courses)
	return s
}

// Courses returns the current snapshot. Callers must not mutate it.
func (s *Store) Courses() []Course {
	p := s.courses.Load()
	if p == nil {
		return nil
	}
	return *p
}

// Swap replaces the entire catalog. In-place mutation is never allowed.
func (s *Store) Swap(courses []Course) {
	s.courses.Store(&courses)
}

func (s *Store) Len() int {
	return len(s.Courses())
}

// CourseCodes returns every course code in catalog order.
func (s *Store) CourseCodes() []string {
	courses := s.Courses()
	codes := make([]string, len(courses))
	for i, c := range courses {
		codes[i] = c.CourseCode
	}
	return codes
}
