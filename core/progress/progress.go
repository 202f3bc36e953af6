// Package progress tracks which lessons of a course a user has completed.
package progress

import (
	"sort"

	"github.com/berkanmatematik/platform/core/course"
)

// Set is a set of completed lesson ids.
type Set map[string]struct{}

func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Toggle flips the membership of id and reports whether it is now completed.
func (s Set) Toggle(id string) bool {
	if s.Has(id) {
		delete(s, id)
		return false
	}
	s[id] = struct{}{}
	return true
}

// IDs returns the sorted members.
func (s Set) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s Set) Clone() Set {
	c := make(Set, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// Summary is the completion state of one course.
type Summary struct {
	Completed  int     `json:"completed"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// Calculate counts the course lessons present in completed. Ids that are not lessons of c are ignored.
// A course without lessons is 0% complete.
func Calculate(c course.Course, completed Set) Summary {
	sum := Summary{Total: c.TotalLessons()}
	for _, id := range c.LessonIDs() {
		if completed.Has(id) {
			sum.Completed++
		}
	}
	if sum.Total > 0 {
		sum.Percentage = float64(sum.Completed) / float64(sum.Total) * 100
	}
	return sum
}
