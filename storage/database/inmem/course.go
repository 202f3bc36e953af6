package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/berkanmatematik/platform/core"
	"github.com/berkanmatematik/platform/core/course"
)

type courseRepository struct {
	db *courseTable
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db.course}
}

func (repo *courseRepository) QueryAllCourses(_ context.Context, filter course.QueryFilter, orderings ...core.DBOrdering) ([]course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	courses := make([]course.Course, 0, len(repo.db.order))
	for _, id := range repo.db.order {
		c := repo.db.table[id]
		if filter.Match(*c) {
			courses = append(courses, cloneCourse(*c))
		}
	}
	if len(orderings) > 0 {
		sort.SliceStable(courses, func(i, j int) bool { return less(courses[i], courses[j], orderings) })
	}
	return courses, nil
}

func (repo *courseRepository) GetCourse(_ context.Context, id string) (course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if c, ok := repo.db.table[id]; ok {
		return cloneCourse(*c), nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) CreateCourse(_ context.Context, c course.Course) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[c.ID]; ok {
		return course.Course{}, course.ErrExists
	}
	stored := cloneCourse(c)
	repo.db.table[c.ID] = &stored
	repo.db.order = append(repo.db.order, c.ID)
	return cloneCourse(stored), nil
}

func (repo *courseRepository) PatchCourse(_ context.Context, id string, p course.Patch) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.table[id]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	patched := cloneCourse(p.Apply(cloneCourse(*orig)))
	repo.db.table[id] = &patched
	return cloneCourse(patched), nil
}

func (repo *courseRepository) DeleteCourse(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return course.ErrNotFound
	}
	delete(repo.db.table, id)
	for i, oid := range repo.db.order {
		if oid == id {
			repo.db.order = append(repo.db.order[:i:i], repo.db.order[i+1:]...)
			break
		}
	}
	return nil
}

func less(a, b course.Course, orderings []core.DBOrdering) bool {
	for _, ord := range orderings {
		var cmp int
		switch ord.Field {
		case "title":
			cmp = strings.Compare(a.Title, b.Title)
		case "category":
			cmp = strings.Compare(string(a.Category), string(b.Category))
		case "created_at":
			cmp = compareTimes(a.CreatedAt.UnixNano(), b.CreatedAt.UnixNano())
		case "updated_at":
			cmp = compareTimes(a.UpdatedAt.UnixNano(), b.UpdatedAt.UnixNano())
		}
		if cmp == 0 {
			continue
		}
		if ord.Ascending {
			return cmp < 0
		}
		return cmp > 0
	}
	return false
}

func compareTimes(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// cloneCourse deep copies the embedded lists so callers never share them with the store.
func cloneCourse(c course.Course) course.Course {
	if c.Sections != nil {
		sections := make([]course.Section, len(c.Sections))
		for i, s := range c.Sections {
			if s.Lessons != nil {
				s.Lessons = append([]course.Lesson(nil), s.Lessons...)
			}
			sections[i] = s
		}
		c.Sections = sections
	}
	if c.Content != nil {
		c.Content = append([]course.Content{}, c.Content...)
	}
	return c
}
