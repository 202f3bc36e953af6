package course

import (
	"strings"
	"time"

	"github.com/berkanmatematik/platform/core"
	"github.com/berkanmatematik/platform/core/content"
)

// Category is the grade level a course belongs to.
type Category string

const (
	CategoryGrade5 Category = "5. Sınıf"
	CategoryGrade6 Category = "6. Sınıf"
	CategoryGrade7 Category = "7. Sınıf"
	CategoryGrade8 Category = "8. Sınıf"
	CategoryLGS    Category = "LGS"
)

// Grade is a Category as it appears in URLs (`/sinif/<slug>`).
type Grade struct {
	Slug  string   `json:"slug"`
	Label Category `json:"label"`
}

var Grades = []Grade{
	{Slug: "5", Label: CategoryGrade5},
	{Slug: "6", Label: CategoryGrade6},
	{Slug: "7", Label: CategoryGrade7},
	{Slug: "8", Label: CategoryGrade8},
	{Slug: "lgs", Label: CategoryLGS},
}

func (c Category) Valid() bool {
	for _, g := range Grades {
		if g.Label == c {
			return true
		}
	}
	return false
}

// ParseGrade accepts either a grade slug ("6", "lgs") or its label ("6. Sınıf").
func ParseGrade(s string) (Grade, bool) {
	s = core.CleanString(s)
	for _, g := range Grades {
		if strings.EqualFold(g.Slug, s) || string(g.Label) == s {
			return g, true
		}
	}
	return Grade{}, false
}

type Lesson struct {
	ID       string `json:"id" validate:"required"`
	Title    string `json:"title" validate:"required"`
	Duration int    `json:"duration" validate:"gte=0"` // minutes
}

type Section struct {
	ID      string   `json:"id" validate:"required"`
	Title   string   `json:"title" validate:"required"`
	Lessons []Lesson `json:"lessons" validate:"dive"`
}

// Content is an embeddable item of a Course. EmbedURL is always derived from URL and Type.
type Content struct {
	ID       string       `json:"id"`
	Title    string       `json:"title"`
	Type     content.Type `json:"type"`
	URL      string       `json:"url"`
	EmbedURL string       `json:"embedUrl"`
}

type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    Category  `json:"category"`
	ImageURL    string    `json:"imageUrl"`
	Sections    []Section `json:"sections"`
	Content     []Content `json:"content"`
	CreatedAt   time.Time `json:"createdAt"` // UTC
	UpdatedAt   time.Time `json:"updatedAt"` // UTC
}

// TotalLessons counts the lessons of every section.
func (c Course) TotalLessons() int {
	var total int
	for _, s := range c.Sections {
		total += len(s.Lessons)
	}
	return total
}

// TotalDuration sums the lesson durations, in minutes.
func (c Course) TotalDuration() int {
	var total int
	for _, s := range c.Sections {
		for _, l := range s.Lessons {
			total += l.Duration
		}
	}
	return total
}

func (c Course) HasLesson(id string) bool {
	for _, s := range c.Sections {
		for _, l := range s.Lessons {
			if l.ID == id {
				return true
			}
		}
	}
	return false
}

// LessonIDs returns the course's lesson ids in display order.
func (c Course) LessonIDs() []string {
	ids := make([]string, 0, c.TotalLessons())
	for _, s := range c.Sections {
		for _, l := range s.Lessons {
			ids = append(ids, l.ID)
		}
	}
	return ids
}

func (c Course) FindContent(id string) (Content, bool) {
	for _, item := range c.Content {
		if item.ID == id {
			return item, true
		}
	}
	return Content{}, false
}

// NewCourse contains information needed to create a new Course.
// ID is derived from Title when empty.
type NewCourse struct {
	ID          string    `json:"id" validate:"omitempty,max=100"`
	Title       string    `json:"title" validate:"required,min=3"`
	Description string    `json:"description"`
	Category    Category  `json:"category" validate:"required,category"`
	ImageURL    string    `json:"imageUrl" validate:"omitempty,url"`
	Sections    []Section `json:"sections" validate:"dive"`
}

func (nc *NewCourse) Clean() {
	nc.ID = core.Slugify(nc.ID)
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	nc.Category = Category(core.CleanString(string(nc.Category)))
	nc.ImageURL = core.CleanString(nc.ImageURL)
	cleanSections(nc.Sections)
}

// UpdateCourse defines what information may be provided to modify an existing Course.
// nil fields are left untouched.
type UpdateCourse struct {
	Title       *string    `json:"title" validate:"omitempty,min=3"`
	Description *string    `json:"description"`
	Category    *Category  `json:"category" validate:"omitempty,category"`
	ImageURL    *string    `json:"imageUrl" validate:"omitempty,url"`
	Sections    *[]Section `json:"sections" validate:"omitempty,dive"`
}

func (uc *UpdateCourse) Clean() {
	cleanPtr := func(s *string) {
		if s != nil {
			*s = core.CleanString(*s)
		}
	}
	cleanPtr(uc.Title)
	cleanPtr(uc.Description)
	cleanPtr(uc.ImageURL)
	if uc.Category != nil {
		*uc.Category = Category(core.CleanString(string(*uc.Category)))
	}
	if uc.Sections != nil {
		cleanSections(*uc.Sections)
	}
}

func (uc UpdateCourse) IsEmpty() bool {
	return uc.Title == nil && uc.Description == nil && uc.Category == nil && uc.ImageURL == nil && uc.Sections == nil
}

// NewContent is the admin form for appending an embeddable item to a Course.
type NewContent struct {
	Title string       `json:"title" validate:"required,min=3"`
	Type  content.Type `json:"type" validate:"required,contenttype"`
	URL   string       `json:"url" validate:"required,url"`
}

func (nc *NewContent) Clean() {
	nc.Title = core.CleanString(nc.Title)
	if t, ok := content.ParseType(string(nc.Type)); ok {
		nc.Type = t
	}
	nc.URL = core.CleanString(nc.URL)
}

// Patch lists the document fields a store write replaces. Content, when set, is the full new list.
type Patch struct {
	Title       *string
	Description *string
	Category    *Category
	ImageURL    *string
	Sections    *[]Section
	Content     *[]Content
	UpdatedAt   time.Time
}

// Apply returns c with the patch fields replaced.
func (p Patch) Apply(c Course) Course {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Category != nil {
		c.Category = *p.Category
	}
	if p.ImageURL != nil {
		c.ImageURL = *p.ImageURL
	}
	if p.Sections != nil {
		c.Sections = *p.Sections
	}
	if p.Content != nil {
		c.Content = *p.Content
	}
	if !p.UpdatedAt.IsZero() {
		c.UpdatedAt = p.UpdatedAt
	}
	return c
}

type QueryFilter struct {
	Category Category `query:"category"`
	Search   string   `query:"search"`
}

func (qf *QueryFilter) Clean() {
	qf.Category = Category(core.CleanString(string(qf.Category)))
	if g, ok := ParseGrade(string(qf.Category)); ok {
		qf.Category = g.Label
	}
	qf.Search = core.CleanString(qf.Search)
}

func (qf QueryFilter) IsEmpty() bool {
	return qf.Category == "" && qf.Search == ""
}

// Match reports whether c passes every set filter field. Search is a case-insensitive
// match on title or description.
func (qf QueryFilter) Match(c Course) bool {
	if qf.Category != "" && c.Category != qf.Category {
		return false
	}
	if qf.Search != "" {
		s := strings.ToLower(qf.Search)
		if !strings.Contains(strings.ToLower(c.Title), s) && !strings.Contains(strings.ToLower(c.Description), s) {
			return false
		}
	}
	return true
}

// OrderingFields are the course fields accepted by `ordering`.
var OrderingFields = []string{"title", "category", "created_at", "updated_at"}

func cleanSections(sections []Section) {
	for i := range sections {
		sections[i].ID = core.CleanString(sections[i].ID)
		sections[i].Title = core.CleanString(sections[i].Title)
		for j := range sections[i].Lessons {
			sections[i].Lessons[j].ID = core.CleanString(sections[i].Lessons[j].ID)
			sections[i].Lessons[j].Title = core.CleanString(sections[i].Lessons[j].Title)
		}
	}
}
