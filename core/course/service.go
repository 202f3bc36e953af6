package course

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/berkanmatematik/platform/core"
	"github.com/berkanmatematik/platform/core/content"
)

var (
	// errors
	ErrNotFound        = errors.New("Kurs bulunamadı.")
	ErrContentNotFound = errors.New("İçerik bulunamadı.")
	ErrExists          = errors.New("Bu kimlikle bir kurs zaten var.")

	// write failures shown to the user
	msgCreateFailed        = "Kurs eklenemedi."
	msgUpdateFailed        = "Kurs güncellenemedi."
	msgDeleteFailed        = "Kurs silinemedi."
	msgContentAddFailed    = "İçerik eklenemedi."
	msgContentDeleteFailed = "İçerik silinemedi."

	maxIDAttempts = 50
	nowFunc       = time.Now // mockable
)

type (
	// Repository is the course document store.
	Repository interface {
		// QueryAllCourses returns the courses matching filter; insertion order unless orderings are given.
		QueryAllCourses(ctx context.Context, filter QueryFilter, orderings ...core.DBOrdering) ([]Course, error)
		GetCourse(ctx context.Context, id string) (Course, error)
		// CreateCourse fails with ErrExists when the id is taken.
		CreateCourse(ctx context.Context, c Course) (Course, error)
		// PatchCourse replaces the patch fields of the course document and returns the result.
		PatchCourse(ctx context.Context, id string, p Patch) (Course, error)
		DeleteCourse(ctx context.Context, id string) error
	}

	Service interface {
		Query(ctx context.Context, filter QueryFilter, orderings ...core.DBOrdering) ([]Course, error)
		Get(ctx context.Context, id string) (Course, error)
		Detail(ctx context.Context, id, contentID string) (Detail, error)
		Create(ctx context.Context, nc NewCourse) (Course, error)
		Update(ctx context.Context, id string, uc UpdateCourse) (Course, error)
		Delete(ctx context.Context, id string) error
		AddContent(ctx context.Context, courseID string, nc NewContent) (Content, error)
		DeleteContent(ctx context.Context, courseID, contentID string) error
		ByGrade(ctx context.Context, grade Grade) (Catalog, error)
		RecentVideos(ctx context.Context, n int) ([]RecentVideo, error)
	}

	service struct {
		repo Repository
	}
)

// Detail is a course with the figures shown on its page.
type Detail struct {
	Course
	TotalLessons     int    `json:"totalLessons"`
	TotalDuration    int    `json:"totalDuration"` // minutes
	DefaultContentID string `json:"defaultContentId"`
}

// CourseContent is a content item annotated with its owning course.
type CourseContent struct {
	Content
	CourseID    string   `json:"courseId"`
	CourseTitle string   `json:"courseTitle"`
	Category    Category `json:"category"`
	Icon        string   `json:"icon"`
}

// Catalog is a grade page: its courses and all their content grouped by kind.
type Catalog struct {
	Grade        Grade           `json:"grade"`
	Courses      []Course        `json:"courses"`
	Videos       []CourseContent `json:"videos"`
	Documents    []CourseContent `json:"documents"`
	Applications []CourseContent `json:"applications"`
}

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Query(ctx context.Context, filter QueryFilter, orderings ...core.DBOrdering) ([]Course, error) {
	filter.Clean()
	return svc.repo.QueryAllCourses(ctx, filter, core.FilterOrderings(orderings, OrderingFields...)...)
}

func (svc *service) Get(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourse(ctx, id)
}

func (svc *service) Detail(ctx context.Context, id, contentID string) (Detail, error) {
	c, err := svc.repo.GetCourse(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	d := Detail{
		Course:        c,
		TotalLessons:  c.TotalLessons(),
		TotalDuration: c.TotalDuration(),
	}
	if _, ok := c.FindContent(contentID); ok {
		d.DefaultContentID = contentID
	} else if len(c.Content) > 0 {
		d.DefaultContentID = c.Content[0].ID
	}
	return d, nil
}

// Create stores a new course with an empty content list. When nc.ID is empty the id is
// the slug of the title, suffixed with -2, -3... until free.
func (svc *service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	now := nowFunc().UTC()
	c := Course{
		Title:       nc.Title,
		Description: nc.Description,
		Category:    nc.Category,
		ImageURL:    nc.ImageURL,
		Sections:    nc.Sections,
		Content:     []Content{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if c.Sections == nil {
		c.Sections = []Section{}
	}

	explicit := nc.ID != ""
	base := nc.ID
	if !explicit {
		base = core.Slugify(nc.Title)
	}
	if base == "" {
		base = "kurs"
	}

	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		c.ID = base
		if attempt > 1 {
			c.ID = base + "-" + strconv.Itoa(attempt)
		}
		created, err := svc.repo.CreateCourse(ctx, c)
		switch {
		case err == nil:
			return created, nil
		case errors.Cause(err) != ErrExists:
			return Course{}, core.NewWriteError(msgCreateFailed, err)
		case explicit:
			return Course{}, core.NewValidationError(ErrExists, core.FieldError{Field: "id", Error: ErrExists.Error()})
		}
	}
	return Course{}, core.NewWriteError(msgCreateFailed, ErrExists)
}

func (svc *service) Update(ctx context.Context, id string, uc UpdateCourse) (Course, error) {
	if uc.IsEmpty() {
		return svc.repo.GetCourse(ctx, id)
	}
	c, err := svc.repo.PatchCourse(ctx, id, Patch{
		Title:       uc.Title,
		Description: uc.Description,
		Category:    uc.Category,
		ImageURL:    uc.ImageURL,
		Sections:    uc.Sections,
		UpdatedAt:   nowFunc().UTC(),
	})
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Course{}, ErrNotFound
		}
		return Course{}, core.NewWriteError(msgUpdateFailed, err)
	}
	return c, nil
}

func (svc *service) Delete(ctx context.Context, id string) error {
	if err := svc.repo.DeleteCourse(ctx, id); err != nil {
		if errors.Cause(err) == ErrNotFound {
			return ErrNotFound
		}
		return core.NewWriteError(msgDeleteFailed, err)
	}
	return nil
}

// AddContent appends an item to the course and writes back the whole content list.
// The in-memory copy is only returned once the store write succeeded.
func (svc *service) AddContent(ctx context.Context, courseID string, nc NewContent) (Content, error) {
	c, err := svc.repo.GetCourse(ctx, courseID)
	if err != nil {
		return Content{}, err
	}

	item := Content{
		ID:       newContentID(c.Content, nowFunc()),
		Title:    nc.Title,
		Type:     nc.Type,
		URL:      nc.URL,
		EmbedURL: content.EmbedURL(nc.URL, nc.Type),
	}
	list := make([]Content, 0, len(c.Content)+1)
	list = append(list, c.Content...)
	list = append(list, item)

	if _, err = svc.repo.PatchCourse(ctx, courseID, Patch{Content: &list, UpdatedAt: nowFunc().UTC()}); err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Content{}, ErrNotFound
		}
		return Content{}, core.NewWriteError(msgContentAddFailed, err)
	}
	return item, nil
}

// DeleteContent filters the item out of the course and writes back the whole content list.
func (svc *service) DeleteContent(ctx context.Context, courseID, contentID string) error {
	c, err := svc.repo.GetCourse(ctx, courseID)
	if err != nil {
		return err
	}
	if _, ok := c.FindContent(contentID); !ok {
		return ErrContentNotFound
	}

	list := make([]Content, 0, len(c.Content))
	for _, item := range c.Content {
		if item.ID != contentID {
			list = append(list, item)
		}
	}
	if _, err = svc.repo.PatchCourse(ctx, courseID, Patch{Content: &list, UpdatedAt: nowFunc().UTC()}); err != nil {
		if errors.Cause(err) == ErrNotFound {
			return ErrNotFound
		}
		return core.NewWriteError(msgContentDeleteFailed, err)
	}
	return nil
}

func (svc *service) ByGrade(ctx context.Context, grade Grade) (Catalog, error) {
	courses, err := svc.repo.QueryAllCourses(ctx, QueryFilter{Category: grade.Label})
	if err != nil {
		return Catalog{}, errors.Wrap(err, "querying courses")
	}
	cat := Catalog{
		Grade:        grade,
		Courses:      courses,
		Videos:       []CourseContent{},
		Documents:    []CourseContent{},
		Applications: []CourseContent{},
	}
	for _, c := range courses {
		for _, item := range c.Content {
			cc := annotate(c, item)
			switch item.Type.Group() {
			case content.GroupVideos:
				cat.Videos = append(cat.Videos, cc)
			case content.GroupDocuments:
				cat.Documents = append(cat.Documents, cc)
			case content.GroupApplications:
				cat.Applications = append(cat.Applications, cc)
			}
		}
	}
	return cat, nil
}

func (svc *service) RecentVideos(ctx context.Context, n int) ([]RecentVideo, error) {
	courses, err := svc.repo.QueryAllCourses(ctx, QueryFilter{})
	if err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	return RecentVideos(courses, n), nil
}

func annotate(c Course, item Content) CourseContent {
	return CourseContent{
		Content:     item,
		CourseID:    c.ID,
		CourseTitle: c.Title,
		Category:    c.Category,
		Icon:        item.Type.Icon(),
	}
}

// newContentID returns `content-<unixMillis>`, bumped until it is unique within existing.
func newContentID(existing []Content, now time.Time) string {
	taken := make(map[string]struct{}, len(existing))
	for _, item := range existing {
		taken[item.ID] = struct{}{}
	}
	ms := now.UnixNano() / int64(time.Millisecond)
	for {
		id := contentIDPrefix + strconv.FormatInt(ms, 10)
		if _, ok := taken[id]; !ok {
			return id
		}
		ms++
	}
}
