package progress

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/berkanmatematik/platform/core"
	"github.com/berkanmatematik/platform/core/course"
)

var (
	// errors
	ErrLessonNotFound = errors.New("Ders bulunamadı.")

	msgToggleFailed = "İlerleme kaydedilemedi."

	nowFunc = time.Now // mockable
)

// Record is the stored progress of a user on one course.
type Record struct {
	UserID    string    `json:"userId"`
	CourseID  string    `json:"courseId"`
	Completed Set       `json:"-"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type (
	Repository interface {
		// GetProgress returns an empty record when the user never touched the course.
		GetProgress(ctx context.Context, userID, courseID string) (Record, error)
		// QueryUserProgress returns every record of the user, keyed by course id.
		QueryUserProgress(ctx context.Context, userID string) (map[string]Record, error)
		SaveProgress(ctx context.Context, rec Record) error
	}

	Service interface {
		Get(ctx context.Context, userID, courseID string) (CourseProgress, error)
		ToggleLesson(ctx context.Context, userID, courseID, lessonID string) (CourseProgress, error)
		Dashboard(ctx context.Context, userID string) ([]DashboardEntry, error)
	}

	service struct {
		repo    Repository
		courses course.Service
	}
)

// CourseProgress is the answer of the progress endpoints.
type CourseProgress struct {
	CourseID         string   `json:"courseId"`
	CompletedLessons []string `json:"completedLessons"`
	Summary
}

// DashboardEntry is a started course.
type DashboardEntry struct {
	Course   course.Course `json:"course"`
	Progress Summary       `json:"progress"`
}

var _ Service = (*service)(nil)

func NewService(repo Repository, courses course.Service) Service {
	return &service{repo: repo, courses: courses}
}

func (svc *service) Get(ctx context.Context, userID, courseID string) (CourseProgress, error) {
	c, err := svc.courses.Get(ctx, courseID)
	if err != nil {
		return CourseProgress{}, err
	}
	rec, err := svc.repo.GetProgress(ctx, userID, courseID)
	if err != nil {
		return CourseProgress{}, errors.Wrap(err, "getting progress")
	}
	return newCourseProgress(c, rec.Completed), nil
}

// ToggleLesson flips the completion of a lesson. The new state is returned only once stored;
// a failed write leaves the previous record untouched.
func (svc *service) ToggleLesson(ctx context.Context, userID, courseID, lessonID string) (CourseProgress, error) {
	c, err := svc.courses.Get(ctx, courseID)
	if err != nil {
		return CourseProgress{}, err
	}
	if !c.HasLesson(lessonID) {
		return CourseProgress{}, ErrLessonNotFound
	}

	rec, err := svc.repo.GetProgress(ctx, userID, courseID)
	if err != nil {
		return CourseProgress{}, errors.Wrap(err, "getting progress")
	}
	next := rec.Completed.Clone()
	next.Toggle(lessonID)

	err = svc.repo.SaveProgress(ctx, Record{
		UserID:    userID,
		CourseID:  courseID,
		Completed: next,
		UpdatedAt: nowFunc().UTC(),
	})
	if err != nil {
		return CourseProgress{}, core.NewWriteError(msgToggleFailed, err)
	}
	return newCourseProgress(c, next), nil
}

// Dashboard lists the courses in which the user completed at least one lesson.
func (svc *service) Dashboard(ctx context.Context, userID string) ([]DashboardEntry, error) {
	records, err := svc.repo.QueryUserProgress(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying progress")
	}
	courses, err := svc.courses.Query(ctx, course.QueryFilter{})
	if err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}

	entries := make([]DashboardEntry, 0)
	for _, c := range courses {
		rec, ok := records[c.ID]
		if !ok || len(rec.Completed) == 0 {
			continue
		}
		entries = append(entries, DashboardEntry{Course: c, Progress: Calculate(c, rec.Completed)})
	}
	return entries, nil
}

func newCourseProgress(c course.Course, completed Set) CourseProgress {
	ids := make([]string, 0, len(completed))
	for _, id := range c.LessonIDs() {
		if completed.Has(id) {
			ids = append(ids, id)
		}
	}
	return CourseProgress{
		CourseID:         c.ID,
		CompletedLessons: ids,
		Summary:          Calculate(c, completed),
	}
}
