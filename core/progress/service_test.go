package progress_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berkanmatematik/platform/core"
	"github.com/berkanmatematik/platform/core/course"
	"github.com/berkanmatematik/platform/core/progress"
	inmemdb "github.com/berkanmatematik/platform/storage/database/inmem"
	"github.com/berkanmatematik/platform/tests"
)

var errStoreDown = errors.New("store down")

type failingRepo struct {
	progress.Repository
	fail bool
}

func (r *failingRepo) SaveProgress(ctx context.Context, rec progress.Record) error {
	if r.fail {
		return errStoreDown
	}
	return r.Repository.SaveProgress(ctx, rec)
}

func setup(t *testing.T) (progress.Service, *failingRepo) {
	db := inmemdb.Open()
	courseRepo := inmemdb.NewCourseRepository(db)
	testutil.CreateCourse(t, courseRepo, testutil.SampleCourse("6-sinif-kesirler"))
	testutil.CreateCourse(t, courseRepo, testutil.SampleCourse("7-sinif-cebir"))

	repo := &failingRepo{Repository: inmemdb.NewProgressRepository(db)}
	return progress.NewService(repo, course.NewService(courseRepo)), repo
}

func TestService_ToggleLesson(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup(t)

	t.Run("first toggle completes", func(t *testing.T) {
		p, err := svc.ToggleLesson(ctx, "u1", "6-sinif-kesirler", "l1-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"l1-1"}, p.CompletedLessons)
		assert.Equal(t, progress.Summary{Completed: 1, Total: 4, Percentage: 25}, p.Summary)
	})

	t.Run("lessons are listed in course order", func(t *testing.T) {
		_, err := svc.ToggleLesson(ctx, "u1", "6-sinif-kesirler", "l2-2")
		require.NoError(t, err)
		p, err := svc.ToggleLesson(ctx, "u1", "6-sinif-kesirler", "l1-2")
		require.NoError(t, err)
		assert.Equal(t, []string{"l1-1", "l1-2", "l2-2"}, p.CompletedLessons)
		assert.Equal(t, 75.0, p.Percentage)
	})

	t.Run("second toggle reverts", func(t *testing.T) {
		p, err := svc.ToggleLesson(ctx, "u1", "6-sinif-kesirler", "l1-2")
		require.NoError(t, err)
		assert.Equal(t, []string{"l1-1", "l2-2"}, p.CompletedLessons)
		assert.Equal(t, 50.0, p.Percentage)
	})

	t.Run("users are independent", func(t *testing.T) {
		p, err := svc.Get(ctx, "u2", "6-sinif-kesirler")
		require.NoError(t, err)
		assert.Empty(t, p.CompletedLessons)
		assert.Equal(t, 0.0, p.Percentage)
	})

	t.Run("unknown lesson", func(t *testing.T) {
		_, err := svc.ToggleLesson(ctx, "u1", "6-sinif-kesirler", "l9-9")
		assert.Equal(t, progress.ErrLessonNotFound, err)
	})

	t.Run("unknown course", func(t *testing.T) {
		_, err := svc.ToggleLesson(ctx, "u1", "lol", "l1-1")
		assert.Equal(t, course.ErrNotFound, err)
	})

	t.Run("failed write keeps previous state", func(t *testing.T) {
		repo.fail = true
		_, err := svc.ToggleLesson(ctx, "u1", "6-sinif-kesirler", "l2-1")
		repo.fail = false

		var werr *core.WriteError
		require.True(t, errors.As(err, &werr))
		assert.Equal(t, "İlerleme kaydedilemedi.", werr.Msg)

		p, err := svc.Get(ctx, "u1", "6-sinif-kesirler")
		require.NoError(t, err)
		assert.Equal(t, []string{"l1-1", "l2-2"}, p.CompletedLessons)
	})
}

func TestService_Dashboard(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	entries, err := svc.Dashboard(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []progress.DashboardEntry{}, entries)

	_, err = svc.ToggleLesson(ctx, "u1", "7-sinif-cebir", "l2-1")
	require.NoError(t, err)

	// a course toggled back to empty is not listed
	_, err = svc.ToggleLesson(ctx, "u1", "6-sinif-kesirler", "l1-1")
	require.NoError(t, err)
	_, err = svc.ToggleLesson(ctx, "u1", "6-sinif-kesirler", "l1-1")
	require.NoError(t, err)

	entries, err = svc.Dashboard(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "7-sinif-cebir", entries[0].Course.ID)
	assert.Equal(t, progress.Summary{Completed: 1, Total: 4, Percentage: 25}, entries[0].Progress)
}
