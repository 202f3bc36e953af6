package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/pkg/errors"

	"github.com/berkanmatematik/platform/core/progress"
)

type progressRow struct {
	UserID           string         `db:"user_id"`
	CourseID         string         `db:"course_id"`
	CompletedLessons types.JSONText `db:"completed_lessons"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

func (r progressRow) record() (progress.Record, error) {
	var ids []string
	if len(r.CompletedLessons) > 0 {
		if err := r.CompletedLessons.Unmarshal(&ids); err != nil {
			return progress.Record{}, errors.Wrap(err, "decoding completed lessons")
		}
	}
	return progress.Record{
		UserID:    r.UserID,
		CourseID:  r.CourseID,
		Completed: progress.NewSet(ids...),
		UpdatedAt: r.UpdatedAt.UTC(),
	}, nil
}

type progressRepository struct {
	db *sqlx.DB
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *sqlx.DB) progress.Repository {
	return &progressRepository{db: db}
}

func (repo *progressRepository) GetProgress(ctx context.Context, userID, courseID string) (progress.Record, error) {
	var row progressRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT user_id, course_id, completed_lessons, updated_at FROM progress WHERE user_id = $1 AND course_id = $2`,
		userID, courseID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return progress.Record{UserID: userID, CourseID: courseID, Completed: progress.NewSet()}, nil
		}
		return progress.Record{}, errors.Wrap(err, "getting progress")
	}
	return row.record()
}

func (repo *progressRepository) QueryUserProgress(ctx context.Context, userID string) (map[string]progress.Record, error) {
	var rows []progressRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT user_id, course_id, completed_lessons, updated_at FROM progress WHERE user_id = $1`, userID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying progress")
	}
	records := make(map[string]progress.Record, len(rows))
	for _, r := range rows {
		rec, err := r.record()
		if err != nil {
			return nil, err
		}
		records[rec.CourseID] = rec
	}
	return records, nil
}

func (repo *progressRepository) SaveProgress(ctx context.Context, rec progress.Record) error {
	ids, err := marshalJSON(rec.Completed.IDs())
	if err != nil {
		return errors.Wrap(err, "encoding completed lessons")
	}
	q := `INSERT INTO progress (user_id, course_id, completed_lessons, updated_at)
		VALUES (:user_id, :course_id, :completed_lessons, :updated_at)
		ON CONFLICT (user_id, course_id)
		DO UPDATE SET completed_lessons = EXCLUDED.completed_lessons, updated_at = EXCLUDED.updated_at`
	_, err = repo.db.NamedExecContext(ctx, q, progressRow{
		UserID:           rec.UserID,
		CourseID:         rec.CourseID,
		CompletedLessons: ids,
		UpdatedAt:        rec.UpdatedAt.UTC(),
	})
	if err != nil {
		return errors.Wrap(err, "saving progress")
	}
	return nil
}
