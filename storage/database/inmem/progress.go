package inmemdb

import (
	"context"

	"github.com/berkanmatematik/platform/core/progress"
)

type progressRepository struct {
	db *progressTable
}

var _ progress.Repository = (*progressRepository)(nil)

func NewProgressRepository(db *DB) progress.Repository {
	return &progressRepository{db: db.progress}
}

func (repo *progressRepository) GetProgress(_ context.Context, userID, courseID string) (progress.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if rec, ok := repo.db.table[progressKey{userID, courseID}]; ok {
		return cloneRecord(*rec), nil
	}
	return progress.Record{UserID: userID, CourseID: courseID, Completed: progress.NewSet()}, nil
}

func (repo *progressRepository) QueryUserProgress(_ context.Context, userID string) (map[string]progress.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	records := make(map[string]progress.Record)
	for key, rec := range repo.db.table {
		if key.userID == userID {
			records[key.courseID] = cloneRecord(*rec)
		}
	}
	return records, nil
}

func (repo *progressRepository) SaveProgress(_ context.Context, rec progress.Record) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	stored := cloneRecord(rec)
	repo.db.table[progressKey{rec.UserID, rec.CourseID}] = &stored
	return nil
}

func cloneRecord(rec progress.Record) progress.Record {
	if rec.Completed == nil {
		rec.Completed = progress.NewSet()
	} else {
		rec.Completed = rec.Completed.Clone()
	}
	return rec
}
