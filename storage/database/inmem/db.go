// Package inmemdb is a document store kept in process memory. Used in DEV, tests and with the `memory` driver.
package inmemdb

import (
	"sync"

	"github.com/berkanmatematik/platform/core/course"
	"github.com/berkanmatematik/platform/core/progress"
	"github.com/berkanmatematik/platform/core/user"
)

type (
	DB struct {
		user     *userTable
		course   *courseTable
		progress *progressTable
	}

	userTable struct {
		table map[string]*user.User
		mutex sync.RWMutex
	}

	courseTable struct {
		table map[string]*course.Course
		order []string // insertion order
		mutex sync.RWMutex
	}

	progressTable struct {
		table map[progressKey]*progress.Record
		mutex sync.RWMutex
	}

	progressKey struct {
		userID   string
		courseID string
	}
)

func Open() *DB {
	return &DB{
		user:     &userTable{table: make(map[string]*user.User)},
		course:   &courseTable{table: make(map[string]*course.Course)},
		progress: &progressTable{table: make(map[progressKey]*progress.Record)},
	}
}

// Reset empties every table.
func (db *DB) Reset() {
	db.user.mutex.Lock()
	db.user.table = make(map[string]*user.User)
	db.user.mutex.Unlock()

	db.course.mutex.Lock()
	db.course.table = make(map[string]*course.Course)
	db.course.order = nil
	db.course.mutex.Unlock()

	db.progress.mutex.Lock()
	db.progress.table = make(map[progressKey]*progress.Record)
	db.progress.mutex.Unlock()
}
