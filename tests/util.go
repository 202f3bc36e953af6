// Package testutil holds the fixtures shared by the package tests.
package testutil

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/berkanmatematik/platform/core"
	"github.com/berkanmatematik/platform/core/course"
	"github.com/berkanmatematik/platform/core/user"
	logsvc "github.com/berkanmatematik/platform/services/logger"
)

// NewConfig returns the test configuration: no debug output, no request logs.
func NewConfig() *core.Config {
	conf := core.NewConfig()
	conf.Debug = false
	conf.TestMode = true
	conf.Server.DisableRequestLogs = true
	return conf
}

// NewLogger returns a logger that reports nowhere.
func NewLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(logsvc.NewStdLogger(io.Discard, conf), conf)
	logger.Enable(false)
	return logger
}

func CreateUser(t *testing.T, repo user.Repository, name, email, pwd, role string, createdAt ...time.Time) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CreateCourse stores c as is, defaulting the timestamps.
func CreateCourse(t *testing.T, repo course.Repository, c course.Course) course.Course {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	if c.Sections == nil {
		c.Sections = []course.Section{}
	}
	if c.Content == nil {
		c.Content = []course.Content{}
	}
	c, err := repo.CreateCourse(context.Background(), c)
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return c
}

// SampleCourse is a 6th grade course with 2 sections of 2 lessons and one video.
func SampleCourse(id string) course.Course {
	return course.Course{
		ID:          id,
		Title:       "6. Sınıf Kesirler",
		Description: "Kesirlerle işlemler",
		Category:    course.CategoryGrade6,
		Sections: []course.Section{
			{ID: "s1", Title: "Giriş", Lessons: []course.Lesson{
				{ID: "l1-1", Title: "Kesir nedir?", Duration: 20},
				{ID: "l1-2", Title: "Kesir türleri", Duration: 25},
			}},
			{ID: "s2", Title: "İşlemler", Lessons: []course.Lesson{
				{ID: "l2-1", Title: "Toplama", Duration: 15},
				{ID: "l2-2", Title: "Çıkarma", Duration: 20},
			}},
		},
		Content: []course.Content{
			{
				ID:       "content-100",
				Title:    "Kesirler giriş videosu",
				Type:     "youtube",
				URL:      "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
				EmbedURL: "https://www.youtube.com/embed/dQw4w9WgXcQ",
			},
		},
	}
}
