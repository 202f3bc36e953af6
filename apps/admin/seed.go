package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/berkanmatematik/platform/core/content"
	"github.com/berkanmatematik/platform/core/course"
)

const sampleCourseID = "5-sinif-matematik"

var sampleCourse = course.NewCourse{
	ID:          sampleCourseID,
	Title:       "5. Sınıf Matematik",
	Description: "Doğal sayılar ve kesirlerle 5. sınıf matematiğine giriş.",
	Category:    course.CategoryGrade5,
	Sections: []course.Section{
		{ID: "s1", Title: "Doğal Sayılar", Lessons: []course.Lesson{
			{ID: "l1-1", Title: "Basamak ve Bölük", Duration: 20},
			{ID: "l1-2", Title: "Sayıları Karşılaştırma", Duration: 25},
		}},
		{ID: "s2", Title: "Kesirler", Lessons: []course.Lesson{
			{ID: "l2-1", Title: "Kesir Kavramı", Duration: 15},
			{ID: "l2-2", Title: "Kesirleri Sıralama", Duration: 20},
		}},
	},
}

var sampleVideo = course.NewContent{
	Title: "Doğal Sayılara Giriş",
	Type:  content.TypeYouTube,
	URL:   "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
}

// seed adds the sample course once; existing data is left untouched.
func (cli *commandLine) seed() error {
	ctx := context.Background()
	if _, err := cli.courseSvc.Get(ctx, sampleCourseID); err == nil {
		fmt.Printf("%s already exists, nothing to do\n", sampleCourseID)
		return nil
	} else if errors.Cause(err) != course.ErrNotFound {
		return err
	}

	c, err := cli.courseSvc.Create(ctx, sampleCourse)
	if err != nil {
		return errors.Wrap(err, "creating sample course")
	}
	if _, err = cli.courseSvc.AddContent(ctx, c.ID, sampleVideo); err != nil {
		return errors.Wrap(err, "adding sample video")
	}
	fmt.Printf("created %s\n", c.ID)
	return nil
}
