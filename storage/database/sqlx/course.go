package sqlxrepos

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/berkanmatematik/platform/core"
	"github.com/berkanmatematik/platform/core/course"
)

const courseColumns = "id, title, description, category, image_url, sections, content, created_at, updated_at"

type courseRow struct {
	ID          string         `db:"id"`
	Title       string         `db:"title"`
	Description string         `db:"description"`
	Category    string         `db:"category"`
	ImageURL    null.String    `db:"image_url"`
	Sections    types.JSONText `db:"sections"`
	Content     types.JSONText `db:"content"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func marshalJSON(v interface{}) (types.JSONText, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return types.JSONText(b), nil
}

func newCourseRow(c course.Course) (courseRow, error) {
	if c.Sections == nil {
		c.Sections = []course.Section{}
	}
	if c.Content == nil {
		c.Content = []course.Content{}
	}
	sections, err := marshalJSON(c.Sections)
	if err != nil {
		return courseRow{}, errors.Wrap(err, "encoding sections")
	}
	content, err := marshalJSON(c.Content)
	if err != nil {
		return courseRow{}, errors.Wrap(err, "encoding content")
	}
	return courseRow{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Category:    string(c.Category),
		ImageURL:    null.NewString(c.ImageURL, c.ImageURL != ""),
		Sections:    sections,
		Content:     content,
		CreatedAt:   c.CreatedAt.UTC(),
		UpdatedAt:   c.UpdatedAt.UTC(),
	}, nil
}

func (r courseRow) course() (course.Course, error) {
	c := course.Course{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Category:    course.Category(r.Category),
		ImageURL:    r.ImageURL.String,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
	if len(r.Sections) > 0 {
		if err := r.Sections.Unmarshal(&c.Sections); err != nil {
			return course.Course{}, errors.Wrap(err, "decoding sections")
		}
	}
	if len(r.Content) > 0 {
		if err := r.Content.Unmarshal(&c.Content); err != nil {
			return course.Course{}, errors.Wrap(err, "decoding content")
		}
	}
	return c, nil
}

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) course.Repository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) QueryAllCourses(ctx context.Context, filter course.QueryFilter, orderings ...core.DBOrdering) ([]course.Course, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Category != "" {
		args = append(args, string(filter.Category))
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}

	q := `SELECT ` + courseColumns + ` FROM courses`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}

	// orderings are filtered by the service; seq keeps insertion order for ties
	orderList := make([]string, 0, len(orderings)+1)
	for _, ord := range orderings {
		orderList = append(orderList, ord.String())
	}
	orderList = append(orderList, "seq ASC")
	q += " ORDER BY " + strings.Join(orderList, ", ")

	var rows []courseRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	courses := make([]course.Course, 0, len(rows))
	for _, r := range rows {
		c, err := r.course()
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, nil
}

func (repo *courseRepository) GetCourse(ctx context.Context, id string) (course.Course, error) {
	var row courseRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id); err != nil {
		return course.Course{}, trapNoRowsErr(err, course.ErrNotFound, "getting course")
	}
	return row.course()
}

func (repo *courseRepository) CreateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	row, err := newCourseRow(c)
	if err != nil {
		return course.Course{}, err
	}
	q := `INSERT INTO courses (` + courseColumns + `)
		VALUES (:id, :title, :description, :category, :image_url, :sections, :content, :created_at, :updated_at)`
	if _, err = repo.db.NamedExecContext(ctx, q, row); err != nil {
		if isUniqueViolation(err) {
			return course.Course{}, course.ErrExists
		}
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return row.course()
}

func (repo *courseRepository) PatchCourse(ctx context.Context, id string, p course.Patch) (course.Course, error) {
	var (
		sets []string
		args []interface{}
	)
	set := func(col string, val interface{}) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if p.Title != nil {
		set("title", *p.Title)
	}
	if p.Description != nil {
		set("description", *p.Description)
	}
	if p.Category != nil {
		set("category", string(*p.Category))
	}
	if p.ImageURL != nil {
		set("image_url", null.NewString(*p.ImageURL, *p.ImageURL != ""))
	}
	if p.Sections != nil {
		sections := *p.Sections
		if sections == nil {
			sections = []course.Section{}
		}
		js, err := marshalJSON(sections)
		if err != nil {
			return course.Course{}, errors.Wrap(err, "encoding sections")
		}
		set("sections", js)
	}
	if p.Content != nil {
		items := *p.Content
		if items == nil {
			items = []course.Content{}
		}
		js, err := marshalJSON(items)
		if err != nil {
			return course.Course{}, errors.Wrap(err, "encoding content")
		}
		set("content", js)
	}
	if !p.UpdatedAt.IsZero() {
		set("updated_at", p.UpdatedAt.UTC())
	}
	if len(sets) == 0 {
		return repo.GetCourse(ctx, id)
	}

	args = append(args, id)
	q := fmt.Sprintf(
		"UPDATE courses SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), courseColumns,
	)
	var row courseRow
	if err := repo.db.GetContext(ctx, &row, q, args...); err != nil {
		return course.Course{}, trapNoRowsErr(err, course.ErrNotFound, "patching course")
	}
	return row.course()
}

func (repo *courseRepository) DeleteCourse(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.ErrNotFound
	}
	return nil
}
