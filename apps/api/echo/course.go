package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/berkanmatematik/platform/core/course"
)

const (
	defaultRecentLimit = 6
	maxRecentLimit     = 50
)

type courseApi struct {
	svc      course.Service
	validate *validator.Validate
}

func registerCourseAPI(
	g *echo.Group,
	authed []echo.MiddlewareFunc,
	svc course.Service,
	validate *validator.Validate,
) {
	api := courseApi{
		svc:      svc,
		validate: validate,
	}
	admin := append(append([]echo.MiddlewareFunc{}, authed...), adminMiddleware())

	gg := g.Group("/grades")
	gg.GET("", api.queryGrades)
	gg.GET("/:grade", api.retrieveGrade)

	g.GET("/contents/recent", api.recentVideos)

	cg := g.Group("/courses")
	cg.GET("", api.query)
	cg.POST("", api.create, admin...)
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update, admin...)
	cg.DELETE("/:id", api.destroy, admin...)
	cg.POST("/:id/content", api.addContent, admin...)
	cg.DELETE("/:id/content/:contentId", api.destroyContent, admin...)
}

// Handlers

func (api *courseApi) queryGrades(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, course.Grades)
}

func (api *courseApi) retrieveGrade(ctx echo.Context) error {
	grade, ok := course.ParseGrade(ctx.Param("grade"))
	if !ok {
		return errHttpNotFound
	}
	cat, err := api.svc.ByGrade(ctx.Request().Context(), grade)
	if err != nil {
		return errors.Wrap(err, "getting grade catalog")
	}
	return ctx.JSON(http.StatusOK, cat)
}

func (api *courseApi) recentVideos(ctx echo.Context) error {
	limit := intQueryParam(ctx, "limit", defaultRecentLimit)
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	videos, err := api.svc.RecentVideos(ctx.Request().Context(), limit)
	if err != nil {
		return errors.Wrap(err, "querying recent videos")
	}
	return ctx.JSON(http.StatusOK, videos)
}

func (api *courseApi) query(ctx echo.Context) error {
	var filter course.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []course.Course{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	courses, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	c, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	d, err := api.svc.Detail(ctx.Request().Context(), ctx.Param("id"), ctx.QueryParam("contentId"))
	if err != nil {
		return errors.Wrap(err, "getting course")
	}
	return ctx.JSON(http.StatusOK, d)
}

func (api *courseApi) update(ctx echo.Context) error {
	var data course.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	c, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) addContent(ctx echo.Context) error {
	var data course.NewContent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewContent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	item, err := api.svc.AddContent(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "adding content")
	}
	return ctx.JSON(http.StatusCreated, item)
}

func (api *courseApi) destroyContent(ctx echo.Context) error {
	if err := api.svc.DeleteContent(ctx.Request().Context(), ctx.Param("id"), ctx.Param("contentId")); err != nil {
		return errors.Wrap(err, "deleting content")
	}
	return ctx.NoContent(http.StatusNoContent)
}
