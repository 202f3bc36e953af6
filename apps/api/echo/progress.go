package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/berkanmatematik/platform/core/progress"
)

type progressApi struct {
	svc progress.Service
}

func registerProgressAPI(g *echo.Group, authed []echo.MiddlewareFunc, svc progress.Service) {
	api := progressApi{svc: svc}

	g.GET("/courses/:id/progress", api.retrieve, authed...)
	g.POST("/courses/:id/progress/:lessonId/toggle", api.toggle, authed...)
	g.GET("/dashboard", api.dashboard, authed...)
}

// Handlers

func (api *progressApi) retrieve(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context session")
	}
	p, err := api.svc.Get(ctx.Request().Context(), sess.UserID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting progress")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *progressApi) toggle(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context session")
	}
	p, err := api.svc.ToggleLesson(ctx.Request().Context(), sess.UserID, ctx.Param("id"), ctx.Param("lessonId"))
	if err != nil {
		return errors.Wrap(err, "toggling lesson")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *progressApi) dashboard(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context session")
	}
	entries, err := api.svc.Dashboard(ctx.Request().Context(), sess.UserID)
	if err != nil {
		return errors.Wrap(err, "getting dashboard")
	}
	if entries == nil {
		entries = []progress.DashboardEntry{}
	}
	return ctx.JSON(http.StatusOK, entries)
}
