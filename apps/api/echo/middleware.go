package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/berkanmatematik/platform/core/session"
)

// sessionMiddleware resolves the session of the JWT subject. Must run after the JWT middleware.
func sessionMiddleware(sessions *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			sess, err := sessions.Current(ctx.Request().Context(), claims.Subject, claims.Version)
			if err != nil {
				return errors.Wrap(err, "getting current session")
			}
			ctx.Set(contextSessionKey, sess)
			return next(ctx)
		}
	}
}

func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			sess, err := getContextSession(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context session")
			}
			if sess.IsAdmin {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}
