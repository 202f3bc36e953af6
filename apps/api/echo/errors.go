package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/berkanmatematik/platform/core"
	"github.com/berkanmatematik/platform/core/course"
	"github.com/berkanmatematik/platform/core/progress"
	"github.com/berkanmatematik/platform/core/session"
	"github.com/berkanmatematik/platform/core/user"
)

var (
	errUnauthorized  = echo.NewHTTPError(http.StatusUnauthorized, "Giriş yapmanız gerekiyor.")
	errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, "Bu işlem için yetkiniz yok.")
	errHttpNotFound  = echo.NewHTTPError(http.StatusNotFound, "Sayfa bulunamadı.")
)

// statusOf maps the domain sentinel errors to HTTP statuses; 0 means unknown.
func statusOf(err error) int {
	switch err {
	case course.ErrNotFound, course.ErrContentNotFound, user.ErrNotFound, progress.ErrLessonNotFound:
		return http.StatusNotFound
	case user.ErrInvalidCredentials:
		return http.StatusBadRequest
	case session.ErrRevoked:
		return http.StatusUnauthorized
	}
	return 0
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *core.WriteError:
			code = http.StatusInternalServerError
			message = origErr.Msg
			logError(ctx, logger, origErr.Msg, err)
		default:
			if code = statusOf(origErr); code != 0 {
				message = origErr.Error()
				break
			}
			// any other error is a server error
			code = http.StatusInternalServerError
			message = core.ErrUnexpected.Error()
			logError(ctx, logger, http.StatusText(code), err)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

func logError(ctx echo.Context, logger core.Logger, msg string, err error) {
	args := []interface{}{errors.Wrap(err, msg)}
	if sess, ok := ctx.Get(contextSessionKey).(session.Session); ok {
		args = append(args, sess.Person())
	}
	logger.Error(msg, args...)
}
