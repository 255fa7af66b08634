package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/adapt/core"
	"github.com/trezcool/adapt/core/lostfound"
	"github.com/trezcool/adapt/core/maildir"
	"github.com/trezcool/adapt/core/qna"
	"github.com/trezcool/adapt/core/sharedlib"
	"github.com/trezcool/adapt/core/user"
)

var (
	errUnauthorized    = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errInvalidAdminKey = echo.NewHTTPError(http.StatusForbidden, "invalid admin key")
	errHttpForbidden   = echo.NewHTTPError(http.StatusForbidden, "permission denied")
)

// statusFor maps domain sentinel errors to HTTP status codes. Zero means
// the error is not a known domain error.
func statusFor(err error) int {
	switch err {
	case user.ErrNotFound,
		qna.ErrCategoryNotFound, qna.ErrQuestionNotFound, qna.ErrAnswerNotFound,
		sharedlib.ErrCodeNotFound, sharedlib.ErrCourseNotFound, sharedlib.ErrFileNotFound,
		maildir.ErrCategoryNotFound, maildir.ErrEmailNotFound,
		lostfound.ErrPlaceNotFound, lostfound.ErrMessageNotFound, lostfound.ErrReplyNotFound:
		return http.StatusNotFound
	case user.ErrEmailExists,
		qna.ErrCategoryExists, sharedlib.ErrCodeExists, sharedlib.ErrCourseExists,
		maildir.ErrCategoryExists, lostfound.ErrPlaceExists, lostfound.ErrBadStatus,
		core.ErrUnsupportedType:
		return http.StatusBadRequest
	case core.ErrFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case core.ErrUploadTimeout:
		return http.StatusRequestTimeout
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
		default:
			if code = statusFor(origErr); code != 0 {
				message = origErr.Error()
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			var usr user.User
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				usr.ID = claims.Subject
				usr.Name = claims.Name
				usr.Email = claims.Email
			}
			logger.Error(msg, errors.Wrap(err, msg), usr)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
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
