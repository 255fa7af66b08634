package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/adapt/core"
)

const socketIDHeader = "X-Socket-ID"

func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// uploadBodyLimit caps upload request bodies. Twice the max file size to
// leave room for the multipart envelope; the per-file ceiling is enforced
// separately by core.CheckUpload.
func uploadBodyLimit(conf *core.Config) echo.MiddlewareFunc {
	return middleware.BodyLimit(strconv.FormatInt(2*conf.Cloudinary.MaxFileSize, 10))
}

// originSocket returns the caller's socket ID so broadcasts can skip the
// originator. Empty when the client has no live connection.
func originSocket(ctx echo.Context) string {
	return ctx.Request().Header.Get(socketIDHeader)
}

// bindUpload extracts the optional multipart "file" part and enforces the
// upload policy. Returns nil when no file was sent.
func bindUpload(ctx echo.Context, conf *core.Config) (*core.Upload, error) {
	fh, err := ctx.FormFile("file")
	if err != nil {
		if errors.Cause(err) == http.ErrMissingFile || errors.Cause(err) == http.ErrNotMultipart {
			return nil, nil
		}
		return nil, errors.Wrap(err, "reading form file")
	}
	src, err := fh.Open()
	if err != nil {
		return nil, errors.Wrap(err, "opening form file")
	}

	up := &core.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Content:     src,
	}
	if err = core.CheckUpload(*up, conf.Cloudinary.MaxFileSize); err != nil {
		_ = src.Close()
		return nil, err
	}
	return up, nil
}
