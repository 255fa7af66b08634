package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/adapt/core"
	"github.com/trezcool/adapt/core/sharedlib"
)

type sharedLibApi struct {
	svc      sharedlib.Service
	conf     *core.Config
	validate *validator.Validate
}

func registerSharedLibAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := sharedLibApi{
		svc:      deps.SharedLibSvc,
		conf:     deps.Conf,
		validate: deps.Validate,
	}

	sg := g.Group("/sharedlib/course_codes")

	sg.GET("", api.listCourseCodes)
	sg.GET("/:category/courses", api.listCourses)
	sg.GET("/:category/courses/:course/files", api.listFiles)

	sg.POST("/add", api.createCourseCode, jwt, adminMiddleware())
	sg.POST("/:category/remove", api.deleteCourseCode, jwt, adminMiddleware())

	sg.POST("/:category/courses/add", api.createCourse, jwt)
	sg.POST("/:category/courses/:course/remove", api.deleteCourse, jwt)
	sg.POST("/:category/courses/:course/files/add", api.createFile, jwt, uploadBodyLimit(deps.Conf))
	sg.POST("/:category/courses/:course/files/:file/remove", api.deleteFile, jwt)
}

func (api *sharedLibApi) listCourseCodes(ctx echo.Context) error {
	codes, err := api.svc.CourseCodes(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying course codes")
	}
	return ctx.JSON(http.StatusOK, codes)
}

func (api *sharedLibApi) createCourseCode(ctx echo.Context) error {
	var data sharedlib.NewCourseCode
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourseCode")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cc, err := api.svc.CreateCourseCode(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course code")
	}
	return ctx.JSON(http.StatusCreated, cc)
}

func (api *sharedLibApi) deleteCourseCode(ctx echo.Context) error {
	if err := api.svc.DeleteCourseCode(ctx.Request().Context(), ctx.Param("category")); err != nil {
		return errors.Wrap(err, "deleting course code")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// listCourses takes the course code ID; the write endpoints below address
// codes and courses by name.
func (api *sharedLibApi) listCourses(ctx echo.Context) error {
	courses, err := api.svc.Courses(ctx.Request().Context(), ctx.Param("category"))
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *sharedLibApi) createCourse(ctx echo.Context) error {
	var data sharedlib.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	course, err := api.svc.CreateCourse(ctx.Request().Context(), ctx.Param("category"), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, course)
}

func (api *sharedLibApi) deleteCourse(ctx echo.Context) error {
	if err := api.svc.DeleteCourse(ctx.Request().Context(), ctx.Param("category"), ctx.Param("course")); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *sharedLibApi) listFiles(ctx echo.Context) error {
	files, err := api.svc.Files(ctx.Request().Context(), ctx.Param("course"))
	if err != nil {
		return errors.Wrap(err, "querying course files")
	}
	return ctx.JSON(http.StatusOK, files)
}

func (api *sharedLibApi) createFile(ctx echo.Context) error {
	up, err := bindUpload(ctx, api.conf)
	if err != nil {
		return err
	}
	// the file itself is mandatory in this domain
	if up == nil {
		return core.NewValidationError(nil, core.FieldError{Field: "file", Error: "this field is required"})
	}
	data := sharedlib.NewCourseFile{Title: ctx.FormValue("title")}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	cf, err := api.svc.CreateFile(ctx.Request().Context(), ctx.Param("course"), data, *up)
	if err != nil {
		return errors.Wrap(err, "creating course file")
	}
	return ctx.JSON(http.StatusCreated, cf)
}

func (api *sharedLibApi) deleteFile(ctx echo.Context) error {
	if err := api.svc.DeleteFile(ctx.Request().Context(), ctx.Param("course"), ctx.Param("file")); err != nil {
		return errors.Wrap(err, "deleting course file")
	}
	return ctx.NoContent(http.StatusNoContent)
}
