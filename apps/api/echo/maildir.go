package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/adapt/core/maildir"
)

type mailDirApi struct {
	svc      maildir.Service
	validate *validator.Validate
}

func registerMailDirAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := mailDirApi{
		svc:      deps.MailDirSvc,
		validate: deps.Validate,
	}

	mg := g.Group("/mail/categories")

	mg.GET("", api.listCategories)
	mg.GET("/:id/emails", api.listEmails)

	mg.POST("/add", api.createCategory, jwt, adminMiddleware())
	mg.DELETE("/:id/remove", api.deleteCategory, jwt, adminMiddleware())

	mg.POST("/:id/emails/add", api.createEmail, jwt)
	mg.DELETE("/:id/emails/:emailID/remove", api.deleteEmail, jwt)
}

func (api *mailDirApi) listCategories(ctx echo.Context) error {
	cats, err := api.svc.Categories(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying categories")
	}
	return ctx.JSON(http.StatusOK, cats)
}

func (api *mailDirApi) createCategory(ctx echo.Context) error {
	var data maildir.NewCategory
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCategory")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cat, err := api.svc.CreateCategory(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating category")
	}
	return ctx.JSON(http.StatusCreated, cat)
}

func (api *mailDirApi) deleteCategory(ctx echo.Context) error {
	if err := api.svc.DeleteCategory(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting category")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *mailDirApi) listEmails(ctx echo.Context) error {
	emails, err := api.svc.Emails(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying emails")
	}
	return ctx.JSON(http.StatusOK, emails)
}

func (api *mailDirApi) createEmail(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data maildir.NewEmail
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEmail")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	em, err := api.svc.CreateEmail(ctx.Request().Context(), ctx.Param("id"), data, claims.Subject)
	if err != nil {
		return errors.Wrap(err, "creating email")
	}
	return ctx.JSON(http.StatusCreated, em)
}

func (api *mailDirApi) deleteEmail(ctx echo.Context) error {
	if err := api.svc.DeleteEmail(ctx.Request().Context(), ctx.Param("emailID")); err != nil {
		return errors.Wrap(err, "deleting email")
	}
	return ctx.NoContent(http.StatusNoContent)
}
