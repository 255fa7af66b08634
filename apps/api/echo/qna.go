package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/adapt/core"
	"github.com/trezcool/adapt/core/qna"
)

type qnaApi struct {
	svc      qna.Service
	conf     *core.Config
	validate *validator.Validate
}

func registerQnAAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := qnaApi{
		svc:      deps.QnASvc,
		conf:     deps.Conf,
		validate: deps.Validate,
	}

	qg := g.Group("/qna/categories")

	qg.GET("", api.listCategories)
	qg.GET("/:category/questions", api.listQuestions)

	qg.POST("/add", api.createCategory, jwt, adminMiddleware())
	qg.DELETE("/:category/remove", api.deleteCategory, jwt, adminMiddleware())

	qg.POST("/:category/questions", api.createQuestion, jwt, uploadBodyLimit(deps.Conf))
	qg.DELETE("/:category/questions/:id", api.deleteQuestion, jwt)
	qg.GET("/:category/questions/:id/answers", api.listAnswers, jwt)
	qg.POST("/:category/answers", api.createAnswer, jwt, uploadBodyLimit(deps.Conf))
	qg.DELETE("/:category/answers/:id", api.deleteAnswer, jwt)
}

func (api *qnaApi) listCategories(ctx echo.Context) error {
	names, err := api.svc.Categories(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying categories")
	}
	return ctx.JSON(http.StatusOK, names)
}

func (api *qnaApi) createCategory(ctx echo.Context) error {
	var data qna.NewCategory
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

func (api *qnaApi) deleteCategory(ctx echo.Context) error {
	if err := api.svc.DeleteCategory(ctx.Request().Context(), ctx.Param("category")); err != nil {
		return errors.Wrap(err, "deleting category")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *qnaApi) listQuestions(ctx echo.Context) error {
	questions, err := api.svc.Questions(ctx.Request().Context(), ctx.Param("category"))
	if err != nil {
		return errors.Wrap(err, "querying questions")
	}
	return ctx.JSON(http.StatusOK, questions)
}

func (api *qnaApi) createQuestion(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	up, err := bindUpload(ctx, api.conf)
	if err != nil {
		return err
	}
	data := qna.NewQuestion{Text: ctx.FormValue("text")}
	if err = data.Validate(api.validate, up != nil); err != nil {
		return err
	}

	q, err := api.svc.CreateQuestion(ctx.Request().Context(), ctx.Param("category"), data, up, claims.Subject, originSocket(ctx))
	if err != nil {
		return errors.Wrap(err, "creating question")
	}
	return ctx.JSON(http.StatusCreated, q)
}

func (api *qnaApi) deleteQuestion(ctx echo.Context) error {
	if err := api.svc.DeleteQuestion(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting question")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *qnaApi) listAnswers(ctx echo.Context) error {
	answers, err := api.svc.Answers(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying answers")
	}
	return ctx.JSON(http.StatusOK, answers)
}

func (api *qnaApi) createAnswer(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	up, err := bindUpload(ctx, api.conf)
	if err != nil {
		return err
	}
	data := qna.NewAnswer{
		QuestionID: ctx.FormValue("question_id"),
		Text:       ctx.FormValue("text"),
	}
	if err = data.Validate(api.validate, up != nil); err != nil {
		return err
	}

	ans, err := api.svc.CreateAnswer(ctx.Request().Context(), ctx.Param("category"), data, up, claims.Subject, originSocket(ctx))
	if err != nil {
		return errors.Wrap(err, "creating answer")
	}
	return ctx.JSON(http.StatusCreated, ans)
}

func (api *qnaApi) deleteAnswer(ctx echo.Context) error {
	if err := api.svc.DeleteAnswer(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting answer")
	}
	return ctx.NoContent(http.StatusNoContent)
}
