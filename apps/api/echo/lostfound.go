package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/adapt/core"
	"github.com/trezcool/adapt/core/lostfound"
)

type lostFoundApi struct {
	svc      lostfound.Service
	conf     *core.Config
	validate *validator.Validate
}

func registerLostFoundAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := lostFoundApi{
		svc:      deps.LostFoundSvc,
		conf:     deps.Conf,
		validate: deps.Validate,
	}

	lg := g.Group("/lnf/places")

	lg.GET("", api.listPlaces)
	lg.GET("/:place/messages/:status", api.listMessages)

	lg.POST("/add", api.createPlace, jwt, adminMiddleware())
	lg.DELETE("/:place/remove", api.deletePlace, jwt, adminMiddleware())

	lg.POST("/:place/messages/:status", api.createMessage, jwt, uploadBodyLimit(deps.Conf))
	lg.DELETE("/:place/messages/:status/:id", api.deleteMessage, jwt)
	lg.POST("/:place/replies", api.listReplies, jwt)
	lg.POST("/:place/reply", api.createReply, jwt, uploadBodyLimit(deps.Conf))
}

func (api *lostFoundApi) listPlaces(ctx echo.Context) error {
	names, err := api.svc.Places(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying places")
	}
	return ctx.JSON(http.StatusOK, names)
}

func (api *lostFoundApi) createPlace(ctx echo.Context) error {
	var data lostfound.NewPlace
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPlace")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	pl, err := api.svc.CreatePlace(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating place")
	}
	return ctx.JSON(http.StatusCreated, pl)
}

func (api *lostFoundApi) deletePlace(ctx echo.Context) error {
	if err := api.svc.DeletePlace(ctx.Request().Context(), ctx.Param("place")); err != nil {
		return errors.Wrap(err, "deleting place")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *lostFoundApi) listMessages(ctx echo.Context) error {
	messages, err := api.svc.Messages(ctx.Request().Context(), ctx.Param("place"), ctx.Param("status"))
	if err != nil {
		return errors.Wrap(err, "querying messages")
	}
	return ctx.JSON(http.StatusOK, messages)
}

func (api *lostFoundApi) createMessage(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	up, err := bindUpload(ctx, api.conf)
	if err != nil {
		return err
	}
	data := lostfound.NewMessage{Text: ctx.FormValue("text")}
	if err = data.Validate(api.validate, up != nil); err != nil {
		return err
	}

	msg, err := api.svc.CreateMessage(ctx.Request().Context(), ctx.Param("place"), ctx.Param("status"), data, up, claims.Subject)
	if err != nil {
		return errors.Wrap(err, "creating message")
	}
	return ctx.JSON(http.StatusCreated, msg)
}

func (api *lostFoundApi) deleteMessage(ctx echo.Context) error {
	if err := api.svc.DeleteMessage(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting message")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// listReplies is a POST carrying the message ID in the body; replies are
// not addressable by URL.
func (api *lostFoundApi) listReplies(ctx echo.Context) error {
	var data RepliesRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RepliesRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	replies, err := api.svc.Replies(ctx.Request().Context(), data.MessageID)
	if err != nil {
		return errors.Wrap(err, "querying replies")
	}
	return ctx.JSON(http.StatusOK, replies)
}

func (api *lostFoundApi) createReply(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	up, err := bindUpload(ctx, api.conf)
	if err != nil {
		return err
	}
	data := lostfound.NewReply{
		MessageID: ctx.FormValue("message_id"),
		Text:      ctx.FormValue("text"),
	}
	if err = data.Validate(api.validate, up != nil); err != nil {
		return err
	}

	rep, err := api.svc.CreateReply(ctx.Request().Context(), data, up, claims.Subject, originSocket(ctx))
	if err != nil {
		return errors.Wrap(err, "creating reply")
	}
	return ctx.JSON(http.StatusCreated, rep)
}

type RepliesRequest struct {
	MessageID string `json:"message_id" validate:"required"`
}

func (rr *RepliesRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(rr)
}
