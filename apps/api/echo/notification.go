package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/taskbell/core"
	"github.com/trezcool/taskbell/core/notification"
)

type (
	TestNotificationRequest struct {
		Message string `json:"message" validate:"required,notblank"`
		Channel string `json:"channel"`
	}

	SentResponse struct {
		Sent bool `json:"sent"`
	}

	notificationApi struct {
		svc      *notification.Service
		validate *validator.Validate
	}
)

func registerNotificationAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *notification.Service, validate *validator.Validate) {
	api := notificationApi{
		svc:      svc,
		validate: validate,
	}

	ng := g.Group("/notifications", jwt)
	ng.POST("/test", api.sendTest)
	ng.GET("/records", api.queryRecords, teacherMiddleware)
}

// Handlers

func (api *notificationApi) sendTest(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data TestNotificationRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TestNotificationRequest")
	}
	if err = api.validate.Struct(data); err != nil {
		return err
	}

	sent, err := api.svc.DispatchToAccount(
		ctx.Request().Context(),
		claims.Subject,
		data.Message,
		core.OptionalString(data.Channel),
		nil, /* relatedID */
	)
	if err != nil {
		return errors.Wrap(err, "dispatching test notification")
	}
	return ctx.JSON(http.StatusOK, SentResponse{Sent: sent})
}

func (api *notificationApi) queryRecords(ctx echo.Context) error {
	var filter notification.RecordFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to RecordFilter")
	}
	filter.Clean()
	if err := api.validate.Struct(filter); err != nil {
		return err
	}

	var ord Ordering
	ord.Bind(ctx)
	if err := ord.Check(notification.RecordOrderingFields); err != nil {
		return err
	}

	recs, err := api.svc.QueryRecords(ctx.Request().Context(), &filter, ord.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying delivery records")
	}
	return ctx.JSON(http.StatusOK, recs)
}
