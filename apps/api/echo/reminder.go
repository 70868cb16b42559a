package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/taskbell/core"
	"github.com/trezcool/taskbell/core/reminder"
)

type (
	DueRemindersResponse struct {
		Reminders []reminder.DueReminder `json:"reminders"`
	}

	ReminderStatus struct {
		ID   string `json:"id"`
		Sent bool   `json:"sent"`
	}

	ReminderResponse struct {
		Reminder ReminderStatus `json:"reminder"`
	}

	DispatchRequest struct {
		Channel string `json:"channel"`
	}

	reminderApi struct {
		svc *reminder.Service
	}
)

func registerReminderAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *reminder.Service) {
	api := reminderApi{svc: svc}

	rg := g.Group("/reminders", jwt, teacherMiddleware)
	rg.GET("/due", api.due)
	rg.POST("/dispatch", api.dispatch)
	rg.POST("/:id/mark-sent", api.markSent)
}

// Handlers

func (api *reminderApi) due(ctx echo.Context) error {
	due, err := api.svc.Due(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying due reminders")
	}
	return ctx.JSON(http.StatusOK, DueRemindersResponse{Reminders: due})
}

func (api *reminderApi) markSent(ctx echo.Context) error {
	rem, err := api.svc.MarkSent(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "marking reminder sent")
	}
	return ctx.JSON(http.StatusOK, ReminderResponse{Reminder: ReminderStatus{ID: rem.ID, Sent: rem.Sent}})
}

func (api *reminderApi) dispatch(ctx echo.Context) error {
	var data DispatchRequest
	if ctx.Request().ContentLength != 0 {
		if err := ctx.Bind(&data); err != nil {
			return errors.Wrap(err, "binding to DispatchRequest")
		}
	}

	sum, err := api.svc.DispatchDue(ctx.Request().Context(), core.OptionalString(data.Channel))
	if err != nil {
		return errors.Wrap(err, "dispatching due reminders")
	}
	return ctx.JSON(http.StatusOK, sum)
}
