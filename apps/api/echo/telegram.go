package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/taskbell/core/link"
)

type (
	LinkTokenResponse struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}

	LinkedResponse struct {
		Linked bool `json:"linked"`
	}

	telegramApi struct {
		svc *link.Service
	}
)

func registerTelegramAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *link.Service) {
	api := telegramApi{svc: svc}

	tg := g.Group("/telegram")

	// un-authed: the token is the credential
	tg.POST("/link", api.link)

	tg.POST("/link-token", api.createLinkToken, jwt)
}

// Handlers

func (api *telegramApi) createLinkToken(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	lt, err := api.svc.Issue(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "issuing link token")
	}
	return ctx.JSON(http.StatusCreated, LinkTokenResponse{Token: lt.Token, ExpiresAt: lt.ExpiresAt})
}

func (api *telegramApi) link(ctx echo.Context) error {
	var data link.RedeemToken
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RedeemToken")
	}

	linked, err := api.svc.Redeem(ctx.Request().Context(), data.Token, data.ChatID)
	if err != nil {
		return errors.Wrap(err, "redeeming link token")
	}
	return ctx.JSON(http.StatusOK, LinkedResponse{Linked: linked})
}
