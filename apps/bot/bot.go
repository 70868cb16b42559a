package main

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	tele "gopkg.in/telebot.v4"

	"github.com/trezcool/taskbell/core"
	"github.com/trezcool/taskbell/core/link"
)

const (
	replyUsage           = "Open Taskbell, generate a Telegram link code, then send it here as: /start <code>"
	replyLinked          = "Your Telegram account is now linked. Assignment reminders will be sent to this chat."
	replyInvalidToken    = "This link code is invalid or was already used. Please generate a new one."
	replyExpiredToken    = "This link code has expired. Please generate a new one."
	replyChatTaken       = "This chat is already linked to another Taskbell account."
	replyLinkedElsewhere = "Your Taskbell account is already linked to a different Telegram chat."
	replyFailure         = "Something went wrong while linking your account. Please try again later."
)

// Redeemer is satisfied by *link.Service.
type Redeemer interface {
	Redeem(ctx context.Context, token, chatID string) (bool, error)
}

// startReply redeems payload for chatID and returns the text to answer with.
func startReply(ctx context.Context, redeemer Redeemer, logger core.Logger, payload string, chatID int64) string {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return replyUsage
	}

	_, err := redeemer.Redeem(ctx, payload, strconv.FormatInt(chatID, 10))
	switch errors.Cause(err) {
	case nil:
		return replyLinked
	case link.ErrInvalidInput, link.ErrInvalidOrUsedToken:
		return replyInvalidToken
	case link.ErrTokenExpired:
		return replyExpiredToken
	case link.ErrChatAlreadyLinked:
		return replyChatTaken
	case link.ErrAccountLinkedElsewhere:
		return replyLinkedElsewhere
	default:
		logger.Error("redeeming link token from bot", err, map[string]interface{}{"chat_id": chatID})
		return replyFailure
	}
}

func newBot(conf core.TelegramConfig, redeemer Redeemer, logger core.Logger) (*tele.Bot, error) {
	if strings.TrimSpace(conf.BotToken) == "" {
		return nil, errors.New("telegram bot token is not configured")
	}
	settings := tele.Settings{
		Token:  conf.BotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			logger.Error("telegram bot", err)
		},
	}
	if conf.APIURL != "" {
		settings.URL = conf.APIURL
	}

	b, err := tele.NewBot(settings)
	if err != nil {
		return nil, errors.Wrap(err, "creating telegram bot")
	}

	b.Handle("/start", func(c tele.Context) error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return c.Send(startReply(ctx, redeemer, logger, c.Message().Payload, c.Chat().ID))
	})
	b.Handle("/help", func(c tele.Context) error {
		return c.Send(replyUsage)
	})
	return b, nil
}
