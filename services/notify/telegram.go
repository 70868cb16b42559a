package notifysvc

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/taskbell/core"
	"github.com/trezcool/taskbell/core/account"
	"github.com/trezcool/taskbell/core/notification"
)

const (
	TelegramChannelName = "telegram"
	defaultTelegramAPI  = "https://api.telegram.org"
	defaultTimeout      = 5 * time.Second
)

const notConfirmedDetail = "telegram did not confirm delivery"

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// TelegramChannel posts messages through the Telegram Bot API sendMessage method.
type TelegramChannel struct {
	token  string
	apiURL string
	client *rest.Client
}

var _ notification.Channel = (*TelegramChannel)(nil)

func NewTelegramChannel(conf core.TelegramConfig) *TelegramChannel {
	apiURL := strings.TrimRight(conf.APIURL, "/")
	if apiURL == "" {
		apiURL = defaultTelegramAPI
	}
	timeout := conf.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &TelegramChannel{
		token:  strings.TrimSpace(conf.BotToken),
		apiURL: apiURL,
		client: &rest.Client{HTTPClient: &http.Client{Timeout: timeout}},
	}
}

func (ch *TelegramChannel) Name() string {
	return TelegramChannelName
}

func (ch *TelegramChannel) Deliver(ctx context.Context, acc account.Account, message string) (bool, error) {
	if ch.token == "" {
		return false, &notification.ConfigurationError{Channel: TelegramChannelName, Setting: "bot token"}
	}
	if !acc.HasTelegram() {
		return false, nil
	}

	body, err := json.Marshal(map[string]string{
		"chat_id": acc.TelegramChatID.String,
		"text":    message,
	})
	if err != nil {
		return false, errors.Wrap(err, "encoding telegram message")
	}
	req := rest.Request{
		Method:  rest.Post,
		BaseURL: ch.apiURL + "/bot" + ch.token + "/sendMessage",
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    body,
	}

	res, err := ch.client.SendWithContext(ctx, req)
	if err != nil {
		// the request URL carries the bot token
		return false, errors.New(strings.ReplaceAll(err.Error(), ch.token, "<token>"))
	}

	var tr telegramResponse
	_ = json.Unmarshal([]byte(res.Body), &tr)
	if !tr.OK {
		if tr.Description != "" {
			return false, errors.Errorf("telegram: %s", tr.Description)
		}
		return false, errors.New(notConfirmedDetail)
	}
	return true, nil
}
