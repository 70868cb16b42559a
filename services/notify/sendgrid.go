package notifysvc

import (
	"context"
	"net/http"
	"net/mail"
	"strings"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/trezcool/taskbell/core"
	"github.com/trezcool/taskbell/core/account"
	"github.com/trezcool/taskbell/core/notification"
)

const (
	EmailChannelName = "email"
	sendgridEndpoint = "/v3/mail/send"
)

// EmailChannel delivers messages as plain text emails through SendGrid.
type EmailChannel struct {
	key        string
	host       string
	from       *sgmail.Email
	subjPrefix string
	client     *rest.Client
}

var _ notification.Channel = (*EmailChannel)(nil)

func NewEmailChannel(conf *core.Config) *EmailChannel {
	host := strings.TrimRight(conf.Sendgrid.Host, "/")
	if host == "" {
		host = "https://api.sendgrid.com"
	}
	return &EmailChannel{
		key:        conf.Sendgrid.APIKey,
		host:       host,
		from:       sgmail.NewEmail(conf.DefaultFromEmail.Name, conf.DefaultFromEmail.Address),
		subjPrefix: "[" + conf.AppName + "] ",
		client:     &rest.Client{HTTPClient: &http.Client{Timeout: defaultTimeout}},
	}
}

func (ch *EmailChannel) Name() string {
	return EmailChannelName
}

func (ch *EmailChannel) Deliver(ctx context.Context, acc account.Account, message string) (bool, error) {
	if ch.key == "" {
		return false, &notification.ConfigurationError{Channel: EmailChannelName, Setting: "sendgrid api key"}
	}
	addr, err := mail.ParseAddress(acc.Email)
	if err != nil {
		return false, nil
	}

	m := sgmail.NewSingleEmailPlainText(ch.from, ch.subjPrefix+"Notification", sgmail.NewEmail(acc.Name, addr.Address), message)
	req := sendgrid.GetRequest(ch.key, sendgridEndpoint, ch.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := ch.client.SendWithContext(ctx, req)
	if err != nil {
		return false, errors.Wrap(err, "sending email")
	}
	if res.StatusCode >= http.StatusBadRequest {
		return false, errors.Errorf("sendgrid: status %d: %s", res.StatusCode, res.Body)
	}
	return true, nil
}
