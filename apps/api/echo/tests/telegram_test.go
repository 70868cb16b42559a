package tests

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/taskbell/apps/api/echo"
	"github.com/trezcool/taskbell/core/account"
	"github.com/trezcool/taskbell/core/link"
)

func issueToken(t *testing.T, e *env, acc account.Account) echoapi.LinkTokenResponse {
	t.Helper()
	req, rec := newAuthRequest(http.MethodPost, "/v1/telegram/link-token", getToken(t, e.conf, acc))
	e.serve(req, rec)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var res echoapi.LinkTokenResponse
	decode(t, rec, &res)
	return res
}

func linkBody(t *testing.T, token, chatID string) []byte {
	return marchallObj(t, map[string]string{"token": token, "chat_id": chatID})
}

func Test_telegramApi_createLinkToken(t *testing.T) {
	e := setup(t)
	std := e.createAccount(t, "std", account.RoleStudent, "")

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/telegram/link-token")
		e.serve(req, rec)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
	})

	t.Run("token without subject", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/telegram/link-token", getToken(t, e.conf, account.Account{}))
		e.serve(req, rec)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "not authenticated"})}, rec)
	})

	t.Run("issues a token", func(t *testing.T) {
		before := time.Now().UTC()
		res := issueToken(t, e, std)
		assert.Len(t, res.Token, 48)
		assert.WithinDuration(t, before.Add(link.DefaultTTL), res.ExpiresAt, 5*time.Second)
	})

	t.Run("replaces the previous token", func(t *testing.T) {
		first := issueToken(t, e, std)
		second := issueToken(t, e, std)

		req, rec := newRequest(http.MethodPost, "/v1/telegram/link", linkBody(t, first.Token, "1"))
		e.serve(req, rec)
		checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "invalid or used token"})}, rec)

		req, rec = newRequest(http.MethodPost, "/v1/telegram/link", linkBody(t, second.Token, "1"))
		e.serve(req, rec)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: []byte(`{"linked":true}`)}, rec)
	})
}

func Test_telegramApi_link(t *testing.T) {
	e := setup(t)
	path := "/v1/telegram/link"

	taken := e.createAccount(t, "taken", account.RoleStudent, "500")
	std := e.createAccount(t, "std", account.RoleStudent, "")
	elsewhere := e.createAccount(t, "elsewhere", account.RoleStudent, "600")

	stdToken := issueToken(t, e, std)
	elsewhereToken := issueToken(t, e, elsewhere)

	tests := []httpTest{
		{
			name: "missing token", method: http.MethodPost, path: path, body: linkBody(t, "", "1"),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "token and chat id are required"}),
		},
		{
			name: "blank token", method: http.MethodPost, path: path, body: linkBody(t, "   ", "1"),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "token and chat id are required"}),
		},
		{
			name: "missing fields", method: http.MethodPost, path: path, body: []byte(`{}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "token and chat id are required"}),
		},
		{
			name: "missing chat id", method: http.MethodPost, path: path, body: linkBody(t, stdToken.Token, " "),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "token and chat id are required"}),
		},
		{
			name: "unknown token", method: http.MethodPost, path: path, body: linkBody(t, "nope", "1"),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "invalid or used token"}),
		},
		{
			name: "chat already linked", method: http.MethodPost, path: path, body: linkBody(t, stdToken.Token, "500"),
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "chat id already linked"}),
		},
		{
			name: "account linked elsewhere", method: http.MethodPost, path: path, body: linkBody(t, elsewhereToken.Token, "601"),
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "account already linked to a different chat"}),
		},
		{
			name: "links", method: http.MethodPost, path: path, body: linkBody(t, stdToken.Token, "700"),
			wantCode: http.StatusOK, wantData: []byte(`{"linked":true}`),
		},
		{
			name: "single use", method: http.MethodPost, path: path, body: linkBody(t, stdToken.Token, "700"),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "invalid or used token"}),
		},
		{
			name: "malformed body", method: http.MethodPost, path: path, body: []byte(`{"token":`),
			wantCode: http.StatusBadRequest,
		},
	}
	runHTTPTests(t, e, tests)

	acc, err := e.accRepo.GetAccount(context.Background(), std.ID)
	require.NoError(t, err)
	assert.True(t, acc.HasTelegram())
	assert.Equal(t, "700", acc.TelegramChatID.String)

	acc, err = e.accRepo.GetAccount(context.Background(), taken.ID)
	require.NoError(t, err)
	assert.Equal(t, "500", acc.TelegramChatID.String)
}

func Test_telegramApi_link_expired(t *testing.T) {
	e := setup(t)
	std := e.createAccount(t, "std", account.RoleStudent, "")

	link.NowFunc = func() time.Time { return time.Now().Add(-time.Hour) }
	res := issueToken(t, e, std)
	link.NowFunc = time.Now // reset

	req, rec := newRequest(http.MethodPost, "/v1/telegram/link", linkBody(t, res.Token, "1"))
	e.serve(req, rec)
	checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "token expired"})}, rec)
}
