package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/taskbell/apps/api/echo"
	"github.com/trezcool/taskbell/apps/shared"
	"github.com/trezcool/taskbell/core"
	"github.com/trezcool/taskbell/core/account"
	"github.com/trezcool/taskbell/core/notification"
	"github.com/trezcool/taskbell/services/logger"
	"github.com/trezcool/taskbell/services/notify"
	"github.com/trezcool/taskbell/testutil"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type env struct {
	conf     *core.Config
	db       *sqlx.DB
	app      *echoapi.Server
	accRepo  account.Repository
	svcs     *shared.Services
	tgHits   *int32
	tgStatus *int32 // 0: ok, else the status replied with ok=false
}

func newConfig() *core.Config {
	return &core.Config{
		TestMode:         true,
		Env:              "TEST",
		AppName:          "Taskbell",
		SecretKey:        "test-secret",
		DefaultFromEmail: mail.Address{Name: "Taskbell", Address: "noreply@taskbell.test"},
		Server: core.ServerConfig{
			JWTExpirationDelta: time.Hour,
		},
	}
}

func setup(t *testing.T) *env {
	t.Helper()
	var hits, status int32

	tg := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if s := atomic.LoadInt32(&status); s != 0 {
			w.WriteHeader(int(s))
			_, _ = w.Write([]byte(`{"ok":false,"description":"Forbidden: bot was blocked by the user"}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(tg.Close)

	conf := newConfig()
	conf.Telegram = core.TelegramConfig{BotToken: "bot-token", APIURL: tg.URL}

	// set up DB & services
	db := testutil.PrepareDB(t)
	logger := logsvc.NewNopLogger()
	registry := notification.NewRegistry(notifysvc.NewTelegramChannel(conf.Telegram))
	svcs := shared.NewServices(conf, db, registry, logger)
	validate, translator := shared.NewValidator()

	// set up server
	app := echoapi.NewServer(echoapi.ServerDeps{
		Conf:            conf,
		Logger:          logger,
		DB:              db,
		NotificationSvc: svcs.NotificationSvc,
		LinkSvc:         svcs.LinkSvc,
		ReminderSvc:     svcs.ReminderSvc,
		Validate:        validate,
		Translator:      translator,
		DisableReqLogs:  true,
	})

	return &env{
		conf:     conf,
		db:       db,
		app:      app,
		accRepo:  svcs.AccountRepo,
		svcs:     svcs,
		tgHits:   &hits,
		tgStatus: &status,
	}
}

func (e *env) serve(req *http.Request, rec *httptest.ResponseRecorder) {
	e.app.ServeHTTP(rec, req)
}

func (e *env) createAccount(t *testing.T, name, role, chatID string) account.Account {
	return testutil.CreateAccount(t, e.accRepo, name, name+"@test.cd", role, chatID)
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, conf *core.Config, acc account.Account) string {
	token, err := echoapi.GenerateToken(echoapi.GetAccountClaims(acc, conf), conf.SecretKey)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, e *env, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			e.serve(req, rec)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if !assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), v)) {
		t.FailNow()
	}
}
