package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/taskbell/apps/shared"
	"github.com/trezcool/taskbell/core/account"
	"github.com/trezcool/taskbell/core/notification"
	"github.com/trezcool/taskbell/core/reminder"
	"github.com/trezcool/taskbell/services/logger"
	"github.com/trezcool/taskbell/services/notify"
	"github.com/trezcool/taskbell/storage/database/sqlx"
	"github.com/trezcool/taskbell/testutil"
)

type cliTest struct {
	name    string
	args    []string // without program name
	wantErr error
	wantOut string
}

func setup(t *testing.T) (*commandLine, *notifysvc.ConsoleChannel, *bytes.Buffer) {
	db := testutil.PrepareDB(t)
	console := notifysvc.NewConsoleChannel(&bytes.Buffer{})
	logger := logsvc.NewNopLogger()

	accRepo := sqlxrepos.NewAccountRepository(db)
	notifSvc := notification.NewService(notification.NewRegistry(console), sqlxrepos.NewDeliveryRepository(db), accRepo, logger)
	out := &bytes.Buffer{}
	return &commandLine{
		db: db,
		svcs: &shared.Services{
			AccountRepo:     accRepo,
			NotificationSvc: notifSvc,
			ReminderSvc:     reminder.NewService(sqlxrepos.NewReminderRepository(db), notifSvc, logger),
		},
		out: out,
	}, console, out
}

func runCLITests(t *testing.T, cli *commandLine, out *bytes.Buffer, tests []cliTest) {
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			err := cli.run(args)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, errors.Cause(err))
				return
			}
			require.NoError(t, err)
			if tt.wantOut != "" {
				assert.Contains(t, out.String(), tt.wantOut)
			}
		})
	}
}

func Test_commandLine_usage(t *testing.T) {
	cli, _, out := setup(t)

	runCLITests(t, cli, out, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "migrate: no subcommand", args: []string{"migrate"}, wantErr: errHelp},
	})
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _, out := setup(t)

	var gotCmd string
	var gotArgs []string
	migrateFunc = func(_ *sqlx.DB, command string, args ...string) error {
		gotCmd, gotArgs = command, args
		return nil
	}

	require.NoError(t, cli.run([]string{"admin", "migrate", "up-to", "2"}))
	assert.Equal(t, "up-to", gotCmd)
	assert.Equal(t, []string{"2"}, gotArgs)
	assert.Empty(t, out.String())

	require.NoError(t, cli.run([]string{"admin", "migrate", "status"}))
	assert.Equal(t, "status", gotCmd)
	assert.Empty(t, gotArgs)
}

func Test_commandLine_send(t *testing.T) {
	cli, console, out := setup(t)
	acc := testutil.CreateAccount(t, cli.svcs.AccountRepo, "Ada", "ada@test.cd", account.RoleStudent, "11")

	runCLITests(t, cli, out, []cliTest{
		{name: "no args", args: []string{"send"}, wantErr: errHelp},
		{name: "no message", args: []string{"send", "-account", acc.ID}, wantErr: errHelp},
		{name: "bad flag", args: []string{"send", "-lol"}, wantErr: errHelp},
		{name: "account not found", args: []string{"send", "-account", "missing", "-message", "hi"}, wantErr: account.ErrNotFound},
		{name: "unknown channel", args: []string{"send", "-account", acc.ID, "-message", "hi", "-channel", "sms"}, wantErr: notification.ErrChannelUnavailable},
		{name: "sent", args: []string{"send", "-account", acc.ID, "-message", "hello"}, wantOut: "sent"},
		{name: "sent through named channel", args: []string{"send", "-account", " " + acc.ID + " ", "-message", "again", "-channel", "console"}, wantOut: "sent"},
	})

	assert.Equal(t, []string{"hello", "again"}, console.Sent)

	recs, err := cli.svcs.NotificationSvc.QueryRecords(context.Background(), &notification.RecordFilter{AccountID: acc.ID}, nil)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func Test_commandLine_remind(t *testing.T) {
	cli, console, out := setup(t)

	stud := testutil.CreateAccount(t, cli.svcs.AccountRepo, "Ada", "ada@test.cd", account.RoleStudent, "11")
	asg := testutil.CreateAssignment(t, cli.db, "Essay", time.Now().Add(24*time.Hour))
	testutil.CreateSubmission(t, cli.db, asg.ID, stud.ID, reminder.StatusPending)
	testutil.CreateReminder(t, cli.db, asg.ID, "DAY_BEFORE", time.Now().Add(-time.Minute), false)

	runCLITests(t, cli, out, []cliTest{
		{name: "bad flag", args: []string{"remind", "-lol"}, wantErr: errHelp},
		{name: "unknown channel", args: []string{"remind", "-channel", "smss"}, wantErr: notification.ErrChannelUnavailable},
		{name: "dispatch", args: []string{"remind"}, wantOut: "reminders: 1, sent: 1, failed: 0"},
		{name: "nothing left", args: []string{"remind", "-channel", "console"}, wantOut: "reminders: 0, sent: 0, failed: 0"},
	})

	require.Len(t, console.Sent, 1)
	assert.Contains(t, console.Sent[0], `"Essay"`)
}
