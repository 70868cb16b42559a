// Package testutil prepares throwaway sqlite databases and fixtures for package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/taskbell/core/account"
	"github.com/trezcool/taskbell/core/reminder"
	"github.com/trezcool/taskbell/storage/database"
)

// PrepareDB opens a migrated sqlite database living in the test's temp dir.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	goose.SetLogger(goose.NopLogger())
	if err = database.Migrate(db, "up"); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

func CreateAccount(t *testing.T, repo account.Repository, name, email, role, chatID string) account.Account {
	t.Helper()

	acc := account.Account{
		Name:           name,
		Email:          email,
		Role:           role,
		TelegramLinked: chatID != "",
		TelegramChatID: null.NewString(chatID, chatID != ""),
		CreatedAt:      time.Now().UTC(),
	}
	acc, err := repo.CreateAccount(context.Background(), acc)
	if err != nil {
		t.Fatalf("CreateAccount() failed: %v", err)
	}
	return acc
}

func CreateAssignment(t *testing.T, db *sqlx.DB, title string, dueDate time.Time) reminder.Assignment {
	t.Helper()

	asg := reminder.Assignment{ID: uuid.NewString(), Title: title, DueDate: dueDate.UTC()}
	q := db.Rebind(`INSERT INTO assignments (id, title, due_date) VALUES (?, ?, ?)`)
	if _, err := db.Exec(q, asg.ID, asg.Title, asg.DueDate); err != nil {
		t.Fatalf("CreateAssignment() failed: %v", err)
	}
	return asg
}

func CreateSubmission(t *testing.T, db *sqlx.DB, assignmentID, studentID, status string) {
	t.Helper()

	q := db.Rebind(`INSERT INTO submissions (id, assignment_id, student_id, status) VALUES (?, ?, ?, ?)`)
	if _, err := db.Exec(q, uuid.NewString(), assignmentID, studentID, status); err != nil {
		t.Fatalf("CreateSubmission() failed: %v", err)
	}
}

func CreateReminder(t *testing.T, db *sqlx.DB, assignmentID, typ string, at time.Time, sent bool) reminder.Reminder {
	t.Helper()

	rem := reminder.Reminder{
		ID:           uuid.NewString(),
		AssignmentID: assignmentID,
		Type:         typ,
		ReminderTime: at.UTC(),
		Sent:         sent,
	}
	q := db.Rebind(`INSERT INTO reminders (id, assignment_id, type, reminder_time, sent) VALUES (?, ?, ?, ?, ?)`)
	if _, err := db.Exec(q, rem.ID, rem.AssignmentID, rem.Type, rem.ReminderTime, rem.Sent); err != nil {
		t.Fatalf("CreateReminder() failed: %v", err)
	}
	return rem
}
