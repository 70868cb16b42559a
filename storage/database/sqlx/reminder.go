package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/taskbell/core"
	"github.com/trezcool/taskbell/core/reminder"
)

type reminderRepository struct {
	db core.DBExecutor
}

var _ reminder.Repository = (*reminderRepository)(nil) // interface compliance check

func NewReminderRepository(db core.DBExecutor) reminder.Repository {
	return &reminderRepository{db: db}
}

type dueReminderRow struct {
	reminder.Reminder
	Title   string    `db:"title"`
	DueDate time.Time `db:"due_date"`
}

type pendingStudentRow struct {
	AssignmentID string `db:"assignment_id"`
	reminder.Student
}

func (repo *reminderRepository) QueryDueReminders(ctx context.Context, now time.Time, exec ...core.DBExecutor) ([]reminder.DueReminder, error) {
	db := getExec(repo.db, exec)

	var rows []dueReminderRow
	q := db.Rebind(`
		SELECT r.id, r.assignment_id, r.type, r.reminder_time, r.sent, a.title, a.due_date
		FROM reminders r
		JOIN assignments a ON a.id = r.assignment_id
		WHERE r.sent = ? AND r.reminder_time <= ? AND EXISTS (
			SELECT 1 FROM submissions s
			JOIN accounts acc ON acc.id = s.student_id
			WHERE s.assignment_id = r.assignment_id
				AND s.status = ?
				AND acc.telegram_linked = ?
				AND acc.telegram_chat_id IS NOT NULL
		)
		ORDER BY r.reminder_time ASC, r.id`)
	if err := sqlxSelect(ctx, db, &rows, q, false, now.UTC(), reminder.StatusPending, true); err != nil {
		return nil, errors.Wrap(err, "selecting due reminders")
	}
	if len(rows) == 0 {
		return []reminder.DueReminder{}, nil
	}

	asgIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		asgIDs = append(asgIDs, row.AssignmentID)
	}
	sq, args, err := sqlx.In(`
		SELECT s.assignment_id, acc.id, acc.name, acc.email, acc.telegram_chat_id
		FROM submissions s
		JOIN accounts acc ON acc.id = s.student_id
		WHERE s.assignment_id IN (?)
			AND s.status = ?
			AND acc.telegram_linked = ?
			AND acc.telegram_chat_id IS NOT NULL
		ORDER BY acc.name, acc.id`, asgIDs, reminder.StatusPending, true)
	if err != nil {
		return nil, errors.Wrap(err, "building pending students query")
	}
	var students []pendingStudentRow
	if err = sqlxSelect(ctx, db, &students, db.Rebind(sq), args...); err != nil {
		return nil, errors.Wrap(err, "selecting pending students")
	}
	byAssignment := make(map[string][]reminder.Student, len(rows))
	for _, std := range students {
		byAssignment[std.AssignmentID] = append(byAssignment[std.AssignmentID], std.Student)
	}

	due := make([]reminder.DueReminder, 0, len(rows))
	for _, row := range rows {
		rem := row.Reminder
		rem.ReminderTime = rem.ReminderTime.UTC()
		due = append(due, reminder.DueReminder{
			Reminder: rem,
			Assignment: reminder.Assignment{
				ID:      row.AssignmentID,
				Title:   row.Title,
				DueDate: row.DueDate.UTC(),
			},
			Students: byAssignment[row.AssignmentID],
		})
	}
	return due, nil
}

func (repo *reminderRepository) GetReminder(ctx context.Context, id string, exec ...core.DBExecutor) (reminder.Reminder, error) {
	db := getExec(repo.db, exec)
	var rem reminder.Reminder
	q := db.Rebind(`SELECT id, assignment_id, type, reminder_time, sent FROM reminders WHERE id = ?`)
	if err := sqlxGet(ctx, db, &rem, q, id); err != nil {
		return reminder.Reminder{}, trapNoRowsErr(err, reminder.ErrNotFound)
	}
	rem.ReminderTime = rem.ReminderTime.UTC()
	return rem, nil
}

func (repo *reminderRepository) MarkSent(ctx context.Context, id string, exec ...core.DBExecutor) (reminder.Reminder, error) {
	db := getExec(repo.db, exec)
	res, err := db.ExecContext(ctx, db.Rebind(`UPDATE reminders SET sent = ? WHERE id = ?`), true, id)
	if err != nil {
		return reminder.Reminder{}, errors.Wrap(err, "marking reminder sent")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return reminder.Reminder{}, errors.Wrap(err, "marking reminder sent")
	}
	if n == 0 {
		return reminder.Reminder{}, reminder.ErrNotFound
	}
	return repo.GetReminder(ctx, id, db)
}
