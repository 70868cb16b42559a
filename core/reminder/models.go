package reminder

import "time"

// Submission statuses
const (
	StatusPending   = "PENDING"
	StatusSubmitted = "SUBMITTED"
)

type Reminder struct {
	ID           string    `json:"id" db:"id"`
	AssignmentID string    `json:"-" db:"assignment_id"`
	Type         string    `json:"type" db:"type"`
	ReminderTime time.Time `json:"reminder_time" db:"reminder_time"` // UTC
	Sent         bool      `json:"sent" db:"sent"`
}

type Assignment struct {
	ID      string    `json:"id" db:"id"`
	Title   string    `json:"title" db:"title"`
	DueDate time.Time `json:"due_date" db:"due_date"` // UTC
}

// Student is a linked account with a pending submission for the assignment.
type Student struct {
	ID             string `json:"id" db:"id"`
	Name           string `json:"name" db:"name"`
	Email          string `json:"email" db:"email"`
	TelegramChatID string `json:"telegram_chat_id" db:"telegram_chat_id"`
}

type DueReminder struct {
	Reminder
	Assignment Assignment `json:"assignment"`
	Students   []Student  `json:"students"`
}

// Summary reports what a batch dispatch did.
type Summary struct {
	Reminders int `json:"reminders"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
}
