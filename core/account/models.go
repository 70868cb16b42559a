package account

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// Roles
const (
	RoleStudent = "STUDENT"
	RoleTeacher = "TEACHER"
)

type Account struct {
	ID             string      `json:"id" db:"id"`
	Name           string      `json:"name" db:"name"`
	Email          string      `json:"email" db:"email"`
	Role           string      `json:"role" db:"role"`
	TelegramLinked bool        `json:"telegram_linked" db:"telegram_linked"`
	TelegramChatID null.String `json:"telegram_chat_id" db:"telegram_chat_id"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"` // UTC
}

func (a Account) IsTeacher() bool {
	return a.Role == RoleTeacher
}

func (a Account) IsStudent() bool {
	return a.Role == RoleStudent
}

// HasTelegram reports whether messages can currently be addressed to the account on Telegram.
func (a Account) HasTelegram() bool {
	return a.TelegramLinked && a.TelegramChatID.Valid && a.TelegramChatID.String != ""
}

// LinkedToOtherChat reports whether the account is already bound to a chat other than chatID.
func (a Account) LinkedToOtherChat(chatID string) bool {
	return a.HasTelegram() && a.TelegramChatID.String != chatID
}
