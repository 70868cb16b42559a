package account

import (
	"context"
	"errors"

	"github.com/trezcool/taskbell/core"
)

var (
	// errors
	ErrNotFound    = errors.New("account not found")
	ErrChatIDTaken = errors.New("chat id is bound to another account")
)

// Repository is the account store. Accounts are owned by the wider application;
// this module only reads them and updates their channel linkage.
type Repository interface {
	CreateAccount(ctx context.Context, acc Account, exec ...core.DBExecutor) (Account, error)
	GetAccount(ctx context.Context, id string, exec ...core.DBExecutor) (Account, error)
	// GetAccountByTelegramChatID returns ErrNotFound when no account is bound to chatID.
	GetAccountByTelegramChatID(ctx context.Context, chatID string, exec ...core.DBExecutor) (Account, error)
	// UpdateTelegramLinkage returns ErrChatIDTaken when the storage uniqueness constraint on the chat id fails.
	UpdateTelegramLinkage(ctx context.Context, id, chatID string, linked bool, exec ...core.DBExecutor) error
}
