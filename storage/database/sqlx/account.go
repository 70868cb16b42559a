package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/taskbell/core"
	"github.com/trezcool/taskbell/core/account"
)

const accountColumns = "id, name, email, role, telegram_linked, telegram_chat_id, created_at"

type accountRepository struct {
	db core.DBExecutor
}

var _ account.Repository = (*accountRepository)(nil) // interface compliance check

func NewAccountRepository(db core.DBExecutor) account.Repository {
	return &accountRepository{db: db}
}

func (repo *accountRepository) CreateAccount(ctx context.Context, acc account.Account, exec ...core.DBExecutor) (account.Account, error) {
	if acc.ID == "" {
		acc.ID = uuid.NewString()
	}
	if acc.CreatedAt.IsZero() {
		acc.CreatedAt = time.Now().UTC()
	}

	db := getExec(repo.db, exec)
	q := db.Rebind(`INSERT INTO accounts (` + accountColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err := db.ExecContext(
		ctx, q,
		acc.ID, acc.Name, acc.Email, acc.Role, acc.TelegramLinked, acc.TelegramChatID, acc.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return account.Account{}, account.ErrChatIDTaken
		}
		return account.Account{}, errors.Wrap(err, "inserting account")
	}
	return acc, nil
}

func (repo *accountRepository) GetAccount(ctx context.Context, id string, exec ...core.DBExecutor) (account.Account, error) {
	return repo.getBy(ctx, "id", id, exec)
}

func (repo *accountRepository) GetAccountByTelegramChatID(ctx context.Context, chatID string, exec ...core.DBExecutor) (account.Account, error) {
	return repo.getBy(ctx, "telegram_chat_id", chatID, exec)
}

func (repo *accountRepository) getBy(ctx context.Context, column, value string, exec []core.DBExecutor) (account.Account, error) {
	db := getExec(repo.db, exec)
	var acc account.Account
	q := db.Rebind(`SELECT ` + accountColumns + ` FROM accounts WHERE ` + column + ` = ?`)
	if err := sqlxGet(ctx, db, &acc, q, value); err != nil {
		return account.Account{}, trapNoRowsErr(err, account.ErrNotFound)
	}
	acc.CreatedAt = acc.CreatedAt.UTC()
	return acc, nil
}

func (repo *accountRepository) UpdateTelegramLinkage(ctx context.Context, id, chatID string, linked bool, exec ...core.DBExecutor) error {
	db := getExec(repo.db, exec)
	q := db.Rebind(`UPDATE accounts SET telegram_chat_id = ?, telegram_linked = ? WHERE id = ?`)
	res, err := db.ExecContext(ctx, q, null.NewString(chatID, chatID != ""), linked, id)
	if err != nil {
		if isUniqueViolation(err) {
			return account.ErrChatIDTaken
		}
		return errors.Wrap(err, "updating account linkage")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "updating account linkage")
	}
	if n == 0 {
		return account.ErrNotFound
	}
	return nil
}
