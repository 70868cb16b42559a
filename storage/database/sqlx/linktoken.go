package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/taskbell/core"
	"github.com/trezcool/taskbell/core/link"
)

type linkTokenRepository struct {
	db core.DBExecutor
}

var _ link.Repository = (*linkTokenRepository)(nil) // interface compliance check

func NewLinkTokenRepository(db core.DBExecutor) link.Repository {
	return &linkTokenRepository{db: db}
}

func (repo *linkTokenRepository) DeleteTokensForAccount(ctx context.Context, accountID string, exec ...core.DBExecutor) error {
	db := getExec(repo.db, exec)
	if _, err := db.ExecContext(ctx, db.Rebind(`DELETE FROM link_tokens WHERE account_id = ?`), accountID); err != nil {
		return errors.Wrap(err, "deleting link tokens")
	}
	return nil
}

func (repo *linkTokenRepository) CreateToken(ctx context.Context, lt link.LinkToken, exec ...core.DBExecutor) (link.LinkToken, error) {
	db := getExec(repo.db, exec)
	q := db.Rebind(`
		INSERT INTO link_tokens (token, account_id, created_at, expires_at, consumed_at)
		VALUES (?, ?, ?, ?, ?)`)
	if _, err := db.ExecContext(ctx, q, lt.Token, lt.AccountID, lt.CreatedAt, lt.ExpiresAt, lt.ConsumedAt); err != nil {
		return link.LinkToken{}, errors.Wrap(err, "inserting link token")
	}
	return lt, nil
}

func (repo *linkTokenRepository) GetToken(ctx context.Context, token string, exec ...core.DBExecutor) (link.LinkToken, error) {
	db := getExec(repo.db, exec)
	var lt link.LinkToken
	q := db.Rebind(`SELECT token, account_id, created_at, expires_at, consumed_at FROM link_tokens WHERE token = ?`)
	if err := sqlxGet(ctx, db, &lt, q, token); err != nil {
		return link.LinkToken{}, trapNoRowsErr(err, link.ErrNotFound)
	}
	lt.CreatedAt = lt.CreatedAt.UTC()
	lt.ExpiresAt = lt.ExpiresAt.UTC()
	return lt, nil
}

func (repo *linkTokenRepository) ConsumeToken(ctx context.Context, token string, at time.Time, exec ...core.DBExecutor) (bool, error) {
	db := getExec(repo.db, exec)
	q := db.Rebind(`UPDATE link_tokens SET consumed_at = ? WHERE token = ? AND consumed_at IS NULL`)
	res, err := db.ExecContext(ctx, q, at.UTC(), token)
	if err != nil {
		return false, errors.Wrap(err, "consuming link token")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "consuming link token")
	}
	return n == 1, nil
}
