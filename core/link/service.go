package link

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/taskbell/core"
	"github.com/trezcool/taskbell/core/account"
)

var (
	// errors
	ErrNotFound               = errors.New("link token not found")
	ErrUnauthenticated        = errors.New("not authenticated")
	ErrInvalidInput           = errors.New("token and chat id are required")
	ErrInvalidOrUsedToken     = errors.New("invalid or used token")
	ErrTokenExpired           = errors.New("token expired")
	ErrChatAlreadyLinked      = errors.New("chat id already linked")
	ErrAccountLinkedElsewhere = errors.New("account already linked to a different chat")
)

type (
	Repository interface {
		DeleteTokensForAccount(ctx context.Context, accountID string, exec ...core.DBExecutor) error
		CreateToken(ctx context.Context, lt LinkToken, exec ...core.DBExecutor) (LinkToken, error)
		// GetToken returns ErrNotFound for an unknown token.
		GetToken(ctx context.Context, token string, exec ...core.DBExecutor) (LinkToken, error)
		// ConsumeToken sets consumed_at only if it is still NULL and reports whether it did.
		ConsumeToken(ctx context.Context, token string, at time.Time, exec ...core.DBExecutor) (bool, error)
	}

	Service struct {
		db      core.DB
		repo    Repository
		accRepo account.Repository
		ttl     time.Duration
		logger  core.Logger
	}
)

func NewService(db core.DB, repo Repository, accRepo account.Repository, ttl time.Duration, logger core.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		db:      db,
		repo:    repo,
		accRepo: accRepo,
		ttl:     ttl,
		logger:  logger,
	}
}

// Issue replaces every token of the account with a fresh one.
func (svc *Service) Issue(ctx context.Context, accountID string) (LinkToken, error) {
	accountID = core.CleanString(accountID)
	if accountID == "" {
		return LinkToken{}, ErrUnauthenticated
	}

	tok, err := makeToken()
	if err != nil {
		return LinkToken{}, pkgerrors.Wrap(err, "generating link token")
	}
	now := NowFunc().UTC()
	lt := LinkToken{
		Token:     tok,
		AccountID: accountID,
		CreatedAt: now,
		ExpiresAt: now.Add(svc.ttl),
	}

	err = core.WithTx(ctx, svc.db, func(tx core.DBExecutor) error {
		if err := svc.repo.DeleteTokensForAccount(ctx, accountID, tx); err != nil {
			return pkgerrors.Wrap(err, "deleting previous link tokens")
		}
		created, err := svc.repo.CreateToken(ctx, lt, tx)
		if err != nil {
			return pkgerrors.Wrap(err, "creating link token")
		}
		lt = created
		return nil
	})
	if err != nil {
		svc.logger.Error("issuing link token", err, map[string]interface{}{"account_id": accountID})
		return LinkToken{}, err
	}
	return lt, nil
}

// Redeem consumes token and binds chatID to the token's owner.
//
// The checks before the transaction only pick the most precise error; the compare-and-set on
// consumed_at and the unique constraint on the account chat id are what guarantee single use and
// chat uniqueness under concurrent redemptions.
func (svc *Service) Redeem(ctx context.Context, token, chatID string) (bool, error) {
	token = core.CleanString(token)
	chatID = core.CleanString(chatID)
	if token == "" || chatID == "" {
		return false, ErrInvalidInput
	}

	lt, err := svc.repo.GetToken(ctx, token)
	if err != nil {
		if err == ErrNotFound {
			return false, ErrInvalidOrUsedToken
		}
		return false, pkgerrors.Wrap(err, "finding link token")
	}
	if lt.IsConsumed() {
		return false, ErrInvalidOrUsedToken
	}
	now := NowFunc().UTC()
	if lt.IsExpired(now) {
		return false, ErrTokenExpired
	}

	holder, err := svc.accRepo.GetAccountByTelegramChatID(ctx, chatID)
	switch {
	case err == nil:
		if holder.ID != lt.AccountID {
			return false, ErrChatAlreadyLinked
		}
	case err != account.ErrNotFound:
		return false, pkgerrors.Wrap(err, "finding account by chat id")
	}

	owner, err := svc.accRepo.GetAccount(ctx, lt.AccountID)
	if err != nil {
		return false, pkgerrors.Wrap(err, "finding token owner")
	}
	if owner.LinkedToOtherChat(chatID) {
		return false, ErrAccountLinkedElsewhere
	}

	err = core.WithTx(ctx, svc.db, func(tx core.DBExecutor) error {
		consumed, err := svc.repo.ConsumeToken(ctx, token, now, tx)
		if err != nil {
			return pkgerrors.Wrap(err, "consuming link token")
		}
		if !consumed {
			return ErrInvalidOrUsedToken
		}
		if err = svc.accRepo.UpdateTelegramLinkage(ctx, lt.AccountID, chatID, true, tx); err != nil {
			if err == account.ErrChatIDTaken {
				return ErrChatAlreadyLinked
			}
			return pkgerrors.Wrap(err, "updating account linkage")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.Cause(err) != ErrInvalidOrUsedToken && pkgerrors.Cause(err) != ErrChatAlreadyLinked {
			svc.logger.Error("redeeming link token", err, owner)
		}
		return false, err
	}

	svc.logger.Info("telegram chat linked", map[string]interface{}{"chat_id": chatID}, owner)
	return true, nil
}
