package link_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/taskbell/core/account"
	"github.com/trezcool/taskbell/core/link"
	"github.com/trezcool/taskbell/services/logger"
	"github.com/trezcool/taskbell/storage/database/sqlx"
	"github.com/trezcool/taskbell/testutil"
)

type fixture struct {
	db      *sqlx.DB
	repo    link.Repository
	accRepo account.Repository
	svc     *link.Service
}

func setup(t *testing.T) fixture {
	db := testutil.PrepareDB(t)
	repo := sqlxrepos.NewLinkTokenRepository(db)
	accRepo := sqlxrepos.NewAccountRepository(db)
	return fixture{
		db:      db,
		repo:    repo,
		accRepo: accRepo,
		svc:     link.NewService(db, repo, accRepo, link.DefaultTTL, logsvc.NewNopLogger()),
	}
}

func (f fixture) countTokens(t *testing.T, accountID string) int {
	var n int
	require.NoError(t, f.db.Get(&n, f.db.Rebind(`SELECT COUNT(*) FROM link_tokens WHERE account_id = ?`), accountID))
	return n
}

func TestService_Issue(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	std := testutil.CreateAccount(t, f.accRepo, "Student", "std@test.cd", account.RoleStudent, "")

	t.Run("unauthenticated", func(t *testing.T) {
		_, err := f.svc.Issue(ctx, "  ")
		assert.Equal(t, link.ErrUnauthenticated, err)
	})

	t.Run("expiry follows ttl", func(t *testing.T) {
		now := time.Date(2026, time.June, 1, 9, 30, 0, 0, time.UTC)
		link.NowFunc = func() time.Time { return now }
		defer func() { link.NowFunc = time.Now }()

		svc := link.NewService(f.db, f.repo, f.accRepo, link.TTLFromMinutes("15"), logsvc.NewNopLogger())
		lt, err := svc.Issue(ctx, std.ID)
		require.NoError(t, err)
		assert.Len(t, lt.Token, 48)
		assert.True(t, lt.ExpiresAt.Equal(now.Add(15*time.Minute)))

		stored, err := f.repo.GetToken(ctx, lt.Token)
		require.NoError(t, err)
		assert.Equal(t, std.ID, stored.AccountID)
		assert.True(t, stored.ExpiresAt.Equal(lt.ExpiresAt))
		assert.False(t, stored.IsConsumed())
	})

	t.Run("at most one active token", func(t *testing.T) {
		first, err := f.svc.Issue(ctx, std.ID)
		require.NoError(t, err)
		second, err := f.svc.Issue(ctx, std.ID)
		require.NoError(t, err)
		assert.NotEqual(t, first.Token, second.Token)
		assert.Equal(t, 1, f.countTokens(t, std.ID))

		_, err = f.repo.GetToken(ctx, first.Token)
		assert.Equal(t, link.ErrNotFound, err)

		ok, err := f.svc.Redeem(ctx, first.Token, "111")
		assert.False(t, ok)
		assert.Equal(t, link.ErrInvalidOrUsedToken, err)
	})
}

func TestService_Redeem(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid input", func(t *testing.T) {
		f := setup(t)
		for _, in := range [][2]string{{"", "1"}, {"tok", ""}, {"  ", " "}} {
			ok, err := f.svc.Redeem(ctx, in[0], in[1])
			assert.False(t, ok)
			assert.Equal(t, link.ErrInvalidInput, err)
		}
	})

	t.Run("unknown token", func(t *testing.T) {
		f := setup(t)
		ok, err := f.svc.Redeem(ctx, "deadbeef", "1")
		assert.False(t, ok)
		assert.Equal(t, link.ErrInvalidOrUsedToken, err)
	})

	t.Run("links account once", func(t *testing.T) {
		f := setup(t)
		std := testutil.CreateAccount(t, f.accRepo, "Student", "std@test.cd", account.RoleStudent, "")
		lt, err := f.svc.Issue(ctx, std.ID)
		require.NoError(t, err)

		ok, err := f.svc.Redeem(ctx, " "+lt.Token+" ", " 5551234 ")
		require.NoError(t, err)
		assert.True(t, ok)

		acc, err := f.accRepo.GetAccount(ctx, std.ID)
		require.NoError(t, err)
		assert.True(t, acc.TelegramLinked)
		assert.Equal(t, "5551234", acc.TelegramChatID.String)

		stored, err := f.repo.GetToken(ctx, lt.Token)
		require.NoError(t, err)
		assert.True(t, stored.IsConsumed())

		ok, err = f.svc.Redeem(ctx, lt.Token, "5551234")
		assert.False(t, ok)
		assert.Equal(t, link.ErrInvalidOrUsedToken, err)
	})

	t.Run("expired token", func(t *testing.T) {
		f := setup(t)
		std := testutil.CreateAccount(t, f.accRepo, "Student", "std@test.cd", account.RoleStudent, "")

		issuedAt := time.Now().UTC().Add(-time.Hour)
		link.NowFunc = func() time.Time { return issuedAt }
		lt, err := f.svc.Issue(ctx, std.ID)
		link.NowFunc = time.Now // reset
		require.NoError(t, err)

		ok, err := f.svc.Redeem(ctx, lt.Token, "1")
		assert.False(t, ok)
		assert.Equal(t, link.ErrTokenExpired, err)

		acc, err := f.accRepo.GetAccount(ctx, std.ID)
		require.NoError(t, err)
		assert.False(t, acc.HasTelegram())
	})

	t.Run("expires exactly at expires_at", func(t *testing.T) {
		f := setup(t)
		std := testutil.CreateAccount(t, f.accRepo, "Student", "std@test.cd", account.RoleStudent, "")

		issuedAt := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)
		link.NowFunc = func() time.Time { return issuedAt }
		defer func() { link.NowFunc = time.Now }()
		lt, err := f.svc.Issue(ctx, std.ID)
		require.NoError(t, err)

		link.NowFunc = func() time.Time { return lt.ExpiresAt }
		_, err = f.svc.Redeem(ctx, lt.Token, "1")
		assert.Equal(t, link.ErrTokenExpired, err)

		link.NowFunc = func() time.Time { return lt.ExpiresAt.Add(-time.Second) }
		ok, err := f.svc.Redeem(ctx, lt.Token, "1")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("chat already linked to another account", func(t *testing.T) {
		f := setup(t)
		testutil.CreateAccount(t, f.accRepo, "Other", "other@test.cd", account.RoleStudent, "777")
		std := testutil.CreateAccount(t, f.accRepo, "Student", "std@test.cd", account.RoleStudent, "")
		lt, err := f.svc.Issue(ctx, std.ID)
		require.NoError(t, err)

		ok, err := f.svc.Redeem(ctx, lt.Token, "777")
		assert.False(t, ok)
		assert.Equal(t, link.ErrChatAlreadyLinked, err)

		stored, err := f.repo.GetToken(ctx, lt.Token)
		require.NoError(t, err)
		assert.False(t, stored.IsConsumed())
	})

	t.Run("account linked elsewhere", func(t *testing.T) {
		f := setup(t)
		std := testutil.CreateAccount(t, f.accRepo, "Student", "std@test.cd", account.RoleStudent, "100")
		lt, err := f.svc.Issue(ctx, std.ID)
		require.NoError(t, err)

		ok, err := f.svc.Redeem(ctx, lt.Token, "200")
		assert.False(t, ok)
		assert.Equal(t, link.ErrAccountLinkedElsewhere, err)

		acc, err := f.accRepo.GetAccount(ctx, std.ID)
		require.NoError(t, err)
		assert.Equal(t, "100", acc.TelegramChatID.String)
	})

	t.Run("re-linking the same chat is idempotent", func(t *testing.T) {
		f := setup(t)
		std := testutil.CreateAccount(t, f.accRepo, "Student", "std@test.cd", account.RoleStudent, "100")
		lt, err := f.svc.Issue(ctx, std.ID)
		require.NoError(t, err)

		ok, err := f.svc.Redeem(ctx, lt.Token, "100")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestService_Redeem_concurrent(t *testing.T) {
	ctx := context.Background()

	t.Run("same token", func(t *testing.T) {
		f := setup(t)
		std := testutil.CreateAccount(t, f.accRepo, "Student", "std@test.cd", account.RoleStudent, "")
		lt, err := f.svc.Issue(ctx, std.ID)
		require.NoError(t, err)

		const n = 8
		results := make([]error, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, results[i] = f.svc.Redeem(ctx, lt.Token, "42")
			}(i)
		}
		wg.Wait()

		var succeeded int
		for _, err := range results {
			if err == nil {
				succeeded++
			} else {
				assert.Equal(t, link.ErrInvalidOrUsedToken, err)
			}
		}
		assert.Equal(t, 1, succeeded)
	})

	t.Run("same chat, different accounts", func(t *testing.T) {
		f := setup(t)
		a := testutil.CreateAccount(t, f.accRepo, "A", "a@test.cd", account.RoleStudent, "")
		b := testutil.CreateAccount(t, f.accRepo, "B", "b@test.cd", account.RoleStudent, "")
		ltA, err := f.svc.Issue(ctx, a.ID)
		require.NoError(t, err)
		ltB, err := f.svc.Issue(ctx, b.ID)
		require.NoError(t, err)

		var (
			wg   sync.WaitGroup
			errA error
			errB error
		)
		wg.Add(2)
		go func() { defer wg.Done(); _, errA = f.svc.Redeem(ctx, ltA.Token, "999") }()
		go func() { defer wg.Done(); _, errB = f.svc.Redeem(ctx, ltB.Token, "999") }()
		wg.Wait()

		if errA == nil {
			assert.Equal(t, link.ErrChatAlreadyLinked, errB)
		} else {
			assert.Equal(t, link.ErrChatAlreadyLinked, errA)
			assert.NoError(t, errB)
		}

		holder, err := f.accRepo.GetAccountByTelegramChatID(ctx, "999")
		require.NoError(t, err)
		assert.Contains(t, []string{a.ID, b.ID}, holder.ID)
	})
}
