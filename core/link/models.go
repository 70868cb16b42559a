package link

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// LinkToken is a single-use credential binding an external chat to an account.
type LinkToken struct {
	Token      string    `json:"token" db:"token"`
	AccountID  string    `json:"-" db:"account_id"`
	CreatedAt  time.Time `json:"-" db:"created_at"`
	ExpiresAt  time.Time `json:"expires_at" db:"expires_at"` // UTC
	ConsumedAt null.Time `json:"-" db:"consumed_at"`
}

func (lt LinkToken) IsConsumed() bool {
	return lt.ConsumedAt.Valid
}

// IsExpired reports whether the token can no longer be redeemed at `now`.
// A token is only valid strictly before its expiry.
func (lt LinkToken) IsExpired(now time.Time) bool {
	return !now.Before(lt.ExpiresAt)
}

// RedeemToken is the payload posted by the chat side to complete a link.
// Blank fields are rejected by Service.Redeem with ErrInvalidInput.
type RedeemToken struct {
	Token  string `json:"token"`
	ChatID string `json:"chat_id"`
}
