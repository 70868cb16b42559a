package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/taskbell/core"
	"github.com/trezcool/taskbell/core/link"
	"github.com/trezcool/taskbell/services/logger"
)

type fakeRedeemer struct {
	err    error
	token  string
	chatID string
}

func (r *fakeRedeemer) Redeem(_ context.Context, token, chatID string) (bool, error) {
	r.token, r.chatID = token, chatID
	return r.err == nil, r.err
}

func TestStartReply(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		err     error
		want    string
	}{
		{name: "no payload", payload: "  ", want: replyUsage},
		{name: "linked", payload: "abc", want: replyLinked},
		{name: "invalid", payload: "abc", err: link.ErrInvalidOrUsedToken, want: replyInvalidToken},
		{name: "expired", payload: "abc", err: link.ErrTokenExpired, want: replyExpiredToken},
		{name: "chat taken", payload: "abc", err: link.ErrChatAlreadyLinked, want: replyChatTaken},
		{name: "linked elsewhere", payload: "abc", err: link.ErrAccountLinkedElsewhere, want: replyLinkedElsewhere},
		{name: "unexpected", payload: "abc", err: errors.New("db down"), want: replyFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRedeemer{err: tt.err}
			got := startReply(context.Background(), r, logsvc.NewNopLogger(), tt.payload, -100123)
			assert.Equal(t, tt.want, got)
			if tt.want != replyUsage {
				assert.Equal(t, "abc", r.token)
				assert.Equal(t, "-100123", r.chatID)
			}
		})
	}
}

func TestNewBot_requiresToken(t *testing.T) {
	_, err := newBot(core.TelegramConfig{}, &fakeRedeemer{}, logsvc.NewNopLogger())
	assert.Error(t, err)
}
