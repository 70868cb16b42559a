package sqlxrepos_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/taskbell/core"
	"github.com/trezcool/taskbell/core/notification"
	"github.com/trezcool/taskbell/storage/database/sqlx"
	"github.com/trezcool/taskbell/testutil"
)

func TestDeliveryRepository(t *testing.T) {
	ctx := context.Background()
	db := testutil.PrepareDB(t)
	repo := sqlxrepos.NewDeliveryRepository(db)

	base := time.Date(2026, time.February, 10, 8, 0, 0, 0, time.UTC)
	create := func(accountID, channel, outcome string, relatedID, detail null.String, offset time.Duration) notification.DeliveryRecord {
		rec, err := repo.CreateRecord(ctx, notification.DeliveryRecord{
			AccountID:   accountID,
			RelatedID:   relatedID,
			Channel:     channel,
			Outcome:     outcome,
			ErrorDetail: detail,
			CreatedAt:   base.Add(offset),
		})
		require.NoError(t, err)
		require.NotEmpty(t, rec.ID)
		return rec
	}

	r1 := create("acc-1", "TELEGRAM", notification.OutcomeSent, null.StringFrom("asg-1"), null.String{}, 0)
	r2 := create("acc-1", "TELEGRAM", notification.OutcomeFailed, null.String{}, null.StringFrom("timeout"), time.Minute)
	r3 := create("acc-2", "EMAIL", notification.OutcomeSent, null.StringFrom("asg-1"), null.String{}, 2*time.Minute)

	ids := func(recs []notification.DeliveryRecord) []string {
		out := make([]string, 0, len(recs))
		for _, rec := range recs {
			out = append(out, rec.ID)
		}
		return out
	}

	tests := []struct {
		name     string
		filter   *notification.RecordFilter
		ordering []core.DBOrdering
		want     []string
	}{
		{name: "all, newest first", want: []string{r3.ID, r2.ID, r1.ID}},
		{name: "oldest first", ordering: []core.DBOrdering{{Field: "created_at", Ascending: true}}, want: []string{r1.ID, r2.ID, r3.ID}},
		{name: "unknown ordering ignored", ordering: []core.DBOrdering{{Field: "1; DROP TABLE x"}}, want: []string{r3.ID, r2.ID, r1.ID}},
		{name: "by account", filter: &notification.RecordFilter{AccountID: "acc-1"}, want: []string{r2.ID, r1.ID}},
		{name: "by related id", filter: &notification.RecordFilter{RelatedID: "asg-1"}, want: []string{r3.ID, r1.ID}},
		{name: "by outcome", filter: &notification.RecordFilter{Outcome: notification.OutcomeFailed}, want: []string{r2.ID}},
		{name: "by channel and account", filter: &notification.RecordFilter{AccountID: "acc-2", Channel: "EMAIL"}, want: []string{r3.ID}},
		{name: "no match", filter: &notification.RecordFilter{AccountID: "acc-3"}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := repo.QueryRecords(ctx, tt.filter, tt.ordering)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(recs))
		})
	}

	t.Run("round trip", func(t *testing.T) {
		recs, err := repo.QueryRecords(ctx, &notification.RecordFilter{Outcome: notification.OutcomeFailed}, nil)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		got := recs[0]
		assert.Equal(t, "acc-1", got.AccountID)
		assert.False(t, got.RelatedID.Valid)
		assert.Equal(t, null.StringFrom("timeout"), got.ErrorDetail)
		assert.True(t, got.CreatedAt.Equal(r2.CreatedAt))
	})
}
