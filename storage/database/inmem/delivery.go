package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/taskbell/core"
	"github.com/trezcool/taskbell/core/notification"
)

type deliveryRepository struct {
	db *deliveryTable
}

var _ notification.DeliveryRepository = (*deliveryRepository)(nil) // interface compliance check

func NewDeliveryRepository(db *DB) notification.DeliveryRepository {
	return &deliveryRepository{db: db.delivery}
}

func (repo *deliveryRepository) CreateRecord(_ context.Context, rec notification.DeliveryRecord, _ ...core.DBExecutor) (notification.DeliveryRecord, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	rec.ID = uuid.NewString()
	repo.db.table = append(repo.db.table, rec)
	return rec, nil
}

// QueryRecords supports ordering on created_at only; records are returned newest first by default.
func (repo *deliveryRepository) QueryRecords(
	_ context.Context,
	filter *notification.RecordFilter,
	ordering []core.DBOrdering,
	_ ...core.DBExecutor,
) ([]notification.DeliveryRecord, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	recs := make([]notification.DeliveryRecord, 0, len(repo.db.table))
	for _, rec := range repo.db.table {
		if matches(rec, filter) {
			recs = append(recs, rec)
		}
	}

	ascending := false
	for _, ord := range ordering {
		if ord.Field == "created_at" {
			ascending = ord.Ascending
		}
	}
	sort.SliceStable(recs, func(i, j int) bool {
		if ascending {
			return recs[i].CreatedAt.Before(recs[j].CreatedAt)
		}
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})
	return recs, nil
}

func matches(rec notification.DeliveryRecord, filter *notification.RecordFilter) bool {
	if filter == nil {
		return true
	}
	if filter.AccountID != "" && rec.AccountID != filter.AccountID {
		return false
	}
	if filter.RelatedID != "" && rec.RelatedID.String != filter.RelatedID {
		return false
	}
	if filter.Channel != "" && rec.Channel != filter.Channel {
		return false
	}
	if filter.Outcome != "" && rec.Outcome != filter.Outcome {
		return false
	}
	return true
}
