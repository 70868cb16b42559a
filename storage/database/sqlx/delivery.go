package sqlxrepos

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/taskbell/core"
	"github.com/trezcool/taskbell/core/notification"
)

type deliveryRepository struct {
	db core.DBExecutor
}

var _ notification.DeliveryRepository = (*deliveryRepository)(nil) // interface compliance check

func NewDeliveryRepository(db core.DBExecutor) notification.DeliveryRepository {
	return &deliveryRepository{db: db}
}

func (repo *deliveryRepository) CreateRecord(
	ctx context.Context,
	rec notification.DeliveryRecord,
	exec ...core.DBExecutor,
) (notification.DeliveryRecord, error) {
	rec.ID = uuid.NewString()

	db := getExec(repo.db, exec)
	q := db.Rebind(`
		INSERT INTO delivery_records (id, account_id, related_id, channel, outcome, error_detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err := db.ExecContext(
		ctx, q,
		rec.ID, rec.AccountID, rec.RelatedID, rec.Channel, rec.Outcome, rec.ErrorDetail, rec.CreatedAt,
	)
	if err != nil {
		return notification.DeliveryRecord{}, errors.Wrap(err, "inserting delivery record")
	}
	return rec, nil
}

// QueryRecords applies AND on the set filter fields. Unknown ordering fields are ignored;
// newest records come first by default.
func (repo *deliveryRepository) QueryRecords(
	ctx context.Context,
	filter *notification.RecordFilter,
	ordering []core.DBOrdering,
	exec ...core.DBExecutor,
) ([]notification.DeliveryRecord, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter != nil {
		for _, cond := range []struct{ col, val string }{
			{"account_id", filter.AccountID},
			{"related_id", filter.RelatedID},
			{"channel", filter.Channel},
			{"outcome", filter.Outcome},
		} {
			if cond.val != "" {
				where = append(where, cond.col+" = ?")
				args = append(args, cond.val)
			}
		}
	}

	var orderBy []string
	for _, ord := range ordering {
		if notification.RecordOrderingFields[ord.Field] {
			orderBy = append(orderBy, ord.String())
		}
	}
	if len(orderBy) == 0 {
		orderBy = append(orderBy, core.DBOrdering{Field: "created_at"}.String())
	}

	q := "SELECT id, account_id, related_id, channel, outcome, error_detail, created_at FROM delivery_records"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY " + strings.Join(orderBy, ", ") + ", id"

	db := getExec(repo.db, exec)
	recs := make([]notification.DeliveryRecord, 0)
	if err := sqlxSelect(ctx, db, &recs, db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting delivery records")
	}
	for i := range recs {
		recs[i].CreatedAt = recs[i].CreatedAt.UTC()
	}
	return recs, nil
}
