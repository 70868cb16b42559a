package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/taskbell/core"
	"github.com/trezcool/taskbell/core/account"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrChannelUnavailable = errors.New("no notification channel available")
)

type (
	// DeliveryRepository is the append-only audit log of delivery attempts.
	DeliveryRepository interface {
		CreateRecord(ctx context.Context, rec DeliveryRecord, exec ...core.DBExecutor) (DeliveryRecord, error)
		QueryRecords(ctx context.Context, filter *RecordFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]DeliveryRecord, error)
	}

	Service struct {
		registry *Registry
		repo     DeliveryRepository
		accRepo  account.Repository
		logger   core.Logger
	}
)

func NewService(registry *Registry, repo DeliveryRepository, accRepo account.Repository, logger core.Logger) *Service {
	return &Service{
		registry: registry,
		repo:     repo,
		accRepo:  accRepo,
		logger:   logger,
	}
}

// Send dispatches message to acc over the named channel (the default one when channelName is nil or empty).
//
// Exactly one DeliveryRecord is written once a channel resolved, whatever the delivery outcome.
// Delivery failures are reported through the record and the boolean, never as an error: the only
// errors returned are ErrChannelUnavailable (nothing written) and a failure to write the record.
func (svc *Service) Send(ctx context.Context, acc account.Account, message string, channelName, relatedID *string) (bool, error) {
	ch, ok := svc.resolve(channelName)
	if !ok {
		return false, ErrChannelUnavailable
	}

	rec := DeliveryRecord{
		AccountID: acc.ID,
		RelatedID: null.StringFromPtr(relatedID),
		Channel:   strings.ToUpper(ch.Name()),
		Outcome:   OutcomeFailed,
	}

	delivered, err := ch.Deliver(ctx, acc, message)
	switch {
	case err != nil:
		rec.ErrorDetail = null.StringFrom(err.Error())
	case delivered:
		rec.Outcome = OutcomeSent
	default:
		rec.ErrorDetail = null.StringFrom(notLinkedDetail)
	}
	rec.CreatedAt = NowFunc().UTC()

	if _, err = svc.repo.CreateRecord(ctx, rec); err != nil {
		return false, pkgerrors.Wrap(err, "recording delivery")
	}

	fields := map[string]interface{}{"channel": ch.Name(), "outcome": rec.Outcome}
	if rec.IsSent() {
		svc.logger.Debug("notification sent", fields, acc)
	} else {
		fields["detail"] = rec.ErrorDetail.String
		svc.logger.Warn(fmt.Sprintf("notification not delivered: %s", rec.ErrorDetail.String), fields, acc)
	}
	return rec.IsSent(), nil
}

// DispatchToAccount loads the account then calls Send.
func (svc *Service) DispatchToAccount(ctx context.Context, accountID, message string, channelName, relatedID *string) (bool, error) {
	acc, err := svc.accRepo.GetAccount(ctx, accountID)
	if err != nil {
		return false, pkgerrors.Wrap(err, "finding account by ID")
	}
	return svc.Send(ctx, acc, message, channelName, relatedID)
}

func (svc *Service) QueryRecords(ctx context.Context, filter *RecordFilter, ordering []core.DBOrdering) ([]DeliveryRecord, error) {
	return svc.repo.QueryRecords(ctx, filter, ordering)
}

// CheckChannel returns ErrChannelUnavailable when channelName resolves to no registered channel.
func (svc *Service) CheckChannel(channelName *string) error {
	if _, ok := svc.resolve(channelName); !ok {
		return ErrChannelUnavailable
	}
	return nil
}

// resolve trims channelName; the lookup itself is exact.
func (svc *Service) resolve(channelName *string) (Channel, bool) {
	return svc.registry.Resolve(core.CleanString(core.StringValue(channelName)))
}

func (svc *Service) ChannelNames() []string {
	return svc.registry.Names()
}
