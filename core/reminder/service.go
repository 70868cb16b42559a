package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/taskbell/core"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNotFound = errors.New("reminder not found")
)

type (
	Repository interface {
		// QueryDueReminders returns unsent reminders due at `now`, oldest first, having at least
		// one pending submission from a telegram-linked student.
		QueryDueReminders(ctx context.Context, now time.Time, exec ...core.DBExecutor) ([]DueReminder, error)
		GetReminder(ctx context.Context, id string, exec ...core.DBExecutor) (Reminder, error)
		MarkSent(ctx context.Context, id string, exec ...core.DBExecutor) (Reminder, error)
	}

	// Notifier is satisfied by *notification.Service.
	Notifier interface {
		CheckChannel(channelName *string) error
		DispatchToAccount(ctx context.Context, accountID, message string, channelName, relatedID *string) (bool, error)
	}

	Service struct {
		repo     Repository
		notifier Notifier
		logger   core.Logger
	}
)

func NewService(repo Repository, notifier Notifier, logger core.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
	}
}

func (svc *Service) Due(ctx context.Context) ([]DueReminder, error) {
	return svc.repo.QueryDueReminders(ctx, NowFunc().UTC())
}

func (svc *Service) MarkSent(ctx context.Context, id string) (Reminder, error) {
	return svc.repo.MarkSent(ctx, core.CleanString(id))
}

// DispatchDue notifies every student of every due reminder then marks the reminder sent.
// A failing student or reminder is logged and counted; it never stops the batch.
// A channel that does not resolve is returned before any reminder is touched.
func (svc *Service) DispatchDue(ctx context.Context, channelName *string) (Summary, error) {
	if err := svc.notifier.CheckChannel(channelName); err != nil {
		return Summary{}, err
	}

	due, err := svc.Due(ctx)
	if err != nil {
		return Summary{}, pkgerrors.Wrap(err, "querying due reminders")
	}

	var sum Summary
	for _, rem := range due {
		sum.Reminders++
		msg := Message(rem)
		relatedID := rem.Assignment.ID
		for _, std := range rem.Students {
			sent, err := svc.notifier.DispatchToAccount(ctx, std.ID, msg, channelName, &relatedID)
			if err != nil {
				svc.logger.Error("dispatching reminder", err, map[string]interface{}{"reminder_id": rem.ID, "account_id": std.ID})
			}
			if sent {
				sum.Sent++
			} else {
				sum.Failed++
			}
		}
		if _, err = svc.repo.MarkSent(ctx, rem.ID); err != nil {
			svc.logger.Error("marking reminder sent", err, map[string]interface{}{"reminder_id": rem.ID})
		}
	}

	svc.logger.Info("reminders dispatched", map[string]interface{}{
		"reminders": sum.Reminders,
		"sent":      sum.Sent,
		"failed":    sum.Failed,
	})
	return sum, nil
}

// Message renders the text sent to a student for rem.
func Message(rem DueReminder) string {
	due := rem.Assignment.DueDate.UTC().Format("Mon 02 Jan 2006 15:04 MST")
	return fmt.Sprintf("Reminder: %q is due %s. You have not submitted it yet.", rem.Assignment.Title, due)
}
