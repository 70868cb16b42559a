package notification

import (
	"strings"
	"time"

	"github.com/volatiletech/null/v8"
)

// Outcomes
const (
	OutcomeSent   = "SENT"
	OutcomeFailed = "FAILED"
)

const notLinkedDetail = "account has not linked this channel"

// DeliveryRecord is the immutable audit row written for every delivery attempt.
type DeliveryRecord struct {
	ID          string      `json:"id" db:"id"`
	AccountID   string      `json:"account_id" db:"account_id"`
	RelatedID   null.String `json:"related_id" db:"related_id"`
	Channel     string      `json:"channel" db:"channel"` // upper-cased channel name
	Outcome     string      `json:"outcome" db:"outcome"`
	ErrorDetail null.String `json:"error_detail" db:"error_detail"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"` // UTC
}

func (rec DeliveryRecord) IsSent() bool {
	return rec.Outcome == OutcomeSent
}

// RecordOrderingFields are the columns delivery records can be ordered by.
var RecordOrderingFields = map[string]bool{
	"created_at": true,
	"channel":    true,
	"outcome":    true,
	"account_id": true,
}

type RecordFilter struct {
	AccountID string `query:"account_id"`
	RelatedID string `query:"related_id"`
	Channel   string `query:"channel"`
	Outcome   string `query:"outcome" validate:"omitempty,oneof=SENT FAILED"`
}

func (rf *RecordFilter) IsEmpty() bool {
	return rf.AccountID == "" && rf.RelatedID == "" && rf.Channel == "" && rf.Outcome == ""
}

func (rf *RecordFilter) Clean() {
	rf.AccountID = strings.TrimSpace(rf.AccountID)
	rf.RelatedID = strings.TrimSpace(rf.RelatedID)
	rf.Channel = strings.ToUpper(strings.TrimSpace(rf.Channel))
	rf.Outcome = strings.ToUpper(strings.TrimSpace(rf.Outcome))
}
