package model

import "time"

// Credit refund obligation statuses.
const (
	RefundStatusPending   = "pending"
	RefundStatusDone      = "done"
	RefundStatusAbandoned = "abandoned"
)

// CreditRefund is a parked compensation write: a credit that was debited for
// a chat request whose inference call failed, and whose immediate restoring
// write also failed. The refund worker drains these.
type CreditRefund struct {
	ID        int64     `db:"id"`
	ProfileID string    `db:"profile_id"`
	Attempts  int       `db:"attempts"`
	Status    string    `db:"status"`
	LastError *string   `db:"last_error"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
