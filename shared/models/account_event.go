package models

import "time"

type AccountEventType string

const (
	AccountRegistered AccountEventType = "user.registered"
	AccountDeleted    AccountEventType = "user.deleted"
)

// AccountEvent is published to the account events exchange after a lifecycle change.
type AccountEvent struct {
	Event      AccountEventType `json:"event"`
	Username   string           `json:"username"`
	OccurredAt time.Time        `json:"occurred_at"`
}
