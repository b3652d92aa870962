package types

import "time"

type LifecycleAction string

const (
	ActionSubmit     LifecycleAction = "submit"
	ActionApprove    LifecycleAction = "approve"
	ActionSuspend    LifecycleAction = "suspend"
	ActionReactivate LifecycleAction = "reactivate"
)

// StatusTransition is one row of the moderation audit log.
type StatusTransition struct {
	ID         string          `db:"id" json:"id"`
	ListingID  string          `db:"listing_id" json:"listing_id"`
	Kind       ListingKind     `db:"kind" json:"kind"`
	Action     LifecycleAction `db:"action" json:"action"`
	FromStatus ListingStatus   `db:"from_status" json:"from_status"`
	ToStatus   ListingStatus   `db:"to_status" json:"to_status"`
	ActorID    string          `db:"actor_id" json:"actor_id"`
	CreatedAt  time.Time       `db:"created_at" json:"created_date"`
}
