package types

import "time"

type ClaimStatus string

const (
	ClaimStatusPending  ClaimStatus = "pending"
	ClaimStatusApproved ClaimStatus = "approved"
	ClaimStatusRejected ClaimStatus = "rejected"
)

// ClaimRequest asks for ownership of an existing listing. It is resolved
// exactly once by an admin and never changes afterwards.
type ClaimRequest struct {
	ID              string      `db:"id" json:"id"`
	EntityType      ListingKind `db:"entity_type" json:"entity_type"`
	EntityID        string      `db:"entity_id" json:"entity_id"`
	EntityName      string      `db:"entity_name" json:"entity_name"`
	UserID          string      `db:"user_id" json:"user_id"`
	UserName        *string     `db:"user_name" json:"user_name"`
	UserEmail       *string     `db:"user_email" json:"user_email"`
	Status          ClaimStatus `db:"status" json:"status"`
	RejectionReason *string     `db:"rejection_reason" json:"rejection_reason,omitempty"`
	ResolvedAt      *time.Time  `db:"resolved_at" json:"resolved_date,omitempty"`
	ResolvedBy      *string     `db:"resolved_by" json:"resolved_by,omitempty"`
	CreatedAt       time.Time   `db:"created_at" json:"created_date"`
}

type ClaimInput struct {
	EntityType string `json:"entity_type" validate:"required"`
	EntityID   string `json:"entity_id" validate:"required,max=64"`
}

type ClaimResolution struct {
	Reason *string `json:"reason" validate:"omitempty,max=2000"`
}
