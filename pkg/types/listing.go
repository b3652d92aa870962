package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type ListingKind string

const (
	ListingKindChurch            ListingKind = "church"
	ListingKindCommunityResource ListingKind = "community_resource"
	ListingKindSportsTeam        ListingKind = "sports_team"
	ListingKindFoodTruck         ListingKind = "food_truck"
	ListingKindSchool            ListingKind = "school"
	ListingKindBulletinPost      ListingKind = "bulletin_post"
	ListingKindJob               ListingKind = "job"
	ListingKindRealty            ListingKind = "realty_listing"
	ListingKindEvent             ListingKind = "event"
	ListingKindLostFound         ListingKind = "lost_found"
	ListingKindBusiness          ListingKind = "business"
	ListingKindStore             ListingKind = "store"
	ListingKindProduct           ListingKind = "product"
	ListingKindServicePage       ListingKind = "service_page"
	ListingKindGovernment        ListingKind = "government_service"
	ListingKindUtility           ListingKind = "utility"
	ListingKindEmergency         ListingKind = "emergency_service"
)

var listingKinds = []ListingKind{
	ListingKindChurch,
	ListingKindCommunityResource,
	ListingKindSportsTeam,
	ListingKindFoodTruck,
	ListingKindSchool,
	ListingKindBulletinPost,
	ListingKindJob,
	ListingKindRealty,
	ListingKindEvent,
	ListingKindLostFound,
	ListingKindBusiness,
	ListingKindStore,
	ListingKindProduct,
	ListingKindServicePage,
	ListingKindGovernment,
	ListingKindUtility,
	ListingKindEmergency,
}

func AllListingKinds() []ListingKind {
	out := make([]ListingKind, len(listingKinds))
	copy(out, listingKinds)
	return out
}

func ParseListingKind(v string) (ListingKind, error) {
	v = strings.TrimSpace(strings.ToLower(v))
	for _, k := range listingKinds {
		if string(k) == v {
			return k, nil
		}
	}
	return "", FieldError("kind", fmt.Sprintf("unknown listing kind %q", v))
}

// Slugged kinds are addressed by a user chosen slug that must be unique
// within the kind.
func (k ListingKind) Slugged() bool {
	return k == ListingKindStore || k == ListingKindServicePage
}

// Ephemeral kinds carry an expiry and drop off public pages once it passes.
func (k ListingKind) Ephemeral() bool {
	return k == ListingKindBulletinPost || k == ListingKindLostFound
}

type ListingStatus string

const (
	ListingStatusDraft     ListingStatus = "draft"
	ListingStatusPending   ListingStatus = "pending"
	ListingStatusApproved  ListingStatus = "approved"
	ListingStatusActive    ListingStatus = "active"
	ListingStatusSuspended ListingStatus = "suspended"
	ListingStatusHidden    ListingStatus = "hidden"
)

// Listing is the shape shared by every moderated directory entry. Type
// specific fields live in Attributes.
type Listing struct {
	ID          string         `db:"id" json:"id"`
	Kind        ListingKind    `db:"kind" json:"kind"`
	Title       string         `db:"title" json:"title"`
	Slug        *string        `db:"slug" json:"slug,omitempty"`
	Description *string        `db:"description" json:"description,omitempty"`
	Category    *string        `db:"category" json:"category,omitempty"`
	Subcategory *string        `db:"subcategory" json:"subcategory,omitempty"`
	Status      ListingStatus  `db:"status" json:"status"`
	TownID      *string        `db:"town_id" json:"town_id"`
	Town        *string        `db:"town" json:"town"`
	OwnerID     *string        `db:"owner_id" json:"owner_id"`
	CreatedBy   string         `db:"created_by" json:"created_by"`
	ImageURL    *string        `db:"image_url" json:"image_url,omitempty"`
	Attributes  map[string]any `db:"attributes" json:"attributes,omitempty"`
	ExpiresAt   *time.Time     `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_date"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_date"`
}

// OwnedBy reports whether userID may edit the listing as its owner. Listings
// that were never claimed belong to whoever created them.
func (l *Listing) OwnedBy(userID string) bool {
	if l == nil || userID == "" {
		return false
	}
	if l.OwnerID != nil && *l.OwnerID != "" {
		return *l.OwnerID == userID
	}
	return l.CreatedBy == userID
}

// ListingInput is the create/update payload. Nil fields are left untouched
// on update. Status and ownership are never accepted here.
type ListingInput struct {
	Title         *string        `json:"title" validate:"omitempty,min=1,max=200"`
	Slug          *string        `json:"slug" validate:"omitempty,max=120"`
	Description   *string        `json:"description" validate:"omitempty,max=20000"`
	Category      *string        `json:"category" validate:"omitempty,max=80"`
	Subcategory   *string        `json:"subcategory" validate:"omitempty,max=80"`
	TownID        *string        `json:"town_id" validate:"omitempty,max=64"`
	Town          *string        `json:"town" validate:"omitempty,max=120"`
	ImageURL      *string        `json:"image_url" validate:"omitempty,url"`
	Attributes    map[string]any `json:"attributes"`
	ExpiresInDays *json.Number   `json:"expires_in_days"`
}

// ListingOptions narrows a public listing query. It is decoded from the
// query string.
type ListingOptions struct {
	Search      string   `form:"q"`
	Category    string   `form:"category"`
	Subcategory string   `form:"subcategory"`
	Mode        string   `form:"mode"`
	TownIDs     []string `form:"town_ids"`
	Sort        string   `form:"sort"`
	Status      string   `form:"status"`
}
