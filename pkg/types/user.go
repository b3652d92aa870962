package types

import "time"

type UserRole string

const (
	UserRoleMember UserRole = "member"
	UserRoleAdmin  UserRole = "admin"
)

type User struct {
	ID              string    `db:"id" json:"id"`
	Email           *string   `db:"email" json:"email"`
	FullName        *string   `db:"full_name" json:"full_name"`
	Role            UserRole  `db:"role" json:"role"`
	PreferredTownID *string   `db:"preferred_town_id" json:"preferred_town_id"`
	CreatedAt       time.Time `db:"created_at" json:"created_date"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_date"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == UserRoleAdmin
}

// UserUpdate is the updateMe payload. An empty PreferredTownID clears the
// preference.
type UserUpdate struct {
	FullName        *string `json:"full_name" validate:"omitempty,max=120"`
	PreferredTownID *string `json:"preferred_town_id" validate:"omitempty,max=64"`
}

// Profile is what the identity provider knows about a user.
type Profile struct {
	UserID string
	Email  string
	Name   string
}
