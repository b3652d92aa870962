package types

import "time"

// Town is admin maintained reference data. Listings reference it by ID.
type Town struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Slug      string    `db:"slug" json:"slug"`
	CreatedAt time.Time `db:"created_at" json:"created_date"`
}

type TownInput struct {
	Name string  `json:"name" validate:"required,max=120"`
	Slug *string `json:"slug" validate:"omitempty,max=120"`
}
