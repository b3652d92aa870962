package types

// ListingView decorates a listing with values computed at read time.
type ListingView struct {
	*Listing
	DaysRemaining *int `json:"days_remaining,omitempty"`
	Expired       bool `json:"expired,omitempty"`
}

type ListingPage struct {
	Kind     ListingKind         `json:"kind"`
	Filter   LocationFilterState `json:"filter"`
	UserTown *Town               `json:"user_town,omitempty"`
	Towns    []*Town             `json:"towns"`
	Listings []*ListingView      `json:"listings"`
	Total    int                 `json:"total"`
}

type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type UploadResponse struct {
	FileURL string `json:"file_url"`
}
