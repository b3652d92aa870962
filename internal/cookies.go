package internal

const (
	COOKIE_ACCESS_TOKEN_NAME    = "cc_access_token"
	COOKIE_LOCATION_FILTER_NAME = "cc_location_filter"
)
