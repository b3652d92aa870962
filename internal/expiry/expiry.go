// Package expiry computes and interprets deadlines for ephemeral listings
// such as bulletin posts.
package expiry

import (
	"math"
	"strconv"
	"strings"
	"time"

	"countyconnect/pkg/types"
)

const (
	day = 24 * time.Hour

	// MaxDays bounds expires_in_days so a post can't be pinned forever.
	MaxDays = 365

	// DefaultDays applies when a post is created without expires_in_days.
	DefaultDays = 30
)

// Calculator anchors every computation to Now, which tests replace.
type Calculator struct {
	Now func() time.Time
}

func New() *Calculator {
	return &Calculator{Now: time.Now}
}

func (c *Calculator) now() time.Time {
	if c == nil || c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// Current is the calculator's notion of now.
func (c *Calculator) Current() time.Time {
	return c.now()
}

// Compute returns now plus days calendar days in the host's local time.
// Edits call it again, so an edit restarts the countdown.
func (c *Calculator) Compute(days int) time.Time {
	return c.now().AddDate(0, 0, days)
}

// DaysRemaining is ceil((expiresAt - now) / 24h). It is negative once the
// deadline has passed and nil when there is no deadline.
func (c *Calculator) DaysRemaining(expiresAt *time.Time) *int {
	if expiresAt == nil {
		return nil
	}
	remaining := expiresAt.Sub(c.now())
	days := int(math.Ceil(float64(remaining) / float64(day)))
	return &days
}

// IsExpired is false without a deadline, otherwise now > expiresAt.
func (c *Calculator) IsExpired(expiresAt *time.Time) bool {
	if expiresAt == nil {
		return false
	}
	return c.now().After(*expiresAt)
}

// ParseDays reads the expires_in_days form value.
func ParseDays(v string) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, types.FieldError("expires_in_days", "expires_in_days is required")
	}

	days, err := strconv.Atoi(v)
	if err != nil {
		return 0, types.FieldError("expires_in_days", "expires_in_days must be a whole number of days")
	}

	if days < 1 || days > MaxDays {
		return 0, types.FieldError("expires_in_days", "expires_in_days must be between 1 and 365")
	}

	return days, nil
}
