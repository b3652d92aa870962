package memory

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"countyconnect/internal/store"
	"countyconnect/pkg/types"
)

func cloneListing(l *types.Listing) *types.Listing {
	c := *l
	if l.Attributes != nil {
		c.Attributes = make(map[string]any, len(l.Attributes))
		for k, v := range l.Attributes {
			c.Attributes[k] = v
		}
	}
	c.Slug = cloneString(l.Slug)
	c.Description = cloneString(l.Description)
	c.Category = cloneString(l.Category)
	c.Subcategory = cloneString(l.Subcategory)
	c.TownID = cloneString(l.TownID)
	c.Town = cloneString(l.Town)
	c.OwnerID = cloneString(l.OwnerID)
	c.ImageURL = cloneString(l.ImageURL)
	if l.ExpiresAt != nil {
		t := *l.ExpiresAt
		c.ExpiresAt = &t
	}
	return &c
}

func cloneUser(u *types.User) *types.User {
	c := *u
	c.Email = cloneString(u.Email)
	c.FullName = cloneString(u.FullName)
	c.PreferredTownID = cloneString(u.PreferredTownID)
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func stringPtr(field string, v any) (*string, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string:
		return &x, nil
	case *string:
		return cloneString(x), nil
	case types.ListingStatus:
		s := string(x)
		return &s, nil
	case types.ListingKind:
		s := string(x)
		return &s, nil
	}
	return nil, types.FieldError(field, fmt.Sprintf("unexpected %T for %s", v, field))
}

// column returns the comparable string value of a listing column.
func column(l *types.Listing, name string) (*string, bool) {
	str := func(s string) *string { return &s }
	switch name {
	case "id":
		return str(l.ID), true
	case "kind":
		return str(string(l.Kind)), true
	case "title":
		return str(l.Title), true
	case "slug":
		return l.Slug, true
	case "description":
		return l.Description, true
	case "category":
		return l.Category, true
	case "subcategory":
		return l.Subcategory, true
	case "status":
		return str(string(l.Status)), true
	case "town_id":
		return l.TownID, true
	case "town":
		return l.Town, true
	case "owner_id":
		return l.OwnerID, true
	case "created_by":
		return str(l.CreatedBy), true
	case "image_url":
		return l.ImageURL, true
	}
	return nil, false
}

func matches(l *types.Listing, match map[string]any) (bool, error) {
	for k, want := range match {
		got, ok := column(l, k)
		if !ok {
			return false, types.FieldError(k, fmt.Sprintf("cannot filter listings by %q", k))
		}
		w, err := stringPtr(k, want)
		if err != nil {
			return false, err
		}
		if (got == nil) != (w == nil) {
			return false, nil
		}
		if got != nil && *got != *w {
			return false, nil
		}
	}
	return true, nil
}

func setListingField(l *types.Listing, name string, v any) error {
	switch name {
	case "id", "kind", "status", "owner_id", "created_by", "created_at":
		return types.FieldError(name, fmt.Sprintf("%s cannot be changed by an update", name))
	case "attributes":
		attrs, _ := v.(map[string]any)
		l.Attributes = attrs
		return nil
	case "expires_at":
		switch t := v.(type) {
		case nil:
			l.ExpiresAt = nil
		case time.Time:
			l.ExpiresAt = &t
		case *time.Time:
			l.ExpiresAt = t
		default:
			return types.FieldError(name, fmt.Sprintf("unexpected %T for expires_at", v))
		}
		return nil
	}

	p, err := stringPtr(name, v)
	if err != nil {
		return err
	}
	switch name {
	case "title":
		if p == nil {
			return types.FieldError(name, "title is required")
		}
		l.Title = *p
	case "slug":
		l.Slug = p
	case "description":
		l.Description = p
	case "category":
		l.Category = p
	case "subcategory":
		l.Subcategory = p
	case "town_id":
		l.TownID = p
	case "town":
		l.Town = p
	case "image_url":
		l.ImageURL = p
	default:
		return types.FieldError(name, fmt.Sprintf("unknown listing field %q", name))
	}
	return nil
}

func sortListings(out []*types.Listing, spec store.SortSpec) {
	less := func(a, b *types.Listing) int {
		switch spec.Column {
		case "title":
			return strings.Compare(a.Title, b.Title)
		case "updated_at":
			return a.UpdatedAt.Compare(b.UpdatedAt)
		case "expires_at":
			switch {
			case a.ExpiresAt == nil && b.ExpiresAt == nil:
				return 0
			case a.ExpiresAt == nil:
				return 1
			case b.ExpiresAt == nil:
				return -1
			}
			return a.ExpiresAt.Compare(*b.ExpiresAt)
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	}

	sort.SliceStable(out, func(i, j int) bool {
		c := less(out[i], out[j])
		if c == 0 {
			c = strings.Compare(out[i].ID, out[j].ID)
		}
		if spec.Desc {
			return c > 0
		}
		return c < 0
	})
}
