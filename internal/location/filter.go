// Package location narrows listing collections to the towns a visitor
// cares about.
package location

import (
	"strings"

	"countyconnect/pkg/types"
)

// Accessor returns an item's town id, or nil for county wide items. Listing
// types don't agree on where the town lives, so callers supply this.
type Accessor[T any] func(item T) *string

// Default is the state used when a session has none yet: the user's own
// town if they picked one, otherwise every town.
func Default(preferredTownID *string) types.LocationFilterState {
	if preferredTownID != nil && strings.TrimSpace(*preferredTownID) != "" {
		return types.LocationFilterState{Mode: types.LocationModeMine}
	}
	return types.LocationFilterState{Mode: types.LocationModeAll}
}

// Visible reports whether item passes the filter. Items without a town are
// county wide and pass in every mode.
func Visible[T any](item T, townOf Accessor[T], state types.LocationFilterState, userTown *types.Town) bool {
	if state.Mode == types.LocationModeAll || state.Mode == "" {
		return true
	}

	townID := townOf(item)
	if townID == nil || *townID == "" {
		return true
	}

	switch state.Mode {
	case types.LocationModeMine:
		return userTown != nil && *townID == userTown.ID
	case types.LocationModeCustom:
		return state.Selected(*townID)
	}

	return false
}

// Filter returns the visible items in input order. items is not modified.
func Filter[T any](items []T, townOf Accessor[T], state types.LocationFilterState, userTown *types.Town) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if Visible(item, townOf, state, userTown) {
			out = append(out, item)
		}
	}
	return out
}

// Index resolves towns by id and by name.
type Index struct {
	byID   map[string]*types.Town
	byName map[string]*types.Town
}

func NewIndex(towns []*types.Town) *Index {
	idx := &Index{
		byID:   make(map[string]*types.Town, len(towns)),
		byName: make(map[string]*types.Town, len(towns)),
	}
	for _, t := range towns {
		if t == nil {
			continue
		}
		idx.byID[t.ID] = t
		idx.byName[normalizeName(t.Name)] = t
	}
	return idx
}

func (i *Index) ByID(id string) *types.Town {
	if i == nil {
		return nil
	}
	return i.byID[id]
}

func (i *Index) ByName(name string) *types.Town {
	if i == nil {
		return nil
	}
	return i.byName[normalizeName(name)]
}

func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// ListingTown reads town_id and falls back to resolving the display name
// for rows that only carry a town name.
func ListingTown(idx *Index) Accessor[*types.Listing] {
	return func(l *types.Listing) *string {
		if l.TownID != nil && *l.TownID != "" {
			return l.TownID
		}
		if l.Town == nil || strings.TrimSpace(*l.Town) == "" {
			return nil
		}
		if t := idx.ByName(*l.Town); t != nil {
			id := t.ID
			return &id
		}
		// a town name we can't resolve is still a specific town, never county wide
		unknown := "unknown:" + normalizeName(*l.Town)
		return &unknown
	}
}
