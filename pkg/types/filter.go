package types

type LocationMode string

const (
	LocationModeAll    LocationMode = "all"
	LocationModeMine   LocationMode = "mine"
	LocationModeCustom LocationMode = "custom"
)

func ParseLocationMode(v string) (LocationMode, error) {
	switch LocationMode(v) {
	case LocationModeAll, LocationModeMine, LocationModeCustom:
		return LocationMode(v), nil
	}
	return "", FieldError("mode", "mode must be one of all, mine, custom")
}

// LocationFilterState is the per session geography preference. Treat it as
// a value: the With* methods return modified copies.
type LocationFilterState struct {
	Mode            LocationMode `json:"mode"`
	SelectedTownIDs []string     `json:"selected_town_ids"`
}

func (s LocationFilterState) WithMode(mode LocationMode) LocationFilterState {
	return LocationFilterState{Mode: mode, SelectedTownIDs: cloneStrings(s.SelectedTownIDs)}
}

func (s LocationFilterState) WithTowns(townIDs []string) LocationFilterState {
	return LocationFilterState{Mode: s.Mode, SelectedTownIDs: cloneStrings(townIDs)}
}

func (s LocationFilterState) Selected(townID string) bool {
	for _, id := range s.SelectedTownIDs {
		if id == townID {
			return true
		}
	}
	return false
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
