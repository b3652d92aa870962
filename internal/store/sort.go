package store

import (
	"fmt"
	"strings"

	"countyconnect/pkg/types"
)

// DefaultSort lists newest first.
const DefaultSort = "-created_date"

// sortableFields maps API field names onto listing columns.
var sortableFields = map[string]string{
	"created_date": "created_at",
	"updated_date": "updated_at",
	"title":        "title",
	"expires_at":   "expires_at",
}

// SortSpec is a parsed sort string: "field" ascending, "-field" descending.
type SortSpec struct {
	Field  string
	Column string
	Desc   bool
}

func ParseSort(spec string) (SortSpec, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		spec = DefaultSort
	}

	desc := strings.HasPrefix(spec, "-")
	field := strings.TrimPrefix(spec, "-")

	column, ok := sortableFields[field]
	if !ok {
		return SortSpec{}, types.FieldError("sort", fmt.Sprintf("cannot sort by %q", field))
	}

	return SortSpec{Field: field, Column: column, Desc: desc}, nil
}

// OrderBy renders the clause with id as a tiebreaker so pages are stable.
func (s SortSpec) OrderBy() []string {
	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}
	return []string{fmt.Sprintf("%s %s", s.Column, dir), "id " + dir}
}
