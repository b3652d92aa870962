package utils

import (
	"fmt"
	"reflect"
)

// ColumnTag names the struct tag that maps a field to its table column.
var ColumnTag = "db"

// taggedField is an exported struct field that maps to a column.
type taggedField struct {
	index  int
	column string
}

// columnFields walks a row struct (or pointer to one) and returns the value
// alongside every field carrying a usable db tag, in declaration order.
func columnFields(row any) (reflect.Value, []taggedField) {
	v := reflect.ValueOf(row)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		panic(fmt.Sprintf("utils: %T is not a row struct", row))
	}

	t := v.Type()
	fields := make([]taggedField, 0, t.NumField())
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		column := f.Tag.Get(ColumnTag)
		if column == "" || column == "-" {
			continue
		}
		fields = append(fields, taggedField{index: i, column: column})
	}
	return v, fields
}

// Columns lists the column names of a row type, used for SELECT lists.
func Columns(row any) []string {
	_, fields := columnFields(row)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.column)
	}
	return out
}

// ColumnValues maps column name to field value, ready for an insert or
// upsert SetMap.
func ColumnValues(row any) map[string]any {
	v, fields := columnFields(row)
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		out[f.column] = v.Field(f.index).Interface()
	}
	return out
}

func ErrorWrapOrNil(err error, msg string) error {
	if err == nil {
		return nil
	}
	if msg == "" {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}
