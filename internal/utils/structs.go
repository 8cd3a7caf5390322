package utils

import (
	"errors"
	"fmt"
	"reflect"
)

// ColumnTag maps a row field to its column. Untagged, "-" and unexported
// fields are not columns.
const ColumnTag = "db"

var ErrNotRow = errors.New("row must be a struct or a non-nil pointer to one")

type column struct {
	name  string
	index int
}

func rowColumns(row any) (reflect.Value, []column, error) {
	v := reflect.ValueOf(row)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}, nil, ErrNotRow
		}
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return reflect.Value{}, nil, fmt.Errorf("%w, got %T", ErrNotRow, row)
	}

	t := v.Type()
	cols := make([]column, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		name := f.Tag.Get(ColumnTag)
		if name == "" || name == "-" {
			continue
		}

		cols = append(cols, column{name: name, index: i})
	}

	return v, cols, nil
}

// Columns lists the column names of row in field order.
func Columns(row any) ([]string, error) {
	_, cols, err := rowColumns(row)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.name
	}
	return names, nil
}

// MustColumns is Columns for package level column lists.
func MustColumns(row any) []string {
	names, err := Columns(row)
	if err != nil {
		panic(err)
	}
	return names
}

// ColumnValues maps every column of row to its field value, ready for an
// insert's SetMap.
func ColumnValues(row any) (map[string]any, error) {
	v, cols, err := rowColumns(row)
	if err != nil {
		return nil, err
	}

	values := make(map[string]any, len(cols))
	for _, c := range cols {
		values[c.name] = v.Field(c.index).Interface()
	}
	return values, nil
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
