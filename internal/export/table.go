package export

import (
	"fmt"
	"reflect"
	"strconv"
	"time"
)

const dateLayout = "2006-01-02"

var timeType = reflect.TypeOf(time.Time{})

// table is a typed row slice plus the column layout read from its csv tags.
type table struct {
	header []string
	fields []int
	rows   reflect.Value
}

func newTable[T any](rows []T) (*table, error) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("export rows must be structs, got %s", typ)
	}

	t := &table{rows: reflect.ValueOf(rows)}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		name := f.Tag.Get("csv")
		if name == "" || name == "-" || !f.IsExported() {
			continue
		}
		t.header = append(t.header, name)
		t.fields = append(t.fields, i)
	}
	if len(t.header) == 0 {
		return nil, fmt.Errorf("%s has no csv columns", typ)
	}
	return t, nil
}

func (t *table) Len() int { return t.rows.Len() }

// record renders row i into buf, which must hold len(t.header) strings.
func (t *table) record(i int, buf []string) []string {
	row := t.rows.Index(i)
	for j, fi := range t.fields {
		buf[j] = formatValue(row.Field(fi))
	}
	return buf
}

func formatValue(v reflect.Value) string {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	if v.Type() == timeType {
		return v.Interface().(time.Time).Format(dateLayout)
	}
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	default:
		return fmt.Sprint(v.Interface())
	}
}
