package models

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"
)

// boxScoreFieldMap caches JSON tag -> struct field index mappings
var (
	boxScoreFieldMap     map[string]int
	boxScoreFieldMapOnce sync.Once
)

func getBoxScoreFieldMap() map[string]int {
	boxScoreFieldMapOnce.Do(func() {
		t := reflect.TypeOf(BoxScoreRow{})
		boxScoreFieldMap = make(map[string]int, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			tag := t.Field(i).Tag.Get("json")
			if tag == "" || tag == "-" {
				continue
			}
			name := strings.Split(tag, ",")[0]
			boxScoreFieldMap[name] = i
		}
	})
	return boxScoreFieldMap
}

// UnmarshalJSON implements flexible unmarshaling that accepts both native
// and string-encoded values. Box-score exports routinely quote numeric
// columns ("points": "25") or ship blanks for stats an athlete did not
// record; malformed numeric fields coerce to zero rather than failing the
// row, per the scoring boundary contract.
func (b *BoxScoreRow) UnmarshalJSON(data []byte) error {
	// Alias prevents infinite recursion
	type Alias BoxScoreRow
	a := (*Alias)(b)

	// Fast path: all types match natively
	if err := json.Unmarshal(data, a); err == nil {
		return nil
	}

	// Slow path: field-by-field with string-to-native coercion
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("flex unmarshal: %w", err)
	}

	fieldMap := getBoxScoreFieldMap()
	v := reflect.ValueOf(a).Elem()

	for key, rawVal := range raw {
		idx, ok := fieldMap[key]
		if !ok {
			continue
		}

		fv := v.Field(idx)
		if !fv.CanSet() {
			continue
		}

		ptr := reflect.New(fv.Type())
		if err := json.Unmarshal(rawVal, ptr.Interface()); err == nil {
			fv.Set(ptr.Elem())
			continue
		}

		if len(rawVal) > 1 && rawVal[0] == '"' {
			var s string
			if err := json.Unmarshal(rawVal, &s); err != nil {
				continue
			}
			if s == "" {
				continue
			}
			coerceStringToField(fv, s)
		}
	}

	return nil
}

// coerceStringToField converts a string value to the field's native type.
// Unparseable values leave the field at its zero value.
func coerceStringToField(fv reflect.Value, s string) {
	if fv.Type() == reflect.TypeOf(time.Time{}) {
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if ts, err := time.Parse(layout, s); err == nil {
				fv.Set(reflect.ValueOf(ts))
				return
			}
		}
		return
	}

	switch fv.Kind() {
	case reflect.Float32, reflect.Float64:
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			fv.SetFloat(n)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// ParseFloat handles "28.5" -> truncate to int
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			fv.SetInt(int64(n))
		}
	case reflect.Bool:
		if bv, err := strconv.ParseBool(s); err == nil {
			fv.SetBool(bv)
		}
	case reflect.String:
		fv.SetString(s)
	}
}
