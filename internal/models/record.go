package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Record is one untrusted JSON object from a collection document.
// Every field is optional; accessors return zero values for absent or mistyped fields.
type Record map[string]any

// Text returns the field as a string. Numbers are rendered in their JSON form,
// anything else (objects, arrays, booleans, null) reads as "".
func (r Record) Text(field string) string {
	switch v := r[field].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}

// Truthy reports whether the field holds a value a page would treat as set:
// true, a non-empty string other than "false"/"0", a non-zero number, or any
// object or array.
func (r Record) Truthy(field string) bool {
	switch v := r[field].(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		s := strings.TrimSpace(strings.ToLower(v))
		return s != "" && s != "false" && s != "0"
	case json.Number:
		f, err := v.Float64()
		return err == nil && f != 0
	case float64:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	default:
		return true
	}
}

// ID returns the record id as text, or "" when absent.
func (r Record) ID() string {
	return r.Text("id")
}

// NumericID returns the id as an integer when it is one.
func (r Record) NumericID() (int64, bool) {
	switch v := r["id"].(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, true
		}
		if f, err := v.Float64(); err == nil && f == float64(int64(f)) {
			return int64(f), true
		}
	case float64:
		if v == float64(int64(v)) {
			return int64(v), true
		}
	case int:
		return int64(v), true
	case int64:
		return v, true
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// FindByID returns the first record whose id matches. Ids are neither unique
// nor guaranteed present, so a miss is reported with ok=false rather than an error.
func FindByID(items []Record, id string) (Record, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, false
	}
	for _, item := range items {
		if item.ID() == id {
			return item, true
		}
	}
	return nil, false
}
