// ABOUTME: JSON-in-TEXT helpers for ordered id lists and structured payloads
// ABOUTME: Shared by every store that persists slices or maps in a column
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// marshalJSON serializes a list or map column value, mapping failures onto
// ErrSerialization so callers can reject bad payloads before writing.
func marshalJSON(v interface{}) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return string(raw), nil
}

// scanIDs decodes an ordered id list column; null, empty, or unreadable
// values come back as an empty list.
func scanIDs(col sql.NullString) []string {
	if !col.Valid || col.String == "" {
		return []string{}
	}
	var ids []string
	if err := json.Unmarshal([]byte(col.String), &ids); err != nil {
		return []string{}
	}
	return ids
}

// scanMap decodes a structured payload column the same way.
func scanMap(col sql.NullString) map[string]interface{} {
	if !col.Valid || col.String == "" {
		return nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(col.String), &m); err != nil {
		return nil
	}
	return m
}

// idPlaceholders builds the "?, ?, ?" fragment for IN queries over an id set.
func idPlaceholders(n int) string {
	if n == 0 {
		return ""
	}
	s := "?"
	for i := 1; i < n; i++ {
		s += ", ?"
	}
	return s
}

// idArgs widens a string slice for variadic query arguments.
func idArgs(ids []string) []interface{} {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
