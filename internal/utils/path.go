package utils

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// Resolve walks a dotted path (e.g. "candidate.address.city") into a nested
// document and returns the value at that path. The second return value is
// false when any segment of the path is missing; callers decide the fallback
// behavior per formatting rule.
func Resolve(doc map[string]interface{}, path string) (interface{}, bool) {
	if doc == nil || path == "" {
		return nil, false
	}

	segments := strings.Split(path, ".")
	var current interface{} = doc

	for _, seg := range segments {
		m, ok := asMap(current)
		if !ok {
			return nil, false
		}
		current, ok = m[seg]
		if !ok {
			return nil, false
		}
	}

	if current == nil {
		return nil, false
	}
	return current, true
}

// asMap normalizes the map shapes the Mongo driver can hand back
func asMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case bson.M:
		return m, true
	case bson.D:
		out := make(map[string]interface{}, len(m))
		for _, e := range m {
			out[e.Key] = e.Value
		}
		return out, true
	}
	return nil, false
}

// AsSlice normalizes the array shapes the Mongo driver can hand back.
// Values decoded from BSON arrive as bson.A, not []interface{}.
func AsSlice(v interface{}) ([]interface{}, bool) {
	switch s := v.(type) {
	case []interface{}:
		return s, true
	case bson.A:
		return []interface{}(s), true
	}
	return nil, false
}
