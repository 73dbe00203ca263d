package utility

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// ToMap converts a struct (or map) into a map[string]interface{} using its
// bson tags, so the result matches what the driver would persist.
func ToMap(data interface{}) (map[string]interface{}, error) {
	if m, ok := data.(map[string]interface{}); ok {
		return m, nil
	}
	if m, ok := data.(bson.M); ok {
		return m, nil
	}

	raw, err := bson.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value: %w", err)
	}

	var result map[string]interface{}
	if err := bson.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal value into map: %w", err)
	}
	return result, nil
}

// GetString reads a string value from a loose map, tolerating absence and
// non-string values.
func GetString(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// FirstNonEmpty returns the first non-empty string in the list.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
