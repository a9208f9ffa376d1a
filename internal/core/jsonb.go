// AngelaMos | 2026
// jsonb.go

package core

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONValue encodes v for a JSONB column.
func JSONValue(v any) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("jsonb value: %w", err)
	}
	return b, nil
}

// ScanJSON decodes a JSONB column into dst. NULL leaves dst untouched.
func ScanJSON(src, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("jsonb scan: unsupported type %T", src)
	}
}
