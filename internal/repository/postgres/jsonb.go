package postgres

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// jsonb maps a JSONB column onto a Go value. NULL scans to the zero value.
type jsonb[T any] struct {
	V T
}

func (j *jsonb[T]) Scan(src any) error {
	var zero T
	j.V = zero
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, &j.V)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), &j.V)
	default:
		return fmt.Errorf("jsonb: unsupported source %T", src)
	}
}

func (j jsonb[T]) Value() (driver.Value, error) {
	buf, err := json.Marshal(j.V)
	if err != nil {
		return nil, err
	}
	return string(buf), nil
}
