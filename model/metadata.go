package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/siherrmann/hybridnlu/helper"
)

// Metadata holds free-form JSONB annotations of a logged utterance.
type Metadata map[string]interface{}

// Value implements the driver.Valuer interface. A nil map is stored as an empty object.
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements the sql.Scanner interface for JSONB given as bytes or string.
func (m *Metadata) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*m = Metadata{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return helper.NewError("scan metadata", fmt.Errorf("unsupported type %T", value))
	}

	decoded := Metadata{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return helper.NewError("decode metadata", err)
	}
	*m = decoded
	return nil
}

// Bool returns the boolean stored under key, false if missing or not a bool.
func (m Metadata) Bool(key string) bool {
	b, _ := m[key].(bool)
	return b
}
