package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"

	"github.com/siherrmann/hybridnlu/helper"
)

// Reserved entity map keys written by post-processing. They describe the
// entities and must not reach command dispatch.
const (
	KeyEmailValid    = "_email_valid"
	KeyPhoneValid    = "_phone_valid"
	KeyBirthdayValid = "_birthday_valid"
	KeyNameValid     = "_name_valid"
)

// EntityMap maps an entity type to its extracted value.
// Empty values count as absent.
type EntityMap map[string]string

// Confidences maps an entity type to the confidence of its value.
type Confidences map[string]float64

// Has reports whether key holds a non-empty value.
func (m EntityMap) Has(key string) bool {
	return m[key] != ""
}

// HasFold is Has with a case-insensitive key match.
func (m EntityMap) HasFold(key string) bool {
	for k, v := range m {
		if v != "" && strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}

// Clone returns a copy of the map. A nil map clones to an empty map.
func (m EntityMap) Clone() EntityMap {
	c := make(EntityMap, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// Compact returns a copy without empty values.
func (m EntityMap) Compact() EntityMap {
	c := make(EntityMap, len(m))
	for k, v := range m {
		if v != "" {
			c[k] = v
		}
	}
	return c
}

// ForDispatch returns a copy without empty values and reserved "_" keys.
func (m EntityMap) ForDispatch() EntityMap {
	c := make(EntityMap, len(m))
	for k, v := range m {
		if v == "" || IsReservedKey(k) {
			continue
		}
		c[k] = v
	}
	return c
}

// IsReservedKey reports whether key is post-processing metadata.
func IsReservedKey(key string) bool {
	return strings.HasPrefix(key, "_")
}

// Value implements the driver.Valuer interface for database storage
func (m EntityMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements the sql.Scanner interface for database retrieval
func (m *EntityMap) Scan(value interface{}) error {
	if value == nil {
		*m = EntityMap{}
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return helper.NewError("byte assertion", errors.New("type assertion to []byte failed"))
	}

	return json.Unmarshal(b, m)
}

// Clone returns a copy of the confidences.
func (c Confidences) Clone() Confidences {
	out := make(Confidences, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}
