package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/civigraph/civigraph/helper"
)

// Reserved attribute keys maintained by the resolution engine itself.
// Callers must not assume any other key is present.
const (
	AttributeSources      = "sources"
	AttributeDiscoveredAt = "discovered_at"
	AttributeLastUpdated  = "last_updated"
)

// Attributes represents the JSONB attribute bag stored in PostgreSQL.
// Values are limited to JSON scalars, string arrays and nested objects.
type Attributes map[string]interface{}

// Value implements the driver.Valuer interface for database storage
func (a Attributes) Value() (driver.Value, error) {
	return a.Marshal()
}

// Scan implements the sql.Scanner interface for database retrieval
func (a *Attributes) Scan(value interface{}) error {
	return a.Unmarshal(value)
}

// Marshal converts Attributes to JSON bytes
func (a Attributes) Marshal() ([]byte, error) {
	return json.Marshal(a)
}

// Unmarshal converts JSON bytes or Attributes to Attributes
func (a *Attributes) Unmarshal(value interface{}) error {
	if value == nil {
		*a = Attributes{}
		return nil
	}

	if s, ok := value.(Attributes); ok {
		*a = Attributes(s)
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return helper.NewError("byte assertion", errors.New("type assertion to []byte failed"))
	}

	return json.Unmarshal(b, a)
}

// Sources returns the source names recorded under the reserved sources key.
// JSONB round-trips arrays as []interface{}, which is handled here.
func (a Attributes) Sources() []string {
	raw, ok := a[AttributeSources]
	if !ok {
		return nil
	}

	switch v := raw.(type) {
	case []string:
		return v
	case []interface{}:
		sources := make([]string, 0, len(v))
		for _, s := range v {
			if str, ok := s.(string); ok {
				sources = append(sources, str)
			}
		}
		return sources
	default:
		return nil
	}
}

// AddSource records a source name under the reserved sources key,
// preserving insertion order and skipping duplicates.
func (a Attributes) AddSource(source string) {
	sources := a.Sources()
	for _, s := range sources {
		if s == source {
			a[AttributeSources] = sources
			return
		}
	}
	a[AttributeSources] = append(sources, source)
}

// Touch refreshes the reserved last-updated timestamp.
func (a Attributes) Touch(now time.Time) {
	a[AttributeLastUpdated] = now.UTC().Format(time.RFC3339)
}
