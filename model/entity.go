package model

import (
	"time"

	"github.com/google/uuid"
)

// EntityType represents the kind of node stored in the knowledge graph
type EntityType string

const (
	EntityTypePerson       EntityType = "person"
	EntityTypeOrganization EntityType = "organization"
	EntityTypeEvent        EntityType = "event"
	EntityTypeLocation     EntityType = "location"
	EntityTypeTopic        EntityType = "topic"
)

// Entity represents a node in the knowledge graph (person, organization, etc.)
type Entity struct {
	ID           uuid.UUID  `json:"id"`
	Type         EntityType `json:"entity_type"`
	Name         string     `json:"name"`
	Aliases      []string   `json:"aliases,omitempty"`
	Attributes   Attributes `json:"attributes,omitempty"`
	Importance   int        `json:"importance"`
	MentionCount int        `json:"mention_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// HasAlias reports whether the entity already carries the given alias.
func (e *Entity) HasAlias(alias string) bool {
	for _, a := range e.Aliases {
		if a == alias {
			return true
		}
	}
	return false
}
