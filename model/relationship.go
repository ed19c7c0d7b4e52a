package model

import (
	"time"

	"github.com/google/uuid"
)

// RelationType represents the type of relationship between entities
type RelationType string

const (
	RelationTypeDonatedTo    RelationType = "donated_to"
	RelationTypeEmployedBy   RelationType = "employed_by"
	RelationTypeOfficerOf    RelationType = "officer_of"
	RelationTypeContractedBy RelationType = "contracted_by"
	RelationTypeLocatedIn    RelationType = "located_in"
	RelationTypeRelatedTo    RelationType = "related_to"
)

// Relationship represents a directed, typed edge between two entities.
// Both endpoints must reference live entities; the schema enforces this
// with foreign keys, so a duplicate entity can only be deleted after
// every edge touching it has been repointed.
type Relationship struct {
	ID             uuid.UUID    `json:"id"`
	SourceEntityID uuid.UUID    `json:"source_entity_id"`
	TargetEntityID uuid.UUID    `json:"target_entity_id"`
	RelationType   RelationType `json:"relation_type"`
	Weight         float64      `json:"weight"`
	Metadata       Attributes   `json:"metadata,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}
