package model

import "github.com/google/uuid"

// CandidateType is the entity kind reported by an upstream source.
// Source vocabularies are broader than the stored graph types, so
// candidate types are mapped before an entity is created.
type CandidateType string

const (
	CandidateTypePerson       CandidateType = "person"
	CandidateTypeOrganization CandidateType = "organization"
	CandidateTypeCommittee    CandidateType = "committee"
	CandidateTypeContract     CandidateType = "contract"
	CandidateTypeFiling       CandidateType = "filing"
	CandidateTypeLocation     CandidateType = "location"
	CandidateTypeTopic        CandidateType = "topic"
)

// IdentifierKind names a strong external identifier usable for
// high-confidence matching without name comparison.
type IdentifierKind string

const (
	IdentifierTaxID      IdentifierKind = "tax_id"
	IdentifierRegistryID IdentifierKind = "registry_id"
	IdentifierElectionID IdentifierKind = "election_id"
)

// IdentifierPriority is the fixed order in which strong identifiers are
// checked during resolution.
var IdentifierPriority = []IdentifierKind{
	IdentifierTaxID,
	IdentifierRegistryID,
	IdentifierElectionID,
}

// EntityCandidate is a single observation of an entity reported by an
// upstream public-records source. It is consumed entirely by resolution
// and never persisted as-is.
type EntityCandidate struct {
	Name        string                    `json:"name"`
	Type        CandidateType             `json:"type"`
	Source      string                    `json:"source"`
	Identifiers map[IdentifierKind]string `json:"identifiers,omitempty"`
	Attributes  Attributes                `json:"attributes,omitempty"`
	Aliases     []string                  `json:"aliases,omitempty"`
}

// MatchMethod names the cascade stage that produced a resolution.
type MatchMethod string

const (
	MatchMethodExact      MatchMethod = "exact"
	MatchMethodIdentifier MatchMethod = "identifier"
	MatchMethodFuzzy      MatchMethod = "fuzzy"
	MatchMethodNew        MatchMethod = "new"
)

// ResolvedEntity is the outcome of resolving a single candidate.
type ResolvedEntity struct {
	EntityID   uuid.UUID   `json:"entity_id"`
	IsNew      bool        `json:"is_new"`
	Confidence float64     `json:"confidence"`
	MatchedBy  MatchMethod `json:"matched_by"`
}

// DuplicatePair is a likely-duplicate entity pair surfaced by the
// batch duplicate scan, for human or automated review.
type DuplicatePair struct {
	EntityAID uuid.UUID `json:"entity_a_id"`
	EntityBID uuid.UUID `json:"entity_b_id"`
	NameA     string    `json:"name_a"`
	NameB     string    `json:"name_b"`
	Score     float64   `json:"score"`
}

// MapCandidateType maps a source-reported candidate type onto the stored
// graph entity type. Committees are organizations in the graph; contracts
// and filings are events. Unknown types default to organization.
func MapCandidateType(t CandidateType) EntityType {
	switch t {
	case CandidateTypePerson:
		return EntityTypePerson
	case CandidateTypeOrganization, CandidateTypeCommittee:
		return EntityTypeOrganization
	case CandidateTypeContract, CandidateTypeFiling:
		return EntityTypeEvent
	case CandidateTypeLocation:
		return EntityTypeLocation
	case CandidateTypeTopic:
		return EntityTypeTopic
	default:
		return EntityTypeOrganization
	}
}
