package resolve

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/civigraph/civigraph/core/match"
	"github.com/civigraph/civigraph/database"
	"github.com/civigraph/civigraph/helper"
	"github.com/civigraph/civigraph/model"
)

// Resolution confidences per cascade stage. A fuzzy match reports the
// similarity score itself.
const (
	exactMatchConfidence      = 1.0
	identifierMatchConfidence = 0.99
	newEntityConfidence       = 1.0
)

// ErrEmptyCandidateName is returned when a candidate's name reduces to the
// empty string after normalization. Such a candidate can never fuzzy-match
// and would create an unmatchable graph node, so it is rejected.
var ErrEmptyCandidateName = errors.New("candidate name is empty after normalization")

// Resolver decides, for each incoming entity observation, whether it refers
// to an entity already in the graph or represents a new one, and merges its
// attributes in either way.
//
// Resolver performs no internal locking. Concurrent resolution of two
// candidates with the same normalized name is handled by the storage layer's
// insert-or-fetch semantics: the loser of a create race degrades to an exact
// match instead of producing a second entity.
type Resolver struct {
	entities      database.EntitiesDBHandlerFunctions
	relationships database.RelationshipsDBHandlerFunctions
	config        model.ResolverConfig
	log           *slog.Logger
}

// NewResolver creates a new Resolver on top of the given handlers
func NewResolver(
	entities database.EntitiesDBHandlerFunctions,
	relationships database.RelationshipsDBHandlerFunctions,
	config model.ResolverConfig,
	logger *slog.Logger,
) *Resolver {
	return &Resolver{
		entities:      entities,
		relationships: relationships,
		config:        config,
		log:           logger,
	}
}

// Resolve runs the matching cascade for a single candidate observation:
// exact name match, then strong identifier match, then fuzzy name match,
// then creation of a new entity. The first matching stage wins. On any
// match the candidate's attributes are merged into the matched entity.
//
// Storage errors during the match stages propagate; no partial entity is
// left behind. The caller is responsible for retrying.
func (r *Resolver) Resolve(ctx context.Context, candidate *model.EntityCandidate) (*model.ResolvedEntity, error) {
	if match.Normalize(candidate.Name) == "" {
		return nil, helper.NewError("validate candidate", ErrEmptyCandidateName)
	}

	// Stage 1: exact name match
	entity, err := r.entities.SelectEntityByExactName(ctx, candidate.Name)
	if err != nil {
		return nil, helper.NewError("exact name lookup", err)
	}
	if entity != nil {
		r.mergeAttributes(ctx, entity, candidate)
		return &model.ResolvedEntity{
			EntityID:   entity.ID,
			IsNew:      false,
			Confidence: exactMatchConfidence,
			MatchedBy:  model.MatchMethodExact,
		}, nil
	}

	// Stage 2: strong identifier match, in fixed priority order
	for _, kind := range model.IdentifierPriority {
		value := candidate.Identifiers[kind]
		if value == "" {
			continue
		}

		entity, err = r.entities.SelectEntityByIdentifier(ctx, kind, value)
		if err != nil {
			return nil, helper.NewError("identifier lookup", err)
		}
		if entity != nil {
			r.mergeAttributes(ctx, entity, candidate)
			return &model.ResolvedEntity{
				EntityID:   entity.ID,
				IsNew:      false,
				Confidence: identifierMatchConfidence,
				MatchedBy:  model.MatchMethodIdentifier,
			}, nil
		}
	}

	// Stage 3: fuzzy name match over a bounded entity pool
	best, bestScore, err := r.bestFuzzyMatch(ctx, candidate)
	if err != nil {
		return nil, helper.NewError("fuzzy match scan", err)
	}
	if best != nil && bestScore > r.config.FuzzyMatchThreshold {
		r.mergeAttributes(ctx, best, candidate)
		return &model.ResolvedEntity{
			EntityID:   best.ID,
			IsNew:      false,
			Confidence: bestScore,
			MatchedBy:  model.MatchMethodFuzzy,
		}, nil
	}

	// Stage 4: create a new entity
	return r.createEntity(ctx, candidate)
}

// bestFuzzyMatch scans the candidate pool and returns the single
// highest-scoring entity across main names and aliases. The pool is
// restricted to the candidate's mapped type for person, organization and
// committee candidates and broadened to all entities otherwise. Ties keep
// the earliest-encountered entity in the deterministic scan order.
func (r *Resolver) bestFuzzyMatch(ctx context.Context, candidate *model.EntityCandidate) (*model.Entity, float64, error) {
	var typeFilter *model.EntityType
	switch candidate.Type {
	case model.CandidateTypePerson, model.CandidateTypeOrganization, model.CandidateTypeCommittee:
		mapped := model.MapCandidateType(candidate.Type)
		typeFilter = &mapped
	}

	pool, err := r.entities.SelectEntities(ctx, typeFilter, r.config.FuzzyScanLimit)
	if err != nil {
		return nil, 0, err
	}

	var best *model.Entity
	var bestScore float64
	for _, entity := range pool {
		score := match.Similarity(candidate.Name, entity.Name)
		for _, alias := range entity.Aliases {
			if aliasScore := match.Similarity(candidate.Name, alias); aliasScore > score {
				score = aliasScore
			}
		}

		if score > bestScore {
			best = entity
			bestScore = score
		}
	}

	return best, bestScore, nil
}

// createEntity inserts a new entity seeded from the candidate. When a
// concurrent resolution created the same entity between the exact-match
// read and this write, the insert degrades to a fetch and the candidate is
// merged into the existing row as an exact match.
func (r *Resolver) createEntity(ctx context.Context, candidate *model.EntityCandidate) (*model.ResolvedEntity, error) {
	attributes := model.Attributes{}
	for key, value := range candidate.Attributes {
		attributes[key] = value
	}
	for kind, value := range candidate.Identifiers {
		if value != "" {
			attributes[string(kind)] = value
		}
	}
	attributes.AddSource(candidate.Source)
	attributes[model.AttributeDiscoveredAt] = time.Now().UTC().Format(time.RFC3339)

	entity := &model.Entity{
		Type:         model.MapCandidateType(candidate.Type),
		Name:         candidate.Name,
		Aliases:      unionAliases(nil, candidate.Aliases),
		Attributes:   attributes,
		Importance:   r.config.DefaultImportance,
		MentionCount: 1,
	}

	created, err := r.entities.InsertEntity(ctx, entity)
	if err != nil {
		return nil, helper.NewError("insert entity", err)
	}

	if !created {
		// Lost the name-create race; treat as an exact match
		r.log.Info("Entity create raced an existing row, merging instead",
			slog.String("entity_id", entity.ID.String()),
			slog.String("name", candidate.Name),
		)
		r.mergeAttributes(ctx, entity, candidate)
		return &model.ResolvedEntity{
			EntityID:   entity.ID,
			IsNew:      false,
			Confidence: exactMatchConfidence,
			MatchedBy:  model.MatchMethodExact,
		}, nil
	}

	r.log.Info("Created entity",
		slog.String("entity_id", entity.ID.String()),
		slog.String("name", entity.Name),
		slog.String("entity_type", string(entity.Type)),
		slog.String("source", candidate.Source),
	)

	return &model.ResolvedEntity{
		EntityID:   entity.ID,
		IsNew:      true,
		Confidence: newEntityConfidence,
		MatchedBy:  model.MatchMethodNew,
	}, nil
}

// mergeAttributes folds a candidate into a matched entity: attribute union
// with candidate values winning on collision, identifiers written into the
// attribute bag, source provenance and alias union, mention count bump.
// A storage error here is logged and swallowed so a successful match is not
// turned into a spurious failure; the missed update surfaces on the next
// sighting.
func (r *Resolver) mergeAttributes(ctx context.Context, entity *model.Entity, candidate *model.EntityCandidate) {
	merged := model.Attributes{}
	for key, value := range entity.Attributes {
		merged[key] = value
	}
	for key, value := range candidate.Attributes {
		merged[key] = value
	}
	for kind, value := range candidate.Identifiers {
		if value != "" {
			merged[string(kind)] = value
		}
	}
	merged.AddSource(candidate.Source)
	merged.Touch(time.Now())

	aliases := unionAliases(entity.Aliases, candidate.Aliases)

	err := r.entities.UpdateEntityResolution(ctx, entity.ID, merged, aliases, entity.MentionCount+1)
	if err != nil {
		r.log.Warn("Attribute merge failed, match result unaffected",
			slog.String("entity_id", entity.ID.String()),
			slog.String("error", err.Error()),
		)
		return
	}

	entity.Attributes = merged
	entity.Aliases = aliases
	entity.MentionCount++
}

// unionAliases appends new non-empty aliases to current, preserving order
// and skipping duplicates.
func unionAliases(current []string, add []string) []string {
	out := make([]string, 0, len(current)+len(add))
	seen := make(map[string]bool, len(current)+len(add))
	for _, alias := range current {
		if alias != "" && !seen[alias] {
			out = append(out, alias)
			seen[alias] = true
		}
	}
	for _, alias := range add {
		if alias != "" && !seen[alias] {
			out = append(out, alias)
			seen[alias] = true
		}
	}
	return out
}
