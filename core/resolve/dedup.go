package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/civigraph/civigraph/core/match"
	"github.com/civigraph/civigraph/helper"
	"github.com/civigraph/civigraph/model"
	"github.com/google/uuid"
)

// FindDuplicates performs an all-pairs similarity sweep over a bounded
// sample of the entity population and returns likely-duplicate pairs with
// threshold <= score < 1.0, sorted descending by score. Pairs with
// identical names are excluded; those should already have collapsed via
// the exact-match stage.
//
// This is deliberately O(n²) over the sample and meant for batch or
// operator-triggered review, not the resolution hot path.
func (r *Resolver) FindDuplicates(ctx context.Context, threshold float64) ([]*model.DuplicatePair, error) {
	entities, err := r.entities.SelectEntities(ctx, nil, r.config.DuplicateScanLimit)
	if err != nil {
		return nil, helper.NewError("load entity sample", err)
	}

	var pairs []*model.DuplicatePair
	for i := 0; i < len(entities); i++ {
		for j := i + 1; j < len(entities); j++ {
			score := match.Similarity(entities[i].Name, entities[j].Name)
			if score >= threshold && score < 1.0 {
				pairs = append(pairs, &model.DuplicatePair{
					EntityAID: entities[i].ID,
					EntityBID: entities[j].ID,
					NameA:     entities[i].Name,
					NameB:     entities[j].Name,
					Score:     score,
				})
			}
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].Score > pairs[j].Score
	})

	r.log.Info("Duplicate scan finished",
		slog.Int("entities_scanned", len(entities)),
		slog.Int("pairs_found", len(pairs)),
		slog.Float64("threshold", threshold),
	)

	return pairs, nil
}

// MergeEntities folds a confirmed duplicate entity into its primary:
// aliases and attributes are merged onto the primary (primary values win
// on attribute conflict), every relationship touching the duplicate is
// repointed to the primary, and only then is the duplicate deleted. The
// order is load, merge, write, repoint, delete; a relationship must never
// be left referencing a deleted entity.
//
// The operation is a no-op when either entity is missing.
func (r *Resolver) MergeEntities(ctx context.Context, primaryID uuid.UUID, duplicateID uuid.UUID) error {
	if primaryID == duplicateID {
		return helper.NewError("merge entities", fmt.Errorf("primary and duplicate are the same entity %s", primaryID))
	}

	primary, err := r.entities.SelectEntity(ctx, primaryID)
	if err != nil {
		return helper.NewError("load primary entity", err)
	}
	duplicate, err := r.entities.SelectEntity(ctx, duplicateID)
	if err != nil {
		return helper.NewError("load duplicate entity", err)
	}
	if primary == nil || duplicate == nil {
		r.log.Warn("Entity merge skipped, entity missing",
			slog.String("primary_id", primaryID.String()),
			slog.String("duplicate_id", duplicateID.String()),
		)
		return nil
	}

	// Duplicate values as base, primary values override on conflict
	merged := model.Attributes{}
	for key, value := range duplicate.Attributes {
		merged[key] = value
	}
	for key, value := range primary.Attributes {
		merged[key] = value
	}
	for _, source := range duplicate.Attributes.Sources() {
		merged.AddSource(source)
	}
	for _, source := range primary.Attributes.Sources() {
		merged.AddSource(source)
	}
	merged.Touch(time.Now())

	aliases := unionAliases(primary.Aliases, append([]string{duplicate.Name}, duplicate.Aliases...))

	err = r.entities.UpdateEntityResolution(ctx, primaryID, merged, aliases, primary.MentionCount+duplicate.MentionCount)
	if err != nil {
		return helper.NewError("write merged entity", err)
	}

	repointed, err := r.relationships.RepointRelationships(ctx, duplicateID, primaryID)
	if err != nil {
		return helper.NewError("repoint relationships", err)
	}

	// Safe to delete only now that no relationship references the duplicate
	err = r.entities.DeleteEntity(ctx, duplicateID)
	if err != nil {
		return helper.NewError("delete duplicate entity", err)
	}

	r.log.Info("Merged entities",
		slog.String("primary_id", primaryID.String()),
		slog.String("duplicate_id", duplicateID.String()),
		slog.String("duplicate_name", duplicate.Name),
		slog.Int("relationships_repointed", repointed),
	)

	return nil
}
