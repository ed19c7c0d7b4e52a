package graph

import (
	"context"

	"github.com/civigraph/civigraph/model"
	"github.com/google/uuid"
)

// EntityStore provides entity lookups for traversal.
type EntityStore interface {
	SelectEntity(ctx context.Context, id uuid.UUID) (*model.Entity, error)
}

// RelationshipStore provides the edges touching an entity for traversal.
type RelationshipStore interface {
	SelectRelationshipsForEntity(ctx context.Context, entityID uuid.UUID) ([]*model.Relationship, error)
}

// TraversalResult contains an entity and its distance from the source
type TraversalResult struct {
	Entity   *model.Entity
	Distance int
	Path     []uuid.UUID // Path from source to this entity
}

// BFS performs breadth-first search from a source entity, following
// relationships in both directions. An empty relationTypes slice follows
// every relation type. The source entity itself is the first result with
// distance 0.
func BFS(ctx context.Context, entities EntityStore, relationships RelationshipStore, sourceID uuid.UUID, maxHops int, relationTypes []model.RelationType) ([]*TraversalResult, error) {
	sourceEntity, err := entities.SelectEntity(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	if sourceEntity == nil {
		return nil, nil
	}

	visited := map[uuid.UUID]bool{sourceID: true}
	queue := []TraversalResult{{
		Entity:   sourceEntity,
		Distance: 0,
		Path:     []uuid.UUID{sourceID},
	}}

	var results []*TraversalResult
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		results = append(results, &current)

		if current.Distance >= maxHops {
			continue
		}

		rels, err := relationships.SelectRelationshipsForEntity(ctx, current.Entity.ID)
		if err != nil {
			return nil, err
		}

		for _, rel := range rels {
			if !matchesRelationType(rel, relationTypes) {
				continue
			}

			targetID := otherEndpoint(rel, current.Entity.ID)
			if visited[targetID] {
				continue
			}

			targetEntity, err := entities.SelectEntity(ctx, targetID)
			if err != nil || targetEntity == nil {
				continue
			}

			visited[targetID] = true

			newPath := make([]uuid.UUID, len(current.Path))
			copy(newPath, current.Path)
			newPath = append(newPath, targetID)

			queue = append(queue, TraversalResult{
				Entity:   targetEntity,
				Distance: current.Distance + 1,
				Path:     newPath,
			})
		}
	}

	return results, nil
}

// Neighbors retrieves the immediate (1-hop) neighbors of an entity
func Neighbors(ctx context.Context, entities EntityStore, relationships RelationshipStore, entityID uuid.UUID, relationTypes []model.RelationType) ([]*model.Entity, error) {
	results, err := BFS(ctx, entities, relationships, entityID, 1, relationTypes)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	// Skip the source entity itself (first result)
	neighbors := make([]*model.Entity, 0, len(results)-1)
	for i := 1; i < len(results); i++ {
		neighbors = append(neighbors, results[i].Entity)
	}

	return neighbors, nil
}

// matchesRelationType reports whether the relationship passes the type
// filter. An empty filter matches everything.
func matchesRelationType(rel *model.Relationship, relationTypes []model.RelationType) bool {
	if len(relationTypes) == 0 {
		return true
	}
	for _, rt := range relationTypes {
		if rel.RelationType == rt {
			return true
		}
	}
	return false
}

// otherEndpoint returns the endpoint of the relationship that is not the
// given entity.
func otherEndpoint(rel *model.Relationship, entityID uuid.UUID) uuid.UUID {
	if rel.SourceEntityID == entityID {
		return rel.TargetEntityID
	}
	return rel.SourceEntityID
}
