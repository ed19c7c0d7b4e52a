package civigraph

import (
	"context"
	"log/slog"
	"os"

	"github.com/civigraph/civigraph/core/graph"
	"github.com/civigraph/civigraph/core/resolve"
	"github.com/civigraph/civigraph/database"
	"github.com/civigraph/civigraph/helper"
	"github.com/civigraph/civigraph/model"
	loadSql "github.com/civigraph/civigraph/sql"
	"github.com/google/uuid"
)

// Civigraph provides a unified interface to the knowledge graph store and
// the entity resolution engine built on top of it
type Civigraph struct {
	DB            *helper.Database
	Entities      *database.EntitiesDBHandler
	Relationships *database.RelationshipsDBHandler
	Resolver      *resolve.Resolver
	// Logging
	log *slog.Logger
}

// NewCivigraph creates a new Civigraph instance with all handlers and the
// resolver initialized
func NewCivigraph(dbConfig *helper.DatabaseConfiguration, resolverConfig model.ResolverConfig) (*Civigraph, error) {
	// Logger
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	// Initialize database
	db := helper.NewDatabase("civigraph", dbConfig, logger)
	err := loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	// Create handlers in dependency order: relationships carry foreign
	// keys to entities, so the entities table must exist first.
	// force=false to not reload if functions already exist
	entities, err := database.NewEntitiesDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create entities handler", err)
	}

	relationships, err := database.NewRelationshipsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create relationships handler", err)
	}

	resolver := resolve.NewResolver(entities, relationships, resolverConfig, logger)

	return &Civigraph{
		DB:            db,
		Entities:      entities,
		Relationships: relationships,
		Resolver:      resolver,
		log:           logger,
	}, nil
}

// Close closes the database connection
func (c *Civigraph) Close() error {
	if c.DB != nil && c.DB.Instance != nil {
		return c.DB.Instance.Close()
	}
	return nil
}

// ResolveEntity resolves a single candidate observation against the graph,
// matching it to an existing entity or creating a new one
func (c *Civigraph) ResolveEntity(ctx context.Context, candidate *model.EntityCandidate) (*model.ResolvedEntity, error) {
	return c.Resolver.Resolve(ctx, candidate)
}

// FindDuplicates surfaces likely-duplicate entity pairs above the given
// similarity threshold for review
func (c *Civigraph) FindDuplicates(ctx context.Context, threshold float64) ([]*model.DuplicatePair, error) {
	return c.Resolver.FindDuplicates(ctx, threshold)
}

// MergeEntities folds a confirmed duplicate entity into its primary,
// repointing relationships before deleting the duplicate
func (c *Civigraph) MergeEntities(ctx context.Context, primaryID uuid.UUID, duplicateID uuid.UUID) error {
	return c.Resolver.MergeEntities(ctx, primaryID, duplicateID)
}

// AddRelationship inserts a directed, typed relationship between two
// resolved entities
func (c *Civigraph) AddRelationship(ctx context.Context, rel *model.Relationship) error {
	return c.Relationships.InsertRelationship(ctx, rel)
}

// SearchEntities searches stored entities by name or alias substring,
// optionally filtered by type
func (c *Civigraph) SearchEntities(ctx context.Context, term string, entityType *model.EntityType, limit int) ([]*model.Entity, error) {
	return c.Entities.SearchEntities(ctx, term, entityType, limit)
}

// EntityNeighborhood explores the graph around an entity up to maxHops
// relationship hops away, following edges in both directions. An empty
// relationTypes slice follows every relation type.
func (c *Civigraph) EntityNeighborhood(ctx context.Context, entityID uuid.UUID, maxHops int, relationTypes []model.RelationType) ([]*graph.TraversalResult, error) {
	return graph.BFS(ctx, c.Entities, c.Relationships, entityID, maxHops, relationTypes)
}
