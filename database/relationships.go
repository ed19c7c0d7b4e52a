package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/civigraph/civigraph/helper"
	"github.com/civigraph/civigraph/model"
	loadSql "github.com/civigraph/civigraph/sql"
	"github.com/google/uuid"
)

// RelationshipsDBHandlerFunctions defines the interface for Relationships
// database operations.
type RelationshipsDBHandlerFunctions interface {
	InsertRelationship(ctx context.Context, rel *model.Relationship) error
	SelectRelationship(ctx context.Context, id uuid.UUID) (*model.Relationship, error)
	SelectRelationshipsForEntity(ctx context.Context, entityID uuid.UUID) ([]*model.Relationship, error)
	RepointRelationships(ctx context.Context, fromEntityID uuid.UUID, toEntityID uuid.UUID) (int, error)
	DeleteRelationship(ctx context.Context, id uuid.UUID) error
}

// RelationshipsDBHandler handles relationship-related database operations
type RelationshipsDBHandler struct {
	db *helper.Database
}

// NewRelationshipsDBHandler creates a new relationships database handler.
// It initializes the database connection and loads relationship-related SQL
// functions. If force is true, it will reload the SQL functions even if they
// already exist.
func NewRelationshipsDBHandler(db *helper.Database, force bool) (*RelationshipsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	relationshipsDbHandler := &RelationshipsDBHandler{
		db: db,
	}

	err := loadSql.LoadRelationshipsSql(relationshipsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load relationships sql", err)
	}

	err = relationshipsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized RelationshipsDBHandler")

	return relationshipsDbHandler, nil
}

// CreateTable creates the 'relationships' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary indexes. The entities table must exist
// first because of the endpoint foreign keys.
func (h *RelationshipsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_relationships();`)
	if err != nil {
		log.Panicf("error initializing relationships table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table relationships")

	return nil
}

// InsertRelationship inserts a new relationship between two live entities
func (h *RelationshipsDBHandler) InsertRelationship(ctx context.Context, rel *model.Relationship) error {
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM insert_relationship($1, $2, $3, $4, $5)`,
		rel.SourceEntityID,
		rel.TargetEntityID,
		rel.RelationType,
		rel.Weight,
		rel.Metadata,
	)

	err := row.Scan(
		&rel.ID,
		&rel.SourceEntityID,
		&rel.TargetEntityID,
		&rel.RelationType,
		&rel.Weight,
		&rel.Metadata,
		&rel.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectRelationship retrieves a relationship by ID. Returns nil if no
// relationship matches.
func (h *RelationshipsDBHandler) SelectRelationship(ctx context.Context, id uuid.UUID) (*model.Relationship, error) {
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM select_relationship($1)`,
		id,
	)

	rel := &model.Relationship{}
	err := row.Scan(
		&rel.ID,
		&rel.SourceEntityID,
		&rel.TargetEntityID,
		&rel.RelationType,
		&rel.Weight,
		&rel.Metadata,
		&rel.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return rel, nil
}

// SelectRelationshipsForEntity retrieves all relationships touching an
// entity, as source or as target.
func (h *RelationshipsDBHandler) SelectRelationshipsForEntity(ctx context.Context, entityID uuid.UUID) ([]*model.Relationship, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_relationships_for_entity($1)`,
		entityID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var relationships []*model.Relationship
	for rows.Next() {
		rel := &model.Relationship{}
		err := rows.Scan(
			&rel.ID,
			&rel.SourceEntityID,
			&rel.TargetEntityID,
			&rel.RelationType,
			&rel.Weight,
			&rel.Metadata,
			&rel.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		relationships = append(relationships, rel)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return relationships, nil
}

// RepointRelationships rewrites every relationship referencing fromEntityID,
// as source or as target, to reference toEntityID instead. Returns the
// number of rewritten relationships.
func (h *RelationshipsDBHandler) RepointRelationships(ctx context.Context, fromEntityID uuid.UUID, toEntityID uuid.UUID) (int, error) {
	var repointed int
	err := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT repoint_relationships($1, $2)`,
		fromEntityID,
		toEntityID,
	).Scan(&repointed)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}

	return repointed, nil
}

// DeleteRelationship deletes a relationship by ID
func (h *RelationshipsDBHandler) DeleteRelationship(ctx context.Context, id uuid.UUID) error {
	_, err := h.db.Instance.ExecContext(
		ctx,
		`SELECT delete_relationship($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}
