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
	"github.com/lib/pq"
)

// EntitiesDBHandlerFunctions defines the interface for Entities database operations.
// Point lookups return a nil entity (and nil error) when nothing matches, so
// callers can distinguish "no match" from a storage failure.
type EntitiesDBHandlerFunctions interface {
	InsertEntity(ctx context.Context, entity *model.Entity) (bool, error)
	SelectEntity(ctx context.Context, id uuid.UUID) (*model.Entity, error)
	SelectEntityByExactName(ctx context.Context, name string) (*model.Entity, error)
	SelectEntityByIdentifier(ctx context.Context, kind model.IdentifierKind, value string) (*model.Entity, error)
	SelectEntities(ctx context.Context, entityType *model.EntityType, limit int) ([]*model.Entity, error)
	SearchEntities(ctx context.Context, term string, entityType *model.EntityType, limit int) ([]*model.Entity, error)
	UpdateEntityResolution(ctx context.Context, id uuid.UUID, attributes model.Attributes, aliases []string, mentionCount int) error
	UpdateEntityImportance(ctx context.Context, id uuid.UUID, importance int) error
	DeleteEntity(ctx context.Context, id uuid.UUID) error
}

// EntitiesDBHandler handles entity-related database operations
type EntitiesDBHandler struct {
	db *helper.Database
}

// NewEntitiesDBHandler creates a new entities database handler.
// It initializes the database connection and loads entity-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewEntitiesDBHandler(db *helper.Database, force bool) (*EntitiesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	entitiesDbHandler := &EntitiesDBHandler{
		db: db,
	}

	err := loadSql.LoadEntitiesSql(entitiesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load entities sql", err)
	}

	err = entitiesDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized EntitiesDBHandler")

	return entitiesDbHandler, nil
}

// CreateTable creates the 'entities' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary indexes.
func (h *EntitiesDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Use the SQL init() function to create all tables and indexes
	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_entities();`)
	if err != nil {
		log.Panicf("error initializing entities table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table entities")

	return nil
}

// InsertEntity inserts a new entity with insert-or-fetch semantics: when an
// entity with the same case-insensitive name and type already exists, the
// existing row is loaded into entity instead and false is returned.
func (h *EntitiesDBHandler) InsertEntity(ctx context.Context, entity *model.Entity) (bool, error) {
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM insert_entity($1, $2, $3, $4, $5, $6)`,
		entity.Type,
		entity.Name,
		pq.Array(entity.Aliases),
		entity.Attributes,
		entity.Importance,
		entity.MentionCount,
	)

	var created bool
	err := row.Scan(
		&entity.ID,
		&entity.Type,
		&entity.Name,
		pq.Array(&entity.Aliases),
		&entity.Attributes,
		&entity.Importance,
		&entity.MentionCount,
		&entity.CreatedAt,
		&entity.UpdatedAt,
		&created,
	)
	if err != nil {
		return false, helper.NewError("scan", err)
	}

	return created, nil
}

// SelectEntity retrieves an entity by ID. Returns nil if no entity matches.
func (h *EntitiesDBHandler) SelectEntity(ctx context.Context, id uuid.UUID) (*model.Entity, error) {
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM select_entity($1)`,
		id,
	)

	return scanEntityRow(row)
}

// SelectEntityByExactName retrieves an entity by case-insensitive name
// equality. Returns nil if no entity matches.
func (h *EntitiesDBHandler) SelectEntityByExactName(ctx context.Context, name string) (*model.Entity, error) {
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM select_entity_by_exact_name($1)`,
		name,
	)

	return scanEntityRow(row)
}

// SelectEntityByIdentifier retrieves an entity whose attribute bag carries
// the given strong identifier value. Returns nil if no entity matches.
func (h *EntitiesDBHandler) SelectEntityByIdentifier(ctx context.Context, kind model.IdentifierKind, value string) (*model.Entity, error) {
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM select_entity_by_identifier($1, $2)`,
		string(kind),
		value,
	)

	return scanEntityRow(row)
}

// SelectEntities retrieves up to limit entities in deterministic creation
// order, optionally filtered by type.
func (h *EntitiesDBHandler) SelectEntities(ctx context.Context, entityType *model.EntityType, limit int) ([]*model.Entity, error) {
	var rows *sql.Rows
	var err error

	if entityType != nil {
		rows, err = h.db.Instance.QueryContext(
			ctx,
			`SELECT * FROM select_entities($1, $2)`,
			*entityType,
			limit,
		)
	} else {
		rows, err = h.db.Instance.QueryContext(
			ctx,
			`SELECT * FROM select_entities(NULL, $1)`,
			limit,
		)
	}

	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return scanEntityRows(rows)
}

// SearchEntities searches entities by name or alias substring
func (h *EntitiesDBHandler) SearchEntities(ctx context.Context, term string, entityType *model.EntityType, limit int) ([]*model.Entity, error) {
	var rows *sql.Rows
	var err error

	if entityType != nil {
		rows, err = h.db.Instance.QueryContext(
			ctx,
			`SELECT * FROM search_entities($1, $2, $3)`,
			term,
			*entityType,
			limit,
		)
	} else {
		rows, err = h.db.Instance.QueryContext(
			ctx,
			`SELECT * FROM search_entities($1, NULL, $2)`,
			term,
			limit,
		)
	}

	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return scanEntityRows(rows)
}

// UpdateEntityResolution writes the attribute bag, alias set and mention
// count of an entity in a single update.
func (h *EntitiesDBHandler) UpdateEntityResolution(ctx context.Context, id uuid.UUID, attributes model.Attributes, aliases []string, mentionCount int) error {
	_, err := h.db.Instance.ExecContext(
		ctx,
		`SELECT update_entity_resolution($1, $2, $3, $4)`,
		id,
		attributes,
		pq.Array(aliases),
		mentionCount,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// UpdateEntityImportance updates the importance signal of an entity
func (h *EntitiesDBHandler) UpdateEntityImportance(ctx context.Context, id uuid.UUID, importance int) error {
	_, err := h.db.Instance.ExecContext(
		ctx,
		`SELECT update_entity_importance($1, $2)`,
		id,
		importance,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// DeleteEntity deletes an entity by ID
func (h *EntitiesDBHandler) DeleteEntity(ctx context.Context, id uuid.UUID) error {
	_, err := h.db.Instance.ExecContext(
		ctx,
		`SELECT delete_entity($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// scanEntityRow scans a single entity row, mapping sql.ErrNoRows to nil
func scanEntityRow(row *sql.Row) (*model.Entity, error) {
	entity := &model.Entity{}
	err := row.Scan(
		&entity.ID,
		&entity.Type,
		&entity.Name,
		pq.Array(&entity.Aliases),
		&entity.Attributes,
		&entity.Importance,
		&entity.MentionCount,
		&entity.CreatedAt,
		&entity.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return entity, nil
}

// scanEntityRows scans a set of entity rows
func scanEntityRows(rows *sql.Rows) ([]*model.Entity, error) {
	var entities []*model.Entity
	for rows.Next() {
		entity := &model.Entity{}
		err := rows.Scan(
			&entity.ID,
			&entity.Type,
			&entity.Name,
			pq.Array(&entity.Aliases),
			&entity.Attributes,
			&entity.Importance,
			&entity.MentionCount,
			&entity.CreatedAt,
			&entity.UpdatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		entities = append(entities, entity)
	}

	err := rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return entities, nil
}
