package resolve

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/civigraph/civigraph/helper"
	"github.com/civigraph/civigraph/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEntitiesHandler is an in-memory stand-in for the entities handler used
// to exercise resolver paths that a live database cannot force, like a failing
// resolution write or a lost insert race.
type stubEntitiesHandler struct {
	existing   *model.Entity
	raceEntity *model.Entity
	updateErr  error

	updateCalls     int
	updatedAttrs    model.Attributes
	updatedAliases  []string
	updatedMentions int
}

func (s *stubEntitiesHandler) InsertEntity(ctx context.Context, entity *model.Entity) (bool, error) {
	if s.raceEntity != nil {
		*entity = *s.raceEntity
		return false, nil
	}
	entity.ID = uuid.New()
	return true, nil
}

func (s *stubEntitiesHandler) SelectEntity(ctx context.Context, id uuid.UUID) (*model.Entity, error) {
	return nil, nil
}

func (s *stubEntitiesHandler) SelectEntityByExactName(ctx context.Context, name string) (*model.Entity, error) {
	return s.existing, nil
}

func (s *stubEntitiesHandler) SelectEntityByIdentifier(ctx context.Context, kind model.IdentifierKind, value string) (*model.Entity, error) {
	return nil, nil
}

func (s *stubEntitiesHandler) SelectEntities(ctx context.Context, entityType *model.EntityType, limit int) ([]*model.Entity, error) {
	return nil, nil
}

func (s *stubEntitiesHandler) SearchEntities(ctx context.Context, term string, entityType *model.EntityType, limit int) ([]*model.Entity, error) {
	return nil, nil
}

func (s *stubEntitiesHandler) UpdateEntityResolution(ctx context.Context, id uuid.UUID, attributes model.Attributes, aliases []string, mentionCount int) error {
	s.updateCalls++
	s.updatedAttrs = attributes
	s.updatedAliases = aliases
	s.updatedMentions = mentionCount
	return s.updateErr
}

func (s *stubEntitiesHandler) UpdateEntityImportance(ctx context.Context, id uuid.UUID, importance int) error {
	return nil
}

func (s *stubEntitiesHandler) DeleteEntity(ctx context.Context, id uuid.UUID) error {
	return nil
}

func newStubResolver(stub *stubEntitiesHandler) *Resolver {
	logger := slog.New(helper.NewPrettyHandler(io.Discard, helper.PrettyHandlerOptions{}))
	return NewResolver(stub, nil, model.DefaultResolverConfig(), logger)
}

func TestResolverMergeWriteFailure(t *testing.T) {
	ctx := context.Background()
	existing := &model.Entity{
		ID:           uuid.New(),
		Type:         model.EntityTypeOrganization,
		Name:         "Harborview Development Corp",
		Attributes:   model.Attributes{"founded": "1987"},
		MentionCount: 3,
	}
	stub := &stubEntitiesHandler{
		existing:  existing,
		updateErr: errors.New("connection reset"),
	}
	resolver := newStubResolver(stub)

	resolved, err := resolver.Resolve(ctx, &model.EntityCandidate{
		Name:       "Harborview Development Corp",
		Type:       model.CandidateTypeOrganization,
		Source:     "contract_registry",
		Attributes: model.Attributes{"sector": "construction"},
	})
	require.NoError(t, err, "A failed resolution write should not fail the match")
	require.NotNil(t, resolved)

	t.Run("Match result is unaffected by the failed write", func(t *testing.T) {
		assert.Equal(t, existing.ID, resolved.EntityID)
		assert.False(t, resolved.IsNew)
		assert.Equal(t, model.MatchMethodExact, resolved.MatchedBy)
		assert.Equal(t, 1.0, resolved.Confidence)
	})

	t.Run("Update was attempted exactly once", func(t *testing.T) {
		assert.Equal(t, 1, stub.updateCalls)
	})

	t.Run("In-memory entity keeps its pre-merge state", func(t *testing.T) {
		assert.Equal(t, 3, existing.MentionCount)
		assert.Equal(t, model.Attributes{"founded": "1987"}, existing.Attributes)
		assert.Empty(t, existing.Aliases)
	})
}

func TestResolverCreateRace(t *testing.T) {
	ctx := context.Background()
	winner := &model.Entity{
		ID:           uuid.New(),
		Type:         model.EntityTypeOrganization,
		Name:         "Lakeside Civic Fund",
		Attributes:   model.Attributes{"founded": "2011"},
		MentionCount: 1,
	}
	stub := &stubEntitiesHandler{raceEntity: winner}
	resolver := newStubResolver(stub)

	resolved, err := resolver.Resolve(ctx, &model.EntityCandidate{
		Name:       "Lakeside Civic Fund",
		Type:       model.CandidateTypeOrganization,
		Source:     "grant_filings",
		Attributes: model.Attributes{"sector": "nonprofit"},
	})
	require.NoError(t, err)
	require.NotNil(t, resolved)

	t.Run("Lost create race degrades to an exact match", func(t *testing.T) {
		assert.Equal(t, winner.ID, resolved.EntityID)
		assert.False(t, resolved.IsNew)
		assert.Equal(t, model.MatchMethodExact, resolved.MatchedBy)
		assert.Equal(t, 1.0, resolved.Confidence)
	})

	t.Run("Candidate is merged into the existing row", func(t *testing.T) {
		require.Equal(t, 1, stub.updateCalls)
		assert.Equal(t, "2011", stub.updatedAttrs["founded"])
		assert.Equal(t, "nonprofit", stub.updatedAttrs["sector"])
		assert.Contains(t, stub.updatedAttrs.Sources(), "grant_filings")
		assert.Equal(t, 2, stub.updatedMentions)
	})
}
