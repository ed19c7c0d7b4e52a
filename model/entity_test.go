package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntityHasAlias(t *testing.T) {
	entity := &Entity{
		Name:    "Acme Widgets",
		Aliases: []string{"Acme", "AW"},
	}

	t.Run("Known alias", func(t *testing.T) {
		assert.True(t, entity.HasAlias("Acme"))
	})

	t.Run("Unknown alias", func(t *testing.T) {
		assert.False(t, entity.HasAlias("Acme Widget Co"))
	})

	t.Run("Main name is not an alias", func(t *testing.T) {
		assert.False(t, entity.HasAlias("Acme Widgets"))
	})

	t.Run("No aliases", func(t *testing.T) {
		bare := &Entity{Name: "Bare"}
		assert.False(t, bare.HasAlias("Bare"))
	})
}
