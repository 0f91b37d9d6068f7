package conventions

import (
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/metagraph/metadata"
)

type Gadget struct {
	ID int
}

type Hub struct {
	ID int
}

type Badge struct {
	ID uuid.UUID
}

type Coupon struct {
	ID string
}

func TestValueGeneration(t *testing.T) {
	t.Run("integer primary key generates on add", func(t *testing.T) {
		require := require.New(t)
		m, err := NewModel(nil)
		require.NoError(err)
		gadget, err := m.AddEntityType(reflect.TypeOf(Gadget{}), metadata.SourceExplicit)
		require.NoError(err)
		require.Equal(metadata.ValueGeneratedOnAdd, gadget.FindProperty("ID").ValueGenerated())
	})

	t.Run("uuid primary key generates on add", func(t *testing.T) {
		require := require.New(t)
		m, err := NewModel(nil)
		require.NoError(err)
		badge, err := m.AddEntityType(reflect.TypeOf(Badge{}), metadata.SourceExplicit)
		require.NoError(err)
		require.Equal(metadata.ValueGeneratedOnAdd, badge.FindProperty("ID").ValueGenerated())
	})

	t.Run("string primary key never generates", func(t *testing.T) {
		require := require.New(t)
		m, err := NewModel(nil)
		require.NoError(err)
		coupon, err := m.AddEntityType(reflect.TypeOf(Coupon{}), metadata.SourceExplicit)
		require.NoError(err)
		require.Equal(metadata.ValueGeneratedNever, coupon.FindProperty("ID").ValueGenerated())
	})

	t.Run("joining a foreign key resets the strategy", func(t *testing.T) {
		require := require.New(t)
		m, err := NewModel(nil)
		require.NoError(err)
		gadget, err := m.AddEntityType(reflect.TypeOf(Gadget{}), metadata.SourceExplicit)
		require.NoError(err)
		hub, err := m.AddEntityType(reflect.TypeOf(Hub{}), metadata.SourceExplicit)
		require.NoError(err)

		id := gadget.FindProperty("ID")
		require.Equal(metadata.ValueGeneratedOnAdd, id.ValueGenerated())

		// Sharing the primary key with a foreign key means the value
		// comes from the principal, not the store.
		fk, err := gadget.AddForeignKey([]*metadata.Property{id}, nil, hub, metadata.SourceExplicit)
		require.NoError(err)
		assert.Equal(t, metadata.ValueGeneratedNever, id.ValueGenerated())

		// Leaving the foreign key restores store generation.
		removed, err := gadget.RemoveForeignKey(fk, metadata.SourceExplicit)
		require.NoError(err)
		require.True(removed)
		assert.Equal(t, metadata.ValueGeneratedOnAdd, id.ValueGenerated())
	})
}
