package metadata

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSnapshot(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		require := require.New(t)
		m1, _, _, _ := buildCountryCity(t)
		m2, _, _, _ := buildCountryCity(t)
		s1, err := m1.Snapshot()
		require.NoError(err)
		s2, err := m2.Snapshot()
		require.NoError(err)
		require.Equal(s1, s2)
	})

	t.Run("independent of insertion order", func(t *testing.T) {
		require := require.New(t)
		forward := MustNewModel()
		_, err := forward.AddEntityType(reflect.TypeOf(country{}), SourceExplicit)
		require.NoError(err)
		_, err = forward.AddEntityType(reflect.TypeOf(city{}), SourceExplicit)
		require.NoError(err)
		backward := MustNewModel()
		_, err = backward.AddEntityType(reflect.TypeOf(city{}), SourceExplicit)
		require.NoError(err)
		_, err = backward.AddEntityType(reflect.TypeOf(country{}), SourceExplicit)
		require.NoError(err)

		s1, err := forward.Snapshot()
		require.NoError(err)
		s2, err := backward.Snapshot()
		require.NoError(err)
		require.Equal(s1, s2)
	})

	t.Run("sensitive to structural change", func(t *testing.T) {
		require := require.New(t)
		m, co, _, _ := buildCountryCity(t)
		before, err := m.Snapshot()
		require.NoError(err)

		_, err = co.AddProperty("Name", nil, SourceExplicit)
		require.NoError(err)
		after, err := m.Snapshot()
		require.NoError(err)
		require.NotEqual(before, after)
	})

	t.Run("sensitive to facets", func(t *testing.T) {
		require := require.New(t)
		m, co, _, _ := buildCountryCity(t)
		before, err := m.Snapshot()
		require.NoError(err)

		_, err = co.FindProperty("ID").SetValueGenerated(ValueGeneratedOnAdd, SourceExplicit)
		require.NoError(err)
		after, err := m.Snapshot()
		require.NoError(err)
		require.NotEqual(before, after)
	})

	t.Run("works on a finalized model", func(t *testing.T) {
		require := require.New(t)
		m, _, _, _ := buildCountryCity(t)
		before, err := m.Snapshot()
		require.NoError(err)
		require.NoError(m.Finalize())
		after, err := m.Snapshot()
		require.NoError(err)
		require.Equal(before, after)
	})
}
