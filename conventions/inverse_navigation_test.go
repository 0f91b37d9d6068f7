package conventions

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/syssam/metagraph"
	"github.com/syssam/metagraph/metadata"
)

type Category struct {
	ID       int
	Parent   *Category `inverse:"Children"`
	Children []*Category
}

func TestInverseNavigationSelfReference(t *testing.T) {
	require := require.New(t)
	m, err := NewModel(nil)
	require.NoError(err)
	cat, err := m.AddEntityType(reflect.TypeOf(Category{}), metadata.SourceExplicit)
	require.NoError(err)

	parent := cat.FindNavigation("Parent")
	require.NotNil(parent)
	children := cat.FindNavigation("Children")
	require.NotNil(children)
	require.Same(children, parent.Inverse())
	require.True(children.IsCollection())
	require.True(parent.PointsToPrincipal())

	fks := cat.ForeignKeys()
	require.Len(fks, 1)
	require.Same(cat, fks[0].PrincipalEntityType())
	require.NoError(m.Finalize())
}

type Manager struct {
	ID      int
	Reports []*Employee
}

type Employee struct {
	ID   int
	Boss *Manager `inverse:"Reports"`
}

type Contractor struct {
	ID         int
	Supervisor *Manager `inverse:"Reports"`
}

func buildStaff(t *testing.T, rep metagraph.Reporter) (*metadata.Model, *metadata.EntityType, *metadata.EntityType, *metadata.EntityType) {
	t.Helper()
	require := require.New(t)
	opts := []metadata.Option{}
	if rep != nil {
		opts = append(opts, metadata.WithReporter(rep))
	}
	m, err := NewModel(nil, opts...)
	require.NoError(err)
	manager, err := m.AddEntityType(reflect.TypeOf(Manager{}), metadata.SourceExplicit)
	require.NoError(err)
	employee, err := m.AddEntityType(reflect.TypeOf(Employee{}), metadata.SourceExplicit)
	require.NoError(err)
	contractor, err := m.AddEntityType(reflect.TypeOf(Contractor{}), metadata.SourceExplicit)
	require.NoError(err)
	return m, manager, employee, contractor
}

// Two unrelated navigations claiming the same inverse member leave both
// sides unbound, whichever was configured first.
func TestInverseNavigationAmbiguity(t *testing.T) {
	require := require.New(t)
	rep := &captureReporter{}
	_, manager, employee, contractor := buildStaff(t, rep)

	require.Contains(rep.warns, metagraph.CategoryInverseNavigationAmbiguity)
	require.Nil(employee.FindNavigation("Boss"))
	require.Nil(contractor.FindNavigation("Supervisor"))
	require.Nil(manager.FindNavigation("Reports"))
	require.Empty(employee.ForeignKeys())
	require.Empty(contractor.ForeignKeys())
}

// Ignoring all contenders but one re-binds the survivor.
func TestInverseNavigationDisambiguation(t *testing.T) {
	require := require.New(t)
	_, manager, employee, contractor := buildStaff(t, nil)

	ok, err := contractor.Ignore("Supervisor", metadata.SourceExplicit)
	require.NoError(err)
	require.True(ok)

	boss := employee.FindNavigation("Boss")
	require.NotNil(boss)
	reports := manager.FindNavigation("Reports")
	require.NotNil(reports)
	require.Same(reports, boss.Inverse())
	require.True(boss.PointsToPrincipal())
	require.Same(manager, boss.TargetEntityType())
	require.Empty(contractor.ForeignKeys())
}

// Residual ambiguity at finalization is reported, not fatal.
func TestInverseNavigationAmbiguityAtFinalization(t *testing.T) {
	require := require.New(t)
	rep := &captureReporter{}
	m, _, _, _ := buildStaff(t, rep)

	rep.warns = nil
	require.NoError(m.Finalize())
	require.Contains(rep.warns, metagraph.CategoryInverseNavigationAmbiguity)
}

func TestInverseNavigationErrors(t *testing.T) {
	t.Run("unknown inverse member", func(t *testing.T) {
		type Wheel struct {
			ID  int
			Car *Vehicle `inverse:"Wheelz"`
		}
		require := require.New(t)
		m, err := NewModel(nil)
		require.NoError(err)
		_, err = m.AddEntityType(reflect.TypeOf(Vehicle{}), metadata.SourceExplicit)
		require.NoError(err)
		_, err = m.AddEntityType(reflect.TypeOf(Wheel{}), metadata.SourceExplicit)
		require.Error(err)
		require.True(metadata.IsMemberError(err))
	})

	t.Run("self-referential inverse attribute", func(t *testing.T) {
		type Loop struct {
			ID   int
			Next *Loop `inverse:"Next"`
		}
		require := require.New(t)
		m, err := NewModel(nil)
		require.NoError(err)
		_, err = m.AddEntityType(reflect.TypeOf(Loop{}), metadata.SourceExplicit)
		require.Error(err)
		require.True(metadata.IsMemberError(err))
	})
}

type Vehicle struct {
	ID     int
	Wheels []*wheelStub
}

type wheelStub struct {
	ID int
}
