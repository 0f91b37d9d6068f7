package metadata

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type country struct {
	ID   int
	Name string
}

type city struct {
	ID        int
	CountryID int
	Name      string
}

type place struct {
	ID   int
	Name string
}

type landmark struct {
	place
	Height float64
}

func buildCountryCity(t *testing.T) (*Model, *EntityType, *EntityType, *ForeignKey) {
	t.Helper()
	require := require.New(t)
	m := MustNewModel()
	co, err := m.AddEntityType(reflect.TypeOf(country{}), SourceExplicit)
	require.NoError(err)
	ci, err := m.AddEntityType(reflect.TypeOf(city{}), SourceExplicit)
	require.NoError(err)
	coID, err := co.AddProperty("ID", nil, SourceExplicit)
	require.NoError(err)
	_, err = co.SetPrimaryKey([]*Property{coID}, SourceExplicit)
	require.NoError(err)
	ciID, err := ci.AddProperty("ID", nil, SourceExplicit)
	require.NoError(err)
	_, err = ci.SetPrimaryKey([]*Property{ciID}, SourceExplicit)
	require.NoError(err)
	ciCountryID, err := ci.AddProperty("CountryID", nil, SourceExplicit)
	require.NoError(err)
	fk, err := ci.AddForeignKey([]*Property{ciCountryID}, nil, co, SourceExplicit)
	require.NoError(err)
	return m, co, ci, fk
}

func TestAddEntityType(t *testing.T) {
	t.Run("dedupe raises source", func(t *testing.T) {
		require := require.New(t)
		m := MustNewModel()
		first, err := m.AddEntityType(reflect.TypeOf(country{}), SourceConvention)
		require.NoError(err)
		second, err := m.AddEntityType(reflect.TypeOf(&country{}), SourceExplicit)
		require.NoError(err)
		require.Same(first, second)
		require.Equal(SourceExplicit, first.Source())
	})

	t.Run("name collision with a different type", func(t *testing.T) {
		require := require.New(t)
		m := MustNewModel()
		_, err := m.AddEntityType(reflect.TypeOf(country{}), SourceExplicit)
		require.NoError(err)
		type country struct{ Code string } // same name, different type
		_, err = m.AddEntityType(reflect.TypeOf(country{}), SourceExplicit)
		require.Error(err)
		require.True(IsMemberError(err))
	})

	t.Run("non-struct rejected", func(t *testing.T) {
		m := MustNewModel()
		_, err := m.AddEntityType(reflect.TypeOf(42), SourceExplicit)
		require.Error(t, err)
	})
}

func TestSourceMonotonicity(t *testing.T) {
	t.Run("remove entity type", func(t *testing.T) {
		require := require.New(t)
		m, co, _, _ := buildCountryCity(t)
		removed, err := m.RemoveEntityType(co, SourceConvention)
		require.NoError(err)
		require.False(removed)
		require.NotNil(m.FindEntityType("country"))
	})

	t.Run("primary key pinned by explicit", func(t *testing.T) {
		require := require.New(t)
		_, co, _, _ := buildCountryCity(t)
		name, err := co.AddProperty("Name", nil, SourceExplicit)
		require.NoError(err)
		key, err := co.SetPrimaryKey([]*Property{name}, SourceConvention)
		require.NoError(err)
		require.Nil(key)
		require.Equal("ID", co.PrimaryKey().Properties()[0].Name())
	})

	t.Run("property facet pinned", func(t *testing.T) {
		require := require.New(t)
		_, co, _, _ := buildCountryCity(t)
		p := co.FindProperty("ID")
		changed, err := p.SetValueGenerated(ValueGeneratedOnAdd, SourceDataAnnotation)
		require.NoError(err)
		require.True(changed)
		changed, err = p.SetValueGenerated(ValueGeneratedNever, SourceConvention)
		require.NoError(err)
		require.False(changed)
		require.Equal(ValueGeneratedOnAdd, p.ValueGenerated())
	})

	t.Run("ignore blocks convention add", func(t *testing.T) {
		require := require.New(t)
		_, co, _, _ := buildCountryCity(t)
		ok, err := co.Ignore("Name", SourceExplicit)
		require.NoError(err)
		require.True(ok)
		p, err := co.AddProperty("Name", nil, SourceConvention)
		require.NoError(err)
		require.Nil(p)
		// An equal or higher source lifts the ignore.
		p, err = co.AddProperty("Name", nil, SourceExplicit)
		require.NoError(err)
		require.NotNil(p)
		require.False(co.IsIgnored("Name"))
	})
}

func TestIgnoreRemovesMappedMember(t *testing.T) {
	require := require.New(t)
	_, co, _, _ := buildCountryCity(t)
	p, err := co.AddProperty("Name", nil, SourceConvention)
	require.NoError(err)
	require.NotNil(p)

	ok, err := co.Ignore("Name", SourceExplicit)
	require.NoError(err)
	require.True(ok)
	require.Nil(co.FindProperty("Name"))
	require.False(p.InModel())
}

func TestRemoveEntityTypeCascades(t *testing.T) {
	require := require.New(t)
	m, co, ci, fk := buildCountryCity(t)

	removed, err := m.RemoveEntityType(co, SourceExplicit)
	require.NoError(err)
	require.True(removed)

	require.Nil(m.FindEntityType("country"))
	require.False(co.InModel())
	// The foreign key referencing the removed principal goes with it.
	require.False(fk.InModel())
	require.Empty(ci.ForeignKeys())
}

func TestRemoveEntityTypeDetachesPinnedForeignKeys(t *testing.T) {
	require := require.New(t)
	m := MustNewModel()
	co, err := m.AddEntityType(reflect.TypeOf(country{}), SourceConvention)
	require.NoError(err)
	ci, err := m.AddEntityType(reflect.TypeOf(city{}), SourceExplicit)
	require.NoError(err)
	coID, err := co.AddProperty("ID", nil, SourceConvention)
	require.NoError(err)
	_, err = co.SetPrimaryKey([]*Property{coID}, SourceConvention)
	require.NoError(err)
	ciCountryID, err := ci.AddProperty("CountryID", nil, SourceExplicit)
	require.NoError(err)
	fk, err := ci.AddForeignKey([]*Property{ciCountryID}, nil, co, SourceExplicit)
	require.NoError(err)

	// Removing the principal is authorized by its own source; the
	// cascade must not leave the higher-sourced foreign key pointing at
	// a removed type.
	removed, err := m.RemoveEntityType(co, SourceConvention)
	require.NoError(err)
	require.True(removed)
	require.False(co.InModel())
	require.False(fk.InModel())
	require.Empty(ci.ForeignKeys())
	require.Empty(co.ReferencingForeignKeys())
}

func TestInheritance(t *testing.T) {
	require := require.New(t)
	m := MustNewModel()
	base, err := m.AddEntityType(reflect.TypeOf(place{}), SourceExplicit)
	require.NoError(err)
	derived, err := m.AddEntityType(reflect.TypeOf(landmark{}), SourceExplicit)
	require.NoError(err)
	id, err := base.AddProperty("ID", nil, SourceExplicit)
	require.NoError(err)
	_, err = base.SetPrimaryKey([]*Property{id}, SourceExplicit)
	require.NoError(err)

	set, err := derived.SetBaseType(base, SourceExplicit)
	require.NoError(err)
	require.Same(derived, set)

	assert.Same(t, base, derived.BaseType())
	assert.Same(t, base, derived.RootType())
	assert.True(t, base.IsAssignableFrom(derived))
	assert.False(t, derived.IsAssignableFrom(base))
	assert.Equal(t, []*EntityType{derived}, base.DerivedTypes())
	// The primary key lives on the root and is visible from the leaf.
	assert.Same(t, base.PrimaryKey(), derived.PrimaryKey())
	// Inherited properties resolve through the chain.
	assert.Same(t, id, derived.FindProperty("ID"))
	assert.Nil(t, derived.FindDeclaredProperty("ID"))

	t.Run("cycle rejected", func(t *testing.T) {
		_, err := base.SetBaseType(derived, SourceExplicit)
		require.Error(err)
	})

	t.Run("derived cannot declare a primary key", func(t *testing.T) {
		h, err := derived.AddProperty("Height", nil, SourceExplicit)
		require.NoError(err)
		_, err = derived.SetPrimaryKey([]*Property{h}, SourceExplicit)
		require.Error(err)
	})

	t.Run("removing the base detaches derived types", func(t *testing.T) {
		removed, err := m.RemoveEntityType(base, SourceExplicit)
		require.NoError(err)
		require.True(removed)
		require.Nil(derived.BaseType())
		require.True(derived.InModel())
	})
}

func TestIgnoreInheritedMember(t *testing.T) {
	require := require.New(t)
	m := MustNewModel()
	base, err := m.AddEntityType(reflect.TypeOf(place{}), SourceExplicit)
	require.NoError(err)
	derived, err := m.AddEntityType(reflect.TypeOf(landmark{}), SourceExplicit)
	require.NoError(err)
	name, err := base.AddProperty("Name", nil, SourceExplicit)
	require.NoError(err)
	_, err = derived.SetBaseType(base, SourceExplicit)
	require.NoError(err)

	// The member belongs to the base type and stays visible through it,
	// so the derived type cannot ignore it.
	_, err = derived.Ignore("Name", SourceExplicit)
	require.Error(err)
	require.True(IsMemberError(err))
	require.False(derived.IsIgnored("Name"))
	require.Same(name, derived.FindProperty("Name"))

	// The declaring type can, and the ignore resolves down the chain.
	ok, err := base.Ignore("Name", SourceExplicit)
	require.NoError(err)
	require.True(ok)
	require.Nil(derived.FindProperty("Name"))
	require.True(derived.IsIgnored("Name"))
}

func TestKeyless(t *testing.T) {
	require := require.New(t)
	_, co, _, _ := buildCountryCity(t)
	require.False(co.IsKeyless())

	changed, err := co.SetKeyless(true, SourceExplicit)
	require.NoError(err)
	require.True(changed)
	require.True(co.IsKeyless())
	require.Nil(co.PrimaryKey())

	// A lower source cannot assign a key to an explicitly keyless type.
	id := co.FindProperty("ID")
	key, err := co.SetPrimaryKey([]*Property{id}, SourceConvention)
	require.NoError(err)
	require.Nil(key)

	key, err = co.SetPrimaryKey([]*Property{id}, SourceExplicit)
	require.NoError(err)
	require.NotNil(key)
	require.False(co.IsKeyless())
}

type town struct {
	ID       int
	RegionID int
	Region   *province
	Name     string
}

type province struct {
	ID    int
	Towns []*town
}

func TestRelationshipNavigations(t *testing.T) {
	require := require.New(t)
	m := MustNewModel()
	prov, err := m.AddEntityType(reflect.TypeOf(province{}), SourceExplicit)
	require.NoError(err)
	tw, err := m.AddEntityType(reflect.TypeOf(town{}), SourceExplicit)
	require.NoError(err)
	provID, err := prov.AddProperty("ID", nil, SourceExplicit)
	require.NoError(err)
	_, err = prov.SetPrimaryKey([]*Property{provID}, SourceExplicit)
	require.NoError(err)
	twRegionID, err := tw.AddProperty("RegionID", nil, SourceExplicit)
	require.NoError(err)
	fk, err := tw.AddForeignKey([]*Property{twRegionID}, nil, prov, SourceExplicit)
	require.NoError(err)

	regionMember, ok := tw.Info().Member("Region")
	require.True(ok)
	townsMember, ok := prov.Info().Member("Towns")
	require.True(ok)

	toPrincipal, err := fk.SetDependentToPrincipal(regionMember, SourceExplicit)
	require.NoError(err)
	require.NotNil(toPrincipal)
	toDependent, err := fk.SetPrincipalToDependent(townsMember, SourceExplicit)
	require.NoError(err)
	require.NotNil(toDependent)

	assert.Same(t, toPrincipal, tw.FindNavigation("Region"))
	assert.Same(t, toDependent, prov.FindNavigation("Towns"))
	assert.Same(t, toDependent, toPrincipal.Inverse())
	assert.Same(t, prov, toPrincipal.TargetEntityType())
	assert.Same(t, tw, toDependent.TargetEntityType())
	assert.True(t, toDependent.IsCollection())
	assert.False(t, fk.IsUnique())

	t.Run("member must point at the relationship target", func(t *testing.T) {
		nameMember, ok := tw.Info().Member("Name")
		require.True(ok)
		_, err := fk.SetDependentToPrincipal(nameMember, SourceExplicit)
		require.Error(err)
	})

	t.Run("removing the foreign key clears both navigations", func(t *testing.T) {
		removed, err := tw.RemoveForeignKey(fk, SourceExplicit)
		require.NoError(err)
		require.True(removed)
		require.Nil(tw.FindNavigation("Region"))
		require.Nil(prov.FindNavigation("Towns"))
		require.False(toPrincipal.InModel())
	})
}

func TestAddRelationshipVia(t *testing.T) {
	require := require.New(t)
	m := MustNewModel()
	prov, err := m.AddEntityType(reflect.TypeOf(province{}), SourceExplicit)
	require.NoError(err)
	tw, err := m.AddEntityType(reflect.TypeOf(town{}), SourceExplicit)
	require.NoError(err)
	provID, err := prov.AddProperty("ID", nil, SourceExplicit)
	require.NoError(err)
	_, err = prov.SetPrimaryKey([]*Property{provID}, SourceExplicit)
	require.NoError(err)

	fk, err := tw.AddRelationshipVia(prov, "Region", SourceConvention)
	require.NoError(err)
	require.NotNil(fk)

	// The dependent property is synthesized as a shadow property named
	// after the navigation base and the principal key.
	p := tw.FindProperty("region_id")
	require.NotNil(p)
	require.True(p.IsShadow())
	require.True(p.IsForeignKey())
	require.Equal(provID.GoType(), p.GoType())
	require.Equal([]*Property{p}, fk.Properties())
	require.Same(prov.PrimaryKey(), fk.PrincipalKey())
}

func TestFinalize(t *testing.T) {
	require := require.New(t)
	m, co, _, fk := buildCountryCity(t)
	require.NoError(m.Finalize())
	require.True(m.IsFinalized())

	_, err := m.AddEntityType(reflect.TypeOf(place{}), SourceExplicit)
	require.ErrorIs(err, ErrModelFinalized)
	_, err = co.AddProperty("Name", nil, SourceExplicit)
	require.ErrorIs(err, ErrModelFinalized)
	_, err = m.RemoveEntityType(co, SourceExplicit)
	require.ErrorIs(err, ErrModelFinalized)
	_, err = fk.SetUnique(true, SourceExplicit)
	require.ErrorIs(err, ErrModelFinalized)
	_, err = co.SetAnnotation("readonly", true, SourceExplicit)
	require.ErrorIs(err, ErrModelFinalized)

	err = m.Finalize()
	require.ErrorIs(err, ErrModelFinalized)
}

func TestAnnotations(t *testing.T) {
	require := require.New(t)
	_, co, _, _ := buildCountryCity(t)

	ann, err := co.SetAnnotation("store:container", "countries", SourceDataAnnotation)
	require.NoError(err)
	require.NotNil(ann)
	require.Equal("countries", co.FindAnnotation("store:container").Value())

	// A convention cannot overwrite an annotation pinned by an attribute.
	_, err = co.SetAnnotation("store:container", "shadowed", SourceConvention)
	require.NoError(err)
	require.Equal("countries", co.FindAnnotation("store:container").Value())

	removed, err := co.RemoveAnnotation("store:container", SourceConvention)
	require.NoError(err)
	require.False(removed)
	removed, err = co.RemoveAnnotation("store:container", SourceExplicit)
	require.NoError(err)
	require.True(removed)
	require.Nil(co.FindAnnotation("store:container"))
}
