package conventions

import (
	"github.com/syssam/metagraph/introspect"
	"github.com/syssam/metagraph/metadata"
)

// RelationshipDiscovery builds foreign keys and navigations from
// navigation-shaped struct members. A reference member makes its
// declaring type the dependent of a new relationship; a collection
// member makes the target type the dependent. When each side has exactly
// one member pointing at the other, the two are paired as inverse
// navigations; anything ambiguous is left single-sided for the
// attribute-driven conventions to settle.
type RelationshipDiscovery struct{}

// NewRelationshipDiscovery returns the relationship discovery convention.
func NewRelationshipDiscovery() *RelationshipDiscovery {
	return &RelationshipDiscovery{}
}

// ProcessEntityTypeAdded implements metadata.EntityTypeAddedConvention.
// Members of the new type are examined, and so are members of already
// mapped types that point at the new type and could not be resolved when
// their own type was added.
func (c *RelationshipDiscovery) ProcessEntityTypeAdded(et *metadata.EntityType, _ *metadata.Context[*metadata.EntityType]) error {
	for _, m := range et.Info().Members() {
		if err := c.discover(et, m); err != nil {
			return err
		}
	}
	for _, other := range et.Model().EntityTypes() {
		if other == et {
			continue
		}
		for _, m := range other.Info().Members() {
			if target := targetEntityType(other, m); target == et {
				if err := c.discover(other, m); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (c *RelationshipDiscovery) discover(declaring *metadata.EntityType, m *introspect.Member) error {
	target := targetEntityType(declaring, m)
	if target == nil {
		return nil
	}
	name := m.Name()
	if declaring.IsIgnored(name) ||
		declaring.FindNavigation(name) != nil ||
		declaring.FindProperty(name) != nil ||
		declaring.FindServiceProperty(name) != nil {
		return nil
	}
	inverse := uniqueInverse(target, declaring, m)
	if inverse != nil && uniqueInverse(declaring, target, inverse) != m {
		inverse = nil
	}
	if inverse != nil && target.FindNavigation(inverse.Name()) != nil {
		inverse = nil
	}
	if m.IsCollection() {
		if inverse != nil && inverse.IsCollection() {
			// Many-to-many needs an explicit join entity type.
			return nil
		}
		if declaring.PrimaryKey() == nil {
			return nil
		}
		base := declaring.Name()
		if inverse != nil {
			base = inverse.Name()
		}
		fk, err := target.AddRelationshipVia(declaring, base, metadata.SourceConvention)
		if err != nil || fk == nil {
			return err
		}
		if inverse != nil {
			if _, err := fk.SetDependentToPrincipal(inverse, metadata.SourceConvention); err != nil {
				return err
			}
		}
		_, err = fk.SetPrincipalToDependent(m, metadata.SourceConvention)
		return err
	}
	if target.PrimaryKey() == nil {
		return nil
	}
	fk, err := declaring.AddRelationshipVia(target, name, metadata.SourceConvention)
	if err != nil || fk == nil {
		return err
	}
	if _, err := fk.SetDependentToPrincipal(m, metadata.SourceConvention); err != nil {
		return err
	}
	if inverse != nil {
		if _, err := fk.SetPrincipalToDependent(inverse, metadata.SourceConvention); err != nil {
			return err
		}
	}
	return nil
}

// targetEntityType resolves the entity type a navigation-shaped member
// points at, or nil when the member is not a navigation into the model.
func targetEntityType(declaring *metadata.EntityType, m *introspect.Member) *metadata.EntityType {
	t := m.TargetType()
	if t == nil {
		return nil
	}
	return declaring.Model().FindEntityTypeOf(t)
}

// uniqueInverse returns the only member of on pointing at pointingAt's
// hierarchy, excluding the given member, or nil when there is none or
// more than one.
func uniqueInverse(on, pointingAt *metadata.EntityType, exclude *introspect.Member) *introspect.Member {
	var found *introspect.Member
	for _, cand := range on.Info().Members() {
		if cand == exclude || on.IsIgnored(cand.Name()) {
			continue
		}
		tet := targetEntityType(on, cand)
		if tet == nil || !tet.InSameHierarchy(pointingAt) {
			continue
		}
		if found != nil {
			return nil
		}
		found = cand
	}
	return found
}
