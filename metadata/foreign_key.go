package metadata

import (
	"fmt"

	"github.com/syssam/metagraph/introspect"
)

// ForeignKey is a relationship from a dependent entity type to a
// principal entity type: the ordered dependent properties, the principal
// key they reference, and up to two navigations (either may be nil; a
// foreign key with neither is navigationless).
type ForeignKey struct {
	declaring        *EntityType // dependent side
	principal        *EntityType
	principalKey     *Key
	properties       []*Property
	propertiesSource ConfigurationSource

	dependentToPrincipal *Navigation
	principalToDependent *Navigation

	unique       bool
	uniqueSource ConfigurationSource
	owned        bool
	ownedSource  ConfigurationSource

	source  ConfigurationSource
	removed bool
}

// DeclaringEntityType returns the dependent entity type.
func (fk *ForeignKey) DeclaringEntityType() *EntityType { return fk.declaring }

// PrincipalEntityType returns the principal entity type.
func (fk *ForeignKey) PrincipalEntityType() *EntityType { return fk.principal }

// PrincipalKey returns the referenced principal key.
func (fk *ForeignKey) PrincipalKey() *Key { return fk.principalKey }

// Properties returns the dependent properties in order.
func (fk *ForeignKey) Properties() []*Property {
	return append([]*Property(nil), fk.properties...)
}

// PropertiesSource returns the source the property set was configured with.
func (fk *ForeignKey) PropertiesSource() ConfigurationSource { return fk.propertiesSource }

// DependentToPrincipal returns the navigation on the dependent side.
func (fk *ForeignKey) DependentToPrincipal() *Navigation { return fk.dependentToPrincipal }

// PrincipalToDependent returns the navigation on the principal side.
func (fk *ForeignKey) PrincipalToDependent() *Navigation { return fk.principalToDependent }

// HasNavigations reports whether either side of the relationship has a
// navigation.
func (fk *ForeignKey) HasNavigations() bool {
	return fk.dependentToPrincipal != nil || fk.principalToDependent != nil
}

// IsUnique reports one-to-one cardinality.
func (fk *ForeignKey) IsUnique() bool { return fk.unique }

// IsOwned reports whether the dependent's lifetime is bound to the
// principal.
func (fk *ForeignKey) IsOwned() bool { return fk.owned }

// Source returns the foreign key's configuration source.
func (fk *ForeignKey) Source() ConfigurationSource { return fk.source }

// UpdateSource raises the foreign key's configuration source to at least s.
func (fk *ForeignKey) UpdateSource(s ConfigurationSource) { fk.source = fk.source.Max(s) }

// InModel reports whether the foreign key is still part of the model.
func (fk *ForeignKey) InModel() bool { return !fk.removed && !fk.declaring.removed }

// Contains reports whether the foreign key includes the property.
func (fk *ForeignKey) Contains(p *Property) bool {
	for _, fp := range fk.properties {
		if fp == p {
			return true
		}
	}
	return false
}

// SetProperties repoints the foreign key at a new dependent property
// set, optionally at a different principal key (nil keeps the current
// one). It reports whether the facet changed; a set rejected by a
// higher-ranked source reports false without error.
func (fk *ForeignKey) SetProperties(props []*Property, principalKey *Key, source ConfigurationSource) (bool, error) {
	if err := fk.declaring.model.checkMutable(); err != nil {
		return false, err
	}
	if principalKey == nil {
		principalKey = fk.principalKey
	}
	if samePropertySet(fk.properties, props) && principalKey == fk.principalKey {
		fk.propertiesSource = fk.propertiesSource.Max(source)
		return false, nil
	}
	if !source.Overrides(fk.propertiesSource) {
		return false, nil
	}
	if len(props) == 0 || len(props) != len(principalKey.properties) {
		return false, NewForeignKeyError(fk.declaring.name, propertyNames(props),
			fmt.Sprintf("foreign key property count does not match principal key (%d != %d)", len(props), len(principalKey.properties)))
	}
	for _, p := range props {
		if p == nil || fk.declaring.findPropertyInHierarchy(p.name) != p {
			return false, NewForeignKeyError(fk.declaring.name, propertyNames(props), "foreign key properties must belong to the dependent type")
		}
	}
	oldProps := fk.properties
	oldKey := fk.principalKey
	fk.properties = append([]*Property(nil), props...)
	fk.principalKey = principalKey
	fk.propertiesSource = source
	fk.source = fk.source.Max(source)
	if _, err := fk.declaring.model.dispatcher.foreignKeyPropertiesChanged(fk, oldProps, oldKey); err != nil {
		return false, err
	}
	return true, nil
}

// SetUnique sets one-to-one cardinality if source overrides the previous
// setting.
func (fk *ForeignKey) SetUnique(unique bool, source ConfigurationSource) (bool, error) {
	if err := fk.declaring.model.checkMutable(); err != nil {
		return false, err
	}
	if !source.Overrides(fk.uniqueSource) {
		return false, nil
	}
	changed := fk.unique != unique
	fk.unique = unique
	fk.uniqueSource = source
	return changed, nil
}

// SetOwned marks the relationship as an ownership edge if source
// overrides the previous setting.
func (fk *ForeignKey) SetOwned(owned bool, source ConfigurationSource) (bool, error) {
	if err := fk.declaring.model.checkMutable(); err != nil {
		return false, err
	}
	if !source.Overrides(fk.ownedSource) {
		return false, nil
	}
	if fk.owned == owned {
		fk.ownedSource = source
		return false, nil
	}
	fk.owned = owned
	fk.ownedSource = source
	if _, err := fk.declaring.model.dispatcher.foreignKeyOwnershipChanged(fk); err != nil {
		return false, err
	}
	return true, nil
}

// =============================================================================
// Navigations
// =============================================================================

// SetDependentToPrincipal sets the navigation from the dependent type to
// the principal. The member must be declared on the dependent source
// type and point at the principal's hierarchy. It returns nil without
// error when rejected by a higher-ranked source or ignore.
func (fk *ForeignKey) SetDependentToPrincipal(member *introspect.Member, source ConfigurationSource) (*Navigation, error) {
	return fk.setNavigation(member, true, source)
}

// SetPrincipalToDependent sets the navigation from the principal type
// back at the dependent(s). A collection-shaped member yields a
// collection navigation; a reference-shaped member marks the foreign key
// unique by convention.
func (fk *ForeignKey) SetPrincipalToDependent(member *introspect.Member, source ConfigurationSource) (*Navigation, error) {
	return fk.setNavigation(member, false, source)
}

// ClearDependentToPrincipal removes the dependent-side navigation if
// source overrides it.
func (fk *ForeignKey) ClearDependentToPrincipal(source ConfigurationSource) (bool, error) {
	if fk.dependentToPrincipal == nil {
		return false, nil
	}
	return fk.clearNavigation(fk.dependentToPrincipal, source)
}

// ClearPrincipalToDependent removes the principal-side navigation if
// source overrides it.
func (fk *ForeignKey) ClearPrincipalToDependent(source ConfigurationSource) (bool, error) {
	if fk.principalToDependent == nil {
		return false, nil
	}
	return fk.clearNavigation(fk.principalToDependent, source)
}

func (fk *ForeignKey) setNavigation(member *introspect.Member, toPrincipal bool, source ConfigurationSource) (*Navigation, error) {
	declaring, target := fk.declaring, fk.principal
	if !toPrincipal {
		declaring, target = fk.principal, fk.declaring
	}
	if err := declaring.model.checkMutable(); err != nil {
		return nil, err
	}
	if member == nil {
		return nil, NewMemberError(declaring.name, "", "navigation requires a member")
	}
	if m, ok := declaring.info.Member(member.Name()); !ok || m != member {
		return nil, NewMemberError(declaring.name, member.Name(), "navigation member must belong to the declaring type")
	}
	targetType := member.TargetType()
	tet := declaring.model.FindEntityTypeOf(targetType)
	if targetType == nil || tet == nil || !tet.InSameHierarchy(target) {
		return nil, NewMemberError(declaring.name, member.Name(),
			fmt.Sprintf("navigation member does not point at %s", target.name))
	}
	name := member.Name()
	existing := fk.dependentToPrincipal
	if !toPrincipal {
		existing = fk.principalToDependent
	}
	if existing != nil {
		if existing.member == member {
			existing.UpdateSource(source)
			return existing, nil
		}
		if ok, err := fk.clearNavigation(existing, source); err != nil || !ok {
			return nil, err
		}
	}
	// The name may be bound to another relationship's navigation.
	if other := declaring.navigations[name]; other != nil {
		if ok, err := other.fk.clearNavigation(other, source); err != nil || !ok {
			return nil, err
		}
	} else if kind := declaring.memberKind(name); kind != "" {
		return nil, NewMemberError(declaring.name, name, fmt.Sprintf("name is already mapped as a %s", kind))
	}
	if !declaring.resolveIgnored(name, source) {
		return nil, nil
	}
	collection := !toPrincipal && member.IsCollection()
	nav := &Navigation{
		declaring:         declaring,
		name:              name,
		member:            member,
		fk:                fk,
		collection:        collection,
		pointsToPrincipal: toPrincipal,
		source:            source,
	}
	declaring.navigations[name] = nav
	if toPrincipal {
		fk.dependentToPrincipal = nav
	} else {
		fk.principalToDependent = nav
		if !collection {
			if _, err := fk.SetUnique(true, SourceConvention); err != nil {
				return nil, err
			}
		}
	}
	return declaring.model.dispatcher.navigationAdded(nav)
}

func (fk *ForeignKey) clearNavigation(nav *Navigation, source ConfigurationSource) (bool, error) {
	if !source.Overrides(nav.source) {
		return false, nil
	}
	return fk.detachNavigation(nav)
}

// detachNavigation unconditionally removes the navigation from its
// declaring type and the relationship, raising the removal event. Used
// by cascade removal, where the foreign key's own source check already
// authorized the mutation.
func (fk *ForeignKey) detachNavigation(nav *Navigation) (bool, error) {
	if nav == nil || nav.removed {
		return false, nil
	}
	delete(nav.declaring.navigations, nav.name)
	if fk.dependentToPrincipal == nav {
		fk.dependentToPrincipal = nil
	}
	if fk.principalToDependent == nav {
		fk.principalToDependent = nil
	}
	nav.removed = true
	if _, err := nav.declaring.model.dispatcher.navigationRemoved(nav.declaring, nav.name); err != nil {
		return false, err
	}
	return true, nil
}
