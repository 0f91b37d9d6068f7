package metadata

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/syssam/metagraph"
	"github.com/syssam/metagraph/introspect"
)

// EntityType represents one mapped type in the model: its declared
// properties, service properties, keys, foreign keys and navigations,
// plus a single-inheritance base type. The effective member set of a
// type is the union of declared and inherited members, and a member name
// resolves to at most one kind (property, navigation, service property
// or ignored) at a time.
type EntityType struct {
	annotatable
	model  *Model
	name   string
	goType reflect.Type
	info   *introspect.Type
	source ConfigurationSource

	base       *EntityType
	baseSource ConfigurationSource
	derived    map[string]*EntityType

	properties  map[string]*Property
	services    map[string]*ServiceProperty
	navigations map[string]*Navigation

	keys       []*Key
	primaryKey *Key
	pkSource   ConfigurationSource

	foreignKeys []*ForeignKey
	// foreign keys declared on other types with this type as principal.
	referencing []*ForeignKey

	ignored map[string]ConfigurationSource

	keyless       bool
	keylessSource ConfigurationSource

	removed bool
}

// Name returns the entity type name (the simple struct type name).
func (e *EntityType) Name() string { return e.name }

// GoType returns the source struct type.
func (e *EntityType) GoType() reflect.Type { return e.goType }

// Info returns the introspected view of the source type.
func (e *EntityType) Info() *introspect.Type { return e.info }

// Model returns the owning model.
func (e *EntityType) Model() *Model { return e.model }

// Source returns the configuration source the type was added with.
func (e *EntityType) Source() ConfigurationSource { return e.source }

// UpdateSource raises the type's configuration source to at least s.
func (e *EntityType) UpdateSource(s ConfigurationSource) { e.source = e.source.Max(s) }

// InModel reports whether the type is still part of its model.
func (e *EntityType) InModel() bool { return !e.removed }

// =============================================================================
// Inheritance
// =============================================================================

// BaseType returns the base entity type, or nil for a root type.
func (e *EntityType) BaseType() *EntityType { return e.base }

// RootType returns the root of the inheritance chain (e itself if it has
// no base type).
func (e *EntityType) RootType() *EntityType {
	root := e
	for root.base != nil {
		root = root.base
	}
	return root
}

// IsAssignableFrom reports whether other is e or derives from e.
func (e *EntityType) IsAssignableFrom(other *EntityType) bool {
	for t := other; t != nil; t = t.base {
		if t == e {
			return true
		}
	}
	return false
}

// InSameHierarchy reports whether e and other share an inheritance chain.
func (e *EntityType) InSameHierarchy(other *EntityType) bool {
	return e.IsAssignableFrom(other) || other.IsAssignableFrom(e)
}

// SetBaseType sets (or clears, with nil) the base type, if source
// overrides the previous base-type configuration. It returns nil without
// error when the change is rejected by a higher-ranked source.
func (e *EntityType) SetBaseType(base *EntityType, source ConfigurationSource) (*EntityType, error) {
	if err := e.model.checkMutable(); err != nil {
		return nil, err
	}
	if base == e.base {
		e.baseSource = e.baseSource.Max(source)
		return e, nil
	}
	if !source.Overrides(e.baseSource) {
		return nil, nil
	}
	batch := e.model.DelayConventions()
	defer batch.Close()
	if base != nil {
		if base.model != e.model || base.removed {
			return nil, NewMemberError(e.name, "", "base type does not belong to the model")
		}
		if e.IsAssignableFrom(base) {
			return nil, NewMemberError(e.name, "", fmt.Sprintf("setting base type %s would create an inheritance cycle", base.name))
		}
		if e.primaryKey != nil {
			// A derived type cannot declare its own primary key; one
			// assigned by convention yields to the base type.
			if !source.Overrides(e.pkSource) {
				return nil, NewMemberError(e.name, "", "derived type cannot declare its own primary key")
			}
			if _, err := e.ClearPrimaryKey(source); err != nil {
				return nil, err
			}
		}
	}
	old := e.base
	if old != nil {
		delete(old.derived, e.name)
	}
	e.base = base
	e.baseSource = source
	if base != nil {
		base.derived[e.name] = e
	}
	if _, err := e.model.dispatcher.entityTypeBaseTypeChanged(e, base, old); err != nil {
		return nil, err
	}
	return e, batch.Close()
}

// derivedTypes returns the directly derived types sorted by name.
func (e *EntityType) derivedTypes() []*EntityType {
	types := make([]*EntityType, 0, len(e.derived))
	for _, d := range e.derived {
		types = append(types, d)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].name < types[j].name })
	return types
}

// DerivedTypes returns all transitively derived types sorted by name.
func (e *EntityType) DerivedTypes() []*EntityType {
	var all []*EntityType
	for _, d := range e.derivedTypes() {
		all = append(all, d)
		all = append(all, d.DerivedTypes()...)
	}
	return all
}

// =============================================================================
// Member-kind bookkeeping
// =============================================================================

// memberKind reports what kind of member the name resolves to in the
// hierarchy: "property", "service property", "navigation" or "" if free.
func (e *EntityType) memberKind(name string) string {
	for t := e; t != nil; t = t.base {
		switch {
		case t.properties[name] != nil:
			return "property"
		case t.services[name] != nil:
			return "service property"
		case t.navigations[name] != nil:
			return "navigation"
		}
	}
	return ""
}

// IsIgnored reports whether the member name is ignored on this type or
// any of its base types.
func (e *EntityType) IsIgnored(name string) bool {
	_, ok := e.findIgnoredSource(name)
	return ok
}

func (e *EntityType) findIgnoredSource(name string) (ConfigurationSource, bool) {
	for t := e; t != nil; t = t.base {
		if s, ok := t.ignored[name]; ok {
			return s, true
		}
	}
	return 0, false
}

// resolveIgnored checks the ignore ledger before a member is added at
// the given source. It reports whether the add may proceed, lifting the
// ignore when the source overrides it.
func (e *EntityType) resolveIgnored(name string, source ConfigurationSource) bool {
	ignSource, ok := e.findIgnoredSource(name)
	if !ok {
		return true
	}
	if !source.Overrides(ignSource) {
		return false
	}
	for t := e; t != nil; t = t.base {
		delete(t.ignored, name)
	}
	return true
}

// Ignore excludes the member name from the model. A previously mapped
// member of any kind is removed if source overrides it; the ignore is
// recorded and the member-ignored event raised. It reports whether the
// member is now ignored.
func (e *EntityType) Ignore(name string, source ConfigurationSource) (bool, error) {
	if err := e.model.checkMutable(); err != nil {
		return false, err
	}
	if s, ok := e.ignored[name]; ok {
		e.ignored[name] = s.Max(source)
		return true, nil
	}
	// An inherited member stays visible through the base type no matter
	// what the derived type records, so ignoring it here would leave the
	// name resolving to two kinds at once.
	for t := e.base; t != nil; t = t.base {
		if t.properties[name] != nil || t.navigations[name] != nil || t.services[name] != nil {
			return false, NewMemberError(e.name, name, fmt.Sprintf("cannot ignore member inherited from %s", t.name))
		}
	}
	batch := e.model.DelayConventions()
	defer batch.Close()
	if p := e.properties[name]; p != nil {
		ok, err := e.RemoveProperty(p, source)
		if err != nil || !ok {
			return false, err
		}
	}
	if nav := e.navigations[name]; nav != nil {
		fk := nav.fk
		removed, err := fk.clearNavigation(nav, source)
		if err != nil || !removed {
			return false, err
		}
	}
	if sp := e.services[name]; sp != nil {
		if ok, err := e.RemoveServiceProperty(name, source); err != nil || !ok {
			return false, err
		}
	}
	e.ignored[name] = source
	if _, err := e.model.dispatcher.entityTypeMemberIgnored(e, name); err != nil {
		return false, err
	}
	return true, batch.Close()
}

// =============================================================================
// Properties
// =============================================================================

// AddProperty adds a scalar property. When the name matches a member of
// the source type, the property is backed by it; otherwise a shadow
// property is created with the given type. Passing a nil goType uses the
// backing member's type. It returns nil without error when the add is
// rejected by a higher-ranked ignore.
func (e *EntityType) AddProperty(name string, goType reflect.Type, source ConfigurationSource) (*Property, error) {
	if err := e.model.checkMutable(); err != nil {
		return nil, err
	}
	member, _ := e.info.Member(name)
	if goType == nil {
		if member == nil {
			return nil, NewMemberError(e.name, name, "property has no backing member and no type")
		}
		goType = member.Type()
	}
	if existing := e.findPropertyInHierarchy(name); existing != nil {
		if existing.goType == goType {
			existing.UpdateSource(source)
			return existing, nil
		}
		if !source.Overrides(existing.source) {
			return nil, nil
		}
		if existing.declaring != e {
			return nil, NewMemberError(e.name, name, fmt.Sprintf("property already inherited from %s with a different type", existing.declaring.name))
		}
		existing.goType = goType
		existing.source = source
		return existing, nil
	}
	if kind := e.memberKind(name); kind != "" {
		return nil, NewMemberError(e.name, name, fmt.Sprintf("name is already mapped as a %s", kind))
	}
	if !e.resolveIgnored(name, source) {
		return nil, nil
	}
	p := &Property{
		declaring:      e,
		name:           name,
		goType:         goType,
		member:         member,
		source:         source,
		nullable:       goType.Kind() == reflect.Pointer,
		nullableSource: SourceConvention,
	}
	e.properties[name] = p
	return e.model.dispatcher.propertyAdded(p)
}

// RemoveProperty removes a declared property if source overrides it. A
// property that is part of a key or a foreign key cannot be removed.
func (e *EntityType) RemoveProperty(p *Property, source ConfigurationSource) (bool, error) {
	if err := e.model.checkMutable(); err != nil {
		return false, err
	}
	if p == nil || p.removed || p.declaring != e {
		return false, nil
	}
	if !source.Overrides(p.source) {
		return false, nil
	}
	if p.IsKey() {
		return false, NewMemberError(e.name, p.name, "cannot remove a property that is part of a key")
	}
	if p.IsForeignKey() {
		return false, NewMemberError(e.name, p.name, "cannot remove a property that is part of a foreign key")
	}
	delete(e.properties, p.name)
	p.removed = true
	return true, nil
}

func (e *EntityType) findPropertyInHierarchy(name string) *Property {
	for t := e; t != nil; t = t.base {
		if p := t.properties[name]; p != nil {
			return p
		}
	}
	return nil
}

// FindProperty returns the declared or inherited property with the name.
func (e *EntityType) FindProperty(name string) *Property {
	return e.findPropertyInHierarchy(name)
}

// FindDeclaredProperty returns the property declared directly on e.
func (e *EntityType) FindDeclaredProperty(name string) *Property {
	return e.properties[name]
}

// Properties returns the declared properties sorted by name.
func (e *EntityType) Properties() []*Property {
	props := make([]*Property, 0, len(e.properties))
	for _, p := range e.properties {
		props = append(props, p)
	}
	sort.Slice(props, func(i, j int) bool { return props[i].name < props[j].name })
	return props
}

// AllProperties returns declared and inherited properties sorted by name.
func (e *EntityType) AllProperties() []*Property {
	seen := make(map[string]struct{})
	var props []*Property
	for t := e; t != nil; t = t.base {
		for _, p := range t.properties {
			if _, ok := seen[p.name]; ok {
				continue
			}
			seen[p.name] = struct{}{}
			props = append(props, p)
		}
	}
	sort.Slice(props, func(i, j int) bool { return props[i].name < props[j].name })
	return props
}

// =============================================================================
// Service properties
// =============================================================================

// AddServiceProperty binds a member to a framework-provided value. It
// returns nil without error when rejected by a higher-ranked ignore.
func (e *EntityType) AddServiceProperty(member *introspect.Member, binding *metagraph.ParameterBinding, source ConfigurationSource) (*ServiceProperty, error) {
	if err := e.model.checkMutable(); err != nil {
		return nil, err
	}
	if member == nil || binding == nil {
		return nil, NewMemberError(e.name, "", "service property requires a member and a binding")
	}
	name := member.Name()
	if existing := e.findServiceInHierarchy(name); existing != nil {
		existing.source = existing.source.Max(source)
		return existing, nil
	}
	if kind := e.memberKind(name); kind != "" {
		return nil, NewMemberError(e.name, name, fmt.Sprintf("name is already mapped as a %s", kind))
	}
	if !e.resolveIgnored(name, source) {
		return nil, nil
	}
	sp := &ServiceProperty{
		declaring: e,
		name:      name,
		member:    member,
		binding:   binding,
		source:    source,
	}
	e.services[name] = sp
	return sp, nil
}

// RemoveServiceProperty removes a declared service property if source
// overrides it.
func (e *EntityType) RemoveServiceProperty(name string, source ConfigurationSource) (bool, error) {
	if err := e.model.checkMutable(); err != nil {
		return false, err
	}
	sp := e.services[name]
	if sp == nil || !source.Overrides(sp.source) {
		return false, nil
	}
	delete(e.services, name)
	sp.removed = true
	return true, nil
}

func (e *EntityType) findServiceInHierarchy(name string) *ServiceProperty {
	for t := e; t != nil; t = t.base {
		if sp := t.services[name]; sp != nil {
			return sp
		}
	}
	return nil
}

// FindServiceProperty returns the declared or inherited service property.
func (e *EntityType) FindServiceProperty(name string) *ServiceProperty {
	return e.findServiceInHierarchy(name)
}

// ServiceProperties returns the declared service properties sorted by name.
func (e *EntityType) ServiceProperties() []*ServiceProperty {
	sps := make([]*ServiceProperty, 0, len(e.services))
	for _, sp := range e.services {
		sps = append(sps, sp)
	}
	sort.Slice(sps, func(i, j int) bool { return sps[i].name < sps[j].name })
	return sps
}

// =============================================================================
// Keys
// =============================================================================

// PrimaryKey returns the primary key of the root of the hierarchy.
func (e *EntityType) PrimaryKey() *Key {
	return e.RootType().primaryKey
}

// PrimaryKeySource returns the source the primary key was configured with.
func (e *EntityType) PrimaryKeySource() ConfigurationSource {
	return e.RootType().pkSource
}

// SetPrimaryKey sets the primary key to the given properties, which must
// be declared on this type. Only root types carry a primary key. It
// returns nil without error when rejected by a higher-ranked source.
func (e *EntityType) SetPrimaryKey(props []*Property, source ConfigurationSource) (*Key, error) {
	if err := e.model.checkMutable(); err != nil {
		return nil, err
	}
	if e.base != nil {
		return nil, NewMemberError(e.name, "", "primary key must be declared on the root of the hierarchy")
	}
	if len(props) == 0 {
		return nil, NewMemberError(e.name, "", "primary key requires at least one property")
	}
	for _, p := range props {
		if p == nil || p.declaring != e {
			return nil, NewMemberError(e.name, "", "key properties must be declared on the same entity type")
		}
	}
	if e.keyless {
		if !source.Overrides(e.keylessSource) {
			return nil, nil
		}
		e.keyless = false
	}
	if old := e.primaryKey; old != nil {
		if samePropertySet(old.properties, props) {
			e.pkSource = e.pkSource.Max(source)
			return old, nil
		}
		if !source.Overrides(e.pkSource) {
			return nil, nil
		}
	}
	key := &Key{declaring: e, properties: append([]*Property(nil), props...), source: source}
	old := e.primaryKey
	e.primaryKey = key
	e.pkSource = source
	e.replaceKey(old, key)
	return e.model.dispatcher.primaryKeyChanged(e, key, old)
}

// ClearPrimaryKey removes the primary key if source overrides it.
func (e *EntityType) ClearPrimaryKey(source ConfigurationSource) (bool, error) {
	if err := e.model.checkMutable(); err != nil {
		return false, err
	}
	old := e.primaryKey
	if old == nil || !source.Overrides(e.pkSource) {
		return false, nil
	}
	e.primaryKey = nil
	e.pkSource = source
	e.replaceKey(old, nil)
	if _, err := e.model.dispatcher.primaryKeyChanged(e, nil, old); err != nil {
		return false, err
	}
	return true, nil
}

func (e *EntityType) replaceKey(old, repl *Key) {
	for i, k := range e.keys {
		if k == old {
			if repl == nil {
				e.keys = append(e.keys[:i], e.keys[i+1:]...)
			} else {
				e.keys[i] = repl
			}
			return
		}
	}
	if repl != nil {
		e.keys = append(e.keys, repl)
	}
}

// AddKey declares an alternate key over the given properties.
func (e *EntityType) AddKey(props []*Property, source ConfigurationSource) (*Key, error) {
	if err := e.model.checkMutable(); err != nil {
		return nil, err
	}
	if len(props) == 0 {
		return nil, NewMemberError(e.name, "", "key requires at least one property")
	}
	for _, p := range props {
		if p == nil || p.declaring != e {
			return nil, NewMemberError(e.name, "", "key properties must be declared on the same entity type")
		}
	}
	for _, k := range e.keys {
		if samePropertySet(k.properties, props) {
			k.source = k.source.Max(source)
			return k, nil
		}
	}
	key := &Key{declaring: e, properties: append([]*Property(nil), props...), source: source}
	e.keys = append(e.keys, key)
	return key, nil
}

// Keys returns the declared keys, the primary key included.
func (e *EntityType) Keys() []*Key {
	return append([]*Key(nil), e.keys...)
}

// IsKeyless reports whether the type is explicitly keyless.
func (e *EntityType) IsKeyless() bool { return e.RootType().keyless }

// SetKeyless marks the type as keyless (or clears the mark). Marking a
// type keyless removes its primary key if source overrides it.
func (e *EntityType) SetKeyless(keyless bool, source ConfigurationSource) (bool, error) {
	if err := e.model.checkMutable(); err != nil {
		return false, err
	}
	if e.keyless == keyless {
		e.keylessSource = e.keylessSource.Max(source)
		return false, nil
	}
	if !source.Overrides(e.keylessSource) {
		return false, nil
	}
	batch := e.model.DelayConventions()
	defer batch.Close()
	if keyless && e.primaryKey != nil {
		if ok, err := e.ClearPrimaryKey(source); err != nil || !ok {
			return false, err
		}
	}
	e.keyless = keyless
	e.keylessSource = source
	if _, err := e.model.dispatcher.keylessChanged(e); err != nil {
		return false, err
	}
	return true, batch.Close()
}

// =============================================================================
// Foreign keys
// =============================================================================

// AddForeignKey declares a foreign key from this (dependent) type to the
// principal type over the given dependent properties. A nil principalKey
// uses the principal's primary key.
func (e *EntityType) AddForeignKey(props []*Property, principalKey *Key, principal *EntityType, source ConfigurationSource) (*ForeignKey, error) {
	if err := e.model.checkMutable(); err != nil {
		return nil, err
	}
	if principal == nil || principal.model != e.model || principal.removed {
		return nil, NewForeignKeyError(e.name, propertyNames(props), "principal type does not belong to the model")
	}
	if principalKey == nil {
		principalKey = principal.PrimaryKey()
		if principalKey == nil {
			return nil, NewForeignKeyError(e.name, propertyNames(props), fmt.Sprintf("principal type %s has no key", principal.name))
		}
	}
	if len(props) == 0 || len(props) != len(principalKey.properties) {
		return nil, NewForeignKeyError(e.name, propertyNames(props),
			fmt.Sprintf("foreign key property count does not match principal key (%d != %d)", len(props), len(principalKey.properties)))
	}
	for _, p := range props {
		if p == nil || e.findPropertyInHierarchy(p.name) != p {
			return nil, NewForeignKeyError(e.name, propertyNames(props), "foreign key properties must belong to the dependent type")
		}
	}
	for _, fk := range e.foreignKeys {
		if fk.principal == principal && fk.principalKey == principalKey && samePropertySet(fk.properties, props) {
			fk.UpdateSource(source)
			return fk, nil
		}
	}
	fk := &ForeignKey{
		declaring:        e,
		principal:        principal,
		principalKey:     principalKey,
		properties:       append([]*Property(nil), props...),
		propertiesSource: source,
		source:           source,
	}
	e.foreignKeys = append(e.foreignKeys, fk)
	principal.referencing = append(principal.referencing, fk)
	return e.model.dispatcher.foreignKeyAdded(fk)
}

// AddRelationship declares a foreign key to the principal type,
// synthesizing shadow dependent properties named after the principal key
// ("customer_id" for a Customer principal keyed by "id").
func (e *EntityType) AddRelationship(principal *EntityType, source ConfigurationSource) (*ForeignKey, error) {
	if principal == nil {
		return nil, NewForeignKeyError(e.name, nil, "principal type has no key to reference")
	}
	return e.AddRelationshipVia(principal, principal.name, source)
}

// AddRelationshipVia is AddRelationship with the synthesized property
// names derived from baseName instead of the principal type name, so two
// relationships to the same principal (say navigations ShippingAddress
// and BillingAddress) get distinct dependent properties.
func (e *EntityType) AddRelationshipVia(principal *EntityType, baseName string, source ConfigurationSource) (*ForeignKey, error) {
	if err := e.model.checkMutable(); err != nil {
		return nil, err
	}
	if principal == nil || principal.PrimaryKey() == nil {
		return nil, NewForeignKeyError(e.name, nil, "principal type has no key to reference")
	}
	pk := principal.PrimaryKey()
	batch := e.model.DelayConventions()
	defer batch.Close()
	props := make([]*Property, 0, len(pk.properties))
	for _, kp := range pk.properties {
		name := snake(rules.Singularize(baseName)) + "_" + snake(kp.name)
		p := e.findPropertyInHierarchy(name)
		if p == nil {
			var err error
			p, err = e.AddProperty(name, kp.goType, source)
			if err != nil {
				return nil, err
			}
			if p == nil {
				return nil, NewForeignKeyError(e.name, []string{name}, "cannot synthesize foreign key property over an ignored member")
			}
		}
		props = append(props, p)
	}
	fk, err := e.AddForeignKey(props, pk, principal, source)
	if err != nil {
		return nil, err
	}
	return fk, batch.Close()
}

// RemoveForeignKey removes a declared foreign key if source overrides
// it, clearing both of its navigations first.
func (e *EntityType) RemoveForeignKey(fk *ForeignKey, source ConfigurationSource) (bool, error) {
	if err := e.model.checkMutable(); err != nil {
		return false, err
	}
	if fk == nil || fk.removed || fk.declaring != e {
		return false, nil
	}
	if !source.Overrides(fk.source) {
		return false, nil
	}
	batch := e.model.DelayConventions()
	defer batch.Close()
	if _, err := e.detachForeignKey(fk); err != nil {
		return false, err
	}
	return true, batch.Close()
}

// detachForeignKey unconditionally removes the foreign key, clearing
// both navigations first. Used by cascade removal, where the entity
// type's own source check already authorized the mutation; see
// detachNavigation.
func (e *EntityType) detachForeignKey(fk *ForeignKey) (bool, error) {
	if fk == nil || fk.removed || fk.declaring != e {
		return false, nil
	}
	for _, nav := range []*Navigation{fk.dependentToPrincipal, fk.principalToDependent} {
		if nav == nil {
			continue
		}
		if _, err := fk.detachNavigation(nav); err != nil {
			return false, err
		}
	}
	e.foreignKeys = removeForeignKey(e.foreignKeys, fk)
	fk.principal.referencing = removeForeignKey(fk.principal.referencing, fk)
	fk.removed = true
	if _, err := e.model.dispatcher.foreignKeyRemoved(e, fk); err != nil {
		return false, err
	}
	return true, nil
}

// ForeignKeys returns the foreign keys declared on this type, in
// declaration order.
func (e *EntityType) ForeignKeys() []*ForeignKey {
	return append([]*ForeignKey(nil), e.foreignKeys...)
}

// AllForeignKeys returns declared and inherited foreign keys.
func (e *EntityType) AllForeignKeys() []*ForeignKey {
	var fks []*ForeignKey
	for t := e; t != nil; t = t.base {
		fks = append(fks, t.foreignKeys...)
	}
	return fks
}

// ReferencingForeignKeys returns the foreign keys declared on other
// types that reference this type as principal.
func (e *EntityType) ReferencingForeignKeys() []*ForeignKey {
	return append([]*ForeignKey(nil), e.referencing...)
}

// IsOwned reports whether this type is the dependent of an ownership
// foreign key, declared or inherited.
func (e *EntityType) IsOwned() bool {
	for _, fk := range e.AllForeignKeys() {
		if fk.owned {
			return true
		}
	}
	return false
}

// =============================================================================
// Navigations
// =============================================================================

// FindNavigation returns the declared or inherited navigation.
func (e *EntityType) FindNavigation(name string) *Navigation {
	for t := e; t != nil; t = t.base {
		if nav := t.navigations[name]; nav != nil {
			return nav
		}
	}
	return nil
}

// Navigations returns the declared navigations sorted by name.
func (e *EntityType) Navigations() []*Navigation {
	navs := make([]*Navigation, 0, len(e.navigations))
	for _, nav := range e.navigations {
		navs = append(navs, nav)
	}
	sort.Slice(navs, func(i, j int) bool { return navs[i].name < navs[j].name })
	return navs
}

// AllNavigations returns declared and inherited navigations sorted by name.
func (e *EntityType) AllNavigations() []*Navigation {
	seen := make(map[string]struct{})
	var navs []*Navigation
	for t := e; t != nil; t = t.base {
		for _, nav := range t.navigations {
			if _, ok := seen[nav.name]; ok {
				continue
			}
			seen[nav.name] = struct{}{}
			navs = append(navs, nav)
		}
	}
	sort.Slice(navs, func(i, j int) bool { return navs[i].name < navs[j].name })
	return navs
}

// =============================================================================
// Annotations
// =============================================================================

// SetAnnotation attaches an annotation to the type if source overrides a
// previously set one.
func (e *EntityType) SetAnnotation(name string, value any, source ConfigurationSource) (*Annotation, error) {
	if err := e.model.checkMutable(); err != nil {
		return nil, err
	}
	ann, old, changed := e.set(name, value, source)
	if !changed {
		return ann, nil
	}
	return e.model.dispatcher.entityTypeAnnotationChanged(e, name, ann, old)
}

// RemoveAnnotation removes the named annotation if source overrides it.
func (e *EntityType) RemoveAnnotation(name string, source ConfigurationSource) (bool, error) {
	if err := e.model.checkMutable(); err != nil {
		return false, err
	}
	old, ok := e.remove(name, source)
	if !ok {
		return false, nil
	}
	if _, err := e.model.dispatcher.entityTypeAnnotationChanged(e, name, nil, old); err != nil {
		return false, err
	}
	return true, nil
}

// FindAnnotation returns the annotation with the given name.
func (e *EntityType) FindAnnotation(name string) *Annotation { return e.find(name) }

// Annotations returns the type annotations sorted by name.
func (e *EntityType) Annotations() []*Annotation { return e.all() }

// =============================================================================
// Helpers
// =============================================================================

func samePropertySet(a, b []*Property) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func propertyNames(props []*Property) []string {
	names := make([]string, len(props))
	for i, p := range props {
		if p != nil {
			names[i] = p.name
		}
	}
	return names
}

func removeForeignKey(fks []*ForeignKey, fk *ForeignKey) []*ForeignKey {
	for i, f := range fks {
		if f == fk {
			return append(fks[:i], fks[i+1:]...)
		}
	}
	return fks
}
