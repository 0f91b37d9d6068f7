package metadata

import (
	"reflect"

	"github.com/syssam/metagraph/introspect"
)

// ValueGenerated is a property's value-generation strategy.
type ValueGenerated int

const (
	// ValueGeneratedNever means the value is always provided by the
	// application.
	ValueGeneratedNever ValueGenerated = iota
	// ValueGeneratedOnAdd means the store generates the value on insert.
	ValueGeneratedOnAdd
	// ValueGeneratedOnAddOrUpdate means the store generates the value on
	// both insert and update.
	ValueGeneratedOnAddOrUpdate
)

// String returns the strategy name.
func (v ValueGenerated) String() string {
	switch v {
	case ValueGeneratedNever:
		return "Never"
	case ValueGeneratedOnAdd:
		return "OnAdd"
	case ValueGeneratedOnAddOrUpdate:
		return "OnAddOrUpdate"
	}
	return "Unknown"
}

// Property is a scalar mapped member of an entity type. A property with
// no backing struct member is a shadow property.
type Property struct {
	declaring *EntityType
	name      string
	goType    reflect.Type
	member    *introspect.Member
	source    ConfigurationSource

	nullable       bool
	nullableSource ConfigurationSource

	valueGenerated ValueGenerated
	vgSource       ConfigurationSource

	removed bool
}

// Name returns the property name.
func (p *Property) Name() string { return p.name }

// GoType returns the property's Go type.
func (p *Property) GoType() reflect.Type { return p.goType }

// Member returns the backing struct member, or nil for a shadow property.
func (p *Property) Member() *introspect.Member { return p.member }

// IsShadow reports whether the property has no backing struct member.
func (p *Property) IsShadow() bool { return p.member == nil }

// DeclaringEntityType returns the entity type the property is declared on.
func (p *Property) DeclaringEntityType() *EntityType { return p.declaring }

// Source returns the property's configuration source.
func (p *Property) Source() ConfigurationSource { return p.source }

// UpdateSource raises the property's configuration source to at least s.
func (p *Property) UpdateSource(s ConfigurationSource) { p.source = p.source.Max(s) }

// InModel reports whether the property is still part of the model.
func (p *Property) InModel() bool { return !p.removed && !p.declaring.removed }

// Nullable reports whether the property admits null values.
func (p *Property) Nullable() bool { return p.nullable }

// SetNullable sets nullability if source overrides the previous setting.
// It reports whether the facet changed.
func (p *Property) SetNullable(nullable bool, source ConfigurationSource) (bool, error) {
	if err := p.declaring.model.checkMutable(); err != nil {
		return false, err
	}
	if !source.Overrides(p.nullableSource) {
		return false, nil
	}
	changed := p.nullable != nullable
	p.nullable = nullable
	p.nullableSource = source
	return changed, nil
}

// ValueGenerated returns the value-generation strategy.
func (p *Property) ValueGenerated() ValueGenerated { return p.valueGenerated }

// ValueGeneratedSource returns the source the strategy was set with.
func (p *Property) ValueGeneratedSource() ConfigurationSource { return p.vgSource }

// SetValueGenerated sets the value-generation strategy if source
// overrides the previous setting. It reports whether the facet changed.
func (p *Property) SetValueGenerated(v ValueGenerated, source ConfigurationSource) (bool, error) {
	if err := p.declaring.model.checkMutable(); err != nil {
		return false, err
	}
	if !source.Overrides(p.vgSource) {
		return false, nil
	}
	changed := p.valueGenerated != v
	p.valueGenerated = v
	p.vgSource = source
	return changed, nil
}

// IsKey reports whether the property is part of any key of its hierarchy.
func (p *Property) IsKey() bool {
	for _, k := range p.declaring.RootType().keys {
		for _, kp := range k.properties {
			if kp == p {
				return true
			}
		}
	}
	return false
}

// IsPrimaryKey reports whether the property is part of the primary key.
func (p *Property) IsPrimaryKey() bool {
	pk := p.declaring.PrimaryKey()
	if pk == nil {
		return false
	}
	for _, kp := range pk.properties {
		if kp == p {
			return true
		}
	}
	return false
}

// IsForeignKey reports whether the property is part of any foreign key
// declared in its hierarchy or on a derived type.
func (p *Property) IsForeignKey() bool {
	return len(p.ForeignKeys()) > 0
}

// ForeignKeys returns the foreign keys the property participates in.
func (p *Property) ForeignKeys() []*ForeignKey {
	var fks []*ForeignKey
	types := append([]*EntityType{p.declaring}, p.declaring.DerivedTypes()...)
	seen := make(map[*ForeignKey]struct{})
	for _, t := range types {
		for _, fk := range t.AllForeignKeys() {
			if _, ok := seen[fk]; ok {
				continue
			}
			seen[fk] = struct{}{}
			for _, fp := range fk.properties {
				if fp == p {
					fks = append(fks, fk)
					break
				}
			}
		}
	}
	return fks
}
