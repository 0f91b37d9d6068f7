package document

import (
	"encoding/json"
	"reflect"

	"github.com/syssam/metagraph/metadata"
)

// Names of the synthesized document-store properties.
const (
	// IDProperty is the string identifier every document root carries.
	IDProperty = "id"
	// RawProperty is the shadow property holding the raw stored document.
	RawProperty = "__raw"
)

var (
	stringType = reflect.TypeOf("")
	rawType    = reflect.TypeOf(json.RawMessage(nil))
)

// StoreKey gives every document root (a non-derived, non-keyless,
// non-owned entity type) a synthesized string identifier and a raw
// document shadow property, and takes them away from types that stop
// being roots. Every trigger funnels into one idempotent shape check.
type StoreKey struct{}

// NewStoreKey returns the document store-key convention.
func NewStoreKey() *StoreKey {
	return &StoreKey{}
}

// ProcessEntityTypeAdded implements metadata.EntityTypeAddedConvention.
func (c *StoreKey) ProcessEntityTypeAdded(et *metadata.EntityType, _ *metadata.Context[*metadata.EntityType]) error {
	return c.ensure(et)
}

// ProcessForeignKeyOwnershipChanged implements
// metadata.ForeignKeyOwnershipChangedConvention. A dependent becoming
// owned is no longer a root; one released from ownership may become one.
func (c *StoreKey) ProcessForeignKeyOwnershipChanged(fk *metadata.ForeignKey, _ *metadata.Context[*metadata.ForeignKey]) error {
	return c.ensure(fk.DeclaringEntityType())
}

// ProcessEntityTypeAnnotationChanged implements
// metadata.EntityTypeAnnotationChangedConvention.
func (c *StoreKey) ProcessEntityTypeAnnotationChanged(et *metadata.EntityType, name string, _, _ *metadata.Annotation, _ *metadata.Context[*metadata.Annotation]) error {
	if name != ContainerAnnotation {
		return nil
	}
	return c.ensure(et)
}

// ProcessEntityTypeBaseTypeChanged implements
// metadata.EntityTypeBaseTypeChangedConvention.
func (c *StoreKey) ProcessEntityTypeBaseTypeChanged(et, _, _ *metadata.EntityType, _ *metadata.Context[*metadata.EntityType]) error {
	return c.ensure(et)
}

// ProcessKeylessChanged implements metadata.KeylessChangedConvention.
func (c *StoreKey) ProcessKeylessChanged(et *metadata.EntityType, _ *metadata.Context[*metadata.EntityType]) error {
	return c.ensure(et)
}

// ensure adds or removes the synthesized properties so the type's shape
// matches its root status. It is idempotent.
func (c *StoreKey) ensure(et *metadata.EntityType) error {
	if !et.InModel() {
		return nil
	}
	batch := et.Model().DelayConventions()
	defer batch.Close()
	if isRoot(et) {
		id := et.FindProperty(IDProperty)
		if id == nil {
			var err error
			id, err = et.AddProperty(IDProperty, stringType, metadata.SourceConvention)
			if err != nil {
				return err
			}
			if id == nil {
				return batch.Close()
			}
		}
		if et.PrimaryKey() == nil {
			if _, err := et.SetPrimaryKey([]*metadata.Property{id}, metadata.SourceConvention); err != nil {
				return err
			}
		}
		raw := et.FindProperty(RawProperty)
		if raw == nil {
			var err error
			raw, err = et.AddProperty(RawProperty, rawType, metadata.SourceConvention)
			if err != nil {
				return err
			}
			if raw == nil {
				return batch.Close()
			}
			if _, err := raw.SetValueGenerated(metadata.ValueGeneratedOnAddOrUpdate, metadata.SourceConvention); err != nil {
				return err
			}
		}
		return batch.Close()
	}
	if id := et.FindDeclaredProperty(IDProperty); synthesized(id) {
		if pk := et.PrimaryKey(); pk != nil && pk.Contains(id) {
			if _, err := et.ClearPrimaryKey(metadata.SourceConvention); err != nil {
				return err
			}
		}
		if !id.IsKey() && !id.IsForeignKey() {
			if _, err := et.RemoveProperty(id, metadata.SourceConvention); err != nil {
				return err
			}
		}
	}
	if raw := et.FindDeclaredProperty(RawProperty); synthesized(raw) {
		if !raw.IsKey() && !raw.IsForeignKey() {
			if _, err := et.RemoveProperty(raw, metadata.SourceConvention); err != nil {
				return err
			}
		}
	}
	return batch.Close()
}

func isRoot(et *metadata.EntityType) bool {
	return et.BaseType() == nil && !et.IsKeyless() && !et.IsOwned()
}

func synthesized(p *metadata.Property) bool {
	return p != nil && p.IsShadow() && p.Source() == metadata.SourceConvention
}
