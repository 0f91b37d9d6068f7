package conventions

import (
	"reflect"

	"github.com/google/uuid"

	"github.com/syssam/metagraph/metadata"
)

// ValueGeneration keeps every property's value-generation flag
// consistent with the key and foreign-key structure: a property is
// store-generated on add exactly when it is the single non-foreign-key
// property of its primary key and its type can be produced by a store
// (an integer wider than one byte, or a UUID).
type ValueGeneration struct{}

// NewValueGeneration returns the value-generation convention.
func NewValueGeneration() *ValueGeneration {
	return &ValueGeneration{}
}

// ProcessPropertyAdded implements metadata.PropertyAddedConvention.
func (c *ValueGeneration) ProcessPropertyAdded(p *metadata.Property, _ *metadata.Context[*metadata.Property]) error {
	return c.recompute(p)
}

// ProcessPrimaryKeyChanged implements metadata.PrimaryKeyChangedConvention.
func (c *ValueGeneration) ProcessPrimaryKeyChanged(et *metadata.EntityType, newKey, oldKey *metadata.Key, _ *metadata.Context[*metadata.Key]) error {
	if oldKey != nil {
		if err := c.recomputeAll(oldKey.Properties()); err != nil {
			return err
		}
	}
	if newKey != nil {
		return c.recomputeAll(newKey.Properties())
	}
	return nil
}

// ProcessForeignKeyAdded implements metadata.ForeignKeyAddedConvention.
// Foreign-key properties never generate their own values.
func (c *ValueGeneration) ProcessForeignKeyAdded(fk *metadata.ForeignKey, _ *metadata.Context[*metadata.ForeignKey]) error {
	return c.recomputeAll(fk.Properties())
}

// ProcessForeignKeyRemoved implements metadata.ForeignKeyRemovedConvention.
func (c *ValueGeneration) ProcessForeignKeyRemoved(_ *metadata.EntityType, fk *metadata.ForeignKey, _ *metadata.Context[*metadata.ForeignKey]) error {
	return c.recomputeAll(fk.Properties())
}

// ProcessForeignKeyPropertiesChanged implements
// metadata.ForeignKeyPropertiesChangedConvention.
func (c *ValueGeneration) ProcessForeignKeyPropertiesChanged(fk *metadata.ForeignKey, oldProperties []*metadata.Property, _ *metadata.Key, _ *metadata.Context[*metadata.ForeignKey]) error {
	if err := c.recomputeAll(oldProperties); err != nil {
		return err
	}
	return c.recomputeAll(fk.Properties())
}

// ProcessEntityTypeBaseTypeChanged implements
// metadata.EntityTypeBaseTypeChangedConvention. Inherited key and
// foreign-key structure changed, so everything is recomputed.
func (c *ValueGeneration) ProcessEntityTypeBaseTypeChanged(et, _, _ *metadata.EntityType, _ *metadata.Context[*metadata.EntityType]) error {
	return c.recomputeAll(et.AllProperties())
}

func (c *ValueGeneration) recomputeAll(props []*metadata.Property) error {
	for _, p := range props {
		if err := c.recompute(p); err != nil {
			return err
		}
	}
	return nil
}

func (c *ValueGeneration) recompute(p *metadata.Property) error {
	if !p.InModel() {
		return nil
	}
	// OnAddOrUpdate is assigned deliberately by store-specific
	// conventions and is not derived from key structure.
	if p.ValueGenerated() == metadata.ValueGeneratedOnAddOrUpdate {
		return nil
	}
	generated := metadata.ValueGeneratedNever
	if c.generatesOnAdd(p) {
		generated = metadata.ValueGeneratedOnAdd
	}
	_, err := p.SetValueGenerated(generated, metadata.SourceConvention)
	return err
}

func (c *ValueGeneration) generatesOnAdd(p *metadata.Property) bool {
	if !p.IsPrimaryKey() || p.IsForeignKey() || !storeGeneratable(p.GoType()) {
		return false
	}
	pk := p.DeclaringEntityType().PrimaryKey()
	if pk == nil {
		return false
	}
	nonForeign := 0
	for _, kp := range pk.Properties() {
		if !kp.IsForeignKey() {
			nonForeign++
		}
	}
	return nonForeign == 1
}

var uuidType = reflect.TypeOf(uuid.UUID{})

// storeGeneratable reports whether a store can produce values of the
// type on insert: integers wider than one byte, or UUIDs.
func storeGeneratable(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return t == uuidType
}
