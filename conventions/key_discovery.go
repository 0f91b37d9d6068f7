package conventions

import (
	"github.com/syssam/metagraph/metadata"
)

// KeyDiscovery assigns a conventional single-property primary key to
// root entity types: a property named "ID" or "<TypeName>ID" becomes the
// primary key when none is configured.
type KeyDiscovery struct{}

// NewKeyDiscovery returns the primary-key discovery convention.
func NewKeyDiscovery() *KeyDiscovery {
	return &KeyDiscovery{}
}

// ProcessPropertyAdded implements metadata.PropertyAddedConvention.
func (c *KeyDiscovery) ProcessPropertyAdded(p *metadata.Property, _ *metadata.Context[*metadata.Property]) error {
	return c.discover(p.DeclaringEntityType())
}

// ProcessPrimaryKeyChanged implements metadata.PrimaryKeyChangedConvention.
// Clearing the primary key re-runs discovery.
func (c *KeyDiscovery) ProcessPrimaryKeyChanged(et *metadata.EntityType, newKey, _ *metadata.Key, _ *metadata.Context[*metadata.Key]) error {
	if newKey != nil {
		return nil
	}
	return c.discover(et)
}

// ProcessKeylessChanged implements metadata.KeylessChangedConvention.
// A type no longer marked keyless becomes a key candidate again.
func (c *KeyDiscovery) ProcessKeylessChanged(et *metadata.EntityType, _ *metadata.Context[*metadata.EntityType]) error {
	if et.IsKeyless() {
		return nil
	}
	return c.discover(et)
}

func (c *KeyDiscovery) discover(et *metadata.EntityType) error {
	if et.BaseType() != nil || et.IsKeyless() || et.PrimaryKey() != nil {
		return nil
	}
	for _, name := range []string{"ID", et.Name() + "ID"} {
		p := et.FindDeclaredProperty(name)
		if p == nil {
			continue
		}
		if _, err := et.SetPrimaryKey([]*metadata.Property{p}, metadata.SourceConvention); err != nil {
			return err
		}
		return nil
	}
	return nil
}
