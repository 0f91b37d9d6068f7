package conventions

import (
	"github.com/syssam/metagraph/metadata"
)

// PropertyDiscovery maps every scalar-shaped member of a newly added
// entity type to a property at Convention source. Navigation-shaped and
// unmappable members are left for the other discovery conventions.
type PropertyDiscovery struct{}

// NewPropertyDiscovery returns the scalar-member discovery convention.
func NewPropertyDiscovery() *PropertyDiscovery {
	return &PropertyDiscovery{}
}

// ProcessEntityTypeAdded implements metadata.EntityTypeAddedConvention.
func (c *PropertyDiscovery) ProcessEntityTypeAdded(et *metadata.EntityType, _ *metadata.Context[*metadata.EntityType]) error {
	for _, m := range et.Info().Members() {
		if !m.IsScalar() || et.IsIgnored(m.Name()) {
			continue
		}
		if _, err := et.AddProperty(m.Name(), nil, metadata.SourceConvention); err != nil {
			return err
		}
	}
	return nil
}
