package conventions

import (
	"github.com/syssam/metagraph"
	"github.com/syssam/metagraph/metadata"
)

// DefaultSet assembles the standard conventions in their standard order.
// Discovery runs first so the attribute-driven conventions see fully
// populated types; cleanup is registered last so its finalization pass
// runs after every validation. A nil factory disables service-property
// discovery.
func DefaultSet(factory metagraph.BindingFactory) *metadata.ConventionSet {
	return metadata.NewConventionSet(
		NewPropertyDiscovery(),
		NewKeyDiscovery(),
		NewRelationshipDiscovery(),
		NewForeignKeyAttribute(),
		NewInverseNavigation(),
		NewServicePropertyDiscovery(factory),
		NewValueGeneration(),
		NewModelCleanup(),
	)
}

// NewModel creates a model running the default convention set. Further
// options are applied after the conventions, so they may replace the set.
func NewModel(factory metagraph.BindingFactory, opts ...metadata.Option) (*metadata.Model, error) {
	return metadata.NewModel(append([]metadata.Option{
		metadata.WithConventions(DefaultSet(factory)),
	}, opts...)...)
}
