package metadata

import (
	"github.com/syssam/metagraph"
	"github.com/syssam/metagraph/introspect"
)

// ServiceProperty is a member bound to a framework-provided value
// rather than mapped data. It carries the parameter binding resolved by
// the binding-factory collaborator.
type ServiceProperty struct {
	declaring *EntityType
	name      string
	member    *introspect.Member
	binding   *metagraph.ParameterBinding
	source    ConfigurationSource
	removed   bool
}

// Name returns the service property name.
func (s *ServiceProperty) Name() string { return s.name }

// Member returns the backing struct member.
func (s *ServiceProperty) Member() *introspect.Member { return s.member }

// Binding returns the resolved parameter binding.
func (s *ServiceProperty) Binding() *metagraph.ParameterBinding { return s.binding }

// DeclaringEntityType returns the entity type the service property is
// declared on.
func (s *ServiceProperty) DeclaringEntityType() *EntityType { return s.declaring }

// Source returns the service property's configuration source.
func (s *ServiceProperty) Source() ConfigurationSource { return s.source }

// InModel reports whether the service property is still part of the model.
func (s *ServiceProperty) InModel() bool { return !s.removed && !s.declaring.removed }
