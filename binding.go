package metagraph

import "reflect"

// ParameterBinding describes how a service property is provided with a
// framework value: the service type resolved for the member, and the
// member the value is bound to.
type ParameterBinding struct {
	// ServiceType is the type of the framework-provided service.
	ServiceType reflect.Type
	// Member is the name of the bound member.
	Member string
}

// BindingFactory is the parameter-binding collaborator of the pipeline.
// Given a member's type and name, it answers with a binding descriptor,
// or nil when the member is not a service candidate. It is consulted by
// the service-property discovery convention only.
type BindingFactory interface {
	FindBinding(typ reflect.Type, name string) *ParameterBinding
}

// BindingFactoryFunc adapts a plain function to a BindingFactory.
type BindingFactoryFunc func(typ reflect.Type, name string) *ParameterBinding

// FindBinding calls f.
func (f BindingFactoryFunc) FindBinding(typ reflect.Type, name string) *ParameterBinding {
	return f(typ, name)
}

// TypeBindingFactory is a BindingFactory keyed by exact service type.
// Members whose type matches one of the registered types resolve to a
// binding for that type; everything else resolves to nil.
type TypeBindingFactory struct {
	types map[reflect.Type]struct{}
}

// NewTypeBindingFactory returns a factory binding the given service types.
func NewTypeBindingFactory(types ...reflect.Type) *TypeBindingFactory {
	f := &TypeBindingFactory{types: make(map[reflect.Type]struct{}, len(types))}
	for _, t := range types {
		f.types[t] = struct{}{}
	}
	return f
}

// Bind registers an additional service type.
func (f *TypeBindingFactory) Bind(t reflect.Type) *TypeBindingFactory {
	f.types[t] = struct{}{}
	return f
}

// FindBinding implements BindingFactory.
func (f *TypeBindingFactory) FindBinding(typ reflect.Type, name string) *ParameterBinding {
	if _, ok := f.types[typ]; !ok {
		return nil
	}
	return &ParameterBinding{ServiceType: typ, Member: name}
}
