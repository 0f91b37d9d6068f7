package metadata

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/syssam/metagraph"
	"github.com/syssam/metagraph/introspect"
)

// Model is the root of the entity-relationship graph. It owns the set of
// entity types and the convention dispatcher, and has a two-phase
// lifecycle: while building, every mutation entry point raises events
// into the dispatcher; once finalized the model is read-only.
//
// A model is exclusively owned by one builder pipeline. No concurrent
// mutation is supported; callers must serialize access until Finalize
// returns, after which the model is safe to share for reading.
type Model struct {
	annotatable
	entityTypes map[string]*EntityType
	byType      map[reflect.Type]*EntityType
	dispatcher  *Dispatcher
	reporter    metagraph.Reporter
	finalized   bool
}

// Option configures a model.
type Option func(*Model) error

// WithConventions sets the convention set run by the model's dispatcher.
func WithConventions(set *ConventionSet) Option {
	return func(m *Model) error {
		if set == nil {
			return fmt.Errorf("metagraph: convention set cannot be nil")
		}
		m.dispatcher = newDispatcher(set)
		return nil
	}
}

// WithReporter sets the diagnostics reporter.
func WithReporter(r metagraph.Reporter) Option {
	return func(m *Model) error {
		if r == nil {
			return fmt.Errorf("metagraph: reporter cannot be nil")
		}
		m.reporter = r
		return nil
	}
}

// NewModel creates an empty model. Without options it runs no
// conventions and discards diagnostics.
func NewModel(opts ...Option) (*Model, error) {
	m := &Model{
		entityTypes: make(map[string]*EntityType),
		byType:      make(map[reflect.Type]*EntityType),
		dispatcher:  newDispatcher(NewConventionSet()),
		reporter:    metagraph.NopReporter(),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// MustNewModel is like NewModel but panics on option errors.
func MustNewModel(opts ...Option) *Model {
	m, err := NewModel(opts...)
	if err != nil {
		panic(err)
	}
	return m
}

// Reporter returns the diagnostics reporter.
func (m *Model) Reporter() metagraph.Reporter { return m.reporter }

// Dispatcher returns the convention dispatcher.
func (m *Model) Dispatcher() *Dispatcher { return m.dispatcher }

// IsFinalized reports whether the model has been finalized.
func (m *Model) IsFinalized() bool { return m.finalized }

// DelayConventions opens a deferred-processing batch: events raised while
// the batch is open are queued instead of dispatched, and flushed in FIFO
// order when the outermost batch closes. See Batch.
func (m *Model) DelayConventions() *Batch {
	return m.dispatcher.Batch()
}

func (m *Model) checkMutable() error {
	if m.finalized {
		return ErrModelFinalized
	}
	return nil
}

// AddEntityType adds an entity type for the given source struct type.
// If a type with the same name already exists for the same struct type,
// the existing one is returned with its source raised; a name collision
// with a different struct type is a conflict.
func (m *Model) AddEntityType(goType reflect.Type, source ConfigurationSource) (*EntityType, error) {
	if err := m.checkMutable(); err != nil {
		return nil, err
	}
	info := introspect.Of(goType)
	if info == nil {
		return nil, fmt.Errorf("metagraph: entity type must be a struct type, got %v", goType)
	}
	name := info.Name()
	if existing := m.entityTypes[name]; existing != nil {
		if existing.goType != info.ReflectType() {
			return nil, NewMemberError(name, "", fmt.Sprintf("entity type name already used by %v", existing.goType))
		}
		existing.source = existing.source.Max(source)
		return existing, nil
	}
	et := &EntityType{
		model:       m,
		name:        name,
		goType:      info.ReflectType(),
		info:        info,
		source:      source,
		properties:  make(map[string]*Property),
		services:    make(map[string]*ServiceProperty),
		navigations: make(map[string]*Navigation),
		derived:     make(map[string]*EntityType),
		ignored:     make(map[string]ConfigurationSource),
	}
	m.entityTypes[name] = et
	m.byType[et.goType] = et
	return m.dispatcher.entityTypeAdded(et)
}

// RemoveEntityType removes the entity type from the model if source
// overrides the one it was added with. Removal cascades: declared
// properties, keys, foreign keys and navigations are removed, foreign
// keys referencing the type from other types are removed, and derived
// types are detached from the inheritance chain.
func (m *Model) RemoveEntityType(et *EntityType, source ConfigurationSource) (bool, error) {
	if err := m.checkMutable(); err != nil {
		return false, err
	}
	if et == nil || et.removed || et.model != m {
		return false, nil
	}
	if !source.Overrides(et.source) {
		return false, nil
	}
	batch := m.DelayConventions()
	defer batch.Close()

	// Once the removal itself is authorized, the cascade is
	// unconditional: a foreign key pinned at a higher source must not
	// survive pointing at a removed type.
	for _, fk := range append([]*ForeignKey(nil), et.referencing...) {
		if _, err := fk.declaring.detachForeignKey(fk); err != nil {
			return false, err
		}
	}
	for _, fk := range append([]*ForeignKey(nil), et.foreignKeys...) {
		if _, err := et.detachForeignKey(fk); err != nil {
			return false, err
		}
	}
	for _, d := range et.derivedTypes() {
		if _, err := d.SetBaseType(et.base, source); err != nil {
			return false, err
		}
	}
	if et.base != nil {
		delete(et.base.derived, et.name)
	}
	delete(m.entityTypes, et.name)
	delete(m.byType, et.goType)
	et.removed = true
	if _, err := m.dispatcher.entityTypeRemoved(m, et); err != nil {
		return false, err
	}
	return true, batch.Close()
}

// FindEntityType returns the entity type with the given name.
func (m *Model) FindEntityType(name string) *EntityType {
	return m.entityTypes[name]
}

// FindEntityTypeOf returns the entity type mapped to the given struct type.
func (m *Model) FindEntityTypeOf(goType reflect.Type) *EntityType {
	for goType != nil && goType.Kind() == reflect.Pointer {
		goType = goType.Elem()
	}
	return m.byType[goType]
}

// EntityTypes returns all entity types sorted by name.
func (m *Model) EntityTypes() []*EntityType {
	types := make([]*EntityType, 0, len(m.entityTypes))
	for _, et := range m.entityTypes {
		types = append(types, et)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].name < types[j].name })
	return types
}

// SetAnnotation attaches an annotation to the model.
func (m *Model) SetAnnotation(name string, value any, source ConfigurationSource) (*Annotation, error) {
	if err := m.checkMutable(); err != nil {
		return nil, err
	}
	ann, _, _ := m.set(name, value, source)
	return ann, nil
}

// FindAnnotation returns the model annotation with the given name.
func (m *Model) FindAnnotation(name string) *Annotation { return m.find(name) }

// Annotations returns the model annotations sorted by name.
func (m *Model) Annotations() []*Annotation { return m.all() }

// Finalize runs the finalizing conventions, marks the model read-only
// and runs the one-time finalized validation conventions. A fatal
// configuration conflict surfaces here if it was deferred to
// finalization; the model must then be treated as invalid.
func (m *Model) Finalize() error {
	if err := m.checkMutable(); err != nil {
		return err
	}
	if _, err := m.dispatcher.modelFinalizing(m); err != nil {
		return err
	}
	m.finalized = true
	if _, err := m.dispatcher.modelFinalized(m); err != nil {
		return err
	}
	return nil
}
