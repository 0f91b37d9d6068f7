package metadata

// Convention is a rule reacting to model-mutation events, itself capable
// of issuing further mutations through the builder operations. A
// convention implements one or more of the Process* capability
// interfaces below; the ConventionSet detects capabilities by type
// assertion when the convention is added.
type Convention interface{}

// EntityTypeAddedConvention reacts to an entity type joining the model.
type EntityTypeAddedConvention interface {
	ProcessEntityTypeAdded(entityType *EntityType, ctx *Context[*EntityType]) error
}

// EntityTypeRemovedConvention reacts to an entity type leaving the model.
type EntityTypeRemovedConvention interface {
	ProcessEntityTypeRemoved(model *Model, entityType *EntityType, ctx *Context[*EntityType]) error
}

// EntityTypeMemberIgnoredConvention reacts to a member being ignored.
type EntityTypeMemberIgnoredConvention interface {
	ProcessEntityTypeMemberIgnored(entityType *EntityType, name string, ctx *Context[string]) error
}

// EntityTypeBaseTypeChangedConvention reacts to a base-type change.
type EntityTypeBaseTypeChangedConvention interface {
	ProcessEntityTypeBaseTypeChanged(entityType, newBase, oldBase *EntityType, ctx *Context[*EntityType]) error
}

// EntityTypeAnnotationChangedConvention reacts to an entity-type
// annotation being set or removed (annotation is nil on removal).
type EntityTypeAnnotationChangedConvention interface {
	ProcessEntityTypeAnnotationChanged(entityType *EntityType, name string, annotation, oldAnnotation *Annotation, ctx *Context[*Annotation]) error
}

// KeylessChangedConvention reacts to the keyless flag changing.
type KeylessChangedConvention interface {
	ProcessKeylessChanged(entityType *EntityType, ctx *Context[*EntityType]) error
}

// PropertyAddedConvention reacts to a property joining an entity type.
type PropertyAddedConvention interface {
	ProcessPropertyAdded(property *Property, ctx *Context[*Property]) error
}

// PrimaryKeyChangedConvention reacts to the primary key being set or
// cleared (newKey is nil when cleared, oldKey nil when first set).
type PrimaryKeyChangedConvention interface {
	ProcessPrimaryKeyChanged(entityType *EntityType, newKey, oldKey *Key, ctx *Context[*Key]) error
}

// ForeignKeyAddedConvention reacts to a foreign key joining the model.
type ForeignKeyAddedConvention interface {
	ProcessForeignKeyAdded(foreignKey *ForeignKey, ctx *Context[*ForeignKey]) error
}

// ForeignKeyRemovedConvention reacts to a foreign key leaving the model.
type ForeignKeyRemovedConvention interface {
	ProcessForeignKeyRemoved(entityType *EntityType, foreignKey *ForeignKey, ctx *Context[*ForeignKey]) error
}

// ForeignKeyPropertiesChangedConvention reacts to a foreign key being
// repointed at a different property set or principal key.
type ForeignKeyPropertiesChangedConvention interface {
	ProcessForeignKeyPropertiesChanged(foreignKey *ForeignKey, oldProperties []*Property, oldPrincipalKey *Key, ctx *Context[*ForeignKey]) error
}

// ForeignKeyOwnershipChangedConvention reacts to the ownership flag
// changing.
type ForeignKeyOwnershipChangedConvention interface {
	ProcessForeignKeyOwnershipChanged(foreignKey *ForeignKey, ctx *Context[*ForeignKey]) error
}

// NavigationAddedConvention reacts to a navigation joining a
// relationship.
type NavigationAddedConvention interface {
	ProcessNavigationAdded(navigation *Navigation, ctx *Context[*Navigation]) error
}

// NavigationRemovedConvention reacts to a navigation leaving a
// relationship.
type NavigationRemovedConvention interface {
	ProcessNavigationRemoved(declaringEntityType *EntityType, name string, ctx *Context[string]) error
}

// ModelFinalizingConvention runs while the model is still mutable,
// immediately before it becomes read-only.
type ModelFinalizingConvention interface {
	ProcessModelFinalizing(model *Model, ctx *Context[*Model]) error
}

// ModelFinalizedConvention runs once after the model became read-only.
// Only read-only validation belongs here.
type ModelFinalizedConvention interface {
	ProcessModelFinalized(model *Model, ctx *Context[*Model]) error
}

// ConventionSet is an ordered collection of conventions. Conventions of
// the same capability run in the order they were added. The per-event
// lists are populated by capability detection when a convention is
// added.
type ConventionSet struct {
	conventions []Convention

	entityTypeAdded             []EntityTypeAddedConvention
	entityTypeRemoved           []EntityTypeRemovedConvention
	entityTypeMemberIgnored     []EntityTypeMemberIgnoredConvention
	entityTypeBaseTypeChanged   []EntityTypeBaseTypeChangedConvention
	entityTypeAnnotationChanged []EntityTypeAnnotationChangedConvention
	keylessChanged              []KeylessChangedConvention
	propertyAdded               []PropertyAddedConvention
	primaryKeyChanged           []PrimaryKeyChangedConvention
	foreignKeyAdded             []ForeignKeyAddedConvention
	foreignKeyRemoved           []ForeignKeyRemovedConvention
	foreignKeyPropertiesChanged []ForeignKeyPropertiesChangedConvention
	foreignKeyOwnershipChanged  []ForeignKeyOwnershipChangedConvention
	navigationAdded             []NavigationAddedConvention
	navigationRemoved           []NavigationRemovedConvention
	modelFinalizing             []ModelFinalizingConvention
	modelFinalized              []ModelFinalizedConvention
}

// NewConventionSet creates a set holding the given conventions in order.
func NewConventionSet(conventions ...Convention) *ConventionSet {
	s := &ConventionSet{}
	for _, c := range conventions {
		s.Add(c)
	}
	return s
}

// Add appends the convention, detecting its capabilities.
func (s *ConventionSet) Add(c Convention) *ConventionSet {
	if c == nil {
		return s
	}
	s.conventions = append(s.conventions, c)
	if h, ok := c.(EntityTypeAddedConvention); ok {
		s.entityTypeAdded = append(s.entityTypeAdded, h)
	}
	if h, ok := c.(EntityTypeRemovedConvention); ok {
		s.entityTypeRemoved = append(s.entityTypeRemoved, h)
	}
	if h, ok := c.(EntityTypeMemberIgnoredConvention); ok {
		s.entityTypeMemberIgnored = append(s.entityTypeMemberIgnored, h)
	}
	if h, ok := c.(EntityTypeBaseTypeChangedConvention); ok {
		s.entityTypeBaseTypeChanged = append(s.entityTypeBaseTypeChanged, h)
	}
	if h, ok := c.(EntityTypeAnnotationChangedConvention); ok {
		s.entityTypeAnnotationChanged = append(s.entityTypeAnnotationChanged, h)
	}
	if h, ok := c.(KeylessChangedConvention); ok {
		s.keylessChanged = append(s.keylessChanged, h)
	}
	if h, ok := c.(PropertyAddedConvention); ok {
		s.propertyAdded = append(s.propertyAdded, h)
	}
	if h, ok := c.(PrimaryKeyChangedConvention); ok {
		s.primaryKeyChanged = append(s.primaryKeyChanged, h)
	}
	if h, ok := c.(ForeignKeyAddedConvention); ok {
		s.foreignKeyAdded = append(s.foreignKeyAdded, h)
	}
	if h, ok := c.(ForeignKeyRemovedConvention); ok {
		s.foreignKeyRemoved = append(s.foreignKeyRemoved, h)
	}
	if h, ok := c.(ForeignKeyPropertiesChangedConvention); ok {
		s.foreignKeyPropertiesChanged = append(s.foreignKeyPropertiesChanged, h)
	}
	if h, ok := c.(ForeignKeyOwnershipChangedConvention); ok {
		s.foreignKeyOwnershipChanged = append(s.foreignKeyOwnershipChanged, h)
	}
	if h, ok := c.(NavigationAddedConvention); ok {
		s.navigationAdded = append(s.navigationAdded, h)
	}
	if h, ok := c.(NavigationRemovedConvention); ok {
		s.navigationRemoved = append(s.navigationRemoved, h)
	}
	if h, ok := c.(ModelFinalizingConvention); ok {
		s.modelFinalizing = append(s.modelFinalizing, h)
	}
	if h, ok := c.(ModelFinalizedConvention); ok {
		s.modelFinalized = append(s.modelFinalized, h)
	}
	return s
}

// Conventions returns all conventions in registration order.
func (s *ConventionSet) Conventions() []Convention {
	return append([]Convention(nil), s.conventions...)
}
