package metagraph

import "go.uber.org/zap"

// Category identifies a class of diagnostic events raised by the
// model-building pipeline. Categories are stable strings, safe to key
// alerting or log filtering on.
type Category string

// Diagnostic categories reported by the standard conventions.
const (
	// CategoryConflictingForeignKeyAttributes is reported when both
	// navigations of a relationship carry foreign-key attributes that
	// disagree, and the relationship is split in two.
	CategoryConflictingForeignKeyAttributes Category = "conflicting_foreign_key_attributes"

	// CategoryInverseNavigationAmbiguity is reported when more than one
	// unrelated navigation names the same member as its inverse.
	CategoryInverseNavigationAmbiguity Category = "inverse_navigation_ambiguity"

	// CategoryAmbiguousServiceProperty is reported when two members of one
	// entity type resolve to the same service binding.
	CategoryAmbiguousServiceProperty Category = "ambiguous_service_property"

	// CategoryNavigationlessForeignKeyRemoved is reported when model
	// cleanup removes a foreign key that has no navigation on either side.
	CategoryNavigationlessForeignKeyRemoved Category = "navigationless_foreign_key_removed"

	// CategoryUnreachableEntityTypeRemoved is reported when model cleanup
	// prunes an entity type not reachable from any configured root.
	CategoryUnreachableEntityTypeRemoved Category = "unreachable_entity_type_removed"
)

// Reporter is the diagnostics collaborator of the pipeline. Conventions
// report warnings and informational events into it; implementations must
// never fail. Model building does not depend on the reporter for
// correctness, only for observability.
type Reporter interface {
	// Warn reports a recoverable or deferred problem, such as an
	// ambiguity that may still be resolved by further configuration.
	Warn(c Category, msg string, fields ...zap.Field)

	// Info reports a noteworthy but benign event, such as a cleanup
	// removal at finalization.
	Info(c Category, msg string, fields ...zap.Field)
}

type zapReporter struct {
	logger *zap.Logger
}

// NewReporter returns a Reporter that writes structured events to the
// given zap logger. The category is attached as the "category" field.
func NewReporter(logger *zap.Logger) Reporter {
	return &zapReporter{logger: logger}
}

// NopReporter returns a Reporter that discards all events.
func NopReporter() Reporter {
	return &zapReporter{logger: zap.NewNop()}
}

func (r *zapReporter) Warn(c Category, msg string, fields ...zap.Field) {
	r.logger.Warn(msg, append([]zap.Field{zap.String("category", string(c))}, fields...)...)
}

func (r *zapReporter) Info(c Category, msg string, fields ...zap.Field) {
	r.logger.Info(msg, append([]zap.Field{zap.String("category", string(c))}, fields...)...)
}
