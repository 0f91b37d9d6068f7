package metadata

// ConfigurationSource records why a piece of model state was set. It is
// totally ordered: Convention < DataAnnotation < Explicit. A fact set at
// a given source can only be overwritten or removed by an equal or
// higher-ranked source; lower-ranked attempts are rejected without
// changing the model.
type ConfigurationSource int

const (
	// SourceConvention marks state set by a convention.
	SourceConvention ConfigurationSource = iota
	// SourceDataAnnotation marks state set from a member attribute.
	SourceDataAnnotation
	// SourceExplicit marks state set by explicit application configuration.
	SourceExplicit
)

// Overrides reports whether a mutation at source s may overwrite or
// remove a fact previously set at other.
func (s ConfigurationSource) Overrides(other ConfigurationSource) bool {
	return s >= other
}

// Max returns the higher ranked of s and other.
func (s ConfigurationSource) Max(other ConfigurationSource) ConfigurationSource {
	if other > s {
		return other
	}
	return s
}

// String returns the source name.
func (s ConfigurationSource) String() string {
	switch s {
	case SourceConvention:
		return "Convention"
	case SourceDataAnnotation:
		return "DataAnnotation"
	case SourceExplicit:
		return "Explicit"
	}
	return "Unknown"
}
