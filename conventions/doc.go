// Package conventions implements the standard model-building rules:
// discovery of properties, keys and relationships from the source struct
// types, attribute-driven foreign-key configuration, inverse-navigation
// pairing, service-property binding, value-generation assignment and the
// finalization cleanup pass. DefaultSet assembles them in their standard
// order; individual conventions can also be registered selectively on a
// metadata.ConventionSet.
package conventions
