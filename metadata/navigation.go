package metadata

import "github.com/syssam/metagraph/introspect"

// Navigation is a directional edge of a relationship: a member on the
// dependent type pointing at the principal, or a member on the principal
// pointing back at the dependent(s).
type Navigation struct {
	declaring         *EntityType
	name              string
	member            *introspect.Member
	fk                *ForeignKey
	collection        bool
	pointsToPrincipal bool
	source            ConfigurationSource
	removed           bool
}

// Name returns the navigation name.
func (n *Navigation) Name() string { return n.name }

// Member returns the backing struct member.
func (n *Navigation) Member() *introspect.Member { return n.member }

// DeclaringEntityType returns the entity type the navigation is declared on.
func (n *Navigation) DeclaringEntityType() *EntityType { return n.declaring }

// TargetEntityType returns the entity type the navigation points at.
func (n *Navigation) TargetEntityType() *EntityType {
	if n.pointsToPrincipal {
		return n.fk.principal
	}
	return n.fk.declaring
}

// ForeignKey returns the foreign key the navigation belongs to.
func (n *Navigation) ForeignKey() *ForeignKey { return n.fk }

// IsCollection reports whether the navigation has collection cardinality.
func (n *Navigation) IsCollection() bool { return n.collection }

// PointsToPrincipal reports whether this is the dependent-to-principal
// side of the relationship.
func (n *Navigation) PointsToPrincipal() bool { return n.pointsToPrincipal }

// Inverse returns the navigation on the other side of the relationship,
// or nil if the relationship has a single navigation.
func (n *Navigation) Inverse() *Navigation {
	if n.pointsToPrincipal {
		return n.fk.principalToDependent
	}
	return n.fk.dependentToPrincipal
}

// Source returns the navigation's configuration source.
func (n *Navigation) Source() ConfigurationSource { return n.source }

// UpdateSource raises the navigation's configuration source to at least s.
func (n *Navigation) UpdateSource(s ConfigurationSource) { n.source = n.source.Max(s) }

// InModel reports whether the navigation is still part of the model.
func (n *Navigation) InModel() bool { return !n.removed && !n.fk.removed }
