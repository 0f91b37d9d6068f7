package conventions

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/syssam/metagraph"
	"github.com/syssam/metagraph/introspect"
	"github.com/syssam/metagraph/metadata"
)

// ForeignKeyAttribute reconciles fk struct tags against a relationship:
// a tag on a navigation member names the dependent foreign-key
// properties (comma-separated for composite keys), a tag on a scalar
// member names the navigation it backs. The resolved property set is
// pinned at DataAnnotation source. Tags on both navigations that
// disagree split the relationship in two; tags naming properties on the
// principal side invert it; irreconcilable tags are fatal.
type ForeignKeyAttribute struct{}

// NewForeignKeyAttribute returns the attribute-driven foreign-key
// convention.
func NewForeignKeyAttribute() *ForeignKeyAttribute {
	return &ForeignKeyAttribute{}
}

// ProcessForeignKeyAdded implements metadata.ForeignKeyAddedConvention.
func (c *ForeignKeyAttribute) ProcessForeignKeyAdded(fk *metadata.ForeignKey, ctx *metadata.Context[*metadata.ForeignKey]) error {
	replaced, stop, err := c.process(fk)
	if err != nil {
		return err
	}
	if stop {
		if replaced != nil && replaced != fk {
			ctx.StopProcessingWith(replaced)
		} else {
			ctx.StopProcessing()
		}
	}
	return nil
}

// ProcessNavigationAdded implements metadata.NavigationAddedConvention.
// A navigation attached after the foreign key was created may carry the
// attributes that pin the relationship down.
func (c *ForeignKeyAttribute) ProcessNavigationAdded(nav *metadata.Navigation, ctx *metadata.Context[*metadata.Navigation]) error {
	_, stop, err := c.process(nav.ForeignKey())
	if err != nil {
		return err
	}
	if stop {
		ctx.StopProcessing()
	}
	return nil
}

// ProcessModelFinalizing implements metadata.ModelFinalizingConvention.
// A scalar member's fk tag must not name a collection navigation; by
// then no further configuration can resolve it, so it is fatal.
func (c *ForeignKeyAttribute) ProcessModelFinalizing(m *metadata.Model, _ *metadata.Context[*metadata.Model]) error {
	for _, et := range m.EntityTypes() {
		for _, member := range et.Info().Members() {
			if member.TargetType() != nil {
				continue
			}
			names, ok := member.ForeignKeyAttribute()
			if !ok || len(names) != 1 {
				continue
			}
			if target, found := et.Info().Member(names[0]); found && target.IsCollection() {
				return metadata.NewMemberError(et.Name(), member.Name(),
					fmt.Sprintf("foreign key attribute cannot name the collection navigation %s", names[0]))
			}
		}
	}
	return nil
}

func (c *ForeignKeyAttribute) process(fk *metadata.ForeignKey) (*metadata.ForeignKey, bool, error) {
	if !fk.InModel() {
		return nil, false, nil
	}
	dep := fk.DeclaringEntityType()
	prin := fk.PrincipalEntityType()
	depNav := fk.DependentToPrincipal()
	prinNav := fk.PrincipalToDependent()

	var depNames, prinNames []string
	if depNav != nil {
		depNames, _ = depNav.Member().ForeignKeyAttribute()
	}
	if prinNav != nil {
		prinNames, _ = prinNav.Member().ForeignKeyAttribute()
	}
	if len(depNames) > 0 && len(prinNames) > 0 && !sameNames(depNames, prinNames) {
		if err := c.split(fk); err != nil {
			return nil, false, err
		}
		// The principal navigation moved to its own relationship;
		// finish configuring this one from its remaining attribute.
		if _, _, err := c.process(fk); err != nil {
			return nil, false, err
		}
		return fk, true, nil
	}

	navNames := depNames
	if len(navNames) == 0 {
		navNames = prinNames
	}

	// A scalar member may carry the attribute instead, naming the
	// dependent navigation it backs. A member that could itself be a
	// navigation is ambiguous and its attribute is not trusted.
	var propNames []string
	if depNav != nil {
		for _, m := range dep.Info().Members() {
			if m.TargetType() != nil {
				continue
			}
			if names, ok := m.ForeignKeyAttribute(); ok && len(names) == 1 && names[0] == depNav.Name() {
				propNames = append(propNames, m.Name())
			}
		}
	}
	if len(navNames) > 0 && len(propNames) > 0 && !sameNames(navNames, propNames) {
		return nil, false, metadata.NewMemberError(dep.Name(), depNav.Name(),
			fmt.Sprintf("foreign key attributes disagree: navigation names (%s), properties name themselves (%s)",
				strings.Join(navNames, ", "), strings.Join(propNames, ", ")))
	}
	chosen := navNames
	if len(chosen) == 0 {
		chosen = propNames
	}
	if len(chosen) == 0 {
		return nil, false, nil
	}

	if !namesResolve(dep, chosen) {
		if namesResolve(prin, chosen) {
			nfk, err := c.invert(fk, chosen)
			if err != nil {
				return nil, false, err
			}
			return nfk, nfk != nil, nil
		}
		return nil, false, metadata.NewForeignKeyError(dep.Name(), chosen, "foreign key attribute names unknown properties")
	}
	if len(chosen) != len(fk.PrincipalKey().Properties()) {
		return nil, false, metadata.NewForeignKeyError(dep.Name(), chosen,
			fmt.Sprintf("foreign key attribute property count does not match the principal key (%d != %d)",
				len(chosen), len(fk.PrincipalKey().Properties())))
	}
	for _, other := range dep.ForeignKeys() {
		if other != fk && sameNames(propListNames(other.Properties()), chosen) &&
			other.PropertiesSource().Overrides(metadata.SourceDataAnnotation) {
			return nil, false, metadata.NewForeignKeyError(dep.Name(), chosen,
				fmt.Sprintf("properties already back another foreign key to %s", other.PrincipalEntityType().Name()))
		}
	}
	props, err := resolveProperties(dep, chosen, metadata.SourceDataAnnotation)
	if err != nil {
		return nil, false, err
	}
	old := fk.Properties()
	changed, err := fk.SetProperties(props, nil, metadata.SourceDataAnnotation)
	if err != nil {
		return nil, false, err
	}
	if changed {
		if err := pruneOrphanedShadows(dep, old); err != nil {
			return nil, false, err
		}
	}
	return nil, false, nil
}

// split moves the principal-side navigation onto its own relationship,
// leaving the original with the dependent-side one. Each then resolves
// its attribute independently.
func (c *ForeignKeyAttribute) split(fk *metadata.ForeignKey) error {
	dep := fk.DeclaringEntityType()
	prin := fk.PrincipalEntityType()
	prinNav := fk.PrincipalToDependent()
	member := prinNav.Member()
	navSource := prinNav.Source()

	dep.Model().Reporter().Warn(metagraph.CategoryConflictingForeignKeyAttributes,
		"both navigations of a relationship carry conflicting foreign key attributes; splitting into two relationships",
		zap.String("dependent", dep.Name()),
		zap.String("principal", prin.Name()),
		zap.String("dependent_navigation", fk.DependentToPrincipal().Name()),
		zap.String("principal_navigation", prinNav.Name()))

	batch := dep.Model().DelayConventions()
	defer batch.Close()
	cleared, err := fk.ClearPrincipalToDependent(metadata.SourceDataAnnotation)
	if err != nil {
		return err
	}
	if !cleared {
		return metadata.NewForeignKeyError(dep.Name(), propListNames(fk.Properties()),
			fmt.Sprintf("cannot split relationship: navigation %s is pinned at a higher source", prinNav.Name()))
	}
	nfk, err := dep.AddRelationshipVia(prin, member.Name(), metadata.SourceConvention)
	if err != nil {
		return err
	}
	if nfk == nil {
		return metadata.NewForeignKeyError(dep.Name(), nil, "cannot split relationship: synthesized properties were rejected")
	}
	if _, err := nfk.SetPrincipalToDependent(member, navSource); err != nil {
		return err
	}
	return batch.Close()
}

// invert rebuilds the relationship in the opposite direction: the
// attribute named properties on the principal side, so the principal is
// really the dependent. Navigations carry over to their new roles.
func (c *ForeignKeyAttribute) invert(fk *metadata.ForeignKey, names []string) (*metadata.ForeignKey, error) {
	dep := fk.DeclaringEntityType()
	prin := fk.PrincipalEntityType()
	if dep.PrimaryKey() == nil {
		return nil, metadata.NewForeignKeyError(prin.Name(), names,
			fmt.Sprintf("cannot invert relationship: %s has no key", dep.Name()))
	}
	var (
		depMember, prinMember       *introspect.Member
		depNavSource, prinNavSource metadata.ConfigurationSource
	)
	if nav := fk.DependentToPrincipal(); nav != nil {
		depMember, depNavSource = nav.Member(), nav.Source()
	}
	if nav := fk.PrincipalToDependent(); nav != nil {
		prinMember, prinNavSource = nav.Member(), nav.Source()
	}
	batch := dep.Model().DelayConventions()
	defer batch.Close()
	old := fk.Properties()
	removed, err := dep.RemoveForeignKey(fk, metadata.SourceDataAnnotation)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, nil
	}
	if err := pruneOrphanedShadows(dep, old); err != nil {
		return nil, err
	}
	props, err := resolveProperties(prin, names, metadata.SourceDataAnnotation)
	if err != nil {
		return nil, err
	}
	nfk, err := prin.AddForeignKey(props, dep.PrimaryKey(), dep, metadata.SourceDataAnnotation)
	if err != nil {
		return nil, err
	}
	if prinMember != nil {
		if _, err := nfk.SetDependentToPrincipal(prinMember, prinNavSource); err != nil {
			return nil, err
		}
	}
	if depMember != nil {
		if _, err := nfk.SetPrincipalToDependent(depMember, depNavSource); err != nil {
			return nil, err
		}
	}
	return nfk, batch.Close()
}

// resolveProperties finds or creates the named properties on the entity
// type, raising each to the given source.
func resolveProperties(et *metadata.EntityType, names []string, source metadata.ConfigurationSource) ([]*metadata.Property, error) {
	props := make([]*metadata.Property, 0, len(names))
	for _, name := range names {
		p := et.FindProperty(name)
		if p != nil {
			p.UpdateSource(source)
		} else {
			var err error
			p, err = et.AddProperty(name, nil, source)
			if err != nil {
				return nil, err
			}
			if p == nil {
				return nil, metadata.NewMemberError(et.Name(), name, "foreign key attribute names an ignored member")
			}
		}
		props = append(props, p)
	}
	return props, nil
}

// pruneOrphanedShadows removes shadow properties the conventions
// synthesized that no longer back any key or foreign key.
func pruneOrphanedShadows(et *metadata.EntityType, props []*metadata.Property) error {
	for _, p := range props {
		if p.IsShadow() && p.Source() == metadata.SourceConvention && !p.IsKey() && !p.IsForeignKey() {
			if _, err := et.RemoveProperty(p, metadata.SourceConvention); err != nil {
				return err
			}
		}
	}
	return nil
}

func namesResolve(et *metadata.EntityType, names []string) bool {
	for _, name := range names {
		if et.FindProperty(name) != nil {
			continue
		}
		if m, ok := et.Info().Member(name); ok && m.IsScalar() {
			continue
		}
		return false
	}
	return true
}

func sameNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func propListNames(props []*metadata.Property) []string {
	names := make([]string, len(props))
	for i, p := range props {
		names[i] = p.Name()
	}
	return names
}
