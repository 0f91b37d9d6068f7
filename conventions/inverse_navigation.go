package conventions

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/syssam/metagraph"
	"github.com/syssam/metagraph/introspect"
	"github.com/syssam/metagraph/metadata"
)

// InverseNavigation pairs navigations declared as inverses of each other
// through the inverse struct tag. It keeps a ledger of every member that
// names a given target member as its inverse; when unrelated members
// contend for the same inverse the contenders are un-navigated until the
// application disambiguates by ignoring all but one. Residual ambiguity
// at finalization is a warning, not an error.
type InverseNavigation struct {
	// ledger: target entity type -> named inverse member -> claimants.
	ledger map[*metadata.EntityType]map[string][]inverseRef
}

type inverseRef struct {
	declaring *metadata.EntityType
	member    *introspect.Member
}

// NewInverseNavigation returns the inverse-navigation pairing convention.
func NewInverseNavigation() *InverseNavigation {
	return &InverseNavigation{
		ledger: make(map[*metadata.EntityType]map[string][]inverseRef),
	}
}

// ProcessNavigationAdded implements metadata.NavigationAddedConvention.
func (c *InverseNavigation) ProcessNavigationAdded(nav *metadata.Navigation, _ *metadata.Context[*metadata.Navigation]) error {
	member := nav.Member()
	inverseName, ok := member.InverseAttribute()
	if !ok {
		return nil
	}
	declaring := nav.DeclaringEntityType()
	target := nav.TargetEntityType()
	tm, found := target.Info().Member(inverseName)
	if !found {
		return metadata.NewMemberError(declaring.Name(), member.Name(),
			fmt.Sprintf("inverse attribute names unknown member %s on %s", inverseName, target.Name()))
	}
	if tm == member {
		return metadata.NewMemberError(declaring.Name(), member.Name(), "inverse attribute cannot name the member itself")
	}
	if back, ok := tm.InverseAttribute(); ok && back != member.Name() {
		return metadata.NewMemberError(declaring.Name(), member.Name(),
			fmt.Sprintf("mismatched inverse attributes: %s names %s, but %s.%s names %s",
				member.Name(), inverseName, target.Name(), inverseName, back))
	}
	// Ambiguity wins over the points-back validation: a claimant that
	// cannot be satisfied still contends for the member.
	refs := c.record(target, inverseName, inverseRef{declaring: declaring, member: member})
	if ambiguous(refs) {
		c.reportAmbiguity(target, inverseName, refs)
		return c.unbind(declaring.Model(), refs)
	}
	if tet := targetEntityType(target, tm); tet == nil || !tet.InSameHierarchy(declaring) {
		return metadata.NewMemberError(declaring.Name(), member.Name(),
			fmt.Sprintf("inverse member %s.%s does not point back at %s", target.Name(), inverseName, declaring.Name()))
	}
	return c.establish(target, tm, inverseRef{declaring: declaring, member: member})
}

// ProcessEntityTypeMemberIgnored implements
// metadata.EntityTypeMemberIgnoredConvention. Ignoring a contender
// shrinks the ledger; a claim left without competition is re-bound.
func (c *InverseNavigation) ProcessEntityTypeMemberIgnored(et *metadata.EntityType, name string, _ *metadata.Context[string]) error {
	// The ignored member may be a named inverse target itself.
	if entries, ok := c.ledger[et]; ok {
		delete(entries, name)
	}
	for target, entries := range c.ledger {
		for inverseName, refs := range entries {
			kept := refs[:0]
			for _, ref := range refs {
				if ref.declaring == et && ref.member.Name() == name {
					continue
				}
				kept = append(kept, ref)
			}
			if len(kept) == 0 {
				delete(entries, inverseName)
				continue
			}
			entries[inverseName] = kept
			if len(kept) < len(refs) && !ambiguous(kept) {
				tm, found := target.Info().Member(inverseName)
				if !found || target.IsIgnored(inverseName) {
					continue
				}
				for _, ref := range kept {
					if err := c.establish(target, tm, ref); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

// ProcessModelFinalizing implements metadata.ModelFinalizingConvention.
// The ledger is reconciled and discarded; whatever is still ambiguous is
// reported as a warning.
func (c *InverseNavigation) ProcessModelFinalizing(m *metadata.Model, _ *metadata.Context[*metadata.Model]) error {
	for target, entries := range c.ledger {
		for inverseName, refs := range entries {
			live := refs[:0]
			for _, ref := range refs {
				if ref.declaring.InModel() && !ref.declaring.IsIgnored(ref.member.Name()) {
					live = append(live, ref)
				}
			}
			if ambiguous(live) {
				c.reportAmbiguity(target, inverseName, live)
			}
		}
	}
	c.ledger = make(map[*metadata.EntityType]map[string][]inverseRef)
	return nil
}

// record adds the claim to the ledger and returns the full claimant list.
func (c *InverseNavigation) record(target *metadata.EntityType, inverseName string, ref inverseRef) []inverseRef {
	entries, ok := c.ledger[target]
	if !ok {
		entries = make(map[string][]inverseRef)
		c.ledger[target] = entries
	}
	for _, existing := range entries[inverseName] {
		if existing.declaring == ref.declaring && existing.member == ref.member {
			return entries[inverseName]
		}
	}
	entries[inverseName] = append(entries[inverseName], ref)
	return entries[inverseName]
}

// ambiguous reports whether two claimants with different members come
// from unrelated inheritance hierarchies.
func ambiguous(refs []inverseRef) bool {
	for i, a := range refs {
		for _, b := range refs[i+1:] {
			if a.member != b.member && !a.declaring.InSameHierarchy(b.declaring) {
				return true
			}
		}
	}
	return false
}

// establish binds ref's member and the target member as the two
// navigations of one relationship, recreating the relationship if the
// claimant was un-navigated earlier.
func (c *InverseNavigation) establish(target *metadata.EntityType, tm *introspect.Member, ref inverseRef) error {
	if nav := ref.declaring.FindNavigation(ref.member.Name()); nav != nil {
		fk := nav.ForeignKey()
		if nav.PointsToPrincipal() {
			_, err := fk.SetPrincipalToDependent(tm, metadata.SourceDataAnnotation)
			return err
		}
		_, err := fk.SetDependentToPrincipal(tm, metadata.SourceDataAnnotation)
		return err
	}
	if ref.member.IsCollection() {
		if tm.IsCollection() || ref.declaring.PrimaryKey() == nil {
			return nil
		}
		fk, err := target.AddRelationshipVia(ref.declaring, tm.Name(), metadata.SourceConvention)
		if err != nil || fk == nil {
			return err
		}
		if _, err := fk.SetDependentToPrincipal(tm, metadata.SourceDataAnnotation); err != nil {
			return err
		}
		_, err = fk.SetPrincipalToDependent(ref.member, metadata.SourceDataAnnotation)
		return err
	}
	if target.PrimaryKey() == nil {
		return nil
	}
	fk, err := ref.declaring.AddRelationshipVia(target, ref.member.Name(), metadata.SourceConvention)
	if err != nil || fk == nil {
		return err
	}
	if _, err := fk.SetDependentToPrincipal(ref.member, metadata.SourceDataAnnotation); err != nil {
		return err
	}
	_, err = fk.SetPrincipalToDependent(tm, metadata.SourceDataAnnotation)
	return err
}

// unbind un-navigates every relationship built from the contending
// claims. The foreign key itself survives only for ownership edges.
func (c *InverseNavigation) unbind(m *metadata.Model, refs []inverseRef) error {
	batch := m.DelayConventions()
	defer batch.Close()
	for _, ref := range refs {
		nav := ref.declaring.FindNavigation(ref.member.Name())
		if nav == nil {
			continue
		}
		fk := nav.ForeignKey()
		if _, err := fk.ClearDependentToPrincipal(metadata.SourceDataAnnotation); err != nil {
			return err
		}
		if _, err := fk.ClearPrincipalToDependent(metadata.SourceDataAnnotation); err != nil {
			return err
		}
		if !fk.IsOwned() {
			dep := fk.DeclaringEntityType()
			old := fk.Properties()
			if _, err := dep.RemoveForeignKey(fk, metadata.SourceDataAnnotation); err != nil {
				return err
			}
			if err := pruneOrphanedShadows(dep, old); err != nil {
				return err
			}
		}
	}
	return batch.Close()
}

func (c *InverseNavigation) reportAmbiguity(target *metadata.EntityType, inverseName string, refs []inverseRef) {
	candidates := make([]string, 0, len(refs))
	for _, ref := range refs {
		candidates = append(candidates, ref.declaring.Name()+"."+ref.member.Name())
	}
	target.Model().Reporter().Warn(metagraph.CategoryInverseNavigationAmbiguity,
		"multiple unrelated navigations name the same inverse member; none are bound until disambiguated",
		zap.String("target", target.Name()),
		zap.String("inverse", inverseName),
		zap.Strings("candidates", candidates))
}
