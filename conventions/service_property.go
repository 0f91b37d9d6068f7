package conventions

import (
	"reflect"
	"sort"

	"go.uber.org/zap"

	"github.com/syssam/metagraph"
	"github.com/syssam/metagraph/introspect"
	"github.com/syssam/metagraph/metadata"
)

// ServicePropertyDiscovery binds members to framework-provided services
// through the binding factory. When two unrelated members of one entity
// type resolve to the same service type, neither is bound; both go into
// a duplicate ledger until the application ignores all but one, at which
// point the survivor is bound automatically. Duplicates surviving to
// finalization are a fatal ambiguity.
type ServicePropertyDiscovery struct {
	factory metagraph.BindingFactory
	// duplicates: entity type -> service type -> contending members.
	duplicates map[*metadata.EntityType]map[reflect.Type][]*introspect.Member
}

// NewServicePropertyDiscovery returns the service-property discovery
// convention. A nil factory makes the convention inert.
func NewServicePropertyDiscovery(factory metagraph.BindingFactory) *ServicePropertyDiscovery {
	return &ServicePropertyDiscovery{
		factory:    factory,
		duplicates: make(map[*metadata.EntityType]map[reflect.Type][]*introspect.Member),
	}
}

// ProcessEntityTypeAdded implements metadata.EntityTypeAddedConvention.
func (c *ServicePropertyDiscovery) ProcessEntityTypeAdded(et *metadata.EntityType, _ *metadata.Context[*metadata.EntityType]) error {
	if c.factory == nil {
		return nil
	}
	byService := make(map[reflect.Type][]*introspect.Member)
	var order []reflect.Type
	for _, m := range et.Info().Members() {
		if m.IsScalar() || m.TargetType() != nil {
			continue
		}
		name := m.Name()
		if et.IsIgnored(name) || et.FindProperty(name) != nil || et.FindNavigation(name) != nil {
			continue
		}
		binding := c.factory.FindBinding(m.Type(), name)
		if binding == nil {
			continue
		}
		if _, seen := byService[binding.ServiceType]; !seen {
			order = append(order, binding.ServiceType)
		}
		byService[binding.ServiceType] = append(byService[binding.ServiceType], m)
	}
	for _, svc := range order {
		members := byService[svc]
		if len(members) == 1 {
			if err := c.bind(et, members[0]); err != nil {
				return err
			}
			continue
		}
		c.recordDuplicates(et, svc, members)
	}
	return nil
}

// ProcessEntityTypeMemberIgnored implements
// metadata.EntityTypeMemberIgnoredConvention. When ignoring shrinks a
// duplicate group to a single member, that member is bound.
func (c *ServicePropertyDiscovery) ProcessEntityTypeMemberIgnored(et *metadata.EntityType, name string, _ *metadata.Context[string]) error {
	groups, ok := c.duplicates[et]
	if !ok {
		return nil
	}
	for svc, members := range groups {
		kept := members[:0]
		for _, m := range members {
			if m.Name() != name {
				kept = append(kept, m)
			}
		}
		if len(kept) == len(members) {
			continue
		}
		if len(kept) == 1 {
			delete(groups, svc)
			if err := c.bind(et, kept[0]); err != nil {
				return err
			}
			continue
		}
		if len(kept) == 0 {
			delete(groups, svc)
			continue
		}
		groups[svc] = kept
	}
	if len(groups) == 0 {
		delete(c.duplicates, et)
	}
	return nil
}

// ProcessModelFinalizing implements metadata.ModelFinalizingConvention.
// Unresolved duplicates are fatal; service properties must either be
// unambiguous or explicitly pruned by then.
func (c *ServicePropertyDiscovery) ProcessModelFinalizing(m *metadata.Model, _ *metadata.Context[*metadata.Model]) error {
	for et, groups := range c.duplicates {
		if !et.InModel() {
			continue
		}
		for svc, members := range groups {
			live := make([]string, 0, len(members))
			for _, mem := range members {
				if !et.IsIgnored(mem.Name()) {
					live = append(live, mem.Name())
				}
			}
			if len(live) < 2 {
				continue
			}
			sort.Strings(live)
			return metadata.NewAmbiguityError(et.Name(), svc.String(), live,
				"multiple members resolve to the same service type; ignore all but one")
		}
	}
	c.duplicates = make(map[*metadata.EntityType]map[reflect.Type][]*introspect.Member)
	return nil
}

func (c *ServicePropertyDiscovery) bind(et *metadata.EntityType, m *introspect.Member) error {
	binding := c.factory.FindBinding(m.Type(), m.Name())
	if binding == nil {
		return nil
	}
	_, err := et.AddServiceProperty(m, binding, metadata.SourceConvention)
	return err
}

func (c *ServicePropertyDiscovery) recordDuplicates(et *metadata.EntityType, svc reflect.Type, members []*introspect.Member) {
	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.Name())
	}
	et.Model().Reporter().Warn(metagraph.CategoryAmbiguousServiceProperty,
		"multiple members resolve to the same service type; none are bound until disambiguated",
		zap.String("entity_type", et.Name()),
		zap.String("service_type", svc.String()),
		zap.Strings("candidates", names))
	groups, ok := c.duplicates[et]
	if !ok {
		groups = make(map[reflect.Type][]*introspect.Member)
		c.duplicates[et] = groups
	}
	groups[svc] = append(groups[svc], members...)
}
