package conventions

import (
	"go.uber.org/zap"

	"github.com/syssam/metagraph"
	"github.com/syssam/metagraph/metadata"
)

// ModelCleanup runs at finalization only. It prunes entity types not
// reachable over navigation edges from the root set (types configured at
// DataAnnotation source or higher), then removes foreign keys that ended
// up with no navigation on either side, since a navigationless foreign
// key carries no queryable relationship shape.
type ModelCleanup struct{}

// NewModelCleanup returns the finalization cleanup convention.
func NewModelCleanup() *ModelCleanup {
	return &ModelCleanup{}
}

// ProcessModelFinalizing implements metadata.ModelFinalizingConvention.
func (c *ModelCleanup) ProcessModelFinalizing(m *metadata.Model, _ *metadata.Context[*metadata.Model]) error {
	batch := m.DelayConventions()
	defer batch.Close()

	reachable := make(map[*metadata.EntityType]bool)
	var queue []*metadata.EntityType
	reach := func(et *metadata.EntityType) {
		if !reachable[et] {
			reachable[et] = true
			queue = append(queue, et)
		}
	}
	for _, et := range m.EntityTypes() {
		if et.Source().Overrides(metadata.SourceDataAnnotation) {
			reach(et)
		}
	}
	for len(queue) > 0 {
		et := queue[0]
		queue = queue[1:]
		// A reached type brings its whole hierarchy along.
		reach(et.RootType())
		for _, d := range et.DerivedTypes() {
			reach(d)
		}
		for _, nav := range et.AllNavigations() {
			reach(nav.TargetEntityType())
		}
	}

	for _, et := range m.EntityTypes() {
		if reachable[et] {
			continue
		}
		removed, err := m.RemoveEntityType(et, metadata.SourceConvention)
		if err != nil {
			return err
		}
		if removed {
			m.Reporter().Info(metagraph.CategoryUnreachableEntityTypeRemoved,
				"pruned entity type not reachable from any configured root",
				zap.String("entity_type", et.Name()))
		}
	}

	for _, et := range m.EntityTypes() {
		for _, fk := range et.ForeignKeys() {
			if fk.HasNavigations() {
				continue
			}
			removed, err := et.RemoveForeignKey(fk, metadata.SourceConvention)
			if err != nil {
				return err
			}
			if removed {
				m.Reporter().Info(metagraph.CategoryNavigationlessForeignKeyRemoved,
					"removed foreign key with no navigation on either side",
					zap.String("dependent", et.Name()),
					zap.String("principal", fk.PrincipalEntityType().Name()),
					zap.Strings("properties", propListNames(fk.Properties())))
			}
		}
	}
	return batch.Close()
}
