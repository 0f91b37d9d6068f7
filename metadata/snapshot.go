package metadata

import (
	"sort"

	"github.com/vmihailenco/msgpack/v5"
)

// The snapshot types flatten the model graph into plain values with a
// deterministic order, so two structurally equal models always encode to
// the same bytes. Object references are replaced by names.
type (
	modelSnapshot struct {
		EntityTypes []entityTypeSnapshot `msgpack:"entity_types"`
		Annotations []annotationSnapshot `msgpack:"annotations,omitempty"`
	}

	entityTypeSnapshot struct {
		Name              string               `msgpack:"name"`
		BaseType          string               `msgpack:"base_type,omitempty"`
		Keyless           bool                 `msgpack:"keyless,omitempty"`
		PrimaryKey        []string             `msgpack:"primary_key,omitempty"`
		Keys              [][]string           `msgpack:"keys,omitempty"`
		Properties        []propertySnapshot   `msgpack:"properties,omitempty"`
		ServiceProperties []string             `msgpack:"service_properties,omitempty"`
		ForeignKeys       []foreignKeySnapshot `msgpack:"foreign_keys,omitempty"`
		Ignored           []string             `msgpack:"ignored,omitempty"`
		Annotations       []annotationSnapshot `msgpack:"annotations,omitempty"`
	}

	propertySnapshot struct {
		Name           string `msgpack:"name"`
		GoType         string `msgpack:"go_type"`
		Shadow         bool   `msgpack:"shadow,omitempty"`
		Nullable       bool   `msgpack:"nullable,omitempty"`
		ValueGenerated string `msgpack:"value_generated,omitempty"`
	}

	foreignKeySnapshot struct {
		Principal            string   `msgpack:"principal"`
		Properties           []string `msgpack:"properties"`
		PrincipalKey         []string `msgpack:"principal_key"`
		Unique               bool     `msgpack:"unique,omitempty"`
		Owned                bool     `msgpack:"owned,omitempty"`
		DependentToPrincipal string   `msgpack:"dependent_to_principal,omitempty"`
		PrincipalToDependent string   `msgpack:"principal_to_dependent,omitempty"`
	}

	annotationSnapshot struct {
		Name  string `msgpack:"name"`
		Value any    `msgpack:"value"`
	}
)

// Snapshot encodes the model's structure to a deterministic byte form.
// Two calls on models with the same entity types, properties, keys,
// relationships and annotations yield identical bytes, which makes it a
// cheap structural-equality and fixed-point check.
func (m *Model) Snapshot() ([]byte, error) {
	snap := modelSnapshot{
		Annotations: annotationSnapshots(m.all()),
	}
	for _, et := range m.EntityTypes() {
		snap.EntityTypes = append(snap.EntityTypes, snapshotEntityType(et))
	}
	return msgpack.Marshal(&snap)
}

func snapshotEntityType(et *EntityType) entityTypeSnapshot {
	s := entityTypeSnapshot{
		Name:        et.Name(),
		Keyless:     et.IsKeyless(),
		Annotations: annotationSnapshots(et.Annotations()),
	}
	if base := et.BaseType(); base != nil {
		s.BaseType = base.Name()
	}
	if pk := et.PrimaryKey(); pk != nil && pk.DeclaringEntityType() == et {
		s.PrimaryKey = propertyNames(pk.Properties())
	}
	for _, k := range et.Keys() {
		if k.IsPrimary() {
			continue
		}
		s.Keys = append(s.Keys, propertyNames(k.Properties()))
	}
	sort.Slice(s.Keys, func(i, j int) bool {
		return lessStringSlices(s.Keys[i], s.Keys[j])
	})
	for _, p := range et.Properties() {
		s.Properties = append(s.Properties, propertySnapshot{
			Name:           p.Name(),
			GoType:         p.GoType().String(),
			Shadow:         p.IsShadow(),
			Nullable:       p.Nullable(),
			ValueGenerated: p.ValueGenerated().String(),
		})
	}
	for _, sp := range et.ServiceProperties() {
		if sp.DeclaringEntityType() == et {
			s.ServiceProperties = append(s.ServiceProperties, sp.Name())
		}
	}
	for _, fk := range et.ForeignKeys() {
		fs := foreignKeySnapshot{
			Principal:    fk.PrincipalEntityType().Name(),
			Properties:   propertyNames(fk.Properties()),
			PrincipalKey: propertyNames(fk.PrincipalKey().Properties()),
			Unique:       fk.IsUnique(),
			Owned:        fk.IsOwned(),
		}
		if nav := fk.DependentToPrincipal(); nav != nil {
			fs.DependentToPrincipal = nav.Name()
		}
		if nav := fk.PrincipalToDependent(); nav != nil {
			fs.PrincipalToDependent = nav.Name()
		}
		s.ForeignKeys = append(s.ForeignKeys, fs)
	}
	sort.Slice(s.ForeignKeys, func(i, j int) bool {
		a, b := s.ForeignKeys[i], s.ForeignKeys[j]
		if a.Principal != b.Principal {
			return a.Principal < b.Principal
		}
		return lessStringSlices(a.Properties, b.Properties)
	})
	for name := range et.ignored {
		s.Ignored = append(s.Ignored, name)
	}
	sort.Strings(s.Ignored)
	return s
}

func annotationSnapshots(anns []*Annotation) []annotationSnapshot {
	if len(anns) == 0 {
		return nil
	}
	out := make([]annotationSnapshot, 0, len(anns))
	for _, a := range anns {
		out = append(out, annotationSnapshot{Name: a.Name(), Value: a.Value()})
	}
	return out
}

func lessStringSlices(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
