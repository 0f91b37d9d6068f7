// Package introspect implements member introspection over Go reflection
// for the metadata model builder. Source types are plain Go structs:
// exported fields are members, struct tags carry the mapping attributes,
// and struct embedding models single inheritance (members promoted from
// an embedded struct are reported as inherited).
package introspect

import (
	"reflect"
	"sync"
)

// Type is the introspected view of a source struct type.
type Type struct {
	rt      reflect.Type
	members []*Member
	byName  map[string]*Member
}

// Member is a single introspected struct member.
type Member struct {
	name      string
	typ       reflect.Type
	declaring reflect.Type
	tag       reflect.StructTag
	inherited bool
	index     []int
}

var (
	cacheMu sync.Mutex
	cache   = make(map[reflect.Type]*Type)
)

// Of returns the introspected view of t. Pointer types are unwrapped.
// It returns nil if t (after unwrapping) is not a struct type.
// Introspection results are cached per type.
func Of(t reflect.Type) *Type {
	if t == nil {
		return nil
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if typ, ok := cache[t]; ok {
		return typ
	}
	typ := &Type{rt: t, byName: make(map[string]*Member)}
	typ.collect(t, nil, false)
	cache[t] = typ
	return typ
}

// TypeOf is a convenience for Of(reflect.TypeOf(v)).
func TypeOf(v any) *Type {
	return Of(reflect.TypeOf(v))
}

// collect walks the struct fields of rt, flattening embedded structs
// into inherited members. All fields of one nesting level register
// before any embedded struct is descended into, so a shadowed name keeps
// its shallowest declaration, matching Go's promotion rules.
func (t *Type) collect(rt reflect.Type, index []int, inherited bool) {
	var embedded []int
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		if f.Anonymous {
			ft := f.Type
			for ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				embedded = append(embedded, i)
				continue
			}
		}
		if _, ok := t.byName[f.Name]; ok {
			continue
		}
		m := &Member{
			name:      f.Name,
			typ:       f.Type,
			declaring: rt,
			tag:       f.Tag,
			inherited: inherited,
			index:     append(append([]int(nil), index...), i),
		}
		t.members = append(t.members, m)
		t.byName[f.Name] = m
	}
	for _, i := range embedded {
		ft := rt.Field(i).Type
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		t.collect(ft, append(append([]int(nil), index...), i), true)
	}
}

// ReflectType returns the underlying struct type.
func (t *Type) ReflectType() reflect.Type { return t.rt }

// Name returns the simple type name.
func (t *Type) Name() string { return t.rt.Name() }

// Members returns all members, declared ones in declaration order
// followed by those promoted from embedded structs.
func (t *Type) Members() []*Member { return t.members }

// DeclaredMembers returns the members declared directly on the type,
// excluding those promoted from embedded structs.
func (t *Type) DeclaredMembers() []*Member {
	declared := make([]*Member, 0, len(t.members))
	for _, m := range t.members {
		if !m.inherited {
			declared = append(declared, m)
		}
	}
	return declared
}

// Member returns the member with the given name.
func (t *Type) Member(name string) (*Member, bool) {
	m, ok := t.byName[name]
	return m, ok
}

// =============================================================================
// Member methods
// =============================================================================

// Name returns the member name.
func (m *Member) Name() string { return m.name }

// Type returns the member's declared Go type.
func (m *Member) Type() reflect.Type { return m.typ }

// DeclaringType returns the struct type the member is declared on. For
// inherited members this is the embedded struct, not the embedding one.
func (m *Member) DeclaringType() reflect.Type { return m.declaring }

// Inherited reports whether the member was promoted from an embedded struct.
func (m *Member) Inherited() bool { return m.inherited }

// Tag returns the raw struct tag of the member.
func (m *Member) Tag() reflect.StructTag { return m.tag }

// IsScalar reports whether the member is a viable mapped scalar.
func (m *Member) IsScalar() bool { return IsScalar(m.typ) }

// IsCollection reports whether the member is a collection-shaped
// navigation candidate (a slice of structs or struct pointers).
func (m *Member) IsCollection() bool {
	if m.typ.Kind() != reflect.Slice {
		return false
	}
	return navigationTarget(m.typ.Elem()) != nil
}

// TargetType returns the struct type a navigation-shaped member points
// to: the element struct for collections, the pointee struct for
// references. It returns nil if the member is not a viable navigation.
func (m *Member) TargetType() reflect.Type {
	if m.typ.Kind() == reflect.Slice {
		return navigationTarget(m.typ.Elem())
	}
	return navigationTarget(m.typ)
}
