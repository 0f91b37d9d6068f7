package introspect

import "strings"

// Mapping attributes are carried as struct tags on source members:
//
//	type Order struct {
//		CustomerID int       `fk:"Customer"`     // property naming its navigation
//		Customer   *Customer                     // reference navigation
//		Items      []*Item   `fk:"OrderID"`      // navigation naming its FK property
//		Parent     *Order    `inverse:"Children"` // navigation naming its inverse
//	}
const (
	// ForeignKeyTag names either the foreign-key properties (on a
	// navigation member, comma-separated for composite keys) or the
	// owning navigation (on a property member).
	ForeignKeyTag = "fk"

	// InverseTag names the inverse navigation member on the target type.
	InverseTag = "inverse"
)

// ForeignKeyAttribute returns the names carried by the member's fk tag.
// Composite values are comma-separated; surrounding spaces are ignored.
func (m *Member) ForeignKeyAttribute() ([]string, bool) {
	v, ok := m.tag.Lookup(ForeignKeyTag)
	if !ok || v == "" {
		return nil, false
	}
	parts := strings.Split(v, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	if len(names) == 0 {
		return nil, false
	}
	return names, true
}

// InverseAttribute returns the inverse member name carried by the
// member's inverse tag.
func (m *Member) InverseAttribute() (string, bool) {
	v, ok := m.tag.Lookup(InverseTag)
	if !ok || v == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}
