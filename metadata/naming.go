package metadata

import (
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
)

var rules = ruleset()

func ruleset() *inflect.Ruleset {
	r := inflect.NewDefaultRuleset()
	for _, w := range []string{"ID", "SQL", "HTTP", "URL", "UUID"} {
		r.AddAcronym(w)
	}
	return r
}

// snake converts the given name to snake_case.
func snake(s string) string {
	var (
		b     strings.Builder
		runes = []rune(s)
	)
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prevLower := unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || nextLower {
				b.WriteRune('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// DefaultForeignKeyPropertyName returns the conventional name of a
// synthesized foreign-key property pointing at the given navigation or
// principal type name. Collection names are singularized first, so a
// relationship discovered through an "Orders" navigation still yields
// "order_id".
func DefaultForeignKeyPropertyName(name string) string {
	return snake(rules.Singularize(name)) + "_id"
}

// DefaultContainerName returns the conventional storage-container name
// for an entity type: the pluralized snake_case type name.
func DefaultContainerName(name string) string {
	return rules.Pluralize(snake(name))
}
