// Package pantry holds the ingredient-matching and consumption logic
// applied when a recipe is cooked.
package pantry

import (
	"strings"

	"github.com/ecodispensa/dispensa/internal/model"
)

// NamesMatch reports whether an ingredient name and a pantry item name
// refer to the same product. It performs a case-insensitive bidirectional
// substring test: "Latte" matches "Latte Intero" and vice versa. This is
// a heuristic, not exact matching.
func NamesMatch(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// Match returns the first pantry item whose name matches the given usage
// name, in the collection's current iteration order. Returns nil if no
// item matches.
func Match(usageName string, items []model.PantryItem) *model.PantryItem {
	for i := range items {
		if NamesMatch(usageName, items[i].Name) {
			return &items[i]
		}
	}
	return nil
}
