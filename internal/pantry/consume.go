package pantry

import (
	"math"

	"github.com/ecodispensa/dispensa/internal/model"
	"github.com/ecodispensa/dispensa/internal/units"
)

// Consume applies a batch of ingredient usages to the pantry collection
// and returns the updated collection. For each item the first matching
// usage wins, scanning usages in the given order. The usage amount is
// converted into the item's unit when the conversion is defined;
// otherwise it is applied unchanged. Quantities are rounded to two
// decimal places and floored at zero. Items with no matching usage are
// returned untouched.
//
// The result is a new slice; the input is not modified and nothing is
// persisted.
func Consume(items []model.PantryItem, usages []model.IngredientUsage) []model.PantryItem {
	out := make([]model.PantryItem, len(items))
	copy(out, items)

	for i := range out {
		usage := firstUsageFor(out[i].Name, usages)
		if usage == nil {
			continue
		}

		amount := usage.Quantity
		if usage.Unit != out[i].Unit {
			if converted, ok := units.Convert(usage.Quantity, usage.Unit, out[i].Unit); ok {
				amount = converted
			}
		}

		out[i].Quantity = math.Max(0, round2(out[i].Quantity-amount))
	}

	return out
}

func firstUsageFor(itemName string, usages []model.IngredientUsage) *model.IngredientUsage {
	for i := range usages {
		if NamesMatch(usages[i].Name, itemName) {
			return &usages[i]
		}
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
