// Package units converts quantities between compatible measurement units.
package units

import "github.com/ecodispensa/dispensa/internal/model"

// Convert converts quantity from one unit to another. Conversion is only
// defined within the same physical dimension: mass (g/kg) and volume
// (ml/l). The second return value reports whether the conversion is
// defined; when it is false, callers must apply the quantity unchanged.
func Convert(quantity float64, from, to model.Unit) (float64, bool) {
	if from == to {
		return quantity, true
	}

	switch {
	case from == model.UnitKilogram && to == model.UnitGram:
		return quantity * 1000, true
	case from == model.UnitGram && to == model.UnitKilogram:
		return quantity / 1000, true
	case from == model.UnitLiter && to == model.UnitMilliliter:
		return quantity * 1000, true
	case from == model.UnitMilliliter && to == model.UnitLiter:
		return quantity / 1000, true
	}

	return quantity, false
}
