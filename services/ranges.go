package services

import "celluiq/models"

// Range ist ein Referenzbereich; fehlende Grenzen sind nil.
type Range struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Complete reports whether both bounds are set.
func (r Range) Complete() bool {
	return r.Min != nil && r.Max != nil
}

// EffectiveRange liefert den Bereich für die Klassifizierung: pro Grenze CELLUIQ vor klinisch.
func EffectiveRange(ref *models.ReferenceEntry) Range {
	if ref == nil {
		return Range{}
	}
	return Range{
		Min: firstNonNil(ref.CelluiqRangeMin, ref.ClinicalRangeMin),
		Max: firstNonNil(ref.CelluiqRangeMax, ref.ClinicalRangeMax),
	}
}

// ResolveOptimalRange liefert den gespeicherten Optimalbereich: pro Grenze CELLUIQ,
// dann klinisch, dann der im Befund gedruckte Wert.
func ResolveOptimalRange(ref *models.ReferenceEntry, printedMin, printedMax *float64) Range {
	eff := EffectiveRange(ref)
	return Range{
		Min: firstNonNil(eff.Min, printedMin),
		Max: firstNonNil(eff.Max, printedMax),
	}
}

func firstNonNil(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			f := *v
			return &f
		}
	}
	return nil
}
