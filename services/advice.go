package services

import (
	"strings"

	"celluiq/models"
)

const (
	suggestionsPerMarker = 3
	maxSuggestions       = 5
)

// RoutineSuggestion bündelt die Hinweise des Katalogs für einen auffälligen Marker.
type RoutineSuggestion struct {
	MarkerName  string              `json:"marker_name"`
	Status      models.MarkerStatus `json:"status"`
	Direction   string              `json:"direction"`
	Lifestyle   string              `json:"lifestyle,omitempty"`
	Supplements string              `json:"supplements,omitempty"`
	Foods       string              `json:"foods,omitempty"`
	Symptoms    string              `json:"symptoms,omitempty"`
	Warnings    string              `json:"warnings,omitempty"`
}

// RoutineSuggestions liefert für jeden auffälligen neuesten Marker die passenden Hinweise
// (niedrige oder hohe Seite) aus dem Referenzkatalog.
func RoutineSuggestions(markers []models.BloodMarker, gender models.Gender, catalog []models.ReferenceEntry) []RoutineSuggestion {
	var out []RoutineSuggestion
	for _, m := range SuboptimalMarkers(LatestByMarker(markers)) {
		ref := FindReferenceByName(m.MarkerName, gender, catalog)
		if ref == nil {
			ref = MatchReference(m.MarkerName, gender, catalog)
		}
		if ref == nil {
			continue
		}
		s := RoutineSuggestion{
			MarkerName: m.MarkerName,
			Status:     m.Status,
			Lifestyle:  ref.Lifestyle,
			Warnings:   ref.Warnings,
		}
		switch deviationSide(m) {
		case -1:
			s.Direction = "low"
			s.Supplements, s.Foods, s.Symptoms = ref.SupplementsLow, ref.FoodsLow, ref.SymptomsLow
		case 1:
			s.Direction = "high"
			s.Supplements, s.Foods, s.Symptoms = ref.SupplementsHigh, ref.FoodsHigh, ref.SymptomsHigh
		default:
			s.Direction = "unknown"
		}
		if s.Lifestyle == "" && s.Supplements == "" && s.Foods == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// SupplementSuggestions enthält Vorschläge für niedrige Werte.
type SupplementSuggestions struct {
	Supplements []models.SupplementReference `json:"supplements"`
	Foods       []models.FoodReference       `json:"foods"`
}

// SuggestSupplements schlägt für jeden niedrigen neuesten Marker bis zu drei Supplements und
// drei Lebensmittel vor, deren influenced_markers den Marker nennen. Insgesamt höchstens fünf je Art.
func SuggestSupplements(markers []models.BloodMarker, gender models.Gender, supplements []models.SupplementReference, foods []models.FoodReference) SupplementSuggestions {
	var out SupplementSuggestions
	seenSupp := make(map[uint]bool)
	seenFood := make(map[uint]bool)

	for _, m := range LatestByMarker(markers) {
		if deviationSide(m) >= 0 || !m.Status.IsSuboptimal() {
			continue
		}
		n := 0
		for _, s := range supplements {
			if n == suggestionsPerMarker {
				break
			}
			if !s.Gender.AppliesTo(gender) || !containsFold(s.InfluencedMarkers, m.MarkerName) {
				continue
			}
			n++
			if !seenSupp[s.ID] {
				seenSupp[s.ID] = true
				out.Supplements = append(out.Supplements, s)
			}
		}
		n = 0
		for _, f := range foods {
			if n == suggestionsPerMarker {
				break
			}
			if !f.Gender.AppliesTo(gender) || !containsFold(f.InfluencedMarkers, m.MarkerName) {
				continue
			}
			n++
			if !seenFood[f.ID] {
				seenFood[f.ID] = true
				out.Foods = append(out.Foods, f)
			}
		}
	}
	if len(out.Supplements) > maxSuggestions {
		out.Supplements = out.Supplements[:maxSuggestions]
	}
	if len(out.Foods) > maxSuggestions {
		out.Foods = out.Foods[:maxSuggestions]
	}
	return out
}

// influencedBy returns the names of markers the free-text field mentions.
func influencedBy(field string, markers []models.BloodMarker) []string {
	var out []string
	lower := strings.ToLower(field)
	for _, m := range markers {
		if name := strings.ToLower(strings.TrimSpace(m.MarkerName)); name != "" && strings.Contains(lower, name) {
			out = append(out, m.MarkerName)
		}
	}
	return out
}
