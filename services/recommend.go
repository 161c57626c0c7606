package services

import (
	"fmt"
	"sort"
	"strings"

	"celluiq/models"
)

// DisplayLimit ist die Anzahl der Empfehlungen, die in der Oberfläche angezeigt werden.
const DisplayLimit = 10

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
)

// Recommendation ist ein vorgeschlagener, noch nicht gemessener Marker.
type Recommendation struct {
	MarkerName  string   `json:"marker_name"`
	ShortName   string   `json:"short_name,omitempty"`
	Category    string   `json:"category"`
	ReferenceID string   `json:"reference_id"`
	Priority    Priority `json:"priority"`
	Reason      string   `json:"reason"`
	// TriggeredBy ist der auffällige Marker, der die Empfehlung ausgelöst hat.
	TriggeredBy string `json:"triggered_by,omitempty"`
}

// Marker, die für alle Nutzer empfohlen werden.
var priorityMarkersBoth = []string{
	"Vitamin D", "Vitamin B12", "Folate", "Vitamin B6", "Iron", "Ferritin", "Magnesium", "Zinc",
	"Selenium", "TSH", "Free T3", "Free T4", "Glucose", "HbA1c", "Insulin", "HOMA-IR",
	"Total Cholesterol", "LDL Cholesterol", "HDL Cholesterol", "Triglycerides", "ApoB", "hs-CRP",
	"Homocysteine", "ALT", "AST", "GGT", "Creatinine", "eGFR", "Uric Acid", "Hemoglobin", "Hematocrit",
	"RBC", "WBC", "Platelets", "Cortisol", "DHEA-S", "Omega-3 Index",
}

var priorityMarkersByGender = map[models.Gender][]string{
	models.GenderMale:   {"Total Testosterone", "Free Testosterone", "SHBG", "Estradiol", "PSA"},
	models.GenderFemale: {"Estradiol", "Progesterone", "FSH", "LH", "AMH", "SHBG"},
}

// relatedMarkers ordnet einem auffälligen Marker physiologisch verwandte Marker zu.
var relatedMarkers = map[string][]string{
	"vitamin d":          {"Calcium", "PTH", "Magnesium"},
	"iron":               {"Ferritin", "TIBC", "Transferrin Saturation", "Hemoglobin"},
	"ferritin":           {"Iron", "TIBC", "hs-CRP"},
	"tsh":                {"Free T3", "Free T4", "Thyroid Antibodies"},
	"free t3":            {"TSH", "Free T4", "Reverse T3"},
	"free t4":            {"TSH", "Free T3"},
	"total testosterone": {"Free Testosterone", "SHBG", "Estradiol", "LH", "FSH"},
	"free testosterone":  {"Total Testosterone", "SHBG", "Estradiol"},
	"glucose":            {"HbA1c", "Insulin", "HOMA-IR"},
	"hba1c":              {"Glucose", "Insulin"},
	"ldl cholesterol":    {"ApoB", "Lp(a)", "Total Cholesterol", "HDL Cholesterol"},
	"total cholesterol":  {"LDL Cholesterol", "HDL Cholesterol", "Triglycerides"},
	"hs-crp":             {"Homocysteine", "Ferritin", "ESR"},
	"homocysteine":       {"Vitamin B12", "Folate", "Vitamin B6"},
	"vitamin b12":        {"Folate", "Homocysteine", "MMA"},
	"alt":                {"AST", "GGT", "Bilirubin Total"},
	"hemoglobin":         {"Iron", "Ferritin", "Vitamin B12", "Folate"},
	"cortisol":           {"DHEA-S", "Glucose"},
}

// PriorityMarkers gibt die Basisliste für das Geschlecht zurück (gemeinsame Marker zuerst).
func PriorityMarkers(gender models.Gender) []string {
	out := append([]string(nil), priorityMarkersBoth...)
	return append(out, priorityMarkersByGender[gender]...)
}

// Recommend schlägt Marker vor, die der Nutzer noch nicht gemessen hat. Verwandte Marker
// auffälliger Werte kommen mit Priorität high vor den Basis-Markern (normal). Vorgeschlagen
// wird nur, was im Katalog existiert. Die Liste wird nicht gekürzt, siehe TruncateForDisplay.
func Recommend(markers []models.BloodMarker, gender models.Gender, catalog []models.ReferenceEntry) []Recommendation {
	present := make(map[string]bool)
	for _, m := range markers {
		present[normalizeName(m.MarkerName)] = true
	}
	proposed := make(map[string]bool)

	var recs []Recommendation
	propose := func(name string, priority Priority, reason, trigger string) {
		key := normalizeName(name)
		if present[key] || proposed[key] {
			return
		}
		ref := FindReferenceByName(name, gender, catalog)
		if ref == nil {
			return
		}
		if present[normalizeName(ref.MarkerName)] || (ref.ShortName != "" && present[normalizeName(ref.ShortName)]) {
			return
		}
		proposed[key] = true
		proposed[normalizeName(ref.MarkerName)] = true
		recs = append(recs, Recommendation{
			MarkerName:  ref.MarkerName,
			ShortName:   ref.ShortName,
			Category:    ref.Category,
			ReferenceID: ref.ID,
			Priority:    priority,
			Reason:      reason,
			TriggeredBy: trigger,
		})
	}

	for _, m := range SuboptimalMarkers(LatestByMarker(markers)) {
		for _, related := range relatedMarkers[normalizeName(m.MarkerName)] {
			propose(related, PriorityHigh, fmt.Sprintf("Verwandt mit auffälligem Wert: %s (%s)", m.MarkerName, m.Status), m.MarkerName)
		}
	}
	for _, name := range PriorityMarkers(gender) {
		propose(name, PriorityNormal, "Basis-Marker für einen vollständigen Überblick", "")
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Priority == PriorityHigh && recs[j].Priority != PriorityHigh
	})
	return recs
}

// TruncateForDisplay kürzt die Empfehlungen auf n Einträge.
func TruncateForDisplay(recs []Recommendation, n int) []Recommendation {
	if n < 0 || len(recs) <= n {
		return recs
	}
	return recs[:n]
}

// containsFold reports whether s contains substr, ignoring case.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
