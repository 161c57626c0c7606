package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"celluiq/models"
)

func recommendCatalog() []models.ReferenceEntry {
	names := []string{"Vitamin D", "Calcium", "PTH", "Magnesium", "TSH", "Free T3", "Free T4", "Ferritin", "Iron", "TIBC", "hs-CRP"}
	var catalog []models.ReferenceEntry
	for i, n := range names {
		catalog = append(catalog, models.ReferenceEntry{ID: n, SortOrder: i, MarkerName: n, Gender: models.GenderBoth, Category: models.CategoryOther})
	}
	catalog = append(catalog,
		models.ReferenceEntry{ID: "PSA", MarkerName: "PSA", Gender: models.GenderMale},
		models.ReferenceEntry{ID: "AMH", MarkerName: "AMH", Gender: models.GenderFemale},
	)
	return catalog
}

func names(recs []Recommendation) []string {
	var out []string
	for _, r := range recs {
		out = append(out, r.MarkerName)
	}
	return out
}

func TestRecommend_RelatedBeforePriority(t *testing.T) {
	markers := []models.BloodMarker{
		marker("Vitamin D", 22, "2026-01-10", models.StatusLow),
		marker("TSH", 2.1, "2026-01-10", models.StatusOptimal),
	}

	recs := Recommend(markers, models.GenderMale, recommendCatalog())

	// Calcium, PTH, Magnesium aus Vitamin D; dann Basis-Marker in Listenreihenfolge
	assert.Equal(t, []string{"Calcium", "PTH", "Magnesium", "Iron", "Ferritin", "Free T3", "Free T4", "hs-CRP", "PSA"}, names(recs))

	require.NotEmpty(t, recs)
	assert.Equal(t, PriorityHigh, recs[0].Priority)
	assert.Equal(t, "Vitamin D", recs[0].TriggeredBy)
	assert.Contains(t, recs[0].Reason, "Vitamin D")

	for _, r := range recs[3:] {
		assert.Equal(t, PriorityNormal, r.Priority)
	}
}

func TestRecommend_NeverProposesPresentMarkers(t *testing.T) {
	markers := []models.BloodMarker{
		marker("Vitamin D", 22, "2026-01-10", models.StatusLow),
		marker("magnesium", 0.9, "2026-01-10", models.StatusOptimal),
		marker("FERRITIN", 80, "2026-01-10", models.StatusOptimal),
	}

	recs := Recommend(markers, models.GenderFemale, recommendCatalog())
	got := names(recs)
	assert.NotContains(t, got, "Magnesium")
	assert.NotContains(t, got, "Ferritin")
	assert.NotContains(t, got, "Vitamin D")
	assert.Contains(t, got, "AMH")
	assert.NotContains(t, got, "PSA")
}

func TestRecommend_DeduplicatesAcrossPaths(t *testing.T) {
	markers := []models.BloodMarker{
		marker("Iron", 40, "2026-01-10", models.StatusLow),
		marker("Ferritin", 12, "2026-01-10", models.StatusCritical),
	}

	recs := Recommend(markers, models.GenderBoth, recommendCatalog())
	seen := map[string]int{}
	for _, r := range recs {
		seen[r.MarkerName]++
	}
	for name, n := range seen {
		assert.Equal(t, 1, n, name)
	}
	// TIBC kommt über Iron (high) und darf nicht erneut als normal auftauchen
	assert.Equal(t, PriorityHigh, recs[0].Priority)
	assert.Equal(t, "TIBC", recs[0].MarkerName)
}

func TestRecommend_UsesLatestStatus(t *testing.T) {
	markers := []models.BloodMarker{
		marker("Vitamin D", 22, "2025-01-10", models.StatusLow),
		marker("Vitamin D", 50, "2026-01-10", models.StatusOptimal),
	}
	recs := Recommend(markers, models.GenderBoth, recommendCatalog())
	for _, r := range recs {
		assert.Equal(t, PriorityNormal, r.Priority)
	}
}

func TestRecommend_SkipsMarkersWithoutReference(t *testing.T) {
	recs := Recommend(nil, models.GenderBoth, []models.ReferenceEntry{{ID: "x", MarkerName: "Zinc", Gender: models.GenderBoth}})
	assert.Equal(t, []string{"Zinc"}, names(recs))
}

func TestTruncateForDisplay(t *testing.T) {
	recs := make([]Recommendation, 15)
	assert.Len(t, TruncateForDisplay(recs, DisplayLimit), 10)
	assert.Len(t, TruncateForDisplay(recs[:3], DisplayLimit), 3)
}

func TestPriorityMarkers(t *testing.T) {
	male := PriorityMarkers(models.GenderMale)
	assert.Contains(t, male, "PSA")
	assert.NotContains(t, male, "AMH")
	assert.Equal(t, "Vitamin D", male[0])
	assert.Len(t, PriorityMarkers(models.GenderBoth), len(priorityMarkersBoth))
}
