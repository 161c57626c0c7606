package services

import (
	"math"
	"sort"

	"celluiq/models"
)

// TopMarkerLimit ist die Anzahl der Marker in der Dashboard-Übersicht.
const TopMarkerLimit = 8

// DashboardSummary ist die Übersicht über die neuesten Werte eines Nutzers.
type DashboardSummary struct {
	HealthScore int                  `json:"health_score"`
	Total       int                  `json:"total"`
	Optimal     int                  `json:"optimal"`
	Suboptimal  int                  `json:"suboptimal"`
	Critical    int                  `json:"critical"`
	TopMarkers  []models.BloodMarker `json:"top_markers"`
}

var severityRank = map[models.MarkerStatus]int{
	models.StatusCritical:   1,
	models.StatusHigh:       1,
	models.StatusLow:        1,
	models.StatusSuboptimal: 2,
	models.StatusOptimal:    3,
	models.StatusOther:      4,
}

// Summarize berechnet Health-Score und Zähler über die neuesten Werte. Auffällige Werte
// (low, high, critical) zählen als kritisch.
func Summarize(markers []models.BloodMarker) DashboardSummary {
	latest := LatestByMarker(markers)
	s := DashboardSummary{Total: len(latest)}
	for _, m := range latest {
		switch m.Status {
		case models.StatusOptimal:
			s.Optimal++
		case models.StatusSuboptimal:
			s.Suboptimal++
		case models.StatusLow, models.StatusHigh, models.StatusCritical:
			s.Critical++
		}
	}
	if s.Total > 0 {
		s.HealthScore = int(math.Round(float64(s.Optimal) / float64(s.Total) * 100))
	}

	top := append([]models.BloodMarker(nil), latest...)
	sort.SliceStable(top, func(i, j int) bool {
		return rank(top[i].Status) < rank(top[j].Status)
	})
	if len(top) > TopMarkerLimit {
		top = top[:TopMarkerLimit]
	}
	s.TopMarkers = top
	return s
}

func rank(s models.MarkerStatus) int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return len(severityRank)
}
