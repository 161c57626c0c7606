package services

import (
	"strings"

	"celluiq/models"
)

// LatestByMarker projiziert eine Markerliste auf den neuesten Wert pro marker_name.
// Bei gleichem test_date gewinnt der zuerst gesehene Datensatz. Die Reihenfolge folgt
// dem ersten Auftreten eines Namens in markers.
func LatestByMarker(markers []models.BloodMarker) []models.BloodMarker {
	index := make(map[string]int)
	var latest []models.BloodMarker
	for _, m := range markers {
		key := strings.ToLower(strings.TrimSpace(m.MarkerName))
		i, ok := index[key]
		if !ok {
			index[key] = len(latest)
			latest = append(latest, m)
			continue
		}
		if m.TestDate.After(latest[i].TestDate) {
			latest[i] = m
		}
	}
	return latest
}

// SuboptimalMarkers filtert auf Marker mit auffälligem Status.
func SuboptimalMarkers(markers []models.BloodMarker) []models.BloodMarker {
	var out []models.BloodMarker
	for _, m := range markers {
		if m.Status.IsSuboptimal() {
			out = append(out, m)
		}
	}
	return out
}
