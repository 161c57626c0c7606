package services

import (
	"fmt"
	"strings"
	"time"
)

// FormatMarkerList erzeugt die Textdatei mit den empfohlenen Markern für den Arztbesuch.
func FormatMarkerList(recs []Recommendation, now time.Time) string {
	var b strings.Builder
	b.WriteString("CELLUIQ - Empfohlene Blutmarker\n")
	fmt.Fprintf(&b, "Erstellt am: %s\n", now.Format("02.01.2006"))

	var high, normal []Recommendation
	for _, r := range recs {
		if r.Priority == PriorityHigh {
			high = append(high, r)
		} else {
			normal = append(normal, r)
		}
	}

	if len(high) > 0 {
		b.WriteString("\nPRIORITÄT (wegen auffälliger Werte)\n")
		for _, r := range high {
			fmt.Fprintf(&b, "- %s%s: %s\n", r.MarkerName, shortSuffix(r.ShortName), r.Reason)
		}
	}
	if len(normal) > 0 {
		b.WriteString("\nBASIS\n")
		for _, r := range normal {
			fmt.Fprintf(&b, "- %s%s\n", r.MarkerName, shortSuffix(r.ShortName))
		}
	}
	if len(recs) == 0 {
		b.WriteString("\nAlle empfohlenen Marker sind bereits erfasst.\n")
	}
	return b.String()
}

// MarkerListFileName gibt den Dateinamen des Exports zurück.
func MarkerListFileName(now time.Time) string {
	return fmt.Sprintf("celluiq-marker-liste-%s.txt", now.Format("2006-01-02"))
}

func shortSuffix(short string) string {
	if short == "" {
		return ""
	}
	return " (" + short + ")"
}
