package services

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"celluiq/models"
)

// DefaultSearchLimit begrenzt die Treffer der Referenzsuche bei manueller Eingabe.
const DefaultSearchLimit = 8

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(s)))
}

// MatchReference sucht den ersten Katalogeintrag, der zum extrahierten Markernamen passt.
// Ein Eintrag passt, wenn er für das Geschlecht gilt und Name oder Kurzname den Suchbegriff
// enthalten bzw. darin enthalten sind. nil bedeutet "keine Referenz vorhanden".
func MatchReference(markerName string, gender models.Gender, catalog []models.ReferenceEntry) *models.ReferenceEntry {
	q := normalizeName(markerName)
	if q == "" {
		return nil
	}
	for i := range catalog {
		entry := &catalog[i]
		if !entry.Gender.AppliesTo(gender) {
			continue
		}
		name := normalizeName(entry.MarkerName)
		short := normalizeName(entry.ShortName)

		if name != "" && (strings.Contains(name, q) || strings.Contains(q, name)) {
			return entry
		}
		if short != "" && (short == q || strings.Contains(q, short)) {
			return entry
		}
	}
	return nil
}

// FindReferenceByName sucht exakt (ohne Groß-/Kleinschreibung) nach Name oder Kurzname.
// Einträge für das Geschlecht des Nutzers werden bevorzugt.
func FindReferenceByName(name string, gender models.Gender, catalog []models.ReferenceEntry) *models.ReferenceEntry {
	q := normalizeName(name)
	if q == "" {
		return nil
	}
	var fallback *models.ReferenceEntry
	for i := range catalog {
		entry := &catalog[i]
		if normalizeName(entry.MarkerName) != q && normalizeName(entry.ShortName) != q {
			continue
		}
		if entry.Gender.AppliesTo(gender) {
			return entry
		}
		if fallback == nil {
			fallback = entry
		}
	}
	return fallback
}

// FindReferenceByID gibt den Eintrag mit der ID zurück oder nil.
func FindReferenceByID(id string, catalog []models.ReferenceEntry) *models.ReferenceEntry {
	for i := range catalog {
		if catalog[i].ID == id {
			return &catalog[i]
		}
	}
	return nil
}

// SearchReferences implements the autocomplete of the manual entry dialog: at least two
// characters, substring match on name or short name, gender-applicable entries only.
func SearchReferences(query string, gender models.Gender, catalog []models.ReferenceEntry, limit int) []models.ReferenceEntry {
	q := normalizeName(query)
	if len([]rune(q)) < 2 {
		return nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	var out []models.ReferenceEntry
	for _, entry := range catalog {
		if !entry.Gender.AppliesTo(gender) {
			continue
		}
		if strings.Contains(normalizeName(entry.MarkerName), q) || strings.Contains(normalizeName(entry.ShortName), q) {
			out = append(out, entry)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

// UnitOptions gibt alle Einheiten des Katalogs sortiert und eindeutig zurück.
func UnitOptions(catalog []models.ReferenceEntry) []string {
	seen := make(map[string]bool)
	var units []string
	for _, entry := range catalog {
		u := strings.TrimSpace(entry.Unit)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		units = append(units, u)
	}
	sort.Strings(units)
	return units
}
