package services

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"celluiq/models"
)

// CatalogBatchSize ist die Batchgröße beim Schreiben des Katalogs.
const CatalogBatchSize = 50

//go:embed data/reference_catalog.csv
var defaultCatalogCSV []byte

// CatalogStore ist das Ziel eines Katalogimports.
type CatalogStore interface {
	Count(ctx context.Context) (int64, error)
	CreateBatch(ctx context.Context, entries []models.ReferenceEntry, batchSize int) error
}

var catalogColumns = map[string]string{
	"marker":          "marker",
	"marker name":     "marker",
	"short":           "short",
	"short name":      "short",
	"category":        "category",
	"kategorie":       "category",
	"units":           "unit",
	"unit":            "unit",
	"einheit":         "unit",
	"clinical range":  "clinical",
	"celluiq range":   "celluiq",
	"gender":          "gender",
	"geschlecht":      "gender",
	"supplement low":  "supplements_low",
	"supplement high": "supplements_high",
	"food low":        "foods_low",
	"food high":       "foods_high",
	"symptoms low":    "symptoms_low",
	"symptoms high":   "symptoms_high",
	"lifestyle":       "lifestyle",
	"warnings":        "warnings",
	"studies":         "studies",
	"description":     "description",
	"importance":      "importance",
}

// ParseCatalogCSV liest einen Katalog im CSV-Format. Die Kopfzeile bestimmt die Spalten,
// unbekannte Spalten werden ignoriert. SortOrder folgt der Zeilenreihenfolge.
func ParseCatalogCSV(r io.Reader) ([]models.ReferenceEntry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty catalog", ErrInvalidInput)
		}
		return nil, fmt.Errorf("read catalog header: %w", err)
	}

	index := map[string]int{}
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if col, ok := catalogColumns[key]; ok {
			index[col] = i
		}
	}
	if _, ok := index["marker"]; !ok {
		return nil, fmt.Errorf("%w: catalog has no marker column", ErrInvalidInput)
	}

	var entries []models.ReferenceEntry
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read catalog line %d: %w", line, err)
		}

		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		name := get("marker")
		if name == "" {
			continue
		}

		entry := models.ReferenceEntry{
			SortOrder:       len(entries),
			MarkerName:      name,
			ShortName:       get("short"),
			Unit:            get("unit"),
			Category:        mapCategory(get("category")),
			Gender:          models.ParseGender(get("gender")),
			SupplementsLow:  get("supplements_low"),
			SupplementsHigh: get("supplements_high"),
			FoodsLow:        get("foods_low"),
			FoodsHigh:       get("foods_high"),
			SymptomsLow:     get("symptoms_low"),
			SymptomsHigh:    get("symptoms_high"),
			Lifestyle:       get("lifestyle"),
			Warnings:        get("warnings"),
			Studies:         get("studies"),
			Description:     get("description"),
			Importance:      get("importance"),
		}
		entry.ClinicalRangeMin, entry.ClinicalRangeMax = parseRange(get("clinical"))
		entry.CelluiqRangeMin, entry.CelluiqRangeMax = parseRange(get("celluiq"))

		entries = append(entries, entry)
	}
	return entries, nil
}

var exportHeader = []string{
	"Marker", "Short", "Category", "Units", "Clinical Range", "CELLUIQ Range", "Gender",
	"Supplement Low", "Supplement High", "Food Low", "Food High", "Symptoms Low", "Symptoms High",
	"Lifestyle", "Warnings", "Studies", "Description", "Importance",
}

// WriteCatalogCSV schreibt den Katalog im Importformat, z.B. als Sicherung vor einem Replace.
func WriteCatalogCSV(w io.Writer, entries []models.ReferenceEntry) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return err
	}
	for _, e := range entries {
		record := []string{
			e.MarkerName, e.ShortName, e.Category, e.Unit,
			formatRange(e.ClinicalRangeMin, e.ClinicalRangeMax),
			formatRange(e.CelluiqRangeMin, e.CelluiqRangeMax),
			string(e.Gender),
			e.SupplementsLow, e.SupplementsHigh, e.FoodsLow, e.FoodsHigh, e.SymptomsLow, e.SymptomsHigh,
			e.Lifestyle, e.Warnings, e.Studies, e.Description, e.Importance,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatRange(lo, hi *float64) string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	switch {
	case lo != nil && hi != nil:
		return f(*lo) + "-" + f(*hi)
	case hi != nil:
		return "<" + f(*hi)
	case lo != nil:
		return ">" + f(*lo)
	default:
		return ""
	}
}

// DefaultCatalog gibt den eingebetteten Standardkatalog zurück.
func DefaultCatalog() ([]models.ReferenceEntry, error) {
	return ParseCatalogCSV(bytes.NewReader(defaultCatalogCSV))
}

// SeedCatalog schreibt den Standardkatalog, wenn die Tabelle leer ist.
func SeedCatalog(ctx context.Context, store CatalogStore, logger *zap.Logger) (int, error) {
	count, err := store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count reference catalog: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	entries, err := DefaultCatalog()
	if err != nil {
		return 0, err
	}
	if err := store.CreateBatch(ctx, entries, CatalogBatchSize); err != nil {
		return 0, fmt.Errorf("seed reference catalog: %w", err)
	}
	logger.Info("Standard-Referenzkatalog angelegt", zap.Int("entries", len(entries)))
	return len(entries), nil
}

// parseRange liest "a-b", "<x" und ">x". Dezimalkommas werden akzeptiert.
func parseRange(s string) (*float64, *float64) {
	s = strings.TrimSpace(strings.ReplaceAll(s, " ", ""))
	if s == "" {
		return nil, nil
	}
	switch {
	case strings.HasPrefix(s, "<="), strings.HasPrefix(s, "≤"):
		return nil, parseNumber(strings.TrimLeft(s, "<=≤"))
	case strings.HasPrefix(s, ">="), strings.HasPrefix(s, "≥"):
		return parseNumber(strings.TrimLeft(s, ">=≥")), nil
	case strings.HasPrefix(s, "<"):
		return nil, parseNumber(s[1:])
	case strings.HasPrefix(s, ">"):
		return parseNumber(s[1:]), nil
	}

	// Trennzeichen ist das erste '-' nach dem ersten Zeichen, negative Untergrenzen bleiben möglich.
	s = strings.ReplaceAll(s, "–", "-")
	if i := strings.Index(s[1:], "-"); i >= 0 {
		return parseNumber(s[:i+1]), parseNumber(s[i+2:])
	}
	v := parseNumber(s)
	return v, v
}

func parseNumber(s string) *float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func mapCategory(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vitamine", "vitamins", "vitamin":
		return models.CategoryVitamins
	case "mineralstoffe", "minerals", "mineral", "spurenelemente":
		return models.CategoryMinerals
	case "hormone", "hormones":
		return models.CategoryHormones
	case "blutfette", "lipide", "lipids":
		return models.CategoryLipids
	case "leber", "liver":
		return models.CategoryLiver
	case "niere", "kidney":
		return models.CategoryKidney
	case "schilddrüse", "thyroid":
		return models.CategoryThyroid
	case "blutbild", "blood cells", "blood_cells":
		return models.CategoryBloodCells
	case "entzündung", "inflammation":
		return models.CategoryInflammation
	case "stoffwechsel", "metabolic", "metabolism":
		return models.CategoryMetabolic
	default:
		return models.CategoryOther
	}
}
