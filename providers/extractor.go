package providers

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// StatusSuccess ist der Status einer erfolgreichen Extraktion.
const StatusSuccess = "success"

// Extractor ist das Interface, das jeder Extraktionsdienst (z.B. Gemini) implementieren muss.
type Extractor interface {
	// Extract liest die Blutmarker aus dem Dokument hinter FileURL.
	Extract(ctx context.Context, req ExtractionRequest) (*ExtractionResult, error)

	// Name gibt den eindeutigen Namen des Dienstes zurück (z.B. "gemini").
	Name() string
}

// ExtractionRequest ist die Eingabe für den Extraktionsdienst.
type ExtractionRequest struct {
	FileURL     string          `json:"file_url"`
	ContentType string          `json:"-"`
	JSONSchema  json.RawMessage `json:"json_schema"`
}

// ExtractionResult ist die Antwort des Extraktionsdienstes.
type ExtractionResult struct {
	Status string           `json:"status"`
	Output ExtractionOutput `json:"output"`
	// Raw enthält die unveränderte Modellantwort für die Ablage in blood_work.analysis_json.
	Raw json.RawMessage `json:"-"`
}

type ExtractionOutput struct {
	Markers  []RawMarker `json:"markers"`
	TestDate string      `json:"test_date,omitempty"`
}

// RawMarker ist ein Messwert, wie er im Dokument steht.
type RawMarker struct {
	MarkerName   string  `json:"marker_name"`
	Value        Number  `json:"value"`
	Unit         string  `json:"unit,omitempty"`
	ReferenceMin *Number `json:"reference_min,omitempty"`
	ReferenceMax *Number `json:"reference_max,omitempty"`
}

// UnmarshalJSON markiert einen fehlenden Wert als ungültig statt ihn als 0 zu lesen.
func (m *RawMarker) UnmarshalJSON(b []byte) error {
	type plain RawMarker
	p := plain{Value: Number(math.NaN())}
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*m = RawMarker(p)
	return nil
}

// Number accepts JSON numbers as well as numeric strings such as "24,5", "1.234,5" or "<0.5".
// Anything else ("negativ", "n.a.", null) decodes to an invalid Number instead of failing the
// whole document.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number(parseLocaleNumber(string(b)))
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid() {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, float64(n), 'f', -1, 64), nil
}

// Valid reports whether the document contained a usable numeric value.
func (n Number) Valid() bool {
	f := float64(n)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Float returns the value, or nil for a nil pointer or an invalid value.
func (n *Number) Float() *float64 {
	if n == nil || !n.Valid() {
		return nil
	}
	f := float64(*n)
	return &f
}

func parseLocaleNumber(raw string) float64 {
	s := strings.Trim(strings.TrimSpace(raw), `"`)
	s = strings.TrimSpace(strings.TrimLeft(s, "<>=≤≥ "))
	s = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "").Replace(s)
	if s == "" || s == "null" {
		return math.NaN()
	}

	comma, dot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")
	switch {
	case comma >= 0 && dot >= 0 && comma > dot:
		// 1.234,5
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case comma >= 0 && dot >= 0:
		// 1,234.5
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		s = strings.ReplaceAll(s, ",", ".")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// BloodMarkerSchema beschreibt das erwartete Ausgabeformat der Extraktion.
var BloodMarkerSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "test_date": {"type": "string", "description": "Date of the blood test, YYYY-MM-DD"},
    "markers": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "marker_name": {"type": "string"},
          "value": {"type": "number"},
          "unit": {"type": "string"},
          "reference_min": {"type": "number"},
          "reference_max": {"type": "number"}
        },
        "required": ["marker_name", "value"]
      }
    }
  },
  "required": ["markers"]
}`)
