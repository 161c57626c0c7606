package services

import (
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"
)

type conversionOp int

const (
	opMultiply conversionOp = iota
	opDivide
)

// conversionRule converts from a unit matching fromUnit to one matching toUnit.
// The reverse direction applies the inverse operation.
type conversionRule struct {
	keywords []string
	exact    []string
	fromUnit string
	toUnit   string
	factor   float64
	op       conversionOp
}

// Einheiten werden vor dem Vergleich mit NormalizeUnit normalisiert.
var conversionRules = []conversionRule{
	{keywords: []string{"vitamin d", "25-oh", "calcidiol"}, fromUnit: "ng", toUnit: "nmol", factor: 2.496, op: opMultiply},
	{keywords: []string{"glucose", "glukose", "blutzucker", "blood sugar"}, fromUnit: "mg", toUnit: "mmol", factor: 18.0182, op: opDivide},
	{keywords: []string{"cholesterol", "cholesterin", "ldl", "hdl"}, fromUnit: "mg", toUnit: "mmol", factor: 38.67, op: opDivide},
	{keywords: []string{"triglycerid"}, fromUnit: "mg", toUnit: "mmol", factor: 88.57, op: opDivide},
	{keywords: []string{"hemoglobin", "hämoglobin", "haemoglobin"}, exact: []string{"hgb", "hb"}, fromUnit: "g/l", toUnit: "g/dl", factor: 10, op: opDivide},
	{keywords: []string{"creatinin", "kreatinin"}, fromUnit: "mg", toUnit: "µmol", factor: 88.4, op: opMultiply},
	{keywords: []string{"b12", "cobalamin"}, fromUnit: "pg", toUnit: "pmol", factor: 0.738, op: opMultiply},
	{keywords: []string{"testosteron"}, fromUnit: "ng/dl", toUnit: "nmol", factor: 0.0347, op: opMultiply},
	{keywords: []string{"uric acid", "harnsäure"}, fromUnit: "mg", toUnit: "µmol", factor: 59.48, op: opMultiply},
	{keywords: []string{"bilirubin"}, fromUnit: "mg", toUnit: "µmol", factor: 17.1, op: opMultiply},
	{keywords: []string{"folate", "folsäure", "folic acid"}, fromUnit: "ng", toUnit: "nmol", factor: 2.266, op: opMultiply},
	{keywords: []string{"cortisol", "kortisol"}, fromUnit: "µg/dl", toUnit: "nmol", factor: 27.59, op: opMultiply},
	{keywords: []string{"crp", "c-reaktives", "c-reactive"}, fromUnit: "mg/l", toUnit: "mg/dl", factor: 10, op: opDivide},
}

// Einheiten innerhalb einer Gruppe sind numerisch identisch.
var unitEquivalenceGroups = [][]string{
	{"ng/ml", "µg/l", "ug/l"},
	{"miu/l", "µiu/ml", "uiu/ml"},
	{"pg/ml", "ng/l"},
}

var unitReplacer = strings.NewReplacer(
	"μ", "µ",
	"micro", "µ",
	"mikro", "µ",
	"mcg", "µg",
	"ug/", "µg/",
	"umol", "µmol",
	"nano", "n",
	"gramm", "g",
	"gram", "g",
	"milli", "m",
	"deciliter", "dl",
	"decilitre", "dl",
	"liter", "l",
	"litre", "l",
)

// NormalizeUnit bringt eine Einheit in eine vergleichbare Form, z.B. "μg / L" wird zu "µg/l".
func NormalizeUnit(unit string) string {
	u := norm.NFC.String(strings.ToLower(unit))
	u = strings.Join(strings.Fields(u), "")
	return unitReplacer.Replace(u)
}

// UnitsEquivalent reports whether two units are identical after normalization or share an equivalence group.
func UnitsEquivalent(a, b string) bool {
	na, nb := NormalizeUnit(a), NormalizeUnit(b)
	if na == nb {
		return true
	}
	for _, group := range unitEquivalenceGroups {
		if contains(group, na) && contains(group, nb) {
			return true
		}
	}
	return false
}

// Conversion ist das Ergebnis einer Einheitenumrechnung.
type Conversion struct {
	Value float64
	// Converted ist true, wenn eine Umrechnungsregel angewendet wurde.
	Converted bool
	// Known ist false, wenn sich die Einheiten unterscheiden und keine Regel existiert.
	Known bool
}

// ConvertUnit rechnet value von fromUnit nach toUnit um. Ohne passende Regel wird
// der Wert unverändert zurückgegeben.
func ConvertUnit(value float64, markerName, fromUnit, toUnit string) float64 {
	return ConvertUnitDetailed(value, markerName, fromUnit, toUnit).Value
}

// ConvertUnitDetailed works like ConvertUnit but also reports whether a rule matched.
// An empty unit on either side is taken as "already in the target unit".
func ConvertUnitDetailed(value float64, markerName, fromUnit, toUnit string) Conversion {
	if strings.TrimSpace(fromUnit) == "" || strings.TrimSpace(toUnit) == "" || UnitsEquivalent(fromUnit, toUnit) {
		return Conversion{Value: value, Known: true}
	}

	from, to := NormalizeUnit(fromUnit), NormalizeUnit(toUnit)
	name := strings.ToLower(norm.NFC.String(strings.TrimSpace(markerName)))

	for _, rule := range conversionRules {
		if !rule.matches(name) {
			continue
		}
		switch {
		case strings.Contains(from, rule.fromUnit) && strings.Contains(to, rule.toUnit):
			return Conversion{Value: round2(rule.apply(value, false)), Converted: true, Known: true}
		case strings.Contains(from, rule.toUnit) && strings.Contains(to, rule.fromUnit):
			return Conversion{Value: round2(rule.apply(value, true)), Converted: true, Known: true}
		}
	}
	return Conversion{Value: value}
}

func (r conversionRule) matches(name string) bool {
	for _, e := range r.exact {
		if name == e {
			return true
		}
	}
	for _, k := range r.keywords {
		if strings.Contains(name, k) {
			return true
		}
	}
	return false
}

func (r conversionRule) apply(v float64, inverse bool) float64 {
	multiply := r.op == opMultiply
	if inverse {
		multiply = !multiply
	}
	if multiply {
		return v * r.factor
	}
	return v / r.factor
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
