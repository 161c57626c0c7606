package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"celluiq/models"
)

func refWithRange(celluiqMin, celluiqMax, clinicalMin, clinicalMax *float64) *models.ReferenceEntry {
	return &models.ReferenceEntry{
		MarkerName:       "Test",
		Gender:           models.GenderBoth,
		CelluiqRangeMin:  celluiqMin,
		CelluiqRangeMax:  celluiqMax,
		ClinicalRangeMin: clinicalMin,
		ClinicalRangeMax: clinicalMax,
	}
}

func TestClassify_Tiered(t *testing.T) {
	c := NewClassifier("tiered")
	ref := refWithRange(ptr(30), ptr(80), nil, nil) // Breite 50

	tests := []struct {
		name  string
		value float64
		want  models.MarkerStatus
	}{
		{"lower bound inclusive", 30, models.StatusOptimal},
		{"upper bound inclusive", 80, models.StatusOptimal},
		{"inside", 55, models.StatusOptimal},
		{"slightly below", 24, models.StatusSuboptimal},
		{"exactly 20 percent below", 20, models.StatusSuboptimal},
		{"marked below", 15, models.StatusLow},
		{"marked above", 100, models.StatusHigh},
		{"exactly 50 percent above", 105, models.StatusHigh},
		{"critical below", 4, models.StatusCritical},
		{"critical above", 106, models.StatusCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.value, ref))
		})
	}
}

func TestClassify_Severity(t *testing.T) {
	c := NewClassifier("severity")
	ref := refWithRange(ptr(30), ptr(80), nil, nil)

	assert.Equal(t, models.StatusHigh, c.Classify(15, ref), "direction is ignored")
	assert.Equal(t, models.StatusHigh, c.Classify(100, ref))
	assert.Equal(t, models.StatusCritical, c.Classify(4, ref))
	assert.Equal(t, models.StatusSuboptimal, c.Classify(24, ref))
}

func TestClassify_Simple(t *testing.T) {
	c := NewClassifier("simple")
	ref := refWithRange(ptr(30), ptr(80), nil, nil)

	assert.Equal(t, models.StatusLow, c.Classify(24, ref))
	assert.Equal(t, models.StatusLow, c.Classify(1, ref))
	assert.Equal(t, models.StatusHigh, c.Classify(500, ref))
	assert.Equal(t, models.StatusOptimal, c.Classify(30, ref))
}

func TestClassify_NilReference(t *testing.T) {
	for _, policy := range []string{"tiered", "severity", "simple"} {
		c := NewClassifier(policy)
		for _, v := range []float64{-1, 0, 42, 1e9} {
			assert.Equal(t, models.StatusOther, c.Classify(v, nil))
		}
	}
}

func TestClassify_RangeFallbacks(t *testing.T) {
	c := Classifier{}

	// Klinische Grenzen ersetzen fehlende CELLUIQ-Grenzen einzeln
	ref := refWithRange(ptr(40), nil, ptr(20), ptr(100))
	assert.Equal(t, models.StatusOptimal, c.Classify(90, ref))
	assert.Equal(t, models.StatusSuboptimal, c.Classify(35, ref))

	// Eine fehlende Grenze ohne Ersatz: immer suboptimal
	ref = refWithRange(ptr(40), nil, nil, nil)
	assert.Equal(t, models.StatusSuboptimal, c.Classify(50, ref))
	assert.Equal(t, models.StatusSuboptimal, c.Classify(1, ref))
}

func TestClassify_ZeroWidthRange(t *testing.T) {
	c := Classifier{}
	ref := refWithRange(ptr(5), ptr(5), nil, nil)

	assert.Equal(t, models.StatusOptimal, c.Classify(5, ref))
	assert.Equal(t, models.StatusCritical, c.Classify(5.01, ref))
	assert.Equal(t, models.StatusCritical, c.Classify(4.99, ref))
}

func TestNewClassifier_DefaultsToTiered(t *testing.T) {
	assert.Equal(t, PolicyTiered, NewClassifier("").Policy)
	assert.Equal(t, PolicyTiered, NewClassifier("bogus").Policy)
	assert.Equal(t, PolicySimple, NewClassifier(" SIMPLE ").Policy)
}

func TestResolveOptimalRange(t *testing.T) {
	ref := refWithRange(ptr(30), nil, ptr(20), nil)
	r := ResolveOptimalRange(ref, ptr(10), ptr(100))
	assert.Equal(t, 30.0, *r.Min)
	assert.Equal(t, 100.0, *r.Max)

	r = ResolveOptimalRange(nil, ptr(10), nil)
	assert.Equal(t, 10.0, *r.Min)
	assert.Nil(t, r.Max)
}
