package services

import (
	"strings"

	"celluiq/models"
)

// ClassificationPolicy legt fest, wie Werte außerhalb des Bereichs eingestuft werden.
type ClassificationPolicy string

const (
	// PolicyTiered: > 50 % der Bereichsbreite daneben ist critical, > 20 % low bzw. high,
	// darunter suboptimal.
	PolicyTiered ClassificationPolicy = "tiered"
	// PolicySeverity: wie tiered, aber ohne Richtung, 20-50 % ist immer high.
	PolicySeverity ClassificationPolicy = "severity"
	// PolicySimple: unter dem Bereich low, darüber high, kein critical.
	PolicySimple ClassificationPolicy = "simple"
)

const (
	criticalDeviationRatio = 0.5
	markedDeviationRatio   = 0.2
)

// Classifier stuft Messwerte gegen Referenzbereiche ein. Der Zero-Value nutzt PolicyTiered.
type Classifier struct {
	Policy ClassificationPolicy
}

// NewClassifier parst STATUS_POLICY; unbekannte Werte fallen auf tiered zurück.
func NewClassifier(policy string) Classifier {
	switch p := ClassificationPolicy(strings.ToLower(strings.TrimSpace(policy))); p {
	case PolicySeverity, PolicySimple:
		return Classifier{Policy: p}
	default:
		return Classifier{Policy: PolicyTiered}
	}
}

// Classify stuft value gegen den effektiven Bereich von ref ein. Ohne Referenz ist das
// Ergebnis immer other.
func (c Classifier) Classify(value float64, ref *models.ReferenceEntry) models.MarkerStatus {
	if ref == nil {
		return models.StatusOther
	}
	return c.ClassifyRange(value, EffectiveRange(ref))
}

// ClassifyRange stuft value gegen einen bereits aufgelösten Bereich ein.
func (c Classifier) ClassifyRange(value float64, r Range) models.MarkerStatus {
	if !r.Complete() {
		return models.StatusSuboptimal
	}
	lo, hi := *r.Min, *r.Max
	if value >= lo && value <= hi {
		return models.StatusOptimal
	}

	below := value < lo
	if c.Policy == PolicySimple {
		if below {
			return models.StatusLow
		}
		return models.StatusHigh
	}

	deviation := value - hi
	if below {
		deviation = lo - value
	}
	width := hi - lo

	switch {
	case width <= 0:
		// min == max: jede Abweichung ist kritisch
		return models.StatusCritical
	case deviation > width*criticalDeviationRatio:
		return models.StatusCritical
	case deviation > width*markedDeviationRatio:
		if below && c.Policy != PolicySeverity {
			return models.StatusLow
		}
		return models.StatusHigh
	default:
		return models.StatusSuboptimal
	}
}

// deviationSide reports whether a marker lies below or above its stored range.
// Returns 0 when the range is incomplete or the value lies inside.
func deviationSide(m models.BloodMarker) int {
	switch {
	case m.OptimalMin != nil && m.Value < *m.OptimalMin:
		return -1
	case m.OptimalMax != nil && m.Value > *m.OptimalMax:
		return 1
	case m.Status == models.StatusLow:
		return -1
	case m.Status == models.StatusHigh:
		return 1
	}
	return 0
}
