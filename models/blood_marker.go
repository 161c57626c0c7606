package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MarkerStatus ist das Ergebnis der Klassifizierung eines Messwerts.
type MarkerStatus string

const (
	StatusOptimal    MarkerStatus = "optimal"
	StatusSuboptimal MarkerStatus = "suboptimal"
	StatusLow        MarkerStatus = "low"
	StatusHigh       MarkerStatus = "high"
	StatusCritical   MarkerStatus = "critical"
	StatusOther      MarkerStatus = "other"
)

// IsSuboptimal reports whether the status asks for follow-up.
func (s MarkerStatus) IsSuboptimal() bool {
	switch s {
	case StatusSuboptimal, StatusLow, StatusHigh, StatusCritical:
		return true
	}
	return false
}

// Quellen eines Messwerts
const (
	SourceUpload = "upload"
	SourceManual = "manual"
)

// BloodMarker ist ein klassifizierter Messwert eines Nutzers. Datensätze werden nie
// aktualisiert, neuere Messungen mit gleichem Namen ersetzen sie in der Ansicht.
type BloodMarker struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	CreatedAt time.Time `json:"created_at"`

	UserID      string  `json:"user_id" gorm:"index;not null"`
	BloodWorkID *string `json:"blood_work_id,omitempty" gorm:"type:uuid;index"`
	ReferenceID *string `json:"reference_id,omitempty" gorm:"type:uuid"`
	Source      string  `json:"source" gorm:"not null;default:'upload'"`

	MarkerName string  `json:"marker_name" gorm:"index;not null"`
	Value      float64 `json:"value"`
	Unit       string  `json:"unit"`

	// Wert und Einheit wie im Dokument gedruckt
	OriginalValue  float64 `json:"original_value"`
	OriginalUnit   string  `json:"original_unit,omitempty"`
	UnitConverted  bool    `json:"unit_converted"`
	UnitUnverified bool    `json:"unit_unverified"`

	OptimalMin *float64     `json:"optimal_min,omitempty"`
	OptimalMax *float64     `json:"optimal_max,omitempty"`
	TestDate   time.Time    `json:"test_date" gorm:"type:date;index"`
	Status     MarkerStatus `json:"status" gorm:"index"`
	Category   string       `json:"category"`
}

func (BloodMarker) TableName() string {
	return "blood_markers"
}

func (m *BloodMarker) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
