package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Kategorien des Referenzkatalogs.
const (
	CategoryVitamins     = "vitamins"
	CategoryMinerals     = "minerals"
	CategoryHormones     = "hormones"
	CategoryLipids       = "lipids"
	CategoryLiver        = "liver"
	CategoryKidney       = "kidney"
	CategoryThyroid      = "thyroid"
	CategoryBloodCells   = "blood_cells"
	CategoryInflammation = "inflammation"
	CategoryMetabolic    = "metabolic"
	CategoryOther        = "other"
)

// ReferenceEntry ist ein Eintrag im Referenzkatalog der Blutmarker.
type ReferenceEntry struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Reihenfolge im Katalog, entscheidet bei mehrdeutigen Treffern
	SortOrder int `json:"sort_order" gorm:"index"`

	MarkerName string `json:"marker_name" gorm:"index;not null"`
	ShortName  string `json:"short_name,omitempty"`
	Gender     Gender `json:"gender" gorm:"not null;default:'both'"`
	Unit       string `json:"unit"`
	Category   string `json:"category" gorm:"not null;default:'other'"`

	CelluiqRangeMin  *float64 `json:"celluiq_range_min,omitempty"`
	CelluiqRangeMax  *float64 `json:"celluiq_range_max,omitempty"`
	ClinicalRangeMin *float64 `json:"clinical_range_min,omitempty"`
	ClinicalRangeMax *float64 `json:"clinical_range_max,omitempty"`

	SymptomsLow     string `json:"symptoms_low,omitempty" gorm:"type:text"`
	SymptomsHigh    string `json:"symptoms_high,omitempty" gorm:"type:text"`
	SupplementsLow  string `json:"supplements_low,omitempty" gorm:"type:text"`
	SupplementsHigh string `json:"supplements_high,omitempty" gorm:"type:text"`
	FoodsLow        string `json:"foods_low,omitempty" gorm:"type:text"`
	FoodsHigh       string `json:"foods_high,omitempty" gorm:"type:text"`
	Lifestyle       string `json:"lifestyle,omitempty" gorm:"type:text"`
	Warnings        string `json:"warnings,omitempty" gorm:"type:text"`
	Studies         string `json:"studies,omitempty" gorm:"type:text"`
	Description     string `json:"description,omitempty" gorm:"type:text"`
	Importance      string `json:"importance,omitempty" gorm:"type:text"`
}

func (ReferenceEntry) TableName() string {
	return "blood_markers_reference"
}

func (r *ReferenceEntry) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
