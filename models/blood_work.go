package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BloodWorkStatus beschreibt den Verarbeitungsstand eines hochgeladenen Befunds.
type BloodWorkStatus string

const (
	BloodWorkPending    BloodWorkStatus = "pending"
	BloodWorkExtracting BloodWorkStatus = "extracting"
	BloodWorkProcessed  BloodWorkStatus = "processed"
	BloodWorkNoMarkers  BloodWorkStatus = "no_markers"
	BloodWorkFailed     BloodWorkStatus = "failed"
)

// BloodWork ist ein hochgeladener Laborbefund (PDF oder Bild).
type BloodWork struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID      string `json:"user_id" gorm:"index;not null"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	StorageKey  string `json:"storage_key" gorm:"not null"`
	FileURL     string `json:"file_url,omitempty"`

	Status       BloodWorkStatus `json:"status" gorm:"index;not null;default:'pending'"`
	AnalysisJSON datatypes.JSON  `json:"analysis_json,omitempty"`
	MarkerCount  int             `json:"marker_count"`
	ErrorMessage string          `json:"error_message,omitempty"`
	ProcessedAt  *time.Time      `json:"processed_at,omitempty"`
}

func (BloodWork) TableName() string {
	return "blood_work"
}

func (b *BloodWork) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
