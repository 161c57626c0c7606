package models

import (
	"time"

	"gorm.io/datatypes"
)

// FoodReference ist ein Lebensmittel mit den Markern, die es beeinflusst.
type FoodReference struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	FoodName string `json:"food_name" gorm:"uniqueIndex;not null"`
	Category string `json:"category"`
	Gender   Gender `json:"gender" gorm:"not null;default:'both'"`
	// Freitext, z.B. "Vitamin D, Calcium"
	InfluencedMarkers string `json:"influenced_markers" gorm:"type:text"`
	DailyDosage       string `json:"daily_dosage,omitempty"`
	WeeklyDosage      string `json:"weekly_dosage,omitempty"`
}

func (FoodReference) TableName() string {
	return "foods_reference"
}

// SupplementReference ist ein Nahrungsergänzungsmittel aus dem Katalog.
type SupplementReference struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	Name              string `json:"name" gorm:"uniqueIndex;not null"`
	Category          string `json:"category"`
	Gender            Gender `json:"gender" gorm:"not null;default:'both'"`
	InfluencedMarkers string `json:"influenced_markers" gorm:"type:text"`
	Dosage            string `json:"dosage,omitempty"`
	Form              string `json:"form,omitempty"`
}

func (SupplementReference) TableName() string {
	return "supplements_reference"
}

// ShoppingItem ist ein Eintrag der Einkaufsliste eines Nutzers.
type ShoppingItem struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID              string         `json:"user_id" gorm:"index;not null"`
	Name                string         `json:"name"`
	Category            string         `json:"category"`
	Benefits            datatypes.JSON `json:"benefits"`
	PriceRange          string         `json:"price_range"`
	Checked             bool           `json:"checked"`
	WeeklyAmount        string         `json:"weekly_amount,omitempty"`
	DailyRecommendation string         `json:"daily_recommendation,omitempty"`
}

func (ShoppingItem) TableName() string {
	return "shopping_items"
}
