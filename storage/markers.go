package storage

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"celluiq/models"
)

// Erlaubte Sortierschlüssel für Markerlisten.
var markerOrder = map[string]string{
	"-test_date":  "test_date desc, created_at desc",
	"test_date":   "test_date asc, created_at asc",
	"marker_name": "marker_name asc, test_date desc",
	"-created_at": "created_at desc",
}

// ValidMarkerSort meldet, ob ListByUser den Sortierschlüssel kennt.
func ValidMarkerSort(sortKey string) bool {
	_, ok := markerOrder[sortKey]
	return ok
}

// MarkerRepository speichert klassifizierte Messwerte.
type MarkerRepository struct {
	DB *gorm.DB
}

func NewMarkerRepository(db *gorm.DB) *MarkerRepository {
	return &MarkerRepository{DB: db}
}

// BulkCreate speichert alle Marker in einem einzigen Insert.
func (r *MarkerRepository) BulkCreate(ctx context.Context, markers []models.BloodMarker) error {
	if len(markers) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Create(&markers).Error
}

func (r *MarkerRepository) Create(ctx context.Context, marker *models.BloodMarker) error {
	return r.DB.WithContext(ctx).Create(marker).Error
}

// ListByUser gibt alle Marker eines Nutzers zurück; sortKey z.B. "-test_date".
func (r *MarkerRepository) ListByUser(ctx context.Context, userID, sortKey string) ([]models.BloodMarker, error) {
	if sortKey == "" {
		sortKey = "-test_date"
	}
	order, ok := markerOrder[sortKey]
	if !ok {
		return nil, fmt.Errorf("unsupported sort key %q", sortKey)
	}
	var markers []models.BloodMarker
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order(order).Find(&markers).Error
	return markers, err
}
