package storage

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"celluiq/models"
)

// NutritionRepository liest Lebensmittel und Supplements aus dem Katalog.
type NutritionRepository struct {
	DB *gorm.DB
}

func NewNutritionRepository(db *gorm.DB) *NutritionRepository {
	return &NutritionRepository{DB: db}
}

func (r *NutritionRepository) Foods(ctx context.Context) ([]models.FoodReference, error) {
	var foods []models.FoodReference
	err := r.DB.WithContext(ctx).Order("id asc").Find(&foods).Error
	return foods, err
}

func (r *NutritionRepository) Supplements(ctx context.Context) ([]models.SupplementReference, error) {
	var items []models.SupplementReference
	err := r.DB.WithContext(ctx).Order("id asc").Find(&items).Error
	return items, err
}

// SeedFoods legt fehlende Lebensmittel an, vorhandene Namen bleiben unverändert.
func (r *NutritionRepository) SeedFoods(ctx context.Context, foods []models.FoodReference) error {
	if len(foods) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&foods).Error
}

func (r *NutritionRepository) SeedSupplements(ctx context.Context, items []models.SupplementReference) error {
	if len(items) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&items).Error
}
