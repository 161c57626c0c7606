package storage

import (
	"context"

	"gorm.io/gorm"

	"celluiq/models"
)

// BloodWorkRepository verwaltet hochgeladene Befunde.
type BloodWorkRepository struct {
	DB *gorm.DB
}

func NewBloodWorkRepository(db *gorm.DB) *BloodWorkRepository {
	return &BloodWorkRepository{DB: db}
}

func (r *BloodWorkRepository) Create(ctx context.Context, bw *models.BloodWork) error {
	return r.DB.WithContext(ctx).Create(bw).Error
}

func (r *BloodWorkRepository) Save(ctx context.Context, bw *models.BloodWork) error {
	return r.DB.WithContext(ctx).Save(bw).Error
}

func (r *BloodWorkRepository) Get(ctx context.Context, userID, id string) (*models.BloodWork, error) {
	var bw models.BloodWork
	if err := r.DB.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&bw).Error; err != nil {
		return nil, notFound(err)
	}
	return &bw, nil
}

func (r *BloodWorkRepository) ListByUser(ctx context.Context, userID string) ([]models.BloodWork, error) {
	var items []models.BloodWork
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Find(&items).Error
	return items, err
}

// ListPending gibt die ältesten noch nicht verarbeiteten Befunde zurück.
func (r *BloodWorkRepository) ListPending(ctx context.Context, limit int) ([]models.BloodWork, error) {
	var items []models.BloodWork
	err := r.DB.WithContext(ctx).
		Where("status = ?", models.BloodWorkPending).
		Order("created_at asc").
		Limit(limit).
		Find(&items).Error
	return items, err
}
