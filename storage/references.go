package storage

import (
	"context"

	"gorm.io/gorm"

	"celluiq/models"
)

// ReferenceRepository liest und schreibt den Referenzkatalog.
type ReferenceRepository struct {
	DB *gorm.DB
}

func NewReferenceRepository(db *gorm.DB) *ReferenceRepository {
	return &ReferenceRepository{DB: db}
}

// List gibt den Katalog in Katalogreihenfolge zurück.
func (r *ReferenceRepository) List(ctx context.Context) ([]models.ReferenceEntry, error) {
	var entries []models.ReferenceEntry
	err := r.DB.WithContext(ctx).Order("sort_order asc, marker_name asc").Find(&entries).Error
	return entries, err
}

func (r *ReferenceRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.ReferenceEntry{}).Count(&count).Error
	return count, err
}

// CreateBatch fügt Einträge in Batches von batchSize ein.
func (r *ReferenceRepository) CreateBatch(ctx context.Context, entries []models.ReferenceEntry, batchSize int) error {
	if len(entries) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).CreateInBatches(&entries, batchSize).Error
}

// Replace löscht den Katalog und schreibt ihn neu, in einer Transaktion.
func (r *ReferenceRepository) Replace(ctx context.Context, entries []models.ReferenceEntry, batchSize int) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.ReferenceEntry{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		return tx.CreateInBatches(&entries, batchSize).Error
	})
}
