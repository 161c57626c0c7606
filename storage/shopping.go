package storage

import (
	"context"

	"gorm.io/gorm"

	"celluiq/models"
)

type ShoppingRepository struct {
	DB *gorm.DB
}

func NewShoppingRepository(db *gorm.DB) *ShoppingRepository {
	return &ShoppingRepository{DB: db}
}

func (r *ShoppingRepository) ListByUser(ctx context.Context, userID string) ([]models.ShoppingItem, error) {
	var items []models.ShoppingItem
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id asc").Find(&items).Error
	return items, err
}

// Replace ersetzt die Einkaufsliste eines Nutzers vollständig.
func (r *ShoppingRepository) Replace(ctx context.Context, userID string, items []models.ShoppingItem) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.ShoppingItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

func (r *ShoppingRepository) SetChecked(ctx context.Context, userID string, id uint, checked bool) (*models.ShoppingItem, error) {
	var item models.ShoppingItem
	if err := r.DB.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&item).Error; err != nil {
		return nil, notFound(err)
	}
	if err := r.DB.WithContext(ctx).Model(&item).Update("checked", checked).Error; err != nil {
		return nil, err
	}
	item.Checked = checked
	return &item, nil
}
