package storage

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"celluiq/models"
)

type ProfileRepository struct {
	DB *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{DB: db}
}

func (r *ProfileRepository) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	var p models.UserProfile
	if err := r.DB.WithContext(ctx).First(&p, "id = ?", userID).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// Upsert legt das Profil an oder aktualisiert Name, E-Mail und Geschlecht.
func (r *ProfileRepository) Upsert(ctx context.Context, p *models.UserProfile) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "full_name", "gender", "updated_at"}),
	}).Create(p).Error
}
