package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"celluiq/models"
	"celluiq/storage"
)

// Schnittstellen zur Persistenz, implementiert von den Repositories in storage.

type MarkerReader interface {
	ListByUser(ctx context.Context, userID, sortKey string) ([]models.BloodMarker, error)
}

type MarkerWriter interface {
	BulkCreate(ctx context.Context, markers []models.BloodMarker) error
	Create(ctx context.Context, marker *models.BloodMarker) error
}

type ProfileReader interface {
	Get(ctx context.Context, userID string) (*models.UserProfile, error)
}

type NutritionSource interface {
	Foods(ctx context.Context) ([]models.FoodReference, error)
	Supplements(ctx context.Context) ([]models.SupplementReference, error)
}

type ShoppingStore interface {
	Replace(ctx context.Context, userID string, items []models.ShoppingItem) error
}

type BloodWorkStore interface {
	Create(ctx context.Context, bw *models.BloodWork) error
	Save(ctx context.Context, bw *models.BloodWork) error
	ListPending(ctx context.Context, limit int) ([]models.BloodWork, error)
}

type DocumentStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	PresignURL(ctx context.Context, key string) (string, error)
}

// CatalogProvider liefert den Referenzkatalog in Katalogreihenfolge.
type CatalogProvider interface {
	References(ctx context.Context) ([]models.ReferenceEntry, error)
}

// userGender liest das Geschlecht aus dem Profil; ohne Profil gilt "both".
func userGender(ctx context.Context, profiles ProfileReader, userID string, log *zap.Logger) models.Gender {
	if profiles == nil {
		return models.GenderBoth
	}
	p, err := profiles.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Warn("Profil konnte nicht geladen werden", zap.String("user_id", userID), zap.Error(err))
		}
		return models.GenderBoth
	}
	return models.ParseGender(string(p.Gender))
}
