package storage

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"celluiq/models"
)

// ErrNotFound wird zurückgegeben, wenn ein Datensatz nicht existiert.
var ErrNotFound = errors.New("record not found")

// Open verbindet sich mit PostgreSQL.
func Open(dsn string, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	log.Info("Successfully connected to database.")
	return db, nil
}

// AutoMigrate legt alle Tabellen an bzw. aktualisiert sie.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.ReferenceEntry{},
		&models.BloodWork{},
		&models.BloodMarker{},
		&models.UserProfile{},
		&models.FoodReference{},
		&models.SupplementReference{},
		&models.ShoppingItem{},
	)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
