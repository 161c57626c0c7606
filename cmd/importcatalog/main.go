package main

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"

	"celluiq/config"
	"celluiq/models"
	"celluiq/services"
	"celluiq/storage"
)

const backupPrefix = "catalog-backups/"

type ImportConfig struct {
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	S3Key    string `envconfig:"S3_KEY" required:"true"`
	S3Secret string `envconfig:"S3_SECRET" required:"true"`
	S3URL    string `envconfig:"S3_URL" required:"true"`
	S3Region string `envconfig:"S3_REGION" required:"true"`
	S3Bucket string `envconfig:"S3_BUCKET" required:"true"`

	RedisURL    string `envconfig:"REDIS_URL"`
	CachePrefix string `envconfig:"CACHE_PREFIX" default:"celluiq:"`

	// Quelle: lokale Datei oder Objekt im Bucket
	CatalogFile  string `envconfig:"CATALOG_FILE"`
	CatalogS3Key string `envconfig:"CATALOG_S3_KEY"`
	// replace oder append
	Mode        string `envconfig:"IMPORT_MODE" default:"replace"`
	KeepBackups int    `envconfig:"KEEP_BACKUPS" default:"4"`
}

func (c ImportConfig) appConfig() *config.Config {
	return &config.Config{
		DBHost: c.DBHost, DBPort: c.DBPort, DBUser: c.DBUser, DBPassword: c.DBPassword,
		DBName: c.DBName, DBSSLMode: c.DBSSLMode,
		S3Key: c.S3Key, S3Secret: c.S3Secret, S3URL: c.S3URL, S3Region: c.S3Region, S3Bucket: c.S3Bucket,
		RedisURL: c.RedisURL, CachePrefix: c.CachePrefix,
	}
}

func main() {
	log.Println("Starte Katalog-Import...")

	var cfg ImportConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Fehler beim Laden der Konfiguration: %v", err)
	}
	if cfg.Mode != "replace" && cfg.Mode != "append" {
		log.Fatalf("Unbekannter IMPORT_MODE %q (replace oder append)", cfg.Mode)
	}
	appCfg := cfg.appConfig()
	ctx := context.Background()

	// 1. S3-Client erstellen
	s3Client, err := storage.NewS3Client(appCfg)
	if err != nil {
		log.Fatalf("Fehler beim Erstellen des S3-Clients: %v", err)
	}
	bucket := storage.NewDocumentStore(s3Client, appCfg)

	// 2. Katalog lesen
	raw, err := readSource(ctx, cfg, bucket)
	if err != nil {
		log.Fatalf("Fehler beim Lesen des Katalogs: %v", err)
	}
	entries, err := services.ParseCatalogCSV(bytes.NewReader(raw))
	if err != nil {
		log.Fatalf("Fehler beim Parsen des Katalogs: %v", err)
	}
	if len(entries) == 0 {
		log.Fatalf("Katalog enthält keine Marker")
	}
	log.Printf("%d Marker gelesen", len(entries))

	// 3. Datenbank
	db, err := storage.Open(appCfg.DSN(), zap.NewNop())
	if err != nil {
		log.Fatalf("Fehler beim Verbinden mit der Datenbank: %v", err)
	}
	if err := storage.AutoMigrate(db); err != nil {
		log.Fatalf("Fehler bei der Migration: %v", err)
	}
	repo := storage.NewReferenceRepository(db)

	// 4. Sicherung des aktuellen Katalogs und Import
	if cfg.Mode == "replace" {
		current, err := repo.List(ctx)
		if err != nil {
			log.Fatalf("Fehler beim Laden des aktuellen Katalogs: %v", err)
		}
		if len(current) > 0 {
			key, err := backupCatalog(ctx, bucket, current, time.Now())
			if err != nil {
				log.Fatalf("Fehler beim Sichern des Katalogs: %v", err)
			}
			log.Printf("Sicherung nach s3://%s/%s hochgeladen", cfg.S3Bucket, key)
			if err := rotateBackups(ctx, bucket, cfg.KeepBackups); err != nil {
				log.Fatalf("Fehler bei der Rotation alter Sicherungen: %v", err)
			}
		}
		err = repo.Replace(ctx, entries, services.CatalogBatchSize)
		if err != nil {
			log.Fatalf("Fehler beim Ersetzen des Katalogs: %v", err)
		}
	} else {
		count, err := repo.Count(ctx)
		if err != nil {
			log.Fatalf("Fehler beim Zählen des Katalogs: %v", err)
		}
		// SortOrder hinter den bestehenden Einträgen fortsetzen
		for i := range entries {
			entries[i].SortOrder += int(count)
		}
		if err := repo.CreateBatch(ctx, entries, services.CatalogBatchSize); err != nil {
			log.Fatalf("Fehler beim Anhängen an den Katalog: %v", err)
		}
	}
	log.Printf("%d Marker importiert (%s)", len(entries), cfg.Mode)

	// 5. Cache leeren, damit laufende Instanzen neu laden
	if cfg.RedisURL != "" {
		rdb, err := storage.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Printf("Redis nicht erreichbar, Cache läuft nach TTL aus: %v", err)
		} else {
			defer rdb.Close()
			cache := storage.NewCache(rdb, storage.WithPrefix(cfg.CachePrefix))
			catalog := services.NewCatalogService(repo, cache, 0, zap.NewNop())
			if err := catalog.Invalidate(ctx); err != nil {
				log.Printf("Fehler beim Leeren des Katalog-Caches: %v", err)
			}
		}
	}

	log.Println("Katalog-Import erfolgreich abgeschlossen.")
}

type objectReader interface {
	Download(ctx context.Context, key string) ([]byte, error)
}

func readSource(ctx context.Context, cfg ImportConfig, bucket objectReader) ([]byte, error) {
	switch {
	case cfg.CatalogFile != "":
		f, err := os.Open(cfg.CatalogFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(f)
	case cfg.CatalogS3Key != "":
		return bucket.Download(ctx, cfg.CatalogS3Key)
	default:
		return nil, fmt.Errorf("CATALOG_FILE oder CATALOG_S3_KEY muss gesetzt sein")
	}
}

type backupBucket interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	List(ctx context.Context, prefix string) ([]storage.StoredObject, error)
	Delete(ctx context.Context, key string) error
}

func backupKey(now time.Time) string {
	return fmt.Sprintf("%scatalog-%s.csv.gz", backupPrefix, now.UTC().Format("2006-01-02T15-04-05Z"))
}

func backupCatalog(ctx context.Context, bucket backupBucket, entries []models.ReferenceEntry, now time.Time) (string, error) {
	var buf bytes.Buffer
	gzipWriter := gzip.NewWriter(&buf)
	if err := services.WriteCatalogCSV(gzipWriter, entries); err != nil {
		return "", err
	}
	if err := gzipWriter.Close(); err != nil {
		return "", err
	}
	key := backupKey(now)
	return key, bucket.Upload(ctx, key, buf.Bytes(), "application/gzip")
}

// staleBackups gibt alles außer den keep neuesten Sicherungen zurück.
func staleBackups(objects []storage.StoredObject, keep int) []storage.StoredObject {
	if len(objects) <= keep {
		return nil
	}
	sorted := append([]storage.StoredObject(nil), objects...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].LastModified.After(sorted[j].LastModified)
	})
	return sorted[keep:]
}

func rotateBackups(ctx context.Context, bucket backupBucket, keep int) error {
	objects, err := bucket.List(ctx, backupPrefix)
	if err != nil {
		return err
	}

	stale := staleBackups(objects, keep)
	if len(stale) == 0 {
		log.Printf("Höchstens %d Sicherungen vorhanden, keine Rotation nötig.", keep)
		return nil
	}
	for _, obj := range stale {
		log.Printf("Lösche alte Sicherung: %s", obj.Key)
		if err := bucket.Delete(ctx, obj.Key); err != nil {
			log.Printf("Fehler beim Löschen von %s: %v", obj.Key, err)
		}
	}
	return nil
}
