package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"celluiq/config"
	"celluiq/events"
	"celluiq/models"
)

// ManualEntry ist ein vom Nutzer eingegebener Messwert.
type ManualEntry struct {
	ReferenceID string  `json:"reference_id"`
	MarkerName  string  `json:"marker_name"`
	Value       float64 `json:"value"`
	Unit        string  `json:"unit"`
	TestDate    string  `json:"test_date"`
}

// ManualEntryService speichert manuell eingegebene Messwerte.
type ManualEntryService struct {
	Markers    MarkerWriter
	Catalog    CatalogProvider
	Profiles   ProfileReader
	Events     events.Publisher
	Classifier Classifier
	Logger     *zap.Logger

	now func() time.Time
}

func NewManualEntryService(cfg *config.Config, markers MarkerWriter, catalog CatalogProvider, profiles ProfileReader, publisher events.Publisher, logger *zap.Logger) *ManualEntryService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &ManualEntryService{
		Markers:    markers,
		Catalog:    catalog,
		Profiles:   profiles,
		Events:     publisher,
		Classifier: NewClassifier(cfg.StatusPolicy),
		Logger:     logger,
		now:        time.Now,
	}
}

// Add klassifiziert und speichert einen Messwert. Die Referenz wird über die ID, dann über
// den exakten Namen und zuletzt über den Teilstring-Abgleich gesucht.
func (s *ManualEntryService) Add(ctx context.Context, userID string, entry ManualEntry) (*models.BloodMarker, error) {
	name := strings.TrimSpace(entry.MarkerName)
	if userID == "" || (name == "" && entry.ReferenceID == "") {
		return nil, fmt.Errorf("%w: marker_name or reference_id is required", ErrInvalidInput)
	}
	if math.IsNaN(entry.Value) || math.IsInf(entry.Value, 0) {
		return nil, fmt.Errorf("%w: value must be a number", ErrInvalidInput)
	}

	log := s.Logger.With(zap.String("user_id", userID))
	gender := userGender(ctx, s.Profiles, userID, log)

	catalog, err := s.Catalog.References(ctx)
	if err != nil {
		return nil, err
	}

	var ref *models.ReferenceEntry
	if entry.ReferenceID != "" {
		ref = FindReferenceByID(entry.ReferenceID, catalog)
		if ref == nil {
			return nil, fmt.Errorf("%w: unknown reference %q", ErrInvalidInput, entry.ReferenceID)
		}
	}
	if ref == nil {
		ref = FindReferenceByName(name, gender, catalog)
	}
	if ref == nil {
		ref = MatchReference(name, gender, catalog)
	}
	if name == "" {
		name = ref.MarkerName
	}

	now := s.clock()
	m := classifyMarker(s.Classifier, name, entry.Value, strings.TrimSpace(entry.Unit), ref, nil, nil)
	m.UserID = userID
	m.Source = models.SourceManual
	m.TestDate = parseTestDate(entry.TestDate, now)

	if err := s.Markers.Create(ctx, &m); err != nil {
		log.Error("Manueller Messwert konnte nicht gespeichert werden", zap.String("marker", name), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}
	markersPersistedTotal.WithLabelValues(models.SourceManual).Inc()

	if err := s.Events.PublishMarkersChanged(ctx, events.MarkersChanged{
		UserID:      userID,
		Source:      models.SourceManual,
		MarkerCount: 1,
		OccurredAt:  now,
	}); err != nil {
		log.Warn("MarkersChanged-Event konnte nicht veröffentlicht werden", zap.Error(err))
	}

	log.Info("Manueller Messwert gespeichert", zap.String("marker", m.MarkerName), zap.String("status", string(m.Status)))
	return &m, nil
}

func (s *ManualEntryService) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}
