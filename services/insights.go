package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"celluiq/events"
	"celluiq/models"
	"celluiq/storage"
)

// DashboardCacheKey ist der Cache-Schlüssel der Dashboard-Zusammenfassung eines Nutzers.
func DashboardCacheKey(userID string) string {
	return "dashboard:" + userID
}

// UserCacheKeys liefert die abgeleiteten Ansichten, die nach neuen Messwerten veralten.
func UserCacheKeys(evt events.MarkersChanged) []string {
	return []string{DashboardCacheKey(evt.UserID)}
}

// InsightService berechnet die abgeleiteten Ansichten eines Nutzers: Dashboard,
// Empfehlungen, Routine- und Supplement-Vorschläge.
type InsightService struct {
	Markers   MarkerReader
	Catalog   CatalogProvider
	Profiles  ProfileReader
	Nutrition NutritionSource
	Cache     JSONCache
	TTL       time.Duration
	Logger    *zap.Logger
}

func NewInsightService(markers MarkerReader, catalog CatalogProvider, profiles ProfileReader, nutrition NutritionSource, cache JSONCache, ttl time.Duration, logger *zap.Logger) *InsightService {
	return &InsightService{
		Markers:   markers,
		Catalog:   catalog,
		Profiles:  profiles,
		Nutrition: nutrition,
		Cache:     cache,
		TTL:       ttl,
		Logger:    logger,
	}
}

// ListMarkers gibt alle Messwerte des Nutzers in der gewünschten Sortierung zurück.
func (s *InsightService) ListMarkers(ctx context.Context, userID, sortKey string) ([]models.BloodMarker, error) {
	markers, err := s.Markers.ListByUser(ctx, userID, sortKey)
	if err != nil {
		return nil, fmt.Errorf("load markers: %w", err)
	}
	return markers, nil
}

// Latest gibt den neuesten Wert je Marker zurück.
func (s *InsightService) Latest(ctx context.Context, userID string) ([]models.BloodMarker, error) {
	markers, err := s.ListMarkers(ctx, userID, "-test_date")
	if err != nil {
		return nil, err
	}
	return LatestByMarker(markers), nil
}

// Dashboard liefert die Zusammenfassung aus dem Cache oder berechnet sie neu.
func (s *InsightService) Dashboard(ctx context.Context, userID string) (*DashboardSummary, error) {
	key := DashboardCacheKey(userID)
	if s.Cache != nil {
		var cached DashboardSummary
		err := s.Cache.Get(ctx, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, storage.ErrCacheMiss) {
			s.Logger.Warn("Dashboard-Cache nicht lesbar", zap.String("user_id", userID), zap.Error(err))
		}
	}

	markers, err := s.ListMarkers(ctx, userID, "-test_date")
	if err != nil {
		return nil, err
	}
	summary := Summarize(markers)

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, key, summary, s.TTL); err != nil {
			s.Logger.Warn("Dashboard konnte nicht gecacht werden", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return &summary, nil
}

// Recommendations liefert die vollständige, nicht gekürzte Empfehlungsliste.
func (s *InsightService) Recommendations(ctx context.Context, userID string) ([]Recommendation, error) {
	markers, catalog, gender, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Recommend(markers, gender, catalog), nil
}

func (s *InsightService) Routine(ctx context.Context, userID string) ([]RoutineSuggestion, error) {
	markers, catalog, gender, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return RoutineSuggestions(markers, gender, catalog), nil
}

func (s *InsightService) Supplements(ctx context.Context, userID string) (*SupplementSuggestions, error) {
	gender := userGender(ctx, s.Profiles, userID, s.Logger)
	markers, err := s.ListMarkers(ctx, userID, "-test_date")
	if err != nil {
		return nil, err
	}
	supplements, err := s.Nutrition.Supplements(ctx)
	if err != nil {
		return nil, fmt.Errorf("load supplements: %w", err)
	}
	foods, err := s.Nutrition.Foods(ctx)
	if err != nil {
		return nil, fmt.Errorf("load foods: %w", err)
	}
	out := SuggestSupplements(markers, gender, supplements, foods)
	return &out, nil
}

func (s *InsightService) load(ctx context.Context, userID string) ([]models.BloodMarker, []models.ReferenceEntry, models.Gender, error) {
	gender := userGender(ctx, s.Profiles, userID, s.Logger)
	markers, err := s.ListMarkers(ctx, userID, "-test_date")
	if err != nil {
		return nil, nil, gender, err
	}
	catalog, err := s.Catalog.References(ctx)
	if err != nil {
		return nil, nil, gender, err
	}
	return markers, catalog, gender, nil
}
