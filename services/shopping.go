package services

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"celluiq/models"
)

// ShoppingListLimit ist die maximale Anzahl Lebensmittel auf der Einkaufsliste.
const ShoppingListLimit = 15

// SelectShoppingFoods wählt Lebensmittel für die Einkaufsliste: nur solche, die für das
// Geschlecht gelten, und wenn es auffällige Marker gibt, nur solche, die einen davon beeinflussen.
func SelectShoppingFoods(markers []models.BloodMarker, gender models.Gender, foods []models.FoodReference, limit int) []models.FoodReference {
	suboptimal := SuboptimalMarkers(LatestByMarker(markers))

	var out []models.FoodReference
	for _, f := range foods {
		if limit > 0 && len(out) == limit {
			break
		}
		if !f.Gender.AppliesTo(gender) {
			continue
		}
		if len(suboptimal) > 0 && len(influencedBy(f.InfluencedMarkers, suboptimal)) == 0 {
			continue
		}
		out = append(out, f)
	}
	return out
}

// ShoppingItemsFromFoods baut die Listeneinträge; benefits sind die beeinflussten auffälligen Marker.
func ShoppingItemsFromFoods(userID string, foods []models.FoodReference, markers []models.BloodMarker) ([]models.ShoppingItem, error) {
	suboptimal := SuboptimalMarkers(LatestByMarker(markers))
	items := make([]models.ShoppingItem, 0, len(foods))
	for _, f := range foods {
		benefits := influencedBy(f.InfluencedMarkers, suboptimal)
		if benefits == nil {
			benefits = []string{}
		}
		raw, err := json.Marshal(benefits)
		if err != nil {
			return nil, err
		}
		category := f.Category
		if category == "" {
			category = models.CategoryOther
		}
		weekly := f.WeeklyDosage
		if weekly == "" {
			weekly = f.DailyDosage
		}
		items = append(items, models.ShoppingItem{
			UserID:              userID,
			Name:                f.FoodName,
			Category:            category,
			Benefits:            raw,
			PriceRange:          "moderate",
			Checked:             false,
			WeeklyAmount:        weekly,
			DailyRecommendation: f.DailyDosage,
		})
	}
	return items, nil
}

// ShoppingService erzeugt und verwaltet die Einkaufsliste.
type ShoppingService struct {
	Markers  MarkerReader
	Profiles ProfileReader
	Foods    NutritionSource
	Items    ShoppingStore
	Logger   *zap.Logger
}

func NewShoppingService(markers MarkerReader, profiles ProfileReader, foods NutritionSource, items ShoppingStore, logger *zap.Logger) *ShoppingService {
	return &ShoppingService{Markers: markers, Profiles: profiles, Foods: foods, Items: items, Logger: logger}
}

// Generate ersetzt die Einkaufsliste des Nutzers anhand seiner aktuellen Werte.
func (s *ShoppingService) Generate(ctx context.Context, userID string) ([]models.ShoppingItem, error) {
	gender := userGender(ctx, s.Profiles, userID, s.Logger)

	markers, err := s.Markers.ListByUser(ctx, userID, "-test_date")
	if err != nil {
		return nil, fmt.Errorf("load markers: %w", err)
	}
	foods, err := s.Foods.Foods(ctx)
	if err != nil {
		return nil, fmt.Errorf("load foods: %w", err)
	}

	selected := SelectShoppingFoods(markers, gender, foods, ShoppingListLimit)
	items, err := ShoppingItemsFromFoods(userID, selected, markers)
	if err != nil {
		return nil, err
	}
	if err := s.Items.Replace(ctx, userID, items); err != nil {
		return nil, fmt.Errorf("replace shopping list: %w", err)
	}
	s.Logger.Info("Einkaufsliste erstellt", zap.String("user_id", userID), zap.Int("items", len(items)))
	return items, nil
}
