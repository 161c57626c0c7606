package main

import (
	"context"

	"go.uber.org/zap"

	"celluiq/models"
)

type nutritionSeeder interface {
	SeedFoods(ctx context.Context, foods []models.FoodReference) error
	SeedSupplements(ctx context.Context, items []models.SupplementReference) error
}

func seedDefaultFoods(ctx context.Context, repo nutritionSeeder, logger *zap.Logger) {
	foods := []models.FoodReference{
		{FoodName: "Lachs", Category: "protein", Gender: models.GenderBoth, InfluencedMarkers: "Vitamin D, Omega-3 Index, Triglycerides, hs-CRP", DailyDosage: "150 g", WeeklyDosage: "2x 150 g"},
		{FoodName: "Eier", Category: "protein", Gender: models.GenderBoth, InfluencedMarkers: "Vitamin D, Vitamin B12, Choline", DailyDosage: "2 Stück", WeeklyDosage: "10 Stück"},
		{FoodName: "Rinderleber", Category: "protein", Gender: models.GenderBoth, InfluencedMarkers: "Ferritin, Iron, Vitamin B12, Folate", WeeklyDosage: "100 g"},
		{FoodName: "Rindfleisch", Category: "protein", Gender: models.GenderBoth, InfluencedMarkers: "Iron, Ferritin, Zinc, Vitamin B12", WeeklyDosage: "2x 200 g"},
		{FoodName: "Austern", Category: "protein", Gender: models.GenderMale, InfluencedMarkers: "Zinc, Total Testosterone", WeeklyDosage: "6 Stück"},
		{FoodName: "Spinat", Category: "vegetables", Gender: models.GenderBoth, InfluencedMarkers: "Folate, Magnesium, Homocysteine", DailyDosage: "100 g"},
		{FoodName: "Brokkoli", Category: "vegetables", Gender: models.GenderBoth, InfluencedMarkers: "Folate, Estradiol, Calcium", DailyDosage: "150 g"},
		{FoodName: "Linsen", Category: "legumes", Gender: models.GenderBoth, InfluencedMarkers: "Iron, Folate, Glucose, LDL Cholesterol", WeeklyDosage: "3x 80 g"},
		{FoodName: "Kürbiskerne", Category: "nuts_seeds", Gender: models.GenderBoth, InfluencedMarkers: "Magnesium, Zinc, Iron", DailyDosage: "30 g"},
		{FoodName: "Paranüsse", Category: "nuts_seeds", Gender: models.GenderBoth, InfluencedMarkers: "Selenium, Free T3, Thyroid Antibodies", DailyDosage: "2 Stück"},
		{FoodName: "Mandeln", Category: "nuts_seeds", Gender: models.GenderBoth, InfluencedMarkers: "Magnesium, LDL Cholesterol", DailyDosage: "30 g"},
		{FoodName: "Haferflocken", Category: "grains", Gender: models.GenderBoth, InfluencedMarkers: "LDL Cholesterol, Total Cholesterol, Glucose", DailyDosage: "60 g"},
		{FoodName: "Olivenöl", Category: "fats", Gender: models.GenderBoth, InfluencedMarkers: "HDL Cholesterol, LDL Cholesterol, hs-CRP", DailyDosage: "2 EL"},
		{FoodName: "Heidelbeeren", Category: "fruits", Gender: models.GenderBoth, InfluencedMarkers: "hs-CRP, Glucose", DailyDosage: "125 g"},
		{FoodName: "Sauerkirschen", Category: "fruits", Gender: models.GenderBoth, InfluencedMarkers: "Uric Acid, hs-CRP", WeeklyDosage: "3x 150 g"},
		{FoodName: "Kurkuma", Category: "spices", Gender: models.GenderBoth, InfluencedMarkers: "hs-CRP, ALT", DailyDosage: "1 TL"},
		{FoodName: "Sardinen", Category: "protein", Gender: models.GenderBoth, InfluencedMarkers: "Vitamin D, Calcium, Omega-3 Index", WeeklyDosage: "2 Dosen"},
		{FoodName: "Artischocken", Category: "vegetables", Gender: models.GenderBoth, InfluencedMarkers: "ALT, GGT, LDL Cholesterol", WeeklyDosage: "2 Stück"},
	}
	if err := repo.SeedFoods(ctx, foods); err != nil {
		logger.Warn("Failed to seed default foods", zap.Error(err))
		return
	}
	logger.Info("Default foods seeded.", zap.Int("count", len(foods)))
}

func seedDefaultSupplements(ctx context.Context, repo nutritionSeeder, logger *zap.Logger) {
	supplements := []models.SupplementReference{
		{Name: "Vitamin D3 + K2", Category: "vitamins", Gender: models.GenderBoth, InfluencedMarkers: "Vitamin D, Calcium, PTH", Dosage: "2000-4000 IE", Form: "Tropfen"},
		{Name: "Methylcobalamin", Category: "vitamins", Gender: models.GenderBoth, InfluencedMarkers: "Vitamin B12, Homocysteine, MMA", Dosage: "1000 µg", Form: "Lutschtablette"},
		{Name: "5-MTHF", Category: "vitamins", Gender: models.GenderBoth, InfluencedMarkers: "Folate, Homocysteine", Dosage: "400 µg", Form: "Kapsel"},
		{Name: "B-Komplex aktiv", Category: "vitamins", Gender: models.GenderBoth, InfluencedMarkers: "Vitamin B6, Vitamin B12, Folate, Homocysteine", Dosage: "1 Kapsel", Form: "Kapsel"},
		{Name: "Eisenbisglycinat", Category: "minerals", Gender: models.GenderBoth, InfluencedMarkers: "Iron, Ferritin, Hemoglobin, Transferrin Saturation", Dosage: "25 mg", Form: "Kapsel"},
		{Name: "Magnesiumglycinat", Category: "minerals", Gender: models.GenderBoth, InfluencedMarkers: "Magnesium", Dosage: "300 mg", Form: "Pulver"},
		{Name: "Zinkbisglycinat", Category: "minerals", Gender: models.GenderBoth, InfluencedMarkers: "Zinc, Total Testosterone", Dosage: "15 mg", Form: "Tablette"},
		{Name: "Selenmethionin", Category: "minerals", Gender: models.GenderBoth, InfluencedMarkers: "Selenium, Free T3, Thyroid Antibodies", Dosage: "100 µg", Form: "Tablette"},
		{Name: "Omega-3 (EPA/DHA)", Category: "fatty_acids", Gender: models.GenderBoth, InfluencedMarkers: "Omega-3 Index, Triglycerides, hs-CRP", Dosage: "2 g", Form: "Öl"},
		{Name: "Ashwagandha", Category: "adaptogens", Gender: models.GenderBoth, InfluencedMarkers: "Cortisol, DHEA-S", Dosage: "600 mg", Form: "Kapsel"},
		{Name: "Inositol", Category: "other", Gender: models.GenderFemale, InfluencedMarkers: "Insulin, HOMA-IR", Dosage: "2-4 g", Form: "Pulver"},
	}
	if err := repo.SeedSupplements(ctx, supplements); err != nil {
		logger.Warn("Failed to seed default supplements", zap.Error(err))
		return
	}
	logger.Info("Default supplements seeded.", zap.Int("count", len(supplements)))
}
