package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"celluiq/models"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		in       string
		min, max *float64
	}{
		{"30-100", ptr(30), ptr(100)},
		{"0,75 - 1,05", ptr(0.75), ptr(1.05)},
		{"2.2–2.6", ptr(2.2), ptr(2.6)},
		{"<35", nil, ptr(35)},
		{"<= 9", nil, ptr(9)},
		{">90", ptr(90), nil},
		{"-5-5", ptr(-5), ptr(5)},
		{"", nil, nil},
		{"n/a", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			min, max := parseRange(tt.in)
			assert.Equal(t, tt.min, min)
			assert.Equal(t, tt.max, max)
		})
	}
}

func TestMapCategory(t *testing.T) {
	assert.Equal(t, models.CategoryVitamins, mapCategory("Vitamine"))
	assert.Equal(t, models.CategoryThyroid, mapCategory("Schilddrüse"))
	assert.Equal(t, models.CategoryLipids, mapCategory(" lipids "))
	assert.Equal(t, models.CategoryOther, mapCategory("Sonstiges"))
}

func TestParseCatalogCSV(t *testing.T) {
	csv := "\ufeffMarker,Short,Category,Units,Clinical Range,CELLUIQ Range,Gender,Extra\n" +
		"Vitamin D,25-OH-D,Vitamine,ng/mL,30-100,40-80,both,x\n" +
		",,,,,,,\n" +
		"Ferritin,,Mineralstoffe,ng/mL,\"15-150\",,weiblich\n"

	entries, err := ParseCatalogCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	vitd := entries[0]
	assert.Equal(t, "Vitamin D", vitd.MarkerName)
	assert.Equal(t, "25-OH-D", vitd.ShortName)
	assert.Equal(t, models.CategoryVitamins, vitd.Category)
	assert.Equal(t, models.GenderBoth, vitd.Gender)
	assert.Equal(t, ptr(40), vitd.CelluiqRangeMin)
	assert.Equal(t, ptr(100), vitd.ClinicalRangeMax)
	assert.Equal(t, 0, vitd.SortOrder)

	ferritin := entries[1]
	assert.Equal(t, models.GenderFemale, ferritin.Gender)
	assert.Nil(t, ferritin.CelluiqRangeMin)
	assert.Equal(t, ptr(15), ferritin.ClinicalRangeMin)
	assert.Equal(t, 1, ferritin.SortOrder)
}

func TestParseCatalogCSV_Invalid(t *testing.T) {
	_, err := ParseCatalogCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ParseCatalogCSV(strings.NewReader("Name,Unit\nVitamin D,ng/mL\n"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDefaultCatalog_CoversRecommendationMarkers(t *testing.T) {
	entries, err := DefaultCatalog()
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, g := range []models.Gender{models.GenderMale, models.GenderFemale} {
		for _, name := range PriorityMarkers(g) {
			assert.NotNil(t, FindReferenceByName(name, g, entries), "missing %s for %s", name, g)
		}
	}
	for _, related := range relatedMarkers {
		for _, name := range related {
			assert.NotNil(t, FindReferenceByName(name, models.GenderBoth, entries), "missing related %s", name)
		}
	}
}

func TestWriteCatalogCSV_RoundTrip(t *testing.T) {
	entries, err := DefaultCatalog()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCatalogCSV(&buf, entries))

	parsed, err := ParseCatalogCSV(&buf)
	require.NoError(t, err)
	require.Len(t, parsed, len(entries))
	for i := range entries {
		assert.Equal(t, entries[i].MarkerName, parsed[i].MarkerName)
		assert.Equal(t, entries[i].Gender, parsed[i].Gender)
		assert.Equal(t, entries[i].Category, parsed[i].Category)
		assert.Equal(t, entries[i].Unit, parsed[i].Unit)
		assert.Equal(t, entries[i].CelluiqRangeMin, parsed[i].CelluiqRangeMin, entries[i].MarkerName)
		assert.Equal(t, entries[i].CelluiqRangeMax, parsed[i].CelluiqRangeMax, entries[i].MarkerName)
		assert.Equal(t, entries[i].ClinicalRangeMax, parsed[i].ClinicalRangeMax, entries[i].MarkerName)
	}
}

func TestDefaultCatalog_EntriesMatchThemselves(t *testing.T) {
	entries, err := DefaultCatalog()
	require.NoError(t, err)

	for _, e := range entries {
		genders := []models.Gender{e.Gender}
		if e.Gender == models.GenderBoth {
			genders = []models.Gender{models.GenderBoth, models.GenderMale, models.GenderFemale}
		}
		for _, g := range genders {
			for _, q := range []string{e.MarkerName, e.ShortName} {
				if q == "" {
					continue
				}
				got := MatchReference(q, g, entries)
				if assert.NotNil(t, got, "%q (%s)", q, g) {
					assert.Equal(t, e.MarkerName, got.MarkerName, "%q (%s)", q, g)
				}
			}
		}
	}
}

func TestDefaultCatalog_LabSpellings(t *testing.T) {
	entries, err := DefaultCatalog()
	require.NoError(t, err)

	tests := []struct {
		query  string
		gender models.Gender
		want   string
	}{
		{"Ferritin", models.GenderMale, "Ferritin"},
		{"Ferritin", models.GenderFemale, "Ferritin"},
		{"Eisen", models.GenderBoth, "Iron"},
		{"Serum-Eisen", models.GenderMale, "Iron"},
		{"Glucose", models.GenderBoth, "Glucose"},
		{"Glukose", models.GenderBoth, "Glucose"},
		{"Nüchternglukose", models.GenderFemale, "Glucose"},
		{"AST", models.GenderBoth, "AST"},
		{"AST (GOT)", models.GenderBoth, "AST"},
		{"GOT", models.GenderBoth, "AST"},
		{"ALT (GPT)", models.GenderBoth, "ALT"},
		{"GPT", models.GenderBoth, "ALT"},
		{"Gamma-GT", models.GenderBoth, "GGT"},
		{"SHBG", models.GenderMale, "SHBG"},
		{"SHBG", models.GenderFemale, "SHBG"},
		{"Hämoglobin", models.GenderMale, "Hemoglobin"},
		{"Hemoglobin", models.GenderFemale, "Hemoglobin"},
		{"HbA1c", models.GenderMale, "HbA1c"},
		{"Freies T4", models.GenderBoth, "Free T4"},
		{"fT4", models.GenderBoth, "Free T4"},
		{"FT3", models.GenderBoth, "Free T3"},
		{"Reverse T3", models.GenderBoth, "Reverse T3"},
		{"TSH basal", models.GenderBoth, "TSH"},
		{"TPO-AK", models.GenderBoth, "Thyroid Antibodies"},
		{"Anti-TPO", models.GenderBoth, "Thyroid Antibodies"},
		{"Transferrinsättigung", models.GenderBoth, "Transferrin Saturation"},
		{"Transferrin Saturation", models.GenderFemale, "Transferrin Saturation"},
		{"Selen", models.GenderBoth, "Selenium"},
		{"Zink", models.GenderBoth, "Zinc"},
		{"Magnesium", models.GenderBoth, "Magnesium"},
		{"Kalzium", models.GenderBoth, "Calcium"},
		{"Calcium", models.GenderMale, "Calcium"},
		{"25-OH-Vitamin D3", models.GenderBoth, "Vitamin D"},
		{"Vitamin D", models.GenderFemale, "Vitamin D"},
		{"Vitamin B12", models.GenderBoth, "Vitamin B12"},
		{"Folsäure", models.GenderBoth, "Folate"},
		{"LDL-Cholesterin", models.GenderBoth, "LDL Cholesterol"},
		{"HDL-Cholesterin", models.GenderBoth, "HDL Cholesterol"},
		{"Cholesterol", models.GenderBoth, "Total Cholesterol"},
		{"Gesamtcholesterin", models.GenderBoth, "Total Cholesterol"},
		{"Triglyceride", models.GenderBoth, "Triglycerides"},
		{"hs-CRP", models.GenderBoth, "hs-CRP"},
		{"CRP", models.GenderBoth, "hs-CRP"},
		{"Homocystein", models.GenderBoth, "Homocysteine"},
		{"Kreatinin", models.GenderBoth, "Creatinine"},
		{"Creatinine", models.GenderBoth, "Creatinine"},
		{"eGFR", models.GenderBoth, "eGFR"},
		{"Harnsäure", models.GenderBoth, "Uric Acid"},
		{"Hämatokrit", models.GenderFemale, "Hematocrit"},
		{"Erythrozyten", models.GenderBoth, "RBC"},
		{"Leukozyten", models.GenderBoth, "WBC"},
		{"Thrombozyten", models.GenderBoth, "Platelets"},
		{"Testosteron", models.GenderMale, "Total Testosterone"},
		{"Freies Testosteron", models.GenderMale, "Free Testosterone"},
		{"Östradiol", models.GenderFemale, "Estradiol"},
		{"Estradiol", models.GenderMale, "Estradiol"},
		{"PSA", models.GenderMale, "PSA"},
		{"Progesteron", models.GenderFemale, "Progesterone"},
		{"LH", models.GenderFemale, "LH"},
		{"FSH", models.GenderFemale, "FSH"},
		{"AMH", models.GenderFemale, "AMH"},
		{"DHEA-S", models.GenderBoth, "DHEA-S"},
		{"Cortisol", models.GenderBoth, "Cortisol"},
		{"Insulin", models.GenderBoth, "Insulin"},
		{"HOMA-IR", models.GenderBoth, "HOMA-IR"},
		{"Omega-3-Index", models.GenderBoth, "Omega-3 Index"},
		{"Lp(a)", models.GenderBoth, "Lp(a)"},
		{"ApoB", models.GenderBoth, "ApoB"},
		{"MMA", models.GenderBoth, "MMA"},
		{"PTH", models.GenderBoth, "PTH"},
		{"Parathormon", models.GenderBoth, "PTH"},
		{"TIBC", models.GenderBoth, "TIBC"},
		{"BSG", models.GenderBoth, "ESR"},
		{"Bilirubin", models.GenderBoth, "Bilirubin Total"},
		{"Vitamin B6", models.GenderBoth, "Vitamin B6"},
		{"Fasting Glucose", models.GenderBoth, "Glucose"},
		{"Fasting Insulin", models.GenderMale, "Insulin"},
		{"Nüchterninsulin", models.GenderBoth, "Insulin"},
		{"Kalium", models.GenderBoth, ""},
		{"Natrium", models.GenderMale, ""},
		{"Lipase", models.GenderBoth, ""},
		{"MCV", models.GenderBoth, ""},
		{"MCH", models.GenderFemale, ""},
		{"MCHC", models.GenderBoth, ""},
		{"Albumin", models.GenderBoth, ""},
		{"Gesamteiweiß", models.GenderBoth, ""},
		{"Vitamin D (25-OH)", models.GenderBoth, "Vitamin D"},
		{"Holotranscobalamin", models.GenderBoth, ""},
		{"Amylase", models.GenderBoth, ""},
		{"Phosphat", models.GenderBoth, ""},
		{"Ferritin", models.GenderBoth, ""},
		{"AST (GOT)", models.GenderMale, "AST"},
		{"Freies T4", models.GenderMale, "Free T4"},
		{"Glucose", models.GenderMale, "Glucose"},
	}
	for _, tt := range tests {
		t.Run(tt.query+"/"+string(tt.gender), func(t *testing.T) {
			got := MatchReference(tt.query, tt.gender, entries)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.MarkerName)
			assert.True(t, got.Gender.AppliesTo(tt.gender))
		})
	}
}

type memCatalogStore struct {
	count     int64
	batchSize int
	created   []models.ReferenceEntry
	err       error
}

func (s *memCatalogStore) Count(context.Context) (int64, error) { return s.count, s.err }

func (s *memCatalogStore) CreateBatch(_ context.Context, entries []models.ReferenceEntry, batchSize int) error {
	s.batchSize = batchSize
	s.created = append(s.created, entries...)
	return nil
}

func TestSeedCatalog(t *testing.T) {
	ctx := context.Background()

	t.Run("leere Tabelle", func(t *testing.T) {
		store := &memCatalogStore{}
		n, err := SeedCatalog(ctx, store, zap.NewNop())
		require.NoError(t, err)
		assert.Equal(t, len(store.created), n)
		assert.Equal(t, CatalogBatchSize, store.batchSize)
	})

	t.Run("bereits befüllt", func(t *testing.T) {
		store := &memCatalogStore{count: 3}
		n, err := SeedCatalog(ctx, store, zap.NewNop())
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Empty(t, store.created)
	})

	t.Run("Fehler beim Zählen", func(t *testing.T) {
		store := &memCatalogStore{err: errors.New("db down")}
		_, err := SeedCatalog(ctx, store, zap.NewNop())
		assert.Error(t, err)
	})
}
