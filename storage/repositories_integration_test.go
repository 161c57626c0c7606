//go:build integration

package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"celluiq/models"
)

type RepositorySuite struct {
	suite.Suite
	container *tcpostgres.PostgresContainer
	db        *gorm.DB
}

func (s *RepositorySuite) SetupSuite() {
	if testing.Short() {
		s.T().Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("celluiq"),
		tcpostgres.WithUsername("celluiq"),
		tcpostgres.WithPassword("celluiq"),
		tcpostgres.BasicWaitStrategies(),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := Open(dsn, zap.NewNop())
	s.Require().NoError(err)
	s.Require().NoError(AutoMigrate(db))
	s.db = db
}

func (s *RepositorySuite) TearDownSuite() {
	if s.container != nil {
		_ = testcontainers.TerminateContainer(s.container)
	}
}

func (s *RepositorySuite) SetupTest() {
	for _, table := range []string{"blood_markers", "blood_work", "blood_markers_reference", "user_profiles", "shopping_items", "foods_reference"} {
		s.Require().NoError(s.db.Exec("DELETE FROM " + table).Error)
	}
}

func ptr(f float64) *float64 { return &f }

func (s *RepositorySuite) TestReferences_OrderAndCount() {
	ctx := context.Background()
	repo := NewReferenceRepository(s.db)

	entries := []models.ReferenceEntry{
		{SortOrder: 2, MarkerName: "Ferritin", Gender: models.GenderBoth, Unit: "ng/mL", Category: models.CategoryMinerals},
		{SortOrder: 1, MarkerName: "Vitamin D", Gender: models.GenderBoth, Unit: "ng/mL", Category: models.CategoryVitamins, CelluiqRangeMin: ptr(30), CelluiqRangeMax: ptr(80)},
		{SortOrder: 3, MarkerName: "Glucose", Gender: models.GenderBoth, Unit: "mg/dL", Category: models.CategoryMetabolic},
	}
	s.Require().NoError(repo.CreateBatch(ctx, entries, 50))

	list, err := repo.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal("Vitamin D", list[0].MarkerName)
	s.Equal(80.0, *list[0].CelluiqRangeMax)
	s.NotEmpty(list[0].ID)

	count, err := repo.Count(ctx)
	s.Require().NoError(err)
	s.EqualValues(3, count)
}

func (s *RepositorySuite) TestMarkers_BulkCreateAndList() {
	ctx := context.Background()
	repo := NewMarkerRepository(s.db)

	older := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	markers := []models.BloodMarker{
		{UserID: "u1", MarkerName: "Vitamin D", Value: 24, Unit: "ng/mL", TestDate: older, Status: models.StatusSuboptimal, Source: models.SourceUpload},
		{UserID: "u1", MarkerName: "Vitamin D", Value: 42, Unit: "ng/mL", TestDate: newer, Status: models.StatusOptimal, Source: models.SourceUpload},
		{UserID: "u2", MarkerName: "Ferritin", Value: 80, Unit: "ng/mL", TestDate: newer, Status: models.StatusOptimal, Source: models.SourceManual},
	}
	s.Require().NoError(repo.BulkCreate(ctx, markers))

	list, err := repo.ListByUser(ctx, "u1", "")
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(42.0, list[0].Value)

	_, err = repo.ListByUser(ctx, "u1", "value; drop table")
	s.Error(err)
}

func (s *RepositorySuite) TestBloodWork_Pending() {
	ctx := context.Background()
	repo := NewBloodWorkRepository(s.db)

	bw := &models.BloodWork{UserID: "u1", StorageKey: "u1/1.pdf", Status: models.BloodWorkPending}
	s.Require().NoError(repo.Create(ctx, bw))
	s.NotEmpty(bw.ID)

	pending, err := repo.ListPending(ctx, 10)
	s.Require().NoError(err)
	s.Len(pending, 1)

	bw.Status = models.BloodWorkProcessed
	s.Require().NoError(repo.Save(ctx, bw))
	pending, err = repo.ListPending(ctx, 10)
	s.Require().NoError(err)
	s.Empty(pending)

	_, err = repo.Get(ctx, "u2", bw.ID)
	s.ErrorIs(err, ErrNotFound)
}

func (s *RepositorySuite) TestProfiles_Upsert() {
	ctx := context.Background()
	repo := NewProfileRepository(s.db)

	s.Require().NoError(repo.Upsert(ctx, &models.UserProfile{ID: "u1", Gender: models.GenderFemale}))
	s.Require().NoError(repo.Upsert(ctx, &models.UserProfile{ID: "u1", Gender: models.GenderMale, FullName: "Max Muster"}))

	p, err := repo.Get(ctx, "u1")
	s.Require().NoError(err)
	s.Equal(models.GenderMale, p.Gender)
	s.Equal("Max Muster", p.FullName)

	_, err = repo.Get(ctx, "nobody")
	s.ErrorIs(err, ErrNotFound)
}

func (s *RepositorySuite) TestShopping_ReplaceAndCheck() {
	ctx := context.Background()
	repo := NewShoppingRepository(s.db)

	s.Require().NoError(repo.Replace(ctx, "u1", []models.ShoppingItem{{UserID: "u1", Name: "Lachs"}}))
	s.Require().NoError(repo.Replace(ctx, "u1", []models.ShoppingItem{{UserID: "u1", Name: "Spinat"}, {UserID: "u1", Name: "Eier"}}))

	items, err := repo.ListByUser(ctx, "u1")
	s.Require().NoError(err)
	s.Require().Len(items, 2)
	s.Equal("Spinat", items[0].Name)

	item, err := repo.SetChecked(ctx, "u1", items[0].ID, true)
	s.Require().NoError(err)
	s.True(item.Checked)

	_, err = repo.SetChecked(ctx, "u2", items[0].ID, true)
	s.ErrorIs(err, ErrNotFound)
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositorySuite))
}
