package services

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"celluiq/events"
	"celluiq/models"
	"celluiq/providers"
	"celluiq/storage"
)

type memMarkers struct {
	mu      sync.Mutex
	markers []models.BloodMarker
	err     error
	calls   int
}

func (m *memMarkers) ListByUser(_ context.Context, userID, _ string) ([]models.BloodMarker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.BloodMarker
	for _, mk := range m.markers {
		if mk.UserID == userID {
			out = append(out, mk)
		}
	}
	return out, nil
}

func (m *memMarkers) BulkCreate(_ context.Context, markers []models.BloodMarker) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return m.err
	}
	m.markers = append(m.markers, markers...)
	return nil
}

func (m *memMarkers) Create(_ context.Context, marker *models.BloodMarker) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return m.err
	}
	m.markers = append(m.markers, *marker)
	return nil
}

type memProfiles map[string]models.Gender

func (p memProfiles) Get(_ context.Context, userID string) (*models.UserProfile, error) {
	g, ok := p[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &models.UserProfile{ID: userID, Gender: g}, nil
}

type memNutrition struct {
	foods       []models.FoodReference
	supplements []models.SupplementReference
}

func (n *memNutrition) Foods(context.Context) ([]models.FoodReference, error) { return n.foods, nil }
func (n *memNutrition) Supplements(context.Context) ([]models.SupplementReference, error) {
	return n.supplements, nil
}

type memShopping struct {
	items map[string][]models.ShoppingItem
}

func (s *memShopping) Replace(_ context.Context, userID string, items []models.ShoppingItem) error {
	if s.items == nil {
		s.items = map[string][]models.ShoppingItem{}
	}
	s.items[userID] = items
	return nil
}

type staticCatalog struct {
	entries []models.ReferenceEntry
	err     error
}

func (c staticCatalog) References(context.Context) ([]models.ReferenceEntry, error) {
	return c.entries, c.err
}

type memBloodWork struct {
	mu    sync.Mutex
	saved map[string]models.BloodWork
	err   error
}

func (b *memBloodWork) Create(_ context.Context, bw *models.BloodWork) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	if bw.ID == "" {
		bw.ID = "bw-" + bw.StorageKey
	}
	if b.saved == nil {
		b.saved = map[string]models.BloodWork{}
	}
	b.saved[bw.ID] = *bw
	return nil
}

func (b *memBloodWork) Save(_ context.Context, bw *models.BloodWork) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.saved == nil {
		b.saved = map[string]models.BloodWork{}
	}
	b.saved[bw.ID] = *bw
	return nil
}

func (b *memBloodWork) ListPending(_ context.Context, limit int) ([]models.BloodWork, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []models.BloodWork
	for _, bw := range b.saved {
		if bw.Status == models.BloodWorkPending && len(out) < limit {
			out = append(out, bw)
		}
	}
	return out, nil
}

func (b *memBloodWork) get(id string) models.BloodWork {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saved[id]
}

type mockDocuments struct {
	mock.Mock
}

func (m *mockDocuments) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	return m.Called(ctx, key, data, contentType).Error(0)
}

func (m *mockDocuments) PresignURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) Extract(ctx context.Context, req providers.ExtractionRequest) (*providers.ExtractionResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*providers.ExtractionResult)
	return res, args.Error(1)
}

func (m *mockExtractor) Name() string { return "mock" }

type recordingEvents struct {
	mu     sync.Mutex
	events []events.MarkersChanged
	err    error
}

func (r *recordingEvents) PublishMarkersChanged(_ context.Context, evt events.MarkersChanged) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return r.err
}

func (r *recordingEvents) Close() error { return nil }
