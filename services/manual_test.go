package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"celluiq/config"
	"celluiq/models"
)

func newManualService(policy string) (*ManualEntryService, *memMarkers, *recordingEvents) {
	markers := &memMarkers{}
	evts := &recordingEvents{}
	profiles := memProfiles{"user-f": models.GenderFemale}
	svc := NewManualEntryService(&config.Config{StatusPolicy: policy}, markers, staticCatalog{entries: testCatalog()}, profiles, evts, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc, markers, evts
}

func TestManualEntry_ByReferenceID(t *testing.T) {
	svc, markers, evts := newManualService("simple")

	m, err := svc.Add(context.Background(), "user-f", ManualEntry{ReferenceID: "ref-vitd", Value: 24, Unit: "ng/mL"})
	require.NoError(t, err)
	assert.Equal(t, "Vitamin D", m.MarkerName)
	assert.Equal(t, models.StatusLow, m.Status)
	assert.Equal(t, models.SourceManual, m.Source)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), m.TestDate)

	require.Len(t, markers.markers, 1)
	require.Len(t, evts.events, 1)
	assert.Equal(t, models.SourceManual, evts.events[0].Source)
}

func TestManualEntry_ByNamePrefersUserGender(t *testing.T) {
	svc, _, _ := newManualService("tiered")

	m, err := svc.Add(context.Background(), "user-f", ManualEntry{MarkerName: "ferritin", Value: 160, Unit: "ng/mL", TestDate: "2025-05-20"})
	require.NoError(t, err)
	require.NotNil(t, m.ReferenceID)
	assert.Equal(t, "ref-ferritin-f", *m.ReferenceID)
	// 10 über 150 bei Breite 135: unter 20 %
	assert.Equal(t, models.StatusSuboptimal, m.Status)
	assert.Equal(t, time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), m.TestDate)
}

func TestManualEntry_ConvertsUnits(t *testing.T) {
	svc, _, _ := newManualService("tiered")

	m, err := svc.Add(context.Background(), "user-f", ManualEntry{MarkerName: "Vitamin D", Value: 124.8, Unit: "nmol/L"})
	require.NoError(t, err)
	assert.Equal(t, 50.0, m.Value)
	assert.Equal(t, "ng/mL", m.Unit)
	assert.True(t, m.UnitConverted)
	assert.Equal(t, models.StatusOptimal, m.Status)
}

func TestManualEntry_UnknownMarkerIsStoredAsOther(t *testing.T) {
	svc, markers, _ := newManualService("tiered")

	m, err := svc.Add(context.Background(), "user-x", ManualEntry{MarkerName: "Lipase", Value: 30, Unit: "U/L"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusOther, m.Status)
	assert.Equal(t, models.CategoryOther, m.Category)
	assert.Len(t, markers.markers, 1)
}

func TestManualEntry_Errors(t *testing.T) {
	svc, markers, _ := newManualService("tiered")
	ctx := context.Background()

	_, err := svc.Add(ctx, "user-f", ManualEntry{Value: 1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Add(ctx, "user-f", ManualEntry{ReferenceID: "missing", Value: 1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	markers.err = errors.New("db down")
	_, err = svc.Add(ctx, "user-f", ManualEntry{MarkerName: "TSH", Value: 1.5})
	assert.ErrorIs(t, err, ErrPersistFailed)
}
