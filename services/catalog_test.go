package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"celluiq/models"
	"celluiq/storage"
)

type countingSource struct {
	calls   atomic.Int32
	entries []models.ReferenceEntry
	err     error
	delay   time.Duration
}

func (s *countingSource) List(context.Context) ([]models.ReferenceEntry, error) {
	s.calls.Add(1)
	time.Sleep(s.delay)
	return s.entries, s.err
}

func newTestCache(t *testing.T) *storage.Cache {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return storage.NewCache(rdb, storage.WithPrefix("test:"))
}

func TestCatalogService_CachesReferences(t *testing.T) {
	source := &countingSource{entries: testCatalog()}
	svc := NewCatalogService(source, newTestCache(t), time.Minute, zap.NewNop())
	ctx := context.Background()

	first, err := svc.References(ctx)
	require.NoError(t, err)
	second, err := svc.References(ctx)
	require.NoError(t, err)

	assert.Equal(t, int32(1), source.calls.Load())
	assert.Equal(t, len(first), len(second))
	assert.Equal(t, "Vitamin D", second[0].MarkerName)
	assert.Equal(t, 80.0, *second[0].CelluiqRangeMax)

	require.NoError(t, svc.Invalidate(ctx))
	_, err = svc.References(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), source.calls.Load())
}

func TestCatalogService_CollapsesConcurrentLoads(t *testing.T) {
	source := &countingSource{entries: testCatalog(), delay: 50 * time.Millisecond}
	svc := NewCatalogService(source, nil, 0, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.References(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Less(t, source.calls.Load(), int32(10))
}

func TestCatalogService_SourceError(t *testing.T) {
	source := &countingSource{err: errors.New("db down")}
	svc := NewCatalogService(source, nil, 0, zap.NewNop())

	_, err := svc.References(context.Background())
	assert.ErrorContains(t, err, "db down")

	n, err := svc.Refresh(context.Background())
	assert.Error(t, err)
	assert.Zero(t, n)
}
