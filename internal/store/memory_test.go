package store

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/models"
)

func TestMemoryInsertOrderIsUniquePerSession(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var wg sync.WaitGroup
	results := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, created, err := m.InsertOrder(ctx, models.Order{SessionID: "cs_1", Status: models.StatusPaid})
			assert.NoError(t, err)
			results <- created
		}()
	}
	wg.Wait()
	close(results)

	createdCount := 0
	for created := range results {
		if created {
			createdCount++
		}
	}
	assert.Equal(t, 1, createdCount)

	_, total, err := m.List(ctx, ListFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestMemorySetRelayOnce(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	order, _, err := m.InsertOrder(ctx, models.Order{SessionID: "cs_1"})
	require.NoError(t, err)

	updated, err := m.SetRelay(ctx, order.ID, models.Relay{ID: "R1", Name: "Shop", Address: "1 rue"})
	require.NoError(t, err)
	require.NotNil(t, updated.Relay)

	_, err = m.SetRelay(ctx, order.ID, models.Relay{ID: "R2"})
	assert.ErrorIs(t, err, ErrRelayAlreadySet)
}

func TestMemoryUpdateStatusIsConditional(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	order, _, err := m.InsertOrder(ctx, models.Order{SessionID: "cs_1", Status: models.StatusPaid})
	require.NoError(t, err)

	_, err = m.UpdateStatus(ctx, order.ID, models.StatusPaid, models.StatusShipped)
	require.NoError(t, err)

	_, err = m.UpdateStatus(ctx, order.ID, models.StatusPaid, models.StatusCancelled)
	assert.ErrorIs(t, err, ErrStatusChanged)
}

func TestMemoryListFiltersAndPaginates(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, sid := range []string{"cs_1", "cs_2", "cs_3"} {
		_, _, err := m.InsertOrder(ctx, models.Order{SessionID: sid, UserID: "u1", Status: models.StatusPaid, CreatedAt: base.Add(time.Duration(i) * time.Hour)})
		require.NoError(t, err)
	}
	_, _, err := m.InsertOrder(ctx, models.Order{SessionID: "cs_4", UserID: "u2", Status: models.StatusPending, CreatedAt: base})
	require.NoError(t, err)

	page, total, err := m.List(ctx, ListFilter{UserID: "u1", Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, "cs_3", page[0].SessionID)

	page, _, err = m.List(ctx, ListFilter{UserID: "u1", Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "cs_1", page[0].SessionID)

	pending, total, err := m.List(ctx, ListFilter{Status: models.StatusPending})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "u2", pending[0].UserID)
}

func TestMemoryListPageBeyondRange(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_, _, err := m.InsertOrder(ctx, models.Order{SessionID: "cs_1", UserID: "u1"})
	require.NoError(t, err)

	page, total, err := m.List(ctx, ListFilter{UserID: "u1", Page: math.MaxInt64, Limit: 100})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Empty(t, page)
}

func TestListFilterSkipSaturates(t *testing.T) {
	assert.EqualValues(t, 0, ListFilter{Page: 0, Limit: 10}.skip())
	assert.EqualValues(t, 20, ListFilter{Page: 3, Limit: 10}.skip())
	assert.EqualValues(t, int64(math.MaxInt64), ListFilter{Page: math.MaxInt64, Limit: 100}.skip())
}
