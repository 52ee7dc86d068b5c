package database

import (
	"context"
	"sync"
	"testing"

	"restaurant_service/internal/interfaces"
	"restaurant_service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOrder() *models.Order {
	return &models.Order{
		Items: []models.OrderItem{
			{ItemID: 1, Quantity: 2, Price: 10.5},
			{ItemID: 3, Quantity: 1, Price: 4},
		},
		TotalPrice: 25,
		OrderTime:  "2024-05-01T12:00:00",
	}
}

// testStore проверяет поведение, общее для всех хранилищ заказов
func testStore(t *testing.T, store interfaces.Database) {
	ctx := context.Background()

	t.Run("SaveAndGet", func(t *testing.T) {
		order := sampleOrder()
		id, err := store.SaveOrder(ctx, order)
		require.NoError(t, err)
		assert.Positive(t, id)

		got, err := store.GetOrder(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, order.OrderTime, got.OrderTime)
		assert.Equal(t, order.TotalPrice, got.TotalPrice)
		assert.Equal(t, order.Items, got.Items)
	})

	t.Run("EmptyItems", func(t *testing.T) {
		order := &models.Order{Items: []models.OrderItem{}, TotalPrice: 0, OrderTime: "anything"}
		id, err := store.SaveOrder(ctx, order)
		require.NoError(t, err)

		got, err := store.GetOrder(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, got.Items)
		assert.Equal(t, "anything", got.OrderTime)
	})

	t.Run("IDsIncrease", func(t *testing.T) {
		first, err := store.SaveOrder(ctx, sampleOrder())
		require.NoError(t, err)
		second, err := store.SaveOrder(ctx, sampleOrder())
		require.NoError(t, err)
		assert.Greater(t, second, first)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := store.GetOrder(ctx, 1<<40)
		require.Error(t, err)
		assert.True(t, models.IsNotFound(err))
	})

	t.Run("RecentOrdersNewestFirst", func(t *testing.T) {
		first, err := store.SaveOrder(ctx, sampleOrder())
		require.NoError(t, err)
		second, err := store.SaveOrder(ctx, sampleOrder())
		require.NoError(t, err)

		orders, err := store.GetRecentOrders(ctx, 2)
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, second, orders[0].ID)
		assert.Equal(t, first, orders[1].ID)
		assert.Len(t, orders[0].Items, 2)
	})

	t.Run("ConcurrentSaves", func(t *testing.T) {
		const n = 10
		var wg sync.WaitGroup
		ids := make(chan int64, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				id, err := store.SaveOrder(ctx, sampleOrder())
				assert.NoError(t, err)
				ids <- id
			}()
		}
		wg.Wait()
		close(ids)

		seen := make(map[int64]bool)
		for id := range ids {
			assert.False(t, seen[id], "повторный идентификатор %d", id)
			seen[id] = true
		}
		assert.Len(t, seen, n)
	})
}
