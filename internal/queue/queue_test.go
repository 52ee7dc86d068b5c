package queue

import (
	"sort"
	"sync"
	"testing"

	"restaurant_service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_EnqueueAssignsSequentialNumbers(t *testing.T) {
	q := New()

	for want := 1; want <= 5; want++ {
		assert.Equal(t, want, q.Enqueue())
	}

	assert.Equal(t, []int{1, 2, 3, 4, 5}, q.Snapshot())
	assert.Equal(t, 5, q.Len())
}

func TestQueue_DequeueIsFIFO(t *testing.T) {
	q := New()
	q.Enqueue()
	q.Enqueue()

	number, err := q.Dequeue()
	require.NoError(t, err)
	assert.Equal(t, 1, number)
	assert.Equal(t, []int{2}, q.Snapshot())

	current, err := q.Current()
	require.NoError(t, err)
	assert.Equal(t, 1, current)

	number, err = q.Dequeue()
	require.NoError(t, err)
	assert.Equal(t, 2, number)
	assert.Empty(t, q.Snapshot())
}

func TestQueue_DequeueEmpty(t *testing.T) {
	t.Run("FreshQueue", func(t *testing.T) {
		q := New()

		_, err := q.Dequeue()
		require.Error(t, err)
		assert.True(t, models.IsNotFound(err))
		assert.Equal(t, "目前沒有顧客在隊列中", err.Error())
	})

	// Неудачный вызов не трогает счетчик и текущий номер
	t.Run("StateUnchanged", func(t *testing.T) {
		q := New()
		q.Enqueue()
		_, err := q.Dequeue()
		require.NoError(t, err)

		_, err = q.Dequeue()
		require.Error(t, err)

		current, err := q.Current()
		require.NoError(t, err)
		assert.Equal(t, 1, current)
		assert.Equal(t, 2, q.Enqueue(), "счетчик не должен сдвинуться")
	})
}

func TestQueue_CurrentBeforeAnyCall(t *testing.T) {
	q := New()
	q.Enqueue()

	_, err := q.Current()
	require.Error(t, err)
	assert.True(t, models.IsNotFound(err))
	assert.Equal(t, "目前沒有叫號號碼", err.Error())
}

func TestQueue_Reset(t *testing.T) {
	q := New()
	q.Enqueue()
	q.Enqueue()
	q.Enqueue()
	_, err := q.Dequeue()
	require.NoError(t, err)

	q.Reset()

	assert.Equal(t, []int{}, q.Snapshot())
	assert.Equal(t, 0, q.Len())

	_, err = q.Current()
	assert.True(t, models.IsNotFound(err))

	assert.Equal(t, 1, q.Enqueue(), "после сброса нумерация начинается с 1")
}

func TestQueue_SnapshotIsCopy(t *testing.T) {
	q := New()
	q.Enqueue()
	q.Enqueue()

	snapshot := q.Snapshot()
	snapshot[0] = 100

	assert.Equal(t, []int{1, 2}, q.Snapshot())
}

func TestQueue_SnapshotNeverNil(t *testing.T) {
	q := New()
	assert.NotNil(t, q.Snapshot())

	q.Enqueue()
	_, _ = q.Dequeue()
	assert.NotNil(t, q.Snapshot())
}

func TestQueue_ConcurrentEnqueue(t *testing.T) {
	q := New()

	const workers = 8
	const perWorker = 50

	var wg sync.WaitGroup
	results := make(chan int, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				results <- q.Enqueue()
			}
		}()
	}
	wg.Wait()
	close(results)

	numbers := make([]int, 0, workers*perWorker)
	for n := range results {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	// Номера не повторяются и идут без пропусков
	for i, n := range numbers {
		assert.Equal(t, i+1, n)
	}

	// Очередь хранит номера в порядке выдачи
	snapshot := q.Snapshot()
	assert.True(t, sort.IntsAreSorted(snapshot))
	assert.Len(t, snapshot, workers*perWorker)
}

func TestQueue_ConcurrentEnqueueDequeue(t *testing.T) {
	q := New()
	for i := 0; i < 100; i++ {
		q.Enqueue()
	}

	var wg sync.WaitGroup
	called := make(chan int, 100)
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				n, err := q.Dequeue()
				if err != nil {
					return
				}
				called <- n
			}
		}()
	}
	wg.Wait()
	close(called)

	seen := make(map[int]bool)
	for n := range called {
		assert.False(t, seen[n], "номер %d вызван дважды", n)
		seen[n] = true
	}
	assert.Len(t, seen, 100)
	assert.Equal(t, 0, q.Len())
}
