// Package queue реализует очередь "взять номер" для кассы
package queue

import (
	"sync"

	"restaurant_service/internal/models"
)

const firstNumber = 1

// Сообщения для клиента, когда вызывать некого
const (
	msgQueueEmpty = "目前沒有顧客在隊列中"
	msgNoCurrent  = "目前沒有叫號號碼"
)

// Queue хранит ожидающие номера, счетчик выдачи и текущий вызванный номер.
// Все три поля защищены одним мьютексом.
type Queue struct {
	mu         sync.Mutex
	pending    []int // Ожидающие номера, голова - первый элемент
	next       int   // Следующий выдаваемый номер
	current    int   // Последний вызванный номер
	hasCurrent bool  // Был ли вызов после старта или сброса
	metrics    *Metrics
}

// New создает пустую очередь, первый выдаваемый номер - 1
func New() *Queue {
	return &Queue{
		pending: []int{},
		next:    firstNumber,
		metrics: NewMetrics(),
	}
}

// Enqueue выдает следующий номер и ставит его в конец очереди
func (q *Queue) Enqueue() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	number := q.next
	q.pending = append(q.pending, number)
	q.next++

	q.metrics.IssuedTotal.Inc()
	q.metrics.Length.Set(float64(len(q.pending)))
	return number
}

// Dequeue снимает номер с головы очереди и делает его текущим.
// На пустой очереди возвращает ошибку "не найдено" и ничего не меняет.
func (q *Queue) Dequeue() (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return 0, models.NotFound(msgQueueEmpty)
	}

	number := q.pending[0]
	q.pending = q.pending[1:]
	q.current = number
	q.hasCurrent = true

	q.metrics.CalledTotal.Inc()
	q.metrics.Length.Set(float64(len(q.pending)))
	return number, nil
}

// Current возвращает последний вызванный номер
func (q *Queue) Current() (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.hasCurrent {
		return 0, models.NotFound(msgNoCurrent)
	}
	return q.current, nil
}

// Len возвращает количество ожидающих номеров
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Snapshot возвращает копию ожидающих номеров от головы к хвосту
func (q *Queue) Snapshot() []int {
	q.mu.Lock()
	defer q.mu.Unlock()

	snapshot := make([]int, len(q.pending))
	copy(snapshot, q.pending)
	return snapshot
}

// Reset очищает очередь, сбрасывает счетчик на 1 и забывает текущий номер
func (q *Queue) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.pending = []int{}
	q.next = firstNumber
	q.current = 0
	q.hasCurrent = false

	q.metrics.ResetsTotal.Inc()
	q.metrics.Length.Set(0)
}
