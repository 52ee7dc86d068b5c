// Package retry предоставляет механизмы повторных попыток для отказоустойчивости
package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// Policy определяет политику повторных попыток
type Policy struct {
	MaxAttempts    int              // Максимальное количество попыток
	InitialBackoff time.Duration    // Начальная задержка между попытками
	MaxBackoff     time.Duration    // Максимальная задержка между попытками
	BackoffFactor  float64          // Фактор увеличения задержки
	Jitter         bool             // Добавлять ли случайную задержку (jitter)
	Retryable      func(error) bool // Решает, стоит ли повторять; nil - IsRetryableError
}

// DefaultPolicy возвращает стандартную политику повторных попыток
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:    3,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
		BackoffFactor:  2.0,
		Jitter:         true,
	}
}

// LightPolicy возвращает легкую политику для быстрых операций (публикация событий)
func LightPolicy() Policy {
	return Policy{
		MaxAttempts:    2,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     1 * time.Second,
		BackoffFactor:  1.5,
		Jitter:         true,
	}
}

// HeavyPolicy возвращает строгую политику для критических операций (создание схемы)
func HeavyPolicy() Policy {
	return Policy{
		MaxAttempts:    5,
		InitialBackoff: 200 * time.Millisecond,
		MaxBackoff:     30 * time.Second,
		BackoffFactor:  2.5,
		Jitter:         true,
	}
}

// ConnectPolicy возвращает политику для подключения к БД при старте.
// После исчерпания попыток ошибка считается фатальной.
func ConnectPolicy() Policy {
	return Policy{
		MaxAttempts:    10,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		BackoffFactor:  1.5,
		Jitter:         false,
	}
}

// RetryableFunc тип функции, которую можно повторять
type RetryableFunc func() error

// ContextRetryableFunc тип функции с контекстом, которую можно повторять
type ContextRetryableFunc func(context.Context) error

// Do выполняет функцию с повторными попытками согласно политике
func Do(policy Policy, fn RetryableFunc) error {
	return DoWithContext(context.Background(), policy, func(_ context.Context) error {
		return fn()
	})
}

// DoWithContext выполняет функцию с контекстом и повторными попытками согласно политике
func DoWithContext(ctx context.Context, policy Policy, fn ContextRetryableFunc) error {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	retryable := policy.Retryable
	if retryable == nil {
		retryable = IsRetryableError
	}

	backoff := policy.InitialBackoff
	var lastErr error

	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		// Проверяем контекст на отмену
		select {
		case <-ctx.Done():
			if lastErr != nil {
				return lastErr
			}
			return ctx.Err()
		default:
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		// Последняя попытка или ошибка, которую бессмысленно повторять
		if attempt == policy.MaxAttempts-1 || !retryable(err) {
			break
		}

		delay := backoff
		if policy.Jitter && backoff > 1 {
			delay += time.Duration(rand.Int63n(int64(backoff / 2)))
		}
		if policy.MaxBackoff > 0 && delay > policy.MaxBackoff {
			delay = policy.MaxBackoff
		}

		// Ждем перед следующей попыткой или пока контекст не будет отменен
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}

		backoff = time.Duration(float64(backoff) * policy.BackoffFactor)
	}

	return lastErr
}

// IsRetryableError проверяет, является ли ошибка повторяемой.
// Отмена и истечение контекста не повторяются.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}
