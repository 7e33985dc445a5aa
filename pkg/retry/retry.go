// Package retry реализует экспоненциальный backoff для внешних HTTP API.
//
// Используется для идемпотентных GET запросов к MEXC и DexScreener:
// котировки, exchangeInfo, балансы. Ордера через этот пакет не ходят,
// повтор POST /order при неизвестном исходе может купить дважды.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// Config конфигурация retry-политики.
//
// Задержка между попытками растет экспоненциально:
// delay = min(InitialDelay * Multiplier^attempt + jitter, MaxDelay)
//
// Jitter добавляет случайность чтобы избежать "thundering herd",
// когда несколько воркеров retry'ят одновременно.
type Config struct {
	// MaxRetries - максимальное количество попыток (включая первую).
	// 0 или отрицательное = бесконечные retry (не рекомендуется)
	MaxRetries int

	// InitialDelay - начальная задержка между попытками
	InitialDelay time.Duration

	// MaxDelay - потолок задержки
	MaxDelay time.Duration

	// Multiplier - множитель экспоненциального роста
	Multiplier float64

	// JitterFactor - фактор случайности (0.0 - 1.0)
	JitterFactor float64

	// RetryIf решает, имеет ли смысл повторять после данной ошибки.
	// nil = retry любой ошибки
	RetryIf func(error) bool
}

// ConservativeConfig политика для фоновых опросов бирж.
//
// Цены и статусы символов опрашиваются циклически, поэтому упорствовать
// незачем: не получилось за 3 попытки - следующий цикл попробует снова.
//
// - 3 попытки
// - Задержки: 500ms, 1s (+ jitter)
func ConservativeConfig() Config {
	return Config{
		MaxRetries:   3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.2,
	}
}

// validate заполняет нулевые поля значениями по умолчанию
func (c *Config) validate() {
	if c.InitialDelay <= 0 {
		c.InitialDelay = 100 * time.Millisecond
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 30 * time.Second
	}
	if c.Multiplier < 1.0 {
		c.Multiplier = 2.0
	}
	if c.JitterFactor < 0 || c.JitterFactor > 1 {
		c.JitterFactor = 0.1
	}
}

// calculateDelay вычисляет задержку перед попыткой attempt+1
func (c *Config) calculateDelay(attempt int) time.Duration {
	delay := float64(c.InitialDelay) * math.Pow(c.Multiplier, float64(attempt))
	if delay > float64(c.MaxDelay) {
		delay = float64(c.MaxDelay)
	}

	if c.JitterFactor > 0 {
		jitter := delay * c.JitterFactor * (rand.Float64()*2 - 1)
		delay += jitter
		if delay < 0 {
			delay = 0
		}
	}

	return time.Duration(delay)
}

// DoWithResult выполняет операцию с retry и возвращает ее результат.
//
// Контекст проверяется перед каждой попыткой и во время ожидания
// задержки. При исчерпании попыток возвращается последняя ошибка.
//
// Пример:
//
//	price, err := retry.DoWithResult(ctx, func() (float64, error) {
//	    return m.fetchPrice(ctx, symbol)
//	}, m.readRetry)
func DoWithResult[T any](ctx context.Context, operation func() (T, error), cfg Config) (T, error) {
	cfg.validate()

	var lastErr error
	var zero T

	for attempt := 0; cfg.MaxRetries <= 0 || attempt < cfg.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			if lastErr != nil {
				return zero, lastErr
			}
			return zero, ctx.Err()
		default:
		}

		result, err := operation()
		if err == nil {
			return result, nil
		}

		lastErr = err

		if cfg.RetryIf != nil && !cfg.RetryIf(err) {
			return zero, err
		}

		// Последняя попытка - не ждём
		if cfg.MaxRetries > 0 && attempt >= cfg.MaxRetries-1 {
			break
		}

		select {
		case <-time.After(cfg.calculateDelay(attempt)):
		case <-ctx.Done():
			return zero, lastErr
		}
	}

	return zero, lastErr
}

// RetryableError позволяет ошибке самой объявить, можно ли ее повторять
type RetryableError interface {
	error
	Retryable() bool
}

// RetryIfTransient не retry'ит ошибки контекста (cancel, timeout) и
// ошибки, помеченные как permanent. Все остальное считается сетевым
// сбоем и повторяется.
func RetryIfTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var retryable RetryableError
	if errors.As(err, &retryable) {
		return retryable.Retryable()
	}

	return true
}

// PermanentError оборачивает ошибку, повторять которую бессмысленно:
// неизвестный бирже символ, невалидный ответ, отказ по бизнес-правилу.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return e.Err.Error()
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

func (e *PermanentError) Retryable() bool {
	return false
}

// Permanent оборачивает ошибку в PermanentError
//
// Пример:
//
//	if pair == nil {
//	    return 0, retry.Permanent(fmt.Errorf("no usable pair for %s", asset))
//	}
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}
