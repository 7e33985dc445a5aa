package repository

import (
	"database/sql"
	"errors"
	"time"

	"cryptoalpha/internal/models"
	"cryptoalpha/pkg/utils"
)

// Ошибки репозитория сигналов
var (
	ErrSignalNotFound          = errors.New("signal not found")
	ErrSignalAlreadyDispatched = errors.New("signal already dispatched")
)

// SignalRepository - работа с таблицей ai_signals.
//
// Журнал append-only: сигналы создаются и читаются, единственная мутация -
// одноразовый переход dispatched false -> true через условный UPDATE.
type SignalRepository struct {
	db *sql.DB
}

// NewSignalRepository создает новый экземпляр репозитория
func NewSignalRepository(db *sql.DB) *SignalRepository {
	return &SignalRepository{db: db}
}

// Create сохраняет принятый сигнал (dispatched = false)
func (r *SignalRepository) Create(signal *models.Signal) error {
	query := `
		INSERT INTO ai_signals (generated_at, asset, action, entry_min, entry_max, stop_loss, take_profit, probability, confidence, risk_reward, reasoning, dispatched)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, false)
		RETURNING id`

	if signal.GeneratedAt.IsZero() {
		signal.GeneratedAt = time.Now().UTC()
	}

	err := r.db.QueryRow(
		query,
		signal.GeneratedAt,
		signal.Asset,
		signal.Action,
		signal.EntryMin,
		signal.EntryMax,
		signal.StopLoss,
		signal.TakeProfit,
		signal.Probability,
		signal.Confidence,
		signal.RiskReward,
		signal.Reasoning,
	).Scan(&signal.ID)

	if err != nil {
		return err
	}

	return nil
}

// GetByID возвращает сигнал по ID
func (r *SignalRepository) GetByID(id int) (*models.Signal, error) {
	query := `
		SELECT id, generated_at, asset, action, entry_min, entry_max, stop_loss, take_profit, probability, confidence, risk_reward, reasoning, dispatched
		FROM ai_signals
		WHERE id = $1`

	signal := &models.Signal{}
	err := r.db.QueryRow(query, id).Scan(
		&signal.ID,
		&signal.GeneratedAt,
		&signal.Asset,
		&signal.Action,
		&signal.EntryMin,
		&signal.EntryMax,
		&signal.StopLoss,
		&signal.TakeProfit,
		&signal.Probability,
		&signal.Confidence,
		&signal.RiskReward,
		&signal.Reasoning,
		&signal.Dispatched,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSignalNotFound
		}
		return nil, err
	}

	return signal, nil
}

// GetPending возвращает недиспетчеризованные сигналы (старые первыми)
func (r *SignalRepository) GetPending() ([]*models.Signal, error) {
	query := `
		SELECT id, generated_at, asset, action, entry_min, entry_max, stop_loss, take_profit, probability, confidence, risk_reward, reasoning, dispatched
		FROM ai_signals
		WHERE dispatched = false
		ORDER BY generated_at ASC`

	return r.querySignals(query)
}

// GetRecent возвращает последние N сигналов
func (r *SignalRepository) GetRecent(limit int) ([]*models.Signal, error) {
	query := `
		SELECT id, generated_at, asset, action, entry_min, entry_max, stop_loss, take_profit, probability, confidence, risk_reward, reasoning, dispatched
		FROM ai_signals
		ORDER BY generated_at DESC
		LIMIT $1`

	return r.querySignals(query, limit)
}

// CountPendingToday возвращает количество принятых сегодня (UTC) сигналов,
// которые еще не диспетчеризованы. Используется для дневной квоты приёма.
func (r *SignalRepository) CountPendingToday(now time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM ai_signals
		WHERE generated_at >= $1 AND dispatched = false`

	dayStart := utils.GetDayStartFrom(now)

	var count int
	err := r.db.QueryRow(query, dayStart).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// HasDispatchedSince проверяет, был ли по активу диспетчеризован сигнал
// после указанного момента. Используется Dispatch Gate для окна охлаждения.
func (r *SignalRepository) HasDispatchedSince(asset string, cutoff time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM ai_signals
			WHERE asset = $1 AND dispatched = true AND generated_at >= $2
		)`

	var exists bool
	err := r.db.QueryRow(query, asset, cutoff).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

// MarkDispatched переводит флаг dispatched в true ровно один раз.
//
// Условный UPDATE - единственная точка мутации сигнала: переход выполняется
// атомарно в хранилище, повторный вызов (в том числе от конкурентного
// писателя) получает ErrSignalAlreadyDispatched вместо тихого повтора.
func (r *SignalRepository) MarkDispatched(id int) error {
	query := `
		UPDATE ai_signals
		SET dispatched = true
		WHERE id = $1 AND dispatched = false`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		// Либо сигнала нет, либо флаг уже выставлен - различаем по чтению
		if _, err := r.GetByID(id); errors.Is(err, ErrSignalNotFound) {
			return ErrSignalNotFound
		}
		return ErrSignalAlreadyDispatched
	}

	return nil
}

// Count возвращает общее количество сигналов
func (r *SignalRepository) Count() (int, error) {
	query := `SELECT COUNT(*) FROM ai_signals`

	var count int
	err := r.db.QueryRow(query).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// querySignals выполняет запрос и сканирует список сигналов
func (r *SignalRepository) querySignals(query string, args ...interface{}) ([]*models.Signal, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var signals []*models.Signal
	for rows.Next() {
		signal := &models.Signal{}
		err := rows.Scan(
			&signal.ID,
			&signal.GeneratedAt,
			&signal.Asset,
			&signal.Action,
			&signal.EntryMin,
			&signal.EntryMax,
			&signal.StopLoss,
			&signal.TakeProfit,
			&signal.Probability,
			&signal.Confidence,
			&signal.RiskReward,
			&signal.Reasoning,
			&signal.Dispatched,
		)
		if err != nil {
			return nil, err
		}
		signals = append(signals, signal)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return signals, nil
}
