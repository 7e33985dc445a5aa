package repository

import (
	"database/sql"
	"errors"
	"time"

	"cryptoalpha/internal/models"
)

// Ошибки репозитория позиций
var (
	ErrPositionNotFound    = errors.New("position not found")
	ErrPositionAlreadyOpen = errors.New("open position already exists for asset")
	ErrPositionNotOpen     = errors.New("position is not open")
)

// PositionRepository - работа с таблицей trade_positions.
//
// Инвариант "не более одной OPEN позиции на актив" обеспечивается
// частичным уникальным индексом:
//
//	CREATE UNIQUE INDEX uniq_open_position
//	ON trade_positions (asset) WHERE status = 'OPEN';
//
// ClaimOpen - единственный способ открыть позицию: условная вставка,
// которая атомарно проигрывает при существующей OPEN позиции. Это
// снимает гонку check-then-act между Dispatch Gate и координатором.
type PositionRepository struct {
	db *sql.DB
}

// NewPositionRepository создает новый экземпляр репозитория
func NewPositionRepository(db *sql.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

// ClaimOpen атомарно создает OPEN позицию для актива.
//
// Возвращает ErrPositionAlreadyOpen, если OPEN позиция по активу уже
// существует - в этом случае вызывающий обязан пометить свой ордер
// для ручной сверки, а не дублировать состояние леджера.
func (r *PositionRepository) ClaimOpen(position *models.Position) error {
	query := `
		INSERT INTO trade_positions (asset, symbol, side, quantity, entry_price, stop_loss, take_profit, order_id, status, opened_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (asset) WHERE status = 'OPEN' DO NOTHING
		RETURNING id`

	if position.OpenedAt.IsZero() {
		position.OpenedAt = time.Now().UTC()
	}
	position.Status = models.PositionStatusOpen

	err := r.db.QueryRow(
		query,
		position.Asset,
		position.Symbol,
		position.Side,
		position.Quantity,
		position.EntryPrice,
		position.StopLoss,
		position.TakeProfit,
		position.OrderID,
		position.Status,
		position.OpenedAt,
	).Scan(&position.ID)

	if err != nil {
		// DO NOTHING без вставки = нет строки в RETURNING
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPositionAlreadyOpen
		}
		return err
	}

	return nil
}

// GetByID возвращает позицию по ID
func (r *PositionRepository) GetByID(id int) (*models.Position, error) {
	query := `
		SELECT id, asset, symbol, side, quantity, entry_price, stop_loss, take_profit, exit_price, order_id, status, opened_at, closed_at
		FROM trade_positions
		WHERE id = $1`

	position := &models.Position{}
	err := r.db.QueryRow(query, id).Scan(
		&position.ID,
		&position.Asset,
		&position.Symbol,
		&position.Side,
		&position.Quantity,
		&position.EntryPrice,
		&position.StopLoss,
		&position.TakeProfit,
		&position.ExitPrice,
		&position.OrderID,
		&position.Status,
		&position.OpenedAt,
		&position.ClosedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPositionNotFound
		}
		return nil, err
	}

	return position, nil
}

// GetOpen возвращает все открытые позиции (старые первыми)
func (r *PositionRepository) GetOpen() ([]*models.Position, error) {
	query := `
		SELECT id, asset, symbol, side, quantity, entry_price, stop_loss, take_profit, exit_price, order_id, status, opened_at, closed_at
		FROM trade_positions
		WHERE status = $1
		ORDER BY opened_at ASC`

	return r.queryPositions(query, models.PositionStatusOpen)
}

// GetRecent возвращает последние N позиций
func (r *PositionRepository) GetRecent(limit int) ([]*models.Position, error) {
	query := `
		SELECT id, asset, symbol, side, quantity, entry_price, stop_loss, take_profit, exit_price, order_id, status, opened_at, closed_at
		FROM trade_positions
		ORDER BY opened_at DESC
		LIMIT $1`

	return r.queryPositions(query, limit)
}

// HasOpenForAsset проверяет, есть ли OPEN позиция по активу.
// Дешевый пре-фильтр для Dispatch Gate; источник истины - ClaimOpen.
func (r *PositionRepository) HasOpenForAsset(asset string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM trade_positions
			WHERE asset = $1 AND status = $2
		)`

	var exists bool
	err := r.db.QueryRow(query, asset, models.PositionStatusOpen).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

// Close переводит позицию OPEN -> CLOSED ровно один раз.
//
// Условие status = 'OPEN' в WHERE делает переход атомарным: повторное
// закрытие (в том числе конкурентным монитором) получает ErrPositionNotOpen.
func (r *PositionRepository) Close(id int, exitPrice float64, closedAt time.Time) error {
	query := `
		UPDATE trade_positions
		SET status = $1, exit_price = $2, closed_at = $3
		WHERE id = $4 AND status = $5`

	result, err := r.db.Exec(query, models.PositionStatusClosed, exitPrice, closedAt, id, models.PositionStatusOpen)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		if _, err := r.GetByID(id); errors.Is(err, ErrPositionNotFound) {
			return ErrPositionNotFound
		}
		return ErrPositionNotOpen
	}

	return nil
}

// CountOpen возвращает количество открытых позиций
func (r *PositionRepository) CountOpen() (int, error) {
	query := `SELECT COUNT(*) FROM trade_positions WHERE status = $1`

	var count int
	err := r.db.QueryRow(query, models.PositionStatusOpen).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// queryPositions выполняет запрос и сканирует список позиций
func (r *PositionRepository) queryPositions(query string, args ...interface{}) ([]*models.Position, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var positions []*models.Position
	for rows.Next() {
		position := &models.Position{}
		err := rows.Scan(
			&position.ID,
			&position.Asset,
			&position.Symbol,
			&position.Side,
			&position.Quantity,
			&position.EntryPrice,
			&position.StopLoss,
			&position.TakeProfit,
			&position.ExitPrice,
			&position.OrderID,
			&position.Status,
			&position.OpenedAt,
			&position.ClosedAt,
		)
		if err != nil {
			return nil, err
		}
		positions = append(positions, position)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return positions, nil
}
