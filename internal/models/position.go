package models

import "time"

// Position представляет позицию на бирже, открытую по сигналу.
//
// Единственный допустимый переход статуса: OPEN -> CLOSED.
// CLOSED - терминальное состояние, запись после него не меняется.
// Инвариант хранилища: не более одной OPEN позиции на актив
// (частичный уникальный индекс по asset WHERE status = 'OPEN').
type Position struct {
	ID         int        `json:"id" db:"id"`
	Asset      string     `json:"asset" db:"asset"`           // базовый актив, например "ETH"
	Symbol     string     `json:"symbol" db:"symbol"`         // торговый символ, например "ETHUSDT"
	Side       string     `json:"side" db:"side"`             // "BUY" (открытие) - single long-only
	Quantity   float64    `json:"quantity" db:"quantity"`     // количество из исполнения ордера
	EntryPrice float64    `json:"entry_price" db:"entry_price"`
	StopLoss   float64    `json:"stop_loss" db:"stop_loss"`
	TakeProfit float64    `json:"take_profit" db:"take_profit"`
	ExitPrice  *float64   `json:"exit_price,omitempty" db:"exit_price"` // null пока позиция открыта
	OrderID    string     `json:"order_id" db:"order_id"`               // ID ордера на бирже
	Status     string     `json:"status" db:"status"`                   // OPEN | CLOSED
	OpenedAt   time.Time  `json:"opened_at" db:"opened_at"`
	ClosedAt   *time.Time `json:"closed_at,omitempty" db:"closed_at"` // null пока позиция открыта
}

// Статусы позиции
const (
	PositionStatusOpen   = "OPEN"
	PositionStatusClosed = "CLOSED"
)

// Стороны ордеров
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// IsOpen сообщает, открыта ли позиция
func (p *Position) IsOpen() bool {
	return p.Status == PositionStatusOpen
}

// RealizedPnl возвращает реализованный P&L закрытой позиции.
// Для открытой позиции возвращает 0.
func (p *Position) RealizedPnl() float64 {
	if p.ExitPrice == nil {
		return 0
	}
	return (*p.ExitPrice - p.EntryPrice) * p.Quantity
}

// RealizedPnlPercent возвращает реализованный P&L в процентах от цены входа
func (p *Position) RealizedPnlPercent() float64 {
	if p.ExitPrice == nil || p.EntryPrice == 0 {
		return 0
	}
	return (*p.ExitPrice - p.EntryPrice) / p.EntryPrice * 100
}
