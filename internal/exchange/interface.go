package exchange

import (
	"context"
	"errors"
	"time"
)

// Exchange определяет интерфейс спотовой биржи для торгового ядра
type Exchange interface {
	// GetName возвращает имя биржи
	GetName() string

	// GetPrice получает текущую цену символа
	GetPrice(ctx context.Context, symbol string) (float64, error)

	// GetSymbolInfo получает торговую информацию о символе (статус, lot size)
	GetSymbolInfo(ctx context.Context, symbol string) (*SymbolInfo, error)

	// PlaceMarketBuy размещает рыночный ордер на покупку на заданную
	// сумму в котируемой валюте (quoteOrderQty)
	PlaceMarketBuy(ctx context.Context, symbol string, quoteAmount float64) (*Order, error)

	// PlaceMarketSell размещает рыночный ордер на продажу заданного
	// количества базового актива
	PlaceMarketSell(ctx context.Context, symbol string, quantity float64) (*Order, error)

	// GetBalance получает свободный баланс указанного актива
	GetBalance(ctx context.Context, asset string) (float64, error)

	// Close закрывает соединения с биржей
	Close() error
}

// SymbolInfo содержит торговую информацию о символе
type SymbolInfo struct {
	Symbol   string  `json:"symbol"`
	Status   string  `json:"status"`    // TRADING / 1 = активен
	StepSize float64 `json:"step_size"` // шаг изменения количества (LOT_SIZE)
}

// Trading проверяет, активен ли символ для торговли.
// MEXC использует и "TRADING", и "1" как признак активного символа.
func (s *SymbolInfo) Trading() bool {
	return s.Status == "TRADING" || s.Status == "1"
}

// Order представляет исполненный ордер
type Order struct {
	ID                 string    `json:"id"`
	ClientOrderID      string    `json:"client_order_id"`
	Symbol             string    `json:"symbol"`
	Side               string    `json:"side"` // "BUY" или "SELL"
	Type               string    `json:"type"` // "MARKET"
	Quantity           float64   `json:"quantity"`             // запрошенное количество
	ExecutedQty        float64   `json:"executed_qty"`         // исполненное количество
	CumulativeQuoteQty float64   `json:"cumulative_quote_qty"` // потрачено в котируемой валюте
	Price              float64   `json:"price"`                // цена из ответа биржи (может быть 0)
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
}

// AvgFillPrice возвращает среднюю цену исполнения ордера.
//
// Цепочка источников, в порядке убывания достоверности:
// 1. cummulativeQuoteQty / executedQty - фактическая средняя цена
// 2. price из ответа биржи
// 3. 0 - вызывающий код подставляет свой fallback
func (o *Order) AvgFillPrice() float64 {
	if o.ExecutedQty > 0 && o.CumulativeQuoteQty > 0 {
		return o.CumulativeQuoteQty / o.ExecutedQty
	}
	if o.Price > 0 {
		return o.Price
	}
	return 0
}

// ExchangeError представляет ошибку от биржи
type ExchangeError struct {
	Exchange string
	Code     string
	Message  string
	Original error
}

func (e *ExchangeError) Error() string {
	return e.Exchange + ": " + e.Message
}

// Unwrap возвращает оригинальную ошибку для поддержки errors.Is() и errors.As()
func (e *ExchangeError) Unwrap() error {
	return e.Original
}

// Коды ошибок MEXC, на которые ядро реагирует особо
const (
	// ErrCodeUnsupportedSymbol - символ не поддерживается API-торговлей.
	// Постоянная ошибка: символ заносится в deny-list, повторы бессмысленны.
	ErrCodeUnsupportedSymbol = "10007"

	// ErrCodeInsufficientBalance - недостаточно средств
	ErrCodeInsufficientBalance = "30004"
)

// IsUnsupportedSymbol возвращает true, если ошибка означает, что символ
// не поддерживается API-торговлей (код 10007)
func IsUnsupportedSymbol(err error) bool {
	var exErr *ExchangeError
	if !errors.As(err, &exErr) {
		return false
	}
	return exErr.Code == ErrCodeUnsupportedSymbol
}

// IsInsufficientBalance возвращает true, если биржа отклонила ордер из-за
// нехватки средств (код 30004). Ошибка транзиентная с точки зрения сигнала:
// баланс может пополниться к следующему циклу.
func IsInsufficientBalance(err error) bool {
	var exErr *ExchangeError
	if !errors.As(err, &exErr) {
		return false
	}
	return exErr.Code == ErrCodeInsufficientBalance
}

// Side constants for orders
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// Order status constants
const (
	OrderStatusFilled    = "FILLED"
	OrderStatusPartial   = "PARTIALLY_FILLED"
	OrderStatusNew       = "NEW"
	OrderStatusCancelled = "CANCELED"
)
