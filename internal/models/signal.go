package models

import "time"

// Signal представляет торговую рекомендацию от внешнего генератора.
//
// Запись неизменяема после создания, кроме флага Dispatched:
// он переходит из false в true ровно один раз - при исполнении
// сигнала или при окончательном отклонении (неподдерживаемый актив).
// Сигналы никогда не удаляются (append-only журнал для аудита).
type Signal struct {
	ID          int       `json:"id" db:"id"`
	GeneratedAt time.Time `json:"generated_at" db:"generated_at"`
	Asset       string    `json:"asset" db:"asset"`             // базовый актив, например "ETH"
	Action      string    `json:"action" db:"action"`           // сейчас только "BUY"
	EntryMin    float64   `json:"entry_min" db:"entry_min"`     // нижняя граница зоны входа
	EntryMax    float64   `json:"entry_max" db:"entry_max"`     // верхняя граница зоны входа
	StopLoss    float64   `json:"stop_loss" db:"stop_loss"`
	TakeProfit  float64   `json:"take_profit" db:"take_profit"`
	Probability float64   `json:"probability" db:"probability"` // оценка вероятности 0-100
	Confidence  float64   `json:"confidence" db:"confidence"`   // уверенность генератора 0-100
	RiskReward  float64   `json:"risk_reward" db:"risk_reward"` // соотношение риск/прибыль
	Reasoning   string    `json:"reasoning" db:"reasoning"`     // текстовое обоснование
	Dispatched  bool      `json:"dispatched" db:"dispatched"`   // сигнал исполнен или отклонен
}

// Действия сигналов
const (
	SignalActionBuy = "BUY"
)
