package models

import (
	"strings"
	"time"
)

// Settings представляет глобальные настройки торговли.
//
// Хранятся одной строкой (id = 1) и читаются ботом в начале каждого цикла -
// это явный reload-контракт для изменяемой конфигурации. Мутация deny-list
// идет через атомарный UPDATE репозитория, а не через чтение-изменение-запись
// на уровне приложения, чтобы избежать потерянных обновлений при
// конкурентных писателях.
type Settings struct {
	ID                int       `json:"id" db:"id"`
	EnableAutoTrading bool      `json:"enable_auto_trading" db:"enable_auto_trading"` // false = только приём сигналов
	TradeAmountQuote  float64   `json:"trade_amount_quote" db:"trade_amount_quote"`   // размер ордера в USDT
	MinConfidence     float64   `json:"min_confidence" db:"min_confidence"`           // порог уверенности 0-100
	MinRiskReward     float64   `json:"min_risk_reward" db:"min_risk_reward"`         // порог риск/прибыль
	MaxSignalsPerDay  int       `json:"max_signals_per_day" db:"max_signals_per_day"` // дневная квота приёма
	DeniedSymbols     []string  `json:"denied_symbols" db:"denied_symbols"`           // JSON в БД
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// IsDenied проверяет, находится ли символ в deny-list.
// Сравнение регистронезависимое.
func (s *Settings) IsDenied(symbol string) bool {
	symbol = strings.ToUpper(symbol)
	for _, denied := range s.DeniedSymbols {
		if strings.ToUpper(denied) == symbol {
			return true
		}
	}
	return false
}
