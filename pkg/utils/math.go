package utils

import (
	"math"
)

// math.go - математические утилиты для спотовой торговли
//
// Все функции являются чистыми (pure functions) без побочных эффектов.

// RoundToLotSize округляет значение ВНИЗ до ближайшего кратного lotSize.
//
// Используется для округления объёма ордера до минимального шага биржи.
// Округление вниз гарантирует, что мы не превысим доступный баланс.
//
// Параметры:
//   - value: исходное значение (объём в монетах актива)
//   - lotSize: минимальный шаг изменения объёма на бирже
//
// Возвращает:
//   - Округлённое значение, кратное lotSize
//   - Если lotSize <= 0, возвращает исходное значение
//
// Примеры:
//   - RoundToLotSize(0.123456, 0.001) = 0.123
//   - RoundToLotSize(1.999, 0.01) = 1.99
//   - RoundToLotSize(100.5, 1.0) = 100.0
func RoundToLotSize(value, lotSize float64) float64 {
	if lotSize <= 0 {
		return value
	}
	// math.Floor: округление вниз, чтобы не превысить доступный баланс
	return math.Floor(value/lotSize) * lotSize
}

// RoundToLotSizeUp округляет значение ВВЕРХ до ближайшего кратного lotSize.
//
// Используется когда нужно гарантировать минимальный объём (например, для minQty).
func RoundToLotSizeUp(value, lotSize float64) float64 {
	if lotSize <= 0 {
		return value
	}
	return math.Ceil(value/lotSize) * lotSize
}

// RoundToLotSizeNearest округляет к ближайшему кратному lotSize.
func RoundToLotSizeNearest(value, lotSize float64) float64 {
	if lotSize <= 0 {
		return value
	}
	return math.Round(value/lotSize) * lotSize
}

// CalculatePnl расчитывает реализованный P&L спотовой long-позиции.
//
// Формула:
//
//	PNL = (P_exit - P_entry) × qty
//
// Параметры:
//   - entryPrice: цена входа
//   - exitPrice: цена выхода
//   - quantity: объём позиции
//
// Возвращает:
//   - PNL в валюте котировки (USDT); 0 при quantity <= 0
func CalculatePnl(entryPrice, exitPrice, quantity float64) float64 {
	if quantity <= 0 {
		return 0
	}
	return (exitPrice - entryPrice) * quantity
}

// CalculatePnlPercent расчитывает P&L в процентах от цены входа.
//
// Возвращает 0 при entryPrice <= 0.
func CalculatePnlPercent(entryPrice, exitPrice float64) float64 {
	if entryPrice <= 0 {
		return 0
	}
	return (exitPrice - entryPrice) / entryPrice * 100
}

// IsWithinEntryZone проверяет, находится ли цена в зоне входа сигнала.
//
// Границы включительные: цена ровно на границе считается внутри зоны.
func IsWithinEntryZone(price, entryMin, entryMax float64) bool {
	return price >= entryMin && price <= entryMax
}

// IsStopLossHit проверяет достижение Stop Loss для long-позиции.
//
// Граница включительная: цена ровно на уровне SL считается пробоем.
// Возвращает false при stopLoss <= 0 (SL не задан).
func IsStopLossHit(price, stopLoss float64) bool {
	if stopLoss <= 0 {
		return false
	}
	return price <= stopLoss
}

// IsTakeProfitHit проверяет достижение Take Profit для long-позиции.
//
// Граница включительная. Возвращает false при takeProfit <= 0.
func IsTakeProfitHit(price, takeProfit float64) bool {
	if takeProfit <= 0 {
		return false
	}
	return price >= takeProfit
}

// RiskReward расчитывает соотношение риск/прибыль сигнала.
//
// Формула:
//
//	RR = (TP - entry) / (entry - SL)
//
// Параметры:
//   - entry: ориентировочная цена входа (обычно середина зоны)
//   - stopLoss: уровень SL (ниже entry)
//   - takeProfit: уровень TP (выше entry)
//
// Возвращает:
//   - Соотношение риск/прибыль; 0 если риск нулевой или отрицательный
func RiskReward(entry, stopLoss, takeProfit float64) float64 {
	risk := entry - stopLoss
	if risk <= 0 {
		return 0
	}
	return (takeProfit - entry) / risk
}

// MidPrice возвращает середину ценовой зоны
func MidPrice(low, high float64) float64 {
	return (low + high) / 2
}

// Abs возвращает абсолютное значение числа.
func Abs(x float64) float64 {
	return math.Abs(x)
}

// Min возвращает минимум из двух чисел.
func Min(a, b float64) float64 {
	return math.Min(a, b)
}

// Max возвращает максимум из двух чисел.
func Max(a, b float64) float64 {
	return math.Max(a, b)
}

// Clamp ограничивает значение диапазоном [min, max].
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
