package utils

import (
	"fmt"
	"regexp"
	"strings"
)

// validator.go - валидация тикеров и торговых символов
//
// Актив (asset) - базовый тикер из сигнала: "BTC", "1INCH".
// Символ (symbol) - торговая пара на бирже: "BTCUSDT". На входе
// допускаются разделители и нижний регистр ("btc-usdt"), нормализация
// приводит к биржевому формату.

var (
	assetPattern  = regexp.MustCompile(`^[A-Z0-9]{1,20}$`)
	symbolPattern = regexp.MustCompile(`^[A-Z0-9]{2,30}$`)
)

// NormalizeAsset приводит тикер актива к каноническому виду:
// обрезает пробелы и переводит в верхний регистр
func NormalizeAsset(asset string) string {
	return strings.ToUpper(strings.TrimSpace(asset))
}

// ValidateAsset проверяет формат тикера актива после нормализации.
// Допускаются латинские буквы и цифры, от 1 до 20 символов.
func ValidateAsset(asset string) error {
	normalized := NormalizeAsset(asset)
	if normalized == "" {
		return fmt.Errorf("asset is empty")
	}
	if !assetPattern.MatchString(normalized) {
		return fmt.Errorf("invalid asset format: %q", asset)
	}
	return nil
}

// IsValidAsset сообщает, корректен ли тикер актива
func IsValidAsset(asset string) bool {
	return ValidateAsset(asset) == nil
}

// NormalizeSymbol приводит торговый символ к биржевому формату:
// верхний регистр без разделителей ("btc-usdt" -> "BTCUSDT")
func NormalizeSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	s = strings.NewReplacer("-", "", "_", "", "/", "").Replace(s)
	return s
}

// ValidateSymbol проверяет формат торгового символа после нормализации.
// Допускаются латинские буквы и цифры, от 2 до 30 символов.
func ValidateSymbol(symbol string) error {
	normalized := NormalizeSymbol(symbol)
	if normalized == "" {
		return fmt.Errorf("symbol is empty")
	}
	if !symbolPattern.MatchString(normalized) {
		return fmt.Errorf("invalid symbol format: %q", symbol)
	}
	return nil
}

// IsValidSymbol сообщает, корректен ли торговый символ
func IsValidSymbol(symbol string) bool {
	return ValidateSymbol(symbol) == nil
}
