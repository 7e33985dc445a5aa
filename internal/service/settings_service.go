package service

import (
	"errors"
	"strings"

	"cryptoalpha/internal/models"
	"cryptoalpha/internal/repository"
)

// Ошибки сервиса настроек
var (
	ErrInvalidTradeAmount      = errors.New("trade_amount_quote must be positive")
	ErrInvalidMinConfidence    = errors.New("min_confidence must be within [0, 100]")
	ErrInvalidMinRiskReward    = errors.New("min_risk_reward must be positive")
	ErrInvalidMaxSignalsPerDay = errors.New("max_signals_per_day must be >= 1")
	ErrEmptySymbol             = errors.New("symbol is empty")
)

// SettingsService предоставляет бизнес-логику для управления глобальными настройками.
//
// Отвечает за:
// - Получение и обновление глобальных настроек торговли
// - Валидацию параметров настроек
// - Управление deny-list неподдерживаемых символов
type SettingsService struct {
	settingsRepo *repository.SettingsRepository
}

// NewSettingsService создает новый экземпляр SettingsService.
func NewSettingsService(settingsRepo *repository.SettingsRepository) *SettingsService {
	return &SettingsService{
		settingsRepo: settingsRepo,
	}
}

// GetSettings возвращает текущие глобальные настройки.
//
// Если записи в БД нет, создается запись с дефолтными значениями.
func (s *SettingsService) GetSettings() (*models.Settings, error) {
	return s.settingsRepo.Get()
}

// UpdateSettingsRequest представляет запрос на обновление настроек.
// Все поля опциональны - обновляются только переданные.
type UpdateSettingsRequest struct {
	EnableAutoTrading *bool    `json:"enable_auto_trading,omitempty"`
	TradeAmountQuote  *float64 `json:"trade_amount_quote,omitempty"`
	MinConfidence     *float64 `json:"min_confidence,omitempty"`
	MinRiskReward     *float64 `json:"min_risk_reward,omitempty"`
	MaxSignalsPerDay  *int     `json:"max_signals_per_day,omitempty"`
}

// UpdateSettings обновляет глобальные настройки.
//
// Принимает только те поля, которые нужно обновить.
// Валидирует параметры перед сохранением.
//
// Правила валидации:
// - trade_amount_quote: > 0
// - min_confidence: [0, 100]
// - min_risk_reward: > 0
// - max_signals_per_day: >= 1
func (s *SettingsService) UpdateSettings(req *UpdateSettingsRequest) (*models.Settings, error) {
	settings, err := s.settingsRepo.Get()
	if err != nil {
		return nil, err
	}

	if req.EnableAutoTrading != nil {
		settings.EnableAutoTrading = *req.EnableAutoTrading
	}

	if req.TradeAmountQuote != nil {
		if *req.TradeAmountQuote <= 0 {
			return nil, ErrInvalidTradeAmount
		}
		settings.TradeAmountQuote = *req.TradeAmountQuote
	}

	if req.MinConfidence != nil {
		if *req.MinConfidence < 0 || *req.MinConfidence > 100 {
			return nil, ErrInvalidMinConfidence
		}
		settings.MinConfidence = *req.MinConfidence
	}

	if req.MinRiskReward != nil {
		if *req.MinRiskReward <= 0 {
			return nil, ErrInvalidMinRiskReward
		}
		settings.MinRiskReward = *req.MinRiskReward
	}

	if req.MaxSignalsPerDay != nil {
		if *req.MaxSignalsPerDay < 1 {
			return nil, ErrInvalidMaxSignalsPerDay
		}
		settings.MaxSignalsPerDay = *req.MaxSignalsPerDay
	}

	if err := s.settingsRepo.Update(settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// AddDeniedSymbol добавляет символ в deny-list.
//
// Возвращает true если символ был добавлен, false если уже присутствовал.
func (s *SettingsService) AddDeniedSymbol(symbol string) (bool, error) {
	if strings.TrimSpace(symbol) == "" {
		return false, ErrEmptySymbol
	}
	return s.settingsRepo.AddDeniedSymbol(symbol)
}

// RemoveDeniedSymbol удаляет символ из deny-list.
//
// Возвращает true если символ был удален, false если его не было.
func (s *SettingsService) RemoveDeniedSymbol(symbol string) (bool, error) {
	if strings.TrimSpace(symbol) == "" {
		return false, ErrEmptySymbol
	}
	return s.settingsRepo.RemoveDeniedSymbol(symbol)
}
