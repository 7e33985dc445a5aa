package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cryptoalpha/internal/models"
	"cryptoalpha/internal/repository"
	"cryptoalpha/pkg/utils"
)

// Ошибки валидации сигналов
var (
	ErrSignalEmptyAsset     = errors.New("signal asset is empty")
	ErrSignalInvalidAsset   = errors.New("signal asset has invalid format")
	ErrSignalNotBuy         = errors.New("only BUY signals are supported")
	ErrSignalInvalidBounds  = errors.New("signal bounds must satisfy stop_loss < entry_min <= entry_max < take_profit")
	ErrSignalInvalidScores  = errors.New("probability and confidence must be within [0, 100]")
	ErrSignalInvalidRR      = errors.New("risk_reward must be positive")
	ErrDailySignalCapFilled = errors.New("daily signal cap reached")
)

// IngestReport - итог прогона пачки кандидатов через фильтр приема.
type IngestReport struct {
	Accepted []*models.Signal `json:"accepted"`
	Rejected []RejectedSignal `json:"rejected"`
}

// RejectedSignal - отклоненный кандидат с причиной
type RejectedSignal struct {
	Asset  string `json:"asset"`
	Reason string `json:"reason"`
}

// SignalService - фильтр приема сигналов.
//
// Кандидаты проходят три ступени, в этом порядке:
// 1. Структурная валидация (границы цен, диапазоны скорингов)
// 2. Пороги качества из настроек (min_confidence, min_risk_reward)
// 3. Дневной лимит: считаются только сегодняшние НЕотправленные
//    сигналы, т.е. отработанные сигналы место в квоте не занимают
//
// Отклонение кандидата не является ошибкой: он попадает в Rejected
// с причиной, остальная пачка обрабатывается дальше.
type SignalService struct {
	signalRepo   *repository.SignalRepository
	settingsRepo *repository.SettingsRepository
}

// NewSignalService создает новый экземпляр SignalService
func NewSignalService(
	signalRepo *repository.SignalRepository,
	settingsRepo *repository.SettingsRepository,
) *SignalService {
	return &SignalService{
		signalRepo:   signalRepo,
		settingsRepo: settingsRepo,
	}
}

// IngestSignals прогоняет пачку кандидатов через фильтр и сохраняет
// прошедших. Возвращает отчет с принятыми и отклоненными.
func (s *SignalService) IngestSignals(candidates []*models.Signal) (*IngestReport, error) {
	settings, err := s.settingsRepo.Get()
	if err != nil {
		return nil, err
	}

	pendingToday, err := s.signalRepo.CountPendingToday(time.Now().UTC())
	if err != nil {
		return nil, err
	}

	report := &IngestReport{}
	for _, candidate := range candidates {
		if reason := evaluateSignal(candidate, settings); reason != nil {
			report.Rejected = append(report.Rejected, RejectedSignal{
				Asset:  candidate.Asset,
				Reason: reason.Error(),
			})
			continue
		}

		if pendingToday >= settings.MaxSignalsPerDay {
			report.Rejected = append(report.Rejected, RejectedSignal{
				Asset:  candidate.Asset,
				Reason: ErrDailySignalCapFilled.Error(),
			})
			continue
		}

		candidate.Asset = utils.NormalizeAsset(candidate.Asset)
		if err := s.signalRepo.Create(candidate); err != nil {
			return report, err
		}

		pendingToday++
		report.Accepted = append(report.Accepted, candidate)
	}

	return report, nil
}

// GetPendingSignals возвращает неотправленные сигналы (старые первыми)
func (s *SignalService) GetPendingSignals() ([]*models.Signal, error) {
	return s.signalRepo.GetPending()
}

// GetRecentSignals возвращает последние N сигналов
func (s *SignalService) GetRecentSignals(limit int) ([]*models.Signal, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	return s.signalRepo.GetRecent(limit)
}

// GetSignalCount возвращает общее количество сигналов
func (s *SignalService) GetSignalCount() (int, error) {
	return s.signalRepo.Count()
}

// evaluateSignal проверяет кандидата структурно и по порогам качества.
// Возвращает nil если кандидат проходит, иначе причину отклонения.
func evaluateSignal(signal *models.Signal, settings *models.Settings) error {
	if err := ValidateSignalStructure(signal); err != nil {
		return err
	}

	if signal.Confidence < settings.MinConfidence {
		return fmt.Errorf("confidence %.1f below threshold %.1f", signal.Confidence, settings.MinConfidence)
	}
	if signal.RiskReward < settings.MinRiskReward {
		return fmt.Errorf("risk_reward %.2f below threshold %.2f", signal.RiskReward, settings.MinRiskReward)
	}

	return nil
}

// ValidateSignalStructure проверяет структурную корректность сигнала:
// поддерживаемое действие, непустой актив, согласованность ценовых
// границ и допустимые диапазоны скорингов.
func ValidateSignalStructure(signal *models.Signal) error {
	if strings.TrimSpace(signal.Asset) == "" {
		return ErrSignalEmptyAsset
	}
	if !utils.IsValidAsset(signal.Asset) {
		return ErrSignalInvalidAsset
	}
	if signal.Action != models.SignalActionBuy {
		return ErrSignalNotBuy
	}
	if signal.StopLoss <= 0 ||
		signal.StopLoss >= signal.EntryMin ||
		signal.EntryMin > signal.EntryMax ||
		signal.EntryMax >= signal.TakeProfit {
		return ErrSignalInvalidBounds
	}
	if signal.Probability < 0 || signal.Probability > 100 ||
		signal.Confidence < 0 || signal.Confidence > 100 {
		return ErrSignalInvalidScores
	}
	if signal.RiskReward <= 0 {
		return ErrSignalInvalidRR
	}
	return nil
}
