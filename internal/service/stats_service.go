package service

import (
	"cryptoalpha/internal/models"
	"cryptoalpha/internal/repository"
)

// StatsBroadcaster - интерфейс для отправки обновлений статистики через WebSocket
type StatsBroadcaster interface {
	BroadcastStatsUpdate(stats *models.Stats)
}

// StatsService предоставляет бизнес-логику для работы со статистикой.
//
// Функции:
// - GetStats: полная агрегированная статистика по леджеру позиций
// - GetPnlByAsset: суммарный P&L одного актива
// - PublishStats: пересчет и broadcast статистики после закрытия позиции
//
// WebSocket интеграция:
// - После каждого закрытия позиции монитор вызывает PublishStats,
//   дашборд получает statsUpdate без перезапроса
type StatsService struct {
	statsRepo *repository.StatsRepository
	wsHub     StatsBroadcaster
}

// NewStatsService создает новый экземпляр StatsService
func NewStatsService(statsRepo *repository.StatsRepository) *StatsService {
	return &StatsService{
		statsRepo: statsRepo,
	}
}

// SetWebSocketHub устанавливает WebSocket hub для broadcast статистики.
func (s *StatsService) SetWebSocketHub(hub StatsBroadcaster) {
	s.wsHub = hub
}

// GetStats возвращает полную агрегированную статистику.
//
// Включает:
// - Количество сделок и P&L (сегодня/всего)
// - Счетчики выигрышей, проигрышей, Stop Loss и Take Profit
// - Количество открытых позиций
// - Топ-5 активов по прибыли и по убыткам
func (s *StatsService) GetStats() (*models.Stats, error) {
	stats, err := s.statsRepo.GetStats()
	if err != nil {
		return nil, err
	}

	top, err := s.statsRepo.GetTopAssetsByPnl(5)
	if err != nil {
		return nil, err
	}
	stats.TopAssets = top

	worst, err := s.statsRepo.GetWorstAssetsByPnl(5)
	if err != nil {
		return nil, err
	}
	stats.WorstAssets = worst

	return stats, nil
}

// GetPnlByAsset возвращает суммарный P&L по одному активу
func (s *StatsService) GetPnlByAsset(asset string) (float64, error) {
	return s.statsRepo.GetPnlByAsset(asset)
}

// PublishStats пересчитывает статистику и рассылает ее через WebSocket.
//
// Ошибки не критичны: статистика пересчитается при следующем запросе.
func (s *StatsService) PublishStats() {
	if s.wsHub == nil {
		return
	}

	stats, err := s.GetStats()
	if err != nil {
		return
	}

	s.wsHub.BroadcastStatsUpdate(stats)
}
