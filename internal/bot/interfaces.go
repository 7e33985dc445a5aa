package bot

import (
	"context"
	"time"

	"cryptoalpha/internal/collector"
	"cryptoalpha/internal/models"
	"cryptoalpha/internal/repository"
	"cryptoalpha/internal/service"
)

// ============ Интерфейсы зависимостей торгового ядра ============
//
// Ядро объявляет только те методы, которые реально вызывает.
// Это сужает поверхность зависимости и упрощает подмену в тестах.

// SignalStore - доступ к журналу сигналов
type SignalStore interface {
	GetPending() ([]*models.Signal, error)
	HasDispatchedSince(asset string, cutoff time.Time) (bool, error)
	MarkDispatched(id int) error
}

// PositionStore - доступ к позициям
type PositionStore interface {
	ClaimOpen(position *models.Position) error
	GetOpen() ([]*models.Position, error)
	HasOpenForAsset(asset string) (bool, error)
	Close(id int, exitPrice float64, closedAt time.Time) error
}

// SettingsStore - доступ к настройкам торговли
type SettingsStore interface {
	Get() (*models.Settings, error)
	AddDeniedSymbol(symbol string) (bool, error)
}

// Notifier публикует события жизненного цикла позиций
type Notifier interface {
	CreateOpenNotification(asset, message string, meta map[string]interface{}) error
	CreateCloseNotification(asset, message string, meta map[string]interface{}) error
	CreateSLNotification(asset, message string, meta map[string]interface{}) error
	CreateTPNotification(asset, message string, meta map[string]interface{}) error
	CreateSkipNotification(asset, message string, meta map[string]interface{}) error
	CreateErrorNotification(asset, message string, meta map[string]interface{}) error
	CreateReconcileNotification(asset, message string, meta map[string]interface{}) error
}

// StatsPublisher рассылает обновленную статистику после изменения позиций
type StatsPublisher interface {
	PublishStats()
}

// PriceSource отдает ценовой снапшот по списку активов.
// Отсутствие ключа в снапшоте означает "цены нет", а не ноль.
type PriceSource interface {
	Snapshot(ctx context.Context, assets []string) (collector.PriceSnapshot, error)
}

// Проверяем совместимость реальных реализаций
var _ SignalStore = (*repository.SignalRepository)(nil)
var _ PositionStore = (*repository.PositionRepository)(nil)
var _ SettingsStore = (*repository.SettingsRepository)(nil)
var _ Notifier = (*service.NotificationService)(nil)
var _ StatsPublisher = (*service.StatsService)(nil)
var _ PriceSource = (*collector.Collector)(nil)
