package service

import (
	"time"

	"cryptoalpha/internal/models"
	"cryptoalpha/internal/repository"
)

// SignalRepositoryInterface определяет интерфейс репозитория сигналов
type SignalRepositoryInterface interface {
	Create(signal *models.Signal) error
	GetByID(id int) (*models.Signal, error)
	GetPending() ([]*models.Signal, error)
	GetRecent(limit int) ([]*models.Signal, error)
	CountPendingToday(now time.Time) (int, error)
	HasDispatchedSince(asset string, cutoff time.Time) (bool, error)
	MarkDispatched(id int) error
	Count() (int, error)
}

// PositionRepositoryInterface определяет интерфейс репозитория позиций
type PositionRepositoryInterface interface {
	ClaimOpen(position *models.Position) error
	GetByID(id int) (*models.Position, error)
	GetOpen() ([]*models.Position, error)
	GetRecent(limit int) ([]*models.Position, error)
	HasOpenForAsset(asset string) (bool, error)
	Close(id int, exitPrice float64, closedAt time.Time) error
	CountOpen() (int, error)
}

// SettingsRepositoryInterface определяет интерфейс репозитория настроек
type SettingsRepositoryInterface interface {
	Get() (*models.Settings, error)
	Update(settings *models.Settings) error
	AddDeniedSymbol(symbol string) (bool, error)
	RemoveDeniedSymbol(symbol string) (bool, error)
}

// NotificationRepositoryInterface определяет интерфейс репозитория уведомлений
type NotificationRepositoryInterface interface {
	Create(notif *models.Notification) error
	GetRecent(limit int) ([]*models.Notification, error)
	GetByTypes(types []string, limit int) ([]*models.Notification, error)
	Count() (int, error)
	DeleteAll() error
	DeleteOlderThan(timestamp time.Time) (int64, error)
}

// StatsRepositoryInterface определяет интерфейс репозитория статистики
type StatsRepositoryInterface interface {
	GetStats() (*models.Stats, error)
	GetTopAssetsByPnl(limit int) ([]models.AssetStat, error)
	GetWorstAssetsByPnl(limit int) ([]models.AssetStat, error)
	GetPnlByAsset(asset string) (float64, error)
}

// Проверяем, что реальные репозитории реализуют интерфейсы
var _ SignalRepositoryInterface = (*repository.SignalRepository)(nil)
var _ PositionRepositoryInterface = (*repository.PositionRepository)(nil)
var _ SettingsRepositoryInterface = (*repository.SettingsRepository)(nil)
var _ NotificationRepositoryInterface = (*repository.NotificationRepository)(nil)
var _ StatsRepositoryInterface = (*repository.StatsRepository)(nil)

// ============ Интерфейсы сервисов для Dependency Injection ============

// SignalServiceInterface определяет интерфейс сервиса сигналов
type SignalServiceInterface interface {
	IngestSignals(candidates []*models.Signal) (*IngestReport, error)
	GetPendingSignals() ([]*models.Signal, error)
	GetRecentSignals(limit int) ([]*models.Signal, error)
	GetSignalCount() (int, error)
}

// PositionServiceInterface определяет интерфейс сервиса позиций
type PositionServiceInterface interface {
	GetOpenPositions() ([]*models.Position, error)
	GetRecentPositions(limit int) ([]*models.Position, error)
	GetPosition(id int) (*models.Position, error)
	GetOpenPositionCount() (int, error)
}

// SettingsServiceInterface определяет интерфейс сервиса настроек
type SettingsServiceInterface interface {
	GetSettings() (*models.Settings, error)
	UpdateSettings(req *UpdateSettingsRequest) (*models.Settings, error)
	AddDeniedSymbol(symbol string) (bool, error)
	RemoveDeniedSymbol(symbol string) (bool, error)
}

// NotificationServiceInterface определяет интерфейс сервиса уведомлений
type NotificationServiceInterface interface {
	CreateNotification(notif *models.Notification) error
	GetNotifications(types []string, limit int) ([]*models.Notification, error)
	ClearNotifications() error
	GetNotificationCount() (int, error)
}

// StatsServiceInterface определяет интерфейс сервиса статистики
type StatsServiceInterface interface {
	GetStats() (*models.Stats, error)
	GetPnlByAsset(asset string) (float64, error)
}

// Проверяем, что реальные сервисы реализуют интерфейсы
var _ SignalServiceInterface = (*SignalService)(nil)
var _ PositionServiceInterface = (*PositionService)(nil)
var _ SettingsServiceInterface = (*SettingsService)(nil)
var _ NotificationServiceInterface = (*NotificationService)(nil)
var _ StatsServiceInterface = (*StatsService)(nil)
