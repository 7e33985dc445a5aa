package service

import (
	"strings"

	"cryptoalpha/internal/models"
	"cryptoalpha/internal/repository"
)

// WebSocketBroadcaster - интерфейс для отправки WebSocket сообщений
//
// Позволяет избежать циклических зависимостей между пакетами
// и упрощает тестирование (можно подставить mock)
type WebSocketBroadcaster interface {
	BroadcastNotification(notif *models.Notification)
}

// NotificationService предоставляет бизнес-логику для управления уведомлениями.
//
// Отвечает за:
// - Создание уведомлений о событиях жизненного цикла позиций
// - Получение списка уведомлений с фильтрацией
// - Очистку журнала уведомлений
// - Broadcast уведомлений через WebSocket
//
// Типы уведомлений:
// - OPEN: открытие позиции
// - CLOSE: закрытие позиции
// - SL: срабатывание Stop Loss
// - TP: срабатывание Take Profit
// - SKIP: сигнал отклонен (deny-list, неподдерживаемый символ)
// - ERROR: ошибка API/ордера
// - RECONCILE: конфликт записи позиции, нужна ручная сверка
type NotificationService struct {
	notificationRepo *repository.NotificationRepository
	wsHub            WebSocketBroadcaster
}

// NewNotificationService создает новый экземпляр NotificationService.
func NewNotificationService(notificationRepo *repository.NotificationRepository) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
	}
}

// SetWebSocketHub устанавливает WebSocket hub для broadcast уведомлений.
//
// Вызывается после инициализации Hub в main.go:
//
//	notifService := service.NewNotificationService(notifRepo)
//	notifService.SetWebSocketHub(wsHub)
func (s *NotificationService) SetWebSocketHub(hub WebSocketBroadcaster) {
	s.wsHub = hub
}

// CreateNotification создает новое уведомление.
//
// После успешного создания отправляет broadcast через WebSocket
// (если hub настроен).
func (s *NotificationService) CreateNotification(notif *models.Notification) error {
	if err := s.notificationRepo.Create(notif); err != nil {
		return err
	}

	// Broadcast через WebSocket hub для real-time обновления UI
	if s.wsHub != nil {
		s.wsHub.BroadcastNotification(notif)
	}

	return nil
}

// GetNotifications возвращает список уведомлений с фильтрацией.
//
// Параметры:
// - types: список типов для фильтрации (например: ["OPEN", "CLOSE", "SL"])
//          если пустой - возвращаются все типы
// - limit: максимальное количество записей (по умолчанию 100)
//
// Возвращает уведомления отсортированные по времени (новые сверху).
func (s *NotificationService) GetNotifications(types []string, limit int) ([]*models.Notification, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}

	// Нормализуем типы (приводим к верхнему регистру)
	normalizedTypes := make([]string, 0, len(types))
	for _, t := range types {
		normalized := strings.ToUpper(strings.TrimSpace(t))
		if normalized != "" && s.isValidNotificationType(normalized) {
			normalizedTypes = append(normalizedTypes, normalized)
		}
	}

	if len(normalizedTypes) > 0 {
		return s.notificationRepo.GetByTypes(normalizedTypes, limit)
	}

	return s.notificationRepo.GetRecent(limit)
}

// ClearNotifications очищает журнал уведомлений.
func (s *NotificationService) ClearNotifications() error {
	return s.notificationRepo.DeleteAll()
}

// GetNotificationCount возвращает общее количество уведомлений.
func (s *NotificationService) GetNotificationCount() (int, error) {
	return s.notificationRepo.Count()
}

// isValidNotificationType проверяет, является ли тип допустимым.
func (s *NotificationService) isValidNotificationType(notifType string) bool {
	validTypes := map[string]bool{
		models.NotificationTypeOpen:      true,
		models.NotificationTypeClose:     true,
		models.NotificationTypeSL:        true,
		models.NotificationTypeTP:        true,
		models.NotificationTypeSkip:      true,
		models.NotificationTypeError:     true,
		models.NotificationTypeReconcile: true,
	}
	return validTypes[strings.ToUpper(notifType)]
}

// CreateOpenNotification создает уведомление об открытии позиции.
//
// Вспомогательный метод для удобного создания уведомлений.
func (s *NotificationService) CreateOpenNotification(asset, message string, meta map[string]interface{}) error {
	notif := &models.Notification{
		Type:     models.NotificationTypeOpen,
		Severity: models.SeverityInfo,
		Asset:    asset,
		Message:  message,
		Meta:     meta,
	}
	return s.CreateNotification(notif)
}

// CreateCloseNotification создает уведомление о закрытии позиции.
func (s *NotificationService) CreateCloseNotification(asset, message string, meta map[string]interface{}) error {
	notif := &models.Notification{
		Type:     models.NotificationTypeClose,
		Severity: models.SeverityInfo,
		Asset:    asset,
		Message:  message,
		Meta:     meta,
	}
	return s.CreateNotification(notif)
}

// CreateSLNotification создает уведомление о срабатывании Stop Loss.
func (s *NotificationService) CreateSLNotification(asset, message string, meta map[string]interface{}) error {
	notif := &models.Notification{
		Type:     models.NotificationTypeSL,
		Severity: models.SeverityWarn,
		Asset:    asset,
		Message:  message,
		Meta:     meta,
	}
	return s.CreateNotification(notif)
}

// CreateTPNotification создает уведомление о срабатывании Take Profit.
func (s *NotificationService) CreateTPNotification(asset, message string, meta map[string]interface{}) error {
	notif := &models.Notification{
		Type:     models.NotificationTypeTP,
		Severity: models.SeverityInfo,
		Asset:    asset,
		Message:  message,
		Meta:     meta,
	}
	return s.CreateNotification(notif)
}

// CreateSkipNotification создает уведомление об отклоненном сигнале.
func (s *NotificationService) CreateSkipNotification(asset, message string, meta map[string]interface{}) error {
	notif := &models.Notification{
		Type:     models.NotificationTypeSkip,
		Severity: models.SeverityWarn,
		Asset:    asset,
		Message:  message,
		Meta:     meta,
	}
	return s.CreateNotification(notif)
}

// CreateErrorNotification создает уведомление об ошибке API.
func (s *NotificationService) CreateErrorNotification(asset, message string, meta map[string]interface{}) error {
	notif := &models.Notification{
		Type:     models.NotificationTypeError,
		Severity: models.SeverityError,
		Asset:    asset,
		Message:  message,
		Meta:     meta,
	}
	return s.CreateNotification(notif)
}

// CreateReconcileNotification создает уведомление о конфликте записи
// позиции: ордер исполнен, но запись в леджер не прошла.
func (s *NotificationService) CreateReconcileNotification(asset, message string, meta map[string]interface{}) error {
	notif := &models.Notification{
		Type:     models.NotificationTypeReconcile,
		Severity: models.SeverityError,
		Asset:    asset,
		Message:  message,
		Meta:     meta,
	}
	return s.CreateNotification(notif)
}
