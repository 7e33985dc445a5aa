package websocket

import (
	"time"

	"cryptoalpha/internal/models"
)

// MessageType определяет тип WebSocket сообщения
type MessageType string

// Типы WebSocket сообщений
const (
	// MessageTypeNotification - новое уведомление
	// Отправляется при событиях: открытие, закрытие, SL, TP, ошибки, сверка
	MessageTypeNotification MessageType = "notification"

	// MessageTypeStatsUpdate - обновление статистики торговли
	// Отправляется после закрытия позиции
	MessageTypeStatsUpdate MessageType = "statsUpdate"

	// MessageTypePositionUpdate - изменение открытой позиции
	MessageTypePositionUpdate MessageType = "positionUpdate"
)

// BaseMessage - базовая структура для всех WebSocket сообщений
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
}

// NotificationMessage - сообщение о новом уведомлении
type NotificationMessage struct {
	BaseMessage
	Data *NotificationData `json:"data"`
}

// NotificationData - данные уведомления
type NotificationData struct {
	// ID уведомления в БД
	ID int `json:"id"`

	// Тип уведомления (OPEN, CLOSE, SL, TP, SKIP, ERROR, RECONCILE)
	Type string `json:"type"`

	// Уровень важности (info, warn, error)
	Severity string `json:"severity"`

	// Базовый актив (если применимо)
	Asset string `json:"asset,omitempty"`

	// Текст сообщения
	Message string `json:"message"`

	// Дополнительные метаданные (цены, ID ордеров, PNL)
	Meta map[string]interface{} `json:"meta,omitempty"`

	// Время создания уведомления
	Timestamp time.Time `json:"timestamp"`
}

// StatsUpdateMessage - сообщение об обновлении статистики
type StatsUpdateMessage struct {
	BaseMessage
	Data *models.Stats `json:"data"`
}

// PositionUpdateMessage - сообщение об изменении позиции
type PositionUpdateMessage struct {
	BaseMessage
	Data *models.Position `json:"data"`
}

// ============ Фабричные функции для создания сообщений ============

// NewNotificationMessage создает сообщение уведомления
func NewNotificationMessage(notif *models.Notification) *NotificationMessage {
	return &NotificationMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeNotification,
			Timestamp: time.Now(),
		},
		Data: &NotificationData{
			ID:        notif.ID,
			Type:      notif.Type,
			Severity:  notif.Severity,
			Asset:     notif.Asset,
			Message:   notif.Message,
			Meta:      notif.Meta,
			Timestamp: notif.Timestamp,
		},
	}
}

// NewStatsUpdateMessage создает сообщение обновления статистики
func NewStatsUpdateMessage(stats *models.Stats) *StatsUpdateMessage {
	return &StatsUpdateMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeStatsUpdate,
			Timestamp: time.Now(),
		},
		Data: stats,
	}
}

// NewPositionUpdateMessage создает сообщение изменения позиции
func NewPositionUpdateMessage(position *models.Position) *PositionUpdateMessage {
	return &PositionUpdateMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypePositionUpdate,
			Timestamp: time.Now(),
		},
		Data: position,
	}
}
