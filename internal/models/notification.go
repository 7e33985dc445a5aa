package models

import "time"

// Notification представляет событие жизненного цикла для журнала и дашборда.
//
// Уведомления пишутся как побочный эффект операций ядра: провал записи
// уведомления никогда не откатывает закоммиченное состояние леджера.
type Notification struct {
	ID        int                    `json:"id" db:"id"`
	Timestamp time.Time              `json:"timestamp" db:"timestamp"`
	Type      string                 `json:"type" db:"type"`         // OPEN, CLOSE, SL, TP, SKIP, ERROR, RECONCILE
	Severity  string                 `json:"severity" db:"severity"` // info, warn, error
	Asset     string                 `json:"asset,omitempty" db:"asset"`
	Message   string                 `json:"message" db:"message"`
	Meta      map[string]interface{} `json:"meta,omitempty" db:"meta"` // дополнительные данные (JSON в БД)
}

// Типы уведомлений
const (
	NotificationTypeOpen      = "OPEN"      // открытие позиции
	NotificationTypeClose     = "CLOSE"     // закрытие позиции
	NotificationTypeSL        = "SL"        // закрытие по стоп-лоссу
	NotificationTypeTP        = "TP"        // закрытие по тейк-профиту
	NotificationTypeSkip      = "SKIP"      // сигнал отклонен (deny-list, неподдерживаемый символ)
	NotificationTypeError     = "ERROR"     // ошибка API/ордера
	NotificationTypeReconcile = "RECONCILE" // конфликт записи позиции, нужна ручная сверка
)

// Уровни важности
const (
	SeverityInfo  = "info"
	SeverityWarn  = "warn"
	SeverityError = "error"
)
