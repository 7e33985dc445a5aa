package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"cryptoalpha/internal/service"
)

// NotificationHandler отвечает за журнал событий бота
//
// Endpoints:
// - GET /api/v1/notifications - получение списка уведомлений
// - GET /api/v1/notifications?types=open,error - с фильтрацией по типам
// - GET /api/v1/notifications?limit=50 - с ограничением количества
// - DELETE /api/v1/notifications - очистка журнала уведомлений
type NotificationHandler struct {
	notificationService service.NotificationServiceInterface
}

// NewNotificationHandler создает новый NotificationHandler с внедрением зависимости
func NewNotificationHandler(notificationService service.NotificationServiceInterface) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// GetNotificationsResponse представляет ответ списка уведомлений
type GetNotificationsResponse struct {
	Notifications []NotificationDTO `json:"notifications"`
	Total         int               `json:"total"`
}

// NotificationDTO представляет уведомление в API
type NotificationDTO struct {
	ID        int                    `json:"id"`
	Timestamp string                 `json:"timestamp"`
	Type      string                 `json:"type"`
	Severity  string                 `json:"severity"`
	Asset     string                 `json:"asset,omitempty"`
	Message   string                 `json:"message"`
	Meta      map[string]interface{} `json:"meta,omitempty"`
}

// GetNotifications возвращает список уведомлений с фильтрацией
//
// GET /api/v1/notifications
//
// Query параметры:
// - types (string): фильтр по типам через запятую (open,close,sl,tp,skip,error,reconcile)
// - limit (int): количество записей (по умолчанию 100)
//
// Типы уведомлений:
// - OPEN: открытие позиции по сигналу
// - CLOSE: закрытие позиции
// - SL: срабатывание Stop Loss
// - TP: срабатывание Take Profit
// - SKIP: сигнал отклонен (deny-list, неподдерживаемый символ)
// - ERROR: ошибка API/ордера
// - RECONCILE: конфликт записи позиции, нужна ручная сверка
//
// Примеры запросов:
// - GET /api/v1/notifications - все уведомления (последние 100)
// - GET /api/v1/notifications?types=error,reconcile - только проблемные
// - GET /api/v1/notifications?types=sl,tp&limit=20 - только выходы, 20 записей
//
// HTTP коды:
// - 200 OK: успешно, возвращает массив уведомлений
// - 500 Internal Server Error: ошибка сервера
func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	typesParam := r.URL.Query().Get("types")
	limitParam := r.URL.Query().Get("limit")

	var types []string
	if typesParam != "" {
		parts := strings.Split(typesParam, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed != "" {
				types = append(types, strings.ToUpper(trimmed))
			}
		}
	}

	limit := 100 // по умолчанию
	if limitParam != "" {
		if parsed, err := strconv.Atoi(limitParam); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	notifications, err := h.notificationService.GetNotifications(types, limit)
	if err != nil {
		h.respondWithError(w, http.StatusInternalServerError, "Failed to get notifications: "+err.Error())
		return
	}

	dtos := make([]NotificationDTO, 0, len(notifications))
	for _, n := range notifications {
		dto := NotificationDTO{
			ID:        n.ID,
			Timestamp: n.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			Type:      n.Type,
			Severity:  n.Severity,
			Asset:     n.Asset,
			Message:   n.Message,
			Meta:      n.Meta,
		}
		dtos = append(dtos, dto)
	}

	response := GetNotificationsResponse{
		Notifications: dtos,
		Total:         len(dtos),
	}

	h.respondWithJSON(w, http.StatusOK, response)
}

// ClearNotificationsResponse представляет ответ очистки уведомлений
type ClearNotificationsResponse struct {
	Message string `json:"message"`
}

// ClearNotifications очищает журнал уведомлений
//
// DELETE /api/v1/notifications
//
// Удаляет все уведомления из базы данных. Действие необратимо,
// леджер сигналов и позиций при этом не затрагивается.
//
// HTTP коды:
// - 200 OK: журнал успешно очищен
// - 500 Internal Server Error: ошибка при очистке
func (h *NotificationHandler) ClearNotifications(w http.ResponseWriter, r *http.Request) {
	if err := h.notificationService.ClearNotifications(); err != nil {
		h.respondWithError(w, http.StatusInternalServerError, "Failed to clear notifications: "+err.Error())
		return
	}

	response := ClearNotificationsResponse{
		Message: "Notifications cleared successfully",
	}

	h.respondWithJSON(w, http.StatusOK, response)
}

// respondWithError отправляет JSON ошибку
func (h *NotificationHandler) respondWithError(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithJSON отправляет JSON ответ
func (h *NotificationHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
