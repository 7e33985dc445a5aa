package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"cryptoalpha/internal/service"
)

// SettingsHandler отвечает за управление глобальными настройками бота
//
// Endpoints:
// - GET /api/v1/settings - получение глобальных настроек
// - PATCH /api/v1/settings - частичное обновление настроек
//
// Настройки хранятся одной строкой и перечитываются ботом в начале
// каждого цикла, поэтому изменения применяются без перезапуска.
type SettingsHandler struct {
	settingsService service.SettingsServiceInterface
}

// NewSettingsHandler создает новый SettingsHandler с внедрением зависимости
func NewSettingsHandler(settingsService service.SettingsServiceInterface) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
	}
}

// GetSettings возвращает текущие глобальные настройки
//
// GET /api/v1/settings
//
// HTTP коды:
// - 200 OK: успешно
// - 500 Internal Server Error: ошибка сервера
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsService.GetSettings()
	if err != nil {
		h.respondWithError(w, http.StatusInternalServerError, "Failed to get settings: "+err.Error())
		return
	}

	h.respondWithJSON(w, http.StatusOK, settings)
}

// UpdateSettings частично обновляет глобальные настройки
//
// PATCH /api/v1/settings
//
// Тело запроса содержит только изменяемые поля:
//
//	{
//	  "enable_auto_trading": true,
//	  "trade_amount_quote": 25.0,
//	  "min_confidence": 70.0,
//	  "min_risk_reward": 2.0,
//	  "max_signals_per_day": 5
//	}
//
// Правила валидации:
// - trade_amount_quote: > 0
// - min_confidence: [0, 100]
// - min_risk_reward: > 0
// - max_signals_per_day: >= 1
//
// HTTP коды:
// - 200 OK: настройки обновлены, возвращает полный объект
// - 400 Bad Request: невалидный JSON или значение вне диапазона
// - 500 Internal Server Error: ошибка сохранения
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	settings, err := h.settingsService.UpdateSettings(&req)
	if err != nil {
		if isValidationError(err) {
			h.respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.respondWithError(w, http.StatusInternalServerError, "Failed to update settings: "+err.Error())
		return
	}

	h.respondWithJSON(w, http.StatusOK, settings)
}

// isValidationError различает ошибки валидации и ошибки хранилища
func isValidationError(err error) bool {
	return errors.Is(err, service.ErrInvalidTradeAmount) ||
		errors.Is(err, service.ErrInvalidMinConfidence) ||
		errors.Is(err, service.ErrInvalidMinRiskReward) ||
		errors.Is(err, service.ErrInvalidMaxSignalsPerDay)
}

// respondWithError отправляет JSON ошибку
func (h *SettingsHandler) respondWithError(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithJSON отправляет JSON ответ
func (h *SettingsHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
