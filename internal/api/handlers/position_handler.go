package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"cryptoalpha/internal/models"
	"cryptoalpha/internal/repository"
	"cryptoalpha/internal/service"
)

// PositionHandler отвечает за просмотр леджера позиций
//
// Endpoints:
// - GET /api/v1/positions - последние позиции (открытые и закрытые)
// - GET /api/v1/positions/open - только открытые позиции
// - GET /api/v1/positions/{id} - одна позиция по ID
//
// Позиции через REST только читаются: их открывает и закрывает
// торговый цикл, ручное вмешательство идет через биржу и сверку.
type PositionHandler struct {
	positionService service.PositionServiceInterface
}

// NewPositionHandler создает новый PositionHandler с внедрением зависимости
func NewPositionHandler(positionService service.PositionServiceInterface) *PositionHandler {
	return &PositionHandler{
		positionService: positionService,
	}
}

// GetPositionsResponse представляет ответ списка позиций
type GetPositionsResponse struct {
	Positions []*models.Position `json:"positions"`
	Total     int                `json:"total"`
}

// GetPositions возвращает последние позиции
//
// GET /api/v1/positions?limit=50
//
// Query параметры:
// - limit (int): количество записей (по умолчанию 50)
//
// HTTP коды:
// - 200 OK: успешно
// - 500 Internal Server Error: ошибка сервера
func (h *PositionHandler) GetPositions(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		if parsed, err := strconv.Atoi(limitParam); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	positions, err := h.positionService.GetRecentPositions(limit)
	if err != nil {
		h.respondWithError(w, http.StatusInternalServerError, "Failed to get positions: "+err.Error())
		return
	}

	h.respondWithJSON(w, http.StatusOK, GetPositionsResponse{
		Positions: positions,
		Total:     len(positions),
	})
}

// GetOpenPositions возвращает открытые позиции
//
// GET /api/v1/positions/open
//
// HTTP коды:
// - 200 OK: успешно
// - 500 Internal Server Error: ошибка сервера
func (h *PositionHandler) GetOpenPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.positionService.GetOpenPositions()
	if err != nil {
		h.respondWithError(w, http.StatusInternalServerError, "Failed to get open positions: "+err.Error())
		return
	}

	h.respondWithJSON(w, http.StatusOK, GetPositionsResponse{
		Positions: positions,
		Total:     len(positions),
	})
}

// GetPosition возвращает одну позицию по ID
//
// GET /api/v1/positions/{id}
//
// HTTP коды:
// - 200 OK: успешно
// - 400 Bad Request: невалидный ID
// - 404 Not Found: позиция не найдена
// - 500 Internal Server Error: ошибка сервера
func (h *PositionHandler) GetPosition(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil || id <= 0 {
		h.respondWithError(w, http.StatusBadRequest, "Invalid position ID")
		return
	}

	position, err := h.positionService.GetPosition(id)
	if err != nil {
		if errors.Is(err, repository.ErrPositionNotFound) {
			h.respondWithError(w, http.StatusNotFound, "Position not found")
			return
		}
		h.respondWithError(w, http.StatusInternalServerError, "Failed to get position: "+err.Error())
		return
	}

	h.respondWithJSON(w, http.StatusOK, position)
}

// respondWithError отправляет JSON ошибку
func (h *PositionHandler) respondWithError(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithJSON отправляет JSON ответ
func (h *PositionHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
