package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"cryptoalpha/internal/service"
	"cryptoalpha/pkg/utils"
)

// DenylistHandler отвечает за управление deny-list символов
//
// Endpoints:
// - GET /api/v1/denylist - получение списка запрещенных символов
// - POST /api/v1/denylist - добавление символа
// - DELETE /api/v1/denylist/{symbol} - удаление символа
//
// Deny-list пополняется автоматически (биржа отвергла символ как
// неподдерживаемый) и вручную через эти endpoints. Сигналы по
// символам из списка отклоняются до обращения к бирже.
type DenylistHandler struct {
	settingsService service.SettingsServiceInterface
}

// NewDenylistHandler создает новый DenylistHandler с внедрением зависимости
func NewDenylistHandler(settingsService service.SettingsServiceInterface) *DenylistHandler {
	return &DenylistHandler{
		settingsService: settingsService,
	}
}

// GetDenylistResponse представляет ответ списка запрещенных символов
type GetDenylistResponse struct {
	Symbols []string `json:"symbols"`
	Total   int      `json:"total"`
}

// GetDenylist возвращает все запрещенные символы
//
// GET /api/v1/denylist
//
// HTTP коды:
// - 200 OK: успешно
// - 500 Internal Server Error: ошибка сервера
func (h *DenylistHandler) GetDenylist(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsService.GetSettings()
	if err != nil {
		h.respondWithError(w, http.StatusInternalServerError, "Failed to get denylist: "+err.Error())
		return
	}

	symbols := settings.DeniedSymbols
	if symbols == nil {
		symbols = []string{}
	}

	h.respondWithJSON(w, http.StatusOK, GetDenylistResponse{
		Symbols: symbols,
		Total:   len(symbols),
	})
}

// AddToDenylistRequest представляет тело запроса добавления символа
type AddToDenylistRequest struct {
	Symbol string `json:"symbol"`
}

// DenylistChangeResponse представляет результат изменения deny-list
type DenylistChangeResponse struct {
	Symbol  string `json:"symbol"`
	Changed bool   `json:"changed"`
}

// AddToDenylist добавляет символ в deny-list
//
// POST /api/v1/denylist
//
// Тело запроса: {"symbol": "SHIBUSDT"}
//
// Символ нормализуется к верхнему регистру. Повторное добавление
// не является ошибкой: в ответе changed=false.
//
// HTTP коды:
// - 201 Created: символ добавлен (или уже присутствовал)
// - 400 Bad Request: невалидный JSON или некорректный символ
// - 500 Internal Server Error: ошибка сохранения
func (h *DenylistHandler) AddToDenylist(w http.ResponseWriter, r *http.Request) {
	var req AddToDenylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	symbol := utils.NormalizeSymbol(req.Symbol)
	if err := utils.ValidateSymbol(symbol); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid symbol: "+err.Error())
		return
	}

	added, err := h.settingsService.AddDeniedSymbol(symbol)
	if err != nil {
		h.respondWithError(w, http.StatusInternalServerError, "Failed to add to denylist: "+err.Error())
		return
	}

	h.respondWithJSON(w, http.StatusCreated, DenylistChangeResponse{
		Symbol:  symbol,
		Changed: added,
	})
}

// RemoveFromDenylist удаляет символ из deny-list
//
// DELETE /api/v1/denylist/{symbol}
//
// HTTP коды:
// - 200 OK: символ удален
// - 404 Not Found: символа не было в списке
// - 500 Internal Server Error: ошибка сохранения
func (h *DenylistHandler) RemoveFromDenylist(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	symbol := utils.NormalizeSymbol(vars["symbol"])
	if symbol == "" {
		h.respondWithError(w, http.StatusBadRequest, "Symbol is required")
		return
	}

	removed, err := h.settingsService.RemoveDeniedSymbol(symbol)
	if err != nil {
		h.respondWithError(w, http.StatusInternalServerError, "Failed to remove from denylist: "+err.Error())
		return
	}

	if !removed {
		h.respondWithError(w, http.StatusNotFound, "Symbol not in denylist")
		return
	}

	h.respondWithJSON(w, http.StatusOK, DenylistChangeResponse{
		Symbol:  symbol,
		Changed: true,
	})
}

// respondWithError отправляет JSON ошибку
func (h *DenylistHandler) respondWithError(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithJSON отправляет JSON ответ
func (h *DenylistHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
