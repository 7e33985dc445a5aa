package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"cryptoalpha/internal/models"
	"cryptoalpha/internal/service"
)

// SignalHandler отвечает за прием и просмотр торговых сигналов
//
// Endpoints:
// - POST /api/v1/signals - прием пачки сигналов от генератора
// - GET /api/v1/signals - последние сигналы (включая отработанные)
// - GET /api/v1/signals/pending - сигналы, ожидающие исполнения
type SignalHandler struct {
	signalService service.SignalServiceInterface
}

// NewSignalHandler создает новый SignalHandler с внедрением зависимости
func NewSignalHandler(signalService service.SignalServiceInterface) *SignalHandler {
	return &SignalHandler{
		signalService: signalService,
	}
}

// SignalInput представляет кандидата в сигналы от внешнего генератора
type SignalInput struct {
	GeneratedAt *time.Time `json:"generated_at,omitempty"`
	Asset       string     `json:"asset"`
	Action      string     `json:"action"`
	EntryMin    float64    `json:"entry_min"`
	EntryMax    float64    `json:"entry_max"`
	StopLoss    float64    `json:"stop_loss"`
	TakeProfit  float64    `json:"take_profit"`
	Probability float64    `json:"probability"`
	Confidence  float64    `json:"confidence"`
	RiskReward  float64    `json:"risk_reward"`
	Reasoning   string     `json:"reasoning,omitempty"`
}

// IngestSignalsRequest представляет тело запроса приема сигналов
type IngestSignalsRequest struct {
	Signals []SignalInput `json:"signals"`
}

// IngestSignals принимает пачку кандидатов от генератора сигналов
//
// POST /api/v1/signals
//
// Тело запроса:
//
//	{
//	  "signals": [
//	    {
//	      "asset": "ETH",
//	      "action": "BUY",
//	      "entry_min": 1950.0,
//	      "entry_max": 2050.0,
//	      "stop_loss": 1800.0,
//	      "take_profit": 2400.0,
//	      "probability": 72.5,
//	      "confidence": 80.0,
//	      "risk_reward": 2.3,
//	      "reasoning": "breakout retest"
//	    }
//	  ]
//	}
//
// Каждый кандидат проходит фильтр приема независимо: валидация
// структуры, пороги качества из настроек и дневной лимит. Отклоненные
// кандидаты возвращаются в поле rejected с причиной, остальная пачка
// при этом сохраняется.
//
// HTTP коды:
// - 200 OK: пачка обработана, возвращает отчет accepted/rejected
// - 400 Bad Request: невалидный JSON или пустая пачка
// - 500 Internal Server Error: ошибка сохранения
func (h *SignalHandler) IngestSignals(w http.ResponseWriter, r *http.Request) {
	var req IngestSignalsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if len(req.Signals) == 0 {
		h.respondWithError(w, http.StatusBadRequest, "Signals list is empty")
		return
	}

	now := time.Now().UTC()
	candidates := make([]*models.Signal, 0, len(req.Signals))
	for _, in := range req.Signals {
		generatedAt := now
		if in.GeneratedAt != nil {
			generatedAt = in.GeneratedAt.UTC()
		}
		candidates = append(candidates, &models.Signal{
			GeneratedAt: generatedAt,
			Asset:       in.Asset,
			Action:      in.Action,
			EntryMin:    in.EntryMin,
			EntryMax:    in.EntryMax,
			StopLoss:    in.StopLoss,
			TakeProfit:  in.TakeProfit,
			Probability: in.Probability,
			Confidence:  in.Confidence,
			RiskReward:  in.RiskReward,
			Reasoning:   in.Reasoning,
		})
	}

	report, err := h.signalService.IngestSignals(candidates)
	if err != nil {
		h.respondWithError(w, http.StatusInternalServerError, "Failed to ingest signals: "+err.Error())
		return
	}

	h.respondWithJSON(w, http.StatusOK, report)
}

// GetSignalsResponse представляет ответ списка сигналов
type GetSignalsResponse struct {
	Signals []*models.Signal `json:"signals"`
	Total   int              `json:"total"`
}

// GetSignals возвращает последние сигналы, включая отработанные
//
// GET /api/v1/signals?limit=50
//
// Query параметры:
// - limit (int): количество записей (по умолчанию 100)
//
// HTTP коды:
// - 200 OK: успешно
// - 500 Internal Server Error: ошибка сервера
func (h *SignalHandler) GetSignals(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		if parsed, err := strconv.Atoi(limitParam); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	signals, err := h.signalService.GetRecentSignals(limit)
	if err != nil {
		h.respondWithError(w, http.StatusInternalServerError, "Failed to get signals: "+err.Error())
		return
	}

	h.respondWithJSON(w, http.StatusOK, GetSignalsResponse{
		Signals: signals,
		Total:   len(signals),
	})
}

// GetPendingSignals возвращает сигналы в очереди на исполнение
//
// GET /api/v1/signals/pending
//
// Возвращает принятые, но еще не отработанные сигналы в порядке
// поступления - в том же порядке их рассматривает торговый цикл.
//
// HTTP коды:
// - 200 OK: успешно
// - 500 Internal Server Error: ошибка сервера
func (h *SignalHandler) GetPendingSignals(w http.ResponseWriter, r *http.Request) {
	signals, err := h.signalService.GetPendingSignals()
	if err != nil {
		h.respondWithError(w, http.StatusInternalServerError, "Failed to get pending signals: "+err.Error())
		return
	}

	h.respondWithJSON(w, http.StatusOK, GetSignalsResponse{
		Signals: signals,
		Total:   len(signals),
	})
}

// respondWithError отправляет JSON ошибку
func (h *SignalHandler) respondWithError(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithJSON отправляет JSON ответ
func (h *SignalHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
