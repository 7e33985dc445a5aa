package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"cryptoalpha/internal/models"
	"cryptoalpha/internal/service"
)

// StatsHandler обрабатывает HTTP запросы для статистики работы бота.
//
// Endpoints:
// - GET /api/v1/stats - агрегированная статистика
// - GET /api/v1/stats/pnl?asset=ETH - суммарный P&L одного актива
//
// Статистика включает:
// - Количество сделок и P&L (сегодня/всего)
// - Счетчики выигрышей, проигрышей, Stop Loss и Take Profit
// - Количество открытых позиций
// - Топ-5 активов по прибыли и по убыткам
type StatsHandler struct {
	statsService service.StatsServiceInterface
}

// NewStatsHandler создает новый StatsHandler с внедрением зависимостей.
func NewStatsHandler(statsService service.StatsServiceInterface) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

// GetStats возвращает агрегированную статистику работы бота.
//
// GET /api/v1/stats
//
// Response 200 OK:
//
//	{
//	  "total_trades": 42,
//	  "total_pnl": 310.50,
//	  "today_trades": 3,
//	  "today_pnl": 12.20,
//	  "win_count": 28,
//	  "loss_count": 14,
//	  "open_positions": 2,
//	  "stop_loss_count": 11,
//	  "take_profit_count": 25,
//	  "top_assets_by_pnl": [
//	    {"asset": "ETH", "value": 180.25},
//	    {"asset": "SOL", "value": 95.00}
//	  ],
//	  "worst_assets_by_pnl": [
//	    {"asset": "DOGE", "value": -42.30}
//	  ]
//	}
//
// Response 500 Internal Server Error:
//
//	{"error": "failed to get stats", "details": "..."}
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if h.statsService == nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "stats service not initialized",
		})
		return
	}

	stats, err := h.statsService.GetStats()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{
			"error":   "failed to get stats",
			"details": err.Error(),
		})
		return
	}

	// Пустые массивы возвращаются как [], а не null
	if stats.TopAssets == nil {
		stats.TopAssets = []models.AssetStat{}
	}
	if stats.WorstAssets == nil {
		stats.WorstAssets = []models.AssetStat{}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(stats)
}

// PnlByAssetResponse представляет суммарный P&L одного актива
type PnlByAssetResponse struct {
	Asset string  `json:"asset"`
	Pnl   float64 `json:"pnl"`
}

// GetPnlByAsset возвращает суммарный P&L по одному активу.
//
// GET /api/v1/stats/pnl?asset=ETH
//
// Query Parameters:
// - asset (required): базовый актив, например "ETH"
//
// Response 200 OK:
//
//	{"asset": "ETH", "pnl": 180.25}
//
// Response 400 Bad Request:
//
//	{"error": "asset query parameter is required"}
//
// Response 500 Internal Server Error:
//
//	{"error": "failed to get pnl", "details": "..."}
func (h *StatsHandler) GetPnlByAsset(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if h.statsService == nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "stats service not initialized",
		})
		return
	}

	asset := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("asset")))
	if asset == "" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "asset query parameter is required",
		})
		return
	}

	pnl, err := h.statsService.GetPnlByAsset(asset)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{
			"error":   "failed to get pnl",
			"details": err.Error(),
		})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(PnlByAssetResponse{
		Asset: asset,
		Pnl:   pnl,
	})
}
