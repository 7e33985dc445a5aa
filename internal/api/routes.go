package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cryptoalpha/internal/api/handlers"
	"cryptoalpha/internal/api/middleware"
	"cryptoalpha/internal/service"
	"cryptoalpha/internal/websocket"
)

// Dependencies содержит все зависимости для API handlers
type Dependencies struct {
	SignalService       *service.SignalService
	PositionService     *service.PositionService
	StatsService        *service.StatsService
	SettingsService     *service.SettingsService
	NotificationService *service.NotificationService
	WSHub               *websocket.Hub

	// bcrypt-хеш API токена; пустая строка отключает аутентификацию
	APITokenHash string
}

// SetupRoutes настраивает все HTTP маршруты приложения
//
// Структура маршрутов:
//
// /api/v1/
//
//	├── /signals/
//	│   ├── POST / - прием пачки сигналов от генератора
//	│   ├── GET / - последние сигналы
//	│   └── GET /pending - сигналы в очереди на исполнение
//	├── /positions/
//	│   ├── GET / - последние позиции
//	│   ├── GET /open - открытые позиции
//	│   └── GET /{id} - одна позиция
//	├── /notifications/
//	│   ├── GET / - получить журнал событий
//	│   └── DELETE / - очистить журнал
//	├── /stats/
//	│   ├── GET / - агрегированная статистика
//	│   └── GET /pnl - P&L одного актива
//	├── /denylist/
//	│   ├── GET / - запрещенные символы
//	│   ├── POST / - добавить символ
//	│   └── DELETE /{symbol} - удалить символ
//	└── /settings/
//	    ├── GET / - получить настройки
//	    └── PATCH / - обновить настройки
//
// /ws/stream - WebSocket для real-time обновлений
// /health    - health check
// /metrics   - Prometheus метрики
//
// Middleware применяется в следующем порядке:
// 1. Recovery (для всех маршрутов)
// 2. Logging (для всех маршрутов)
// 3. CORS (для всех маршрутов)
// 4. TokenAuth (только для /api/v1)
func SetupRoutes(deps *Dependencies) *mux.Router {
	router := mux.NewRouter()

	// Глобальные middleware (применяются ко всем маршрутам)
	router.Use(middleware.Recovery)
	router.Use(middleware.Logging)
	router.Use(middleware.CORS)

	// Создание handlers с внедрением зависимостей
	var signalHandler *handlers.SignalHandler
	if deps != nil && deps.SignalService != nil {
		signalHandler = handlers.NewSignalHandler(deps.SignalService)
	}

	var positionHandler *handlers.PositionHandler
	if deps != nil && deps.PositionService != nil {
		positionHandler = handlers.NewPositionHandler(deps.PositionService)
	}

	var statsHandler *handlers.StatsHandler
	if deps != nil && deps.StatsService != nil {
		statsHandler = handlers.NewStatsHandler(deps.StatsService)
	}

	var settingsHandler *handlers.SettingsHandler
	var denylistHandler *handlers.DenylistHandler
	if deps != nil && deps.SettingsService != nil {
		settingsHandler = handlers.NewSettingsHandler(deps.SettingsService)
		denylistHandler = handlers.NewDenylistHandler(deps.SettingsService)
	}

	var notificationHandler *handlers.NotificationHandler
	if deps != nil && deps.NotificationService != nil {
		notificationHandler = handlers.NewNotificationHandler(deps.NotificationService)
	}

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	if deps != nil {
		api.Use(middleware.TokenAuth(deps.APITokenHash))
	}

	// Signal routes
	if signalHandler != nil {
		api.HandleFunc("/signals", signalHandler.IngestSignals).Methods("POST")
		api.HandleFunc("/signals", signalHandler.GetSignals).Methods("GET")
		api.HandleFunc("/signals/pending", signalHandler.GetPendingSignals).Methods("GET")
	}

	// Position routes
	if positionHandler != nil {
		api.HandleFunc("/positions", positionHandler.GetPositions).Methods("GET")
		api.HandleFunc("/positions/open", positionHandler.GetOpenPositions).Methods("GET")
		api.HandleFunc("/positions/{id:[0-9]+}", positionHandler.GetPosition).Methods("GET")
	}

	// Notification routes
	if notificationHandler != nil {
		api.HandleFunc("/notifications", notificationHandler.GetNotifications).Methods("GET")
		api.HandleFunc("/notifications", notificationHandler.ClearNotifications).Methods("DELETE")
	}

	// Stats routes
	if statsHandler != nil {
		api.HandleFunc("/stats", statsHandler.GetStats).Methods("GET")
		api.HandleFunc("/stats/pnl", statsHandler.GetPnlByAsset).Methods("GET")
	}

	// Denylist routes
	if denylistHandler != nil {
		api.HandleFunc("/denylist", denylistHandler.GetDenylist).Methods("GET")
		api.HandleFunc("/denylist", denylistHandler.AddToDenylist).Methods("POST")
		api.HandleFunc("/denylist/{symbol}", denylistHandler.RemoveFromDenylist).Methods("DELETE")
	}

	// Settings routes
	if settingsHandler != nil {
		api.HandleFunc("/settings", settingsHandler.GetSettings).Methods("GET")
		api.HandleFunc("/settings", settingsHandler.UpdateSettings).Methods("PATCH")
	}

	// WebSocket route
	if deps != nil && deps.WSHub != nil {
		router.HandleFunc("/ws/stream", func(w http.ResponseWriter, r *http.Request) {
			websocket.ServeWS(deps.WSHub, w, r)
		})
	}

	// Prometheus metrics
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	return router
}
