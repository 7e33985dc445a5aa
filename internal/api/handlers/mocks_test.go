package handlers

import (
	"errors"
	"strings"
	"sync"
	"time"

	"cryptoalpha/internal/models"
	"cryptoalpha/internal/repository"
	"cryptoalpha/internal/service"
)

// ============ Mock Signal Service ============

// MockSignalService мок для SignalServiceInterface
type MockSignalService struct {
	signals   []*models.Signal
	report    *service.IngestReport
	ingestErr error
	getErr    error
	nextID    int
	mu        sync.RWMutex
}

// NewMockSignalService создает новый мок сервиса сигналов
func NewMockSignalService() *MockSignalService {
	return &MockSignalService{
		signals: make([]*models.Signal, 0),
		nextID:  1,
	}
}

func (m *MockSignalService) IngestSignals(candidates []*models.Signal) (*service.IngestReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ingestErr != nil {
		return nil, m.ingestErr
	}

	if m.report != nil {
		return m.report, nil
	}

	report := &service.IngestReport{}
	for _, c := range candidates {
		c.ID = m.nextID
		m.nextID++
		m.signals = append(m.signals, c)
		report.Accepted = append(report.Accepted, c)
	}
	return report, nil
}

func (m *MockSignalService) GetPendingSignals() ([]*models.Signal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.getErr != nil {
		return nil, m.getErr
	}

	result := make([]*models.Signal, 0, len(m.signals))
	for _, s := range m.signals {
		if !s.Dispatched {
			result = append(result, s)
		}
	}
	return result, nil
}

func (m *MockSignalService) GetRecentSignals(limit int) ([]*models.Signal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.getErr != nil {
		return nil, m.getErr
	}

	result := make([]*models.Signal, 0, len(m.signals))
	result = append(result, m.signals...)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockSignalService) GetSignalCount() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.getErr != nil {
		return 0, m.getErr
	}
	return len(m.signals), nil
}

// SetError устанавливает ошибку для указанной операции
func (m *MockSignalService) SetError(operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch operation {
	case "ingest":
		m.ingestErr = err
	case "get":
		m.getErr = err
	}
}

// SetReport подменяет отчет приема (для настройки тестов)
func (m *MockSignalService) SetReport(report *service.IngestReport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.report = report
}

// AddSignal добавляет сигнал напрямую (для настройки тестов)
func (m *MockSignalService) AddSignal(asset string, dispatched bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.signals = append(m.signals, &models.Signal{
		ID:          m.nextID,
		GeneratedAt: time.Now().UTC(),
		Asset:       asset,
		Action:      models.SignalActionBuy,
		Dispatched:  dispatched,
	})
	m.nextID++
}

// ============ Mock Position Service ============

// MockPositionService мок для PositionServiceInterface
type MockPositionService struct {
	positions map[int]*models.Position
	getErr    error
	nextID    int
	mu        sync.RWMutex
}

// NewMockPositionService создает новый мок сервиса позиций
func NewMockPositionService() *MockPositionService {
	return &MockPositionService{
		positions: make(map[int]*models.Position),
		nextID:    1,
	}
}

func (m *MockPositionService) GetOpenPositions() ([]*models.Position, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.getErr != nil {
		return nil, m.getErr
	}

	result := make([]*models.Position, 0)
	for _, p := range m.positions {
		if p.Status == models.PositionStatusOpen {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *MockPositionService) GetRecentPositions(limit int) ([]*models.Position, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.getErr != nil {
		return nil, m.getErr
	}

	result := make([]*models.Position, 0, len(m.positions))
	for _, p := range m.positions {
		result = append(result, p)
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockPositionService) GetPosition(id int) (*models.Position, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.getErr != nil {
		return nil, m.getErr
	}

	if p, exists := m.positions[id]; exists {
		return p, nil
	}
	return nil, repository.ErrPositionNotFound
}

func (m *MockPositionService) GetOpenPositionCount() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.getErr != nil {
		return 0, m.getErr
	}

	count := 0
	for _, p := range m.positions {
		if p.Status == models.PositionStatusOpen {
			count++
		}
	}
	return count, nil
}

// SetError устанавливает ошибку для операций чтения
func (m *MockPositionService) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getErr = err
}

// AddPosition добавляет позицию напрямую (для настройки тестов)
func (m *MockPositionService) AddPosition(asset, status string) *models.Position {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := &models.Position{
		ID:         m.nextID,
		Asset:      asset,
		Symbol:     asset + "USDT",
		Side:       models.SideBuy,
		Quantity:   1,
		EntryPrice: 100,
		Status:     status,
		OpenedAt:   time.Now().UTC(),
	}
	m.nextID++
	m.positions[p.ID] = p
	return p
}

// ============ Mock Settings Service ============

// MockSettingsService мок для SettingsServiceInterface
type MockSettingsService struct {
	settings  *models.Settings
	getErr    error
	updateErr error
	mu        sync.RWMutex
}

// NewMockSettingsService создает новый мок сервиса настроек
func NewMockSettingsService() *MockSettingsService {
	return &MockSettingsService{
		settings: &models.Settings{
			ID:                1,
			EnableAutoTrading: true,
			TradeAmountQuote:  10,
			MinConfidence:     65,
			MinRiskReward:     1.5,
			MaxSignalsPerDay:  10,
			DeniedSymbols:     []string{},
			UpdatedAt:         time.Now().UTC(),
		},
	}
}

func (m *MockSettingsService) GetSettings() (*models.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.settings, nil
}

func (m *MockSettingsService) UpdateSettings(req *service.UpdateSettingsRequest) (*models.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.updateErr != nil {
		return nil, m.updateErr
	}

	if req.TradeAmountQuote != nil && *req.TradeAmountQuote <= 0 {
		return nil, service.ErrInvalidTradeAmount
	}
	if req.MinConfidence != nil && (*req.MinConfidence < 0 || *req.MinConfidence > 100) {
		return nil, service.ErrInvalidMinConfidence
	}
	if req.MinRiskReward != nil && *req.MinRiskReward <= 0 {
		return nil, service.ErrInvalidMinRiskReward
	}
	if req.MaxSignalsPerDay != nil && *req.MaxSignalsPerDay < 1 {
		return nil, service.ErrInvalidMaxSignalsPerDay
	}

	if req.EnableAutoTrading != nil {
		m.settings.EnableAutoTrading = *req.EnableAutoTrading
	}
	if req.TradeAmountQuote != nil {
		m.settings.TradeAmountQuote = *req.TradeAmountQuote
	}
	if req.MinConfidence != nil {
		m.settings.MinConfidence = *req.MinConfidence
	}
	if req.MinRiskReward != nil {
		m.settings.MinRiskReward = *req.MinRiskReward
	}
	if req.MaxSignalsPerDay != nil {
		m.settings.MaxSignalsPerDay = *req.MaxSignalsPerDay
	}
	m.settings.UpdatedAt = time.Now().UTC()

	return m.settings, nil
}

func (m *MockSettingsService) AddDeniedSymbol(symbol string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.updateErr != nil {
		return false, m.updateErr
	}

	symbol = strings.ToUpper(symbol)
	for _, s := range m.settings.DeniedSymbols {
		if s == symbol {
			return false, nil
		}
	}
	m.settings.DeniedSymbols = append(m.settings.DeniedSymbols, symbol)
	return true, nil
}

func (m *MockSettingsService) RemoveDeniedSymbol(symbol string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.updateErr != nil {
		return false, m.updateErr
	}

	symbol = strings.ToUpper(symbol)
	for i, s := range m.settings.DeniedSymbols {
		if s == symbol {
			m.settings.DeniedSymbols = append(m.settings.DeniedSymbols[:i], m.settings.DeniedSymbols[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// SetError устанавливает ошибку для указанной операции
func (m *MockSettingsService) SetError(operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch operation {
	case "get":
		m.getErr = err
	case "update":
		m.updateErr = err
	}
}

// ============ Mock Notification Service ============

// MockNotificationService мок для NotificationServiceInterface
type MockNotificationService struct {
	notifications []*models.Notification
	createErr     error
	getErr        error
	clearErr      error
	nextID        int
	mu            sync.RWMutex
}

// NewMockNotificationService создает новый мок сервиса уведомлений
func NewMockNotificationService() *MockNotificationService {
	return &MockNotificationService{
		notifications: make([]*models.Notification, 0),
		nextID:        1,
	}
}

func (m *MockNotificationService) GetNotifications(types []string, limit int) ([]*models.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.getErr != nil {
		return nil, m.getErr
	}

	result := make([]*models.Notification, 0, len(m.notifications))

	if len(types) == 0 {
		result = append(result, m.notifications...)
	} else {
		typeSet := make(map[string]bool)
		for _, t := range types {
			typeSet[t] = true
		}
		for _, n := range m.notifications {
			if typeSet[n.Type] {
				result = append(result, n)
			}
		}
	}

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

func (m *MockNotificationService) ClearNotifications() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.clearErr != nil {
		return m.clearErr
	}

	m.notifications = make([]*models.Notification, 0)
	return nil
}

func (m *MockNotificationService) CreateNotification(notif *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return m.createErr
	}

	notif.ID = m.nextID
	m.nextID++
	notif.Timestamp = time.Now()
	m.notifications = append(m.notifications, notif)
	return nil
}

func (m *MockNotificationService) GetNotificationCount() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.getErr != nil {
		return 0, m.getErr
	}
	return len(m.notifications), nil
}

// SetError устанавливает ошибку для указанной операции
func (m *MockNotificationService) SetError(operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch operation {
	case "create":
		m.createErr = err
	case "get":
		m.getErr = err
	case "clear":
		m.clearErr = err
	}
}

// AddNotification добавляет уведомление напрямую (для настройки тестов)
func (m *MockNotificationService) AddNotification(notifType, severity, asset, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.notifications = append(m.notifications, &models.Notification{
		ID:        m.nextID,
		Type:      notifType,
		Severity:  severity,
		Asset:     asset,
		Message:   message,
		Timestamp: time.Now(),
	})
	m.nextID++
}

// ============ Mock Stats Service ============

// MockStatsService мок для StatsServiceInterface
type MockStatsService struct {
	stats      *models.Stats
	pnlByAsset map[string]float64
	getErr     error
	pnlErr     error
	mu         sync.RWMutex
}

// NewMockStatsService создает новый мок сервиса статистики
func NewMockStatsService() *MockStatsService {
	return &MockStatsService{
		stats:      &models.Stats{},
		pnlByAsset: make(map[string]float64),
	}
}

func (m *MockStatsService) GetStats() (*models.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.stats, nil
}

func (m *MockStatsService) GetPnlByAsset(asset string) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.pnlErr != nil {
		return 0, m.pnlErr
	}
	return m.pnlByAsset[asset], nil
}

// SetError устанавливает ошибку для указанной операции
func (m *MockStatsService) SetError(operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch operation {
	case "get":
		m.getErr = err
	case "pnl":
		m.pnlErr = err
	}
}

// SetStats устанавливает статистику напрямую (для настройки тестов)
func (m *MockStatsService) SetStats(stats *models.Stats) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats = stats
}

// SetPnl устанавливает P&L актива (для настройки тестов)
func (m *MockStatsService) SetPnl(asset string, pnl float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pnlByAsset[asset] = pnl
}

// ============ Helper errors for tests ============

var (
	ErrMockDatabase = errors.New("mock database error")
	ErrMockService  = errors.New("mock service error")
)

// ============ Проверяем, что моки реализуют интерфейсы ============

var _ service.SignalServiceInterface = (*MockSignalService)(nil)
var _ service.PositionServiceInterface = (*MockPositionService)(nil)
var _ service.SettingsServiceInterface = (*MockSettingsService)(nil)
var _ service.NotificationServiceInterface = (*MockNotificationService)(nil)
var _ service.StatsServiceInterface = (*MockStatsService)(nil)
