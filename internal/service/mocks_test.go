package service

import (
	"sort"
	"strings"
	"time"

	"cryptoalpha/internal/models"
	"cryptoalpha/internal/repository"
)

// ============ Mock SignalRepository ============

type MockSignalRepository struct {
	signals   map[int]*models.Signal
	createErr error
	getErr    error
	markErr   error
	countErr  error
	nextID    int
}

func NewMockSignalRepository() *MockSignalRepository {
	return &MockSignalRepository{
		signals: make(map[int]*models.Signal),
		nextID:  1,
	}
}

func (m *MockSignalRepository) Create(signal *models.Signal) error {
	if m.createErr != nil {
		return m.createErr
	}
	signal.ID = m.nextID
	m.nextID++
	if signal.GeneratedAt.IsZero() {
		signal.GeneratedAt = time.Now().UTC()
	}
	m.signals[signal.ID] = signal
	return nil
}

func (m *MockSignalRepository) GetByID(id int) (*models.Signal, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if signal, exists := m.signals[id]; exists {
		return signal, nil
	}
	return nil, repository.ErrSignalNotFound
}

func (m *MockSignalRepository) GetPending() ([]*models.Signal, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	var result []*models.Signal
	for _, s := range m.signals {
		if !s.Dispatched {
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].GeneratedAt.Before(result[j].GeneratedAt)
	})
	return result, nil
}

func (m *MockSignalRepository) GetRecent(limit int) ([]*models.Signal, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	var result []*models.Signal
	for _, s := range m.signals {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].GeneratedAt.After(result[j].GeneratedAt)
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockSignalRepository) CountPendingToday(now time.Time) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	count := 0
	for _, s := range m.signals {
		if !s.Dispatched && !s.GeneratedAt.Before(dayStart) {
			count++
		}
	}
	return count, nil
}

func (m *MockSignalRepository) HasDispatchedSince(asset string, cutoff time.Time) (bool, error) {
	if m.getErr != nil {
		return false, m.getErr
	}
	for _, s := range m.signals {
		if s.Asset == asset && s.Dispatched && s.GeneratedAt.After(cutoff) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockSignalRepository) MarkDispatched(id int) error {
	if m.markErr != nil {
		return m.markErr
	}
	signal, exists := m.signals[id]
	if !exists {
		return repository.ErrSignalNotFound
	}
	if signal.Dispatched {
		return repository.ErrSignalAlreadyDispatched
	}
	signal.Dispatched = true
	return nil
}

func (m *MockSignalRepository) Count() (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return len(m.signals), nil
}

// ============ Mock PositionRepository ============

type MockPositionRepository struct {
	positions map[int]*models.Position
	claimErr  error
	getErr    error
	closeErr  error
	nextID    int
}

func NewMockPositionRepository() *MockPositionRepository {
	return &MockPositionRepository{
		positions: make(map[int]*models.Position),
		nextID:    1,
	}
}

func (m *MockPositionRepository) ClaimOpen(position *models.Position) error {
	if m.claimErr != nil {
		return m.claimErr
	}
	for _, p := range m.positions {
		if p.Asset == position.Asset && p.Status == models.PositionStatusOpen {
			return repository.ErrPositionAlreadyOpen
		}
	}
	position.ID = m.nextID
	m.nextID++
	position.Status = models.PositionStatusOpen
	if position.OpenedAt.IsZero() {
		position.OpenedAt = time.Now().UTC()
	}
	m.positions[position.ID] = position
	return nil
}

func (m *MockPositionRepository) GetByID(id int) (*models.Position, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if position, exists := m.positions[id]; exists {
		return position, nil
	}
	return nil, repository.ErrPositionNotFound
}

func (m *MockPositionRepository) GetOpen() ([]*models.Position, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	var result []*models.Position
	for _, p := range m.positions {
		if p.Status == models.PositionStatusOpen {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].OpenedAt.Before(result[j].OpenedAt)
	})
	return result, nil
}

func (m *MockPositionRepository) GetRecent(limit int) ([]*models.Position, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	var result []*models.Position
	for _, p := range m.positions {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].OpenedAt.After(result[j].OpenedAt)
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockPositionRepository) HasOpenForAsset(asset string) (bool, error) {
	if m.getErr != nil {
		return false, m.getErr
	}
	for _, p := range m.positions {
		if p.Asset == asset && p.Status == models.PositionStatusOpen {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockPositionRepository) Close(id int, exitPrice float64, closedAt time.Time) error {
	if m.closeErr != nil {
		return m.closeErr
	}
	position, exists := m.positions[id]
	if !exists {
		return repository.ErrPositionNotFound
	}
	if position.Status != models.PositionStatusOpen {
		return repository.ErrPositionNotOpen
	}
	position.Status = models.PositionStatusClosed
	position.ExitPrice = &exitPrice
	position.ClosedAt = &closedAt
	return nil
}

func (m *MockPositionRepository) CountOpen() (int, error) {
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

// ============ Mock SettingsRepository ============

type MockSettingsRepository struct {
	settings  *models.Settings
	getErr    error
	updateErr error
	denyErr   error
}

func NewMockSettingsRepository() *MockSettingsRepository {
	return &MockSettingsRepository{
		settings: &models.Settings{
			ID:                1,
			EnableAutoTrading: false,
			TradeAmountQuote:  10.0,
			MinConfidence:     65.0,
			MinRiskReward:     1.5,
			MaxSignalsPerDay:  10,
			DeniedSymbols:     []string{},
			UpdatedAt:         time.Now(),
		},
	}
}

func (m *MockSettingsRepository) Get() (*models.Settings, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.settings, nil
}

func (m *MockSettingsRepository) Update(settings *models.Settings) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.settings = settings
	return nil
}

func (m *MockSettingsRepository) AddDeniedSymbol(symbol string) (bool, error) {
	if m.denyErr != nil {
		return false, m.denyErr
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	for _, s := range m.settings.DeniedSymbols {
		if s == symbol {
			return false, nil
		}
	}
	m.settings.DeniedSymbols = append(m.settings.DeniedSymbols, symbol)
	return true, nil
}

func (m *MockSettingsRepository) RemoveDeniedSymbol(symbol string) (bool, error) {
	if m.denyErr != nil {
		return false, m.denyErr
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	for i, s := range m.settings.DeniedSymbols {
		if s == symbol {
			m.settings.DeniedSymbols = append(m.settings.DeniedSymbols[:i], m.settings.DeniedSymbols[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// ============ Mock NotificationRepository ============

type MockNotificationRepository struct {
	notifications []*models.Notification
	createErr     error
	getErr        error
	deleteErr     error
	nextID        int
}

func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{nextID: 1}
}

func (m *MockNotificationRepository) Create(notif *models.Notification) error {
	if m.createErr != nil {
		return m.createErr
	}
	notif.ID = m.nextID
	m.nextID++
	if notif.Timestamp.IsZero() {
		notif.Timestamp = time.Now().UTC()
	}
	m.notifications = append(m.notifications, notif)
	return nil
}

func (m *MockNotificationRepository) GetRecent(limit int) ([]*models.Notification, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	result := make([]*models.Notification, len(m.notifications))
	copy(result, m.notifications)
	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockNotificationRepository) GetByTypes(types []string, limit int) ([]*models.Notification, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}
	var result []*models.Notification
	for _, n := range m.notifications {
		if typeSet[n.Type] {
			result = append(result, n)
		}
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockNotificationRepository) Count() (int, error) {
	if m.getErr != nil {
		return 0, m.getErr
	}
	return len(m.notifications), nil
}

func (m *MockNotificationRepository) DeleteAll() error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.notifications = nil
	return nil
}

func (m *MockNotificationRepository) DeleteOlderThan(timestamp time.Time) (int64, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	var kept []*models.Notification
	var deleted int64
	for _, n := range m.notifications {
		if n.Timestamp.Before(timestamp) {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	m.notifications = kept
	return deleted, nil
}

// ============ Mock StatsRepository ============

type MockStatsRepository struct {
	stats       *models.Stats
	topAssets   []models.AssetStat
	worstAssets []models.AssetStat
	pnlByAsset  map[string]float64
	getErr      error
}

func NewMockStatsRepository() *MockStatsRepository {
	return &MockStatsRepository{
		stats:      &models.Stats{},
		pnlByAsset: make(map[string]float64),
	}
}

func (m *MockStatsRepository) GetStats() (*models.Stats, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.stats, nil
}

func (m *MockStatsRepository) GetTopAssetsByPnl(limit int) ([]models.AssetStat, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.topAssets, nil
}

func (m *MockStatsRepository) GetWorstAssetsByPnl(limit int) ([]models.AssetStat, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.worstAssets, nil
}

func (m *MockStatsRepository) GetPnlByAsset(asset string) (float64, error) {
	if m.getErr != nil {
		return 0, m.getErr
	}
	return m.pnlByAsset[asset], nil
}

// ============ Mock WebSocket Hub ============

type MockWebSocketHub struct {
	notifications []*models.Notification
	statsUpdates  []*models.Stats
}

func (m *MockWebSocketHub) BroadcastNotification(notif *models.Notification) {
	m.notifications = append(m.notifications, notif)
}

func (m *MockWebSocketHub) BroadcastStatsUpdate(stats *models.Stats) {
	m.statsUpdates = append(m.statsUpdates, stats)
}
