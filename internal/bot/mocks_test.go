package bot

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"cryptoalpha/internal/collector"
	"cryptoalpha/internal/exchange"
	"cryptoalpha/internal/models"
	"cryptoalpha/internal/repository"
)

// ============ Мок хранилища сигналов ============

type MockSignalStore struct {
	signals map[int]*models.Signal
	nextID  int

	getPendingErr error
	hasSinceErr   error
	markErr       error
}

func NewMockSignalStore() *MockSignalStore {
	return &MockSignalStore{
		signals: make(map[int]*models.Signal),
		nextID:  1,
	}
}

func (m *MockSignalStore) Add(sig *models.Signal) *models.Signal {
	cp := *sig
	if cp.ID == 0 {
		cp.ID = m.nextID
		m.nextID++
	} else if cp.ID >= m.nextID {
		m.nextID = cp.ID + 1
	}
	m.signals[cp.ID] = &cp
	return &cp
}

func (m *MockSignalStore) GetPending() ([]*models.Signal, error) {
	if m.getPendingErr != nil {
		return nil, m.getPendingErr
	}
	var result []*models.Signal
	for _, sig := range m.signals {
		if !sig.Dispatched {
			result = append(result, sig)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].GeneratedAt.Equal(result[j].GeneratedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].GeneratedAt.Before(result[j].GeneratedAt)
	})
	return result, nil
}

func (m *MockSignalStore) HasDispatchedSince(asset string, cutoff time.Time) (bool, error) {
	if m.hasSinceErr != nil {
		return false, m.hasSinceErr
	}
	for _, sig := range m.signals {
		if sig.Asset == asset && sig.Dispatched && !sig.GeneratedAt.Before(cutoff) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockSignalStore) MarkDispatched(id int) error {
	if m.markErr != nil {
		return m.markErr
	}
	sig, ok := m.signals[id]
	if !ok {
		return repository.ErrSignalNotFound
	}
	if sig.Dispatched {
		return repository.ErrSignalAlreadyDispatched
	}
	sig.Dispatched = true
	return nil
}

// ============ Мок хранилища позиций ============

type MockPositionStore struct {
	positions map[int]*models.Position
	nextID    int

	claimErr   error
	getOpenErr error
	hasOpenErr error
	closeErr   error
}

func NewMockPositionStore() *MockPositionStore {
	return &MockPositionStore{
		positions: make(map[int]*models.Position),
		nextID:    1,
	}
}

func (m *MockPositionStore) ClaimOpen(position *models.Position) error {
	if m.claimErr != nil {
		return m.claimErr
	}
	for _, pos := range m.positions {
		if pos.Asset == position.Asset && pos.Status == models.PositionStatusOpen {
			return repository.ErrPositionAlreadyOpen
		}
	}
	position.ID = m.nextID
	m.nextID++
	cp := *position
	m.positions[cp.ID] = &cp
	return nil
}

func (m *MockPositionStore) GetOpen() ([]*models.Position, error) {
	if m.getOpenErr != nil {
		return nil, m.getOpenErr
	}
	var result []*models.Position
	for _, pos := range m.positions {
		if pos.Status == models.PositionStatusOpen {
			result = append(result, pos)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockPositionStore) HasOpenForAsset(asset string) (bool, error) {
	if m.hasOpenErr != nil {
		return false, m.hasOpenErr
	}
	for _, pos := range m.positions {
		if pos.Asset == asset && pos.Status == models.PositionStatusOpen {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockPositionStore) Close(id int, exitPrice float64, closedAt time.Time) error {
	if m.closeErr != nil {
		return m.closeErr
	}
	pos, ok := m.positions[id]
	if !ok {
		return repository.ErrPositionNotFound
	}
	if pos.Status != models.PositionStatusOpen {
		return repository.ErrPositionNotOpen
	}
	pos.Status = models.PositionStatusClosed
	pos.ExitPrice = &exitPrice
	pos.ClosedAt = &closedAt
	return nil
}

// ============ Мок хранилища настроек ============

type MockSettingsStore struct {
	settings *models.Settings

	getErr  error
	denyErr error
}

func NewMockSettingsStore() *MockSettingsStore {
	return &MockSettingsStore{
		settings: &models.Settings{
			ID:                1,
			EnableAutoTrading: true,
			TradeAmountQuote:  10.0,
			MinConfidence:     65.0,
			MinRiskReward:     1.5,
			MaxSignalsPerDay:  10,
		},
	}
}

func (m *MockSettingsStore) Get() (*models.Settings, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	cp := *m.settings
	cp.DeniedSymbols = append([]string(nil), m.settings.DeniedSymbols...)
	return &cp, nil
}

func (m *MockSettingsStore) AddDeniedSymbol(symbol string) (bool, error) {
	if m.denyErr != nil {
		return false, m.denyErr
	}
	symbol = strings.ToUpper(symbol)
	for _, denied := range m.settings.DeniedSymbols {
		if denied == symbol {
			return false, nil
		}
	}
	m.settings.DeniedSymbols = append(m.settings.DeniedSymbols, symbol)
	return true, nil
}

// ============ Мок нотификатора ============

type recordedNotification struct {
	Type    string
	Asset   string
	Message string
	Meta    map[string]interface{}
}

type MockNotifier struct {
	notifications []recordedNotification
	createErr     error
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) record(notifType, asset, message string, meta map[string]interface{}) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.notifications = append(m.notifications, recordedNotification{
		Type:    notifType,
		Asset:   asset,
		Message: message,
		Meta:    meta,
	})
	return nil
}

func (m *MockNotifier) CreateOpenNotification(asset, message string, meta map[string]interface{}) error {
	return m.record(models.NotificationTypeOpen, asset, message, meta)
}

func (m *MockNotifier) CreateCloseNotification(asset, message string, meta map[string]interface{}) error {
	return m.record(models.NotificationTypeClose, asset, message, meta)
}

func (m *MockNotifier) CreateSLNotification(asset, message string, meta map[string]interface{}) error {
	return m.record(models.NotificationTypeSL, asset, message, meta)
}

func (m *MockNotifier) CreateTPNotification(asset, message string, meta map[string]interface{}) error {
	return m.record(models.NotificationTypeTP, asset, message, meta)
}

func (m *MockNotifier) CreateSkipNotification(asset, message string, meta map[string]interface{}) error {
	return m.record(models.NotificationTypeSkip, asset, message, meta)
}

func (m *MockNotifier) CreateErrorNotification(asset, message string, meta map[string]interface{}) error {
	return m.record(models.NotificationTypeError, asset, message, meta)
}

func (m *MockNotifier) CreateReconcileNotification(asset, message string, meta map[string]interface{}) error {
	return m.record(models.NotificationTypeReconcile, asset, message, meta)
}

// byType возвращает уведомления заданного типа
func (m *MockNotifier) byType(notifType string) []recordedNotification {
	var result []recordedNotification
	for _, n := range m.notifications {
		if n.Type == notifType {
			result = append(result, n)
		}
	}
	return result
}

// ============ Мок публикатора статистики ============

type MockStatsPublisher struct {
	publishCount int
}

func (m *MockStatsPublisher) PublishStats() {
	m.publishCount++
}

// ============ Мок биржи ============

type placedOrder struct {
	Symbol   string
	Side     string
	Quantity float64
	Quote    float64
}

type MockExchange struct {
	prices      map[string]float64
	symbolInfo  map[string]*exchange.SymbolInfo
	balances    map[string]float64
	buyOrders   []placedOrder
	sellOrders  []placedOrder
	orderSeq    int
	fillPrice   float64 // цена исполнения для новых ордеров; 0 = без цены
	executedQty float64 // количество исполнения buy-ордеров

	symbolInfoErr error
	buyErr        error
	sellErr       error
	balanceErr    error
}

func NewMockExchange() *MockExchange {
	return &MockExchange{
		prices:     make(map[string]float64),
		symbolInfo: make(map[string]*exchange.SymbolInfo),
		balances:   make(map[string]float64),
	}
}

func (m *MockExchange) GetName() string { return "mock" }

func (m *MockExchange) GetPrice(ctx context.Context, symbol string) (float64, error) {
	return m.prices[symbol], nil
}

func (m *MockExchange) GetSymbolInfo(ctx context.Context, symbol string) (*exchange.SymbolInfo, error) {
	if m.symbolInfoErr != nil {
		return nil, m.symbolInfoErr
	}
	info, ok := m.symbolInfo[symbol]
	if !ok {
		return nil, &exchange.ExchangeError{
			Exchange: "mock",
			Code:     exchange.ErrCodeUnsupportedSymbol,
			Message:  "symbol not found",
		}
	}
	return info, nil
}

func (m *MockExchange) PlaceMarketBuy(ctx context.Context, symbol string, quoteAmount float64) (*exchange.Order, error) {
	if m.buyErr != nil {
		return nil, m.buyErr
	}
	m.orderSeq++
	m.buyOrders = append(m.buyOrders, placedOrder{Symbol: symbol, Side: models.SideBuy, Quote: quoteAmount})
	order := &exchange.Order{
		ID:          orderID(m.orderSeq),
		Symbol:      symbol,
		Side:        models.SideBuy,
		Type:        "MARKET",
		ExecutedQty: m.executedQty,
		Price:       m.fillPrice,
		Status:      exchange.OrderStatusFilled,
		CreatedAt:   time.Now(),
	}
	if m.fillPrice > 0 && m.executedQty > 0 {
		order.CumulativeQuoteQty = m.fillPrice * m.executedQty
	}
	return order, nil
}

func (m *MockExchange) PlaceMarketSell(ctx context.Context, symbol string, quantity float64) (*exchange.Order, error) {
	if m.sellErr != nil {
		return nil, m.sellErr
	}
	m.orderSeq++
	m.sellOrders = append(m.sellOrders, placedOrder{Symbol: symbol, Side: models.SideSell, Quantity: quantity})
	order := &exchange.Order{
		ID:          orderID(m.orderSeq),
		Symbol:      symbol,
		Side:        models.SideSell,
		Type:        "MARKET",
		Quantity:    quantity,
		ExecutedQty: quantity,
		Price:       m.fillPrice,
		Status:      exchange.OrderStatusFilled,
		CreatedAt:   time.Now(),
	}
	if m.fillPrice > 0 {
		order.CumulativeQuoteQty = m.fillPrice * quantity
	}
	return order, nil
}

func (m *MockExchange) GetBalance(ctx context.Context, asset string) (float64, error) {
	if m.balanceErr != nil {
		return 0, m.balanceErr
	}
	return m.balances[asset], nil
}

func (m *MockExchange) Close() error { return nil }

func orderID(seq int) string {
	return "order-" + strconv.Itoa(seq)
}

var _ exchange.Exchange = (*MockExchange)(nil)

// ============ Мок источника цен ============

type MockPriceSource struct {
	snapshot collector.PriceSnapshot
	err      error
	calls    [][]string
}

func (m *MockPriceSource) Snapshot(ctx context.Context, assets []string) (collector.PriceSnapshot, error) {
	m.calls = append(m.calls, append([]string(nil), assets...))
	if m.err != nil {
		return nil, m.err
	}
	return m.snapshot, nil
}
