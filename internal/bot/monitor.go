package bot

import (
	"context"
	"fmt"
	"time"

	"cryptoalpha/internal/collector"
	"cryptoalpha/internal/exchange"
	"cryptoalpha/internal/models"
	"cryptoalpha/pkg/utils"
)

// Причины закрытия позиции
const (
	ExitReasonStopLoss   = "stop_loss"
	ExitReasonTakeProfit = "take_profit"
)

// Monitor проверяет открытые позиции против ценового снапшота и закрывает
// те, что достигли стоп-лосса или тейк-профита.
//
// Границы включительные: цена, равная SL или TP, триггерит выход.
// Отсутствие актива в снапшоте означает "цены нет" - позиция остается
// открытой до следующего цикла, продажа вслепую не выполняется.
type Monitor struct {
	exch      exchange.Exchange
	positions PositionStore
	notifier  Notifier
	stats     StatsPublisher
	log       *utils.Logger
}

// NewMonitor создает монитор позиций
func NewMonitor(exch exchange.Exchange, positions PositionStore, notifier Notifier, stats StatsPublisher) *Monitor {
	return &Monitor{
		exch:      exch,
		positions: positions,
		notifier:  notifier,
		stats:     stats,
		log:       utils.L().WithComponent("monitor"),
	}
}

// CheckPositions обходит открытые позиции и исполняет выходы.
// Сбой по одной позиции не прерывает обход остальных.
// Возвращает количество закрытых позиций.
func (m *Monitor) CheckPositions(ctx context.Context, snapshot collector.PriceSnapshot) (int, error) {
	open, err := m.positions.GetOpen()
	if err != nil {
		return 0, fmt.Errorf("load open positions: %w", err)
	}
	OpenPositions.Set(float64(len(open)))

	closed := 0
	for _, pos := range open {
		price, ok := snapshot[pos.Asset]
		if !ok {
			m.log.Debug("no price in snapshot, position held",
				utils.PositionID(pos.ID), utils.Asset(pos.Asset))
			continue
		}

		reason := exitReason(pos, price)
		if reason == "" {
			continue
		}

		if m.closePosition(ctx, pos, price, reason) {
			closed++
		}
	}

	if closed > 0 {
		OpenPositions.Sub(float64(closed))
		if m.stats != nil {
			m.stats.PublishStats()
		}
	}
	return closed, nil
}

// exitReason возвращает причину выхода или пустую строку, если позиция держится
func exitReason(pos *models.Position, price float64) string {
	if utils.IsStopLossHit(price, pos.StopLoss) {
		return ExitReasonStopLoss
	}
	if utils.IsTakeProfitHit(price, pos.TakeProfit) {
		return ExitReasonTakeProfit
	}
	return ""
}

// closePosition продает фактический биржевой баланс актива и закрывает запись.
// Возвращает true, если позиция закрыта.
func (m *Monitor) closePosition(ctx context.Context, pos *models.Position, price float64, reason string) bool {
	log := m.log.With(
		utils.PositionID(pos.ID),
		utils.Asset(pos.Asset),
		utils.Symbol(pos.Symbol),
		utils.Reason(reason),
		utils.Price(price),
	)

	// Продаем живой баланс, а не записанное количество: комиссии и
	// округления биржи делают записанное количество непродаваемым
	balance, err := m.exch.GetBalance(ctx, pos.Asset)
	if err != nil {
		log.Error("balance lookup failed, exit deferred", utils.Err(err))
		return false
	}
	if balance <= 0 {
		log.Warn("zero balance for open position, exit skipped", utils.Volume(balance))
		m.notify(m.notifier.CreateErrorNotification, pos.Asset,
			fmt.Sprintf("Выход по %s невозможен: нулевой баланс %s на бирже", pos.Symbol, pos.Asset),
			map[string]interface{}{"position_id": pos.ID, "reason": reason})
		return false
	}

	quantity := balance
	info, err := m.exch.GetSymbolInfo(ctx, pos.Symbol)
	if err == nil && info.StepSize > 0 {
		quantity = utils.RoundToLotSize(balance, info.StepSize)
	}
	if quantity <= 0 {
		log.Warn("balance below lot size, exit skipped", utils.Volume(balance))
		return false
	}

	started := time.Now()
	order, err := m.exch.PlaceMarketSell(ctx, pos.Symbol, quantity)
	if err != nil {
		RecordOrder(models.SideSell, false, 0)
		log.Error("market sell failed, exit deferred", utils.Err(err))
		m.notify(m.notifier.CreateErrorNotification, pos.Asset,
			fmt.Sprintf("Ошибка продажи %s при выходе: %v", pos.Symbol, err),
			map[string]interface{}{"position_id": pos.ID, "reason": reason})
		return false
	}
	RecordOrder(models.SideSell, true, float64(time.Since(started).Milliseconds()))

	exitPrice := order.AvgFillPrice()
	if exitPrice <= 0 {
		exitPrice = price
	}

	closedAt := time.Now().UTC()
	if err := m.positions.Close(pos.ID, exitPrice, closedAt); err != nil {
		// Актив продан, но запись не закрыта: пометим для ручной сверки
		log.Error("position close failed after sell", utils.Err(err), utils.OrderID(order.ID))
		m.notify(m.notifier.CreateReconcileNotification, pos.Asset,
			fmt.Sprintf("Ордер %s исполнен, но позиция #%d не закрыта в БД: %v", order.ID, pos.ID, err),
			map[string]interface{}{"position_id": pos.ID, "order_id": order.ID})
		return false
	}

	// PnL считается по записанному количеству позиции: проданный баланс
	// может отличаться из-за комиссий, но леджер обязан сходиться сам с собой
	pnl := utils.CalculatePnl(pos.EntryPrice, exitPrice, pos.Quantity)
	RecordPositionClose(reason, pnl)
	log.Info("position closed", utils.Price(exitPrice), utils.Quantity(quantity), utils.PNL(pnl))

	meta := map[string]interface{}{
		"position_id": pos.ID,
		"order_id":    order.ID,
		"exit_price":  exitPrice,
		"quantity":    quantity,
		"pnl":         pnl,
	}
	message := fmt.Sprintf("Позиция %s закрыта по %.8f, PnL %.4f", pos.Symbol, exitPrice, pnl)
	switch reason {
	case ExitReasonStopLoss:
		m.notify(m.notifier.CreateSLNotification, pos.Asset, "Стоп-лосс: "+message, meta)
	case ExitReasonTakeProfit:
		m.notify(m.notifier.CreateTPNotification, pos.Asset, "Тейк-профит: "+message, meta)
	default:
		m.notify(m.notifier.CreateCloseNotification, pos.Asset, message, meta)
	}
	return true
}

// notify отправляет уведомление, не прерывая мониторинг при сбое записи
func (m *Monitor) notify(fn func(asset, message string, meta map[string]interface{}) error, asset, message string, meta map[string]interface{}) {
	if m.notifier == nil {
		return
	}
	if err := fn(asset, message, meta); err != nil {
		m.log.Warn("notification delivery failed", utils.Asset(asset), utils.Err(err))
	}
}
