package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cryptoalpha/internal/exchange"
	"cryptoalpha/internal/models"
	"cryptoalpha/internal/repository"
	"cryptoalpha/pkg/utils"
)

// Trader исполняет прошедшие диспетчер сигналы: размещает рыночный ордер
// на покупку и фиксирует позицию.
//
// Контракт исполнения:
//   - сигнал расходуется (dispatched=true) при успешном открытии позиции
//     и при окончательном отклонении (deny-list, неподдерживаемый символ);
//   - при транзиентной ошибке (сеть, биржа) сигнал остается неисполненным
//     и будет повторен в следующем цикле;
//   - конфликт "уже есть открытая позиция" после исполненного ордера не
//     откатывается автоматически: купленный актив требует ручной сверки,
//     поэтому публикуется RECONCILE с ID ордера.
type Trader struct {
	exch      exchange.Exchange
	signals   SignalStore
	positions PositionStore
	settings  SettingsStore
	notifier  Notifier
	quote     string
	log       *utils.Logger
}

// NewTrader создает исполнителя сигналов
func NewTrader(exch exchange.Exchange, signals SignalStore, positions PositionStore, settings SettingsStore, notifier Notifier, quoteCurrency string) *Trader {
	return &Trader{
		exch:      exch,
		signals:   signals,
		positions: positions,
		settings:  settings,
		notifier:  notifier,
		quote:     quoteCurrency,
		log:       utils.L().WithComponent("trader"),
	}
}

// Symbol составляет торговый символ для актива
func (t *Trader) Symbol(asset string) string {
	return asset + t.quote
}

// ExecuteSignal проводит один сигнал через полный путь исполнения.
// Возвращает ошибку только при транзиентном сбое - тогда сигнал не расходуется.
func (t *Trader) ExecuteSignal(ctx context.Context, sig *models.Signal, settings *models.Settings) error {
	symbol := t.Symbol(sig.Asset)
	log := t.log.With(utils.SignalID(sig.ID), utils.Asset(sig.Asset), utils.Symbol(symbol))

	// Deny-list проверяется до любого обращения к бирже
	if settings.IsDenied(symbol) {
		log.Info("signal skipped: symbol is denied")
		t.notify(t.notifier.CreateSkipNotification, sig.Asset,
			fmt.Sprintf("Сигнал #%d пропущен: символ %s в deny-list", sig.ID, symbol),
			map[string]interface{}{"signal_id": sig.ID, "symbol": symbol})
		RecordDispatch("skipped")
		return t.consumeSignal(sig, log)
	}

	info, err := t.exch.GetSymbolInfo(ctx, symbol)
	if err != nil {
		if exchange.IsUnsupportedSymbol(err) {
			return t.denySymbol(sig, symbol, log)
		}
		log.Warn("symbol info lookup failed, signal deferred", utils.Err(err))
		return fmt.Errorf("symbol info %s: %w", symbol, err)
	}
	if !info.Trading() {
		log.Info("symbol not trading, denying", utils.State(info.Status))
		return t.denySymbol(sig, symbol, log)
	}

	started := time.Now()
	order, err := t.exch.PlaceMarketBuy(ctx, symbol, settings.TradeAmountQuote)
	if err != nil {
		if exchange.IsUnsupportedSymbol(err) {
			RecordOrder(models.SideBuy, false, 0)
			return t.denySymbol(sig, symbol, log)
		}
		RecordOrder(models.SideBuy, false, 0)
		RecordDispatch("failed")
		message := fmt.Sprintf("Ошибка покупки %s по сигналу #%d: %v", symbol, sig.ID, err)
		if exchange.IsInsufficientBalance(err) {
			log.Warn("market buy failed: insufficient balance, signal deferred", utils.Err(err))
			message = fmt.Sprintf("Недостаточно средств для покупки %s на %.2f %s, сигнал #%d отложен",
				symbol, settings.TradeAmountQuote, t.quote, sig.ID)
		} else {
			log.Error("market buy failed, signal deferred", utils.Err(err))
		}
		t.notify(t.notifier.CreateErrorNotification, sig.Asset, message,
			map[string]interface{}{"signal_id": sig.ID, "symbol": symbol})
		return fmt.Errorf("market buy %s: %w", symbol, err)
	}
	RecordOrder(models.SideBuy, true, float64(time.Since(started).Milliseconds()))

	entryPrice, quantity := t.resolveFill(ctx, order, sig, settings, log)

	position := &models.Position{
		Asset:      sig.Asset,
		Symbol:     symbol,
		Side:       models.SideBuy,
		Quantity:   quantity,
		EntryPrice: entryPrice,
		StopLoss:   sig.StopLoss,
		TakeProfit: sig.TakeProfit,
		OrderID:    order.ID,
		Status:     models.PositionStatusOpen,
		OpenedAt:   time.Now().UTC(),
	}

	if err := t.positions.ClaimOpen(position); err != nil {
		if errors.Is(err, repository.ErrPositionAlreadyOpen) {
			// Ордер исполнен, а слот занят: актив куплен дважды.
			// Автоматическая продажа здесь опаснее ручной сверки.
			log.Error("position slot already taken after fill, manual reconcile required",
				utils.OrderID(order.ID))
			t.notify(t.notifier.CreateReconcileNotification, sig.Asset,
				fmt.Sprintf("Ордер %s исполнен, но по %s уже есть открытая позиция - требуется ручная сверка", order.ID, sig.Asset),
				map[string]interface{}{"signal_id": sig.ID, "order_id": order.ID, "symbol": symbol})
			RecordDispatch("failed")
			return nil
		}
		log.Error("position save failed after fill", utils.Err(err), utils.OrderID(order.ID))
		t.notify(t.notifier.CreateErrorNotification, sig.Asset,
			fmt.Sprintf("Ордер %s исполнен, но позиция не сохранена: %v", order.ID, err),
			map[string]interface{}{"signal_id": sig.ID, "order_id": order.ID})
		return fmt.Errorf("claim position %s: %w", sig.Asset, err)
	}

	if err := t.consumeSignal(sig, log); err != nil {
		return err
	}

	log.Info("position opened",
		utils.PositionID(position.ID),
		utils.OrderID(order.ID),
		utils.Price(entryPrice),
		utils.Quantity(quantity),
	)
	t.notify(t.notifier.CreateOpenNotification, sig.Asset,
		fmt.Sprintf("Открыта позиция %s: qty %.8f по %.8f (SL %.8f / TP %.8f)",
			symbol, quantity, entryPrice, sig.StopLoss, sig.TakeProfit),
		map[string]interface{}{
			"signal_id":   sig.ID,
			"position_id": position.ID,
			"order_id":    order.ID,
			"entry_price": entryPrice,
			"quantity":    quantity,
		})
	RecordDispatch("opened")
	return nil
}

// resolveFill восстанавливает цену входа и количество из ответа биржи.
//
// Цепочка для цены: средняя цена исполнения ордера -> текущая котировка ->
// нижняя граница зоны входа. Для количества: исполненное количество ->
// запрошенное количество -> потраченная сумма / цена входа. Ордер уже
// исполнен, поэтому нулевое количество в леджере недопустимо: позиция
// с qty=0 никогда не даст PnL и не пройдет сверку.
func (t *Trader) resolveFill(ctx context.Context, order *exchange.Order, sig *models.Signal, settings *models.Settings, log *utils.Logger) (float64, float64) {
	entryPrice := order.AvgFillPrice()
	if entryPrice <= 0 {
		quote, err := t.exch.GetPrice(ctx, order.Symbol)
		if err == nil && quote > 0 {
			entryPrice = quote
		} else {
			entryPrice = sig.EntryMin
		}
		log.Warn("order fill price missing, reconstructed", utils.Price(entryPrice))
	}

	quantity := order.ExecutedQty
	if quantity <= 0 {
		quantity = order.Quantity
	}
	if quantity <= 0 && entryPrice > 0 {
		quantity = settings.TradeAmountQuote / entryPrice
		log.Warn("order fill quantity missing, reconstructed from notional",
			utils.Quantity(quantity), utils.Price(entryPrice))
	}
	return entryPrice, quantity
}

// denySymbol окончательно отклоняет сигнал: символ в deny-list, сигнал расходуется
func (t *Trader) denySymbol(sig *models.Signal, symbol string, log *utils.Logger) error {
	if _, err := t.settings.AddDeniedSymbol(symbol); err != nil {
		log.Error("failed to deny symbol, signal deferred", utils.Err(err))
		return fmt.Errorf("deny symbol %s: %w", symbol, err)
	}
	log.Warn("symbol denied, signal consumed")
	t.notify(t.notifier.CreateErrorNotification, sig.Asset,
		fmt.Sprintf("Символ %s не поддерживается биржей и добавлен в deny-list, сигнал #%d отклонен", symbol, sig.ID),
		map[string]interface{}{"signal_id": sig.ID, "symbol": symbol})
	RecordDispatch("denied")
	return t.consumeSignal(sig, log)
}

// consumeSignal помечает сигнал исполненным. Повторная отметка не считается
// ошибкой: переход dispatched выполняется ровно один раз на уровне хранилища.
func (t *Trader) consumeSignal(sig *models.Signal, log *utils.Logger) error {
	if err := t.signals.MarkDispatched(sig.ID); err != nil {
		if errors.Is(err, repository.ErrSignalAlreadyDispatched) {
			log.Warn("signal was already dispatched")
			return nil
		}
		log.Error("failed to mark signal dispatched", utils.Err(err))
		return fmt.Errorf("mark dispatched %d: %w", sig.ID, err)
	}
	sig.Dispatched = true
	return nil
}

// notify отправляет уведомление, не прерывая исполнение при сбое записи
func (t *Trader) notify(fn func(asset, message string, meta map[string]interface{}) error, asset, message string, meta map[string]interface{}) {
	if t.notifier == nil {
		return
	}
	if err := fn(asset, message, meta); err != nil {
		t.log.Warn("notification delivery failed", utils.Asset(asset), utils.Err(err))
	}
}
