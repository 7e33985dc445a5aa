package bot

import (
	"context"
	"sync"
	"time"

	"cryptoalpha/internal/config"
	"cryptoalpha/internal/models"
	"cryptoalpha/pkg/utils"
)

// Engine - главный цикл торгового ядра.
//
// Поток одного цикла:
//
//	настройки → диспетчер сигналов → исполнение покупок →
//	ценовой снапшот открытых позиций → проверка выходов → статистика
//
// Цикл периодический, а не event-driven: сигналы приходят пачками от
// внешнего генератора, а выходы проверяются по снапшоту DEX-цен, так что
// реакция на каждое тиковое событие здесь не нужна. Настройки перечитываются
// в начале каждого цикла - это контракт горячей перезагрузки конфигурации.
//
// Ошибка любого шага логируется и не роняет процесс: следующий цикл
// начинается с чистого состояния из БД.
type Engine struct {
	cfg *config.Config

	gate    *Gate
	trader  *Trader
	monitor *Monitor

	positions PositionStore
	settings  SettingsStore
	prices    PriceSource

	shutdown chan struct{}
	stopOnce sync.Once
	log      *utils.Logger
}

// NewEngine собирает торговое ядро из готовых компонентов
func NewEngine(cfg *config.Config, gate *Gate, trader *Trader, monitor *Monitor, positions PositionStore, settings SettingsStore, prices PriceSource) *Engine {
	return &Engine{
		cfg:       cfg,
		gate:      gate,
		trader:    trader,
		monitor:   monitor,
		positions: positions,
		settings:  settings,
		prices:    prices,
		shutdown:  make(chan struct{}),
		log:       utils.L().WithComponent("engine"),
	}
}

// Start запускает периодический цикл. Блокирует до отмены контекста
// или вызова Stop. Первый цикл выполняется сразу, без ожидания тика.
func (e *Engine) Start(ctx context.Context) {
	e.log.Info("trading engine started",
		utils.String("cycle_interval", e.cfg.Trading.CycleInterval.String()),
		utils.String("cooldown", e.cfg.Trading.SignalCooldown.String()),
	)

	ticker := time.NewTicker(e.cfg.Trading.CycleInterval)
	defer ticker.Stop()

	e.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			e.log.Info("trading engine stopped: context cancelled")
			return
		case <-e.shutdown:
			e.log.Info("trading engine stopped")
			return
		case <-ticker.C:
			e.runCycle(ctx)
		}
	}
}

// Stop останавливает цикл. Повторный вызов безопасен.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		close(e.shutdown)
	})
}

// runCycle выполняет один полный торговый цикл
func (e *Engine) runCycle(ctx context.Context) {
	started := time.Now()
	defer func() {
		CycleDuration.Observe(time.Since(started).Seconds())
	}()

	settings, err := e.settings.Get()
	if err != nil {
		e.log.Error("cycle aborted: settings unavailable", utils.Err(err))
		CyclesTotal.WithLabelValues("failed").Inc()
		return
	}

	if !settings.EnableAutoTrading {
		e.log.Debug("auto trading disabled, cycle skipped")
		CyclesTotal.WithLabelValues("skipped").Inc()
		return
	}

	e.executeSignals(ctx, settings)
	e.checkExits(ctx)

	CyclesTotal.WithLabelValues("completed").Inc()
	e.log.Debug("cycle completed", utils.Latency(float64(time.Since(started).Milliseconds())))
}

// executeSignals проводит готовые сигналы через исполнителя.
// Сбой одного сигнала не мешает остальным.
func (e *Engine) executeSignals(ctx context.Context, settings *models.Settings) {
	dispatchable, held, err := e.gate.SelectDispatchable(time.Now().UTC())
	if err != nil {
		e.log.Error("dispatch gate failed", utils.Err(err))
		return
	}
	if len(dispatchable) == 0 && len(held) == 0 {
		return
	}
	e.log.Info("dispatch gate result",
		utils.Int("dispatchable", len(dispatchable)),
		utils.Int("held", len(held)),
	)

	for _, sig := range dispatchable {
		callCtx, cancel := context.WithTimeout(ctx, e.callBudget())
		err := e.trader.ExecuteSignal(callCtx, sig, settings)
		cancel()
		if err != nil {
			e.log.Warn("signal execution deferred",
				utils.SignalID(sig.ID), utils.Asset(sig.Asset), utils.Err(err))
		}
	}
}

// checkExits собирает снапшот цен по открытым позициям и проверяет выходы
func (e *Engine) checkExits(ctx context.Context) {
	open, err := e.positions.GetOpen()
	if err != nil {
		e.log.Error("exit check failed: cannot load open positions", utils.Err(err))
		return
	}
	if len(open) == 0 {
		OpenPositions.Set(0)
		return
	}

	assets := make([]string, 0, len(open))
	seen := make(map[string]bool, len(open))
	for _, pos := range open {
		if !seen[pos.Asset] {
			seen[pos.Asset] = true
			assets = append(assets, pos.Asset)
		}
	}

	snapCtx, cancel := context.WithTimeout(ctx, e.callBudget())
	snapshot, err := e.prices.Snapshot(snapCtx, assets)
	cancel()
	if err != nil {
		e.log.Error("price snapshot failed, exits deferred", utils.Err(err))
		return
	}
	RecordSnapshot(len(snapshot), len(assets)-len(snapshot))

	closed, err := e.monitor.CheckPositions(ctx, snapshot)
	if err != nil {
		e.log.Error("position check failed", utils.Err(err))
		return
	}
	if closed > 0 {
		e.log.Info("positions closed this cycle", utils.Int("closed", closed))
	}
}

// callBudget возвращает таймаут одного сетевого шага цикла
func (e *Engine) callBudget() time.Duration {
	if e.cfg.Trading.CallTimeout > 0 {
		return e.cfg.Trading.CallTimeout
	}
	return 5 * time.Second
}
