package bot

import (
	"fmt"
	"time"

	"cryptoalpha/internal/models"
	"cryptoalpha/pkg/utils"
)

// Причины удержания сигнала диспетчером
const (
	SkipReasonOpenPosition = "open_position"
	SkipReasonCooldown     = "cooldown"
)

// HeldSignal - сигнал, удержанный диспетчером в текущем цикле.
// Сигнал остается неисполненным и будет рассмотрен снова.
type HeldSignal struct {
	Signal *models.Signal
	Reason string
}

// Gate решает, какие из принятых сигналов можно исполнять сейчас.
//
// Сигнал проходит, если по его активу нет открытой позиции и по активу
// не было исполненного сигнала в пределах окна охлаждения. Удержанный
// сигнал не расходуется: флаг dispatched не трогается.
type Gate struct {
	signals   SignalStore
	positions PositionStore
	cooldown  time.Duration
	log       *utils.Logger
}

// NewGate создает диспетчер сигналов
func NewGate(signals SignalStore, positions PositionStore, cooldown time.Duration) *Gate {
	return &Gate{
		signals:   signals,
		positions: positions,
		cooldown:  cooldown,
		log:       utils.L().WithComponent("gate"),
	}
}

// SelectDispatchable возвращает сигналы, готовые к исполнению, и список
// удержанных с причинами. Порядок ожидания сохраняется (FIFO по времени
// генерации). Если по одному активу ждут несколько сигналов, в выдачу
// попадает только самый ранний - остальные удерживаются как cooldown.
func (g *Gate) SelectDispatchable(now time.Time) ([]*models.Signal, []HeldSignal, error) {
	pending, err := g.signals.GetPending()
	if err != nil {
		return nil, nil, fmt.Errorf("load pending signals: %w", err)
	}

	cutoff := utils.CooldownCutoff(now, g.cooldown)
	dispatchable := make([]*models.Signal, 0, len(pending))
	held := make([]HeldSignal, 0)
	pickedAssets := make(map[string]bool)

	for _, sig := range pending {
		if g.positions != nil {
			open, err := g.positions.HasOpenForAsset(sig.Asset)
			if err != nil {
				return nil, nil, fmt.Errorf("check open position for %s: %w", sig.Asset, err)
			}
			if open {
				held = append(held, HeldSignal{Signal: sig, Reason: SkipReasonOpenPosition})
				RecordGateSkip(SkipReasonOpenPosition)
				continue
			}
		}

		if pickedAssets[sig.Asset] {
			held = append(held, HeldSignal{Signal: sig, Reason: SkipReasonCooldown})
			RecordGateSkip(SkipReasonCooldown)
			continue
		}

		recent, err := g.signals.HasDispatchedSince(sig.Asset, cutoff)
		if err != nil {
			return nil, nil, fmt.Errorf("check cooldown for %s: %w", sig.Asset, err)
		}
		if recent {
			held = append(held, HeldSignal{Signal: sig, Reason: SkipReasonCooldown})
			RecordGateSkip(SkipReasonCooldown)
			continue
		}

		pickedAssets[sig.Asset] = true
		dispatchable = append(dispatchable, sig)
	}

	if len(held) > 0 {
		g.log.Debug("signals held by gate",
			utils.Int("held", len(held)),
			utils.Int("dispatchable", len(dispatchable)),
		)
	}

	return dispatchable, held, nil
}
