package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bichoplay/settlement-engine/internal/bicho"
	"github.com/bichoplay/settlement-engine/internal/matching"
	"github.com/bichoplay/settlement-engine/internal/rules"
)

// WagerStore é o acesso do orquestrador às apostas.
type WagerStore interface {
	// PendingWagers retorna as apostas pendentes fora de revisão manual.
	PendingWagers(ctx context.Context) ([]Wager, error)
	// FlagForReview tira uma aposta da liquidação automática.
	FlagForReview(ctx context.Context, wagerID, reason string) error
}

// BatchStore é o acesso aos sorteios ingeridos e à agenda oficial.
type BatchStore interface {
	// RecentBatches retorna os lotes coletados a partir de since.
	RecentBatches(ctx context.Context, since time.Time) ([]matching.Batch, error)
	// Schedule retorna os horários oficiais da extração, ou nil se desconhecidos.
	Schedule(ctx context.Context, lottery, timeSlot string) (*matching.Schedule, error)
}

// SettlementStore persiste o desfecho. Apply deve ser atômico: registro de
// liquidação + status da aposta + crédito do prêmio numa única transação,
// com unique(wager_id) de guarda. Reaplicar uma aposta já liquidada é no-op.
type SettlementStore interface {
	Exists(ctx context.Context, wagerID string) (bool, error)
	Apply(ctx context.Context, w Wager, s Settlement, settledAt time.Time) error
}

// Notifier recebe liquidações concluídas. Melhor esforço: falha aqui não
// desfaz nada, a aposta já é terminal.
type Notifier interface {
	NotifySettled(ctx context.Context, w Wager, s Settlement)
}

// Engine executa o ciclo de liquidação. Sem flags globais: o ciclo de vida é
// do chamador, que invoca RunCycle periodicamente. Vários workers podem rodar
// o ciclo ao mesmo tempo; o unique de settlements segura a dupla liquidação.
type Engine struct {
	Log         *zap.Logger
	Wagers      WagerStore
	Batches     BatchStore
	Settlements SettlementStore
	Notifier    Notifier

	Odds  *rules.OddsTable
	Match matching.Config

	// Quanto de histórico de lotes carregar por ciclo.
	BatchLookback time.Duration

	// Relógio injetável para testes.
	Now func() time.Time

	// Callbacks de métricas, opcionais.
	OnSettled func(outcome string) // WON | LOST
	OnPending func()               // sem resultado ainda
	OnSkipped func()               // já liquidada (idempotência)
	OnFlagged func()               // dado inválido, revisão manual
	OnError   func(stage string)
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// RunCycle processa todas as apostas pendentes uma vez. Erro de uma aposta
// não derruba as demais; erro de infraestrutura aborta o ciclo inteiro e fica
// para a próxima rodada.
func (e *Engine) RunCycle(ctx context.Context) error {
	wagers, err := e.Wagers.PendingWagers(ctx)
	if err != nil {
		return fmt.Errorf("fetch pending wagers: %w", err)
	}
	if len(wagers) == 0 {
		return nil
	}

	lookback := e.BatchLookback
	if lookback == 0 {
		lookback = 24 * time.Hour
	}
	batches, err := e.Batches.RecentBatches(ctx, e.now().Add(-lookback))
	if err != nil {
		return fmt.Errorf("fetch result batches: %w", err)
	}

	e.Log.Info("settlement cycle",
		zap.Int("pending_wagers", len(wagers)),
		zap.Int("result_batches", len(batches)),
	)

	for i := range wagers {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := e.settleOne(ctx, wagers[i], batches); err != nil {
			e.Log.Error("settle wager",
				zap.String("wager_id", wagers[i].ID),
				zap.Error(err),
			)
			if e.OnError != nil {
				e.OnError("settle")
			}
		}
	}
	return nil
}

func (e *Engine) settleOne(ctx context.Context, w Wager, batches []matching.Batch) error {
	// A existência do registro de liquidação é a única fonte de verdade de
	// idempotência; nada de flags em memória.
	done, err := e.Settlements.Exists(ctx, w.ID)
	if err != nil {
		return fmt.Errorf("settlement existence check: %w", err)
	}
	if done {
		if e.OnSkipped != nil {
			e.OnSkipped()
		}
		return nil
	}

	sched, err := e.Batches.Schedule(ctx, w.Lottery, w.TimeSlot)
	if err != nil {
		return fmt.Errorf("schedule lookup: %w", err)
	}
	window := e.Match.SettlementWindow(sched, w.CreatedAt)

	batch, err := e.Match.FindBatch(w.Lottery, w.TimeSlot, window, batches)
	if errors.Is(err, matching.ErrNoResult) {
		// Estado normal antes do sorteio sair; segue pendente.
		if e.OnPending != nil {
			e.OnPending()
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("match batch: %w", err)
	}

	outcome, err := e.evaluate(w, batch)
	if err != nil {
		// Dado inválido nunca liquida como perdida: vai para revisão manual.
		if isDataError(err) {
			e.flagReview(ctx, w, err)
			return nil
		}
		return err
	}

	status := StatusLost
	if outcome.Won() {
		status = StatusWon
	}

	settledAt := e.now()
	s := Settlement{
		ID:             uuid.NewString(),
		WagerID:        w.ID,
		BatchID:        batch.ID,
		Hits:           outcome.Hits,
		PayoutCents:    outcome.PayoutCents,
		Outcome:        status,
		FallbackWindow: window.Fallback,
		CreatedAt:      settledAt,
	}

	if err := e.Settlements.Apply(ctx, w, s, settledAt); err != nil {
		return fmt.Errorf("apply settlement: %w", err)
	}

	e.Log.Info("wager settled",
		zap.String("wager_id", w.ID),
		zap.String("batch_id", batch.ID),
		zap.String("outcome", string(status)),
		zap.Int("hits", outcome.Hits),
		zap.Int64("payout_cents", outcome.PayoutCents),
		zap.Bool("fallback_window", window.Fallback),
	)
	if e.OnSettled != nil {
		e.OnSettled(string(status))
	}

	if e.Notifier != nil {
		e.Notifier.NotifySettled(ctx, w, s)
	}
	return nil
}

// evaluate normaliza o lote e confere o palpite da aposta.
func (e *Engine) evaluate(w Wager, batch matching.Batch) (rules.Outcome, error) {
	results, err := bicho.NormalizeSequence(batch.Numbers)
	if err != nil {
		return rules.Outcome{}, fmt.Errorf("normalize batch %s: %w", batch.ID, err)
	}

	m, err := rules.ParseModality(w.Modality)
	if err != nil {
		return rules.Outcome{}, err
	}
	sel, err := rules.NewSelection(m, w.Groups, w.Number)
	if err != nil {
		return rules.Outcome{}, err
	}

	policy := rules.DivideAll
	if w.DivideEach {
		policy = rules.DivideEach
	}

	posFrom, posTo := w.PosFrom, w.PosTo
	if posFrom == 0 {
		posFrom = 1
	}
	if posTo == 0 {
		posTo = 7
	}

	out, err := rules.Evaluate(results, sel, w.StakeCents, policy, posFrom, posTo, e.Odds)
	if err != nil {
		return rules.Outcome{}, err
	}

	if w.OddOverride > 0 {
		out.Odd = w.OddOverride
		out.PayoutCents = rules.Payout(out.Hits, w.OddOverride, w.StakeCents, policy, out.Units)
	}
	return out, nil
}

func (e *Engine) flagReview(ctx context.Context, w Wager, cause error) {
	e.Log.Warn("wager flagged for review",
		zap.String("wager_id", w.ID),
		zap.Error(cause),
	)
	if err := e.Wagers.FlagForReview(ctx, w.ID, cause.Error()); err != nil {
		e.Log.Error("flag for review", zap.String("wager_id", w.ID), zap.Error(err))
		if e.OnError != nil {
			e.OnError("flag_review")
		}
		return
	}
	if e.OnFlagged != nil {
		e.OnFlagged()
	}
}

// isDataError separa erro de dado da aposta (revisão manual) de erro de
// infraestrutura (retry no próximo ciclo).
func isDataError(err error) bool {
	return errors.Is(err, rules.ErrInvalidSelection) ||
		errors.Is(err, rules.ErrUnsupportedModality)
}
