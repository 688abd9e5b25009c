package matching

import (
	"errors"
	"time"
)

// ErrNoResult: nenhum lote de resultado servível para a aposta. Estado normal
// enquanto o sorteio não sai; a aposta segue pendente.
var ErrNoResult = errors.New("no matching result batch")

// Batch é a visão que o matcher tem de um sorteio ingerido: identidade,
// horário, momento da coleta e os milhares por posição (índice 0 = 1º prêmio).
type Batch struct {
	ID         string
	Lottery    string
	TimeSlot   string
	ObservedAt time.Time
	Numbers    []int
}

// Schedule são os horários oficiais de uma extração, quando conhecidos.
type Schedule struct {
	CloseTime  time.Time // fechamento das apostas
	ResultTime time.Time // divulgação oficial do resultado
}

// Config delimita a tolerância do matching. Os defaults espelham a operação
// real: horários exibidos divergem do fechamento em até meia hora, e um
// resultado só é confiável até uma hora depois da divulgação.
type Config struct {
	SlotToleranceMinutes int           // tolerância entre horários normalizados
	ResultGrace          time.Duration // janela após o horário oficial do resultado
	FallbackLookback     time.Duration // sem horário oficial: olhar para trás a partir da criação
	FallbackGrace        time.Duration // sem horário oficial: olhar para frente
}

// DefaultConfig retorna a política de tolerância padrão.
func DefaultConfig() Config {
	return Config{
		SlotToleranceMinutes: 30,
		ResultGrace:          time.Hour,
		FallbackLookback:     2 * time.Hour,
		FallbackGrace:        time.Hour,
	}
}

// Window é a janela temporal dentro da qual um lote pode liquidar a aposta.
// Fallback marca janelas derivadas sem horário oficial, para auditoria.
type Window struct {
	Start    time.Time
	End      time.Time
	Fallback bool
}

// SettlementWindow calcula a janela válida de liquidação. Com a agenda oficial
// conhecida, ancora em [fechamento, resultado+graça]; sem ela, cai numa janela
// heurística em torno da criação da aposta e marca o fallback.
func (c Config) SettlementWindow(sched *Schedule, wagerCreatedAt time.Time) Window {
	if sched != nil && !sched.CloseTime.IsZero() && !sched.ResultTime.IsZero() {
		return Window{
			Start: sched.CloseTime,
			End:   sched.ResultTime.Add(c.ResultGrace),
		}
	}
	return Window{
		Start:    wagerCreatedAt.Add(-c.FallbackLookback),
		End:      wagerCreatedAt.Add(c.FallbackGrace),
		Fallback: true,
	}
}

// FindBatch localiza o lote de resultado que liquida uma aposta.
//
// Filtra por identidade de banca normalizada, horário compatível e coleta
// dentro da janela. Sobrando mais de um candidato (ingestões duplicadas do
// mesmo sorteio), vence o mais completo, com desempate pelo ObservedAt mais
// recente. Nunca mescla lotes parciais.
func (c Config) FindBatch(lottery, timeSlot string, window Window, batches []Batch) (Batch, error) {
	wantLottery := NormalizeLottery(lottery)

	var best Batch
	found := false
	for _, b := range batches {
		if NormalizeLottery(b.Lottery) != wantLottery {
			continue
		}
		if !SlotsCompatible(b.TimeSlot, timeSlot, c.SlotToleranceMinutes) {
			continue
		}
		if b.ObservedAt.Before(window.Start) || b.ObservedAt.After(window.End) {
			continue
		}
		if !found || betterCandidate(b, best) {
			best = b
			found = true
		}
	}

	if !found {
		return Batch{}, ErrNoResult
	}
	return best, nil
}

// betterCandidate: mais prêmios preenchidos ganha; empate vai para a coleta
// mais recente.
func betterCandidate(a, b Batch) bool {
	if len(a.Numbers) != len(b.Numbers) {
		return len(a.Numbers) > len(b.Numbers)
	}
	return a.ObservedAt.After(b.ObservedAt)
}
