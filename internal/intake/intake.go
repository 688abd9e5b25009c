package intake

import (
	"fmt"
	"strings"
	"time"

	"github.com/bichoplay/settlement-engine/internal/matching"
	"github.com/bichoplay/settlement-engine/internal/rules"
	"github.com/bichoplay/settlement-engine/internal/settlement"
	"github.com/bichoplay/settlement-engine/pkg/contracts/events"
)

// BuildWager valida um evento de aposta e o converte no modelo persistido.
// A forma do palpite é validada aqui, na entrada, e não dentro da conferência.
func BuildWager(ev events.WagerPlaced) (settlement.Wager, error) {
	var w settlement.Wager

	if ev.UserID == "" {
		return w, fmt.Errorf("missing user id")
	}
	if ev.StakeCents <= 0 {
		return w, fmt.Errorf("non-positive stake: %d", ev.StakeCents)
	}
	if strings.TrimSpace(ev.Lottery) == "" {
		return w, fmt.Errorf("missing lottery")
	}

	slot, err := matching.NormalizeTimeSlot(ev.TimeSlot)
	if err != nil {
		return w, fmt.Errorf("bad time slot: %w", err)
	}

	m, err := rules.ParseModality(ev.Modality)
	if err != nil {
		return w, err
	}

	// Números chegam sem zeros à esquerda de alguns upstreams ("17" para a
	// dezena "17", mas também "123" para a milhar "0123").
	number := strings.TrimSpace(ev.Number)
	if number != "" && !m.IsGroupModality() && !m.IsPasse() {
		if want := numberLen(m); len(number) < want {
			number = strings.Repeat("0", want-len(number)) + number
		}
	}

	if _, err := rules.NewSelection(m, ev.Groups, number); err != nil {
		return w, err
	}

	posFrom, posTo := ev.PosFrom, ev.PosTo
	if posFrom == 0 {
		posFrom = 1
	}
	if posTo == 0 {
		posTo = 7
	}
	if posFrom < 1 || posTo < posFrom {
		return w, fmt.Errorf("bad position window %d-%d", ev.PosFrom, ev.PosTo)
	}

	createdAt := time.Now()
	if ev.TsUnixMs > 0 {
		createdAt = time.UnixMilli(ev.TsUnixMs)
	}

	return settlement.Wager{
		ExternalID:  strings.TrimSpace(ev.ExternalID),
		UserID:      ev.UserID,
		Lottery:     ev.Lottery,
		TimeSlot:    slot,
		Modality:    string(m),
		Groups:      ev.Groups,
		Number:      number,
		StakeCents:  ev.StakeCents,
		DivideEach:  ev.DivideEach,
		OddOverride: ev.OddValue,
		PosFrom:     posFrom,
		PosTo:       posTo,
		Status:      settlement.StatusPending,
		CreatedAt:   createdAt,
	}, nil
}

func numberLen(m rules.Modality) int {
	switch m {
	case rules.Dezena, rules.DezenaInvertida:
		return 2
	case rules.Centena, rules.CentenaInvertida:
		return 3
	default:
		return 4
	}
}
