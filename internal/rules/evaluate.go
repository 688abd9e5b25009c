package rules

import (
	"fmt"
	"math"

	"github.com/bichoplay/settlement-engine/internal/bicho"
)

// DivisionPolicy define como a aposta se distribui pelas unidades.
type DivisionPolicy int

const (
	// DivideAll divide o valor apostado entre todas as unidades.
	DivideAll DivisionPolicy = iota
	// DivideEach aplica o valor integral a cada unidade.
	DivideEach
)

// Outcome é o resultado da conferência de uma aposta contra um sorteio.
type Outcome struct {
	Hits           int
	Combinations   int   // permutações distintas (1 fora das invertidas)
	Units          int   // combinações x posições da janela
	UnitStakeCents int64 // valor por unidade conforme a política de divisão
	PayoutCents    int64
	Odd            float64
}

// Won indica se a aposta teve ao menos um acerto.
func (o Outcome) Won() bool { return o.Hits > 0 }

// Evaluate confere um palpite contra a sequência de prêmios de um sorteio.
// results deve estar ordenado por posição (índice 0 = 1º prêmio). A janela
// [posFrom, posTo] é 1-indexada; modalidades de passe ignoram a janela e
// conferem sempre 1º-2º.
func Evaluate(
	results []bicho.Result,
	sel Selection,
	stakeCents int64,
	policy DivisionPolicy,
	posFrom, posTo int,
	odds *OddsTable,
) (Outcome, error) {
	if len(results) == 0 {
		return Outcome{}, fmt.Errorf("empty result sequence")
	}
	if posFrom < 1 || posTo < posFrom {
		return Outcome{}, fmt.Errorf("invalid position window %d-%d", posFrom, posTo)
	}

	var hits, combinations, units int

	m := sel.Modality
	switch {
	case m.IsPasse():
		combinations = 1
		units = 1
		hits = checkPasse(results, sel.Groups[0], sel.Groups[1], m == PasseVaiEVem)

	case m.IsGroupModality():
		combinations = 1
		units = posTo - posFrom + 1
		hits = checkGroups(results, sel.Groups, posFrom, posTo)

	case m == MilharCentena:
		// Milhar-com-centena vale como duas unidades por posição: o milhar
		// completo e a centena do mesmo número. Há bancas que conferem só o
		// milhar nessa modalidade; aqui as duas parcelas contam, precificadas
		// pela odd MILHAR_CENTENA.
		combinations = 1
		units = 2 * (posTo - posFrom + 1)
		hits = checkNumber(results, sel.Number, false, posFrom, posTo) +
			checkNumber(results, sel.Number[1:], false, posFrom, posTo)

	default:
		combinations = 1
		if m.IsInverted() {
			combinations = bicho.CountDistinctPermutations(sel.Number)
		}
		units = combinations * (posTo - posFrom + 1)
		hits = checkNumber(results, sel.Number, m.IsInverted(), posFrom, posTo)
	}

	odd, err := odds.Lookup(m, posFrom, posTo)
	if err != nil {
		return Outcome{}, err
	}

	unitStake := unitStakeCents(stakeCents, policy, units)

	return Outcome{
		Hits:           hits,
		Combinations:   combinations,
		Units:          units,
		UnitStakeCents: int64(math.Round(unitStake)),
		PayoutCents:    int64(math.Round(float64(hits) * odd * unitStake)),
		Odd:            odd,
	}, nil
}

// Payout recalcula o prêmio para uma odd específica (ex: multiplicador
// negociado por aposta), mantendo a mesma política de divisão.
func Payout(hits int, odd float64, stakeCents int64, policy DivisionPolicy, units int) int64 {
	return int64(math.Round(float64(hits) * odd * unitStakeCents(stakeCents, policy, units)))
}

func unitStakeCents(stakeCents int64, policy DivisionPolicy, units int) float64 {
	if policy == DivideAll && units > 0 {
		return float64(stakeCents) / float64(units)
	}
	return float64(stakeCents)
}

// checkNumber conta em quantas posições da janela o sufixo do milhar sorteado
// bate com o palpite (ou com alguma permutação dele, nas invertidas).
func checkNumber(results []bicho.Result, number string, inverted bool, posFrom, posTo int) int {
	candidates := map[string]struct{}{number: {}}
	if inverted {
		candidates = make(map[string]struct{})
		for _, p := range bicho.DistinctPermutations(number) {
			candidates[p] = struct{}{}
		}
	}

	n := len(number)
	hits := 0
	for i := posFrom - 1; i < posTo && i < len(results); i++ {
		drawn := fmt.Sprintf("%04d", results[i].Milhar)
		if _, ok := candidates[drawn[4-n:]]; ok {
			hits++
		}
	}
	return hits
}

// checkGroups: acerta se todos os grupos apostados aparecem na janela,
// independente de ordem ou posição.
func checkGroups(results []bicho.Result, wanted []int, posFrom, posTo int) int {
	present := make(map[int]struct{})
	for _, g := range bicho.GroupsInWindow(results, posFrom, posTo) {
		present[g] = struct{}{}
	}
	for _, g := range wanted {
		if _, ok := present[g]; !ok {
			return 0
		}
	}
	return 1
}

// checkPasse: 1º prêmio deve dar o primeiro grupo e 2º o segundo; no
// vai-e-vem a ordem invertida também vale.
func checkPasse(results []bicho.Result, g1, g2 int, roundtrip bool) int {
	if len(results) < 2 {
		return 0
	}
	first, second := results[0].Group, results[1].Group
	if first == g1 && second == g2 {
		return 1
	}
	if roundtrip && first == g2 && second == g1 {
		return 1
	}
	return 0
}
