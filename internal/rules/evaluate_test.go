package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bichoplay/settlement-engine/internal/bicho"
)

func seq(t *testing.T, drawn ...int) []bicho.Result {
	t.Helper()
	rs, err := bicho.NormalizeSequence(drawn)
	require.NoError(t, err)
	return rs
}

func mustSel(t *testing.T, m Modality, groups []int, number string) Selection {
	t.Helper()
	s, err := NewSelection(m, groups, number)
	require.NoError(t, err)
	return s
}

// Aposta de grupo no Cavalo (11), nenhum prêmio cai no grupo: perde.
func TestEvaluate_GroupMiss(t *testing.T) {
	// dezenas: 32(g9) 05(g2) 17(g5) 60(g15) 81(g21) 96(g24) 50(g13)
	results := seq(t, 4732, 1205, 2017, 3060, 5581, 7196, 9950)
	sel := mustSel(t, Grupo, []int{11}, "")

	out, err := Evaluate(results, sel, 1000, DivideEach, 1, 7, DefaultOddsTable())
	require.NoError(t, err)
	assert.Equal(t, 0, out.Hits)
	assert.EqualValues(t, 0, out.PayoutCents)
	assert.False(t, out.Won())
}

// Mesma aposta, mas o 3º prêmio sai 4143 (dezena 43, Cavalo): ganha 10 x 18.
func TestEvaluate_GroupHit(t *testing.T) {
	results := seq(t, 4732, 1205, 4143, 3060, 5581, 7196, 9950)
	sel := mustSel(t, Grupo, []int{11}, "")

	out, err := Evaluate(results, sel, 1000, DivideEach, 1, 7, DefaultOddsTable())
	require.NoError(t, err)
	assert.Equal(t, 1, out.Hits)
	assert.Equal(t, 7, out.Units)
	assert.EqualValues(t, 18000, out.PayoutCents) // 1 x 18 x R$10,00
	assert.True(t, out.Won())
}

// Com divisão "all", os R$10 se dividem pelas 7 unidades antes da odd.
func TestEvaluate_GroupHit_DivideAll(t *testing.T) {
	results := seq(t, 4732, 1205, 4143, 3060, 5581, 7196, 9950)
	sel := mustSel(t, Grupo, []int{11}, "")

	out, err := Evaluate(results, sel, 1000, DivideAll, 1, 7, DefaultOddsTable())
	require.NoError(t, err)
	assert.Equal(t, 1, out.Hits)
	// 18 x (1000/7) = 2571.43 centavos
	assert.EqualValues(t, 2571, out.PayoutCents)
}

// Terno {9,11,16} ganha sse os três grupos aparecem em qualquer posição 1-7.
func TestEvaluate_TernoContainment(t *testing.T) {
	table := DefaultOddsTable()
	sel := mustSel(t, TernoGrupo, []int{9, 11, 16}, "")

	// dezenas 33(g9), 43(g11), 64(g16) espalhados fora de ordem
	win := seq(t, 1064, 1205, 4143, 3060, 5533, 7196, 9950)
	out, err := Evaluate(win, sel, 500, DivideEach, 1, 7, table)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Hits)

	// só dois dos três grupos presentes
	lose := seq(t, 1064, 1205, 4143, 3060, 5581, 7196, 9950)
	out, err = Evaluate(lose, sel, 500, DivideEach, 1, 7, table)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Hits)
}

// Passe vai-e-vem aceita o par na ordem invertida; passe seco não.
func TestEvaluate_PasseRoundtrip(t *testing.T) {
	table := DefaultOddsTable()
	// 1º prêmio grupo 9 (dezena 33), 2º prêmio grupo 5 (dezena 17)
	results := seq(t, 5533, 2017, 4143)

	roundtrip := mustSel(t, PasseVaiEVem, []int{5, 9}, "")
	out, err := Evaluate(results, roundtrip, 1000, DivideEach, 1, 7, table)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Hits, "vai-e-vem matches reversed order")
	assert.Equal(t, 1, out.Units)
	assert.EqualValues(t, 150000, out.PayoutCents) // odd 150

	plain := mustSel(t, Passe, []int{5, 9}, "")
	out, err = Evaluate(results, plain, 1000, DivideEach, 1, 7, table)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Hits, "plain passe requires exact order")

	ordered := mustSel(t, Passe, []int{9, 5}, "")
	out, err = Evaluate(results, ordered, 1000, DivideEach, 1, 7, table)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Hits)
	assert.EqualValues(t, 300000, out.PayoutCents) // odd 300
}

func TestEvaluate_MilharPlain(t *testing.T) {
	results := seq(t, 4732, 1205, 4143)
	sel := mustSel(t, Milhar, nil, "1205")

	out, err := Evaluate(results, sel, 200, DivideEach, 1, 3, DefaultOddsTable())
	require.NoError(t, err)
	assert.Equal(t, 1, out.Hits)
	assert.EqualValues(t, 1000000, out.PayoutCents) // 5000 x R$2,00
}

// Milhar invertida: "1123" gera 12 combinações; unidades = 12 x posições.
func TestEvaluate_MilharInvertida(t *testing.T) {
	// 3211 é permutação de 1123
	results := seq(t, 3211, 1205, 4143, 3060, 5581)
	sel := mustSel(t, MilharInvertida, nil, "1123")

	out, err := Evaluate(results, sel, 1200, DivideAll, 1, 5, DefaultOddsTable())
	require.NoError(t, err)
	assert.Equal(t, 12, out.Combinations)
	assert.Equal(t, 60, out.Units) // 12 x 5 posições
	assert.Equal(t, 1, out.Hits)
	// 200 x (1200/60) = 4000 centavos
	assert.EqualValues(t, 4000, out.PayoutCents)
}

func TestEvaluate_DezenaMultipleHits(t *testing.T) {
	// dezena 43 sai em duas posições
	results := seq(t, 4143, 1205, 9943)
	sel := mustSel(t, Dezena, nil, "43")

	out, err := Evaluate(results, sel, 100, DivideEach, 1, 3, DefaultOddsTable())
	require.NoError(t, err)
	assert.Equal(t, 2, out.Hits)
	assert.EqualValues(t, 12000, out.PayoutCents) // 2 x 60 x R$1,00
}

// Milhar-centena paga as duas unidades quando o milhar bate em cheio.
func TestEvaluate_MilharCentena(t *testing.T) {
	table := DefaultOddsTable()
	sel := mustSel(t, MilharCentena, nil, "4143")

	full := seq(t, 4143, 1205, 9950)
	out, err := Evaluate(full, sel, 100, DivideEach, 1, 3, table)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Hits, "milhar hit implies centena hit")
	assert.Equal(t, 6, out.Units)

	// só a centena bate (9143 x 4143)
	centOnly := seq(t, 9143, 1205, 9950)
	out, err = Evaluate(centOnly, sel, 100, DivideEach, 1, 3, table)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Hits)
}

func TestEvaluate_WindowRestriction(t *testing.T) {
	// grupo 11 só no 3º prêmio; janela 1-2 não alcança
	results := seq(t, 4732, 1205, 4143)
	sel := mustSel(t, Grupo, []int{11}, "")

	out, err := Evaluate(results, sel, 1000, DivideEach, 1, 2, DefaultOddsTable())
	require.NoError(t, err)
	assert.Equal(t, 0, out.Hits)
	assert.Equal(t, 2, out.Units)
}

func TestEvaluate_InvalidWindow(t *testing.T) {
	results := seq(t, 4732)
	sel := mustSel(t, Grupo, []int{11}, "")
	_, err := Evaluate(results, sel, 1000, DivideEach, 0, 7, DefaultOddsTable())
	assert.Error(t, err)
	_, err = Evaluate(results, sel, 1000, DivideEach, 3, 1, DefaultOddsTable())
	assert.Error(t, err)
}

func TestNewSelection_Validation(t *testing.T) {
	_, err := NewSelection(DuplaGrupo, []int{9, 11, 16}, "")
	assert.ErrorIs(t, err, ErrInvalidSelection)

	_, err = NewSelection(Grupo, nil, "")
	assert.ErrorIs(t, err, ErrInvalidSelection)

	_, err = NewSelection(Grupo, []int{26}, "")
	assert.ErrorIs(t, err, ErrInvalidSelection)

	_, err = NewSelection(Milhar, nil, "123")
	assert.ErrorIs(t, err, ErrInvalidSelection)

	_, err = NewSelection(Dezena, nil, "4a")
	assert.ErrorIs(t, err, ErrInvalidSelection)

	_, err = NewSelection(Modality("JOGO_DO_TIGRE"), nil, "12")
	assert.ErrorIs(t, err, ErrUnsupportedModality)

	_, err = ParseModality("tigrinho")
	assert.ErrorIs(t, err, ErrUnsupportedModality)

	m, err := ParseModality(" passe_vai_e_vem ")
	require.NoError(t, err)
	assert.Equal(t, PasseVaiEVem, m)
}
