package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bichoplay/settlement-engine/internal/bicho"
)

var (
	ErrUnsupportedModality = errors.New("unsupported modality")
	ErrInvalidSelection    = errors.New("invalid selection")
)

// Modality é o conjunto fechado de modalidades liquidáveis.
type Modality string

const (
	Grupo            Modality = "GRUPO"
	DuplaGrupo       Modality = "DUPLA_GRUPO"
	TernoGrupo       Modality = "TERNO_GRUPO"
	QuadraGrupo      Modality = "QUADRA_GRUPO"
	Dezena           Modality = "DEZENA"
	Centena          Modality = "CENTENA"
	Milhar           Modality = "MILHAR"
	DezenaInvertida  Modality = "DEZENA_INVERTIDA"
	CentenaInvertida Modality = "CENTENA_INVERTIDA"
	MilharInvertida  Modality = "MILHAR_INVERTIDA"
	MilharCentena    Modality = "MILHAR_CENTENA"
	Passe            Modality = "PASSE"
	PasseVaiEVem     Modality = "PASSE_VAI_E_VEM"
)

var allModalities = map[Modality]struct{}{
	Grupo: {}, DuplaGrupo: {}, TernoGrupo: {}, QuadraGrupo: {},
	Dezena: {}, Centena: {}, Milhar: {},
	DezenaInvertida: {}, CentenaInvertida: {}, MilharInvertida: {},
	MilharCentena: {}, Passe: {}, PasseVaiEVem: {},
}

// ParseModality resolve o nome de uma modalidade (case-insensitive).
func ParseModality(s string) (Modality, error) {
	m := Modality(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := allModalities[m]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedModality, s)
	}
	return m, nil
}

// IsGroupModality indica modalidades cujo palpite é um conjunto de grupos.
func (m Modality) IsGroupModality() bool {
	switch m {
	case Grupo, DuplaGrupo, TernoGrupo, QuadraGrupo:
		return true
	}
	return false
}

// IsPasse indica as modalidades de sequência fixa 1º-2º prêmio.
func (m Modality) IsPasse() bool {
	return m == Passe || m == PasseVaiEVem
}

// IsInverted indica modalidades que valem para qualquer permutação dos dígitos.
func (m Modality) IsInverted() bool {
	switch m {
	case DezenaInvertida, CentenaInvertida, MilharInvertida:
		return true
	}
	return false
}

// groupCount é a cardinalidade exigida do palpite de grupos; 0 para
// modalidades de número.
func (m Modality) groupCount() int {
	switch m {
	case Grupo:
		return 1
	case DuplaGrupo, Passe, PasseVaiEVem:
		return 2
	case TernoGrupo:
		return 3
	case QuadraGrupo:
		return 4
	}
	return 0
}

// numberLen é o comprimento exigido do palpite numérico; 0 para
// modalidades de grupo.
func (m Modality) numberLen() int {
	switch m {
	case Dezena, DezenaInvertida:
		return 2
	case Centena, CentenaInvertida:
		return 3
	case Milhar, MilharInvertida, MilharCentena:
		return 4
	}
	return 0
}

// Selection é um palpite validado na construção: ou um conjunto de grupos,
// ou uma cadeia de dígitos com o comprimento da modalidade.
type Selection struct {
	Modality Modality
	Groups   []int
	Number   string
}

// NewSelection valida a forma do palpite contra a modalidade.
func NewSelection(m Modality, groups []int, number string) (Selection, error) {
	if _, ok := allModalities[m]; !ok {
		return Selection{}, fmt.Errorf("%w: %q", ErrUnsupportedModality, m)
	}

	if want := m.groupCount(); want > 0 {
		if len(groups) != want {
			return Selection{}, fmt.Errorf("%w: %s requires exactly %d groups, got %d",
				ErrInvalidSelection, m, want, len(groups))
		}
		for _, g := range groups {
			if g < bicho.MinGroup || g > bicho.MaxGroup {
				return Selection{}, fmt.Errorf("%w: group %d out of range", ErrInvalidSelection, g)
			}
		}
		return Selection{Modality: m, Groups: groups}, nil
	}

	number = strings.TrimSpace(number)
	if want := m.numberLen(); len(number) != want {
		return Selection{}, fmt.Errorf("%w: %s requires a %d-digit number, got %q",
			ErrInvalidSelection, m, want, number)
	}
	for _, c := range number {
		if c < '0' || c > '9' {
			return Selection{}, fmt.Errorf("%w: non-digit in number %q", ErrInvalidSelection, number)
		}
	}
	return Selection{Modality: m, Number: number}, nil
}
