package bicho

import "fmt"

// Result é a visão canônica de um número sorteado (0000-9999).
type Result struct {
	Position int // 1-indexado dentro do sorteio
	Milhar   int // 4 dígitos
	Centena  int // 3 últimos dígitos
	Dezena   int // 2 últimos dígitos
	Group    int // 1-25
}

// Normalize converte um milhar sorteado na sua forma canônica.
// Números fora de 0000-9999 são violação de contrato do chamador.
func Normalize(position, drawn int) (Result, error) {
	if drawn < 0 || drawn > 9999 {
		return Result{}, fmt.Errorf("drawn number out of range: %d", drawn)
	}
	dezena := drawn % 100
	return Result{
		Position: position,
		Milhar:   drawn,
		Centena:  drawn % 1000,
		Dezena:   dezena,
		Group:    GroupOf(dezena),
	}, nil
}

// NormalizeSequence converte os milhares de um sorteio, na ordem dos prêmios.
// O índice 0 corresponde ao 1º prêmio.
func NormalizeSequence(drawn []int) ([]Result, error) {
	out := make([]Result, 0, len(drawn))
	for i, n := range drawn {
		r, err := Normalize(i+1, n)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// GroupsInWindow coleta os grupos presentes nas posições [posFrom, posTo]
// (1-indexadas). Posições além do resultado disponível são ignoradas.
func GroupsInWindow(results []Result, posFrom, posTo int) []int {
	groups := make([]int, 0, posTo-posFrom+1)
	for i := posFrom - 1; i < posTo && i < len(results); i++ {
		if i < 0 {
			continue
		}
		groups = append(groups, results[i].Group)
	}
	return groups
}
