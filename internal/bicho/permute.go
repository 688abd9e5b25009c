package bicho

import "sort"

// DistinctPermutations gera as permutações distintas dos dígitos de um número.
// Dígitos repetidos colapsam: "1123" gera 12 permutações, não 24.
// Usado pelas modalidades invertidas, onde o palpite vale para qualquer ordem.
func DistinctPermutations(number string) []string {
	seen := make(map[string]struct{})
	digits := []byte(number)
	permute(digits, 0, seen)

	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// CountDistinctPermutations conta as permutações distintas sem materializar a lista.
func CountDistinctPermutations(number string) int {
	seen := make(map[string]struct{})
	permute([]byte(number), 0, seen)
	return len(seen)
}

func permute(digits []byte, i int, seen map[string]struct{}) {
	if i == len(digits) {
		seen[string(digits)] = struct{}{}
		return
	}
	for j := i; j < len(digits); j++ {
		digits[i], digits[j] = digits[j], digits[i]
		permute(digits, i+1, seen)
		digits[i], digits[j] = digits[j], digits[i]
	}
}
