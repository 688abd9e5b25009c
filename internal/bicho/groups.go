package bicho

import (
	"fmt"
	"strings"
)

// Tabela fixa do jogo do bicho: 25 grupos, cada um cobrindo 4 dezenas
// consecutivas. O grupo 25 (Vaca) fecha a roda com 97, 98, 99 e 00.
var animalNames = [26]string{
	"", // grupos são 1-indexados
	"Avestruz", "Águia", "Burro", "Borboleta",
	"Cachorro", "Cabra", "Carneiro", "Camelo",
	"Cobra", "Coelho", "Cavalo", "Elefante",
	"Galo", "Gato", "Jacaré", "Leão",
	"Macaco", "Porco", "Pavão", "Peru",
	"Touro", "Tigre", "Urso", "Veado",
	"Vaca",
}

const (
	MinGroup = 1
	MaxGroup = 25
)

// GroupOf converte uma dezena (0-99) para o grupo correspondente (1-25).
func GroupOf(dezena int) int {
	if dezena == 0 {
		return 25
	}
	return ((dezena - 1) / 4) + 1
}

// AnimalName retorna o nome do animal de um grupo, ou "" se o grupo for inválido.
func AnimalName(group int) string {
	if group < MinGroup || group > MaxGroup {
		return ""
	}
	return animalNames[group]
}

// GroupByAnimal resolve o grupo a partir do nome do animal (case-insensitive).
func GroupByAnimal(name string) (int, bool) {
	for g := MinGroup; g <= MaxGroup; g++ {
		if strings.EqualFold(animalNames[g], strings.TrimSpace(name)) {
			return g, true
		}
	}
	return 0, false
}

// GroupDezenas retorna as 4 dezenas de um grupo.
func GroupDezenas(group int) ([4]int, error) {
	var out [4]int
	if group < MinGroup || group > MaxGroup {
		return out, fmt.Errorf("invalid group: %d", group)
	}
	if group == 25 {
		return [4]int{97, 98, 99, 0}, nil
	}
	start := (group-1)*4 + 1
	return [4]int{start, start + 1, start + 2, start + 3}, nil
}
