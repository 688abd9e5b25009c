package matching

import (
	"fmt"
	"strconv"
	"strings"
)

// As fontes de resultado exibem a mesma banca com nomes diferentes. A tabela
// de apelidos cobre as variações conhecidas; nomes fora dela passam só por
// case-folding. Manter a lista curta e explícita: cada caso especial novo
// entra aqui, não no código de comparação.
var lotteryAliases = []struct{ contains, canonical string }{
	{"lotece", "LOTECE"},
	{"pt paraiba/lotep", "LOTEP"},
	{"lotep", "LOTEP"},
	{"look goiás", "LOOK"},
	{"look goias", "LOOK"},
	{"look", "LOOK"},
	{"pt rio de janeiro", "PT RIO"},
	{"pt-rj", "PT RIO"},
	{"pt rio", "PT RIO"},
	{"loteria nacional", "NACIONAL"},
	{"nacional", "NACIONAL"},
	{"pt bahia", "PT BAHIA"},
	{"federal", "FEDERAL"},
	{"pt-sp/bandeirantes", "PT SP (Band)"},
	{"bandeirantes", "PT SP (Band)"},
	{"pt sp", "PT SP"},
	{"para todos", "PARA TODOS"},
}

// NormalizeLottery reduz o nome exibido de uma banca à identidade canônica.
func NormalizeLottery(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	lower := strings.ToLower(name)
	for _, a := range lotteryAliases {
		if strings.Contains(lower, a.contains) {
			return a.canonical
		}
	}
	return strings.ToUpper(name)
}

// NormalizeTimeSlot canonicaliza um horário de sorteio para "HH:MM".
// Aceita "11h", "11:30", "1130" e variações com espaços.
func NormalizeTimeSlot(slot string) (string, error) {
	s := strings.TrimSpace(slot)
	if s == "" {
		return "", fmt.Errorf("empty time slot")
	}
	s = strings.ReplaceAll(s, "h", ":")
	s = strings.TrimSuffix(s, ":")

	if !strings.Contains(s, ":") {
		switch len(s) {
		case 1, 2:
			s += ":00"
		case 4:
			s = s[:2] + ":" + s[2:]
		default:
			return "", fmt.Errorf("unrecognized time slot %q", slot)
		}
	}

	parts := strings.SplitN(s, ":", 2)
	h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || h < 0 || h > 23 {
		return "", fmt.Errorf("bad hour in time slot %q", slot)
	}
	m, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || m < 0 || m > 59 {
		return "", fmt.Errorf("bad minute in time slot %q", slot)
	}
	return fmt.Sprintf("%02d:%02d", h, m), nil
}

// SlotsCompatible compara dois horários com tolerância em minutos, absorvendo
// a diferença entre horário exibido e horário real de fechamento.
func SlotsCompatible(a, b string, toleranceMinutes int) bool {
	na, err := NormalizeTimeSlot(a)
	if err != nil {
		return false
	}
	nb, err := NormalizeTimeSlot(b)
	if err != nil {
		return false
	}
	if na == nb {
		return true
	}

	ma := slotMinutes(na)
	mb := slotMinutes(nb)
	diff := ma - mb
	if diff < 0 {
		diff = -diff
	}
	return diff <= toleranceMinutes
}

func slotMinutes(normalized string) int {
	h, _ := strconv.Atoi(normalized[:2])
	m, _ := strconv.Atoi(normalized[3:])
	return h*60 + m
}
