package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Window é o intervalo de prêmios [From, To] (1-indexado) que uma odd cobre.
type Window struct{ From, To int }

// OddsTable mapeia (modalidade, janela) -> multiplicador. A tabela é carregada
// na subida do serviço; combinação ausente é erro de configuração, nunca um
// palpite de runtime.
type OddsTable struct {
	entries map[Modality]map[Window]float64
}

// defaultWindow é a entrada usada quando a janela exata não está tabelada.
var defaultWindow = Window{1, 5}

// passeWindow: as modalidades de passe são sempre liquidadas sobre 1º-2º.
var passeWindow = Window{1, 2}

// DefaultOddsTable retorna a tabela padrão da banca.
func DefaultOddsTable() *OddsTable {
	t := &OddsTable{entries: make(map[Modality]map[Window]float64)}
	add := func(m Modality, odd float64, windows ...Window) {
		t.entries[m] = make(map[Window]float64, len(windows))
		for _, w := range windows {
			t.entries[m][w] = odd
		}
	}

	seven := []Window{{1, 1}, {1, 3}, {1, 5}, {1, 7}}
	five := []Window{{1, 1}, {1, 3}, {1, 5}}

	add(Dezena, 60, seven...)
	add(DezenaInvertida, 60, seven...)
	add(Centena, 600, seven...)
	add(CentenaInvertida, 600, seven...)
	add(Milhar, 5000, five...)
	add(MilharInvertida, 200, five...)
	add(MilharCentena, 3300, five...)
	add(Grupo, 18, seven...)
	add(DuplaGrupo, 180, seven...)
	add(TernoGrupo, 1800, seven...)
	add(QuadraGrupo, 5000, seven...)
	add(Passe, 300, passeWindow)
	add(PasseVaiEVem, 150, passeWindow)

	return t
}

// arquivo YAML: modalidade -> "from-to" -> multiplicador
//
//	GRUPO:
//	  1-1: 18
//	  1-7: 18
type oddsFile map[string]map[string]float64

// LoadOddsTable lê uma tabela de odds de um arquivo YAML. Modalidades ou
// janelas mal formadas abortam o carregamento.
func LoadOddsTable(path string) (*OddsTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read odds file: %w", err)
	}

	var f oddsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse odds file: %w", err)
	}

	t := &OddsTable{entries: make(map[Modality]map[Window]float64, len(f))}
	for name, windows := range f {
		m, err := ParseModality(name)
		if err != nil {
			return nil, fmt.Errorf("odds file: %w", err)
		}
		t.entries[m] = make(map[Window]float64, len(windows))
		for ws, odd := range windows {
			var w Window
			if _, err := fmt.Sscanf(ws, "%d-%d", &w.From, &w.To); err != nil {
				return nil, fmt.Errorf("odds file: bad window %q for %s", ws, name)
			}
			if w.From < 1 || w.To < w.From {
				return nil, fmt.Errorf("odds file: bad window %q for %s", ws, name)
			}
			if odd <= 0 {
				return nil, fmt.Errorf("odds file: non-positive odd for %s %s", name, ws)
			}
			t.entries[m][w] = odd
		}
	}
	return t, nil
}

// Lookup busca o multiplicador de uma modalidade para uma janela de prêmios.
// Passe é sempre tabelado em 1-2; para as demais, tenta a janela exata e cai
// para a entrada padrão 1-5. Ausência é erro, nunca um default silencioso.
func (t *OddsTable) Lookup(m Modality, posFrom, posTo int) (float64, error) {
	byWindow, ok := t.entries[m]
	if !ok {
		return 0, fmt.Errorf("odds table has no entries for modality %s", m)
	}

	w := Window{posFrom, posTo}
	if m.IsPasse() {
		w = passeWindow
	}
	if odd, ok := byWindow[w]; ok {
		return odd, nil
	}
	if odd, ok := byWindow[defaultWindow]; ok {
		return odd, nil
	}
	return 0, fmt.Errorf("odds table has no entry for %s window %d-%d (nor default %d-%d)",
		m, posFrom, posTo, defaultWindow.From, defaultWindow.To)
}
