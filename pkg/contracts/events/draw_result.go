package events

import "time"

// Evento publicado no tópico "draw_results" pelos coletores de resultado.
// Cada evento carrega um sorteio completo (1º ao N-ésimo prêmio).
type DrawEntry struct {
	Position int    `json:"position"` // 1-indexado, sem lacunas
	Number   string `json:"number"`   // milhar com zeros à esquerda, ex: "0473"
}

type DrawResultBatch struct {
	Lottery    string      `json:"lottery"`   // nome como exibido na fonte, ex: "PT Rio de Janeiro"
	TimeSlot   string      `json:"time_slot"` // horário do sorteio, ex: "11:30" ou "11h"
	Entries    []DrawEntry `json:"entries"`
	ObservedAt time.Time   `json:"observed_at"`
	Source     string      `json:"source"` // qual monitor coletou
}
