package topics

const (
	// Resultados de sorteio coletados pelos monitores externos
	DrawResults = "draw_results"

	// Apostas
	WagerPlaced  = "wager_placed"
	WagerSettled = "wager_settled"

	// DLQs
	WagerPlacedDLQ = "wager_placed_dlq"
	DrawResultsDLQ = "draw_results_dlq"
)
