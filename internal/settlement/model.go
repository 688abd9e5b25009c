package settlement

import "time"

// Status de uma aposta. PENDING -> WON | LOST, transição única e terminal.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusWon     Status = "WON"
	StatusLost    Status = "LOST"
)

// Wager é a aposta como persistida. Criada pelo intake; daqui em diante só o
// orquestrador de liquidação a altera.
type Wager struct {
	ID          string
	ExternalID  string // chave de idempotência do sistema upstream, opcional
	UserID      string
	Lottery     string
	TimeSlot    string
	Modality    string
	Groups      []int
	Number      string
	StakeCents  int64
	DivideEach  bool    // true: valor integral por unidade; false: divide entre unidades
	OddOverride float64 // multiplicador negociado; 0 usa a tabela
	PosFrom     int
	PosTo       int
	Status      Status
	Review      bool // dado inconsistente, fora da liquidação automática
	CreatedAt   time.Time
	SettledAt   *time.Time
}

// Settlement é o registro terminal de uma aposta contra um sorteio.
// unique(wager_id) no banco é a garantia de exatamente-uma liquidação.
type Settlement struct {
	ID             string
	WagerID        string
	BatchID        string
	Hits           int
	PayoutCents    int64
	Outcome        Status // WON | LOST
	FallbackWindow bool   // liquidada sob janela heurística, auditar
	CreatedAt      time.Time
}
