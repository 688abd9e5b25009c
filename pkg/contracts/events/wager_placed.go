package events

type WagerPlaced struct {
	ExternalID string  `json:"external_id"` // chave de idempotência do sistema upstream
	UserID     string  `json:"user_id"`
	Lottery    string  `json:"lottery"`
	TimeSlot   string  `json:"time_slot"`
	Modality   string  `json:"modality"`            // ex: "GRUPO", "MILHAR_INVERTIDA", "PASSE"
	Groups     []int   `json:"groups,omitempty"`    // modalidades de grupo/passe
	Number     string  `json:"number,omitempty"`    // modalidades de número (2-4 dígitos)
	StakeCents int64   `json:"stake_cents"`
	DivideEach bool    `json:"divide_each"`         // false = divide a aposta entre as unidades
	OddValue   float64 `json:"odd_value,omitempty"` // override opcional do multiplicador
	PosFrom    int     `json:"pos_from,omitempty"`  // janela de prêmios, default 1..7
	PosTo      int     `json:"pos_to,omitempty"`
	TsUnixMs   int64   `json:"ts_unix_ms"`
}
