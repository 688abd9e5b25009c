package events

import "time"

// Evento emitido pelo settlement-worker após liquidar uma aposta.
type WagerSettled struct {
	WagerID     string    `json:"wager_id"`
	ExternalID  string    `json:"external_id,omitempty"`
	UserID      string    `json:"user_id"`
	Outcome     string    `json:"outcome"` // "WON" | "LOST"
	Hits        int       `json:"hits"`
	PayoutCents int64     `json:"payout_cents"`
	Lottery     string    `json:"lottery"`
	TimeSlot    string    `json:"time_slot"`
	Ts          time.Time `json:"ts"`
}
