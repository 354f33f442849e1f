package request

import "time"

// CeremonyEvent is the audit record published to Kafka for every notable
// ceremony or key management outcome.
type CeremonyEvent struct {
	Id          string    `json:"id"`
	Tenant      string    `json:"tenant"`
	EventType   string    `json:"event_type"`
	PerformedBy string    `json:"performed_by"`
	Subject     string    `json:"subject"`
	Severity    string    `json:"severity"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"created_at"`
}
