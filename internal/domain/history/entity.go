package history

import "time"

// RecordID identifier type
type RecordID string

// Record is one persisted analysis, kept for auditing and later retrieval.
// The live session state itself is memory-only; history is an append-only
// side channel.
type Record struct {
	ID          RecordID  `json:"id"`
	InputDigest string    `json:"input_digest"` // sha256 of the submitted log text
	ImageCount  int       `json:"image_count"`
	RiskScore   float64   `json:"risk_score"`
	RiskLevel   string    `json:"risk_level"`
	ResultJSON  string    `json:"result_json"` // full validated result as JSON
	CreatedAt   time.Time `json:"created_at"`
}
