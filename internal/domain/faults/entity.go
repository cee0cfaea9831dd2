package faults

import "time"

// Stage names the phase an analysis attempt failed in.
type Stage string

const (
	StageInput     Stage = "input"
	StageTransport Stage = "transport"
	StageEmpty     Stage = "empty"
	StageSchema    Stage = "schema"
)

// Fault is a persisted failed analysis attempt.
type Fault struct {
	ID        int64     `json:"id"`
	Stage     Stage     `json:"stage"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
