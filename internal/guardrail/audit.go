// Guardrail audit log. Every gate check writes a record of what came in
// and what was decided; the write is best-effort by contract.
package guardrail

import (
	"log/slog"

	"github.com/google/uuid"
)

// AuditRecord captures one gate decision.
type AuditRecord struct {
	ID           uuid.UUID        `json:"id"`
	WorldID      uuid.UUID        `json:"world_id"`
	CitizenID    uuid.UUID        `json:"citizen_id"`
	Source       Source           `json:"source"`
	Mode         string           `json:"mode"`
	Content      string           `json:"content"`
	Passed       bool             `json:"passed"`
	SafetyLevel  SafetyLevel      `json:"safety_level"`
	Violations   []ViolationKind  `json:"violations,omitempty"`
	Intervention InterventionType `json:"intervention,omitempty"`
	Tick         uint64           `json:"tick"`
}

// Logger persists audit records. Implementations may fail; the gate
// ignores the error beyond logging it.
type Logger interface {
	Record(r AuditRecord) error
}

// SlogLogger writes audit records to the default slog logger.
type SlogLogger struct{}

// Record logs the audit record. Never fails.
func (SlogLogger) Record(r AuditRecord) error {
	slog.Info("guardrail audit",
		"world", r.WorldID,
		"citizen", r.CitizenID,
		"source", r.Source,
		"mode", r.Mode,
		"passed", r.Passed,
		"level", r.SafetyLevel,
		"violations", len(r.Violations),
		"intervention", r.Intervention,
		"tick", r.Tick,
	)
	return nil
}

// MultiLogger fans a record out to several loggers, keeping the first
// error only after all have been tried.
type MultiLogger []Logger

// Record writes to every logger.
func (m MultiLogger) Record(r AuditRecord) error {
	var first error
	for _, l := range m {
		if err := l.Record(r); err != nil && first == nil {
			first = err
		}
	}
	return first
}
