// World record and the instability scalar manifestations mutate.
package society

import "github.com/google/uuid"

// InstabilityTrend classifies how world instability is moving.
type InstabilityTrend string

const (
	TrendStable   InstabilityTrend = "stable"
	TrendRising   InstabilityTrend = "rising"
	TrendFalling  InstabilityTrend = "falling"
	TrendCritical InstabilityTrend = "critical"
)

// World is the container every citizen, relationship, and movement hangs
// off. Instability moves with manifestations and collective events.
type World struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Tick uint64    `json:"tick"`

	Instability      float64          `json:"instability"` // 0–1
	InstabilityTrend InstabilityTrend `json:"instability_trend"`

	// Manifestation cooldown bookkeeping. Cooldown is derived from tick
	// distance, not stored separately.
	ManifestCount    uint64 `json:"manifest_count"`
	LastManifestTick uint64 `json:"last_manifest_tick"`

	CreatedTick uint64 `json:"created_tick"`
}

// OnCooldown reports whether a manifestation at the given tick falls
// inside the lockout window after the previous one.
func (w *World) OnCooldown(tick uint64, cooldownTicks uint64) bool {
	if w.ManifestCount == 0 {
		return false
	}
	return tick < w.LastManifestTick+cooldownTicks
}
