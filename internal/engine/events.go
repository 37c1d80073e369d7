// Collective event engine — fixed lookup tables mapping each event type
// to population-level and per-citizen deltas. No randomness in magnitude;
// only the flavor text varies.
package engine

import (
	"github.com/google/uuid"

	"github.com/talgya/demiurge/internal/citizen"
	"github.com/talgya/demiurge/internal/entropy"
	"github.com/talgya/demiurge/internal/narrative"
	"github.com/talgya/demiurge/internal/society"
	"github.com/talgya/demiurge/internal/tuning"
)

// WorldDelta is the population-level effect of a collective event.
type WorldDelta struct {
	Stability float64 `json:"stability"`
	Entropy   float64 `json:"entropy"`
	Mood      float64 `json:"mood"`
	Hope      float64 `json:"hope"`
}

// eventImpact holds the fixed deltas for one event type.
type eventImpact struct {
	World WorldDelta
	// Per-citizen base deltas, scaled by emotional sensitivity.
	Mood, Stress, Hope float64
}

// impactFor is the closed table over event types. A new event type added
// to society.EventType must get a case here.
func impactFor(t society.EventType) eventImpact {
	switch t {
	case society.EventCelebration:
		return eventImpact{
			World: WorldDelta{Stability: 0.05, Entropy: -0.02, Mood: 0.1, Hope: 0.05},
			Mood:  0.2, Stress: -0.1, Hope: 0.1,
		}
	case society.EventCrisis:
		return eventImpact{
			World: WorldDelta{Stability: -0.1, Entropy: 0.08, Mood: -0.1, Hope: -0.05},
			Mood:  -0.15, Stress: 0.2, Hope: -0.1,
		}
	case society.EventDisaster:
		return eventImpact{
			World: WorldDelta{Stability: -0.2, Entropy: 0.15, Mood: -0.2, Hope: -0.1},
			Mood:  -0.3, Stress: 0.3, Hope: -0.15,
		}
	case society.EventMiracle:
		return eventImpact{
			World: WorldDelta{Stability: 0.1, Entropy: 0.05, Mood: 0.2, Hope: 0.15},
			Mood:  0.25, Stress: -0.15, Hope: 0.2,
		}
	case society.EventRevelation:
		return eventImpact{
			World: WorldDelta{Stability: -0.05, Entropy: 0.1, Mood: 0.05, Hope: 0.1},
			Mood:  0.1, Stress: 0.1, Hope: 0.1,
		}
	case society.EventSchism:
		return eventImpact{
			World: WorldDelta{Stability: -0.15, Entropy: 0.12, Mood: -0.1, Hope: -0.05},
			Mood:  -0.1, Stress: 0.15, Hope: -0.05,
		}
	case society.EventReform:
		return eventImpact{
			World: WorldDelta{Stability: 0.08, Entropy: -0.05, Mood: 0.05, Hope: 0.1},
			Mood:  0.1, Stress: -0.05, Hope: 0.1,
		}
	default:
		return eventImpact{}
	}
}

// EventResult bundles a generated collective event with the deltas the
// caller must apply and persist.
type EventResult struct {
	Event           society.CollectiveEvent
	CitizenUpdates  map[uuid.UUID]citizen.StateDelta
	CitizenMemories map[uuid.UUID]citizen.Memory
	WorldUpdates    WorldDelta
}

// GenerateCollectiveEvent computes the impact of an event on the affected
// cohort. Per-citizen deltas scale with emotional sensitivity; divine
// events additionally leave a permanent divine memory.
func GenerateCollectiveEvent(t society.EventType, affected []*citizen.Citizen, world *society.World, movement *society.CulturalMovement, isDivine bool, rnd entropy.Source) EventResult {
	impact := impactFor(t)

	updates := make(map[uuid.UUID]citizen.StateDelta, len(affected))
	memories := make(map[uuid.UUID]citizen.Memory)
	for _, c := range affected {
		scale := tuning.SensitivityBase + c.Attributes.EmotionalSensitivity*tuning.SensitivitySpan
		updates[c.ID] = citizen.StateDelta{
			Mood:   impact.Mood * scale,
			Stress: impact.Stress * scale,
			Hope:   impact.Hope * scale,
		}
		if isDivine {
			memories[c.ID] = citizen.NewMemory(citizen.MemoryDivine,
				narrative.EventMemory(t, rnd),
				citizen.Clamp(impact.Mood*scale, -1, 1), 0.8, world.Tick)
		}
	}

	affectedIDs := make([]uuid.UUID, 0, len(affected))
	for _, c := range affected {
		affectedIDs = append(affectedIDs, c.ID)
	}

	desc := narrative.EventDescription(t, movement, rnd)

	return EventResult{
		Event: society.CollectiveEvent{
			ID:          uuid.New(),
			WorldID:     world.ID,
			Type:        t,
			Description: desc,
			AffectedIDs: affectedIDs,
			IsDivine:    isDivine,
			Tick:        world.Tick,
		},
		CitizenUpdates:  updates,
		CitizenMemories: memories,
		WorldUpdates:    impact.World,
	}
}

// ApplyWorldDelta folds a world delta into the instability scalar:
// entropy raises it, stability lowers it.
func ApplyWorldDelta(world *society.World, d WorldDelta) {
	world.Instability = citizen.Clamp01(world.Instability + d.Entropy - d.Stability)
}
