package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/demiurge/internal/citizen"
	"github.com/talgya/demiurge/internal/entropy"
	"github.com/talgya/demiurge/internal/society"
)

func eventCitizen(sensitivity float64) *citizen.Citizen {
	return &citizen.Citizen{
		ID: uuid.New(),
		Attributes: citizen.Attributes{
			Archetype:            citizen.ArchPragmatist,
			EmotionalSensitivity: sensitivity,
		},
	}
}

func TestCelebrationScalesWithSensitivity(t *testing.T) {
	calm := eventCitizen(0)
	raw := eventCitizen(1)
	world := &society.World{ID: uuid.New(), Tick: 7}

	res := GenerateCollectiveEvent(society.EventCelebration,
		[]*citizen.Citizen{calm, raw}, world, nil, false, entropy.NewSeeded(3))

	// Base per-citizen mood 0.2, scaled 0.7x at zero sensitivity and 1.3x
	// at full sensitivity.
	assert.InDelta(t, 0.14, res.CitizenUpdates[calm.ID].Mood, 1e-9)
	assert.InDelta(t, 0.26, res.CitizenUpdates[raw.ID].Mood, 1e-9)
	assert.InDelta(t, -0.07, res.CitizenUpdates[calm.ID].Stress, 1e-9)
	assert.InDelta(t, 0.07, res.CitizenUpdates[calm.ID].Hope, 1e-9)

	assert.InDelta(t, 0.05, res.WorldUpdates.Stability, 1e-9)
	assert.InDelta(t, -0.02, res.WorldUpdates.Entropy, 1e-9)
}

func TestDivineEventLeavesDivineMemories(t *testing.T) {
	c := eventCitizen(0.5)
	world := &society.World{ID: uuid.New(), Tick: 12}

	res := GenerateCollectiveEvent(society.EventMiracle,
		[]*citizen.Citizen{c}, world, nil, true, entropy.NewSeeded(3))

	require.Contains(t, res.CitizenMemories, c.ID)
	m := res.CitizenMemories[c.ID]
	assert.Equal(t, citizen.MemoryDivine, m.Type)
	assert.Equal(t, 0.0, m.DecayRate)
	assert.Equal(t, uint64(12), m.Tick)
	assert.True(t, res.Event.IsDivine)
}

func TestOrganicEventLeavesNoMemories(t *testing.T) {
	c := eventCitizen(0.5)
	world := &society.World{ID: uuid.New(), Tick: 12}

	res := GenerateCollectiveEvent(society.EventCrisis,
		[]*citizen.Citizen{c}, world, nil, false, entropy.NewSeeded(3))

	assert.Empty(t, res.CitizenMemories)
	assert.Len(t, res.Event.AffectedIDs, 1)
}

func TestEventDescriptionNamesMovement(t *testing.T) {
	mv := &society.CulturalMovement{Name: "the Vigil of Embers"}
	world := &society.World{ID: uuid.New()}

	res := GenerateCollectiveEvent(society.EventSchism, nil, world, mv, false, entropy.NewSeeded(3))

	assert.Contains(t, res.Event.Description, "the Vigil of Embers")
}

func TestApplyWorldDeltaFoldsIntoInstability(t *testing.T) {
	world := &society.World{ID: uuid.New(), Instability: 0.5}

	ApplyWorldDelta(world, WorldDelta{Stability: -0.2, Entropy: 0.15})
	assert.InDelta(t, 0.85, world.Instability, 1e-9)

	ApplyWorldDelta(world, WorldDelta{Stability: 0.9, Entropy: 0})
	assert.InDelta(t, 0.0, world.Instability, 1e-9)
}
