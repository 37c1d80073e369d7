package sim

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/demiurge/internal/engine"
	"github.com/talgya/demiurge/internal/society"
)

func TestGenesisSpawnsPopulation(t *testing.T) {
	s := Genesis("Testheim", 20, 7)

	st := s.Snapshot()
	assert.Equal(t, 20, st.Population)
	assert.Equal(t, uint64(0), st.Tick)
	assert.Equal(t, "Testheim", s.World.Name)
	assert.Equal(t, society.TrendStable, s.World.InstabilityTrend)

	for _, c := range s.Citizens {
		assert.Equal(t, s.World.ID, c.WorldID)
		assert.NotEmpty(t, c.Name)
		assert.NotEmpty(t, c.Beliefs)
	}
}

func TestStepKeepsStateInBounds(t *testing.T) {
	s := Genesis("Testheim", 30, 7)

	for i := 0; i < 50; i++ {
		s.Step()
	}

	assert.Equal(t, uint64(50), s.World.Tick)
	assert.GreaterOrEqual(t, s.World.Instability, 0.0)
	assert.LessOrEqual(t, s.World.Instability, 1.0)

	for _, c := range s.Citizens {
		assert.GreaterOrEqual(t, c.State.Mood, -1.0)
		assert.LessOrEqual(t, c.State.Mood, 1.0)
		assert.GreaterOrEqual(t, c.State.Stress, 0.0)
		assert.LessOrEqual(t, c.State.Stress, 1.0)
		assert.GreaterOrEqual(t, c.State.TrustDivine, -1.0)
		assert.LessOrEqual(t, c.State.TrustDivine, 1.0)
		for _, b := range c.Beliefs {
			assert.GreaterOrEqual(t, b.Confidence, 0.0)
			assert.LessOrEqual(t, b.Confidence, 1.0)
		}
	}
}

func TestWhisperThroughSimulation(t *testing.T) {
	s := Genesis("Testheim", 10, 7)
	target := s.Citizens[0]
	memsBefore := len(target.Memories)

	res, err := s.Whisper(context.Background(), engine.WhisperInput{
		TargetCitizenID: target.ID,
		Content:         "rest tonight, the storm has passed",
		Tone:            society.ToneComforting,
	})

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Greater(t, len(target.Memories), memsBefore)
}

func TestWhisperUnknownCitizen(t *testing.T) {
	s := Genesis("Testheim", 5, 7)

	_, err := s.Whisper(context.Background(), engine.WhisperInput{
		TargetCitizenID: uuid.New(),
		Content:         "hello",
		Tone:            society.ToneLoving,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCitizenNotFound)
}

func TestBlockedWhisperThroughSimulation(t *testing.T) {
	s := Genesis("Testheim", 5, 7)
	target := s.Citizens[0]

	res, err := s.Whisper(context.Background(), engine.WhisperInput{
		TargetCitizenID: target.ID,
		Content:         "you should end your life of doubt",
		Tone:            society.ToneCommanding,
	})

	require.NoError(t, err)
	assert.True(t, res.Blocked)
	assert.False(t, res.Success)
	assert.Empty(t, target.Memories)
}

func TestManifestCooldownThroughSimulation(t *testing.T) {
	s := Genesis("Testheim", 10, 7)
	in := engine.ManifestInput{
		Kind:      "sign",
		Content:   "light over the square",
		Intensity: society.IntensitySubtle,
		Audience:  society.AudienceAll,
	}

	res, err := s.Manifest(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, res.Success)

	res, err = s.Manifest(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, res.Blocked)
}

func TestInjectDivineEvent(t *testing.T) {
	s := Genesis("Testheim", 10, 7)

	res := s.InjectEvent(society.EventMiracle, true)

	assert.True(t, res.Event.IsDivine)
	assert.Len(t, res.Event.AffectedIDs, 10)
	require.Len(t, s.Events, 1)
	for _, c := range s.Citizens {
		assert.NotEmpty(t, c.Memories)
	}
}

func TestWhisperPacingIsCounted(t *testing.T) {
	s := Genesis("Testheim", 5, 7)
	id := s.Citizens[0].ID

	s.recentWhispers[id] = []uint64{0, 1, 2}
	s.World.Tick = 5
	assert.Equal(t, 3, s.countRecentWhispers(id, 5))

	// Entries fall out once the window passes them.
	s.World.Tick = 30
	assert.Equal(t, 0, s.countRecentWhispers(id, 30))
}
