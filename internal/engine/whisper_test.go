package engine

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/demiurge/internal/citizen"
	"github.com/talgya/demiurge/internal/entropy"
	"github.com/talgya/demiurge/internal/guardrail"
	"github.com/talgya/demiurge/internal/society"
)

func whisperTarget(arch citizen.Archetype, mutate func(*citizen.Citizen)) *citizen.Citizen {
	c := &citizen.Citizen{
		ID:      uuid.New(),
		WorldID: uuid.New(),
		Name:    "Tamsin",
		Attributes: citizen.Attributes{
			Archetype:            arch,
			EmotionalSensitivity: 0.6,
			AuthorityTrust:       0.5,
			SocialInfluence:      0.5,
			DivineCuriosity:      0.7,
		},
		State:   citizen.State{Hope: 0.5, TrustPeers: 0.5},
		Consent: citizen.Consent{Emotional: 0.95, RelationalPacing: 0.9, AuthorityResistance: 0.9},
	}
	if mutate != nil {
		mutate(c)
	}
	return c
}

func whisperParams() WhisperParams {
	return WhisperParams{
		Gate: guardrail.New(),
		Rnd:  entropy.NewSeeded(11),
		Tick: 5,
	}
}

func TestComfortingWhisperRelievesStress(t *testing.T) {
	c := whisperTarget(citizen.ArchBeliever, func(c *citizen.Citizen) {
		c.State.Stress = 0.7
		c.State.TrustDivine = 0.6
		c.Beliefs = []citizen.Belief{
			{Topic: citizen.TopicDivineExistence, Stance: 0.8, Confidence: 0.8, Origin: citizen.OriginInnate},
		}
	})
	world := &society.World{ID: c.WorldID}
	stressBefore := c.State.Stress
	trustBefore := c.State.TrustDivine

	res, err := SendWhisper(context.Background(), WhisperInput{
		TargetCitizenID: c.ID,
		Content:         "rest now, the worst is behind you",
		Tone:            society.ToneComforting,
	}, c, world, whisperParams())

	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Less(t, c.State.Stress, stressBefore)
	assert.GreaterOrEqual(t, c.State.TrustDivine, trustBefore)
	assert.False(t, res.Consent.Violated)
}

func TestWhisperAlwaysLeavesDivineMemory(t *testing.T) {
	c := whisperTarget(citizen.ArchCynic, func(c *citizen.Citizen) {
		// A hostile audience: the whisper will be resisted or ignored.
		c.State.TrustDivine = -0.9
		c.State.Stress = 0.9
	})
	world := &society.World{ID: c.WorldID}

	res, err := SendWhisper(context.Background(), WhisperInput{
		TargetCitizenID: c.ID,
		Content:         "I am here",
		Tone:            society.ToneCryptic,
	}, c, world, whisperParams())

	require.NoError(t, err)
	require.True(t, res.Success)
	assert.NotEqual(t, society.ReceptionAccepted, res.Reception)

	divine := citizen.DivineMemories(c)
	require.Len(t, divine, 1)
	assert.Equal(t, citizen.MemoryDivine, divine[0].Type)
	assert.Equal(t, 0.0, divine[0].DecayRate)
}

func TestBlockedWhisperMutatesNothing(t *testing.T) {
	c := whisperTarget(citizen.ArchSeeker, func(c *citizen.Citizen) {
		c.State.Stress = 0.4
		c.State.TrustDivine = 0.5
	})
	world := &society.World{ID: c.WorldID}
	before := *c

	res, err := SendWhisper(context.Background(), WhisperInput{
		TargetCitizenID: c.ID,
		Content:         "you should end it all tonight",
		Tone:            society.ToneComforting,
	}, c, world, whisperParams())

	require.NoError(t, err)
	assert.True(t, res.Blocked)
	assert.False(t, res.Success)
	assert.Nil(t, res.Whisper)
	assert.Equal(t, before.State, c.State)
	assert.Empty(t, c.Memories)
}

func TestBlockedWhisperStillBreachesConsent(t *testing.T) {
	c := whisperTarget(citizen.ArchConformist, func(c *citizen.Citizen) {
		c.State.Stress = 0.9
		c.State.TrustDivine = 0.5
		c.Consent.Emotional = 0.3
	})
	world := &society.World{ID: c.WorldID}

	// pressure = 0.8 * (1 + 0.9*0.5) = 1.16 > 0.3: the attempt breaches
	// even though the content never gets through the gate.
	res, err := SendWhisper(context.Background(), WhisperInput{
		TargetCitizenID: c.ID,
		Content:         "burn the temple to the ground",
		Tone:            society.ToneCommanding,
	}, c, world, whisperParams())

	require.NoError(t, err)
	assert.True(t, res.Blocked)
	require.True(t, res.Consent.Violated)
	assert.Equal(t, guardrail.ThresholdEmotional, res.Consent.Threshold)

	// trust_collapse -0.25, fear_response +0.2 stress -0.1 mood.
	assert.InDelta(t, 0.25, c.State.TrustDivine, 1e-9)
	assert.InDelta(t, 1.0, c.State.Stress, 1e-9)
	assert.InDelta(t, -0.1, c.State.Mood, 1e-9)

	// No delivery: no memory, no whisper record, no belief movement.
	assert.Empty(t, c.Memories)
	assert.Nil(t, res.Whisper)
	assert.Empty(t, res.BeliefChanges)
}

func TestSkepticNeverSimplyAccepts(t *testing.T) {
	c := whisperTarget(citizen.ArchSkeptic, func(c *citizen.Citizen) {
		// Stack every receptivity input in the whisper's favor.
		c.State.TrustDivine = 1
		c.Attributes.EmotionalSensitivity = 1
		c.Attributes.DivineCuriosity = 1
		c.State.TrustPeers = 1
		c.Beliefs = []citizen.Belief{
			{Topic: citizen.TopicDivineExistence, Stance: 1, Confidence: 1, Origin: citizen.OriginDivine},
		}
	})
	world := &society.World{ID: c.WorldID}

	res, err := SendWhisper(context.Background(), WhisperInput{
		TargetCitizenID: c.ID,
		Content:         "believe",
		Tone:            society.ToneQuestioning,
	}, c, world, whisperParams())

	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, society.ReceptionQuestioned, res.Reception)
}

func TestSeekerFloorsAtQuestioned(t *testing.T) {
	c := whisperTarget(citizen.ArchSeeker, func(c *citizen.Citizen) {
		c.State.TrustDivine = -1
		c.State.Stress = 1
		c.State.Dissonance = 1
		c.Attributes.DivineCuriosity = 0
		c.Attributes.EmotionalSensitivity = 0
		c.State.TrustPeers = 0
	})
	world := &society.World{ID: c.WorldID}

	res, err := SendWhisper(context.Background(), WhisperInput{
		TargetCitizenID: c.ID,
		Content:         "what do you want",
		Tone:            society.ToneWarning,
	}, c, world, whisperParams())

	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, society.ReceptionQuestioned, res.Reception)
}

func TestWhisperKeywordNudgesBelief(t *testing.T) {
	c := whisperTarget(citizen.ArchBeliever, func(c *citizen.Citizen) {
		c.State.TrustDivine = 0.8
		c.State.Stress = 0.6
	})
	world := &society.World{ID: c.WorldID}

	res, err := SendWhisper(context.Background(), WhisperInput{
		TargetCitizenID: c.ID,
		Content:         "hold on to hope",
		Tone:            society.ToneComforting,
	}, c, world, whisperParams())

	require.NoError(t, err)
	require.True(t, res.Success)
	require.NotEmpty(t, res.BeliefChanges)
	assert.Equal(t, "hope", res.BeliefChanges[0].Topic)
	assert.Positive(t, res.BeliefChanges[0].StanceDelta)
	require.NotNil(t, c.BeliefByTopic("hope"))
}

func TestWhisperConsentBreachIsNotSilent(t *testing.T) {
	c := whisperTarget(citizen.ArchConformist, func(c *citizen.Citizen) {
		c.State.Stress = 0.9
		c.State.TrustDivine = 0.5
		c.Consent.Emotional = 0.3 // fragile
	})
	world := &society.World{ID: c.WorldID}
	trustBefore := c.State.TrustDivine

	res, err := SendWhisper(context.Background(), WhisperInput{
		TargetCitizenID: c.ID,
		Content:         "go to the temple at dawn",
		Tone:            society.ToneCommanding,
	}, c, world, whisperParams())

	require.NoError(t, err)
	require.True(t, res.Success)
	require.True(t, res.Consent.Violated)
	assert.Equal(t, guardrail.ThresholdEmotional, res.Consent.Threshold)
	assert.NotEmpty(t, res.Consent.Consequences)
	// Trust collapse outweighs whatever the whisper itself gave.
	assert.Less(t, c.State.TrustDivine, trustBefore)
}
