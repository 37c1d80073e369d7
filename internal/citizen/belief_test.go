package citizen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateBeliefMovesTowardEvidence(t *testing.T) {
	b := Belief{Topic: "harvest_ritual", Stance: 0, Confidence: 0.5}

	updated, dissonance := UpdateBelief(b, 1.0, 0.5, State{})

	// step = 0.5 * (1 - 0) * 0.2 = 0.1, applied to the evidence gap.
	assert.InDelta(t, 0.1, updated.Stance, 1e-9)
	assert.InDelta(t, 0.55, updated.Confidence, 1e-9)
	assert.InDelta(t, 0.025, dissonance, 1e-9)
}

func TestUpdateBeliefStressDampensShift(t *testing.T) {
	b := Belief{Topic: "harvest_ritual", Stance: 0, Confidence: 0.5}

	calm, _ := UpdateBelief(b, 1.0, 0.5, State{Stress: 0})
	stressed, _ := UpdateBelief(b, 1.0, 0.5, State{Stress: 1})

	assert.Greater(t, calm.Stance, stressed.Stance)
	assert.InDelta(t, 0.07, stressed.Stance, 1e-9)
}

func TestUpdateBeliefContradictionErodesConfidence(t *testing.T) {
	b := Belief{Topic: "harvest_ritual", Stance: -0.5, Confidence: 0.8}

	updated, dissonance := UpdateBelief(b, 1.0, 0.5, State{})

	// The stance stays negative, so the evidence still contradicts it.
	assert.Negative(t, updated.Stance)
	assert.InDelta(t, 0.725, updated.Confidence, 1e-9)
	assert.Positive(t, dissonance)
}

func TestUpdateBeliefSignJudgedBeforeFlip(t *testing.T) {
	// Strong evidence flips a weak stance across zero; the contradiction
	// still erodes confidence because the held stance disagreed.
	b := Belief{Topic: "harvest_ritual", Stance: -0.05, Confidence: 0.5}

	updated, _ := UpdateBelief(b, 1.0, 1.0, State{})

	// step = 0.2, stance = -0.05 + 1.05*0.2 = 0.16
	assert.InDelta(t, 0.16, updated.Stance, 1e-9)
	assert.InDelta(t, 0.35, updated.Confidence, 1e-9)
}

func TestUpdateBeliefClampsInputs(t *testing.T) {
	b := Belief{Topic: "x", Stance: 0.9, Confidence: 0.9}

	updated, _ := UpdateBelief(b, 5.0, 9.0, State{})

	assert.LessOrEqual(t, updated.Stance, 1.0)
	assert.LessOrEqual(t, updated.Confidence, 1.0)
}

func TestDivineImpactExistenceOnlyMovesUp(t *testing.T) {
	c := &Citizen{
		Beliefs: []Belief{
			{Topic: TopicDivineExistence, Stance: -0.5, Confidence: 0.4, Origin: OriginInnate},
		},
	}

	// Hostile contact is still contact: existence rises.
	ProcessDivineImpact(c, -1.0, 0.6, 1)
	after := c.BeliefByTopic(TopicDivineExistence)
	require.NotNil(t, after)
	assert.InDelta(t, -0.41, after.Stance, 1e-9)

	prev := after.Stance
	ProcessDivineImpact(c, 1.0, 0.6, 2)
	assert.Greater(t, c.BeliefByTopic(TopicDivineExistence).Stance, prev)
}

func TestDivineImpactErodesFreeWillOnlyWhenOverwhelming(t *testing.T) {
	c := &Citizen{
		Beliefs: []Belief{
			{Topic: TopicFreeWill, Stance: 0.6, Confidence: 0.5, Origin: OriginInnate},
		},
	}

	ProcessDivineImpact(c, 0.5, 0.5, 1)
	assert.InDelta(t, 0.6, c.BeliefByTopic(TopicFreeWill).Stance, 1e-9)

	ProcessDivineImpact(c, 0.5, 0.9, 2)
	assert.InDelta(t, 0.6-0.05*0.9, c.BeliefByTopic(TopicFreeWill).Stance, 1e-9)
}

func TestDecayBeliefsSparesDivineOrigin(t *testing.T) {
	c := &Citizen{
		Beliefs: []Belief{
			{Topic: "a", Confidence: 0.5, Origin: OriginInnate},
			{Topic: "b", Confidence: 0.5, Origin: OriginDivine},
		},
	}

	DecayBeliefs(c, 100)

	assert.Less(t, c.Beliefs[0].Confidence, 0.5)
	assert.Equal(t, 0.5, c.Beliefs[1].Confidence)
}

func TestApplyDeltaKeepsBounds(t *testing.T) {
	st := State{Mood: 0.5, Stress: 0.5, Hope: 0.5, TrustPeers: 0.5, TrustDivine: 0.5, Dissonance: 0.5}

	st.ApplyDelta(StateDelta{Mood: 10, Stress: 10, Hope: 10, TrustPeers: 10, TrustDivine: 10, Dissonance: 10})
	assert.Equal(t, State{Mood: 1, Stress: 1, Hope: 1, TrustPeers: 1, TrustDivine: 1, Dissonance: 1}, st)

	st.ApplyDelta(StateDelta{Mood: -10, Stress: -10, Hope: -10, TrustPeers: -10, TrustDivine: -10, Dissonance: -10})
	assert.Equal(t, State{Mood: -1, Stress: 0, Hope: 0, TrustPeers: 0, TrustDivine: -1, Dissonance: 0}, st)
}
