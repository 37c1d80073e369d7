// Belief model and update rules. Beliefs shift toward evidence, gated by
// stress; conviction grows with agreement and erodes with contradiction.
package citizen

import (
	"math"

	"github.com/talgya/demiurge/internal/tuning"
)

// BeliefOrigin tells where a belief came from.
type BeliefOrigin string

const (
	OriginInnate     BeliefOrigin = "innate"
	OriginSocial     BeliefOrigin = "social"
	OriginDivine     BeliefOrigin = "divine"
	OriginExperience BeliefOrigin = "experience"
)

// Belief is one topic stance a citizen holds.
type Belief struct {
	Topic      string       `json:"topic"`
	Stance     float64      `json:"stance"`     // -1–1
	Confidence float64      `json:"confidence"` // 0–1
	Origin     BeliefOrigin `json:"origin"`
	FormedTick uint64       `json:"formed_tick"`
}

// UpdateBelief moves a belief toward new evidence and returns the updated
// belief plus the cognitive-dissonance delta the contradiction produced.
// Total over all clamped inputs; never fails.
func UpdateBelief(b Belief, valence, strength float64, st State) (Belief, float64) {
	valence = Clamp(valence, -1, 1)
	strength = Clamp01(strength)

	// Dissonance and sign agreement are both judged against the stance
	// held before the update, not the one the evidence produces.
	prior := b.Stance
	dissonance := math.Abs(valence-prior) * strength * b.Confidence * tuning.DissonanceScale

	step := strength * (1 - st.Stress*tuning.StressDampening) * tuning.StanceStep
	b.Stance = Clamp(b.Stance+(valence-b.Stance)*step, -1, 1)

	if agreesInSign(valence, prior) {
		b.Confidence = Clamp01(b.Confidence + strength*tuning.ConfidenceGain)
	} else {
		b.Confidence = Clamp01(b.Confidence - strength*tuning.ConfidenceLoss)
	}

	return b, dissonance
}

func agreesInSign(a, b float64) bool {
	if a == 0 || b == 0 {
		return true
	}
	return (a > 0) == (b > 0)
}

// ProcessDivineImpact applies the belief consequences of direct divine
// contact and returns the dissonance delta. Contact of any valence is
// evidence that the divine exists, so that belief only ever moves up.
// Benevolence tracks the valence, and overwhelming contact quietly erodes
// the sense of free will.
func ProcessDivineImpact(c *Citizen, valence, intensity float64, tick uint64) float64 {
	valence = Clamp(valence, -1, 1)
	intensity = Clamp01(intensity)

	existence := c.ensureBelief(TopicDivineExistence, 0, OriginDivine, tick)
	existence.Stance = Clamp(existence.Stance+intensity*tuning.DivineExistenceStep, -1, 1)
	existence.Confidence = Clamp01(existence.Confidence + intensity*tuning.DivineExistenceStep)

	benevolence := c.ensureBelief(TopicDivineBenevolence, 0, OriginDivine, tick)
	updated, dissonance := UpdateBelief(*benevolence, valence, intensity, c.State)
	*benevolence = updated

	if intensity > tuning.FreeWillErosionFloor {
		if fw := c.BeliefByTopic(TopicFreeWill); fw != nil {
			fw.Stance = Clamp(fw.Stance-tuning.FreeWillErosion*intensity, -1, 1)
		}
	}

	return dissonance
}

// AbsorbSocialExposure nudges a citizen's belief toward a peer's stance,
// forming a social-origin belief when the topic is new to them.
func AbsorbSocialExposure(c *Citizen, topic string, peerStance, peerInfluence float64, tick uint64) {
	strength := Clamp01(peerInfluence * c.State.TrustPeers)
	if strength == 0 {
		return
	}
	b := c.BeliefByTopic(topic)
	if b == nil {
		c.Beliefs = append(c.Beliefs, Belief{
			Topic:      topic,
			Stance:     Clamp(peerStance*strength*tuning.StanceStep, -1, 1),
			Confidence: 0.1,
			Origin:     OriginSocial,
			FormedTick: tick,
		})
		return
	}
	updated, dissonance := UpdateBelief(*b, peerStance, strength, c.State)
	*b = updated
	c.State.ApplyDelta(StateDelta{Dissonance: dissonance})
}

// DecayBeliefs erodes conviction with time. Divine-origin beliefs keep
// their confidence; contact with the divine is not the kind of thing a
// citizen talks themselves out of.
func DecayBeliefs(c *Citizen, ticks uint64) {
	if ticks == 0 {
		return
	}
	loss := float64(ticks) * 0.0005
	for i := range c.Beliefs {
		if c.Beliefs[i].Origin == OriginDivine {
			continue
		}
		c.Beliefs[i].Confidence = Clamp(c.Beliefs[i].Confidence-loss, 0.05, 1)
	}
}

// ensureBelief returns the citizen's belief on topic, creating a neutral
// one with the given origin when absent.
func (c *Citizen) ensureBelief(topic string, stance float64, origin BeliefOrigin, tick uint64) *Belief {
	if b := c.BeliefByTopic(topic); b != nil {
		return b
	}
	c.Beliefs = append(c.Beliefs, Belief{
		Topic:      topic,
		Stance:     stance,
		Confidence: 0.1,
		Origin:     origin,
		FormedTick: tick,
	})
	return &c.Beliefs[len(c.Beliefs)-1]
}
