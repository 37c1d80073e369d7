// Whisper engine — a private divine intervention against one citizen.
// The guardrail gate runs first and is a hard stop; afterwards the
// engine computes receptivity, classifies the reception, and derives
// state, belief, and memory deltas.
package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/talgya/demiurge/internal/citizen"
	"github.com/talgya/demiurge/internal/entropy"
	"github.com/talgya/demiurge/internal/guardrail"
	"github.com/talgya/demiurge/internal/society"
	"github.com/talgya/demiurge/internal/tuning"
)

// WhisperInput is the privileged action: content spoken into one
// citizen's mind in a chosen tone.
type WhisperInput struct {
	TargetCitizenID uuid.UUID
	Content         string
	Tone            society.WhisperTone
}

// BeliefChange records a topic nudge a whisper caused.
type BeliefChange struct {
	Topic       string  `json:"topic"`
	StanceDelta float64 `json:"stance_delta"`
}

// WhisperResult is everything the caller needs to persist: the immutable
// whisper record, the state delta, belief nudges, and the memory.
type WhisperResult struct {
	Success     bool   `json:"success"`
	Blocked     bool   `json:"blocked"`
	BlockReason string `json:"block_reason,omitempty"`

	Whisper       *society.Whisper        `json:"whisper,omitempty"`
	Reception     society.Reception       `json:"reception,omitempty"`
	StateChanges  citizen.StateDelta      `json:"state_changes"`
	BeliefChanges []BeliefChange          `json:"belief_changes,omitempty"`
	Memory        *citizen.Memory         `json:"memory,omitempty"`
	Consent       guardrail.ConsentResult `json:"consent"`
}

// WhisperParams carries the caller-supplied context a whisper needs.
type WhisperParams struct {
	Gate *guardrail.Gate
	Rnd  entropy.Source
	Tick uint64

	// RecentWhispers is how many whispers the target received inside the
	// pacing window, from records.
	RecentWhispers int
}

// SendWhisper computes a citizen's reaction to a private whisper. A
// blocked whisper leaves no memory and moves no beliefs, but a consent
// breach still lands its consequences: the attempt is what breaches, not
// the delivery. The error return is reserved for context cancellation
// and caller contract violations.
func SendWhisper(ctx context.Context, in WhisperInput, c *citizen.Citizen, world *society.World, p WhisperParams) (WhisperResult, error) {
	if c == nil || world == nil {
		return WhisperResult{}, fmt.Errorf("send whisper: citizen and world are required")
	}
	if p.Gate == nil {
		return WhisperResult{}, fmt.Errorf("send whisper: guardrail gate is required")
	}

	gateRes, err := p.Gate.CheckContent(ctx, in.Content, guardrail.SourceDivine, guardrail.Context{
		WorldID:   world.ID,
		CitizenID: c.ID,
		Tick:      p.Tick,
		Mode:      "whisper",
	})
	if err != nil {
		return WhisperResult{}, err
	}
	intensity := toneIntensity(in.Tone)
	consent := guardrail.CheckConsent(c, guardrail.ConsentAction{
		Intensity:      intensity,
		Tone:           in.Tone,
		Tick:           p.Tick,
		RecentWhispers: p.RecentWhispers,
	})

	if !gateRes.Passed {
		// The attempt itself breaches consent; consequences land even
		// though the content never reaches the citizen.
		if consent.Violated {
			guardrail.ApplyConsequences(c, consent)
		}
		return WhisperResult{Blocked: true, BlockReason: gateRes.Reason, Consent: consent}, nil
	}

	receptivity := calculateReceptivity(c, in.Tone)
	reception := classifyReception(c, receptivity)

	delta := receptionDelta(reception, in.Tone, receptivity)
	beliefChanges := applyBeliefNudge(c, in.Content, reception, intensity, p.Tick)

	// Divine contact of any reception is still divine contact.
	dissonance := citizen.ProcessDivineImpact(c, receptionValence(reception), intensity*receptivity, p.Tick)
	delta.Dissonance += dissonance

	c.State.ApplyDelta(delta)

	// Consent consequences land regardless of the content outcome.
	if consent.Violated {
		guardrail.ApplyConsequences(c, consent)
	}

	mem := citizen.NewMemory(citizen.MemoryDivine,
		fmt.Sprintf("a voice spoke: %q", in.Content),
		receptionValence(reception), 0.7, p.Tick)
	citizen.Record(c, mem)

	return WhisperResult{
		Success: true,
		Whisper: &society.Whisper{
			ID:          uuid.New(),
			WorldID:     world.ID,
			CitizenID:   c.ID,
			Content:     in.Content,
			Tone:        in.Tone,
			Reception:   reception,
			Receptivity: receptivity,
			Tick:        p.Tick,
		},
		Reception:     reception,
		StateChanges:  delta,
		BeliefChanges: beliefChanges,
		Memory:        &mem,
		Consent:       consent,
	}, nil
}

// calculateReceptivity scores how open the citizen is to this whisper
// right now, in [0, 1].
func calculateReceptivity(c *citizen.Citizen, tone society.WhisperTone) float64 {
	base := (c.State.TrustDivine + 1) / 2

	cognitiveLoad := c.State.Stress + c.State.Dissonance*0.5

	r := base +
		c.Attributes.EmotionalSensitivity*tuning.SensitivityWeight +
		c.Attributes.DivineCuriosity*tuning.CuriosityWeight +
		toneMatch(c, tone)*tuning.ToneMatchWeight +
		relationshipHistory(c)*tuning.HistoryWeight +
		socialReinforcement(c)*tuning.ReinforcementWeight -
		cognitiveLoad*tuning.CognitiveLoadWeight

	return citizen.Clamp01(r)
}

// toneMatch scores how well a tone lands on the citizen's current state.
func toneMatch(c *citizen.Citizen, tone society.WhisperTone) float64 {
	st := c.State
	switch tone {
	case society.ToneComforting:
		if st.Stress > 0.5 || st.Mood < -0.3 {
			return 0.9
		}
		return 0.4
	case society.ToneCommanding:
		if c.Attributes.AuthorityTrust > 0.6 {
			return 0.8
		}
		if c.Attributes.Archetype == citizen.ArchRebel {
			return 0.1
		}
		return 0.3
	case society.ToneCryptic:
		if c.Attributes.DivineCuriosity > 0.6 {
			return 0.8
		}
		return 0.3
	case society.ToneQuestioning:
		if c.Attributes.Archetype == citizen.ArchSeeker || c.Attributes.Archetype == citizen.ArchSkeptic {
			return 0.8
		}
		return 0.5
	case society.ToneLoving:
		if st.Hope < 0.3 || st.TrustPeers < 0.3 {
			return 0.9
		}
		return 0.6
	case society.ToneWarning:
		if st.Stress < 0.4 {
			return 0.7
		}
		// Already stressed citizens hear a warning as one more weight.
		return 0.3
	default:
		return 0.5
	}
}

// relationshipHistory scales with how much prior divine contact the
// citizen carries; ten divine memories saturate it.
func relationshipHistory(c *citizen.Citizen) float64 {
	n := 0
	for _, m := range c.Memories {
		if m.Type == citizen.MemoryDivine {
			n++
		}
	}
	return citizen.Clamp01(float64(n) / 10)
}

// socialReinforcement estimates how much the citizen's circle primes them
// for divine contact: peer trust weighted by their own divine conviction.
func socialReinforcement(c *citizen.Citizen) float64 {
	if b := c.BeliefByTopic(citizen.TopicDivineExistence); b != nil && b.Stance > 0 {
		return citizen.Clamp01(b.Confidence * c.State.TrustPeers)
	}
	return citizen.Clamp01(0.2 * c.State.TrustPeers)
}

// classifyReception maps receptivity to a reception class, with archetype
// overrides applied before the general ladder.
func classifyReception(c *citizen.Citizen, receptivity float64) society.Reception {
	switch c.Attributes.Archetype {
	case citizen.ArchSkeptic:
		// Skeptics never simply accept; their ceiling is questioning.
		switch {
		case receptivity >= tuning.ReceptionQuestioned:
			return society.ReceptionQuestioned
		case receptivity >= tuning.ReceptionIgnored:
			return society.ReceptionIgnored
		default:
			return society.ReceptionResisted
		}
	case citizen.ArchCynic:
		switch {
		case receptivity >= tuning.ReceptionAccepted:
			return society.ReceptionQuestioned
		case receptivity >= tuning.ReceptionIgnored:
			return society.ReceptionIgnored
		case receptivity >= tuning.ReceptionMisinterpreted:
			return society.ReceptionMisinterpreted
		default:
			return society.ReceptionResisted
		}
	case citizen.ArchSeeker:
		// Seekers engage with everything; they floor at questioned.
		if r := ladder(receptivity); r == society.ReceptionAccepted || r == society.ReceptionQuestioned {
			return r
		}
		return society.ReceptionQuestioned
	}

	// A citizen moved enough, with enough reach, retells the whisper.
	if receptivity >= tuning.SharedReceptivityGate &&
		c.Attributes.SocialInfluence > tuning.SharedInfluenceGate {
		return society.ReceptionShared
	}
	return ladder(receptivity)
}

// ladder is the general reception threshold ladder.
func ladder(receptivity float64) society.Reception {
	switch {
	case receptivity >= tuning.ReceptionAccepted:
		return society.ReceptionAccepted
	case receptivity >= tuning.ReceptionQuestioned:
		return society.ReceptionQuestioned
	case receptivity >= tuning.ReceptionIgnored:
		return society.ReceptionIgnored
	case receptivity >= tuning.ReceptionMisinterpreted:
		return society.ReceptionMisinterpreted
	default:
		return society.ReceptionResisted
	}
}

// receptionDelta maps a reception class to its state delta. Comforting
// whispers that land (accepted or questioned) also relieve stress.
func receptionDelta(r society.Reception, tone society.WhisperTone, receptivity float64) citizen.StateDelta {
	var d citizen.StateDelta
	switch r {
	case society.ReceptionAccepted, society.ReceptionShared:
		d = citizen.StateDelta{Mood: 0.1, Hope: 0.1, Stress: -0.05, TrustDivine: 0.1}
		if r == society.ReceptionShared {
			d.TrustPeers = 0.05
		}
	case society.ReceptionQuestioned:
		d = citizen.StateDelta{Dissonance: 0.08, TrustDivine: 0.02}
	case society.ReceptionIgnored:
		// No emotional purchase at all.
	case society.ReceptionMisinterpreted:
		d = citizen.StateDelta{Dissonance: 0.1, Mood: -0.05}
	case society.ReceptionResisted:
		d = citizen.StateDelta{TrustDivine: -0.1, Dissonance: 0.1, Stress: 0.05}
	}

	if tone == society.ToneComforting &&
		(r == society.ReceptionAccepted || r == society.ReceptionShared || r == society.ReceptionQuestioned) {
		d.Stress -= 0.1 * citizen.Clamp01(receptivity+0.2)
	}
	return d
}

// receptionValence is the emotional sign of a reception for memory and
// divine-impact purposes.
func receptionValence(r society.Reception) float64 {
	switch r {
	case society.ReceptionAccepted:
		return 0.6
	case society.ReceptionShared:
		return 0.7
	case society.ReceptionQuestioned:
		return 0.2
	case society.ReceptionIgnored:
		return 0
	case society.ReceptionMisinterpreted:
		return -0.2
	default: // resisted
		return -0.5
	}
}

// toneIntensity is how much pressure each tone exerts, used for consent.
func toneIntensity(t society.WhisperTone) float64 {
	switch t {
	case society.ToneCommanding:
		return 0.8
	case society.ToneWarning:
		return 0.7
	case society.ToneLoving:
		return 0.6
	case society.ToneComforting:
		return 0.4
	case society.ToneQuestioning:
		return 0.35
	case society.ToneCryptic:
		return 0.3
	default:
		return 0.5
	}
}

// whisperTopics maps content keywords to belief topics.
var whisperTopics = []struct {
	keyword string
	topic   string
}{
	{"trust", "divine_trust"},
	{"faith", "divine_trust"},
	{"love", "love"},
	{"hope", "hope"},
	{"fear", "fear"},
	{"purpose", "purpose"},
	{"meaning", "purpose"},
	{"forgive", "forgiveness"},
	{"justice", "justice"},
}

// applyBeliefNudge detects a topic in the whisper content and nudges the
// citizen's stance on it. Only receptions that actually engaged with the
// content move beliefs; resistance pushes the stance the other way.
func applyBeliefNudge(c *citizen.Citizen, content string, r society.Reception, intensity float64, tick uint64) []BeliefChange {
	var shift float64
	switch r {
	case society.ReceptionAccepted, society.ReceptionShared:
		shift = 0.1 * intensity
	case society.ReceptionQuestioned:
		shift = 0.05 * intensity
	case society.ReceptionResisted:
		shift = -0.05 * intensity
	default:
		return nil
	}

	lower := strings.ToLower(content)
	var changes []BeliefChange
	for _, kt := range whisperTopics {
		if !strings.Contains(lower, kt.keyword) {
			continue
		}
		b := c.BeliefByTopic(kt.topic)
		if b == nil {
			c.Beliefs = append(c.Beliefs, citizen.Belief{
				Topic:      kt.topic,
				Stance:     citizen.Clamp(shift, -1, 1),
				Confidence: 0.2,
				Origin:     citizen.OriginDivine,
				FormedTick: tick,
			})
			changes = append(changes, BeliefChange{Topic: kt.topic, StanceDelta: shift})
			continue
		}
		before := b.Stance
		b.Stance = citizen.Clamp(b.Stance+shift, -1, 1)
		changes = append(changes, BeliefChange{Topic: kt.topic, StanceDelta: b.Stance - before})
	}
	return changes
}
