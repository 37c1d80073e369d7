// Package citizen provides the citizen data model: fixed attributes,
// mutable emotional state, beliefs, memories, and consent thresholds.
// Attributes are set at genesis and never change; state and beliefs
// mutate for the citizen's whole lifetime.
package citizen

import (
	"github.com/google/uuid"
	"golang.org/x/exp/constraints"
)

// Archetype is a citizen's fixed personality template.
type Archetype string

const (
	ArchSkeptic    Archetype = "skeptic"
	ArchBeliever   Archetype = "believer"
	ArchPragmatist Archetype = "pragmatist"
	ArchIdealist   Archetype = "idealist"
	ArchRebel      Archetype = "rebel"
	ArchConformist Archetype = "conformist"
	ArchSeeker     Archetype = "seeker"
	ArchCynic      Archetype = "cynic"
)

// Archetypes lists every archetype in a stable order.
var Archetypes = []Archetype{
	ArchSkeptic, ArchBeliever, ArchPragmatist, ArchIdealist,
	ArchRebel, ArchConformist, ArchSeeker, ArchCynic,
}

// Attributes are the five fixed personality traits, immutable after genesis.
type Attributes struct {
	Archetype            Archetype `json:"archetype"`
	EmotionalSensitivity float64   `json:"emotional_sensitivity"` // 0–1
	AuthorityTrust       float64   `json:"authority_trust"`       // 0–1
	SocialInfluence      float64   `json:"social_influence"`      // 0–1
	DivineCuriosity      float64   `json:"divine_curiosity"`      // 0–1
}

// State holds the six mutable emotional scalars. Every mutation goes
// through ApplyDelta so the bounds invariants hold at all times.
type State struct {
	Mood        float64 `json:"mood"`         // -1–1
	Stress      float64 `json:"stress"`       // 0–1
	Hope        float64 `json:"hope"`         // 0–1
	TrustPeers  float64 `json:"trust_peers"`  // 0–1
	TrustDivine float64 `json:"trust_divine"` // -1–1
	Dissonance  float64 `json:"dissonance"`   // 0–1
}

// Consent holds the three thresholds the guardrail gate checks privileged
// actions against. Breaching any of them is always non-silent.
type Consent struct {
	Emotional           float64 `json:"emotional"`            // 0–1
	RelationalPacing    float64 `json:"relational_pacing"`    // 0–1
	AuthorityResistance float64 `json:"authority_resistance"` // 0–1
}

// Citizen is a simulated person: identity, fixed attributes, mutable
// state, beliefs, and memories. Created at population genesis, destroyed
// only with the owning world.
type Citizen struct {
	ID      uuid.UUID `json:"id"`
	WorldID uuid.UUID `json:"world_id"`
	Name    string    `json:"name"`

	Attributes Attributes `json:"attributes"`
	State      State      `json:"state"`
	Consent    Consent    `json:"consent"`

	Beliefs  []Belief `json:"beliefs"`
	Memories []Memory `json:"memories,omitempty"`

	BornTick uint64 `json:"born_tick"`
}

// Belief topics the engines treat specially.
const (
	TopicDivineExistence   = "divine_existence"
	TopicDivineBenevolence = "divine_benevolence"
	TopicFreeWill          = "free_will"
)

// BeliefByTopic returns a pointer to the citizen's belief on a topic, or
// nil if they hold none.
func (c *Citizen) BeliefByTopic(topic string) *Belief {
	for i := range c.Beliefs {
		if c.Beliefs[i].Topic == topic {
			return &c.Beliefs[i]
		}
	}
	return nil
}

// StateDelta is a signed change to a citizen's state, clamped on apply.
type StateDelta struct {
	Mood        float64 `json:"mood,omitempty"`
	Stress      float64 `json:"stress,omitempty"`
	Hope        float64 `json:"hope,omitempty"`
	TrustPeers  float64 `json:"trust_peers,omitempty"`
	TrustDivine float64 `json:"trust_divine,omitempty"`
	Dissonance  float64 `json:"dissonance,omitempty"`
}

// Add merges another delta into this one.
func (d *StateDelta) Add(o StateDelta) {
	d.Mood += o.Mood
	d.Stress += o.Stress
	d.Hope += o.Hope
	d.TrustPeers += o.TrustPeers
	d.TrustDivine += o.TrustDivine
	d.Dissonance += o.Dissonance
}

// IsZero reports whether the delta changes nothing.
func (d StateDelta) IsZero() bool {
	return d == StateDelta{}
}

// ApplyDelta mutates the state by the delta, clamping every scalar back
// into its declared domain.
func (s *State) ApplyDelta(d StateDelta) {
	s.Mood = Clamp(s.Mood+d.Mood, -1, 1)
	s.Stress = Clamp01(s.Stress + d.Stress)
	s.Hope = Clamp01(s.Hope + d.Hope)
	s.TrustPeers = Clamp01(s.TrustPeers + d.TrustPeers)
	s.TrustDivine = Clamp(s.TrustDivine+d.TrustDivine, -1, 1)
	s.Dissonance = Clamp01(s.Dissonance + d.Dissonance)
}

// Clamped returns a copy of the state with every scalar forced into its
// domain. Used after loading from external storage.
func (s State) Clamped() State {
	out := s
	out.ApplyDelta(StateDelta{})
	return out
}

// Clamp bounds v into [lo, hi].
func Clamp[T constraints.Float](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 bounds v into [0, 1].
func Clamp01[T constraints.Float](v T) T {
	return Clamp(v, 0, 1)
}
