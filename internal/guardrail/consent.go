// Consent checks — every action aimed at a specific citizen is measured
// against that citizen's three consent thresholds. A breach never fails
// silently: it attaches consequences whose state deltas apply regardless
// of whether the underlying content passed the gate.
package guardrail

import (
	"github.com/talgya/demiurge/internal/citizen"
	"github.com/talgya/demiurge/internal/society"
	"github.com/talgya/demiurge/internal/tuning"
)

// ThresholdType names which consent threshold was breached.
type ThresholdType string

const (
	ThresholdEmotional  ThresholdType = "emotional"
	ThresholdRelational ThresholdType = "relational"
	ThresholdAuthority  ThresholdType = "authority"
)

// ConsequenceKind names a consent-breach consequence.
type ConsequenceKind string

const (
	ConsequenceTrustCollapse    ConsequenceKind = "trust_collapse"
	ConsequenceFearResponse     ConsequenceKind = "fear_response"
	ConsequenceCulturalBacklash ConsequenceKind = "cultural_backlash"
	ConsequenceReputationDamage ConsequenceKind = "reputation_damage"
)

// Consequence pairs a breach consequence with its fixed state delta.
type Consequence struct {
	Kind  ConsequenceKind    `json:"kind"`
	Delta citizen.StateDelta `json:"delta"`
}

// consequenceDeltas are fixed; breaches always cost the same.
var consequenceDeltas = map[ConsequenceKind]citizen.StateDelta{
	ConsequenceTrustCollapse:    {TrustDivine: -0.25},
	ConsequenceFearResponse:     {Stress: 0.2, Mood: -0.1},
	ConsequenceCulturalBacklash: {TrustDivine: -0.05, Hope: -0.05},
	ConsequenceReputationDamage: {TrustDivine: -0.1, TrustPeers: -0.05},
}

// ConsentAction describes a privileged action aimed at one citizen.
type ConsentAction struct {
	Intensity float64             // 0–1
	Tone      society.WhisperTone // zero value when the action has no tone
	Tick      uint64

	// RecentWhispers is how many whispers this citizen received in the
	// pacing window ending at Tick. Supplied by the caller from records.
	RecentWhispers int
}

// ConsentResult reports whether a threshold was breached and which
// consequences attach. Violated=false means an empty consequence list.
type ConsentResult struct {
	Violated     bool          `json:"violated"`
	Threshold    ThresholdType `json:"threshold,omitempty"`
	Consequences []Consequence `json:"consequences,omitempty"`
}

// CheckConsent compares an action against a citizen's consent thresholds.
// Checks run in fixed order: emotional, relational, authority; the first
// breach wins.
func CheckConsent(c *citizen.Citizen, action ConsentAction) ConsentResult {
	intensity := citizen.Clamp01(action.Intensity)

	// Emotional: stress amplifies how much pressure an action exerts.
	pressure := intensity * (1 + c.State.Stress*tuning.ConsentPressureStress)
	if pressure > c.Consent.Emotional {
		return breach(ThresholdEmotional,
			ConsequenceTrustCollapse, ConsequenceFearResponse)
	}

	// Relational: whisper frequency against the pacing limit. The limit
	// scales into a whisper budget for the pacing window.
	budget := c.Consent.RelationalPacing * tuning.PacingBudget
	if float64(action.RecentWhispers) > budget {
		return breach(ThresholdRelational,
			ConsequenceReputationDamage, ConsequenceCulturalBacklash)
	}

	// Authority: commanding contact presses harder on citizens who do not
	// defer, and resistance rises with how little authority trust covers.
	if action.Tone == society.ToneCommanding {
		resistancePressure := intensity * (1 - c.Attributes.AuthorityTrust)
		if resistancePressure > c.Consent.AuthorityResistance {
			return breach(ThresholdAuthority,
				ConsequenceFearResponse, ConsequenceCulturalBacklash)
		}
	}

	return ConsentResult{}
}

func breach(t ThresholdType, kinds ...ConsequenceKind) ConsentResult {
	res := ConsentResult{Violated: true, Threshold: t}
	for _, k := range kinds {
		res.Consequences = append(res.Consequences, Consequence{
			Kind:  k,
			Delta: consequenceDeltas[k],
		})
	}
	return res
}

// ApplyConsequences applies every consequence delta to the citizen's
// state. Deltas are fixed and always applied on breach, whatever the
// content decision was.
func ApplyConsequences(c *citizen.Citizen, res ConsentResult) {
	for _, q := range res.Consequences {
		c.State.ApplyDelta(q.Delta)
	}
}
