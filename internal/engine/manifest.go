// Manifestation engine — a public divine intervention aimed at a cohort.
// The cooldown and the guardrail gate are checked before anything else;
// a rejected manifestation leaves the world untouched. Reactions are
// computed per citizen in parallel and applied serially afterward.
package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/talgya/demiurge/internal/citizen"
	"github.com/talgya/demiurge/internal/entropy"
	"github.com/talgya/demiurge/internal/guardrail"
	"github.com/talgya/demiurge/internal/narrative"
	"github.com/talgya/demiurge/internal/society"
	"github.com/talgya/demiurge/internal/tuning"
)

// ManifestInput describes the public action: what the divine shows, how
// loudly, and to whom.
type ManifestInput struct {
	Kind      string
	Content   string
	Intensity society.ManifestIntensity
	Audience  society.TargetAudience
}

// ManifestResult carries the record plus everything the caller must
// persist. A rejected manifestation has Success false and a Reason.
type ManifestResult struct {
	Success bool   `json:"success"`
	Blocked bool   `json:"blocked"`
	Reason  string `json:"reason,omitempty"`

	Manifestation *society.Manifestation `json:"manifestation,omitempty"`
	Witnesses     int                    `json:"witnesses"`
}

// ManifestParams carries caller-supplied context for a manifestation.
type ManifestParams struct {
	Gate *guardrail.Gate
	Rnd  entropy.Source
	Tick uint64
}

// ExecuteManifest runs a public manifestation against the world. Witness
// citizens are mutated in place; the world's instability, trend, and
// cooldown bookkeeping are updated. The error return is reserved for
// context cancellation.
func ExecuteManifest(ctx context.Context, in ManifestInput, world *society.World, citizens []*citizen.Citizen, p ManifestParams) (ManifestResult, error) {
	if world == nil {
		return ManifestResult{}, fmt.Errorf("execute manifest: world is required")
	}
	if p.Gate == nil {
		return ManifestResult{}, fmt.Errorf("execute manifest: guardrail gate is required")
	}

	if world.OnCooldown(p.Tick, tuning.ManifestCooldownTicks) {
		remaining := world.LastManifestTick + tuning.ManifestCooldownTicks - p.Tick
		return ManifestResult{
			Blocked: true,
			Reason:  fmt.Sprintf("manifestation on cooldown for %d more ticks", remaining),
		}, nil
	}

	gateRes, err := p.Gate.CheckContent(ctx, in.Content, guardrail.SourceDivine, guardrail.Context{
		WorldID: world.ID,
		Tick:    p.Tick,
		Mode:    "manifest",
	})
	if err != nil {
		return ManifestResult{}, err
	}
	if !gateRes.Passed {
		return ManifestResult{Blocked: true, Reason: gateRes.Reason}, nil
	}

	witnesses := selectAudience(citizens, in.Audience)

	reactions := make([]society.CitizenReaction, len(witnesses))
	g, gctx := errgroup.WithContext(ctx)
	for i, w := range witnesses {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			reactions[i] = computeReaction(w, in.Intensity, p.Rnd)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ManifestResult{}, err
	}

	// Write phase: apply each reaction to its citizen.
	for i, w := range witnesses {
		r := reactions[i]
		w.State.ApplyDelta(r.Delta)
		citizen.ProcessDivineImpact(w, reactionValence(r.Reaction), intensityImpact(in.Intensity), p.Tick)
		if b := w.BeliefByTopic(citizen.TopicDivineBenevolence); b != nil && r.BeliefShift != 0 {
			b.Stance = citizen.Clamp(b.Stance+r.BeliefShift, -1, 1)
		}
		citizen.Record(w, citizen.NewMemory(citizen.MemoryDivine,
			narrative.ManifestMemory(in.Kind, in.Intensity, r.Reaction, p.Rnd),
			reactionValence(r.Reaction), 0.8, p.Tick))
	}

	before := world.Instability
	world.Instability = citizen.Clamp01(before + intensityImpact(in.Intensity))
	world.InstabilityTrend = classifyTrend(before, world.Instability)
	world.ManifestCount++
	world.LastManifestTick = p.Tick

	return ManifestResult{
		Success:   true,
		Witnesses: len(witnesses),
		Manifestation: &society.Manifestation{
			ID:                uuid.New(),
			WorldID:           world.ID,
			Kind:              in.Kind,
			Intensity:         in.Intensity,
			Content:           in.Content,
			Audience:          in.Audience,
			Reactions:         reactions,
			DominantReaction:  dominantReaction(reactions),
			InstabilityBefore: before,
			InstabilityAfter:  world.Instability,
			Tick:              p.Tick,
		},
	}, nil
}

// selectAudience filters the population down to the targeted cohort.
func selectAudience(citizens []*citizen.Citizen, audience society.TargetAudience) []*citizen.Citizen {
	if audience == society.AudienceAll {
		return citizens
	}
	var out []*citizen.Citizen
	for _, c := range citizens {
		switch audience {
		case society.AudienceBelievers:
			if c.State.TrustDivine > 0.5 {
				out = append(out, c)
			}
		case society.AudienceSkeptics:
			if c.State.TrustDivine < 0.3 {
				out = append(out, c)
			}
		case society.AudienceSuffering:
			if c.State.Stress > 0.6 || c.State.Mood < -0.3 {
				out = append(out, c)
			}
		}
	}
	return out
}

// computeReaction decides how one citizen reacts and with what force.
// Pure with respect to the citizen; mutation happens in the write phase.
func computeReaction(c *citizen.Citizen, intensity society.ManifestIntensity, rnd entropy.Source) society.CitizenReaction {
	reaction := decideReaction(c, intensity, rnd)

	force := citizen.Clamp01(reactionBase(intensity) +
		c.Attributes.EmotionalSensitivity*tuning.ReactionSensitivityWeight +
		c.State.Stress*tuning.ReactionStressWeight)

	delta, shift := reactionEffect(reaction, force)
	return society.CitizenReaction{
		CitizenID:   c.ID,
		Reaction:    reaction,
		Intensity:   force,
		Delta:       delta,
		BeliefShift: shift,
	}
}

// decideReaction walks the reaction tree: despair first, then divine
// trust bands refined by skepticism and intensity, with a random tiebreak
// inside a band.
func decideReaction(c *citizen.Citizen, intensity society.ManifestIntensity, rnd entropy.Source) society.Reaction {
	st := c.State
	overwhelming := intensity == society.IntensityOverwhelming
	loud := overwhelming || intensity == society.IntensityUndeniable

	if st.Mood < -0.5 && st.Hope < 0.3 && overwhelming {
		return society.ReactDespair
	}

	skepticism := c.Skepticism()

	switch {
	case st.TrustDivine > 0.5:
		if loud && (c.Attributes.EmotionalSensitivity > 0.7 || rnd.Float() < 0.3) {
			return society.ReactEcstasy
		}
		if rnd.Float() < 0.6 {
			return society.ReactWorship
		}
		return society.ReactAwe

	case st.TrustDivine > -0.2:
		if skepticism > 0.7 && !loud {
			return society.ReactSkepticism
		}
		if st.Stress > 0.6 || (loud && rnd.Float() < 0.4) {
			return society.ReactFear
		}
		return society.ReactAwe

	default:
		if loud {
			// Too blatant to wave away. Hostility or dread.
			if c.Attributes.AuthorityTrust < 0.4 || c.Attributes.Archetype == citizen.ArchRebel {
				return society.ReactAnger
			}
			return society.ReactFear
		}
		if skepticism > 0.6 {
			if rnd.Float() < 0.5 {
				return society.ReactDenial
			}
			return society.ReactSkepticism
		}
		return society.ReactFear
	}
}

// reactionEffect returns the state delta and belief shift for one
// reaction, scaled by the reaction's force. Belief mirrors trust for
// most reactions; anger dents trust harder than conviction.
func reactionEffect(r society.Reaction, force float64) (citizen.StateDelta, float64) {
	var trust, belief, mood, stress, hope float64
	switch r {
	case society.ReactEcstasy:
		trust, belief, mood, hope = 0.4, 0.4, 0.4, 0.2
	case society.ReactWorship:
		trust, belief, mood, hope = 0.3, 0.3, 0.3, 0.1
	case society.ReactAwe:
		trust, belief, mood = 0.2, 0.2, 0.2
	case society.ReactFear:
		trust, belief, mood, stress = 0.1, 0.1, -0.1, 0.2
	case society.ReactDenial:
		trust, belief, mood = -0.1, -0.1, -0.2
	case society.ReactSkepticism:
		trust, belief, mood = -0.05, -0.05, -0.1
	case society.ReactAnger:
		trust, belief, mood, stress = -0.3, -0.2, -0.3, 0.1
	case society.ReactDespair:
		trust, belief, mood, stress, hope = 0.1, 0.1, -0.2, 0.2, -0.2
	}
	return citizen.StateDelta{
		TrustDivine: trust * force,
		Mood:        mood * force,
		Stress:      stress * force,
		Hope:        hope * force,
	}, belief * force
}

// reactionValence is the emotional sign a reaction stamps on memory and
// benevolence belief.
func reactionValence(r society.Reaction) float64 {
	switch r {
	case society.ReactEcstasy:
		return 0.9
	case society.ReactWorship:
		return 0.7
	case society.ReactAwe:
		return 0.5
	case society.ReactFear:
		return -0.4
	case society.ReactDenial:
		return -0.2
	case society.ReactSkepticism:
		return -0.1
	case society.ReactAnger:
		return -0.7
	case society.ReactDespair:
		return -0.8
	default:
		return 0
	}
}

func intensityImpact(i society.ManifestIntensity) float64 {
	switch i {
	case society.IntensitySubtle:
		return tuning.ImpactSubtle
	case society.IntensityNotable:
		return tuning.ImpactNotable
	case society.IntensityUndeniable:
		return tuning.ImpactUndeniable
	case society.IntensityOverwhelming:
		return tuning.ImpactOverwhelming
	default:
		return tuning.ImpactSubtle
	}
}

func reactionBase(i society.ManifestIntensity) float64 {
	switch i {
	case society.IntensitySubtle:
		return tuning.ReactionBaseSubtle
	case society.IntensityNotable:
		return tuning.ReactionBaseNotable
	case society.IntensityUndeniable:
		return tuning.ReactionBaseUndeniable
	case society.IntensityOverwhelming:
		return tuning.ReactionBaseOverwhelming
	default:
		return tuning.ReactionBaseSubtle
	}
}

// dominantReaction is the most common reaction; ties go to the reaction
// seen first in the slice.
func dominantReaction(reactions []society.CitizenReaction) society.Reaction {
	if len(reactions) == 0 {
		return ""
	}
	counts := make(map[society.Reaction]int, 8)
	var best society.Reaction
	bestN := 0
	for _, r := range reactions {
		counts[r.Reaction]++
		if counts[r.Reaction] > bestN {
			best, bestN = r.Reaction, counts[r.Reaction]
		}
	}
	return best
}

// classifyTrend maps an instability move to its trend class.
func classifyTrend(before, after float64) society.InstabilityTrend {
	switch {
	case after >= tuning.InstabilityCritical:
		return society.TrendCritical
	case after-before > tuning.InstabilityTrendGap:
		return society.TrendRising
	case before-after > tuning.InstabilityTrendGap:
		return society.TrendFalling
	default:
		return society.TrendStable
	}
}
