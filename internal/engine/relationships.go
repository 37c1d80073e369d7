// Relationship engine — pairwise compatibility, bond formation and
// evolution, and the population-level cohesion and influence metrics.
// Pure functions: state in, state/delta out; callers persist.
package engine

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/talgya/demiurge/internal/citizen"
	"github.com/talgya/demiurge/internal/entropy"
	"github.com/talgya/demiurge/internal/society"
	"github.com/talgya/demiurge/internal/tuning"
)

// CalculateCompatibility scores how well two citizens would get along,
// in [0, 1]. Same temperament or a complementary pairing helps; distance
// in trust and ambient stress hurt.
func CalculateCompatibility(a, b *citizen.Citizen) float64 {
	score := tuning.CompatibilityBase

	if a.Attributes.Archetype == b.Attributes.Archetype {
		score += tuning.SameArchetypeBonus
	} else if citizen.Complementary(a.Attributes.Archetype, b.Attributes.Archetype) {
		score += tuning.ComplementBonus
	}

	avgInfluence := (a.Attributes.SocialInfluence + b.Attributes.SocialInfluence) / 2
	score += avgInfluence * tuning.SocialPotentialWeight

	score -= math.Abs(a.State.TrustPeers-b.State.TrustPeers) * tuning.PeerTrustGapPenalty
	score -= math.Abs(a.State.TrustDivine-b.State.TrustDivine) * tuning.DivineTrustGapPenalty

	avgStress := (a.State.Stress + b.State.Stress) / 2
	score -= avgStress * tuning.StressPenalty

	return citizen.Clamp01(score)
}

// FormationContext tells the engine why a relationship is being attempted.
type FormationContext struct {
	// DivineNudge lowers the formation threshold: bonds the divine pushes
	// for form more easily than organic ones.
	DivineNudge bool
}

// FormRelationship attempts to form a bond between two citizens. Returns
// the new relationship and true, or a zero value and false when the pair
// is not compatible enough. Not forming is an expected outcome, not an
// error.
func FormRelationship(a, b *citizen.Citizen, fctx FormationContext, tick uint64) (society.Relationship, bool) {
	compat := CalculateCompatibility(a, b)

	threshold := tuning.FormationThreshold
	if fctx.DivineNudge {
		threshold = tuning.DivineFormationThreshold
	}
	if compat <= threshold {
		return society.Relationship{}, false
	}

	var relType society.RelationshipType
	switch {
	case compat > tuning.FriendBand:
		relType = society.RelFriend
	case compat > tuning.AcquaintanceBand:
		relType = society.RelAcquaintance
	case compat < tuning.RivalBand:
		relType = society.RelRival
	default:
		relType = society.RelAcquaintance
	}

	return society.Relationship{
		CitizenID:       a.ID,
		TargetID:        b.ID,
		Type:            relType,
		Strength:        citizen.Clamp01(compat * 0.5),
		Trust:           citizen.Clamp(compat*0.3, -1, 1),
		FormedTick:      tick,
		LastInteraction: tick,
	}, true
}

// InteractionOutcome classifies one interaction between bonded citizens.
type InteractionOutcome string

const (
	OutcomePositive InteractionOutcome = "positive"
	OutcomeNegative InteractionOutcome = "negative"
	OutcomeNeutral  InteractionOutcome = "neutral"
)

// CauseBetrayal forces the trust delta regardless of outcome.
const CauseBetrayal = "betrayal"

// UpdateRelationship evolves a bond after an interaction. Returns the
// updated relationship and whether the bond is now broken — the caller
// must delete broken relationships.
func UpdateRelationship(rel society.Relationship, outcome InteractionOutcome, cause string, rnd entropy.Source, tick uint64) (society.Relationship, bool) {
	var strengthDelta, trustDelta float64
	switch outcome {
	case OutcomePositive:
		strengthDelta = rnd.Range(0.05, 0.15)
		trustDelta = rnd.Range(0.05, 0.15)
	case OutcomeNegative:
		strengthDelta = -rnd.Range(0.05, 0.15)
		trustDelta = -rnd.Range(0.1, 0.2)
	default:
		strengthDelta = rnd.Range(-0.02, 0.02)
		trustDelta = rnd.Range(-0.02, 0.02)
	}

	if cause == CauseBetrayal {
		trustDelta = tuning.BetrayalTrustDelta
	}

	rel.Strength = citizen.Clamp01(rel.Strength + strengthDelta)
	rel.Trust = citizen.Clamp(rel.Trust+trustDelta, -1, 1)
	rel.LastInteraction = tick
	rel.Type = transitionType(rel.Type, rel.Trust)

	return rel, rel.Strength < tuning.BrokenStrengthFloor
}

// transitionType moves a bond between type bands as trust crosses them.
func transitionType(t society.RelationshipType, trust float64) society.RelationshipType {
	switch {
	case trust < tuning.EnemyTrustFloor:
		return society.RelEnemy
	case t == society.RelAcquaintance && trust > tuning.FriendPromoteTrust:
		return society.RelFriend
	case t == society.RelFriend && trust < tuning.FriendDemoteTrust:
		return society.RelAcquaintance
	default:
		return t
	}
}

// CalculateSocialCohesion blends mean normalized trust, mean strength,
// and edge density relative to the complete directed graph. An empty
// population is perfectly cohesive by convention.
func CalculateSocialCohesion(citizens []*citizen.Citizen, rels []society.Relationship) float64 {
	n := len(citizens)
	if n == 0 {
		return 1
	}

	var trustSum, strengthSum float64
	for _, r := range rels {
		trustSum += (r.Trust + 1) / 2
		strengthSum += r.Strength
	}

	var meanTrust, meanStrength float64
	if len(rels) > 0 {
		meanTrust = trustSum / float64(len(rels))
		meanStrength = strengthSum / float64(len(rels))
	}

	density := 1.0
	if n > 1 {
		density = citizen.Clamp01(float64(len(rels)) / float64(n*(n-1)))
	}

	return citizen.Clamp01(meanTrust*tuning.CohesionTrustWeight +
		meanStrength*tuning.CohesionStrengthWeight +
		density*tuning.CohesionDensityWeight)
}

// RankedCitizen pairs a citizen with their influence score.
type RankedCitizen struct {
	Citizen *citizen.Citizen
	Score   float64
}

// FindInfluentialCitizens ranks citizens by social-influence potential
// plus how many bonds they hold and how strong those bonds are, and
// returns the top n.
func FindInfluentialCitizens(citizens []*citizen.Citizen, rels []society.Relationship, n int) []RankedCitizen {
	counts := make(map[uuid.UUID]int)
	strengths := make(map[uuid.UUID]float64)
	for _, r := range rels {
		counts[r.CitizenID]++
		strengths[r.CitizenID] += r.Strength
	}

	ranked := make([]RankedCitizen, 0, len(citizens))
	for _, c := range citizens {
		score := c.Attributes.SocialInfluence +
			float64(counts[c.ID])*0.05 +
			strengths[c.ID]*0.1
		ranked = append(ranked, RankedCitizen{Citizen: c, Score: score})
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })

	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}

// FindIsolatedCitizens returns citizens with at most maxConnections bonds.
func FindIsolatedCitizens(citizens []*citizen.Citizen, rels []society.Relationship, maxConnections int) []*citizen.Citizen {
	counts := make(map[uuid.UUID]int)
	for _, r := range rels {
		counts[r.CitizenID]++
	}

	var out []*citizen.Citizen
	for _, c := range citizens {
		if counts[c.ID] <= maxConnections {
			out = append(out, c)
		}
	}
	return out
}
