// Package tuning collects every behavioral constant of the simulation in
// one place. The values were carried over from live-world tuning and are
// not derived from first principles — change them only with playtest data.
package tuning

// Belief update.
const (
	// StanceStep scales how far a stance moves toward new evidence.
	StanceStep = 0.2

	// StressDampening reduces belief movement under stress.
	StressDampening = 0.3

	// ConfidenceGain is the confidence rise when evidence agrees in sign.
	ConfidenceGain = 0.1

	// ConfidenceLoss is the confidence drop when evidence disagrees.
	// Disagreement erodes conviction faster than agreement builds it.
	ConfidenceLoss = 0.15

	// DissonanceScale converts evidence-stance distance into dissonance.
	DissonanceScale = 0.1

	// DivineExistenceStep is the stance/confidence bump any divine contact
	// gives the divine-existence belief, regardless of valence.
	DivineExistenceStep = 0.15

	// FreeWillErosion is the stance loss on the free-will belief when
	// divine contact intensity exceeds FreeWillErosionFloor.
	FreeWillErosion      = 0.05
	FreeWillErosionFloor = 0.8
)

// Relationship formation and evolution.
const (
	CompatibilityBase     = 0.5
	SameArchetypeBonus    = 0.2
	ComplementBonus       = 0.15
	SocialPotentialWeight = 0.2
	PeerTrustGapPenalty   = 0.2
	DivineTrustGapPenalty = 0.15
	StressPenalty         = 0.15

	FormationThreshold       = 0.4
	DivineFormationThreshold = 0.2 // a divine nudge lowers the bar

	FriendBand       = 0.7
	AcquaintanceBand = 0.5
	RivalBand        = 0.3

	BetrayalTrustDelta = -0.4

	EnemyTrustFloor     = -0.5
	FriendPromoteTrust  = 0.7
	FriendDemoteTrust   = 0.2
	BrokenStrengthFloor = 0.1

	CohesionTrustWeight    = 0.3
	CohesionStrengthWeight = 0.3
	CohesionDensityWeight  = 0.4
)

// Cultural emergence.
const (
	ClusterStanceGate   = 0.3  // |stance| needed to count toward a cluster
	ClusterMinSize      = 3
	MovementPopFraction = 0.10 // cluster must also reach this share of population
	MovementStanceGate  = 0.5  // |mean stance| required to found a movement
	MovementMaxLeaders  = 3
	FollowersPerLeader  = 10

	TrendDecay     = 0.9
	TrendDropFloor = 0.1
	TrendSpawnFrac = 0.10
)

// Movement stage transitions, as follower fraction of total population.
const (
	NascentGrowFrac      = 0.15
	NascentGrowInfluence = 0.1

	GrowingMainstreamFrac      = 0.35
	GrowingMainstreamInfluence = 0.25
	GrowingDeclineFrac         = 0.10

	MainstreamDominantFrac      = 0.6
	MainstreamDominantInfluence = 0.5
	MainstreamDeclineFrac       = 0.25

	DominantDeclineFrac = 0.4

	DecliningRecoverFrac      = 0.20
	DecliningRecoverInfluence = 0.15
	DecliningUndergroundFrac  = 0.05

	UndergroundRecoverFrac      = 0.10
	UndergroundRecoverInfluence = 0.1

	ExtinctionFollowerFloor = 2
)

// Collective events.
const (
	// SensitivityBase and SensitivitySpan scale per-citizen event deltas:
	// effective = base + sensitivity*span.
	SensitivityBase = 0.7
	SensitivitySpan = 0.6
)

// Whisper reception.
const (
	ReceptionAccepted       = 0.7
	ReceptionQuestioned     = 0.5
	ReceptionIgnored        = 0.3
	ReceptionMisinterpreted = 0.15

	// SharedReceptivityGate and SharedInfluenceGate decide when an accepted
	// whisper is retold to peers instead of kept private.
	SharedReceptivityGate = 0.75
	SharedInfluenceGate   = 0.6

	SensitivityWeight   = 0.2
	CuriosityWeight     = 0.15
	ToneMatchWeight     = 0.2
	HistoryWeight       = 0.1
	ReinforcementWeight = 0.15
	CognitiveLoadWeight = 0.2
)

// Manifestation.
const (
	ManifestCooldownTicks = 10

	InstabilityCritical = 0.8
	InstabilityTrendGap = 0.05

	// Instability cost per manifestation, by intensity.
	ImpactSubtle       = 0.05
	ImpactNotable      = 0.15
	ImpactUndeniable   = 0.3
	ImpactOverwhelming = 0.5

	// Base reaction strength per intensity; sensitivity and stress are
	// added on top before clamping.
	ReactionBaseSubtle       = 0.3
	ReactionBaseNotable      = 0.5
	ReactionBaseUndeniable   = 0.7
	ReactionBaseOverwhelming = 0.9

	ReactionSensitivityWeight = 0.2
	ReactionStressWeight      = 0.1
)

// Consent.
const (
	// ConsentPressureStress weights stress into emotional pressure.
	ConsentPressureStress = 0.5

	// PacingWindowTicks is the lookback for whisper-frequency pacing.
	PacingWindowTicks = 20

	// PacingBudget scales the relational threshold into a whisper budget
	// for the pacing window.
	PacingBudget = 10.0
)

// Memory.
const (
	MaxMemories          = 50
	ShortTermDecayRate   = 0.01 // importance lost per tick
	LongTermDecayRate    = 0.001
	DivineMemoryDecay    = 0.0 // divine memories never fade
)
