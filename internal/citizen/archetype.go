// Archetype profiles — per-archetype attribute ranges, baseline stances,
// and the skepticism each archetype brings to privileged contact.
package citizen

// Profile defines the genesis ranges and dispositions of an archetype.
type Profile struct {
	// Attribute ranges sampled at genesis, [lo, hi].
	Sensitivity [2]float64
	Authority   [2]float64
	Influence   [2]float64
	Curiosity   [2]float64

	// DivineStance seeds the innate divine-existence belief, [lo, hi].
	DivineStance [2]float64

	// Skepticism biases manifestation reactions. Archetypes with no fixed
	// disposition fall back to inverse curiosity instead.
	Skepticism    float64
	HasSkepticism bool
}

var profiles = map[Archetype]Profile{
	ArchSkeptic: {
		Sensitivity:   [2]float64{0.2, 0.6},
		Authority:     [2]float64{0.1, 0.4},
		Influence:     [2]float64{0.3, 0.7},
		Curiosity:     [2]float64{0.2, 0.5},
		DivineStance:  [2]float64{-0.7, -0.2},
		Skepticism:    0.9,
		HasSkepticism: true,
	},
	ArchBeliever: {
		Sensitivity:   [2]float64{0.4, 0.9},
		Authority:     [2]float64{0.5, 0.9},
		Influence:     [2]float64{0.3, 0.7},
		Curiosity:     [2]float64{0.5, 0.9},
		DivineStance:  [2]float64{0.3, 0.8},
		Skepticism:    0.1,
		HasSkepticism: true,
	},
	ArchPragmatist: {
		Sensitivity:  [2]float64{0.2, 0.5},
		Authority:    [2]float64{0.3, 0.7},
		Influence:    [2]float64{0.3, 0.7},
		Curiosity:    [2]float64{0.2, 0.6},
		DivineStance: [2]float64{-0.2, 0.2},
	},
	ArchIdealist: {
		Sensitivity:  [2]float64{0.5, 0.9},
		Authority:    [2]float64{0.3, 0.6},
		Influence:    [2]float64{0.4, 0.8},
		Curiosity:    [2]float64{0.4, 0.8},
		DivineStance: [2]float64{0.0, 0.5},
	},
	ArchRebel: {
		Sensitivity:   [2]float64{0.3, 0.7},
		Authority:     [2]float64{0.0, 0.2},
		Influence:     [2]float64{0.4, 0.8},
		Curiosity:     [2]float64{0.3, 0.7},
		DivineStance:  [2]float64{-0.5, 0.1},
		Skepticism:    0.55,
		HasSkepticism: true,
	},
	ArchConformist: {
		Sensitivity:  [2]float64{0.3, 0.7},
		Authority:    [2]float64{0.6, 0.9},
		Influence:    [2]float64{0.2, 0.5},
		Curiosity:    [2]float64{0.2, 0.6},
		DivineStance: [2]float64{-0.1, 0.4},
	},
	ArchSeeker: {
		Sensitivity:  [2]float64{0.4, 0.8},
		Authority:    [2]float64{0.3, 0.6},
		Influence:    [2]float64{0.3, 0.6},
		Curiosity:    [2]float64{0.7, 1.0},
		DivineStance: [2]float64{0.0, 0.4},
	},
	ArchCynic: {
		Sensitivity:   [2]float64{0.2, 0.5},
		Authority:     [2]float64{0.1, 0.4},
		Influence:     [2]float64{0.2, 0.6},
		Curiosity:     [2]float64{0.1, 0.4},
		DivineStance:  [2]float64{-0.8, -0.3},
		Skepticism:    0.8,
		HasSkepticism: true,
	},
}

// ProfileFor returns the genesis profile for an archetype. Unknown
// archetypes get the pragmatist profile.
func ProfileFor(a Archetype) Profile {
	if p, ok := profiles[a]; ok {
		return p
	}
	return profiles[ArchPragmatist]
}

// Skepticism returns how reflexively doubting a citizen is: the archetype's
// fixed disposition when it has one, otherwise inverse divine curiosity.
func (c *Citizen) Skepticism() float64 {
	p := ProfileFor(c.Attributes.Archetype)
	if p.HasSkepticism {
		return p.Skepticism
	}
	return Clamp01(1 - c.Attributes.DivineCuriosity)
}

// complementaryArchetypes is the fixed pair table that earns a
// compatibility bonus; opposite temperaments that balance each other.
var complementaryArchetypes = map[Archetype]Archetype{
	ArchSkeptic:    ArchSeeker,
	ArchSeeker:     ArchSkeptic,
	ArchBeliever:   ArchPragmatist,
	ArchPragmatist: ArchBeliever,
	ArchIdealist:   ArchCynic,
	ArchCynic:      ArchIdealist,
	ArchRebel:      ArchConformist,
	ArchConformist: ArchRebel,
}

// Complementary reports whether two archetypes form a complementary pair.
func Complementary(a, b Archetype) bool {
	return complementaryArchetypes[a] == b
}
