// Population genesis — creates a world's citizens with archetypes,
// attributes, consent thresholds, innate beliefs, and an opensimplex
// temperament field so neighboring citizens share an emotional climate
// instead of being i.i.d. noise.
package citizen

import (
	"math/rand"

	"github.com/google/uuid"
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Spawner creates citizens for a world. Deterministic for a given seed.
type Spawner struct {
	rng   *rand.Rand
	mood  opensimplex.Noise
	humor opensimplex.Noise
}

// NewSpawner creates a citizen spawner with the given seed.
func NewSpawner(seed int64) *Spawner {
	return &Spawner{
		rng:   rand.New(rand.NewSource(seed + 300)),
		mood:  opensimplex.New(seed),
		humor: opensimplex.New(seed + 1),
	}
}

// SpawnPopulation creates a batch of citizens for a world at genesis.
func (s *Spawner) SpawnPopulation(worldID uuid.UUID, count int, tick uint64) []*Citizen {
	out := make([]*Citizen, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, s.spawnOne(worldID, i, tick))
	}
	return out
}

func (s *Spawner) spawnOne(worldID uuid.UUID, idx int, tick uint64) *Citizen {
	arch := s.weightedArchetype()
	p := ProfileFor(arch)

	attrs := Attributes{
		Archetype:            arch,
		EmotionalSensitivity: s.inRange(p.Sensitivity),
		AuthorityTrust:       s.inRange(p.Authority),
		SocialInfluence:      s.inRange(p.Influence),
		DivineCuriosity:      s.inRange(p.Curiosity),
	}

	// Sample the temperament field at the citizen's index. Eval2 returns
	// roughly [-1, 1]; adjacent indices vary smoothly, so genesis cohorts
	// come out with local emotional weather rather than white noise.
	fieldX := float64(idx) * 0.13
	moodField := s.mood.Eval2(fieldX, 0.5)
	humorField := s.humor.Eval2(fieldX, 1.5)

	divineStance := s.inRange(p.DivineStance)

	c := &Citizen{
		ID:         uuid.New(),
		WorldID:    worldID,
		Name:       s.generateName(),
		Attributes: attrs,
		State: State{
			Mood:        Clamp(moodField*0.4+s.rng.Float64()*0.2-0.1, -1, 1),
			Stress:      Clamp01(0.2 + humorField*0.15 + s.rng.Float64()*0.1),
			Hope:        Clamp01(0.5 + moodField*0.2 + s.rng.Float64()*0.2),
			TrustPeers:  Clamp01(0.4 + s.rng.Float64()*0.3),
			TrustDivine: Clamp(divineStance*0.5, -1, 1),
			Dissonance:  Clamp01(s.rng.Float64() * 0.1),
		},
		Consent: Consent{
			Emotional:           0.4 + s.rng.Float64()*0.4,
			RelationalPacing:    0.3 + s.rng.Float64()*0.4,
			AuthorityResistance: s.consentResistance(attrs),
		},
		BornTick: tick,
	}

	c.Beliefs = s.innateBeliefs(c, divineStance, tick)
	return c
}

// weightedArchetype draws an archetype; believers and conformists are the
// common temperaments, seekers and rebels the rare ones.
func (s *Spawner) weightedArchetype() Archetype {
	r := s.rng.Float64()
	switch {
	case r < 0.18:
		return ArchConformist
	case r < 0.34:
		return ArchBeliever
	case r < 0.50:
		return ArchPragmatist
	case r < 0.63:
		return ArchSkeptic
	case r < 0.75:
		return ArchIdealist
	case r < 0.85:
		return ArchCynic
	case r < 0.93:
		return ArchSeeker
	default:
		return ArchRebel
	}
}

// inRange samples uniformly from a profile attribute range.
func (s *Spawner) inRange(r [2]float64) float64 {
	return r[0] + s.rng.Float64()*(r[1]-r[0])
}

// consentResistance seeds the authority-resistance threshold from the
// inverse of authority trust with some spread.
func (s *Spawner) consentResistance(attrs Attributes) float64 {
	base := 1 - attrs.AuthorityTrust
	return Clamp01(base*0.6 + s.rng.Float64()*0.3)
}

var innateTopics = []string{
	"community", "tradition", "fate", "justice", "prosperity", "nature",
}

func (s *Spawner) innateBeliefs(c *Citizen, divineStance float64, tick uint64) []Belief {
	beliefs := []Belief{
		{
			Topic:      TopicDivineExistence,
			Stance:     divineStance,
			Confidence: 0.3 + s.rng.Float64()*0.4,
			Origin:     OriginInnate,
			FormedTick: tick,
		},
		{
			Topic:      TopicFreeWill,
			Stance:     0.3 + s.rng.Float64()*0.5,
			Confidence: 0.4 + s.rng.Float64()*0.3,
			Origin:     OriginInnate,
			FormedTick: tick,
		},
	}

	// One or two secular convictions from the common topic pool.
	n := 1 + s.rng.Intn(2)
	seen := map[string]bool{}
	for i := 0; i < n; i++ {
		topic := innateTopics[s.rng.Intn(len(innateTopics))]
		if seen[topic] {
			continue
		}
		seen[topic] = true
		beliefs = append(beliefs, Belief{
			Topic:      topic,
			Stance:     Clamp(s.rng.Float64()*2-1, -1, 1),
			Confidence: 0.3 + s.rng.Float64()*0.4,
			Origin:     OriginInnate,
			FormedTick: tick,
		})
	}
	return beliefs
}

var givenNames = []string{
	"Asha", "Bram", "Cale", "Dara", "Edda", "Ferin", "Gale", "Hale",
	"Iris", "Joss", "Kira", "Leif", "Mara", "Nils", "Orin", "Petra",
	"Quill", "Rhea", "Soren", "Tova", "Ulric", "Vera", "Wren", "Yara",
}

var familyNames = []string{
	"Ashdown", "Brook", "Coller", "Dunmore", "Eastlake", "Fenwick",
	"Grange", "Holt", "Ivers", "Kettle", "Larkspur", "Marsh",
	"Northgate", "Oakes", "Penhallow", "Quince", "Rowan", "Stave",
	"Thorn", "Underhill", "Vane", "Welling", "Yates",
}

func (s *Spawner) generateName() string {
	first := givenNames[s.rng.Intn(len(givenNames))]
	last := familyNames[s.rng.Intn(len(familyNames))]
	return first + " " + last
}
