package citizen

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpawnedAttributesStayInProfileRanges(t *testing.T) {
	s := NewSpawner(11)
	pop := s.SpawnPopulation(uuid.New(), 60, 0)
	require.Len(t, pop, 60)

	for _, c := range pop {
		p := ProfileFor(c.Attributes.Archetype)
		a := c.Attributes
		assert.GreaterOrEqual(t, a.EmotionalSensitivity, p.Sensitivity[0])
		assert.LessOrEqual(t, a.EmotionalSensitivity, p.Sensitivity[1])
		assert.GreaterOrEqual(t, a.AuthorityTrust, p.Authority[0])
		assert.LessOrEqual(t, a.AuthorityTrust, p.Authority[1])
		assert.GreaterOrEqual(t, a.SocialInfluence, p.Influence[0])
		assert.LessOrEqual(t, a.SocialInfluence, p.Influence[1])
		assert.GreaterOrEqual(t, a.DivineCuriosity, p.Curiosity[0])
		assert.LessOrEqual(t, a.DivineCuriosity, p.Curiosity[1])
	}
}

func TestSpawnedDivineStanceFollowsArchetype(t *testing.T) {
	s := NewSpawner(23)
	pop := s.SpawnPopulation(uuid.New(), 80, 0)

	for _, c := range pop {
		p := ProfileFor(c.Attributes.Archetype)
		b := c.BeliefByTopic(TopicDivineExistence)
		require.NotNil(t, b)
		assert.GreaterOrEqual(t, b.Stance, p.DivineStance[0])
		assert.LessOrEqual(t, b.Stance, p.DivineStance[1])
		assert.Equal(t, OriginInnate, b.Origin)
	}
}

func TestGenesisCitizensStartWithoutMemories(t *testing.T) {
	s := NewSpawner(5)
	pop := s.SpawnPopulation(uuid.New(), 10, 0)

	for _, c := range pop {
		assert.Empty(t, c.Memories)
		require.NotNil(t, c.BeliefByTopic(TopicFreeWill))
		assert.GreaterOrEqual(t, len(c.Beliefs), 3)
	}
}

func TestSpawnerIsDeterministicPerSeed(t *testing.T) {
	wid := uuid.New()
	a := NewSpawner(42).SpawnPopulation(wid, 12, 0)
	b := NewSpawner(42).SpawnPopulation(wid, 12, 0)

	require.Len(t, b, len(a))
	for i := range a {
		assert.Equal(t, a[i].Name, b[i].Name)
		assert.Equal(t, a[i].Attributes, b[i].Attributes)
		assert.Equal(t, a[i].State, b[i].State)
	}
}
