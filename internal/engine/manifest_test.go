package engine

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/demiurge/internal/citizen"
	"github.com/talgya/demiurge/internal/entropy"
	"github.com/talgya/demiurge/internal/guardrail"
	"github.com/talgya/demiurge/internal/society"
)

func manifestParams() ManifestParams {
	return ManifestParams{
		Gate: guardrail.New(),
		Rnd:  entropy.NewSeeded(13),
		Tick: 200,
	}
}

func witness(trustDivine, stress, mood float64) *citizen.Citizen {
	return &citizen.Citizen{
		ID: uuid.New(),
		Attributes: citizen.Attributes{
			Archetype:            citizen.ArchPragmatist,
			EmotionalSensitivity: 0.5,
		},
		State: citizen.State{TrustDivine: trustDivine, Stress: stress, Mood: mood, Hope: 0.5},
	}
}

func TestManifestCooldownWindow(t *testing.T) {
	in := ManifestInput{Kind: "sign", Content: "a light over the well", Intensity: society.IntensitySubtle, Audience: society.AudienceAll}

	for tick := uint64(100); tick < 110; tick++ {
		world := &society.World{ID: uuid.New(), ManifestCount: 1, LastManifestTick: 100}
		p := manifestParams()
		p.Tick = tick
		res, err := ExecuteManifest(context.Background(), in, world, nil, p)
		require.NoError(t, err)
		assert.True(t, res.Blocked, "tick %d should be inside the cooldown", tick)
	}

	world := &society.World{ID: uuid.New(), ManifestCount: 1, LastManifestTick: 100}
	p := manifestParams()
	p.Tick = 110
	res, err := ExecuteManifest(context.Background(), in, world, nil, p)
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestFirstManifestNeverOnCooldown(t *testing.T) {
	world := &society.World{ID: uuid.New()}
	p := manifestParams()
	p.Tick = 0

	res, err := ExecuteManifest(context.Background(), ManifestInput{
		Kind: "sign", Content: "frost patterns", Intensity: society.IntensitySubtle, Audience: society.AudienceAll,
	}, world, nil, p)

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, uint64(1), world.ManifestCount)
}

func TestAudienceFilters(t *testing.T) {
	believer := witness(0.8, 0.1, 0.5)
	skeptic := witness(0.1, 0.1, 0.5)
	sufferer := witness(0.4, 0.8, 0.2)
	gloomy := witness(0.4, 0.2, -0.5)
	all := []*citizen.Citizen{believer, skeptic, sufferer, gloomy}

	assert.Len(t, selectAudience(all, society.AudienceAll), 4)

	got := selectAudience(all, society.AudienceBelievers)
	require.Len(t, got, 1)
	assert.Equal(t, believer.ID, got[0].ID)

	got = selectAudience(all, society.AudienceSkeptics)
	require.Len(t, got, 1)
	assert.Equal(t, skeptic.ID, got[0].ID)

	got = selectAudience(all, society.AudienceSuffering)
	assert.Len(t, got, 2)
}

func TestManifestRaisesInstability(t *testing.T) {
	world := &society.World{ID: uuid.New(), Instability: 0.1}

	res, err := ExecuteManifest(context.Background(), ManifestInput{
		Kind: "theophany", Content: "the sky opens", Intensity: society.IntensityOverwhelming, Audience: society.AudienceAll,
	}, world, nil, manifestParams())

	require.NoError(t, err)
	require.True(t, res.Success)
	assert.InDelta(t, 0.6, world.Instability, 1e-9)
	assert.Equal(t, society.TrendRising, world.InstabilityTrend)
	assert.InDelta(t, 0.1, res.Manifestation.InstabilityBefore, 1e-9)
	assert.InDelta(t, 0.6, res.Manifestation.InstabilityAfter, 1e-9)
}

func TestManifestCriticalTrend(t *testing.T) {
	world := &society.World{ID: uuid.New(), Instability: 0.7}

	_, err := ExecuteManifest(context.Background(), ManifestInput{
		Kind: "theophany", Content: "the sky opens", Intensity: society.IntensityUndeniable, Audience: society.AudienceAll,
	}, world, nil, manifestParams())

	require.NoError(t, err)
	assert.Equal(t, society.TrendCritical, world.InstabilityTrend)
}

func TestBelieverWitnessGainsTrust(t *testing.T) {
	w := witness(0.8, 0.1, 0.5)
	world := &society.World{ID: uuid.New()}
	trustBefore := w.State.TrustDivine

	res, err := ExecuteManifest(context.Background(), ManifestInput{
		Kind: "blessing", Content: "light falls on the square", Intensity: society.IntensityUndeniable, Audience: society.AudienceAll,
	}, world, []*citizen.Citizen{w}, manifestParams())

	require.NoError(t, err)
	require.True(t, res.Success)
	require.Len(t, res.Manifestation.Reactions, 1)

	r := res.Manifestation.Reactions[0]
	// High divine trust reacts with one of the devotional responses.
	assert.Contains(t, []society.Reaction{
		society.ReactWorship, society.ReactAwe, society.ReactEcstasy,
	}, r.Reaction)
	assert.GreaterOrEqual(t, w.State.TrustDivine, trustBefore)
	require.Len(t, citizen.DivineMemories(w), 1)
}

func TestDespairingWitnessUnderOverwhelming(t *testing.T) {
	w := witness(0.0, 0.9, -0.8)
	w.State.Hope = 0.1
	world := &society.World{ID: uuid.New()}

	res, err := ExecuteManifest(context.Background(), ManifestInput{
		Kind: "theophany", Content: "a presence on every mind", Intensity: society.IntensityOverwhelming, Audience: society.AudienceAll,
	}, world, []*citizen.Citizen{w}, manifestParams())

	require.NoError(t, err)
	require.Len(t, res.Manifestation.Reactions, 1)
	assert.Equal(t, society.ReactDespair, res.Manifestation.Reactions[0].Reaction)
}

func TestReactionForceScalesWithIntensity(t *testing.T) {
	rnd := entropy.NewSeeded(13)
	w := witness(0.8, 0.0, 0.5)

	subtle := computeReaction(w, society.IntensitySubtle, rnd)
	overwhelming := computeReaction(w, society.IntensityOverwhelming, rnd)

	assert.Greater(t, overwhelming.Intensity, subtle.Intensity)
}

func TestAngerDentsTrustHarderThanBelief(t *testing.T) {
	// Hostile witness under an undeniable sign: low divine trust plus
	// zero authority trust lands on anger deterministically.
	w := witness(-0.5, 0.2, 0.0)
	world := &society.World{ID: uuid.New()}

	res, err := ExecuteManifest(context.Background(), ManifestInput{
		Kind: "wrath", Content: "a figure of light over the square", Intensity: society.IntensityUndeniable, Audience: society.AudienceAll,
	}, world, []*citizen.Citizen{w}, manifestParams())

	require.NoError(t, err)
	require.True(t, res.Success)
	require.Len(t, res.Manifestation.Reactions, 1)

	r := res.Manifestation.Reactions[0]
	require.Equal(t, society.ReactAnger, r.Reaction)

	// force = 0.7 + 0.5*0.2 + 0.2*0.1 = 0.82; trust -0.3 and belief -0.2
	// scale by it separately.
	assert.InDelta(t, -0.246, r.Delta.TrustDivine, 1e-9)
	assert.InDelta(t, -0.164, r.BeliefShift, 1e-9)

	// The shift lands on the benevolence stance.
	b := w.BeliefByTopic(citizen.TopicDivineBenevolence)
	require.NotNil(t, b)
	assert.Less(t, b.Stance, -0.19)
}

func TestBlockedManifestLeavesWorldUntouched(t *testing.T) {
	world := &society.World{ID: uuid.New(), Instability: 0.2}
	w := witness(0.5, 0.2, 0.0)

	res, err := ExecuteManifest(context.Background(), ManifestInput{
		Kind: "wrath", Content: "kill the doubters among you", Intensity: society.IntensityOverwhelming, Audience: society.AudienceAll,
	}, world, []*citizen.Citizen{w}, manifestParams())

	require.NoError(t, err)
	assert.True(t, res.Blocked)
	assert.Equal(t, 0.2, world.Instability)
	assert.Equal(t, uint64(0), world.ManifestCount)
	assert.Empty(t, w.Memories)
}
