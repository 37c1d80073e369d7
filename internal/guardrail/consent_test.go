package guardrail

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/demiurge/internal/citizen"
	"github.com/talgya/demiurge/internal/society"
)

func consentCitizen() *citizen.Citizen {
	return &citizen.Citizen{
		ID: uuid.New(),
		Attributes: citizen.Attributes{
			Archetype:      citizen.ArchPragmatist,
			AuthorityTrust: 0.5,
		},
		State: citizen.State{TrustDivine: 0.4, Hope: 0.5},
		Consent: citizen.Consent{
			Emotional:           0.5,
			RelationalPacing:    0.3,
			AuthorityResistance: 0.5,
		},
	}
}

func TestEmotionalBreachUnderStress(t *testing.T) {
	c := consentCitizen()
	c.State.Stress = 0.8

	// pressure = 0.9 * (1 + 0.8*0.5) = 1.26 > 0.5
	res := CheckConsent(c, ConsentAction{Intensity: 0.9, Tone: society.ToneLoving})

	require.True(t, res.Violated)
	assert.Equal(t, ThresholdEmotional, res.Threshold)
	require.Len(t, res.Consequences, 2)
	assert.Equal(t, ConsequenceTrustCollapse, res.Consequences[0].Kind)
	assert.Equal(t, ConsequenceFearResponse, res.Consequences[1].Kind)
}

func TestSameIntensityPassesWhenCalm(t *testing.T) {
	c := consentCitizen()
	c.State.Stress = 0

	// pressure = 0.45 <= 0.5
	res := CheckConsent(c, ConsentAction{Intensity: 0.45, Tone: society.ToneLoving})
	assert.False(t, res.Violated)
}

func TestRelationalBreachOverPacingBudget(t *testing.T) {
	c := consentCitizen()

	// budget = 0.3 * 10 = 3 whispers per window
	res := CheckConsent(c, ConsentAction{Intensity: 0.2, RecentWhispers: 3})
	assert.False(t, res.Violated)

	res = CheckConsent(c, ConsentAction{Intensity: 0.2, RecentWhispers: 4})
	require.True(t, res.Violated)
	assert.Equal(t, ThresholdRelational, res.Threshold)
	assert.Equal(t, ConsequenceReputationDamage, res.Consequences[0].Kind)
	assert.Equal(t, ConsequenceCulturalBacklash, res.Consequences[1].Kind)
}

func TestAuthorityBreachNeedsCommandingTone(t *testing.T) {
	c := consentCitizen()
	c.Attributes.AuthorityTrust = 0.1
	// Lift the emotional threshold above the pressure (0.9 at zero
	// stress) so only the authority check is in play.
	c.Consent.Emotional = 0.95

	// resistance pressure = 0.9 * 0.9 = 0.81 > 0.5
	res := CheckConsent(c, ConsentAction{Intensity: 0.9, Tone: society.ToneCommanding})
	require.True(t, res.Violated)
	assert.Equal(t, ThresholdAuthority, res.Threshold)

	res = CheckConsent(c, ConsentAction{Intensity: 0.9, Tone: society.ToneWarning})
	assert.False(t, res.Violated)
}

func TestDeferentialCitizenAbsorbsCommands(t *testing.T) {
	c := consentCitizen()
	c.Attributes.AuthorityTrust = 0.9
	c.Consent.Emotional = 0.95

	// resistance pressure = 0.9 * 0.1 = 0.09 <= 0.5
	res := CheckConsent(c, ConsentAction{Intensity: 0.9, Tone: society.ToneCommanding})
	assert.False(t, res.Violated)
}

func TestEmotionalBreachWinsOverLaterChecks(t *testing.T) {
	c := consentCitizen()
	c.State.Stress = 1
	c.Attributes.AuthorityTrust = 0

	res := CheckConsent(c, ConsentAction{
		Intensity:      1,
		Tone:           society.ToneCommanding,
		RecentWhispers: 50,
	})

	require.True(t, res.Violated)
	assert.Equal(t, ThresholdEmotional, res.Threshold)
}

func TestApplyConsequencesUsesFixedDeltas(t *testing.T) {
	c := consentCitizen()
	c.State.Stress = 0.8

	res := CheckConsent(c, ConsentAction{Intensity: 0.9, Tone: society.ToneLoving})
	require.True(t, res.Violated)

	ApplyConsequences(c, res)

	// trust_collapse -0.25 on trust, fear_response +0.2 stress -0.1 mood.
	assert.InDelta(t, 0.15, c.State.TrustDivine, 1e-9)
	assert.InDelta(t, 1.0, c.State.Stress, 1e-9)
	assert.InDelta(t, -0.1, c.State.Mood, 1e-9)
}

func TestIntensityIsClamped(t *testing.T) {
	c := consentCitizen()
	c.State.Stress = 0

	// 5.0 clamps to 1.0; pressure 1.0 > 0.5 still breaches.
	res := CheckConsent(c, ConsentAction{Intensity: 5.0})
	assert.True(t, res.Violated)
	assert.Equal(t, ThresholdEmotional, res.Threshold)
}
