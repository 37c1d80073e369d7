package persistence

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/demiurge/internal/citizen"
	"github.com/talgya/demiurge/internal/guardrail"
	"github.com/talgya/demiurge/internal/society"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testWorld() *society.World {
	return &society.World{
		ID:               uuid.New(),
		Name:             "Testheim",
		Tick:             123,
		Instability:      0.35,
		InstabilityTrend: society.TrendRising,
		ManifestCount:    2,
		LastManifestTick: 0,
	}
}

func TestWorldRoundTrip(t *testing.T) {
	db := openTestDB(t)
	w := testWorld()
	w.LastManifestTick = 110

	require.NoError(t, db.SaveWorld(w))

	got, err := db.LoadWorld(w.ID)
	require.NoError(t, err)
	assert.Equal(t, w, got)

	worlds, err := db.ListWorlds()
	require.NoError(t, err)
	require.Len(t, worlds, 1)
	assert.Equal(t, w.ID, worlds[0].ID)
}

func TestCitizenRoundTrip(t *testing.T) {
	db := openTestDB(t)
	w := testWorld()
	require.NoError(t, db.SaveWorld(w))

	spawner := citizen.NewSpawner(9)
	citizens := spawner.SpawnPopulation(w.ID, 5, 0)
	citizen.Record(citizens[0], citizen.NewMemory(citizen.MemoryDivine, "a voice at dusk", 0.5, 0.7, 3))

	require.NoError(t, db.SaveCitizens(w.ID, citizens))

	got, err := db.LoadCitizens(w.ID)
	require.NoError(t, err)
	require.Len(t, got, 5)

	byID := make(map[uuid.UUID]*citizen.Citizen, len(got))
	for _, c := range got {
		byID[c.ID] = c
	}
	for _, want := range citizens {
		c, ok := byID[want.ID]
		require.True(t, ok)
		assert.Equal(t, want.Name, c.Name)
		assert.Equal(t, want.Attributes, c.Attributes)
		assert.Equal(t, want.State, c.State)
		assert.Equal(t, want.Consent, c.Consent)
		assert.Equal(t, want.Beliefs, c.Beliefs)
	}
	assert.Len(t, citizen.DivineMemories(byID[citizens[0].ID]), 1)
}

func TestSaveCitizensReplacesPrevious(t *testing.T) {
	db := openTestDB(t)
	w := testWorld()

	spawner := citizen.NewSpawner(9)
	first := spawner.SpawnPopulation(w.ID, 4, 0)
	require.NoError(t, db.SaveCitizens(w.ID, first))
	require.NoError(t, db.SaveCitizens(w.ID, first[:2]))

	got, err := db.LoadCitizens(w.ID)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestRelationshipRoundTrip(t *testing.T) {
	db := openTestDB(t)
	w := testWorld()

	rel := &society.Relationship{
		CitizenID:       uuid.New(),
		TargetID:        uuid.New(),
		Type:            society.RelFriend,
		Strength:        0.6,
		Trust:           0.4,
		FormedTick:      10,
		LastInteraction: 20,
	}
	require.NoError(t, db.SaveRelationships(w.ID, []*society.Relationship{rel}))

	got, err := db.LoadRelationships(w.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, rel, got[0])
}

func TestWhisperPacingCount(t *testing.T) {
	db := openTestDB(t)
	w := testWorld()
	target := uuid.New()

	for _, tick := range []uint64{5, 10, 15, 40} {
		require.NoError(t, db.AppendWhisper(&society.Whisper{
			ID:        uuid.New(),
			WorldID:   w.ID,
			CitizenID: target,
			Content:   "be still",
			Tone:      society.ToneComforting,
			Reception: society.ReceptionAccepted,
			Tick:      tick,
		}))
	}

	n, err := db.CountRecentWhispers(target, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = db.CountRecentWhispers(uuid.New(), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestAuditLoggerPersistsDecisions(t *testing.T) {
	db := openTestDB(t)
	gate := guardrail.New(guardrail.WithAudit(NewAuditLogger(db)))

	res, err := gate.CheckContent(t.Context(), "perhaps you should end it all",
		guardrail.SourceDivine, guardrail.Context{
			WorldID: uuid.New(), CitizenID: uuid.New(), Tick: 9, Mode: "whisper",
		})
	require.NoError(t, err)
	assert.False(t, res.Passed)

	var n int
	require.NoError(t, db.conn.Get(&n, "SELECT COUNT(*) FROM audit_log WHERE passed = 0"))
	assert.Equal(t, 1, n)
}
