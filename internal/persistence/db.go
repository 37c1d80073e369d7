// Package persistence provides SQLite-based world state storage.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/demiurge/internal/citizen"
	"github.com/talgya/demiurge/internal/guardrail"
	"github.com/talgya/demiurge/internal/society"
)

// DB wraps a SQLite connection for world state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS worlds (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		tick INTEGER NOT NULL,
		instability REAL NOT NULL,
		instability_trend TEXT NOT NULL,
		manifest_count INTEGER NOT NULL,
		last_manifest_tick INTEGER NOT NULL,
		created_tick INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS citizens (
		id TEXT PRIMARY KEY,
		world_id TEXT NOT NULL,
		name TEXT NOT NULL,
		archetype TEXT NOT NULL,
		emotional_sensitivity REAL NOT NULL,
		authority_trust REAL NOT NULL,
		social_influence REAL NOT NULL,
		divine_curiosity REAL NOT NULL,
		mood REAL NOT NULL,
		stress REAL NOT NULL,
		hope REAL NOT NULL,
		trust_peers REAL NOT NULL,
		trust_divine REAL NOT NULL,
		dissonance REAL NOT NULL,
		consent_json TEXT NOT NULL,
		beliefs_json TEXT NOT NULL,
		memories_json TEXT NOT NULL,
		born_tick INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS relationships (
		citizen_id TEXT NOT NULL,
		target_id TEXT NOT NULL,
		world_id TEXT NOT NULL,
		type TEXT NOT NULL,
		strength REAL NOT NULL,
		trust REAL NOT NULL,
		formed_tick INTEGER NOT NULL,
		last_interaction INTEGER NOT NULL,
		PRIMARY KEY (citizen_id, target_id)
	);

	CREATE TABLE IF NOT EXISTS movements (
		id TEXT PRIMARY KEY,
		world_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL,
		stage TEXT NOT NULL,
		founder_id TEXT NOT NULL,
		influence REAL NOT NULL,
		divine_relation TEXT NOT NULL,
		core_beliefs_json TEXT NOT NULL,
		leaders_json TEXT NOT NULL,
		followers_json TEXT NOT NULL,
		history_json TEXT NOT NULL,
		founded_tick INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS trends (
		world_id TEXT NOT NULL,
		name TEXT NOT NULL,
		topic TEXT NOT NULL,
		strength REAL NOT NULL,
		participants INTEGER NOT NULL,
		started_tick INTEGER NOT NULL,
		PRIMARY KEY (world_id, name)
	);

	CREATE TABLE IF NOT EXISTS whispers (
		id TEXT PRIMARY KEY,
		world_id TEXT NOT NULL,
		citizen_id TEXT NOT NULL,
		content TEXT NOT NULL,
		tone TEXT NOT NULL,
		reception TEXT NOT NULL,
		receptivity REAL NOT NULL,
		tick INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS manifestations (
		id TEXT PRIMARY KEY,
		world_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		intensity TEXT NOT NULL,
		content TEXT NOT NULL,
		audience TEXT NOT NULL,
		dominant_reaction TEXT NOT NULL,
		instability_before REAL NOT NULL,
		instability_after REAL NOT NULL,
		reactions_json TEXT NOT NULL,
		tick INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		world_id TEXT NOT NULL,
		type TEXT NOT NULL,
		description TEXT NOT NULL,
		is_divine INTEGER NOT NULL,
		affected_json TEXT NOT NULL,
		tick INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS audit_log (
		id TEXT PRIMARY KEY,
		world_id TEXT NOT NULL,
		citizen_id TEXT NOT NULL,
		source TEXT NOT NULL,
		mode TEXT NOT NULL,
		content TEXT NOT NULL,
		passed INTEGER NOT NULL,
		safety_level TEXT NOT NULL,
		violations_json TEXT NOT NULL,
		intervention TEXT NOT NULL,
		tick INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_citizens_world ON citizens(world_id);
	CREATE INDEX IF NOT EXISTS idx_relationships_world ON relationships(world_id);
	CREATE INDEX IF NOT EXISTS idx_movements_world ON movements(world_id);
	CREATE INDEX IF NOT EXISTS idx_whispers_citizen_tick ON whispers(citizen_id, tick);
	CREATE INDEX IF NOT EXISTS idx_manifestations_world ON manifestations(world_id);
	CREATE INDEX IF NOT EXISTS idx_events_world_tick ON events(world_id, tick);
	CREATE INDEX IF NOT EXISTS idx_audit_world_tick ON audit_log(world_id, tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveWorld upserts a world row.
func (db *DB) SaveWorld(w *society.World) error {
	_, err := db.conn.Exec(`INSERT OR REPLACE INTO worlds
		(id, name, tick, instability, instability_trend,
		 manifest_count, last_manifest_tick, created_tick)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID.String(), w.Name, w.Tick, w.Instability, w.InstabilityTrend,
		w.ManifestCount, w.LastManifestTick, w.CreatedTick,
	)
	if err != nil {
		return fmt.Errorf("save world %s: %w", w.ID, err)
	}
	return nil
}

// LoadWorld reads one world by ID.
func (db *DB) LoadWorld(id uuid.UUID) (*society.World, error) {
	row := db.conn.QueryRowx(`SELECT id, name, tick, instability, instability_trend,
		manifest_count, last_manifest_tick, created_tick
		FROM worlds WHERE id = ?`, id.String())

	var (
		w     society.World
		rawID string
	)
	if err := row.Scan(&rawID, &w.Name, &w.Tick, &w.Instability, &w.InstabilityTrend,
		&w.ManifestCount, &w.LastManifestTick, &w.CreatedTick); err != nil {
		return nil, fmt.Errorf("load world %s: %w", id, err)
	}
	parsed, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("load world %s: %w", id, err)
	}
	w.ID = parsed
	return &w, nil
}

// ListWorlds reads every world.
func (db *DB) ListWorlds() ([]*society.World, error) {
	rows, err := db.conn.Queryx(`SELECT id, name, tick, instability, instability_trend,
		manifest_count, last_manifest_tick, created_tick FROM worlds ORDER BY created_tick`)
	if err != nil {
		return nil, fmt.Errorf("list worlds: %w", err)
	}
	defer rows.Close()

	var worlds []*society.World
	for rows.Next() {
		var (
			w     society.World
			rawID string
		)
		if err := rows.Scan(&rawID, &w.Name, &w.Tick, &w.Instability, &w.InstabilityTrend,
			&w.ManifestCount, &w.LastManifestTick, &w.CreatedTick); err != nil {
			return nil, fmt.Errorf("list worlds: %w", err)
		}
		parsed, err := uuid.Parse(rawID)
		if err != nil {
			return nil, fmt.Errorf("list worlds: %w", err)
		}
		w.ID = parsed
		worlds = append(worlds, &w)
	}
	return worlds, rows.Err()
}

// SaveCitizens writes a world's citizens (full replace for that world).
func (db *DB) SaveCitizens(worldID uuid.UUID, citizens []*citizen.Citizen) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM citizens WHERE world_id = ?", worldID.String()); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO citizens
		(id, world_id, name, archetype,
		 emotional_sensitivity, authority_trust, social_influence, divine_curiosity,
		 mood, stress, hope, trust_peers, trust_divine, dissonance,
		 consent_json, beliefs_json, memories_json, born_tick)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range citizens {
		consentJSON, _ := json.Marshal(c.Consent)
		beliefsJSON, _ := json.Marshal(c.Beliefs)
		memoriesJSON, _ := json.Marshal(c.Memories)

		_, err := stmt.Exec(
			c.ID.String(), c.WorldID.String(), c.Name, c.Attributes.Archetype,
			c.Attributes.EmotionalSensitivity, c.Attributes.AuthorityTrust,
			c.Attributes.SocialInfluence, c.Attributes.DivineCuriosity,
			c.State.Mood, c.State.Stress, c.State.Hope,
			c.State.TrustPeers, c.State.TrustDivine, c.State.Dissonance,
			string(consentJSON), string(beliefsJSON), string(memoriesJSON), c.BornTick,
		)
		if err != nil {
			return fmt.Errorf("insert citizen %s: %w", c.ID, err)
		}
	}

	return tx.Commit()
}

// LoadCitizens reads all citizens of a world.
func (db *DB) LoadCitizens(worldID uuid.UUID) ([]*citizen.Citizen, error) {
	rows, err := db.conn.Queryx(`SELECT id, world_id, name, archetype,
		emotional_sensitivity, authority_trust, social_influence, divine_curiosity,
		mood, stress, hope, trust_peers, trust_divine, dissonance,
		consent_json, beliefs_json, memories_json, born_tick
		FROM citizens WHERE world_id = ?`, worldID.String())
	if err != nil {
		return nil, fmt.Errorf("load citizens: %w", err)
	}
	defer rows.Close()

	var citizens []*citizen.Citizen
	for rows.Next() {
		var (
			c               citizen.Citizen
			rawID, rawWorld string
			consentJSON     string
			beliefsJSON     string
			memoriesJSON    string
		)
		if err := rows.Scan(&rawID, &rawWorld, &c.Name, &c.Attributes.Archetype,
			&c.Attributes.EmotionalSensitivity, &c.Attributes.AuthorityTrust,
			&c.Attributes.SocialInfluence, &c.Attributes.DivineCuriosity,
			&c.State.Mood, &c.State.Stress, &c.State.Hope,
			&c.State.TrustPeers, &c.State.TrustDivine, &c.State.Dissonance,
			&consentJSON, &beliefsJSON, &memoriesJSON, &c.BornTick); err != nil {
			return nil, fmt.Errorf("load citizens: %w", err)
		}
		if c.ID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("load citizen id: %w", err)
		}
		if c.WorldID, err = uuid.Parse(rawWorld); err != nil {
			return nil, fmt.Errorf("load citizen world id: %w", err)
		}
		if err := json.Unmarshal([]byte(consentJSON), &c.Consent); err != nil {
			return nil, fmt.Errorf("decode consent for %s: %w", c.ID, err)
		}
		if err := json.Unmarshal([]byte(beliefsJSON), &c.Beliefs); err != nil {
			return nil, fmt.Errorf("decode beliefs for %s: %w", c.ID, err)
		}
		if err := json.Unmarshal([]byte(memoriesJSON), &c.Memories); err != nil {
			return nil, fmt.Errorf("decode memories for %s: %w", c.ID, err)
		}
		citizens = append(citizens, &c)
	}
	return citizens, rows.Err()
}

// SaveRelationships writes a world's relationships (full replace).
func (db *DB) SaveRelationships(worldID uuid.UUID, rels []*society.Relationship) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM relationships WHERE world_id = ?", worldID.String()); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO relationships
		(citizen_id, target_id, world_id, type, strength, trust, formed_tick, last_interaction)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rels {
		_, err := stmt.Exec(
			r.CitizenID.String(), r.TargetID.String(), worldID.String(),
			r.Type, r.Strength, r.Trust, r.FormedTick, r.LastInteraction,
		)
		if err != nil {
			return fmt.Errorf("insert relationship %s->%s: %w", r.CitizenID, r.TargetID, err)
		}
	}

	return tx.Commit()
}

// LoadRelationships reads all relationships of a world.
func (db *DB) LoadRelationships(worldID uuid.UUID) ([]*society.Relationship, error) {
	rows, err := db.conn.Queryx(`SELECT citizen_id, target_id, type, strength, trust,
		formed_tick, last_interaction FROM relationships WHERE world_id = ?`, worldID.String())
	if err != nil {
		return nil, fmt.Errorf("load relationships: %w", err)
	}
	defer rows.Close()

	var rels []*society.Relationship
	for rows.Next() {
		var (
			r                 society.Relationship
			rawFrom, rawTo    string
		)
		if err := rows.Scan(&rawFrom, &rawTo, &r.Type, &r.Strength, &r.Trust,
			&r.FormedTick, &r.LastInteraction); err != nil {
			return nil, fmt.Errorf("load relationships: %w", err)
		}
		if r.CitizenID, err = uuid.Parse(rawFrom); err != nil {
			return nil, fmt.Errorf("load relationship id: %w", err)
		}
		if r.TargetID, err = uuid.Parse(rawTo); err != nil {
			return nil, fmt.Errorf("load relationship id: %w", err)
		}
		rels = append(rels, &r)
	}
	return rels, rows.Err()
}

// SaveMovements writes a world's movements (full replace). Movements are
// never deleted from the model, so a replace write loses nothing.
func (db *DB) SaveMovements(worldID uuid.UUID, movements []*society.CulturalMovement) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM movements WHERE world_id = ?", worldID.String()); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO movements
		(id, world_id, name, description, stage, founder_id, influence, divine_relation,
		 core_beliefs_json, leaders_json, followers_json, history_json, founded_tick)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, m := range movements {
		coreJSON, _ := json.Marshal(m.CoreBeliefs)
		leadersJSON, _ := json.Marshal(m.LeaderIDs)
		followersJSON, _ := json.Marshal(m.FollowerIDs)
		historyJSON, _ := json.Marshal(m.History)

		_, err := stmt.Exec(
			m.ID.String(), m.WorldID.String(), m.Name, m.Description,
			m.Stage, m.FounderID.String(), m.Influence, m.Relation,
			string(coreJSON), string(leadersJSON), string(followersJSON),
			string(historyJSON), m.FoundedTick,
		)
		if err != nil {
			return fmt.Errorf("insert movement %s: %w", m.ID, err)
		}
	}

	return tx.Commit()
}

// LoadMovements reads all movements of a world.
func (db *DB) LoadMovements(worldID uuid.UUID) ([]*society.CulturalMovement, error) {
	rows, err := db.conn.Queryx(`SELECT id, world_id, name, description, stage, founder_id,
		influence, divine_relation, core_beliefs_json, leaders_json, followers_json,
		history_json, founded_tick FROM movements WHERE world_id = ?`, worldID.String())
	if err != nil {
		return nil, fmt.Errorf("load movements: %w", err)
	}
	defer rows.Close()

	var movements []*society.CulturalMovement
	for rows.Next() {
		var (
			m                          society.CulturalMovement
			rawID, rawWorld, rawFounder string
			coreJSON, leadersJSON      string
			followersJSON, historyJSON string
		)
		if err := rows.Scan(&rawID, &rawWorld, &m.Name, &m.Description, &m.Stage,
			&rawFounder, &m.Influence, &m.Relation, &coreJSON, &leadersJSON,
			&followersJSON, &historyJSON, &m.FoundedTick); err != nil {
			return nil, fmt.Errorf("load movements: %w", err)
		}
		if m.ID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("load movement id: %w", err)
		}
		if m.WorldID, err = uuid.Parse(rawWorld); err != nil {
			return nil, fmt.Errorf("load movement world id: %w", err)
		}
		if m.FounderID, err = uuid.Parse(rawFounder); err != nil {
			return nil, fmt.Errorf("load movement founder id: %w", err)
		}
		if err := json.Unmarshal([]byte(coreJSON), &m.CoreBeliefs); err != nil {
			return nil, fmt.Errorf("decode core beliefs for %s: %w", m.ID, err)
		}
		if err := json.Unmarshal([]byte(leadersJSON), &m.LeaderIDs); err != nil {
			return nil, fmt.Errorf("decode leaders for %s: %w", m.ID, err)
		}
		if err := json.Unmarshal([]byte(followersJSON), &m.FollowerIDs); err != nil {
			return nil, fmt.Errorf("decode followers for %s: %w", m.ID, err)
		}
		if err := json.Unmarshal([]byte(historyJSON), &m.History); err != nil {
			return nil, fmt.Errorf("decode history for %s: %w", m.ID, err)
		}
		movements = append(movements, &m)
	}
	return movements, rows.Err()
}

// SaveTrends writes a world's trends (full replace).
func (db *DB) SaveTrends(worldID uuid.UUID, trends []society.CulturalTrend) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM trends WHERE world_id = ?", worldID.String()); err != nil {
		return err
	}

	for _, t := range trends {
		_, err := tx.Exec(`INSERT INTO trends
			(world_id, name, topic, strength, participants, started_tick)
			VALUES (?, ?, ?, ?, ?, ?)`,
			worldID.String(), t.Name, t.Topic, t.Strength, t.Participants, t.StartedTick,
		)
		if err != nil {
			return fmt.Errorf("insert trend %q: %w", t.Name, err)
		}
	}

	return tx.Commit()
}

// LoadTrends reads all trends of a world.
func (db *DB) LoadTrends(worldID uuid.UUID) ([]society.CulturalTrend, error) {
	rows, err := db.conn.Queryx(`SELECT name, topic, strength, participants,
		started_tick FROM trends WHERE world_id = ?`, worldID.String())
	if err != nil {
		return nil, fmt.Errorf("load trends: %w", err)
	}
	defer rows.Close()

	var trends []society.CulturalTrend
	for rows.Next() {
		var t society.CulturalTrend
		if err := rows.Scan(&t.Name, &t.Topic, &t.Strength, &t.Participants, &t.StartedTick); err != nil {
			return nil, fmt.Errorf("load trends: %w", err)
		}
		trends = append(trends, t)
	}
	return trends, rows.Err()
}

// AppendWhisper records a whisper. Whispers are append-only.
func (db *DB) AppendWhisper(w *society.Whisper) error {
	_, err := db.conn.Exec(`INSERT INTO whispers
		(id, world_id, citizen_id, content, tone, reception, receptivity, tick)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID.String(), w.WorldID.String(), w.CitizenID.String(),
		w.Content, w.Tone, w.Reception, w.Receptivity, w.Tick,
	)
	if err != nil {
		return fmt.Errorf("append whisper %s: %w", w.ID, err)
	}
	return nil
}

// CountRecentWhispers counts whispers a citizen received since a tick,
// used for relational pacing.
func (db *DB) CountRecentWhispers(citizenID uuid.UUID, sinceTick uint64) (int, error) {
	var n int
	err := db.conn.Get(&n,
		"SELECT COUNT(*) FROM whispers WHERE citizen_id = ? AND tick >= ?",
		citizenID.String(), sinceTick,
	)
	if err != nil {
		return 0, fmt.Errorf("count recent whispers: %w", err)
	}
	return n, nil
}

// AppendManifestation records a manifestation. Append-only.
func (db *DB) AppendManifestation(m *society.Manifestation) error {
	reactionsJSON, _ := json.Marshal(m.Reactions)
	_, err := db.conn.Exec(`INSERT INTO manifestations
		(id, world_id, kind, intensity, content, audience, dominant_reaction,
		 instability_before, instability_after, reactions_json, tick)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID.String(), m.WorldID.String(), m.Kind, m.Intensity, m.Content,
		m.Audience, m.DominantReaction, m.InstabilityBefore, m.InstabilityAfter,
		string(reactionsJSON), m.Tick,
	)
	if err != nil {
		return fmt.Errorf("append manifestation %s: %w", m.ID, err)
	}
	return nil
}

// AppendEvent records a collective event. Append-only.
func (db *DB) AppendEvent(e *society.CollectiveEvent) error {
	affectedJSON, _ := json.Marshal(e.AffectedIDs)
	divine := 0
	if e.IsDivine {
		divine = 1
	}
	_, err := db.conn.Exec(`INSERT INTO events
		(id, world_id, type, description, is_divine, affected_json, tick)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID.String(), e.WorldID.String(), e.Type, e.Description,
		divine, string(affectedJSON), e.Tick,
	)
	if err != nil {
		return fmt.Errorf("append event %s: %w", e.ID, err)
	}
	return nil
}

// RecentEvents returns the most recent events of a world, newest first.
func (db *DB) RecentEvents(worldID uuid.UUID, limit int) ([]society.CollectiveEvent, error) {
	rows, err := db.conn.Queryx(`SELECT id, world_id, type, description, is_divine,
		affected_json, tick FROM events WHERE world_id = ?
		ORDER BY tick DESC LIMIT ?`, worldID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("recent events: %w", err)
	}
	defer rows.Close()

	var events []society.CollectiveEvent
	for rows.Next() {
		var (
			e               society.CollectiveEvent
			rawID, rawWorld string
			affectedJSON    string
			divine          int
		)
		if err := rows.Scan(&rawID, &rawWorld, &e.Type, &e.Description,
			&divine, &affectedJSON, &e.Tick); err != nil {
			return nil, fmt.Errorf("recent events: %w", err)
		}
		if e.ID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("recent events: %w", err)
		}
		if e.WorldID, err = uuid.Parse(rawWorld); err != nil {
			return nil, fmt.Errorf("recent events: %w", err)
		}
		e.IsDivine = divine != 0
		if err := json.Unmarshal([]byte(affectedJSON), &e.AffectedIDs); err != nil {
			return nil, fmt.Errorf("decode affected for %s: %w", e.ID, err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// AuditLogger adapts the store into a guardrail audit sink.
type AuditLogger struct {
	db *DB
}

// NewAuditLogger returns a store-backed guardrail audit logger.
func NewAuditLogger(db *DB) *AuditLogger {
	return &AuditLogger{db: db}
}

// Record persists one gate decision.
func (l *AuditLogger) Record(r guardrail.AuditRecord) error {
	violationsJSON, _ := json.Marshal(r.Violations)
	passed := 0
	if r.Passed {
		passed = 1
	}
	_, err := l.db.conn.Exec(`INSERT INTO audit_log
		(id, world_id, citizen_id, source, mode, content, passed,
		 safety_level, violations_json, intervention, tick)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID.String(), r.WorldID.String(), r.CitizenID.String(),
		r.Source, r.Mode, r.Content, passed,
		r.SafetyLevel, string(violationsJSON), r.Intervention, r.Tick,
	)
	if err != nil {
		return fmt.Errorf("append audit record %s: %w", r.ID, err)
	}
	return nil
}

// SaveWorldState performs a full save of one world and everything in it.
func (db *DB) SaveWorldState(w *society.World, citizens []*citizen.Citizen,
	rels []*society.Relationship, movements []*society.CulturalMovement,
	trends []society.CulturalTrend) error {

	slog.Info("saving world state",
		"world", w.ID, "citizens", len(citizens),
		"relationships", len(rels), "movements", len(movements))

	if err := db.SaveWorld(w); err != nil {
		return fmt.Errorf("save world: %w", err)
	}
	if err := db.SaveCitizens(w.ID, citizens); err != nil {
		return fmt.Errorf("save citizens: %w", err)
	}
	if err := db.SaveRelationships(w.ID, rels); err != nil {
		return fmt.Errorf("save relationships: %w", err)
	}
	if err := db.SaveMovements(w.ID, movements); err != nil {
		return fmt.Errorf("save movements: %w", err)
	}
	if err := db.SaveTrends(w.ID, trends); err != nil {
		return fmt.Errorf("save trends: %w", err)
	}

	slog.Info("world state saved", "world", w.ID)
	return nil
}
