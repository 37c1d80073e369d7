// Package sim ties the engines together: it owns a world's full state,
// serializes writers, and exposes the divine operations and the tick
// loop. All mutation of a world goes through exactly one Simulation.
package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/talgya/demiurge/internal/citizen"
	"github.com/talgya/demiurge/internal/engine"
	"github.com/talgya/demiurge/internal/entropy"
	"github.com/talgya/demiurge/internal/guardrail"
	"github.com/talgya/demiurge/internal/persistence"
	"github.com/talgya/demiurge/internal/society"
	"github.com/talgya/demiurge/internal/tuning"
)

// ErrCitizenNotFound is returned when an operation targets a citizen the
// world does not contain.
var ErrCitizenNotFound = errors.New("citizen not found")

// Simulation owns one world and everything in it. The mutex enforces the
// at-most-one-writer rule; reads taken for the API go through snapshots.
type Simulation struct {
	mu sync.Mutex

	World         *society.World
	Citizens      []*citizen.Citizen
	Relationships map[society.Key]*society.Relationship
	Movements     []*society.CulturalMovement
	Trends        []society.CulturalTrend
	Events        []society.CollectiveEvent // recent ring, trimmed by the tick loop

	Gate  *guardrail.Gate
	Rnd   entropy.Source
	Store *persistence.DB // optional; nil runs in-memory only

	citizenIx      map[uuid.UUID]*citizen.Citizen
	recentWhispers map[uuid.UUID][]uint64
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithStore attaches a persistence store. Records are appended as they
// happen; full state saves are driven by the loop.
func WithStore(db *persistence.DB) Option {
	return func(s *Simulation) { s.Store = db }
}

// WithGate overrides the default guardrail gate.
func WithGate(g *guardrail.Gate) Option {
	return func(s *Simulation) { s.Gate = g }
}

// WithEntropy overrides the entropy source; tests pass a seeded one.
func WithEntropy(src entropy.Source) Option {
	return func(s *Simulation) { s.Rnd = src }
}

// NewSimulation wraps an existing world and population.
func NewSimulation(world *society.World, citizens []*citizen.Citizen, opts ...Option) *Simulation {
	s := &Simulation{
		World:          world,
		Citizens:       citizens,
		Relationships:  make(map[society.Key]*society.Relationship),
		Gate:           guardrail.New(),
		Rnd:            entropy.NewCrypto(),
		citizenIx:      make(map[uuid.UUID]*citizen.Citizen, len(citizens)),
		recentWhispers: make(map[uuid.UUID][]uint64),
	}
	for _, c := range citizens {
		s.citizenIx[c.ID] = c
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Genesis creates a new world with a freshly spawned population.
func Genesis(name string, population int, seed int64, opts ...Option) *Simulation {
	world := &society.World{
		ID:               uuid.New(),
		Name:             name,
		InstabilityTrend: society.TrendStable,
	}
	spawner := citizen.NewSpawner(seed)
	citizens := spawner.SpawnPopulation(world.ID, population, 0)

	// A seeded genesis gets a seeded runtime source; explicit WithEntropy
	// options still win because they apply later.
	opts = append([]Option{WithEntropy(entropy.NewSeeded(seed))}, opts...)
	s := NewSimulation(world, citizens, opts...)

	slog.Info("world created",
		"world", world.ID, "name", name,
		"population", len(citizens), "seed", seed)
	return s
}

// Load restores a world and its state from the store.
func Load(db *persistence.DB, worldID uuid.UUID, opts ...Option) (*Simulation, error) {
	world, err := db.LoadWorld(worldID)
	if err != nil {
		return nil, fmt.Errorf("load world: %w", err)
	}
	citizens, err := db.LoadCitizens(worldID)
	if err != nil {
		return nil, fmt.Errorf("load citizens: %w", err)
	}
	rels, err := db.LoadRelationships(worldID)
	if err != nil {
		return nil, fmt.Errorf("load relationships: %w", err)
	}
	movements, err := db.LoadMovements(worldID)
	if err != nil {
		return nil, fmt.Errorf("load movements: %w", err)
	}
	trends, err := db.LoadTrends(worldID)
	if err != nil {
		return nil, fmt.Errorf("load trends: %w", err)
	}

	s := NewSimulation(world, citizens, opts...)
	s.Store = db
	s.Movements = movements
	s.Trends = trends
	for _, r := range rels {
		s.Relationships[r.Key()] = r
	}

	slog.Info("world loaded",
		"world", world.ID, "tick", world.Tick,
		"citizens", len(citizens), "movements", len(movements))
	return s, nil
}

// CitizenByID returns the citizen or ErrCitizenNotFound.
func (s *Simulation) CitizenByID(id uuid.UUID) (*citizen.Citizen, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.citizenIx[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCitizenNotFound, id)
	}
	return c, nil
}

// Whisper runs the private intervention against one citizen.
func (s *Simulation) Whisper(ctx context.Context, in engine.WhisperInput) (engine.WhisperResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.citizenIx[in.TargetCitizenID]
	if !ok {
		return engine.WhisperResult{}, fmt.Errorf("%w: %s", ErrCitizenNotFound, in.TargetCitizenID)
	}

	tick := s.World.Tick
	res, err := engine.SendWhisper(ctx, in, c, s.World, engine.WhisperParams{
		Gate:           s.Gate,
		Rnd:            s.Rnd,
		Tick:           tick,
		RecentWhispers: s.countRecentWhispers(c.ID, tick),
	})
	if err != nil || !res.Success {
		return res, err
	}

	s.recentWhispers[c.ID] = append(s.recentWhispers[c.ID], tick)
	if s.Store != nil {
		if err := s.Store.AppendWhisper(res.Whisper); err != nil {
			slog.Warn("whisper record not persisted", "whisper", res.Whisper.ID, "error", err)
		}
	}
	return res, nil
}

// Manifest runs the public intervention against the world.
func (s *Simulation) Manifest(ctx context.Context, in engine.ManifestInput) (engine.ManifestResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := engine.ExecuteManifest(ctx, in, s.World, s.Citizens, engine.ManifestParams{
		Gate: s.Gate,
		Rnd:  s.Rnd,
		Tick: s.World.Tick,
	})
	if err != nil || !res.Success {
		return res, err
	}

	if s.Store != nil {
		if err := s.Store.AppendManifestation(res.Manifestation); err != nil {
			slog.Warn("manifestation record not persisted",
				"manifestation", res.Manifestation.ID, "error", err)
		}
	}
	return res, nil
}

// InjectEvent fires a collective event against the whole population.
// Divine injections leave divine memories in every affected citizen.
func (s *Simulation) InjectEvent(t society.EventType, isDivine bool) engine.EventResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyEvent(t, s.Citizens, nil, isDivine)
}

// applyEvent generates and applies a collective event. Callers hold the
// lock.
func (s *Simulation) applyEvent(t society.EventType, affected []*citizen.Citizen, movement *society.CulturalMovement, isDivine bool) engine.EventResult {
	res := engine.GenerateCollectiveEvent(t, affected, s.World, movement, isDivine, s.Rnd)

	for _, c := range affected {
		c.State.ApplyDelta(res.CitizenUpdates[c.ID])
		if m, ok := res.CitizenMemories[c.ID]; ok {
			citizen.Record(c, m)
		}
	}
	engine.ApplyWorldDelta(s.World, res.WorldUpdates)

	s.Events = append(s.Events, res.Event)
	if s.Store != nil {
		if err := s.Store.AppendEvent(&res.Event); err != nil {
			slog.Warn("event record not persisted", "event", res.Event.ID, "error", err)
		}
	}

	slog.Info("collective event",
		"world", s.World.ID, "type", t, "divine", isDivine,
		"affected", len(affected), "tick", s.World.Tick)
	return res
}

// Save writes the full world state to the store.
func (s *Simulation) Save() error {
	if s.Store == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Store.SaveWorldState(s.World, s.Citizens, s.relsPointerSlice(), s.Movements, s.Trends)
}

// countRecentWhispers counts whispers inside the pacing window, pruning
// expired entries as a side effect. Callers hold the lock.
func (s *Simulation) countRecentWhispers(id uuid.UUID, tick uint64) int {
	var cutoff uint64
	if tick > tuning.PacingWindowTicks {
		cutoff = tick - tuning.PacingWindowTicks
	}
	kept := s.recentWhispers[id][:0]
	for _, t := range s.recentWhispers[id] {
		if t >= cutoff {
			kept = append(kept, t)
		}
	}
	s.recentWhispers[id] = kept
	return len(kept)
}

// relsSlice copies the relationship map into a value slice for the pure
// engine functions. Callers hold the lock.
func (s *Simulation) relsSlice() []society.Relationship {
	out := make([]society.Relationship, 0, len(s.Relationships))
	for _, r := range s.Relationships {
		out = append(out, *r)
	}
	return out
}

func (s *Simulation) relsPointerSlice() []*society.Relationship {
	out := make([]*society.Relationship, 0, len(s.Relationships))
	for _, r := range s.Relationships {
		out = append(out, r)
	}
	return out
}

// Stats is an aggregate snapshot of the world for status reporting.
type Stats struct {
	Population  int     `json:"population"`
	Believers   int     `json:"believers"`
	Skeptics    int     `json:"skeptics"`
	AvgMood     float64 `json:"avg_mood"`
	AvgStress   float64 `json:"avg_stress"`
	AvgHope     float64 `json:"avg_hope"`
	Cohesion    float64 `json:"cohesion"`
	Instability float64 `json:"instability"`
	Movements   int     `json:"movements"`
	Extinct     int     `json:"extinct_movements"`
	Tick        uint64  `json:"tick"`
}

// Snapshot computes current aggregate statistics.
func (s *Simulation) Snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{
		Population:  len(s.Citizens),
		Instability: s.World.Instability,
		Tick:        s.World.Tick,
	}
	for _, c := range s.Citizens {
		st.AvgMood += c.State.Mood
		st.AvgStress += c.State.Stress
		st.AvgHope += c.State.Hope
		if c.State.TrustDivine > 0.5 {
			st.Believers++
		} else if c.State.TrustDivine < 0.3 {
			st.Skeptics++
		}
	}
	if n := float64(len(s.Citizens)); n > 0 {
		st.AvgMood /= n
		st.AvgStress /= n
		st.AvgHope /= n
	}
	for _, m := range s.Movements {
		if m.Stage == society.StageExtinct {
			st.Extinct++
		} else {
			st.Movements++
		}
	}
	st.Cohesion = engine.CalculateSocialCohesion(s.Citizens, s.relsSlice())
	return st
}
