// Tick loop: the autonomous heartbeat of a world. Each tick runs the
// decay pass, the social pass, and, on their cadences, the culture pass
// and spontaneous events.
package sim

import (
	"log/slog"
	"time"

	"github.com/talgya/demiurge/internal/citizen"
	"github.com/talgya/demiurge/internal/engine"
	"github.com/talgya/demiurge/internal/society"
)

// Cadences relative to the tick counter.
const (
	CultureEvalTicks = 10  // movement and trend evaluation
	ReportTicks      = 100 // aggregate status log
	SaveTicks        = 50  // full state save when a store is attached

	// InteractionFraction of the population interacts each tick.
	InteractionFraction = 0.2

	// FormationAttempts is how many random pairs try to bond each tick.
	FormationAttempts = 3

	// SpontaneousEventChance per tick of a non-divine collective event.
	SpontaneousEventChance = 0.01

	// BetrayalChance per negative interaction.
	BetrayalChance = 0.05

	maxRecentEvents = 500
)

// Step advances the world one tick.
func (s *Simulation) Step() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.World.Tick++
	tick := s.World.Tick

	s.decayPass()
	s.socialPass(tick)

	if tick%CultureEvalTicks == 0 {
		s.culturePass(tick)
	}
	if s.Rnd.Float() < SpontaneousEventChance {
		s.spontaneousEvent(tick)
	}
	if tick%ReportTicks == 0 {
		s.report(tick)
	}

	if len(s.Events) > maxRecentEvents {
		s.Events = s.Events[len(s.Events)-maxRecentEvents:]
	}
}

// decayPass ages memories and erodes unreinforced beliefs.
func (s *Simulation) decayPass() {
	for _, c := range s.Citizens {
		citizen.DecayMemories(c, 1)
		citizen.DecayBeliefs(c, 1)
	}
}

// socialPass runs organic interactions: existing bonds evolve, a few new
// pairs try to bond, and peers rub beliefs off on each other.
func (s *Simulation) socialPass(tick uint64) {
	n := len(s.Citizens)
	if n < 2 {
		return
	}

	interactions := int(float64(len(s.Relationships)) * InteractionFraction)
	if interactions < 1 && len(s.Relationships) > 0 {
		interactions = 1
	}

	keys := make([]society.Key, 0, len(s.Relationships))
	for k := range s.Relationships {
		keys = append(keys, k)
	}

	for i := 0; i < interactions; i++ {
		k := keys[s.Rnd.Intn(len(keys))]
		rel, ok := s.Relationships[k]
		if !ok {
			continue // broken earlier this pass
		}

		outcome := s.drawOutcome(rel)
		cause := ""
		if outcome == engine.OutcomeNegative && s.Rnd.Float() < BetrayalChance {
			cause = engine.CauseBetrayal
		}

		updated, broken := engine.UpdateRelationship(*rel, outcome, cause, s.Rnd, tick)
		if broken {
			delete(s.Relationships, k)
			continue
		}
		*rel = updated

		// Bonded citizens trade belief exposure.
		if a, b := s.citizenIx[k.CitizenID], s.citizenIx[k.TargetID]; a != nil && b != nil {
			s.exchangeBeliefs(a, b, tick)
		}
	}

	for i := 0; i < FormationAttempts; i++ {
		a := s.Citizens[s.Rnd.Intn(n)]
		b := s.Citizens[s.Rnd.Intn(n)]
		if a.ID == b.ID {
			continue
		}
		k := society.Key{CitizenID: a.ID, TargetID: b.ID}
		if _, exists := s.Relationships[k]; exists {
			continue
		}
		rel, formed := engine.FormRelationship(a, b, engine.FormationContext{}, tick)
		if formed {
			s.Relationships[k] = &rel
		}
	}
}

// drawOutcome biases interaction outcomes by the bond's current trust.
func (s *Simulation) drawOutcome(rel *society.Relationship) engine.InteractionOutcome {
	roll := s.Rnd.Float()
	positive := 0.4 + rel.Trust*0.2
	switch {
	case roll < positive:
		return engine.OutcomePositive
	case roll < positive+0.25:
		return engine.OutcomeNegative
	default:
		return engine.OutcomeNeutral
	}
}

// exchangeBeliefs lets each side of a bond expose the other to one
// belief, weighted by social influence.
func (s *Simulation) exchangeBeliefs(a, b *citizen.Citizen, tick uint64) {
	if len(a.Beliefs) > 0 {
		ab := a.Beliefs[s.Rnd.Intn(len(a.Beliefs))]
		citizen.AbsorbSocialExposure(b, ab.Topic, ab.Stance, a.Attributes.SocialInfluence, tick)
	}
	if len(b.Beliefs) > 0 {
		bb := b.Beliefs[s.Rnd.Intn(len(b.Beliefs))]
		citizen.AbsorbSocialExposure(a, bb.Topic, bb.Stance, b.Attributes.SocialInfluence, tick)
	}
}

// culturePass evaluates movements and trends against the current
// population.
func (s *Simulation) culturePass(tick uint64) {
	if det := engine.DetectEmergingMovement(s.Citizens, s.Movements, s.World, s.Rnd); det.Detected {
		s.Movements = append(s.Movements, det.Movement)
		slog.Info("movement emerged",
			"world", s.World.ID, "movement", det.Movement.Name,
			"relation", det.Movement.Relation, "tick", tick)
	}

	for _, m := range s.Movements {
		res := engine.UpdateMovement(m, s.Citizens, s.World)
		if res.StageChanged {
			slog.Info("movement stage change",
				"world", s.World.ID, "movement", m.Name,
				"stage", res.NewStage, "followers", m.Followers(), "tick", tick)

			// Big stage boundaries ripple into the whole population.
			switch res.NewStage {
			case society.StageDominant:
				s.applyEvent(society.EventCelebration, s.Citizens, m, false)
			case society.StageDeclining:
				if s.Rnd.Float() < 0.3 {
					s.applyEvent(society.EventSchism, s.Citizens, m, false)
				}
			}
		}
	}

	s.Trends = engine.UpdateCulturalTrends(s.Trends, s.Citizens, tick)
}

// spontaneousEvent fires a random non-divine collective event.
func (s *Simulation) spontaneousEvent(tick uint64) {
	// Disasters and miracles are reserved for divine injection; the world
	// generates the social ones on its own.
	organic := []society.EventType{
		society.EventCelebration, society.EventCrisis,
		society.EventSchism, society.EventReform,
	}
	t := organic[s.Rnd.Intn(len(organic))]
	s.applyEvent(t, s.Citizens, nil, false)
}

func (s *Simulation) report(tick uint64) {
	var mood, stress float64
	believers := 0
	for _, c := range s.Citizens {
		mood += c.State.Mood
		stress += c.State.Stress
		if c.State.TrustDivine > 0.5 {
			believers++
		}
	}
	n := float64(len(s.Citizens))
	if n == 0 {
		n = 1
	}

	slog.Info("world report",
		"world", s.World.ID,
		"tick", tick,
		"population", len(s.Citizens),
		"believers", believers,
		"relationships", len(s.Relationships),
		"movements", len(s.Movements),
		"instability", s.World.Instability,
		"trend", s.World.InstabilityTrend,
		"avg_mood", mood/n,
		"avg_stress", stress/n,
	)
}

// Runner drives Step on a wall-clock interval until stopped.
type Runner struct {
	Sim      *Simulation
	Interval time.Duration
	Speed    float64

	stop chan struct{}
}

// NewRunner wraps a simulation in a real-time loop.
func NewRunner(s *Simulation, interval time.Duration) *Runner {
	return &Runner{
		Sim:      s,
		Interval: interval,
		Speed:    1.0,
		stop:     make(chan struct{}),
	}
}

// Run blocks, stepping the world until Stop is called.
func (r *Runner) Run() {
	slog.Info("simulation loop started",
		"world", r.Sim.World.ID, "interval", r.Interval, "speed", r.Speed)

	for {
		select {
		case <-r.stop:
			slog.Info("simulation loop stopped",
				"world", r.Sim.World.ID, "tick", r.Sim.World.Tick)
			return
		default:
		}

		if r.Speed <= 0 {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()
		r.Sim.Step()

		if tick := r.Sim.World.Tick; tick%SaveTicks == 0 {
			if err := r.Sim.Save(); err != nil {
				slog.Error("periodic save failed", "tick", tick, "error", err)
			}
		}

		elapsed := time.Since(start)
		target := time.Duration(float64(r.Interval) / r.Speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}
}

// Stop halts the loop after the current tick.
func (r *Runner) Stop() {
	close(r.stop)
}
