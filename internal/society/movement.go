// Cultural movements and trends — the emergent group structures citizens
// form around shared belief stances.
package society

import "github.com/google/uuid"

// MovementStage is a movement's lifecycle stage. Extinct is absorbing:
// there is no outgoing transition, ever.
type MovementStage string

const (
	StageNascent     MovementStage = "nascent"
	StageGrowing     MovementStage = "growing"
	StageMainstream  MovementStage = "mainstream"
	StageDominant    MovementStage = "dominant"
	StageDeclining   MovementStage = "declining"
	StageUnderground MovementStage = "underground"
	StageExtinct     MovementStage = "extinct"
)

// DivineRelation is a movement's posture toward the divine.
type DivineRelation string

const (
	ProDivine  DivineRelation = "pro_divine"
	AntiDivine DivineRelation = "anti_divine"
	Agnostic   DivineRelation = "agnostic"
)

// CoreBelief is a topic-stance pair a movement organizes around.
type CoreBelief struct {
	Topic  string  `json:"topic"`
	Stance float64 `json:"stance"`
}

// MovementEvent is one entry in a movement's history log.
type MovementEvent struct {
	Tick uint64 `json:"tick"`
	Note string `json:"note"`
}

// CulturalMovement is an emergent, stage-progressing group bound by a
// shared belief stance. Movements are never deleted; they can only reach
// the terminal extinct stage.
type CulturalMovement struct {
	ID          uuid.UUID       `json:"id"`
	WorldID     uuid.UUID       `json:"world_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	CoreBeliefs []CoreBelief    `json:"core_beliefs"`
	Stage       MovementStage   `json:"stage"`
	FounderID   uuid.UUID       `json:"founder_id"`
	LeaderIDs   []uuid.UUID     `json:"leader_ids"`
	FollowerIDs []uuid.UUID     `json:"follower_ids"`
	Influence   float64         `json:"influence"` // 0–1
	Relation    DivineRelation  `json:"divine_relation"`
	History     []MovementEvent `json:"history"`
	FoundedTick uint64          `json:"founded_tick"`
}

// CoversTopic reports whether the movement organizes around the topic.
func (m *CulturalMovement) CoversTopic(topic string) bool {
	for _, cb := range m.CoreBeliefs {
		if cb.Topic == topic {
			return true
		}
	}
	return false
}

// Followers returns the follower count.
func (m *CulturalMovement) Followers() int {
	return len(m.FollowerIDs)
}

// Log appends a history entry.
func (m *CulturalMovement) Log(tick uint64, note string) {
	m.History = append(m.History, MovementEvent{Tick: tick, Note: note})
}

// CulturalTrend is a lighter-weight population-interest tracker, created
// and decayed independently of movements.
type CulturalTrend struct {
	Name         string  `json:"name"`
	Topic        string  `json:"topic"`
	Strength     float64 `json:"strength"` // 0–1
	Participants int     `json:"participants"`
	StartedTick  uint64  `json:"started_tick"`
}
