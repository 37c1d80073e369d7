// Immutable intervention records. Each is created once with its inputs
// and computed outcomes and never mutated afterward.
package society

import (
	"github.com/google/uuid"

	"github.com/talgya/demiurge/internal/citizen"
)

// WhisperTone is the register of a private divine whisper.
type WhisperTone string

const (
	ToneComforting  WhisperTone = "comforting"
	ToneCommanding  WhisperTone = "commanding"
	ToneCryptic     WhisperTone = "cryptic"
	ToneQuestioning WhisperTone = "questioning"
	ToneLoving      WhisperTone = "loving"
	ToneWarning     WhisperTone = "warning"
)

// Reception classifies how a citizen took a whisper.
type Reception string

const (
	ReceptionAccepted       Reception = "accepted"
	ReceptionQuestioned     Reception = "questioned"
	ReceptionIgnored        Reception = "ignored"
	ReceptionResisted       Reception = "resisted"
	ReceptionMisinterpreted Reception = "misinterpreted"
	ReceptionShared         Reception = "shared"
)

// Whisper records a single private intervention and its outcome.
type Whisper struct {
	ID        uuid.UUID   `json:"id"`
	WorldID   uuid.UUID   `json:"world_id"`
	CitizenID uuid.UUID   `json:"citizen_id"`
	Content   string      `json:"content"`
	Tone      WhisperTone `json:"tone"`

	Reception   Reception `json:"reception"`
	Receptivity float64   `json:"receptivity"`
	Tick        uint64    `json:"tick"`
}

// ManifestIntensity is how loudly the divine shows itself.
type ManifestIntensity string

const (
	IntensitySubtle       ManifestIntensity = "subtle"
	IntensityNotable      ManifestIntensity = "notable"
	IntensityUndeniable   ManifestIntensity = "undeniable"
	IntensityOverwhelming ManifestIntensity = "overwhelming"
)

// TargetAudience selects the cohort a manifestation reaches.
type TargetAudience string

const (
	AudienceAll       TargetAudience = "all"
	AudienceBelievers TargetAudience = "believers"
	AudienceSkeptics  TargetAudience = "skeptics"
	AudienceSuffering TargetAudience = "suffering"
)

// Reaction classifies a citizen's response to a public manifestation.
type Reaction string

const (
	ReactWorship    Reaction = "worship"
	ReactAwe        Reaction = "awe"
	ReactFear       Reaction = "fear"
	ReactDenial     Reaction = "denial"
	ReactSkepticism Reaction = "skepticism"
	ReactAnger      Reaction = "anger"
	ReactEcstasy    Reaction = "ecstasy"
	ReactDespair    Reaction = "despair"
)

// CitizenReaction is one citizen's computed response to a manifestation.
type CitizenReaction struct {
	CitizenID   uuid.UUID          `json:"citizen_id"`
	Reaction    Reaction           `json:"reaction"`
	Intensity   float64            `json:"intensity"`
	Delta       citizen.StateDelta `json:"delta"`
	BeliefShift float64            `json:"belief_shift"`
}

// Manifestation records a single public intervention and its outcomes.
type Manifestation struct {
	ID        uuid.UUID         `json:"id"`
	WorldID   uuid.UUID         `json:"world_id"`
	Kind      string            `json:"kind"`
	Intensity ManifestIntensity `json:"intensity"`
	Content   string            `json:"content"`
	Audience  TargetAudience    `json:"audience"`

	Reactions         []CitizenReaction `json:"reactions"`
	DominantReaction  Reaction          `json:"dominant_reaction"`
	InstabilityBefore float64           `json:"instability_before"`
	InstabilityAfter  float64           `json:"instability_after"`
	Tick              uint64            `json:"tick"`
}

// EventType categorizes a collective event.
type EventType string

const (
	EventCelebration EventType = "celebration"
	EventCrisis      EventType = "crisis"
	EventDisaster    EventType = "disaster"
	EventMiracle     EventType = "miracle"
	EventRevelation  EventType = "revelation"
	EventSchism      EventType = "schism"
	EventReform      EventType = "reform"
)

// EventTypes lists every collective event type in a stable order.
var EventTypes = []EventType{
	EventCelebration, EventCrisis, EventDisaster, EventMiracle,
	EventRevelation, EventSchism, EventReform,
}

// CollectiveEvent records an emergent or injected population-level
// happening and which citizens it touched.
type CollectiveEvent struct {
	ID          uuid.UUID   `json:"id"`
	WorldID     uuid.UUID   `json:"world_id"`
	Type        EventType   `json:"type"`
	Description string      `json:"description"`
	AffectedIDs []uuid.UUID `json:"affected_ids"`
	IsDivine    bool        `json:"is_divine"`
	Tick        uint64      `json:"tick"`
}
