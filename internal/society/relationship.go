// Package society holds the shared social structures of a world:
// pairwise relationships, cultural movements and trends, the world record
// itself, and the immutable intervention records.
package society

import "github.com/google/uuid"

// RelationshipType classifies a directed social bond.
type RelationshipType string

const (
	RelFriend       RelationshipType = "friend"
	RelFamily       RelationshipType = "family"
	RelRival        RelationshipType = "rival"
	RelAcquaintance RelationshipType = "acquaintance"
	RelEnemy        RelationshipType = "enemy"
)

// Relationship is an ordered (citizen, target) bond. Strength decides
// whether the bond survives; trust decides what kind of bond it is.
type Relationship struct {
	CitizenID       uuid.UUID        `json:"citizen_id"`
	TargetID        uuid.UUID        `json:"target_id"`
	Type            RelationshipType `json:"type"`
	Strength        float64          `json:"strength"` // 0–1
	Trust           float64          `json:"trust"`    // -1–1
	FormedTick      uint64           `json:"formed_tick"`
	LastInteraction uint64           `json:"last_interaction"`
}

// Key identifies a relationship by its ordered pair.
type Key struct {
	CitizenID uuid.UUID
	TargetID  uuid.UUID
}

// Key returns the relationship's ordered-pair key.
func (r Relationship) Key() Key {
	return Key{CitizenID: r.CitizenID, TargetID: r.TargetID}
}
