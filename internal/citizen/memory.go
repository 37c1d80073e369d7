// Citizen memory stream. Ordinary memories fade and get pruned; divine
// memories have a zero decay rate and are never removed, whatever their
// importance.
package citizen

import (
	"sort"

	"github.com/talgya/demiurge/internal/tuning"
)

// MemoryType classifies how a memory decays.
type MemoryType string

const (
	MemoryShortTerm MemoryType = "short_term"
	MemoryLongTerm  MemoryType = "long_term"
	MemoryDivine    MemoryType = "divine"
)

// Memory records a notable experience in a citizen's life.
type Memory struct {
	Type            MemoryType `json:"type"`
	Content         string     `json:"content"`
	EmotionalWeight float64    `json:"emotional_weight"` // -1–1
	Importance      float64    `json:"importance"`       // 0–1
	DecayRate       float64    `json:"decay_rate"`       // importance lost per tick; 0 for divine
	Tick            uint64     `json:"tick"`
}

// NewMemory builds a memory with the decay rate implied by its type.
func NewMemory(t MemoryType, content string, weight, importance float64, tick uint64) Memory {
	m := Memory{
		Type:            t,
		Content:         content,
		EmotionalWeight: Clamp(weight, -1, 1),
		Importance:      Clamp01(importance),
		Tick:            tick,
	}
	switch t {
	case MemoryShortTerm:
		m.DecayRate = tuning.ShortTermDecayRate
	case MemoryLongTerm:
		m.DecayRate = tuning.LongTermDecayRate
	case MemoryDivine:
		m.DecayRate = tuning.DivineMemoryDecay
	}
	return m
}

// Record appends a memory to the citizen's stream. Divine memories always
// land with a zero decay rate regardless of what the caller set. When the
// stream is full, the least important non-divine memory makes room.
func Record(c *Citizen, m Memory) {
	if m.Type == MemoryDivine {
		m.DecayRate = tuning.DivineMemoryDecay
	}

	if len(c.Memories) < tuning.MaxMemories {
		c.Memories = append(c.Memories, m)
		return
	}

	minIdx := -1
	for i := range c.Memories {
		if c.Memories[i].Type == MemoryDivine {
			continue
		}
		if minIdx == -1 || c.Memories[i].Importance < c.Memories[minIdx].Importance {
			minIdx = i
		}
	}
	if minIdx == -1 {
		// Stream is all divine memories; it grows past the cap.
		c.Memories = append(c.Memories, m)
		return
	}
	if m.Type == MemoryDivine || m.Importance > c.Memories[minIdx].Importance {
		c.Memories[minIdx] = m
	}
}

// DecayMemories ages the stream by the elapsed ticks and prunes memories
// whose importance has run out. Divine memories are exempt from both.
func DecayMemories(c *Citizen, ticks uint64) {
	if ticks == 0 {
		return
	}
	n := 0
	for _, m := range c.Memories {
		if m.Type != MemoryDivine {
			m.Importance -= m.DecayRate * float64(ticks)
			if m.Importance <= 0 {
				continue
			}
		}
		c.Memories[n] = m
		n++
	}
	c.Memories = c.Memories[:n]
}

// DivineMemories returns the citizen's divine-interaction memories,
// newest first.
func DivineMemories(c *Citizen) []Memory {
	var out []Memory
	for _, m := range c.Memories {
		if m.Type == MemoryDivine {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tick > out[j].Tick })
	return out
}
