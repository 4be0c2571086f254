// Package world defines the narrow interfaces the conversation core uses
// to talk to the host game: participants, environment facts, and the
// single authoritative context on which world state may be mutated.
package world

import (
	"github.com/GoMudEngine/npctalk/internal/directives"
	"github.com/google/uuid"
)

// Position is a point in some world partition (a world, dimension or
// zone). Participants in different partitions are never "near" each other.
type Position struct {
	X, Y, Z   float64
	Partition string
}

// DistanceSquared stays in squared space so callers can compare against a
// squared radius without a root operation.
func (p Position) DistanceSquared(o Position) float64 {
	dx := p.X - o.X
	dy := p.Y - o.Y
	dz := p.Z - o.Z
	return dx*dx + dy*dy + dz*dz
}

// Snapshot captures the environment facts the prompt builder embeds.
type Snapshot struct {
	TimeOfDay string // e.g. "Day" / "Night"
	Weather   string // e.g. "Sunny" / "Rainy"
	Biome     string
}

// Environment supplies an environment snapshot for a position.
type Environment interface {
	Snapshot(at Position) Snapshot
}

// ReputationType classifies the per-actor counters an entity tracks.
type ReputationType string

const (
	RepMajorPositive ReputationType = `MAJOR_POSITIVE`
	RepMinorPositive ReputationType = `MINOR_POSITIVE`
	RepMinorNegative ReputationType = `MINOR_NEGATIVE`
	RepMajorNegative ReputationType = `MAJOR_NEGATIVE`
	RepTrading       ReputationType = `TRADING`
)

// Actor is the human participant in a session.
type Actor interface {
	ID() uuid.UUID
	Name() string
	Position() Position
}

// NPC is the in-world entity being talked to.
type NPC interface {
	ID() uuid.UUID
	Name() string
	Profession() string
	Position() Position
	// Reputation returns the entity's typed counters toward an actor.
	Reputation(actor uuid.UUID) map[ReputationType]int
	// SetAware toggles the entity's normal self-directed behavior; an
	// engaged entity stops wandering off mid-conversation.
	SetAware(aware bool)
	// ResetOffers clears any accumulated trade-offer state.
	ResetOffers()
}

// Executor applies a finished turn to the world: displaying the reply and
// constructing concrete trade offers / emotes from the parsed actions.
type Executor interface {
	Apply(npc NPC, actor Actor, text string, actions []directives.Action)
}

// Queue marshals work onto the authoritative world-mutation context.
type Queue interface {
	Do(fn func())
}

// SyncQueue runs work inline; callers that are already on the
// authoritative context (single-threaded hosts, tests) use this.
type SyncQueue struct{}

func (SyncQueue) Do(fn func()) { fn() }
