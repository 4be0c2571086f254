// Package conversations is the dialogue core: per-pair sessions, the
// registry that enforces one session per participant, and the turn
// orchestration against the completion backend.
package conversations

import (
	"sync"
	"time"

	"github.com/GoMudEngine/npctalk/internal/llm"
	"github.com/GoMudEngine/npctalk/internal/world"
	"github.com/google/uuid"
)

// Conversation is one active dialogue between exactly one actor and one
// entity. The first message is always a synthesized preamble.
type Conversation struct {
	actor world.Actor
	npc   world.NPC

	mu              sync.Mutex
	messages        []llm.Message
	lastActivity    time.Time
	pendingResponse bool
	ended           bool

	timeout       time.Duration
	radiusSquared float64

	buildPreamble func() llm.Message
	onMessage     func(*Conversation, llm.Message)
	now           func() time.Time
}

func newConversation(actor world.Actor, npc world.NPC, timeout time.Duration, radius float64, buildPreamble func() llm.Message, onMessage func(*Conversation, llm.Message), now func() time.Time) *Conversation {

	c := &Conversation{
		actor:         actor,
		npc:           npc,
		timeout:       timeout,
		radiusSquared: radius * radius,
		buildPreamble: buildPreamble,
		onMessage:     onMessage,
		now:           now,
	}

	// The preamble goes in directly, before any observer could care.
	c.messages = append(c.messages, buildPreamble())
	c.lastActivity = now()

	return c
}

func (c *Conversation) Actor() world.Actor { return c.actor }
func (c *Conversation) NPC() world.NPC     { return c.npc }

// ActorID satisfies llm.Conversation; it doubles as the caller-correlation
// identifier sent to the backend.
func (c *Conversation) ActorID() uuid.UUID {
	return c.actor.ID()
}

// Messages returns a copy of the ordered history.
func (c *Conversation) Messages() []llm.Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]llm.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Conversation) MessageCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// AddMessage appends, stamps activity, and notifies observers. The
// notification only queues the event, so messages reach observers in the
// order they were added.
func (c *Conversation) AddMessage(role llm.Role, content string) {
	msg := llm.Message{Role: role, Content: content}

	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.lastActivity = c.now()
	notify := c.onMessage
	c.mu.Unlock()

	if notify != nil {
		notify(c, msg)
	}
}

// RemoveLastMessage pops the most recent message; no-op on an empty log.
// Used to roll back a user turn after a failed producer call.
func (c *Conversation) RemoveLastMessage() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.messages) == 0 {
		return
	}
	c.messages = c.messages[:len(c.messages)-1]
}

// Reset clears the log, reinserts a freshly generated preamble, and
// resets the activity clock.
func (c *Conversation) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = c.messages[:0]
	c.messages = append(c.messages, c.buildPreamble())
	c.lastActivity = c.now()
}

// HasExpired is true once more than the idle timeout has passed since the
// last message.
func (c *Conversation) HasExpired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now().Sub(c.lastActivity) > c.timeout
}

// HasPlayerLeft is true when the participants are in different world
// partitions, or further apart than the conversation radius. The check
// stays in squared space.
func (c *Conversation) HasPlayerLeft() bool {
	actorPos := c.actor.Position()
	npcPos := c.npc.Position()

	if actorPos.Partition != npcPos.Partition {
		return true
	}

	return actorPos.DistanceSquared(npcPos) > c.radiusSquared
}

func (c *Conversation) Ended() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ended
}

func (c *Conversation) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingResponse
}

// beginTurn claims the single in-flight slot; false means a response is
// already outstanding and this turn must be rejected, not queued.
func (c *Conversation) beginTurn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pendingResponse || c.ended {
		return false
	}
	c.pendingResponse = true
	return true
}

func (c *Conversation) endTurn() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingResponse = false
}

// markEnded flips the ended flag; false if it already was.
func (c *Conversation) markEnded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ended {
		return false
	}
	c.ended = true
	return true
}
