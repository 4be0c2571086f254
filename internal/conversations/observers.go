package conversations

import (
	"fmt"

	"github.com/GoMudEngine/npctalk/internal/llm"
	"github.com/GoMudEngine/npctalk/internal/mudlog"
)

// Observer receives session lifecycle and message notifications. Calls
// arrive in order on a single dispatch goroutine, off the world-mutation
// context; implementations should return quickly so they don't hold up
// later events.
type Observer interface {
	ConversationStarted(c *Conversation)
	ConversationEnded(c *Conversation)
	ConversationMessage(c *Conversation, msg llm.Message)
}

// AuditLogger writes every session event to the log. Attached by the
// Manager when log-conversations is enabled.
type AuditLogger struct{}

func (AuditLogger) ConversationStarted(c *Conversation) {
	mudlog.Info("Conversation", "started", fmt.Sprintf("%s <-> %s", c.Actor().Name(), c.NPC().Name()))
}

func (AuditLogger) ConversationEnded(c *Conversation) {
	mudlog.Info("Conversation", "ended", fmt.Sprintf("%s <-> %s", c.Actor().Name(), c.NPC().Name()))
}

func (AuditLogger) ConversationMessage(c *Conversation, msg llm.Message) {
	mudlog.Info("Conversation",
		"message", fmt.Sprintf("%s <-> %s", c.Actor().Name(), c.NPC().Name()),
		"role", string(msg.Role),
		"content", msg.Content)
}
