// Package llm holds the completion-backend abstraction: the message wire
// types, the producer contract, and its error taxonomy.
package llm

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Role string

const (
	RoleSystem    Role = `system`
	RoleUser      Role = `user`
	RoleAssistant Role = `assistant`
)

// Message is one immutable role/content pair in a conversation history.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is the slice of session state a producer needs: the full
// ordered history (already including the caller's latest turn) and a
// stable identity for caller correlation.
type Conversation interface {
	Messages() []Message
	ActorID() uuid.UUID
}

// Producer turns a conversation history into exactly one reply. A call may
// suspend on network I/O; failures are *ProducerError, fatal to the turn
// but never to the process.
type Producer interface {
	ProduceNextMessage(ctx context.Context, conv Conversation) (string, error)
}

type ProducerErrorKind int

const (
	ErrorNetwork ProducerErrorKind = iota
	ErrorAuth
	ErrorRateLimit
	ErrorBadResponse
)

func (k ProducerErrorKind) String() string {
	switch k {
	case ErrorNetwork:
		return `network`
	case ErrorAuth:
		return `auth`
	case ErrorRateLimit:
		return `rate-limit`
	case ErrorBadResponse:
		return `bad-response`
	}
	return `unknown`
}

type ProducerError struct {
	Kind ProducerErrorKind
	Err  error
}

func (e *ProducerError) Error() string {
	return fmt.Sprintf(`producer %s failure: %v`, e.Kind, e.Err)
}

func (e *ProducerError) Unwrap() error {
	return e.Err
}

func producerErrorf(kind ProducerErrorKind, format string, args ...any) *ProducerError {
	return &ProducerError{Kind: kind, Err: fmt.Errorf(format, args...)}
}
