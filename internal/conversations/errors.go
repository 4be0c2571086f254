package conversations

import "github.com/pkg/errors"

// Rejections, not failures: these end a request, never the process.
var (
	// ErrAlreadyEngaged - the actor already has an active session.
	ErrAlreadyEngaged = errors.New(`actor is already in a conversation`)
	// ErrEntityBusy - the entity is engaged with a different actor.
	ErrEntityBusy = errors.New(`entity is already in a conversation`)
	// ErrNoProfession - the entity has no profession to role-play.
	ErrNoProfession = errors.New(`entity has no profession`)
	// ErrPendingResponse - a response for this session is still in flight.
	ErrPendingResponse = errors.New(`a response is already pending`)
	// ErrNoSession - the actor has no active session.
	ErrNoSession = errors.New(`no active conversation`)
)
