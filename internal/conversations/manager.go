package conversations

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/GoMudEngine/npctalk/internal/configs"
	"github.com/GoMudEngine/npctalk/internal/directives"
	"github.com/GoMudEngine/npctalk/internal/llm"
	"github.com/GoMudEngine/npctalk/internal/mudlog"
	"github.com/GoMudEngine/npctalk/internal/world"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
)

const (
	personalityCacheSize = 512
	eventQueueSize       = 256
)

// Manager is the session registry and turn orchestrator. It enforces at
// most one session per actor and per entity, runs the expiry sweep, and
// marshals finished turns back onto the world-mutation context.
type Manager struct {
	mu       sync.RWMutex
	byActor  map[uuid.UUID]*Conversation
	byEntity map[uuid.UUID]*Conversation

	cfg       configs.Config
	producer  llm.Producer
	env       world.Environment
	queue     world.Queue
	executor  world.Executor
	observers []Observer

	personalityCache *lru.Cache[uuid.UUID, Personality]

	events chan func()

	now func() time.Time

	shutdownChan chan struct{}
	shutdownOnce sync.Once
}

func NewManager(cfg configs.Config, producer llm.Producer, env world.Environment, queue world.Queue, executor world.Executor, observers ...Observer) *Manager {

	if bool(cfg.LogConversations) {
		observers = append(observers, AuditLogger{})
	}

	cache, _ := lru.New[uuid.UUID, Personality](personalityCacheSize)

	m := &Manager{
		byActor:          map[uuid.UUID]*Conversation{},
		byEntity:         map[uuid.UUID]*Conversation{},
		cfg:              cfg,
		producer:         producer,
		env:              env,
		queue:            queue,
		executor:         executor,
		observers:        observers,
		personalityCache: cache,
		events:           make(chan func(), eventQueueSize),
		now:              time.Now,
		shutdownChan:     make(chan struct{}),
	}

	go m.notifyLoop()
	go m.sweep(time.Duration(cfg.SweepIntervalSecs) * time.Second)

	return m
}

// GetByActor returns the actor's active session, or nil.
func (m *Manager) GetByActor(actorId uuid.UUID) *Conversation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byActor[actorId]
}

// GetByEntity returns the entity's active session, or nil.
func (m *Manager) GetByEntity(entityId uuid.UUID) *Conversation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byEntity[entityId]
}

// StartConversation engages an actor with an entity. If the actor already
// has a session it is returned alongside ErrAlreadyEngaged; an entity
// engaged elsewhere yields ErrEntityBusy. A second session is never
// created for an engaged participant.
func (m *Manager) StartConversation(actor world.Actor, npc world.NPC) (*Conversation, error) {

	if npc.Profession() == `` {
		return nil, ErrNoProfession
	}

	m.mu.Lock()

	if existing := m.byActor[actor.ID()]; existing != nil {
		m.mu.Unlock()
		return existing, ErrAlreadyEngaged
	}

	if m.byEntity[npc.ID()] != nil {
		m.mu.Unlock()
		return nil, ErrEntityBusy
	}

	conv := newConversation(
		actor,
		npc,
		time.Duration(m.cfg.ConversationTimeoutSecs)*time.Second,
		float64(m.cfg.ConversationRadius),
		func() llm.Message { return m.buildPreamble(actor, npc) },
		m.notifyMessage,
		m.now,
	)

	m.byActor[actor.ID()] = conv
	m.byEntity[npc.ID()] = conv
	m.mu.Unlock()

	m.queue.Do(func() {
		npc.SetAware(false)
	})

	mudlog.Info("Conversation", "start", fmt.Sprintf("%s engaged %s", actor.Name(), npc.Name()))

	m.dispatch(func() {
		for _, o := range m.observers {
			o.ConversationStarted(conv)
		}
	})

	return conv, nil
}

// EndConversation removes both index entries and restores the entity to an
// available state with cleared offers. Idempotent on repeated calls; safe
// with a turn still in flight (its result is discarded on arrival).
func (m *Manager) EndConversation(conv *Conversation) {
	if conv == nil || !conv.markEnded() {
		return
	}

	m.mu.Lock()
	delete(m.byActor, conv.Actor().ID())
	delete(m.byEntity, conv.NPC().ID())
	m.mu.Unlock()

	npc := conv.NPC()
	m.queue.Do(func() {
		npc.ResetOffers()
		npc.SetAware(true)
	})

	mudlog.Info("Conversation", "end", fmt.Sprintf("%s <-> %s", conv.Actor().Name(), conv.NPC().Name()))

	m.dispatch(func() {
		for _, o := range m.observers {
			o.ConversationEnded(conv)
		}
	})
}

// HandleMessage runs one full turn: append the actor's message, call the
// producer (may suspend on network I/O), parse directives, then apply the
// result on the world-mutation context. The pendingResponse slot is
// released on every path out.
func (m *Manager) HandleMessage(ctx context.Context, actor world.Actor, text string) error {

	conv := m.GetByActor(actor.ID())
	if conv == nil {
		return ErrNoSession
	}

	if !conv.beginTurn() {
		return ErrPendingResponse
	}
	defer conv.endTurn()

	conv.AddMessage(llm.RoleUser, text)

	reply, err := m.producer.ProduceNextMessage(ctx, conv)
	if err != nil {
		// Roll back the user turn so a retry reproduces a clean history,
		// then re-raise for upstream logging.
		conv.RemoveLastMessage()
		mudlog.Warn("Conversation", "producer_error", err.Error())
		return errors.Wrap(err, `producing reply`)
	}

	// The raw reply (directives included) goes into the history so the
	// model can refer back to its own offers in later turns.
	conv.AddMessage(llm.RoleAssistant, reply)

	displayText, actions := directives.Parse(reply)

	m.queue.Do(func() {
		if conv.Ended() {
			// Session ended while the call was in flight; stale turn.
			mudlog.Debug("Conversation", "stale_turn", fmt.Sprintf("%s <-> %s", conv.Actor().Name(), conv.NPC().Name()))
			return
		}
		m.executor.Apply(conv.NPC(), conv.Actor(), displayText, actions)
	})

	return nil
}

// sweep periodically ends sessions whose actor wandered off or that have
// gone idle past the timeout.
func (m *Manager) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.shutdownChan:
			return
		case <-ticker.C:
			m.mu.RLock()
			active := make([]*Conversation, 0, len(m.byActor))
			for _, c := range m.byActor {
				active = append(active, c)
			}
			m.mu.RUnlock()

			for _, c := range active {
				if c.HasExpired() || c.HasPlayerLeft() {
					m.EndConversation(c)
				}
			}
		}
	}
}

// Shutdown stops the sweep and ends every active session.
func (m *Manager) Shutdown() {
	m.shutdownOnce.Do(func() {
		close(m.shutdownChan)

		m.mu.RLock()
		active := make([]*Conversation, 0, len(m.byActor))
		for _, c := range m.byActor {
			active = append(active, c)
		}
		m.mu.RUnlock()

		for _, c := range active {
			m.EndConversation(c)
		}
	})
}

func (m *Manager) notifyMessage(conv *Conversation, msg llm.Message) {
	m.dispatch(func() {
		for _, o := range m.observers {
			o.ConversationMessage(conv, msg)
		}
	})
}

// dispatch queues an observer notification for the notify loop. Never
// blocks the caller: if the queue is full the event is dropped.
func (m *Manager) dispatch(fn func()) {
	select {
	case m.events <- fn:
	default:
		mudlog.Warn("Conversation", "event_dropped", "observer queue full")
	}
}

// notifyLoop delivers observer notifications one at a time, in the order
// the sessions produced them. On shutdown it drains whatever is already
// queued before exiting.
func (m *Manager) notifyLoop() {
	for {
		select {
		case fn := <-m.events:
			fn()
		case <-m.shutdownChan:
			for {
				select {
				case fn := <-m.events:
					fn()
				default:
					return
				}
			}
		}
	}
}

// personalityFor memoizes the identity-seeded personality lookup.
func (m *Manager) personalityFor(entityId uuid.UUID) Personality {
	if p, ok := m.personalityCache.Get(entityId); ok {
		return p
	}
	p := PersonalityFor(entityId)
	m.personalityCache.Add(entityId, p)
	return p
}

// buildPreamble composes the session's first message from world context,
// reputation, and personality. The preamble-message-type toggle decides
// whether it travels as a system message or a marked user message.
func (m *Manager) buildPreamble(actor world.Actor, npc world.NPC) llm.Message {

	snapshot := m.env.Snapshot(npc.Position())
	personality := m.personalityFor(npc.ID())
	repScore := ReputationScore(npc.Reputation(actor.ID()))

	mudlog.Debug("Conversation", "personality", fmt.Sprintf("%s is %s", npc.Name(), personality))

	prompt := BuildPreamble(snapshot, repScore, personality, npc.Profession(), actor.Name(), npc.Name())

	role := llm.RoleSystem
	if m.cfg.PreambleMessageType == `user` {
		role = llm.RoleUser
		prompt = "[SYSTEM MESSAGE]\n\n" + prompt
	}

	return llm.Message{Role: role, Content: prompt}
}
