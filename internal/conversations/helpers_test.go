package conversations

import (
	"context"
	"sync"

	"github.com/GoMudEngine/npctalk/internal/configs"
	"github.com/GoMudEngine/npctalk/internal/directives"
	"github.com/GoMudEngine/npctalk/internal/llm"
	"github.com/GoMudEngine/npctalk/internal/world"
	"github.com/google/uuid"
)

type testActor struct {
	id   uuid.UUID
	name string
	pos  world.Position
}

func (a *testActor) ID() uuid.UUID            { return a.id }
func (a *testActor) Name() string             { return a.name }
func (a *testActor) Position() world.Position { return a.pos }

type testNPC struct {
	id         uuid.UUID
	name       string
	profession string
	pos        world.Position
	reputation map[world.ReputationType]int

	mu         sync.Mutex
	aware      bool
	resetCalls int
	awareCalls []bool
}

func (n *testNPC) ID() uuid.UUID            { return n.id }
func (n *testNPC) Name() string             { return n.name }
func (n *testNPC) Profession() string       { return n.profession }
func (n *testNPC) Position() world.Position { return n.pos }

func (n *testNPC) Reputation(actor uuid.UUID) map[world.ReputationType]int {
	return n.reputation
}

func (n *testNPC) SetAware(aware bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.aware = aware
	n.awareCalls = append(n.awareCalls, aware)
}

func (n *testNPC) ResetOffers() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resetCalls++
}

func (n *testNPC) resetOfferCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.resetCalls
}

func (n *testNPC) awareSequence() []bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]bool, len(n.awareCalls))
	copy(out, n.awareCalls)
	return out
}

type testEnvironment struct{}

func (testEnvironment) Snapshot(at world.Position) world.Snapshot {
	return world.Snapshot{TimeOfDay: `Night`, Weather: `Rainy`, Biome: `Taiga`}
}

// recordExecutor captures applied turns.
type recordExecutor struct {
	mu      sync.Mutex
	applied []appliedTurn
}

type appliedTurn struct {
	text    string
	actions []directives.Action
}

func (e *recordExecutor) Apply(npc world.NPC, actor world.Actor, text string, actions []directives.Action) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.applied = append(e.applied, appliedTurn{text: text, actions: actions})
}

func (e *recordExecutor) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.applied)
}

func (e *recordExecutor) last() appliedTurn {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.applied[len(e.applied)-1]
}

// scriptedProducer returns a fixed reply or error.
type scriptedProducer struct {
	reply string
	err   error
}

func (p *scriptedProducer) ProduceNextMessage(ctx context.Context, conv llm.Conversation) (string, error) {
	if p.err != nil {
		return ``, p.err
	}
	return p.reply, nil
}

// blockingProducer waits until released before answering.
type blockingProducer struct {
	release chan struct{}
	reply   string
}

func (p *blockingProducer) ProduceNextMessage(ctx context.Context, conv llm.Conversation) (string, error) {
	<-p.release
	return p.reply, nil
}

func testConfig() configs.Config {
	cfg := configs.Config{}
	cfg.Validate()
	return cfg
}

func newTestManager(producer llm.Producer) (*Manager, *recordExecutor) {
	executor := &recordExecutor{}
	m := NewManager(testConfig(), producer, testEnvironment{}, world.SyncQueue{}, executor)
	return m, executor
}

func newTestActor(name string) *testActor {
	return &testActor{
		id:   uuid.New(),
		name: name,
		pos:  world.Position{Partition: `overworld`},
	}
}

func newTestNPC(name string) *testNPC {
	return &testNPC{
		id:         uuid.New(),
		name:       name,
		profession: `Farmer`,
		pos:        world.Position{Partition: `overworld`},
		reputation: map[world.ReputationType]int{},
		aware:      true,
	}
}
