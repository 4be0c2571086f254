package main

import (
	"fmt"

	"github.com/GoMudEngine/npctalk/internal/directives"
	"github.com/GoMudEngine/npctalk/internal/world"
	"github.com/google/uuid"
)

// A tiny in-memory world so the core can be exercised from a terminal.

type demoActor struct {
	id   uuid.UUID
	name string
	pos  world.Position
}

func (a *demoActor) ID() uuid.UUID            { return a.id }
func (a *demoActor) Name() string             { return a.name }
func (a *demoActor) Position() world.Position { return a.pos }

type demoNPC struct {
	id         uuid.UUID
	name       string
	profession string
	pos        world.Position
	reputation map[world.ReputationType]int
	aware      bool
}

func (n *demoNPC) ID() uuid.UUID            { return n.id }
func (n *demoNPC) Name() string             { return n.name }
func (n *demoNPC) Profession() string       { return n.profession }
func (n *demoNPC) Position() world.Position { return n.pos }

func (n *demoNPC) Reputation(actor uuid.UUID) map[world.ReputationType]int {
	return n.reputation
}

func (n *demoNPC) SetAware(aware bool) { n.aware = aware }
func (n *demoNPC) ResetOffers()        {}

type demoEnvironment struct{}

func (demoEnvironment) Snapshot(at world.Position) world.Snapshot {
	return world.Snapshot{
		TimeOfDay: `Day`,
		Weather:   `Sunny`,
		Biome:     `Plains`,
	}
}

// consoleExecutor prints the finished turn and bumps the entity's trading
// reputation whenever a trade was offered.
type consoleExecutor struct{}

func (consoleExecutor) Apply(npc world.NPC, actor world.Actor, text string, actions []directives.Action) {
	if text != `` {
		fmt.Printf("%s says: %s\n", npc.Name(), text)
	}

	for _, action := range actions {
		switch a := action.(type) {
		case directives.TradeAction:
			fmt.Printf("%s offers a trade: %s for %d %s\n", npc.Name(), describeStacks(a.Offered), a.Requested.Quantity, a.Requested.ItemID)
			if n, ok := npc.(*demoNPC); ok {
				n.reputation[world.RepTrading]++
			}
		case directives.EmoteAction:
			fmt.Printf("* %s performs %s\n", npc.Name(), a.Kind)
		}
	}
}

func describeStacks(stacks []directives.ItemStack) string {
	out := ``
	for i, s := range stacks {
		if i > 0 {
			out += ` + `
		}
		out += fmt.Sprintf(`%d %s`, s.Quantity, s.ItemID)
	}
	return out
}

func demoVillage() []*demoNPC {
	return []*demoNPC{
		{
			id:         uuid.New(),
			name:       `Aldous`,
			profession: `Fletcher`,
			pos:        world.Position{X: 3, Y: 0, Z: 2, Partition: `overworld`},
			reputation: map[world.ReputationType]int{},
		},
		{
			id:         uuid.New(),
			name:       `Mira`,
			profession: `Librarian`,
			pos:        world.Position{X: -4, Y: 0, Z: 6, Partition: `overworld`},
			reputation: map[world.ReputationType]int{},
		},
	}
}
