package conversations

import (
	"encoding/binary"
	"math/rand"

	"github.com/google/uuid"
)

// Personality is one of a fixed set of descriptors. Assignment is a pure
// function of entity identity: not persisted, recomputed each run.
type Personality int

const (
	PersonalityElder Personality = iota
	PersonalityOptimist
	PersonalityGrumpy
	PersonalityBarterer
	PersonalityJester
	PersonalitySerious
	PersonalityEmpath

	personalityCount
)

var personalityNames = map[Personality]string{
	PersonalityElder:    `ELDER`,
	PersonalityOptimist: `OPTIMIST`,
	PersonalityGrumpy:   `GRUMPY`,
	PersonalityBarterer: `BARTERER`,
	PersonalityJester:   `JESTER`,
	PersonalitySerious:  `SERIOUS`,
	PersonalityEmpath:   `EMPATH`,
}

// Static prompt fragments, one per personality.
var personalityDescriptions = map[Personality]string{
	PersonalityElder:    `As an elder of the village, you have seen and lived through a great many things over the years.`,
	PersonalityOptimist: `You are an optimist who always tries to see the bright side of things.`,
	PersonalityGrumpy:   `You are a grumpy soul who is not afraid to speak your mind.`,
	PersonalityBarterer: `You are a shrewd trader with years of haggling experience.`,
	PersonalityJester:   `You love to tell funny jokes and are generally friendly toward the player.`,
	PersonalitySerious:  `You are serious and to the point, with little patience for small talk.`,
	PersonalityEmpath:   `You are a kind soul who empathizes with the situations of others.`,
}

func (p Personality) String() string {
	if name, ok := personalityNames[p]; ok {
		return name
	}
	return `UNKNOWN`
}

func (p Personality) PromptDescription() string {
	return personalityDescriptions[p]
}

// PersonalityFor derives a personality from a stable entity identifier
// via a reproducible PRNG seeded with the id's high 64 bits. The same id
// always yields the same personality within a run.
func PersonalityFor(entityId uuid.UUID) Personality {
	seed := int64(binary.BigEndian.Uint64(entityId[:8]))
	rnd := rand.New(rand.NewSource(seed))
	return Personality(rnd.Intn(int(personalityCount)))
}
