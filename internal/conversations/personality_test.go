package conversations

import (
	"fmt"
	"testing"

	"github.com/GoMudEngine/npctalk/internal/world"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestPersonalityForIsDeterministic(t *testing.T) {
	for i := 0; i < 32; i++ {
		id := uuid.New()
		first := PersonalityFor(id)
		require.Equal(t, first, PersonalityFor(id))
		require.GreaterOrEqual(t, int(first), 0)
		require.Less(t, int(first), int(personalityCount))
	}
}

func TestPersonalityForCoversTheSet(t *testing.T) {
	seen := map[Personality]bool{}
	for i := 0; i < 2000 && len(seen) < int(personalityCount); i++ {
		seen[PersonalityFor(uuid.New())] = true
	}
	require.Len(t, seen, int(personalityCount))
}

func TestPersonalityStrings(t *testing.T) {
	require.Equal(t, `GRUMPY`, PersonalityGrumpy.String())
	require.Equal(t, `UNKNOWN`, Personality(99).String())
	require.NotEmpty(t, PersonalityJester.PromptDescription())
}

func TestReputationScore(t *testing.T) {
	tests := []struct {
		name     string
		counters map[world.ReputationType]int
		expected int
	}{
		{`empty`, map[world.ReputationType]int{}, 0},
		{`nil`, nil, 0},
		{
			`mixed history`,
			map[world.ReputationType]int{
				world.RepMajorPositive: 2,
				world.RepMinorPositive: 3,
				world.RepMinorNegative: 1,
				world.RepTrading:       4,
			},
			16,
		},
		{
			`hostile`,
			map[world.ReputationType]int{
				world.RepMajorNegative: 3,
				world.RepMinorNegative: 5,
			},
			-20,
		},
		{
			`unrecognized type counts at face value`,
			map[world.ReputationType]int{
				world.ReputationType(`festival`): 7,
			},
			7,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, ReputationScore(test.counters))
		})
	}
}

func TestBuildPreambleContent(t *testing.T) {
	snapshot := world.Snapshot{TimeOfDay: `Evening`, Weather: `Clear`, Biome: `Plains`}

	prompt := BuildPreamble(snapshot, 16, PersonalityGrumpy, `Fletcher`, `Ann`, `Aldous`)

	require.Contains(t, prompt, `- Current time: Evening`)
	require.Contains(t, prompt, `- Current weather: Clear`)
	require.Contains(t, prompt, `- Current biome: Plains`)
	require.Contains(t, prompt, `- Name: Ann`)
	require.Contains(t, prompt, fmt.Sprintf(`: %d`, 16))
	require.Contains(t, prompt, `- Name: Aldous`)
	require.Contains(t, prompt, `- Profession: Fletcher`)
	require.Contains(t, prompt, PersonalityGrumpy.PromptDescription())

	// The grammar lessons must survive any template edits.
	require.Contains(t, prompt, `TRADE[["24 item:emerald"],["1 item:arrow"]]ENDTRADE`)
	require.Contains(t, prompt, `ACTION:{action}`)
	require.Contains(t, prompt, `SHAKE_HEAD`)
}
