package conversations

import "github.com/GoMudEngine/npctalk/internal/world"

// ReputationScore folds an entity's typed counters into one integer.
// Major events weigh five times a minor one; trading and any unrecognized
// types count at face value.
func ReputationScore(counters map[world.ReputationType]int) int {

	score := 0

	for repType, value := range counters {
		switch repType {
		case world.RepMajorPositive:
			score += value * 5
		case world.RepMinorPositive:
			score += value
		case world.RepMinorNegative:
			score -= value
		case world.RepMajorNegative:
			score -= value * 5
		default:
			score += value
		}
	}

	return score
}
