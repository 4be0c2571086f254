package llm

import (
	"sync"
	"time"

	"github.com/GoMudEngine/npctalk/internal/configs"
	"github.com/google/uuid"
)

// Cost per 1K tokens. Self-hosted endpoints cost nothing; unknown models
// are tallied at zero cost but their tokens are still counted.
const (
	CostPerGPT35Turbo_Input  = 0.0005
	CostPerGPT35Turbo_Output = 0.0015
)

// TokenUsage holds cumulative usage stats for one actor.
type TokenUsage struct {
	TotalCalls   int
	InputTokens  int
	OutputTokens int
	TotalCost    float64
	LastUsed     time.Time
}

// TokenTracker tallies token usage per actor for the lifetime of the
// process. Nothing here is persisted.
type TokenTracker struct {
	mu    sync.RWMutex
	usage map[uuid.UUID]*TokenUsage
}

func NewTokenTracker() *TokenTracker {
	return &TokenTracker{
		usage: map[uuid.UUID]*TokenUsage{},
	}
}

func (t *TokenTracker) Record(actor uuid.UUID, model string, inputTokens int, outputTokens int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	u, ok := t.usage[actor]
	if !ok {
		u = &TokenUsage{}
		t.usage[actor] = u
	}

	u.TotalCalls++
	u.InputTokens += inputTokens
	u.OutputTokens += outputTokens
	u.LastUsed = time.Now()

	if model == configs.DefaultOpenAIModel {
		u.TotalCost += float64(inputTokens)*CostPerGPT35Turbo_Input/1000.0 +
			float64(outputTokens)*CostPerGPT35Turbo_Output/1000.0
	}
}

// Usage returns a copy of the actor's tally; the zero value if none.
func (t *TokenTracker) Usage(actor uuid.UUID) TokenUsage {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if u, ok := t.usage[actor]; ok {
		return *u
	}
	return TokenUsage{}
}

// EstimateTokenCount gives a rough estimate of token count based on text
// length. 1 token is about 4 characters of English text.
func EstimateTokenCount(text string) int {
	return len(text) / 4
}
