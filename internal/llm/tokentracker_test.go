package llm

import (
	"testing"

	"github.com/GoMudEngine/npctalk/internal/configs"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestTokenTrackerRecord(t *testing.T) {
	tracker := NewTokenTracker()
	actor := uuid.New()

	tracker.Record(actor, configs.DefaultOpenAIModel, 1000, 500)
	tracker.Record(actor, configs.DefaultOpenAIModel, 2000, 1000)

	usage := tracker.Usage(actor)
	require.Equal(t, 2, usage.TotalCalls)
	require.Equal(t, 3000, usage.InputTokens)
	require.Equal(t, 1500, usage.OutputTokens)
	require.InDelta(t, 3.0*CostPerGPT35Turbo_Input+1.5*CostPerGPT35Turbo_Output, usage.TotalCost, 1e-9)
	require.False(t, usage.LastUsed.IsZero())
}

func TestTokenTrackerUnknownModelCostsNothing(t *testing.T) {
	tracker := NewTokenTracker()
	actor := uuid.New()

	tracker.Record(actor, `local-llama`, 1000, 1000)

	usage := tracker.Usage(actor)
	require.Equal(t, 1000, usage.InputTokens)
	require.Zero(t, usage.TotalCost)
}

func TestTokenTrackerIsolatesActors(t *testing.T) {
	tracker := NewTokenTracker()
	a, b := uuid.New(), uuid.New()

	tracker.Record(a, configs.DefaultOpenAIModel, 100, 50)

	require.Equal(t, 1, tracker.Usage(a).TotalCalls)
	require.Zero(t, tracker.Usage(b).TotalCalls)
}

func TestEstimateTokenCount(t *testing.T) {
	require.Equal(t, 0, EstimateTokenCount(``))
	require.Equal(t, 1, EstimateTokenCount(`1234`))
	require.Equal(t, 2, EstimateTokenCount(`12345678`))
}
