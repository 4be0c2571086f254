package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GoMudEngine/npctalk/internal/configs"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeConversation struct {
	actorId  uuid.UUID
	messages []Message
}

func (c *fakeConversation) Messages() []Message { return c.messages }
func (c *fakeConversation) ActorID() uuid.UUID  { return c.actorId }

func newFakeConversation() *fakeConversation {
	return &fakeConversation{
		actorId: uuid.New(),
		messages: []Message{
			{Role: RoleSystem, Content: `You are a villager.`},
			{Role: RoleUser, Content: `Good day!`},
		},
	}
}

func newTestProducer(endpoint string, tracker *TokenTracker) *OpenAIProducer {
	cfg := configs.Config{
		OpenAIKey:      `test-key`,
		OpenAIEndpoint: configs.ConfigString(endpoint),
		OpenAIModel:    configs.ConfigString(configs.DefaultOpenAIModel),
	}
	return NewOpenAIProducer(cfg, tracker)
}

func TestProduceNextMessage(t *testing.T) {
	conv := newFakeConversation()

	var gotPath, gotAuth string
	var gotReq chatRequest
	var decodeErr error

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get(`Authorization`)
		decodeErr = json.NewDecoder(r.Body).Decode(&gotReq)

		w.Header().Set(`Content-Type`, `application/json`)
		w.Write([]byte(`{
			"choices": [{"message": {"content": "Well met, traveler."}}],
			"usage": {"prompt_tokens": 50, "completion_tokens": 10}
		}`))
	}))
	defer server.Close()

	tracker := NewTokenTracker()
	producer := newTestProducer(server.URL, tracker)

	reply, err := producer.ProduceNextMessage(context.Background(), conv)
	require.NoError(t, err)
	require.NoError(t, decodeErr)
	require.Equal(t, `Well met, traveler.`, reply)

	// Request shape: path, auth header, model, sampling, caller identity,
	// and the full history in order.
	require.Equal(t, `/chat/completions`, gotPath)
	require.Equal(t, `Bearer test-key`, gotAuth)
	require.Equal(t, configs.DefaultOpenAIModel, gotReq.Model)
	require.Equal(t, DefaultTemperature, gotReq.Temperature)
	require.Equal(t, conv.actorId.String(), gotReq.User)
	require.Equal(t, conv.messages, gotReq.Messages)

	// Reported usage flows into the tracker verbatim.
	usage := tracker.Usage(conv.actorId)
	require.Equal(t, 1, usage.TotalCalls)
	require.Equal(t, 50, usage.InputTokens)
	require.Equal(t, 10, usage.OutputTokens)
}

func TestProduceNextMessageErrorKinds(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		expected ProducerErrorKind
	}{
		{
			`unauthorized`,
			func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusUnauthorized) },
			ErrorAuth,
		},
		{
			`forbidden`,
			func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusForbidden) },
			ErrorAuth,
		},
		{
			`rate limited`,
			func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTooManyRequests) },
			ErrorRateLimit,
		},
		{
			`server error`,
			func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
			ErrorNetwork,
		},
		{
			`empty choices`,
			func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"choices": []}`)) },
			ErrorBadResponse,
		},
		{
			`malformed body`,
			func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{not json`)) },
			ErrorBadResponse,
		},
		{
			`error payload`,
			func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"error": {"message": "model overloaded"}}`))
			},
			ErrorBadResponse,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			server := httptest.NewServer(test.handler)
			defer server.Close()

			// A fresh producer per case; failures arm the backoff.
			producer := newTestProducer(server.URL, nil)

			_, err := producer.ProduceNextMessage(context.Background(), newFakeConversation())
			require.Error(t, err)

			var pe *ProducerError
			require.True(t, errors.As(err, &pe))
			require.Equal(t, test.expected, pe.Kind)
		})
	}
}

func TestProduceNextMessageConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listening anymore

	producer := newTestProducer(server.URL, nil)

	_, err := producer.ProduceNextMessage(context.Background(), newFakeConversation())
	var pe *ProducerError
	require.True(t, errors.As(err, &pe))
	require.Equal(t, ErrorNetwork, pe.Kind)
}

func TestProduceNextMessageBackoff(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	producer := newTestProducer(server.URL, nil)

	_, err := producer.ProduceNextMessage(context.Background(), newFakeConversation())
	require.Error(t, err)
	require.Equal(t, 1, calls)

	// While the penalty box holds, the endpoint is never contacted.
	_, err = producer.ProduceNextMessage(context.Background(), newFakeConversation())
	var pe *ProducerError
	require.True(t, errors.As(err, &pe))
	require.Equal(t, ErrorRateLimit, pe.Kind)
	require.Equal(t, 1, calls)
}

func TestProduceNextMessageEstimatesMissingUsage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": [{"message": {"content": "Aye."}}]}`))
	}))
	defer server.Close()

	tracker := NewTokenTracker()
	producer := newTestProducer(server.URL, tracker)

	conv := newFakeConversation()
	_, err := producer.ProduceNextMessage(context.Background(), conv)
	require.NoError(t, err)

	expectedInput := 0
	for _, m := range conv.messages {
		expectedInput += EstimateTokenCount(m.Content)
	}

	usage := tracker.Usage(conv.actorId)
	require.Equal(t, expectedInput, usage.InputTokens)
	require.Equal(t, EstimateTokenCount(`Aye.`), usage.OutputTokens)
}
