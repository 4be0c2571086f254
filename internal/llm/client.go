package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/GoMudEngine/npctalk/internal/configs"
	"github.com/GoMudEngine/npctalk/internal/mudlog"
)

const (
	RequestFailureBackoffSeconds = 30
	DefaultTemperature           = 0.7
)

// chatRequest is the OpenAI chat-completions request body.
type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	User        string    `json:"user,omitempty"`
}

// chatResponse is the subset of the response body this client reads.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// OpenAIProducer calls an OpenAI-compatible chat-completions endpoint.
// After a transport failure it enters a short penalty box so a flapping
// backend isn't hammered once per player message.
type OpenAIProducer struct {
	endpoint    string
	apiKey      string
	model       string
	temperature float64
	client      *http.Client
	tracker     *TokenTracker

	waitMutex sync.RWMutex
	waitUntil time.Time
}

func NewOpenAIProducer(cfg configs.Config, tracker *TokenTracker) *OpenAIProducer {
	return &OpenAIProducer{
		endpoint:    strings.TrimSuffix(string(cfg.OpenAIEndpoint), `/`) + `/chat/completions`,
		apiKey:      string(cfg.OpenAIKey),
		model:       string(cfg.OpenAIModel),
		temperature: DefaultTemperature,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		tracker: tracker,
	}
}

func (p *OpenAIProducer) ProduceNextMessage(ctx context.Context, conv Conversation) (string, error) {

	if p.isRequestBackoff() {
		mudlog.Warn("LLM", "info", "request rejected, service is in backoff")
		return ``, producerErrorf(ErrorRateLimit, `service is in backoff after a recent failure`)
	}

	reqBody := chatRequest{
		Model:       p.model,
		Messages:    conv.Messages(),
		Temperature: p.temperature,
		User:        conv.ActorID().String(),
	}

	reqJSON, err := json.Marshal(reqBody)
	if err != nil {
		return ``, producerErrorf(ErrorBadResponse, `marshaling request: %v`, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewBuffer(reqJSON))
	if err != nil {
		return ``, producerErrorf(ErrorNetwork, `creating request: %v`, err)
	}

	req.Header.Set(`Content-Type`, `application/json`)
	if p.apiKey != `` {
		req.Header.Set(`Authorization`, `Bearer `+p.apiKey)
	}

	mudlog.Debug("LLM", "request", p.endpoint, "model", p.model, "history", len(reqBody.Messages))
	start := time.Now()

	resp, err := p.client.Do(req)
	if err != nil {
		p.doRequestBackoff()
		mudlog.Error("LLM", "error", fmt.Sprintf("request failed: %v", err))
		return ``, producerErrorf(ErrorNetwork, `sending request: %v`, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ``, producerErrorf(ErrorAuth, `endpoint returned status %d`, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		p.doRequestBackoff()
		return ``, producerErrorf(ErrorRateLimit, `endpoint returned status 429`)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		p.doRequestBackoff()
		return ``, producerErrorf(ErrorNetwork, `unexpected status %d: %s`, resp.StatusCode, string(body))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return ``, producerErrorf(ErrorBadResponse, `decoding response: %v`, err)
	}

	if parsed.Error != nil && parsed.Error.Message != `` {
		return ``, producerErrorf(ErrorBadResponse, `endpoint error: %s`, parsed.Error.Message)
	}

	if len(parsed.Choices) == 0 {
		return ``, producerErrorf(ErrorBadResponse, `no choices in response`)
	}

	reply := parsed.Choices[0].Message.Content

	if p.tracker != nil {
		inputTokens := parsed.Usage.PromptTokens
		outputTokens := parsed.Usage.CompletionTokens
		if inputTokens == 0 && outputTokens == 0 {
			for _, m := range reqBody.Messages {
				inputTokens += EstimateTokenCount(m.Content)
			}
			outputTokens = EstimateTokenCount(reply)
		}
		p.tracker.Record(conv.ActorID(), p.model, inputTokens, outputTokens)
	}

	mudlog.Info("LLM", "response", fmt.Sprintf("received in %v", time.Since(start)))

	return reply, nil
}

// Returns true if requests are in a penalty box
func (p *OpenAIProducer) isRequestBackoff() bool {
	p.waitMutex.RLock()
	defer p.waitMutex.RUnlock()
	return p.waitUntil.After(time.Now())
}

// Sets a time for requests to resume
func (p *OpenAIProducer) doRequestBackoff() {
	p.waitMutex.Lock()
	p.waitUntil = time.Now().Add(RequestFailureBackoffSeconds * time.Second)
	p.waitMutex.Unlock()
}
