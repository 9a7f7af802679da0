package reviewer

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/RoriReview/internal/config"
	"github.com/Rorical/RoriReview/internal/metrics"
)

// fakeProvider answers chat completions from a per-test function keyed on
// the system prompt.
type fakeProvider struct {
	mu       sync.Mutex
	requests []openai.ChatCompletionRequest
	answer   func(w http.ResponseWriter, r *http.Request, req openai.ChatCompletionRequest)
}

func (f *fakeProvider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/v1/chat/completions" {
		http.NotFound(w, r)
		return
	}
	var req openai.ChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	f.answer(w, r, req)
}

func (f *fakeProvider) recorded() []openai.ChatCompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]openai.ChatCompletionRequest(nil), f.requests...)
}

func reply(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
		ID:    "chatcmpl-test",
		Model: config.DefaultModel,
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
		}},
	})
}

func fail(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":{"message":"` + message + `","type":"test_error"}}`))
}

func newTestReviewer(t *testing.T, mode string, f *fakeProvider) (*Reviewer, *metrics.ReviewerMetrics) {
	t.Helper()
	server := httptest.NewServer(f)
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.Reviewer.Mode = mode
	cfg.OverrideCredentials("test-key", server.URL+"/v1")

	m := metrics.NewReviewerMetrics(metrics.NewRegistry())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(cfg, m, logger), m
}

func TestReview_Single(t *testing.T) {
	f := &fakeProvider{answer: func(w http.ResponseWriter, r *http.Request, req openai.ChatCompletionRequest) {
		reply(w, "  Good code!\n")
	}}
	r, m := newTestReviewer(t, config.ModeSingle, f)

	got := r.Review(context.Background(), "def test(): pass")

	assert.Equal(t, "Good code!", got)
	reqs := f.recorded()
	require.Len(t, reqs, 1)
	req := reqs[0]
	assert.Equal(t, config.DefaultModel, req.Model)
	assert.Equal(t, 500, req.MaxTokens)
	assert.InDelta(t, 0.5, req.Temperature, 1e-6)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, singleAgentPrompt, req.Messages[0].Content)
	assert.Equal(t, "Review this code:\n\ndef test(): pass", req.Messages[1].Content)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReviewsTotal.WithLabelValues(config.ModeSingle, metrics.OutcomeOK)))
}

func TestReview_SingleRateLimited(t *testing.T) {
	f := &fakeProvider{answer: func(w http.ResponseWriter, r *http.Request, req openai.ChatCompletionRequest) {
		fail(w, http.StatusTooManyRequests, "You exceeded your current quota")
	}}
	r, m := newTestReviewer(t, config.ModeSingle, f)

	assert.Equal(t, DemoFeedback, r.Review(context.Background(), "x"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReviewsTotal.WithLabelValues(config.ModeSingle, metrics.OutcomeRateLimited)))
}

func TestReview_SingleError(t *testing.T) {
	f := &fakeProvider{answer: func(w http.ResponseWriter, r *http.Request, req openai.ChatCompletionRequest) {
		fail(w, http.StatusInternalServerError, "boom")
	}}
	r, m := newTestReviewer(t, config.ModeSingle, f)

	got := r.Review(context.Background(), "x")

	assert.True(t, strings.HasPrefix(got, "Error in AI review: "), got)
	assert.Contains(t, got, "boom")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReviewsTotal.WithLabelValues(config.ModeSingle, metrics.OutcomeError)))
}

func TestReview_NoChoices(t *testing.T) {
	f := &fakeProvider{answer: func(w http.ResponseWriter, r *http.Request, req openai.ChatCompletionRequest) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"x","choices":[]}`))
	}}
	r, _ := newTestReviewer(t, config.ModeSingle, f)

	assert.Equal(t, "Error in AI review: "+errNoChoices.Error(), r.Review(context.Background(), "x"))
}

func TestReview_MissingKey(t *testing.T) {
	cfg := config.Default()
	m := metrics.NewReviewerMetrics(metrics.NewRegistry())
	r := New(cfg, m, slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.Equal(t, MissingKeyFeedback, r.Review(context.Background(), "x"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReviewsTotal.WithLabelValues(config.ModeSingle, metrics.OutcomeError)))
}

func TestNew_UnknownModeFallsBackToSingle(t *testing.T) {
	cfg := config.Default()
	cfg.Reviewer.Mode = "swarm"
	r := New(cfg, metrics.NewReviewerMetrics(metrics.NewRegistry()), slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.Equal(t, config.ModeSingle, r.Mode())
	assert.Equal(t, 15*time.Second, r.agentTimeout)
}

func findingFor(system string) (string, bool) {
	for _, sp := range specialists {
		if system == sp.systemPrompt() {
			return "finding from " + sp.name, true
		}
	}
	return "", false
}

func TestReview_AgenticSynthesizesFindings(t *testing.T) {
	f := &fakeProvider{answer: func(w http.ResponseWriter, r *http.Request, req openai.ChatCompletionRequest) {
		system := req.Messages[0].Content
		if finding, ok := findingFor(system); ok {
			reply(w, finding)
			return
		}
		if system == orchestrator.systemPrompt() {
			reply(w, "merged report")
			return
		}
		fail(w, http.StatusBadRequest, "unexpected prompt")
	}}
	r, m := newTestReviewer(t, config.ModeAgentic, f)

	got := r.Review(context.Background(), "func main() {}")

	assert.Equal(t, "merged report", got)
	reqs := f.recorded()
	require.Len(t, reqs, len(specialists)+1)

	// The orchestrator runs last and sees every specialist's findings
	last := reqs[len(reqs)-1]
	assert.Equal(t, orchestrator.systemPrompt(), last.Messages[0].Content)
	for _, sp := range specialists {
		assert.Contains(t, last.Messages[1].Content, "finding from "+sp.name)
		assert.Contains(t, last.Messages[1].Content, sp.role)
	}
	assert.Contains(t, last.Messages[1].Content, "func main() {}")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReviewsTotal.WithLabelValues(config.ModeAgentic, metrics.OutcomeOK)))
}

func TestReview_AgenticFallsBackOnSpecialistError(t *testing.T) {
	f := &fakeProvider{answer: func(w http.ResponseWriter, r *http.Request, req openai.ChatCompletionRequest) {
		system := req.Messages[0].Content
		switch {
		case system == specialists[2].systemPrompt():
			fail(w, http.StatusInternalServerError, "security agent down")
		case system == singleAgentPrompt:
			reply(w, "single review")
		default:
			reply(w, "partial")
		}
	}}
	r, m := newTestReviewer(t, config.ModeAgentic, f)

	assert.Equal(t, "single review", r.Review(context.Background(), "x"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReviewsTotal.WithLabelValues(config.ModeAgentic, metrics.OutcomeFallback)))
}

func TestReview_AgenticFallbackErrorPrefix(t *testing.T) {
	f := &fakeProvider{answer: func(w http.ResponseWriter, r *http.Request, req openai.ChatCompletionRequest) {
		fail(w, http.StatusInternalServerError, "provider down")
	}}
	r, _ := newTestReviewer(t, config.ModeAgentic, f)

	got := r.Review(context.Background(), "x")
	assert.True(t, strings.HasPrefix(got, "Error in single-agent review: "), got)
}

func TestReview_AgenticTimeoutFallsBack(t *testing.T) {
	release := make(chan struct{})
	f := &fakeProvider{answer: func(w http.ResponseWriter, r *http.Request, req openai.ChatCompletionRequest) {
		if req.Messages[0].Content == singleAgentPrompt {
			reply(w, "single review")
			return
		}
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}}
	r, m := newTestReviewer(t, config.ModeAgentic, f)
	// Registered after the provider so blocked handlers are released before
	// the test server closes.
	t.Cleanup(func() { close(release) })
	r.agentTimeout = 50 * time.Millisecond

	start := time.Now()
	got := r.Review(context.Background(), "x")

	assert.Equal(t, "single review", got)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReviewsTotal.WithLabelValues(config.ModeAgentic, metrics.OutcomeFallback)))
}

func TestReview_AgenticRateLimitedFallback(t *testing.T) {
	f := &fakeProvider{answer: func(w http.ResponseWriter, r *http.Request, req openai.ChatCompletionRequest) {
		fail(w, http.StatusTooManyRequests, "quota")
	}}
	r, m := newTestReviewer(t, config.ModeAgentic, f)

	assert.Equal(t, DemoFeedback, r.Review(context.Background(), "x"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReviewsTotal.WithLabelValues(config.ModeAgentic, metrics.OutcomeRateLimited)))
}
