// Package reviewer produces AI code reviews through an OpenAI-compatible
// chat completion API.
package reviewer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/sync/errgroup"

	"github.com/Rorical/RoriReview/internal/config"
	"github.com/Rorical/RoriReview/internal/metrics"
)

var errNoChoices = errors.New("completion returned no choices")

// Reviewer turns source code into review feedback. Review never fails: every
// error is folded into the feedback text.
type Reviewer struct {
	client       *openai.Client // nil when no API key is configured
	model        string
	maxTokens    int
	temperature  float32
	mode         string
	agentTimeout time.Duration
	metrics      *metrics.ReviewerMetrics
	logger       *slog.Logger
}

func New(cfg *config.Config, m *metrics.ReviewerMetrics, logger *slog.Logger) *Reviewer {
	var client *openai.Client

	// Only create the client if an API key is set
	if cfg.IsValid() {
		clientConfig := openai.DefaultConfig(cfg.GetAPIKey())
		if cfg.GetBaseURL() != "" {
			clientConfig.BaseURL = cfg.GetBaseURL()
		}
		client = openai.NewClientWithConfig(clientConfig)
	}

	mode := cfg.Reviewer.Mode
	if mode != config.ModeSingle && mode != config.ModeAgentic {
		logger.Warn("Unknown review mode, using single", "mode", mode)
		mode = config.ModeSingle
	}

	return &Reviewer{
		client:       client,
		model:        cfg.GetModel(),
		maxTokens:    cfg.Reviewer.MaxTokens,
		temperature:  cfg.Reviewer.Temperature,
		mode:         mode,
		agentTimeout: time.Duration(cfg.Reviewer.AgentTimeoutSeconds) * time.Second,
		metrics:      m,
		logger:       logger,
	}
}

func (r *Reviewer) Mode() string {
	return r.mode
}

// Review returns feedback for code using the configured mode.
func (r *Reviewer) Review(ctx context.Context, code string) string {
	start := time.Now()

	var feedback, outcome string
	switch {
	case r.client == nil:
		feedback, outcome = MissingKeyFeedback, metrics.OutcomeError
	case r.mode == config.ModeAgentic:
		feedback, outcome = r.agentic(ctx, code)
	default:
		feedback, outcome = r.single(ctx, code, "Error in AI review")
	}

	elapsed := time.Since(start)
	r.metrics.Observe(r.mode, outcome, elapsed.Seconds())
	r.logger.Info("Review finished",
		"mode", r.mode,
		"outcome", outcome,
		"code_bytes", len(code),
		"duration", elapsed)
	return feedback
}

// single runs one completion. errPrefix labels non rate-limit failures.
func (r *Reviewer) single(ctx context.Context, code, errPrefix string) (string, string) {
	content, err := r.complete(ctx, singleAgentPrompt, "Review this code:\n\n"+code)
	if err != nil {
		if isRateLimited(err) {
			r.logger.Warn("Provider rate limited the review, returning demo feedback", "error", err)
			return DemoFeedback, metrics.OutcomeRateLimited
		}
		r.logger.Error("Review failed", "error", err)
		return fmt.Sprintf("%s: %v", errPrefix, err), metrics.OutcomeError
	}
	return content, metrics.OutcomeOK
}

// agentic fans the code out to the specialists and has the orchestrator merge
// their findings, falling back to a single review on any failure.
func (r *Reviewer) agentic(ctx context.Context, code string) (string, string) {
	report, err := r.runAgents(ctx, code)
	if err == nil {
		return report, metrics.OutcomeOK
	}

	r.logger.Warn("Multi-agent review failed, falling back to single-agent mode", "error", err)
	feedback, outcome := r.single(ctx, code, "Error in single-agent review")
	if outcome == metrics.OutcomeOK {
		outcome = metrics.OutcomeFallback
	}
	return feedback, outcome
}

func (r *Reviewer) runAgents(ctx context.Context, code string) (string, error) {
	if r.agentTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.agentTimeout)
		defer cancel()
	}

	findings := make([]string, len(specialists))
	g, gCtx := errgroup.WithContext(ctx)
	for i, sp := range specialists {
		i, sp := i, sp
		g.Go(func() error {
			content, err := r.complete(gCtx, sp.systemPrompt(), sp.userPrompt(code))
			if err != nil {
				return fmt.Errorf("%s agent: %w", sp.name, err)
			}
			findings[i] = content
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	report, err := r.complete(ctx, orchestrator.systemPrompt(), synthesisPrompt(code, findings))
	if err != nil {
		return "", fmt.Errorf("%s agent: %w", orchestrator.name, err)
	}
	return report, nil
}

func synthesisPrompt(code string, findings []string) string {
	var b strings.Builder
	b.WriteString(orchestrator.userPrompt(code))
	for i, sp := range specialists {
		b.WriteString("\n\n## ")
		b.WriteString(sp.role)
		b.WriteString("\n\n")
		b.WriteString(findings[i])
	}
	return b.String()
}

func (r *Reviewer) complete(ctx context.Context, system, user string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		MaxTokens:   r.maxTokens,
		Temperature: r.temperature,
	}

	resp, err := r.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errNoChoices
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func isRateLimited(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	return false
}
