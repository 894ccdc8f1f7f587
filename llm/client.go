// Package llm provides the external capability clients: content synthesis,
// numeric evaluation, and qualitative judgment. The OpenAI-backed client
// talks to any OpenAI-compatible endpoint; the offline client serves the same
// interfaces deterministically without a network.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/loom-forge/weaver/core"
	"github.com/loom-forge/weaver/pkg/limiter"
	"github.com/loom-forge/weaver/pkg/logging"
	"github.com/loom-forge/weaver/pkg/metrics"
)

const (
	capSynthesize = "synthesize"
	capEvaluate   = "evaluate"
	capJudge      = "judge"
)

// Config holds connection settings for an OpenAI-compatible endpoint.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
	Timeout     time.Duration
	RPS         float64
	Burst       int
}

// DefaultConfig returns settings for the public OpenAI endpoint.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:      apiKey,
		Model:       openai.GPT4oMini,
		Temperature: 0.7,
		Timeout:     30 * time.Second,
		RPS:         5,
		Burst:       2,
	}
}

// Client implements core.Synthesizer, core.Evaluator, and core.Judge against
// a chat completion API. Every call goes through the per-capability rate
// limiter and circuit breaker, and transient failures are retried with
// backoff.
type Client struct {
	api         *openai.Client
	model       string
	temperature float32
	timeout     time.Duration

	retry    *limiter.RetryManager
	breakers *limiter.CircuitBreakerManager
	rate     *limiter.RateLimiter
	metrics  *metrics.PrometheusMetrics
	log      *logging.Logger
}

// NewClient creates the capability client. metrics and log may be nil.
func NewClient(cfg Config, m *metrics.PrometheusMetrics, log *logging.Logger) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		api:         openai.NewClientWithConfig(apiCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		retry:       limiter.NewRetryManager(nil),
		breakers:    limiter.NewCircuitBreakerManager(),
		rate:        limiter.NewRateLimiter(cfg.RPS, cfg.Burst),
		metrics:     m,
		log:         log,
	}
}

// Synthesize asks the model for component edits toward the intent. In dream
// mode the prompt demands a component absent from the parent.
func (c *Client) Synthesize(ctx context.Context, parent []core.Component, intent string, mode core.Mode) ([]core.ComponentChange, error) {
	raw, err := c.complete(ctx, capSynthesize, synthesisSystemPrompt(mode), synthesisUserPrompt(parent, intent, mode))
	if err != nil {
		return nil, err
	}

	var resp synthesisResponse
	if err := json.Unmarshal(extractJSON(raw), &resp); err != nil {
		return nil, fmt.Errorf("unparseable synthesis response: %w", err)
	}
	if len(resp.Changes) == 0 {
		return nil, fmt.Errorf("synthesis response contained no changes")
	}
	return resp.Changes, nil
}

// Evaluate asks the model to score the pattern's pillars in [0,100].
func (c *Client) Evaluate(ctx context.Context, p core.Pattern) (map[string]float64, error) {
	raw, err := c.complete(ctx, capEvaluate, evaluationSystemPrompt, evaluationUserPrompt(p))
	if err != nil {
		return nil, err
	}

	var resp evaluationResponse
	if err := json.Unmarshal(extractJSON(raw), &resp); err != nil {
		return nil, fmt.Errorf("unparseable evaluation response: %w", err)
	}
	if len(resp.Pillars) == 0 {
		return nil, fmt.Errorf("evaluation response contained no pillars")
	}
	return resp.Pillars, nil
}

// Judge asks the model for a qualitative verdict on the selected top variant.
func (c *Client) Judge(ctx context.Context, original core.Pattern, top core.Variant, history []core.ScoreRecord) (core.Judgement, error) {
	raw, err := c.complete(ctx, capJudge, judgeSystemPrompt, judgeUserPrompt(original, top, history))
	if err != nil {
		return core.Judgement{}, err
	}

	var verdict core.Judgement
	if err := json.Unmarshal(extractJSON(raw), &verdict); err != nil {
		return core.Judgement{}, fmt.Errorf("unparseable judge response: %w", err)
	}
	return verdict, nil
}

// complete runs one chat completion through the capability's rate limiter,
// circuit breaker, and retry budget, and returns the raw text content.
func (c *Client) complete(ctx context.Context, capability, system, user string) (string, error) {
	if err := c.rate.Wait(ctx, capability); err != nil {
		return "", err
	}

	var content string
	start := time.Now()
	attempt := 0

	err := c.retry.Execute(ctx, func(ctx context.Context) error {
		if attempt > 0 {
			if c.metrics != nil {
				c.metrics.RecordRetry(capability)
			}
		}
		attempt++

		return c.breakers.Execute(capability, func() error {
			callCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			resp, err := c.api.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
				Model:       c.model,
				Temperature: c.temperature,
				ResponseFormat: &openai.ChatCompletionResponseFormat{
					Type: openai.ChatCompletionResponseFormatTypeJSONObject,
				},
				Messages: []openai.ChatCompletionMessage{
					{Role: openai.ChatMessageRoleSystem, Content: system},
					{Role: openai.ChatMessageRoleUser, Content: user},
				},
			})
			if err != nil {
				return classify(err)
			}
			if len(resp.Choices) == 0 {
				return fmt.Errorf("completion returned no choices")
			}
			content = resp.Choices[0].Message.Content
			return nil
		})
	})

	status := "success"
	if err != nil {
		status = "error"
	}
	if c.metrics != nil {
		c.metrics.RecordCapabilityRequest(capability, status, time.Since(start))
	}
	if c.log != nil {
		c.log.LogCapabilityCall(capability, status, time.Since(start), attempt)
	}
	if err != nil {
		return "", fmt.Errorf("%s capability failed: %w", capability, err)
	}
	return content, nil
}

// classify tags rate-limit and server-side failures as transient so the retry
// manager backs off instead of giving up.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500 {
			return limiter.Transient(err)
		}
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	// network-level failures have no status code
	return limiter.Transient(err)
}
