package llmclient

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Client parses operator text into an Intent via a primary provider, a
// secondary fallback provider, and — below both — the deterministic
// regex fallback (§4.3). Grounded on the teacher's pkg/llm.Client shape
// (a thin struct configured at construction, one public entry point) and
// on telnet2-opencode's cenkalti/backoff-based retry loop
// (internal/session/loop.go) for the bounded-retry-with-jitter pattern.
type Client struct {
	primary   Provider
	secondary Provider
	timeout   time.Duration
	maxRetry  uint64
}

// Option configures a Client at construction.
type Option func(*Client)

// WithSecondary registers a fallback provider invoked when the primary
// times out or fails after retries.
func WithSecondary(p Provider) Option {
	return func(c *Client) { c.secondary = p }
}

// WithTimeout bounds the time spent on each provider, retries included.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// NewClient constructs a Client around a primary provider.
func NewClient(primary Provider, opts ...Option) *Client {
	c := &Client{primary: primary, timeout: 8 * time.Second, maxRetry: 2}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Parse implements the full process in §4.3: prompt assembly, layered
// provider fallback, JSON extraction/repair, action-registry validation,
// and confidence clamping.
func (c *Client) Parse(ctx context.Context, text string, reqCtx Context) Intent {
	systemPrompt := buildSystemPrompt()
	userPrompt := buildUserPrompt(text, reqCtx)

	raw, ok := c.callWithFallback(ctx, systemPrompt, userPrompt)
	if !ok {
		slog.Warn("llmclient: both providers exhausted, using regex fallback")
		return RegexFallback(text)
	}

	var parsed rawIntent
	if !extractJSON(raw, &parsed) {
		slog.Warn("llmclient: no recoverable JSON in provider response, using regex fallback")
		return RegexFallback(text)
	}

	intent := Intent{
		Action:         ResolveAction(parsed.Action),
		TargetLabel:    parsed.TargetLabel,
		TargetEntityID: parsed.TargetEntityID,
		TargetTime:     parsed.TargetTime,
		Parameters:     parsed.Parameters,
		Confidence:     clampConfidence(parsed.Confidence),
		Clarify:        parsed.Clarify,
		ClarifyOptions: parsed.ClarifyOptions,
		Explanation:    parsed.Explanation,
	}
	if intent.Parameters == nil {
		intent.Parameters = map[string]any{}
	}
	if intent.Action == "unknown" {
		intent.Confidence = 0
	}
	return intent
}

// callWithFallback invokes the primary provider under a bounded
// timeout/retry, falling back to the secondary on exhaustion. Returns
// false if neither provider produced a response.
func (c *Client) callWithFallback(ctx context.Context, systemPrompt, userPrompt string) (string, bool) {
	if resp, err := c.callWithRetry(ctx, c.primary, systemPrompt, userPrompt); err == nil {
		return resp, true
	} else {
		slog.Warn("llmclient: primary provider failed", "provider", c.primary.Name(), "error", err)
	}

	if c.secondary == nil {
		return "", false
	}
	if resp, err := c.callWithRetry(ctx, c.secondary, systemPrompt, userPrompt); err == nil {
		return resp, true
	} else {
		slog.Warn("llmclient: secondary provider failed", "provider", c.secondary.Name(), "error", err)
	}
	return "", false
}

func (c *Client) callWithRetry(ctx context.Context, p Provider, systemPrompt, userPrompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	bounded := backoff.WithContext(backoff.WithMaxRetries(b, c.maxRetry), callCtx)

	var result string
	err := backoff.Retry(func() error {
		resp, err := p.Complete(callCtx, systemPrompt, userPrompt)
		if err != nil {
			return err
		}
		result = resp
		return nil
	}, bounded)
	return result, err
}
