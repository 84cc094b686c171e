// Package groq implements domain.Summarizer against Groq's OpenAI compatible chat API.
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fairyhunter13/smart-resume-matcher/internal/adapter/observability"
	"github.com/fairyhunter13/smart-resume-matcher/internal/config"
	"github.com/fairyhunter13/smart-resume-matcher/internal/domain"
	"github.com/fairyhunter13/smart-resume-matcher/pkg/textx"
)

const (
	systemPrompt = "You are an assistant that summarizes resumes."
	maxTokens    = 500
	// maxInputTokens bounds the resume text sent upstream.
	maxInputTokens = 3000
)

// Client summarizes resume text via chat completions. After repeated upstream
// failures the breaker short-circuits calls for a minute.
type Client struct {
	cfg     config.Config
	hc      *http.Client
	breaker *observability.CircuitBreaker
}

// New constructs a Groq client with a traced transport.
func New(cfg config.Config) *Client {
	timeout := cfg.GroqTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	transport := otelhttp.NewTransport(http.DefaultTransport,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return fmt.Sprintf("Groq %s %s", r.Method, r.URL.Path)
		}),
	)
	return &Client{
		cfg:     cfg,
		hc:      &http.Client{Timeout: timeout, Transport: transport},
		breaker: observability.NewCircuitBreaker("groq", 5, time.Minute),
	}
}

func (c *Client) backoffConfig() *backoff.ExponentialBackOff {
	expo := backoff.NewExponentialBackOff()
	maxElapsedTime, initialInterval, maxInterval, multiplier := c.cfg.GetSummaryBackoffConfig()
	expo.MaxElapsedTime = maxElapsedTime
	expo.InitialInterval = initialInterval
	expo.MaxInterval = maxInterval
	expo.Multiplier = multiplier
	return expo
}

func userPrompt(text string) string {
	return "Write a short summary of the following resume and list its key skills " +
		"as a comma separated list.\n\n" + text +
		"\n\nOutput format:\nSummary:\n[summary]\nSkills:\n[skill1, skill2, ...]"
}

// Summarize returns a summary and a comma separated skill list for text.
func (c *Client) Summarize(ctx domain.Context, text string) (string, string, error) {
	if c.cfg.GroqAPIKey == "" {
		return "", "", fmt.Errorf("op=groq.summarize: %w: GROQ_API_KEY missing", domain.ErrInvalidArgument)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", "", fmt.Errorf("op=groq.summarize: %w: empty text", domain.ErrInvalidArgument)
	}
	var content string
	err := c.breaker.Call(func() error {
		var err error
		content, err = c.chat(ctx, userPrompt(trimToTokens(text, maxInputTokens)))
		return err
	}, upstreamFailure)
	if errors.Is(err, observability.ErrCircuitOpen) {
		return "", "", fmt.Errorf("op=groq.summarize: %w: %w", domain.ErrDependency, err)
	}
	if err != nil {
		return "", "", fmt.Errorf("op=groq.summarize: %w", err)
	}
	summary, skills := ParseSummary(content)
	return summary, skills, nil
}

func (c *Client) chat(ctx domain.Context, prompt string) (string, error) {
	endpoint := strings.TrimRight(c.cfg.GroqBaseURL, "/") + "/chat/completions"
	b, err := json.Marshal(map[string]any{
		"model":       c.cfg.GroqModel,
		"temperature": 0.3,
		"max_tokens":  maxTokens,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": prompt},
		},
	})
	if err != nil {
		return "", err
	}
	if slog.Default().Enabled(ctx, slog.LevelDebug) {
		slog.Debug("groq chat request", slog.String("model", c.cfg.GroqModel), slog.Int("prompt_tokens", countTokens(prompt)))
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	lastStatus := 0
	op := func() error {
		// body is rebuilt per attempt
		r, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
		if err != nil {
			return backoff.Permanent(err)
		}
		r.Header.Set("Authorization", "Bearer "+c.cfg.GroqAPIKey)
		r.Header.Set("Content-Type", "application/json")
		resp, err := c.hc.Do(r)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()
		lastStatus = resp.StatusCode

		bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return err
		}
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			slog.Warn("groq rate limited", slog.String("provider", "groq"), slog.Int("status", resp.StatusCode))
			return errors.New("rate limited: 429")
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			slog.Warn("groq 4xx", slog.String("provider", "groq"), slog.Int("status", resp.StatusCode),
				slog.String("body", textx.Truncate(string(bodyBytes), 512)))
			return backoff.Permanent(fmt.Errorf("chat status %d", resp.StatusCode))
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			slog.Error("groq non-2xx", slog.String("provider", "groq"), slog.Int("status", resp.StatusCode))
			return fmt.Errorf("chat status %d", resp.StatusCode)
		}
		if err := json.Unmarshal(bodyBytes, &out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode: %w", err))
		}
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(c.backoffConfig(), ctx)); err != nil {
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded), isTimeout(err):
			return "", fmt.Errorf("%w: %w", domain.ErrUpstreamTimeout, err)
		case lastStatus == http.StatusTooManyRequests:
			return "", fmt.Errorf("%w: %w", domain.ErrUpstreamRateLimit, err)
		default:
			return "", fmt.Errorf("%w: %w", domain.ErrDependency, err)
		}
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: empty choices", domain.ErrDependency)
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// upstreamFailure excludes caller cancellations from the breaker's count.
func upstreamFailure(err error) bool {
	return !errors.Is(err, context.Canceled)
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
