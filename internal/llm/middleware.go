package llm

import (
	"context"
	"errors"
	"time"

	"github.com/jonathan/docpack/internal/logging"
)

// Middleware decorates a Client with a cross-cutting concern.
type Middleware func(Client) Client

// Wrap applies middlewares in left-to-right order.
// Wrap(inner, A, B) => A(B(inner))
func Wrap(inner Client, mws ...Middleware) Client {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// -------- Retry with exponential backoff --------

// WithRetry retries failed calls up to maxAttempts with exponential backoff
// starting at baseDelay. Configuration errors are not retried and a
// cancelled context stops immediately.
func WithRetry(maxAttempts int, baseDelay time.Duration) Middleware {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 300 * time.Millisecond
	}
	return func(next Client) Client {
		return &retrying{next: next, max: maxAttempts, base: baseDelay}
	}
}

type retrying struct {
	next Client
	max  int
	base time.Duration
}

func (r *retrying) GetModel(tier ModelTier) string { return r.next.GetModel(tier) }
func (r *retrying) Close() error                   { return r.next.Close() }

func (r *retrying) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return r.do(ctx, func() (string, error) { return r.next.GenerateContent(ctx, prompt, tier) })
}

func (r *retrying) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return r.do(ctx, func() (string, error) { return r.next.GenerateJSON(ctx, prompt, tier) })
}

func (r *retrying) do(ctx context.Context, call func() (string, error)) (string, error) {
	var last error
	for i := 0; i < r.max; i++ {
		out, err := call()
		if err == nil {
			return out, nil
		}
		last = err

		if !retryable(err) || i == r.max-1 {
			break
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(r.base * time.Duration(1<<i)):
		}
	}
	return "", last
}

// retryable reports whether another attempt could succeed. Configuration
// problems and blocked prompts fail the same way every time.
func retryable(err error) bool {
	var cfgErr *ConfigError
	var blocked *BlockedError
	return !errors.As(err, &cfgErr) && !errors.As(err, &blocked)
}

// -------- Logging --------

// WithLogging logs each call's tier, prompt size, duration and error.
func WithLogging(logger *logging.Logger) Middleware {
	if logger == nil {
		logger = logging.NewNop()
	}
	return func(next Client) Client {
		return &logged{next: next, log: logger.With("service", "llm")}
	}
}

type logged struct {
	next Client
	log  *logging.Logger
}

func (l *logged) GetModel(tier ModelTier) string { return l.next.GetModel(tier) }
func (l *logged) Close() error                   { return l.next.Close() }

func (l *logged) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	start := time.Now()
	out, err := l.next.GenerateContent(ctx, prompt, tier)
	l.record("generate_content", tier, len(prompt), start, err)
	return out, err
}

func (l *logged) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	start := time.Now()
	out, err := l.next.GenerateJSON(ctx, prompt, tier)
	l.record("generate_json", tier, len(prompt), start, err)
	return out, err
}

func (l *logged) record(op string, tier ModelTier, promptBytes int, start time.Time, err error) {
	fields := []any{
		"op", op,
		"tier", string(tier),
		"model", l.next.GetModel(tier),
		"prompt_bytes", promptBytes,
		"duration_ms", time.Since(start).Milliseconds(),
	}
	if err != nil {
		l.log.Warn("llm call failed", append(fields, "error", err)...)
		return
	}
	l.log.Debug("llm call", fields...)
}
