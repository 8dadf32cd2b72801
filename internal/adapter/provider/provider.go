// Package provider implements the LLM provider adapters and their registry.
//
// Every adapter exposes the uniform domain.Provider surface: Chat for
// two-role prompting and Complete for single-prompt calls. Request shaping,
// auth, throttling, retry, and response normalization stay inside the
// adapter; completion text is returned verbatim and never parsed here.
package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"log/slog"

	"github.com/fairyhunter13/ai-job-analyzer/internal/config"
	"github.com/fairyhunter13/ai-job-analyzer/internal/domain"
	"github.com/fairyhunter13/ai-job-analyzer/internal/observability"
)

// maxDetailLen caps upstream detail carried inside error messages.
const maxDetailLen = 200

const (
	defaultTimeout          = 30 * time.Second
	defaultReasoningTimeout = 120 * time.Second
)

// truncateDetail trims upstream error bodies to a loggable snippet.
func truncateDetail(s string) string {
	if len(s) > maxDetailLen {
		return s[:maxDetailLen]
	}
	return s
}

// settings is the immutable per-adapter configuration resolved by the
// registry. Adapters are stateless across calls beyond this.
type settings struct {
	name        string
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	timeout     time.Duration
	reasoning   bool
}

// resolve merges caller options over the adapter defaults.
func (s settings) resolve(opts domain.CallOptions) domain.CallOptions {
	out := opts
	if out.Model == "" {
		out.Model = s.model
	}
	if out.Temperature == 0 {
		out.Temperature = s.temperature
	}
	if out.MaxTokens == 0 {
		out.MaxTokens = s.maxTokens
	}
	if out.Timeout == 0 {
		out.Timeout = s.timeout
		if out.Timeout == 0 {
			if s.reasoning {
				out.Timeout = defaultReasoningTimeout
			} else {
				out.Timeout = defaultTimeout
			}
		}
	}
	return out
}

// httpCore is the HTTP machinery shared by all adapters: client-side
// throttling, exponential backoff, and the status-code to error-kind split.
type httpCore struct {
	settings
	hc      *http.Client
	limiter *rate.Limiter
	boCfg   config.Config
}

func newHTTPCore(st settings, cfg config.Config) httpCore {
	interval := cfg.AIMinInterval
	if interval <= 0 {
		interval = time.Millisecond
	}
	return httpCore{
		settings: st,
		hc:       &http.Client{},
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		boCfg:    cfg,
	}
}

func (c *httpCore) newBackoff(ctx context.Context) backoff.BackOffContext {
	expo := backoff.NewExponentialBackOff()
	maxElapsed, initial, maxInterval, multiplier := c.boCfg.GetAIBackoffConfig()
	expo.MaxElapsedTime = maxElapsed
	expo.InitialInterval = initial
	expo.MaxInterval = maxInterval
	expo.Multiplier = multiplier
	return backoff.WithContext(expo, ctx)
}

// roundTrip posts payload to endpoint under the per-call timeout, retrying
// 429 and 5xx with backoff. It returns the raw response body of the first
// 2xx answer. The context deadline aborts the in-flight HTTP call.
func (c *httpCore) roundTrip(ctx context.Context, op, endpoint string, header map[string]string, payload []byte, timeout time.Duration) ([]byte, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var raw []byte
	attempt := func() error {
		if err := c.limiter.Wait(callCtx); err != nil {
			// Wait can also fail when the interval would overrun the
			// deadline, before callCtx itself expires; classify that as
			// a timeout rather than a transport fault.
			if cerr := callCtx.Err(); cerr != nil {
				return backoff.Permanent(cerr)
			}
			return backoff.Permanent(fmt.Errorf("%w: %s: %s", domain.ErrTimeout, c.name, truncateDetail(err.Error())))
		}
		start := time.Now()
		r, err := http.NewRequestWithContext(callCtx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		r.Header.Set("Content-Type", "application/json")
		for k, v := range header {
			r.Header.Set(k, v)
		}
		resp, err := c.hc.Do(r)
		observability.AIRequestsTotal.WithLabelValues(c.name, op).Inc()
		observability.AIRequestDuration.WithLabelValues(c.name, op).Observe(time.Since(start).Seconds())
		if err != nil {
			if callCtx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			slog.Warn("ai provider rate limited", slog.String("provider", c.name), slog.String("op", op), slog.Int("status", resp.StatusCode))
			return fmt.Errorf("%w: status 429", domain.ErrRateLimited)
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			slog.Warn("ai provider 4xx", slog.String("provider", c.name), slog.String("op", op), slog.Int("status", resp.StatusCode), slog.String("endpoint", endpoint), slog.String("body", truncateDetail(string(body))))
			return backoff.Permanent(fmt.Errorf("%w: status %d: %s", domain.ErrUpstream, resp.StatusCode, truncateDetail(string(body))))
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			slog.Error("ai provider non-2xx", slog.String("provider", c.name), slog.String("op", op), slog.Int("status", resp.StatusCode), slog.String("endpoint", endpoint), slog.String("body", truncateDetail(string(body))))
			return fmt.Errorf("%w: status %d: %s", domain.ErrUpstream, resp.StatusCode, truncateDetail(string(body)))
		}
		raw = body
		return nil
	}

	if err := backoff.Retry(attempt, c.newBackoff(callCtx)); err != nil {
		return nil, c.mapCallErr(ctx, err)
	}
	return raw, nil
}

// mapCallErr converts transport-level failures into the error taxonomy.
// Cancellation of the parent context propagates unchanged so callers can
// tell a cancelled run from a timed-out call.
func (c *httpCore) mapCallErr(parent context.Context, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrRateLimited),
		errors.Is(err, domain.ErrUpstream),
		errors.Is(err, domain.ErrTimeout),
		errors.Is(err, domain.ErrTransport):
		return err
	case parent.Err() != nil:
		return parent.Err()
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s: %s", domain.ErrTimeout, c.name, truncateDetail(err.Error()))
	default:
		return fmt.Errorf("%w: %s: %s", domain.ErrTransport, c.name, truncateDetail(err.Error()))
	}
}

// salvage implements the reasoning-trace workaround: when the primary
// content is empty but the provider populated a reasoning field, the
// reasoning text is returned flagged as lower-confidence.
func (c *httpCore) salvage(primary, reasoning string) (domain.Completion, error) {
	if primary != "" {
		return domain.Completion{Text: primary, Source: domain.SourcePrimary}, nil
	}
	if reasoning != "" {
		observability.AIReasoningSalvageTotal.WithLabelValues(c.name).Inc()
		slog.Warn("empty primary content, salvaging reasoning trace",
			slog.String("provider", c.name),
			slog.Int("reasoning_length", len(reasoning)))
		return domain.Completion{Text: reasoning, Source: domain.SourceReasoning}, nil
	}
	return domain.Completion{}, fmt.Errorf("%w: %s", domain.ErrEmptyCompletion, c.name)
}
