package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Completer sends a prompt to a text-generation provider and returns its reply
type Completer interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// ProviderError is returned when the provider call fails. StatusCode is 0
// for transport failures.
type ProviderError struct {
	Provider   string
	StatusCode int
	Body       string
	Err        error
}

func (e *ProviderError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("Error from API: %d, %s", e.StatusCode, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
	default:
		return fmt.Sprintf("%s request failed", e.Provider)
	}
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Retryable reports whether another attempt may succeed
func (e *ProviderError) Retryable() bool {
	if e.StatusCode == 0 {
		return !errors.Is(e.Err, context.Canceled)
	}
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// ProviderPolicy controls how the pipeline calls the provider
type ProviderPolicy struct {
	Timeout       time.Duration
	MaxRetries    int
	Backoff       time.Duration
	RatePerMinute int
}

// PolicyCompleter applies timeouts, retries and a rate limit around a Completer
type PolicyCompleter struct {
	next    Completer
	policy  ProviderPolicy
	limiter *rate.Limiter
}

// NewPolicyCompleter wraps next with the given policy
func NewPolicyCompleter(next Completer, policy ProviderPolicy) *PolicyCompleter {
	// The provider is always called at least once
	if policy.MaxRetries < 0 {
		policy.MaxRetries = 0
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if policy.RatePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(policy.RatePerMinute)), policy.RatePerMinute)
	}

	return &PolicyCompleter{
		next:    next,
		policy:  policy,
		limiter: limiter,
	}
}

// Name returns the wrapped provider's name
func (p *PolicyCompleter) Name() string {
	return p.next.Name()
}

// Complete calls the provider, retrying transport errors, 429 and 5xx replies
func (p *PolicyCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= p.policy.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", &ProviderError{Provider: p.next.Name(), Err: ctx.Err()}
			case <-time.After(time.Duration(attempt) * p.policy.Backoff):
			}
		}

		if err := p.limiter.Wait(ctx); err != nil {
			return "", &ProviderError{Provider: p.next.Name(), Err: err}
		}

		reply, err := p.attempt(ctx, prompt)
		if err == nil {
			return reply, nil
		}
		lastErr = err

		var providerErr *ProviderError
		if !errors.As(err, &providerErr) || !providerErr.Retryable() {
			return "", err
		}
		log.Printf("Warning: %s attempt %d failed: %v", p.next.Name(), attempt+1, err)
	}

	return "", lastErr
}

func (p *PolicyCompleter) attempt(ctx context.Context, prompt string) (string, error) {
	if p.policy.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.policy.Timeout)
		defer cancel()
	}
	return p.next.Complete(ctx, prompt)
}
