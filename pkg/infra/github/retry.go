package github

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/cenkalti/backoff"
	"github.com/google/go-github/v75/github"
)

// once runs call a single time under the rate limiter and the call timeout
func (c *client) once(ctx context.Context, call func(ctx context.Context) error) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()
	return call(callCtx)
}

// retry runs an idempotent query, retrying transient failures with exponential backoff
func (c *client) retry(ctx context.Context, call func(ctx context.Context) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(b, c.maxRetries), ctx)

	return backoff.Retry(func() error {
		err := c.once(ctx, call)
		if err == nil {
			return nil
		}
		if !isTransient(ctx, err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}

// isTransient reports whether a failed request may succeed when sent again
func isTransient(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}

	var gqlErr *graphqlErrors
	if errors.As(err, &gqlErr) {
		return false
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return false
	}

	// a truncated body decodes to io.ErrUnexpectedEOF
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return false
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return false
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return true
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		code := respErr.Response.StatusCode
		return code >= http.StatusInternalServerError || code == http.StatusTooManyRequests
	}

	// network failures and per call timeouts
	return true
}
