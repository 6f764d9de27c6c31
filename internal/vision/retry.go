// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vision

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// callWithRetry runs fn with exponential backoff on transient API
// failures. Attempt n waits 2^(n-1) * backoffBase before running.
// Non-retryable errors are returned immediately.
func callWithRetry(ctx context.Context, maxRetries int, fn func(context.Context) (openai.ChatCompletionResponse, error)) (openai.ChatCompletionResponse, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return openai.ChatCompletionResponse{}, ctx.Err()
			case <-time.After(backoff):
			}
		}

		resp, err := fn(ctx)
		if err == nil {
			return resp, nil
		}
		if !retryable(err) {
			return openai.ChatCompletionResponse{}, err
		}
		lastErr = err
	}
	return openai.ChatCompletionResponse{}, lastErr
}

// retryable reports whether the error is transient: a rate limit, a
// server-side failure, or a transport-level failure. Client errors such
// as a bad request or an invalid key never succeed on retry.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}
	// No HTTP status at all: the request never completed.
	return true
}

func retryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
