/*
 *  Copyright (c) 2025, WSO2 LLC. (http://www.wso2.org) All Rights Reserved.
 *
 *  Licensed under the Apache License, Version 2.0 (the "License");
 *  you may not use this file except in compliance with the License.
 *  You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 *  Unless required by applicable law or agreed to in writing, software
 *  distributed under the License is distributed on an "AS IS" BASIS,
 *  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *  See the License for the specific language governing permissions and
 *  limitations under the License.
 *
 */

package client

import (
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// RetryableHTTPClient wraps an HTTP client with retry logic
type RetryableHTTPClient struct {
	client     *http.Client
	maxRetries int
	timeout    time.Duration
	backoff    time.Duration
	logger     *zap.Logger
}

// NewRetryableHTTPClient creates a new HTTP client with retry capabilities
//
// Parameters:
//   - maxRetries: Maximum number of retry attempts (0 means a single round trip)
//   - timeout: Timeout duration for each HTTP request, retries included
//   - logger: Logger for retry attempts
//
// Returns:
//   - *RetryableHTTPClient: A configured HTTP client with retry logic
func NewRetryableHTTPClient(maxRetries int, timeout time.Duration, logger *zap.Logger) *RetryableHTTPClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &RetryableHTTPClient{
		maxRetries: maxRetries,
		timeout:    timeout,
		backoff:    1 * time.Second,
		logger:     logger,
	}
	r.client = &http.Client{
		Timeout:   timeout,
		Transport: &retryTransport{owner: r, base: http.DefaultTransport},
	}
	return r
}

// WithBackoff overrides the delay between attempts
func (r *RetryableHTTPClient) WithBackoff(backoff time.Duration) *RetryableHTTPClient {
	r.backoff = backoff
	return r
}

// HTTPClient returns the underlying *http.Client; its transport applies the retry policy
func (r *RetryableHTTPClient) HTTPClient() *http.Client {
	return r.client
}

// Do executes an HTTP request with retry logic
//
// Retry behavior:
//   - Retries on network errors or 5xx server errors
//   - Does NOT retry on 4xx client errors (non-retryable)
//   - Uses linear backoff between retries, aborted when the request context ends
//   - Maximum attempts = maxRetries + 1 (initial attempt + retries)
func (r *RetryableHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return r.client.Do(req)
}

type retryTransport struct {
	owner *RetryableHTTPClient
	base  http.RoundTripper
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := t.owner
	var resp *http.Response
	var err error

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		attemptReq := req
		if attempt > 0 {
			if req.Body != nil && req.Body != http.NoBody {
				if req.GetBody == nil {
					// body cannot be replayed
					return resp, err
				}
				body, bodyErr := req.GetBody()
				if bodyErr != nil {
					return resp, err
				}
				attemptReq = req.Clone(req.Context())
				attemptReq.Body = body
			}
			if resp != nil {
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
			}
		}

		resp, err = t.base.RoundTrip(attemptReq)

		// Success: no error and status code < 500
		if err == nil && resp.StatusCode < 500 {
			return resp, nil
		}

		if attempt < r.maxRetries {
			fields := []zap.Field{
				zap.Int("attempt", attempt+1),
				zap.Int("max_attempts", r.maxRetries+1),
				zap.String("host", req.URL.Host),
				zap.Duration("backoff", r.backoff),
			}
			if err != nil {
				r.logger.Warn("HTTP attempt failed, retrying", append(fields, zap.Error(err))...)
			} else {
				r.logger.Warn("HTTP attempt failed, retrying", append(fields, zap.Int("status", resp.StatusCode))...)
			}

			select {
			case <-req.Context().Done():
				if resp != nil {
					resp.Body.Close()
				}
				return nil, req.Context().Err()
			case <-time.After(r.backoff):
			}
		}
	}

	// All retries exhausted
	if err != nil {
		r.logger.Warn("All HTTP attempts failed",
			zap.Int("attempts", r.maxRetries+1),
			zap.String("host", req.URL.Host),
			zap.Error(err))
		return nil, err
	}

	r.logger.Warn("All HTTP attempts failed",
		zap.Int("attempts", r.maxRetries+1),
		zap.String("host", req.URL.Host),
		zap.Int("status", resp.StatusCode))
	return resp, nil
}
