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

package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/gilneto8/peggit/internal/client"
	"github.com/gilneto8/peggit/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	checkIdentity = "identity"
	checkEntity   = "entity"

	// subredditKind is the Reddit thing prefix for subreddits
	subredditKind = "t5"

	maxResponseBytes = 1 << 20
)

var forumNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_]{1,20}$`)

// Outcome is the internal result of a provider round trip. Only Confirmed is reported as
// true at the boolean boundary; Rejected and Unavailable are kept apart for logs and metrics.
type Outcome int

const (
	OutcomeUnavailable Outcome = iota
	OutcomeRejected
	OutcomeConfirmed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeConfirmed:
		return metrics.OutcomeConfirmed
	case OutcomeRejected:
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeUnavailable
	}
}

// Credentials is a Reddit username/password pair
type Credentials struct {
	Username string
	Password string
}

// Config holds the script-app settings for the client
type Config struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
	TokenURL     string
	APIURL       string
	Timeout      time.Duration
	MaxRetries   int
}

// Client checks credentials and subreddits against Reddit. It keeps no per-user state:
// every check presents its credentials and obtains a fresh token.
type Client struct {
	oauth      *oauth2.Config
	apiURL     string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a Reddit client from the given configuration
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	retrying := client.NewRetryableHTTPClient(cfg.MaxRetries, cfg.Timeout, logger)

	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		apiURL:  strings.TrimRight(cfg.APIURL, "/"),
		timeout: cfg.Timeout,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &userAgentTransport{
				userAgent: cfg.UserAgent,
				base:      retrying.HTTPClient().Transport,
			},
		},
		logger: logger,
	}
}

// CheckIdentity reports whether Reddit accepts the credentials for the claimed username.
// Every failure mode, provider outages included, is reported as false.
func (c *Client) CheckIdentity(ctx context.Context, username, secret string) bool {
	return c.Verify(ctx, username, secret) == OutcomeConfirmed
}

// CheckEntityExists reports whether the subreddit exists, using creds to open the session.
// Every failure mode is reported as false.
func (c *Client) CheckEntityExists(ctx context.Context, creds Credentials, entityName string) bool {
	return c.Lookup(ctx, creds, entityName) == OutcomeConfirmed
}

// Verify logs in with the credentials and compares the "me" identity with the claimed username
func (c *Client) Verify(ctx context.Context, username, secret string) Outcome {
	start := time.Now()
	outcome, err := c.verify(ctx, username, secret)
	c.record(checkIdentity, outcome, start, err, zap.String("username", username))
	return outcome
}

func (c *Client) verify(ctx context.Context, username, secret string) (Outcome, error) {
	if strings.TrimSpace(username) == "" || secret == "" {
		return OutcomeRejected, fmt.Errorf("empty credentials")
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	httpClient, outcome, err := c.session(ctx, Credentials{Username: username, Password: secret})
	if err != nil {
		return outcome, err
	}

	var me struct {
		Name string `json:"name"`
	}
	status, err := c.getJSON(ctx, httpClient, "/api/v1/me", &me)
	if err != nil {
		return classifyStatus(status), err
	}
	if !strings.EqualFold(me.Name, username) {
		return OutcomeRejected, fmt.Errorf("identity mismatch: provider returned %q", me.Name)
	}
	return OutcomeConfirmed, nil
}

// Lookup checks that the named subreddit exists in Reddit's catalog
func (c *Client) Lookup(ctx context.Context, creds Credentials, entityName string) Outcome {
	start := time.Now()
	outcome, err := c.lookup(ctx, creds, entityName)
	c.record(checkEntity, outcome, start, err, zap.String("forum", entityName))
	return outcome
}

func (c *Client) lookup(ctx context.Context, creds Credentials, entityName string) (Outcome, error) {
	name, ok := NormalizeForumName(entityName)
	if !ok {
		return OutcomeRejected, fmt.Errorf("invalid forum name")
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	httpClient, outcome, err := c.session(ctx, creds)
	if err != nil {
		return outcome, err
	}

	var about struct {
		Kind string `json:"kind"`
	}
	status, err := c.getJSON(ctx, httpClient, "/r/"+url.PathEscape(name)+"/about", &about)
	if err != nil {
		return classifyStatus(status), err
	}
	if about.Kind != subredditKind {
		return OutcomeRejected, fmt.Errorf("unexpected kind %q", about.Kind)
	}
	return OutcomeConfirmed, nil
}

// NormalizeForumName strips a leading "r/" or "/r/" and validates the subreddit name
func NormalizeForumName(name string) (string, bool) {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "/")
	if len(name) > 2 && strings.EqualFold(name[:2], "r/") {
		name = name[2:]
	}
	name = strings.TrimSuffix(name, "/")
	return name, forumNamePattern.MatchString(name)
}

// session performs the password grant and returns an HTTP client carrying the bearer token
func (c *Client) session(ctx context.Context, creds Credentials) (*http.Client, Outcome, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	token, err := c.oauth.PasswordCredentialsToken(ctx, creds.Username, creds.Password)
	if err != nil {
		return nil, classifyTokenError(err), fmt.Errorf("token request failed: %w", err)
	}
	return c.oauth.Client(ctx, token), OutcomeConfirmed, nil
}

// getJSON issues a GET against the API and decodes a 200 response. The status code is
// returned even on error so the caller can classify it.
func (c *Client) getJSON(ctx context.Context, httpClient *http.Client, path string, out interface{}) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+path, nil)
	if err != nil {
		return 0, err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return resp.StatusCode, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return resp.StatusCode, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Client) record(check string, outcome Outcome, start time.Time, err error, field zap.Field) {
	metrics.IdentityChecksTotal.WithLabelValues(check, outcome.String()).Inc()
	metrics.IdentityCheckDurationSeconds.WithLabelValues(check).Observe(time.Since(start).Seconds())

	switch outcome {
	case OutcomeConfirmed:
		c.logger.Debug("Reddit check confirmed", zap.String("check", check), field)
	case OutcomeRejected:
		c.logger.Info("Reddit check rejected", zap.String("check", check), field, zap.Error(err))
	default:
		c.logger.Warn("Reddit unavailable", zap.String("check", check), field, zap.Error(err))
	}
}

// classifyStatus maps a non-200 API status to an outcome. Status 0 means no response.
func classifyStatus(status int) Outcome {
	switch {
	case status == 0, status == http.StatusTooManyRequests, status >= 500:
		return OutcomeUnavailable
	default:
		return OutcomeRejected
	}
}

func classifyTokenError(err error) Outcome {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		status := retrieveErr.Response.StatusCode
		if status >= 200 && status < 300 {
			// Reddit reports a bad password as 200 {"error": "invalid_grant"}
			return OutcomeRejected
		}
		return classifyStatus(status)
	}
	if strings.Contains(err.Error(), "missing access_token") {
		return OutcomeRejected
	}
	return OutcomeUnavailable
}

type userAgentTransport struct {
	userAgent string
	base      http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.userAgent == "" {
		return t.base.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(req)
}
