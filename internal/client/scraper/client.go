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

package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gilneto8/peggit/internal/client"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ErrNotConfigured is returned when no scraping backend URL is configured
var ErrNotConfigured = errors.New("scraper API URL is not configured")

// UpstreamError carries a non-2xx response from the scraping backend
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("scraper returned status %d", e.StatusCode)
}

// Request is the payload accepted by the scraping backend's /scrape endpoint
type Request struct {
	UserID           string `json:"user_id"`
	OrderBy          string `json:"order_by"`
	LastHours        *int   `json:"last_hours,omitempty"`
	TimeFilter       string `json:"time_filter,omitempty"`
	TopPostsLimit    int    `json:"top_posts_limit"`
	TopCommentsLimit int    `json:"top_comments_limit"`
}

// Comment is a scraped comment
type Comment struct {
	ID         string  `json:"id"`
	Author     string  `json:"author"`
	Body       string  `json:"body"`
	Score      int     `json:"score"`
	CreatedUTC float64 `json:"created_utc"`
}

// Post is a scraped post with its top comments
type Post struct {
	ID             string    `json:"id"`
	Subreddit      string    `json:"subreddit"`
	Title          string    `json:"title"`
	URL            string    `json:"url"`
	Author         string    `json:"author"`
	CreatedUTC     float64   `json:"created_utc"`
	Score          int       `json:"score"`
	NumComments    int       `json:"num_comments"`
	RelevanceScore *float64  `json:"relevance_score,omitempty"`
	Comments       []Comment `json:"comments"`
}

// Result is the data returned by a scrape
type Result struct {
	Posts []Post `json:"posts"`
}

type envelope struct {
	Data Result `json:"data"`
}

// Client forwards scrape requests to the scraping backend
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewClient creates a scraping backend client. An empty baseURL yields a client whose
// calls fail with ErrNotConfigured.
func NewClient(baseURL string, timeout time.Duration, maxRetries int, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	retrying := client.NewRetryableHTTPClient(maxRetries, timeout, logger)

	var httpClient *resty.Client
	if baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/"); baseURL != "" {
		httpClient = resty.NewWithClient(retrying.HTTPClient()).
			SetBaseURL(baseURL).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json")
	}

	return &Client{http: httpClient, logger: logger}
}

// Scrape posts the request to {baseURL}/scrape and returns the backend's data
func (c *Client) Scrape(ctx context.Context, req *Request) (*Result, error) {
	if c.http == nil {
		return nil, ErrNotConfigured
	}

	var out envelope
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/scrape")
	if err != nil {
		return nil, fmt.Errorf("scrape request failed: %w", err)
	}

	if resp.IsError() || resp.StatusCode() >= 300 {
		c.logger.Warn("Scraper returned an error",
			zap.Int("status", resp.StatusCode()),
			zap.String("user_id", req.UserID))
		return nil, &UpstreamError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	c.logger.Debug("Scrape completed",
		zap.String("user_id", req.UserID),
		zap.Int("posts", len(out.Data.Posts)),
		zap.Duration("elapsed", resp.Time()))

	return &out.Data, nil
}
