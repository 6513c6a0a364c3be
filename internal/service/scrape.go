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

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gilneto8/peggit/internal/client/scraper"
	"github.com/gilneto8/peggit/internal/constants"
	"github.com/gilneto8/peggit/internal/dto"
	"github.com/gilneto8/peggit/internal/metrics"
	"github.com/gilneto8/peggit/internal/utils"
	"go.uber.org/zap"
)

// Scraper forwards scrape requests to the scraping backend
type Scraper interface {
	Scrape(ctx context.Context, req *scraper.Request) (*scraper.Result, error)
}

type ScrapeService struct {
	scraper Scraper
	logger  *zap.Logger
}

func NewScrapeService(s Scraper, logger *zap.Logger) *ScrapeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScrapeService{scraper: s, logger: logger}
}

// Scrape validates the request and forwards it on behalf of userID.
// Non-2xx backend replies are returned as *scraper.UpstreamError.
func (s *ScrapeService) Scrape(ctx context.Context, userID string, req *dto.ScrapeRequest) (*scraper.Result, error) {
	if details := validateScrapeRequest(req); len(details) > 0 {
		metrics.ScrapeRequestsTotal.WithLabelValues("invalid").Inc()
		return nil, &ValidationError{Err: constants.ErrInvalidScrapeRequest, Details: details}
	}

	forward := &scraper.Request{
		UserID:           userID,
		OrderBy:          req.OrderBy,
		TopPostsLimit:    req.TopPostsLimit,
		TopCommentsLimit: req.TopCommentsLimit,
	}
	// Only the parameter that applies to the order mode is forwarded
	if req.OrderBy == constants.OrderByNew {
		forward.LastHours = req.LastHours
	} else {
		forward.TimeFilter = req.TimeFilter
	}

	result, err := s.scraper.Scrape(ctx, forward)
	if err != nil {
		var upstream *scraper.UpstreamError
		switch {
		case errors.As(err, &upstream):
			metrics.ScrapeRequestsTotal.WithLabelValues("upstream_error").Inc()
			return nil, err
		case errors.Is(err, scraper.ErrNotConfigured):
			metrics.ScrapeRequestsTotal.WithLabelValues("not_configured").Inc()
			return nil, fmt.Errorf("%w: %w", constants.ErrScraperUnavailable, err)
		default:
			metrics.ScrapeRequestsTotal.WithLabelValues(metrics.OutcomeError).Inc()
			s.logger.Error("Scrape request failed", zap.String("user_id", userID), zap.Error(err))
			return nil, fmt.Errorf("%w: %w", constants.ErrScraperUnavailable, err)
		}
	}

	metrics.ScrapeRequestsTotal.WithLabelValues("success").Inc()
	s.logger.Info("Scrape completed",
		zap.String("user_id", userID),
		zap.String("order_by", req.OrderBy),
		zap.Int("posts", len(result.Posts)),
	)
	return result, nil
}

// validateScrapeRequest checks the binding tags, then the parameter each order mode requires
func validateScrapeRequest(req *dto.ScrapeRequest) []string {
	details := utils.ValidateStruct(req)
	switch req.OrderBy {
	case constants.OrderByNew:
		if req.LastHours == nil {
			details = append(details, "'last_hours' is required when order_by is 'new'")
		}
	case constants.OrderByTop:
		if req.TimeFilter == "" {
			details = append(details, "'time_filter' is required when order_by is 'top'")
		}
	}
	return details
}
