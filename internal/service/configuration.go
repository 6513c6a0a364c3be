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
	"math"
	"sort"
	"strings"

	"github.com/gilneto8/peggit/internal/client/reddit"
	"github.com/gilneto8/peggit/internal/constants"
	"github.com/gilneto8/peggit/internal/dto"
	"github.com/gilneto8/peggit/internal/model"
	"github.com/gilneto8/peggit/internal/repository"
	"github.com/gilneto8/peggit/internal/utils"
	"go.uber.org/zap"
)

// ForumValidator checks forum identifiers on behalf of a user
type ForumValidator interface {
	ValidateEntity(ctx context.Context, entityName, callerID string) (bool, error)
}

type ConfigurationService struct {
	configRepo     repository.ConfigurationRepository
	userRepo       repository.UserRepository
	forums         ForumValidator
	validateForums bool
	logger         *zap.Logger
}

func NewConfigurationService(configRepo repository.ConfigurationRepository, userRepo repository.UserRepository,
	forums ForumValidator, validateForums bool, logger *zap.Logger) *ConfigurationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfigurationService{
		configRepo:     configRepo,
		userRepo:       userRepo,
		forums:         forums,
		validateForums: validateForums,
		logger:         logger,
	}
}

// GetConfiguration returns the user's configuration, or the defaults if none was saved
func (s *ConfigurationService) GetConfiguration(ctx context.Context, userID string) (*dto.Configuration, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	cfg, err := s.configRepo.GetConfiguration(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return DefaultConfiguration(), nil
	}
	return ModelToDTO(cfg), nil
}

// SaveConfiguration validates the request, checks forums not stored before against Reddit,
// and replaces the stored configuration
func (s *ConfigurationService) SaveConfiguration(ctx context.Context, userID string,
	req *dto.SaveConfigurationRequest) (*dto.SaveConfigurationResponse, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	if details := utils.ValidateStruct(req); len(details) > 0 {
		return nil, &ValidationError{Err: constants.ErrInvalidConfiguration, Details: details}
	}

	cfg := &dto.Configuration{
		GeneralContext:   req.GeneralContext,
		TopPostsLimit:    req.TopPostsLimit,
		TopCommentsLimit: req.TopCommentsLimit,
		LastHours:        req.LastHours,
		OrderBy:          req.OrderBy,
		TimeFilter:       req.TimeFilter,
		Forums:           req.Forums,
		TimeRanges:       req.TimeRanges,
	}
	applyDefaults(cfg)
	if err := normalizeConfiguration(cfg); err != nil {
		return nil, err
	}
	sort.SliceStable(cfg.TimeRanges, func(i, j int) bool {
		return cfg.TimeRanges[i].Min < cfg.TimeRanges[j].Min
	})

	if s.validateForums {
		if err := s.checkNewForums(ctx, userID, cfg.Forums); err != nil {
			return nil, err
		}
	}

	m := DTOToModel(userID, cfg)
	configID, err := s.configRepo.SaveConfiguration(ctx, m)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Configuration saved",
		zap.String("user_id", userID),
		zap.Int64("config_id", configID),
		zap.Int("forums", len(cfg.Forums)),
		zap.Int("time_ranges", len(cfg.TimeRanges)),
	)

	return &dto.SaveConfigurationResponse{
		Success:        true,
		ConfigID:       configID,
		Configurations: cfg,
	}, nil
}

// SaveTimeRanges replaces the user's time ranges and returns them ordered by start hour
func (s *ConfigurationService) SaveTimeRanges(ctx context.Context, userID string, ranges []dto.TimeRange) ([]dto.TimeRange, error) {
	details := utils.ValidateStruct(&dto.SaveTimeRangesRequest{TimeRanges: ranges})
	details = append(details, checkHalfHourGrid(ranges)...)
	if len(details) > 0 {
		return nil, &ValidationError{Err: constants.ErrInvalidTimeRange, Details: details}
	}

	models := make([]model.TimeRange, 0, len(ranges))
	for _, tr := range ranges {
		models = append(models, model.TimeRange{Min: tr.Min, Max: tr.Max})
	}

	saved, err := s.configRepo.ReplaceTimeRanges(ctx, userID, models)
	if err != nil {
		return nil, mapNotFound(err)
	}

	out := make([]dto.TimeRange, 0, len(saved))
	for _, tr := range saved {
		out = append(out, dto.TimeRange{ID: tr.ID, Min: tr.Min, Max: tr.Max})
	}
	return out, nil
}

func (s *ConfigurationService) requireUser(ctx context.Context, userID string) error {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return constants.ErrUserNotFound
	}
	return nil
}

// checkNewForums validates only the identifiers that are not already stored for the user
func (s *ConfigurationService) checkNewForums(ctx context.Context, userID string, forums []dto.Forum) error {
	existing, err := s.configRepo.GetConfiguration(ctx, userID)
	if err != nil {
		return err
	}
	known := make(map[string]bool)
	if existing != nil {
		for _, f := range existing.Forums {
			known[strings.ToLower(f.Identifier)] = true
		}
	}

	var unknown []string
	for _, f := range forums {
		if known[strings.ToLower(f.Identifier)] {
			continue
		}
		exists, err := s.forums.ValidateEntity(ctx, f.Identifier, userID)
		if err != nil {
			return err
		}
		if !exists {
			unknown = append(unknown, f.Identifier)
		}
	}

	if len(unknown) > 0 {
		s.logger.Info("Rejected configuration with unknown forums",
			zap.String("user_id", userID), zap.Strings("forums", unknown))
		return &UnknownForumsError{Err: constants.ErrForumNotFound, Forums: unknown}
	}
	return nil
}

// DefaultConfiguration returns the configuration used before a user saves one
func DefaultConfiguration() *dto.Configuration {
	cfg := &dto.Configuration{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *dto.Configuration) {
	if cfg.TopPostsLimit == 0 {
		cfg.TopPostsLimit = constants.DefaultTopPostsLimit
	}
	if cfg.TopCommentsLimit == 0 {
		cfg.TopCommentsLimit = constants.DefaultTopCommentsLimit
	}
	if cfg.LastHours == 0 {
		cfg.LastHours = constants.DefaultLastHours
	}
	if cfg.OrderBy == "" {
		cfg.OrderBy = constants.DefaultOrderBy
	}
	if cfg.TimeFilter == "" {
		cfg.TimeFilter = constants.DefaultTimeFilter
	}
	if cfg.Forums == nil {
		cfg.Forums = []dto.Forum{}
	}
	if cfg.TimeRanges == nil {
		cfg.TimeRanges = []dto.TimeRange{}
	}
}

// normalizeConfiguration normalizes forum identifiers in place and checks what the binding
// tags cannot: subreddit names, duplicates and the half-hour grid
func normalizeConfiguration(cfg *dto.Configuration) error {
	var details []string

	seen := make(map[string]bool)
	forums := make([]dto.Forum, 0, len(cfg.Forums))
	for _, f := range cfg.Forums {
		name, ok := reddit.NormalizeForumName(f.Identifier)
		if !ok {
			details = append(details, fmt.Sprintf("forum %q is not a valid subreddit name", f.Identifier))
			continue
		}
		if seen[strings.ToLower(name)] {
			details = append(details, fmt.Sprintf("forum %q is listed more than once", name))
			continue
		}
		seen[strings.ToLower(name)] = true
		forums = append(forums, dto.Forum{Identifier: name, SpecificContext: f.SpecificContext})
	}
	cfg.Forums = forums

	details = append(details, checkHalfHourGrid(cfg.TimeRanges)...)

	if len(details) > 0 {
		return &ValidationError{Err: constants.ErrInvalidConfiguration, Details: details}
	}
	return nil
}

func checkHalfHourGrid(ranges []dto.TimeRange) []string {
	var details []string
	for i, tr := range ranges {
		if !onStep(tr.Min) || !onStep(tr.Max) {
			details = append(details, fmt.Sprintf("timeRanges[%d] must use %v hour steps", i, constants.HourOfDayStep))
		}
	}
	return details
}

func onStep(hour float64) bool {
	steps := hour / constants.HourOfDayStep
	return math.Abs(steps-math.Round(steps)) < 1e-9
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return constants.ErrUserNotFound
	}
	return err
}

// ModelToDTO converts a stored configuration to its API representation
func ModelToDTO(cfg *model.Configuration) *dto.Configuration {
	out := &dto.Configuration{
		GeneralContext:   cfg.GeneralContext,
		TopPostsLimit:    cfg.TopPostsLimit,
		TopCommentsLimit: cfg.TopCommentsLimit,
		LastHours:        cfg.LastHours,
		OrderBy:          cfg.OrderBy,
		TimeFilter:       cfg.TimeFilter,
		Forums:           make([]dto.Forum, 0, len(cfg.Forums)),
		TimeRanges:       make([]dto.TimeRange, 0, len(cfg.TimeRanges)),
	}
	for _, f := range cfg.Forums {
		out.Forums = append(out.Forums, dto.Forum{ID: f.ID, Identifier: f.Identifier, SpecificContext: f.SpecificContext})
	}
	for _, tr := range cfg.TimeRanges {
		out.TimeRanges = append(out.TimeRanges, dto.TimeRange{ID: tr.ID, Min: tr.Min, Max: tr.Max})
	}
	applyDefaults(out)
	return out
}

// DTOToModel converts an API configuration to its stored representation
func DTOToModel(userID string, cfg *dto.Configuration) *model.Configuration {
	out := &model.Configuration{
		UserID:           userID,
		GeneralContext:   cfg.GeneralContext,
		TopPostsLimit:    cfg.TopPostsLimit,
		TopCommentsLimit: cfg.TopCommentsLimit,
		LastHours:        cfg.LastHours,
		OrderBy:          cfg.OrderBy,
		TimeFilter:       cfg.TimeFilter,
	}
	for _, f := range cfg.Forums {
		out.Forums = append(out.Forums, model.Forum{Identifier: f.Identifier, SpecificContext: f.SpecificContext})
	}
	for _, tr := range cfg.TimeRanges {
		out.TimeRanges = append(out.TimeRanges, model.TimeRange{Min: tr.Min, Max: tr.Max})
	}
	return out
}
