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
	"testing"

	"github.com/gilneto8/peggit/internal/constants"
	"github.com/gilneto8/peggit/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConfigService(t *testing.T, validateForums bool) (*testEnv, *ConfigurationService, string) {
	t.Helper()
	env := newTestEnv(t)
	login, err := env.auth.Login(context.Background(), "alice", "correct-pw")
	require.NoError(t, err)
	svc := NewConfigurationService(env.configs, env.users, env.auth, validateForums, nil)
	return env, svc, login.UserID
}

func TestGetConfiguration_DefaultsWhenUnsaved(t *testing.T) {
	_, svc, userID := newConfigService(t, false)

	cfg, err := svc.GetConfiguration(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfiguration(), cfg)
	assert.Equal(t, 10, cfg.TopPostsLimit)
	assert.Equal(t, 10, cfg.TopCommentsLimit)
	assert.Equal(t, 24, cfg.LastHours)
	assert.Equal(t, "new", cfg.OrderBy)
	assert.Equal(t, "hour", cfg.TimeFilter)
	assert.NotNil(t, cfg.Forums)
	assert.NotNil(t, cfg.TimeRanges)
}

func TestGetConfiguration_UnknownUser(t *testing.T) {
	_, svc, _ := newConfigService(t, false)

	_, err := svc.GetConfiguration(context.Background(), "ghost")
	assert.ErrorIs(t, err, constants.ErrUserNotFound)
}

func TestSaveConfiguration_RoundTrip(t *testing.T) {
	_, svc, userID := newConfigService(t, true)
	ctx := context.Background()

	resp, err := svc.SaveConfiguration(ctx, userID, &dto.SaveConfigurationRequest{
		GeneralContext: "go tooling",
		OrderBy:        "top",
		TimeFilter:     "week",
		Forums:         []dto.Forum{{Identifier: "r/golang", SpecificContext: "generics"}},
		TimeRanges:     []dto.TimeRange{{Min: 20, Max: 22}, {Min: 7.5, Max: 9}},
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Positive(t, resp.ConfigID)
	assert.Equal(t, "golang", resp.Configurations.Forums[0].Identifier)
	assert.Equal(t, 7.5, resp.Configurations.TimeRanges[0].Min)

	cfg, err := svc.GetConfiguration(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "go tooling", cfg.GeneralContext)
	assert.Equal(t, "top", cfg.OrderBy)
	assert.Equal(t, "week", cfg.TimeFilter)
	assert.Equal(t, 10, cfg.TopPostsLimit)
	require.Len(t, cfg.Forums, 1)
	assert.Equal(t, "golang", cfg.Forums[0].Identifier)
	assert.Equal(t, "generics", cfg.Forums[0].SpecificContext)
	require.Len(t, cfg.TimeRanges, 2)
	assert.Equal(t, 7.5, cfg.TimeRanges[0].Min)
	assert.Equal(t, 20.0, cfg.TimeRanges[1].Min)
}

func TestSaveConfiguration_UnknownForumRejected(t *testing.T) {
	env, svc, userID := newConfigService(t, true)
	ctx := context.Background()

	_, err := svc.SaveConfiguration(ctx, userID, &dto.SaveConfigurationRequest{
		Forums: []dto.Forum{{Identifier: "golang"}, {Identifier: "nosuchforum"}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, constants.ErrForumNotFound)
	var unknown *UnknownForumsError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, []string{"nosuchforum"}, unknown.Forums)

	cfg, err := env.configs.GetConfiguration(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, cfg, "nothing is stored when validation fails")
}

func TestSaveConfiguration_OnlyNewForumsAreChecked(t *testing.T) {
	env, svc, userID := newConfigService(t, true)
	ctx := context.Background()

	_, err := svc.SaveConfiguration(ctx, userID, &dto.SaveConfigurationRequest{
		Forums: []dto.Forum{{Identifier: "golang"}},
	})
	require.NoError(t, err)
	require.Len(t, env.entities.names, 1)

	_, err = svc.SaveConfiguration(ctx, userID, &dto.SaveConfigurationRequest{
		Forums: []dto.Forum{{Identifier: "golang"}, {Identifier: "programming"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"golang", "programming"}, env.entities.names)
}

func TestSaveConfiguration_ForumCheckDisabled(t *testing.T) {
	env, svc, userID := newConfigService(t, false)

	_, err := svc.SaveConfiguration(context.Background(), userID, &dto.SaveConfigurationRequest{
		Forums: []dto.Forum{{Identifier: "nosuchforum"}},
	})
	require.NoError(t, err)
	assert.Empty(t, env.entities.names)
}

func TestSaveConfiguration_Validation(t *testing.T) {
	_, svc, userID := newConfigService(t, false)

	tests := []struct {
		name    string
		req     dto.SaveConfigurationRequest
		message string
	}{
		{"posts limit too high", dto.SaveConfigurationRequest{TopPostsLimit: 101}, "topPostsLimit"},
		{"comments limit negative", dto.SaveConfigurationRequest{TopCommentsLimit: -1}, "topCommentsLimit"},
		{"last hours negative", dto.SaveConfigurationRequest{LastHours: -5}, "lastHours"},
		{"bad order", dto.SaveConfigurationRequest{OrderBy: "hot"}, "orderBy must be one of: new, top"},
		{"bad time filter", dto.SaveConfigurationRequest{TimeFilter: "decade"}, "timeFilter"},
		{"bad forum", dto.SaveConfigurationRequest{Forums: []dto.Forum{{Identifier: "no spaces"}}}, "not a valid subreddit"},
		{"duplicate forum", dto.SaveConfigurationRequest{Forums: []dto.Forum{{Identifier: "golang"}, {Identifier: "r/GoLang"}}}, "more than once"},
		{"range out of day", dto.SaveConfigurationRequest{TimeRanges: []dto.TimeRange{{Min: 0, Max: 24}}}, "timeRanges[0].max must not exceed 23.5"},
		{"range inverted", dto.SaveConfigurationRequest{TimeRanges: []dto.TimeRange{{Min: 5, Max: 4}}}, "timeRanges[0].min must not be greater than max"},
		{"range off step", dto.SaveConfigurationRequest{TimeRanges: []dto.TimeRange{{Min: 1.25, Max: 2}}}, "hour steps"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SaveConfiguration(context.Background(), userID, &tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, constants.ErrInvalidConfiguration)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Error(), tt.message)
		})
	}
}

func TestSaveTimeRanges(t *testing.T) {
	_, svc, userID := newConfigService(t, false)
	ctx := context.Background()

	saved, err := svc.SaveTimeRanges(ctx, userID, []dto.TimeRange{{Min: 12, Max: 13.5}, {Min: 0, Max: 23.5}})
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, 0.0, saved[0].Min)
	assert.Equal(t, 23.5, saved[0].Max)
	assert.NotZero(t, saved[0].ID)

	_, err = svc.SaveTimeRanges(ctx, userID, []dto.TimeRange{{Min: 3, Max: 2}})
	assert.ErrorIs(t, err, constants.ErrInvalidTimeRange)

	_, err = svc.SaveTimeRanges(ctx, userID, []dto.TimeRange{{Min: 3.25, Max: 4}})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"timeRanges[0] must use 0.5 hour steps"}, verr.Details)

	_, err = svc.SaveTimeRanges(ctx, "ghost", nil)
	assert.ErrorIs(t, err, constants.ErrUserNotFound)
}
