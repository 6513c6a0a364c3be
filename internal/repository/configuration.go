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

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gilneto8/peggit/internal/constants"
	"github.com/gilneto8/peggit/internal/database"
	"github.com/gilneto8/peggit/internal/model"
	"github.com/jmoiron/sqlx"
)

const configurationColumns = `id, user_id, general_context, top_posts_limit, top_comments_limit,
	last_hours, order_by, time_filter, created_at, updated_at`

// ConfigurationRepo implements ConfigurationRepository
type ConfigurationRepo struct {
	db *database.DB
}

// NewConfigurationRepo creates a new configuration repository
func NewConfigurationRepo(db *database.DB) ConfigurationRepository {
	return &ConfigurationRepo{db: db}
}

// GetConfiguration retrieves a user's configuration with its forums and time ranges
func (r *ConfigurationRepo) GetConfiguration(ctx context.Context, userID string) (*model.Configuration, error) {
	cfg := &model.Configuration{}
	query := r.db.Rebind(`SELECT ` + configurationColumns + ` FROM configurations WHERE user_id = ?`)
	if err := r.db.GetContext(ctx, cfg, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	cfg.Forums = []model.Forum{}
	if err := r.db.SelectContext(ctx, &cfg.Forums, r.db.Rebind(`
		SELECT id, config_id, identifier, specific_context
		FROM forums
		WHERE config_id = ?
		ORDER BY id ASC
	`), cfg.ID); err != nil {
		return nil, fmt.Errorf("failed to load forums: %w", err)
	}

	ranges, err := selectTimeRanges(ctx, r.db.DB, cfg.ID)
	if err != nil {
		return nil, err
	}
	cfg.TimeRanges = ranges

	return cfg, nil
}

// SaveConfiguration upserts the configuration row and replaces its forums and time ranges
// within one transaction
func (r *ConfigurationRepo) SaveConfiguration(ctx context.Context, cfg *model.Configuration) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := ensureUser(ctx, tx, cfg.UserID); err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	var configID int64
	err = tx.GetContext(ctx, &configID, tx.Rebind(`
		INSERT INTO configurations (user_id, general_context, top_posts_limit, top_comments_limit,
			last_hours, order_by, time_filter, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			general_context = excluded.general_context,
			top_posts_limit = excluded.top_posts_limit,
			top_comments_limit = excluded.top_comments_limit,
			last_hours = excluded.last_hours,
			order_by = excluded.order_by,
			time_filter = excluded.time_filter,
			updated_at = excluded.updated_at
		RETURNING id
	`), cfg.UserID, cfg.GeneralContext, cfg.TopPostsLimit, cfg.TopCommentsLimit,
		cfg.LastHours, cfg.OrderBy, cfg.TimeFilter, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert configuration: %w", err)
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM forums WHERE config_id = ?`), configID); err != nil {
		return 0, fmt.Errorf("failed to clear forums: %w", err)
	}
	for _, forum := range cfg.Forums {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO forums (config_id, identifier, specific_context) VALUES (?, ?, ?)
		`), configID, forum.Identifier, forum.SpecificContext); err != nil {
			return 0, fmt.Errorf("failed to insert forum %q: %w", forum.Identifier, err)
		}
	}

	if err := replaceTimeRanges(ctx, tx, configID, cfg.TimeRanges); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit configuration: %w", err)
	}
	cfg.ID = configID
	return configID, nil
}

// ReplaceTimeRanges replaces a user's time ranges, creating a default configuration if needed
func (r *ConfigurationRepo) ReplaceTimeRanges(ctx context.Context, userID string, ranges []model.TimeRange) ([]model.TimeRange, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := ensureUser(ctx, tx, userID); err != nil {
		return nil, err
	}

	var configID int64
	err = tx.GetContext(ctx, &configID, tx.Rebind(`SELECT id FROM configurations WHERE user_id = ?`), userID)
	if errors.Is(err, sql.ErrNoRows) {
		now := time.Now().UTC()
		err = tx.GetContext(ctx, &configID, tx.Rebind(`
			INSERT INTO configurations (user_id, general_context, top_posts_limit, top_comments_limit,
				last_hours, order_by, time_filter, created_at, updated_at)
			VALUES (?, '', ?, ?, ?, ?, ?, ?, ?)
			RETURNING id
		`), userID, constants.DefaultTopPostsLimit, constants.DefaultTopCommentsLimit,
			constants.DefaultLastHours, constants.DefaultOrderBy, constants.DefaultTimeFilter, now, now)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve configuration: %w", err)
	}

	if err := replaceTimeRanges(ctx, tx, configID, ranges); err != nil {
		return nil, err
	}

	saved, err := selectTimeRanges(ctx, tx, configID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit time ranges: %w", err)
	}
	return saved, nil
}

func ensureUser(ctx context.Context, q sqlx.ExtContext, userID string) error {
	var exists int
	err := sqlx.GetContext(ctx, q, &exists, q.Rebind(`SELECT 1 FROM users WHERE id = ?`), userID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	return err
}

func replaceTimeRanges(ctx context.Context, tx *sqlx.Tx, configID int64, ranges []model.TimeRange) error {
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM time_ranges WHERE config_id = ?`), configID); err != nil {
		return fmt.Errorf("failed to clear time ranges: %w", err)
	}
	for _, tr := range ranges {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO time_ranges (config_id, min_hour, max_hour) VALUES (?, ?, ?)
		`), configID, tr.Min, tr.Max); err != nil {
			return fmt.Errorf("failed to insert time range: %w", err)
		}
	}
	return nil
}

func selectTimeRanges(ctx context.Context, q sqlx.ExtContext, configID int64) ([]model.TimeRange, error) {
	ranges := []model.TimeRange{}
	if err := sqlx.SelectContext(ctx, q, &ranges, q.Rebind(`
		SELECT id, config_id, min_hour, max_hour
		FROM time_ranges
		WHERE config_id = ?
		ORDER BY min_hour ASC, max_hour ASC, id ASC
	`), configID); err != nil {
		return nil, fmt.Errorf("failed to load time ranges: %w", err)
	}
	return ranges, nil
}
