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
	"errors"

	"github.com/gilneto8/peggit/internal/encryption"
	"github.com/gilneto8/peggit/internal/model"
)

// ErrNotFound is returned when an operation targets a user that does not exist
var ErrNotFound = errors.New("record not found")

// UserRepository defines the interface for user and sealed credential data access
type UserRepository interface {
	// UpsertSealedSecret creates the user on first login or overwrites its sealed secret.
	// Concurrent calls for one username leave a single row (last writer wins).
	UpsertSealedSecret(ctx context.Context, username string, sealed *encryption.SealedSecret) (*model.User, error)
	GetSealedSecret(ctx context.Context, userID string) (*encryption.SealedSecret, error)
	GetUserByID(ctx context.Context, userID string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// ConfigurationRepository defines the interface for configuration data access
type ConfigurationRepository interface {
	// GetConfiguration returns nil when the user has not saved a configuration yet
	GetConfiguration(ctx context.Context, userID string) (*model.Configuration, error)
	// SaveConfiguration upserts the configuration and replaces its forums and time ranges
	SaveConfiguration(ctx context.Context, cfg *model.Configuration) (int64, error)
	// ReplaceTimeRanges replaces the time ranges and returns them ordered by Min
	ReplaceTimeRanges(ctx context.Context, userID string, ranges []model.TimeRange) ([]model.TimeRange, error)
}
