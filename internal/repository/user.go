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
	"strings"
	"time"

	"github.com/gilneto8/peggit/internal/database"
	"github.com/gilneto8/peggit/internal/encryption"
	"github.com/gilneto8/peggit/internal/model"
	"github.com/google/uuid"
)

const userColumns = `id, username, encrypted_password, iv, auth_tag, key_id, created_at, updated_at`

// UserRepo implements UserRepository
type UserRepo struct {
	db *database.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *database.DB) UserRepository {
	return &UserRepo{db: db}
}

// UpsertSealedSecret inserts the user or replaces its sealed secret in a single statement.
// Usernames match case-insensitively; the casing of the first login is kept.
func (r *UserRepo) UpsertSealedSecret(ctx context.Context, username string, sealed *encryption.SealedSecret) (*model.User, error) {
	if sealed == nil {
		return nil, fmt.Errorf("sealed secret is required")
	}
	now := time.Now().UTC()

	query := r.db.Rebind(`
		INSERT INTO users (id, username, username_key, encrypted_password, iv, auth_tag, key_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (username_key) DO UPDATE SET
			encrypted_password = excluded.encrypted_password,
			iv = excluded.iv,
			auth_tag = excluded.auth_tag,
			key_id = excluded.key_id,
			updated_at = excluded.updated_at
		RETURNING ` + userColumns)

	user := &model.User{}
	err := r.db.GetContext(ctx, user, query,
		uuid.New().String(), username, usernameKey(username), sealed.Ciphertext, sealed.IV, sealed.AuthTag, sealed.KeyID, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user %q: %w", username, err)
	}
	return user, nil
}

// GetSealedSecret returns the stored sealed secret of a user
func (r *UserRepo) GetSealedSecret(ctx context.Context, userID string) (*encryption.SealedSecret, error) {
	user, err := r.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	return user.SealedSecret(), nil
}

// GetUserByID retrieves a user by ID
func (r *UserRepo) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, userID)
}

// GetUserByUsername retrieves a user by username, ignoring case
func (r *UserRepo) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE username_key = ?`, usernameKey(username))
}

func usernameKey(username string) string {
	return strings.ToLower(username)
}

func (r *UserRepo) getUser(ctx context.Context, query string, arg string) (*model.User, error) {
	user := &model.User{}
	if err := r.db.GetContext(ctx, user, r.db.Rebind(query), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}
