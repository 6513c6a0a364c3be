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
	"strings"
	"sync"
	"testing"

	"github.com/gilneto8/peggit/internal/constants"
	"github.com/gilneto8/peggit/internal/encryption"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_Success(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.auth.Login(ctx, "alice", "correct-pw")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "alice", resp.Username)
	assert.NotEmpty(t, resp.UserID)
	assert.Equal(t, "token-"+resp.UserID+"-alice", resp.Token)

	stored, err := env.users.GetSealedSecret(ctx, resp.UserID)
	require.NoError(t, err)
	plaintext, err := env.codec.Unseal(stored)
	require.NoError(t, err)
	assert.Equal(t, "correct-pw", plaintext)

	// A second login keeps the same user id
	again, err := env.auth.Login(ctx, "alice", "correct-pw")
	require.NoError(t, err)
	assert.Equal(t, resp.UserID, again.UserID)
}

func TestLogin_RejectedLeavesStoredSecretUntouched(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.auth.Login(ctx, "alice", "correct-pw")
	require.NoError(t, err)
	before, err := env.users.GetSealedSecret(ctx, first.UserID)
	require.NoError(t, err)

	resp, err := env.auth.Login(ctx, "alice", "wrong-pw")
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, constants.ErrIdentityRejected)

	after, err := env.users.GetSealedSecret(ctx, first.UserID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestLogin_RejectedUnknownUserCreatesNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Login(ctx, "mallory", "guess")
	assert.ErrorIs(t, err, constants.ErrIdentityRejected)

	user, err := env.users.GetUserByUsername(ctx, "mallory")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestLogin_ConcurrentLoginsLeaveSingleValuedRow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	identity := identityFunc(func(_ context.Context, username, secret string) bool {
		return username == "bob" && strings.HasPrefix(secret, "bob-pw-")
	})
	auth := NewAuthService(NewCustodyService(identity, env.codec, nil), env.users, env.entities, fakeTokens{}, nil)

	secrets := []string{"bob-pw-1", "bob-pw-2"}
	ids := make([]string, len(secrets))
	var wg sync.WaitGroup
	for i, secret := range secrets {
		wg.Add(1)
		go func(i int, secret string) {
			defer wg.Done()
			resp, err := auth.Login(ctx, "bob", secret)
			if assert.NoError(t, err) {
				ids[i] = resp.UserID
			}
		}(i, secret)
	}
	wg.Wait()

	require.Equal(t, ids[0], ids[1])

	var count int
	require.NoError(t, env.db.Get(&count, `SELECT COUNT(*) FROM users WHERE username = 'bob'`))
	assert.Equal(t, 1, count)

	stored, err := env.users.GetSealedSecret(ctx, ids[0])
	require.NoError(t, err)
	plaintext, err := env.codec.Unseal(stored)
	require.NoError(t, err)
	assert.Contains(t, secrets, plaintext)
}

func TestValidateEntity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	login, err := env.auth.Login(ctx, "alice", "correct-pw")
	require.NoError(t, err)

	exists, err := env.auth.ValidateEntity(ctx, "r/golang", login.UserID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = env.auth.ValidateEntity(ctx, "doesnotexist", login.UserID)
	require.NoError(t, err)
	assert.False(t, exists)

	require.Len(t, env.entities.seen, 2)
	assert.Equal(t, "alice", env.entities.seen[0].Username)
	assert.Equal(t, "correct-pw", env.entities.seen[0].Password)
	assert.Equal(t, []string{"golang", "doesnotexist"}, env.entities.names)
}

func TestValidateEntity_MalformedNameSkipsProvider(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	login, err := env.auth.Login(ctx, "alice", "correct-pw")
	require.NoError(t, err)

	exists, err := env.auth.ValidateEntity(ctx, "not a subreddit!", login.UserID)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Empty(t, env.entities.seen)
}

func TestValidateEntity_UnknownUser(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.ValidateEntity(context.Background(), "golang", "no-such-user")
	assert.ErrorIs(t, err, constants.ErrUserNotFound)
}

func TestValidateEntity_CorruptStoredSecret(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sealed, err := env.codec.Seal("correct-pw")
	require.NoError(t, err)
	sealed.AuthTag = flipHexBit(t, sealed.AuthTag)
	user, err := env.users.UpsertSealedSecret(ctx, "alice", sealed)
	require.NoError(t, err)

	exists, err := env.auth.ValidateEntity(ctx, "golang", user.ID)
	assert.False(t, exists)
	assert.ErrorIs(t, err, encryption.ErrIntegrityFailure)
	assert.Empty(t, env.entities.seen)
}

func TestLogin_DifferentCasingSharesOneUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	identity := identityFunc(func(_ context.Context, username, secret string) bool {
		return strings.EqualFold(username, "alice") && secret == "correct-pw"
	})
	auth := NewAuthService(NewCustodyService(identity, env.codec, nil), env.users, env.entities, fakeTokens{}, nil)

	lower, err := auth.Login(ctx, "alice", "correct-pw")
	require.NoError(t, err)
	upper, err := auth.Login(ctx, "ALICE", "correct-pw")
	require.NoError(t, err)

	assert.Equal(t, lower.UserID, upper.UserID)
	assert.Equal(t, "alice", upper.Username)

	var count int
	require.NoError(t, env.db.Get(&count, `SELECT COUNT(*) FROM users`))
	assert.Equal(t, 1, count)
}
