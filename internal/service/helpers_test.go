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
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gilneto8/peggit/internal/client/reddit"
	"github.com/gilneto8/peggit/internal/database"
	"github.com/gilneto8/peggit/internal/encryption"
	"github.com/gilneto8/peggit/internal/repository"
	"github.com/stretchr/testify/require"
)

// fakeIdentity accepts the username/secret pairs in valid
type fakeIdentity struct {
	mu    sync.Mutex
	valid map[string]string
	calls int
}

func (f *fakeIdentity) CheckIdentity(_ context.Context, username, secret string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	want, ok := f.valid[username]
	return ok && want == secret
}

// failingSealer fails the test if the custody service tries to seal or unseal
type failingSealer struct {
	t *testing.T
}

func (s failingSealer) Seal(string) (*encryption.SealedSecret, error) {
	s.t.Fatal("Seal must not be called")
	return nil, nil
}

func (s failingSealer) Unseal(*encryption.SealedSecret) (string, error) {
	s.t.Fatal("Unseal must not be called")
	return "", nil
}

// fakeEntities reports the forums in known as existing and records the credentials it was given
type fakeEntities struct {
	mu    sync.Mutex
	known map[string]bool
	seen  []reddit.Credentials
	names []string
}

func (f *fakeEntities) CheckEntityExists(_ context.Context, creds reddit.Credentials, name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, creds)
	f.names = append(f.names, name)
	return f.known[name]
}

type fakeTokens struct{}

func (fakeTokens) IssueToken(userID, username string) (string, error) {
	return fmt.Sprintf("token-%s-%s", userID, username), nil
}

func newTestCodec(t *testing.T) *encryption.Codec {
	t.Helper()
	ring, err := encryption.NewKeyRing(&encryption.Key{ID: "k1", Data: bytes.Repeat([]byte{0x24}, encryption.KeySize)})
	require.NoError(t, err)
	codec, err := encryption.NewCodec(ring, nil)
	require.NoError(t, err)
	return codec
}

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	sqlxDB, err := database.OpenSQLite(filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err)
	db := database.NewSQLiteDB(sqlxDB)
	require.NoError(t, db.InitSchema())
	t.Cleanup(func() { db.Close() })
	return db
}

type testEnv struct {
	db       *database.DB
	users    repository.UserRepository
	configs  repository.ConfigurationRepository
	identity *fakeIdentity
	entities *fakeEntities
	codec    *encryption.Codec
	custody  *CustodyService
	auth     *AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	env := &testEnv{
		db:      db,
		users:   repository.NewUserRepo(db),
		configs: repository.NewConfigurationRepo(db),
		identity: &fakeIdentity{valid: map[string]string{
			"alice": "correct-pw",
			"bob":   "bob-pw-1",
		}},
		entities: &fakeEntities{known: map[string]bool{"golang": true, "programming": true}},
		codec:    newTestCodec(t),
	}
	env.custody = NewCustodyService(env.identity, env.codec, nil)
	env.auth = NewAuthService(env.custody, env.users, env.entities, fakeTokens{}, nil)
	return env
}

// flipHexBit returns the hex string with the lowest bit of its first byte inverted
func flipHexBit(t *testing.T, encoded string) string {
	t.Helper()
	data, err := hex.DecodeString(encoded)
	require.NoError(t, err)
	data[0] ^= 0x01
	return hex.EncodeToString(data)
}

type identityFunc func(ctx context.Context, username, secret string) bool

func (f identityFunc) CheckIdentity(ctx context.Context, username, secret string) bool {
	return f(ctx, username, secret)
}
