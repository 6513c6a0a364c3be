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

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gilneto8/peggit/internal/client/reddit"
	"github.com/gilneto8/peggit/internal/client/scraper"
	"github.com/gilneto8/peggit/internal/database"
	"github.com/gilneto8/peggit/internal/encryption"
	"github.com/gilneto8/peggit/internal/middleware"
	"github.com/gilneto8/peggit/internal/repository"
	"github.com/gilneto8/peggit/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubReddit struct {
	accounts map[string]string
	forums   map[string]bool
}

func (s *stubReddit) CheckIdentity(_ context.Context, username, secret string) bool {
	want, ok := s.accounts[username]
	return ok && want == secret
}

func (s *stubReddit) CheckEntityExists(_ context.Context, creds reddit.Credentials, name string) bool {
	if s.accounts[creds.Username] != creds.Password {
		return false
	}
	return s.forums[strings.ToLower(name)]
}

type testServer struct {
	router *gin.Engine
	users  repository.UserRepository
	tokens *middleware.TokenManager
}

// newTestServer wires the real services over SQLite with a stubbed Reddit and the given scraper URL
func newTestServer(t *testing.T, scraperURL string) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sqlxDB, err := database.OpenSQLite(filepath.Join(t.TempDir(), "handler.db"))
	require.NoError(t, err)
	db := database.NewSQLiteDB(sqlxDB)
	require.NoError(t, db.InitSchema())
	t.Cleanup(func() { db.Close() })

	ring, err := encryption.NewKeyRing(&encryption.Key{ID: "k1", Data: bytes.Repeat([]byte{7}, encryption.KeySize)})
	require.NoError(t, err)
	codec, err := encryption.NewCodec(ring, nil)
	require.NoError(t, err)

	tokens, err := middleware.NewTokenManager(middleware.AuthConfig{
		SecretKey:   "handler-secret",
		TokenIssuer: "peggit",
		TokenTTL:    time.Hour,
		SkipPaths:   []string{"/api/auth"},
	})
	require.NoError(t, err)

	stub := &stubReddit{
		accounts: map[string]string{"alice": "correct-pw"},
		forums:   map[string]bool{"golang": true},
	}

	users := repository.NewUserRepo(db)
	configs := repository.NewConfigurationRepo(db)
	logger := zap.NewNop()

	custody := service.NewCustodyService(stub, codec, logger)
	authService := service.NewAuthService(custody, users, stub, tokens, logger)
	configService := service.NewConfigurationService(configs, users, authService, true, logger)
	scrapeService := service.NewScrapeService(scraper.NewClient(scraperURL, 5*time.Second, 0, logger), logger)

	router := gin.New()
	router.Use(middleware.CorrelationIDMiddleware(logger), middleware.AuthMiddleware(tokens))
	NewAuthHandler(authService, logger).RegisterRoutes(router)
	NewConfigurationHandler(configService, logger).RegisterRoutes(router)
	NewScrapeHandler(scrapeService, logger).RegisterRoutes(router)

	return &testServer{router: router, users: users, tokens: tokens}
}

// do performs a request with an optional JSON body and bearer token
func (s *testServer) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// login returns the user id and session token for alice
func (s *testServer) login(t *testing.T) (string, string) {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/auth", map[string]string{"username": "alice", "password": "correct-pw"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		UserID string `json:"userId"`
		Token  string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.UserID, resp.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
