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
	"fmt"

	"github.com/gilneto8/peggit/internal/client/reddit"
	"github.com/gilneto8/peggit/internal/constants"
	"github.com/gilneto8/peggit/internal/dto"
	"github.com/gilneto8/peggit/internal/metrics"
	"github.com/gilneto8/peggit/internal/repository"
	"go.uber.org/zap"
)

// EntityChecker reports whether a forum exists, using the caller's own credentials
type EntityChecker interface {
	CheckEntityExists(ctx context.Context, creds reddit.Credentials, entityName string) bool
}

// TokenIssuer issues session tokens for authenticated users
type TokenIssuer interface {
	IssueToken(userID, username string) (string, error)
}

type AuthService struct {
	custody  *CustodyService
	userRepo repository.UserRepository
	entities EntityChecker
	tokens   TokenIssuer
	logger   *zap.Logger
}

func NewAuthService(custody *CustodyService, userRepo repository.UserRepository, entities EntityChecker,
	tokens TokenIssuer, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		custody:  custody,
		userRepo: userRepo,
		entities: entities,
		tokens:   tokens,
		logger:   logger,
	}
}

// Login confirms the credentials with Reddit, stores the sealed password and issues a session token
func (s *AuthService) Login(ctx context.Context, username, password string) (*dto.LoginResponse, error) {
	result, err := s.custody.AuthenticateAndSeal(ctx, username, password)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}
	if !result.Accepted {
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, constants.ErrIdentityRejected
	}

	user, err := s.userRepo.UpsertSealedSecret(ctx, username, result.Sealed)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}

	token, err := s.tokens.IssueToken(user.ID, user.Username)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	metrics.LoginAttemptsTotal.WithLabelValues(metrics.OutcomeAccepted).Inc()
	s.logger.Info("User logged in", zap.String("user_id", user.ID), zap.String("username", user.Username))

	return &dto.LoginResponse{
		Success:  true,
		UserID:   user.ID,
		Username: user.Username,
		Token:    token,
	}, nil
}

// ValidateEntity checks a forum identifier against Reddit using the caller's stored credentials.
// Provider failures yield false; a corrupt stored secret is returned as an error.
func (s *AuthService) ValidateEntity(ctx context.Context, entityName, callerID string) (bool, error) {
	name, ok := reddit.NormalizeForumName(entityName)
	if !ok {
		s.logger.Debug("Rejected malformed forum identifier", zap.String("name", entityName))
		return false, nil
	}

	user, err := s.userRepo.GetUserByID(ctx, callerID)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, constants.ErrUserNotFound
	}

	secret, err := s.custody.UnsealForRevalidation(user.SealedSecret())
	if err != nil {
		return false, fmt.Errorf("failed to recover credentials for user %s: %w", user.ID, err)
	}

	creds := reddit.Credentials{Username: user.Username, Password: secret}
	return s.entities.CheckEntityExists(ctx, creds, name), nil
}
