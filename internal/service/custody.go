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

	"github.com/gilneto8/peggit/internal/encryption"
	"github.com/gilneto8/peggit/internal/metrics"
	"go.uber.org/zap"
)

// IdentityChecker confirms a username/secret pair against the identity provider.
// Every failure mode is reported as false.
type IdentityChecker interface {
	CheckIdentity(ctx context.Context, username, secret string) bool
}

// SecretSealer seals and unseals secrets at rest
type SecretSealer interface {
	Seal(plaintext string) (*encryption.SealedSecret, error)
	Unseal(sealed *encryption.SealedSecret) (string, error)
}

// CustodyResult is the outcome of a login attempt. Sealed is set only when Accepted.
type CustodyResult struct {
	Accepted bool
	Sealed   *encryption.SealedSecret
}

// CustodyService confirms credentials with the identity provider and seals them for storage
type CustodyService struct {
	identity IdentityChecker
	sealer   SecretSealer
	logger   *zap.Logger
}

func NewCustodyService(identity IdentityChecker, sealer SecretSealer, logger *zap.Logger) *CustodyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustodyService{
		identity: identity,
		sealer:   sealer,
		logger:   logger,
	}
}

// AuthenticateAndSeal checks the identity claim and, only when it is confirmed, seals the secret.
// A rejected claim never reaches the sealer.
func (s *CustodyService) AuthenticateAndSeal(ctx context.Context, username, secret string) (*CustodyResult, error) {
	if username == "" || secret == "" {
		return &CustodyResult{Accepted: false}, nil
	}

	if !s.identity.CheckIdentity(ctx, username, secret) {
		s.logger.Info("Identity claim rejected", zap.String("username", username))
		return &CustodyResult{Accepted: false}, nil
	}

	sealed, err := s.sealer.Seal(secret)
	if err != nil {
		metrics.CodecOperationsTotal.WithLabelValues("seal", metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("failed to seal secret for %q: %w", username, err)
	}
	metrics.CodecOperationsTotal.WithLabelValues("seal", "success").Inc()

	return &CustodyResult{Accepted: true, Sealed: sealed}, nil
}

// UnsealForRevalidation recovers the plaintext secret so it can be replayed to the provider.
// Codec errors are returned unchanged.
func (s *CustodyService) UnsealForRevalidation(sealed *encryption.SealedSecret) (string, error) {
	secret, err := s.sealer.Unseal(sealed)
	if err != nil {
		metrics.CodecOperationsTotal.WithLabelValues("unseal", metrics.OutcomeError).Inc()
		s.logger.Error("Failed to unseal stored secret", zap.String("key_id", keyIDOf(sealed)), zap.Error(err))
		return "", err
	}
	metrics.CodecOperationsTotal.WithLabelValues("unseal", "success").Inc()
	return secret, nil
}

func keyIDOf(sealed *encryption.SealedSecret) string {
	if sealed == nil {
		return ""
	}
	return sealed.KeyID
}
