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

package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gilneto8/peggit/internal/constants"
	"github.com/gilneto8/peggit/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CustomClaims represents the session token claims issued at login
type CustomClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// AuthConfig holds the configuration for JWT authentication
type AuthConfig struct {
	SecretKey   string
	TokenIssuer string
	TokenTTL    time.Duration
	SkipPaths   []string // Paths to skip authentication
}

// TokenManager issues and parses HS256 session tokens
type TokenManager struct {
	config AuthConfig
	now    func() time.Time
}

// NewTokenManager creates a token manager for the given configuration
func NewTokenManager(config AuthConfig) (*TokenManager, error) {
	if strings.TrimSpace(config.SecretKey) == "" {
		return nil, errors.New("JWT secret key must not be empty")
	}
	if config.TokenTTL <= 0 {
		return nil, errors.New("JWT token TTL must be positive")
	}
	return &TokenManager{config: config, now: time.Now}, nil
}

// IssueToken signs a session token for the user
func (m *TokenManager) IssueToken(userID, username string) (string, error) {
	now := m.now()
	claims := &CustomClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    m.config.TokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.TokenTTL)),
			ID:        uuid.New().String(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.config.SecretKey))
}

// ParseToken validates the signature, expiry and issuer of a session token
func (m *TokenManager) ParseToken(tokenString string) (*CustomClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	}
	if m.config.TokenIssuer != "" {
		opts = append(opts, jwt.WithIssuer(m.config.TokenIssuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.config.SecretKey), nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.Subject == "" {
		return nil, errors.New("token missing required 'sub' claim")
	}
	return claims, nil
}

// AuthMiddleware creates a JWT authentication middleware
func AuthMiddleware(tokens *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip authentication for specified paths
		for _, path := range tokens.config.SkipPaths {
			if c.Request.URL.Path == path {
				c.Next()
				return
			}
		}

		// Get token from Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "Authorization header is required")
			return
		}

		// Check if the header starts with "Bearer "
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			abortUnauthorized(c, "Invalid authorization header format. Expected: Bearer <token>")
			return
		}

		claims, err := tokens.ParseToken(tokenString)
		if err != nil {
			GetLogger(c, nil).Debug("Rejected session token")
			abortUnauthorized(c, fmt.Sprintf("Invalid token: %v", err))
			return
		}

		// Set claims in context for use in handlers
		c.Set(constants.ContextKeyUserID, claims.Subject)
		c.Set(constants.ContextKeyUsername, claims.Username)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, description string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized", description))
}

// GetUserIDFromContext extracts the user ID from the Gin context
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return "", false
	}
	userIDStr, ok := userID.(string)
	return userIDStr, ok && userIDStr != ""
}

// GetUsernameFromContext extracts the username from the Gin context
func GetUsernameFromContext(c *gin.Context) (string, bool) {
	username, exists := c.Get(constants.ContextKeyUsername)
	if !exists {
		return "", false
	}
	usernameStr, ok := username.(string)
	return usernameStr, ok
}
