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
	"errors"
	"net/http"

	"github.com/gilneto8/peggit/internal/constants"
	"github.com/gilneto8/peggit/internal/dto"
	"github.com/gilneto8/peggit/internal/middleware"
	"github.com/gilneto8/peggit/internal/service"
	"github.com/gilneto8/peggit/internal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login handles POST /api/auth
func (h *AuthHandler) Login(c *gin.Context) {
	log := middleware.GetLogger(c, h.logger)

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, constants.ErrIdentityRejected) {
			c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(401, "Invalid credentials"))
			return
		}
		log.Error("Login failed", zap.String("username", req.Username), zap.Error(err))
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(500, "Internal server error"))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ValidateSubreddit handles GET /api/validate-subreddit?name=
func (h *AuthHandler) ValidateSubreddit(c *gin.Context) {
	log := middleware.GetLogger(c, h.logger)

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(400, "Subreddit name is required"))
		return
	}

	exists, err := h.authService.ValidateEntity(c.Request.Context(), name, userID)
	if err != nil {
		if errors.Is(err, constants.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(404, "User not found"))
			return
		}
		username, _ := middleware.GetUsernameFromContext(c)
		log.Error("Subreddit validation failed",
			zap.String("user_id", userID), zap.String("username", username), zap.Error(err))
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(500, "Failed to validate subreddit"))
		return
	}

	c.JSON(http.StatusOK, dto.ValidateForumResponse{Exists: exists})
}

func (h *AuthHandler) RegisterRoutes(r *gin.Engine) {
	r.POST("/api/auth", h.Login)
	r.GET("/api/validate-subreddit", h.ValidateSubreddit)
}
