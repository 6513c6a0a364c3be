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

type ConfigurationHandler struct {
	configService *service.ConfigurationService
	logger        *zap.Logger
}

func NewConfigurationHandler(configService *service.ConfigurationService, logger *zap.Logger) *ConfigurationHandler {
	return &ConfigurationHandler{
		configService: configService,
		logger:        logger,
	}
}

// GetConfiguration handles GET /api/config
func (h *ConfigurationHandler) GetConfiguration(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	cfg, err := h.configService.GetConfiguration(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, userID, err, "Failed to fetch configuration")
		return
	}

	c.JSON(http.StatusOK, dto.GetConfigurationResponse{Success: true, Configurations: cfg})
}

// SaveConfiguration handles POST /api/config
func (h *ConfigurationHandler) SaveConfiguration(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.SaveConfigurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.configService.SaveConfiguration(c.Request.Context(), userID, &req)
	if err != nil {
		h.respondError(c, userID, err, "Failed to save configuration")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SaveTimeRanges handles POST /api/time-ranges
func (h *ConfigurationHandler) SaveTimeRanges(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.SaveTimeRangesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ranges, err := h.configService.SaveTimeRanges(c.Request.Context(), userID, req.TimeRanges)
	if err != nil {
		h.respondError(c, userID, err, "Failed to save time ranges")
		return
	}

	c.JSON(http.StatusOK, dto.SaveTimeRangesResponse{Success: true, TimeRanges: ranges})
}

func (h *ConfigurationHandler) respondError(c *gin.Context, userID string, err error, message string) {
	var validationErr *service.ValidationError
	var unknownForums *service.UnknownForumsError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(400, "Validation failed", validationErr.Details))
	case errors.As(err, &unknownForums):
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(400, "Unknown subreddits", unknownForums.Forums))
	case errors.Is(err, constants.ErrUserNotFound):
		c.JSON(http.StatusNotFound, utils.NewErrorResponse(404, "User not found"))
	default:
		middleware.GetLogger(c, h.logger).Error(message, zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(500, message))
	}
}

func (h *ConfigurationHandler) RegisterRoutes(r *gin.Engine) {
	configGroup := r.Group("/api/config")
	{
		configGroup.GET("", h.GetConfiguration)
		configGroup.POST("", h.SaveConfiguration)
	}
	r.POST("/api/time-ranges", h.SaveTimeRanges)
}
