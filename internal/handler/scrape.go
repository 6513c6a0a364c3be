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

	"github.com/gilneto8/peggit/internal/client/scraper"
	"github.com/gilneto8/peggit/internal/dto"
	"github.com/gilneto8/peggit/internal/middleware"
	"github.com/gilneto8/peggit/internal/service"
	"github.com/gilneto8/peggit/internal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ScrapeHandler struct {
	scrapeService *service.ScrapeService
	logger        *zap.Logger
}

func NewScrapeHandler(scrapeService *service.ScrapeService, logger *zap.Logger) *ScrapeHandler {
	return &ScrapeHandler{
		scrapeService: scrapeService,
		logger:        logger,
	}
}

// ScrapePosts handles POST /api/scrape-posts
func (h *ScrapeHandler) ScrapePosts(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.ScrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.scrapeService.Scrape(c.Request.Context(), userID, &req)
	if err != nil {
		var validationErr *service.ValidationError
		var upstream *scraper.UpstreamError
		switch {
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(400, "Validation failed", validationErr.Details))
		case errors.As(err, &upstream):
			c.JSON(upstream.StatusCode, utils.NewErrorResponse(upstream.StatusCode, "Failed to fetch posts", upstream.Body))
		case errors.Is(err, scraper.ErrNotConfigured):
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(500, "Scraper API URL is not configured"))
		default:
			middleware.GetLogger(c, h.logger).Error("Scrape posts failed", zap.String("user_id", userID), zap.Error(err))
			c.JSON(http.StatusBadGateway, utils.NewErrorResponse(502, "Failed to fetch posts"))
		}
		return
	}

	c.JSON(http.StatusOK, dto.ScrapeResponse{Success: true, Data: result})
}

func (h *ScrapeHandler) RegisterRoutes(r *gin.Engine) {
	r.POST("/api/scrape-posts", h.ScrapePosts)
}
