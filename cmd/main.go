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

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gilneto8/peggit/config"
	"github.com/gilneto8/peggit/internal/encryption"
	"github.com/gilneto8/peggit/internal/logger"
	"github.com/gilneto8/peggit/internal/metrics"
	"github.com/gilneto8/peggit/internal/server"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.GetConfig()

	// Initialize logger with config
	log, err := logger.NewLogger(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if logger.ParseLevel(cfg.LogLevel) > zap.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info("Starting peggit",
		zap.String("port", cfg.Port),
		zap.String("database_driver", cfg.Database.Driver),
		zap.String("encryption_key_id", cfg.Encryption.KeyID),
		zap.Bool("reddit_app_configured", cfg.Reddit.ClientID != ""),
		zap.Duration("reddit_timeout", cfg.Reddit.Timeout),
		zap.Int("reddit_max_retries", cfg.Reddit.MaxRetries),
		zap.Bool("scraper_configured", cfg.Scraper.APIURL != ""),
		zap.Bool("validate_forums_on_save", cfg.ValidateForumsOnSave),
	)

	metrics.Init()

	srv, err := server.NewServer(cfg, log)
	if err != nil {
		if errors.Is(err, encryption.ErrKeyMissing) {
			log.Fatal("ENCRYPTION_KEY is not configured; refusing to start", zap.Error(err))
		}
		log.Fatal("Failed to create server", zap.Error(err))
	}
	defer srv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		log.Error("HTTP server failed", zap.Error(err))
		return
	}

	log.Info("peggit stopped")
}
