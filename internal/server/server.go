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

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gilneto8/peggit/config"
	"github.com/gilneto8/peggit/internal/client/reddit"
	"github.com/gilneto8/peggit/internal/client/scraper"
	"github.com/gilneto8/peggit/internal/database"
	"github.com/gilneto8/peggit/internal/encryption"
	"github.com/gilneto8/peggit/internal/handler"
	"github.com/gilneto8/peggit/internal/metrics"
	"github.com/gilneto8/peggit/internal/middleware"
	"github.com/gilneto8/peggit/internal/repository"
	"github.com/gilneto8/peggit/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	router *gin.Engine
	db     *database.DB
	port   string
	logger *zap.Logger
}

// NewServer creates a new server instance with all dependencies initialized.
// A missing sealing key is returned as encryption.ErrKeyMissing before any route is served.
func NewServer(cfg *config.Server, logger *zap.Logger) (*Server, error) {
	// Key material first: without it the service must not accept traffic
	keys, err := encryption.ParseKeyRing(cfg.Encryption.Key, cfg.Encryption.KeyID, cfg.Encryption.PreviousKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to load encryption keys: %w", err)
	}
	codec, err := encryption.NewCodec(keys, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sealing codec: %w", err)
	}

	// Initialize database using configuration
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return nil, err
	}

	// Initialize schema (skip when ExecuteSchemaDDL is false, e.g. deployed Postgres without DDL access)
	if cfg.Database.ExecuteSchemaDDL {
		if err := db.InitSchema(); err != nil {
			db.Close()
			return nil, err
		}
	} else {
		logger.Info("Skipping schema DDL execution", zap.String("driver", db.Driver()))
	}

	tokens, err := middleware.NewTokenManager(middleware.AuthConfig{
		SecretKey:   cfg.JWT.SecretKey,
		TokenIssuer: cfg.JWT.Issuer,
		TokenTTL:    cfg.JWT.TTL,
		SkipPaths:   cfg.JWT.SkipPaths,
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	// Initialize outbound clients
	redditClient := reddit.NewClient(reddit.Config{
		ClientID:     cfg.Reddit.ClientID,
		ClientSecret: cfg.Reddit.ClientSecret,
		UserAgent:    cfg.Reddit.UserAgent,
		TokenURL:     cfg.Reddit.TokenURL,
		APIURL:       cfg.Reddit.APIURL,
		Timeout:      cfg.Reddit.Timeout,
		MaxRetries:   cfg.Reddit.MaxRetries,
	}, logger.Named("reddit"))
	scraperClient := scraper.NewClient(cfg.Scraper.APIURL, cfg.Scraper.Timeout, cfg.Scraper.MaxRetries, logger.Named("scraper"))
	if cfg.Scraper.APIURL == "" {
		logger.Warn("SCRAPER_API_URL is not set; /api/scrape-posts will fail")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepo(db)
	configRepo := repository.NewConfigurationRepo(db)

	// Initialize services
	custodyService := service.NewCustodyService(redditClient, codec, logger.Named("custody"))
	authService := service.NewAuthService(custodyService, userRepo, redditClient, tokens, logger)
	configService := service.NewConfigurationService(configRepo, userRepo, authService, cfg.ValidateForumsOnSave, logger)
	scrapeService := service.NewScrapeService(scraperClient, logger)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, logger)
	configHandler := handler.NewConfigurationHandler(configService, logger)
	scrapeHandler := handler.NewScrapeHandler(scrapeService, logger)

	// Setup router
	router := gin.New()

	// CorrelationIDMiddleware must be first so later middleware logs with the correlation id
	router.Use(middleware.CorrelationIDMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.MetricsMiddleware())
	router.Use(gin.Recovery())

	// Configure and apply CORS middleware (before auth middleware)
	router.Use(cors.New(corsConfig(cfg.CORS)))

	router.Use(middleware.AuthMiddleware(tokens))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Register routes
	authHandler.RegisterRoutes(router)
	configHandler.RegisterRoutes(router)
	scrapeHandler.RegisterRoutes(router)

	return &Server{
		router: router,
		db:     db,
		port:   cfg.Port,
		logger: logger,
	}, nil
}

func corsConfig(cfg config.CORS) cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.CorrelationIDHeader}
	corsCfg.ExposeHeaders = []string{middleware.CorrelationIDHeader}

	origins := make([]string, 0, len(cfg.AllowOrigins))
	for _, origin := range cfg.AllowOrigins {
		if origin == "*" {
			corsCfg.AllowAllOrigins = true
			return corsCfg
		}
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		corsCfg.AllowAllOrigins = true
		return corsCfg
	}
	corsCfg.AllowOrigins = origins
	return corsCfg
}

// Handler returns the HTTP handler serving all routes
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves HTTP until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	if s.port == "" {
		return fmt.Errorf("port cannot be empty")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("port", s.port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// Close releases the database connection
func (s *Server) Close() error {
	return s.db.Close()
}
