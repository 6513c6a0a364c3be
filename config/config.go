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

package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Server holds the configuration parameters for the application.
type Server struct {
	LogLevel  string `envconfig:"LOG_LEVEL" default:"INFO"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	// Server configurations
	Port string `envconfig:"PORT" default:"9243"`

	// Database configurations
	Database Database `envconfig:"DATABASE"`

	// Sealing key material for stored Reddit passwords
	Encryption Encryption `envconfig:"ENCRYPTION"`

	// Reddit identity provider configurations
	Reddit Reddit `envconfig:"REDDIT"`

	// Scraping backend configurations
	Scraper Scraper `envconfig:"SCRAPER"`

	// JWT session configurations
	JWT JWT `envconfig:"JWT"`

	CORS CORS `envconfig:"CORS"`

	// ValidateForumsOnSave checks newly added forums against Reddit before a configuration is stored.
	ValidateForumsOnSave bool `envconfig:"VALIDATE_FORUMS_ON_SAVE" default:"true"`
}

// Database holds database-specific configuration
type Database struct {
	Driver string `envconfig:"DRIVER" default:"sqlite3"`
	// Path is the file path for SQLite databases.
	// Use DATABASE_DB_PATH to override; keeping it distinct from the OS PATH variable.
	Path            string `envconfig:"DB_PATH" default:"./data/peggit.db"`
	Host            string `envconfig:"HOST" default:"localhost"`
	Port            int    `envconfig:"PORT" default:"5432"`
	Name            string `envconfig:"NAME" default:"peggit"`
	User            string `envconfig:"USER" default:""`
	Password        string `envconfig:"PASSWORD" default:""`
	SSLMode         string `envconfig:"SSL_MODE" default:"disable"`
	MaxOpenConns    int    `envconfig:"MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int    `envconfig:"MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime int    `envconfig:"CONN_MAX_LIFETIME" default:"300"` // seconds

	// ExecuteSchemaDDL controls whether to run the schema DDL (CREATE TABLE, etc.) on startup.
	// Set to false when the DB user lacks DDL privileges.
	ExecuteSchemaDDL bool `envconfig:"EXECUTE_SCHEMA_DDL" default:"true"`
}

// Encryption holds the AES-256 key ring used to seal stored credentials.
type Encryption struct {
	// Key is the primary key, hex encoded (64 characters). Required.
	Key   string `envconfig:"KEY"`
	KeyID string `envconfig:"KEY_ID" default:"k1"`
	// PreviousKeys lists retired keys still accepted for unsealing, as "id:hex,id:hex".
	PreviousKeys string `envconfig:"PREVIOUS_KEYS" default:""`
}

// Reddit holds the script-app credentials used for password grants
type Reddit struct {
	ClientID     string        `envconfig:"CLIENT_ID"`
	ClientSecret string        `envconfig:"CLIENT_SECRET"`
	UserAgent    string        `envconfig:"USER_AGENT" default:"peggit/1.0"`
	TokenURL     string        `envconfig:"TOKEN_URL" default:"https://www.reddit.com/api/v1/access_token"`
	APIURL       string        `envconfig:"OAUTH_URL" default:"https://oauth.reddit.com"`
	Timeout      time.Duration `envconfig:"TIMEOUT" default:"10s"`
	MaxRetries   int           `envconfig:"MAX_RETRIES" default:"0"`
}

// Scraper holds the scraping backend endpoint configuration
type Scraper struct {
	APIURL     string        `envconfig:"API_URL" default:""`
	Timeout    time.Duration `envconfig:"TIMEOUT" default:"60s"`
	MaxRetries int           `envconfig:"MAX_RETRIES" default:"2"`
}

// JWT holds session token configuration
type JWT struct {
	// SecretKey signs session tokens. Required; there is no default.
	SecretKey string        `envconfig:"SECRET_KEY"`
	Issuer    string        `envconfig:"ISSUER" default:"peggit"`
	TTL       time.Duration `envconfig:"TTL" default:"24h"`
	SkipPaths []string      `envconfig:"SKIP_PATHS" default:"/health,/metrics,/api/auth"`
}

// CORS holds the browser origins allowed to call the API
type CORS struct {
	AllowOrigins []string `envconfig:"ALLOW_ORIGINS" default:"*"`
}

// placeholderJWTSecret was the value shipped in example environments
const placeholderJWTSecret = "your-secret-key-change-in-production"

// package-level variable and mutex for thread safety
var (
	processOnce     sync.Once
	settingInstance *Server
)

// GetConfig initializes and returns a singleton instance of the Server struct.
// It uses sync.Once to ensure that the initialization logic is executed only once,
// making it safe for concurrent use. If there is an error during the initialization,
// the function will panic.
func GetConfig() *Server {
	var err error
	processOnce.Do(func() {
		settingInstance, err = Load()
	})
	if err != nil {
		panic(err)
	}
	return settingInstance
}

// Load reads the configuration from the environment and validates it.
func Load() (*Server, error) {
	cfg := &Server{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that cannot be defaulted.
// A missing encryption key is reported by the codec as KeyMissing, not here.
func (s *Server) Validate() error {
	switch s.Database.Driver {
	case "sqlite3", "postgres", "postgresql", "pgx":
	default:
		return fmt.Errorf("unsupported database driver: %s", s.Database.Driver)
	}

	if s.Reddit.Timeout <= 0 {
		return fmt.Errorf("REDDIT_TIMEOUT must be positive")
	}
	if s.Reddit.MaxRetries < 0 || s.Scraper.MaxRetries < 0 {
		return fmt.Errorf("retry counts cannot be negative")
	}

	if strings.TrimSpace(s.JWT.SecretKey) == "" {
		return fmt.Errorf("JWT_SECRET_KEY is not configured")
	}
	if s.JWT.SecretKey == placeholderJWTSecret {
		return fmt.Errorf("JWT_SECRET_KEY must not be the placeholder value")
	}
	if s.JWT.TTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}

	return nil
}
