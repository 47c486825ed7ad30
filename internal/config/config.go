// Package config provides configuration management using Viper
package config

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Environment types
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// LogLevel represents the logging level for the application
type LogLevel string

// Available log levels
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Config holds all configuration parameters for the application
type Config struct {
	// Application settings
	AppName     string   `mapstructure:"appname"`
	AppPort     string   `mapstructure:"appport"`
	Environment string   `mapstructure:"environment"`
	LogLevel    LogLevel `mapstructure:"loglevel"`

	// Analytics settings. Core functions take these as explicit parameters;
	// the values here only seed the collaborators (HTTP layer, jobs, CLI).
	SessionGapMinutes     int       `mapstructure:"sessiongapminutes"`
	RetentionHorizonDays  int       `mapstructure:"retentionhorizondays"`
	RetentionCurveOffsets []int     `mapstructure:"retentioncurveoffsets"`
	DropOffThresholds     []float64 `mapstructure:"dropoffthresholds"`

	// Churn model settings
	ChurnLearningRate float64 `mapstructure:"churnlearningrate"`
	ChurnEpochs       int     `mapstructure:"churnepochs"`

	// File paths
	StoragePath  string `mapstructure:"storagepath"`
	DatabaseName string `mapstructure:"-"` // Derived from other settings

	// Logging settings
	LogsDirectory    string `mapstructure:"logsdir"`
	LogsMaxSizeInMb  int    `mapstructure:"logsmaxsizeinmb"`
	LogsMaxBackups   int    `mapstructure:"logsmaxbackups"`
	LogsMaxAgeInDays int    `mapstructure:"logsmaxageindays"`

	// Database settings
	DatabaseMaxOpenConns int `mapstructure:"dbmaxopenconns"`
	DatabaseMaxIdleConns int `mapstructure:"dbmaxidleconns"`

	// Job scheduling settings
	JobIntervalSeconds int `mapstructure:"jobintervalseconds"`
}

var (
	cfg  *Config
	once sync.Once
)

// GetConfig returns the application configuration
func GetConfig() *Config {
	once.Do(func() {
		v := viper.New()

		// Set defaults
		v.SetDefault("appname", "streampulse")
		v.SetDefault("appport", "3000")
		v.SetDefault("environment", Development)
		v.SetDefault("loglevel", string(LogLevelDebug))
		v.SetDefault("sessiongapminutes", 30)
		v.SetDefault("retentionhorizondays", 7)
		v.SetDefault("retentioncurveoffsets", []int{1, 7, 30})
		v.SetDefault("dropoffthresholds", []float64{0.25, 0.5, 0.75})
		v.SetDefault("churnlearningrate", 0.1)
		v.SetDefault("churnepochs", 300)
		v.SetDefault("storagepath", "storage")
		v.SetDefault("logsdir", "logs")
		v.SetDefault("logsmaxsizeinmb", 20)
		v.SetDefault("logsmaxbackups", 10)
		v.SetDefault("logsmaxageindays", 30)
		v.SetDefault("dbmaxopenconns", 0)
		v.SetDefault("dbmaxidleconns", 0)
		v.SetDefault("jobintervalseconds", 60)

		// Bind environment variables
		v.BindEnv("appname", "STREAMPULSE_APP_NAME")
		v.BindEnv("appport", "STREAMPULSE_APP_PORT")
		v.BindEnv("environment", "STREAMPULSE_ENV")
		v.BindEnv("loglevel", "STREAMPULSE_LOG_LEVEL")
		v.BindEnv("sessiongapminutes", "STREAMPULSE_SESSION_GAP_MINUTES")
		v.BindEnv("retentionhorizondays", "STREAMPULSE_RETENTION_HORIZON_DAYS")
		v.BindEnv("churnlearningrate", "STREAMPULSE_CHURN_LEARNING_RATE")
		v.BindEnv("churnepochs", "STREAMPULSE_CHURN_EPOCHS")
		v.BindEnv("storagepath", "STREAMPULSE_STORAGE_PATH")
		v.BindEnv("logsdir", "STREAMPULSE_LOGS_DIR")
		v.BindEnv("logsmaxsizeinmb", "STREAMPULSE_LOGS_MAX_SIZE_IN_MB")
		v.BindEnv("logsmaxbackups", "STREAMPULSE_LOGS_MAX_BACKUPS")
		v.BindEnv("logsmaxageindays", "STREAMPULSE_LOGS_MAX_AGE_IN_DAYS")
		v.BindEnv("dbmaxopenconns", "STREAMPULSE_DB_MAX_OPEN_CONNS")
		v.BindEnv("dbmaxidleconns", "STREAMPULSE_DB_MAX_IDLE_CONNS")
		v.BindEnv("jobintervalseconds", "STREAMPULSE_JOB_INTERVAL_SECONDS")

		cfg = &Config{}
		if err := v.Unmarshal(cfg); err != nil {
			log.Fatalf("config: failed to unmarshal configuration: %v", err)
		}

		// Validate
		if err := cfg.validate(); err != nil {
			log.Fatalf("config: invalid configuration: %v", err)
		}

		// Set derived values
		cfg.DatabaseName = cfg.GetDatabasePath()
	})
	return cfg
}

// validate checks the configuration for errors
func (c *Config) validate() error {
	validEnvs := map[string]bool{
		Development: true,
		Production:  true,
		Test:        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}

	if c.SessionGapMinutes <= 0 {
		return fmt.Errorf("session gap must be positive, got %d", c.SessionGapMinutes)
	}
	if c.RetentionHorizonDays < 0 {
		return fmt.Errorf("retention horizon cannot be negative, got %d", c.RetentionHorizonDays)
	}
	if c.ChurnLearningRate <= 0 {
		return fmt.Errorf("churn learning rate must be positive, got %f", c.ChurnLearningRate)
	}
	if c.ChurnEpochs <= 0 {
		return fmt.Errorf("churn epochs must be positive, got %d", c.ChurnEpochs)
	}

	return nil
}

// GetDatabasePath returns the appropriate database path based on environment
func (c *Config) GetDatabasePath() string {
	if c.DatabaseName == "" {
		c.DatabaseName = filepath.Join(c.StoragePath,
			fmt.Sprintf("%s-%s.db", c.AppName, c.Environment))
	}
	return c.DatabaseName
}

// SessionGap returns the session inactivity gap as a duration.
func (c *Config) SessionGap() time.Duration {
	return time.Duration(c.SessionGapMinutes) * time.Minute
}

// IsDevelopment returns true if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// IsTest returns true if the environment is test
func (c *Config) IsTest() bool {
	return c.Environment == Test
}

// GetMaxOpenConns returns the appropriate MaxOpenConns value based on environment
// If explicitly set via env var, uses that value. Otherwise:
// - Test: 1 (required for test stability)
// - Development/Production: 10 (allows concurrent reads for parallel dashboard queries)
func (c *Config) GetMaxOpenConns() int {
	if c.DatabaseMaxOpenConns > 0 {
		return c.DatabaseMaxOpenConns
	}

	if c.Environment == Test {
		return 1
	}

	return 10
}

// GetMaxIdleConns returns the appropriate MaxIdleConns value based on environment
func (c *Config) GetMaxIdleConns() int {
	if c.DatabaseMaxIdleConns > 0 {
		return c.DatabaseMaxIdleConns
	}

	if c.Environment == Test {
		return 1
	}

	return 5
}

// Reset clears the cached configuration; intended for tests.
func Reset() {
	once = sync.Once{}
	cfg = nil
}
