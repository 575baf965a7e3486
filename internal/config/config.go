// Package config provides configuration management for the dayloop engine.
//
// Configuration can be loaded from multiple sources (in order of precedence):
// 1. Environment variables (highest priority)
// 2. Configuration file (JSON)
// 3. Default values (lowest priority)
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/loomwright/dayloop/internal/narrative"
	"github.com/loomwright/dayloop/internal/workspace/storage"
)

// Config represents the complete engine configuration.
type Config struct {
	Server      ServerConfig      `json:"server"`
	Storage     StorageConfig     `json:"storage"`
	Narrative   NarrativeConfig   `json:"narrative"`
	Performance PerformanceConfig `json:"performance"`
	Logging     LoggingConfig     `json:"logging"`
}

// ServerConfig contains process-level identification.
type ServerConfig struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Environment string `json:"environment"` // development, staging, production
}

// StorageConfig selects and tunes the persistence backend (spec §6).
type StorageConfig struct {
	Type          string `json:"type"` // memory, sqlite
	SQLitePath    string `json:"sqlite_path"`
	SQLiteTimeout int    `json:"sqlite_timeout_ms"`
	FallbackType  string `json:"fallback_type"`
}

// ToStorageConfig converts to the workspace/storage package's native Config.
func (s StorageConfig) ToStorageConfig() storage.Config {
	return storage.Config{
		Type:          storage.StorageType(s.Type),
		SQLitePath:    s.SQLitePath,
		SQLiteTimeout: s.SQLiteTimeout,
		FallbackType:  storage.StorageType(s.FallbackType),
	}
}

// NarrativeConfig holds the default rendering style (spec §4.G) applied
// when a loop/montage/epoch is narrated without an explicit override.
type NarrativeConfig struct {
	Tone                     string  `json:"tone"`
	Detail                   string  `json:"detail"`
	Perspective              string  `json:"perspective"`
	IncludeInternalMonologue bool    `json:"include_internal_monologue"`
	IncludeTimestamps        bool    `json:"include_timestamps"`
	ParagraphStyle           string  `json:"paragraph_style,omitempty"`
	EmotionalEmphasis        float64 `json:"emotional_emphasis"`
}

// ToStyle converts to the narrative package's native Style.
func (n NarrativeConfig) ToStyle() narrative.Style {
	return narrative.Style{
		Tone:                     narrative.Tone(n.Tone),
		Detail:                   narrative.Detail(n.Detail),
		Perspective:              narrative.Perspective(n.Perspective),
		IncludeInternalMonologue: n.IncludeInternalMonologue,
		IncludeTimestamps:        n.IncludeTimestamps,
		ParagraphStyle:           n.ParagraphStyle,
		EmotionalEmphasis:        n.EmotionalEmphasis,
	}
}

// PerformanceConfig holds sizing values for the engine's bounded caches
// (spec §4.I) and concurrency limits (spec §5). No package in this module
// reads these fields; the pkg/cache constructors take their sizes as
// explicit arguments.
type PerformanceConfig struct {
	// LRUCacheSize is the entry capacity for pkg/cache.LRU instances.
	LRUCacheSize int `json:"lru_cache_size"`

	// StreamConcurrency bounds pkg/cache.StreamProcessor's worker count.
	StreamConcurrency int `json:"stream_concurrency"`

	// BatchWindowMS is the default collection window for pkg/cache.BatchLoader.
	BatchWindowMS int `json:"batch_window_ms"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level            string `json:"level"` // debug, info, warn, error
	Format           string `json:"format"` // text, json
	EnableTimestamps bool   `json:"enable_timestamps"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Name:        "dayloop",
			Version:     "0.1.0",
			Environment: "development",
		},
		Storage: StorageConfig{
			Type:          "memory",
			SQLitePath:    "./data/dayloop.db",
			SQLiteTimeout: 5000,
			FallbackType:  "memory",
		},
		Narrative: NarrativeConfig{
			Tone:              string(narrative.ToneClinical),
			Detail:            string(narrative.DetailStandard),
			Perspective:       string(narrative.PerspectiveThird),
			IncludeTimestamps: true,
			EmotionalEmphasis: 0.5,
		},
		Performance: PerformanceConfig{
			LRUCacheSize:      1000,
			StreamConcurrency: 8,
			BatchWindowMS:     10,
		},
		Logging: LoggingConfig{
			Level:            "info",
			Format:           "text",
			EnableTimestamps: true,
		},
	}
}

// Load loads configuration from environment variables and applies defaults.
func Load() (*Config, error) {
	cfg := Default()
	cfg.loadFromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a JSON file, then overlays
// environment variables on top.
func LoadFromFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.loadFromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadFromEnv overlays environment variables onto c. Variables follow the
// pattern DAYLOOP_<SECTION>_<KEY>, e.g. DAYLOOP_STORAGE_TYPE,
// DAYLOOP_NARRATIVE_TONE.
func (c *Config) loadFromEnv() {
	if v := os.Getenv("DAYLOOP_SERVER_NAME"); v != "" {
		c.Server.Name = v
	}
	if v := os.Getenv("DAYLOOP_SERVER_VERSION"); v != "" {
		c.Server.Version = v
	}
	if v := os.Getenv("DAYLOOP_SERVER_ENVIRONMENT"); v != "" {
		c.Server.Environment = v
	}

	if v := os.Getenv("DAYLOOP_STORAGE_TYPE"); v != "" {
		c.Storage.Type = v
	}
	if v := os.Getenv("DAYLOOP_STORAGE_SQLITE_PATH"); v != "" {
		c.Storage.SQLitePath = v
	}
	if v := os.Getenv("DAYLOOP_STORAGE_SQLITE_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Storage.SQLiteTimeout = n
		}
	}
	if v := os.Getenv("DAYLOOP_STORAGE_FALLBACK"); v != "" {
		c.Storage.FallbackType = v
	}

	if v := os.Getenv("DAYLOOP_NARRATIVE_TONE"); v != "" {
		c.Narrative.Tone = v
	}
	if v := os.Getenv("DAYLOOP_NARRATIVE_DETAIL"); v != "" {
		c.Narrative.Detail = v
	}
	if v := os.Getenv("DAYLOOP_NARRATIVE_PERSPECTIVE"); v != "" {
		c.Narrative.Perspective = v
	}
	if v := os.Getenv("DAYLOOP_NARRATIVE_INCLUDE_MONOLOGUE"); v != "" {
		c.Narrative.IncludeInternalMonologue = parseBool(v)
	}
	if v := os.Getenv("DAYLOOP_NARRATIVE_INCLUDE_TIMESTAMPS"); v != "" {
		c.Narrative.IncludeTimestamps = parseBool(v)
	}
	if v := os.Getenv("DAYLOOP_NARRATIVE_PARAGRAPH_STYLE"); v != "" {
		c.Narrative.ParagraphStyle = v
	}
	if v := os.Getenv("DAYLOOP_NARRATIVE_EMOTIONAL_EMPHASIS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Narrative.EmotionalEmphasis = f
		}
	}

	if v := os.Getenv("DAYLOOP_PERFORMANCE_LRU_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Performance.LRUCacheSize = n
		}
	}
	if v := os.Getenv("DAYLOOP_PERFORMANCE_STREAM_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Performance.StreamConcurrency = n
		}
	}
	if v := os.Getenv("DAYLOOP_PERFORMANCE_BATCH_WINDOW_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Performance.BatchWindowMS = n
		}
	}

	if v := os.Getenv("DAYLOOP_LOGGING_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("DAYLOOP_LOGGING_FORMAT"); v != "" {
		c.Logging.Format = strings.ToLower(v)
	}
	if v := os.Getenv("DAYLOOP_LOGGING_ENABLE_TIMESTAMPS"); v != "" {
		c.Logging.EnableTimestamps = parseBool(v)
	}
	if v := os.Getenv("DEBUG"); v != "" && parseBool(v) {
		c.Logging.Level = "debug"
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Name == "" {
		return fmt.Errorf("server.name cannot be empty")
	}
	if c.Server.Environment != "development" && c.Server.Environment != "staging" && c.Server.Environment != "production" {
		return fmt.Errorf("server.environment must be one of: development, staging, production")
	}

	if c.Storage.Type != "memory" && c.Storage.Type != "sqlite" {
		return fmt.Errorf("storage.type must be one of: memory, sqlite")
	}
	if c.Storage.SQLiteTimeout < 0 {
		return fmt.Errorf("storage.sqlite_timeout_ms cannot be negative")
	}

	validTones := map[string]bool{
		string(narrative.ToneHopeful): true, string(narrative.ToneDesperate): true,
		string(narrative.ToneClinical): true, string(narrative.ToneMelancholic): true,
		string(narrative.ToneDarkHumor): true, string(narrative.TonePhilosophical): true,
		string(narrative.ToneTerse): true, string(narrative.TonePoetic): true,
	}
	if !validTones[c.Narrative.Tone] {
		return fmt.Errorf("narrative.tone %q is not a recognized tone", c.Narrative.Tone)
	}
	validDetails := map[string]bool{
		string(narrative.DetailMinimal): true, string(narrative.DetailStandard): true,
		string(narrative.DetailDetailed): true, string(narrative.DetailVerbose): true,
	}
	if !validDetails[c.Narrative.Detail] {
		return fmt.Errorf("narrative.detail %q is not a recognized detail level", c.Narrative.Detail)
	}
	validPerspectives := map[string]bool{
		string(narrative.PerspectiveFirst): true, string(narrative.PerspectiveSecond): true,
		string(narrative.PerspectiveThird): true, string(narrative.PerspectiveThirdLimited): true,
	}
	if !validPerspectives[c.Narrative.Perspective] {
		return fmt.Errorf("narrative.perspective %q is not a recognized perspective", c.Narrative.Perspective)
	}
	if c.Narrative.EmotionalEmphasis < 0 || c.Narrative.EmotionalEmphasis > 1 {
		return fmt.Errorf("narrative.emotional_emphasis must be within [0,1]")
	}

	if c.Performance.LRUCacheSize < 0 {
		return fmt.Errorf("performance.lru_cache_size cannot be negative")
	}
	if c.Performance.StreamConcurrency < 1 {
		return fmt.Errorf("performance.stream_concurrency must be >= 1")
	}
	if c.Performance.BatchWindowMS < 0 {
		return fmt.Errorf("performance.batch_window_ms cannot be negative")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json'")
	}

	return nil
}

// parseBool parses a boolean from string (handles various formats).
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on" || s == "enabled"
}

// ToJSON serializes the configuration to JSON.
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// SaveToFile saves the configuration to a JSON file.
func (c *Config) SaveToFile(path string) error {
	data, err := c.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
