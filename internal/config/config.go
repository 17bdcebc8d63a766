// Package config provides configuration loading and validation for the interview coach.
// Values come from defaults, an optional JSON file, and the environment, and are read once
// at process start.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Duration is a time.Duration that reads from JSON strings such as "720h".
type Duration time.Duration

// UnmarshalJSON accepts a Go duration string or a number of nanoseconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(v)
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid duration %s", string(b))
	}
	*d = Duration(n)
	return nil
}

// MarshalJSON writes the duration as a string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the process configuration.
type Config struct {
	Port   int    `json:"port,omitempty"`
	Region string `json:"region,omitempty"` // informational only

	// Storage
	StoreBackend  string `json:"store_backend,omitempty"`
	DatabaseURL   string `json:"database_url,omitempty"`
	SQLitePath    string `json:"sqlite_path,omitempty"`
	SessionsTable string `json:"sessions_table,omitempty"`
	AudioDir      string `json:"audio_dir,omitempty"`

	// Collaborators
	MockMode         bool   `json:"mock_mode,omitempty"`
	APIKey           string `json:"api_key,omitempty"`
	QuestionBankFile string `json:"question_bank_file,omitempty"`
	UseBrowser       bool   `json:"use_browser,omitempty"`
	// TTSAPIKey is the text-to-speech key; APIKey is used when it is empty.
	TTSAPIKey string `json:"tts_api_key,omitempty"`
	TTSVoice  string `json:"tts_voice,omitempty"`

	// Timing
	SessionTTL             Duration `json:"session_ttl,omitempty"`
	TranscribePollInterval Duration `json:"transcribe_poll_interval,omitempty"`
	TranscribeTimeout      Duration `json:"transcribe_timeout,omitempty"`

	AllowedOrigins []string `json:"allowed_origins,omitempty"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Port:                   8080,
		StoreBackend:           BackendMemory,
		SQLitePath:             "interview_coach.db",
		SessionsTable:          "interview_sessions",
		AudioDir:               "data/audio",
		SessionTTL:             Duration(720 * time.Hour),
		TranscribePollInterval: Duration(2 * time.Second),
		TranscribeTimeout:      Duration(5 * time.Minute),
		AllowedOrigins:         []string{"*"},
	}
}

// LoadConfig loads configuration from a JSON file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return &cfg, nil
}

// LoadFromEnv builds a configuration from the process environment layered over Defaults.
func LoadFromEnv() (*Config, error) {
	return loadFrom(os.LookupEnv)
}

func loadFrom(lookup func(string) (string, bool)) (*Config, error) {
	cfg := Defaults()

	strs := map[string]*string{
		"REGION":             &cfg.Region,
		"STORE_BACKEND":      &cfg.StoreBackend,
		"DATABASE_URL":       &cfg.DatabaseURL,
		"SQLITE_PATH":        &cfg.SQLitePath,
		"SESSIONS_TABLE":     &cfg.SessionsTable,
		"AUDIO_DIR":          &cfg.AudioDir,
		"GEMINI_API_KEY":     &cfg.APIKey,
		"QUESTION_BANK_FILE": &cfg.QuestionBankFile,
		"TTS_API_KEY":        &cfg.TTSAPIKey,
		"TTS_VOICE":          &cfg.TTSVoice,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config error: PORT: %w", err)
		}
		cfg.Port = port
	}

	bools := map[string]*bool{"MOCK_MODE": &cfg.MockMode, "USE_BROWSER": &cfg.UseBrowser}
	for key, dst := range bools {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, fmt.Errorf("config error: %s: %w", key, err)
			}
			*dst = b
		}
	}

	durs := map[string]*Duration{
		"SESSION_TTL":              &cfg.SessionTTL,
		"TRANSCRIBE_POLL_INTERVAL": &cfg.TranscribePollInterval,
		"TRANSCRIBE_TIMEOUT":       &cfg.TranscribeTimeout,
	}
	for key, dst := range durs {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return nil, fmt.Errorf("config error: %s: %w", key, err)
			}
			*dst = Duration(d)
		}
	}

	if v, ok := lookup("ALLOWED_ORIGINS"); ok && v != "" {
		cfg.AllowedOrigins = splitList(v)
	}

	return &cfg, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory, BackendSQLite:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config error: postgres backend requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("config error: unknown store backend %q", c.StoreBackend)
	}
	if c.StoreBackend == BackendSQLite && c.SQLitePath == "" {
		return fmt.Errorf("config error: sqlite backend requires SQLITE_PATH")
	}
	if !c.MockMode && c.APIKey == "" {
		return fmt.Errorf("config error: GEMINI_API_KEY is required unless MOCK_MODE is set")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: port %d out of range", c.Port)
	}
	if c.SessionTTL <= 0 || c.TranscribePollInterval <= 0 || c.TranscribeTimeout <= 0 {
		return fmt.Errorf("config error: durations must be positive")
	}
	if c.QuestionBankFile != "" {
		if _, err := os.Stat(c.QuestionBankFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: question bank file not found: %s", c.QuestionBankFile)
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from defaults.
// Bools cannot distinguish unset from false and are not merged.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&result.Region, defaults.Region)
	fill(&result.StoreBackend, defaults.StoreBackend)
	fill(&result.DatabaseURL, defaults.DatabaseURL)
	fill(&result.SQLitePath, defaults.SQLitePath)
	fill(&result.SessionsTable, defaults.SessionsTable)
	fill(&result.AudioDir, defaults.AudioDir)
	fill(&result.APIKey, defaults.APIKey)
	fill(&result.QuestionBankFile, defaults.QuestionBankFile)
	fill(&result.TTSAPIKey, defaults.TTSAPIKey)
	fill(&result.TTSVoice, defaults.TTSVoice)

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.SessionTTL == 0 {
		result.SessionTTL = defaults.SessionTTL
	}
	if result.TranscribePollInterval == 0 {
		result.TranscribePollInterval = defaults.TranscribePollInterval
	}
	if result.TranscribeTimeout == 0 {
		result.TranscribeTimeout = defaults.TranscribeTimeout
	}
	if len(result.AllowedOrigins) == 0 {
		result.AllowedOrigins = append([]string(nil), defaults.AllowedOrigins...)
	}
	return result
}

// Load reads the optional JSON file, layers the environment over it, and validates.
// Environment values win over file values.
func Load(path string) (*Config, error) {
	env, err := LoadFromEnv()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return env, env.Validate()
	}
	file, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	merged := mergeEnvOverFile(*file, env)
	merged = merged.MergeWithDefaults(Defaults())
	return &merged, merged.Validate()
}

// mergeEnvOverFile applies values that the environment explicitly changed from the
// built-in defaults onto the file configuration.
func mergeEnvOverFile(file Config, env *Config) Config {
	def := Defaults()
	out := file
	if env.Port != def.Port {
		out.Port = env.Port
	}
	pick := func(dst *string, envVal, defVal string) {
		if envVal != defVal {
			*dst = envVal
		}
	}
	pick(&out.Region, env.Region, def.Region)
	pick(&out.StoreBackend, env.StoreBackend, def.StoreBackend)
	pick(&out.DatabaseURL, env.DatabaseURL, def.DatabaseURL)
	pick(&out.SQLitePath, env.SQLitePath, def.SQLitePath)
	pick(&out.SessionsTable, env.SessionsTable, def.SessionsTable)
	pick(&out.AudioDir, env.AudioDir, def.AudioDir)
	pick(&out.APIKey, env.APIKey, def.APIKey)
	pick(&out.QuestionBankFile, env.QuestionBankFile, def.QuestionBankFile)
	pick(&out.TTSAPIKey, env.TTSAPIKey, def.TTSAPIKey)
	pick(&out.TTSVoice, env.TTSVoice, def.TTSVoice)
	out.MockMode = out.MockMode || env.MockMode
	out.UseBrowser = out.UseBrowser || env.UseBrowser
	if env.SessionTTL != def.SessionTTL {
		out.SessionTTL = env.SessionTTL
	}
	if env.TranscribePollInterval != def.TranscribePollInterval {
		out.TranscribePollInterval = env.TranscribePollInterval
	}
	if env.TranscribeTimeout != def.TranscribeTimeout {
		out.TranscribeTimeout = env.TranscribeTimeout
	}
	if strings.Join(env.AllowedOrigins, ",") != strings.Join(def.AllowedOrigins, ",") {
		out.AllowedOrigins = env.AllowedOrigins
	}
	return out
}
