package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	koanfjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Default configuration values.
const (
	defaultBaseURL        = "https://semantle.novalis.org"
	defaultUA             = "semantle-solver/1.0 (+https://semantle.novalis.org)"
	defaultTimeoutSecs    = 30
	defaultWordsPath      = "common.txt"
	defaultSecretsPath    = "secrets_enc.txt"
	defaultTries          = 250
	defaultSeedCount      = 10
	defaultEmbeddingsPath = "glove.6B.200d.txt"
	defaultEmbedModel     = "text-embedding-3-small"
	defaultEmbedBatch     = 256
)

// Embedding sources.
const (
	sourceGloVe  = "glove"
	sourceOpenAI = "openai"
)

// configEnv names the environment variable holding the config path.
const configEnv = "SEMANTLE_SOLVER_CONFIG"

// embeddingsConfig selects and configures the neighbor oracle.
type embeddingsConfig struct {
	Source    string `json:"source"`
	Path      string `json:"path,omitempty"`
	MaxWords  int    `json:"max_words,omitempty"`
	Model     string `json:"model,omitempty"`
	BaseURL   string `json:"base_url,omitempty"`
	APIKey    string `json:"api_key,omitempty"`
	BatchSize int    `json:"batch_size,omitempty"`
}

// appConfig holds the application configuration.
type appConfig struct {
	BaseURL     string           `json:"base_url"`
	UserAgent   string           `json:"user_agent"`
	TimeoutSecs int              `json:"timeout_secs"`
	WordsPath   string           `json:"words_path"`
	SecretsPath string           `json:"secrets_path"`
	Tries       int              `json:"tries"`
	SeedCount   int              `json:"seed_count"`
	RandSeed    int64            `json:"rand_seed,omitempty"`
	Progress    bool             `json:"progress"`
	Embeddings  embeddingsConfig `json:"embeddings"`
}

func defaultConfig() appConfig {
	return appConfig{
		BaseURL:     defaultBaseURL,
		UserAgent:   defaultUA,
		TimeoutSecs: defaultTimeoutSecs,
		WordsPath:   defaultWordsPath,
		SecretsPath: defaultSecretsPath,
		Tries:       defaultTries,
		SeedCount:   defaultSeedCount,
		Progress:    true,
		Embeddings: embeddingsConfig{
			Source:    sourceGloVe,
			Path:      defaultEmbeddingsPath,
			Model:     defaultEmbedModel,
			BatchSize: defaultEmbedBatch,
		},
	}
}

// configPath returns the config location from the environment or the default.
func configPath() string {
	if p := strings.TrimSpace(os.Getenv(configEnv)); p != "" {
		return p
	}
	return "config.json"
}

// loadConfig loads configuration from the specified path. A missing file
// yields the defaults.
func loadConfig(path string) (appConfig, error) {
	cfg := defaultConfig()

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return appConfig{}, fmt.Errorf("stat config: %w", err)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), koanfjson.Parser()); err != nil {
		return appConfig{}, fmt.Errorf("load config: %w", err)
	}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return appConfig{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := normalizeConfig(&cfg); err != nil {
		return appConfig{}, err
	}
	return cfg, nil
}

// normalizeConfig fills blanks with defaults and rejects invalid values.
func normalizeConfig(cfg *appConfig) error {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		return errors.New("base_url is required in config")
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUA
	}
	if cfg.TimeoutSecs <= 0 {
		cfg.TimeoutSecs = defaultTimeoutSecs
	}
	if strings.TrimSpace(cfg.WordsPath) == "" {
		cfg.WordsPath = defaultWordsPath
	}
	if strings.TrimSpace(cfg.SecretsPath) == "" {
		cfg.SecretsPath = defaultSecretsPath
	}
	if cfg.Tries <= 0 {
		return fmt.Errorf("tries must be > 0, got %d", cfg.Tries)
	}
	if cfg.SeedCount <= 0 {
		cfg.SeedCount = defaultSeedCount
	}

	e := &cfg.Embeddings
	e.Source = strings.ToLower(strings.TrimSpace(e.Source))
	switch e.Source {
	case "":
		e.Source = sourceGloVe
	case sourceGloVe, sourceOpenAI:
	default:
		return fmt.Errorf("unknown embeddings source: %s", e.Source)
	}
	if e.Source == sourceGloVe && strings.TrimSpace(e.Path) == "" {
		e.Path = defaultEmbeddingsPath
	}
	if e.MaxWords < 0 {
		return fmt.Errorf("embeddings.max_words must be >= 0, got %d", e.MaxWords)
	}
	if strings.TrimSpace(e.Model) == "" {
		e.Model = defaultEmbedModel
	}
	if e.BatchSize <= 0 {
		e.BatchSize = defaultEmbedBatch
	}
	return nil
}

// saveConfig writes configuration to the specified path.
func saveConfig(path string, cfg appConfig) error {
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUA
	}

	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	b = append(b, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}
