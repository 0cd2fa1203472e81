package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"ragsum/internal/domain"
)

// Generator types.
const (
	GeneratorHuggingFace = "huggingface"
	GeneratorOpenAI      = "openai"
	GeneratorNone        = "none"
)

// HuggingFaceConfig holds configuration for the Hugging Face inference client.
type HuggingFaceConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
}

// OpenAIConfig holds configuration for the OpenAI generator.
type OpenAIConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
}

// GeneratorConfig selects and configures the abstractive generation service.
type GeneratorConfig struct {
	Type        string            `yaml:"type"`
	TimeoutSecs int               `yaml:"timeout_secs"`
	MaxRetries  int               `yaml:"max_retries"`
	HuggingFace HuggingFaceConfig `yaml:"huggingface"`
	OpenAI      OpenAIConfig      `yaml:"openai"`
}

// ChunkerConfig configures how cleaned text is split into chunks.
type ChunkerConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// RetrieverConfig configures chunk retrieval.
type RetrieverConfig struct {
	TopK int `yaml:"top_k"`
}

// SummarizerConfig configures summary length and input limits.
type SummarizerConfig struct {
	MaxSentences  int `yaml:"max_sentences"`
	MaxTextLength int `yaml:"max_text_length"`
	MinTextLength int `yaml:"min_text_length"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr             string `yaml:"addr"`
	ReadTimeoutSecs  int    `yaml:"read_timeout_secs"`
	WriteTimeoutSecs int    `yaml:"write_timeout_secs"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Chunker    ChunkerConfig    `yaml:"chunker"`
	Retriever  RetrieverConfig  `yaml:"retriever"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Generator  GeneratorConfig  `yaml:"generator"`
	Log        LogConfig        `yaml:"log"`
	Server     ServerConfig     `yaml:"server"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
// Environment overrides are applied in both cases.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := DefaultConfig()
			applyEnv(cfg)
			return cfg, nil
		}
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(cfg)
	applyEnv(cfg)
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/ragsum/config.yaml.
// If neither exists, it writes defaults to ~/.config/ragsum/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := DefaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	applyEnv(cfg)
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate reports the first invalid setting as a domain.ErrInvalidConfig.
func (c *AppConfig) Validate() error {
	switch {
	case c.Chunker.ChunkSize <= 0:
		return domain.ConfigError("chunk_size must be positive, got %d", c.Chunker.ChunkSize)
	case c.Chunker.ChunkOverlap < 0:
		return domain.ConfigError("chunk_overlap must not be negative, got %d", c.Chunker.ChunkOverlap)
	case c.Chunker.ChunkOverlap >= c.Chunker.ChunkSize:
		return domain.ConfigError("chunk_overlap (%d) must be smaller than chunk_size (%d)",
			c.Chunker.ChunkOverlap, c.Chunker.ChunkSize)
	case c.Retriever.TopK <= 0:
		return domain.ConfigError("top_k must be positive, got %d", c.Retriever.TopK)
	case c.Summarizer.MaxSentences <= 0:
		return domain.ConfigError("max_sentences must be positive, got %d", c.Summarizer.MaxSentences)
	case c.Summarizer.MaxTextLength <= 0:
		return domain.ConfigError("max_text_length must be positive, got %d", c.Summarizer.MaxTextLength)
	case c.Generator.TimeoutSecs <= 0:
		return domain.ConfigError("generator timeout_secs must be positive, got %d", c.Generator.TimeoutSecs)
	}
	switch c.Generator.Type {
	case GeneratorHuggingFace, GeneratorOpenAI, GeneratorNone:
	default:
		return domain.ConfigError("unknown generator type %q", c.Generator.Type)
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ragsum", "config.yaml"), nil
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Chunker:   ChunkerConfig{ChunkSize: 1000, ChunkOverlap: 100},
		Retriever: RetrieverConfig{TopK: 5},
		Summarizer: SummarizerConfig{
			MaxSentences:  3,
			MaxTextLength: 50000,
			MinTextLength: 10,
		},
		Generator: GeneratorConfig{
			Type:        GeneratorHuggingFace,
			TimeoutSecs: 10,
			MaxRetries:  2,
			HuggingFace: HuggingFaceConfig{
				BaseURL:   "https://router.huggingface.co/hf-inference",
				APIKeyEnv: "HUGGINGFACEHUB_API_TOKEN",
				Model:     "facebook/bart-large-cnn",
			},
			OpenAI: OpenAIConfig{
				APIKeyEnv: "OPENAI_API_KEY",
				Model:     "gpt-4o-mini",
			},
		},
		Log:    LogConfig{Level: "info", Format: "text"},
		Server: ServerConfig{Addr: ":8080", ReadTimeoutSecs: 15, WriteTimeoutSecs: 60},
	}
}

// applyConfigDefaults fills fields a partial file left empty.
func applyConfigDefaults(cfg *AppConfig) {
	def := DefaultConfig()
	if cfg.Generator.Type == "" {
		cfg.Generator.Type = def.Generator.Type
	}
	if cfg.Generator.HuggingFace.BaseURL == "" {
		cfg.Generator.HuggingFace.BaseURL = def.Generator.HuggingFace.BaseURL
	}
	if cfg.Generator.HuggingFace.APIKeyEnv == "" {
		cfg.Generator.HuggingFace.APIKeyEnv = def.Generator.HuggingFace.APIKeyEnv
	}
	if cfg.Generator.HuggingFace.Model == "" {
		cfg.Generator.HuggingFace.Model = def.Generator.HuggingFace.Model
	}
	if cfg.Generator.OpenAI.APIKeyEnv == "" {
		cfg.Generator.OpenAI.APIKeyEnv = def.Generator.OpenAI.APIKeyEnv
	}
	if cfg.Generator.OpenAI.Model == "" {
		cfg.Generator.OpenAI.Model = def.Generator.OpenAI.Model
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = def.Log.Format
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
}

// applyEnv overlays process environment settings. Unparsable numbers are ignored.
func applyEnv(cfg *AppConfig) {
	envInt("CHUNK_SIZE", &cfg.Chunker.ChunkSize)
	envInt("CHUNK_OVERLAP", &cfg.Chunker.ChunkOverlap)
	envInt("MAX_TEXT_LENGTH", &cfg.Summarizer.MaxTextLength)
	envInt("TOP_K_RETRIEVAL", &cfg.Retriever.TopK)
	envInt("SUMMARY_LENGTH", &cfg.Summarizer.MaxSentences)
	envInt("GENERATION_TIMEOUT_SECS", &cfg.Generator.TimeoutSecs)
	envString("LOG_LEVEL", &cfg.Log.Level)
	envString("LOG_FORMAT", &cfg.Log.Format)
	envString("GENERATOR_TYPE", &cfg.Generator.Type)
}

func envInt(key string, dst *int) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return
	}
	*dst = n
}

func envString(key string, dst *string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = strings.ToLower(v)
	}
}
