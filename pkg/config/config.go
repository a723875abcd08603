package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/coursewise/pkg/dotdir"
)

const (
	configFile = "config.toml"

	// v0 is the alpha version of the config
	v0 = 0

	// CurrentV is the currently supported version, points to v0
	CurrentV = v0
)

type Configer struct {
	ddm        *dotdir.Manager
	targetPath string
}

func NewConfiger(override string) (*Configer, error) {
	cfger := &Configer{}

	cfger.ddm = dotdir.NewManager()
	target, err := cfger.ddm.Target(override)
	if err != nil {
		return nil, err
	}

	if target == "" {
		return cfger, nil
	}

	path := filepath.Join(target, configFile)
	_, err = os.Stat(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfger.targetPath = path

	return cfger, nil
}

// keyOrder lists config keys in TOML section order for `coursewise config list`.
var keyOrder = []string{
	"api.listen",
	"vector_store.provider",
	"vector_store.target",
	"vector_store.collection",
	"vector_store.api_key",
	"vector_store.dimensions",
	"embedding.provider",
	"embedding.target",
	"embedding.model",
	"embedding.api_key",
	"embedding.dimensions",
	"generation.provider",
	"generation.target",
	"generation.model",
	"generation.api_key",
	"moderation.provider",
	"moderation.target",
	"moderation.api_key",
	"retrieval.namespace",
	"retrieval.min_relevance_score",
	"retrieval.default_top_k",
	"retrieval.fallback_min_results",
	"retrieval.soft_assessment_top_k",
	"retrieval.content_top_k",
	"chunking.chunk_size",
	"chunking.chunk_overlap",
	"chunking.upsert_batch_size",
	"events.provider",
	"events.brokers",
	"events.topic",
}

// ValidConfigKeys returns the list of all supported configuration key names
// in section order.
func ValidConfigKeys() []string {
	result := make([]string, 0, len(configKeys))
	seen := make(map[string]bool, len(configKeys))
	for _, k := range keyOrder {
		if _, ok := configKeys[k]; ok {
			result = append(result, k)
			seen[k] = true
		}
	}

	var rest []string
	for k := range configKeys {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)

	return append(result, rest...)
}

// IsValidConfigKey returns true if the given key is a supported configuration key.
func IsValidConfigKey(key string) bool {
	_, ok := configKeys[key]
	return ok
}

// IsSecretKey reports whether the key holds a credential that should be
// masked when listed.
func IsSecretKey(key string) bool {
	return strings.HasSuffix(key, ".api_key")
}

func (c *Configer) GetTarget() string {
	return c.targetPath
}

// LoadConfig loads the configuration from config.toml in the target .coursewise/ directory.
// If the file does not exist, returns NewDefaultConfig() so callers always receive
// a fully-populated Config. Fields explicitly set in the file override the defaults.
func (c *Configer) LoadConfig() (*Config, error) {
	if c.targetPath == "" {
		return NewDefaultConfig(), nil
	}

	data, err := os.ReadFile(c.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewDefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := ParseConfigTOML(data)
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults fills zero-value fields in cfg with values from NewDefaultConfig().
func applyDefaults(cfg *Config) {
	d := NewDefaultConfig()

	setString := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	setUint := func(dst *uint, def uint) {
		if *dst == 0 {
			*dst = def
		}
	}

	if cfg.Version == 0 {
		cfg.Version = d.Version
	}

	setString(&cfg.API.Listen, d.API.Listen)

	setString(&cfg.VectorStore.Provider, d.VectorStore.Provider)
	setString(&cfg.VectorStore.Collection, d.VectorStore.Collection)
	setUint(&cfg.VectorStore.Dimensions, d.VectorStore.Dimensions)

	setString(&cfg.Embedding.Provider, d.Embedding.Provider)
	setString(&cfg.Embedding.Target, d.Embedding.Target)
	setString(&cfg.Embedding.Model, d.Embedding.Model)
	setUint(&cfg.Embedding.Dimensions, d.Embedding.Dimensions)

	setString(&cfg.Generation.Provider, d.Generation.Provider)
	setString(&cfg.Generation.Target, d.Generation.Target)
	setString(&cfg.Generation.Model, d.Generation.Model)

	setString(&cfg.Moderation.Provider, d.Moderation.Provider)

	setString(&cfg.Retrieval.Namespace, d.Retrieval.Namespace)
	if cfg.Retrieval.MinRelevanceScore == 0 {
		cfg.Retrieval.MinRelevanceScore = d.Retrieval.MinRelevanceScore
	}
	setUint(&cfg.Retrieval.DefaultTopK, d.Retrieval.DefaultTopK)
	setUint(&cfg.Retrieval.FallbackMinResults, d.Retrieval.FallbackMinResults)
	setUint(&cfg.Retrieval.SoftAssessmentTopK, d.Retrieval.SoftAssessmentTopK)
	setUint(&cfg.Retrieval.ContentTopK, d.Retrieval.ContentTopK)

	setUint(&cfg.Chunking.ChunkSize, d.Chunking.ChunkSize)
	setUint(&cfg.Chunking.ChunkOverlap, d.Chunking.ChunkOverlap)
	setUint(&cfg.Chunking.UpsertBatchSize, d.Chunking.UpsertBatchSize)

	setString(&cfg.Events.Provider, d.Events.Provider)
	setString(&cfg.Events.Topic, d.Events.Topic)
}

// SaveConfig persists the configuration to config.toml in the target .coursewise/ directory.
func (c *Configer) SaveConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("cannot save nil config")
	}

	if c.targetPath == "" {
		return errors.New("cannot save empty target path")
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(c.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// SetConfigValue loads the config, sets the given key to the given value, and saves it.
// Returns an error if the key is not a valid config key.
func (c *Configer) SetConfigValue(key string, value string) error {
	info, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return err
	}

	if err := info.set(cfg, value); err != nil {
		return err
	}

	return c.SaveConfig(cfg)
}

// GetConfigValue loads the config and returns the string representation of the given key.
// Returns an error if the key is not a valid config key.
func (c *Configer) GetConfigValue(key string) (string, error) {
	info, ok := configKeys[key]
	if !ok {
		return "", fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return "", err
	}

	return info.get(cfg), nil
}

// PresetConfig returns a Config with sane defaults for the named provider preset.
// Supported presets: "openai", "anthropic", "gemini", "ollama".
func PresetConfig(name string) (*Config, error) {
	cfg := NewDefaultConfig()

	switch strings.ToLower(name) {
	case "openai":
		cfg.Embedding = EmbeddingConfig{
			Provider:   "openai",
			Target:     "https://api.openai.com",
			Model:      "text-embedding-3-small",
			Dimensions: 1536,
		}
		cfg.Generation = GenerationConfig{
			Provider: "openai",
			Target:   "https://api.openai.com",
			Model:    "gpt-4o-mini",
		}
		cfg.Moderation = ModerationConfig{
			Provider: "openai",
			Target:   "https://api.openai.com",
		}

	case "anthropic":
		cfg.Generation = GenerationConfig{
			Provider: "anthropic",
			Target:   "https://api.anthropic.com",
			Model:    "claude-3-5-haiku-latest",
		}

	case "gemini":
		cfg.Embedding = EmbeddingConfig{
			Provider:   "genai",
			Model:      "gemini-embedding-001",
			Dimensions: 3072,
		}
		cfg.Generation = GenerationConfig{
			Provider: "genai",
			Model:    "gemini-2.5-flash",
		}

	case "ollama":
		// defaults already target a local ollama

	default:
		return nil, fmt.Errorf("unknown preset: %q (available: %s)", name, strings.Join(ValidPresetNames(), ", "))
	}

	cfg.VectorStore.Dimensions = cfg.Embedding.Dimensions
	return cfg, nil
}

// ValidPresetNames returns the list of recognized preset names.
func ValidPresetNames() []string {
	return []string{"openai", "anthropic", "gemini", "ollama"}
}

// ParseConfigTOML parses raw TOML bytes into a Config.
// Returns an error if the version field is present and not equal to CurrentV.
func ParseConfigTOML(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config TOML: %w", err)
	}

	if cfg.Version != 0 && cfg.Version != CurrentV {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentV)
	}

	return cfg, nil
}
