// Package config loads the application configuration from YAML.
// Every provider-backed component carries a `type` selector so that
// implementations can be swapped without code changes. Secrets are never
// stored in the file; the config names the environment variable that
// holds them.
package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// GeminiConfig configures a Google Gemini backed provider.
type GeminiConfig struct {
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
}

// OllamaConfig configures a local Ollama backed provider.
type OllamaConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// DataConfig locates the source spreadsheet.
type DataConfig struct {
	CSVPath string `yaml:"csv_path"`
	Watch   bool   `yaml:"watch"`
}

// EmbedderConfig selects and configures the embedding provider.
type EmbedderConfig struct {
	Type   string        `yaml:"type"`
	Gemini *GeminiConfig `yaml:"gemini,omitempty"`
	Ollama *OllamaConfig `yaml:"ollama,omitempty"`
}

// GeneratorConfig selects and configures the generation provider.
type GeneratorConfig struct {
	Type        string        `yaml:"type"`
	Gemini      *GeminiConfig `yaml:"gemini,omitempty"`
	Ollama      *OllamaConfig `yaml:"ollama,omitempty"`
	TimeoutSecs int           `yaml:"timeout_secs"`
}

// VectorStoreConfig selects and configures the vector store.
type VectorStoreConfig struct {
	Type       string `yaml:"type"`
	Path       string `yaml:"path"`
	Collection string `yaml:"collection"`
}

// RetrieverConfig tunes the retrieval and indexing pipeline.
type RetrieverConfig struct {
	TopK      int `yaml:"top_k"`
	BatchSize int `yaml:"batch_size"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Data        DataConfig        `yaml:"data"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	Generator   GeneratorConfig   `yaml:"generator"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Retriever   RetrieverConfig   `yaml:"retriever"`
}

// Load reads a config from the specified path. A missing file is not an
// error: the defaults describe a working Gemini-backed setup.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			applyDefaults(cfg)
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Embedder:    EmbedderConfig{Type: "gemini"},
		Generator:   GeneratorConfig{Type: "gemini"},
		VectorStore: VectorStoreConfig{Type: "chromem"},
	}
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Data.CSVPath == "" {
		cfg.Data.CSVPath = "data/Sugar_Spend_Data.csv"
	}

	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "gemini"
	}
	if cfg.Embedder.Type == "gemini" {
		if cfg.Embedder.Gemini == nil {
			cfg.Embedder.Gemini = &GeminiConfig{}
		}
		applyGeminiDefaults(cfg.Embedder.Gemini, "text-embedding-004")
	}
	if cfg.Embedder.Type == "ollama" && cfg.Embedder.Ollama != nil {
		applyOllamaDefaults(cfg.Embedder.Ollama, "nomic-embed-text")
	}

	if cfg.Generator.Type == "" {
		cfg.Generator.Type = "gemini"
	}
	if cfg.Generator.Type == "gemini" {
		if cfg.Generator.Gemini == nil {
			cfg.Generator.Gemini = &GeminiConfig{}
		}
		applyGeminiDefaults(cfg.Generator.Gemini, "gemini-2.0-flash")
	}
	if cfg.Generator.Type == "ollama" && cfg.Generator.Ollama != nil {
		applyOllamaDefaults(cfg.Generator.Ollama, "llama3.2")
	}
	if cfg.Generator.TimeoutSecs == 0 {
		cfg.Generator.TimeoutSecs = 60
	}

	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "chromem"
	}
	if cfg.VectorStore.Path == "" && cfg.VectorStore.Type != "memory" {
		cfg.VectorStore.Path = "./chroma_db"
	}
	if cfg.VectorStore.Collection == "" {
		cfg.VectorStore.Collection = "spend_chunks"
	}

	if cfg.Retriever.TopK == 0 {
		cfg.Retriever.TopK = 30
	}
	if cfg.Retriever.BatchSize == 0 {
		cfg.Retriever.BatchSize = 16
	}
}

func applyGeminiDefaults(g *GeminiConfig, model string) {
	if g.APIKeyEnv == "" {
		g.APIKeyEnv = "GEMINI_API_KEY"
	}
	if g.Model == "" {
		g.Model = model
	}
}

func applyOllamaDefaults(o *OllamaConfig, model string) {
	if o.BaseURL == "" {
		o.BaseURL = "http://localhost:11434"
	}
	if o.Model == "" {
		o.Model = model
	}
}
