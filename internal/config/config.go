// Package config holds the pipeline configuration: source directory,
// chunking policy, embedding model, index location and answering limits.
// Values come from an optional YAML file with environment overrides on top.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	Source    SourceConfig    `yaml:"source"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Index     IndexConfig     `yaml:"index"`
	Answer    AnswerConfig    `yaml:"answer"`
	Server    ServerConfig    `yaml:"server"`
}

// SourceConfig locates the PDF corpus and the fingerprint ledger.
type SourceConfig struct {
	Dir        string `yaml:"dir"`         // directory scanned for *.pdf files
	LedgerPath string `yaml:"ledger_path"` // append-only digest list
}

// ChunkingConfig controls fragment sizing.
type ChunkingConfig struct {
	MaxChars int `yaml:"max_chars"`
	Overlap  int `yaml:"overlap"`
}

// EmbeddingConfig selects the embedding model. The same model must be used
// for ingestion and query embedding or similarity scores lose their meaning.
type EmbeddingConfig struct {
	Model     string `yaml:"model"`
	Dimension int    `yaml:"dimension"`
	BatchSize int    `yaml:"batch_size"`
}

// IndexConfig locates the Qdrant index.
type IndexConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Collection string `yaml:"collection"`
}

// AnswerConfig controls retrieval and completion at question time.
type AnswerConfig struct {
	Model     string `yaml:"model"`
	MaxTokens int64  `yaml:"max_tokens"`
	TopK      int    `yaml:"top_k"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port string `yaml:"port"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Dir:        "./data",
			LedgerPath: "./data/processed_hashes.txt",
		},
		Chunking: ChunkingConfig{
			MaxChars: 800,
			Overlap:  100,
		},
		Embedding: EmbeddingConfig{
			Model:     "text-embedding-3-large",
			Dimension: 3072,
			BatchSize: 500,
		},
		Index: IndexConfig{
			Host:       "localhost",
			Port:       6334,
			Collection: "fragments",
		},
		Answer: AnswerConfig{
			Model:     "gpt-4o",
			MaxTokens: 1024,
			TopK:      10,
		},
		Server: ServerConfig{
			Port: "8080",
		},
	}
}

// Load reads configuration from a YAML file, falling back to defaults when
// the file is absent, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv layers environment variables over the file values. These are the
// knobs that differ between local development and deployment.
func (c *Config) applyEnv() {
	if v := os.Getenv("SOURCE_DIR"); v != "" {
		c.Source.Dir = v
	}
	if v := os.Getenv("LEDGER_PATH"); v != "" {
		c.Source.LedgerPath = v
	}
	if v := os.Getenv("QDRANT_HOST"); v != "" {
		c.Index.Host = v
	}
	if v := os.Getenv("QDRANT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Index.Port = port
		}
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
}
