package config

import (
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	Key     string `yaml:"key"`
	Model   string `yaml:"model"`
}

type DatabaseConfig struct {
	URL   string `yaml:"url"`
	Key   string `yaml:"key"`
	Debug bool   `yaml:"debug"`
}

type RAGConfig struct {
	MaxChunkSize  int     `yaml:"max_chunk_size"`
	MinChunkSize  int     `yaml:"min_chunk_size"`
	TopK          int     `yaml:"top_k"`
	MinSimilarity float32 `yaml:"min_similarity"`
	DBPath        string  `yaml:"db_path"`
	Collection    string  `yaml:"collection"`
	EncryptionKey string  `yaml:"encryption_key"`
}

type PipelineConfig struct {
	Workers   int    `yaml:"workers"`
	OutputDir string `yaml:"output_dir"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	EmbedLLM LLMConfig      `yaml:"embed_llm"`
	InferLLM LLMConfig      `yaml:"infer_llm"`
	RAG      RAGConfig      `yaml:"rag"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Server   ServerConfig   `yaml:"server"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.RAG.MaxChunkSize == 0 {
		cfg.RAG.MaxChunkSize = 500
	}
	if cfg.RAG.MinChunkSize == 0 {
		cfg.RAG.MinChunkSize = 100
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = 8
	}
	if cfg.RAG.MinSimilarity == 0 {
		cfg.RAG.MinSimilarity = 0.4
	}
	if cfg.RAG.DBPath == "" {
		cfg.RAG.DBPath = "./chromemdb"
	}
	if cfg.RAG.Collection == "" {
		cfg.RAG.Collection = "medical_documents"
	}
	if cfg.Pipeline.Workers == 0 {
		cfg.Pipeline.Workers = runtime.NumCPU()
	}
	if cfg.Pipeline.OutputDir == "" {
		cfg.Pipeline.OutputDir = "./processed"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
}
