package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rag:\n  max_chunk_size: 300\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 300, cfg.RAG.MaxChunkSize)
	assert.Equal(t, 100, cfg.RAG.MinChunkSize)
	assert.Equal(t, 8, cfg.RAG.TopK)
	assert.Equal(t, "medical_documents", cfg.RAG.Collection)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Greater(t, cfg.Pipeline.Workers, 0)
}

func TestLoadConfig_ParsesFullFile(t *testing.T) {
	yaml := `
database:
  url: postgres://localhost:5432/meddb
  key: secret
embed_llm:
  base_url: http://localhost:11434
  model: nomic-embed-text
rag:
  max_chunk_size: 500
  min_chunk_size: 100
  db_path: ./vectors
server:
  addr: ":9090"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost:5432/meddb", cfg.Database.URL)
	assert.Equal(t, "nomic-embed-text", cfg.EmbedLLM.Model)
	assert.Equal(t, "./vectors", cfg.RAG.DBPath)
	assert.Equal(t, ":9090", cfg.Server.Addr)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
