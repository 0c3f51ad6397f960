package chromemdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prognosis-rag/internal/models"
)

func newTestManager(t *testing.T, encryptionKey string) *VectorDBManager {
	t.Helper()
	m, err := NewVectorDBManager(t.TempDir(), "test_documents", true, encryptionKey)
	require.NoError(t, err)
	_, err = m.GetOrCreateCollection("test_documents")
	require.NoError(t, err)
	return m
}

func TestAddChunks_CountMismatch(t *testing.T) {
	m := newTestManager(t, "")

	chunks := []models.Chunk{{Content: "BP: 120/80", ChunkID: "vitals_1_a1b2c3_0"}}
	err := m.AddChunks(context.Background(), chunks, nil)
	assert.Error(t, err)
}

func TestAddChunks_EmptyIsNoop(t *testing.T) {
	m := newTestManager(t, "")
	assert.NoError(t, m.AddChunks(context.Background(), nil, nil))
}

func TestDeleteCollection_AllowsRecreate(t *testing.T) {
	m := newTestManager(t, "")

	require.NoError(t, m.DeleteCollection())
	_, err := m.GetOrCreateCollection("test_documents")
	assert.NoError(t, err)
}

func TestExport_RequiresEncryptionKey(t *testing.T) {
	m := newTestManager(t, "")
	assert.Error(t, m.Export(context.Background()))
}
