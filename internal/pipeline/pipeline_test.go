package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prognosis-rag/internal/chunker"
	"prognosis-rag/internal/models"
)

func newTestPipeline(t *testing.T, workers int) *Pipeline {
	t.Helper()
	c, err := chunker.New(50, 0)
	require.NoError(t, err)
	return New(c, workers)
}

func TestProcessSections_PreservesSectionOrder(t *testing.T) {
	p := newTestPipeline(t, 4)

	var sections []models.Section
	for i := 1; i <= 20; i++ {
		sections = append(sections, models.Section{
			Title:   "symptoms",
			Content: fmt.Sprintf("Finding number %03d recorded here.", i),
			PageNum: i,
		})
	}

	doc, err := p.ProcessSections(context.Background(), "report.pdf", sections)
	require.NoError(t, err)
	require.Len(t, doc.Chunks, 20)

	// chunks must come back in section order regardless of which
	// worker finished first
	for i, chunk := range doc.Chunks {
		assert.Equal(t, i+1, chunk.PageNum)
	}
}

func TestProcessSections_FailureIsolation(t *testing.T) {
	p := newTestPipeline(t, 2)

	sections := []models.Section{
		{Title: "symptoms", Content: "Headache reported.", PageNum: 1},
		{Title: "", Content: "orphan text with no title", PageNum: 2},
		{Title: "diagnosis", Content: "Tension headache.", PageNum: 3},
	}

	doc, err := p.ProcessSections(context.Background(), "report.pdf", sections)
	require.NoError(t, err)

	require.Len(t, doc.Warnings, 1)
	assert.Equal(t, 1, doc.Warnings[0].SectionIndex)
	assert.Equal(t, 2, doc.Warnings[0].PageNum)

	// counts reflect only successfully chunked sections
	assert.Equal(t, 2, doc.DocumentInfo.TotalSections)
	assert.Equal(t, 2, doc.DocumentInfo.TotalChunks)
	assert.Equal(t, len(doc.Chunks), doc.DocumentInfo.TotalChunks)
}

func TestProcessSections_EmptySectionIsNotAnError(t *testing.T) {
	p := newTestPipeline(t, 1)

	sections := []models.Section{
		{Title: "symptoms", Content: "   \n  ", PageNum: 1},
	}
	doc, err := p.ProcessSections(context.Background(), "report.pdf", sections)
	require.NoError(t, err)
	assert.Empty(t, doc.Chunks)
	assert.Empty(t, doc.Warnings)
	assert.Equal(t, 1, doc.DocumentInfo.TotalSections)
	assert.Equal(t, 0, doc.DocumentInfo.TotalChunks)
}

func TestProcessSections_Cancelled(t *testing.T) {
	p := newTestPipeline(t, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.ProcessSections(ctx, "report.pdf", []models.Section{
		{Title: "symptoms", Content: "Headache reported.", PageNum: 1},
	})
	assert.Error(t, err)
}

func TestSave_PreservesNonASCII(t *testing.T) {
	doc := &models.ProcessedDocument{
		DocumentInfo: models.DocumentInfo{Filename: "report.pdf", TotalSections: 1, TotalChunks: 1},
		Chunks: []models.Chunk{{
			Content:     "Température 38.5° naïve reading <unverified>",
			SectionType: "vitals",
			PageNum:     1,
			ChunkID:     "vitals_1_abc_0",
			Metadata:    map[string]any{"section_type": "vitals"},
		}},
	}

	path := filepath.Join(t.TempDir(), "report_processed.json")
	require.NoError(t, Save(doc, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, "Température")
	assert.Contains(t, out, "naïve")
	// HTML escaping is off: angle brackets stay literal
	assert.Contains(t, out, "<unverified>")
	assert.NotContains(t, out, `\u003c`)
	assert.True(t, strings.Contains(out, `"document_info"`))
}
