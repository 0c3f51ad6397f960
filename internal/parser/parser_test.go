package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prognosis-rag/internal/models"
)

func TestIdentifySectionType(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"Chief Complaint", "symptoms"},
		{"  past medical history  ", "history"},
		{"Diagnosis:", "diagnosis"},
		{"Vital Signs on admission", "vitals"},
		{"LAB RESULTS", "labs"},
		{"MRI of the cervical spine", "imaging"},
		{"Patient reports pain", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, identifySectionType(tt.line), tt.line)
	}
}

func TestSectionsFromText(t *testing.T) {
	text := `Chief Complaint
persistent headache
neck pain

Diagnosis
tension headache suspected

Treatment
naproxen 250 mg bid
`
	sections := sectionsFromText(text, 3)
	require.Len(t, sections, 3)

	assert.Equal(t, "symptoms", sections[0].Title)
	assert.Equal(t, "persistent headache neck pain", sections[0].Content)
	assert.Equal(t, 3, sections[0].PageNum)

	assert.Equal(t, "diagnosis", sections[1].Title)
	assert.Equal(t, "treatment", sections[2].Title)
	assert.Equal(t, "naproxen 250 mg bid", sections[2].Content)
}

func TestSectionsFromText_TextBeforeFirstMarkerDiscarded(t *testing.T) {
	text := "stray header line\nChief Complaint\nheadache\n"
	sections := sectionsFromText(text, 1)
	require.Len(t, sections, 1)
	assert.Equal(t, "headache", sections[0].Content)
}

func TestExtractMarkdown(t *testing.T) {
	md := `# Diagnosis

Cervical strain suspected.

# Lab Results

| Test | Value |
|------|-------|
| WBC  | 7.2   |

# Surgeon Notes

No intervention planned.
`
	path := filepath.Join(t.TempDir(), "note.md")
	require.NoError(t, os.WriteFile(path, []byte(md), 0o644))

	sections, err := ExtractSections(path)
	require.NoError(t, err)
	require.Len(t, sections, 3)

	assert.Equal(t, "diagnosis", sections[0].Title)
	assert.Equal(t, "Cervical strain suspected.", sections[0].Content)

	assert.Equal(t, models.SectionTable, sections[1].Title)
	assert.Contains(t, sections[1].Content, "Test | Value")
	assert.Contains(t, sections[1].Content, "WBC | 7.2")

	// heading with no marker falls back to a normalized title
	assert.Equal(t, "surgeon_notes", sections[2].Title)
}

func TestExtractSections_UnsupportedFormat(t *testing.T) {
	_, err := ExtractSections("records.csv")
	assert.Error(t, err)
}
