package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegment(t *testing.T) {
	s, err := NewSegmenter()
	require.NoError(t, err)

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			"sentence boundary before capital",
			"Patient stable. Next visit soon.",
			[]string{"Patient stable.", "Next visit soon."},
		},
		{
			"text after colon",
			"Medications: lisinopril daily",
			[]string{"Medications:", "lisinopril daily"},
		},
		{
			"blank line paragraphs",
			"first paragraph\n\nsecond paragraph",
			[]string{"first paragraph", "second paragraph"},
		},
		{
			"closing parenthesis before capital",
			"(see note) Follow up required",
			[]string{"(see note)", "Follow up required"},
		},
		{
			"bullet list",
			"• first item\n• second item",
			[]string{"first item", "second item"},
		},
		{
			"numbered list",
			"1. First item\n2. Second item",
			[]string{"First item", "Second item"},
		},
		{
			"lowercase after period stays joined",
			"pain at 3. worse at night",
			[]string{"pain at 3. worse at night"},
		},
		{
			"empty input",
			"",
			nil,
		},
		{
			"whitespace only",
			"   \n\t  ",
			nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Segment(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSegment_SentinelBlocksSplitting(t *testing.T) {
	s, err := NewSegmenter()
	require.NoError(t, err)

	// guarded vitals reading: the colon is followed by the sentinel,
	// not whitespace, so no break applies inside it
	got, err := s.Segment("BP:" + wsSentinel + "130/85")
	require.NoError(t, err)
	assert.Equal(t, []string{"BP:" + wsSentinel + "130/85"}, got)
}

func TestSegment_NeverReturnsEmptyElements(t *testing.T) {
	s, err := NewSegmenter()
	require.NoError(t, err)

	got, err := s.Segment("One.  Two.\n\n\n\nThree:   ")
	require.NoError(t, err)
	for _, seg := range got {
		assert.NotEmpty(t, seg)
	}
}
