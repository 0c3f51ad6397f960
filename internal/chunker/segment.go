package chunker

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// combined break pattern, applied in a single pass so segment boundaries
// do not depend on pass order. Alternatives: sentence end before a
// capital, whitespace after a colon, blank line, closing parenthesis
// before a capital, bullet/numbered-list markers at line start.
// Lookarounds keep the surrounding text out of the delimiter, which is
// why this is a regexp2 pattern rather than stdlib RE2.
const breakPattern = `(?<=\.)\s+(?=[A-Z])|(?<=:)\s+|\n\s*\n|(?<=\))\s+(?=[A-Z])|^\s*(?:•|\*|\d+\.)\s+`

// Segmenter splits guarded text into minimal semantic units.
type Segmenter struct {
	breaks *regexp2.Regexp
}

func NewSegmenter() (*Segmenter, error) {
	re, err := regexp2.Compile(breakPattern, regexp2.Multiline)
	if err != nil {
		return nil, err
	}
	return &Segmenter{breaks: re}, nil
}

// Segment splits text on the break pattern, trims each fragment and
// drops empties. Pure function; never returns empty-string elements.
func (s *Segmenter) Segment(text string) ([]string, error) {
	runes := []rune(text)
	var segments []string
	last := 0
	m, err := s.breaks.FindRunesMatch(runes)
	if err != nil {
		return nil, err
	}
	for m != nil {
		if m.Index >= last {
			segments = appendTrimmed(segments, string(runes[last:m.Index]))
			last = m.Index + m.Length
		}
		m, err = s.breaks.FindNextMatch(m)
		if err != nil {
			return nil, err
		}
	}
	segments = appendTrimmed(segments, string(runes[last:]))
	return segments, nil
}

func appendTrimmed(segments []string, fragment string) []string {
	if trimmed := strings.TrimSpace(fragment); trimmed != "" {
		return append(segments, trimmed)
	}
	return segments
}
