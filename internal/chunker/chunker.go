// Package chunker partitions noisy OCR-derived section text into
// size-bounded chunks without severing clinically meaningful tokens
// (dates, dosages, codes, vitals) across chunk boundaries.
package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"prognosis-rag/internal/models"
)

// ErrInvalidSection is returned for sections missing a title or page
// number. The chunker never guesses defaults for structural fields.
var ErrInvalidSection = errors.New("invalid section")

// TablePrefix is prepended to the single chunk emitted for tabular
// sections.
const TablePrefix = "TABLE:\n"

const (
	// DefaultMaxChunkSize bounds chunk content length in bytes.
	DefaultMaxChunkSize = 500
	// DefaultMinChunkSize is advisory only; short trailing chunks are
	// kept, never padded or dropped.
	DefaultMinChunkSize = 100
)

// Chunker is a stateless single-pass transform from a Section to a
// sequence of Chunks. Safe for concurrent use across sections; the only
// shared structure is the guard's thread-safe bounded cache.
type Chunker struct {
	maxChunkSize int
	minChunkSize int
	guard        *Guard
	segmenter    *Segmenter
}

// New builds a Chunker with the given size bounds. Zero or negative
// bounds fall back to defaults.
func New(maxChunkSize, minChunkSize int) (*Chunker, error) {
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultMaxChunkSize
	}
	if minChunkSize <= 0 {
		minChunkSize = DefaultMinChunkSize
	}
	guard, err := NewGuard()
	if err != nil {
		return nil, err
	}
	segmenter, err := NewSegmenter()
	if err != nil {
		return nil, err
	}
	return &Chunker{
		maxChunkSize: maxChunkSize,
		minChunkSize: minChunkSize,
		guard:        guard,
		segmenter:    segmenter,
	}, nil
}

// ChunkSection partitions one section into chunks. Blank content yields
// a nil slice, not an error. Tabular sections bypass segmentation and
// come back as a single prefixed chunk.
//
// Assembly policy: flush on size overflow only. A segment that alone
// exceeds the bound is emitted verbatim as an oversized chunk rather
// than truncated.
func (c *Chunker) ChunkSection(section models.Section) ([]models.Chunk, error) {
	if section.Title == "" {
		return nil, fmt.Errorf("%w: missing title", ErrInvalidSection)
	}
	if section.PageNum <= 0 {
		return nil, fmt.Errorf("%w: page number %d", ErrInvalidSection, section.PageNum)
	}
	if strings.TrimSpace(section.Content) == "" {
		return nil, nil
	}

	if section.Title == models.SectionTable {
		seq := 0
		chunk := c.annotate(TablePrefix+section.Content, section.Title, section.PageNum, &seq, true)
		return []models.Chunk{chunk}, nil
	}

	segments, err := c.segmenter.Segment(c.guard.Protect(section.Content))
	if err != nil {
		return nil, fmt.Errorf("segment section %q page %d: %w", section.Title, section.PageNum, err)
	}

	var chunks []models.Chunk
	var current []string
	currentLen := 0
	seq := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		content := strings.Join(current, " ")
		chunks = append(chunks, c.annotate(content, section.Title, section.PageNum, &seq, false))
		current = current[:0]
		currentLen = 0
	}

	for _, segment := range segments {
		restored := c.guard.Restore(segment)
		add := len(restored)
		if len(current) > 0 {
			add++ // joining space
		}
		if len(current) > 0 && currentLen+add > c.maxChunkSize {
			flush()
			add = len(restored)
		}
		current = append(current, restored)
		currentLen += add
	}
	flush()

	return chunks, nil
}

// annotate attaches derived metadata and a stable identifier. The id is
// content-derived plus a per-section sequence counter, so identical
// content on the same page never collides under concurrent runs the way
// wall-clock ids do.
func (c *Chunker) annotate(content, sectionType string, pageNum int, seq *int, isTable bool) models.Chunk {
	metadata := map[string]any{
		models.MetaSectionType:          sectionType,
		models.MetaPageNum:              pageNum,
		models.MetaChunkLength:          len(content),
		models.MetaCreatedAt:            time.Now().Format(time.RFC3339),
		models.MetaContainsMeasurements: c.guard.HasMeasurements(content),
		models.MetaContainsDates:        c.guard.HasDates(content),
		models.MetaContainsCodes:        c.guard.HasCodes(content),
	}
	if isTable {
		metadata[models.MetaIsTable] = true
	}

	chunk := models.Chunk{
		Content:     content,
		SectionType: sectionType,
		PageNum:     pageNum,
		ChunkID:     chunkID(sectionType, pageNum, content, *seq),
		Metadata:    metadata,
	}
	*seq++
	return chunk
}

func chunkID(sectionType string, pageNum int, content string, seq int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%s", sectionType, pageNum, content)))
	return fmt.Sprintf("%s_%d_%s_%d", sectionType, pageNum, hex.EncodeToString(sum[:6]), seq)
}
