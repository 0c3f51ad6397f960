package models

import "fmt"

// Metadata keys attached to every chunk.
const (
	MetaSectionType          = "section_type"
	MetaPageNum              = "page_num"
	MetaChunkLength          = "chunk_length"
	MetaCreatedAt            = "created_at"
	MetaContainsMeasurements = "contains_measurements"
	MetaContainsDates        = "contains_dates"
	MetaContainsCodes        = "contains_codes"
	MetaIsTable              = "is_table"
)

// Chunk is a bounded-size unit of section text with retrieval metadata.
// Chunks are immutable once created.
type Chunk struct {
	Content     string         `json:"content"`
	SectionType string         `json:"section_type"`
	PageNum     int            `json:"page_num"`
	ChunkID     string         `json:"chunk_id"`
	Metadata    map[string]any `json:"metadata"`
}

// MetadataStrings flattens chunk metadata to the string map a vector
// store collection expects.
func (c *Chunk) MetadataStrings() map[string]string {
	out := make(map[string]string, len(c.Metadata))
	for k, v := range c.Metadata {
		out[k] = fmt.Sprintf("%v", v)
	}
	return out
}

// DocumentInfo summarizes one processed document. Counts reflect only
// successfully chunked sections.
type DocumentInfo struct {
	Filename      string `json:"filename"`
	ProcessedAt   string `json:"processed_at"`
	TotalSections int    `json:"total_sections"`
	TotalChunks   int    `json:"total_chunks"`
}

// SectionWarning records a section whose chunking failed. The section
// contributes zero chunks; siblings are unaffected.
type SectionWarning struct {
	SectionIndex int    `json:"section_index"`
	Title        string `json:"title"`
	PageNum      int    `json:"page_num"`
	Error        string `json:"error"`
}

// ProcessedDocument is the document-level ingestion artifact.
type ProcessedDocument struct {
	DocumentInfo DocumentInfo     `json:"document_info"`
	Chunks       []Chunk          `json:"chunks"`
	Warnings     []SectionWarning `json:"warnings,omitempty"`
}

// ChunkEmbedding pairs chunk content with its embedding vector for storage.
type ChunkEmbedding struct {
	Content        string
	Embedding      []float32
	SourceFilename string
	SectionType    string
	PageNum        int
	ChunkID        string
}

type PromptResponse struct {
	Query   string
	Source  string
	Content string
}
