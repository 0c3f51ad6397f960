// Package pipeline orchestrates the ingestion flow: extracted sections
// are chunked concurrently and recombined in original section order.
package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"prognosis-rag/internal/chunker"
	"prognosis-rag/internal/models"
	"prognosis-rag/internal/parser"
)

type Pipeline struct {
	chunker *chunker.Chunker
	workers int
}

func New(c *chunker.Chunker, workers int) *Pipeline {
	if workers <= 0 {
		workers = 1
	}
	return &Pipeline{chunker: c, workers: workers}
}

// ProcessFile extracts sections from a document and chunks them.
func (p *Pipeline) ProcessFile(ctx context.Context, filePath string) (*models.ProcessedDocument, error) {
	log.Info().Str("file", filePath).Msg("Starting document processing")
	sections, err := parser.ExtractSections(filePath)
	if err != nil {
		return nil, err
	}
	log.Info().Int("sections", len(sections)).Msg("Extracted sections")
	return p.ProcessSections(ctx, filepath.Base(filePath), sections)
}

// ProcessSections chunks each section on its own worker. Results are
// collected into an index-keyed slice so inter-section order is the
// original section order, never completion order. A failed section
// contributes zero chunks and a warning; siblings are unaffected. If
// ctx is cancelled, partial results are discarded entirely.
func (p *Pipeline) ProcessSections(ctx context.Context, filename string, sections []models.Section) (*models.ProcessedDocument, error) {
	results := make([][]models.Chunk, len(sections))
	failures := make([]*models.SectionWarning, len(sections))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, section := range sections {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			chunks, err := p.chunker.ChunkSection(section)
			if err != nil {
				log.Warn().Err(err).Str("title", section.Title).Int("page", section.PageNum).Msg("Section chunking failed")
				failures[i] = &models.SectionWarning{
					SectionIndex: i,
					Title:        section.Title,
					PageNum:      section.PageNum,
					Error:        err.Error(),
				}
				return nil
			}
			results[i] = chunks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var allChunks []models.Chunk
	var warnings []models.SectionWarning
	succeeded := 0
	for i := range sections {
		if failures[i] != nil {
			warnings = append(warnings, *failures[i])
			continue
		}
		succeeded++
		allChunks = append(allChunks, results[i]...)
	}

	log.Info().Int("chunks", len(allChunks)).Int("warnings", len(warnings)).Msg("Created chunks from sections")

	return &models.ProcessedDocument{
		DocumentInfo: models.DocumentInfo{
			Filename:      filename,
			ProcessedAt:   time.Now().Format(time.RFC3339),
			TotalSections: succeeded,
			TotalChunks:   len(allChunks),
		},
		Chunks:   allChunks,
		Warnings: warnings,
	}, nil
}

// Save writes the document artifact as indented UTF-8 JSON. HTML
// escaping is off so non-ASCII and clinical notation survive literally.
func Save(doc *models.ProcessedDocument, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	log.Info().Str("path", outputPath).Msg("Saved processed data")
	return nil
}
