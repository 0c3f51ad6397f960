package parser

import (
	"bufio"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"

	"prognosis-rag/internal/models"
)

// extractPDF pulls plain text per page and groups it into marker-delimited
// sections. Pages that fail text extraction are skipped with a warning so
// one bad page never sinks the document.
func extractPDF(filePath string) ([]models.Section, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, err
	}

	var sections []models.Section
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			log.Warn().Err(err).Int("page", i).Str("file", filePath).Msg("Skipping unreadable page")
			continue
		}
		pageSections := sectionsFromText(pageText, i)
		sections = append(sections, pageSections...)
		log.Info().Int("page", i).Int("sections", len(pageSections)).Msg("Processed page")
	}
	return sections, nil
}

func sectionsFromText(text string, pageNum int) []models.Section {
	builder := newSectionBuilder(pageNum)
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		builder.addLine(scanner.Text())
	}
	return builder.result()
}
