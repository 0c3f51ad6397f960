package parser

import (
	"os"

	"github.com/nguyenthenguyen/docx"

	"prognosis-rag/internal/models"
)

const defaultPageNumber = 1

// extractDOCX treats each paragraph as a line. DOCX carries no page
// numbers, so everything lands on page 1.
func extractDOCX(filePath string) ([]models.Section, error) {
	r, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	doc := r.Editable()
	return sectionsFromText(doc.GetContent(), defaultPageNumber), nil
}

// extractText handles plain-text exports of medical records.
func extractText(filePath string) ([]models.Section, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return sectionsFromText(string(data), defaultPageNumber), nil
}
