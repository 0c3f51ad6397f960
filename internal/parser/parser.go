// Package parser extracts titled, paginated sections from medical
// documents in the formats records actually arrive in: scanned PDFs run
// through OCR, DOCX reports, spreadsheet lab results and markdown notes.
package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"prognosis-rag/internal/models"
)

// section markers keyed by section type; a line containing any marker
// opens a new section of that type.
var sectionMarkers = map[string][]string{
	"patient_info": {"Patient Name", "DOB:", "Date of Birth"},
	"history":      {"Prior injury details", "Medical History", "Past Medical History"},
	"symptoms":     {"Current Symptoms", "Chief Complaint", "Present Illness"},
	"diagnosis":    {"Diagnosis", "Assessment", "Clinical Impression"},
	"treatment":    {"Treatment", "Plan", "Recommendations", "Medications"},
	"procedures":   {"Procedure", "Surgery", "Intervention"},
	"vitals":       {"Vital Signs", "Blood Pressure", "Temperature"},
	"labs":         {"Laboratory", "Lab Results", "Test Results"},
	"imaging":      {"Imaging", "X-ray", "MRI", "CT Scan"},
}

// ExtractSections parses a document file into ordered sections.
func ExtractSections(filePath string) ([]models.Section, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".pdf":
		return extractPDF(filePath)
	case ".docx":
		return extractDOCX(filePath)
	case ".xlsx":
		return extractXLSX(filePath)
	case ".ods":
		return extractODS(filePath)
	case ".md", ".markdown":
		return extractMarkdown(filePath)
	case ".txt":
		return extractText(filePath)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", ext)
	}
}

// identifySectionType reports the section type a line opens, or "" if
// the line is ordinary content.
func identifySectionType(line string) string {
	line = strings.ToLower(strings.TrimSpace(line))
	for sectionType, markers := range sectionMarkers {
		for _, marker := range markers {
			if strings.Contains(line, strings.ToLower(marker)) {
				return sectionType
			}
		}
	}
	return ""
}

// sectionBuilder accumulates lines into sections for one page. Text
// before the first recognized marker is discarded, matching the OCR
// extraction behavior.
type sectionBuilder struct {
	pageNum  int
	current  string
	text     []string
	sections []models.Section
}

func newSectionBuilder(pageNum int) *sectionBuilder {
	return &sectionBuilder{pageNum: pageNum}
}

func (b *sectionBuilder) addLine(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	if sectionType := identifySectionType(line); sectionType != "" {
		b.flush()
		b.current = sectionType
		return
	}
	if b.current != "" {
		b.text = append(b.text, line)
	}
}

func (b *sectionBuilder) flush() {
	if b.current != "" && len(b.text) > 0 {
		b.sections = append(b.sections, models.Section{
			Title:   b.current,
			Content: strings.Join(b.text, " "),
			PageNum: b.pageNum,
		})
	}
	b.text = nil
}

func (b *sectionBuilder) result() []models.Section {
	b.flush()
	return b.sections
}
