package parser

import (
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"prognosis-rag/internal/models"
)

// extractMarkdown walks the goldmark AST: headings open sections, GFM
// tables become table sections, everything else is section content.
func extractMarkdown(filePath string) ([]models.Section, error) {
	source, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	root := md.Parser().Parse(text.NewReader(source))

	var sections []models.Section
	current := ""
	var buf []string
	flush := func() {
		if current != "" && len(buf) > 0 {
			sections = append(sections, models.Section{
				Title:   current,
				Content: strings.Join(buf, " "),
				PageNum: defaultPageNumber,
			})
		}
		buf = nil
	}

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			flush()
			title := nodeText(node, source)
			if sectionType := identifySectionType(title); sectionType != "" {
				current = sectionType
			} else {
				current = normalizeTitle(title)
			}
		case *extast.Table:
			flush()
			sections = append(sections, models.Section{
				Title:   models.SectionTable,
				Content: tableText(node, source),
				PageNum: defaultPageNumber,
			})
		default:
			if current == "" {
				continue
			}
			if s := strings.TrimSpace(nodeText(n, source)); s != "" {
				buf = append(buf, s)
			}
		}
	}
	flush()
	return sections, nil
}

func nodeText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := c.(*ast.Text); ok {
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// tableText renders a GFM table row by row, cells joined with pipes, so
// the verbatim structure survives into the single table chunk.
func tableText(table ast.Node, source []byte) string {
	var rows []string
	for r := table.FirstChild(); r != nil; r = r.NextSibling() {
		var cells []string
		for c := r.FirstChild(); c != nil; c = c.NextSibling() {
			cells = append(cells, strings.TrimSpace(nodeText(c, source)))
		}
		rows = append(rows, strings.Join(cells, " | "))
	}
	return strings.Join(rows, "\n")
}

func normalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), "_")
}
