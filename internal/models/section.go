package models

// BBox holds the x1, y1, x2, y2 coordinates of a text block on a page.
// It is carried through from extraction for debugging and is not used
// by chunking.
type BBox struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Section is a logical block of extracted document text, e.g. "symptoms",
// "diagnosis" or "table". One section per block detected in a page.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	PageNum int    `json:"page_num"`
	BBox    *BBox  `json:"bbox,omitempty"`
}

// SectionTable marks tabular sections, which bypass segmentation and are
// emitted as a single chunk.
const SectionTable = "table"
