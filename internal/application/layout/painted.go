package layout

import (
	"3tcapital/ms_service_documents/internal/core/company"
	"3tcapital/ms_service_documents/internal/core/document"
)

// GridColumns is the number of columns a row is divided into.
const GridColumns = 24

// Align is the horizontal alignment of a text.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Text is a single run of text inside a cell. Top is relative to the cell.
type Text struct {
	Value string
	Top   float64
	Size  float64
	Bold  bool
	Align Align
	Color *company.Color
}

// Cell occupies Span grid columns of a row.
type Cell struct {
	Span   int
	Texts  []Text
	Image  *document.Image
	Fill   *company.Color
	Border bool
}

// Row is a fixed-height horizontal strip. Rule draws a thin horizontal line
// instead of cells.
type Row struct {
	Height float64
	Cells  []Cell
	Fill   *company.Color
	Rule   *company.Color
}

// Block is a logical section of the document. Header rows of a table are
// repeated at the top of each continuation page. KeepTogether moves the
// whole block to the next page instead of splitting it.
type Block struct {
	Name         string
	Header       []Row
	Rows         []Row
	KeepTogether bool
	Gap          float64
}

// Height is the total height of the block when printed on one page.
func (b Block) Height() float64 {
	var h float64
	for _, r := range b.Header {
		h += r.Height
	}
	for _, r := range b.Rows {
		h += r.Height
	}
	return h
}

// Painted is the page independent description of a document.
type Painted struct {
	Kind      document.Kind
	Title     string
	Number    string
	Subject   string
	Author    string
	ItemCount int
	Blocks    []Block
}

// Page is one paginated page.
type Page struct {
	Number int
	Rows   []Row
	Used   float64
	Footer string
}
