package layout

import (
	"fmt"
	"strconv"
	"strings"

	"3tcapital/ms_service_documents/internal/core/company"
	"3tcapital/ms_service_documents/internal/core/document"
)

type column struct {
	title string
	span  int
	align Align
}

// Column sets sum to GridColumns.
var (
	taxedColumns = []column{
		{"#", 1, AlignCenter},
		{"Description", 6, AlignLeft},
		{"HSN/SAC", 2, AlignCenter},
		{"Qty", 2, AlignRight},
		{"Rate", 3, AlignRight},
		{"Amount", 3, AlignRight},
		{"Tax %", 2, AlignRight},
		{"Tax Amt", 2, AlignRight},
		{"Total", 3, AlignRight},
	}
	plainColumns = []column{
		{"#", 1, AlignCenter},
		{"Description", 10, AlignLeft},
		{"HSN/SAC", 3, AlignCenter},
		{"Qty", 2, AlignRight},
		{"Rate", 4, AlignRight},
		{"Total", 4, AlignRight},
	}
)

const (
	tableFont    = 8.0
	minRowHeight = 6.5
)

// tables renders the Services table then the Parts table. An empty section
// is omitted unless the whole document has no items, in which case both
// sections print a single placeholder row.
func (r *Renderer) tables(doc document.Document, totals document.Totals, theme company.KindTheme) []Block {
	services, parts := document.Partition(doc.Items)
	empty := len(doc.Items) == 0

	var blocks []Block
	if len(services) > 0 || empty {
		blocks = append(blocks, r.table("SERVICES", "No services listed", services, totals.Services, doc.Tax.Enabled, theme))
	}
	if len(parts) > 0 || empty {
		blocks = append(blocks, r.table("PARTS", "No parts listed", parts, totals.Parts, doc.Tax.Enabled, theme))
	}
	return blocks
}

func (r *Renderer) table(title, placeholder string, items []document.LineItem, section document.SectionTotals, taxed bool, theme company.KindTheme) Block {
	g := r.geometry
	primary := theme.Primary

	cols := plainColumns
	if taxed {
		cols = taxedColumns
	}

	header := []Row{
		{Height: 7, Cells: []Cell{{Span: GridColumns, Texts: []Text{{Value: title, Top: 1.5, Size: 9.5, Bold: true, Color: &primary}}}}},
		r.columnHeader(cols, primary),
	}

	var rows []Row
	if len(items) == 0 {
		rows = append(rows, Row{Height: 8, Cells: []Cell{{
			Span:   GridColumns,
			Border: true,
			Texts:  []Text{{Value: placeholder, Top: 2, Size: tableFont, Align: AlignCenter, Color: &muted}},
		}}})
	}

	rate := section.Rates.Effective()
	for i, it := range items {
		amount := document.LineAmount(it)
		values := []string{
			strconv.Itoa(i + 1),
			it.Description,
			it.Code,
			it.Quantity.String(),
			it.UnitRate.StringFixed(2),
		}
		if taxed {
			tax := document.LineTax(it, section.Rates)
			values = append(values,
				amount.StringFixed(2),
				rate.String()+"%",
				tax.StringFixed(2),
				amount.Add(tax).StringFixed(2),
			)
		} else {
			values = append(values, amount.StringFixed(2))
		}

		row := Row{Cells: make([]Cell, len(cols))}
		for c, col := range cols {
			row.Cells[c] = Cell{Span: col.span, Texts: []Text{{
				Value: values[c],
				Top:   1.5,
				Size:  tableFont,
				Align: col.align,
				Color: &ink,
			}}}
		}
		if i%2 == 1 {
			row.Fill = &panel
		}
		rows = append(rows, fitRow(g, row, minRowHeight))
	}

	rows = append(rows, Row{Height: 0.4, Rule: &ruleGray}, r.subtotal(title, cols, section, taxed))

	return Block{Name: strings.ToLower(title), Header: header, Rows: rows, Gap: blockGap}
}

func (r *Renderer) columnHeader(cols []column, fill company.Color) Row {
	row := Row{Height: 7, Fill: &fill, Cells: make([]Cell, len(cols))}
	for i, col := range cols {
		row.Cells[i] = Cell{Span: col.span, Texts: []Text{{
			Value: col.title,
			Top:   1.8,
			Size:  tableFont,
			Bold:  true,
			Align: col.align,
			Color: &white,
		}}}
	}
	return row
}

func (r *Renderer) subtotal(title string, cols []column, section document.SectionTotals, taxed bool) Row {
	cell := func(span int, value string) Cell {
		return Cell{Span: span, Texts: []Text{{Value: value, Top: 1.5, Size: tableFont, Bold: true, Align: AlignRight, Color: &ink}}}
	}

	if !taxed {
		lead := GridColumns - cols[len(cols)-1].span
		return Row{Height: minRowHeight, Cells: []Cell{
			cell(lead, fmt.Sprintf("%s SUBTOTAL (%d)", title, section.Count)),
			cell(cols[len(cols)-1].span, section.Taxable.StringFixed(2)),
		}}
	}

	// Amount, Tax % and Tax Amt, Total are the last four columns.
	n := len(cols)
	lead := 0
	for _, c := range cols[:n-4] {
		lead += c.span
	}
	return Row{Height: minRowHeight, Cells: []Cell{
		cell(lead, fmt.Sprintf("%s SUBTOTAL (%d)", title, section.Count)),
		cell(cols[n-4].span, section.Taxable.StringFixed(2)),
		cell(cols[n-3].span+cols[n-2].span, section.Tax().StringFixed(2)),
		cell(cols[n-1].span, section.Total().StringFixed(2)),
	}}
}
