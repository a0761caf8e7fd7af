package pdf

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/page"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontfamily"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/core/entity"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"3tcapital/ms_service_documents/internal/application/layout"
	"3tcapital/ms_service_documents/internal/core/company"
	"3tcapital/ms_service_documents/internal/core/document"
)

const (
	contentType = "application/pdf"
	creator     = "ms_service_documents"

	textInset   = 1.5
	footerSize  = 7.0
	ptToMM      = 0.3528
	spacerTrim  = 0.5
	borderWidth = 0.2
)

var (
	borderGray = &props.Color{Red: 203, Green: 213, Blue: 225}
	footerGray = &props.Color{Red: 100, Green: 116, Blue: 139}
)

// Exporter paints paginated documents into PDF bytes.
type Exporter struct {
	geometry layout.Geometry
	log      *slog.Logger
	now      func() time.Time
}

// NewExporter creates an exporter for the given page geometry.
func NewExporter(g layout.Geometry, log *slog.Logger) *Exporter {
	return &Exporter{geometry: g, log: log, now: time.Now}
}

// Export paginates and paints the document. The returned file carries no
// name; naming is up to the caller.
func (e *Exporter) Export(ctx context.Context, doc *layout.Painted) (file document.File, err error) {
	if err := ctx.Err(); err != nil {
		return document.File{}, err
	}

	defer func() {
		if r := recover(); r != nil {
			e.log.Error("PDF painter panicked", "number", doc.Number, "panic", r)
			file = document.File{}
			err = fmt.Errorf("paint pdf: %v", r)
		}
	}()

	pages := layout.Paginate(doc, e.geometry)

	m := maroto.New(e.config(doc))
	for _, pg := range pages {
		if err := ctx.Err(); err != nil {
			return document.File{}, err
		}
		m.AddPages(e.page(pg))
	}

	out, err := m.Generate()
	if err != nil {
		return document.File{}, fmt.Errorf("generate pdf: %w", err)
	}
	// A cancelled request must not produce a file even if painting finished.
	if err := ctx.Err(); err != nil {
		return document.File{}, err
	}

	e.log.Debug("PDF painted", "number", doc.Number, "pages", len(pages), "bytes", len(out.GetBytes()))

	return document.File{
		ContentType: contentType,
		Bytes:       out.GetBytes(),
		Pages:       len(pages),
	}, nil
}

func (e *Exporter) config(doc *layout.Painted) *entity.Config {
	g := e.geometry
	return config.NewBuilder().
		WithDimensions(g.PageWidth, g.PageHeight).
		WithLeftMargin(g.Margin).
		WithTopMargin(g.Margin).
		WithRightMargin(g.Margin).
		WithBottomMargin(g.Margin).
		WithMaxGridSize(layout.GridColumns).
		WithDefaultFont(&props.Font{Family: fontfamily.Helvetica, Size: 9}).
		WithSequentialMode().
		WithCompression(true).
		WithTitle(doc.Title, true).
		WithAuthor(doc.Author, true).
		WithSubject(doc.Subject, true).
		WithCreator(creator, true).
		WithCreationDate(e.now()).
		Build()
}

// page converts one paginated page. Multi-page documents get a spacer that
// pushes the footer line to the bottom of the printable area.
func (e *Exporter) page(pg layout.Page) core.Page {
	rows := make([]core.Row, 0, len(pg.Rows)+2)
	for _, r := range pg.Rows {
		rows = append(rows, e.row(r))
	}

	if pg.Footer != "" {
		g := e.geometry
		body := g.PageHeight - 2*g.Margin
		if spacer := body - pg.Used - g.FooterHeight - spacerTrim; spacer > 0 {
			rows = append(rows, row.New(spacer))
		}
		rows = append(rows, text.NewRow(g.FooterHeight, pg.Footer, props.Text{
			Top:   1.5,
			Size:  footerSize,
			Align: align.Center,
			Color: footerGray,
		}))
	}

	return page.New().Add(rows...)
}

func (e *Exporter) row(r layout.Row) core.Row {
	if r.Rule != nil {
		return line.NewRow(r.Height, props.Line{Color: rgb(r.Rule), Thickness: r.Height / 2})
	}

	out := row.New(r.Height)
	for _, c := range r.Cells {
		out.Add(e.col(c))
	}
	if r.Fill != nil {
		out.WithStyle(&props.Cell{BackgroundColor: rgb(r.Fill)})
	}
	return out
}

func (e *Exporter) col(c layout.Cell) core.Col {
	out := col.New(c.Span)

	if c.Image != nil && len(c.Image.Bytes) > 0 {
		if ext := extension.Type(c.Image.Extension); ext.IsValid() {
			out.Add(image.NewFromBytes(c.Image.Bytes, ext, props.Rect{Center: true, Percent: 90}))
		} else {
			e.log.Warn("Skipping image with unsupported extension", "extension", c.Image.Extension)
		}
	}

	for _, t := range c.Texts {
		out.Add(text.New(t.Value, textProps(t)))
	}

	if c.Fill != nil || c.Border {
		style := &props.Cell{BackgroundColor: rgb(c.Fill)}
		if c.Border {
			style.BorderType = border.Full
			style.BorderColor = borderGray
			style.BorderThickness = borderWidth
		}
		out.WithStyle(style)
	}
	return out
}

func textProps(t layout.Text) props.Text {
	p := props.Text{
		Top:   t.Top,
		Left:  textInset,
		Right: textInset,
		Size:  t.Size,
		Align: alignment(t.Align),
		Color: rgb(t.Color),
		// The layout estimates a 1.25 line spacing; the painter advances by
		// the font height plus this padding.
		VerticalPadding: t.Size * ptToMM * 0.25,
	}
	if t.Bold {
		p.Style = fontstyle.Bold
	}
	return p
}

func alignment(a layout.Align) align.Type {
	switch a {
	case layout.AlignCenter:
		return align.Center
	case layout.AlignRight:
		return align.Right
	default:
		return align.Left
	}
}

func rgb(c *company.Color) *props.Color {
	if c == nil {
		return nil
	}
	return &props.Color{Red: c.Red, Green: c.Green, Blue: c.Blue}
}
