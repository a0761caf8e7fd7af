package layout

import "fmt"

type paginator struct {
	avail float64
	pages []Page
	cur   Page
}

func (p *paginator) fits(h float64) bool {
	return p.cur.Used+h <= p.avail
}

func (p *paginator) empty() bool {
	return len(p.cur.Rows) == 0
}

func (p *paginator) add(r Row) {
	if r.Height > p.avail {
		r.Height = p.avail
	}
	p.cur.Rows = append(p.cur.Rows, r)
	p.cur.Used += r.Height
}

func (p *paginator) breakPage() {
	if p.empty() {
		return
	}
	p.pages = append(p.pages, p.cur)
	p.cur = Page{Number: len(p.pages) + 1}
}

// Paginate flows the painted blocks onto pages. Breaks happen only between
// rows; table headers repeat on continuation pages; keep-together blocks move
// whole when they do not fit the remaining space. Multi-page results get a
// "Page i of n" footer on every page.
func Paginate(doc *Painted, g Geometry) []Page {
	p := &paginator{avail: g.BodyHeight(), cur: Page{Number: 1}}

	for _, b := range doc.Blocks {
		if b.KeepTogether && !p.fits(b.Height()) && b.Height() <= p.avail {
			p.breakPage()
		}

		headerHeight := 0.0
		for _, h := range b.Header {
			headerHeight += h.Height
		}

		for i, row := range b.Rows {
			switch {
			case i == 0 && len(b.Header) > 0:
				// Never leave a header orphaned at the bottom of a page.
				if !p.fits(headerHeight + row.Height) {
					p.breakPage()
				}
				for _, h := range b.Header {
					p.add(h)
				}
			case !p.fits(row.Height):
				p.breakPage()
				for _, h := range b.Header {
					p.add(h)
				}
			}
			p.add(row)
		}

		if b.Gap > 0 && !p.empty() && p.fits(b.Gap) {
			p.add(Row{Height: b.Gap})
		}
	}
	if !p.empty() || len(p.pages) == 0 {
		p.pages = append(p.pages, p.cur)
	}

	total := len(p.pages)
	if total > 1 {
		for i := range p.pages {
			p.pages[i].Footer = fmt.Sprintf("Page %d of %d · %d items", i+1, total, doc.ItemCount)
		}
	}
	return p.pages
}
