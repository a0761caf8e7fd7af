package layout

import (
	"strings"
	"testing"
)

func isItemRow(r Row) bool {
	if len(r.Cells) != len(taxedColumns) || len(r.Cells[0].Texts) == 0 {
		return false
	}
	return r.Cells[0].Texts[0].Value != "#"
}

func TestPaginate_SinglePageHasNoFooter(t *testing.T) {
	p := render(testDocument(2, 2), Assets{})

	pages := Paginate(p, A4())
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	if pages[0].Footer != "" {
		t.Errorf("expected no footer on a single page document, got %q", pages[0].Footer)
	}
}

func TestPaginate_LongDocumentFlows(t *testing.T) {
	doc := testDocument(40, 35)
	p := render(doc, Assets{})
	g := A4()

	pages := Paginate(p, g)
	if len(pages) < 2 {
		t.Fatalf("expected several pages, got %d", len(pages))
	}

	items := 0
	for i, page := range pages {
		if page.Used > g.BodyHeight()+0.001 {
			t.Errorf("page %d overflows: used %.2f of %.2f", i+1, page.Used, g.BodyHeight())
		}
		if !strings.HasPrefix(page.Footer, "Page ") || !strings.HasSuffix(page.Footer, "· 75 items") {
			t.Errorf("page %d has unexpected footer %q", i+1, page.Footer)
		}
		for _, r := range page.Rows {
			if isItemRow(r) {
				items++
			}
		}
	}
	if items != len(doc.Items) {
		t.Errorf("expected %d item rows across pages, got %d", len(doc.Items), items)
	}
}

func TestPaginate_RepeatsTableHeader(t *testing.T) {
	p := render(testDocument(60, 0), Assets{})
	pages := Paginate(p, A4())
	if len(pages) < 2 {
		t.Fatalf("expected the services table to continue on a second page, got %d pages", len(pages))
	}

	second := pages[1]
	if len(second.Rows) < 2 {
		t.Fatal("second page is unexpectedly short")
	}
	if v := second.Rows[0].Cells[0].Texts[0].Value; v != "SERVICES" {
		t.Errorf("expected continuation page to start with the table title, got %q", v)
	}
	if v := second.Rows[1].Cells[0].Texts[0].Value; v != "#" {
		t.Errorf("expected repeated column header, got %q", v)
	}
}

func TestPaginate_KeepsTotalsTogether(t *testing.T) {
	g := A4()
	for n := 10; n < 40; n++ {
		p := render(testDocument(n, 0), Assets{})
		totals, _ := blockByName(p, "totals")
		first := totals.Rows[0]
		last := totals.Rows[len(totals.Rows)-1]

		for _, page := range Paginate(p, g) {
			hasFirst, hasLast := false, false
			for _, r := range page.Rows {
				if sameRow(r, first) {
					hasFirst = true
				}
				if sameRow(r, last) {
					hasLast = true
				}
			}
			if hasFirst != hasLast {
				t.Fatalf("totals panel split across pages for %d items", n)
			}
		}
	}
}

func sameRow(a, b Row) bool {
	return a.Height == b.Height && len(a.Cells) == len(b.Cells) && allText([]Row{a}) == allText([]Row{b})
}
