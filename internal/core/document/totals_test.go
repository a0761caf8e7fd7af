package document

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func item(cat Category, qty, rate string) LineItem {
	return LineItem{
		Category:    cat,
		Description: "item",
		Quantity:    dec(qty),
		UnitRate:    dec(rate),
		Amount:      dec(qty).Mul(dec(rate)),
	}
}

func TestComputeTotals_DualRateScenario(t *testing.T) {
	doc := Document{
		Kind: KindQuotation,
		Items: []LineItem{
			item(CategoryService, "2", "75"),
			item(CategoryService, "1", "50"),
			item(CategoryService, "1", "40"),
			item(CategoryPart, "1", "34.00"),
			item(CategoryPart, "1", "35.10"),
			item(CategoryPart, "1", "850.00"),
		},
		Tax: TaxConfig{
			Enabled:      true,
			SectionRates: SectionRates{CGST: dec("4.75"), SGST: dec("4.75")},
			Parts:        &SectionRates{CGST: dec("3.25"), SGST: dec("3.25")},
		},
	}

	totals := ComputeTotals(doc)

	if !totals.Services.Taxable.Equal(dec("240")) || !totals.Parts.Taxable.Equal(dec("919.10")) {
		t.Errorf("expected section taxables 240 / 919.10, got %s / %s", totals.Services.Taxable, totals.Parts.Taxable)
	}
	if totals.Services.Count != 3 || totals.Parts.Count != 3 {
		t.Errorf("expected 3 items per section, got %d / %d", totals.Services.Count, totals.Parts.Count)
	}
	if got := totals.Services.Tax(); !got.Equal(dec("22.80")) {
		t.Errorf("expected services tax 22.80, got %s", got)
	}
	if got := totals.Parts.Tax(); !got.Equal(dec("59.74")) {
		t.Errorf("expected parts tax 59.74, got %s", got)
	}
	if !totals.GrandTotal.Equal(dec("1241.64")) {
		t.Errorf("expected grand total 1241.64, got %s", totals.GrandTotal)
	}
	if !totals.IGST.IsZero() {
		t.Errorf("expected no IGST on intra-state document, got %s", totals.IGST)
	}
}

func TestComputeTotals_OneRegimePerDocument(t *testing.T) {
	items := []LineItem{item(CategoryService, "1", "1000"), item(CategoryPart, "1", "1000")}

	tests := []struct {
		name     string
		tax      TaxConfig
		cgst     string
		igst     string
		partsTax string
	}{
		{
			name:     "parts IGST on an intra-state document",
			tax:      TaxConfig{Enabled: true, SectionRates: SectionRates{CGST: dec("9"), SGST: dec("9")}, Parts: &SectionRates{IGST: dec("18")}},
			cgst:     "180",
			igst:     "0",
			partsTax: "180",
		},
		{
			name:     "parts CGST/SGST on an inter-state document",
			tax:      TaxConfig{Enabled: true, SectionRates: SectionRates{IGST: dec("12")}, Parts: &SectionRates{CGST: dec("3"), SGST: dec("3")}},
			cgst:     "0",
			igst:     "180",
			partsTax: "60",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals := ComputeTotals(Document{Items: items, Tax: tt.tax})

			if !totals.CGST.Equal(dec(tt.cgst)) || !totals.SGST.Equal(dec(tt.cgst)) {
				t.Errorf("expected CGST = SGST = %s, got %s / %s", tt.cgst, totals.CGST, totals.SGST)
			}
			if !totals.IGST.Equal(dec(tt.igst)) {
				t.Errorf("expected IGST %s, got %s", tt.igst, totals.IGST)
			}
			if !totals.Parts.Tax().Equal(dec(tt.partsTax)) {
				t.Errorf("expected parts tax %s, got %s", tt.partsTax, totals.Parts.Tax())
			}
			if totals.IntraState() && !totals.IGST.IsZero() {
				t.Error("CGST/SGST and IGST charged together")
			}
		})
	}
}

func TestComputeTotals_Identity(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
	}{
		{
			name: "intra state with adjustments",
			doc: Document{
				Items: []LineItem{item(CategoryService, "3", "333.33"), item(CategoryPart, "2.5", "19.99")},
				Tax:   TaxConfig{Enabled: true, SectionRates: SectionRates{CGST: dec("9"), SGST: dec("9")}},
				Adjustments: Adjustments{
					Discount: dec("50"),
					RoundOff: dec("-0.37"),
				},
			},
		},
		{
			name: "inter state",
			doc: Document{
				Items: []LineItem{item(CategoryService, "1", "1000"), item(CategoryPart, "7", "13.13")},
				Tax:   TaxConfig{Enabled: true, SectionRates: SectionRates{IGST: dec("18")}},
			},
		},
		{
			name: "tax disabled",
			doc: Document{
				Items: []LineItem{item(CategoryService, "1", "99.999")},
				Tax:   TaxConfig{Enabled: false, SectionRates: SectionRates{CGST: dec("9"), SGST: dec("9")}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals := ComputeTotals(tt.doc)
			want := totals.Taxable.Add(totals.CGST).Add(totals.SGST).Add(totals.IGST).
				Sub(totals.Discount).Add(totals.RoundOff)
			if diff := totals.GrandTotal.Sub(want).Abs(); diff.GreaterThan(dec("0.01")) {
				t.Errorf("identity broken: grand %s, components %s", totals.GrandTotal, want)
			}
			if totals.IntraState() && !totals.IGST.IsZero() {
				t.Error("CGST/SGST and IGST must not coexist")
			}
		})
	}
}

func TestComputeTotals_TaxDisabled(t *testing.T) {
	doc := Document{
		Items: []LineItem{item(CategoryService, "2", "100")},
		Tax:   TaxConfig{Enabled: false, SectionRates: SectionRates{IGST: dec("18")}},
	}

	totals := ComputeTotals(doc)
	if !totals.TotalTax().IsZero() {
		t.Errorf("expected zero tax, got %s", totals.TotalTax())
	}
	if !totals.GrandTotal.Equal(dec("200")) {
		t.Errorf("expected 200, got %s", totals.GrandTotal)
	}
}

func TestComputeTotals_ZeroItems(t *testing.T) {
	totals := ComputeTotals(Document{Tax: TaxConfig{Enabled: true, SectionRates: SectionRates{CGST: dec("9"), SGST: dec("9")}}})

	if !totals.GrandTotal.IsZero() {
		t.Errorf("expected zero grand total, got %s", totals.GrandTotal)
	}
	if totals.ItemCount != 0 {
		t.Errorf("expected zero items, got %d", totals.ItemCount)
	}
	if got := AmountInWords(totals.GrandTotal); got != "Zero" {
		t.Errorf("expected Zero, got %q", got)
	}
}

func TestLineAmount_OverrideWins(t *testing.T) {
	it := item(CategoryService, "2", "100")
	it.Amount = dec("150")
	it.AmountOverridden = true

	if got := LineAmount(it); !got.Equal(dec("150")) {
		t.Errorf("expected explicit total 150, got %s", got)
	}
}

func TestPartition_PreservesOrder(t *testing.T) {
	items := []LineItem{
		{Category: CategoryPart, Description: "p1"},
		{Category: CategoryService, Description: "s1"},
		{Category: CategoryPart, Description: "p2"},
		{Category: CategoryService, Description: "s2"},
	}

	services, parts := Partition(items)
	if len(services)+len(parts) != len(items) {
		t.Fatalf("partition lost items: %d + %d != %d", len(services), len(parts), len(items))
	}
	if services[0].Description != "s1" || services[1].Description != "s2" {
		t.Errorf("services out of order: %+v", services)
	}
	if parts[0].Description != "p1" || parts[1].Description != "p2" {
		t.Errorf("parts out of order: %+v", parts)
	}
}

func TestFileName(t *testing.T) {
	doc := Document{Kind: KindInvoice, Number: "INV/2024 07"}
	doc.IssueDate = mustDate(t, "2024-07-15")

	if got := FileName(doc); got != "invoice_INV-2024-07_2024-07-15.pdf" {
		t.Errorf("unexpected file name %q", got)
	}
}
