package document

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// SectionTotals are the per-table figures printed under the Services and Parts tables.
type SectionTotals struct {
	Count   int
	Rates   SectionRates
	Taxable decimal.Decimal
	CGST    decimal.Decimal
	SGST    decimal.Decimal
	IGST    decimal.Decimal
}

// Tax is the sum of the three components.
func (s SectionTotals) Tax() decimal.Decimal {
	return s.CGST.Add(s.SGST).Add(s.IGST)
}

// Total is taxable plus tax.
func (s SectionTotals) Total() decimal.Decimal {
	return s.Taxable.Add(s.Tax())
}

// Totals is the output of the calculator. All figures are rounded half-up to
// two decimals, and GrandTotal is derived from the rounded figures so the
// identity Taxable+CGST+SGST+IGST-Discount+RoundOff holds exactly.
type Totals struct {
	Services   SectionTotals
	Parts      SectionTotals
	ItemCount  int
	Taxable    decimal.Decimal
	CGST       decimal.Decimal
	SGST       decimal.Decimal
	IGST       decimal.Decimal
	Discount   decimal.Decimal
	RoundOff   decimal.Decimal
	GrandTotal decimal.Decimal
}

// TotalTax returns CGST+SGST+IGST.
func (t Totals) TotalTax() decimal.Decimal {
	return t.CGST.Add(t.SGST).Add(t.IGST)
}

// IntraState reports whether any CGST/SGST was charged.
func (t Totals) IntraState() bool {
	return !t.CGST.IsZero() || !t.SGST.IsZero()
}

// LineAmount is the taxable amount of an item. An explicit total supplied by
// the source wins over quantity times rate.
func LineAmount(it LineItem) decimal.Decimal {
	if it.AmountOverridden {
		return it.Amount
	}
	return it.Quantity.Mul(it.UnitRate)
}

// LineTax is the unrounded tax of a single item at the given section rates.
func LineTax(it LineItem, rates SectionRates) decimal.Decimal {
	return LineAmount(it).Mul(rates.Effective()).Div(hundred)
}

// ComputeTotals applies section-rated GST to the document. Services use the
// document rates, Parts use the Parts override when present, converted to the
// document regime. CGST/SGST and IGST never coexist in one document.
func ComputeTotals(doc Document) Totals {
	services, parts := Partition(doc.Items)

	svc := sectionTotals(services, doc.Tax.RatesFor(CategoryService))
	prt := sectionTotals(parts, doc.Tax.RatesFor(CategoryPart))

	t := Totals{
		ItemCount: len(doc.Items),
		Taxable:   round(svc.Taxable.Add(prt.Taxable)),
		CGST:      round(svc.CGST.Add(prt.CGST)),
		SGST:      round(svc.SGST.Add(prt.SGST)),
		IGST:      round(svc.IGST.Add(prt.IGST)),
		Discount:  round(doc.Adjustments.Discount),
		RoundOff:  round(doc.Adjustments.RoundOff),
	}
	t.GrandTotal = t.Taxable.Add(t.TotalTax()).Sub(t.Discount).Add(t.RoundOff)

	t.Services = roundSection(svc)
	t.Parts = roundSection(prt)
	return t
}

func sectionTotals(items []LineItem, rates SectionRates) SectionTotals {
	s := SectionTotals{Count: len(items), Rates: rates}
	for _, it := range items {
		s.Taxable = s.Taxable.Add(LineAmount(it))
	}
	if rates.IntraState() {
		s.CGST = s.Taxable.Mul(rates.CGST).Div(hundred)
		s.SGST = s.Taxable.Mul(rates.SGST).Div(hundred)
	} else {
		s.IGST = s.Taxable.Mul(rates.IGST).Div(hundred)
	}
	return s
}

func roundSection(s SectionTotals) SectionTotals {
	s.Taxable = round(s.Taxable)
	s.CGST = round(s.CGST)
	s.SGST = round(s.SGST)
	s.IGST = round(s.IGST)
	return s
}

// round is half away from zero, which is half-up for the positive amounts printed.
func round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Money formats a decimal with exactly two places.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
