package document

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind distinguishes the two printable document types.
type Kind string

const (
	KindQuotation Kind = "quotation"
	KindInvoice   Kind = "invoice"
)

// ParseKind accepts singular and plural spellings ("invoice", "invoices").
func ParseKind(raw string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "quotation", "quotations", "quote", "quotes":
		return KindQuotation, nil
	case "invoice", "invoices":
		return KindInvoice, nil
	default:
		return "", ErrInvalidKind
	}
}

// Title is the badge text printed in the header band.
func (k Kind) Title() string {
	if k == KindInvoice {
		return "TAX INVOICE"
	}
	return "QUOTATION"
}

// Collection is the backend path segment for the kind.
func (k Kind) Collection() string {
	if k == KindInvoice {
		return "invoices"
	}
	return "quotations"
}

// Category classifies a line item into the Services or Parts table.
type Category string

const (
	CategoryService Category = "service"
	CategoryPart    Category = "part"
)

// CategorySource records how a category was decided.
type CategorySource string

const (
	CategoryExplicit CategorySource = "explicit"
	CategoryKeyword  CategorySource = "keyword"
	CategoryDefault  CategorySource = "default"
)

// Party is the customer the document is addressed to.
type Party struct {
	Name    string
	Phone   string
	Address string
	Email   string
	TaxID   string
}

// Asset is the serviced vehicle.
type Asset struct {
	RegistrationNumber string
	Make               string
	Model              string
	Year               string
	FuelType           string
	VIN                string
	Odometer           string
}

// Description joins make, model and year, skipping placeholders.
func (a Asset) Description() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{a.Make, a.Model, a.Year} {
		if p != "" && p != NotAvailable {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return NotAvailable
	}
	return strings.Join(parts, " ")
}

// LineItem is one row of the Services or Parts table.
type LineItem struct {
	Category         Category
	CategorySource   CategorySource
	Description      string
	Code             string
	Quantity         decimal.Decimal
	UnitRate         decimal.Decimal
	Amount           decimal.Decimal
	AmountOverridden bool
}

// SectionRates is one GST rate set, in percent.
type SectionRates struct {
	CGST decimal.Decimal
	SGST decimal.Decimal
	IGST decimal.Decimal
}

// IntraState reports whether the CGST/SGST regime applies.
func (r SectionRates) IntraState() bool {
	return r.CGST.IsPositive() || r.SGST.IsPositive()
}

// Effective returns the combined percentage applied to a section, honoring
// the mutual exclusivity of the two regimes.
func (r SectionRates) Effective() decimal.Decimal {
	if r.IntraState() {
		return r.CGST.Add(r.SGST)
	}
	return r.IGST
}

// TaxConfig holds the document level GST switches.
type TaxConfig struct {
	Enabled bool
	// Rate is the combined rate as received, kept for display when no split is given.
	Rate decimal.Decimal
	SectionRates
	// Parts overrides the rates of the Parts section. Nil inherits the document rates.
	Parts *SectionRates
}

// RatesFor resolves the rate set of a section.
func (t TaxConfig) RatesFor(c Category) SectionRates {
	if !t.Enabled {
		return SectionRates{}
	}
	if c == CategoryPart && t.Parts != nil {
		return t.Parts.AlignedTo(t.SectionRates)
	}
	return t.SectionRates
}

// AlignedTo converts r into the regime of base so one document never mixes
// CGST/SGST with IGST. A base without rates imposes nothing. IGST becomes two
// equal halves on an intra-state base, CGST+SGST becomes IGST otherwise.
func (r SectionRates) AlignedTo(base SectionRates) SectionRates {
	switch {
	case base.IntraState() && !r.IntraState() && r.IGST.IsPositive():
		half := r.IGST.Div(decimal.NewFromInt(2))
		return SectionRates{CGST: half, SGST: half}
	case !base.IntraState() && base.IGST.IsPositive() && r.IntraState():
		return SectionRates{IGST: r.CGST.Add(r.SGST)}
	}
	return r
}

// Adjustments are applied after tax.
type Adjustments struct {
	Discount decimal.Decimal
	RoundOff decimal.Decimal
}

// Flags toggle the badges row.
type Flags struct {
	InsuranceClaim     bool
	WarrantyApplicable bool
}

// Document is the canonical, normalized form of a quotation or invoice.
type Document struct {
	Kind        Kind
	ID          string
	Number      string
	IssueDate   time.Time
	DueDate     time.Time
	Party       Party
	Asset       Asset
	Items       []LineItem
	Tax         TaxConfig
	Adjustments Adjustments
	Notes       string
	Flags       Flags
}

// NotAvailable is the placeholder for missing text fields.
const NotAvailable = "N/A"

// Partition splits items by category keeping their relative order.
func Partition(items []LineItem) (services, parts []LineItem) {
	for _, it := range items {
		if it.Category == CategoryPart {
			parts = append(parts, it)
			continue
		}
		services = append(services, it)
	}
	return services, parts
}
