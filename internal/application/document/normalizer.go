package document

import (
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"

	"3tcapital/ms_service_documents/internal/core/company"
	"3tcapital/ms_service_documents/internal/core/document"
)

// Normalizer turns loosely typed backend records into canonical documents.
// Resolution order for every field is nested object, then snake_case, then
// camelCase. Normalize never fails: missing or malformed input is defaulted.
type Normalizer struct {
	log             *slog.Logger
	profile         company.Profile
	keywordFallback bool
	policy          *bluemonday.Policy
	now             func() time.Time
}

// NormalizerOption customizes a Normalizer.
type NormalizerOption func(*Normalizer)

// WithKeywordFallback toggles description based categorization for items
// without an explicit category.
func WithKeywordFallback(enabled bool) NormalizerOption {
	return func(n *Normalizer) { n.keywordFallback = enabled }
}

// WithClock replaces time.Now, used for default dates.
func WithClock(now func() time.Time) NormalizerOption {
	return func(n *Normalizer) { n.now = now }
}

func NewNormalizer(profile company.Profile, log *slog.Logger, opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{
		log:             log,
		profile:         profile,
		keywordFallback: true,
		policy:          bluemonday.StrictPolicy(),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize builds a canonical document of the given kind.
func (n *Normalizer) Normalize(raw map[string]any, kind document.Kind) document.Document {
	rec := unwrap(raw)

	doc := document.Document{
		Kind:   kind,
		ID:     toString(first(rec, "id", "_id", "uuid")),
		Number: n.text(rec, numberPaths(kind)...),
		Party: document.Party{
			Name:    n.text(rec, "client.name", "customer.name", "client_name", "customer_name", "clientName", "customerName"),
			Phone:   n.text(rec, "client.phone", "client.mobile", "customer.phone", "client_phone", "customer_phone", "client_mobile", "clientPhone", "customerPhone"),
			Address: n.text(rec, "client.address", "customer.address", "client_address", "customer_address", "clientAddress", "customerAddress"),
			Email:   n.optional(rec, "client.email", "customer.email", "client_email", "customer_email", "clientEmail", "customerEmail"),
			TaxID:   n.optional(rec, "client.gstin", "customer.gstin", "client.tax_id", "client_gstin", "customer_gstin", "clientGstin", "customerGstin"),
		},
		Asset: document.Asset{
			RegistrationNumber: n.text(rec, "vehicle.registration_number", "vehicle.reg_no", "vehicle.number", "vehicle_number", "registration_number", "vehicle_reg_no", "vehicleNumber", "registrationNumber"),
			Make:               n.text(rec, "vehicle.make", "vehicle.brand", "vehicle_make", "vehicleMake", "make"),
			Model:              n.text(rec, "vehicle.model", "vehicle_model", "vehicleModel", "model"),
			Year:               n.text(rec, "vehicle.year", "vehicle_year", "vehicleYear", "year"),
			FuelType:           n.optional(rec, "vehicle.fuel_type", "vehicle.fuel", "fuel_type", "fuelType"),
			VIN:                n.optional(rec, "vehicle.vin", "vehicle.chassis_number", "vin", "chassis_number", "chassisNumber"),
			Odometer:           n.optional(rec, "vehicle.odometer", "odometer", "odometer_reading", "odometerReading", "km_reading"),
		},
		Notes: n.optional(rec, "notes", "remarks", "comments"),
		Flags: document.Flags{
			InsuranceClaim:     toBool(first(rec, "flags.insurance_claim", "insurance_claim", "is_insurance", "insuranceClaim", "isInsurance")),
			WarrantyApplicable: toBool(first(rec, "flags.warranty", "warranty_applicable", "warranty", "warrantyApplicable")),
		},
		Adjustments: document.Adjustments{
			Discount: n.amount(rec, "adjustments.discount", "discount", "discount_amount", "discountAmount"),
			RoundOff: n.amount(rec, "adjustments.round_off", "round_off", "rounding", "roundOff"),
		},
	}

	if doc.Number == document.NotAvailable && doc.ID != "" {
		doc.Number = doc.ID
	}

	doc.IssueDate = n.date(rec, n.today(), "date", "issue_date", "quotation_date", "invoice_date", "created_at", "issueDate", "quotationDate", "invoiceDate", "createdAt")
	validity := n.profile.ValidityDays
	if validity <= 0 {
		validity = 15
	}
	doc.DueDate = n.date(rec, doc.IssueDate.AddDate(0, 0, validity), "valid_until", "due_date", "validity_date", "expiry_date", "validUntil", "dueDate", "expiryDate")

	doc.Items = n.items(rec, doc.Number)
	doc.Tax = n.tax(rec)

	return doc
}

func numberPaths(kind document.Kind) []string {
	if kind == document.KindInvoice {
		return []string{"invoice_number", "invoice_no", "number", "document_number", "invoiceNumber", "invoiceNo", "documentNumber"}
	}
	return []string{"quotation_number", "quotation_no", "quote_number", "number", "document_number", "quotationNumber", "quotationNo", "documentNumber"}
}

// unwrap strips the {"data": {...}} envelope some endpoints use.
func unwrap(raw map[string]any) map[string]any {
	if raw == nil {
		return map[string]any{}
	}
	if inner, ok := raw["data"].(map[string]any); ok {
		return inner
	}
	return raw
}

func first(m map[string]any, paths ...string) any {
	v, _ := lookup(m, paths...)
	return v
}

func (n *Normalizer) today() time.Time {
	return dateOnly(n.now())
}

// text resolves a display string, defaulting to N/A.
func (n *Normalizer) text(m map[string]any, paths ...string) string {
	if s := n.optional(m, paths...); s != "" {
		return s
	}
	return document.NotAvailable
}

// optional resolves a display string that may stay empty.
func (n *Normalizer) optional(m map[string]any, paths ...string) string {
	v, ok := lookup(m, paths...)
	if !ok {
		return ""
	}
	return n.clean(toString(v))
}

func (n *Normalizer) clean(s string) string {
	if s == "" {
		return ""
	}
	s = html.UnescapeString(n.policy.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}

func (n *Normalizer) amount(m map[string]any, paths ...string) decimal.Decimal {
	v, ok := lookup(m, paths...)
	if !ok {
		return decimal.Zero
	}
	d, ok := toDecimal(v)
	if !ok {
		n.log.Warn("unparsable amount defaulted to zero", "field", paths[0], "value", toString(v))
		return decimal.Zero
	}
	return d
}

func (n *Normalizer) date(m map[string]any, fallback time.Time, paths ...string) time.Time {
	v, ok := lookup(m, paths...)
	if !ok {
		return fallback
	}
	d, ok := toDate(v)
	if !ok {
		n.log.Warn("unparsable date defaulted", "field", paths[0], "value", toString(v))
		return fallback
	}
	return d
}

func (n *Normalizer) items(rec map[string]any, number string) []document.LineItem {
	var out []document.LineItem

	if list, ok := lookupList(rec, "items", "line_items", "lineItems"); ok {
		for i, raw := range list {
			out = append(out, n.item(raw, "", number, i))
		}
	}

	// Some records arrive pre-split into two arrays.
	if services, ok := lookupList(rec, "services", "service_items", "serviceItems"); ok {
		for i, raw := range services {
			out = append(out, n.item(raw, document.CategoryService, number, i))
		}
	}
	if parts, ok := lookupList(rec, "parts", "part_items", "partItems"); ok {
		for i, raw := range parts {
			out = append(out, n.item(raw, document.CategoryPart, number, i))
		}
	}

	return out
}

func (n *Normalizer) item(raw any, forced document.Category, number string, index int) document.LineItem {
	m, ok := raw.(map[string]any)
	if !ok {
		n.log.Warn("line item is not an object", "document_number", number, "index", index)
		m = map[string]any{}
	}

	it := document.LineItem{
		Description: n.text(m, "description", "name", "service_name", "part_name", "item_name", "title", "serviceName", "partName", "itemName"),
		Code:        n.optional(m, "hsn_sac", "hsn", "sac", "hsn_code", "sac_code", "code", "hsnSac", "hsnCode", "sacCode"),
		Quantity:    decimal.NewFromInt(1),
	}

	it.Category, it.CategorySource = n.category(m, forced, it.Description)

	if it.Code == "" {
		if it.Category == document.CategoryPart {
			it.Code = n.profile.PartCode
		} else {
			it.Code = n.profile.ServiceCode
		}
	}

	qtyRaw, hasQty := lookup(m, "quantity", "qty")
	rateRaw, hasRate := lookup(m, "rate", "unit_price", "unit_rate", "price", "unitPrice", "unitRate")

	if hasRate {
		if rate, ok := toDecimal(rateRaw); ok {
			it.UnitRate = rate
		} else {
			n.log.Warn("unparsable line rate defaulted to zero", "document_number", number, "index", index, "value", toString(rateRaw))
		}
	}
	if hasQty {
		// Quantities must be positive; anything else renders as 1 x 0.
		if qty, ok := toDecimal(qtyRaw); ok && qty.IsPositive() {
			it.Quantity = qty
		} else {
			n.log.Warn("invalid line quantity, rendering as 1 x 0",
				"document_number", number,
				"index", index,
				"value", toString(qtyRaw),
			)
			it.Quantity = decimal.NewFromInt(1)
			it.UnitRate = decimal.Zero
		}
	}

	derived := it.Quantity.Mul(it.UnitRate)
	it.Amount = derived

	if totalRaw, ok := lookup(m, "amount", "total", "line_total", "lineTotal"); ok {
		if explicit, ok := toDecimal(totalRaw); ok && !explicit.Equal(derived) {
			n.log.Warn("explicit line total differs from quantity x rate, keeping explicit",
				"document_number", number,
				"index", index,
				"explicit", explicit.String(),
				"derived", derived.String(),
			)
			it.Amount = explicit
			it.AmountOverridden = true
		}
	}

	return it
}

func (n *Normalizer) category(m map[string]any, forced document.Category, description string) (document.Category, document.CategorySource) {
	if forced != "" {
		return forced, document.CategoryExplicit
	}
	if v, ok := lookup(m, "category", "type", "item_type", "itemType"); ok {
		if c, known := document.ParseCategory(toString(v)); known {
			return c, document.CategoryExplicit
		}
	}
	if n.keywordFallback {
		return document.ClassifyByKeyword(description), document.CategoryKeyword
	}
	return document.CategoryService, document.CategoryDefault
}

func (n *Normalizer) tax(rec map[string]any) document.TaxConfig {
	cfg := document.TaxConfig{
		Rate:         n.amount(rec, "tax.rate", "tax.gst_rate", "tax_rate", "gst_rate", "taxRate", "gstRate"),
		SectionRates: n.rates(rec, "tax."),
	}
	flagged := toBool(first(rec, "tax.inter_state", "tax.igst", "inter_state", "is_igst", "interState", "isIgst"))
	cfg.SectionRates = n.settleRegime(cfg.SectionRates, cfg.Rate, flagged)

	var parts *document.SectionRates
	if partsMap, ok := lookupMap(rec, "tax.parts", "parts_tax", "partsTax"); ok {
		rate := n.amount(partsMap, "rate", "gst_rate", "gstRate")
		settled := n.settleRegime(n.rates(partsMap, ""), rate, flagged)
		parts = &settled
	}

	// One regime per document: the Parts block follows the document rates.
	inter := interState(flagged, cfg.SectionRates, parts)
	cfg.SectionRates = n.conform(cfg.SectionRates, inter, "document")
	if parts != nil {
		conformed := n.conform(*parts, inter, "parts")
		cfg.Parts = &conformed
	}

	if v, ok := lookup(rec, "tax.enabled", "tax_enabled", "gst_enabled", "include_tax", "taxEnabled", "gstEnabled", "includeTax"); ok {
		cfg.Enabled = toBool(v)
	} else {
		cfg.Enabled = cfg.SectionRates.Effective().IsPositive() || (cfg.Parts != nil && cfg.Parts.Effective().IsPositive())
	}

	return cfg
}

func (n *Normalizer) rates(m map[string]any, nested string) document.SectionRates {
	pick := func(snake, camel string) decimal.Decimal {
		paths := []string{snake + "_rate", snake, camel + "Rate"}
		if nested != "" {
			paths = []string{nested + snake + "_rate", nested + snake, snake + "_rate", camel + "Rate"}
		}
		return n.amount(m, paths...)
	}
	return document.SectionRates{
		CGST: pick("cgst", "cgst"),
		SGST: pick("sgst", "sgst"),
		IGST: pick("igst", "igst"),
	}
}

// interState decides the document regime. The explicit flag wins, then the
// document rates, then the Parts rates when the document carries none.
func interState(flagged bool, doc document.SectionRates, parts *document.SectionRates) bool {
	switch {
	case flagged:
		return true
	case doc.IntraState():
		return false
	case doc.IGST.IsPositive():
		return true
	case parts != nil:
		return !parts.IntraState() && parts.IGST.IsPositive()
	}
	return false
}

// conform converts a rate set into the document regime, keeping the combined
// percentage.
func (n *Normalizer) conform(r document.SectionRates, inter bool, section string) document.SectionRates {
	switch {
	case inter && r.IntraState():
		n.log.Warn("CGST/SGST rates converted to IGST to match the document regime", "section", section)
		return document.SectionRates{IGST: r.CGST.Add(r.SGST)}
	case !inter && r.IGST.IsPositive():
		n.log.Warn("IGST rate split into CGST/SGST to match the document regime", "section", section)
		half := r.IGST.Div(decimal.NewFromInt(2))
		return document.SectionRates{CGST: half, SGST: half}
	}
	return r
}

// settleRegime splits a lone combined rate and enforces that CGST/SGST and
// IGST never coexist.
func (n *Normalizer) settleRegime(r document.SectionRates, combined decimal.Decimal, inter bool) document.SectionRates {
	if r.CGST.IsZero() && r.SGST.IsZero() && r.IGST.IsZero() && combined.IsPositive() {
		if inter {
			return document.SectionRates{IGST: combined}
		}
		half := combined.Div(decimal.NewFromInt(2))
		return document.SectionRates{CGST: half, SGST: half}
	}
	if r.IntraState() && r.IGST.IsPositive() {
		n.log.Warn("record carries both CGST/SGST and IGST, keeping one regime", "inter_state", inter)
		if inter {
			return document.SectionRates{IGST: r.IGST}
		}
		r.IGST = decimal.Zero
	}
	return r
}
