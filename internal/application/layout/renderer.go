package layout

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"3tcapital/ms_service_documents/internal/core/company"
	"3tcapital/ms_service_documents/internal/core/document"
)

var (
	white    = company.Color{Red: 255, Green: 255, Blue: 255}
	ink      = company.Color{Red: 31, Green: 41, Blue: 55}
	muted    = company.Color{Red: 107, Green: 114, Blue: 128}
	panel    = company.Color{Red: 243, Green: 244, Blue: 246}
	ruleGray = company.Color{Red: 209, Green: 213, Blue: 219}
	amber    = company.Color{Red: 245, Green: 158, Blue: 11}
	emerald  = company.Color{Red: 5, Green: 150, Blue: 105}
)

const (
	blockGap  = 3.0
	dateStyle = "02 Jan 2006"
)

// Assets are the optional images embedded in a document.
type Assets struct {
	Logo *document.Image
	QR   *document.Image
}

// Renderer lays a document out as an ordered list of blocks.
type Renderer struct {
	profile  company.Profile
	geometry Geometry
}

func NewRenderer(profile company.Profile, geometry Geometry) *Renderer {
	return &Renderer{profile: profile, geometry: geometry}
}

// Geometry exposes the page geometry used to measure rows.
func (r *Renderer) Geometry() Geometry {
	return r.geometry
}

// Render produces the painted form of a document. Blocks always appear in
// the same order; conditional blocks are skipped, never reordered.
func (r *Renderer) Render(doc document.Document, totals document.Totals, assets Assets) *Painted {
	theme := r.theme(doc.Kind)

	p := &Painted{
		Kind:      doc.Kind,
		Title:     fmt.Sprintf("%s %s", doc.Kind.Title(), doc.Number),
		Number:    doc.Number,
		Subject:   fmt.Sprintf("%s for %s", doc.Kind.Title(), doc.Party.Name),
		Author:    r.profile.Name,
		ItemCount: totals.ItemCount,
	}

	p.Blocks = append(p.Blocks,
		r.headerBand(doc, theme, assets.Logo),
		r.metadata(doc),
		r.parties(doc, theme),
	)
	p.Blocks = append(p.Blocks, r.tables(doc, totals, theme)...)
	p.Blocks = append(p.Blocks, r.totalsPanel(doc, totals, theme))
	if doc.Notes != "" {
		p.Blocks = append(p.Blocks, r.notes(doc.Notes, theme))
	}
	p.Blocks = append(p.Blocks, r.terms(doc, theme))
	if badges, ok := r.badges(doc.Flags); ok {
		p.Blocks = append(p.Blocks, badges)
	}
	p.Blocks = append(p.Blocks,
		r.signatures(assets.QR),
		r.footerBand(theme),
	)

	return p
}

func (r *Renderer) theme(kind document.Kind) company.KindTheme {
	if kind == document.KindInvoice {
		return r.profile.Invoice
	}
	return r.profile.Quotation
}

func (r *Renderer) headerBand(doc document.Document, theme company.KindTheme, logo *document.Image) Block {
	g := r.geometry
	primary := theme.Primary

	contact := []string{strings.Join(r.profile.Address, ", ")}
	if r.profile.Phone != "" || r.profile.Email != "" {
		contact = append(contact, strings.Trim(fmt.Sprintf("%s | %s", r.profile.Phone, r.profile.Email), " |"))
	}
	if r.profile.GSTIN != "" {
		contact = append(contact, "GSTIN: "+r.profile.GSTIN)
	}

	nameSpan := 16
	var cells []Cell
	if logo != nil {
		nameSpan = 12
		cells = append(cells, Cell{Span: 4, Image: logo})
	}

	texts := []Text{
		{Value: r.profile.Name, Size: 16, Bold: true, Color: &white},
		{Value: r.profile.Tagline, Size: 8, Color: &white},
	}
	for _, line := range contact {
		texts = append(texts, Text{Value: line, Size: 7.5, Color: &white})
	}
	cells = append(cells, Cell{Span: nameSpan, Texts: stack(g, nameSpan, 2, texts...)})

	cells = append(cells, Cell{Span: 8, Texts: stack(g, 8, 3,
		Text{Value: doc.Kind.Title(), Size: 15, Bold: true, Align: AlignRight, Color: &white},
		Text{Value: "# " + doc.Number, Size: 9, Align: AlignRight, Color: &white},
	)})

	row := fitRow(g, Row{Cells: cells, Fill: &primary}, 26)
	return Block{Name: "header", Rows: []Row{row}, KeepTogether: true, Gap: blockGap}
}

func (r *Renderer) metadata(doc document.Document) Block {
	g := r.geometry
	dueLabel := "Valid Until"
	if doc.Kind == document.KindInvoice {
		dueLabel = "Due Date"
	}
	numberLabel := "Quotation No"
	if doc.Kind == document.KindInvoice {
		numberLabel = "Invoice No"
	}

	row := fitRow(g, Row{Cells: []Cell{
		{Span: 12, Texts: stack(g, 12, 1,
			Text{Value: fmt.Sprintf("%s: %s", numberLabel, doc.Number), Size: 10, Bold: true, Color: &ink},
		)},
		{Span: 12, Texts: stack(g, 12, 1,
			Text{Value: "Date: " + doc.IssueDate.Format(dateStyle), Size: 9, Align: AlignRight, Color: &ink},
			Text{Value: fmt.Sprintf("%s: %s", dueLabel, doc.DueDate.Format(dateStyle)), Size: 9, Align: AlignRight, Color: &ink},
		)},
	}}, 10)

	return Block{Name: "metadata", Rows: []Row{row}, KeepTogether: true, Gap: blockGap}
}

func (r *Renderer) parties(doc document.Document, theme company.KindTheme) Block {
	g := r.geometry
	primary := theme.Primary

	heading := Row{Height: 7, Fill: &panel, Cells: []Cell{
		{Span: 12, Texts: []Text{{Value: "CUSTOMER DETAILS", Top: 1.5, Size: 8.5, Bold: true, Color: &primary}}},
		{Span: 12, Texts: []Text{{Value: "VEHICLE DETAILS", Top: 1.5, Size: 8.5, Bold: true, Color: &primary}}},
	}}

	customer := []Text{
		{Value: doc.Party.Name, Size: 10, Bold: true, Color: &ink},
		{Value: "Phone: " + doc.Party.Phone, Size: 8.5, Color: &ink},
		{Value: "Address: " + doc.Party.Address, Size: 8.5, Color: &ink},
	}
	if doc.Party.Email != "" {
		customer = append(customer, Text{Value: "Email: " + doc.Party.Email, Size: 8.5, Color: &ink})
	}
	if doc.Party.TaxID != "" {
		customer = append(customer, Text{Value: "GSTIN: " + doc.Party.TaxID, Size: 8.5, Color: &ink})
	}

	vehicle := []Text{
		{Value: doc.Asset.RegistrationNumber, Size: 10, Bold: true, Color: &ink},
		{Value: "Vehicle: " + doc.Asset.Description(), Size: 8.5, Color: &ink},
	}
	if doc.Asset.FuelType != "" {
		vehicle = append(vehicle, Text{Value: "Fuel: " + doc.Asset.FuelType, Size: 8.5, Color: &ink})
	}
	if doc.Asset.VIN != "" {
		vehicle = append(vehicle, Text{Value: "VIN: " + doc.Asset.VIN, Size: 8.5, Color: &ink})
	}
	if doc.Asset.Odometer != "" {
		vehicle = append(vehicle, Text{Value: "Odometer: " + doc.Asset.Odometer + " km", Size: 8.5, Color: &ink})
	}
	vehicle = append(vehicle, Text{Value: fmt.Sprintf("SAC: %s | HSN: %s", r.profile.ServiceCode, r.profile.PartCode), Size: 8, Color: &muted})

	body := fitRow(g, Row{Cells: []Cell{
		{Span: 12, Texts: stack(g, 12, 1.5, customer...)},
		{Span: 12, Texts: stack(g, 12, 1.5, vehicle...)},
	}}, 12)

	return Block{Name: "parties", Rows: []Row{heading, body}, KeepTogether: true, Gap: blockGap}
}

func (r *Renderer) totalsPanel(doc document.Document, totals document.Totals, theme company.KindTheme) Block {
	g := r.geometry
	primary := theme.Primary

	line := func(label, value string, bold bool) Row {
		return Row{Height: 6, Cells: []Cell{
			{Span: 12},
			{Span: 7, Texts: []Text{{Value: label, Top: 1, Size: 9, Bold: bold, Color: &ink}}},
			{Span: 5, Texts: []Text{{Value: value, Top: 1, Size: 9, Bold: bold, Align: AlignRight, Color: &ink}}},
		}}
	}

	rows := []Row{line("Taxable Amount", r.money(totals.Taxable), false)}
	if doc.Tax.Enabled {
		if totals.IntraState() {
			rows = append(rows,
				line("CGST"+rateLabel(doc.Tax, func(s document.SectionRates) string { return s.CGST.String() }), r.money(totals.CGST), false),
				line("SGST"+rateLabel(doc.Tax, func(s document.SectionRates) string { return s.SGST.String() }), r.money(totals.SGST), false),
			)
		}
		// Every charged component gets its own line so the panel adds up.
		if !totals.IGST.IsZero() {
			rows = append(rows, line("IGST"+rateLabel(doc.Tax, func(s document.SectionRates) string { return s.IGST.String() }), r.money(totals.IGST), false))
		}
	}
	if !totals.Discount.IsZero() {
		rows = append(rows, line("Less: Discount", "- "+r.money(totals.Discount), false))
	}
	if !totals.RoundOff.IsZero() {
		rows = append(rows, line("Round Off", document.Money(totals.RoundOff), false))
	}

	grand := Row{Height: 8, Cells: []Cell{
		{Span: 12},
		{Span: 7, Fill: &primary, Texts: []Text{{Value: "GRAND TOTAL", Top: 1.5, Size: 10.5, Bold: true, Color: &white}}},
		{Span: 5, Fill: &primary, Texts: []Text{{Value: r.money(totals.GrandTotal), Top: 1.5, Size: 10.5, Bold: true, Align: AlignRight, Color: &white}}},
	}}
	rows = append(rows, Row{Height: 1}, grand)

	words := fitRow(g, Row{Cells: []Cell{
		{Span: 24, Texts: stack(g, 24, 1.5,
			Text{Value: "Amount in words: " + document.RupeesInWords(totals.GrandTotal), Size: 8.5, Bold: true, Color: &ink},
		)},
	}}, 7)
	rows = append(rows, words)

	return Block{Name: "totals", Rows: rows, KeepTogether: true, Gap: blockGap}
}

// rateLabel prints " (9.5%)" or, when sections differ, " (S 9.5% / P 6.5%)".
func rateLabel(tax document.TaxConfig, pick func(document.SectionRates) string) string {
	svc := pick(tax.RatesFor(document.CategoryService))
	prt := pick(tax.RatesFor(document.CategoryPart))
	if svc == prt {
		return " @ " + svc + "%"
	}
	return fmt.Sprintf(" (S %s%% / P %s%%)", svc, prt)
}

func (r *Renderer) notes(notes string, theme company.KindTheme) Block {
	g := r.geometry
	primary := theme.Primary
	row := fitRow(g, Row{Cells: []Cell{
		{Span: 24, Texts: stack(g, 24, 1,
			Text{Value: "NOTES", Size: 8.5, Bold: true, Color: &primary},
			Text{Value: notes, Size: 8.5, Color: &ink},
		)},
	}}, 8)
	return Block{Name: "notes", Rows: []Row{row}, KeepTogether: true, Gap: blockGap}
}

func (r *Renderer) terms(doc document.Document, theme company.KindTheme) Block {
	g := r.geometry
	primary := theme.Primary

	texts := []Text{{Value: "TERMS & CONDITIONS", Size: 8.5, Bold: true, Color: &primary}}
	for i, term := range theme.Terms {
		texts = append(texts, Text{Value: fmt.Sprintf("%d. %s", i+1, term), Size: 7.5, Color: &muted})
	}
	if doc.Kind == document.KindQuotation {
		texts = append(texts, Text{
			Value: fmt.Sprintf("This quotation is valid until %s.", doc.DueDate.Format(dateStyle)),
			Size:  7.5, Bold: true, Color: &ink,
		})
	}

	row := fitRow(g, Row{Cells: []Cell{{Span: 24, Texts: stack(g, 24, 1, texts...)}}}, 8)
	return Block{Name: "terms", Rows: []Row{row}, KeepTogether: true, Gap: blockGap}
}

func (r *Renderer) badges(flags document.Flags) (Block, bool) {
	var cells []Cell
	if flags.InsuranceClaim {
		cells = append(cells, Cell{Span: 8, Fill: &amber, Texts: []Text{{Value: "INSURANCE CLAIM", Top: 1.5, Size: 9, Bold: true, Align: AlignCenter, Color: &white}}})
	}
	if flags.WarrantyApplicable {
		cells = append(cells, Cell{Span: 8, Fill: &emerald, Texts: []Text{{Value: "WARRANTY APPLICABLE", Top: 1.5, Size: 9, Bold: true, Align: AlignCenter, Color: &white}}})
	}
	if len(cells) == 0 {
		return Block{}, false
	}
	return Block{Name: "badges", Rows: []Row{{Height: 7, Cells: cells}}, KeepTogether: true, Gap: blockGap}, true
}

func (r *Renderer) signatures(qr *document.Image) Block {
	const height = 30
	label := func(value string, top float64) Text {
		return Text{Value: value, Top: top, Size: 8.5, Bold: true, Align: AlignCenter, Color: &ink}
	}

	qrCell := Cell{Span: 6, Image: qr}
	if qr == nil {
		qrCell = Cell{Span: 6, Border: true, Texts: []Text{
			{Value: "QR unavailable", Top: height/2 - 2, Size: 7.5, Align: AlignCenter, Color: &muted},
		}}
	}

	row := Row{Height: height, Cells: []Cell{
		qrCell,
		{Span: 9, Border: true, Texts: []Text{label("Customer Approval", height-6)}},
		{Span: 9, Border: true, Texts: []Text{
			{Value: "For " + r.profile.Name, Top: 1.5, Size: 7.5, Align: AlignCenter, Color: &muted},
			label("Authorized Signatory", height-6),
		}},
	}}
	return Block{Name: "signatures", Rows: []Row{row}, KeepTogether: true, Gap: blockGap}
}

func (r *Renderer) footerBand(theme company.KindTheme) Block {
	g := r.geometry
	primary := theme.Primary
	b := r.profile.Bank

	texts := []Text{
		{Value: r.profile.Name + " | " + strings.Join(r.profile.Address, ", "), Size: 7.5, Bold: true, Align: AlignCenter, Color: &ink},
	}
	if b.BankName != "" {
		texts = append(texts, Text{
			Value: fmt.Sprintf("Bank: %s | A/c Name: %s | A/c No: %s | IFSC: %s | Branch: %s", b.BankName, b.AccountName, b.AccountNumber, b.IFSC, b.Branch),
			Size:  7, Align: AlignCenter, Color: &ink,
		})
	}
	texts = append(texts, Text{Value: "This is a computer generated document.", Size: 6.5, Align: AlignCenter, Color: &muted})

	rows := []Row{
		{Height: 1, Rule: &primary},
		fitRow(g, Row{Fill: &panel, Cells: []Cell{{Span: 24, Texts: stack(g, 24, 1, texts...)}}}, 10),
	}
	return Block{Name: "footer", Rows: rows, KeepTogether: true}
}

func (r *Renderer) money(d decimal.Decimal) string {
	return r.profile.Currency + " " + d.StringFixed(2)
}
