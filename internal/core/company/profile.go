package company

// Color is an RGB triplet as written in the profile file.
type Color struct {
	Red   int `yaml:"r" json:"r"`
	Green int `yaml:"g" json:"g"`
	Blue  int `yaml:"b" json:"b"`
}

// BankDetails are printed in the footer band.
type BankDetails struct {
	AccountName   string `yaml:"account_name"`
	AccountNumber string `yaml:"account_number"`
	BankName      string `yaml:"bank_name"`
	IFSC          string `yaml:"ifsc"`
	Branch        string `yaml:"branch"`
}

// KindTheme holds per-kind branding.
type KindTheme struct {
	Primary Color    `yaml:"primary"`
	Terms   []string `yaml:"terms"`
}

// Profile is the service center identity stamped on every document.
type Profile struct {
	Name         string      `yaml:"name"`
	Tagline      string      `yaml:"tagline"`
	Address      []string    `yaml:"address"`
	Phone        string      `yaml:"phone"`
	Email        string      `yaml:"email"`
	Website      string      `yaml:"website"`
	GSTIN        string      `yaml:"gstin"`
	Currency     string      `yaml:"currency"`
	Bank         BankDetails `yaml:"bank"`
	Quotation    KindTheme   `yaml:"quotation"`
	Invoice      KindTheme   `yaml:"invoice"`
	ServiceCode  string      `yaml:"service_code"`
	PartCode     string      `yaml:"part_code"`
	ValidityDays int         `yaml:"validity_days"`
}

// Default returns the built-in profile used when no file is configured.
func Default() Profile {
	return Profile{
		Name:     "Precision Auto Care",
		Tagline:  "Multi-brand car service center",
		Address:  []string{"Plot 14, Industrial Area Phase 2", "Chandigarh 160002"},
		Phone:    "+91 98765 43210",
		Email:    "service@precisionautocare.in",
		GSTIN:    "04ABCDE1234F1Z5",
		Currency: "Rs.",
		Bank: BankDetails{
			AccountName:   "Precision Auto Care",
			AccountNumber: "50200012345678",
			BankName:      "HDFC Bank",
			IFSC:          "HDFC0001234",
			Branch:        "Industrial Area",
		},
		Quotation: KindTheme{
			Primary: Color{Red: 37, Green: 99, Blue: 235},
			Terms: []string{
				"Prices are subject to change after the validity date.",
				"Additional work found during service will be quoted separately.",
				"Parts availability is subject to stock at the time of approval.",
			},
		},
		Invoice: KindTheme{
			Primary: Color{Red: 22, Green: 163, Blue: 74},
			Terms: []string{
				"Payment is due on or before the due date.",
				"Warranty on parts is as per manufacturer terms.",
				"Vehicle will be released only after full payment.",
			},
		},
		ServiceCode:  "9986",
		PartCode:     "8708",
		ValidityDays: 15,
	}
}

// Merge overlays the non-zero fields of o onto p.
func (p Profile) Merge(o Profile) Profile {
	if o.Name != "" {
		p.Name = o.Name
	}
	if o.Tagline != "" {
		p.Tagline = o.Tagline
	}
	if len(o.Address) > 0 {
		p.Address = o.Address
	}
	if o.Phone != "" {
		p.Phone = o.Phone
	}
	if o.Email != "" {
		p.Email = o.Email
	}
	if o.Website != "" {
		p.Website = o.Website
	}
	if o.GSTIN != "" {
		p.GSTIN = o.GSTIN
	}
	if o.Currency != "" {
		p.Currency = o.Currency
	}
	if o.Bank != (BankDetails{}) {
		p.Bank = o.Bank
	}
	p.Quotation = mergeTheme(p.Quotation, o.Quotation)
	p.Invoice = mergeTheme(p.Invoice, o.Invoice)
	if o.ServiceCode != "" {
		p.ServiceCode = o.ServiceCode
	}
	if o.PartCode != "" {
		p.PartCode = o.PartCode
	}
	if o.ValidityDays > 0 {
		p.ValidityDays = o.ValidityDays
	}
	return p
}

func mergeTheme(base, o KindTheme) KindTheme {
	if o.Primary != (Color{}) {
		base.Primary = o.Primary
	}
	if len(o.Terms) > 0 {
		base.Terms = o.Terms
	}
	return base
}
