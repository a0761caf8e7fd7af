package document

import "3tcapital/ms_service_documents/internal/core/document"

// SampleQuotation is a nested-style record with one service and one part
// taxed at different rates.
func SampleQuotation() map[string]any {
	return map[string]any{
		"id":               "sample-q-1",
		"quotation_number": "QT-2024-0042",
		"date":             "2024-07-15",
		"valid_until":      "2024-07-30",
		"client": map[string]any{
			"name":    "Arjun Mehta",
			"phone":   "+91 98140 22331",
			"address": "House 221, Sector 21-C, Chandigarh",
		},
		"vehicle": map[string]any{
			"registration_number": "CH01 AB 4521",
			"make":                "Maruti Suzuki",
			"model":               "Swift VXi",
			"year":                2019,
			"fuel_type":           "Petrol",
		},
		"items": []any{
			map[string]any{"description": "Periodic maintenance labour", "category": "service", "quantity": 1, "rate": 240},
			map[string]any{"description": "Front brake pad set", "category": "part", "quantity": 1, "rate": "919.10"},
		},
		"tax": map[string]any{
			"enabled":   true,
			"cgst_rate": 4.75,
			"sgst_rate": 4.75,
			"parts": map[string]any{
				"cgst_rate": 3.25,
				"sgst_rate": 3.25,
			},
		},
		"notes": "Customer requested pickup and drop.",
	}
}

// SampleInvoice is a flat, legacy-style record with uncategorized items.
func SampleInvoice() map[string]any {
	return map[string]any{
		"id":             "sample-i-1",
		"invoice_number": "INV-2024-0107",
		"invoice_date":   "2024-07-18",
		"due_date":       "2024-08-02",
		"customer_name":  "Priya Sharma",
		"customer_phone": "+91 99887 66554",
		"client_address": "12 Mall Road, Shimla",
		"vehicle_number": "HP07 C 1190",
		"vehicle_make":   "Hyundai",
		"vehicle_model":  "Creta SX",
		"vehicle_year":   "2021",
		"line_items": []any{
			map[string]any{"name": "Engine oil 5W-30", "qty": 4, "unit_price": 520},
			map[string]any{"name": "Oil filter", "qty": 1, "unit_price": 310},
			map[string]any{"name": "Wheel alignment", "qty": 1, "unit_price": 600},
			map[string]any{"name": "Car wash", "qty": 1, "unit_price": 350},
		},
		"tax_rate":        18,
		"inter_state":     true,
		"discount":        100,
		"round_off":       "-0.20",
		"insurance_claim": false,
		"warranty":        true,
	}
}

// Sample returns the fixture for a kind.
func Sample(kind document.Kind) map[string]any {
	if kind == document.KindInvoice {
		return SampleInvoice()
	}
	return SampleQuotation()
}
