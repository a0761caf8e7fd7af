package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"3tcapital/ms_service_documents/internal/application/layout"
	"3tcapital/ms_service_documents/internal/core/company"
	"3tcapital/ms_service_documents/internal/core/document"
	"3tcapital/ms_service_documents/internal/testutil"
)

func paint(t *testing.T, items int, assets layout.Assets) *layout.Painted {
	t.Helper()
	doc := document.Document{
		Kind:      document.KindInvoice,
		ID:        "inv-1",
		Number:    "INV-2024-07",
		IssueDate: time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC),
		DueDate:   time.Date(2024, 7, 30, 0, 0, 0, 0, time.UTC),
		Party:     document.Party{Name: "Meera Nair", Phone: "98140 00000", Address: "Sector 17, Chandigarh"},
		Asset:     document.Asset{RegistrationNumber: "CH01AB1234", Make: "Hyundai", Model: "i20"},
		Tax: document.TaxConfig{
			Enabled:      true,
			SectionRates: document.SectionRates{CGST: decimal.NewFromInt(9), SGST: decimal.NewFromInt(9)},
		},
	}
	for i := 0; i < items; i++ {
		category := document.CategoryService
		if i%2 == 1 {
			category = document.CategoryPart
		}
		doc.Items = append(doc.Items, document.LineItem{
			Category:    category,
			Description: fmt.Sprintf("Line %d", i+1),
			Quantity:    decimal.NewFromInt(1),
			UnitRate:    decimal.NewFromInt(250),
			Amount:      decimal.NewFromInt(250),
		})
	}
	r := layout.NewRenderer(company.Default(), layout.A4())
	return r.Render(doc, document.ComputeTotals(doc), assets)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: 37, G: 99, B: 235, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestExport_SinglePage(t *testing.T) {
	e := NewExporter(layout.A4(), testutil.NewNullLogger())

	file, err := e.Export(context.Background(), paint(t, 4, layout.Assets{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(file.Bytes, []byte("%PDF-")) {
		t.Errorf("expected PDF bytes, got prefix %q", file.Bytes[:min(8, len(file.Bytes))])
	}
	if file.Pages != 1 {
		t.Errorf("expected 1 page, got %d", file.Pages)
	}
	if file.ContentType != "application/pdf" {
		t.Errorf("unexpected content type %q", file.ContentType)
	}
}

func TestExport_WithImages(t *testing.T) {
	e := NewExporter(layout.A4(), testutil.NewNullLogger())
	img := &document.Image{Bytes: pngBytes(t), Extension: "png"}

	file, err := e.Export(context.Background(), paint(t, 2, layout.Assets{Logo: img, QR: img}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(file.Bytes) == 0 {
		t.Fatal("expected non-empty output")
	}
}

func TestExport_PageCountMatchesPagination(t *testing.T) {
	g := layout.A4()
	e := NewExporter(g, testutil.NewNullLogger())
	painted := paint(t, 80, layout.Assets{})

	file, err := e.Export(context.Background(), painted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := len(layout.Paginate(painted, g))
	if want < 2 {
		t.Fatalf("expected a multi-page document, got %d pages", want)
	}
	if file.Pages != want {
		t.Errorf("expected %d pages, got %d", want, file.Pages)
	}
}

func TestExport_CancelledContext(t *testing.T) {
	e := NewExporter(layout.A4(), testutil.NewNullLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	file, err := e.Export(ctx, paint(t, 2, layout.Assets{}))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(file.Bytes) != 0 {
		t.Error("expected no bytes for a cancelled export")
	}
}
