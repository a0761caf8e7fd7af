package document

import (
	"context"
	"strings"
)

// RecordSource fetches raw, loosely typed records from the backend.
type RecordSource interface {
	// FetchRecord returns the record for the id, with any envelope left in place.
	FetchRecord(ctx context.Context, kind Kind, id string) (map[string]any, error)

	// FetchItems returns the line items of a record when they are not embedded.
	FetchItems(ctx context.Context, kind Kind, id string) ([]any, error)
}

// Image is an encoded raster ready to be embedded.
type Image struct {
	Bytes     []byte
	Extension string
}

// AssetProvider supplies the branding logo and the verification QR code.
// Implementations return an error when the asset is unavailable; callers
// degrade to a placeholder.
type AssetProvider interface {
	Logo(ctx context.Context) (*Image, error)
	QRCode(ctx context.Context, kind Kind, id string) (*Image, error)
}

// File is a finished export.
type File struct {
	Name        string
	ContentType string
	Bytes       []byte
	Pages       int
}

// Sink stores a finished file somewhere outside the process.
type Sink interface {
	Name() string
	Store(ctx context.Context, file File) (location string, err error)
}

// Remover is implemented by sinks that can withdraw a stored file, so a
// generation that fails on a later sink leaves nothing behind.
type Remover interface {
	Remove(ctx context.Context, location string) error
}

// FileName builds "{kind}_{number}_{YYYY-MM-DD}.pdf".
func FileName(doc Document) string {
	return string(doc.Kind) + "_" + safeSegment(doc.Number) + "_" + doc.IssueDate.Format("2006-01-02") + ".pdf"
}

func safeSegment(s string) string {
	if s == "" || s == NotAvailable {
		return "draft"
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}
