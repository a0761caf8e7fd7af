package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"3tcapital/ms_service_documents/internal/application/layout"
	"3tcapital/ms_service_documents/internal/core/audit"
	"3tcapital/ms_service_documents/internal/core/document"
	ctxutil "3tcapital/ms_service_documents/internal/infrastructure/context"
)

// Exporter paints a rendered document into a file.
type Exporter interface {
	Export(ctx context.Context, doc *layout.Painted) (document.File, error)
}

// Result is the outcome of one successful generation.
type Result struct {
	File      document.File
	Document  document.Document
	Totals    document.Totals
	Locations []string
}

// Service orchestrates the document pipeline: fetch, normalize, compute,
// render, paginate, export and archive.
type Service struct {
	source     document.RecordSource
	assets     document.AssetProvider
	normalizer *Normalizer
	renderer   *layout.Renderer
	exporter   Exporter
	sinks      []document.Sink
	history    audit.GenerationRepository // Optional: nil if database not configured
	log        *slog.Logger
}

// NewService creates the pipeline. history and sinks may be nil. A nil
// source limits the service to caller-supplied records.
func NewService(
	source document.RecordSource,
	assets document.AssetProvider,
	normalizer *Normalizer,
	renderer *layout.Renderer,
	exporter Exporter,
	sinks []document.Sink,
	history audit.GenerationRepository,
	log *slog.Logger,
) *Service {
	return &Service{
		source:     source,
		assets:     assets,
		normalizer: normalizer,
		renderer:   renderer,
		exporter:   exporter,
		sinks:      sinks,
		history:    history,
		log:        log,
	}
}

// GenerateByID fetches the record of the given kind and generates its PDF.
// The record (plus its items when they are not embedded) and the logo are
// fetched concurrently.
func (s *Service) GenerateByID(ctx context.Context, kind document.Kind, id string) (*Result, error) {
	if _, err := document.ParseKind(string(kind)); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("empty %s id: %w", kind, document.ErrRecordNotFound)
	}
	if s.source == nil {
		return nil, fmt.Errorf("no records backend configured: %w", document.ErrSourceUnavailable)
	}

	start := time.Now()

	var (
		record map[string]any
		logo   *document.Image
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rec, err := s.fetch(gctx, kind, id)
		if err != nil {
			return err
		}
		record = rec
		return nil
	})
	g.Go(func() error {
		logo = s.logo(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		s.record(ctx, start, document.Document{Kind: kind, ID: id}, nil, err)
		return nil, err
	}

	doc := s.normalizer.Normalize(record, kind)
	if doc.ID == "" {
		doc.ID = id
	}
	return s.generate(ctx, start, doc, logo)
}

// GenerateFromRecord generates the PDF for a record supplied by the caller.
func (s *Service) GenerateFromRecord(ctx context.Context, kind document.Kind, record map[string]any) (*Result, error) {
	if _, err := document.ParseKind(string(kind)); err != nil {
		return nil, err
	}

	start := time.Now()
	doc := s.normalizer.Normalize(record, kind)
	return s.generate(ctx, start, doc, s.logo(ctx))
}

// History returns the most recent generation log entries.
func (s *Service) History(ctx context.Context, limit int) ([]audit.GenerationLog, error) {
	if s.history == nil {
		return []audit.GenerationLog{}, nil
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	logs, err := s.history.RecentGenerations(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list generations: %w", err)
	}
	return logs, nil
}

// fetch loads the record and, when it carries no line items, the items
// collection.
func (s *Service) fetch(ctx context.Context, kind document.Kind, id string) (map[string]any, error) {
	record, err := s.source.FetchRecord(ctx, kind, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s %s: %w", kind, id, err)
	}

	if hasItems(record) {
		return record, nil
	}

	items, err := s.source.FetchItems(ctx, kind, id)
	switch {
	case errors.Is(err, document.ErrRecordNotFound):
		s.log.Warn("Record has no items collection", "kind", kind, "id", id)
		return record, nil
	case err != nil:
		return nil, fmt.Errorf("failed to fetch items of %s %s: %w", kind, id, err)
	}

	rec := unwrap(record)
	merged := make(map[string]any, len(rec)+1)
	for k, v := range rec {
		merged[k] = v
	}
	merged["items"] = items
	return merged, nil
}

func hasItems(record map[string]any) bool {
	_, ok := lookupList(unwrap(record), "items", "line_items", "lineItems", "services", "service_items", "serviceItems", "parts", "part_items", "partItems")
	return ok
}

func (s *Service) logo(ctx context.Context) *document.Image {
	if s.assets == nil {
		return nil
	}
	img, err := s.assets.Logo(ctx)
	if err != nil {
		s.log.Warn("Logo unavailable, using placeholder", "error", err)
		return nil
	}
	return img
}

func (s *Service) qr(ctx context.Context, doc document.Document) *document.Image {
	if s.assets == nil {
		return nil
	}
	id := doc.ID
	if id == "" {
		id = doc.Number
	}
	img, err := s.assets.QRCode(ctx, doc.Kind, id)
	if err != nil {
		s.log.Warn("QR code unavailable, using placeholder", "kind", doc.Kind, "id", id, "error", err)
		return nil
	}
	return img
}

func (s *Service) generate(ctx context.Context, start time.Time, doc document.Document, logo *document.Image) (*Result, error) {
	totals := document.ComputeTotals(doc)
	assets := layout.Assets{Logo: logo, QR: s.qr(ctx, doc)}

	painted := s.renderer.Render(doc, totals, assets)

	file, err := s.exporter.Export(ctx, painted)
	if err != nil {
		if ctx.Err() != nil {
			s.record(ctx, start, doc, &totals, ctx.Err())
			return nil, ctx.Err()
		}
		s.log.Error("Document export failed", "kind", doc.Kind, "document_number", doc.Number, "error", err)
		s.record(ctx, start, doc, &totals, err)
		return nil, fmt.Errorf("export %s %s: %w", doc.Kind, doc.Number, errors.Join(document.ErrGenerationFailed, err))
	}
	file.Name = document.FileName(doc)

	archived := make([]stored, 0, len(s.sinks))
	for _, sink := range s.sinks {
		loc, err := sink.Store(ctx, file)
		if err != nil {
			s.log.Error("Failed to archive document", "sink", sink.Name(), "file", file.Name, "error", err)
			s.rollback(ctx, file.Name, archived)
			s.record(ctx, start, doc, &totals, err)
			return nil, fmt.Errorf("archive %s to %s: %w", file.Name, sink.Name(), errors.Join(document.ErrGenerationFailed, err))
		}
		archived = append(archived, stored{sink: sink, location: loc})
	}

	res := &Result{File: file, Document: doc, Totals: totals, Locations: make([]string, 0, len(archived))}
	for _, st := range archived {
		res.Locations = append(res.Locations, st.location)
	}
	s.recordResult(ctx, start, res)

	s.log.Info("Document generated",
		"kind", doc.Kind,
		"document_number", doc.Number,
		"file", file.Name,
		"pages", file.Pages,
		"items", len(doc.Items),
		"grand_total", totals.GrandTotal.StringFixed(2),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

type stored struct {
	sink     document.Sink
	location string
}

// rollback withdraws the copies already archived, newest first, so a failed
// generation leaves no file behind. Sinks that cannot remove are logged.
func (s *Service) rollback(ctx context.Context, name string, done []stored) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	for i := len(done) - 1; i >= 0; i-- {
		st := done[i]
		remover, ok := st.sink.(document.Remover)
		if !ok {
			s.log.Warn("Archived copy left in place, sink cannot remove", "sink", st.sink.Name(), "location", st.location)
			continue
		}
		if err := remover.Remove(ctx, st.location); err != nil {
			s.log.Error("Failed to withdraw archived copy", "sink", st.sink.Name(), "file", name, "error", err)
		}
	}
}

func (s *Service) recordResult(ctx context.Context, start time.Time, res *Result) {
	entry := s.entry(ctx, start, res.Document, &res.Totals)
	entry.Status = audit.StatusSucceeded
	entry.FileName = res.File.Name
	entry.Pages = res.File.Pages
	entry.SizeBytes = len(res.File.Bytes)
	entry.Locations = res.Locations
	s.save(ctx, entry)
}

func (s *Service) record(ctx context.Context, start time.Time, doc document.Document, totals *document.Totals, cause error) {
	entry := s.entry(ctx, start, doc, totals)
	entry.Status = audit.StatusFailed
	if errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
		entry.Status = audit.StatusCancelled
	}
	entry.ErrorMessage = cause.Error()
	s.save(ctx, entry)
}

func (s *Service) entry(ctx context.Context, start time.Time, doc document.Document, totals *document.Totals) audit.GenerationLog {
	entry := audit.GenerationLog{
		ID:             uuid.NewString(),
		CorrelationID:  ctxutil.GetCorrelationID(ctx),
		Kind:           string(doc.Kind),
		DocumentID:     doc.ID,
		DocumentNumber: doc.Number,
		ItemCount:      len(doc.Items),
		DurationMs:     time.Since(start).Milliseconds(),
		CreatedAt:      time.Now().UTC(),
	}
	if totals != nil {
		entry.GrandTotal = totals.GrandTotal.StringFixed(2)
	}
	return entry
}

// save persists the history entry without blocking on the caller's
// cancellation; history failures never fail a generation.
func (s *Service) save(ctx context.Context, entry audit.GenerationLog) {
	if s.history == nil {
		return
	}
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.history.SaveGeneration(saveCtx, entry); err != nil {
		s.log.Warn("Failed to save generation log", "id", entry.ID, "error", err)
	}
}
