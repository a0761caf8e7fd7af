package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"3tcapital/ms_service_documents/internal/adapters/sink"
	appdocument "3tcapital/ms_service_documents/internal/application/document"
	"3tcapital/ms_service_documents/internal/core/document"
	"3tcapital/ms_service_documents/internal/infrastructure/config"
	"3tcapital/ms_service_documents/internal/infrastructure/logger"
)

type renderOptions struct {
	kind    string
	ids     []string
	input   string
	sample  bool
	out     string
	workers int
}

func newRenderCmd() *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Generate quotation or invoice PDFs",
		Long: `Generate documents without the HTTP API. Records come from the backend
(--id, repeatable), from a JSON file (--input, "-" for stdin) or from the
built-in sample (--sample). Each generated file is written to --out and to
any configured archive sink.`,
		Example: `  # Two invoices from the backend, four at a time
  servicedocs render --kind invoice --id inv-1 --id inv-2 --out ./pdf

  # A quotation from a JSON record
  servicedocs render --kind quotation --input quotation.json

  # The sample invoice
  servicedocs render --kind invoice --sample`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.kind, "kind", "k", "", `document kind: "quotation" or "invoice"`)
	flags.StringSliceVar(&opts.ids, "id", nil, "record id to fetch from the backend (repeatable)")
	flags.StringVarP(&opts.input, "input", "i", "", `JSON record file, "-" reads stdin`)
	flags.BoolVar(&opts.sample, "sample", false, "render the built-in sample record")
	flags.StringVarP(&opts.out, "out", "o", ".", "output directory")
	flags.IntVarP(&opts.workers, "workers", "w", 0, "concurrent generations for --id (default RENDER_BATCH_WORKERS)")
	_ = cmd.MarkFlagRequired("kind")
	cmd.MarkFlagsMutuallyExclusive("id", "input", "sample")
	cmd.MarkFlagsOneRequired("id", "input", "sample")

	return cmd
}

func runRender(cmd *cobra.Command, opts *renderOptions) error {
	kind, err := document.ParseKind(opts.kind)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// stdout carries the generated file list.
	log := logger.NewWithWriter(cmd.ErrOrStderr(), cfg.App.Name, cfg.Log.Level, cfg.App.Environment)

	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, log, sink.NewDirectory(opts.out))
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()

	if len(opts.ids) > 0 {
		workers := opts.workers
		if workers <= 0 {
			workers = cfg.Rendering.BatchWorkers
		}
		pool := appdocument.NewBatchWorkerPool(ctx, workers, a.service)

		var failed int
		for _, r := range pool.GenerateAll(kind, opts.ids) {
			if r.Err != nil {
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %s: %v\n", kind, r.Job.ID, r.Err)
				continue
			}
			printResult(out, r.Result)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d documents failed", failed, len(opts.ids))
		}
		return nil
	}

	var record map[string]any
	if opts.sample {
		record = appdocument.Sample(kind)
	} else if record, err = readRecord(cmd.InOrStdin(), opts.input); err != nil {
		return err
	}

	res, err := a.service.GenerateFromRecord(ctx, kind, record)
	if err != nil {
		return err
	}
	printResult(out, res)
	return nil
}

// readRecord decodes a JSON object keeping numbers exact.
func readRecord(stdin io.Reader, path string) (map[string]any, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	dec.UseNumber()
	var record map[string]any
	if err := dec.Decode(&record); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if record == nil {
		return nil, errors.New("input must be a JSON object")
	}
	return record, nil
}

func printResult(w io.Writer, res *appdocument.Result) {
	fmt.Fprintf(w, "%s\t%d page(s)\t%s\t%s\n",
		res.File.Name,
		res.File.Pages,
		res.Totals.GrandTotal.StringFixed(2),
		strings.Join(res.Locations, " "),
	)
}
