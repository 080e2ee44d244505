package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"femtrans/internal/blob"
	"femtrans/internal/config"
	"femtrans/internal/observability"
	"femtrans/internal/persistence"
	"femtrans/internal/pipeline"
	"femtrans/internal/snapshot"
	"femtrans/pkg/domain"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type translateOptions struct {
	input       string
	output      string
	metricsFile string
	tracePath   string
	noArchive   bool
}

func translateCmd(a *app) *cobra.Command {
	var opts translateOptions
	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Run the pipeline over a snapshot and archive the result",
		Long: `Run every enabled pass over the input snapshot, validate the result and
write the exported snapshot. The document is archived in the configured
snapshot store and blob archive under models/<name>/<run-id>.json.

Examples:
  femtrans translate --input bracket.json --output bracket.out.json
  femtrans translate -i bracket.json -c femtrans.yaml --metrics-file metrics.prom`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.translate(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "Input snapshot (JSON)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the translated snapshot here; stdout when empty")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics in text format (overrides config)")
	cmd.Flags().StringVar(&opts.tracePath, "trace", "", "Write one JSON line per pass to this file")
	cmd.Flags().BoolVar(&opts.noArchive, "no-archive", false, "Skip the snapshot store and blob archive")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func (a *app) translate(ctx context.Context, opts translateOptions) (retErr error) {
	runID, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("run id: %w", err)
	}
	logger := a.logger.With(zap.String("run_id", runID.String()))

	m, err := loadModel(opts.input, logger)
	if err != nil {
		return err
	}

	metrics := observability.NewPrometheusRecorder()
	var traceOut io.Writer
	if opts.tracePath != "" {
		f, err := os.Create(opts.tracePath)
		if err != nil {
			return fmt.Errorf("trace: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && retErr == nil {
				retErr = cerr
			}
		}()
		traceOut = f
	}
	tracer := observability.NewJSONTracer(traceOut,
		observability.WithRunID(runID.String()),
		observability.WithTracerLogger(logger))

	p := pipeline.New(a.cfg.Pipeline,
		pipeline.WithLogger(logger),
		pipeline.WithMetricsRecorder(metrics),
		pipeline.WithTracer(tracer))

	start := time.Now()
	res, runErr := p.Run(ctx, m)
	if path := firstNonEmpty(opts.metricsFile, a.cfg.Metrics.File); path != "" {
		if err := metrics.WriteTextfile(path); err != nil {
			logger.Warn("metrics file not written", zap.String("path", path), zap.Error(err))
		}
	}
	printViolations(a.errOut, res)
	if runErr != nil {
		return runErr
	}

	doc, err := snapshot.FromModel(m)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	doc.RunID = runID.String()
	out, err := stageDocument(doc, opts.output)
	if err != nil {
		return err
	}
	defer out.discard()
	if !opts.noArchive {
		if err := a.archive(ctx, doc, logger); err != nil {
			return err
		}
	}
	if err := out.publish(doc, a.out); err != nil {
		return err
	}
	logger.Info("translation finished",
		zap.String("model", m.Name),
		zap.Int("passes", len(tracer.Spans())),
		zap.Int("violations", len(res.Violations)),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// archive stores doc in the snapshot store and the blob archive concurrently.
func (a *app) archive(ctx context.Context, doc *snapshot.Document, logger *zap.Logger) (retErr error) {
	raw, err := doc.Marshal()
	if err != nil {
		return err
	}
	store, err := persistence.Open(ctx, persistence.Options{
		Driver: persistence.Driver(a.cfg.Storage.Driver),
		Path:   a.cfg.Storage.Path,
		DSN:    a.cfg.Storage.DSN,
	})
	if err != nil {
		return fmt.Errorf("open snapshot store: %w", err)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil && retErr == nil {
			retErr = cerr
		}
	}()
	objects, err := openBlob(ctx, a.cfg)
	if err != nil {
		return fmt.Errorf("open blob archive: %w", err)
	}
	archive := blob.NewArchive(objects, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return store.Save(gctx, persistence.Record{
			Model:     doc.Model,
			RunID:     doc.RunID,
			Finished:  doc.Finished,
			CreatedAt: time.Now().UTC(),
			Document:  raw,
		})
	})
	g.Go(func() error {
		_, err := archive.Save(gctx, doc)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("archive %s: %w", doc.Model, err)
	}
	logger.Debug("snapshot archived",
		zap.String("store", string(store.Driver())),
		zap.String("blob", string(objects.Driver())),
		zap.String("key", blob.DocumentKey(doc.Model, doc.RunID)))
	return nil
}

func openBlob(ctx context.Context, cfg config.Config) (blob.Store, error) {
	return blob.Open(ctx, blob.Options{
		Driver: blob.Driver(cfg.Blob.Driver),
		Root:   cfg.Blob.Root,
		S3: blob.S3Options{
			Bucket:    cfg.Blob.S3.Bucket,
			Region:    cfg.Blob.S3.Region,
			Endpoint:  cfg.Blob.S3.Endpoint,
			PathStyle: cfg.Blob.S3.PathStyle,
		},
	})
}

// stagedOutput holds the translated document until every other step has
// succeeded. A file output is written next to its destination and renamed
// into place by publish; stdout is written by publish directly.
type stagedOutput struct {
	path string
	tmp  string
}

func stageDocument(doc *snapshot.Document, path string) (_ *stagedOutput, retErr error) {
	if path == "" || path == "-" {
		return &stagedOutput{}, nil
	}
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && retErr == nil {
			retErr = cerr
		}
		if retErr != nil {
			os.Remove(f.Name())
		}
	}()
	if err := doc.Write(f); err != nil {
		return nil, fmt.Errorf("output: %w", err)
	}
	return &stagedOutput{path: path, tmp: f.Name()}, nil
}

func (o *stagedOutput) publish(doc *snapshot.Document, stdout io.Writer) error {
	if o.tmp == "" {
		return doc.Write(stdout)
	}
	if err := os.Rename(o.tmp, o.path); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	o.tmp = ""
	return nil
}

// discard removes a staged file that was never published.
func (o *stagedOutput) discard() {
	if o.tmp != "" {
		os.Remove(o.tmp)
	}
}

func printViolations(w io.Writer, res domain.Result) {
	for _, v := range res.Violations {
		fmt.Fprintf(w, "%s\t%s\t%s %d\t%s\n", v.Severity, v.Rule, v.Entity, v.EntityID, v.Message)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
