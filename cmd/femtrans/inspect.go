package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"femtrans/internal/core"
	"femtrans/internal/persistence"
	"femtrans/internal/snapshot"

	"github.com/spf13/cobra"
)

type inspectOptions struct {
	input string
	model string
	runID string
	runs  bool
}

// summary is what inspect prints for one model.
type summary struct {
	Model    string     `json:"model"`
	RunID    string     `json:"run_id,omitempty"`
	Finished bool       `json:"finished"`
	Stats    core.Stats `json:"stats"`
}

type runEntry struct {
	RunID     string `json:"run_id"`
	Finished  bool   `json:"finished"`
	CreatedAt string `json:"created_at"`
}

func inspectCmd(a *app) *cobra.Command {
	var opts inspectOptions
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print entity counts of a snapshot file or an archived run",
		Long: `Print the entity counts of a model as JSON. The model is read from --input,
or from the configured snapshot store with --model (latest run unless --run
is given). --runs lists the archived runs of --model instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.inspect(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "Input snapshot (JSON)")
	cmd.Flags().StringVarP(&opts.model, "model", "m", "", "Archived model name")
	cmd.Flags().StringVar(&opts.runID, "run", "", "Archived run id (default latest)")
	cmd.Flags().BoolVar(&opts.runs, "runs", false, "List archived runs of --model")
	cmd.MarkFlagsMutuallyExclusive("input", "model")
	cmd.MarkFlagsOneRequired("input", "model")
	return cmd
}

func (a *app) inspect(ctx context.Context, opts inspectOptions) error {
	if opts.input != "" {
		if opts.runs || opts.runID != "" {
			return errors.New("--run and --runs need --model")
		}
		m, err := loadModel(opts.input, a.logger)
		if err != nil {
			return err
		}
		return a.printJSON(summary{Model: m.Name, Finished: m.Finished(), Stats: m.Stats()})
	}

	store, err := persistence.Open(ctx, persistence.Options{
		Driver: persistence.Driver(a.cfg.Storage.Driver),
		Path:   a.cfg.Storage.Path,
		DSN:    a.cfg.Storage.DSN,
	})
	if err != nil {
		return fmt.Errorf("open snapshot store: %w", err)
	}
	defer func() { _ = store.Close() }()

	if opts.runs {
		recs, err := store.List(ctx, opts.model)
		if err != nil {
			return err
		}
		out := make([]runEntry, 0, len(recs))
		for _, r := range recs {
			out = append(out, runEntry{RunID: r.RunID, Finished: r.Finished, CreatedAt: r.CreatedAt.Format(time.RFC3339)})
		}
		return a.printJSON(out)
	}

	var rec persistence.Record
	if opts.runID != "" {
		rec, err = store.Get(ctx, opts.model, opts.runID)
	} else {
		rec, err = store.Latest(ctx, opts.model)
	}
	if err != nil {
		return err
	}
	m, err := snapshot.Decode(bytes.NewReader(rec.Document), a.logger)
	if err != nil {
		return fmt.Errorf("run %s: %w", rec.RunID, err)
	}
	return a.printJSON(summary{Model: m.Name, RunID: rec.RunID, Finished: m.Finished(), Stats: m.Stats()})
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
