package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pfrederiksen/skate-protocols/internal/dataset"
	"github.com/pfrederiksen/skate-protocols/internal/logger"
	"github.com/pfrederiksen/skate-protocols/internal/storage"
)

// DatasetOptions names the outputs of the dataset stage. Relative paths are taken
// from the data directory; an empty path skips that output.
type DatasetOptions struct {
	CSVPath    string
	SQLitePath string
}

// Dataset builds the score table from every protocol artifact and exports it
func (r *Runner) Dataset(ctx context.Context, opts DatasetOptions) (*DatasetSummary, error) {
	comps, err := r.store.ListCompetitions()
	if err != nil {
		return nil, err
	}

	var artifacts []*storage.ProtocolArtifact
	for _, comp := range comps {
		a, err := r.store.LoadProtocolArtifacts(comp)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, a...)
	}

	d, warnings := dataset.Build(artifacts)
	for _, w := range warnings {
		r.warn(w)
	}

	d.Judges, err = r.store.LoadCleanJudges()
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		r.log.Info("No cleaned judges yet, exporting scores only", nil)
	}

	sum := &DatasetSummary{
		Artifacts:  len(artifacts),
		Rows:       len(d.Scores),
		Judges:     len(d.Judges),
		Warnings:   len(warnings),
		CSVPath:    r.store.Resolve(opts.CSVPath),
		SQLitePath: r.store.Resolve(opts.SQLitePath),
	}

	if sum.CSVPath != "" {
		var buf bytes.Buffer
		if err := d.WriteCSV(&buf); err != nil {
			return sum, err
		}
		if err := storage.WriteFileAtomic(sum.CSVPath, buf.Bytes()); err != nil {
			return sum, fmt.Errorf("writing csv: %w", err)
		}
	}

	if sum.SQLitePath != "" {
		if err := os.MkdirAll(filepath.Dir(sum.SQLitePath), 0755); err != nil {
			return sum, fmt.Errorf("creating database directory: %w", err)
		}
		if err := d.WriteSQLite(ctx, sum.SQLitePath); err != nil {
			return sum, err
		}
	}

	r.log.Info("Dataset written", logger.Fields{
		"rows":   sum.Rows,
		"csv":    sum.CSVPath,
		"sqlite": sum.SQLitePath,
	})
	return sum, nil
}

// Run executes every stage in order. urls may be empty to work from what is
// already downloaded.
func (r *Runner) Run(ctx context.Context, urls []string, opts DatasetOptions) (*Summary, error) {
	sum := &Summary{RunID: r.runID}
	var err error

	if len(urls) > 0 {
		if sum.Fetch, err = r.Fetch(ctx, urls); err != nil {
			return sum, fmt.Errorf("fetch: %w", err)
		}
	}
	if sum.Judges, err = r.Judges(ctx); err != nil {
		return sum, fmt.Errorf("judges: %w", err)
	}
	if sum.Protocols, err = r.Protocols(ctx); err != nil {
		return sum, fmt.Errorf("protocols: %w", err)
	}
	if sum.Dataset, err = r.Dataset(ctx, opts); err != nil {
		return sum, fmt.Errorf("dataset: %w", err)
	}
	return sum, nil
}
