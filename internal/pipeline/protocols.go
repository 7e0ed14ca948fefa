package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pfrederiksen/skate-protocols/internal/competition"
	"github.com/pfrederiksen/skate-protocols/internal/links"
	"github.com/pfrederiksen/skate-protocols/internal/logger"
	"github.com/pfrederiksen/skate-protocols/internal/observability"
	"github.com/pfrederiksen/skate-protocols/internal/pdftext"
	"github.com/pfrederiksen/skate-protocols/internal/protocol"
	"github.com/pfrederiksen/skate-protocols/internal/storage"
)

// job is one protocol document waiting to be parsed
type job struct {
	comp   string
	season int
	link   links.Link
}

// outcome is what a worker hands back to the reducer
type outcome struct {
	job      job
	status   string
	result   protocol.DocumentResult
	warnings []protocol.Warning
	err      error
	elapsed  time.Duration
}

// Protocols parses every downloaded score protocol that has no artifact yet
func (r *Runner) Protocols(ctx context.Context) (*ProtocolsSummary, error) {
	comps, err := r.competitions()
	if err != nil {
		return nil, err
	}

	sum := &ProtocolsSummary{}
	var jobs []job
	for _, comp := range comps {
		season := 0
		if info, err := competition.Parse(comp); err == nil {
			season = info.Season
		} else {
			r.log.Warn("Unknown competition, parsing with default layout", logger.Fields{"competition": comp, "error": err.Error()})
		}

		m, err := r.store.LoadLinkMapping(comp)
		if err != nil {
			r.log.Error("Failed to load link mapping", logger.Fields{"competition": comp}, err)
			continue
		}

		for _, l := range m.Protocols() {
			if !r.store.HasFile(comp, l.File()) {
				continue
			}
			sum.Documents++
			if r.store.HasProtocolArtifact(comp, l.File()) {
				sum.Skipped++
				r.metrics.DocumentsTotal.WithLabelValues(observability.DocumentSkipped).Inc()
				continue
			}
			jobs = append(jobs, job{comp: comp, season: season, link: l})
		}
	}

	results := make([]outcome, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.processDocument(gctx, j)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return sum, err
	}

	for _, res := range results {
		r.reduce(sum, res)
	}
	if err := ctx.Err(); err != nil {
		return sum, err
	}

	r.log.Info("Protocols parsed", logger.Fields{
		"documents": sum.Documents,
		"parsed":    sum.Parsed,
		"skipped":   sum.Skipped,
		"empty":     sum.Empty,
		"failed":    sum.Failed,
		"skaters":   sum.Skaters,
	})
	return sum, nil
}

// processDocument extracts, parses and stores one document. It never touches shared
// state besides storage and metrics.
func (r *Runner) processDocument(ctx context.Context, j job) (out outcome) {
	start := time.Now()
	out.job = j
	defer func() {
		out.elapsed = time.Since(start)
	}()

	source := j.link.File()
	pages, err := r.extractor.ExtractFile(ctx, filepath.Join(r.store.DataDir(), j.comp, source))
	if err != nil {
		out.status = observability.DocumentFailed
		out.err = fmt.Errorf("extracting text: %w", err)
		return out
	}
	pages = skipCoverPage(pages)

	category, warning := documentCategory(j, pages)
	if warning != nil {
		out.warnings = append(out.warnings, *warning)
	}

	var lines []string
	for _, p := range pages {
		lines = append(lines, p.Lines...)
	}

	doc := protocol.Document{Competition: j.comp, Source: source, Season: j.season, Category: category}
	out.result = r.parser.ParseDocument(lines, doc)
	if out.result.Skaters == 0 {
		out.status = observability.DocumentEmpty
		return out
	}

	artifact := &storage.ProtocolArtifact{
		Competition: j.comp,
		Source:      source,
		Category:    category,
		Season:      j.season,
		RunID:       r.runID,
		Rows:        out.result.Rows,
	}
	if err := r.store.SaveProtocolArtifact(artifact); err != nil {
		out.status = observability.DocumentFailed
		out.err = err
		return out
	}

	out.status = observability.DocumentParsed
	return out
}

// skipCoverPage drops a first page that holds no skater table
func skipCoverPage(pages []pdftext.Page) []pdftext.Page {
	if len(pages) < 2 {
		return pages
	}
	first := strings.ToLower(pages[0].Text())
	if !strings.Contains(first, "nation") && !strings.Contains(first, "noc") {
		return pages[1:]
	}
	return pages
}

// documentCategory reads the category heading of the first page. The link label is
// used when the heading is missing and for events whose pages are known to lack one.
func documentCategory(j job, pages []pdftext.Page) (string, *protocol.Warning) {
	if competition.LinkLabelCategory(j.comp, j.season) || len(pages) == 0 {
		return j.link.Label, nil
	}
	if category, ok := competition.CategoryFromText(pages[0].Text()); ok {
		return category, nil
	}
	return j.link.Label, &protocol.Warning{
		Kind:        protocol.WarnUnknownCategory,
		Competition: j.comp,
		Source:      j.link.File(),
		Detail:      fmt.Sprintf("no category heading, using link label %q", j.link.Label),
	}
}

// reduce folds one worker outcome into the summary, logging as it goes
func (r *Runner) reduce(sum *ProtocolsSummary, res outcome) {
	if res.status == "" {
		return
	}

	log := r.log.With(logger.Fields{"competition": res.job.comp, "source": res.job.link.File()})
	r.metrics.DocumentsTotal.WithLabelValues(res.status).Inc()
	r.metrics.DocumentDuration.Observe(res.elapsed.Seconds())

	for _, f := range res.result.Failures {
		log.Warn("Skipping skater", logger.Fields{
			"skater": f.Skater,
			"row":    f.Row.String(),
			"error":  f.Err.Error(),
		})
	}
	sum.SkaterFailures += len(res.result.Failures)
	r.metrics.SkatersFailed.Add(float64(len(res.result.Failures)))

	warnings := append(res.warnings, res.result.Warnings...)
	for _, w := range warnings {
		r.warn(w)
	}
	sum.Warnings += len(warnings)

	switch res.status {
	case observability.DocumentParsed:
		sum.Parsed++
		sum.Skaters += res.result.Skaters
		sum.Rows += len(res.result.Rows)
		r.metrics.SkatersParsed.Add(float64(res.result.Skaters))
		log.Debug("Document parsed", logger.Fields{"skaters": res.result.Skaters, "rows": len(res.result.Rows)})
	case observability.DocumentEmpty:
		sum.Empty++
		log.Warn("No skaters found, skipping document", nil)
	case observability.DocumentFailed:
		sum.Failed++
		log.Error("Failed to parse document", nil, res.err)
	}
}
