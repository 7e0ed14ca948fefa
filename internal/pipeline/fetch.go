package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/pfrederiksen/skate-protocols/internal/links"
	"github.com/pfrederiksen/skate-protocols/internal/logger"
	"github.com/pfrederiksen/skate-protocols/internal/scraper"
)

// Fetch downloads the competition page behind every url, maps its result links and
// downloads every linked document. Files that already exist are not fetched again.
func (r *Runner) Fetch(ctx context.Context, urls []string) (*FetchSummary, error) {
	sum := &FetchSummary{}

	for _, url := range urls {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		comp, outcome, err := r.scraper.DownloadCompetitionPage(ctx, url, r.store)
		sum.Pages.add(outcome)
		r.metrics.FetchesTotal.WithLabelValues("page", string(outcome)).Inc()
		if err != nil {
			r.log.Error("Failed to download competition page", logger.Fields{"url": url, "competition": comp}, err)
			continue
		}
		sum.Competitions++

		log := r.log.With(logger.Fields{"competition": comp})
		mapping, err := r.linkMapping(comp, log)
		if err != nil {
			log.Error("Failed to map result links", nil, err)
			continue
		}

		counts, err := r.downloadDocuments(ctx, url, comp, mapping, log)
		sum.Documents.Downloaded += counts.Downloaded
		sum.Documents.Skipped += counts.Skipped
		sum.Documents.Failed += counts.Failed
		if err != nil {
			return sum, err
		}
		log.Info("Competition fetched", logger.Fields{
			"downloaded": counts.Downloaded,
			"skipped":    counts.Skipped,
			"failed":     counts.Failed,
		})
	}

	return sum, nil
}

// linkMapping loads the link mapping of a competition, extracting it from the
// competition page on first use
func (r *Runner) linkMapping(comp string, log *logger.Logger) (links.Mapping, error) {
	if r.store.HasLinkMapping(comp) {
		return r.store.LoadLinkMapping(comp)
	}

	page, err := r.store.ReadFile(comp, comp+".html")
	if err != nil {
		return nil, err
	}

	m, candidates, err := links.Extract(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("extracting links of %s: %w", comp, err)
	}
	if candidates > 1 {
		log.Warn("Several result tables found, using the first", logger.Fields{"tables": candidates})
	}

	if err := r.store.SaveLinkMapping(comp, m); err != nil {
		return nil, err
	}
	return m, nil
}

// downloadDocuments fetches the linked documents of one competition on the worker pool
func (r *Runner) downloadDocuments(ctx context.Context, root, comp string, m links.Mapping, log *logger.Logger) (Counts, error) {
	all := m.Links()
	outcomes := make([]scraper.Outcome, len(all))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, l := range all {
		i, l := i, l
		g.Go(func() error {
			outcome, err := r.scraper.DownloadDocument(gctx, root, l.Href, r.store, comp)
			outcomes[i] = outcome
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Error("Failed to download document", logger.Fields{"link": l.Href, "label": l.Label}, err)
			}
			return nil
		})
	}
	err := g.Wait()

	var counts Counts
	for _, o := range outcomes {
		counts.add(o)
		if o != "" {
			r.metrics.FetchesTotal.WithLabelValues("document", string(o)).Inc()
		}
	}
	return counts, err
}
