package pipeline

import (
	"context"
	"runtime"

	"github.com/google/uuid"

	"github.com/pfrederiksen/skate-protocols/internal/logger"
	"github.com/pfrederiksen/skate-protocols/internal/observability"
	"github.com/pfrederiksen/skate-protocols/internal/pdftext"
	"github.com/pfrederiksen/skate-protocols/internal/protocol"
	"github.com/pfrederiksen/skate-protocols/internal/scraper"
	"github.com/pfrederiksen/skate-protocols/internal/storage"
)

// Extractor turns a document file into reading-order lines per page
type Extractor interface {
	ExtractFile(ctx context.Context, path string) ([]pdftext.Page, error)
}

// Runner runs the pipeline stages against one data directory
type Runner struct {
	store     *storage.Storage
	scraper   *scraper.Scraper
	extractor Extractor
	parser    *protocol.Parser
	metrics   *observability.Metrics
	log       *logger.Logger
	workers   int
	runID     string
}

// Option configures a Runner
type Option func(*Runner)

// WithScraper sets the HTTP scraper used by the fetch stage
func WithScraper(s *scraper.Scraper) Option {
	return func(r *Runner) { r.scraper = s }
}

// WithExtractor replaces the PDF text extractor
func WithExtractor(e Extractor) Option {
	return func(r *Runner) { r.extractor = e }
}

// WithParser replaces the protocol parser
func WithParser(p *protocol.Parser) Option {
	return func(r *Runner) { r.parser = p }
}

// WithMetrics records the run on m
func WithMetrics(m *observability.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithLogger sets the logger. Every entry carries the run id.
func WithLogger(l *logger.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// WithWorkers bounds how many documents are processed at once
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithRunID pins the run id stamped on artifacts
func WithRunID(id string) Option {
	return func(r *Runner) {
		if id != "" {
			r.runID = id
		}
	}
}

// New creates a Runner
func New(store *storage.Storage, opts ...Option) *Runner {
	r := &Runner{
		store:     store,
		scraper:   scraper.New(),
		extractor: pdftext.New(pdftext.DefaultOptions()),
		parser:    protocol.NewParser(nil, nil),
		metrics:   observability.NewMetrics(),
		log:       logger.Default(),
		workers:   runtime.NumCPU(),
		runID:     uuid.NewString(),
	}
	for _, o := range opts {
		o(r)
	}
	r.log = r.log.With(logger.Fields{"run_id": r.runID})
	return r
}

// RunID returns the id stamped on the artifacts of this run
func (r *Runner) RunID() string {
	return r.runID
}

// Metrics returns the metrics the runner records
func (r *Runner) Metrics() *observability.Metrics {
	return r.metrics
}

func (r *Runner) warn(w protocol.Warning) {
	r.metrics.WarningsTotal.WithLabelValues(string(w.Kind)).Inc()
	r.log.Warn("Data-quality warning", logger.Fields{
		"kind":        string(w.Kind),
		"competition": w.Competition,
		"source":      w.Source,
		"skater":      w.Skater,
		"detail":      w.Detail,
	})
}

// competitions lists the competitions that have a link mapping
func (r *Runner) competitions() ([]string, error) {
	comps, err := r.store.ListCompetitions()
	if err != nil {
		return nil, err
	}
	out := comps[:0]
	for _, c := range comps {
		if r.store.HasLinkMapping(c) {
			out = append(out, c)
		}
	}
	return out, nil
}
