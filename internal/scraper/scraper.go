package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/pfrederiksen/skate-protocols/internal/links"
)

const (
	UserAgent       = "skate-protocols/1.0 (github.com/pfrederiksen/skate-protocols)"
	PageTimeout     = 30 * time.Second
	DocumentTimeout = 60 * time.Second
	MaxRetries      = 3
)

// ErrBadURL is returned for competition URLs without a directory segment
var ErrBadURL = errors.New("cannot derive competition directory from url")

// StatusError is returned for non-200 responses
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d for %s", e.StatusCode, e.URL)
}

// Temporary reports whether retrying the request may succeed
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// Outcome tells what a download call did
type Outcome string

const (
	Downloaded Outcome = "downloaded"
	Skipped    Outcome = "skipped"
	Failed     Outcome = "failed"
)

// Store is where downloaded files go
type Store interface {
	HasFile(comp, name string) bool
	WriteFile(comp, name string, data []byte) error
}

// Scraper handles fetching competition pages and result documents
type Scraper struct {
	client      *http.Client
	userAgent   string
	pageTimeout time.Duration
	docTimeout  time.Duration
	maxRetries  uint64
	newBackOff  func() backoff.BackOff
}

// Option configures a Scraper
type Option func(*Scraper)

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(s *Scraper) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// WithTimeout sets the timeout of page requests. Document requests get twice as long.
func WithTimeout(d time.Duration) Option {
	return func(s *Scraper) {
		if d > 0 {
			s.pageTimeout = d
			s.docTimeout = 2 * d
		}
	}
}

// WithMaxRetries sets how often a transient failure is retried
func WithMaxRetries(n uint64) Option {
	return func(s *Scraper) { s.maxRetries = n }
}

// WithBackOff replaces the exponential backoff between retries
func WithBackOff(newBackOff func() backoff.BackOff) Option {
	return func(s *Scraper) { s.newBackOff = newBackOff }
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(s *Scraper) { s.client = c }
}

// New creates a new Scraper instance
func New(opts ...Option) *Scraper {
	s := &Scraper{
		client:      &http.Client{},
		userAgent:   UserAgent,
		pageTimeout: PageTimeout,
		docTimeout:  DocumentTimeout,
		maxRetries:  MaxRetries,
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Fetch downloads url, retrying transient failures
func (s *Scraper) Fetch(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	var body []byte
	op := func() error {
		data, err := s.fetchOnce(ctx, url, timeout)
		if err != nil {
			var se *StatusError
			if errors.As(err, &se) && !se.Temporary() {
				return backoff.Permanent(err)
			}
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		body = data
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(s.newBackOff(), s.maxRetries), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	return body, nil
}

func (s *Scraper) fetchOnce(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	return data, nil
}

// CompetitionDir returns the directory name of a competition page URL: its
// second-to-last path segment, e.g. "wc2016" for ".../season1516/wc2016/".
func CompetitionDir(url string) (string, error) {
	parts := strings.Split(url, "/")
	if len(parts) < 2 || parts[len(parts)-2] == "" {
		return "", fmt.Errorf("%w: %s", ErrBadURL, url)
	}
	return parts[len(parts)-2], nil
}

// ResolveURL joins a competition root URL and a result link. Only the last path
// segment of the link is used.
func ResolveURL(root, href string) string {
	name := links.FileName(href)
	switch {
	case strings.HasSuffix(root, "/"):
		return root + name
	case strings.HasSuffix(root, "index.htm"):
		return strings.TrimSuffix(root, "index.htm") + name
	default:
		return root + "/" + name
	}
}

// DownloadCompetitionPage stores the competition page at url as <comp>/<comp>.html
func (s *Scraper) DownloadCompetitionPage(ctx context.Context, url string, store Store) (string, Outcome, error) {
	comp, err := CompetitionDir(url)
	if err != nil {
		return "", Failed, err
	}

	name := comp + ".html"
	if store.HasFile(comp, name) {
		return comp, Skipped, nil
	}

	data, err := s.Fetch(ctx, url, s.pageTimeout)
	if err != nil {
		return comp, Failed, err
	}
	if err := store.WriteFile(comp, name, data); err != nil {
		return comp, Failed, fmt.Errorf("storing %s: %w", name, err)
	}
	return comp, Downloaded, nil
}

// DownloadDocument stores the document behind a result link in the competition directory
func (s *Scraper) DownloadDocument(ctx context.Context, root, href string, store Store, comp string) (Outcome, error) {
	name := links.FileName(href)
	if name == "" {
		return Failed, fmt.Errorf("%w: empty link %q", ErrBadURL, href)
	}
	if store.HasFile(comp, name) {
		return Skipped, nil
	}

	data, err := s.Fetch(ctx, ResolveURL(root, href), s.docTimeout)
	if err != nil {
		return Failed, err
	}
	if err := store.WriteFile(comp, name, data); err != nil {
		return Failed, fmt.Errorf("storing %s: %w", name, err)
	}
	return Downloaded, nil
}
