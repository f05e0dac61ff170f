// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gateerrors "github.com/sirseerhq/sirseer-gate/internal/errors"
	"github.com/sirseerhq/sirseer-gate/internal/logging"
)

const (
	// MaxPageSize is the largest page the GitHub file listing endpoint returns.
	MaxPageSize = 100

	// DefaultPageSize is the page size used when none is configured.
	DefaultPageSize = MaxPageSize
)

// Result describes how a pull request's change set relates to the target file.
type Result int

const (
	// TargetFileNotChanged means the scan finished without seeing the target.
	TargetFileNotChanged Result = iota

	// OnlyTargetFileChanged means every changed file matched the target.
	OnlyTargetFileChanged

	// OtherFilesAlsoChanged means a non-target file was seen. The scan
	// stops at the first such file.
	OtherFilesAlsoChanged
)

// String returns the name used in step outputs and logs.
func (r Result) String() string {
	switch r {
	case TargetFileNotChanged:
		return "target-not-changed"
	case OnlyTargetFileChanged:
		return "only-target-changed"
	case OtherFilesAlsoChanged:
		return "other-files-changed"
	default:
		return fmt.Sprintf("result(%d)", int(r))
	}
}

// PageFetcher returns one page of changed filenames. Pages are numbered from 1.
// A page shorter than pageSize (including an empty one) is the last page.
type PageFetcher interface {
	FetchPage(ctx context.Context, page, pageSize int) ([]string, error)
}

// PageFetcherFunc adapts a plain function to PageFetcher.
type PageFetcherFunc func(ctx context.Context, page, pageSize int) ([]string, error)

// FetchPage calls f.
func (f PageFetcherFunc) FetchPage(ctx context.Context, page, pageSize int) ([]string, error) {
	return f(ctx, page, pageSize)
}

// Observer is notified after every page is fetched.
type Observer interface {
	PageFetched(page, count int)
}

// Outcome is the result of a classification run together with what it took
// to get there.
type Outcome struct {
	Result         Result
	PagesFetched   int
	FilesScanned   int
	FirstNonTarget string
}

// Classifier decides whether a target file is the only file changed in a pull request.
// It holds no state between runs.
type Classifier struct {
	fetcher      PageFetcher
	matcher      Matcher
	pageSize     int
	fetchTimeout time.Duration
	observer     Observer
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithPageSize sets the requested page size. Values outside 1..MaxPageSize are
// clamped.
func WithPageSize(size int) Option {
	return func(c *Classifier) {
		switch {
		case size <= 0:
			c.pageSize = DefaultPageSize
		case size > MaxPageSize:
			c.pageSize = MaxPageSize
		default:
			c.pageSize = size
		}
	}
}

// WithFetchTimeout bounds every single page fetch. Zero means no bound beyond ctx.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Classifier) {
		c.fetchTimeout = d
	}
}

// WithObserver registers an Observer for page fetches.
func WithObserver(o Observer) Option {
	return func(c *Classifier) {
		c.observer = o
	}
}

// New creates a Classifier over the given fetcher and target matcher.
func New(fetcher PageFetcher, matcher Matcher, opts ...Option) *Classifier {
	c := &Classifier{
		fetcher:  fetcher,
		matcher:  matcher,
		pageSize: DefaultPageSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify retrieves the changed files page by page and classifies them
// against matcher. See Classifier.Run.
func Classify(ctx context.Context, fetcher PageFetcher, matcher Matcher, opts ...Option) (Result, error) {
	out, err := New(fetcher, matcher, opts...).Run(ctx)
	if err != nil {
		return TargetFileNotChanged, err
	}
	return out.Result, nil
}

// Run scans pages 1, 2, ... in order. The first filename that does not match
// ends the run with OtherFilesAlsoChanged and no further fetches. Otherwise the
// run stops after the first page shorter than the page size and reports
// OnlyTargetFileChanged if any filename matched, TargetFileNotChanged if none did.
//
// A failed fetch aborts the run; the error wraps errors.ErrFetch and no Outcome
// is returned.
func (c *Classifier) Run(ctx context.Context) (*Outcome, error) {
	log := logging.FromContext(ctx)
	out := &Outcome{Result: TargetFileNotChanged}
	found := false

	stopped, err := c.scan(ctx, out, func(filename string) bool {
		if c.matcher.Match(filename) {
			found = true
			return false
		}
		out.Result = OtherFilesAlsoChanged
		out.FirstNonTarget = filename
		return true
	})
	if err != nil {
		return nil, err
	}

	if !stopped && found {
		out.Result = OnlyTargetFileChanged
	}

	log.Debug("classified pull request files",
		slog.String("result", out.Result.String()),
		slog.Int("pages", out.PagesFetched),
		slog.Int("files", out.FilesScanned),
	)
	return out, nil
}

// Contains reports whether any changed file matches. It stops at the first
// match; otherwise it reads pages until the last one.
func (c *Classifier) Contains(ctx context.Context) (bool, error) {
	out := &Outcome{}
	found, err := c.scan(ctx, out, func(filename string) bool {
		return c.matcher.Match(filename)
	})
	if err != nil {
		return false, err
	}

	logging.FromContext(ctx).Debug("searched pull request files",
		slog.Bool("found", found),
		slog.Int("pages", out.PagesFetched),
		slog.Int("files", out.FilesScanned),
	)
	return found, nil
}

// scan walks the pages and calls visit for each filename in order until visit
// returns true. It reports whether visit stopped the walk.
func (c *Classifier) scan(ctx context.Context, out *Outcome, visit func(string) bool) (bool, error) {
	for page := 1; ; page++ {
		files, err := c.fetch(ctx, page)
		if err != nil {
			return false, err
		}

		out.PagesFetched++
		if c.observer != nil {
			c.observer.PageFetched(page, len(files))
		}

		for _, filename := range files {
			out.FilesScanned++
			if visit(filename) {
				return true, nil
			}
		}

		if len(files) != c.pageSize {
			return false, nil
		}
	}
}

func (c *Classifier) fetch(ctx context.Context, page int) ([]string, error) {
	if c.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.fetchTimeout)
		defer cancel()
	}

	files, err := c.fetcher.FetchPage(ctx, page, c.pageSize)
	if err != nil {
		if errors.Is(err, gateerrors.ErrFetch) {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		return nil, fmt.Errorf("page %d: %w: %w", page, gateerrors.ErrFetch, err)
	}
	return files, nil
}
