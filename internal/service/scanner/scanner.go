package scanner

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/xenixjr/webrisk-demo-repo/internal/model"
	"github.com/xenixjr/webrisk-demo-repo/internal/service/ctlog"
)

type entriesClient interface {
	GetEntries(ctx context.Context, source string, start, end int64) ([]ctlog.Entry, error)
	GetSTH(ctx context.Context, source string) (*ctlog.STH, error)
}

// Scanner sweeps CT log sources for certificates that name a brand.
type Scanner struct {
	client   entriesClient
	pageSize int64
	workers  int
	tail     int64
}

// New builds a Scanner. pageSize is the get-entries window per request,
// workers bounds how many sources are swept at once, and tail (when
// positive) limits each sweep to the newest tail entries of the log.
func New(client entriesClient, pageSize int64, workers int, tail int64) *Scanner {
	if pageSize <= 0 {
		pageSize = 1000
	}
	if workers <= 0 {
		workers = 1
	}
	return &Scanner{
		client:   client,
		pageSize: pageSize,
		workers:  workers,
		tail:     tail,
	}
}

// Scan sweeps every source for certificates whose extracted domains contain
// brand, case-insensitively. Sources fail independently: one that errors is
// abandoned with a warning and contributes no matches, while the remaining
// sources still report. Matches are grouped in source order regardless of
// worker count.
func (s *Scanner) Scan(ctx context.Context, brand string, sources []string) []model.Match {
	results := make([][]model.Match, len(sources))

	g := new(errgroup.Group)
	g.SetLimit(s.workers)
	for i, source := range sources {
		i, source := i, source
		g.Go(func() error {
			results[i] = s.scanSource(ctx, brand, source)
			return nil
		})
	}
	g.Wait()

	var matches []model.Match
	for _, r := range results {
		matches = append(matches, r...)
	}
	return matches
}

func (s *Scanner) scanSource(ctx context.Context, brand, source string) []model.Match {
	logger := slog.With("source", source)
	needle := strings.ToLower(brand)

	var start int64
	if s.tail > 0 {
		sth, err := s.client.GetSTH(ctx, source)
		if err != nil {
			logger.Warn("skipping source, STH unavailable", "error", err)
			return nil
		}
		start = max(0, sth.TreeSize-s.tail)
	}

	var matches []model.Match
	var scanned int64

	// The cursor always advances by a full page, even when the log returns
	// a short page. The sweep ends at the first empty page or fetch error.
	for cursor := start; ; cursor += s.pageSize {
		if ctx.Err() != nil {
			break
		}

		entries, err := s.client.GetEntries(ctx, source, cursor, cursor+s.pageSize-1)
		if err != nil {
			logger.Warn("abandoning source after fetch failure", "cursor", cursor, "error", err)
			break
		}
		if len(entries) == 0 {
			break
		}

		for i, entry := range entries {
			domains, err := ctlog.ExtractDomains(entry.LeafInput.LeafCertificate)
			if err != nil {
				logger.Debug("skipping undecodable entry", "index", cursor+int64(i), "error", err)
				continue
			}
			for _, domain := range domains {
				if strings.Contains(strings.ToLower(domain), needle) {
					matches = append(matches, model.Match{
						Domain:     domain,
						EntryIndex: cursor + int64(i),
						LogURL:     source,
					})
				}
			}
		}
		scanned += int64(len(entries))
	}

	logger.Info("source swept", "entries", scanned, "matches", len(matches))
	return matches
}
