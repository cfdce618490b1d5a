// Package export builds the bulk water-rights download: one CSV per related
// collection plus a citation, packed into a single zip archive.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zip"
	"golang.org/x/sync/errgroup"

	"github.com/openwaterdata/waterrights/internal/domain"
	"github.com/openwaterdata/waterrights/internal/filter"
)

// rowsPerCheck is how many CSV rows are written between cancellation checks.
const rowsPerCheck = 500

// DefaultMaxRecords is the export ceiling used when Options leaves it unset.
const DefaultMaxRecords int64 = 100000

// Options configures a Pipeline.
type Options struct {
	// MaxRecords is the largest matching-record count that may be exported.
	// Zero means DefaultMaxRecords.
	MaxRecords int64
	// FetchConcurrency bounds the concurrent collection queries.
	FetchConcurrency int
	// Now stamps the citation. Defaults to time.Now.
	Now func() time.Time
}

// Pipeline runs bulk exports against a Store.
type Pipeline struct {
	store Store
	opts  Options
}

func NewPipeline(store Store, opts Options) *Pipeline {
	if opts.MaxRecords <= 0 {
		opts.MaxRecords = DefaultMaxRecords
	}
	if opts.FetchConcurrency <= 0 {
		opts.FetchConcurrency = 1
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Pipeline{store: store, opts: opts}
}

// Entry is one CSV file of a manifest.
type Entry struct {
	Name  string
	table *table
}

// Rows is the number of data rows in the entry.
func (e Entry) Rows() int { return e.table.Len() }

// Manifest is a fully fetched export, ready to be written.
type Manifest struct {
	Entries   []Entry
	Records   int64
	FilterURL string
	Generated time.Time
}

// FileNames lists the archive entries in write order, citation last.
func (m *Manifest) FileNames() []string {
	names := make([]string, 0, len(m.Entries)+1)
	for _, e := range m.Entries {
		names = append(names, e.Name)
	}
	return append(names, CitationFileName)
}

// Prepare checks the request and fetches every collection. Nothing is
// written, so any error here can still be reported to the caller cleanly.
//
// A neutral predicate is rejected before the store is touched. The record
// count is checked against MaxRecords before any collection is fetched.
func (p *Pipeline) Prepare(ctx context.Context, pred filter.Predicate, filterURL string) (*Manifest, error) {
	if pred.IsNeutral() {
		return nil, domain.ErrDegenerateCriteria
	}

	count, err := p.store.CountRecords(ctx, pred)
	if err != nil {
		return nil, fmt.Errorf("count export records: %w", err)
	}
	if count == 0 {
		return nil, domain.ErrNoMatchingRecords
	}
	if count > p.opts.MaxRecords {
		return nil, &domain.ExportTooLargeError{Count: count, Limit: p.opts.MaxRecords}
	}

	tables := make([]*table, len(collections))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.FetchConcurrency)
	for i, c := range collections {
		g.Go(func() error {
			t, err := c.fetch(gctx, p.store, pred)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", c.name, err)
			}
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	m := &Manifest{
		Records:   count,
		FilterURL: filterURL,
		Generated: p.opts.Now(),
	}
	for i, c := range collections {
		if tables[i].Len() == 0 {
			continue
		}
		m.Entries = append(m.Entries, Entry{Name: c.name, table: tables[i]})
	}
	return m, nil
}

// Write streams the archive to w: the CSV entries in order, then the
// citation. Entries are written one at a time. The archive writer is closed
// on every path; any failure, including cancellation, is returned as an
// *domain.ExportWriteError and w must then be treated as garbage.
func (m *Manifest) Write(ctx context.Context, w io.Writer) (err error) {
	zw := zip.NewWriter(w)
	defer func() {
		closeErr := zw.Close()
		if err == nil && closeErr != nil {
			err = &domain.ExportWriteError{Err: fmt.Errorf("close archive: %w", closeErr)}
		}
	}()

	for _, e := range m.Entries {
		if err := ctx.Err(); err != nil {
			return &domain.ExportWriteError{Entry: e.Name, Err: err}
		}
		if err := writeEntry(ctx, zw, e); err != nil {
			return &domain.ExportWriteError{Entry: e.Name, Err: err}
		}
	}

	if err := ctx.Err(); err != nil {
		return &domain.ExportWriteError{Entry: CitationFileName, Err: err}
	}
	fw, err := zw.Create(CitationFileName)
	if err != nil {
		return &domain.ExportWriteError{Entry: CitationFileName, Err: err}
	}
	if err := writeCitation(fw, m.Generated, m.Records, m.FilterURL, m.FileNames()); err != nil {
		return &domain.ExportWriteError{Entry: CitationFileName, Err: err}
	}
	return nil
}

func writeEntry(ctx context.Context, zw *zip.Writer, e Entry) error {
	fw, err := zw.Create(e.Name)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(fw)
	if err := cw.Write(e.table.header); err != nil {
		return err
	}

	buf := make([]string, len(e.table.header))
	n := e.table.Len()
	for i := 0; i < n; i++ {
		if err := cw.Write(e.table.record(i, buf)); err != nil {
			return err
		}
		if (i+1)%rowsPerCheck == 0 {
			cw.Flush()
			if err := cw.Error(); err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
