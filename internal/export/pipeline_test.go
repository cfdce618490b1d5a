package export_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openwaterdata/waterrights/internal/domain"
	"github.com/openwaterdata/waterrights/internal/export"
	"github.com/openwaterdata/waterrights/internal/filter"
	"github.com/openwaterdata/waterrights/internal/store"
)

// countingStore wraps the memory store, optionally overriding the count,
// and records how often it is queried.
type countingStore struct {
	*store.Memory
	count      *int64
	countCalls atomic.Int32
	fetchCalls atomic.Int32
	sitesErr   error
}

func newCountingStore() *countingStore {
	return &countingStore{Memory: store.NewMemory(store.SampleRecords())}
}

func (s *countingStore) CountRecords(ctx context.Context, pred filter.Predicate) (int64, error) {
	s.countCalls.Add(1)
	if s.count != nil {
		return *s.count, nil
	}
	return s.Memory.CountRecords(ctx, pred)
}

func (s *countingStore) Organizations(ctx context.Context, pred filter.Predicate) ([]domain.OrganizationRow, error) {
	s.fetchCalls.Add(1)
	return s.Memory.Organizations(ctx, pred)
}

func (s *countingStore) Sites(ctx context.Context, pred filter.Predicate) ([]domain.SiteRow, error) {
	s.fetchCalls.Add(1)
	if s.sitesErr != nil {
		return nil, s.sitesErr
	}
	return s.Memory.Sites(ctx, pred)
}

var downloadDay = time.Date(2024, 5, 1, 15, 4, 5, 0, time.UTC)

func newPipeline(s export.Store, max int64) *export.Pipeline {
	return export.NewPipeline(s, export.Options{
		MaxRecords:       max,
		FetchConcurrency: 3,
		Now:              func() time.Time { return downloadDay },
	})
}

func byState(states ...string) filter.Predicate {
	return filter.Build(domain.SearchCriteria{States: states})
}

// archive prepares and writes an export in one go.
func archive(t *testing.T, p *export.Pipeline, pred filter.Predicate, filterURL string) []byte {
	t.Helper()
	m, err := p.Prepare(context.Background(), pred, filterURL)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, m.Write(context.Background(), &buf))
	return buf.Bytes()
}

func readArchive(t *testing.T, data []byte) ([]string, map[string][]byte) {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	var names []string
	files := map[string][]byte{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		names = append(names, f.Name)
		files[f.Name] = b
	}
	return names, files
}

func TestPrepare_DegenerateNeverTouchesStore(t *testing.T) {
	s := newCountingStore()

	_, err := newPipeline(s, 100).Prepare(context.Background(), filter.True(), "")
	assert.ErrorIs(t, err, domain.ErrDegenerateCriteria)
	assert.Zero(t, s.countCalls.Load())
	assert.Zero(t, s.fetchCalls.Load())
}

func TestPrepare_NoMatchingRecords(t *testing.T) {
	s := newCountingStore()

	_, err := newPipeline(s, 100).Prepare(context.Background(), byState("WY"), "")
	assert.ErrorIs(t, err, domain.ErrNoMatchingRecords)
	assert.Zero(t, s.fetchCalls.Load())
}

func TestPrepare_CeilingStopsBeforeFetching(t *testing.T) {
	s := newCountingStore()
	over := int64(100001)
	s.count = &over

	_, err := newPipeline(s, 100000).Prepare(context.Background(), byState("CO"), "")

	var tooLarge *domain.ExportTooLargeError
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, int64(100001), tooLarge.Count)
	assert.Equal(t, int64(100000), tooLarge.Limit)
	assert.ErrorIs(t, err, domain.ErrExportTooLarge)
	assert.Zero(t, s.fetchCalls.Load())
}

func TestPrepare_AtCeilingIsAllowed(t *testing.T) {
	s := newCountingStore()

	m, err := newPipeline(s, 3).Prepare(context.Background(), byState("NM"), "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), m.Records)
}

func TestPrepare_SkipsEmptyCollections(t *testing.T) {
	m, err := newPipeline(newCountingStore(), 100).Prepare(context.Background(), byState("NM"), "")
	require.NoError(t, err)

	// No New Mexico site has a POD to POU link.
	assert.Equal(t, []string{
		"organizations.csv", "methods.csv", "variables.csv",
		"sites.csv", "watersources.csv", "waterallocations.csv", "citation.txt",
	}, m.FileNames())
	assert.Equal(t, downloadDay, m.Generated)
}

func TestPrepare_FetchErrorPropagates(t *testing.T) {
	s := newCountingStore()
	s.sitesErr = errors.New("relation does not exist")

	_, err := newPipeline(s, 100).Prepare(context.Background(), byState("NM"), "")
	assert.ErrorIs(t, err, s.sitesErr)
	assert.NotErrorIs(t, err, domain.ErrExportWrite)
}

func TestPrepare_ZeroCeilingUsesDefault(t *testing.T) {
	s := newCountingStore()
	over := export.DefaultMaxRecords + 1
	s.count = &over

	p := export.NewPipeline(s, export.Options{})
	_, err := p.Prepare(context.Background(), byState("CO"), "")

	var tooLarge *domain.ExportTooLargeError
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, int64(100000), tooLarge.Limit)
	assert.Zero(t, s.fetchCalls.Load())
}

func TestExport_WritesEveryEntryInOrder(t *testing.T) {
	data := archive(t, newPipeline(newCountingStore(), 100), byState("CO"), "https://example.org/map?s=CO")

	names, files := readArchive(t, data)
	assert.Equal(t, []string{
		"organizations.csv", "methods.csv", "variables.csv", "podsitetopousiterelationships.csv",
		"sites.csv", "watersources.csv", "waterallocations.csv", "citation.txt",
	}, names)

	sites, err := csv.NewReader(bytes.NewReader(files["sites.csv"])).ReadAll()
	require.NoError(t, err)
	require.Len(t, sites, 3)
	assert.Equal(t, "SiteUUID", sites[0][0])
	assert.Equal(t, "S_GJ_POD", sites[1][0])
	assert.Equal(t, "S_GJ_POU", sites[2][0])

	// One allocation row per linked site.
	allocs, err := csv.NewReader(bytes.NewReader(files["waterallocations.csv"])).ReadAll()
	require.NoError(t, err)
	assert.Len(t, allocs, 4)

	links := string(files["podsitetopousiterelationships.csv"])
	assert.Contains(t, links, "S_GJ_POD,S_GJ_POU,1950-01-01,")

	citation := string(files["citation.txt"])
	assert.Contains(t, citation, "Downloaded: 2024-05-01")
	assert.Contains(t, citation, "Records:    2")
	assert.Contains(t, citation, "https://example.org/map?s=CO")
	assert.Contains(t, citation, "waterallocations.csv")
}

func TestExport_CitationWithoutFilterURL(t *testing.T) {
	_, files := readArchive(t, archive(t, newPipeline(newCountingStore(), 100), byState("CA"), ""))
	citation := string(files["citation.txt"])
	assert.NotContains(t, citation, "Filters:")
	assert.Contains(t, citation, "Accessed 2024-05-01.")
}

type failingWriter struct {
	after int
	n     int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.n+len(p) > w.after {
		return 0, errors.New("broken pipe")
	}
	w.n += len(p)
	return len(p), nil
}

func TestWrite_FailureIsWriteError(t *testing.T) {
	m, err := newPipeline(newCountingStore(), 100).Prepare(context.Background(), byState("UT"), "")
	require.NoError(t, err)

	err = m.Write(context.Background(), &failingWriter{after: 64})

	var werr *domain.ExportWriteError
	require.ErrorAs(t, err, &werr)
	assert.ErrorIs(t, err, domain.ErrExportWrite)
	assert.False(t, domain.IsCallerError(err))
}

func TestWrite_CancelledBeforeFirstEntry(t *testing.T) {
	m, err := newPipeline(newCountingStore(), 100).Prepare(context.Background(), byState("UT"), "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err = m.Write(ctx, &buf)

	var werr *domain.ExportWriteError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, "organizations.csv", werr.Entry)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEntryRows(t *testing.T) {
	m, err := newPipeline(newCountingStore(), 100).Prepare(context.Background(), byState("UT"), "")
	require.NoError(t, err)

	rows := map[string]int{}
	for _, e := range m.Entries {
		rows[e.Name] = e.Rows()
	}
	assert.Equal(t, 1, rows["organizations.csv"])
	assert.Equal(t, 2, rows["methods.csv"])
	assert.Equal(t, 2, rows["sites.csv"])
	assert.Equal(t, 3, rows["waterallocations.csv"])
	assert.False(t, strings.Contains(strings.Join(m.FileNames(), ","), "podsitetopousiterelationships"))
}
