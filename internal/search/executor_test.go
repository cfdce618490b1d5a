package search_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openwaterdata/waterrights/internal/domain"
	"github.com/openwaterdata/waterrights/internal/filter"
	"github.com/openwaterdata/waterrights/internal/search"
	"github.com/openwaterdata/waterrights/internal/store"
)

type failingStore struct{ err error }

func (f failingStore) FindRecords(context.Context, filter.Predicate, int, int) ([]domain.Record, error) {
	return nil, f.err
}

// recordingStore remembers the window it was asked for.
type recordingStore struct {
	offset, limit int
}

func (r *recordingStore) FindRecords(_ context.Context, _ filter.Predicate, offset, limit int) ([]domain.Record, error) {
	r.offset, r.limit = offset, limit
	return nil, nil
}

func uuids(page domain.SearchResultPage) []string {
	out := make([]string, len(page.WaterRightsDetails))
	for i, r := range page.WaterRightsDetails {
		out[i] = r.UUID
	}
	return out
}

func TestSearch_AsksForOneExtraRecord(t *testing.T) {
	rs := &recordingStore{}
	_, err := search.NewExecutor(rs).Search(context.Background(), filter.True(), 3, 25)
	require.NoError(t, err)
	assert.Equal(t, 75, rs.offset)
	assert.Equal(t, 26, rs.limit)
}

func TestSearch_PagesCoverEveryRecordOnce(t *testing.T) {
	ex := search.NewExecutor(store.NewMemory(store.SampleRecords()))
	ctx := context.Background()

	var seen []string
	for n := 0; ; n++ {
		page, err := ex.Search(ctx, filter.True(), n, 3)
		require.NoError(t, err)
		assert.Equal(t, n, page.CurrentPageNumber)
		assert.LessOrEqual(t, len(page.WaterRightsDetails), 3)
		seen = append(seen, uuids(page)...)
		if !page.HasMoreResults {
			break
		}
	}

	assert.Equal(t, []string{
		"CODWR_WR1", "UTDWRi_WR1", "CODWR_WR2", "NMOSE_WR1",
		"CSWRCB_WR1", "NMOSE_WR2", "UTDWRi_WR2", "NMOSE_WR3",
	}, seen)
}

func TestSearch_ExactPageHasNoMore(t *testing.T) {
	ex := search.NewExecutor(store.NewMemory(store.SampleRecords()))
	pred := filter.Build(domain.SearchCriteria{States: []string{"UT"}})

	page, err := ex.Search(context.Background(), pred, 0, 2)
	require.NoError(t, err)
	assert.False(t, page.HasMoreResults)
	assert.Equal(t, []string{"UTDWRi_WR1", "UTDWRi_WR2"}, uuids(page))
}

func TestSearch_PastTheEndIsEmpty(t *testing.T) {
	ex := search.NewExecutor(store.NewMemory(store.SampleRecords()))

	page, err := ex.Search(context.Background(), filter.True(), 50, 10)
	require.NoError(t, err)
	assert.False(t, page.HasMoreResults)
	assert.NotNil(t, page.WaterRightsDetails)
	assert.Empty(t, page.WaterRightsDetails)
}

func TestSearch_HugePageDoesNotOverflow(t *testing.T) {
	ex := search.NewExecutor(store.NewMemory(store.SampleRecords()))

	for _, n := range []int{1 << 57, math.MaxInt / 100, math.MaxInt} {
		page, err := ex.Search(context.Background(), filter.True(), n, 100)
		require.NoError(t, err, "page %d", n)
		assert.Equal(t, n, page.CurrentPageNumber)
		assert.False(t, page.HasMoreResults)
		assert.NotNil(t, page.WaterRightsDetails)
		assert.Empty(t, page.WaterRightsDetails)
	}
}

func TestSearch_LastRepresentablePageReachesStore(t *testing.T) {
	last := (math.MaxInt-1)/100 - 1

	rs := &recordingStore{offset: -1}
	_, err := search.NewExecutor(rs).Search(context.Background(), filter.True(), last, 100)
	require.NoError(t, err)
	assert.Equal(t, last*100, rs.offset)
	assert.GreaterOrEqual(t, rs.offset, 0)

	rs = &recordingStore{offset: -1}
	_, err = search.NewExecutor(rs).Search(context.Background(), filter.True(), last+1, 100)
	require.NoError(t, err)
	assert.Equal(t, -1, rs.offset, "store must not be asked for a window past math.MaxInt")
}

func TestSearch_RejectsBadPaging(t *testing.T) {
	ex := search.NewExecutor(&recordingStore{})

	_, err := ex.Search(context.Background(), filter.True(), -1, 10)
	var pageErr *domain.InvalidPageError
	require.ErrorAs(t, err, &pageErr)
	assert.Equal(t, -1, *pageErr.Page)
	assert.True(t, domain.IsCallerError(err))

	_, err = ex.Search(context.Background(), filter.True(), 0, 0)
	assert.Error(t, err)
}

func TestSearch_WrapsStoreErrors(t *testing.T) {
	boom := errors.New("connection reset")
	_, err := search.NewExecutor(failingStore{err: boom}).Search(context.Background(), filter.True(), 0, 10)
	assert.ErrorIs(t, err, boom)
	assert.False(t, domain.IsCallerError(err))
}
