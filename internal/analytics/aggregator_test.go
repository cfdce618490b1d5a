package analytics_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openwaterdata/waterrights/internal/analytics"
	"github.com/openwaterdata/waterrights/internal/domain"
	"github.com/openwaterdata/waterrights/internal/filter"
	"github.com/openwaterdata/waterrights/internal/store"
)

type stubStore struct {
	rows []domain.AnalyticsSummary
	err  error
}

func (s stubStore) SummarizeByPrimaryUse(context.Context, filter.Predicate) ([]domain.AnalyticsSummary, error) {
	return s.rows, s.err
}

func TestSummarize_PointsAddUpToMatches(t *testing.T) {
	mem := store.NewMemory(store.SampleRecords())
	agg := analytics.NewAggregator(mem)
	ctx := context.Background()

	for _, c := range []domain.SearchCriteria{
		{},
		{States: []string{"NM"}},
		{MinimumFlow: ptr(10.0)},
		{BeneficialUses: []string{"Municipal"}},
	} {
		pred := filter.Build(c)
		rows, err := agg.Summarize(ctx, pred)
		require.NoError(t, err)
		count, err := mem.CountRecords(ctx, pred)
		require.NoError(t, err)

		var points int64
		for _, r := range rows {
			points += r.Points
		}
		assert.Equal(t, count, points)
	}
}

func TestSummarize_MissingAmountsCountAsZero(t *testing.T) {
	rows, err := analytics.NewAggregator(store.NewMemory(store.SampleRecords())).
		Summarize(context.Background(), filter.Build(domain.SearchCriteria{States: []string{"NM"}}))
	require.NoError(t, err)

	assert.Equal(t, []domain.AnalyticsSummary{
		{PrimaryUseCategoryName: "Agriculture Irrigation", Points: 1, Flow: 0, Volume: 3000},
		{PrimaryUseCategoryName: "Domestic", Points: 1, Flow: 0, Volume: 1},
		{PrimaryUseCategoryName: "Municipal", Points: 1, Flow: 20, Volume: 15000},
	}, rows)
}

func TestSummarize_SortsStoreRows(t *testing.T) {
	agg := analytics.NewAggregator(stubStore{rows: []domain.AnalyticsSummary{
		{PrimaryUseCategoryName: "Municipal", Points: 2},
		{PrimaryUseCategoryName: "Irrigation", Points: 5},
		{PrimaryUseCategoryName: "", Points: 2},
	}})

	rows, err := agg.Summarize(context.Background(), filter.True())
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Irrigation", rows[0].PrimaryUseCategoryName)
	assert.Equal(t, "", rows[1].PrimaryUseCategoryName)
	assert.Equal(t, "Municipal", rows[2].PrimaryUseCategoryName)
}

func TestSummarize_EmptyIsNotNil(t *testing.T) {
	rows, err := analytics.NewAggregator(stubStore{}).Summarize(context.Background(), filter.True())
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestSummarize_WrapsStoreError(t *testing.T) {
	boom := errors.New("statement timeout")
	_, err := analytics.NewAggregator(stubStore{err: boom}).Summarize(context.Background(), filter.True())
	assert.ErrorIs(t, err, boom)
}

func ptr[T any](v T) *T { return &v }
