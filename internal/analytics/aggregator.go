// Package analytics summarizes matching water rights by primary use.
package analytics

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/openwaterdata/waterrights/internal/domain"
	"github.com/openwaterdata/waterrights/internal/filter"
)

// Store groups the records matching a predicate by primary use category.
// Missing flow or volume contributes zero to the sums.
type Store interface {
	SummarizeByPrimaryUse(ctx context.Context, pred filter.Predicate) ([]domain.AnalyticsSummary, error)
}

// Aggregator produces the analytics summary table.
type Aggregator struct {
	store Store
}

func NewAggregator(store Store) *Aggregator {
	return &Aggregator{store: store}
}

// Summarize returns one row per primary use category with its record count
// and flow and volume totals, largest count first.
func (a *Aggregator) Summarize(ctx context.Context, pred filter.Predicate) ([]domain.AnalyticsSummary, error) {
	rows, err := a.store.SummarizeByPrimaryUse(ctx, pred)
	if err != nil {
		return nil, fmt.Errorf("summarize by primary use: %w", err)
	}
	Sort(rows)
	if rows == nil {
		rows = []domain.AnalyticsSummary{}
	}
	return rows, nil
}

// Group folds records into per-category summaries. Records without a
// primary use category share the "" bucket.
func Group(records []domain.Record) []domain.AnalyticsSummary {
	idx := map[string]int{}
	var out []domain.AnalyticsSummary
	for _, r := range records {
		i, ok := idx[r.PrimaryUseCategory]
		if !ok {
			i = len(out)
			idx[r.PrimaryUseCategory] = i
			out = append(out, domain.AnalyticsSummary{PrimaryUseCategoryName: r.PrimaryUseCategory})
		}
		out[i].Points++
		if r.Flow != nil {
			out[i].Flow += *r.Flow
		}
		if r.Volume != nil {
			out[i].Volume += *r.Volume
		}
	}
	Sort(out)
	return out
}

// Sort orders summaries by descending points, then category name.
func Sort(rows []domain.AnalyticsSummary) {
	slices.SortFunc(rows, func(a, b domain.AnalyticsSummary) int {
		if c := cmp.Compare(b.Points, a.Points); c != 0 {
			return c
		}
		return cmp.Compare(a.PrimaryUseCategoryName, b.PrimaryUseCategoryName)
	})
}
