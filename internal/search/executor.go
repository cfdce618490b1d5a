// Package search runs paged water-right searches.
package search

import (
	"context"
	"fmt"
	"math"

	"github.com/openwaterdata/waterrights/internal/domain"
	"github.com/openwaterdata/waterrights/internal/filter"
)

// Store returns matching records in a stable order: priority date ascending
// with undated records last, then native id, then surrogate id.
type Store interface {
	FindRecords(ctx context.Context, pred filter.Predicate, offset, limit int) ([]domain.Record, error)
}

// Executor pages through matching records.
type Executor struct {
	store Store
}

func NewExecutor(store Store) *Executor {
	return &Executor{store: store}
}

// Search returns page pageNumber (zero-based) of pageSize records. It asks
// the store for one record more than a page; HasMoreResults is set when
// that extra record exists, and the record itself is dropped.
func (e *Executor) Search(ctx context.Context, pred filter.Predicate, pageNumber, pageSize int) (domain.SearchResultPage, error) {
	if pageNumber < 0 {
		return domain.SearchResultPage{}, &domain.InvalidPageError{Page: &pageNumber}
	}
	if pageSize <= 0 {
		return domain.SearchResultPage{}, fmt.Errorf("page size must be positive, got %d", pageSize)
	}

	// A page whose window does not fit in an int lies past any real result
	// set.
	if pageNumber > (math.MaxInt-1)/pageSize-1 {
		return domain.SearchResultPage{
			CurrentPageNumber:  pageNumber,
			WaterRightsDetails: []domain.Record{},
		}, nil
	}

	recs, err := e.store.FindRecords(ctx, pred, pageNumber*pageSize, pageSize+1)
	if err != nil {
		return domain.SearchResultPage{}, fmt.Errorf("find records page %d: %w", pageNumber, err)
	}

	more := len(recs) > pageSize
	if more {
		recs = recs[:pageSize]
	}
	if recs == nil {
		recs = []domain.Record{}
	}

	return domain.SearchResultPage{
		CurrentPageNumber:  pageNumber,
		HasMoreResults:     more,
		WaterRightsDetails: recs,
	}, nil
}
