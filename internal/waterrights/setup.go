// Package waterrights exposes water-right search, analytics, detail and
// bulk download over HTTP.
package waterrights

import (
	"context"

	"github.com/openwaterdata/waterrights/internal/analytics"
	"github.com/openwaterdata/waterrights/internal/domain"
	"github.com/openwaterdata/waterrights/internal/export"
	"github.com/openwaterdata/waterrights/internal/search"
	"github.com/openwaterdata/waterrights/internal/spatial"
)

// Store is everything the service reads. store.Postgres and store.Memory
// both satisfy it.
type Store interface {
	search.Store
	analytics.Store
	export.Store

	Record(ctx context.Context, allocationUUID string) (domain.Record, error)
	Site(ctx context.Context, siteUUID string) (domain.Site, error)
	RecordsBySite(ctx context.Context, siteUUID string) ([]domain.Record, error)
}

// Options tunes a Service.
type Options struct {
	PageSize int
	Export   export.Options
}

// Service composes the resolver, predicate builder, executor, aggregator and
// export pipeline over one Store.
type Service struct {
	store    Store
	resolver *spatial.Resolver
	search   *search.Executor
	analyze  *analytics.Aggregator
	export   *export.Pipeline
	pageSize int
}

func NewService(store Store, opts Options) *Service {
	if opts.PageSize <= 0 {
		opts.PageSize = 100
	}
	return &Service{
		store:    store,
		resolver: spatial.NewResolver(),
		search:   search.NewExecutor(store),
		analyze:  analytics.NewAggregator(store),
		export:   export.NewPipeline(store, opts.Export),
		pageSize: opts.PageSize,
	}
}
