package export

import (
	"context"

	"github.com/openwaterdata/waterrights/internal/domain"
	"github.com/openwaterdata/waterrights/internal/filter"
)

// Store answers the count and per-collection queries of an export. Each
// collection method returns rows related to the matching records,
// deduplicated and ordered by key.
type Store interface {
	CountRecords(ctx context.Context, pred filter.Predicate) (int64, error)

	Organizations(ctx context.Context, pred filter.Predicate) ([]domain.OrganizationRow, error)
	Methods(ctx context.Context, pred filter.Predicate) ([]domain.MethodRow, error)
	Variables(ctx context.Context, pred filter.Predicate) ([]domain.VariableRow, error)
	PodToPou(ctx context.Context, pred filter.Predicate) ([]domain.PodToPouRow, error)
	Sites(ctx context.Context, pred filter.Predicate) ([]domain.SiteRow, error)
	WaterSources(ctx context.Context, pred filter.Predicate) ([]domain.WaterSourceRow, error)
	WaterAllocations(ctx context.Context, pred filter.Predicate) ([]domain.WaterAllocationRow, error)
}

type fetchFunc func(ctx context.Context, s Store, pred filter.Predicate) (*table, error)

type collection struct {
	name  string
	fetch fetchFunc
}

// collections is the archive layout, in entry order. The citation is
// appended after these.
var collections = []collection{
	{"organizations.csv", fetchAs(Store.Organizations)},
	{"methods.csv", fetchAs(Store.Methods)},
	{"variables.csv", fetchAs(Store.Variables)},
	{"podsitetopousiterelationships.csv", fetchAs(Store.PodToPou)},
	{"sites.csv", fetchAs(Store.Sites)},
	{"watersources.csv", fetchAs(Store.WaterSources)},
	{"waterallocations.csv", fetchAs(Store.WaterAllocations)},
}

// CitationFileName is the last entry of every archive.
const CitationFileName = "citation.txt"

func fetchAs[T any](f func(Store, context.Context, filter.Predicate) ([]T, error)) fetchFunc {
	return func(ctx context.Context, s Store, pred filter.Predicate) (*table, error) {
		rows, err := f(s, ctx, pred)
		if err != nil {
			return nil, err
		}
		return newTable(rows)
	}
}
