package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/openwaterdata/waterrights/internal/analytics"
	"github.com/openwaterdata/waterrights/internal/domain"
	"github.com/openwaterdata/waterrights/internal/filter"
)

// Memory is a record store over an in-process slice. Predicates are
// evaluated with Match rather than SQL.
type Memory struct {
	mu      sync.RWMutex
	records []domain.Record
}

// NewMemory copies records into a new store.
func NewMemory(records []domain.Record) *Memory {
	m := &Memory{}
	m.Replace(records)
	return m
}

// Replace swaps the whole data set.
func (m *Memory) Replace(records []domain.Record) {
	cp := slices.Clone(records)
	slices.SortStableFunc(cp, compareRecords)

	m.mu.Lock()
	m.records = cp
	m.mu.Unlock()
}

// compareRecords orders by priority date (undated last), then native id,
// then surrogate id.
func compareRecords(a, b domain.Record) int {
	switch {
	case a.PriorityDate == nil && b.PriorityDate != nil:
		return 1
	case a.PriorityDate != nil && b.PriorityDate == nil:
		return -1
	case a.PriorityDate != nil && b.PriorityDate != nil:
		if c := a.PriorityDate.Compare(*b.PriorityDate); c != 0 {
			return c
		}
	}
	if c := strings.Compare(a.NativeID, b.NativeID); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func (m *Memory) matching(ctx context.Context, pred filter.Predicate) ([]domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.Record
	for i := range m.records {
		if pred.Match(&m.records[i]) {
			out = append(out, m.records[i])
		}
	}
	return out, nil
}

func (m *Memory) CountRecords(ctx context.Context, pred filter.Predicate) (int64, error) {
	recs, err := m.matching(ctx, pred)
	if err != nil {
		return 0, err
	}
	return int64(len(recs)), nil
}

func (m *Memory) FindRecords(ctx context.Context, pred filter.Predicate, offset, limit int) ([]domain.Record, error) {
	recs, err := m.matching(ctx, pred)
	if err != nil {
		return nil, err
	}
	if offset >= len(recs) {
		return nil, nil
	}
	end := min(offset+limit, len(recs))
	return recs[offset:end], nil
}

func (m *Memory) SummarizeByPrimaryUse(ctx context.Context, pred filter.Predicate) ([]domain.AnalyticsSummary, error) {
	recs, err := m.matching(ctx, pred)
	if err != nil {
		return nil, err
	}
	return analytics.Group(recs), nil
}

func (m *Memory) Record(ctx context.Context, allocationUUID string) (domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return domain.Record{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.records {
		if r.UUID == allocationUUID {
			return r, nil
		}
	}
	return domain.Record{}, fmt.Errorf("water right %q: %w", allocationUUID, domain.ErrNotFound)
}

// Site returns the first copy of a site found on any record. Every copy
// carries the same rows.
func (m *Memory) Site(ctx context.Context, siteUUID string) (domain.Site, error) {
	if err := ctx.Err(); err != nil {
		return domain.Site{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.records {
		for _, s := range r.Sites {
			if s.SiteUUID == siteUUID {
				return s, nil
			}
		}
	}
	return domain.Site{}, fmt.Errorf("site %q: %w", siteUUID, domain.ErrNotFound)
}

func (m *Memory) RecordsBySite(ctx context.Context, siteUUID string) ([]domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.Record
	for _, r := range m.records {
		for _, s := range r.Sites {
			if s.SiteUUID == siteUUID {
				out = append(out, r)
				break
			}
		}
	}
	return out, nil
}

func (m *Memory) Organizations(ctx context.Context, pred filter.Predicate) ([]domain.OrganizationRow, error) {
	recs, err := m.matching(ctx, pred)
	if err != nil {
		return nil, err
	}
	return distinctBy(recs, func(r domain.Record, emit func(string, domain.OrganizationRow)) {
		emit(r.Organization.OrganizationUUID, r.Organization)
	}), nil
}

func (m *Memory) Methods(ctx context.Context, pred filter.Predicate) ([]domain.MethodRow, error) {
	recs, err := m.matching(ctx, pred)
	if err != nil {
		return nil, err
	}
	return distinctBy(recs, func(r domain.Record, emit func(string, domain.MethodRow)) {
		emit(r.Method.MethodUUID, r.Method)
	}), nil
}

func (m *Memory) Variables(ctx context.Context, pred filter.Predicate) ([]domain.VariableRow, error) {
	recs, err := m.matching(ctx, pred)
	if err != nil {
		return nil, err
	}
	return distinctBy(recs, func(r domain.Record, emit func(string, domain.VariableRow)) {
		emit(r.Variable.VariableSpecificUUID, r.Variable)
	}), nil
}

func (m *Memory) PodToPou(ctx context.Context, pred filter.Predicate) ([]domain.PodToPouRow, error) {
	recs, err := m.matching(ctx, pred)
	if err != nil {
		return nil, err
	}
	return distinctBy(recs, func(r domain.Record, emit func(string, domain.PodToPouRow)) {
		for _, s := range r.Sites {
			for _, l := range s.PodToPou {
				emit(l.PODSiteUUID+"|"+l.POUSiteUUID, l)
			}
		}
	}), nil
}

func (m *Memory) Sites(ctx context.Context, pred filter.Predicate) ([]domain.SiteRow, error) {
	recs, err := m.matching(ctx, pred)
	if err != nil {
		return nil, err
	}
	return distinctBy(recs, func(r domain.Record, emit func(string, domain.SiteRow)) {
		for _, s := range r.Sites {
			emit(s.SiteUUID, s.SiteRow)
		}
	}), nil
}

func (m *Memory) WaterSources(ctx context.Context, pred filter.Predicate) ([]domain.WaterSourceRow, error) {
	recs, err := m.matching(ctx, pred)
	if err != nil {
		return nil, err
	}
	return distinctBy(recs, func(r domain.Record, emit func(string, domain.WaterSourceRow)) {
		for _, s := range r.Sites {
			for _, ws := range s.WaterSources {
				emit(ws.WaterSourceUUID, ws)
			}
		}
	}), nil
}

func (m *Memory) WaterAllocations(ctx context.Context, pred filter.Predicate) ([]domain.WaterAllocationRow, error) {
	recs, err := m.matching(ctx, pred)
	if err != nil {
		return nil, err
	}
	return distinctBy(recs, func(r domain.Record, emit func(string, domain.WaterAllocationRow)) {
		for _, row := range allocationRows(r) {
			emit(row.AllocationUUID+"|"+row.SiteUUID, row)
		}
	}), nil
}

// allocationRows flattens a record into one row per linked site, or a single
// site-less row when it has none.
func allocationRows(r domain.Record) []domain.WaterAllocationRow {
	base := domain.WaterAllocationRow{
		AllocationUUID:                  r.UUID,
		OrganizationUUID:                r.Organization.OrganizationUUID,
		VariableSpecificUUID:            r.Variable.VariableSpecificUUID,
		MethodUUID:                      r.Method.MethodUUID,
		AllocationNativeID:              r.NativeID,
		AllocationOwner:                 r.Owner,
		AllocationOwnerClassificationCV: r.OwnerClassification,
		AllocationPriorityDate:          r.PriorityDate,
		AllocationExpirationDate:        r.ExpirationDate,
		AllocationLegalStatusCV:         r.LegalStatus,
		AllocationFlowCFS:               r.Flow,
		AllocationVolumeAF:              r.Volume,
		BeneficialUseCategory:           strings.Join(r.BeneficialUseNames(), ","),
		PrimaryBeneficialUseCategory:    r.PrimaryUseCategory,
		ExemptOfVolumeFlowPriority:      r.ExemptOfVolumeFlowPriority,
	}
	if len(r.Sites) == 0 {
		return []domain.WaterAllocationRow{base}
	}
	out := make([]domain.WaterAllocationRow, 0, len(r.Sites))
	for _, s := range r.Sites {
		row := base
		row.SiteUUID = s.SiteUUID
		out = append(out, row)
	}
	return out
}

// distinctBy collects the rows emitted per record, keeping the first row
// seen for each key, and returns them ordered by key.
func distinctBy[T any](recs []domain.Record, each func(domain.Record, func(string, T))) []T {
	seen := map[string]T{}
	var keys []string
	emit := func(key string, row T) {
		if key == "" {
			return
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = row
		keys = append(keys, key)
	}
	for _, r := range recs {
		each(r, emit)
	}

	slices.Sort(keys)
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		out = append(out, seen[k])
	}
	return out
}
