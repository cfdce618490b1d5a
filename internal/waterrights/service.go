package waterrights

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/openwaterdata/waterrights/internal/domain"
	"github.com/openwaterdata/waterrights/internal/export"
	"github.com/openwaterdata/waterrights/internal/filter"
	"github.com/openwaterdata/waterrights/internal/spatial"
)

// predicate validates c, resolves its basins and geometries, and builds the
// shared filter.
func (s *Service) predicate(c domain.SearchCriteria) (filter.Predicate, error) {
	if err := c.Validate(); err != nil {
		return filter.Predicate{}, err
	}
	resolved, err := s.resolver.Resolve(c)
	if err != nil {
		return filter.Predicate{}, err
	}
	return filter.Build(resolved), nil
}

// FindWaterRights returns one page of matching water rights. PageNumber is
// required.
func (s *Service) FindWaterRights(ctx context.Context, c domain.SearchCriteria) (domain.SearchResultPage, error) {
	if c.PageNumber == nil {
		return domain.SearchResultPage{}, &domain.InvalidPageError{}
	}
	if *c.PageNumber < 0 {
		return domain.SearchResultPage{}, &domain.InvalidPageError{Page: c.PageNumber}
	}
	pred, err := s.predicate(c)
	if err != nil {
		return domain.SearchResultPage{}, err
	}
	return s.search.Search(ctx, pred, *c.PageNumber, s.pageSize)
}

// Analytics summarizes the matching water rights by primary use category.
func (s *Service) Analytics(ctx context.Context, c domain.SearchCriteria) ([]domain.AnalyticsSummary, error) {
	pred, err := s.predicate(c)
	if err != nil {
		return nil, err
	}
	return s.analyze.Summarize(ctx, pred)
}

// PrepareExport runs every check and fetch of a bulk download. The returned
// manifest only has to be written.
func (s *Service) PrepareExport(ctx context.Context, c domain.SearchCriteria) (*export.Manifest, error) {
	pred, err := s.predicate(c)
	if err != nil {
		return nil, err
	}
	return s.export.Prepare(ctx, pred, c.FilterURL)
}

func (s *Service) WaterRightDetails(ctx context.Context, allocationUUID string) (domain.WaterRightDetails, error) {
	rec, err := s.store.Record(ctx, allocationUUID)
	if err != nil {
		return domain.WaterRightDetails{}, err
	}
	return rec.Details(), nil
}

// SiteInfo lists the sites of one water right.
func (s *Service) SiteInfo(ctx context.Context, allocationUUID string) ([]domain.SiteRow, error) {
	rec, err := s.store.Record(ctx, allocationUUID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.SiteRow, 0, len(rec.Sites))
	for _, site := range rec.Sites {
		out = append(out, site.SiteRow)
	}
	return out, nil
}

// SourceInfo lists the distinct water sources feeding one water right's
// sites, ordered by UUID.
func (s *Service) SourceInfo(ctx context.Context, allocationUUID string) ([]domain.WaterSourceRow, error) {
	rec, err := s.store.Record(ctx, allocationUUID)
	if err != nil {
		return nil, err
	}
	var sources []domain.WaterSourceRow
	for _, site := range rec.Sites {
		sources = append(sources, site.WaterSources...)
	}
	return distinctSources(sources), nil
}

// distinctSources dedupes sources by UUID and orders them by UUID. The
// result is never nil.
func distinctSources(sources []domain.WaterSourceRow) []domain.WaterSourceRow {
	seen := map[string]bool{}
	out := []domain.WaterSourceRow{}
	for _, ws := range sources {
		if seen[ws.WaterSourceUUID] {
			continue
		}
		seen[ws.WaterSourceUUID] = true
		out = append(out, ws)
	}
	slices.SortFunc(out, func(a, b domain.WaterSourceRow) int {
		return strings.Compare(a.WaterSourceUUID, b.WaterSourceUUID)
	})
	return out
}

// SiteLocations returns the located sites of one water right. Sites
// without both coordinates are left out.
func (s *Service) SiteLocations(ctx context.Context, allocationUUID string) ([]domain.SiteLocation, error) {
	rec, err := s.store.Record(ctx, allocationUUID)
	if err != nil {
		return nil, err
	}
	out := []domain.SiteLocation{}
	for _, site := range rec.Sites {
		if !site.HasLocation() {
			continue
		}
		out = append(out, location(site))
	}
	return out, nil
}

func location(site domain.Site) domain.SiteLocation {
	return domain.SiteLocation{
		SiteUUID:  site.SiteUUID,
		PodOrPou:  site.PODorPOUSite,
		Latitude:  *site.Latitude,
		Longitude: *site.Longitude,
	}
}

// DigestsBySite lists the water rights attached to a site. An unknown site
// is reported as not found.
func (s *Service) DigestsBySite(ctx context.Context, siteUUID string) ([]domain.WaterRightDigest, error) {
	recs, err := s.store.RecordsBySite(ctx, siteUUID)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("site %q: %w", siteUUID, domain.ErrNotFound)
	}
	out := make([]domain.WaterRightDigest, len(recs))
	for i, r := range recs {
		out[i] = r.Digest()
	}
	return out, nil
}

func (s *Service) SiteDetails(ctx context.Context, siteUUID string) (domain.SiteRow, error) {
	site, err := s.store.Site(ctx, siteUUID)
	if err != nil {
		return domain.SiteRow{}, err
	}
	return site.SiteRow, nil
}

// SiteLocation returns the point of one site. A site without coordinates
// has no location and is reported as not found.
func (s *Service) SiteLocation(ctx context.Context, siteUUID string) (domain.SiteLocation, error) {
	site, err := s.store.Site(ctx, siteUUID)
	if err != nil {
		return domain.SiteLocation{}, err
	}
	if !site.HasLocation() {
		return domain.SiteLocation{}, fmt.Errorf("site %q has no location: %w", siteUUID, domain.ErrNotFound)
	}
	return location(site), nil
}

// SiteSources lists the water sources of one site, ordered by UUID.
func (s *Service) SiteSources(ctx context.Context, siteUUID string) ([]domain.WaterSourceRow, error) {
	site, err := s.store.Site(ctx, siteUUID)
	if err != nil {
		return nil, err
	}
	return distinctSources(site.WaterSources), nil
}

// SiteRights lists the water rights of one site in search order. A known
// site without rights yields an empty list.
func (s *Service) SiteRights(ctx context.Context, siteUUID string) ([]domain.WaterRightInfo, error) {
	if _, err := s.store.Site(ctx, siteUUID); err != nil {
		return nil, err
	}
	recs, err := s.store.RecordsBySite(ctx, siteUUID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.WaterRightInfo, len(recs))
	for i, r := range recs {
		out[i] = r.Info()
	}
	return out, nil
}

// RiverBasins lists the basin names accepted in riverBasinNames.
func (s *Service) RiverBasins() []string {
	return spatial.BasinNames()
}
