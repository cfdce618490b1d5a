package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/openwaterdata/waterrights/internal/db"
	"github.com/openwaterdata/waterrights/internal/domain"
	"github.com/openwaterdata/waterrights/internal/filter"
)

// recordOrder is the fixed search order. It must stay in step with
// compareRecords.
const recordOrder = "a.allocation_priority_date ASC NULLS LAST, a.allocation_native_id ASC, a.id ASC"

const siteColumns = `s.site_uuid, s.site_native_id, s.site_name, s.site_type_cv, s.pod_or_pou_site,
	s.latitude, s.longitude, s.coordinate_method_cv, s.county, s.state_cv, s.huc8, s.huc12`

// Postgres reads water rights from the waterrights schema through gorm.
type Postgres struct {
	gdb *gorm.DB
}

func NewPostgres(gdb *gorm.DB) *Postgres {
	return &Postgres{gdb: gdb}
}

// facts starts a query on the fact table, aliased as the predicate scopes
// expect, with pred applied.
func (p *Postgres) facts(ctx context.Context, pred filter.Predicate) *gorm.DB {
	return p.gdb.WithContext(ctx).
		Table(db.TableAllocationAmounts + " AS " + filter.FactAlias).
		Scopes(pred.Scope)
}

// siteUUIDs selects the sites linked to the matching records.
func (p *Postgres) siteUUIDs(ctx context.Context, pred filter.Predicate) *gorm.DB {
	return p.gdb.WithContext(ctx).
		Table(db.TableAllocationSites+" AS als").
		Select("als.site_uuid").
		Where("als.allocation_id IN (?)", p.facts(ctx, pred).Select("a.id"))
}

func (p *Postgres) CountRecords(ctx context.Context, pred filter.Predicate) (int64, error) {
	var n int64
	if err := p.facts(ctx, pred).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count allocation amounts: %w", err)
	}
	return n, nil
}

type factRow struct {
	db.AllocationAmount
	State string `gorm:"column:state"`
}

func (p *Postgres) FindRecords(ctx context.Context, pred filter.Predicate, offset, limit int) ([]domain.Record, error) {
	var rows []factRow
	err := p.facts(ctx, pred).
		Select("a.*, COALESCE(o.state, '') AS state").
		Joins("LEFT JOIN " + db.TableOrganizations + " o ON o.organization_uuid = a.organization_uuid").
		Order(recordOrder).
		Offset(offset).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("find allocation amounts: %w", err)
	}

	recs := make([]domain.Record, len(rows))
	ids := make([]int64, len(rows))
	for i, r := range rows {
		recs[i] = toRecord(r.AllocationAmount)
		recs[i].State = r.State
		ids[i] = r.ID
	}

	uses, err := p.beneficialUses(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range recs {
		recs[i].BeneficialUses = uses[recs[i].ID]
	}
	return recs, nil
}

// beneficialUses loads the uses of many allocations in one round trip.
func (p *Postgres) beneficialUses(ctx context.Context, ids []int64) (map[int64][]domain.BeneficialUse, error) {
	out := map[int64][]domain.BeneficialUse{}
	if len(ids) == 0 {
		return out, nil
	}

	var rows []db.AllocationBeneficialUse
	err := p.gdb.WithContext(ctx).
		Where("allocation_id = ANY(?)", pq.Array(ids)).
		Order("allocation_id, beneficial_use").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load beneficial uses: %w", err)
	}
	for _, r := range rows {
		out[r.AllocationID] = append(out[r.AllocationID], domain.BeneficialUse{
			Name:     r.BeneficialUse,
			WaDEName: r.BeneficialUseWaDE,
		})
	}
	return out, nil
}

func (p *Postgres) SummarizeByPrimaryUse(ctx context.Context, pred filter.Predicate) ([]domain.AnalyticsSummary, error) {
	var out []domain.AnalyticsSummary
	err := p.facts(ctx, pred).
		Select(`COALESCE(a.primary_use_category, '') AS primary_use_category_name,
			COUNT(*) AS points,
			COALESCE(SUM(a.allocation_flow_cfs), 0) AS flow,
			COALESCE(SUM(a.allocation_volume_af), 0) AS volume`).
		Group("COALESCE(a.primary_use_category, '')").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("summarize allocation amounts: %w", err)
	}
	return out, nil
}

func (p *Postgres) Organizations(ctx context.Context, pred filter.Predicate) ([]domain.OrganizationRow, error) {
	var out []domain.OrganizationRow
	err := p.gdb.WithContext(ctx).
		Table(db.TableOrganizations+" AS o").
		Select("o.*").
		Where("o.organization_uuid IN (?)", p.facts(ctx, pred).Select("a.organization_uuid")).
		Order("o.organization_uuid").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("export organizations: %w", err)
	}
	return out, nil
}

func (p *Postgres) Methods(ctx context.Context, pred filter.Predicate) ([]domain.MethodRow, error) {
	var out []domain.MethodRow
	err := p.gdb.WithContext(ctx).
		Table(db.TableMethods+" AS m").
		Select("m.*").
		Where("m.method_uuid IN (?)", p.facts(ctx, pred).Select("a.method_uuid")).
		Order("m.method_uuid").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("export methods: %w", err)
	}
	return out, nil
}

func (p *Postgres) Variables(ctx context.Context, pred filter.Predicate) ([]domain.VariableRow, error) {
	var out []domain.VariableRow
	err := p.gdb.WithContext(ctx).
		Table(db.TableVariables+" AS v").
		Select("v.*").
		Where("v.variable_specific_uuid IN (?)", p.facts(ctx, pred).Select("a.variable_specific_uuid")).
		Order("v.variable_specific_uuid").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("export variables: %w", err)
	}
	return out, nil
}

func (p *Postgres) PodToPou(ctx context.Context, pred filter.Predicate) ([]domain.PodToPouRow, error) {
	var out []domain.PodToPouRow
	err := p.gdb.WithContext(ctx).
		Table(db.TablePodPouRelationships+" AS pp").
		Select("pp.pod_site_uuid, pp.pou_site_uuid, pp.start_date, pp.end_date").
		Where("pp.pod_site_uuid IN (?)", p.siteUUIDs(ctx, pred)).
		Order("pp.pod_site_uuid, pp.pou_site_uuid").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("export pod/pou relationships: %w", err)
	}
	return out, nil
}

func (p *Postgres) Sites(ctx context.Context, pred filter.Predicate) ([]domain.SiteRow, error) {
	var out []domain.SiteRow
	err := p.gdb.WithContext(ctx).
		Table(db.TableSites+" AS s").
		Select(siteColumns).
		Where("s.site_uuid IN (?)", p.siteUUIDs(ctx, pred)).
		Order("s.site_uuid").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("export sites: %w", err)
	}
	return out, nil
}

func (p *Postgres) WaterSources(ctx context.Context, pred filter.Predicate) ([]domain.WaterSourceRow, error) {
	sourceUUIDs := p.gdb.WithContext(ctx).
		Table(db.TableSiteWaterSources+" AS sws").
		Select("sws.water_source_uuid").
		Where("sws.site_uuid IN (?)", p.siteUUIDs(ctx, pred))

	var out []domain.WaterSourceRow
	err := p.gdb.WithContext(ctx).
		Table(db.TableWaterSources+" AS ws").
		Select("ws.*").
		Where("ws.water_source_uuid IN (?)", sourceUUIDs).
		Order("ws.water_source_uuid").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("export water sources: %w", err)
	}
	return out, nil
}

func (p *Postgres) WaterAllocations(ctx context.Context, pred filter.Predicate) ([]domain.WaterAllocationRow, error) {
	var out []domain.WaterAllocationRow
	err := p.facts(ctx, pred).
		Select(`a.allocation_uuid,
			COALESCE(als.site_uuid, '') AS site_uuid,
			a.organization_uuid, a.variable_specific_uuid, a.method_uuid,
			a.allocation_native_id, a.allocation_owner,
			a.owner_classification AS allocation_owner_classification_cv,
			a.allocation_priority_date, a.allocation_expiration_date, a.allocation_legal_status_cv,
			a.allocation_flow_cfs, a.allocation_volume_af,
			COALESCE((SELECT string_agg(bu.beneficial_use, ',' ORDER BY bu.beneficial_use)
				FROM ` + db.TableAllocationBeneficialUses + ` bu WHERE bu.allocation_id = a.id), '') AS beneficial_use_category,
			a.primary_use_category AS primary_beneficial_use_category,
			a.exempt_of_volume_flow_priority`).
		Joins("LEFT JOIN " + db.TableAllocationSites + " als ON als.allocation_id = a.id").
		Order("a.allocation_uuid, site_uuid").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("export water allocations: %w", err)
	}
	return out, nil
}

// Record loads one water right with its organization, variable, method,
// beneficial uses and sites.
func (p *Postgres) Record(ctx context.Context, allocationUUID string) (domain.Record, error) {
	tx := p.gdb.WithContext(ctx)

	var fact db.AllocationAmount
	err := tx.Where("allocation_uuid = ?", allocationUUID).Take(&fact).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Record{}, fmt.Errorf("water right %q: %w", allocationUUID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Record{}, fmt.Errorf("load water right %q: %w", allocationUUID, err)
	}
	rec := toRecord(fact)

	if err := tx.Table(db.TableOrganizations).
		Where("organization_uuid = ?", fact.OrganizationUUID).
		Limit(1).Scan(&rec.Organization).Error; err != nil {
		return domain.Record{}, fmt.Errorf("load organization: %w", err)
	}
	rec.State = rec.Organization.State

	if err := tx.Table(db.TableVariables).
		Where("variable_specific_uuid = ?", fact.VariableSpecificUUID).
		Limit(1).Scan(&rec.Variable).Error; err != nil {
		return domain.Record{}, fmt.Errorf("load variable: %w", err)
	}
	if err := tx.Table(db.TableMethods).
		Where("method_uuid = ?", fact.MethodUUID).
		Limit(1).Scan(&rec.Method).Error; err != nil {
		return domain.Record{}, fmt.Errorf("load method: %w", err)
	}

	uses, err := p.beneficialUses(ctx, []int64{fact.ID})
	if err != nil {
		return domain.Record{}, err
	}
	rec.BeneficialUses = uses[fact.ID]

	rec.Sites, err = p.sitesOf(ctx, fact.ID)
	if err != nil {
		return domain.Record{}, err
	}
	return rec, nil
}

type siteSourceRow struct {
	SiteUUID string `gorm:"column:site_uuid"`
	domain.WaterSourceRow
}

func (p *Postgres) sitesOf(ctx context.Context, allocationID int64) ([]domain.Site, error) {
	var rows []domain.SiteRow
	err := p.gdb.WithContext(ctx).
		Table(db.TableSites+" AS s").
		Select(siteColumns).
		Joins("JOIN "+db.TableAllocationSites+" als ON als.site_uuid = s.site_uuid").
		Where("als.allocation_id = ?", allocationID).
		Order("s.site_uuid").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load sites: %w", err)
	}
	return p.withSources(ctx, rows)
}

// Site loads one site with its water sources and the POU sites it feeds.
func (p *Postgres) Site(ctx context.Context, siteUUID string) (domain.Site, error) {
	var rows []domain.SiteRow
	err := p.gdb.WithContext(ctx).
		Table(db.TableSites+" AS s").
		Select(siteColumns).
		Where("s.site_uuid = ?", siteUUID).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return domain.Site{}, fmt.Errorf("load site %q: %w", siteUUID, err)
	}
	if len(rows) == 0 {
		return domain.Site{}, fmt.Errorf("site %q: %w", siteUUID, domain.ErrNotFound)
	}
	sites, err := p.withSources(ctx, rows)
	if err != nil {
		return domain.Site{}, err
	}
	return sites[0], nil
}

// withSources attaches water sources and POD to POU links to site rows.
func (p *Postgres) withSources(ctx context.Context, rows []domain.SiteRow) ([]domain.Site, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	tx := p.gdb.WithContext(ctx)

	uuids := make([]string, len(rows))
	for i, r := range rows {
		uuids[i] = r.SiteUUID
	}

	var sources []siteSourceRow
	err := tx.Table(db.TableSiteWaterSources+" AS sws").
		Select("sws.site_uuid, ws.*").
		Joins("JOIN "+db.TableWaterSources+" ws ON ws.water_source_uuid = sws.water_source_uuid").
		Where("sws.site_uuid = ANY(?)", pq.Array(uuids)).
		Order("sws.site_uuid, ws.water_source_uuid").
		Scan(&sources).Error
	if err != nil {
		return nil, fmt.Errorf("load site water sources: %w", err)
	}

	var links []domain.PodToPouRow
	err = tx.Table(db.TablePodPouRelationships).
		Select("pod_site_uuid, pou_site_uuid, start_date, end_date").
		Where("pod_site_uuid = ANY(?)", pq.Array(uuids)).
		Order("pod_site_uuid, pou_site_uuid").
		Scan(&links).Error
	if err != nil {
		return nil, fmt.Errorf("load pod/pou relationships: %w", err)
	}

	sites := make([]domain.Site, len(rows))
	idx := make(map[string]int, len(rows))
	for i, r := range rows {
		sites[i] = domain.Site{SiteRow: r}
		idx[r.SiteUUID] = i
	}
	for _, s := range sources {
		i := idx[s.SiteUUID]
		sites[i].WaterSources = append(sites[i].WaterSources, s.WaterSourceRow)
	}
	for _, l := range links {
		i := idx[l.PODSiteUUID]
		sites[i].PodToPou = append(sites[i].PodToPou, l)
	}
	return sites, nil
}

// RecordsBySite lists the water rights attached to a site in search order.
// Only the fact columns and beneficial uses are loaded.
func (p *Postgres) RecordsBySite(ctx context.Context, siteUUID string) ([]domain.Record, error) {
	var facts []db.AllocationAmount
	err := p.gdb.WithContext(ctx).
		Table(db.TableAllocationAmounts+" AS a").
		Select("a.*").
		Joins("JOIN "+db.TableAllocationSites+" als ON als.allocation_id = a.id").
		Where("als.site_uuid = ?", siteUUID).
		Order(recordOrder).
		Scan(&facts).Error
	if err != nil {
		return nil, fmt.Errorf("load water rights for site %q: %w", siteUUID, err)
	}

	ids := make([]int64, len(facts))
	for i, f := range facts {
		ids[i] = f.ID
	}
	uses, err := p.beneficialUses(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Record, len(facts))
	for i, f := range facts {
		out[i] = toRecord(f)
		out[i].BeneficialUses = uses[f.ID]
	}
	return out, nil
}

func toRecord(f db.AllocationAmount) domain.Record {
	return domain.Record{
		ID:                         f.ID,
		UUID:                       f.AllocationUUID,
		NativeID:                   f.AllocationNativeID,
		Owner:                      f.AllocationOwner,
		OwnerClassification:        f.OwnerClassification,
		OwnerClassificationWaDE:    f.OwnerClassificationWaDE,
		PriorityDate:               f.AllocationPriorityDate,
		ExpirationDate:             f.AllocationExpirationDate,
		LegalStatus:                f.AllocationLegalStatusCV,
		Flow:                       f.AllocationFlowCFS,
		Volume:                     f.AllocationVolumeAF,
		ExemptOfVolumeFlowPriority: f.ExemptOfVolumeFlowPriority,
		PrimaryUseCategory:         f.PrimaryUseCategory,
	}
}
