package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"golang.org/x/text/cases"
	"gorm.io/gorm"

	"github.com/openwaterdata/waterrights/internal/db"
	"github.com/openwaterdata/waterrights/internal/domain"
	"github.com/openwaterdata/waterrights/internal/spatial"
)

// Dimension builds the predicate for one criterion. It returns True() when
// the criterion is absent.
type Dimension func(domain.SearchCriteria) Predicate

// Dimensions lists every criterion Build combines.
var Dimensions = []Dimension{
	BeneficialUses,
	OwnerClassifications,
	WaterSourceTypes,
	States,
	Exemption,
	FlowRange,
	VolumeRange,
	PriorityDateRange,
	Owner,
	PodOrPou,
	Spatial,
}

// Build conjoins every dimension of c. Geometries must already be resolved.
func Build(c domain.SearchCriteria) Predicate {
	parts := make([]Predicate, 0, len(Dimensions))
	for _, d := range Dimensions {
		parts = append(parts, d(c))
	}
	return And(parts...)
}

// BeneficialUses matches records carrying any listed use, by native or
// WaDE name.
func BeneficialUses(c domain.SearchCriteria) Predicate {
	names := domain.NonBlank(c.BeneficialUses)
	if len(names) == 0 {
		return True()
	}
	set := toSet(names)
	return newPredicate(
		func(r *domain.Record) bool {
			for _, bu := range r.BeneficialUses {
				if set.has(bu.Name) || set.has(bu.WaDEName) {
					return true
				}
			}
			return false
		},
		func(tx *gorm.DB) *gorm.DB {
			return tx.Where(fmt.Sprintf(
				`EXISTS (SELECT 1 FROM %s bu WHERE bu.allocation_id = a.id AND (bu.beneficial_use = ANY(?) OR bu.beneficial_use_wade = ANY(?)))`,
				db.TableAllocationBeneficialUses,
			), pq.Array(names), pq.Array(names))
		},
	)
}

// OwnerClassifications matches records whose owner classification is
// listed, by native or WaDE name.
func OwnerClassifications(c domain.SearchCriteria) Predicate {
	names := domain.NonBlank(c.OwnerClassifications)
	if len(names) == 0 {
		return True()
	}
	set := toSet(names)
	return newPredicate(
		func(r *domain.Record) bool {
			return set.has(r.OwnerClassification) || set.has(r.OwnerClassificationWaDE)
		},
		func(tx *gorm.DB) *gorm.DB {
			return tx.Where(`(a.owner_classification = ANY(?) OR a.owner_classification_wade = ANY(?))`,
				pq.Array(names), pq.Array(names))
		},
	)
}

// WaterSourceTypes matches records with at least one site fed by a source
// of a listed type.
func WaterSourceTypes(c domain.SearchCriteria) Predicate {
	types := domain.NonBlank(c.WaterSourceTypes)
	if len(types) == 0 {
		return True()
	}
	set := toSet(types)
	return newPredicate(
		func(r *domain.Record) bool {
			for _, t := range r.WaterSourceTypes() {
				if set.has(t) {
					return true
				}
			}
			return false
		},
		func(tx *gorm.DB) *gorm.DB {
			return tx.Where(fmt.Sprintf(
				`EXISTS (SELECT 1 FROM %s ws_as
					JOIN %s sws ON sws.site_uuid = ws_as.site_uuid
					JOIN %s ws ON ws.water_source_uuid = sws.water_source_uuid
					WHERE ws_as.allocation_id = a.id AND (ws.water_source_type = ANY(?) OR ws.water_source_type_wade = ANY(?)))`,
				db.TableAllocationSites, db.TableSiteWaterSources, db.TableWaterSources,
			), pq.Array(types), pq.Array(types))
		},
	)
}

// States matches records whose reporting organization sits in a listed
// state. Codes compare case-insensitively.
func States(c domain.SearchCriteria) Predicate {
	states := domain.NonBlank(c.States)
	if len(states) == 0 {
		return True()
	}
	upper := make([]string, len(states))
	for i, s := range states {
		upper[i] = strings.ToUpper(s)
	}
	set := toSet(upper)
	return newPredicate(
		func(r *domain.Record) bool {
			return set.has(strings.ToUpper(r.State))
		},
		func(tx *gorm.DB) *gorm.DB {
			return tx.Where(fmt.Sprintf(
				`EXISTS (SELECT 1 FROM %s o WHERE o.organization_uuid = a.organization_uuid AND UPPER(o.state) = ANY(?))`,
				db.TableOrganizations,
			), pq.Array(upper))
		},
	)
}

// Exemption matches the requested exempt-of-volume/flow/priority flag. A
// record with no flag counts as not exempt.
func Exemption(c domain.SearchCriteria) Predicate {
	if c.ExemptOfVolumeFlowPriority == nil {
		return True()
	}
	want := *c.ExemptOfVolumeFlowPriority
	return newPredicate(
		func(r *domain.Record) bool {
			got := r.ExemptOfVolumeFlowPriority != nil && *r.ExemptOfVolumeFlowPriority
			return got == want
		},
		func(tx *gorm.DB) *gorm.DB {
			return tx.Where(`COALESCE(a.exempt_of_volume_flow_priority, FALSE) = ?`, want)
		},
	)
}

// FlowRange keeps records whose flow lies within the inclusive bounds.
func FlowRange(c domain.SearchCriteria) Predicate {
	return amountRange("a.allocation_flow_cfs", c.MinimumFlow, c.MaximumFlow,
		func(r *domain.Record) *float64 { return r.Flow })
}

// VolumeRange keeps records whose volume lies within the inclusive bounds.
func VolumeRange(c domain.SearchCriteria) Predicate {
	return amountRange("a.allocation_volume_af", c.MinimumVolume, c.MaximumVolume,
		func(r *domain.Record) *float64 { return r.Volume })
}

func amountRange(column string, lo, hi *float64, value func(*domain.Record) *float64) Predicate {
	if lo == nil && hi == nil {
		return True()
	}
	return newPredicate(
		func(r *domain.Record) bool {
			v := value(r)
			if v == nil {
				return false
			}
			if lo != nil && *v < *lo {
				return false
			}
			if hi != nil && *v > *hi {
				return false
			}
			return true
		},
		func(tx *gorm.DB) *gorm.DB {
			if lo != nil {
				tx = tx.Where(column+" >= ?", *lo)
			}
			if hi != nil {
				tx = tx.Where(column+" <= ?", *hi)
			}
			return tx
		},
	)
}

// PriorityDateRange keeps records whose priority date lies within the
// inclusive bounds.
func PriorityDateRange(c domain.SearchCriteria) Predicate {
	lo, hi := c.MinimumPriorityDate, c.MaximumPriorityDate
	if lo == nil && hi == nil {
		return True()
	}
	return newPredicate(
		func(r *domain.Record) bool {
			return withinDates(r.PriorityDate, lo, hi)
		},
		func(tx *gorm.DB) *gorm.DB {
			if lo != nil {
				tx = tx.Where("a.allocation_priority_date >= ?", *lo)
			}
			if hi != nil {
				tx = tx.Where("a.allocation_priority_date <= ?", *hi)
			}
			return tx
		},
	)
}

func withinDates(d, lo, hi *time.Time) bool {
	if d == nil {
		return false
	}
	if lo != nil && d.Before(*lo) {
		return false
	}
	if hi != nil && d.After(*hi) {
		return false
	}
	return true
}

// Owner is a case-insensitive substring match on the owner name.
func Owner(c domain.SearchCriteria) Predicate {
	needle := strings.TrimSpace(c.AllocationOwner)
	if needle == "" {
		return True()
	}
	folded := cases.Fold().String(needle)
	return newPredicate(
		func(r *domain.Record) bool {
			return strings.Contains(cases.Fold().String(r.Owner), folded)
		},
		func(tx *gorm.DB) *gorm.DB {
			return tx.Where(`a.allocation_owner ILIKE ? ESCAPE '\'`, "%"+escapeLike(needle)+"%")
		},
	)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

// PodOrPou matches records with at least one site of the requested kind.
func PodOrPou(c domain.SearchCriteria) Predicate {
	kind := strings.ToUpper(strings.TrimSpace(c.PodOrPou))
	if kind == "" {
		return True()
	}
	return newPredicate(
		func(r *domain.Record) bool {
			for _, s := range r.Sites {
				if strings.EqualFold(s.PODorPOUSite, kind) {
					return true
				}
			}
			return false
		},
		func(tx *gorm.DB) *gorm.DB {
			return tx.Where(fmt.Sprintf(
				`EXISTS (SELECT 1 FROM %s pp_as JOIN %s pp_s ON pp_s.site_uuid = pp_as.site_uuid
					WHERE pp_as.allocation_id = a.id AND UPPER(pp_s.pod_or_pou_site) = ?)`,
				db.TableAllocationSites, db.TableSites,
			), kind)
		},
	)
}

// Spatial matches records with a site inside any resolved geometry or a
// site whose UUID is listed. The two sources form one union.
func Spatial(c domain.SearchCriteria) Predicate {
	geoms := c.Geometries
	uuids := domain.NonBlank(c.SiteUUIDs)
	if len(geoms) == 0 && len(uuids) == 0 {
		return True()
	}
	uuidSet := toSet(uuids)
	return newPredicate(
		func(r *domain.Record) bool {
			for _, s := range r.Sites {
				if uuidSet.has(s.SiteUUID) {
					return true
				}
				if !s.HasLocation() {
					continue
				}
				for _, g := range geoms {
					if spatial.Intersects(g, *s.Longitude, *s.Latitude) {
						return true
					}
				}
			}
			return false
		},
		func(tx *gorm.DB) *gorm.DB {
			var (
				conds []string
				args  []any
			)
			for _, g := range geoms {
				w, err := spatial.WKT(g)
				if err != nil {
					_ = tx.AddError(err)
					return tx
				}
				conds = append(conds, "ST_Intersects(sp_s.geometry, ST_GeomFromText(?, 4326))")
				args = append(args, w)
			}
			if len(uuids) > 0 {
				conds = append(conds, "sp_s.site_uuid = ANY(?)")
				args = append(args, pq.Array(uuids))
			}
			return tx.Where(fmt.Sprintf(
				`EXISTS (SELECT 1 FROM %s sp_as JOIN %s sp_s ON sp_s.site_uuid = sp_as.site_uuid
					WHERE sp_as.allocation_id = a.id AND (%s))`,
				db.TableAllocationSites, db.TableSites, strings.Join(conds, " OR "),
			), args...)
		},
	)
}

type stringSet map[string]struct{}

func toSet(values []string) stringSet {
	s := make(stringSet, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func (s stringSet) has(v string) bool {
	if v == "" {
		return false
	}
	_, ok := s[v]
	return ok
}
