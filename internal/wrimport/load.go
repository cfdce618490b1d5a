package wrimport

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/openwaterdata/waterrights/internal/db"
	"github.com/openwaterdata/waterrights/internal/domain"
)

const batchSize = 500

// Load writes records into the waterrights tables. Shared rows such as
// organizations and sites are inserted once; facts are inserted in record
// order so their surrogate ids follow it. Run it inside a transaction.
func Load(tx *gorm.DB, records []domain.Record) error {
	var (
		orgs    = map[string]db.Organization{}
		vars    = map[string]db.Variable{}
		methods = map[string]db.Method{}
		sources = map[string]db.WaterSource{}
		sites   = map[string]db.Site{}
		siteWS  = map[[2]string]db.SiteWaterSource{}
		links   = map[[2]string]db.PodPouRelationship{}
	)

	for _, r := range records {
		o := r.Organization
		orgs[o.OrganizationUUID] = db.Organization{
			OrganizationUUID: o.OrganizationUUID, OrganizationName: o.OrganizationName,
			OrganizationPurview: o.OrganizationPurview, OrganizationWebsite: o.OrganizationWebsite,
			OrganizationPhoneNumber: o.OrganizationPhoneNumber, OrganizationContactName: o.OrganizationContactName,
			OrganizationContactEmail: o.OrganizationContactEmail, State: o.State,
		}
		v := r.Variable
		vars[v.VariableSpecificUUID] = db.Variable{
			VariableSpecificUUID: v.VariableSpecificUUID, VariableSpecificCV: v.VariableSpecificCV,
			VariableCV: v.VariableCV, AggregationStatisticCV: v.AggregationStatisticCV,
			AggregationInterval: v.AggregationInterval, AggregationIntervalUnitCV: v.AggregationIntervalUnitCV,
			ReportYearStartMonth: v.ReportYearStartMonth, ReportYearTypeCV: v.ReportYearTypeCV,
			AmountUnitCV: v.AmountUnitCV, MaximumAmountUnitCV: v.MaximumAmountUnitCV,
		}
		m := r.Method
		methods[m.MethodUUID] = db.Method{
			MethodUUID: m.MethodUUID, MethodName: m.MethodName, MethodDescription: m.MethodDescription,
			MethodNEMILink: m.MethodNEMILink, ApplicableResourceTypeCV: m.ApplicableResourceTypeCV,
			MethodTypeCV: m.MethodTypeCV,
		}
		for _, s := range r.Sites {
			sites[s.SiteUUID] = db.Site{
				SiteUUID: s.SiteUUID, SiteNativeID: s.SiteNativeID, SiteName: s.SiteName,
				SiteTypeCV: s.SiteTypeCV, PODorPOUSite: s.PODorPOUSite, Latitude: s.Latitude,
				Longitude: s.Longitude, CoordinateMethodCV: s.CoordinateMethodCV, County: s.County,
				StateCV: s.StateCV, HUC8: s.HUC8, HUC12: s.HUC12,
			}
			for _, ws := range s.WaterSources {
				sources[ws.WaterSourceUUID] = db.WaterSource{
					WaterSourceUUID: ws.WaterSourceUUID, WaterSourceNativeID: ws.WaterSourceNativeID,
					WaterSourceName: ws.WaterSourceName, WaterSourceType: ws.WaterSourceType,
					WaterSourceTypeWaDE: ws.WaterSourceTypeWaDE, WaterQualityIndicatorCV: ws.WaterQualityIndicatorCV,
				}
				siteWS[[2]string{s.SiteUUID, ws.WaterSourceUUID}] = db.SiteWaterSource{
					SiteUUID: s.SiteUUID, WaterSourceUUID: ws.WaterSourceUUID,
				}
			}
			for _, l := range s.PodToPou {
				links[[2]string{l.PODSiteUUID, l.POUSiteUUID}] = db.PodPouRelationship{
					PODSiteUUID: l.PODSiteUUID, POUSiteUUID: l.POUSiteUUID,
					StartDate: l.StartDate, EndDate: l.EndDate,
				}
			}
		}
	}

	if err := insertAll(tx, "organizations", values(orgs)); err != nil {
		return err
	}
	if err := insertAll(tx, "variables", values(vars)); err != nil {
		return err
	}
	if err := insertAll(tx, "methods", values(methods)); err != nil {
		return err
	}
	if err := insertAll(tx, "water sources", values(sources)); err != nil {
		return err
	}
	if err := insertAll(tx, "sites", values(sites)); err != nil {
		return err
	}
	if err := insertAll(tx, "site water sources", values(siteWS)); err != nil {
		return err
	}
	if err := insertAll(tx, "pod/pou relationships", values(links)); err != nil {
		return err
	}

	facts := make([]db.AllocationAmount, len(records))
	for i, r := range records {
		facts[i] = db.AllocationAmount{
			AllocationUUID:             r.UUID,
			OrganizationUUID:           r.Organization.OrganizationUUID,
			VariableSpecificUUID:       r.Variable.VariableSpecificUUID,
			MethodUUID:                 r.Method.MethodUUID,
			AllocationNativeID:         r.NativeID,
			AllocationOwner:            r.Owner,
			OwnerClassification:        r.OwnerClassification,
			OwnerClassificationWaDE:    r.OwnerClassificationWaDE,
			AllocationPriorityDate:     r.PriorityDate,
			AllocationExpirationDate:   r.ExpirationDate,
			AllocationLegalStatusCV:    r.LegalStatus,
			AllocationFlowCFS:          r.Flow,
			AllocationVolumeAF:         r.Volume,
			ExemptOfVolumeFlowPriority: r.ExemptOfVolumeFlowPriority,
			PrimaryUseCategory:         r.PrimaryUseCategory,
		}
	}
	if len(facts) > 0 {
		if err := tx.CreateInBatches(&facts, batchSize).Error; err != nil {
			return fmt.Errorf("insert allocation amounts: %w", err)
		}
	}

	var (
		uses     []db.AllocationBeneficialUse
		allocSit []db.AllocationSite
	)
	for i, r := range records {
		id := facts[i].ID
		for _, bu := range r.BeneficialUses {
			uses = append(uses, db.AllocationBeneficialUse{
				AllocationID: id, BeneficialUse: bu.Name, BeneficialUseWaDE: bu.WaDEName,
			})
		}
		for _, s := range r.Sites {
			allocSit = append(allocSit, db.AllocationSite{AllocationID: id, SiteUUID: s.SiteUUID})
		}
	}
	if err := insertAll(tx, "beneficial uses", uses); err != nil {
		return err
	}
	if err := insertAll(tx, "allocation sites", allocSit); err != nil {
		return err
	}

	return setGeometry(tx)
}

// setGeometry fills the PostGIS point of every located site that lacks one.
func setGeometry(tx *gorm.DB) error {
	err := tx.Exec(`UPDATE ` + db.TableSites + `
		SET geometry = ST_SetSRID(ST_MakePoint(longitude, latitude), 4326)
		WHERE geometry IS NULL AND latitude IS NOT NULL AND longitude IS NOT NULL`).Error
	if err != nil {
		return fmt.Errorf("set site geometry: %w", err)
	}
	return nil
}

// Wipe empties every waterrights table and resets the fact id sequence.
func Wipe(tx *gorm.DB) error {
	sql := `
		TRUNCATE TABLE
			` + db.TableAllocationSites + `,
			` + db.TableAllocationBeneficialUses + `,
			` + db.TableAllocationAmounts + `,
			` + db.TablePodPouRelationships + `,
			` + db.TableSiteWaterSources + `,
			` + db.TableSites + `,
			` + db.TableWaterSources + `,
			` + db.TableMethods + `,
			` + db.TableVariables + `,
			` + db.TableOrganizations + `
		RESTART IDENTITY CASCADE;
	`
	return tx.Exec(sql).Error
}

func insertAll[T any](tx *gorm.DB, what string, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&rows, batchSize).Error; err != nil {
		return fmt.Errorf("insert %s: %w", what, err)
	}
	return nil
}

func values[K comparable, V any](m map[K]V) []V {
	out := make([]V, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}
