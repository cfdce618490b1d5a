package db

import "time"

// Schema holds every water-rights table.
const Schema = "waterrights"

// Qualified table names, shared by the store and the predicate scopes.
const (
	TableOrganizations            = Schema + ".organizations"
	TableVariables                = Schema + ".variables"
	TableMethods                  = Schema + ".methods"
	TableWaterSources             = Schema + ".water_sources"
	TableSites                    = Schema + ".sites"
	TableSiteWaterSources         = Schema + ".site_water_sources"
	TablePodPouRelationships      = Schema + ".pod_pou_relationships"
	TableAllocationAmounts        = Schema + ".allocation_amounts"
	TableAllocationBeneficialUses = Schema + ".allocation_beneficial_uses"
	TableAllocationSites          = Schema + ".allocation_sites"
)

type Organization struct {
	OrganizationUUID         string `gorm:"primaryKey;column:organization_uuid"`
	OrganizationName         string `gorm:"column:organization_name"`
	OrganizationPurview      string `gorm:"column:organization_purview"`
	OrganizationWebsite      string `gorm:"column:organization_website"`
	OrganizationPhoneNumber  string `gorm:"column:organization_phone_number"`
	OrganizationContactName  string `gorm:"column:organization_contact_name"`
	OrganizationContactEmail string `gorm:"column:organization_contact_email"`
	State                    string `gorm:"column:state;size:2;index"`
}

func (Organization) TableName() string { return TableOrganizations }

type Variable struct {
	VariableSpecificUUID      string   `gorm:"primaryKey;column:variable_specific_uuid"`
	VariableSpecificCV        string   `gorm:"column:variable_specific_cv"`
	VariableCV                string   `gorm:"column:variable_cv"`
	AggregationStatisticCV    string   `gorm:"column:aggregation_statistic_cv"`
	AggregationInterval       *float64 `gorm:"column:aggregation_interval"`
	AggregationIntervalUnitCV string   `gorm:"column:aggregation_interval_unit_cv"`
	ReportYearStartMonth      string   `gorm:"column:report_year_start_month"`
	ReportYearTypeCV          string   `gorm:"column:report_year_type_cv"`
	AmountUnitCV              string   `gorm:"column:amount_unit_cv"`
	MaximumAmountUnitCV       string   `gorm:"column:maximum_amount_unit_cv"`
}

func (Variable) TableName() string { return TableVariables }

type Method struct {
	MethodUUID               string `gorm:"primaryKey;column:method_uuid"`
	MethodName               string `gorm:"column:method_name"`
	MethodDescription        string `gorm:"column:method_description"`
	MethodNEMILink           string `gorm:"column:method_nemi_link"`
	ApplicableResourceTypeCV string `gorm:"column:applicable_resource_type_cv"`
	MethodTypeCV             string `gorm:"column:method_type_cv"`
}

func (Method) TableName() string { return TableMethods }

type WaterSource struct {
	WaterSourceUUID         string `gorm:"primaryKey;column:water_source_uuid"`
	WaterSourceNativeID     string `gorm:"column:water_source_native_id"`
	WaterSourceName         string `gorm:"column:water_source_name"`
	WaterSourceType         string `gorm:"column:water_source_type;index"`
	WaterSourceTypeWaDE     string `gorm:"column:water_source_type_wade;index"`
	WaterQualityIndicatorCV string `gorm:"column:water_quality_indicator_cv"`
}

func (WaterSource) TableName() string { return TableWaterSources }

// Site omits the PostGIS geometry column; Migrate adds it and the importer
// fills it from the coordinates.
type Site struct {
	SiteUUID           string   `gorm:"primaryKey;column:site_uuid"`
	SiteNativeID       string   `gorm:"column:site_native_id"`
	SiteName           string   `gorm:"column:site_name"`
	SiteTypeCV         string   `gorm:"column:site_type_cv"`
	PODorPOUSite       string   `gorm:"column:pod_or_pou_site"`
	Latitude           *float64 `gorm:"column:latitude"`
	Longitude          *float64 `gorm:"column:longitude"`
	CoordinateMethodCV string   `gorm:"column:coordinate_method_cv"`
	County             string   `gorm:"column:county"`
	StateCV            string   `gorm:"column:state_cv"`
	HUC8               string   `gorm:"column:huc8"`
	HUC12              string   `gorm:"column:huc12"`
}

func (Site) TableName() string { return TableSites }

type SiteWaterSource struct {
	SiteUUID        string `gorm:"primaryKey;column:site_uuid"`
	WaterSourceUUID string `gorm:"primaryKey;column:water_source_uuid"`
}

func (SiteWaterSource) TableName() string { return TableSiteWaterSources }

type PodPouRelationship struct {
	PODSiteUUID string     `gorm:"primaryKey;column:pod_site_uuid"`
	POUSiteUUID string     `gorm:"primaryKey;column:pou_site_uuid"`
	StartDate   *time.Time `gorm:"column:start_date;type:date"`
	EndDate     *time.Time `gorm:"column:end_date;type:date"`
}

func (PodPouRelationship) TableName() string { return TablePodPouRelationships }

// AllocationAmount is the fact table every search predicate runs against.
type AllocationAmount struct {
	ID                         int64      `gorm:"primaryKey;autoIncrement;column:id"`
	AllocationUUID             string     `gorm:"column:allocation_uuid;uniqueIndex"`
	OrganizationUUID           string     `gorm:"column:organization_uuid;index"`
	VariableSpecificUUID       string     `gorm:"column:variable_specific_uuid"`
	MethodUUID                 string     `gorm:"column:method_uuid"`
	AllocationNativeID         string     `gorm:"column:allocation_native_id"`
	AllocationOwner            string     `gorm:"column:allocation_owner"`
	OwnerClassification        string     `gorm:"column:owner_classification;index"`
	OwnerClassificationWaDE    string     `gorm:"column:owner_classification_wade"`
	AllocationPriorityDate     *time.Time `gorm:"column:allocation_priority_date;type:date;index"`
	AllocationExpirationDate   *time.Time `gorm:"column:allocation_expiration_date;type:date"`
	AllocationLegalStatusCV    string     `gorm:"column:allocation_legal_status_cv"`
	AllocationFlowCFS          *float64   `gorm:"column:allocation_flow_cfs"`
	AllocationVolumeAF         *float64   `gorm:"column:allocation_volume_af"`
	ExemptOfVolumeFlowPriority *bool      `gorm:"column:exempt_of_volume_flow_priority"`
	PrimaryUseCategory         string     `gorm:"column:primary_use_category"`
}

func (AllocationAmount) TableName() string { return TableAllocationAmounts }

type AllocationBeneficialUse struct {
	AllocationID      int64  `gorm:"primaryKey;column:allocation_id"`
	BeneficialUse     string `gorm:"primaryKey;column:beneficial_use"`
	BeneficialUseWaDE string `gorm:"column:beneficial_use_wade"`
}

func (AllocationBeneficialUse) TableName() string { return TableAllocationBeneficialUses }

type AllocationSite struct {
	AllocationID int64  `gorm:"primaryKey;column:allocation_id"`
	SiteUUID     string `gorm:"primaryKey;column:site_uuid;index"`
}

func (AllocationSite) TableName() string { return TableAllocationSites }

// Models lists every table in migration order.
func Models() []any {
	return []any{
		&Organization{}, &Variable{}, &Method{}, &WaterSource{}, &Site{},
		&SiteWaterSource{}, &PodPouRelationship{},
		&AllocationAmount{}, &AllocationBeneficialUse{}, &AllocationSite{},
	}
}
