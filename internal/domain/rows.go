package domain

import "time"

// Export row shapes. The csv tag is the column header written into the
// archive; gorm column tags let the Postgres store scan straight into them.

type OrganizationRow struct {
	OrganizationUUID         string `csv:"OrganizationUUID" gorm:"column:organization_uuid" json:"organizationUuid"`
	OrganizationName         string `csv:"OrganizationName" gorm:"column:organization_name" json:"organizationName"`
	OrganizationPurview      string `csv:"OrganizationPurview" gorm:"column:organization_purview" json:"organizationPurview"`
	OrganizationWebsite      string `csv:"OrganizationWebsite" gorm:"column:organization_website" json:"organizationWebsite"`
	OrganizationPhoneNumber  string `csv:"OrganizationPhoneNumber" gorm:"column:organization_phone_number" json:"organizationPhoneNumber"`
	OrganizationContactName  string `csv:"OrganizationContactName" gorm:"column:organization_contact_name" json:"organizationContactName"`
	OrganizationContactEmail string `csv:"OrganizationContactEmail" gorm:"column:organization_contact_email" json:"organizationContactEmail"`
	State                    string `csv:"State" gorm:"column:state" json:"state"`
}

type VariableRow struct {
	VariableSpecificUUID      string   `csv:"VariableSpecificUUID" gorm:"column:variable_specific_uuid"`
	VariableSpecificCV        string   `csv:"VariableSpecificCV" gorm:"column:variable_specific_cv"`
	VariableCV                string   `csv:"VariableCV" gorm:"column:variable_cv"`
	AggregationStatisticCV    string   `csv:"AggregationStatisticCV" gorm:"column:aggregation_statistic_cv"`
	AggregationInterval       *float64 `csv:"AggregationInterval" gorm:"column:aggregation_interval"`
	AggregationIntervalUnitCV string   `csv:"AggregationIntervalUnitCV" gorm:"column:aggregation_interval_unit_cv"`
	ReportYearStartMonth      string   `csv:"ReportYearStartMonth" gorm:"column:report_year_start_month"`
	ReportYearTypeCV          string   `csv:"ReportYearTypeCV" gorm:"column:report_year_type_cv"`
	AmountUnitCV              string   `csv:"AmountUnitCV" gorm:"column:amount_unit_cv"`
	MaximumAmountUnitCV       string   `csv:"MaximumAmountUnitCV" gorm:"column:maximum_amount_unit_cv"`
}

type MethodRow struct {
	MethodUUID               string `csv:"MethodUUID" gorm:"column:method_uuid"`
	MethodName               string `csv:"MethodName" gorm:"column:method_name"`
	MethodDescription        string `csv:"MethodDescription" gorm:"column:method_description"`
	MethodNEMILink           string `csv:"MethodNEMILink" gorm:"column:method_nemi_link"`
	ApplicableResourceTypeCV string `csv:"ApplicableResourceTypeCV" gorm:"column:applicable_resource_type_cv"`
	MethodTypeCV             string `csv:"MethodTypeCV" gorm:"column:method_type_cv"`
}

type PodToPouRow struct {
	PODSiteUUID string     `csv:"PODSiteUUID" gorm:"column:pod_site_uuid" json:"podSiteUuid"`
	POUSiteUUID string     `csv:"POUSiteUUID" gorm:"column:pou_site_uuid" json:"pouSiteUuid"`
	StartDate   *time.Time `csv:"StartDate" gorm:"column:start_date" json:"startDate"`
	EndDate     *time.Time `csv:"EndDate" gorm:"column:end_date" json:"endDate"`
}

type SiteRow struct {
	SiteUUID           string   `csv:"SiteUUID" gorm:"column:site_uuid" json:"siteUuid"`
	SiteNativeID       string   `csv:"SiteNativeID" gorm:"column:site_native_id" json:"siteNativeId"`
	SiteName           string   `csv:"SiteName" gorm:"column:site_name" json:"siteName"`
	SiteTypeCV         string   `csv:"SiteTypeCV" gorm:"column:site_type_cv" json:"siteType"`
	PODorPOUSite       string   `csv:"PODorPOUSite" gorm:"column:pod_or_pou_site" json:"podOrPou"`
	Latitude           *float64 `csv:"Latitude" gorm:"column:latitude" json:"latitude"`
	Longitude          *float64 `csv:"Longitude" gorm:"column:longitude" json:"longitude"`
	CoordinateMethodCV string   `csv:"CoordinateMethodCV" gorm:"column:coordinate_method_cv" json:"coordinateMethod"`
	County             string   `csv:"County" gorm:"column:county" json:"county"`
	StateCV            string   `csv:"StateCV" gorm:"column:state_cv" json:"state"`
	HUC8               string   `csv:"HUC8" gorm:"column:huc8" json:"huc8"`
	HUC12              string   `csv:"HUC12" gorm:"column:huc12" json:"huc12"`
}

type WaterSourceRow struct {
	WaterSourceUUID         string `csv:"WaterSourceUUID" gorm:"column:water_source_uuid" json:"waterSourceUuid"`
	WaterSourceNativeID     string `csv:"WaterSourceNativeID" gorm:"column:water_source_native_id" json:"waterSourceNativeId"`
	WaterSourceName         string `csv:"WaterSourceName" gorm:"column:water_source_name" json:"waterSourceName"`
	WaterSourceType         string `csv:"WaterSourceTypeCV" gorm:"column:water_source_type" json:"waterSourceType"`
	WaterSourceTypeWaDE     string `csv:"WaDEWaterSourceType" gorm:"column:water_source_type_wade" json:"-"`
	WaterQualityIndicatorCV string `csv:"WaterQualityIndicatorCV" gorm:"column:water_quality_indicator_cv" json:"waterQualityIndicator"`
}

type WaterAllocationRow struct {
	AllocationUUID                  string     `csv:"AllocationUUID" gorm:"column:allocation_uuid"`
	SiteUUID                        string     `csv:"SiteUUID" gorm:"column:site_uuid"`
	OrganizationUUID                string     `csv:"OrganizationUUID" gorm:"column:organization_uuid"`
	VariableSpecificUUID            string     `csv:"VariableSpecificUUID" gorm:"column:variable_specific_uuid"`
	MethodUUID                      string     `csv:"MethodUUID" gorm:"column:method_uuid"`
	AllocationNativeID              string     `csv:"AllocationNativeID" gorm:"column:allocation_native_id"`
	AllocationOwner                 string     `csv:"AllocationOwner" gorm:"column:allocation_owner"`
	AllocationOwnerClassificationCV string     `csv:"AllocationOwnerClassificationCV" gorm:"column:allocation_owner_classification_cv"`
	AllocationPriorityDate          *time.Time `csv:"AllocationPriorityDate" gorm:"column:allocation_priority_date"`
	AllocationExpirationDate        *time.Time `csv:"AllocationExpirationDate" gorm:"column:allocation_expiration_date"`
	AllocationLegalStatusCV         string     `csv:"AllocationLegalStatusCV" gorm:"column:allocation_legal_status_cv"`
	AllocationFlowCFS               *float64   `csv:"AllocationFlow_CFS" gorm:"column:allocation_flow_cfs"`
	AllocationVolumeAF              *float64   `csv:"AllocationVolume_AF" gorm:"column:allocation_volume_af"`
	BeneficialUseCategory           string     `csv:"BeneficialUseCategory" gorm:"column:beneficial_use_category"`
	PrimaryBeneficialUseCategory    string     `csv:"PrimaryBeneficialUseCategory" gorm:"column:primary_beneficial_use_category"`
	ExemptOfVolumeFlowPriority      *bool      `csv:"ExemptOfVolumeFlowPriority" gorm:"column:exempt_of_volume_flow_priority"`
}
