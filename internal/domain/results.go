package domain

import "time"

// SearchResultPage is one page of an interactive search.
type SearchResultPage struct {
	CurrentPageNumber  int      `json:"currentPageNumber"`
	HasMoreResults     bool     `json:"hasMoreResults"`
	WaterRightsDetails []Record `json:"waterRightsDetails"`
}

// AnalyticsSummary aggregates the matching records of one primary use category.
type AnalyticsSummary struct {
	PrimaryUseCategoryName string  `json:"primaryUseCategoryName" gorm:"column:primary_use_category_name"`
	Points                 int64   `json:"points" gorm:"column:points"`
	Flow                   float64 `json:"flow" gorm:"column:flow"`
	Volume                 float64 `json:"volume" gorm:"column:volume"`
}

// WaterRightDetails is the detail view of a single water right.
type WaterRightDetails struct {
	AllocationUUID             string          `json:"allocationUuid"`
	AllocationNativeID         string          `json:"allocationNativeId"`
	Owner                      string          `json:"allocationOwner"`
	OwnerClassification        string          `json:"ownerClassification"`
	PriorityDate               *time.Time      `json:"priorityDate"`
	ExpirationDate             *time.Time      `json:"expirationDate"`
	LegalStatus                string          `json:"legalStatus"`
	Flow                       *float64        `json:"allocationFlow_CFS"`
	Volume                     *float64        `json:"allocationVolume_AF"`
	ExemptOfVolumeFlowPriority *bool           `json:"exemptOfVolumeFlowPriority"`
	PrimaryUseCategory         string          `json:"primaryUseCategory"`
	BeneficialUses             []string        `json:"beneficialUses"`
	Organization               OrganizationRow `json:"organization"`
	VariableSpecificUUID       string          `json:"variableSpecificUuid"`
	MethodUUID                 string          `json:"methodUuid"`
}

// SiteLocation is a site point for map display.
type SiteLocation struct {
	SiteUUID  string  `json:"siteUuid"`
	PodOrPou  string  `json:"podOrPou"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// WaterRightDigest is the short form of a water right listed under a site.
type WaterRightDigest struct {
	AllocationUUID string     `json:"allocationUuid"`
	NativeID       string     `json:"nativeId"`
	BeneficialUses []string   `json:"beneficialUses"`
	PriorityDate   *time.Time `json:"priorityDate"`
}

// WaterRightInfo is one row of the water rights listed for a site.
type WaterRightInfo struct {
	AllocationUUID string     `json:"allocationUuid"`
	NativeID       string     `json:"waterRightNativeId"`
	Owner          string     `json:"owner"`
	PriorityDate   *time.Time `json:"priorityDate"`
	ExpirationDate *time.Time `json:"expirationDate"`
	LegalStatus    string     `json:"legalStatus"`
	Flow           *float64   `json:"flow"`
	Volume         *float64   `json:"volume"`
	BeneficialUses []string   `json:"beneficialUses"`
}

// Details projects a record onto its detail view.
func (r Record) Details() WaterRightDetails {
	return WaterRightDetails{
		AllocationUUID:             r.UUID,
		AllocationNativeID:         r.NativeID,
		Owner:                      r.Owner,
		OwnerClassification:        r.OwnerClassification,
		PriorityDate:               r.PriorityDate,
		ExpirationDate:             r.ExpirationDate,
		LegalStatus:                r.LegalStatus,
		Flow:                       r.Flow,
		Volume:                     r.Volume,
		ExemptOfVolumeFlowPriority: r.ExemptOfVolumeFlowPriority,
		PrimaryUseCategory:         r.PrimaryUseCategory,
		BeneficialUses:             r.BeneficialUseNames(),
		Organization:               r.Organization,
		VariableSpecificUUID:       r.Variable.VariableSpecificUUID,
		MethodUUID:                 r.Method.MethodUUID,
	}
}

// Digest projects a record onto its digest form.
func (r Record) Digest() WaterRightDigest {
	return WaterRightDigest{
		AllocationUUID: r.UUID,
		NativeID:       r.NativeID,
		BeneficialUses: r.BeneficialUseNames(),
		PriorityDate:   r.PriorityDate,
	}
}

// Info projects a record onto the site rights listing.
func (r Record) Info() WaterRightInfo {
	return WaterRightInfo{
		AllocationUUID: r.UUID,
		NativeID:       r.NativeID,
		Owner:          r.Owner,
		PriorityDate:   r.PriorityDate,
		ExpirationDate: r.ExpirationDate,
		LegalStatus:    r.LegalStatus,
		Flow:           r.Flow,
		Volume:         r.Volume,
		BeneficialUses: r.BeneficialUseNames(),
	}
}
