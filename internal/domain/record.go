package domain

import "time"

// BeneficialUse is one categorized purpose attached to a water right. Name is
// the reporting organization's own term, WaDEName the normalized one.
type BeneficialUse struct {
	Name     string `json:"name"`
	WaDEName string `json:"wadeName,omitempty"`
}

// Site is a point of diversion or place of use referenced by a water right,
// together with the sources and POD→POU links hanging off it.
type Site struct {
	SiteRow
	WaterSources []WaterSourceRow `json:"waterSources,omitempty"`
	PodToPou     []PodToPouRow    `json:"podToPou,omitempty"`
}

// HasLocation reports whether the site carries both coordinates.
func (s Site) HasLocation() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// Record is one allocation amount fact as read from the store. It is never
// mutated by the engine.
type Record struct {
	ID                         int64           `json:"-"`
	UUID                       string          `json:"allocationUuid"`
	NativeID                   string          `json:"allocationNativeId"`
	Owner                      string          `json:"allocationOwner"`
	OwnerClassification        string          `json:"ownerClassification"`
	OwnerClassificationWaDE    string          `json:"ownerClassificationWaDE,omitempty"`
	PriorityDate               *time.Time      `json:"allocationPriorityDate"`
	ExpirationDate             *time.Time      `json:"allocationExpirationDate"`
	LegalStatus                string          `json:"allocationLegalStatus"`
	Flow                       *float64        `json:"allocationFlow_CFS"`
	Volume                     *float64        `json:"allocationVolume_AF"`
	ExemptOfVolumeFlowPriority *bool           `json:"exemptOfVolumeFlowPriority"`
	PrimaryUseCategory         string          `json:"primaryUseCategory"`
	BeneficialUses             []BeneficialUse `json:"beneficialUses"`
	State                      string          `json:"state"`
	Sites                      []Site          `json:"-"`
	Organization               OrganizationRow `json:"-"`
	Variable                   VariableRow     `json:"-"`
	Method                     MethodRow       `json:"-"`
}

// BeneficialUseNames returns the native names of the record's beneficial uses.
func (r Record) BeneficialUseNames() []string {
	out := make([]string, 0, len(r.BeneficialUses))
	for _, bu := range r.BeneficialUses {
		out = append(out, bu.Name)
	}
	return out
}

// WaterSourceTypes returns the distinct source types reachable through the
// record's sites, native and WaDE names alike.
func (r Record) WaterSourceTypes() []string {
	seen := map[string]struct{}{}
	var out []string
	add := func(v string) {
		if v == "" {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	for _, s := range r.Sites {
		for _, ws := range s.WaterSources {
			add(ws.WaterSourceType)
			add(ws.WaterSourceTypeWaDE)
		}
	}
	return out
}
