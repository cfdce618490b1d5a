package domain

import (
	"strings"
	"time"

	"github.com/twpayne/go-geom"
)

// SearchCriteria is the caller-supplied filter set shared by search,
// analytics and export. A nil or empty field never constrains anything.
//
// The JSON names are the front end's contract and must not change.
type SearchCriteria struct {
	PageNumber *int `json:"pageNumber,omitempty" validate:"omitempty,gte=0"`

	BeneficialUses       []string `json:"beneficialUses,omitempty"`
	OwnerClassifications []string `json:"ownerClassifications,omitempty"`
	WaterSourceTypes     []string `json:"waterSourceTypes,omitempty"`
	States               []string `json:"states,omitempty" validate:"omitempty,dive,alpha,len=2"`
	RiverBasinNames      []string `json:"riverBasinNames,omitempty"`

	AllocationOwner string `json:"allocationOwner,omitempty"`

	MinimumFlow         *float64   `json:"minimumFlow,omitempty" validate:"omitempty,gte=0"`
	MaximumFlow         *float64   `json:"maximumFlow,omitempty" validate:"omitempty,gte=0"`
	MinimumVolume       *float64   `json:"minimumVolume,omitempty" validate:"omitempty,gte=0"`
	MaximumVolume       *float64   `json:"maximumVolume,omitempty" validate:"omitempty,gte=0"`
	MinimumPriorityDate *time.Time `json:"minimumPriorityDate,omitempty"`
	MaximumPriorityDate *time.Time `json:"maximumPriorityDate,omitempty"`

	ExemptOfVolumeFlowPriority *bool  `json:"exemptofVolumeFlowPriority,omitempty"`
	PodOrPou                   string `json:"podOrPou,omitempty" validate:"omitempty,oneof=POD POU pod pou"`

	FilterGeometry []string `json:"filterGeometry,omitempty"`
	SiteUUIDs      []string `json:"wadeSitesUuids,omitempty"`

	// FilterURL is echoed into the export citation; it never filters.
	FilterURL string `json:"filterUrl,omitempty"`

	// Geometries holds the polygons resolved from RiverBasinNames and
	// FilterGeometry.
	Geometries []geom.T `json:"-"`
}

// NonBlank returns the trimmed, non-empty entries of values.
func NonBlank(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
