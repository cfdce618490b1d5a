package store

import (
	"time"

	"github.com/openwaterdata/waterrights/internal/domain"
)

// SampleRecords returns a small, fixed data set spanning four states. The
// memory driver serves it for local demos and the tests lean on it.
func SampleRecords() []domain.Record {
	coOrg := domain.OrganizationRow{
		OrganizationUUID: "CODWR_O1", OrganizationName: "Colorado Division of Water Resources",
		OrganizationPurview: "Water rights administration", OrganizationWebsite: "https://dwr.colorado.gov",
		State: "CO",
	}
	nmOrg := domain.OrganizationRow{
		OrganizationUUID: "NMOSE_O1", OrganizationName: "New Mexico Office of the State Engineer",
		OrganizationWebsite: "https://www.ose.nm.gov", State: "NM",
	}
	utOrg := domain.OrganizationRow{
		OrganizationUUID: "UTDWRi_O1", OrganizationName: "Utah Division of Water Rights",
		OrganizationWebsite: "https://waterrights.utah.gov", State: "UT",
	}
	caOrg := domain.OrganizationRow{
		OrganizationUUID: "CSWRCB_O1", OrganizationName: "California State Water Resources Control Board",
		OrganizationWebsite: "https://www.waterboards.ca.gov", State: "CA",
	}

	allocation := domain.VariableRow{
		VariableSpecificUUID: "V_ALLOC_AF", VariableSpecificCV: "Allocation All", VariableCV: "Allocation",
		AggregationStatisticCV: "Average", AggregationInterval: ptr(1.0), AggregationIntervalUnitCV: "Year",
		ReportYearStartMonth: "10", ReportYearTypeCV: "WaterYear", AmountUnitCV: "AFY", MaximumAmountUnitCV: "AFY",
	}
	adjudicated := domain.MethodRow{
		MethodUUID: "M_ADJ", MethodName: "Adjudicated", MethodDescription: "Decreed by a water court",
		ApplicableResourceTypeCV: "Surface Ground", MethodTypeCV: "Legal Processes",
	}
	permitted := domain.MethodRow{
		MethodUUID: "M_PERMIT", MethodName: "Permitted", MethodDescription: "Issued by the state engineer",
		ApplicableResourceTypeCV: "Surface Ground", MethodTypeCV: "Legal Processes",
	}

	river := domain.WaterSourceRow{
		WaterSourceUUID: "WS_COLO", WaterSourceNativeID: "COLO-R", WaterSourceName: "Colorado River",
		WaterSourceType: "Surface Water", WaterSourceTypeWaDE: "Surface Water",
	}
	aquifer := domain.WaterSourceRow{
		WaterSourceUUID: "WS_MESILLA", WaterSourceNativeID: "MES-AQ", WaterSourceName: "Mesilla Basin Aquifer",
		WaterSourceType: "Groundwater", WaterSourceTypeWaDE: "Groundwater",
	}
	reuse := domain.WaterSourceRow{
		WaterSourceUUID: "WS_REUSE", WaterSourceNativeID: "RU-1", WaterSourceName: "Municipal Effluent",
		WaterSourceType: "Reuse", WaterSourceTypeWaDE: "Reuse",
	}
	sacramento := domain.WaterSourceRow{
		WaterSourceUUID: "WS_SAC", WaterSourceNativeID: "SAC-R", WaterSourceName: "Sacramento River",
		WaterSourceType: "Surface", WaterSourceTypeWaDE: "Surface Water",
	}

	grandJunctionPOD := site("S_GJ_POD", "POD", "CO", 39.06, -108.55, river)
	grandJunctionPOU := site("S_GJ_POU", "POU", "CO", 39.08, -108.50, river)
	grandJunctionPOD.PodToPou = []domain.PodToPouRow{{
		PODSiteUUID: "S_GJ_POD", POUSiteUUID: "S_GJ_POU", StartDate: date(1950, 1, 1),
	}}
	lasCruces := site("S_LC_POD", "POD", "NM", 32.31, -106.78, aquifer)
	albuquerque := site("S_ABQ_POD", "POD", "NM", 35.08, -106.65, reuse)
	moab := site("S_MOAB_POD", "POD", "UT", 38.57, -109.55, river)
	saltLake := site("S_SLC_POU", "POU", "UT", 40.76, -111.89)
	sacramentoPOD := site("S_SAC_POD", "POD", "CA", 38.58, -121.49, sacramento)
	unlocated := domain.Site{SiteRow: domain.SiteRow{SiteUUID: "S_NOLOC", PODorPOUSite: "POD", StateCV: "NM"}}

	return []domain.Record{
		{
			ID: 1, UUID: "CODWR_WR1", NativeID: "CO-0001", Owner: "Grand Valley Irrigation Company",
			OwnerClassification: "Private", OwnerClassificationWaDE: "Private",
			PriorityDate: date(1882, 8, 22), LegalStatus: "Decreed",
			Flow: ptr(640.0), Volume: ptr(120000.0), ExemptOfVolumeFlowPriority: ptr(false),
			PrimaryUseCategory: "Agriculture Irrigation",
			BeneficialUses:     []domain.BeneficialUse{{Name: "Irrigation", WaDEName: "Agriculture Irrigation"}},
			State:              "CO", Sites: []domain.Site{grandJunctionPOD, grandJunctionPOU},
			Organization: coOrg, Variable: allocation, Method: adjudicated,
		},
		{
			ID: 2, UUID: "CODWR_WR2", NativeID: "CO-0002", Owner: "City of Grand Junction",
			OwnerClassification: "Municipal", OwnerClassificationWaDE: "Local Government",
			PriorityDate: date(1905, 3, 1), LegalStatus: "Decreed",
			Flow: ptr(12.5), Volume: nil, ExemptOfVolumeFlowPriority: ptr(false),
			PrimaryUseCategory: "Municipal",
			BeneficialUses: []domain.BeneficialUse{
				{Name: "Municipal", WaDEName: "Municipal"},
				{Name: "Fire Protection", WaDEName: "Fire"},
			},
			State: "CO", Sites: []domain.Site{grandJunctionPOD},
			Organization: coOrg, Variable: allocation, Method: adjudicated,
		},
		{
			ID: 3, UUID: "NMOSE_WR1", NativeID: "LRG-0431", Owner: "Elephant Butte Irrigation District",
			OwnerClassification: "Irrigation District", OwnerClassificationWaDE: "Special District",
			PriorityDate: date(1906, 1, 1), LegalStatus: "Adjudicated",
			Flow: nil, Volume: ptr(3000.0), ExemptOfVolumeFlowPriority: ptr(false),
			PrimaryUseCategory: "Agriculture Irrigation",
			BeneficialUses:     []domain.BeneficialUse{{Name: "IRR", WaDEName: "Agriculture Irrigation"}},
			State:              "NM", Sites: []domain.Site{lasCruces},
			Organization: nmOrg, Variable: allocation, Method: permitted,
		},
		{
			ID: 4, UUID: "NMOSE_WR2", NativeID: "RG-1200", Owner: "Albuquerque Bernalillo County Water Utility",
			OwnerClassification: "Municipal", OwnerClassificationWaDE: "Local Government",
			PriorityDate: date(1963, 7, 15), LegalStatus: "Permitted",
			Flow: ptr(20.0), Volume: ptr(15000.0), ExemptOfVolumeFlowPriority: nil,
			PrimaryUseCategory: "Municipal",
			BeneficialUses:     []domain.BeneficialUse{{Name: "MUN", WaDEName: "Municipal"}},
			State:              "NM", Sites: []domain.Site{albuquerque},
			Organization: nmOrg, Variable: allocation, Method: permitted,
		},
		{
			ID: 5, UUID: "NMOSE_WR3", NativeID: "RG-1300", Owner: "Domestic Well 100%_Owner",
			OwnerClassification: "Private", OwnerClassificationWaDE: "Private",
			PriorityDate: nil, LegalStatus: "Declared",
			Flow: nil, Volume: ptr(1.0), ExemptOfVolumeFlowPriority: ptr(true),
			PrimaryUseCategory: "Domestic",
			BeneficialUses:     []domain.BeneficialUse{{Name: "DOM", WaDEName: "Domestic"}},
			State:              "NM", Sites: []domain.Site{unlocated},
			Organization: nmOrg, Variable: allocation, Method: permitted,
		},
		{
			ID: 6, UUID: "UTDWRi_WR1", NativeID: "01-100", Owner: "Moab Irrigation Co",
			OwnerClassification: "Private", OwnerClassificationWaDE: "Private",
			PriorityDate: date(1905, 3, 1), LegalStatus: "Perfected",
			Flow: ptr(8.0), Volume: ptr(2200.0), ExemptOfVolumeFlowPriority: ptr(false),
			PrimaryUseCategory: "Agriculture Irrigation",
			BeneficialUses: []domain.BeneficialUse{
				{Name: "Irrigation", WaDEName: "Agriculture Irrigation"},
				{Name: "Stockwatering", WaDEName: "Livestock"},
			},
			State: "UT", Sites: []domain.Site{moab, saltLake},
			Organization: utOrg, Variable: allocation, Method: adjudicated,
		},
		{
			ID: 7, UUID: "UTDWRi_WR2", NativeID: "57-9000", Owner: "Salt Lake City Corporation",
			OwnerClassification: "Municipal", OwnerClassificationWaDE: "Local Government",
			PriorityDate: date(1990, 12, 31), ExpirationDate: date(2040, 12, 31), LegalStatus: "Approved",
			Flow: ptr(50.0), Volume: ptr(36000.0), ExemptOfVolumeFlowPriority: ptr(false),
			PrimaryUseCategory: "Municipal",
			BeneficialUses:     []domain.BeneficialUse{{Name: "Municipal", WaDEName: "Municipal"}},
			State:              "UT", Sites: []domain.Site{saltLake},
			Organization: utOrg, Variable: allocation, Method: permitted,
		},
		{
			ID: 8, UUID: "CSWRCB_WR1", NativeID: "A000123", Owner: "Sacramento Suburban Water District",
			OwnerClassification: "Special District", OwnerClassificationWaDE: "Special District",
			PriorityDate: date(1914, 12, 19), LegalStatus: "Licensed",
			Flow: ptr(100.0), Volume: ptr(50000.0), ExemptOfVolumeFlowPriority: ptr(false),
			PrimaryUseCategory: "",
			BeneficialUses:     nil,
			State:              "CA", Sites: []domain.Site{sacramentoPOD},
			Organization: caOrg, Variable: allocation, Method: permitted,
		},
	}
}

func site(uuid, kind, state string, lat, lon float64, sources ...domain.WaterSourceRow) domain.Site {
	return domain.Site{
		SiteRow: domain.SiteRow{
			SiteUUID: uuid, SiteNativeID: uuid + "-N", SiteName: uuid, SiteTypeCV: "Unspecified",
			PODorPOUSite: kind, Latitude: ptr(lat), Longitude: ptr(lon),
			CoordinateMethodCV: "Digitized", StateCV: state,
		},
		WaterSources: sources,
	}
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func ptr[T any](v T) *T { return &v }
