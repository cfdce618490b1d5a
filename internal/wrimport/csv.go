package wrimport

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/openwaterdata/waterrights/internal/domain"
)

// Required columns. Every other column is optional and may be absent.
var required = []string{"organization_name", "state", "allocation_native_id"}

// ParseFile reads a water-rights CSV from disk. See ParseCSV.
func ParseFile(path string, ns uuid.UUID) ([]domain.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseCSV(bufio.NewReader(f), ns)
}

// ParseCSV turns a denormalised export, one row per allocation and site,
// into records. Rows sharing a state and allocation native id fold into one
// record. Missing UUIDs are derived from ns so re-imports are stable.
// Records are numbered in order of first appearance.
func ParseCSV(in io.Reader, ns uuid.UUID) ([]domain.Record, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, errors.New("csv has no data rows")
	}

	header := records[0]
	// Handle BOM on first header cell
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	col := map[string]int{}
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, k := range required {
		if _, ok := col[k]; !ok {
			return nil, fmt.Errorf("missing required column: %s", k)
		}
	}

	b := newBuilder(ns)
	for rowIdx := 1; rowIdx < len(records); rowIdx++ {
		rec := records[rowIdx]
		get := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		if err := b.add(get); err != nil {
			return nil, fmt.Errorf("row %d: %w", rowIdx+1, err)
		}
	}
	return b.records()
}

// builder accumulates rows. Sites are shared between allocations, so they
// are collected by UUID and copied into records at the end.
type builder struct {
	ns      uuid.UUID
	order   []string
	byUUID  map[string]*domain.Record
	siteIDs map[string][]string
	sites   map[string]*domain.Site
	pouRefs map[string]string
}

func newBuilder(ns uuid.UUID) *builder {
	return &builder{
		ns:      ns,
		byUUID:  map[string]*domain.Record{},
		siteIDs: map[string][]string{},
		sites:   map[string]*domain.Site{},
		pouRefs: map[string]string{},
	}
}

func (b *builder) add(get func(string) string) error {
	state := strings.ToUpper(get("state"))
	if len(state) != 2 {
		return fmt.Errorf("state must be a two-letter code (got %q)", state)
	}
	orgName := get("organization_name")
	if orgName == "" {
		return errors.New("organization_name is required")
	}
	nativeID := get("allocation_native_id")
	if nativeID == "" {
		return errors.New("allocation_native_id is required")
	}

	allocUUID := orDefault(get("allocation_uuid"), AllocationID(b.ns, state, nativeID))
	rec, seen := b.byUUID[allocUUID]
	if !seen {
		var err error
		rec, err = b.newRecord(get, state, orgName, nativeID, allocUUID)
		if err != nil {
			return err
		}
		b.byUUID[allocUUID] = rec
		b.order = append(b.order, allocUUID)
	}

	siteNative := get("site_native_id")
	siteUUID := get("site_uuid")
	if siteNative == "" && siteUUID == "" {
		return nil
	}
	siteUUID = orDefault(siteUUID, SiteID(b.ns, state, siteNative))

	site, err := b.site(get, state, siteUUID, siteNative)
	if err != nil {
		return err
	}
	if !contains(b.siteIDs[allocUUID], siteUUID) {
		b.siteIDs[allocUUID] = append(b.siteIDs[allocUUID], siteUUID)
	}

	if wsNative, wsUUID := get("water_source_native_id"), get("water_source_uuid"); wsNative != "" || wsUUID != "" {
		ws := domain.WaterSourceRow{
			WaterSourceUUID:     orDefault(wsUUID, WaterSourceID(b.ns, state, wsNative)),
			WaterSourceNativeID: wsNative,
			WaterSourceName:     get("water_source_name"),
			WaterSourceType:     get("water_source_type"),
			WaterSourceTypeWaDE: orDefault(get("water_source_type_wade"), get("water_source_type")),
		}
		if !hasSource(site.WaterSources, ws.WaterSourceUUID) {
			site.WaterSources = append(site.WaterSources, ws)
		}
	}

	if pou := get("pou_site_native_id"); pou != "" {
		pouUUID := SiteID(b.ns, state, pou)
		if !hasLink(site.PodToPou, pouUUID) {
			start, err := parseDate(get("pod_pou_start_date"))
			if err != nil {
				return fmt.Errorf("pod_pou_start_date: %w", err)
			}
			site.PodToPou = append(site.PodToPou, domain.PodToPouRow{
				PODSiteUUID: siteUUID, POUSiteUUID: pouUUID, StartDate: start,
			})
			b.pouRefs[pouUUID] = pou
		}
	}
	return nil
}

func (b *builder) newRecord(get func(string) string, state, orgName, nativeID, allocUUID string) (*domain.Record, error) {
	priority, err := parseDate(get("priority_date"))
	if err != nil {
		return nil, fmt.Errorf("priority_date: %w", err)
	}
	expiration, err := parseDate(get("expiration_date"))
	if err != nil {
		return nil, fmt.Errorf("expiration_date: %w", err)
	}
	flow, err := parseFloat(get("flow_cfs"))
	if err != nil {
		return nil, fmt.Errorf("flow_cfs: %w", err)
	}
	volume, err := parseFloat(get("volume_af"))
	if err != nil {
		return nil, fmt.Errorf("volume_af: %w", err)
	}
	exempt, err := parseBool(get("exempt"))
	if err != nil {
		return nil, fmt.Errorf("exempt: %w", err)
	}

	varCV := orDefault(get("variable_specific_cv"), "Allocation All")
	methodName := orDefault(get("method_name"), "Unspecified")

	return &domain.Record{
		ID:                         int64(len(b.order) + 1),
		UUID:                       allocUUID,
		NativeID:                   nativeID,
		Owner:                      get("allocation_owner"),
		OwnerClassification:        get("owner_classification"),
		OwnerClassificationWaDE:    orDefault(get("owner_classification_wade"), get("owner_classification")),
		PriorityDate:               priority,
		ExpirationDate:             expiration,
		LegalStatus:                get("legal_status"),
		Flow:                       flow,
		Volume:                     volume,
		ExemptOfVolumeFlowPriority: exempt,
		PrimaryUseCategory:         get("primary_use_category"),
		BeneficialUses:             parseUses(get("beneficial_uses")),
		State:                      state,
		Organization: domain.OrganizationRow{
			OrganizationUUID:    orDefault(get("organization_uuid"), OrganizationID(b.ns, state, orgName)),
			OrganizationName:    orgName,
			OrganizationWebsite: get("organization_website"),
			State:               state,
		},
		Variable: domain.VariableRow{
			VariableSpecificUUID: orDefault(get("variable_specific_uuid"), VariableID(b.ns, state, varCV)),
			VariableSpecificCV:   varCV,
			VariableCV:           get("variable_cv"),
			AmountUnitCV:         get("amount_unit_cv"),
		},
		Method: domain.MethodRow{
			MethodUUID:   orDefault(get("method_uuid"), MethodID(b.ns, state, methodName)),
			MethodName:   methodName,
			MethodTypeCV: get("method_type_cv"),
		},
	}, nil
}

func (b *builder) site(get func(string) string, state, siteUUID, nativeID string) (*domain.Site, error) {
	if s, ok := b.sites[siteUUID]; ok {
		return s, nil
	}
	lat, err := parseFloat(get("latitude"))
	if err != nil {
		return nil, fmt.Errorf("latitude: %w", err)
	}
	lon, err := parseFloat(get("longitude"))
	if err != nil {
		return nil, fmt.Errorf("longitude: %w", err)
	}
	kind := strings.ToUpper(get("pod_or_pou"))
	if kind != "" && kind != "POD" && kind != "POU" {
		return nil, fmt.Errorf("pod_or_pou must be POD or POU (got %q)", kind)
	}
	s := &domain.Site{SiteRow: domain.SiteRow{
		SiteUUID:     siteUUID,
		SiteNativeID: nativeID,
		SiteName:     get("site_name"),
		SiteTypeCV:   get("site_type_cv"),
		PODorPOUSite: kind,
		Latitude:     lat,
		Longitude:    lon,
		County:       get("county"),
		StateCV:      state,
		HUC8:         get("huc8"),
		HUC12:        get("huc12"),
	}}
	b.sites[siteUUID] = s
	return s, nil
}

func (b *builder) records() ([]domain.Record, error) {
	for pouUUID, native := range b.pouRefs {
		if _, ok := b.sites[pouUUID]; !ok {
			return nil, fmt.Errorf("pou_site_native_id %q does not name a site in the file", native)
		}
	}

	out := make([]domain.Record, 0, len(b.order))
	for _, id := range b.order {
		rec := *b.byUUID[id]
		for _, sid := range b.siteIDs[id] {
			rec.Sites = append(rec.Sites, *b.sites[sid])
		}
		out = append(out, rec)
	}
	return out, nil
}

// parseUses reads "Irrigation|Agriculture Irrigation;Stock" into uses. The
// WaDE name defaults to the native one.
func parseUses(raw string) []domain.BeneficialUse {
	var out []domain.BeneficialUse
	seen := map[string]bool{}
	for _, part := range strings.Split(raw, ";") {
		name, wade, _ := strings.Cut(part, "|")
		name, wade = strings.TrimSpace(name), strings.TrimSpace(wade)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, domain.BeneficialUse{Name: name, WaDEName: orDefault(wade, name)})
	}
	return out
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseBool(s string) (*bool, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func hasSource(sources []domain.WaterSourceRow, id string) bool {
	for _, ws := range sources {
		if ws.WaterSourceUUID == id {
			return true
		}
	}
	return false
}

func hasLink(links []domain.PodToPouRow, pouUUID string) bool {
	for _, l := range links {
		if l.POUSiteUUID == pouUUID {
			return true
		}
	}
	return false
}
