// Package spatial turns named river basins and caller-drawn GeoJSON into
// polygons, and answers point-in-polygon questions about them.
package spatial

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkt"
	"github.com/twpayne/go-geom/xy"

	"github.com/openwaterdata/waterrights/internal/domain"
)

var (
	errNotPolygonal = errors.New("geometry must be a Polygon or MultiPolygon")
	errEmpty        = errors.New("polygon has no closed exterior ring")
)

// Resolver populates SearchCriteria.Geometries.
type Resolver struct{}

// NewResolver returns a Resolver over the built-in basin table.
func NewResolver() *Resolver { return &Resolver{} }

// Resolve returns a copy of c whose Geometries hold one polygon per named
// basin followed by one per filterGeometry entry. Blank entries are skipped.
// Site UUIDs are left alone; the predicate builder unions them in.
func (r *Resolver) Resolve(c domain.SearchCriteria) (domain.SearchCriteria, error) {
	out := c
	out.Geometries = nil

	for _, name := range domain.NonBlank(c.RiverBasinNames) {
		b, ok := LookupBasin(name)
		if !ok {
			return domain.SearchCriteria{}, &domain.UnknownRegionError{Name: name}
		}
		out.Geometries = append(out.Geometries, b.Polygon)
	}

	for i, raw := range c.FilterGeometry {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		g, err := ParseGeoJSON([]byte(raw))
		if err != nil {
			return domain.SearchCriteria{}, &domain.InvalidGeometryError{Index: i, Err: err}
		}
		out.Geometries = append(out.Geometries, g)
	}

	return out, nil
}

// ParseGeoJSON decodes a GeoJSON geometry or Feature and checks that it is a
// non-empty Polygon or MultiPolygon.
func ParseGeoJSON(data []byte) (geom.T, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}

	var g geom.T
	switch head.Type {
	case "Feature":
		var f geojson.Feature
		if err := f.UnmarshalJSON(data); err != nil {
			return nil, fmt.Errorf("decode feature: %w", err)
		}
		g = f.Geometry
	case "":
		return nil, errors.New("geojson object has no type")
	default:
		if err := geojson.Unmarshal(data, &g); err != nil {
			return nil, fmt.Errorf("decode geometry: %w", err)
		}
	}

	if err := checkPolygonal(g); err != nil {
		return nil, err
	}
	return g, nil
}

func checkPolygonal(g geom.T) error {
	switch p := g.(type) {
	case *geom.Polygon:
		return checkPolygon(p)
	case *geom.MultiPolygon:
		if p.NumPolygons() == 0 {
			return errEmpty
		}
		for i := 0; i < p.NumPolygons(); i++ {
			if err := checkPolygon(p.Polygon(i)); err != nil {
				return err
			}
		}
		return nil
	default:
		return errNotPolygonal
	}
}

func checkPolygon(p *geom.Polygon) error {
	if p == nil || p.NumLinearRings() == 0 {
		return errEmpty
	}
	// A closed ring needs at least four coordinates.
	if p.LinearRing(0).NumCoords() < 4 {
		return errEmpty
	}
	return nil
}

// Intersects reports whether the point lies inside g. Points inside a hole
// do not count.
func Intersects(g geom.T, lon, lat float64) bool {
	switch p := g.(type) {
	case *geom.Polygon:
		return inPolygon(p, lon, lat)
	case *geom.MultiPolygon:
		for i := 0; i < p.NumPolygons(); i++ {
			if inPolygon(p.Polygon(i), lon, lat) {
				return true
			}
		}
	}
	return false
}

func inPolygon(p *geom.Polygon, lon, lat float64) bool {
	if p.NumLinearRings() == 0 {
		return false
	}
	pt := geom.Coord{lon, lat}
	layout := p.Layout()
	if !xy.IsPointInRing(layout, pt, p.LinearRing(0).FlatCoords()) {
		return false
	}
	for i := 1; i < p.NumLinearRings(); i++ {
		if xy.IsPointInRing(layout, pt, p.LinearRing(i).FlatCoords()) {
			return false
		}
	}
	return true
}

// WKT encodes g for ST_GeomFromText.
func WKT(g geom.T) (string, error) {
	s, err := wkt.Marshal(g)
	if err != nil {
		return "", fmt.Errorf("encode wkt: %w", err)
	}
	return s, nil
}
