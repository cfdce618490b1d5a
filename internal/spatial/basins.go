package spatial

import (
	"sort"
	"strings"

	"github.com/twpayne/go-geom"
)

// Basin is a named river basin boundary.
type Basin struct {
	Name    string
	Polygon *geom.Polygon
}

// Simplified outlines in WGS84 lon/lat. They are coarse on purpose; the
// detailed boundaries live in the upstream GIS layer.
var basins = []Basin{
	{
		Name: "Colorado River Basin",
		Polygon: ring(
			-116.0, 31.5,
			-109.0, 31.5,
			-107.0, 35.0,
			-105.5, 37.5,
			-106.5, 43.5,
			-110.5, 43.5,
			-111.2, 40.0,
			-113.5, 37.5,
			-116.0, 31.5,
		),
	},
	{
		Name: "Columbia River Basin",
		Polygon: ring(
			-124.0, 41.5,
			-110.0, 41.5,
			-110.0, 53.0,
			-124.0, 53.0,
			-124.0, 41.5,
		),
	},
	{
		Name: "Rio Grande River Basin",
		Polygon: ring(
			-108.5, 25.8,
			-97.0, 25.8,
			-104.0, 32.0,
			-105.2, 38.0,
			-107.5, 38.0,
			-108.5, 25.8,
		),
	},
	{
		Name: "Sacramento - San Joaquin River Basin",
		Polygon: ring(
			-123.0, 35.0,
			-118.5, 35.0,
			-120.0, 42.0,
			-122.8, 42.0,
			-123.0, 35.0,
		),
	},
	{
		Name: "Arkansas River Basin",
		Polygon: ring(
			-106.5, 35.0,
			-91.0, 33.5,
			-91.0, 36.5,
			-97.0, 39.5,
			-106.5, 39.5,
			-106.5, 35.0,
		),
	},
}

var basinByName = func() map[string]Basin {
	m := make(map[string]Basin, len(basins))
	for _, b := range basins {
		m[strings.ToLower(b.Name)] = b
	}
	return m
}()

// LookupBasin finds a basin by exact name, ignoring case.
func LookupBasin(name string) (Basin, bool) {
	b, ok := basinByName[strings.ToLower(strings.TrimSpace(name))]
	return b, ok
}

// BasinNames lists the known basin names in alphabetical order.
func BasinNames() []string {
	names := make([]string, 0, len(basins))
	for _, b := range basins {
		names = append(names, b.Name)
	}
	sort.Strings(names)
	return names
}

func ring(lonlat ...float64) *geom.Polygon {
	coords := make([]geom.Coord, 0, len(lonlat)/2)
	for i := 0; i+1 < len(lonlat); i += 2 {
		coords = append(coords, geom.Coord{lonlat[i], lonlat[i+1]})
	}
	return geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{coords}).SetSRID(4326)
}
