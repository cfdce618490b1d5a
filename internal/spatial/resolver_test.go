package spatial

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openwaterdata/waterrights/internal/domain"
)

const squareWithHole = `{"type":"Polygon","coordinates":[
	[[-110,40],[-100,40],[-100,50],[-110,50],[-110,40]],
	[[-106,44],[-104,44],[-104,46],[-106,46],[-106,44]]
]}`

func TestResolve_BasinName(t *testing.T) {
	r := NewResolver()

	got, err := r.Resolve(domain.SearchCriteria{RiverBasinNames: []string{"colorado river basin"}})
	require.NoError(t, err)
	require.Len(t, got.Geometries, 1)

	// Grand Junction, CO
	assert.True(t, Intersects(got.Geometries[0], -108.55, 39.06))
	// Seattle, WA
	assert.False(t, Intersects(got.Geometries[0], -122.33, 47.61))
}

func TestResolve_UnknownBasin(t *testing.T) {
	_, err := NewResolver().Resolve(domain.SearchCriteria{RiverBasinNames: []string{"Mississippi"}})

	var ure *domain.UnknownRegionError
	require.ErrorAs(t, err, &ure)
	assert.Equal(t, "Mississippi", ure.Name)
	assert.ErrorIs(t, err, domain.ErrUnknownRegion)
}

func TestResolve_GeometryAndFeature(t *testing.T) {
	feature := `{"type":"Feature","properties":{},"geometry":` + squareWithHole + `}`

	got, err := NewResolver().Resolve(domain.SearchCriteria{
		FilterGeometry: []string{squareWithHole, "  ", feature},
	})
	require.NoError(t, err)
	require.Len(t, got.Geometries, 2)

	for _, g := range got.Geometries {
		assert.True(t, Intersects(g, -108, 42), "inside the shell")
		assert.False(t, Intersects(g, -105, 45), "inside the hole")
		assert.False(t, Intersects(g, -90, 42), "outside")
	}
}

func TestResolve_InvalidGeometry(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "{nope"},
		{"no type", `{"coordinates":[]}`},
		{"point", `{"type":"Point","coordinates":[-105,40]}`},
		{"line", `{"type":"LineString","coordinates":[[-105,40],[-104,41]]}`},
		{"empty polygon", `{"type":"Polygon","coordinates":[]}`},
		{"open ring", `{"type":"Polygon","coordinates":[[[-105,40],[-104,41]]]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewResolver().Resolve(domain.SearchCriteria{
				FilterGeometry: []string{squareWithHole, tt.raw},
			})

			var ige *domain.InvalidGeometryError
			require.ErrorAs(t, err, &ige)
			assert.Equal(t, 1, ige.Index)
			assert.True(t, errors.Is(err, domain.ErrInvalidGeometry))
		})
	}
}

func TestResolve_LeavesInputUntouched(t *testing.T) {
	in := domain.SearchCriteria{
		RiverBasinNames: []string{"Arkansas River Basin"},
		SiteUUIDs:       []string{"site-1"},
	}

	out, err := NewResolver().Resolve(in)
	require.NoError(t, err)

	assert.Nil(t, in.Geometries)
	assert.Len(t, out.Geometries, 1)
	assert.Equal(t, []string{"site-1"}, out.SiteUUIDs)
}

func TestBasinNames(t *testing.T) {
	names := BasinNames()
	assert.Len(t, names, 5)
	assert.Contains(t, names, "Sacramento - San Joaquin River Basin")

	_, ok := LookupBasin("  ARKANSAS river basin ")
	assert.True(t, ok)
}

func TestWKT(t *testing.T) {
	b, ok := LookupBasin("Columbia River Basin")
	require.True(t, ok)

	s, err := WKT(b.Polygon)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(s, "POLYGON"), s)
}
