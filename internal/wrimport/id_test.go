package wrimport_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/openwaterdata/waterrights/internal/wrimport"
)

func TestIDs_StableAndScoped(t *testing.T) {
	ns := wrimport.DefaultNamespace

	assert.Equal(t, wrimport.SiteID(ns, "co", "GJ-POD"), wrimport.SiteID(ns, "CO", "  gj-pod "))
	assert.NotEqual(t, wrimport.SiteID(ns, "CO", "1"), wrimport.SiteID(ns, "UT", "1"))
	assert.NotEqual(t, wrimport.SiteID(ns, "CO", "1"), wrimport.WaterSourceID(ns, "CO", "1"))
	assert.NotEqual(t, wrimport.AllocationID(ns, "CO", "1"), wrimport.AllocationID(uuid.New(), "CO", "1"))

	id, err := uuid.Parse(wrimport.OrganizationID(ns, "NM", "New Mexico  OSE"))
	assert.NoError(t, err)
	assert.Equal(t, uuid.Version(5), id.Version())
	assert.Equal(t, id.String(), wrimport.OrganizationID(ns, "NM", "new mexico ose"))
}

func TestRun_RequiresWipe(t *testing.T) {
	err := wrimport.Run(t.Context(), wrimport.Config{CSVPath: "unused.csv"}, nil)
	assert.ErrorContains(t, err, "refusing to run")
}
