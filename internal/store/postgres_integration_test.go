package store_test

import (
	"context"
	"os"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/openwaterdata/waterrights/internal/analytics"
	"github.com/openwaterdata/waterrights/internal/config"
	"github.com/openwaterdata/waterrights/internal/db"
	"github.com/openwaterdata/waterrights/internal/domain"
	"github.com/openwaterdata/waterrights/internal/filter"
	"github.com/openwaterdata/waterrights/internal/spatial"
	"github.com/openwaterdata/waterrights/internal/store"
	"github.com/openwaterdata/waterrights/internal/wrimport"
)

// pgStore is nil when no database is configured; the parity tests then skip.
var pgStore *store.Postgres

func TestMain(m *testing.M) {
	// Load .env.local relative to the repository root.
	_ = godotenv.Load("../../.env.local")

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		os.Exit(m.Run())
	}

	gdb, err := db.Connect(config.DatabaseConfig{
		URL: databaseURL, MaxOpenConns: 4, MaxIdleConns: 2, ConnMaxLifetimeMin: 5, SlowQueryMS: 1000,
	}, zap.NewNop())
	if err != nil {
		panic(err)
	}
	ctx := context.Background()
	if err := db.Migrate(ctx, gdb); err != nil {
		panic(err)
	}
	err = gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := wrimport.Wipe(tx); err != nil {
			return err
		}
		return wrimport.Load(tx, store.SampleRecords())
	})
	if err != nil {
		panic(err)
	}
	pgStore = store.NewPostgres(gdb)

	code := m.Run()
	_ = db.Close(gdb)
	os.Exit(code)
}

func requireDB(t *testing.T) {
	t.Helper()
	if pgStore == nil {
		t.Skip("DATABASE_URL not set")
	}
}

var parityCases = []struct {
	name     string
	criteria domain.SearchCriteria
}{
	{"beneficial use", domain.SearchCriteria{BeneficialUses: []string{"Agriculture Irrigation"}}},
	{"owner classification", domain.SearchCriteria{OwnerClassifications: []string{"Local Government"}}},
	{"water source type", domain.SearchCriteria{WaterSourceTypes: []string{"Surface Water"}}},
	{"states", domain.SearchCriteria{States: []string{"nm", "UT"}}},
	{"not exempt", domain.SearchCriteria{ExemptOfVolumeFlowPriority: ptr(false)}},
	{"flow", domain.SearchCriteria{MinimumFlow: ptr(12.5), MaximumFlow: ptr(100.0)}},
	{"volume", domain.SearchCriteria{MaximumVolume: ptr(3000.0)}},
	{"owner", domain.SearchCriteria{AllocationOwner: "100%_"}},
	{"pou", domain.SearchCriteria{PodOrPou: "POU"}},
	{"basin", domain.SearchCriteria{RiverBasinNames: []string{"Colorado River Basin"}}},
	{"basin or site", domain.SearchCriteria{
		RiverBasinNames: []string{"Rio Grande River Basin"}, SiteUUIDs: []string{"S_NOLOC"},
	}},
}

func build(t *testing.T, c domain.SearchCriteria) filter.Predicate {
	t.Helper()
	resolved, err := spatial.NewResolver().Resolve(c)
	require.NoError(t, err)
	return filter.Build(resolved)
}

func uuidsOf(recs []domain.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.UUID
	}
	return out
}

func TestPostgres_MatchesMemory(t *testing.T) {
	requireDB(t)
	mem := store.NewMemory(store.SampleRecords())
	ctx := context.Background()

	for _, tc := range parityCases {
		t.Run(tc.name, func(t *testing.T) {
			pred := build(t, tc.criteria)

			wantCount, err := mem.CountRecords(ctx, pred)
			require.NoError(t, err)
			gotCount, err := pgStore.CountRecords(ctx, pred)
			require.NoError(t, err)
			assert.Equal(t, wantCount, gotCount)

			want, err := mem.FindRecords(ctx, pred, 0, 100)
			require.NoError(t, err)
			got, err := pgStore.FindRecords(ctx, pred, 0, 100)
			require.NoError(t, err)
			assert.Equal(t, uuidsOf(want), uuidsOf(got))

			wantSum, err := mem.SummarizeByPrimaryUse(ctx, pred)
			require.NoError(t, err)
			gotSum, err := pgStore.SummarizeByPrimaryUse(ctx, pred)
			require.NoError(t, err)
			analytics.Sort(gotSum)
			assert.Equal(t, wantSum, gotSum)

			wantSites, err := mem.Sites(ctx, pred)
			require.NoError(t, err)
			gotSites, err := pgStore.Sites(ctx, pred)
			require.NoError(t, err)
			assert.Equal(t, len(wantSites), len(gotSites))

			wantAllocs, err := mem.WaterAllocations(ctx, pred)
			require.NoError(t, err)
			gotAllocs, err := pgStore.WaterAllocations(ctx, pred)
			require.NoError(t, err)
			assert.Equal(t, len(wantAllocs), len(gotAllocs))
		})
	}
}

func TestPostgres_Record(t *testing.T) {
	requireDB(t)
	ctx := context.Background()

	rec, err := pgStore.Record(ctx, "CODWR_WR1")
	require.NoError(t, err)
	assert.Equal(t, "CO", rec.State)
	assert.Equal(t, "M_ADJ", rec.Method.MethodUUID)
	require.Len(t, rec.Sites, 2)

	_, err = pgStore.Record(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostgres_RecordsBySite(t *testing.T) {
	requireDB(t)

	recs, err := pgStore.RecordsBySite(context.Background(), "S_GJ_POD")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "CODWR_WR1", recs[0].UUID)
	assert.Equal(t, "CODWR_WR2", recs[1].UUID)
	assert.Len(t, recs[1].BeneficialUses, 2)
}

func TestPostgres_Site(t *testing.T) {
	requireDB(t)
	ctx := context.Background()

	want, err := store.NewMemory(store.SampleRecords()).Site(ctx, "S_GJ_POD")
	require.NoError(t, err)

	got, err := pgStore.Site(ctx, "S_GJ_POD")
	require.NoError(t, err)
	assert.Equal(t, want.SiteUUID, got.SiteUUID)
	assert.Equal(t, want.PODorPOUSite, got.PODorPOUSite)
	require.Len(t, got.WaterSources, 1)
	assert.Equal(t, "WS_COLO", got.WaterSources[0].WaterSourceUUID)
	require.Len(t, got.PodToPou, 1)
	assert.Equal(t, "S_GJ_POU", got.PodToPou[0].POUSiteUUID)

	_, err = pgStore.Site(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func ptr[T any](v T) *T { return &v }
