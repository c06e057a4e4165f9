package seeds_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/rzane/advanced-demo/internal/config"
	"github.com/rzane/advanced-demo/internal/db"
	"github.com/rzane/advanced-demo/internal/places"
	"github.com/rzane/advanced-demo/internal/seeds"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	d, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: db.NewLogger("silent")})
	require.NoError(t, err)

	prev := db.DB
	db.DB = d
	t.Cleanup(func() {
		db.DB = prev
		_ = db.Close(d)
	})

	require.NoError(t, places.Init())
	return d
}

func counts(t *testing.T, d *gorm.DB) (states, cities int64) {
	t.Helper()
	require.NoError(t, d.Model(&places.State{}).Count(&states).Error)
	require.NoError(t, d.Model(&places.City{}).Count(&cities).Error)
	return states, cities
}

var sample = []seeds.StateGroup{
	{Name: "California", Cities: []seeds.CityRow{
		{Name: "Los Angeles", Rank: 2, Population: 4000000},
		{Name: "San Diego", Rank: 8, Population: 1355896},
	}},
	{Name: "Texas", Cities: []seeds.CityRow{
		{Name: "Houston", Rank: 4, Population: 2195914},
	}},
}

func TestSeed(t *testing.T) {
	d := setupDB(t)
	opts := seeds.Options{Namespace: config.DefaultSeedNamespace}

	res, err := seeds.Seed(context.Background(), d, sample, opts)
	require.NoError(t, err)
	assert.Equal(t, 2, res.States)
	assert.Equal(t, 3, res.Cities)

	states, cities := counts(t, d)
	assert.Equal(t, int64(2), states)
	assert.Equal(t, int64(3), cities)

	var la places.City
	require.NoError(t, d.Preload("State").First(&la, "name = ?", "Los Angeles").Error)
	assert.Equal(t, places.CityID(opts.Namespace, "California", "Los Angeles"), la.ID)
	assert.Equal(t, 2, la.Rank)
	assert.Equal(t, 4000000, la.Population)
	require.NotNil(t, la.State)
	assert.Equal(t, "California", la.State.Name)
	assert.Equal(t, places.StateID(opts.Namespace, "California"), la.StateID)
}

func TestSeed_IsAtomic(t *testing.T) {
	d := setupDB(t)

	broken := append([]seeds.StateGroup{}, sample...)
	broken = append(broken, seeds.StateGroup{Name: "Ohio", Cities: []seeds.CityRow{
		{Name: "Columbus", Rank: 15, Population: 822553},
		{Name: "Columbus", Rank: 16, Population: 1},
	}})

	_, err := seeds.Seed(context.Background(), d, broken, seeds.Options{Namespace: config.DefaultSeedNamespace})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Ohio")

	states, cities := counts(t, d)
	assert.Zero(t, states)
	assert.Zero(t, cities)
}

func TestSeed_TwiceRequiresWipe(t *testing.T) {
	d := setupDB(t)
	opts := seeds.Options{Namespace: config.DefaultSeedNamespace}

	_, err := seeds.Seed(context.Background(), d, sample, opts)
	require.NoError(t, err)

	_, err = seeds.Seed(context.Background(), d, sample, opts)
	require.Error(t, err)

	states, cities := counts(t, d)
	assert.Equal(t, int64(2), states)
	assert.Equal(t, int64(3), cities)

	opts.Wipe = true
	res, err := seeds.Seed(context.Background(), d, sample[:1], opts)
	require.NoError(t, err)
	assert.Equal(t, 1, res.States)

	states, cities = counts(t, d)
	assert.Equal(t, int64(1), states)
	assert.Equal(t, int64(2), cities)
}

func TestSeed_StateWithoutCities(t *testing.T) {
	d := setupDB(t)

	res, err := seeds.Seed(context.Background(), d, []seeds.StateGroup{{Name: "Wyoming"}}, seeds.Options{Namespace: config.DefaultSeedNamespace})
	require.NoError(t, err)
	assert.Equal(t, 1, res.States)
	assert.Zero(t, res.Cities)
}

func TestSeed_CaseVariantStatesWithWipe(t *testing.T) {
	d := setupDB(t)

	groups, err := seeds.Plan([]seeds.Record{
		{State: "Texas", City: "Houston", Rank: "4", Population: "2195914"},
		{State: "TEXAS", City: "Austin", Rank: "11", Population: "885400"},
	})
	require.NoError(t, err)

	res, err := seeds.Seed(context.Background(), d, groups, seeds.Options{Namespace: config.DefaultSeedNamespace, Wipe: true})
	require.NoError(t, err)
	assert.Equal(t, 1, res.States)
	assert.Equal(t, 2, res.Cities)

	var texas places.State
	require.NoError(t, d.Preload("Cities").First(&texas, "name = ?", "Texas").Error)
	assert.Len(t, texas.Cities, 2)
}
