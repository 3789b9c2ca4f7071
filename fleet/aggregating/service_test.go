package aggregating

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anton-kapralov/fuel-economy-pulse/statistics/describing"
	"github.com/anton-kapralov/fuel-economy-pulse/vehicle"
)

const delta = 1e-9

func fleet() []vehicle.Record {
	return []vehicle.Record{
		{ID: "2009 Audi A3 2.0T", Make: "Audi", Year: 2009, CityMpg: 21, HighwayMpg: 30},
		{ID: "2012 Buick Lacrosse", Make: "Buick", Year: 2012, CityMpg: 25, HighwayMpg: 36, IsHybrid: true},
		{ID: "2011 BMW ActiveHybrid 750i Sedan", Make: "BMW", Year: 2011, CityMpg: 17, HighwayMpg: 24, IsHybrid: true},
		{ID: "2012 Buick Lacrosse Leather Group", Make: "Buick", Year: 2012, CityMpg: 25, HighwayMpg: 36, IsHybrid: true},
		{ID: "2011 BMW ActiveHybrid 750Li Sedan", Make: "BMW", Year: 2011, CityMpg: 17, HighwayMpg: 24, IsHybrid: true},
		{ID: "2010 Honda Insight", Make: "Honda", Year: 2010, CityMpg: 40, HighwayMpg: 43, IsHybrid: true},
		{ID: "2011 BMW 328i", Make: "BMW", Year: 2011, CityMpg: 18, HighwayMpg: 28},
		{ID: "2012 Buick Regal", Make: "Buick", Year: 2012, CityMpg: 19, HighwayMpg: 31},
		{ID: "2012 Buick Lacrosse Premium I Group", Make: "Buick", Year: 2012, CityMpg: 25, HighwayMpg: 36, IsHybrid: true},
		{ID: "2010 Audi A4", Make: "Audi", Year: 2010, CityMpg: 22, HighwayMpg: 30},
	}
}

func TestAverageEconomy(t *testing.T) {
	got, err := NewService(fleet()).AverageEconomy()
	require.NoError(t, err)
	assert.InDelta(t, 22.9, got.City, delta)
	assert.InDelta(t, 31.8, got.Highway, delta)
}

func TestYearStatistics(t *testing.T) {
	got, err := NewService(fleet()).YearStatistics()
	require.NoError(t, err)

	assert.Equal(t, 10, got.Count)
	assert.Equal(t, 2009.0, got.Min)
	assert.Equal(t, 2012.0, got.Max)
	assert.InDelta(t, 2011.0, got.Median, delta)
	assert.InDelta(t, 2011.0, got.Mean, delta)
	assert.InDelta(t, 1.0, got.Variance, delta)
	assert.InDelta(t, 1.0, got.StandardDeviation, delta)
}

func TestHybridRatio(t *testing.T) {
	records := fleet()
	got, err := NewService(records).HybridRatio()
	require.NoError(t, err)
	assert.InDelta(t, 0.6, got, delta)

	hybrids := 0
	for _, r := range records {
		if r.IsHybrid {
			hybrids++
		}
	}
	assert.Equal(t, hybrids, int(math.Round(got*float64(len(records)))))
}

func TestHybridsByMake(t *testing.T) {
	got, err := NewService(fleet()).HybridsByMake()
	require.NoError(t, err)

	assert.Equal(t, []MakeHybrids{
		{Make: "Buick", Hybrids: []string{
			"2012 Buick Lacrosse",
			"2012 Buick Lacrosse Leather Group",
			"2012 Buick Lacrosse Premium I Group",
		}},
		{Make: "BMW", Hybrids: []string{
			"2011 BMW ActiveHybrid 750i Sedan",
			"2011 BMW ActiveHybrid 750Li Sedan",
		}},
		{Make: "Honda", Hybrids: []string{"2010 Honda Insight"}},
	}, got)
}

func TestHybridsByMakeTiesKeepFirstAppearance(t *testing.T) {
	records := []vehicle.Record{
		{ID: "a1", Make: "Toyota", Year: 2010, IsHybrid: true},
		{ID: "b1", Make: "Ford", Year: 2010},
		{ID: "c1", Make: "Lexus", Year: 2010, IsHybrid: true},
		{ID: "b2", Make: "Ford", Year: 2011, IsHybrid: true},
		{ID: "d1", Make: "Kia", Year: 2011},
	}
	got, err := NewService(records).HybridsByMake()
	require.NoError(t, err)

	makes := make([]string, len(got))
	for i, g := range got {
		makes[i] = g.Make
		assert.NotEmpty(t, g.Hybrids)
	}
	assert.Equal(t, []string{"Toyota", "Ford", "Lexus"}, makes)
}

func TestEconomyByYearAndHybridStatus(t *testing.T) {
	got, err := NewService(fleet()).EconomyByYearAndHybridStatus()
	require.NoError(t, err)

	assert.Len(t, got, 4)
	assert.Equal(t, YearEconomy{NotHybrid: Economy{City: 21, Highway: 30}}, got[2009])

	assert.Equal(t, Economy{City: 40, Highway: 43}, got[2010].Hybrid)
	assert.Equal(t, Economy{City: 22, Highway: 30}, got[2010].NotHybrid)

	assert.InDelta(t, 17.0, got[2011].Hybrid.City, delta)
	assert.InDelta(t, 24.0, got[2011].Hybrid.Highway, delta)
	assert.InDelta(t, 18.0, got[2011].NotHybrid.City, delta)

	assert.InDelta(t, 25.0, got[2012].Hybrid.City, delta)
	assert.InDelta(t, 36.0, got[2012].Hybrid.Highway, delta)
	assert.InDelta(t, 19.0, got[2012].NotHybrid.City, delta)
	assert.InDelta(t, 31.0, got[2012].NotHybrid.Highway, delta)
}

func TestEconomyByYearMatchesPlainMean(t *testing.T) {
	records := []vehicle.Record{
		{ID: "1", Make: "A", Year: 2020, CityMpg: 10, HighwayMpg: 20, IsHybrid: true},
		{ID: "2", Make: "A", Year: 2020, CityMpg: 13, HighwayMpg: 21, IsHybrid: true},
		{ID: "3", Make: "A", Year: 2020, CityMpg: 19, HighwayMpg: 29, IsHybrid: true},
	}
	got, err := NewService(records).EconomyByYearAndHybridStatus()
	require.NoError(t, err)

	assert.InDelta(t, 14.0, got[2020].Hybrid.City, delta)
	assert.InDelta(t, 23.333333333333332, got[2020].Hybrid.Highway, delta)
	assert.Equal(t, Economy{}, got[2020].NotHybrid)
}

func TestIdempotent(t *testing.T) {
	records := fleet()
	svc := NewService(records)

	first, err := svc.Report()
	require.NoError(t, err)
	second, err := svc.Report()
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, fleet(), records)
}

func TestEmptyRecords(t *testing.T) {
	svc := NewService(nil)

	_, err := svc.AverageEconomy()
	assert.ErrorIs(t, err, describing.ErrInvalidInput)
	_, err = svc.YearStatistics()
	assert.ErrorIs(t, err, describing.ErrInvalidInput)
	_, err = svc.HybridRatio()
	assert.ErrorIs(t, err, describing.ErrInvalidInput)
	_, err = svc.HybridsByMake()
	assert.ErrorIs(t, err, describing.ErrInvalidInput)
	_, err = svc.EconomyByYearAndHybridStatus()
	assert.ErrorIs(t, err, describing.ErrInvalidInput)
	_, err = svc.Report()
	assert.ErrorIs(t, err, describing.ErrInvalidInput)
}
