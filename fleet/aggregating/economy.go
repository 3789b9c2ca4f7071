package aggregating

import (
	"github.com/anton-kapralov/fuel-economy-pulse/statistics/describing"
	"github.com/anton-kapralov/fuel-economy-pulse/vehicle"
)

// Economy is a pair of fuel economy figures in miles per gallon.
type Economy struct {
	City    float64 `json:"city"`
	Highway float64 `json:"highway"`
}

// add folds r into e, which is the mean of n records so far.
func (e Economy) add(r vehicle.Record, n int) Economy {
	k := float64(n)
	return Economy{
		City:    (e.City*k + r.CityMpg) / (k + 1),
		Highway: (e.Highway*k + r.HighwayMpg) / (k + 1),
	}
}

// YearEconomy splits a model year's average economy by hybrid status. A
// status with no vehicles that year stays at zero.
type YearEconomy struct {
	Hybrid    Economy `json:"hybrid"`
	NotHybrid Economy `json:"notHybrid"`
}

type MakeHybrids struct {
	Make    string   `json:"make"`
	Hybrids []string `json:"hybrids"`
}

type Report struct {
	AverageEconomy               Economy             `json:"avgMpg"`
	YearStatistics               describing.Result   `json:"allYearStats"`
	HybridRatio                  float64             `json:"ratioHybrids"`
	HybridsByMake                []MakeHybrids       `json:"makerHybrids"`
	EconomyByYearAndHybridStatus map[int]YearEconomy `json:"avgMpgByYearAndHybrid"`
}
