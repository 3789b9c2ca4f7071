package aggregating

import (
	"fmt"
	"sort"

	"github.com/anton-kapralov/fuel-economy-pulse/statistics/describing"
	"github.com/anton-kapralov/fuel-economy-pulse/vehicle"
)

type Service interface {
	AverageEconomy() (Economy, error)
	YearStatistics() (describing.Result, error)
	HybridRatio() (float64, error)
	HybridsByMake() ([]MakeHybrids, error)
	EconomyByYearAndHybridStatus() (map[int]YearEconomy, error)
	Report() (*Report, error)
}

type service struct {
	records []vehicle.Record
}

// NewService returns an aggregator over records. The records are only read,
// and every call recomputes its result from them.
func NewService(records []vehicle.Record) Service {
	return &service{records: records}
}

func (s *service) checkRecords() error {
	if len(s.records) == 0 {
		return fmt.Errorf("%w: no vehicle records", describing.ErrInvalidInput)
	}
	return nil
}

func (s *service) AverageEconomy() (Economy, error) {
	if err := s.checkRecords(); err != nil {
		return Economy{}, err
	}
	var city, highway float64
	for _, r := range s.records {
		city += r.CityMpg
		highway += r.HighwayMpg
	}
	n := float64(len(s.records))
	return Economy{City: city / n, Highway: highway / n}, nil
}

func (s *service) YearStatistics() (describing.Result, error) {
	if err := s.checkRecords(); err != nil {
		return describing.Result{}, err
	}
	years := make([]int, len(s.records))
	for i, r := range s.records {
		years[i] = r.Year
	}
	return describing.Describe(years)
}

func (s *service) HybridRatio() (float64, error) {
	if err := s.checkRecords(); err != nil {
		return 0, err
	}
	hybrids := 0
	for _, r := range s.records {
		if r.IsHybrid {
			hybrids++
		}
	}
	return float64(hybrids) / float64(len(s.records)), nil
}

func (s *service) HybridsByMake() ([]MakeHybrids, error) {
	if err := s.checkRecords(); err != nil {
		return nil, err
	}

	// Groups are kept in the order their make first appears.
	var groups []MakeHybrids
	index := make(map[string]int)
	for _, r := range s.records {
		i, ok := index[r.Make]
		if !ok {
			i = len(groups)
			index[r.Make] = i
			groups = append(groups, MakeHybrids{Make: r.Make})
		}
		if r.IsHybrid {
			groups[i].Hybrids = append(groups[i].Hybrids, r.ID)
		}
	}

	res := make([]MakeHybrids, 0, len(groups))
	for _, g := range groups {
		if len(g.Hybrids) > 0 {
			res = append(res, g)
		}
	}
	sort.SliceStable(res, func(i, j int) bool {
		return len(res[i].Hybrids) > len(res[j].Hybrids)
	})
	return res, nil
}

func (s *service) EconomyByYearAndHybridStatus() (map[int]YearEconomy, error) {
	if err := s.checkRecords(); err != nil {
		return nil, err
	}

	type counts struct{ hybrid, notHybrid int }
	res := make(map[int]YearEconomy)
	seen := make(map[int]counts)
	for _, r := range s.records {
		ye, c := res[r.Year], seen[r.Year]
		if r.IsHybrid {
			ye.Hybrid = ye.Hybrid.add(r, c.hybrid)
			c.hybrid++
		} else {
			ye.NotHybrid = ye.NotHybrid.add(r, c.notHybrid)
			c.notHybrid++
		}
		res[r.Year], seen[r.Year] = ye, c
	}
	return res, nil
}

func (s *service) Report() (*Report, error) {
	economy, err := s.AverageEconomy()
	if err != nil {
		return nil, err
	}
	years, err := s.YearStatistics()
	if err != nil {
		return nil, err
	}
	ratio, err := s.HybridRatio()
	if err != nil {
		return nil, err
	}
	makes, err := s.HybridsByMake()
	if err != nil {
		return nil, err
	}
	byYear, err := s.EconomyByYearAndHybridStatus()
	if err != nil {
		return nil, err
	}
	return &Report{
		AverageEconomy:               economy,
		YearStatistics:               years,
		HybridRatio:                  ratio,
		HybridsByMake:                makes,
		EconomyByYearAndHybridStatus: byYear,
	}, nil
}
