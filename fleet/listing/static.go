package listing

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/anton-kapralov/fuel-economy-pulse/vehicle"
)

//go:embed data/mpg.json
var mpgData []byte

// staticRecord mirrors the dataset layout. Pointers tell a missing field
// apart from a zero one.
type staticRecord struct {
	ID         *string  `json:"id"`
	Make       *string  `json:"make"`
	Year       *int     `json:"year"`
	CityMpg    *float64 `json:"city_mpg"`
	HighwayMpg *float64 `json:"highway_mpg"`
	Hybrid     *bool    `json:"hybrid"`
}

type staticService struct {
	records []vehicle.Record
}

// NewStaticService returns a Service over the dataset bundled with the binary.
func NewStaticService() (Service, error) {
	records, err := parseStatic(mpgData)
	if err != nil {
		return nil, err
	}
	return &staticService{records: records}, nil
}

func (s *staticService) List(_ context.Context) ([]vehicle.Record, error) {
	res := make([]vehicle.Record, len(s.records))
	copy(res, s.records)
	return res, nil
}

func parseStatic(data []byte) ([]vehicle.Record, error) {
	var raw []staticRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %s", err)
	}
	res := make([]vehicle.Record, 0, len(raw))
	for i, sr := range raw {
		if sr.ID == nil || sr.Make == nil || sr.Year == nil || sr.CityMpg == nil || sr.HighwayMpg == nil || sr.Hybrid == nil {
			return nil, fmt.Errorf("%w: dataset entry %d has missing fields", vehicle.ErrInvalidRecord, i)
		}
		r := vehicle.Record{
			ID:         *sr.ID,
			Make:       *sr.Make,
			Year:       *sr.Year,
			CityMpg:    *sr.CityMpg,
			HighwayMpg: *sr.HighwayMpg,
			IsHybrid:   *sr.Hybrid,
		}
		if err := r.Validate(); err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	return res, nil
}
