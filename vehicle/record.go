package vehicle

import (
	"errors"
	"fmt"
)

// ErrInvalidRecord is returned when a record is missing a field or carries a
// value no vehicle could have.
var ErrInvalidRecord = errors.New("invalid vehicle record")

// MaxYear is the latest model year a record may carry.
const MaxYear = 9999

type Record struct {
	ID         string  `json:"id"`
	Make       string  `json:"make"`
	Year       int     `json:"year"`
	CityMpg    float64 `json:"cityMpg"`
	HighwayMpg float64 `json:"highwayMpg"`
	IsHybrid   bool    `json:"isHybrid"`
}

// Validate is applied by every loader before a record reaches aggregation.
func (r Record) Validate() error {
	switch {
	case r.ID == "":
		return fmt.Errorf("%w: empty id", ErrInvalidRecord)
	case r.Make == "":
		return fmt.Errorf("%w: %q has empty make", ErrInvalidRecord, r.ID)
	case r.Year <= 0 || r.Year > MaxYear:
		return fmt.Errorf("%w: %q has year %d", ErrInvalidRecord, r.ID, r.Year)
	case r.CityMpg < 0 || r.HighwayMpg < 0:
		return fmt.Errorf("%w: %q has negative mpg", ErrInvalidRecord, r.ID)
	}
	return nil
}
