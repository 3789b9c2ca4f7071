package listing

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/anton-kapralov/fuel-economy-pulse/vehicle"
)

// Service loads the record set a fleet aggregation runs over.
type Service interface {
	List(ctx context.Context) ([]vehicle.Record, error)
}

type service struct {
	db driver.Conn
}

func NewService(db driver.Conn) Service {
	return &service{
		db: db,
	}
}

func (s *service) List(ctx context.Context) ([]vehicle.Record, error) {
	query := `
SELECT
	v.id,
	v.make,
	v.year,
	v.city_mpg,
	v.highway_mpg,
	v.hybrid
FROM fe.vehicles v FINAL
ORDER BY v.year, v.id
`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch data from DB: %s", err)
	}
	defer rows.Close()

	var res []vehicle.Record
	for rows.Next() {
		var (
			r    vehicle.Record
			year uint16
		)
		if err := rows.Scan(&r.ID, &r.Make, &year, &r.CityMpg, &r.HighwayMpg, &r.IsHybrid); err != nil {
			return nil, fmt.Errorf("failed to scan row: %s", err)
		}
		r.Year = int(year)
		if err := r.Validate(); err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %s", err)
	}
	return res, nil
}
