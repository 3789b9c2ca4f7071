package listing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/anton-kapralov/fuel-economy-pulse/vehicle"
)

func TestStaticService(t *testing.T) {
	svc, err := NewStaticService()
	require.NoError(t, err)

	records, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 25)
	for _, r := range records {
		assert.NoError(t, r.Validate())
	}

	records[0].Make = "changed"
	again, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, "changed", again[0].Make)
}

func TestParseStatic(t *testing.T) {
	records, err := parseStatic([]byte(`[
		{"id": "2010 Honda Insight", "make": "Honda", "year": 2010, "city_mpg": 40, "highway_mpg": 43, "hybrid": true},
		{"id": "2010 Audi A4", "make": "Audi", "year": 2010, "city_mpg": 22, "highway_mpg": 30, "hybrid": false}
	]`))
	require.NoError(t, err)
	assert.Equal(t, []vehicle.Record{
		{ID: "2010 Honda Insight", Make: "Honda", Year: 2010, CityMpg: 40, HighwayMpg: 43, IsHybrid: true},
		{ID: "2010 Audi A4", Make: "Audi", Year: 2010, CityMpg: 22, HighwayMpg: 30},
	}, records)
}

func TestParseStaticRejectsBadRecords(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "missing hybrid", data: `[{"id": "x", "make": "Audi", "year": 2010, "city_mpg": 22, "highway_mpg": 30}]`},
		{name: "missing year", data: `[{"id": "x", "make": "Audi", "city_mpg": 22, "highway_mpg": 30, "hybrid": false}]`},
		{name: "empty make", data: `[{"id": "x", "make": "", "year": 2010, "city_mpg": 22, "highway_mpg": 30, "hybrid": false}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseStatic([]byte(tt.data))
			assert.ErrorIs(t, err, vehicle.ErrInvalidRecord)
		})
	}

	_, err := parseStatic([]byte(`{"not": "a list"}`))
	assert.Error(t, err)
}

type fakeMemcache struct {
	items  map[string]*memcache.Item
	getErr error
	setErr error
}

func (f *fakeMemcache) Get(key string) (*memcache.Item, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	item, ok := f.items[key]
	if !ok {
		return nil, memcache.ErrCacheMiss
	}
	return item, nil
}

func (f *fakeMemcache) Set(item *memcache.Item) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.items[item.Key] = item
	return nil
}

type countingService struct {
	records []vehicle.Record
	calls   int
}

func (s *countingService) List(_ context.Context) ([]vehicle.Record, error) {
	s.calls++
	return s.records, nil
}

func TestCachedService(t *testing.T) {
	next := &countingService{records: []vehicle.Record{
		{ID: "2011 Lexus CT 200h", Make: "Lexus", Year: 2011, CityMpg: 43, HighwayMpg: 40, IsHybrid: true},
	}}
	client := &fakeMemcache{items: map[string]*memcache.Item{}}
	svc := newCachedService(next, "static", client, time.Minute, zap.NewNop().Sugar())

	first, err := svc.List(context.Background())
	require.NoError(t, err)
	second, err := svc.List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, next.records, first)
	assert.Equal(t, next.records, second)
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, int32(60), client.items["fleet:vehicles:static"].Expiration)
}

func TestCachedServiceReadFailure(t *testing.T) {
	next := &countingService{}
	client := &fakeMemcache{items: map[string]*memcache.Item{}, getErr: errors.New("connection refused")}
	svc := newCachedService(next, "static", client, time.Minute, zap.NewNop().Sugar())

	_, err := svc.List(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 0, next.calls)
}

func TestCachedServiceWriteFailure(t *testing.T) {
	next := &countingService{records: []vehicle.Record{
		{ID: "2012 Kia Optima Hybrid", Make: "Kia", Year: 2012, CityMpg: 35, HighwayMpg: 40, IsHybrid: true},
	}}
	client := &fakeMemcache{
		items:  map[string]*memcache.Item{},
		setErr: errors.New("SERVER_ERROR object too large for cache"),
	}
	svc := newCachedService(next, "clickhouse", client, time.Minute, zap.NewNop().Sugar())

	records, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, next.records, records)
	assert.Equal(t, 1, next.calls)
}

func TestCachedServiceKeyPerSource(t *testing.T) {
	client := &fakeMemcache{items: map[string]*memcache.Item{}}
	static := &countingService{records: []vehicle.Record{
		{ID: "2009 Toyota Prius", Make: "Toyota", Year: 2009, CityMpg: 48, HighwayMpg: 45, IsHybrid: true},
	}}
	clickhouse := &countingService{records: []vehicle.Record{
		{ID: "2010 Audi A4", Make: "Audi", Year: 2010, CityMpg: 22, HighwayMpg: 30},
	}}

	_, err := newCachedService(static, "static", client, time.Minute, zap.NewNop().Sugar()).List(context.Background())
	require.NoError(t, err)
	got, err := newCachedService(clickhouse, "clickhouse", client, time.Minute, zap.NewNop().Sugar()).List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, clickhouse.records, got)
	assert.Equal(t, 1, clickhouse.calls)
	assert.Len(t, client.items, 2)
}
