package vehicle

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	fieldID         = "id"
	fieldMake       = "make"
	fieldYear       = "year"
	fieldCityMpg    = "city_mpg"
	fieldHighwayMpg = "highway_mpg"
	fieldHybrid     = "hybrid"
)

// Marshal encodes a record as a protobuf Struct message.
func Marshal(r Record) ([]byte, error) {
	msg, err := structpb.NewStruct(map[string]any{
		fieldID:         r.ID,
		fieldMake:       r.Make,
		fieldYear:       r.Year,
		fieldCityMpg:    r.CityMpg,
		fieldHighwayMpg: r.HighwayMpg,
		fieldHybrid:     r.IsHybrid,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build vehicle message: %s", err)
	}
	bytes, err := proto.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode vehicle message: %s", err)
	}
	return bytes, nil
}

// Unmarshal decodes a message produced by Marshal. Messages lacking any of
// the record fields are rejected with ErrInvalidRecord.
func Unmarshal(bytes []byte) (Record, error) {
	msg := &structpb.Struct{}
	if err := proto.Unmarshal(bytes, msg); err != nil {
		return Record{}, fmt.Errorf("failed to decode vehicle message: %s", err)
	}
	fields := msg.GetFields()
	for _, name := range []string{fieldID, fieldMake, fieldYear, fieldCityMpg, fieldHighwayMpg, fieldHybrid} {
		v, ok := fields[name]
		if !ok {
			return Record{}, fmt.Errorf("%w: message has no %q field", ErrInvalidRecord, name)
		}
		if !hasKind(name, v) {
			return Record{}, fmt.Errorf("%w: field %q has wrong kind %T", ErrInvalidRecord, name, v.GetKind())
		}
	}
	if year := fields[fieldYear].GetNumberValue(); year != math.Trunc(year) {
		return Record{}, fmt.Errorf("%w: fractional year %v", ErrInvalidRecord, year)
	}
	r := Record{
		ID:         fields[fieldID].GetStringValue(),
		Make:       fields[fieldMake].GetStringValue(),
		Year:       int(fields[fieldYear].GetNumberValue()),
		CityMpg:    fields[fieldCityMpg].GetNumberValue(),
		HighwayMpg: fields[fieldHighwayMpg].GetNumberValue(),
		IsHybrid:   fields[fieldHybrid].GetBoolValue(),
	}
	return r, r.Validate()
}

func hasKind(name string, v *structpb.Value) bool {
	switch name {
	case fieldID, fieldMake:
		_, ok := v.GetKind().(*structpb.Value_StringValue)
		return ok
	case fieldHybrid:
		_, ok := v.GetKind().(*structpb.Value_BoolValue)
		return ok
	default:
		_, ok := v.GetKind().(*structpb.Value_NumberValue)
		return ok
	}
}
