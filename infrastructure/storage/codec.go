package storage

import (
	"chat-garden/domain"
	"fmt"
	"time"

	"github.com/samber/lo"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// ObjectToStruct converts an object into its wire and disk representation.
// Timestamps are kept as epoch milliseconds to stay exact inside a float64.
func ObjectToStruct(o domain.Object) (*structpb.Struct, error) {
	fields := map[string]any{
		"url":      o.URL,
		"actor":    o.Actor,
		"channels": lo.Map(o.Channels, func(c string, _ int) any { return c }),
		"value":    o.Value,
	}
	if o.Value == nil {
		fields["value"] = map[string]any{}
	}
	if !o.LastModified.IsZero() {
		fields["lastModified"] = o.LastModified.UnixMilli()
	}
	if o.Tombstone {
		fields["tombstone"] = true
	}
	record, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("object %q is not representable: %w", o.URL, err)
	}
	return record, nil
}

func ObjectFromStruct(record *structpb.Struct) domain.Object {
	fields := record.AsMap()
	o := domain.Object{
		URL:   asString(fields["url"]),
		Actor: asString(fields["actor"]),
	}
	if channels, ok := fields["channels"].([]any); ok {
		o.Channels = lo.FilterMap(channels, func(c any, _ int) (string, bool) {
			s, ok := c.(string)
			return s, ok
		})
	}
	if value, ok := fields["value"].(map[string]any); ok {
		o.Value = value
	}
	if ms, ok := fields["lastModified"].(float64); ok {
		o.LastModified = time.UnixMilli(int64(ms)).UTC()
	}
	o.Tombstone, _ = fields["tombstone"].(bool)
	return o
}

func encodeObject(o domain.Object) ([]byte, error) {
	record, err := ObjectToStruct(o)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(record)
}

func decodeObject(b []byte) (domain.Object, error) {
	var record structpb.Struct
	if err := proto.Unmarshal(b, &record); err != nil {
		return domain.Object{}, err
	}
	return ObjectFromStruct(&record), nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
