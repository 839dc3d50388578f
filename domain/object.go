// Package domain contains core concepts of the chat system.
// This file defines the object store records every other entity is built on.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"cuelang.org/go/cue/literal"
)

// Object is a record held by the object store.
// Value is a free-form JSON object; only the owning Actor may overwrite or delete it.
// Watchers receive a Tombstone copy of deleted objects.
type Object struct {
	URL          string
	Actor        string
	Channels     []string
	Value        map[string]any
	LastModified time.Time
	Tombstone    bool
}

// Session identifies the actor performing a write.
// Token is only used when the store is reached over the network.
type Session struct {
	Actor string `json:"actor"`
	Token string `json:"token,omitempty"`
}

// Schema is a CUE expression unified against an object value during discovery.
type Schema string

// AnySchema matches every object.
const AnySchema Schema = "{...}"

// SchemaField describes a single constraint of a discover schema.
// Const is rendered as a literal, otherwise Kind ("string", "number", "bool") is used.
type SchemaField struct {
	Name  string
	Kind  string
	Const any
}

// NewSchema renders fields into an open CUE struct of required fields:
// discovery only returns objects carrying every field.
func NewSchema(fields ...SchemaField) Schema {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s!: %s", literal.Label.Quote(f.Name), f.literal()))
	}
	return Schema("{" + strings.Join(parts, ", ") + "}")
}

func (f SchemaField) literal() string {
	switch c := f.Const.(type) {
	case nil:
		if f.Kind == "" {
			return "_"
		}
		return f.Kind
	case string:
		return literal.String.Quote(c)
	case bool:
		return strconv.FormatBool(c)
	default:
		return fmt.Sprintf("%v", c)
	}
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func boolValue(v any) bool {
	b, _ := v.(bool)
	return b
}

// int64Value accepts the numeric shapes a value can take after a JSON or
// protobuf round trip.
func int64Value(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case float32:
		return int64(n)
	case int:
		return int64(n)
	case int64:
		return n
	case int32:
		return int64(n)
	case uint64:
		return int64(n)
	default:
		return 0
	}
}
