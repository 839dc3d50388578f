// Package wire describes the object store gRPC services.
//
// There is no generated code: every request and response is a
// google.protobuf.Struct, so the default proto codec carries them as is.
package wire

import (
	"chat-garden/domain"

	"github.com/samber/lo"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ObjectStoreService = "garden.ObjectStore"
	SessionsService    = "garden.Sessions"

	PutMethod      = "/" + ObjectStoreService + "/Put"
	DeleteMethod   = "/" + ObjectStoreService + "/Delete"
	DiscoverMethod = "/" + ObjectStoreService + "/Discover"
	WatchMethod    = "/" + ObjectStoreService + "/Watch"

	RegisterMethod = "/" + SessionsService + "/Register"
	LoginMethod    = "/" + SessionsService + "/Login"
)

// PublicMethods never require a token.
var PublicMethods = []string{RegisterMethod, LoginMethod}

// AnonymousMethods accept callers without a session.
var AnonymousMethods = []string{DiscoverMethod, WatchMethod}

func DeleteRequest(url string) *structpb.Struct {
	return mustStruct(map[string]any{"url": url})
}

func DiscoverRequest(channels []string, schema domain.Schema) *structpb.Struct {
	return mustStruct(map[string]any{
		"channels": toList(channels),
		"schema":   string(schema),
	})
}

func WatchRequest(channels []string) *structpb.Struct {
	return mustStruct(map[string]any{"channels": toList(channels)})
}

func CredentialsRequest(actor, password string) *structpb.Struct {
	return mustStruct(map[string]any{"actor": actor, "password": password})
}

func SessionResponse(actor, token string) *structpb.Struct {
	return mustStruct(map[string]any{"actor": actor, "token": token})
}

// String reads a string field, empty when absent.
func String(s *structpb.Struct, field string) string {
	return s.GetFields()[field].GetStringValue()
}

// Strings reads a list of strings field, skipping non string items.
func Strings(s *structpb.Struct, field string) []string {
	values := s.GetFields()[field].GetListValue().GetValues()
	return lo.FilterMap(values, func(v *structpb.Value, _ int) (string, bool) {
		str, ok := v.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return "", false
		}
		return str.StringValue, true
	})
}

func toList(values []string) []any {
	return lo.Map(values, func(v string, _ int) any { return v })
}

// Only strings and lists of strings go through here, which structpb always accepts.
func mustStruct(fields map[string]any) *structpb.Struct {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		panic(err)
	}
	return s
}
