package qdrant

import (
	"maps"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/papercomputeco/coursewise/pkg/vector"
)

func pointID(namespace, recordID string) string {
	return uuid.NewSHA1(pointIDNamespace, []byte(namespace+"\x00"+recordID)).String()
}

// buildFilter renders namespace plus equality predicates as keyword matches.
func buildFilter(namespace string, filter vector.Filter) *qdrant.Filter {
	must := []*qdrant.Condition{qdrant.NewMatch(payloadNamespaceKey, namespace)}
	for _, k := range filter.Keys() {
		must = append(must, qdrant.NewMatch(k, filter[k]))
	}
	return &qdrant.Filter{Must: must}
}

func toPayload(namespace string, rec vector.Record) map[string]any {
	payload := maps.Clone(map[string]any(rec.Metadata))
	if payload == nil {
		payload = map[string]any{}
	}
	payload[payloadNamespaceKey] = namespace
	payload[payloadRecordIDKey] = rec.ID
	return payload
}

// fromPayload splits the stored record id from user metadata.
func fromPayload(payload map[string]*qdrant.Value) (string, vector.Metadata) {
	md := make(vector.Metadata, len(payload))
	var id string
	for k, v := range payload {
		switch k {
		case payloadRecordIDKey:
			id = v.GetStringValue()
		case payloadNamespaceKey:
		default:
			md[k] = fromValue(v)
		}
	}
	return id, md
}

func fromValue(v *qdrant.Value) any {
	switch kind := v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	case *qdrant.Value_ListValue:
		values := kind.ListValue.GetValues()
		out := make([]any, len(values))
		for i, item := range values {
			out[i] = fromValue(item)
		}
		return out
	case *qdrant.Value_StructValue:
		out := map[string]any{}
		for k, item := range kind.StructValue.GetFields() {
			out[k] = fromValue(item)
		}
		return out
	default:
		return nil
	}
}
