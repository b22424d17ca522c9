package graph

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// Node is a driver node converted to plain values
type Node struct {
	ID         string         `json:"id"`
	Labels     []string       `json:"labels"`
	Properties map[string]any `json:"properties"`
}

// Relationship is a driver relationship converted to plain values
type Relationship struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	StartID    string         `json:"startId"`
	EndID      string         `json:"endId"`
	Properties map[string]any `json:"properties"`
}

// IsEmbeddingKey reports whether a property holds a vector embedding.
// Such properties never leave this package.
func IsEmbeddingKey(key string) bool {
	return strings.Contains(strings.ToLower(key), "embedding")
}

// StripEmbeddings returns props without embedding keys, converted to plain values
func StripEmbeddings(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		if IsEmbeddingKey(k) {
			continue
		}
		out[k] = ToPlain(v)
	}
	return out
}

// ConvertRecord turns a driver record into a Record of plain values
func ConvertRecord(rec *neo4j.Record) Record {
	out := make(Record, len(rec.Keys))
	for i, key := range rec.Keys {
		if i < len(rec.Values) {
			out[key] = ToPlain(rec.Values[i])
		}
	}
	return out
}

// ToPlain converts driver values (nodes, relationships, paths, temporal types)
// into JSON-friendly Go values. Embedding properties are dropped on the way.
func ToPlain(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case dbtype.Node:
		return Node{ID: val.ElementId, Labels: val.Labels, Properties: StripEmbeddings(val.Props)}
	case dbtype.Relationship:
		return Relationship{
			ID:         val.ElementId,
			Type:       val.Type,
			StartID:    val.StartElementId,
			EndID:      val.EndElementId,
			Properties: StripEmbeddings(val.Props),
		}
	case dbtype.Path:
		nodes := make([]any, len(val.Nodes))
		for i, n := range val.Nodes {
			nodes[i] = ToPlain(n)
		}
		rels := make([]any, len(val.Relationships))
		for i, r := range val.Relationships {
			rels[i] = ToPlain(r)
		}
		return map[string]any{"nodes": nodes, "relationships": rels}
	case dbtype.Date:
		return time.Time(val).Format("2006-01-02")
	case dbtype.LocalDateTime:
		return time.Time(val).Format("2006-01-02T15:04:05.999999999")
	case dbtype.LocalTime:
		return time.Time(val).Format("15:04:05.999999999")
	case dbtype.Time:
		return time.Time(val).Format("15:04:05.999999999Z07:00")
	case dbtype.Duration:
		return val.String()
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil
		}
		return val
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = ToPlain(item)
		}
		return out
	case map[string]any:
		return StripEmbeddings(val)
	default:
		return v
	}
}

// AsFloat coerces numbers and numeric strings ("42", "87.5%") to float64.
// Missing or non-numeric values yield 0.
func AsFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return 0
		}
		return val
	case float32:
		return AsFloat(float64(val))
	case int64:
		return float64(val)
	case int:
		return float64(val)
	case int32:
		return float64(val)
	case bool:
		if val {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(val), "%"))
		s = strings.ReplaceAll(s, ",", "")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	default:
		return 0
	}
}

// AsInt coerces v to int64, truncating fractional values
func AsInt(v any) int64 {
	switch val := v.(type) {
	case int64:
		return val
	case int:
		return int64(val)
	case int32:
		return int64(val)
	default:
		return int64(AsFloat(v))
	}
}

// AsString returns v as a string; nil becomes ""
func AsString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// FirstOf returns the first non-nil property among keys
func FirstOf(props map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := props[k]; ok && v != nil {
			return v
		}
	}
	return nil
}
