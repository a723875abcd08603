package vector

import (
	"fmt"
	"math"
	"sort"
)

// Filter is a set of exact-match equality predicates over metadata fields.
type Filter map[string]string

// Empty reports whether the filter has no predicates.
func (f Filter) Empty() bool {
	return len(f) == 0
}

// Keys returns the filter keys in sorted order so backends build
// deterministic queries.
func (f Filter) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Matches reports whether md satisfies every predicate.
func (f Filter) Matches(md Metadata) bool {
	for k, want := range f {
		got, ok := md[k]
		if !ok || MetaString(got) != want {
			return false
		}
	}
	return true
}

// String renders the filter for logs.
func (f Filter) String() string {
	if f.Empty() {
		return "{}"
	}
	out := "{"
	for i, k := range f.Keys() {
		if i > 0 {
			out += ","
		}
		out += k + "=" + f[k]
	}
	return out + "}"
}

// MetaString renders a metadata value the way filters compare it.
func MetaString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	case float64:
		if t == math.Trunc(t) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprint(t)
	default:
		return fmt.Sprint(t)
	}
}

// ClampScore bounds a similarity to [0,1].
func ClampScore(s float64) float32 {
	switch {
	case math.IsNaN(s), s < 0:
		return 0
	case s > 1:
		return 1
	default:
		return float32(s)
	}
}

// CosineSimilarity returns the cosine of the angle between a and b.
// Mismatched or zero vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// SortMatches orders matches by descending score, breaking ties by id.
func SortMatches(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score == matches[j].Score {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].Score > matches[j].Score
	})
}
