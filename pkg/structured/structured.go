// Package structured extracts JSON values from free-form model output.
//
// Extraction is best effort: callers receive a Result that is either Parsed
// with a value or Empty with the reason, never an error to unwind.
package structured

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Result is the outcome of an extraction.
type Result[T any] struct {
	value  T
	parsed bool
	reason string
}

// Parsed wraps a successfully extracted value.
func Parsed[T any](v T) Result[T] {
	return Result[T]{value: v, parsed: true}
}

// Empty records why nothing was extracted.
func Empty[T any](reason string) Result[T] {
	return Result[T]{reason: reason}
}

// Get returns the value and whether extraction succeeded.
func (r Result[T]) Get() (T, bool) {
	return r.value, r.parsed
}

// IsParsed reports whether a value was extracted.
func (r Result[T]) IsParsed() bool {
	return r.parsed
}

// Reason describes why the result is Empty.
func (r Result[T]) Reason() string {
	return r.reason
}

// OrElse returns the parsed value or fallback.
func (r Result[T]) OrElse(fallback T) T {
	if r.parsed {
		return r.value
	}
	return fallback
}

// Validator checks a decoded value. A non-nil error turns the result Empty.
type Validator[T any] func(T) error

// Array extracts the first well-formed JSON array of T from raw.
func Array[T any](raw string, validate Validator[[]T]) Result[[]T] {
	return extract(raw, '[', ']', validate)
}

// Object extracts the first well-formed JSON object T from raw.
func Object[T any](raw string, validate Validator[T]) Result[T] {
	return extract(raw, '{', '}', validate)
}

func extract[T any](raw string, open, closer byte, validate Validator[T]) Result[T] {
	cleaned := stripCodeFences(raw)

	lastErr := fmt.Sprintf("no %c...%c block found", open, closer)
	for offset := 0; offset < len(cleaned); {
		block, start := balancedBlock(cleaned, offset, open, closer)
		if block == "" {
			break
		}
		offset = start + 1

		jsonStr := normalizeLeadingDecimalNumbers(stripJSONComments(block))
		var v T
		if err := json.Unmarshal([]byte(jsonStr), &v); err != nil {
			lastErr = err.Error()
			continue
		}
		if validate != nil {
			if err := validate(v); err != nil {
				lastErr = "validation failed: " + err.Error()
				continue
			}
		}
		return Parsed(v)
	}

	return Empty[T](lastErr)
}

// stripCodeFences removes markdown code fence lines (```json, ```).
func stripCodeFences(s string) string {
	lines := strings.Split(s, "\n")
	result := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		result = append(result, line)
	}
	return strings.Join(result, "\n")
}

// balancedBlock finds the first balanced open...closer block at or after
// offset and returns it with its start index.
func balancedBlock(s string, offset int, open, closer byte) (string, int) {
	rel := strings.IndexByte(s[offset:], open)
	if rel == -1 {
		return "", -1
	}
	start := offset + rel

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch c {
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return s[start : i+1], start
			}
		}
	}

	return "", -1
}

// stripJSONComments removes // and /* */ comments outside string values.
func stripJSONComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if escaped {
			b.WriteByte(c)
			escaped = false
			continue
		}
		if c == '\\' && inString {
			b.WriteByte(c)
			escaped = true
			continue
		}
		if c == '"' {
			b.WriteByte(c)
			inString = !inString
			continue
		}
		if inString {
			b.WriteByte(c)
			continue
		}

		if c == '/' && i+1 < len(s) && s[i+1] == '/' {
			for i+1 < len(s) && s[i+1] != '\n' {
				i++
			}
			continue
		}
		if c == '/' && i+1 < len(s) && s[i+1] == '*' {
			i += 2
			for i+1 < len(s) {
				if s[i] == '*' && s[i+1] == '/' {
					i++
					break
				}
				i++
			}
			continue
		}

		b.WriteByte(c)
	}

	return b.String()
}

// normalizeLeadingDecimalNumbers rewrites ".8" and "-.3" as "0.8" and "-0.3"
// outside string values.
func normalizeLeadingDecimalNumbers(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)

	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if escaped {
			b.WriteByte(c)
			escaped = false
			continue
		}
		if c == '\\' && inString {
			b.WriteByte(c)
			escaped = true
			continue
		}
		if c == '"' {
			b.WriteByte(c)
			inString = !inString
			continue
		}
		if inString {
			b.WriteByte(c)
			continue
		}

		if c == '.' && i+1 < len(s) && isDigit(s[i+1]) && isNumericBoundary(prevNonSpace(s, i-1)) {
			b.WriteByte('0')
		}
		b.WriteByte(c)
	}

	return b.String()
}

func prevNonSpace(s string, i int) byte {
	for ; i >= 0; i-- {
		if s[i] != ' ' && s[i] != '\n' && s[i] != '\r' && s[i] != '\t' {
			return s[i]
		}
	}
	return 0
}

func isNumericBoundary(c byte) bool {
	switch c {
	case 0, ':', ',', '[', '{', '-':
		return true
	default:
		return false
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
