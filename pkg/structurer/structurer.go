// Package structurer cleans generated answers and splits them into summary,
// explanation, key points and suggested practice. It accepts any model output.
package structurer

import (
	"regexp"
	"strings"
)

// summaryCap is the summary length after which lines go to the explanation.
const summaryCap = 200

var (
	excessNewlines = regexp.MustCompile(`\n{3,}`)
	boldSpan       = regexp.MustCompile(`\*\*([^*\n]+?)\*\*|__([^_\n]+?)__`)
	listItem       = regexp.MustCompile(`^\s*(?:[-*•+]|\d+[.)])\s+(.*)$`)
)

// Structured is the sectioned form of an answer.
type Structured struct {
	Summary           string   `json:"summary"`
	Explanation       string   `json:"explanation"`
	KeyPoints         []string `json:"keyPoints"`
	SuggestedPractice string   `json:"suggestedPractice,omitempty"`
}

// Clean trims text, converts tabs to two spaces and collapses runs of three
// or more newlines to two.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\t", "  ")
	text = excessNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// ExtractConcepts returns the bold-emphasised terms in first-seen order,
// without duplicates.
func ExtractConcepts(text string) []string {
	concepts := []string{}
	seen := map[string]struct{}{}

	for _, m := range boldSpan.FindAllStringSubmatch(text, -1) {
		term := m[1]
		if term == "" {
			term = m[2]
		}
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		concepts = append(concepts, term)
	}
	return concepts
}

// StructureResponse splits cleaned text line by line. List items become key
// points; lines mentioning practice or "try" become suggested practice; other
// lines fill the summary up to summaryCap and then the explanation.
func StructureResponse(text string) Structured {
	cleaned := Clean(text)
	out := Structured{KeyPoints: []string{}}

	var summary, explanation, practice []string
	summaryLen := 0

	for _, raw := range strings.Split(cleaned, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if m := listItem.FindStringSubmatch(line); m != nil {
			if point := strings.TrimSpace(m[1]); point != "" {
				out.KeyPoints = append(out.KeyPoints, point)
			}
			continue
		}

		lower := strings.ToLower(line)
		if strings.Contains(lower, "practice") || strings.Contains(lower, "try") {
			practice = append(practice, line)
			continue
		}

		if summaryLen < summaryCap {
			summary = append(summary, line)
			summaryLen += len(line) + 1
			continue
		}
		explanation = append(explanation, line)
	}

	out.Summary = strings.Join(summary, " ")
	out.Explanation = strings.Join(explanation, "\n")
	out.SuggestedPractice = strings.Join(practice, "\n")

	if out.Summary == "" {
		out.Summary = firstLine(cleaned)
	}
	if out.Explanation == "" {
		out.Explanation = cleaned
	}
	return out
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
