// Package chunker splits curriculum text into overlapping, size-bounded
// segments for embedding and retrieval.
//
// Sizes, overlaps and offsets are measured in runes of the normalized text.
package chunker

import (
	"regexp"
	"strings"
)

const (
	// DefaultChunkSize is the character budget used when none is supplied.
	DefaultChunkSize = 1000

	// DefaultChunkOverlap is the number of trailing characters carried into
	// the next chunk when none is supplied.
	DefaultChunkOverlap = 200
)

// Chunk is a contiguous slice of a normalized source document.
type Chunk struct {
	Text      string `json:"text"`
	Index     int    `json:"index"`
	StartChar int    `json:"startChar"`
	EndChar   int    `json:"endChar"`
}

// Len returns the chunk length in runes.
func (c Chunk) Len() int {
	return c.EndChar - c.StartChar
}

var (
	blankLineRe  = regexp.MustCompile(`(?m)^[ \t]+$`)
	excessLineRe = regexp.MustCompile(`\n{3,}`)
)

// Normalize converts line endings to \n, empties whitespace-only lines,
// collapses 3+ consecutive newlines to exactly 2 and trims the result.
// Chunk offsets refer to this normalized form.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = blankLineRe.ReplaceAllString(text, "")
	text = excessLineRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// ChunkText splits text into paragraph-aligned chunks.
//
// Paragraphs are accumulated greedily. When the next paragraph would push the
// buffer past chunkSize the buffer is emitted and the next buffer is seeded
// with its last chunkOverlap characters. A single paragraph longer than
// chunkSize is emitted whole. Empty input yields no chunks.
func ChunkText(text string, chunkSize, chunkOverlap int) []Chunk {
	chunkSize, chunkOverlap = normalizeSizes(chunkSize, chunkOverlap)

	rs := []rune(Normalize(text))
	if len(rs) == 0 {
		return nil
	}

	var (
		chunks   []Chunk
		bufStart = -1
		bufEnd   = -1
	)

	emit := func(start, end int) {
		chunks = append(chunks, Chunk{
			Text:      string(rs[start:end]),
			Index:     len(chunks),
			StartChar: start,
			EndChar:   end,
		})
	}

	for _, p := range paragraphSpans(rs) {
		if bufStart < 0 {
			bufStart, bufEnd = p.start, p.end
			continue
		}

		if p.end-bufStart > chunkSize {
			emit(bufStart, bufEnd)

			// The buffer is always a contiguous span of rs, so the overlap
			// seed plus the paragraph separator is just an earlier start.
			keep := min(chunkOverlap, bufEnd-bufStart)
			if keep > 0 {
				bufStart = bufEnd - keep
			} else {
				bufStart = p.start
			}
		}
		bufEnd = p.end
	}

	if bufStart >= 0 && bufEnd > bufStart {
		emit(bufStart, bufEnd)
	}

	return chunks
}

type span struct {
	start int
	end   int
}

// paragraphSpans returns the [start,end) rune spans of each paragraph in a
// normalized text. Paragraphs are separated by exactly one blank line.
func paragraphSpans(rs []rune) []span {
	var spans []span
	start := 0
	for i := 0; i+1 < len(rs); i++ {
		if rs[i] == '\n' && rs[i+1] == '\n' {
			if i > start {
				spans = append(spans, span{start: start, end: i})
			}
			start = i + 2
			i++
		}
	}
	if start < len(rs) {
		spans = append(spans, span{start: start, end: len(rs)})
	}
	return spans
}

func normalizeSizes(chunkSize, chunkOverlap int) (int, int) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize - 1
	}
	return chunkSize, chunkOverlap
}
