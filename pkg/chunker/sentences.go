package chunker

import "unicode"

// ChunkSentences groups the normalized text into windows of sentencesPerChunk
// sentences. Windows do not overlap. A sentence ends at a run of '.', '!' or
// '?' followed by whitespace or the end of the text.
func ChunkSentences(text string, sentencesPerChunk int) []Chunk {
	if sentencesPerChunk <= 0 {
		sentencesPerChunk = 1
	}

	rs := []rune(Normalize(text))
	sentences := sentenceSpans(rs)

	chunks := make([]Chunk, 0, (len(sentences)+sentencesPerChunk-1)/sentencesPerChunk)
	for i := 0; i < len(sentences); i += sentencesPerChunk {
		last := min(i+sentencesPerChunk, len(sentences)) - 1
		start, end := sentences[i].start, sentences[last].end
		chunks = append(chunks, Chunk{
			Text:      string(rs[start:end]),
			Index:     len(chunks),
			StartChar: start,
			EndChar:   end,
		})
	}
	return chunks
}

func sentenceSpans(rs []rune) []span {
	var spans []span
	start := -1
	for i := 0; i < len(rs); i++ {
		if start < 0 {
			if unicode.IsSpace(rs[i]) {
				continue
			}
			start = i
		}
		if !isTerminal(rs[i]) {
			continue
		}
		for i+1 < len(rs) && isTerminal(rs[i+1]) {
			i++
		}
		if i+1 == len(rs) || unicode.IsSpace(rs[i+1]) {
			spans = append(spans, span{start: start, end: i + 1})
			start = -1
		}
	}
	if start >= 0 {
		end := len(rs)
		for end > start && unicode.IsSpace(rs[end-1]) {
			end--
		}
		spans = append(spans, span{start: start, end: end})
	}
	return spans
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
