package chunker_test

import (
	"fmt"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/coursewise/pkg/chunker"
)

func paragraphs(n, size int) string {
	parts := make([]string, n)
	for i := range parts {
		body := fmt.Sprintf("P%02d ", i)
		parts[i] = body + strings.Repeat(string(rune('a'+i%26)), size-len(body))
	}
	return strings.Join(parts, "\n\n")
}

var _ = Describe("Normalize", func() {
	It("converts CRLF and collapses excess blank lines", func() {
		Expect(chunker.Normalize("a\r\n\r\n\r\n\r\nb")).To(Equal("a\n\nb"))
	})

	It("treats whitespace-only lines as blank", func() {
		Expect(chunker.Normalize("a\n  \n\t\n\nb")).To(Equal("a\n\nb"))
	})

	It("trims surrounding whitespace", func() {
		Expect(chunker.Normalize("\n\n  hello  \n\n")).To(Equal("hello"))
	})
})

var _ = Describe("ChunkText", func() {
	It("returns no chunks for empty input", func() {
		Expect(chunker.ChunkText("", 100, 10)).To(BeEmpty())
		Expect(chunker.ChunkText(" \n\n\t ", 100, 10)).To(BeEmpty())
	})

	It("keeps small documents in a single chunk", func() {
		chunks := chunker.ChunkText("# A\n\nPara1.\n\n# B\n\nPara2.", 100, 10)
		Expect(chunks).To(HaveLen(1))
		Expect(chunks[0].Index).To(Equal(0))
		Expect(chunks[0].Text).To(Equal("# A\n\nPara1.\n\n# B\n\nPara2."))
		Expect(chunks[0].StartChar).To(Equal(0))
		Expect(chunks[0].EndChar).To(Equal(len("# A\n\nPara1.\n\n# B\n\nPara2.")))
	})

	It("emits an oversized paragraph whole", func() {
		long := strings.Repeat("x", 350)
		chunks := chunker.ChunkText(long, 100, 10)
		Expect(chunks).To(HaveLen(1))
		Expect(chunks[0].Text).To(Equal(long))
	})

	Context("when the accumulation crosses the size boundary", func() {
		var (
			text   string
			chunks []chunker.Chunk
		)

		BeforeEach(func() {
			text = paragraphs(8, 60)
			chunks = chunker.ChunkText(text, 150, 20)
		})

		It("produces several chunks", func() {
			Expect(len(chunks)).To(BeNumerically(">", 1))
		})

		It("orders chunks by index with sane offsets", func() {
			for i, c := range chunks {
				Expect(c.Index).To(Equal(i))
				Expect(c.EndChar).To(BeNumerically(">=", c.StartChar))
				Expect(c.Text).To(Equal(text[c.StartChar:c.EndChar]))
			}
		})

		It("seeds each chunk with the tail of the previous one", func() {
			for i := 1; i < len(chunks); i++ {
				prev := chunks[i-1].Text
				n := min(20, len(prev))
				Expect(chunks[i].Text[:n]).To(Equal(prev[len(prev)-n:]))
			}
		})

		It("covers every paragraph exactly once in order", func() {
			seen := []string{}
			for _, c := range chunks {
				for _, line := range strings.Split(c.Text, "\n\n") {
					if strings.HasPrefix(line, "P") && len(line) == 60 {
						seen = append(seen, line[:3])
					}
				}
			}
			expected := []string{}
			for i := 0; i < 8; i++ {
				expected = append(expected, fmt.Sprintf("P%02d", i))
			}
			Expect(seen).To(Equal(expected))
		})

		It("never exceeds the budget by more than one paragraph plus overlap", func() {
			for _, c := range chunks {
				Expect(c.Len()).To(BeNumerically("<=", 150+20))
			}
		})
	})

	It("starts the next chunk at the paragraph when overlap is zero", func() {
		chunks := chunker.ChunkText(paragraphs(3, 60), 100, 0)
		Expect(chunks).To(HaveLen(3))
		Expect(chunks[1].Text).To(HavePrefix("P01"))
	})

	It("measures overlap in runes", func() {
		text := strings.Repeat("é", 60) + "\n\n" + strings.Repeat("ü", 60)
		chunks := chunker.ChunkText(text, 100, 5)
		Expect(chunks).To(HaveLen(2))
		Expect(chunks[1].Text).To(HavePrefix("ééééé\n\nü"))
		Expect(chunks[1].StartChar).To(Equal(55))
	})

	It("applies defaults for invalid sizes", func() {
		chunks := chunker.ChunkText("hello", 0, -1)
		Expect(chunks).To(HaveLen(1))
	})
})

var _ = Describe("ChunkSentences", func() {
	It("groups sentences into fixed windows", func() {
		chunks := chunker.ChunkSentences("One. Two! Three? Four. Five.", 2)
		Expect(chunks).To(HaveLen(3))
		Expect(chunks[0].Text).To(Equal("One. Two!"))
		Expect(chunks[1].Text).To(Equal("Three? Four."))
		Expect(chunks[2].Text).To(Equal("Five."))
		Expect(chunks[2].Index).To(Equal(2))
	})

	It("does not split on decimals", func() {
		chunks := chunker.ChunkSentences("Pi is 3.14 roughly. Next.", 1)
		Expect(chunks).To(HaveLen(2))
		Expect(chunks[0].Text).To(Equal("Pi is 3.14 roughly."))
	})

	It("keeps a trailing fragment without terminal punctuation", func() {
		chunks := chunker.ChunkSentences("Done. and then", 5)
		Expect(chunks).To(HaveLen(1))
		Expect(chunks[0].Text).To(Equal("Done. and then"))
	})

	It("returns no chunks for empty input", func() {
		Expect(chunker.ChunkSentences("", 3)).To(BeEmpty())
	})
})
