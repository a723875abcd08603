package vector_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/coursewise/pkg/vector"
)

var _ = Describe("Filter", func() {
	It("matches when every predicate is equal", func() {
		f := vector.Filter{"topicId": "t1", "courseId": "c1"}
		Expect(f.Matches(vector.Metadata{"topicId": "t1", "courseId": "c1", "x": 1})).To(BeTrue())
		Expect(f.Matches(vector.Metadata{"topicId": "t1"})).To(BeFalse())
		Expect(f.Matches(vector.Metadata{"topicId": "t1", "courseId": "c2"})).To(BeFalse())
	})

	It("matches everything when empty", func() {
		Expect(vector.Filter{}.Matches(vector.Metadata{"a": "b"})).To(BeTrue())
		Expect(vector.Filter(nil).Empty()).To(BeTrue())
	})

	It("compares JSON numbers as integers", func() {
		f := vector.Filter{"chunkIndex": "3"}
		Expect(f.Matches(vector.Metadata{"chunkIndex": float64(3)})).To(BeTrue())
		Expect(f.Matches(vector.Metadata{"chunkIndex": 3})).To(BeTrue())
	})

	It("renders deterministically", func() {
		Expect(vector.Filter{"b": "2", "a": "1"}.String()).To(Equal("{a=1,b=2}"))
	})
})

var _ = Describe("scoring helpers", func() {
	It("clamps scores to [0,1]", func() {
		Expect(vector.ClampScore(-0.3)).To(Equal(float32(0)))
		Expect(vector.ClampScore(1.2)).To(Equal(float32(1)))
		Expect(vector.ClampScore(0.5)).To(Equal(float32(0.5)))
	})

	It("computes cosine similarity", func() {
		Expect(vector.CosineSimilarity([]float32{1, 0}, []float32{1, 0})).To(BeNumerically("~", 1))
		Expect(vector.CosineSimilarity([]float32{1, 0}, []float32{0, 1})).To(BeNumerically("~", 0))
		Expect(vector.CosineSimilarity([]float32{1}, []float32{1, 0})).To(BeZero())
	})

	It("sorts matches by descending score then id", func() {
		m := []vector.Match{{ID: "b", Score: 0.5}, {ID: "a", Score: 0.5}, {ID: "c", Score: 0.9}}
		vector.SortMatches(m)
		Expect([]string{m[0].ID, m[1].ID, m[2].ID}).To(Equal([]string{"c", "a", "b"}))
	})
})
