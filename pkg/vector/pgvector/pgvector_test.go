package pgvector

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/coursewise/pkg/vector"
)

var _ = Describe("pgvector helpers", func() {
	It("renders vector literals", func() {
		Expect(vectorLiteral([]float32{1, 0.5, -2})).To(Equal("[1,0.5,-2]"))
		Expect(vectorLiteral(nil)).To(Equal("[]"))
	})

	It("numbers placeholders from the given offset in key order", func() {
		where, args := whereClause("curriculum", vector.Filter{"topicId": "t1", "courseId": "c1"}, 2)
		Expect(where).To(Equal("namespace = $2 AND metadata->>$3 = $4 AND metadata->>$5 = $6"))
		Expect(args).To(Equal([]any{"curriculum", "courseId", "c1", "topicId", "t1"}))
	})

	It("filters by namespace only when the filter is empty", func() {
		where, args := whereClause("ns", nil, 1)
		Expect(where).To(Equal("namespace = $1"))
		Expect(args).To(HaveLen(1))
	})

	It("validates table identifiers", func() {
		Expect(validIdent("coursewise_vectors")).To(BeTrue())
		Expect(validIdent("1bad")).To(BeFalse())
		Expect(validIdent("drop table;")).To(BeFalse())
	})

	It("rejects missing configuration", func() {
		_, err := NewDriver(context.Background(), Config{Dimensions: 3}, zap.NewNop())
		Expect(err).To(MatchError(ContainSubstring("connection string")))

		_, err = NewDriver(context.Background(), Config{ConnString: "postgres://x"}, zap.NewNop())
		Expect(err).To(MatchError(ContainSubstring("dimensions")))
	})
})
