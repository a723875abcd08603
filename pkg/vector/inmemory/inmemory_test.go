package inmemory_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/coursewise/pkg/vector"
	"github.com/papercomputeco/coursewise/pkg/vector/inmemory"
)

var _ = Describe("Driver", func() {
	var (
		d   *inmemory.Driver
		ctx context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		d = inmemory.NewDriver()
		Expect(d.Upsert(ctx, "ns", []vector.Record{
			{ID: "a", Vector: []float32{1, 0}, Metadata: vector.Metadata{"topicId": "t1", "courseId": "c1"}},
			{ID: "b", Vector: []float32{0.7, 0.7}, Metadata: vector.Metadata{"topicId": "t1", "courseId": "c1"}},
			{ID: "c", Vector: []float32{0, 1}, Metadata: vector.Metadata{"topicId": "t2", "courseId": "c1"}},
		})).To(Succeed())
	})

	It("queries with filters in score order", func() {
		matches, err := d.Query(ctx, "ns", vector.QueryRequest{
			Vector: []float32{1, 0},
			TopK:   5,
			Filter: vector.Filter{"topicId": "t1"},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(matches).To(HaveLen(2))
		Expect(matches[0].ID).To(Equal("a"))
		Expect(matches[1].ID).To(Equal("b"))
	})

	It("truncates to topK", func() {
		matches, err := d.Query(ctx, "ns", vector.QueryRequest{Vector: []float32{1, 0}, TopK: 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(matches).To(HaveLen(1))
	})

	It("isolates namespaces", func() {
		matches, err := d.Query(ctx, "empty", vector.QueryRequest{Vector: []float32{1, 0}, TopK: 5})
		Expect(err).NotTo(HaveOccurred())
		Expect(matches).To(BeEmpty())
	})

	It("deletes by filter and reports stats", func() {
		Expect(d.DeleteMany(ctx, "ns", vector.Filter{"topicId": "t1"})).To(Succeed())
		stats, err := d.DescribeStats(ctx, "ns")
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.VectorCount).To(Equal(int64(1)))
		Expect(stats.Dimension).To(Equal(2))
	})

	It("copies stored metadata", func() {
		md := vector.Metadata{"topicId": "t3"}
		Expect(d.Upsert(ctx, "ns", []vector.Record{{ID: "z", Vector: []float32{1, 1}, Metadata: md}})).To(Succeed())
		md["topicId"] = "mutated"

		matches, err := d.Query(ctx, "ns", vector.QueryRequest{
			Vector: []float32{1, 1}, TopK: 5, Filter: vector.Filter{"topicId": "t3"}, IncludeMetadata: true,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(matches).To(HaveLen(1))
	})
})
