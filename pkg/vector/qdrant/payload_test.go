package qdrant

import (
	"context"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"github.com/papercomputeco/coursewise/pkg/vector"
)

var _ = Describe("point ids", func() {
	It("are deterministic UUIDs per namespace and record", func() {
		a := pointID("curriculum", "doc:0")
		Expect(uuid.Validate(a)).To(Succeed())
		Expect(pointID("curriculum", "doc:0")).To(Equal(a))
		Expect(pointID("other", "doc:0")).NotTo(Equal(a))
	})
})

var _ = Describe("buildFilter", func() {
	It("always scopes by namespace first", func() {
		f := buildFilter("curriculum", vector.Filter{"topicId": "t1", "courseId": "c1"})
		Expect(f.GetMust()).To(HaveLen(3))
		Expect(f.GetMust()[0].GetField().GetKey()).To(Equal(payloadNamespaceKey))
		Expect(f.GetMust()[1].GetField().GetKey()).To(Equal("courseId"))
		Expect(f.GetMust()[2].GetField().GetMatch().GetKeyword()).To(Equal("t1"))
	})
})

var _ = Describe("payload round trip", func() {
	It("restores the record id and metadata", func() {
		rec := vector.Record{
			ID: "doc:3",
			Metadata: vector.Metadata{
				"topicId":    "t1",
				"chunkIndex": 3,
				"score":      0.5,
			},
		}
		payload, err := qdrant.TryValueMap(toPayload("curriculum", rec))
		Expect(err).NotTo(HaveOccurred())

		id, md := fromPayload(payload)
		Expect(id).To(Equal("doc:3"))
		Expect(md).To(HaveKeyWithValue("topicId", "t1"))
		Expect(md).To(HaveKeyWithValue("chunkIndex", int64(3)))
		Expect(md).To(HaveKeyWithValue("score", 0.5))
		Expect(md).NotTo(HaveKey(payloadNamespaceKey))
		Expect(rec.Metadata).NotTo(HaveKey(payloadRecordIDKey))
	})
})

var _ = Describe("NewDriver", func() {
	It("requires a host", func() {
		_, err := NewDriver(context.Background(), Config{Dimensions: 4}, zap.NewNop())
		Expect(err).To(MatchError(ContainSubstring("host is required")))
	})

	It("requires dimensions", func() {
		_, err := NewDriver(context.Background(), Config{Host: "localhost"}, zap.NewNop())
		Expect(err).To(MatchError(ContainSubstring("dimensions")))
	})
})
