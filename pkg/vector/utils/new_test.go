package vectorutils

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/coursewise/pkg/vector/inmemory"
)

var _ = Describe("NewVectorDriver", func() {
	It("builds the in-memory driver", func() {
		d, err := NewVectorDriver(context.Background(), &NewVectorDriverOpts{ProviderType: ProviderMemory})
		Expect(err).NotTo(HaveOccurred())
		Expect(d).To(BeAssignableToTypeOf(&inmemory.Driver{}))
	})

	It("rejects unknown providers", func() {
		_, err := NewVectorDriver(context.Background(), &NewVectorDriverOpts{ProviderType: "weaviate"})
		Expect(err).To(MatchError(ContainSubstring("unsupported vector store provider")))
	})

	DescribeTable("parses qdrant targets",
		func(target, host string, port int, tls bool) {
			h, p, t, err := parseQdrantTarget(target)
			Expect(err).NotTo(HaveOccurred())
			Expect(h).To(Equal(host))
			Expect(p).To(Equal(port))
			Expect(t).To(Equal(tls))
		},
		Entry("bare host", "localhost", "localhost", 0, false),
		Entry("host and port", "localhost:6334", "localhost", 6334, false),
		Entry("https url", "https://qdrant.example.com:6334", "qdrant.example.com", 6334, true),
	)
})
