package openai_test

import (
	"context"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/coursewise/pkg/moderation"
	"github.com/papercomputeco/coursewise/pkg/moderation/openai"
)

var _ = Describe("Provider", func() {
	var (
		server  *httptest.Server
		status  int
		payload string
	)

	BeforeEach(func() {
		status = http.StatusOK
		payload = `{"results": [{"flagged": true, "categories": {"violence": true, "harassment": true, "sexual": false}}]}`
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(Equal("/v1/moderations"))
			w.WriteHeader(status)
			w.Write([]byte(payload))
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	It("returns sorted flagged categories", func() {
		p, err := openai.New(openai.Config{BaseURL: server.URL, APIKey: "sk-test"})
		Expect(err).NotTo(HaveOccurred())

		res, err := p.Moderate(context.Background(), "text")
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Flagged).To(BeTrue())
		Expect(res.Categories).To(Equal([]string{"harassment", "violence"}))
	})

	It("reports outages as unavailable", func() {
		status = http.StatusInternalServerError
		p, _ := openai.New(openai.Config{BaseURL: server.URL, APIKey: "sk-test"})
		_, err := p.Moderate(context.Background(), "text")
		Expect(err).To(MatchError(moderation.ErrModerationUnavailable))
	})

	It("lets content through a gate during an outage", func() {
		status = http.StatusBadGateway
		p, _ := openai.New(openai.Config{BaseURL: server.URL, APIKey: "sk-test"})
		gate := moderation.NewGate(p, zap.NewNop())
		Expect(gate.ValidateResponse(context.Background(), "text")).To(BeTrue())
	})
})
