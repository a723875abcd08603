package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/coursewise/pkg/llm"
	"github.com/papercomputeco/coursewise/pkg/llm/provider/openai"
)

var _ = Describe("Client", func() {
	var (
		server  *httptest.Server
		status  int
		reqBody map[string]any
	)

	BeforeEach(func() {
		status = http.StatusOK
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(Equal("/v1/chat/completions"))
			Expect(r.Header.Get("Authorization")).To(Equal("Bearer sk-test"))
			reqBody = map[string]any{}
			json.NewDecoder(r.Body).Decode(&reqBody)

			if status != http.StatusOK {
				w.WriteHeader(status)
				w.Write([]byte(`{"error":{"message":"overloaded"}}`))
				return
			}
			w.Write([]byte(`{
				"id": "chatcmpl-1",
				"created": 1700000000,
				"model": "gpt-4o-mini",
				"choices": [{"index": 0, "message": {"role": "assistant", "content": "Photosynthesis converts light."}, "finish_reason": "stop"}],
				"usage": {"prompt_tokens": 12, "completion_tokens": 5, "total_tokens": 17}
			}`))
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	It("sends the system prompt first and maps usage", func() {
		c, err := openai.New(openai.Config{BaseURL: server.URL, APIKey: "sk-test"})
		Expect(err).NotTo(HaveOccurred())

		resp, err := c.Chat(context.Background(), &llm.ChatRequest{
			System:      "Use only the context.",
			Messages:    []llm.Message{llm.NewTextMessage(llm.RoleUser, "What is photosynthesis?")},
			MaxTokens:   llm.IntPtr(100),
			Temperature: llm.Float64Ptr(0.3),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Message.GetText()).To(Equal("Photosynthesis converts light."))
		Expect(resp.Usage).To(Equal(llm.Usage{PromptTokens: 12, CompletionTokens: 5, TotalTokens: 17}))

		msgs := reqBody["messages"].([]any)
		Expect(msgs).To(HaveLen(2))
		Expect(msgs[0].(map[string]any)["role"]).To(Equal("system"))
		Expect(reqBody["model"]).To(Equal(openai.DefaultModel))
		Expect(reqBody["max_tokens"]).To(BeNumerically("==", 100))
	})

	It("wraps non-200 responses as provider unavailable", func() {
		status = http.StatusServiceUnavailable
		c, _ := openai.New(openai.Config{BaseURL: server.URL, APIKey: "sk-test"})
		_, err := c.Chat(context.Background(), &llm.ChatRequest{
			Messages: []llm.Message{llm.NewTextMessage(llm.RoleUser, "hi")},
		})
		Expect(err).To(MatchError(llm.ErrProviderUnavailable))
	})
})
