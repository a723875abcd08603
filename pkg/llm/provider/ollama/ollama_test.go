package ollama_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/coursewise/pkg/llm"
	"github.com/papercomputeco/coursewise/pkg/llm/provider/ollama"
)

var _ = Describe("Client", func() {
	var (
		server  *httptest.Server
		reqBody map[string]any
	)

	BeforeEach(func() {
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(Equal("/api/chat"))
			reqBody = map[string]any{}
			json.NewDecoder(r.Body).Decode(&reqBody)
			w.Write([]byte(`{
				"model": "llama3.2",
				"created_at": "2026-01-01T00:00:00Z",
				"message": {"role": "assistant", "content": "Level 1: look at the units."},
				"done": true,
				"done_reason": "stop",
				"prompt_eval_count": 30,
				"eval_count": 8
			}`))
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	It("disables streaming and maps options", func() {
		c := ollama.New(ollama.Config{BaseURL: server.URL})
		resp, err := c.Chat(context.Background(), &llm.ChatRequest{
			System:      "Socratic hints only.",
			Messages:    []llm.Message{llm.NewTextMessage(llm.RoleUser, "solve for x")},
			MaxTokens:   llm.IntPtr(500),
			Temperature: llm.Float64Ptr(0.7),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Message.GetText()).To(Equal("Level 1: look at the units."))
		Expect(resp.Usage).To(Equal(llm.Usage{PromptTokens: 30, CompletionTokens: 8, TotalTokens: 38}))
		Expect(resp.StopReason).To(Equal("stop"))

		Expect(reqBody["stream"]).To(BeFalse())
		opts := reqBody["options"].(map[string]any)
		Expect(opts["num_predict"]).To(BeNumerically("==", 500))
		Expect(reqBody["messages"]).To(HaveLen(2))
	})

	It("wraps connection failures", func() {
		c := ollama.New(ollama.Config{BaseURL: "http://127.0.0.1:1"})
		_, err := c.Chat(context.Background(), &llm.ChatRequest{
			Messages: []llm.Message{llm.NewTextMessage(llm.RoleUser, "hi")},
		})
		Expect(err).To(MatchError(llm.ErrProviderUnavailable))
	})
})
