package eventstream_test

import (
	"encoding/json"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/coursewise/pkg/eventstream"
	"github.com/papercomputeco/coursewise/pkg/llm"
)

var _ = Describe("Event", func() {
	It("fills the envelope", func() {
		now := time.Unix(1735689600, 0)
		event := eventstream.NewAnswerGeneratedEvent(now)

		Expect(event.SchemaVersion).To(Equal(eventstream.SchemaVersionV1))
		Expect(event.EventType).To(Equal(eventstream.EventTypeAnswerGenerated))
		Expect(strings.HasPrefix(event.EventID, "evt_")).To(BeTrue())
		Expect(event.EmittedAt).To(Equal(now.UTC()))
		Expect(event.SourceIDs).NotTo(BeNil())
	})

	It("marshals AnswerGeneratedEvent with expected top-level keys", func() {
		event := eventstream.NewAnswerGeneratedEvent(time.Now())
		event.Mode = "learning"
		event.ResponseType = "explanation"
		event.TopicID = "t1"
		event.SourceIDs = []string{"d1:0"}
		event.Usage = llm.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}

		payload, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())

		var decoded map[string]any
		Expect(json.Unmarshal(payload, &decoded)).To(Succeed())
		Expect(decoded).To(HaveKey("schema_version"))
		Expect(decoded).To(HaveKey("event_id"))
		Expect(decoded).To(HaveKeyWithValue("mode", "learning"))
		Expect(decoded).To(HaveKeyWithValue("response_type", "explanation"))
		Expect(decoded).To(HaveKeyWithValue("moderated", false))
		Expect(decoded).NotTo(HaveKey("course_id"))
		Expect(decoded["usage"]).To(HaveKeyWithValue("totalTokens", BeNumerically("==", 15)))
	})
})
