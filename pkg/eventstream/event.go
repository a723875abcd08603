package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/coursewise/pkg/llm"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeAnswerGenerated is emitted after a tutor or assessment answer is produced.
	EventTypeAnswerGenerated = "coursewise.answer.generated"
)

// AnswerGeneratedEvent is a transport-neutral event payload for a generated answer.
// It carries identifiers and accounting only, never the student's text.
type AnswerGeneratedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`

	Mode         string    `json:"mode"`
	ResponseType string    `json:"response_type"`
	TopicID      string    `json:"topic_id,omitempty"`
	CourseID     string    `json:"course_id,omitempty"`
	SourceIDs    []string  `json:"source_ids"`
	Usage        llm.Usage `json:"usage"`
	Moderated    bool      `json:"moderated"`
	DurationMs   int64     `json:"duration_ms"`
}

// NewAnswerGeneratedEvent fills the envelope fields with a fresh id and timestamp.
func NewAnswerGeneratedEvent(now time.Time) *AnswerGeneratedEvent {
	return &AnswerGeneratedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeAnswerGenerated,
		EventID:       "evt_" + uuid.NewString(),
		EmittedAt:     now.UTC(),
		SourceIDs:     []string{},
	}
}
