package pipeline_test

import (
	"go.uber.org/zap"

	"github.com/papercomputeco/coursewise/pkg/generation"
	"github.com/papercomputeco/coursewise/pkg/moderation"
	"github.com/papercomputeco/coursewise/pkg/pipeline"
	"github.com/papercomputeco/coursewise/pkg/retrieval"
	testutils "github.com/papercomputeco/coursewise/pkg/utils/test"
	"github.com/papercomputeco/coursewise/pkg/vector"
)

type fixture struct {
	embedder  *testutils.MockEmbedder
	index     *testutils.MockVectorDriver
	llm       *testutils.MockLLMClient
	moderator *testutils.MockModerator
	publisher *testutils.MockPublisher
	deps      pipeline.Deps
}

func newFixture(reply string) *fixture {
	f := &fixture{
		embedder:  testutils.NewMockEmbedder(),
		index:     testutils.NewMockVectorDriver(),
		llm:       testutils.NewMockLLMClient(reply),
		moderator: &testutils.MockModerator{},
		publisher: testutils.NewMockPublisher(),
	}
	logger := zap.NewNop()
	f.deps = pipeline.Deps{
		Retriever: retrieval.New(f.embedder, f.index, retrieval.DefaultConfig(), logger),
		Generator: generation.NewGateway(f.llm, logger),
		Moderator: moderation.NewGate(f.moderator, logger),
		Publisher: f.publisher,
		Logger:    logger,
	}
	return f
}

func match(id string, score float32, topic, course string) vector.Match {
	return vector.Match{ID: id, Score: score, Metadata: vector.Metadata{
		vector.MetaTopicID:  topic,
		vector.MetaCourseID: course,
		vector.MetaText:     "text of " + id,
	}}
}

func sourceIDs(sources []pipeline.Source) []string {
	out := make([]string, len(sources))
	for i, s := range sources {
		out[i] = s.ID
	}
	return out
}
