package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/papercomputeco/coursewise/pkg/pipeline"
	"github.com/papercomputeco/coursewise/pkg/prompt"
	"github.com/papercomputeco/coursewise/pkg/retrieval"
	"github.com/papercomputeco/coursewise/pkg/vector"
)

var (
	retrieveToolName    = "retrieve_curriculum"
	retrieveDescription = "Retrieve approved course material relevant to a query. Searches the topic first and widens to the course when the topic has too few relevant passages."

	askToolName    = "ask_tutor"
	askDescription = "Ask the curriculum tutor a question. The answer is grounded only in course material and follows the pedagogical mode (learning, practice, assessment-soft, assessment-strict)."
)

// RetrieveInput represents the input arguments for the retrieve tool.
type RetrieveInput struct {
	Query    string `json:"query" jsonschema:"the question or phrase to find course material for"`
	TopicID  string `json:"topic_id,omitempty" jsonschema:"topic to search first"`
	CourseID string `json:"course_id,omitempty" jsonschema:"course to widen to when the topic is sparse"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"number of passages to return; setting it disables course fallback"`
}

// ChunkResult is a single retrieved passage.
type ChunkResult struct {
	ID       string  `json:"id"`
	Score    float32 `json:"score"`
	TopicID  string  `json:"topic_id,omitempty"`
	CourseID string  `json:"course_id,omitempty"`
	Text     string  `json:"text"`
}

// RetrieveOutput represents the output of the retrieve tool.
type RetrieveOutput struct {
	Query  string        `json:"query"`
	Chunks []ChunkResult `json:"chunks"`
	Count  int           `json:"count"`
}

// AskInput represents the input arguments for the ask tool.
type AskInput struct {
	Query        string  `json:"query" jsonschema:"the student's question"`
	TopicID      string  `json:"topic_id,omitempty" jsonschema:"topic the question is about"`
	CourseID     string  `json:"course_id,omitempty" jsonschema:"course the topic belongs to"`
	Mode         string  `json:"mode,omitempty" jsonschema:"learning, practice, assessment-soft or assessment-strict (default: learning)"`
	MasteryScore float64 `json:"mastery_score,omitempty" jsonschema:"student mastery of the topic from 0 to 100"`
	StudentLevel string  `json:"student_level,omitempty" jsonschema:"free-form level such as beginner or advanced"`
}

func (s *Server) handleRetrieve(ctx context.Context, _ *mcp.CallToolRequest, input RetrieveInput) (*mcp.CallToolResult, RetrieveOutput, error) {
	logger := s.config.Logger

	logger.Debug("MCP retrieve request",
		zap.String("query", input.Query),
		zap.String("topic_id", input.TopicID),
		zap.String("course_id", input.CourseID),
		zap.Int("top_k", input.TopK),
	)

	var (
		chunks []retrieval.Chunk
		err    error
	)
	if input.TopK > 0 || input.TopicID == "" {
		chunks, err = s.config.Retriever.Retrieve(ctx, input.Query,
			retrieval.Filter{TopicID: input.TopicID, CourseID: input.CourseID}, input.TopK)
	} else {
		chunks, err = s.config.Retriever.RetrieveWithFallback(ctx, input.Query, input.TopicID, input.CourseID)
	}
	if err != nil {
		logger.Error("failed to retrieve curriculum", zap.Error(err))
		return errorResult("Failed to retrieve curriculum: %v", err), RetrieveOutput{}, nil
	}

	output := RetrieveOutput{
		Query:  input.Query,
		Chunks: make([]ChunkResult, len(chunks)),
		Count:  len(chunks),
	}
	for i, c := range chunks {
		output.Chunks[i] = ChunkResult{
			ID:       c.ID,
			Score:    c.Score,
			TopicID:  vector.MetaString(c.Metadata[vector.MetaTopicID]),
			CourseID: vector.MetaString(c.Metadata[vector.MetaCourseID]),
			Text:     c.Text,
		}
	}

	return textResult(logger, output)
}

func (s *Server) handleAsk(ctx context.Context, _ *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, pipeline.GeneratedAnswer, error) {
	logger := s.config.Logger

	mode := prompt.ModeLearning
	if input.Mode != "" {
		parsed, err := prompt.ParseMode(input.Mode)
		if err != nil {
			return errorResult("%v", err), pipeline.GeneratedAnswer{}, nil
		}
		mode = parsed
	}

	logger.Debug("MCP ask request",
		zap.String("mode", string(mode)),
		zap.String("topic_id", input.TopicID),
	)

	var (
		answer *pipeline.GeneratedAnswer
		err    error
	)
	if mode.IsAssessment() {
		answer, err = s.config.Assessment.Answer(ctx, pipeline.AssessmentRequest{
			Query:        input.Query,
			TopicID:      input.TopicID,
			CourseID:     input.CourseID,
			StrictMode:   mode == prompt.ModeAssessmentStrict,
			StudentLevel: input.StudentLevel,
			MasteryScore: input.MasteryScore,
		})
	} else {
		answer, err = s.config.Tutor.Answer(ctx, pipeline.TutorRequest{
			Query:        input.Query,
			TopicID:      input.TopicID,
			CourseID:     input.CourseID,
			Mode:         mode,
			StudentLevel: input.StudentLevel,
			MasteryScore: input.MasteryScore,
		})
	}
	if err != nil {
		logger.Error("tutor request failed", zap.Error(err))
		return errorResult("Tutor unavailable: %v", err), pipeline.GeneratedAnswer{}, nil
	}

	return textResult(logger, *answer)
}

// textResult returns structured output alongside its JSON text, which MCP
// clients without structured content support read instead.
func textResult[T any](logger *zap.Logger, output T) (*mcp.CallToolResult, T, error) {
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		logger.Error("failed to marshal tool output", zap.Error(err))
		var zero T
		return errorResult("Failed to serialize results: %v", err), zero, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}

func errorResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
	}
}
