// Package mcp provides an MCP (Model Context Protocol) server exposing
// curriculum retrieval and tutoring as tools.
package mcp

import (
	"context"
	"errors"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/papercomputeco/coursewise/pkg/pipeline"
	"github.com/papercomputeco/coursewise/pkg/retrieval"
	"github.com/papercomputeco/coursewise/pkg/utils"
)

// Retriever finds curriculum chunks.
type Retriever interface {
	Retrieve(ctx context.Context, query string, filter retrieval.Filter, topK int) ([]retrieval.Chunk, error)
	RetrieveWithFallback(ctx context.Context, query, topicID, courseID string) ([]retrieval.Chunk, error)
}

// Tutor answers learning and practice questions.
type Tutor interface {
	Answer(ctx context.Context, req pipeline.TutorRequest) (*pipeline.GeneratedAnswer, error)
}

// Assessor answers questions asked during assessments.
type Assessor interface {
	Answer(ctx context.Context, req pipeline.AssessmentRequest) (*pipeline.GeneratedAnswer, error)
}

type Config struct {
	// Retriever backs the retrieve_curriculum tool.
	Retriever Retriever

	// Tutor backs ask_tutor in learning and practice modes.
	Tutor Tutor

	// Assessment backs ask_tutor in the assessment modes.
	Assessment Assessor

	// Noop for empty MCP server
	Noop bool

	// Logger is the configured zap logger
	Logger *zap.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the curriculum tools.
func NewServer(c Config) (*Server, error) {
	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "coursewise",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	if !c.Noop {
		if c.Retriever == nil {
			return nil, errors.New("retriever is required")
		}
		if c.Tutor == nil {
			return nil, errors.New("tutor is required")
		}
		if c.Assessment == nil {
			return nil, errors.New("assessment is required")
		}
		if c.Logger == nil {
			return nil, errors.New("logger is required")
		}

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        retrieveToolName,
			Description: retrieveDescription,
		}, s.handleRetrieve)

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        askToolName,
			Description: askDescription,
		}, s.handleAsk)
	}

	s.mcpServer = mcpServer

	// Create a streamable HTTP net/http handler for stateless operations
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}
