package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/coursewise/pkg/generation"
	"github.com/papercomputeco/coursewise/pkg/ingest"
	"github.com/papercomputeco/coursewise/pkg/pipeline"
	"github.com/papercomputeco/coursewise/pkg/prompt"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// TutorRequest is the body of POST /v1/tutor.
type TutorRequest struct {
	Query        string            `json:"query"`
	TopicID      string            `json:"topicId"`
	CourseID     string            `json:"courseId"`
	Mode         string            `json:"mode"`
	StudentLevel string            `json:"studentLevel"`
	MasteryScore float64           `json:"masteryScore"`
	History      []generation.Turn `json:"history"`
}

// QuestionsResponse is the body returned by POST /v1/content/questions.
type QuestionsResponse struct {
	Questions []pipeline.Question `json:"questions"`
	Count     int                 `json:"count"`
}

// FlashcardsResponse is the body returned by POST /v1/content/flashcards.
type FlashcardsResponse struct {
	Flashcards []pipeline.Flashcard `json:"flashcards"`
	Count      int                  `json:"count"`
}

// IngestAccepted is the body returned by POST /v1/documents.
type IngestAccepted struct {
	DocumentID string `json:"documentId"`
	Status     string `json:"status"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

func (s *Server) handleTutor(c *fiber.Ctx) error {
	if s.services.Tutor == nil {
		return unavailable(c, "tutor")
	}

	var body TutorRequest
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if strings.TrimSpace(body.Query) == "" {
		return badRequest(c, "query is required")
	}

	mode := prompt.ModeLearning
	if body.Mode != "" {
		parsed, err := prompt.ParseMode(body.Mode)
		if err != nil {
			return badRequest(c, err.Error())
		}
		mode = parsed
	}

	req := pipeline.TutorRequest{
		Query:        body.Query,
		TopicID:      body.TopicID,
		CourseID:     body.CourseID,
		Mode:         mode,
		StudentLevel: body.StudentLevel,
		MasteryScore: body.MasteryScore,
		History:      body.History,
	}

	answer, err := s.services.Tutor.Answer(c.UserContext(), req)
	if err != nil {
		return s.pipelineError(c, "tutor", err)
	}
	return c.JSON(answer)
}

func (s *Server) handleAssessment(c *fiber.Ctx) error {
	if s.services.Assessment == nil {
		return unavailable(c, "assessment")
	}

	var req pipeline.AssessmentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if strings.TrimSpace(req.Query) == "" {
		return badRequest(c, "query is required")
	}

	answer, err := s.services.Assessment.Answer(c.UserContext(), req)
	if err != nil {
		return s.pipelineError(c, "assessment", err)
	}
	return c.JSON(answer)
}

func (s *Server) handleQuestions(c *fiber.Ctx) error {
	if s.services.Content == nil {
		return unavailable(c, "content")
	}

	var req pipeline.ContentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.TopicID == "" {
		return badRequest(c, "topicId is required")
	}

	questions := s.services.Content.GenerateQuestions(c.UserContext(), req)
	return c.JSON(QuestionsResponse{Questions: questions, Count: len(questions)})
}

func (s *Server) handleFlashcards(c *fiber.Ctx) error {
	if s.services.Content == nil {
		return unavailable(c, "content")
	}

	var req pipeline.ContentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.TopicID == "" {
		return badRequest(c, "topicId is required")
	}

	cards := s.services.Content.GenerateFlashcards(c.UserContext(), req)
	return c.JSON(FlashcardsResponse{Flashcards: cards, Count: len(cards)})
}

func (s *Server) handleNarrative(c *fiber.Ctx) error {
	if s.services.Content == nil {
		return unavailable(c, "content")
	}

	var req pipeline.BossRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.TopicID == "" {
		return badRequest(c, "topicId is required")
	}

	return c.JSON(s.services.Content.GenerateBossNarrative(c.UserContext(), req))
}

func (s *Server) handleIngestDocument(c *fiber.Ctx) error {
	if s.services.Queue == nil {
		return unavailable(c, "ingestion")
	}

	var doc ingest.Document
	if err := c.BodyParser(&doc); err != nil {
		return badRequest(c, "invalid request body")
	}
	if doc.ID == "" || doc.TopicID == "" || doc.CourseID == "" {
		return badRequest(c, "id, topicId and courseId are required")
	}

	if !s.services.Queue.Enqueue(ingest.Job{Document: doc}) {
		return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{Error: "ingestion queue is full"})
	}
	return c.Status(fiber.StatusAccepted).JSON(IngestAccepted{DocumentID: doc.ID, Status: "queued"})
}

func (s *Server) handleDeleteDocument(c *fiber.Ctx) error {
	if s.services.Index == nil {
		return unavailable(c, "index")
	}

	id := c.Params("id")
	if id == "" {
		return badRequest(c, "id parameter required")
	}

	if err := s.services.Index.DeleteDocument(c.UserContext(), id); err != nil {
		s.logger.Error("failed to delete document", zap.String("document_id", id), zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: "failed to delete document"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleIndexStats(c *fiber.Ctx) error {
	if s.services.Index == nil {
		return unavailable(c, "index")
	}

	stats, err := s.services.Index.Stats(c.UserContext())
	if err != nil {
		s.logger.Error("failed to describe index", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: "failed to describe index"})
	}
	return c.JSON(stats)
}

// pipelineError maps orchestrator errors to status codes. Provider outages
// are 503 so callers can show a try-again message.
func (s *Server) pipelineError(c *fiber.Ctx, route string, err error) error {
	switch {
	case errors.Is(err, pipeline.ErrProviderUnavailable):
		s.logger.Warn("provider unavailable", zap.String("route", route), zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: "service temporarily unavailable, try again later"})
	case errors.Is(err, prompt.ErrUnknownMode), errors.Is(err, pipeline.ErrUnsupportedMode):
		return badRequest(c, err.Error())
	default:
		s.logger.Error("pipeline failed", zap.String("route", route), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "internal error"})
	}
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: msg})
}

func unavailable(c *fiber.Ctx, what string) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: what + " is not configured"})
}
