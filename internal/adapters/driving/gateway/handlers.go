package gateway

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
)

const voiceField = "audio"

func (s *Server) handleHealth(c *fiber.Ctx) error {
	manifest := s.ports.Answers.Manifest()
	if s.ports.Health != nil && !s.ports.Health.Healthy() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{Status: "degraded", BuildID: manifest.BuildID})
	}
	return c.JSON(HealthResponse{Status: "ok", BuildID: manifest.BuildID})
}

func (s *Server) handleIndex(c *fiber.Ctx) error {
	return c.JSON(s.ports.Answers.Manifest())
}

func (s *Server) handleAnswer(c *fiber.Ctx) error {
	var req AnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	answer, err := s.ports.Answers.Ask(c.UserContext(), req.Question)
	if err != nil {
		return err
	}

	resp := AnswerResponse{
		Answer:        answer.Text,
		Emergency:     answer.Emergency,
		Fallback:      answer.Fallback,
		Clarification: answer.Clarification,
		RequestID:     requestIDOf(c),
	}
	for _, cite := range answer.Citations {
		resp.Citations = append(resp.Citations, cite.String())
	}
	return c.JSON(resp)
}

func (s *Server) handleMessage(c *fiber.Ctx) error {
	var req MessageRequest
	if err := c.BodyParser(&req); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if req.UserID == 0 {
		return fmt.Errorf("%w: user_id is required", domain.ErrInvalidInput)
	}

	reply, err := s.ports.Conversation.Handle(c.UserContext(), req.incoming())
	if err != nil {
		return err
	}
	return c.JSON(replyResponse(reply, requestIDOf(c)))
}

func (s *Server) handleVoice(c *fiber.Ctx) error {
	userID, err := strconv.ParseInt(c.FormValue("user_id"), 10, 64)
	if err != nil || userID == 0 {
		return fmt.Errorf("%w: user_id is required", domain.ErrInvalidInput)
	}
	messageID, _ := strconv.ParseInt(c.FormValue("message_id"), 10, 64)

	header, err := c.FormFile(voiceField)
	if err != nil {
		return fmt.Errorf("%w: %s file is required", domain.ErrInvalidInput, voiceField)
	}
	audio, err := header.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer audio.Close()

	in := domain.Incoming{
		UserID:    userID,
		Username:  c.FormValue("username"),
		FirstName: c.FormValue("first_name"),
		MessageID: messageID,
	}
	reply, err := s.ports.Conversation.HandleVoice(c.UserContext(), in, header.Filename, audio)
	if err != nil {
		return err
	}
	return c.JSON(replyResponse(reply, requestIDOf(c)))
}
