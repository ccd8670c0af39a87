package rest

import (
	"errors"

	"campusbot/app/domain"
	"campusbot/app/service/chat"

	"github.com/gofiber/fiber/v2"
)

const (
	messageRequired    = "Message is required"
	chatHistoryCleared = "Chat history cleared"
)

type chatMessageRequest struct {
	Message string           `json:"message"`
	History []domain.Message `json:"history"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (s *Server) handleChatMessage(c *fiber.Ctx) error {
	var req chatMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, messageRequired)
	}

	reply, err := s.chatSvc.GetReply(c.UserContext(), req.Message, req.History)
	if errors.Is(err, chat.ErrEmptyMessage) {
		return fiber.NewError(fiber.StatusBadRequest, messageRequired)
	}
	if err != nil {
		return err
	}

	return c.JSON(messageResponse{Message: reply.Text})
}

// History lives on the client, so there is never anything to return.
func (s *Server) handleChatHistory(c *fiber.Ctx) error {
	return c.JSON([]domain.Message{})
}

func (s *Server) handleChatClear(c *fiber.Ctx) error {
	return c.JSON(messageResponse{Message: chatHistoryCleared})
}
