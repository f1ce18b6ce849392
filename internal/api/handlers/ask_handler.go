package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/youssefmaimouni/can2025-chat/internal/query"
	"github.com/youssefmaimouni/can2025-chat/pkg/logger"
)

// couldNotAnswerMessage replaces an empty synthesized answer at the boundary.
// An empty string means "no answer produced" and must never reach the user
// verbatim.
const couldNotAnswerMessage = "Sorry, I could not find an answer to that question."

type AskHandler struct {
	engine *query.Engine
}

func NewAskHandler(engine *query.Engine) *AskHandler {
	return &AskHandler{engine: engine}
}

func (h *AskHandler) HandleAsk(c *fiber.Ctx) error {
	var req struct {
		Question string `json:"question"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing question",
		})
	}

	response := h.engine.Ask(c.Context(), req.Question)

	answer := response.Answer
	if answer == "" {
		answer = couldNotAnswerMessage
	}

	return c.JSON(fiber.Map{
		"question":  response.Question,
		"answer":    answer,
		"tool_used": response.ToolUsed,
		"sql_query": response.SQLQuery,
		"rag_used":  response.RAGUsed,
	})
}

func (h *AskHandler) GetHistory(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)

	records, err := h.engine.History(limit)
	if err != nil {
		logger.Error("Failed to load ask history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load history",
		})
	}

	return c.JSON(fiber.Map{
		"history": records,
	})
}
