package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/youssefmaimouni/can2025-chat/internal/query"
	"github.com/youssefmaimouni/can2025-chat/pkg/logger"
)

// WebSocketHandler serves interactive ask sessions, streaming each answer
// word by word followed by its provenance.
type WebSocketHandler struct {
	engine *query.Engine
}

func NewWebSocketHandler(engine *query.Engine) *WebSocketHandler {
	return &WebSocketHandler{engine: engine}
}

type wsMessage struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type wsChunk struct {
	Type     string `json:"type"`
	Content  string `json:"content,omitempty"`
	ToolUsed string `json:"tool_used,omitempty"`
	RAGUsed  bool   `json:"rag_used,omitempty"`
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg wsMessage
		if err := c.ReadJSON(&msg); err != nil {
			logger.Debug("WebSocket read ended", zap.Error(err))
			break
		}

		if msg.Type != "question" || msg.Content == "" {
			h.send(c, wsChunk{Type: "error", Content: "Expected a question message"})
			continue
		}

		h.streamAnswer(c, msg.Content)
	}
}

func (h *WebSocketHandler) streamAnswer(c *websocket.Conn, question string) {
	h.send(c, wsChunk{Type: "status", Content: "Processing question..."})

	response := h.engine.Ask(context.Background(), question)

	answer := response.Answer
	if answer == "" {
		answer = couldNotAnswerMessage
	}

	words := strings.Fields(answer)
	for i, word := range words {
		chunk := word
		if i < len(words)-1 {
			chunk += " "
		}
		if !h.send(c, wsChunk{Type: "chunk", Content: chunk}) {
			return
		}
	}

	h.send(c, wsChunk{
		Type:     "done",
		ToolUsed: response.ToolUsed,
		RAGUsed:  response.RAGUsed,
	})
}

func (h *WebSocketHandler) send(c *websocket.Conn, chunk wsChunk) bool {
	if err := c.WriteJSON(chunk); err != nil {
		logger.Error("Failed to write WebSocket message", zap.Error(err))
		return false
	}
	return true
}
