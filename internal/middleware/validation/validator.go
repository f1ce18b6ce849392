package validation

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Config struct {
	MaxQuestionLength   int
	AllowedContentTypes []string
	Logger              *zap.Logger
}

// Middleware enforces the request contract on the ask endpoint before the
// pipeline sees it: JSON content type, a non-empty question, and a length cap.
// It does not try to vet the question text itself; questions are natural
// language, not code.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxQuestionLength == 0 {
		cfg.MaxQuestionLength = 2000
	}
	if len(cfg.AllowedContentTypes) == 0 {
		cfg.AllowedContentTypes = []string{"application/json"}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost {
			return c.Next()
		}

		contentType := c.Get("Content-Type")
		if contentType != "" && !isAllowed(contentType, cfg.AllowedContentTypes) {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
				"error": "Unsupported content type",
			})
		}

		if !strings.HasSuffix(c.Path(), "/ask") {
			return c.Next()
		}

		var req struct {
			Question string `json:"question"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid JSON format",
			})
		}

		question := strings.TrimSpace(strings.ReplaceAll(req.Question, "\x00", ""))
		if question == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Missing question",
			})
		}

		if len(question) > cfg.MaxQuestionLength {
			cfg.Logger.Warn("Question exceeds maximum length",
				zap.String("ip", c.IP()),
				zap.Int("length", len(question)),
			)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Question exceeds maximum length",
			})
		}

		return c.Next()
	}
}

func isAllowed(contentType string, allowed []string) bool {
	for _, a := range allowed {
		if strings.Contains(contentType, a) {
			return true
		}
	}
	return false
}
