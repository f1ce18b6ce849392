package agent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/youssefmaimouni/can2025-chat/internal/metrics"
	"github.com/youssefmaimouni/can2025-chat/pkg/logger"
)

// Synthesizer turns retrieved evidence into a final natural-language answer.
type Synthesizer struct {
	llm Generator
}

func NewSynthesizer(llm Generator) *Synthesizer {
	return &Synthesizer{llm: llm}
}

// Synthesize makes a single text-generation call embedding the question and
// whatever evidence was retrieved. It returns an empty string on any failure;
// callers must treat "" as "no answer produced" and render their own message.
func (s *Synthesizer) Synthesize(ctx context.Context, question, structuredEvidence, semanticEvidence string) string {
	var blocks []string
	if structuredEvidence != "" {
		blocks = append(blocks, "Match database result:\n"+structuredEvidence)
	}
	if semanticEvidence != "" {
		blocks = append(blocks, semanticEvidence)
	}

	contextBlock := strings.Join(blocks, "\n\n")
	if contextBlock == "" {
		contextBlock = noContextMarker
	}

	prompt := fmt.Sprintf(answerPromptTemplate, question, contextBlock)

	answer, err := s.llm.Complete(ctx, synthesizerSystemPrompt, prompt)
	if err != nil {
		logger.Warn("Answer synthesis failed", zap.Error(err))
		metrics.SynthesisFailures.Inc()
		return ""
	}

	return strings.TrimSpace(answer)
}
