package agent

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/youssefmaimouni/can2025-chat/internal/metrics"
	"github.com/youssefmaimouni/can2025-chat/pkg/logger"
)

type Tool string

const (
	ToolSQL  Tool = "SQL"
	ToolRAG  Tool = "RAG"
	ToolBoth Tool = "BOTH"
)

// Generator is the slice of the text-generation client the agent depends on.
type Generator interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Decision is the routing outcome for one question. Instances are built fresh
// per question and either fully validated or replaced by the fallback; a
// partially-valid decision is never returned.
type Decision struct {
	Tool     Tool    `json:"tool"`
	SQLQuery *string `json:"sql_query"`
	RAGQuery *string `json:"rag_query"`
}

func (d Decision) NeedsSQL() bool {
	return (d.Tool == ToolSQL || d.Tool == ToolBoth) && d.SQLQuery != nil && *d.SQLQuery != ""
}

func (d Decision) NeedsRAG() bool {
	return (d.Tool == ToolRAG || d.Tool == ToolBoth) && d.RAGQuery != nil && *d.RAGQuery != ""
}

// Router classifies a question into the retrieval tool(s) that should answer
// it by asking the text-generation model for a schema-constrained JSON reply.
type Router struct {
	llm Generator
}

func NewRouter(llm Generator) *Router {
	return &Router{llm: llm}
}

// Decide never fails: when the model is unreachable or returns something
// unparseable, the question is routed to semantic search as-is.
func (r *Router) Decide(ctx context.Context, question string) Decision {
	response, err := r.llm.Complete(ctx, routerSystemPrompt, question)
	if err != nil {
		logger.Warn("Routing call failed, falling back to RAG", zap.Error(err))
		metrics.RouterFallbacks.Inc()
		return fallbackDecision(question)
	}

	decision, ok := parseDecision(response)
	if !ok {
		logger.Warn("Routing response unparseable, falling back to RAG",
			zap.String("response", response))
		metrics.RouterFallbacks.Inc()
		return fallbackDecision(question)
	}

	logger.Debug("Routing decision",
		zap.String("tool", string(decision.Tool)),
		zap.Bool("has_sql", decision.SQLQuery != nil),
		zap.Bool("has_rag", decision.RAGQuery != nil),
	)
	return decision
}

// parseDecision extracts the JSON object between the first '{' and the last
// '}' in the response. The model often wraps its JSON in prose, so this
// leniency is deliberate; everything inside is still strictly validated.
func parseDecision(response string) (Decision, bool) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start < 0 || end <= start {
		return Decision{}, false
	}

	var decision Decision
	if err := json.Unmarshal([]byte(response[start:end+1]), &decision); err != nil {
		return Decision{}, false
	}

	switch decision.Tool {
	case ToolSQL, ToolRAG, ToolBoth:
		return decision, true
	default:
		return Decision{}, false
	}
}

// fallbackDecision is the universal safety net: semantic search over the raw
// question text.
func fallbackDecision(question string) Decision {
	return Decision{
		Tool:     ToolRAG,
		SQLQuery: nil,
		RAGQuery: &question,
	}
}
