package query

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/youssefmaimouni/can2025-chat/internal/agent"
	"github.com/youssefmaimouni/can2025-chat/internal/metrics"
	"github.com/youssefmaimouni/can2025-chat/internal/storage/models"
	"github.com/youssefmaimouni/can2025-chat/pkg/logger"
)

// Decider classifies a question into the tool(s) that should answer it.
type Decider interface {
	Decide(ctx context.Context, question string) agent.Decision
}

// AnswerSynthesizer produces the final answer from retrieved evidence.
type AnswerSynthesizer interface {
	Synthesize(ctx context.Context, question, structuredEvidence, semanticEvidence string) string
}

// Store is the slice of the SQLite layer the engine uses.
type Store interface {
	ExecuteQuery(ctx context.Context, query string) ([][]string, error)
	InsertAskRecord(record *models.AskRecord) error
	RecentHistory(limit int) ([]models.AskRecord, error)
}

// SemanticSearcher retrieves documents similar to a query, best first.
type SemanticSearcher interface {
	Search(ctx context.Context, query string, k int) ([]string, error)
}

// Engine runs the full route-retrieve-synthesize pipeline for one question.
// It holds only read-only collaborators, so a single Engine serves concurrent
// requests.
type Engine struct {
	router    Decider
	synth     AnswerSynthesizer
	store     Store
	retriever SemanticSearcher
	topK      int
}

// Response is the per-question result with its routing provenance. RAGUsed
// reports whether non-empty semantic evidence was actually retrieved, not
// merely whether the router asked for it.
type Response struct {
	ID        string  `json:"id"`
	Question  string  `json:"question"`
	Answer    string  `json:"answer"`
	ToolUsed  string  `json:"tool_used"`
	SQLQuery  *string `json:"sql_query"`
	RAGUsed   bool    `json:"rag_used"`
	LatencyMS int     `json:"latency_ms"`
}

func NewEngine(router Decider, synth AnswerSynthesizer, store Store, retriever SemanticSearcher, topK int) *Engine {
	if topK <= 0 {
		topK = 25
	}
	return &Engine{
		router:    router,
		synth:     synth,
		store:     store,
		retriever: retriever,
		topK:      topK,
	}
}

// Ask processes one question end to end. It never returns an error: every
// external failure is folded into evidence, a fallback, or an empty answer.
func (e *Engine) Ask(ctx context.Context, question string) *Response {
	start := time.Now()
	id := uuid.New().String()

	logger.Info("Processing question",
		zap.String("question_id", id),
		zap.String("question", question),
	)

	decision := e.router.Decide(ctx, question)

	var structuredEvidence, semanticEvidence string

	if decision.NeedsSQL() {
		rows, err := e.store.ExecuteQuery(ctx, *decision.SQLQuery)
		if err != nil {
			// The captured error is evidence too: the synthesizer may
			// explain the failure instead of silently dropping the tool.
			structuredEvidence = "SQL Error: " + err.Error()
			metrics.SQLQueryErrors.Inc()
			logger.Warn("Routed SQL query failed",
				zap.String("question_id", id),
				zap.String("sql_query", *decision.SQLQuery),
				zap.Error(err),
			)
		} else {
			structuredEvidence = formatRows(rows)
		}
	}

	if decision.NeedsRAG() {
		docs, err := e.retriever.Search(ctx, *decision.RAGQuery, e.topK)
		if err != nil {
			logger.Warn("Semantic retrieval failed",
				zap.String("question_id", id),
				zap.Error(err),
			)
		} else {
			metrics.RetrievedDocuments.Observe(float64(len(docs)))
			semanticEvidence = strings.Join(docs, "\n")
		}
	}

	answer := e.synth.Synthesize(ctx, question, structuredEvidence, semanticEvidence)

	status := "answered"
	if answer == "" {
		status = "no_answer"
	}
	metrics.QuestionsTotal.WithLabelValues(string(decision.Tool), status).Inc()
	metrics.QuestionDuration.WithLabelValues(string(decision.Tool)).Observe(time.Since(start).Seconds())

	response := &Response{
		ID:        id,
		Question:  question,
		Answer:    answer,
		ToolUsed:  string(decision.Tool),
		SQLQuery:  decision.SQLQuery,
		RAGUsed:   semanticEvidence != "",
		LatencyMS: int(time.Since(start).Milliseconds()),
	}

	record := &models.AskRecord{
		ID:        id,
		Question:  question,
		Answer:    answer,
		ToolUsed:  response.ToolUsed,
		RAGUsed:   response.RAGUsed,
		LatencyMS: response.LatencyMS,
		CreatedAt: time.Now(),
	}
	if decision.SQLQuery != nil {
		record.SQLQuery = *decision.SQLQuery
	}
	if err := e.store.InsertAskRecord(record); err != nil {
		logger.Warn("Failed to record question", zap.String("question_id", id), zap.Error(err))
	}

	logger.Info("Question processed",
		zap.String("question_id", id),
		zap.String("tool_used", response.ToolUsed),
		zap.Bool("rag_used", response.RAGUsed),
		zap.Int("latency_ms", response.LatencyMS),
	)

	return response
}

// History returns the most recent answered questions, newest first.
func (e *Engine) History(limit int) ([]models.AskRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return e.store.RecentHistory(limit)
}

func formatRows(rows [][]string) string {
	if len(rows) == 0 {
		return "(no rows returned)"
	}

	var builder strings.Builder
	for i, row := range rows {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString("(")
		builder.WriteString(strings.Join(row, ", "))
		builder.WriteString(")")
	}
	return builder.String()
}
