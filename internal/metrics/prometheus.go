package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	QuestionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "afcon_chat_questions_total",
			Help: "Questions processed, by routing tool and outcome",
		},
		[]string{"tool", "status"},
	)

	QuestionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "afcon_chat_question_duration_seconds",
			Help:    "End-to-end question processing duration",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"tool"},
	)

	RouterFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "afcon_chat_router_fallbacks_total",
			Help: "Routing calls that fell back to plain semantic search",
		},
	)

	SynthesisFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "afcon_chat_synthesis_failures_total",
			Help: "Answer synthesis calls that produced no answer",
		},
	)

	SQLQueryErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "afcon_chat_sql_query_errors_total",
			Help: "Routed SQL queries that failed to execute",
		},
	)

	RetrievedDocuments = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "afcon_chat_retrieved_documents",
			Help:    "Semantic documents retrieved per question",
			Buckets: []float64{0, 1, 5, 10, 25, 50},
		},
	)
)

func Init() {
	prometheus.MustRegister(QuestionsTotal)
	prometheus.MustRegister(QuestionDuration)
	prometheus.MustRegister(RouterFallbacks)
	prometheus.MustRegister(SynthesisFailures)
	prometheus.MustRegister(SQLQueryErrors)
	prometheus.MustRegister(RetrievedDocuments)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
