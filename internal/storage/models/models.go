package models

import "time"

// Match is one row of the matches relation built offline from the historical
// results dataset.
type Match struct {
	Date       string
	HomeTeam   string
	AwayTeam   string
	HomeScore  int
	AwayScore  int
	Tournament string
	Country    string
}

// AskRecord captures one answered question with its routing provenance.
type AskRecord struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	ToolUsed  string    `json:"tool_used"`
	SQLQuery  string    `json:"sql_query,omitempty"`
	RAGUsed   bool      `json:"rag_used"`
	LatencyMS int       `json:"latency_ms"`
	CreatedAt time.Time `json:"created_at"`
}
