package query

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/youssefmaimouni/can2025-chat/internal/agent"
	"github.com/youssefmaimouni/can2025-chat/internal/storage/models"
)

type fakeRouter struct {
	decision agent.Decision
}

func (f *fakeRouter) Decide(context.Context, string) agent.Decision {
	return f.decision
}

type fakeSynth struct {
	answer         string
	lastStructured string
	lastSemantic   string
}

func (f *fakeSynth) Synthesize(_ context.Context, _, structured, semantic string) string {
	f.lastStructured = structured
	f.lastSemantic = semantic
	return f.answer
}

type fakeStore struct {
	rows     [][]string
	queryErr error
	lastSQL  string
	records  []*models.AskRecord
}

func (f *fakeStore) ExecuteQuery(_ context.Context, query string) ([][]string, error) {
	f.lastSQL = query
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.rows, nil
}

func (f *fakeStore) InsertAskRecord(record *models.AskRecord) error {
	f.records = append(f.records, record)
	return nil
}

func (f *fakeStore) RecentHistory(limit int) ([]models.AskRecord, error) {
	out := make([]models.AskRecord, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, *r)
	}
	return out, nil
}

type fakeSearcher struct {
	docs      []string
	err       error
	lastQuery string
	lastK     int
}

func (f *fakeSearcher) Search(_ context.Context, query string, k int) ([]string, error) {
	f.lastQuery = query
	f.lastK = k
	return f.docs, f.err
}

func strPtr(s string) *string { return &s }

func TestAskSQLPath(t *testing.T) {
	store := &fakeStore{rows: [][]string{{"7"}}}
	synth := &fakeSynth{answer: "Egypt scored 7 goals in 2010."}
	searcher := &fakeSearcher{docs: []string{"should not be used"}}
	router := &fakeRouter{decision: agent.Decision{
		Tool:     agent.ToolSQL,
		SQLQuery: strPtr("SELECT SUM(home_score) FROM matches"),
	}}

	engine := NewEngine(router, synth, store, searcher, 25)
	resp := engine.Ask(context.Background(), "How many goals did Egypt score in 2010?")

	if resp.ToolUsed != "SQL" {
		t.Fatalf("tool_used = %q, want SQL", resp.ToolUsed)
	}
	if store.lastSQL != "SELECT SUM(home_score) FROM matches" {
		t.Fatalf("executed query = %q", store.lastSQL)
	}
	if synth.lastStructured != "(7)" {
		t.Fatalf("structured evidence = %q, want (7)", synth.lastStructured)
	}
	if searcher.lastQuery != "" {
		t.Fatal("SQL-only decision must not trigger semantic search")
	}
	if resp.RAGUsed {
		t.Fatal("rag_used must be false when no semantic evidence was retrieved")
	}
	if resp.Answer != "Egypt scored 7 goals in 2010." {
		t.Fatalf("answer = %q", resp.Answer)
	}
}

func TestAskRAGPath(t *testing.T) {
	store := &fakeStore{}
	synth := &fakeSynth{answer: "Avram Grant."}
	searcher := &fakeSearcher{docs: []string{"Coach of Zambia in Group A: Avram Grant", "other doc"}}
	router := &fakeRouter{decision: agent.Decision{
		Tool:     agent.ToolRAG,
		RAGQuery: strPtr("coach of Zambia"),
	}}

	engine := NewEngine(router, synth, store, searcher, 25)
	resp := engine.Ask(context.Background(), "Who is the coach of Zambia?")

	if searcher.lastQuery != "coach of Zambia" || searcher.lastK != 25 {
		t.Fatalf("search called with (%q, %d)", searcher.lastQuery, searcher.lastK)
	}
	if store.lastSQL != "" {
		t.Fatal("RAG-only decision must not execute SQL")
	}
	if !strings.Contains(synth.lastSemantic, "Avram Grant") {
		t.Fatalf("semantic evidence = %q", synth.lastSemantic)
	}
	if !resp.RAGUsed {
		t.Fatal("rag_used must be true when documents were retrieved")
	}
}

func TestAskBothPath(t *testing.T) {
	store := &fakeStore{rows: [][]string{{"Egypt", "3"}, {"Egypt", "2"}}}
	synth := &fakeSynth{answer: "combined"}
	searcher := &fakeSearcher{docs: []string{"Egypt won the 2010 final."}}
	router := &fakeRouter{decision: agent.Decision{
		Tool:     agent.ToolBoth,
		SQLQuery: strPtr("SELECT home_team, home_score FROM matches"),
		RAGQuery: strPtr("Egypt 2010"),
	}}

	engine := NewEngine(router, synth, store, searcher, 25)
	resp := engine.Ask(context.Background(), "Tell me about Egypt in 2010")

	if synth.lastStructured != "(Egypt, 3)\n(Egypt, 2)" {
		t.Fatalf("structured evidence = %q", synth.lastStructured)
	}
	if synth.lastSemantic == "" {
		t.Fatal("semantic evidence missing")
	}
	if !resp.RAGUsed || resp.ToolUsed != "BOTH" {
		t.Fatalf("provenance wrong: tool=%q rag_used=%v", resp.ToolUsed, resp.RAGUsed)
	}
}

func TestAskSQLErrorBecomesEvidence(t *testing.T) {
	store := &fakeStore{queryErr: errors.New("no such table: matchess")}
	synth := &fakeSynth{answer: "The database query failed."}
	router := &fakeRouter{decision: agent.Decision{
		Tool:     agent.ToolSQL,
		SQLQuery: strPtr("SELECT * FROM matchess"),
	}}

	engine := NewEngine(router, synth, store, &fakeSearcher{}, 25)
	resp := engine.Ask(context.Background(), "how many matches?")

	if !strings.HasPrefix(synth.lastStructured, "SQL Error:") {
		t.Fatalf("SQL failure should be passed as evidence, got %q", synth.lastStructured)
	}
	if resp.Answer == "" {
		t.Fatal("a SQL failure must not prevent an answer attempt")
	}
}

func TestAskRetrievalFailureDegradesToNoEvidence(t *testing.T) {
	synth := &fakeSynth{answer: ""}
	searcher := &fakeSearcher{err: errors.New("embed failed")}
	router := &fakeRouter{decision: agent.Decision{
		Tool:     agent.ToolRAG,
		RAGQuery: strPtr("anything"),
	}}

	engine := NewEngine(router, synth, &fakeStore{}, searcher, 25)
	resp := engine.Ask(context.Background(), "anything")

	if resp.RAGUsed {
		t.Fatal("rag_used must be false when retrieval failed")
	}
	if synth.lastSemantic != "" {
		t.Fatalf("semantic evidence should be empty, got %q", synth.lastSemantic)
	}
	if resp.Answer != "" {
		t.Fatalf("answer = %q, want empty", resp.Answer)
	}
}

func TestAskRecordsHistory(t *testing.T) {
	store := &fakeStore{}
	router := &fakeRouter{decision: agent.Decision{
		Tool:     agent.ToolRAG,
		RAGQuery: strPtr("stadiums"),
	}}
	engine := NewEngine(router, &fakeSynth{answer: "answer"}, store, &fakeSearcher{docs: []string{"doc"}}, 25)

	engine.Ask(context.Background(), "Tell me about the Rabat stadium")

	if len(store.records) != 1 {
		t.Fatalf("got %d history records, want 1", len(store.records))
	}
	record := store.records[0]
	if record.Question != "Tell me about the Rabat stadium" || record.ToolUsed != "RAG" || !record.RAGUsed {
		t.Fatalf("history record wrong: %+v", record)
	}
	if record.ID == "" {
		t.Fatal("history record should carry the question id")
	}
}

func TestFormatRows(t *testing.T) {
	if got := formatRows(nil); got != "(no rows returned)" {
		t.Fatalf("formatRows(nil) = %q", got)
	}
	if got := formatRows([][]string{{"a", "b"}}); got != "(a, b)" {
		t.Fatalf("formatRows = %q", got)
	}
}
