package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/youssefmaimouni/can2025-chat/internal/storage/models"
)

const sampleCSV = `date,home_team,away_team,home_score,away_score,tournament,country
2010-01-12,Egypt,Nigeria,3,1,African Cup of Nations,Angola
2010-01-16,Egypt,Mozambique,2,0,African Cup of Nations,Angola
2010-01-20,Benin,Egypt,0,2,African Cup of Nations,Angola
2021-11-16,Egypt,Gabon,2,1,FIFA World Cup qualification,Egypt
`

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store := NewStore(filepath.Join(t.TempDir(), "matches.db"))
	if err := store.InitSchema(); err != nil {
		t.Fatalf("InitSchema: %v", err)
	}
	return store
}

func importSample(t *testing.T, store *Store) int {
	t.Helper()

	csvPath := filepath.Join(t.TempDir(), "results.csv")
	if err := os.WriteFile(csvPath, []byte(sampleCSV), 0644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	n, err := store.ImportMatchesCSV(csvPath)
	if err != nil {
		t.Fatalf("ImportMatchesCSV: %v", err)
	}
	return n
}

func TestImportMatchesCSV(t *testing.T) {
	store := newTestStore(t)

	if n := importSample(t, store); n != 4 {
		t.Fatalf("imported %d rows, want 4", n)
	}

	rows, err := store.ExecuteQuery(context.Background(), "SELECT COUNT(*) FROM matches")
	if err != nil {
		t.Fatalf("ExecuteQuery: %v", err)
	}
	if len(rows) != 1 || rows[0][0] != "4" {
		t.Fatalf("got %v, want a single row with count 4", rows)
	}
}

func TestImportMatchesCSVReplacesTable(t *testing.T) {
	store := newTestStore(t)

	importSample(t, store)
	importSample(t, store)

	rows, err := store.ExecuteQuery(context.Background(), "SELECT COUNT(*) FROM matches")
	if err != nil {
		t.Fatalf("ExecuteQuery: %v", err)
	}
	if rows[0][0] != "4" {
		t.Fatalf("re-import should replace the table, got count %s", rows[0][0])
	}
}

func TestImportMatchesCSVMissingColumn(t *testing.T) {
	store := newTestStore(t)

	csvPath := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(csvPath, []byte("date,home_team\n2010-01-12,Egypt\n"), 0644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	if _, err := store.ImportMatchesCSV(csvPath); err == nil {
		t.Fatal("expected error for CSV missing required columns")
	}
}

func TestExecuteQueryAggregate(t *testing.T) {
	store := newTestStore(t)
	importSample(t, store)

	query := `
		SELECT SUM(CASE WHEN home_team = 'Egypt' THEN home_score ELSE away_score END)
		FROM matches
		WHERE (home_team = 'Egypt' OR away_team = 'Egypt')
		  AND tournament LIKE '%Cup of Nations%'
		  AND date LIKE '2010%'
	`

	rows, err := store.ExecuteQuery(context.Background(), query)
	if err != nil {
		t.Fatalf("ExecuteQuery: %v", err)
	}
	if len(rows) != 1 || rows[0][0] != "7" {
		t.Fatalf("got %v, want 7 goals for Egypt in 2010", rows)
	}
}

func TestExecuteQueryErrorIsReturnedNotRaised(t *testing.T) {
	store := newTestStore(t)

	_, err := store.ExecuteQuery(context.Background(), "SELECT * FROM no_such_table")
	if err == nil {
		t.Fatal("expected an error for a missing table")
	}
	if !strings.Contains(err.Error(), "no_such_table") {
		t.Fatalf("error should describe the failure, got: %v", err)
	}
}

func TestAskHistoryRoundTrip(t *testing.T) {
	store := newTestStore(t)

	records := []models.AskRecord{
		{
			ID:        "q1",
			Question:  "Who is the coach of Zambia?",
			Answer:    "Avram Grant",
			ToolUsed:  "RAG",
			RAGUsed:   true,
			LatencyMS: 812,
			CreatedAt: time.Unix(1700000000, 0),
		},
		{
			ID:        "q2",
			Question:  "How many goals did Egypt score in 2010?",
			Answer:    "7",
			ToolUsed:  "SQL",
			SQLQuery:  "SELECT 1",
			LatencyMS: 432,
			CreatedAt: time.Unix(1700000100, 0),
		},
	}

	for i := range records {
		if err := store.InsertAskRecord(&records[i]); err != nil {
			t.Fatalf("InsertAskRecord: %v", err)
		}
	}

	history, err := store.RecentHistory(10)
	if err != nil {
		t.Fatalf("RecentHistory: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("got %d records, want 2", len(history))
	}
	if history[0].ID != "q2" {
		t.Fatalf("history should be newest-first, got %q first", history[0].ID)
	}
	if !history[1].RAGUsed || history[0].RAGUsed {
		t.Fatal("rag_used flag not preserved")
	}
	if history[0].SQLQuery != "SELECT 1" {
		t.Fatalf("sql_query not preserved, got %q", history[0].SQLQuery)
	}
}
