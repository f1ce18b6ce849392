package sqlite

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/youssefmaimouni/can2025-chat/internal/storage/models"
	"github.com/youssefmaimouni/can2025-chat/pkg/logger"
)

// matchColumns is the fixed schema of the matches relation. The importer maps
// CSV headers onto these names; everything else about the table is opaque to
// the query path, which executes caller-supplied SQL verbatim.
var matchColumns = []string{
	"date", "home_team", "away_team", "home_score", "away_score", "tournament", "country",
}

// Store runs queries against a SQLite database file. Every call opens its own
// connection and releases it before returning; nothing is held across calls.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) open() (*sql.DB, error) {
	db, err := sql.Open("sqlite3", s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// InitSchema creates the ask_history table. The matches table is created by
// the CSV importer, not here.
func (s *Store) InitSchema() error {
	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()

	schema := `
	CREATE TABLE IF NOT EXISTS ask_history (
		id TEXT PRIMARY KEY,
		question TEXT NOT NULL,
		answer TEXT,
		tool_used TEXT,
		sql_query TEXT,
		rag_used INTEGER DEFAULT 0,
		latency_ms INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_ask_history_created ON ask_history(created_at);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized", zap.String("path", s.path))
	return nil
}

// ExecuteQuery runs a caller-supplied SQL string against the match database
// and returns every row rendered as strings. The query text comes from the
// routing model, not the end user, and is executed as-is; failures come back
// as an error value for the caller to fold into evidence.
func (s *Store) ExecuteQuery(ctx context.Context, query string) ([][]string, error) {
	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var results [][]string
	for rows.Next() {
		values := make([]sql.NullString, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}

		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make([]string, len(columns))
		for i, v := range values {
			if v.Valid {
				row[i] = v.String
			} else {
				row[i] = "NULL"
			}
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}

	return results, nil
}

// ImportMatchesCSV rebuilds the matches table from a results CSV. Re-running
// the import replaces the table wholesale.
func (s *Store) ImportMatchesCSV(csvPath string) (int, error) {
	file, err := os.Open(csvPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open CSV: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		colIndex[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range matchColumns {
		if _, ok := colIndex[name]; !ok {
			return 0, fmt.Errorf("CSV is missing required column %q", name)
		}
	}

	db, err := s.open()
	if err != nil {
		return 0, err
	}
	defer db.Close()

	if _, err := db.Exec(`DROP TABLE IF EXISTS matches`); err != nil {
		return 0, fmt.Errorf("failed to drop matches table: %w", err)
	}

	createStmt := `
	CREATE TABLE matches (
		date TEXT,
		home_team TEXT,
		away_team TEXT,
		home_score INTEGER,
		away_score INTEGER,
		tournament TEXT,
		country TEXT
	)`
	if _, err := db.Exec(createStmt); err != nil {
		return 0, fmt.Errorf("failed to create matches table: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO matches (date, home_team, away_team, home_score, away_score, tournament, country) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("failed to read CSV record: %w", err)
		}

		match, ok := parseMatch(record, colIndex)
		if !ok {
			continue
		}

		_, err = stmt.Exec(
			match.Date,
			match.HomeTeam,
			match.AwayTeam,
			match.HomeScore,
			match.AwayScore,
			match.Tournament,
			match.Country,
		)
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("failed to insert match: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}

	logger.Info("Matches imported",
		zap.String("csv", csvPath),
		zap.Int("rows", inserted),
	)

	return inserted, nil
}

func parseMatch(record []string, colIndex map[string]int) (models.Match, bool) {
	field := func(name string) string {
		idx := colIndex[name]
		if idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	match := models.Match{
		Date:       field("date"),
		HomeTeam:   field("home_team"),
		AwayTeam:   field("away_team"),
		Tournament: field("tournament"),
		Country:    field("country"),
	}

	if match.Date == "" || match.HomeTeam == "" || match.AwayTeam == "" {
		return models.Match{}, false
	}

	var err error
	if match.HomeScore, err = strconv.Atoi(field("home_score")); err != nil {
		return models.Match{}, false
	}
	if match.AwayScore, err = strconv.Atoi(field("away_score")); err != nil {
		return models.Match{}, false
	}

	return match, true
}

func (s *Store) InsertAskRecord(record *models.AskRecord) error {
	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()

	query := `
		INSERT INTO ask_history (id, question, answer, tool_used, sql_query, rag_used, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	ragUsed := 0
	if record.RAGUsed {
		ragUsed = 1
	}

	_, err = db.Exec(
		query,
		record.ID,
		record.Question,
		record.Answer,
		record.ToolUsed,
		record.SQLQuery,
		ragUsed,
		record.LatencyMS,
		record.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert ask record: %w", err)
	}

	logger.Debug("Question recorded",
		zap.String("id", record.ID),
		zap.String("tool_used", record.ToolUsed),
	)
	return nil
}

func (s *Store) RecentHistory(limit int) ([]models.AskRecord, error) {
	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	query := `
		SELECT id, question, answer, tool_used, sql_query, rag_used, latency_ms, created_at
		FROM ask_history
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get ask history: %w", err)
	}
	defer rows.Close()

	var records []models.AskRecord
	for rows.Next() {
		var r models.AskRecord
		var ragUsed int
		var createdAt int64

		err := rows.Scan(&r.ID, &r.Question, &r.Answer, &r.ToolUsed, &r.SQLQuery, &ragUsed, &r.LatencyMS, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		r.RAGUsed = ragUsed != 0
		r.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, r)
	}

	return records, rows.Err()
}
