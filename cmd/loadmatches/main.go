package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/youssefmaimouni/can2025-chat/internal/storage/sqlite"
	"github.com/youssefmaimouni/can2025-chat/pkg/config"
	appLogger "github.com/youssefmaimouni/can2025-chat/pkg/logger"
)

// loadmatches imports the historical match results CSV into sqlite,
// replacing the matches table wholesale.
func main() {
	csvPath := flag.String("csv", "results.csv", "path to the match results CSV file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	store := sqlite.NewStore(cfg.SQLite.Path)

	count, err := store.ImportMatchesCSV(*csvPath)
	if err != nil {
		appLogger.Fatal("Failed to import matches",
			zap.String("csv", *csvPath),
			zap.Error(err),
		)
	}

	appLogger.Info("Matches imported",
		zap.String("csv", *csvPath),
		zap.String("database", cfg.SQLite.Path),
		zap.Int("rows", count),
	)
}
