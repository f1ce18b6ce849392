package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/youssefmaimouni/can2025-chat/internal/corpus"
	"github.com/youssefmaimouni/can2025-chat/internal/embedding"
	"github.com/youssefmaimouni/can2025-chat/internal/vector"
	"github.com/youssefmaimouni/can2025-chat/pkg/config"
	appLogger "github.com/youssefmaimouni/can2025-chat/pkg/logger"
)

// The indexer rebuilds the semantic index from scratch: it assembles the
// document corpus from the narrative and structured tournament files, embeds
// every document, and writes the index artifact next to its document list.
// Run it whenever the source data changes; the API server picks up the new
// artifacts on its next start.
func main() {
	wikiPath := flag.String("wiki", "wiki_documents.json", "path to the narrative documents file")
	dataPath := flag.String("data", "can2025_structured.json", "path to the structured tournament data file")
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

	appLogger.Info("Building semantic index",
		zap.String("wiki", *wikiPath),
		zap.String("data", *dataPath),
	)

	// Either source may be absent; the corpus is built from whatever loads.
	narrative, err := corpus.LoadNarrative(*wikiPath)
	if err != nil {
		appLogger.Warn("Narrative documents unavailable", zap.String("path", *wikiPath), zap.Error(err))
	}

	data, err := corpus.LoadTournamentData(*dataPath)
	if err != nil {
		appLogger.Warn("Structured tournament data unavailable", zap.String("path", *dataPath), zap.Error(err))
	}

	documents := corpus.Build(narrative, data)
	if len(documents) == 0 {
		appLogger.Warn("No documents to index, leaving existing artifacts untouched")
		return
	}
	appLogger.Info("Corpus assembled", zap.Int("documents", len(documents)))

	embedder, err := embedding.NewOpenAIEmbedder(
		cfg.Embedding.APIKey,
		cfg.Embedding.Model,
		cfg.Embedding.Dimension,
		cfg.Embedding.BatchSize,
	)
	if err != nil {
		appLogger.Fatal("Failed to create embedding client", zap.Error(err))
	}

	index, err := vector.BuildIndex(context.Background(), documents, embedder)
	if err != nil {
		appLogger.Fatal("Failed to build index", zap.Error(err))
	}

	err = vector.Save(index, embedder.ModelInfo(), documents, cfg.Index.IndexPath, cfg.Index.DocumentsPath)
	if err != nil {
		appLogger.Fatal("Failed to persist index artifacts", zap.Error(err))
	}

	appLogger.Info("Index built",
		zap.Int("documents", len(documents)),
		zap.Int("dimension", index.Dimension),
		zap.String("index", cfg.Index.IndexPath),
		zap.String("documents_file", cfg.Index.DocumentsPath),
	)
}
