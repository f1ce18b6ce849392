package vector

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/youssefmaimouni/can2025-chat/pkg/logger"
	"github.com/youssefmaimouni/can2025-chat/pkg/utils"
)

// artifact is the on-disk form of an index. It carries the embedding model id
// and a content hash of the document list so a mismatched index/documents pair
// is refused at load time instead of silently corrupting lookups.
type artifact struct {
	ModelInfo  string
	Dimension  int
	CorpusHash string
	Vectors    [][]float32
}

// Save persists the index and the verbatim document list side by side.
func Save(index *Index, modelInfo string, documents []string, indexPath, documentsPath string) error {
	if index.Len() != len(documents) {
		return fmt.Errorf("index has %d vectors for %d documents", index.Len(), len(documents))
	}

	docsData, err := json.MarshalIndent(documents, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal documents: %w", err)
	}
	if err := os.WriteFile(documentsPath, docsData, 0644); err != nil {
		return fmt.Errorf("failed to write documents file: %w", err)
	}

	file, err := os.Create(indexPath)
	if err != nil {
		return fmt.Errorf("failed to create index file: %w", err)
	}
	defer file.Close()

	art := artifact{
		ModelInfo:  modelInfo,
		Dimension:  index.Dimension,
		CorpusHash: utils.HashStrings(documents),
		Vectors:    index.Vectors,
	}
	if err := gob.NewEncoder(file).Encode(&art); err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}

	logger.Info("Index artifacts saved",
		zap.String("index", indexPath),
		zap.String("documents", documentsPath),
		zap.Int("documents_count", len(documents)),
	)
	return nil
}

// Load reads a persisted index/documents pair and verifies they belong
// together. Any mismatch is an error; the caller decides whether to degrade.
func Load(indexPath, documentsPath string) (*Index, []string, string, error) {
	docsData, err := os.ReadFile(documentsPath)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to read documents file: %w", err)
	}

	var documents []string
	if err := json.Unmarshal(docsData, &documents); err != nil {
		return nil, nil, "", fmt.Errorf("failed to parse documents file: %w", err)
	}

	file, err := os.Open(indexPath)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to open index file: %w", err)
	}
	defer file.Close()

	var art artifact
	if err := gob.NewDecoder(file).Decode(&art); err != nil {
		return nil, nil, "", fmt.Errorf("failed to decode index: %w", err)
	}

	if len(art.Vectors) != len(documents) {
		return nil, nil, "", fmt.Errorf("index has %d vectors but document list has %d entries", len(art.Vectors), len(documents))
	}
	if hash := utils.HashStrings(documents); hash != art.CorpusHash {
		return nil, nil, "", fmt.Errorf("document list does not match the corpus the index was built from")
	}

	logger.Info("Index loaded",
		zap.String("model", art.ModelInfo),
		zap.Int("documents", len(documents)),
		zap.Int("dimension", art.Dimension),
	)

	return &Index{Dimension: art.Dimension, Vectors: art.Vectors}, documents, art.ModelInfo, nil
}
