package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/youssefmaimouni/can2025-chat/pkg/logger"
	"github.com/youssefmaimouni/can2025-chat/pkg/retry"
)

// OpenAIEmbedder generates embeddings through the OpenAI embeddings API.
type OpenAIEmbedder struct {
	client      *openai.Client
	model       string
	dim         int
	batchSize   int
	retryConfig retry.Config
}

func NewOpenAIEmbedder(apiKey, model string, dimension, batchSize int) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, errors.New("embedding API key is not set")
	}
	if batchSize <= 0 {
		batchSize = 100
	}

	retryConfig := retry.DefaultConfig()
	retryConfig.Logger = logger.GetLogger()

	logger.Info("Embedding client initialized",
		zap.String("model", model),
		zap.Int("dimension", dimension),
	)

	return &OpenAIEmbedder{
		client:      openai.NewClient(apiKey),
		model:       model,
		dim:         dimension,
		batchSize:   batchSize,
		retryConfig: retryConfig,
	}, nil
}

// Embed generates the embedding for a single text. This runs on the serving
// path, so it is a single attempt with a short timeout.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, errors.New("cannot embed empty text")
	}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}

	return e.checkVector(resp.Data[0].Embedding)
}

// EmbedBatch generates embeddings for many texts in API-sized batches. This is
// the offline index-build path, so transient failures are retried.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	embeddings := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += e.batchSize {
		end := start + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		err := retry.Do(ctx, e.retryConfig, func() error {
			batchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()

			resp, err := e.client.CreateEmbeddings(batchCtx, openai.EmbeddingRequest{
				Input: batch,
				Model: openai.EmbeddingModel(e.model),
			})
			if err != nil {
				return fmt.Errorf("failed to generate batch embeddings: %w", err)
			}
			if len(resp.Data) != len(batch) {
				return fmt.Errorf("embedding count mismatch: got %d, expected %d", len(resp.Data), len(batch))
			}

			for _, data := range resp.Data {
				vec, err := e.checkVector(data.Embedding)
				if err != nil {
					return err
				}
				embeddings = append(embeddings, vec)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		logger.Debug("Embedding batch generated",
			zap.Int("done", len(embeddings)),
			zap.Int("total", len(texts)),
		)
	}

	return embeddings, nil
}

func (e *OpenAIEmbedder) checkVector(vec []float32) ([]float32, error) {
	if e.dim > 0 && len(vec) != e.dim {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, expected %d", len(vec), e.dim)
	}
	out := make([]float32, len(vec))
	copy(out, vec)
	return out, nil
}

func (e *OpenAIEmbedder) Dimension() int {
	return e.dim
}

func (e *OpenAIEmbedder) ModelInfo() string {
	return "openai-" + e.model
}
