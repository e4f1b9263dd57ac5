package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// RubricRetriever supplies evaluation guidelines relevant to a job title.
type RubricRetriever interface {
	Retrieve(ctx context.Context, jobTitle string) (string, error)
}

type rubricRetriever struct {
	gemini  GeminiService
	qdrant  QdrantService
	prompts *PromptBuilder
	topK    int
	log     *zap.Logger
}

func NewRubricRetriever(gemini GeminiService, qdrant QdrantService, prompts *PromptBuilder, topK int, log *zap.Logger) RubricRetriever {
	if topK <= 0 {
		topK = 3
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &rubricRetriever{
		gemini:  gemini,
		qdrant:  qdrant,
		prompts: prompts,
		topK:    topK,
		log:     log,
	}
}

func (r *rubricRetriever) Retrieve(ctx context.Context, jobTitle string) (string, error) {
	query := r.prompts.BuildRetrievalQuery(jobTitle)

	embedding, err := r.gemini.GenerateEmbedding(ctx, query)
	if err != nil {
		return "", fmt.Errorf("failed to embed rubric query: %w", err)
	}

	results, err := r.qdrant.SearchSimilar(ctx, embedding, DocTypeRubric, r.topK)
	if err != nil {
		return "", fmt.Errorf("failed to search rubric: %w", err)
	}

	r.log.Debug("rubric retrieved", zap.Int("chunks", len(results)))

	return FormatRAGContext(results), nil
}
