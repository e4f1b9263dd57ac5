package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"alfredoptarigan/resume-evaluator/internal/assembler"
	"alfredoptarigan/resume-evaluator/internal/config"
	"alfredoptarigan/resume-evaluator/internal/logger"
	"alfredoptarigan/resume-evaluator/internal/repositories"
	"alfredoptarigan/resume-evaluator/internal/services"
)

// Pipeline is the service graph shared by the API server and the CLI.
type Pipeline struct {
	DB        *gorm.DB
	Repo      repositories.CandidateRepository
	Storage   services.StorageService
	Evaluator services.EvaluatorService
}

// NewPipeline connects to the database, object storage and the model, and
// wires the evaluator. Rubric retrieval is only enabled when Qdrant is
// configured.
func NewPipeline(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Pipeline, error) {
	log = logger.WithFields(log)

	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	repo := repositories.NewCandidateRepository(db)

	pdfParser := services.NewPDFParserService()
	storage, err := services.NewStorageService(cfg.Storage, pdfParser)
	if err != nil {
		return nil, err
	}
	if err := storage.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to prepare bucket: %w", err)
	}
	log.Info("object storage ready", zap.String("bucket", cfg.Storage.Bucket))

	gemini, err := services.NewGeminiService(ctx, cfg.Gemini, cfg.Worker.RetryInitialDelay, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini AI: %w", err)
	}

	prompts := services.NewPromptBuilder(cfg.Evaluation.MinRating, cfg.Evaluation.MaxRating)

	var rubric services.RubricRetriever
	if cfg.RAGEnabled() {
		qdrant, err := NewQdrant(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		rubric = services.NewRubricRetriever(gemini, qdrant, prompts, cfg.Qdrant.TopK, log)
		log.Info("rubric retrieval enabled", zap.String("collection", cfg.Qdrant.Collection))
	} else {
		log.Info("rubric retrieval disabled, QDRANT_URL is not set")
	}

	asm, err := assembler.New(assembler.Config{
		MinRating: cfg.Evaluation.MinRating,
		MaxRating: cfg.Evaluation.MaxRating,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build assembler: %w", err)
	}

	evaluator := services.NewEvaluatorService(
		repo,
		storage,
		gemini,
		rubric,
		asm,
		prompts,
		services.EvaluatorOptions{
			StageTimeout: cfg.Evaluation.StageTimeout,
			Temperature:  cfg.Evaluation.Temperature,
			MaxRetries:   cfg.Worker.RetryMaxAttempts,
		},
		log,
	)

	return &Pipeline{
		DB:        db,
		Repo:      repo,
		Storage:   storage,
		Evaluator: evaluator,
	}, nil
}

// NewQdrant connects to Qdrant and makes sure the rubric collection exists.
func NewQdrant(ctx context.Context, cfg *config.Config, log *zap.Logger) (services.QdrantService, error) {
	qdrant, err := services.NewQdrantService(cfg.Qdrant, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Qdrant: %w", err)
	}
	if err := qdrant.InitCollection(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize Qdrant collection: %w", err)
	}
	return qdrant, nil
}

// Close releases the database connection pool.
func (p *Pipeline) Close() error {
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
