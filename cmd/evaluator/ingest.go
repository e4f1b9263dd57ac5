package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/resume-evaluator/internal/app"
	"alfredoptarigan/resume-evaluator/internal/services"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load evaluation rubric documents into the vector store",
	RunE:  runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().String("dir", "./rubrics", "directory with rubric documents (pdf, txt, md)")
}

func runIngest(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	if !cfg.RAGEnabled() {
		return errors.New("QDRANT_URL is not set, nothing to ingest into")
	}

	gemini, err := services.NewGeminiService(ctx, cfg.Gemini, cfg.Worker.RetryInitialDelay, log)
	if err != nil {
		return fmt.Errorf("failed to initialize Gemini AI: %w", err)
	}

	qdrant, err := app.NewQdrant(ctx, cfg, log)
	if err != nil {
		return err
	}

	ingester := services.NewRubricIngester(gemini, qdrant, services.NewPDFParserService(), services.NewTextChunker(), log)

	dir, _ := cmd.Flags().GetString("dir")
	results, err := ingester.IngestDir(ctx, dir)
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			log.Error("rubric ingestion failed", zap.String("path", r.Path), zap.Error(r.Err))
			continue
		}
		log.Info("rubric ingested", zap.String("path", r.Path), zap.Int("chunks", r.Chunks), zap.Int("stored", r.Stored))
	}

	log.Info("ingestion summary", zap.Int("documents", len(results)), zap.Int("failed", failed))

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed to ingest", failed, len(results))
	}
	return nil
}
