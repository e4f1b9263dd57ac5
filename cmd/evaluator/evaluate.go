package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/resume-evaluator/internal/app"
	"alfredoptarigan/resume-evaluator/internal/logger"
	"alfredoptarigan/resume-evaluator/internal/services"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate one resume synchronously and print the candidate record",
	RunE:  runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().String("resume-key", "", "object key of an uploaded resume")
	evaluateCmd.Flags().String("resume-file", "", "local resume file to upload before evaluating")
	evaluateCmd.Flags().String("job-key", "", "object key of a job description. Default is the latest one under jobs/")
	evaluateCmd.Flags().String("job-file", "", "local job description file to upload before evaluating")
	evaluateCmd.Flags().String("job-title", "", "job title the candidate applies for")

	evaluateCmd.MarkFlagsOneRequired("resume-key", "resume-file")
	evaluateCmd.MarkFlagsMutuallyExclusive("resume-key", "resume-file")
	evaluateCmd.MarkFlagsMutuallyExclusive("job-key", "job-file")
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	pipeline, err := app.NewPipeline(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer pipeline.Close() //nolint:errcheck

	flags := cmd.Flags()
	resumeKey, _ := flags.GetString("resume-key")
	jobKey, _ := flags.GetString("job-key")
	jobTitle, _ := flags.GetString("job-title")

	if file, _ := flags.GetString("resume-file"); file != "" {
		if resumeKey, err = upload(ctx, pipeline.Storage, file, services.PrefixResumes); err != nil {
			return err
		}
		log.Info("resume uploaded", zap.String(logger.FieldObjectKey, resumeKey))
	}
	if file, _ := flags.GetString("job-file"); file != "" {
		if jobKey, err = upload(ctx, pipeline.Storage, file, services.PrefixJobs); err != nil {
			return err
		}
		log.Info("job description uploaded", zap.String(logger.FieldObjectKey, jobKey))
	}

	// No worker: the run happens in this process.
	intake := services.NewIntakeService(pipeline.Repo, nil, log)
	record, err := intake.Submit(ctx, resumeKey, jobKey, jobTitle)
	if err != nil {
		return err
	}

	runErr := pipeline.Evaluator.EvaluateCandidate(ctx, record.ID)
	if errors.Is(runErr, context.Canceled) {
		return runErr
	}

	stored, err := pipeline.Repo.FindByID(context.WithoutCancel(ctx), record.ID)
	if err != nil {
		return errors.Join(runErr, err)
	}

	out, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding candidate record: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	return runErr
}

func upload(ctx context.Context, storage services.StorageService, file, prefix string) (string, error) {
	key, err := services.ObjectKey(prefix, uuid.New().String(), filepath.Base(file))
	if err != nil {
		return "", err
	}

	f, err := os.Open(file)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", file, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", file, err)
	}

	if err := storage.PutObject(ctx, key, f, info.Size()); err != nil {
		return "", err
	}
	return key, nil
}
