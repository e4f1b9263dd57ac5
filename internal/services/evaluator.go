package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"alfredoptarigan/resume-evaluator/internal/assembler"
	"alfredoptarigan/resume-evaluator/internal/logger"
	"alfredoptarigan/resume-evaluator/internal/models"
	"alfredoptarigan/resume-evaluator/internal/repositories"
)

// ErrPersistence wraps failures to store an assembled record.
var ErrPersistence = errors.New("persistence failure")

type EvaluatorService interface {
	EvaluateCandidate(ctx context.Context, candidateID string) error
}

type EvaluatorOptions struct {
	StageTimeout time.Duration
	Temperature  float32
	MaxRetries   int
}

type evaluatorService struct {
	repo      repositories.CandidateRepository
	storage   StorageService
	gemini    GeminiService
	rubric    RubricRetriever
	assembler *assembler.Assembler
	prompts   *PromptBuilder
	opts      EvaluatorOptions
	log       *zap.Logger
}

// NewEvaluatorService wires the pipeline. rubric may be nil when retrieval is
// disabled.
func NewEvaluatorService(
	repo repositories.CandidateRepository,
	storage StorageService,
	gemini GeminiService,
	rubric RubricRetriever,
	asm *assembler.Assembler,
	prompts *PromptBuilder,
	opts EvaluatorOptions,
	log *zap.Logger,
) EvaluatorService {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	return &evaluatorService{
		repo:      repo,
		storage:   storage,
		gemini:    gemini,
		rubric:    rubric,
		assembler: asm,
		prompts:   prompts,
		opts:      opts,
		log:       logger.WithFields(log),
	}
}

// stageInput carries what every prompt may need.
type stageInput struct {
	resumeText string
	jobText    string
	jobTitle   string
	rubric     string
}

func (e *evaluatorService) EvaluateCandidate(ctx context.Context, candidateID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	record, err := e.repo.FindByID(ctx, candidateID)
	if err != nil {
		return fmt.Errorf("failed to load candidate: %w", err)
	}

	log := logger.ForCandidate(e.log, record.ID, record.ResumeKey)

	// Claiming the record first keeps a job enqueued twice from running twice.
	if err := e.repo.UpdateStatus(ctx, record.ID, models.StatusProcessing); err != nil {
		if errors.Is(err, repositories.ErrInvalidTransition) {
			log.Info("candidate already picked up, skipping", zap.String("status", string(record.Status)))
			return nil
		}
		return fmt.Errorf("failed to update status: %w", err)
	}

	log.Info("evaluation started")
	started := time.Now()

	resumeText, err := e.storage.ReadText(ctx, record.ResumeKey)
	if err != nil {
		e.markFailed(ctx, log, record.ID, fmt.Sprintf("failed to read resume: %v", err))
		return fmt.Errorf("failed to read resume: %w", err)
	}

	jobTitle := ""
	if record.JobTitle != nil {
		jobTitle = *record.JobTitle
	}

	in := stageInput{
		resumeText: resumeText,
		jobText:    e.resolveJobDescription(ctx, log, record.JobKey),
		jobTitle:   jobTitle,
		rubric:     e.retrieveRubric(ctx, log, jobTitle),
	}

	outputs, err := e.runStages(ctx, log, in)
	if err != nil {
		log.Warn("evaluation aborted", zap.Error(err))
		return err
	}

	assembled, err := e.assembler.Assemble(record.ID, outputs, record.ResumeKey, jobTitle)
	if err != nil {
		return fmt.Errorf("failed to assemble candidate: %w", err)
	}
	assembled.JobKey = record.JobKey
	assembled.CreatedAt = record.CreatedAt

	if err := e.repo.Save(ctx, assembled); err != nil {
		e.markFailed(ctx, log, record.ID, fmt.Sprintf("failed to save evaluation: %v", err))
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	log.Info("evaluation completed",
		zap.Bool("partial", assembled.Partial),
		zap.Strings("warnings", assembled.Warnings),
		zap.Duration("elapsed", time.Since(started)),
	)

	return nil
}

// runStages produces one structured value per stage. Resume parsing and job
// analysis are independent and run concurrently; the rest build on them.
func (e *evaluatorService) runStages(ctx context.Context, log *zap.Logger, in stageInput) (map[assembler.Stage]assembler.StructuredValue, error) {
	outputs := make(map[assembler.Stage]assembler.StructuredValue, len(assembler.Stages))

	var parsed, job assembler.StructuredValue
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		parsed = e.runStage(gctx, log, assembler.StageResumeParsing, e.prompts.BuildResumeParsingPrompt(in.resumeText))
		return gctx.Err()
	})
	g.Go(func() error {
		job = e.runStage(gctx, log, assembler.StageJobAnalysis, e.prompts.BuildJobAnalysisPrompt(in.jobText, in.jobTitle))
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	outputs[assembler.StageResumeParsing] = parsed
	outputs[assembler.StageJobAnalysis] = job

	steps := []struct {
		stage  assembler.Stage
		prompt func() string
	}{
		{assembler.StageResumeEvaluation, func() string {
			return e.prompts.BuildEvaluationPrompt(toJSON(parsed), toJSON(job), in.jobTitle, in.rubric)
		}},
		{assembler.StageGapAnalysis, func() string {
			return e.prompts.BuildGapAnalysisPrompt(in.resumeText, toJSON(job), toJSON(outputs[assembler.StageResumeEvaluation]))
		}},
		{assembler.StageCandidateRating, func() string {
			return e.prompts.BuildRatingPrompt(in.jobText, in.resumeText,
				toJSON(outputs[assembler.StageResumeEvaluation]), toJSON(outputs[assembler.StageGapAnalysis]), in.rubric)
		}},
		{assembler.StageInterviewNotes, func() string {
			return e.prompts.BuildInterviewNotesPrompt(in.jobText, in.resumeText,
				toJSON(outputs[assembler.StageResumeEvaluation]), toJSON(outputs[assembler.StageGapAnalysis]),
				toJSON(outputs[assembler.StageCandidateRating]))
		}},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		outputs[step.stage] = e.runStage(ctx, log, step.stage, step.prompt())
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return outputs, nil
}

// runStage asks the model for one stage. A model error or timeout is absorbed
// as an empty answer, which extracts to the stage's parse-failure default.
func (e *evaluatorService) runStage(ctx context.Context, log *zap.Logger, stage assembler.Stage, prompt string) assembler.StructuredValue {
	log = log.With(zap.String(logger.FieldStage, string(stage)))

	stageCtx := ctx
	if e.opts.StageTimeout > 0 {
		var cancel context.CancelFunc
		stageCtx, cancel = context.WithTimeout(ctx, e.opts.StageTimeout)
		defer cancel()
	}

	raw, err := e.gemini.GenerateTextWithRetry(stageCtx, prompt, e.opts.Temperature, e.opts.MaxRetries)
	if err != nil {
		log.Warn("stage generation failed", zap.Error(err))
		raw = ""
	}

	value := e.assembler.Extract(raw, stage.Kind())
	switch {
	case value.ParseFailed:
		log.Warn("stage answer could not be parsed", zap.String("response", logger.TruncateForLog(raw, previewLimit)))
	case len(value.Issues) > 0:
		log.Debug("stage answer deviates from schema", zap.Strings("issues", value.Issues))
	default:
		log.Debug("stage completed")
	}

	return value
}

// resolveJobDescription prefers the record's job key, then the newest job
// description in the store, then a fixed placeholder.
func (e *evaluatorService) resolveJobDescription(ctx context.Context, log *zap.Logger, jobKey *string) string {
	if jobKey != nil && *jobKey != "" {
		text, err := e.storage.ReadText(ctx, *jobKey)
		if err == nil {
			return text
		}
		log.Warn("failed to read job description", zap.String("job_key", *jobKey), zap.Error(err))
	}

	latest, err := e.storage.LatestKey(ctx, PrefixJobs)
	if err != nil {
		log.Warn("failed to look up job descriptions", zap.Error(err))
		return NoJobDescription
	}
	if latest == "" {
		log.Info("no job description found, evaluating general qualifications")
		return NoJobDescription
	}

	text, err := e.storage.ReadText(ctx, latest)
	if err != nil {
		log.Warn("failed to read job description", zap.String("job_key", latest), zap.Error(err))
		return NoJobDescription
	}

	log.Debug("using latest job description", zap.String("job_key", latest))
	return text
}

func (e *evaluatorService) retrieveRubric(ctx context.Context, log *zap.Logger, jobTitle string) string {
	if e.rubric == nil {
		return ""
	}

	rubricCtx := ctx
	if e.opts.StageTimeout > 0 {
		var cancel context.CancelFunc
		rubricCtx, cancel = context.WithTimeout(ctx, e.opts.StageTimeout)
		defer cancel()
	}

	rubric, err := e.rubric.Retrieve(rubricCtx, jobTitle)
	if err != nil {
		log.Warn("failed to retrieve rubric", zap.Error(err))
		return ""
	}
	return rubric
}

func (e *evaluatorService) markFailed(ctx context.Context, log *zap.Logger, id, message string) {
	// the run's context may already be done; the failure still has to land
	if err := e.repo.MarkFailed(context.WithoutCancel(ctx), id, message); err != nil {
		log.Error("failed to mark candidate as failed", zap.Error(err))
		return
	}
	log.Warn("candidate marked as failed", zap.String("reason", message))
}

func toJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
