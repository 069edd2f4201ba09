package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/learnforge/learnforge-backend/internal/config"
	"github.com/learnforge/learnforge-backend/internal/judge0"
	"github.com/learnforge/learnforge-backend/internal/model"
	"github.com/learnforge/learnforge-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrBlankSource is returned when a run request carries no source code.
var ErrBlankSource = errors.New("source_code must be provided")

// ExecutionService proxies code execution to Judge0 and records finished
// runs through the persistence queue.
type ExecutionService struct {
	judge   *judge0.Client
	runRepo *repository.RunRepository
	rdb     *redis.Client
	log     zerolog.Logger
}

func NewExecutionService(judge *judge0.Client, runRepo *repository.RunRepository, rdb *redis.Client, log zerolog.Logger) *ExecutionService {
	return &ExecutionService{
		judge:   judge,
		runRepo: runRepo,
		rdb:     rdb,
		log:     log.With().Str("component", "execution_service").Logger(),
	}
}

// Languages returns the supported language catalog.
func (s *ExecutionService) Languages() []model.LanguageDescriptor {
	return judge0.Languages()
}

// PrepareSubmit validates a run request and converts it into a Judge0
// submit request.
func (s *ExecutionService) PrepareSubmit(req *model.RunCodeRequest) (*judge0.SubmitRequest, error) {
	if strings.TrimSpace(req.SourceCode) == "" {
		return nil, ErrBlankSource
	}
	lang, err := judge0.Resolve(req.Language)
	if err != nil {
		return nil, err
	}
	return &judge0.SubmitRequest{
		Language:             lang,
		SourceCode:           req.SourceCode,
		Stdin:                req.Stdin,
		CommandLineArguments: req.CommandLineArguments,
		ExpectedOutput:       req.ExpectedOutput,
	}, nil
}

// Run executes code through Judge0, waiting for a terminal status.
func (s *ExecutionService) Run(ctx context.Context, req *model.RunCodeRequest) (*model.ExecutionOutcome, error) {
	sub, err := s.PrepareSubmit(req)
	if err != nil {
		return nil, err
	}

	outcome, err := s.judge.Execute(ctx, sub)
	if err != nil {
		return nil, err
	}

	s.EnqueueRun(ctx, outcome)
	return outcome, nil
}

// Watch executes code through Judge0 and reports every status transition
// to onStatus. Used by the WebSocket streaming handler.
func (s *ExecutionService) Watch(ctx context.Context, req *model.RunCodeRequest, onStatus func(model.StatusInfo)) (*model.ExecutionOutcome, error) {
	sub, err := s.PrepareSubmit(req)
	if err != nil {
		return nil, err
	}

	outcome, err := s.judge.Watch(ctx, sub, onStatus)
	if err != nil {
		return nil, err
	}

	s.EnqueueRun(ctx, outcome)
	return outcome, nil
}

// RecentRuns lists the most recent persisted run records.
func (s *ExecutionService) RecentRuns(ctx context.Context, limit int) ([]model.RunRecord, error) {
	return s.runRepo.ListRecent(ctx, limit)
}

// EnqueueRun pushes a finished run onto the persistence queue. Best
// effort: a queue failure loses the audit row, never the response.
func (s *ExecutionService) EnqueueRun(ctx context.Context, outcome *model.ExecutionOutcome) {
	payload, err := json.Marshal(map[string]interface{}{
		"language":     outcome.Language,
		"token":        outcome.Token,
		"status_id":    outcome.Status.ID,
		"status_label": outcome.Status.Description,
		"time":         outcome.Time,
		"memory":       outcome.Memory,
	})
	if err != nil {
		return
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistRunsQueue, payload).Err(); err != nil {
		s.log.Error().Err(err).Msg("Run enqueue failed")
	}
}
