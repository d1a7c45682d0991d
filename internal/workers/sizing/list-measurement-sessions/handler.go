// internal/workers/sizing/list-measurement-sessions/handler.go
package listmeasurementsessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "sizing-workers/internal/common/errors"
	"sizing-workers/internal/common/logger"
	"sizing-workers/internal/common/metrics"
	"sizing-workers/internal/common/validation"
	"sizing-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "list-measurement-sessions"
)

var (
	ErrInvalidInput       = errors.New("INVALID_MEASUREMENT_INPUT")
	ErrSessionQueryFailed = errors.New("SESSION_QUERY_FAILED")
)

type SessionStore interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]models.MeasurementSession, error)
}

type Handler struct {
	config     *Config
	store      SessionStore
	validator  *validation.Validator
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, store SessionStore, validator *validation.Validator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		store:      store,
		validator:  validator,
		errHandler: apperrors.NewErrorHandler(log),
		logger:     log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(ctx, client, job, apperrors.NewParseError(err))
		return
	}

	if err := h.validator.ValidateInput(TaskType, job.Variables); err != nil {
		h.failJob(ctx, client, job, apperrors.NewInvalidMeasurementInputError(err.Error()))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		var stdErr *apperrors.StandardError
		switch {
		case errors.Is(err, ErrInvalidInput):
			stdErr = apperrors.NewInvalidMeasurementInputError(err.Error())
		case errors.Is(err, ErrSessionQueryFailed):
			stdErr = apperrors.NewSessionQueryFailedError(err)
		default:
			stdErr = apperrors.NewInternalError(err)
		}
		h.failJob(ctx, client, job, stdErr.WithMetadata("userId", input.UserID))
		return
	}

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.UserID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	if input.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", ErrInvalidInput)
	}

	limit := input.Limit
	if limit == 0 {
		limit = h.config.DefaultLimit
	}

	sessions, err := h.store.ListByUser(ctx, input.UserID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionQueryFailed, err)
	}
	if sessions == nil {
		sessions = []models.MeasurementSession{}
	}

	h.logger.Debug("measurement sessions listed", map[string]interface{}{
		"userId": input.UserID,
		"count":  len(sessions),
	})

	return &Output{Sessions: sessions, Count: len(sessions)}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, stdErr *apperrors.StandardError) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errHandler.HandleJobError(ctx, client, job, stdErr)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
