// internal/workers/sizing/calculate-size/handler.go
package calculatesize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"sizing-workers/internal/catalog"
	apperrors "sizing-workers/internal/common/errors"
	"sizing-workers/internal/common/logger"
	"sizing-workers/internal/common/metrics"
	"sizing-workers/internal/common/validation"
	"sizing-workers/internal/sizing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "calculate-size"
)

var (
	ErrInvalidInput       = errors.New("INVALID_MEASUREMENT_INPUT")
	ErrCatalogUnavailable = errors.New("CATALOG_UNAVAILABLE")
)

type Handler struct {
	config     *Config
	loader     *catalog.Loader
	validator  *validation.Validator
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, loader *catalog.Loader, validator *validation.Validator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		loader:     loader,
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
		h.failJob(ctx, client, job, apperrors.NewInvalidMeasurementInputError(err.Error()).
			WithMetadata("productSlug", input.ProductSlug))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(ctx, client, job, h.classify(&input, err))
		return
	}

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) classify(input *Input, err error) *apperrors.StandardError {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return apperrors.NewInvalidMeasurementInputError(err.Error())
	case errors.Is(err, catalog.ErrInvalidTables):
		return apperrors.NewTableValidationFailedError(input.ProductSlug, err)
	case errors.Is(err, ErrCatalogUnavailable):
		return apperrors.NewCatalogUnavailableError(err)
	default:
		return apperrors.NewInternalError(err)
	}
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	snapshot, err := h.loader.Load(ctx, input.ProductSlug, input.MediaType, input.BandType)
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidTables) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	result := sizing.Calculate(snapshot.Tables.Sizes, snapshot.Tables.Lengths, input.Measurements, snapshot.Context)
	metrics.RecordRecommendation(string(input.MediaType), len(result.MatchingSizes), result.LengthOutOfRange)

	h.logger.Debug("size calculated", map[string]interface{}{
		"productSlug":       input.ProductSlug,
		"mediaType":         input.MediaType,
		"bandSensitive":     snapshot.Context.BandSensitive,
		"matchingSizes":     result.MatchingSizes,
		"recommendedLength": result.RecommendedLength,
		"lengthOutOfRange":  result.LengthOutOfRange,
	})

	return newOutput(result), nil
}

// validateInput rejects what the engine cannot interpret: unknown media or
// band types and non-positive measurements.
func validateInput(input *Input) error {
	if input.ProductSlug == "" {
		return fmt.Errorf("%w: productSlug is required", ErrInvalidInput)
	}
	if !input.MediaType.Valid() {
		return fmt.Errorf("%w: unknown mediaType %q", ErrInvalidInput, input.MediaType)
	}
	if !input.BandType.Valid() {
		return fmt.Errorf("%w: unknown bandType %q", ErrInvalidInput, input.BandType)
	}
	for _, code := range inputCodes {
		if v := input.Measurements.Value(code); v != nil && *v < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidInput, code)
		}
	}
	if l := input.Measurements.Length; l != nil && *l < 0 {
		return fmt.Errorf("%w: length must not be negative", ErrInvalidInput)
	}
	return nil
}

var inputCodes = []sizing.MeasurementCode{
	sizing.CodeAnkle, sizing.CodeCalf, sizing.CodeBelowKnee, sizing.CodeThigh,
	sizing.CodeMidThigh, sizing.CodeAboveKnee, sizing.CodeAboveAnkle,
	sizing.CodeInstep, sizing.CodeFoot,
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
