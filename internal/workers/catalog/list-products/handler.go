// internal/workers/catalog/list-products/handler.go
package listproducts

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
	"sizing-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "list-products"
)

var (
	ErrInvalidInput       = errors.New("INVALID_MEASUREMENT_INPUT")
	ErrCatalogUnavailable = errors.New("CATALOG_UNAVAILABLE")
)

type Handler struct {
	config     *Config
	products   catalog.Provider
	validator  *validation.Validator
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, products catalog.Provider, validator *validation.Validator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		products:   products,
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
		switch {
		case errors.Is(err, ErrInvalidInput):
			h.failJob(ctx, client, job, apperrors.NewInvalidMeasurementInputError(err.Error()))
		case errors.Is(err, ErrCatalogUnavailable):
			h.failJob(ctx, client, job, apperrors.NewCatalogUnavailableError(err))
		default:
			h.failJob(ctx, client, job, apperrors.NewInternalError(err))
		}
		return
	}

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.MediaType != "" && !input.MediaType.Valid() {
		return nil, fmt.Errorf("%w: unknown mediaType %q", ErrInvalidInput, input.MediaType)
	}

	all, err := h.products.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	products := make([]models.Product, 0, len(all))
	for i := range all {
		if !all[i].IsActive {
			continue
		}
		if input.MediaType != "" && !all[i].Offers(input.MediaType) {
			continue
		}
		products = append(products, all[i])
	}

	return &Output{Products: products, Count: len(products)}, nil
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
