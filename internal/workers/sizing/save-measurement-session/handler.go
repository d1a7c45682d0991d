// internal/workers/sizing/save-measurement-session/handler.go
package savemeasurementsession

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sizing-workers/internal/catalog"
	apperrors "sizing-workers/internal/common/errors"
	"sizing-workers/internal/common/logger"
	"sizing-workers/internal/common/metrics"
	"sizing-workers/internal/common/validation"
	"sizing-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "save-measurement-session"

	EventSessionSaved = "measurement-session.saved"
)

var (
	ErrInvalidInput       = errors.New("INVALID_MEASUREMENT_INPUT")
	ErrProductNotFound    = errors.New("PRODUCT_NOT_FOUND")
	ErrCatalogUnavailable = errors.New("CATALOG_UNAVAILABLE")
	ErrSessionSaveFailed  = errors.New("SESSION_SAVE_FAILED")
)

// SessionStore is the persistence the handler needs.
type SessionStore interface {
	Save(ctx context.Context, session *models.MeasurementSession) error
}

// EventPublisher announces saved sessions to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
}

type Handler struct {
	config     *Config
	products   catalog.Provider
	store      SessionStore
	events     EventPublisher
	validator  *validation.Validator
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
	now        func() time.Time
}

// NewHandler builds the handler. events may be nil.
func NewHandler(config *Config, products catalog.Provider, store SessionStore, events EventPublisher, validator *validation.Validator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		products:   products,
		store:      store,
		events:     events,
		validator:  validator,
		errHandler: apperrors.NewErrorHandler(log),
		logger:     log,
		now:        func() time.Time { return time.Now().UTC() },
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
		h.failJob(ctx, client, job, classify(&input, err))
		return
	}

	h.completeJob(ctx, client, job, output)
}

func classify(input *Input, err error) *apperrors.StandardError {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return apperrors.NewInvalidMeasurementInputError(err.Error())
	case errors.Is(err, ErrProductNotFound):
		return apperrors.NewProductNotFoundError(input.ProductSlug)
	case errors.Is(err, ErrCatalogUnavailable):
		return apperrors.NewCatalogUnavailableError(err)
	case errors.Is(err, ErrSessionSaveFailed):
		return apperrors.NewSessionSaveFailedError(err)
	default:
		return apperrors.NewInternalError(err)
	}
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	switch {
	case input.UserID == "":
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	case input.ProductSlug == "":
		return nil, fmt.Errorf("%w: productSlug is required", ErrInvalidInput)
	case !input.MediaType.Valid():
		return nil, fmt.Errorf("%w: unknown mediaType %q", ErrInvalidInput, input.MediaType)
	case !input.BandType.Valid():
		return nil, fmt.Errorf("%w: unknown bandType %q", ErrInvalidInput, input.BandType)
	}

	product, err := h.products.GetProduct(ctx, input.ProductSlug)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, input.ProductSlug)
		}
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	session := &models.MeasurementSession{
		ID:                uuid.NewString(),
		UserID:            input.UserID,
		ProductID:         product.ID,
		ProductSlug:       product.Slug,
		MediaType:         input.MediaType,
		BandType:          input.BandType,
		Measurements:      input.Measurements,
		MatchingSizes:     input.MatchingSizes,
		RecommendedSize:   input.RecommendedSize,
		RecommendedLength: input.RecommendedLength,
		CreatedAt:         h.now(),
	}
	if session.MatchingSizes == nil {
		session.MatchingSizes = []string{}
	}

	if err := h.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionSaveFailed, err)
	}

	h.logger.Info("measurement session saved", map[string]interface{}{
		"sessionId":   session.ID,
		"userId":      session.UserID,
		"productSlug": session.ProductSlug,
	})

	h.publish(ctx, session)

	return &Output{
		SessionID: session.ID,
		CreatedAt: session.CreatedAt.Format(time.RFC3339),
	}, nil
}

func (h *Handler) publish(ctx context.Context, session *models.MeasurementSession) {
	if h.events == nil {
		return
	}
	if err := h.events.Publish(ctx, EventSessionSaved, session); err != nil {
		h.logger.Warn("session event not published", map[string]interface{}{
			"sessionId": session.ID,
			"error":     err.Error(),
		})
	}
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
