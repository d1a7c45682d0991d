package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name          string
		err           *StandardError
		wantCode      string
		wantRetries   int
		wantRetryable bool
	}{
		{
			name:     "product not found is thrown",
			err:      NewProductNotFoundError("elegance"),
			wantCode: "PRODUCT_NOT_FOUND",
		},
		{
			name:          "catalog outage retries",
			err:           NewCatalogUnavailableError(fmt.Errorf("connection refused")),
			wantCode:      "CATALOG_UNAVAILABLE",
			wantRetries:   3,
			wantRetryable: true,
		},
		{
			name:          "session query retries twice",
			err:           NewSessionQueryFailedError(fmt.Errorf("timeout")),
			wantCode:      "SESSION_QUERY_FAILED",
			wantRetries:   2,
			wantRetryable: true,
		},
		{
			name:     "unmapped code falls back to itself",
			err:      &StandardError{Code: "SOMETHING_ELSE", Message: "x"},
			wantCode: "SOMETHING_ELSE",
		},
		{
			name: "non-retryable flag wins over retry table",
			err: &StandardError{
				Code:      ErrCodeSessionSaveFailed,
				Message:   "duplicate",
				Retryable: false,
			},
			wantCode: "SESSION_SAVE_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmnErr := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.wantCode, bpmnErr.Code)
			assert.Equal(t, tt.wantRetries, bpmnErr.Retries)
			assert.Equal(t, tt.wantRetryable, bpmnErr.Retryable)
			assert.Equal(t, string(tt.err.Code), bpmnErr.ErrorVariables["originalErrorCode"])
		})
	}
}

func TestBPMNError_ToErrorVariables_IncludesMetadata(t *testing.T) {
	stdErr := NewInvalidMeasurementInputError("cB: must be greater than 0").
		WithMetadata("productSlug", "elegance")

	vars := ConvertToBPMNError(stdErr).ToErrorVariables()

	assert.Equal(t, "INVALID_MEASUREMENT_INPUT", vars["errorCode"])
	assert.Equal(t, "cB: must be greater than 0", vars["errorDetails"])
	assert.Equal(t, false, vars["retryable"])
	assert.Equal(t, "elegance", vars["productSlug"])
}

func TestNormalize(t *testing.T) {
	t.Run("standard error passes through wrapping", func(t *testing.T) {
		orig := NewProductNotFoundError("mondi")
		got := Normalize(fmt.Errorf("load tables: %w", orig))
		assert.Same(t, orig, got)
	})

	t.Run("plain error becomes internal", func(t *testing.T) {
		got := Normalize(fmt.Errorf("boom"))
		assert.Equal(t, ErrCodeInternal, got.Code)
		assert.Equal(t, "boom", got.Details)
		assert.False(t, got.Retryable)
	})
}

func TestRetryBudget(t *testing.T) {
	retryable := ConvertToBPMNError(NewCatalogUnavailableError(fmt.Errorf("down")))
	business := ConvertToBPMNError(NewProductNotFoundError("x"))

	retries, ok := retryBudget(retryable, 5)
	require.True(t, ok)
	assert.Equal(t, int32(2), retries)

	retries, ok = retryBudget(retryable, 1)
	require.True(t, ok)
	assert.Equal(t, int32(0), retries, "last attempt leaves no retries")

	_, ok = retryBudget(retryable, 0)
	assert.False(t, ok)

	_, ok = retryBudget(business, 3)
	assert.False(t, ok)
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeParseError))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidMeasurementInput))
	assert.Equal(t, "CATALOG", GetErrorCategory(ErrCodeProductNotFound))
	assert.Equal(t, "CATALOG", GetErrorCategory(ErrCodeTableValidationFailed))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeSessionSaveFailed))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
	assert.True(t, IsRetryableErrorCode(ErrCodeCatalogUnavailable))
	assert.False(t, IsRetryableErrorCode(ErrCodeTableValidationFailed))
}
