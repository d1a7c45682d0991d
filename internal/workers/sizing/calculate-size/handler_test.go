// internal/workers/sizing/calculate-size/handler_test.go
package calculatesize

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"sizing-workers/internal/catalog"
	apperrors "sizing-workers/internal/common/errors"
	"sizing-workers/internal/common/logger"
	"sizing-workers/internal/models"
	"sizing-workers/internal/sizing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var fixturesDir = filepath.Join("..", "..", "..", "..", "configs", "fixtures")

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}

func createTestHandler(t *testing.T, provider catalog.Provider, strict bool) *Handler {
	t.Helper()
	if provider == nil {
		fp, err := catalog.NewFixtureProvider(fixturesDir)
		require.NoError(t, err)
		provider = fp
	}
	log := logger.NewTestLogger(t)
	return NewHandler(createTestConfig(), catalog.NewLoader(provider, strict, log), nil, log)
}

func createInput(slug string, media sizing.MediaType, band sizing.BandType, m sizing.MeasurementInput) *Input {
	return &Input{ProductSlug: slug, MediaType: media, BandType: band, Measurements: m}
}

// stubProvider serves fixed tables or fails every call.
type stubProvider struct {
	product *models.Product
	tables  *catalog.Tables
	err     error
}

func (s *stubProvider) ListProducts(context.Context) ([]models.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []models.Product{*s.product}, nil
}

func (s *stubProvider) GetProduct(context.Context, string) (*models.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.product, nil
}

func (s *stubProvider) GetTables(context.Context, string) (*catalog.Tables, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.tables, nil
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name     string
		input    *Input
		expected *Output
	}{
		{
			name: "below-knee single size with length",
			input: createInput("elegance", sizing.MediaTypeAD, "", sizing.MeasurementInput{
				CB: sizing.Float(19), CC: sizing.Float(30), CD: sizing.Float(30), Length: sizing.Float(38),
			}),
			expected: &Output{
				MatchingSizes:     []string{"I"},
				RecommendedSize:   "I",
				RecommendedLength: "Corta",
			},
		},
		{
			name: "aliased product wide band matches two sizes",
			input: createInput("comfort", sizing.MediaTypeAG, sizing.BandWide, sizing.MeasurementInput{
				CB: sizing.Float(20), CG: sizing.Float(55), Length: sizing.Float(100),
			}),
			expected: &Output{
				MatchingSizes:     []string{"I", "II"},
				RecommendedSize:   "I",
				RecommendedLength: "Normal",
				LengthOutOfRange:  true,
				HasMultipleSizes:  true,
			},
		},
		{
			name: "aliased product normal band",
			input: createInput("comfort", sizing.MediaTypeAG, sizing.BandNormal, sizing.MeasurementInput{
				CB: sizing.Float(20), CG: sizing.Float(55),
			}),
			expected: &Output{
				MatchingSizes:   []string{"II"},
				RecommendedSize: "II",
			},
		},
		{
			name: "band insensitive product reads plain thigh",
			input: createInput("sheer-soft", sizing.MediaTypeAG, sizing.BandWide, sizing.MeasurementInput{
				CB: sizing.Float(19), CG: sizing.Float(50), Length: sizing.Float(60),
			}),
			expected: &Output{
				MatchingSizes:     []string{"I"},
				RecommendedSize:   "I",
				RecommendedLength: "Corta",
				LengthOutOfRange:  true,
			},
		},
		{
			name: "zero readings count as not taken",
			input: createInput("elegance", sizing.MediaTypeAD, "", sizing.MeasurementInput{
				CB: sizing.Float(0), CC: sizing.Float(29), CD: sizing.Float(28), Length: sizing.Float(0),
			}),
			expected: &Output{
				MatchingSizes:     []string{"I"},
				RecommendedSize:   "I",
				RecommendedLength: "Corta",
				LengthOutOfRange:  true,
			},
		},
		{
			name: "no size matches",
			input: createInput("elegance", sizing.MediaTypeAD, "", sizing.MeasurementInput{
				CB: sizing.Float(25),
			}),
			expected: &Output{
				MatchingSizes:  []string{},
				NeedsCustomFit: true,
			},
		},
		{
			name: "unknown product yields empty tables",
			input: createInput("mystery", sizing.MediaTypeAD, "", sizing.MeasurementInput{
				CB: sizing.Float(19), Length: sizing.Float(40),
			}),
			expected: &Output{
				MatchingSizes:  []string{},
				NeedsCustomFit: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := createTestHandler(t, nil, true)

			output, err := handler.Execute(context.Background(), tt.input)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, output)
		})
	}
}

func TestHandler_Execute_Idempotent(t *testing.T) {
	handler := createTestHandler(t, nil, false)
	input := createInput("forte", sizing.MediaTypeAG, sizing.BandWide, sizing.MeasurementInput{
		CB: sizing.Float(22), CG: sizing.Float(60), Length: sizing.Float(80),
	})

	first, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	second, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"I", "II"}, first.MatchingSizes)
	assert.Equal(t, "Normal", first.RecommendedLength)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input *Input
	}{
		{"missing product", createInput("", sizing.MediaTypeAD, "", sizing.MeasurementInput{})},
		{"unknown media type", createInput("elegance", "AX", "", sizing.MeasurementInput{})},
		{"unknown band", createInput("elegance", sizing.MediaTypeAG, "wide", sizing.MeasurementInput{})},
		{"negative ankle", createInput("elegance", sizing.MediaTypeAD, "", sizing.MeasurementInput{CB: sizing.Float(-1)})},
		{"negative length", createInput("elegance", sizing.MediaTypeAD, "", sizing.MeasurementInput{Length: sizing.Float(-40)})},
	}

	handler := createTestHandler(t, nil, false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := handler.Execute(context.Background(), tt.input)
			assert.Nil(t, output)
			assert.ErrorIs(t, err, ErrInvalidInput)

			stdErr := handler.classify(tt.input, err)
			assert.Equal(t, apperrors.ErrCodeInvalidMeasurementInput, stdErr.Code)
			assert.False(t, stdErr.Retryable)
		})
	}
}

func TestHandler_Execute_CatalogFailure(t *testing.T) {
	handler := createTestHandler(t, &stubProvider{err: errors.New("connection refused")}, false)
	input := createInput("elegance", sizing.MediaTypeAD, "", sizing.MeasurementInput{CB: sizing.Float(19)})

	output, err := handler.Execute(context.Background(), input)

	assert.Nil(t, output)
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
	stdErr := handler.classify(input, err)
	assert.Equal(t, apperrors.ErrCodeCatalogUnavailable, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestHandler_Execute_MalformedTables(t *testing.T) {
	broken := &stubProvider{
		product: &models.Product{Slug: "broken", AvailableTypes: []sizing.MediaType{sizing.MediaTypeAD}},
		tables: &catalog.Tables{
			Sizes: sizing.SizeTable{
				{Name: "I", Ranges: map[sizing.MeasurementCode]sizing.Range{sizing.CodeAnkle: {Min: 22, Max: 18}}},
			},
			Lengths: sizing.LengthTable{},
		},
	}
	input := createInput("broken", sizing.MediaTypeAD, "", sizing.MeasurementInput{CB: sizing.Float(19)})

	t.Run("strict rejects", func(t *testing.T) {
		handler := createTestHandler(t, broken, true)
		_, err := handler.Execute(context.Background(), input)
		assert.ErrorIs(t, err, catalog.ErrInvalidTables)
		assert.Equal(t, apperrors.ErrCodeTableValidationFailed, handler.classify(input, err).Code)
	})

	t.Run("lenient serves tables unchanged", func(t *testing.T) {
		handler := createTestHandler(t, broken, false)
		output, err := handler.Execute(context.Background(), input)
		require.NoError(t, err)
		// min > max can never contain a value
		assert.True(t, output.NeedsCustomFit)
	})
}
