// internal/workers/catalog/list-products/handler_test.go
package listproducts

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"sizing-workers/internal/catalog"
	"sizing-workers/internal/common/logger"
	"sizing-workers/internal/models"
	"sizing-workers/internal/sizing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type failingProvider struct {
	catalog.Provider
}

func (failingProvider) ListProducts(context.Context) ([]models.Product, error) {
	return nil, errors.New("dial tcp 10.0.0.5:5432: connect: connection refused")
}

func createTestHandler(t *testing.T, provider catalog.Provider) *Handler {
	t.Helper()
	if provider == nil {
		fixtures, err := catalog.NewFixtureProvider(filepath.Join("..", "..", "..", "..", "configs", "fixtures"))
		require.NoError(t, err)
		provider = fixtures
	}
	return NewHandler(&Config{Timeout: 5 * time.Second}, provider, nil, logger.NewTestLogger(t))
}

func slugs(products []models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Slug)
	}
	return out
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_AllProducts(t *testing.T) {
	output, err := createTestHandler(t, nil).Execute(context.Background(), &Input{})

	require.NoError(t, err)
	assert.Equal(t, 7, output.Count)
	assert.Equal(t,
		[]string{"elegance", "comfort", "cotton", "plus", "sheer-soft", "forte", "mondi"},
		slugs(output.Products))
}

func TestHandler_Execute_FilterByMediaType(t *testing.T) {
	tests := []struct {
		media sizing.MediaType
		want  []string
	}{
		{sizing.MediaTypeAT, []string{"elegance", "comfort", "cotton", "plus"}},
		{sizing.MediaTypeAG, []string{"elegance", "comfort", "cotton", "plus", "sheer-soft", "forte"}},
		{sizing.MediaTypeAD, []string{"elegance", "comfort", "cotton", "plus", "sheer-soft", "forte", "mondi"}},
	}

	handler := createTestHandler(t, nil)
	for _, tt := range tests {
		t.Run(string(tt.media), func(t *testing.T) {
			output, err := handler.Execute(context.Background(), &Input{MediaType: tt.media})

			require.NoError(t, err)
			assert.Equal(t, tt.want, slugs(output.Products))
			assert.Equal(t, len(tt.want), output.Count)
		})
	}
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_InvalidMediaType(t *testing.T) {
	output, err := createTestHandler(t, nil).Execute(context.Background(), &Input{MediaType: "XL"})

	assert.Nil(t, output)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestHandler_Execute_CatalogUnavailable(t *testing.T) {
	output, err := createTestHandler(t, failingProvider{}).Execute(context.Background(), &Input{})

	assert.Nil(t, output)
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
	assert.Contains(t, err.Error(), "connection refused")
}
