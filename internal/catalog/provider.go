// internal/catalog/provider.go
package catalog

import (
	"context"
	"errors"
	"fmt"

	"sizing-workers/internal/common/logger"
	"sizing-workers/internal/models"
	"sizing-workers/internal/sizing"

	"go.uber.org/multierr"
)

var (
	ErrProductNotFound = errors.New("PRODUCT_NOT_FOUND")
	ErrInvalidTables   = errors.New("TABLE_VALIDATION_FAILED")
)

// Tables are the two lookup tables the sizing engine consumes.
type Tables struct {
	Sizes   sizing.SizeTable   `json:"sizes"`
	Lengths sizing.LengthTable `json:"lengths"`
}

// EmptyTables is what a provider hands out when it has no data for a product.
func EmptyTables() *Tables {
	return &Tables{Sizes: sizing.SizeTable{}, Lengths: sizing.LengthTable{}}
}

// Provider supplies products and their size/length tables. GetTables resolves
// shared-table aliases itself and returns empty tables, not an error, when a
// product has no data.
type Provider interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, slug string) (*models.Product, error)
	GetTables(ctx context.Context, slug string) (*Tables, error)
}

// Snapshot is everything one calculation needs, captured at one point in time.
type Snapshot struct {
	Product *models.Product
	Tables  *Tables
	Context sizing.ProductContext
}

// Loader fetches snapshots and checks table quality at load time.
type Loader struct {
	provider Provider
	strict   bool
	families sizing.FamilySet
	logger   logger.Logger
}

func NewLoader(provider Provider, strict bool, log logger.Logger) *Loader {
	return &Loader{
		provider: provider,
		strict:   strict,
		families: sizing.DefaultBandSensitiveFamilies,
		logger:   log,
	}
}

// Load returns the tables and product context for slug. An unknown product
// yields empty tables so the engine answers "no match, no recommendation".
func (l *Loader) Load(ctx context.Context, slug string, media sizing.MediaType, band sizing.BandType) (*Snapshot, error) {
	product, err := l.provider.GetProduct(ctx, slug)
	if err != nil && !errors.Is(err, ErrProductNotFound) {
		return nil, fmt.Errorf("get product %s: %w", slug, err)
	}
	if product == nil {
		l.logger.Warn("unknown product, serving empty tables", map[string]interface{}{
			"productSlug": slug,
		})
		return &Snapshot{
			Tables:  EmptyTables(),
			Context: l.families.Context(slug, media, band),
		}, nil
	}

	if len(product.AvailableTypes) > 0 && !product.Offers(media) {
		l.logger.Warn("media type not offered for product", map[string]interface{}{
			"productSlug": slug,
			"mediaType":   media,
		})
	}

	tables, err := l.provider.GetTables(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get tables %s: %w", slug, err)
	}

	if verr := multierr.Combine(
		sizing.ValidateSizeTable(tables.Sizes),
		sizing.ValidateLengthTable(tables.Lengths),
	); verr != nil {
		if l.strict {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTables, slug, verr)
		}
		l.logger.Warn("size tables failed validation", map[string]interface{}{
			"productSlug": slug,
			"problems":    len(multierr.Errors(verr)),
			"error":       verr.Error(),
		})
	}

	return &Snapshot{
		Product: product,
		Tables:  tables,
		Context: ContextFor(product, media, band),
	}, nil
}

// ContextFor derives the engine's product context. Without product metadata
// band sensitivity falls back to the default family list.
func ContextFor(product *models.Product, media sizing.MediaType, band sizing.BandType) sizing.ProductContext {
	if product == nil {
		return sizing.DefaultBandSensitiveFamilies.Context("", media, band)
	}
	return sizing.ProductContext{
		Family:        product.Slug,
		MediaType:     media,
		BandType:      band,
		BandSensitive: product.BandSensitiveThigh,
	}
}
