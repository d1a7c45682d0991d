// internal/catalog/fixtures.go
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"sizing-workers/internal/models"
)

const (
	productsFile   = "products.json"
	sizeTablesFile = "size-tables.json"
)

// FixtureProvider serves products and tables from static JSON files.
type FixtureProvider struct {
	products []models.Product
	tables   map[string]Tables
}

// NewFixtureProvider reads products.json and size-tables.json from dir.
func NewFixtureProvider(dir string) (*FixtureProvider, error) {
	var products []models.Product
	if err := readJSON(filepath.Join(dir, productsFile), &products); err != nil {
		return nil, err
	}

	tables := make(map[string]Tables)
	if err := readJSON(filepath.Join(dir, sizeTablesFile), &tables); err != nil {
		return nil, err
	}

	sort.SliceStable(products, func(i, j int) bool {
		return products[i].DisplayOrder < products[j].DisplayOrder
	})

	return &FixtureProvider{products: products, tables: tables}, nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read fixture %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return nil
}

func (p *FixtureProvider) ListProducts(_ context.Context) ([]models.Product, error) {
	active := make([]models.Product, 0, len(p.products))
	for _, prod := range p.products {
		if prod.IsActive {
			active = append(active, prod)
		}
	}
	return active, nil
}

func (p *FixtureProvider) GetProduct(_ context.Context, slug string) (*models.Product, error) {
	for i := range p.products {
		if p.products[i].Slug == slug {
			prod := p.products[i]
			return &prod, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrProductNotFound, slug)
}

func (p *FixtureProvider) GetTables(ctx context.Context, slug string) (*Tables, error) {
	tableSlug := slug
	if prod, err := p.GetProduct(ctx, slug); err == nil {
		tableSlug = prod.TableSlug()
	}

	t, ok := p.tables[tableSlug]
	if !ok {
		return EmptyTables(), nil
	}

	out := &Tables{Sizes: t.Sizes, Lengths: t.Lengths}
	if out.Sizes == nil {
		out.Sizes = EmptyTables().Sizes
	}
	if out.Lengths == nil {
		out.Lengths = EmptyTables().Lengths
	}
	return out, nil
}
