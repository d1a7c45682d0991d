// internal/catalog/postgres.go
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"sizing-workers/internal/models"
	"sizing-workers/internal/sizing"

	"github.com/lib/pq"
)

const productColumns = `
		id, slug, name, COALESCE(description, ''), brand, COALESCE(image, ''),
		available_types, has_band_selection, is_active, display_order,
		band_sensitive_thigh, COALESCE(table_ref, '')`

// PostgresProvider reads products and tables from the catalog database.
type PostgresProvider struct {
	db *sql.DB
}

func NewPostgresProvider(db *sql.DB) *PostgresProvider {
	return &PostgresProvider{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var p models.Product
	var types []string
	err := row.Scan(
		&p.ID, &p.Slug, &p.Name, &p.Description, &p.Brand, &p.Image,
		pq.Array(&types), &p.HasBandSelection, &p.IsActive, &p.DisplayOrder,
		&p.BandSensitiveThigh, &p.TableRef,
	)
	if err != nil {
		return nil, err
	}
	p.AvailableTypes = make([]sizing.MediaType, 0, len(types))
	for _, t := range types {
		p.AvailableTypes = append(p.AvailableTypes, sizing.MediaType(t))
	}
	return &p, nil
}

func (p *PostgresProvider) ListProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT`+productColumns+`
		FROM products
		WHERE is_active = true
		ORDER BY display_order`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		prod, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *prod)
	}
	return products, rows.Err()
}

func (p *PostgresProvider) GetProduct(ctx context.Context, slug string) (*models.Product, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT`+productColumns+`
		FROM products
		WHERE slug = $1`, slug)

	prod, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, slug)
	}
	if err != nil {
		return nil, fmt.Errorf("query product %s: %w", slug, err)
	}
	return prod, nil
}

func (p *PostgresProvider) GetTables(ctx context.Context, slug string) (*Tables, error) {
	tableSlug := slug
	prod, err := p.GetProduct(ctx, slug)
	switch {
	case err == nil:
		tableSlug = prod.TableSlug()
	case !errors.Is(err, ErrProductNotFound):
		return nil, err
	}

	sizes, err := p.sizeTable(ctx, tableSlug)
	if err != nil {
		return nil, err
	}
	lengths, err := p.lengthTable(ctx, tableSlug)
	if err != nil {
		return nil, err
	}
	return &Tables{Sizes: sizes, Lengths: lengths}, nil
}

func (p *PostgresProvider) sizeTable(ctx context.Context, slug string) (sizing.SizeTable, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT st.size_name, sm.measurement_code, sm.min_value, sm.max_value
		FROM size_tables st
		JOIN products p ON p.id = st.product_id
		LEFT JOIN size_measurements sm ON sm.size_table_id = st.id
		WHERE p.slug = $1
		ORDER BY st.display_order, st.id, sm.measurement_code`, slug)
	if err != nil {
		return nil, fmt.Errorf("query size table %s: %w", slug, err)
	}
	defer rows.Close()

	table := sizing.SizeTable{}
	index := map[string]int{}
	for rows.Next() {
		var name string
		var code sql.NullString
		var lo, hi sql.NullFloat64
		if err := rows.Scan(&name, &code, &lo, &hi); err != nil {
			return nil, fmt.Errorf("scan size row: %w", err)
		}

		// a size keeps the position of its first row
		i, ok := index[name]
		if !ok {
			i = len(table)
			index[name] = i
			table = append(table, sizing.SizeEntry{
				Name:   name,
				Ranges: map[sizing.MeasurementCode]sizing.Range{},
			})
		}
		if code.Valid && lo.Valid && hi.Valid {
			table[i].Ranges[sizing.MeasurementCode(code.String)] = sizing.Range{Min: lo.Float64, Max: hi.Float64}
		}
	}
	return table, rows.Err()
}

func (p *PostgresProvider) lengthTable(ctx context.Context, slug string) (sizing.LengthTable, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT pl.media_type, pl.length_name, pl.min_value, pl.max_value
		FROM product_lengths pl
		JOIN products p ON p.id = pl.product_id
		WHERE p.slug = $1
		ORDER BY pl.media_type, pl.display_order, pl.min_value, pl.length_name`, slug)
	if err != nil {
		return nil, fmt.Errorf("query lengths %s: %w", slug, err)
	}
	defer rows.Close()

	table := sizing.LengthTable{}
	for rows.Next() {
		var media, name string
		var r sizing.Range
		if err := rows.Scan(&media, &name, &r.Min, &r.Max); err != nil {
			return nil, fmt.Errorf("scan length row: %w", err)
		}
		mt := sizing.MediaType(media)
		table[mt] = append(table[mt], sizing.LengthBand{Name: name, Range: r})
	}
	return table, rows.Err()
}
