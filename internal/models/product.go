// internal/models/product.go
package models

import "sizing-workers/internal/sizing"

// Product is a garment line offered by the configurator.
type Product struct {
	ID               string             `json:"id"`
	Slug             string             `json:"slug"`
	Name             string             `json:"name"`
	Description      string             `json:"description,omitempty"`
	Brand            string             `json:"brand"`
	Image            string             `json:"image,omitempty"`
	AvailableTypes   []sizing.MediaType `json:"availableTypes"`
	HasBandSelection bool               `json:"hasBandSelection"`
	IsActive         bool               `json:"isActive"`
	DisplayOrder     int                `json:"displayOrder"`

	// BandSensitiveThigh marks lines whose size tables split thigh ranges
	// per garment style and band width.
	BandSensitiveThigh bool `json:"bandSensitiveThigh"`
	// TableRef is the slug of the product whose tables this one shares.
	TableRef string `json:"tableRef,omitempty"`
}

// TableSlug returns the slug under which this product's tables are stored.
func (p *Product) TableSlug() string {
	if p.TableRef != "" {
		return p.TableRef
	}
	return p.Slug
}

// Offers reports whether the product is sold in the given media type.
func (p *Product) Offers(media sizing.MediaType) bool {
	for _, t := range p.AvailableTypes {
		if t == media {
			return true
		}
	}
	return false
}
