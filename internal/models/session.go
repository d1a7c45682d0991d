// internal/models/session.go
package models

import (
	"time"

	"sizing-workers/internal/sizing"
)

// MeasurementSession is one recorded sizing calculation.
type MeasurementSession struct {
	ID                string                  `json:"id" db:"id"`
	UserID            string                  `json:"userId,omitempty" db:"user_id"`
	ProductID         string                  `json:"productId" db:"product_id"`
	ProductSlug       string                  `json:"productSlug" db:"product_slug"`
	MediaType         sizing.MediaType        `json:"mediaType" db:"media_type"`
	BandType          sizing.BandType         `json:"bandType,omitempty" db:"band_type"`
	Measurements      sizing.MeasurementInput `json:"measurements" db:"measurements"`
	RecommendedSize   string                  `json:"recommendedSize,omitempty" db:"recommended_size"`
	RecommendedLength string                  `json:"recommendedLength,omitempty" db:"recommended_length"`
	MatchingSizes     []string                `json:"matchingSizes" db:"matching_sizes"`
	CreatedAt         time.Time               `json:"createdAt" db:"created_at"`
}
