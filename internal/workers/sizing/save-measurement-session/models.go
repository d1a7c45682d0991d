// internal/workers/sizing/save-measurement-session/models.go
package savemeasurementsession

import "sizing-workers/internal/sizing"

type Input struct {
	UserID            string                  `json:"userId"`
	ProductSlug       string                  `json:"productSlug"`
	MediaType         sizing.MediaType        `json:"mediaType"`
	BandType          sizing.BandType         `json:"bandType,omitempty"`
	Measurements      sizing.MeasurementInput `json:"measurements"`
	MatchingSizes     []string                `json:"matchingSizes,omitempty"`
	RecommendedSize   string                  `json:"recommendedSize,omitempty"`
	RecommendedLength string                  `json:"recommendedLength,omitempty"`
}

type Output struct {
	SessionID string `json:"sessionId"`
	CreatedAt string `json:"createdAt"`
}
