// internal/workers/sizing/list-measurement-sessions/models.go
package listmeasurementsessions

import "sizing-workers/internal/models"

type Input struct {
	UserID string `json:"userId"`
	Limit  int    `json:"limit,omitempty"`
}

type Output struct {
	Sessions []models.MeasurementSession `json:"sessions"`
	Count    int                         `json:"count"`
}
