// internal/workers/catalog/list-products/models.go
package listproducts

import (
	"sizing-workers/internal/models"
	"sizing-workers/internal/sizing"
)

type Input struct {
	MediaType sizing.MediaType `json:"mediaType,omitempty"`
}

type Output struct {
	Products []models.Product `json:"products"`
	Count    int              `json:"count"`
}
