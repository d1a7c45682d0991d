package main

import (
	"os"
	"path/filepath"
	"testing"

	"sizing-workers/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoType(t *testing.T) {
	tests := []struct {
		in   interface{}
		want string
	}{
		{"string", "string"},
		{"number", "float64"},
		{"integer", "int"},
		{"boolean", "bool"},
		{[]interface{}{"number", "null"}, "*float64"},
		{[]interface{}{"null"}, "interface{}"},
		{nil, "interface{}"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, goType(tt.in), "%v", tt.in)
	}
}

func TestFieldName(t *testing.T) {
	assert.Equal(t, "UserID", fieldName("userId"))
	assert.Equal(t, "ProductSlug", fieldName("product-slug"))
	assert.Equal(t, "CB", fieldName("cB"))
}

func TestStructFields_Sorted(t *testing.T) {
	schema := map[string]interface{}{
		"properties": map[string]interface{}{
			"userId": map[string]interface{}{"type": "string"},
			"limit":  map[string]interface{}{"type": "integer"},
		},
	}
	assert.Equal(t, "\tLimit int `json:\"limit\"`\n\tUserID string `json:\"userId\"`", structFields(schema))
}

func TestRender_FromShippedRegistry(t *testing.T) {
	reg, err := registry.LoadRegistry(filepath.Join("..", "..", "..", "configs", "activity-registry.json"))
	require.NoError(t, err)
	activity, ok := reg.Find("list-measurement-sessions")
	require.True(t, ok)

	dir := t.TempDir()
	written, err := render(dir, newWorkerData(activity))
	require.NoError(t, err)
	assert.Len(t, written, 4)

	handler, err := os.ReadFile(filepath.Join(dir, "handler.go"))
	require.NoError(t, err)
	assert.Contains(t, string(handler), "package listmeasurementsessions")
	assert.Contains(t, string(handler), `TaskType = "list-measurement-sessions"`)

	models, err := os.ReadFile(filepath.Join(dir, "models.go"))
	require.NoError(t, err)
	assert.Contains(t, string(models), "UserID string `json:\"userId\"`")

	_, err = render(dir, newWorkerData(activity))
	assert.Error(t, err, "existing files are not overwritten")
}
