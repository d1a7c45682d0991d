package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sizing-workers/pkg/registry"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAddUpdateValidate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "registry.json")
	schema := filepath.Join(dir, "input.json")
	require.NoError(t, os.WriteFile(schema, []byte(`{"type":"object","required":["userId"]}`), 0o600))

	out, err := run(t, "add", "--path", path,
		"--id", "export-sessions", "--displayName", "Export Sessions",
		"--description", "Exports a user's sessions", "--category", "sizing",
		"--inputSchema", schema, "--errorCodes", "SESSION_QUERY_FAILED")
	require.NoError(t, err)
	assert.Contains(t, out, "Added activity: export-sessions")

	_, err = run(t, "update", "--path", path, "--id", "export-sessions", "--field", "status", "--value", registry.StatusCompleted)
	require.NoError(t, err)

	out, err = run(t, "validate", "--path", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 activities")

	reg, err := registry.LoadRegistry(path)
	require.NoError(t, err)
	a, ok := reg.Find("export-sessions")
	require.True(t, ok)
	assert.Equal(t, registry.StatusCompleted, a.ImplementationStatus)
	assert.Equal(t, []string{"SESSION_QUERY_FAILED"}, a.ErrorCodes)
	assert.Equal(t, "object", a.InputSchema["type"])
}

func TestAdd_RejectsDuplicate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	args := []string{"add", "--path", path, "--id", "a", "--displayName", "A", "--description", "d", "--category", "c"}

	_, err := run(t, args...)
	require.NoError(t, err)
	_, err = run(t, args...)
	assert.ErrorContains(t, err, "already exists")
}

func TestAdd_RejectsBadVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")

	_, err := run(t, "add", "--path", path, "--id", "a", "--displayName", "A",
		"--description", "d", "--category", "c", "--version", "one")

	assert.ErrorContains(t, err, "registry would become invalid")
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "invalid registry is not written")
}

func TestValidate_ShippedRegistry(t *testing.T) {
	out, err := run(t, "validate", "--path", filepath.Join("..", "..", "..", "configs", "activity-registry.json"))
	require.NoError(t, err)
	assert.Contains(t, out, "Found 4 activities")
}

func TestUpdate_RequiresFlags(t *testing.T) {
	_, err := run(t, "update", "--id", "a")
	assert.Error(t, err)
}
