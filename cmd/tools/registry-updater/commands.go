// cmd/tools/registry-updater/commands.go
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"sizing-workers/pkg/registry"
)

const defaultRegistryPath = "configs/activity-registry.json"

func newRootCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:          "registry-updater",
		Short:        "Maintain the activity registry",
		Long:         "Adds, updates, lists and validates the Zeebe activities declared in the activity registry.",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&path, "path", defaultRegistryPath, "path to registry file")

	cmd.AddCommand(
		newAddCmd(&path),
		newUpdateCmd(&path),
		newValidateCmd(&path),
		newListCmd(&path),
	)
	return cmd
}

type addOptions struct {
	id, displayName, description, category, taskType string
	version, status, timeout                         string
	inputSchema, outputSchema                        string
	errorCodes                                       []string
	retries                                          int
}

func newAddCmd(path *string) *cobra.Command {
	var opts addOptions

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new activity to the registry",
		Example: `  registry-updater add --id calculate-size --displayName "Calculate Size" \
    --description "Matches measurements against size tables" --category sizing \
    --inputSchema schemas/calculate-size.json --errorCodes INVALID_MEASUREMENT_INPUT,CATALOG_UNAVAILABLE`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAdd(cmd, *path, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.id, "id", "", "activity ID (e.g., calculate-size)")
	f.StringVar(&opts.displayName, "displayName", "", "display name")
	f.StringVar(&opts.description, "description", "", "description")
	f.StringVar(&opts.category, "category", "", "category (e.g., sizing)")
	f.StringVar(&opts.taskType, "taskType", "", "Zeebe task type (defaults to id)")
	f.StringVar(&opts.version, "version", "1.0.0", "semantic version")
	f.StringVar(&opts.status, "status", registry.StatusPlanned, "implementation status (planned, in-progress, completed, verified)")
	f.StringVar(&opts.timeout, "timeout", "10s", "job timeout")
	f.IntVar(&opts.retries, "retries", 3, "job retries")
	f.StringVar(&opts.inputSchema, "inputSchema", "", "JSON schema file for the job variables")
	f.StringVar(&opts.outputSchema, "outputSchema", "", "JSON schema file for the job result")
	f.StringSliceVar(&opts.errorCodes, "errorCodes", nil, "BPMN error codes")
	for _, name := range []string{"id", "displayName", "description", "category"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func runAdd(cmd *cobra.Command, path string, opts addOptions) error {
	if opts.taskType == "" {
		opts.taskType = opts.id
	}

	in, err := readSchema(opts.inputSchema)
	if err != nil {
		return err
	}
	out, err := readSchema(opts.outputSchema)
	if err != nil {
		return err
	}

	reg, err := registry.LoadRegistry(path)
	if errors.Is(err, fs.ErrNotExist) {
		reg, err = registry.New(), nil
	}
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	errorCodes := opts.errorCodes
	if errorCodes == nil {
		errorCodes = []string{}
	}

	activity := registry.Activity{
		ID:                   opts.id,
		DisplayName:          opts.displayName,
		Description:          opts.description,
		Category:             opts.category,
		Version:              opts.version,
		TaskType:             opts.taskType,
		ImplementationStatus: opts.status,
		InputSchema:          in,
		OutputSchema:         out,
		ErrorCodes:           errorCodes,
		Timeout:              opts.timeout,
		Retries:              opts.retries,
		Workflows:            []string{},
		Tags:                 []string{},
	}
	if err := reg.Add(activity); err != nil {
		return err
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("registry would become invalid: %w", err)
	}
	if err := reg.Save(path); err != nil {
		return err
	}

	cmd.Printf("Added activity: %s\n", opts.id)
	return nil
}

func newUpdateCmd(path *string) *cobra.Command {
	var id, field, value string

	cmd := &cobra.Command{
		Use:     "update",
		Short:   "Update a field of an existing activity",
		Example: "  registry-updater update --id calculate-size --field status --value completed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(*path)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			if err := reg.Update(id, field, value); err != nil {
				return err
			}
			if err := reg.Save(*path); err != nil {
				return err
			}
			cmd.Printf("Updated activity %s, field %s to %s\n", id, field, value)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "activity ID to update")
	cmd.Flags().StringVar(&field, "field", "", "field to update (status, version, timeout, retries, ...)")
	cmd.Flags().StringVar(&value, "value", "", "new value for the field")
	for _, name := range []string{"id", "field", "value"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newValidateCmd(path *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the registry file, including its JSON schemas",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(*path)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			if err := reg.Validate(); err != nil {
				return fmt.Errorf("registry validation failed:\n  %s", strings.ReplaceAll(err.Error(), "; ", "\n  "))
			}
			cmd.Printf("Registry validation passed. Found %d activities.\n", len(reg.Activities))
			return nil
		},
	}
}

func newListCmd(path *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered activities",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(*path)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			for _, a := range reg.Activities {
				cmd.Printf("%-28s %-10s %-12s timeout=%s retries=%d\n",
					a.TaskType, a.Category, a.ImplementationStatus, a.Timeout, a.Retries)
			}
			return nil
		},
	}
}

func readSchema(path string) (map[string]interface{}, error) {
	schema := map[string]interface{}{}
	if path == "" {
		return schema, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("failed to parse schema %s: %w", path, err)
	}
	return schema, nil
}
