package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/bizdesk/internal/adapter/input"
	"github.com/jmylchreest/bizdesk/internal/toast"
)

var importFormat string

var clientImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import clients from a JSON or YAML file",
	Long: `Import clients from a JSON array or YAML sequence of records.

Reads standard input when no file (or "-") is given. The output of
"bizdesk client list --format json|yaml" is accepted. Records that fail
validation or duplicate an existing name are reported and skipped.`,
	Example: `  bizdesk client list --format json > clients.json
  bizdesk client import clients.json
  cat clients.yaml | bizdesk client import --input-format yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClientImport,
}

func init() {
	clientCmd.AddCommand(clientImportCmd)
	clientImportCmd.Flags().StringVar(&importFormat, "input-format", "",
		"Input format (json, yaml; detected when empty)")
}

func runClientImport(cmd *cobra.Command, args []string) error {
	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening import file: %w", err)
		}
		defer f.Close()
		r = f
	}

	adapter, err := input.NewAdapter(importFormat, r)
	if err != nil {
		return err
	}

	records, err := adapter.Import(cmd.Context())
	if err != nil {
		return toast.Fail(cmd.Context(), err, "Could not read the import file.")
	}

	imported := 0
	for _, rec := range records {
		if _, err := clients.Create(cmd.Context(), rec); err != nil {
			logger.Debug("skipping import record", "name", rec.Name, "error", err)
			continue
		}
		imported++
	}

	logger.Info("import complete", "adapter", adapter.Name(), "imported", imported, "total", len(records))
	toast.Info(cmd.Context(), fmt.Sprintf("Imported %d of %d clients.", imported, len(records)))
	return nil
}
