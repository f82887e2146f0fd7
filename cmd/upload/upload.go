// Package upload implements the file upload command.
package upload

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tphakala/pathotrack/internal/conf"
	"github.com/tphakala/pathotrack/internal/datastore"
	"github.com/tphakala/pathotrack/internal/gbif"
	"github.com/tphakala/pathotrack/internal/importer"
)

// Command creates the upload command for importing a spreadsheet file.
func Command(settings *conf.Settings) *cobra.Command {
	var entityType string

	cmd := &cobra.Command{
		Use:   "upload [file.xlsx|file.csv]",
		Short: "Import a spreadsheet into the record store",
		Long: `Import a multi-sheet workbook or a single-entity CSV file.
Workbook sheets are matched by name and processed in dependency order;
a CSV file requires the entity type to be named with --type.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(cmd, settings, args[0], entityType)
		},
	}

	cmd.Flags().StringVarP(&entityType, "type", "t", "", "Entity type of a CSV file: publication, dataset, host, pathogen or sequence")

	return cmd
}

func runUpload(cmd *cobra.Command, settings *conf.Settings, path, entityType string) error {
	store := datastore.New(settings)
	if store == nil {
		return fmt.Errorf("no database backend enabled in configuration")
	}
	if err := store.Open(); err != nil {
		return fmt.Errorf("opening record store: %w", err)
	}
	defer func() {
		_ = store.Close()
	}()

	client := gbif.NewClient(gbif.Config{
		BaseURL:     settings.GBIF.BaseURL,
		Timeout:     settings.GBIF.Timeout,
		CacheTTL:    settings.GBIF.CacheTTL,
		RateLimitMS: settings.GBIF.RateLimitMS,
	})
	defer client.Close()
	resolver := gbif.NewResolver(client, settings.GBIF.MinConfidence)

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	imp := importer.New(store, resolver)
	run := importer.NewRun(settings.Import.Verbose)

	isWorkbook := false
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		isWorkbook = true
	case ".csv":
		if entityType == "" {
			return fmt.Errorf("--type is required for CSV uploads")
		}
	default:
		return fmt.Errorf("unsupported file type: %s", path)
	}

	ctx := cmd.Context()
	if isWorkbook {
		for line := range imp.ImportWorkbook(ctx, f, run) {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
	} else {
		for line := range imp.ImportCSV(ctx, f, entityType, run) {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
	}

	return run.Err()
}
