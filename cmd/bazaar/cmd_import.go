package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/bazaar/app/services"
	"github.com/shashiranjanraj/bazaar/pkg/database"
	"github.com/shashiranjanraj/bazaar/pkg/storage"
)

// bazaar import FILE — bulk-load products from a text or JSON file.
// Files ending in .json use the JSON array format, everything else the
// semicolon line format.
var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import products and stock from a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		storage.Connect()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		svc := services.NewImportService(database.DB)
		var report services.ImportReport
		if strings.HasSuffix(strings.ToLower(args[0]), ".json") {
			report, err = svc.ImportJSON(data, nil)
		} else {
			report, err = svc.ImportText(data, nil)
		}
		if err != nil {
			return err
		}

		fmt.Printf("Imported %d, skipped %d.\n", report.Added, report.Skipped)
		for _, re := range report.Errors {
			fmt.Printf("  line %d: %s\n", re.Line, re.Err)
		}
		if len(report.Errors) > 0 {
			return fmt.Errorf("%d rows failed", len(report.Errors))
		}
		return nil
	},
}
