package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"pkt.systems/apicheck/internal/importer"
)

func newImportCmd() *cobra.Command {
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Generate a test suite from other formats (openapi, excel)",
	}

	openapi := &cobra.Command{
		Use:   "openapi",
		Short: "Generate a suite from an OpenAPI v3 document",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromCmd(cmd)
			src, _ := cmd.Flags().GetString("source")
			outFile, _ := cmd.Flags().GetString("output-file")
			insecure, _ := cmd.Flags().GetBool("insecure")
			includePaths, _ := cmd.Flags().GetStringSlice("include-path")
			if src == "" {
				return fmt.Errorf("--source is required")
			}
			if outFile == "" {
				return fmt.Errorf("--output-file is required")
			}
			opts := importer.Options{
				Source:       src,
				OutputFile:   outFile,
				Insecure:     insecure,
				IncludePaths: includePaths,
				Logger:       logger,
			}
			return importer.ImportOpenAPI(context.Background(), opts)
		},
	}
	excel := &cobra.Command{
		Use:   "excel",
		Short: "Generate a suite from an .xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromCmd(cmd)
			src, _ := cmd.Flags().GetString("source")
			outFile, _ := cmd.Flags().GetString("output-file")
			sheet, _ := cmd.Flags().GetString("sheet")
			headerRows, _ := cmd.Flags().GetInt("header-rows")
			if src == "" {
				return fmt.Errorf("--source is required")
			}
			if outFile == "" {
				return fmt.Errorf("--output-file is required")
			}
			opts := importer.Options{
				Source:     src,
				OutputFile: outFile,
				SheetName:  sheet,
				HeaderRows: headerRows,
				Logger:     logger,
			}
			return importer.ImportExcel(context.Background(), opts)
		},
	}

	addLoggingFlags(importCmd.Flags())
	addLoggingFlags(openapi.Flags())
	addLoggingFlags(excel.Flags())

	for _, c := range []*cobra.Command{openapi, excel} {
		c.Flags().StringP("source", "s", "", "Path or URL to source file")
		c.Flags().StringP("output-file", "f", "", "Path of the suite JSON file to write")
	}
	openapi.Flags().Bool("insecure", false, "Skip TLS verification when fetching URL")
	openapi.Flags().StringSliceP("include-path", "i", nil, "Only import operations whose path starts with one of these prefixes (repeatable)")
	excel.Flags().String("sheet", "", "Worksheet name (default: first sheet)")
	excel.Flags().Int("header-rows", 1, "Number of header rows to skip")

	importCmd.AddCommand(openapi, excel)
	return importCmd
}
