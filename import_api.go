package apicheck

import (
	"context"

	"pkt.systems/apicheck/internal/importer"
	"pkt.systems/pslog"
)

// ImportOptions control suite generation from external sources.
type ImportOptions struct {
	Source       string
	OutputFile   string
	Insecure     bool
	IncludePaths []string
	SheetName    string
	HeaderRows   int
	Logger       pslog.Logger
}

// ImportOpenAPI generates a suite file from an OpenAPI v3 document.
func ImportOpenAPI(ctx context.Context, opts ImportOptions) error {
	return importer.ImportOpenAPI(ctx, importer.Options{
		Source:       opts.Source,
		OutputFile:   opts.OutputFile,
		Insecure:     opts.Insecure,
		IncludePaths: opts.IncludePaths,
		Logger:       opts.Logger,
	})
}

// ImportExcel generates a suite file from an .xlsx workbook.
func ImportExcel(ctx context.Context, opts ImportOptions) error {
	return importer.ImportExcel(ctx, importer.Options{
		Source:     opts.Source,
		OutputFile: opts.OutputFile,
		SheetName:  opts.SheetName,
		HeaderRows: opts.HeaderRows,
		Logger:     opts.Logger,
	})
}
