package importer

import "pkt.systems/pslog"

// Options describes import settings for suite generation from external
// sources (OpenAPI documents or spreadsheets).
type Options struct {
	Source     string
	OutputFile string
	Insecure   bool
	// IncludePaths restricts OpenAPI import to routes equal to or
	// prefixed by one of the entries. Empty means all routes.
	IncludePaths []string
	// SheetName selects the worksheet for Excel import; empty means the
	// first sheet in the workbook.
	SheetName string
	// HeaderRows is the number of leading rows to skip in Excel import.
	// Zero means one header row.
	HeaderRows int
	Logger     pslog.Logger
}
