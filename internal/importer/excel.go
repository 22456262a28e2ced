package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
	"pkt.systems/pslog"

	"pkt.systems/apicheck/internal/suite"
)

// Column layout expected in the worksheet:
//
//	A name | B method | C url | D payload | E expected values | F expected types
//
// Payload and the expected_* columns hold JSON literals; empty cells
// mean the field is absent.
const (
	colName = iota
	colMethod
	colURL
	colPayload
	colExpectedValues
	colExpectedTypes
)

// ImportExcel generates a suite file from an .xlsx workbook. Blank
// rows are skipped; rows with unparseable JSON cells abort the import
// with the offending row number.
func ImportExcel(ctx context.Context, opts Options) error {
	log := opts.Logger
	if log == nil {
		log = pslog.NewWithOptions(os.Stderr, pslog.Options{Mode: pslog.ModeConsole, MinLevel: pslog.InfoLevel})
	}
	log = log.With("fn", pslog.CurrentFn())

	f, err := excelize.OpenFile(opts.Source)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := opts.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	headerRows := opts.HeaderRows
	if headerRows <= 0 {
		headerRows = 1
	}
	if len(rows) > headerRows {
		rows = rows[headerRows:]
	} else {
		rows = nil
	}

	log.Info("import.excel.start", "source", opts.Source, "sheet", sheet, "rows", len(rows))

	cases := make([]suite.TestCase, 0, len(rows))
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		if rowIsBlank(row) {
			continue
		}
		tc, err := caseFromRow(row)
		if err != nil {
			return fmt.Errorf("row %d: %w", headerRows+i+1, err)
		}
		cases = append(cases, tc)
		log.Debug("import.excel.case", "name", *tc.Name, "method", *tc.Method, "url", *tc.URL)
	}

	if err := writeJSONFile(opts.OutputFile, cases); err != nil {
		return fmt.Errorf("write suite file: %w", err)
	}
	log.Info("import.excel.done", "cases", len(cases), "output", opts.OutputFile)
	return nil
}

func rowIsBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func caseFromRow(row []string) (suite.TestCase, error) {
	tc := suite.TestCase{}
	if v := cellAt(row, colName); v != "" {
		tc.Name = strp(v)
	}
	if v := cellAt(row, colMethod); v != "" {
		tc.Method = strp(strings.ToUpper(v))
	}
	if v := cellAt(row, colURL); v != "" {
		tc.URL = strp(v)
	}
	if v := cellAt(row, colPayload); v != "" {
		payload, err := decodeJSONCell(v)
		if err != nil {
			return tc, fmt.Errorf("payload: %w", err)
		}
		tc.Payload = payload
	}
	if v := cellAt(row, colExpectedValues); v != "" {
		var values map[string]any
		if err := decodeJSONCellInto(v, &values); err != nil {
			return tc, fmt.Errorf("expected values: %w", err)
		}
		tc.ExpectedValues = values
	}
	if v := cellAt(row, colExpectedTypes); v != "" {
		var types map[string]string
		if err := decodeJSONCellInto(v, &types); err != nil {
			return tc, fmt.Errorf("expected types: %w", err)
		}
		tc.ExpectedTypes = types
	}
	return tc, nil
}

func cellAt(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func decodeJSONCell(cell string) (any, error) {
	var v any
	if err := decodeJSONCellInto(cell, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func decodeJSONCellInto(cell string, v any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(cell)))
	dec.UseNumber()
	return dec.Decode(v)
}
