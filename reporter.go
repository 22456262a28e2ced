package apicheck

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// reportSummary is the summary block of the JSON report.
type reportSummary struct {
	Passed            int     `json:"passed"`
	Failed            int     `json:"failed"`
	SuccessPercentage float64 `json:"success_percentage"`
	TotalElapsedTime  float64 `json:"total_elapsed_time"`
}

// reportResult is one test_results entry of the JSON report. ErrorMsg
// is present only for FAILED cases.
type reportResult struct {
	Name        string  `json:"name"`
	Status      Status  `json:"status"`
	ElapsedTime float64 `json:"elapsed_time"`
	ErrorMsg    string  `json:"error_msg,omitempty"`
}

type report struct {
	Summary     reportSummary  `json:"summary"`
	TestResults []reportResult `json:"test_results"`
}

func buildReport(run SuiteRun) report {
	rep := report{
		Summary: reportSummary{
			Passed:            run.Passed,
			Failed:            run.Failed,
			SuccessPercentage: run.SuccessPercentage(),
			TotalElapsedTime:  run.TotalElapsed.Seconds(),
		},
		TestResults: make([]reportResult, 0, len(run.Results)),
	}
	for _, res := range run.Results {
		rr := reportResult{
			Name:        res.Name,
			Status:      res.Status,
			ElapsedTime: res.Elapsed.Seconds(),
		}
		if res.Status == StatusFailed {
			rr.ErrorMsg = res.ErrorMsg
		}
		rep.TestResults = append(rep.TestResults, rr)
	}
	return rep
}

// RenderJSON writes the run as an indented JSON document.
func RenderJSON(w io.Writer, run SuiteRun) error {
	data, err := json.MarshalIndent(buildReport(run), "", "    ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// RenderText writes the run as a fixed-layout human-readable report:
// a summary block between banners, then one block per test case.
func RenderText(w io.Writer, run SuiteRun) error {
	_, err := fmt.Fprintf(w, "***\nTEST SUMMARY\n------------\nTests passed: %d\nTests failed: %d\nSuccess percentage : %.2f%%\nTotal elapsed time: %.3f seconds\n***\n",
		run.Passed, run.Failed, run.SuccessPercentage(), run.TotalElapsed.Seconds())
	if err != nil {
		return err
	}
	for _, res := range run.Results {
		if _, err := fmt.Fprintf(w, "%s\n\tStatus:%s\n\tElapsed time: %f\n", res.Name, res.Status, res.Elapsed.Seconds()); err != nil {
			return err
		}
		if res.Status == StatusFailed {
			if _, err := fmt.Fprintf(w, "\tError message: %s\n", res.ErrorMsg); err != nil {
				return err
			}
		}
	}
	return nil
}

// Render writes the run to w in the requested format ("json" or
// "text", case-insensitive; empty means json). Rendering is
// deterministic: the same run renders to byte-identical output.
func Render(w io.Writer, run SuiteRun, format string) error {
	switch strings.ToLower(format) {
	case "json", "":
		return RenderJSON(w, run)
	case "text":
		return RenderText(w, run)
	default:
		return fmt.Errorf("unknown format %s", format)
	}
}

// Minimal JUnit reporter for CI compatibility.
type junitTestsuite struct {
	XMLName  xml.Name        `xml:"testsuite"`
	Name     string          `xml:"name,attr"`
	Tests    int             `xml:"tests,attr"`
	Failures int             `xml:"failures,attr"`
	Time     string          `xml:"time,attr"`
	Cases    []junitTestcase `xml:"testcase"`
}

type junitTestcase struct {
	Name    string        `xml:"name,attr"`
	Time    string        `xml:"time,attr"`
	Failure *junitFailure `xml:"failure,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// WriteReportJUnit writes a SuiteRun to JUnit XML for CI consumers.
func WriteReportJUnit(path string, run SuiteRun) error {
	ts := junitTestsuite{
		Name:     "apicheck",
		Tests:    len(run.Results),
		Failures: run.Failed,
		Time:     fmt.Sprintf("%.3f", run.TotalElapsed.Seconds()),
	}
	for _, res := range run.Results {
		tc := junitTestcase{
			Name: res.Name,
			Time: fmt.Sprintf("%.3f", res.Elapsed.Seconds()),
		}
		if res.Status == StatusFailed {
			tc.Failure = &junitFailure{
				Message: res.ErrorMsg,
				Type:    "assertion",
				Body:    res.ErrorMsg,
			}
		}
		ts.Cases = append(ts.Cases, tc)
	}
	data, err := xml.MarshalIndent(ts, "", "  ")
	if err != nil {
		return err
	}
	data = append([]byte(xml.Header), data...)
	return os.WriteFile(path, data, 0o644)
}

// WriteReport picks the reporter function by format and writes to a
// file at path.
func WriteReport(format, path string, run SuiteRun) error {
	switch strings.ToLower(format) {
	case "json", "", "text":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return Render(f, run, format)
	case "junit":
		return WriteReportJUnit(path, run)
	default:
		return fmt.Errorf("unknown format %s", format)
	}
}
