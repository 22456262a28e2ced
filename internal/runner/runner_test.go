package runner

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pkt.systems/apicheck/internal/suite"
	"pkt.systems/pslog"
)

func testLogger() pslog.Base {
	return pslog.NewWithOptions(io.Discard, pslog.Options{})
}

func newChecker(t *testing.T) APICheck {
	t.Helper()
	chk, err := New(context.Background(), WithLogger(testLogger()))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return chk
}

func strp(s string) *string { return &s }

func getCase(name, url string) suite.TestCase {
	return suite.TestCase{Name: strp(name), URL: strp(url), Method: strp("GET")}
}

func TestRunPassingCase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id": 1}`)
	}))
	defer srv.Close()

	tc := getCase("t1", "/x")
	tc.ExpectedValues = map[string]any{"id": json.Number("1")}

	run, err := newChecker(t).Run(context.Background(), []suite.TestCase{tc}, RunOptions{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if run.Passed != 1 || run.Failed != 0 {
		t.Fatalf("expected 1 passed, got passed=%d failed=%d", run.Passed, run.Failed)
	}
	if run.SuccessPercentage() != 100 {
		t.Fatalf("expected 100%%, got %v", run.SuccessPercentage())
	}
	res := run.Results[0]
	if res.Status != StatusPassed || res.ErrorMsg != "" {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Elapsed <= 0 {
		t.Fatal("expected positive elapsed time")
	}
}

func TestRunValueMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"id": 2}`)
	}))
	defer srv.Close()

	tc := getCase("t1", "/x")
	tc.ExpectedValues = map[string]any{"id": json.Number("1")}

	run, err := newChecker(t).Run(context.Background(), []suite.TestCase{tc}, RunOptions{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if run.Failed != 1 {
		t.Fatalf("expected 1 failed, got %d", run.Failed)
	}
	msg := run.Results[0].ErrorMsg
	if msg != "Expected value '1' at key 'id' but got '2'." {
		t.Fatalf("unexpected error message %q", msg)
	}
}

func TestRunMissingKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"other": true}`)
	}))
	defer srv.Close()

	tc := getCase("t1", "/x")
	tc.ExpectedValues = map[string]any{"id": json.Number("1")}

	run, _ := newChecker(t).Run(context.Background(), []suite.TestCase{tc}, RunOptions{BaseURL: srv.URL})
	if run.Results[0].ErrorMsg != "Expected key 'id' not found." {
		t.Fatalf("unexpected message %q", run.Results[0].ErrorMsg)
	}
}

func TestRunTypeMismatchFloatForInt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"score": 3.14}`)
	}))
	defer srv.Close()

	tc := getCase("t1", "/x")
	tc.ExpectedTypes = map[string]string{"score": "int"}

	run, _ := newChecker(t).Run(context.Background(), []suite.TestCase{tc}, RunOptions{BaseURL: srv.URL})
	if run.Results[0].ErrorMsg != "Invalid type at key 'score'. Expected 'int' got 'float'." {
		t.Fatalf("unexpected message %q", run.Results[0].ErrorMsg)
	}
}

func TestRunNoAssertionsPasses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[1, 2, 3]`)
	}))
	defer srv.Close()

	run, _ := newChecker(t).Run(context.Background(), []suite.TestCase{getCase("t1", "/x")}, RunOptions{BaseURL: srv.URL})
	if run.Passed != 1 {
		t.Fatalf("expected any valid JSON to pass without assertions, got %+v", run.Results[0])
	}
}

func TestRunNonJSONResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<html>nope</html>`)
	}))
	defer srv.Close()

	run, _ := newChecker(t).Run(context.Background(), []suite.TestCase{getCase("t1", "/x")}, RunOptions{BaseURL: srv.URL})
	if run.Results[0].ErrorMsg != "Could not decode JSON from response." {
		t.Fatalf("unexpected message %q", run.Results[0].ErrorMsg)
	}
}

func TestRunNonObjectResponseWithAssertions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[1]`)
	}))
	defer srv.Close()

	tc := getCase("t1", "/x")
	tc.ExpectedValues = map[string]any{"id": json.Number("1")}

	run, _ := newChecker(t).Run(context.Background(), []suite.TestCase{tc}, RunOptions{BaseURL: srv.URL})
	if run.Results[0].ErrorMsg != "Expected key 'id' not found." {
		t.Fatalf("unexpected message %q", run.Results[0].ErrorMsg)
	}
}

func TestRunUnsupportedMethodContinues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	put := getCase("bad", "/x")
	put.Method = strp("PUT")
	cases := []suite.TestCase{put, getCase("good", "/y")}

	run, err := newChecker(t).Run(context.Background(), cases, RunOptions{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if run.Passed+run.Failed != len(cases) {
		t.Fatalf("passed+failed != N: %d+%d != %d", run.Passed, run.Failed, len(cases))
	}
	if run.Results[0].Status != StatusFailed {
		t.Fatal("expected PUT case to fail")
	}
	if run.Results[0].ErrorMsg != "Malformed test. Allowed methods are GET and POST" {
		t.Fatalf("unexpected message %q", run.Results[0].ErrorMsg)
	}
	if run.Results[1].Status != StatusPassed {
		t.Fatal("expected subsequent case to be unaffected")
	}
}

func TestRunMissingRequiredFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	cases := []suite.TestCase{
		{URL: strp("/x"), Method: strp("GET")},
		{Name: strp("nourl"), Method: strp("GET")},
		{Name: strp("nomethod"), URL: strp("/x")},
	}
	run, _ := newChecker(t).Run(context.Background(), cases, RunOptions{BaseURL: srv.URL})
	if run.Failed != 3 {
		t.Fatalf("expected all malformed cases to fail, got %d", run.Failed)
	}
	if run.Results[0].Name != "name not provided" {
		t.Fatalf("expected name fallback, got %q", run.Results[0].Name)
	}
	wants := []string{
		"Malformed test. Must provide 'name' in tests file.",
		"Malformed test. Must provide 'url' in tests file.",
		"Malformed test. Must provide 'method' in tests file.",
	}
	for i, want := range wants {
		if run.Results[i].ErrorMsg != want {
			t.Fatalf("case %d: got %q want %q", i, run.Results[i].ErrorMsg, want)
		}
	}
}

func TestRunPostDeliversPayload(t *testing.T) {
	var gotBody []byte
	var gotCT string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotCT = r.Header.Get("Content-Type")
		io.WriteString(w, `{"ok": true}`)
	}))
	defer srv.Close()

	tc := suite.TestCase{
		Name:    strp("create"),
		URL:     strp("/users"),
		Method:  strp("post"), // case-insensitive
		Payload: map[string]any{"login": "octocat"},
	}
	run, _ := newChecker(t).Run(context.Background(), []suite.TestCase{tc}, RunOptions{BaseURL: srv.URL})
	if run.Passed != 1 {
		t.Fatalf("expected pass, got %+v", run.Results[0])
	}
	if gotCT != "application/json" {
		t.Fatalf("expected JSON content type, got %q", gotCT)
	}
	if string(gotBody) != `{"login":"octocat"}` {
		t.Fatalf("unexpected body %q", gotBody)
	}
}

func TestRunPostWithoutPayloadSendsEmptyBody(t *testing.T) {
	var gotLen int64 = -1
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLen = r.ContentLength
		io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	tc := suite.TestCase{Name: strp("empty"), URL: strp("/x"), Method: strp("POST")}
	run, _ := newChecker(t).Run(context.Background(), []suite.TestCase{tc}, RunOptions{BaseURL: srv.URL})
	if run.Passed != 1 {
		t.Fatalf("expected pass, got %+v", run.Results[0])
	}
	if gotLen != 0 {
		t.Fatalf("expected empty body, got length %d", gotLen)
	}
}

func TestRunBaseURLConcatenation(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	run, _ := newChecker(t).Run(context.Background(), []suite.TestCase{getCase("t1", "/a/b")}, RunOptions{BaseURL: srv.URL})
	if run.Passed != 1 {
		t.Fatalf("expected pass, got %+v", run.Results[0])
	}
	if gotPath != "/a/b" {
		t.Fatalf("expected /a/b, got %q", gotPath)
	}
}

func TestRunTransportFailureIsFailedResult(t *testing.T) {
	// Server started then closed immediately: connection refused.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	run, err := newChecker(t).Run(context.Background(), []suite.TestCase{getCase("t1", "/x")}, RunOptions{BaseURL: base})
	if err != nil {
		t.Fatalf("transport failures must not abort the run: %v", err)
	}
	if run.Failed != 1 {
		t.Fatalf("expected failed result, got %+v", run)
	}
	if !strings.HasPrefix(run.Results[0].ErrorMsg, "HTTP request failed:") {
		t.Fatalf("unexpected message %q", run.Results[0].ErrorMsg)
	}
}

func TestRunCountsAndElapsed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"id": 1}`)
	}))
	defer srv.Close()

	pass := getCase("pass", "/x")
	pass.ExpectedValues = map[string]any{"id": json.Number("1")}
	fail := getCase("fail", "/x")
	fail.ExpectedValues = map[string]any{"id": json.Number("2")}

	run, err := newChecker(t).Run(context.Background(), []suite.TestCase{pass, fail}, RunOptions{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if run.Passed+run.Failed != 2 {
		t.Fatalf("passed+failed != N: %+v", run)
	}
	if run.SuccessPercentage() != 50 {
		t.Fatalf("expected 50%%, got %v", run.SuccessPercentage())
	}
	if run.TotalElapsed <= 0 {
		t.Fatal("expected positive total elapsed time")
	}
}

func TestRunContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run, err := newChecker(t).Run(ctx, []suite.TestCase{getCase("t1", "/x")}, RunOptions{BaseURL: "http://127.0.0.1:0"})
	if err == nil {
		t.Fatal("expected context error")
	}
	if len(run.Results) != 0 {
		t.Fatalf("expected no results, got %d", len(run.Results))
	}
}

func TestRunFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"id": 1}`)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "tests.json")
	content := `[{"name":"t1","url":"/x","method":"GET","expected_response_values":{"id":1}}]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write suite: %v", err)
	}

	run, err := newChecker(t).RunFile(context.Background(), path, RunOptions{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("run file: %v", err)
	}
	if run.Passed != 1 || run.Failed != 0 {
		t.Fatalf("unexpected run %+v", run)
	}
}

func TestRunFileParseErrorPropagates(t *testing.T) {
	_, err := newChecker(t).RunFile(context.Background(), filepath.Join(t.TempDir(), "absent.json"), RunOptions{})
	var perr *suite.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestNewNilContext(t *testing.T) {
	if _, err := New(nil); err == nil { //nolint:staticcheck
		t.Fatal("expected error on nil context")
	}
}
