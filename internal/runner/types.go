package runner

import (
	"context"
	"net/http"
	"time"

	"pkt.systems/apicheck/internal/suite"
	"pkt.systems/pslog"
)

// APICheck is the public interface exposed by this module. It is safe
// to hold and use concurrently from multiple goroutines; each call to
// Run owns the SuiteRun it produces.
type APICheck interface {
	Run(ctx context.Context, cases []suite.TestCase, opts RunOptions) (SuiteRun, error)
	RunFile(ctx context.Context, path string, opts RunOptions) (SuiteRun, error)
}

// RunOptions controls execution of one suite run.
type RunOptions struct {
	// BaseURL is prepended verbatim to every case's url field; no slash
	// normalization is applied.
	BaseURL    string
	HTTPClient *http.Client
	Logger     pslog.Base
	Timeout    time.Duration // per request timeout; 0 means default (30s)
}

// Status is the outcome of one executed test case.
type Status string

const (
	StatusPassed Status = "PASSED"
	StatusFailed Status = "FAILED"
)

// TestResult captures the outcome of a single test case. Immutable
// once appended to a SuiteRun.
type TestResult struct {
	Name    string
	Status  Status
	Elapsed time.Duration
	// ErrorMsg holds the first failure's message; empty when PASSED.
	ErrorMsg string
	// HTTPStatus is the last response status seen, 0 when the request
	// never completed. It is logged but never asserted on.
	HTTPStatus int
}

// SuiteRun aggregates the results of executing an ordered sequence of
// test cases once. Result order matches case order. A new run replaces
// the previous one entirely; no history is kept.
type SuiteRun struct {
	Results []TestResult
	Passed  int
	Failed  int
	// TotalElapsed is the wall-clock span of the whole batch, measured
	// independently of the per-case timers.
	TotalElapsed time.Duration
}

// SuccessPercentage is passed/(passed+failed)*100, defined as 0 when
// nothing ran.
func (s SuiteRun) SuccessPercentage() float64 {
	total := s.Passed + s.Failed
	if total == 0 {
		return 0
	}
	return float64(s.Passed) / float64(total) * 100
}

// Option modifies an APICheck instance at construction time.
type Option func(*checkerConfig)

// WithLogger overrides the default logger (pslog console on stderr).
func WithLogger(logger pslog.Base) Option {
	return func(cc *checkerConfig) { cc.logger = logger }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(cc *checkerConfig) { cc.httpClient = client }
}

// WithTimeout sets the default per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(cc *checkerConfig) { cc.timeout = timeout }
}
