package apicheck

import (
	"context"

	"pkt.systems/apicheck/internal/runner"
	"pkt.systems/apicheck/internal/suite"
	"pkt.systems/version"
)

// Public type aliases to the internal packages

// APICheck exposes methods to run declarative test suites.
type (
	APICheck = runner.APICheck
	// RunOptions configure a single run invocation.
	RunOptions = runner.RunOptions
	// TestCase is one declarative request plus its assertions.
	TestCase = suite.TestCase
	// TestResult captures the outcome of a single case.
	TestResult = runner.TestResult
	// SuiteRun aggregates results and statistics from one run.
	SuiteRun = runner.SuiteRun
	// Status is PASSED or FAILED.
	Status = runner.Status
	// TypeTag is the closed set of assertable response value types.
	TypeTag = runner.TypeTag
)

// Error taxonomy aliases. The engine folds per-case errors into FAILED
// results; ParseError is the only one callers ever see returned.
type (
	ParseError          = suite.ParseError
	MalformedTestError  = runner.MalformedTestError
	RequestError        = runner.RequestError
	ResponseDecodeError = runner.ResponseDecodeError
	KeyNotFoundError    = runner.KeyNotFoundError
	ValueMismatchError  = runner.ValueMismatchError
	TypeMismatchError   = runner.TypeMismatchError
)

const (
	StatusPassed = runner.StatusPassed
	StatusFailed = runner.StatusFailed
)

// Option tweaks checker construction.
type Option = runner.Option

var (
	// WithLogger supplies a custom pslog logger.
	WithLogger = runner.WithLogger
	// WithHTTPClient injects a custom HTTP client.
	WithHTTPClient = runner.WithHTTPClient
	// WithTimeout sets the default per-request timeout.
	WithTimeout = runner.WithTimeout
)

// New constructs an APICheck instance.
func New(ctx context.Context, opts ...Option) (APICheck, error) {
	return runner.New(ctx, opts...)
}

// LoadSuite parses a suite file (JSON array of cases, or a YAML list
// for .yaml/.yml paths) into test cases.
func LoadSuite(path string) ([]TestCase, error) {
	return suite.Load(path)
}

// Version returns the current module version (best effort).
func Version() string {
	return moduleVersion(modulePath)
}

const modulePath = "pkt.systems/apicheck"

var moduleVersion = version.ModuleVersion
