package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"pkt.systems/apicheck/internal/suite"
	"pkt.systems/pslog"
)

const defaultTimeout = 30 * time.Second

// nameFallback is reported when a failing case carries no name field.
const nameFallback = "name not provided"

// checker implements APICheck.
type checker struct {
	logger     pslog.Base
	httpClient *http.Client
	timeout    time.Duration
}

type checkerConfig struct {
	logger     pslog.Base
	httpClient *http.Client
	timeout    time.Duration
}

// New constructs an APICheck instance with optional configuration.
func New(ctx context.Context, opts ...Option) (APICheck, error) {
	if ctx == nil {
		return nil, errors.New("nil context")
	}
	cfg := checkerConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = pslog.New(os.Stderr)
	}
	if cfg.httpClient == nil {
		cfg.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if cfg.timeout == 0 {
		cfg.timeout = defaultTimeout
	}
	c := &checker{
		logger:     cfg.logger,
		httpClient: cfg.httpClient,
		timeout:    cfg.timeout,
	}
	return c, nil
}

// RunFile loads a suite file and executes it.
func (c *checker) RunFile(ctx context.Context, path string, opts RunOptions) (SuiteRun, error) {
	cases, err := suite.Load(path)
	if err != nil {
		return SuiteRun{}, err
	}
	return c.Run(ctx, cases, opts)
}

// Run executes all cases strictly in order. A case failure never
// affects subsequent cases and never aborts the run; the only error
// returned is context cancellation, with the partial run alongside it.
func (c *checker) Run(ctx context.Context, cases []suite.TestCase, opts RunOptions) (SuiteRun, error) {
	logger := c.logger
	if opts.Logger != nil {
		logger = opts.Logger
	}
	client := c.httpClient
	if opts.HTTPClient != nil {
		client = opts.HTTPClient
	}
	timeout := c.timeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}

	run := SuiteRun{Results: make([]TestResult, 0, len(cases))}
	start := time.Now()

	for _, tc := range cases {
		if err := ctx.Err(); err != nil {
			run.TotalElapsed = time.Since(start)
			return run, err
		}
		res := c.runCase(ctx, tc, opts.BaseURL, client, timeout)
		run.Results = append(run.Results, res)
		if res.Status == StatusPassed {
			run.Passed++
			logger.Info("pass", "name", res.Name, "status", res.HTTPStatus, "dur", res.Elapsed.String())
		} else {
			run.Failed++
			logger.Error("fail", "name", res.Name, "status", res.HTTPStatus, "dur", res.Elapsed.String(), "err", res.ErrorMsg)
		}
	}

	run.TotalElapsed = time.Since(start)
	return run, nil
}

// runCase times one case and folds any pipeline error into a FAILED
// result. Elapsed time is recorded whether the case passed or not.
func (c *checker) runCase(ctx context.Context, tc suite.TestCase, baseURL string, client *http.Client, timeout time.Duration) TestResult {
	start := time.Now()
	httpStatus, err := c.execute(ctx, tc, baseURL, client, timeout)
	elapsed := time.Since(start)

	name := nameFallback
	if tc.Name != nil {
		name = *tc.Name
	}
	res := TestResult{Name: name, Status: StatusPassed, Elapsed: elapsed, HTTPStatus: httpStatus}
	if err != nil {
		res.Status = StatusFailed
		res.ErrorMsg = err.Error()
	}
	return res
}

// execute is the short-circuiting validation pipeline for one case:
// resolve required fields, dispatch the request, decode the body, run
// value checks, run type checks. The first failure wins.
func (c *checker) execute(ctx context.Context, tc suite.TestCase, baseURL string, client *http.Client, timeout time.Duration) (int, error) {
	if tc.Name == nil {
		return 0, &MalformedTestError{MissingKey: "name"}
	}
	if tc.URL == nil {
		return 0, &MalformedTestError{MissingKey: "url"}
	}
	if tc.Method == nil {
		return 0, &MalformedTestError{MissingKey: "method"}
	}

	// Plain concatenation: the suite author owns the slashes.
	target := baseURL + *tc.URL

	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctxTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		req *http.Request
		err error
	)
	switch strings.ToUpper(*tc.Method) {
	case http.MethodGet:
		req, err = http.NewRequestWithContext(ctxTimeout, http.MethodGet, target, nil)
	case http.MethodPost:
		var body io.Reader = http.NoBody
		if tc.Payload != nil {
			payload, merr := json.Marshal(tc.Payload)
			if merr != nil {
				return 0, &MalformedTestError{Reason: fmt.Sprintf("Cannot encode payload: %v.", merr)}
			}
			body = bytes.NewReader(payload)
		}
		req, err = http.NewRequestWithContext(ctxTimeout, http.MethodPost, target, body)
		if err == nil && tc.Payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
	default:
		return 0, &MalformedTestError{Reason: "Allowed methods are GET and POST"}
	}
	if err != nil {
		return 0, &RequestError{Err: err}
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, &RequestError{Err: err}
	}
	defer resp.Body.Close()

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var body any
	if err := dec.Decode(&body); err != nil {
		return resp.StatusCode, &ResponseDecodeError{Err: err}
	}

	// A case with no assertions passes on any valid JSON response.
	if len(tc.ExpectedValues) == 0 && len(tc.ExpectedTypes) == 0 {
		return resp.StatusCode, nil
	}

	respMap, ok := body.(map[string]any)
	if !ok {
		// A non-object response cannot hold any expected key.
		return resp.StatusCode, &KeyNotFoundError{Key: firstExpectedKey(tc)}
	}
	if err := checkValues(tc.ExpectedValues, respMap); err != nil {
		return resp.StatusCode, err
	}
	if err := checkTypes(tc.ExpectedTypes, respMap); err != nil {
		return resp.StatusCode, err
	}
	return resp.StatusCode, nil
}

func firstExpectedKey(tc suite.TestCase) string {
	if keys := sortedKeys(tc.ExpectedValues); len(keys) > 0 {
		return keys[0]
	}
	keys := sortedKeys(tc.ExpectedTypes)
	if len(keys) > 0 {
		return keys[0]
	}
	return ""
}
