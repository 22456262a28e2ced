package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"pkt.systems/apicheck"
	"pkt.systems/pslog"
)

func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run <base_url> <test_file>",
		Short: "Execute a test suite against a base URL",
		Args:  cobra.ExactArgs(2),
		RunE:  runE,
	}

	addLoggingFlags(runCmd.Flags())
	runCmd.Flags().StringP("format", "f", "json", "Output format: json|text")
	runCmd.Flags().StringP("output", "o", "", "Write report to file instead of stdout (also accepts junit)")
	runCmd.Flags().Int("timeout", 30, "Per-request timeout seconds")
	runCmd.Flags().Bool("insecure", false, "Skip TLS verification")
	runCmd.Flags().String("cacert", "", "Path to custom CA certificate (PEM)")
	runCmd.Flags().Bool("noproxy", false, "Disable proxy (ignore environment)")

	return runCmd
}

func newLogger(structured bool, level string, flagSet bool, caller bool, w io.Writer) (pslog.Logger, error) {
	if w == nil {
		w = os.Stderr
	}

	var logger pslog.Logger
	opts := pslog.Options{CallerKeyval: caller}
	if structured {
		opts.Mode = pslog.ModeStructured
	}
	logger = pslog.NewWithOptions(w, opts)

	logger = logger.LogLevel(pslog.InfoLevel)

	if flagSet {
		if lvl, ok := pslog.ParseLevel(level); ok {
			return logger.LogLevel(lvl), nil
		}
		return nil, fmt.Errorf("unknown level %q", level)
	}

	if lvl, ok := pslog.LevelFromEnv("LOG_LEVEL"); ok {
		return logger.LogLevel(lvl), nil
	}
	if lvl, ok := pslog.ParseLevel(level); ok {
		return logger.LogLevel(lvl), nil
	}
	return logger, nil
}

func runE(cmd *cobra.Command, args []string) error {
	baseURL := args[0]
	suitePath := args[1]

	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")
	timeoutSec, _ := cmd.Flags().GetInt("timeout")
	insecure, _ := cmd.Flags().GetBool("insecure")
	cacert, _ := cmd.Flags().GetString("cacert")
	noProxy, _ := cmd.Flags().GetBool("noproxy")

	logger := loggerFromCmd(cmd)

	httpClient, err := buildHTTPClient(insecure, cacert, noProxy, time.Duration(timeoutSec)*time.Second)
	if err != nil {
		return fmt.Errorf("http client: %w", err)
	}

	chk, err := apicheck.New(context.Background(),
		apicheck.WithLogger(logger),
		apicheck.WithHTTPClient(httpClient),
		apicheck.WithTimeout(time.Duration(timeoutSec)*time.Second),
	)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}

	// A bad suite file is the only fatal error: exit code 1, no report.
	// Individual case failures are reported in the output and keep the
	// exit code at 0.
	run, err := chk.RunFile(cmd.Context(), suitePath, apicheck.RunOptions{BaseURL: baseURL})
	if err != nil {
		return err
	}

	logger.Info("summary",
		"passed", run.Passed,
		"failed", run.Failed,
		"pct", fmt.Sprintf("%.2f", run.SuccessPercentage()),
		"elapsed", run.TotalElapsed.String())

	return writeOutputs(cmd.OutOrStdout(), run, format, output, logger)
}

// writeOutputs renders the report to a file when -o is given, to
// stdout otherwise. A file write failure degrades to stdout rather
// than losing the report.
func writeOutputs(stdout io.Writer, run apicheck.SuiteRun, format, output string, logger pslog.Base) error {
	if output != "" {
		if err := apicheck.WriteReport(format, output, run); err != nil {
			logger.Error("report", "path", output, "err", err)
			return apicheck.Render(stdout, run, format)
		}
		return nil
	}
	return apicheck.Render(stdout, run, format)
}

func buildHTTPClient(insecure bool, cacert string, noProxy bool, timeout time.Duration) (*http.Client, error) {
	tlsConfig := &tls.Config{InsecureSkipVerify: insecure} //nolint:gosec // user opted in

	if cacert != "" {
		pemData, err := os.ReadFile(cacert)
		if err != nil {
			return nil, fmt.Errorf("read cacert: %w", err)
		}
		pool, err := x509.SystemCertPool()
		if err != nil {
			pool = x509.NewCertPool()
		}
		if ok := pool.AppendCertsFromPEM(pemData); !ok {
			return nil, fmt.Errorf("failed to append CA cert")
		}
		tlsConfig.RootCAs = pool
	}

	tr := &http.Transport{
		TLSClientConfig: tlsConfig,
	}
	if !noProxy {
		tr.Proxy = http.ProxyFromEnvironment
	}

	return &http.Client{
		Transport: tr,
		Timeout:   timeout,
	}, nil
}
