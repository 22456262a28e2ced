// Package apicheck runs declarative HTTP/JSON API test suites.
//
// A suite is a JSON array (or YAML list) of test cases. Each case names
// a request to issue against a base URL and, optionally, assertions on
// the JSON response body: exact values per key, and/or type tags per
// key ("string", "int" or "float").
//
//	[
//	  {
//	    "name": "get user",
//	    "url": "/users/1",
//	    "method": "GET",
//	    "expected_response_values": {"id": 1},
//	    "expected_response_types": {"login": "string"}
//	  }
//	]
//
// Quick start:
//
//	chk, err := apicheck.New(ctx)
//	if err != nil {
//		return err
//	}
//	run, err := chk.RunFile(ctx, "tests.json", apicheck.RunOptions{
//		BaseURL: "https://api.example.com",
//	})
//	if err != nil {
//		return err // ParseError: bad suite file
//	}
//	apicheck.Render(os.Stdout, run, "text")
//
// Cases execute strictly in order. A case failure is folded into a
// FAILED TestResult and never aborts the run; the only errors RunFile
// returns are a ParseError from loading the suite or context
// cancellation. Suites can also be generated from OpenAPI documents or
// spreadsheets, see ImportOpenAPI and ImportExcel.
//
// Custom transports work the usual way:
//
//	chk, err := apicheck.New(ctx,
//		apicheck.WithHTTPClient(&http.Client{Transport: tr}),
//		apicheck.WithTimeout(10*time.Second),
//	)
//
// The SDK keeps concrete types unexported behind the APICheck
// interface; everything callers need is aliased into this package.
package apicheck
