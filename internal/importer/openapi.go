package importer

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"pkt.systems/pslog"

	"pkt.systems/apicheck/internal/suite"
)

// ImportOpenAPI generates a suite file from an OpenAPI v3 document.
// One test case is emitted per GET and POST operation; other verbs are
// skipped since the runner does not dispatch them. Request payloads
// come from the JSON media example where present, and type assertions
// are derived from scalar properties of the first 2xx JSON response
// schema.
func ImportOpenAPI(ctx context.Context, opts Options) error {
	var (
		data     []byte
		err      error
		location *url.URL
	)

	if isURL(opts.Source) {
		client := http.DefaultClient
		if opts.Insecure {
			client = insecureHTTPClient()
		}
		data, err = fetchWithClient(opts.Source, client)
		location, _ = url.Parse(opts.Source)
	} else {
		if !filepath.IsAbs(opts.Source) {
			if abs, errAbs := filepath.Abs(opts.Source); errAbs == nil {
				opts.Source = abs
			}
		}
		data, err = os.ReadFile(opts.Source)
		location = &url.URL{Path: filepath.ToSlash(opts.Source)}
	}
	if err != nil {
		return fmt.Errorf("load openapi source: %w", err)
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromDataWithPath(data, location)
	if err != nil {
		return fmt.Errorf("load openapi: %w", err)
	}

	log := opts.Logger
	if log == nil {
		log = pslog.NewWithOptions(os.Stderr, pslog.Options{Mode: pslog.ModeConsole, MinLevel: pslog.InfoLevel})
	}
	log = log.With("fn", pslog.CurrentFn())

	if verr := doc.Validate(ctx); verr != nil {
		log.Warn("import.openapi.validate.warn", "err", verr)
	}
	log.Info("import.openapi.start", "source", opts.Source, "output", opts.OutputFile, "paths", len(doc.Paths.Map()))

	var cases []suite.TestCase
	for _, route := range slices.Sorted(maps.Keys(doc.Paths.Map())) {
		if !shouldIncludePath(route, opts.IncludePaths) {
			continue
		}
		item := doc.Paths.Map()[route]
		ops := []struct {
			verb string
			op   *openapi3.Operation
		}{
			{http.MethodGet, item.Get},
			{http.MethodPost, item.Post},
		}
		for _, entry := range ops {
			if entry.op == nil {
				continue
			}
			tc := caseFromOperation(route, entry.verb, entry.op)
			cases = append(cases, tc)
			log.Debug("import.openapi.case", "name", *tc.Name, "method", entry.verb, "url", *tc.URL)
		}
	}

	if err := writeJSONFile(opts.OutputFile, cases); err != nil {
		return fmt.Errorf("write suite file: %w", err)
	}
	log.Info("import.openapi.done", "cases", len(cases), "output", opts.OutputFile)
	return nil
}

func caseFromOperation(route, verb string, op *openapi3.Operation) suite.TestCase {
	name := op.OperationID
	if name == "" {
		name = op.Summary
	}
	if name == "" {
		name = verb + " " + route
	}
	tc := suite.TestCase{
		Name:   strp(name),
		URL:    strp(substitutePathParams(route, op)),
		Method: strp(verb),
	}
	if verb == http.MethodPost {
		tc.Payload = requestExample(op)
	}
	if tags := responseTypeTags(op); len(tags) > 0 {
		tc.ExpectedTypes = tags
	}
	return tc
}

var pathParamRe = regexp.MustCompile(`\{([^}]+)\}`)

// substitutePathParams replaces {param} segments with the parameter's
// declared example value when one exists. Parameters without examples
// keep the placeholder so the user can fill it in.
func substitutePathParams(route string, op *openapi3.Operation) string {
	examples := map[string]string{}
	for _, pr := range op.Parameters {
		if pr == nil || pr.Value == nil || pr.Value.In != "path" {
			continue
		}
		example := pr.Value.Example
		if example == nil && pr.Value.Schema != nil && pr.Value.Schema.Value != nil {
			example = pr.Value.Schema.Value.Example
		}
		if example != nil {
			examples[pr.Value.Name] = fmt.Sprintf("%v", example)
		}
	}
	return pathParamRe.ReplaceAllStringFunc(route, func(m string) string {
		param := strings.Trim(m, "{}")
		if v, ok := examples[param]; ok {
			return v
		}
		return m
	})
}

// requestExample extracts a JSON request body example, if any.
func requestExample(op *openapi3.Operation) any {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	media := op.RequestBody.Value.Content.Get("application/json")
	if media == nil {
		return nil
	}
	if media.Example != nil {
		return media.Example
	}
	if media.Schema != nil && media.Schema.Value != nil && media.Schema.Value.Example != nil {
		return media.Schema.Value.Example
	}
	return nil
}

// responseTypeTags maps the scalar properties of the first 2xx JSON
// response schema onto type tags the runner can assert.
func responseTypeTags(op *openapi3.Operation) map[string]string {
	if op.Responses == nil {
		return nil
	}
	schema := successSchema(op)
	if schema == nil || !isType(schema, "object") {
		return nil
	}
	tags := map[string]string{}
	for prop, ref := range schema.Properties {
		if ref == nil || ref.Value == nil {
			continue
		}
		switch {
		case isType(ref.Value, "string"):
			tags[prop] = "string"
		case isType(ref.Value, "integer"):
			tags[prop] = "int"
		case isType(ref.Value, "number"):
			tags[prop] = "float"
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}

func successSchema(op *openapi3.Operation) *openapi3.Schema {
	codes := slices.Sorted(maps.Keys(op.Responses.Map()))
	// sorted order already puts "200" before other 2xx codes
	for _, code := range codes {
		if !strings.HasPrefix(code, "2") {
			continue
		}
		rr := op.Responses.Map()[code]
		if rr == nil || rr.Value == nil {
			continue
		}
		media := rr.Value.Content.Get("application/json")
		if media == nil || media.Schema == nil {
			continue
		}
		return media.Schema.Value
	}
	return nil
}
