package suite

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// TestCase is one declarative HTTP request plus its response
// assertions. The name, url and method fields are required by the
// engine but their presence is only checked at execution time, which
// is why they are pointers: a nil field means the key was absent from
// the suite file.
type TestCase struct {
	Name   *string `json:"name,omitempty" yaml:"name,omitempty"`
	URL    *string `json:"url,omitempty" yaml:"url,omitempty"`
	Method *string `json:"method,omitempty" yaml:"method,omitempty"`
	// Payload is sent as the JSON body of a POST; nil means an empty POST.
	Payload any `json:"payload,omitempty" yaml:"payload,omitempty"`
	// ExpectedValues maps response keys to literal JSON values that must
	// compare equal.
	ExpectedValues map[string]any `json:"expected_response_values,omitempty" yaml:"expected_response_values,omitempty"`
	// ExpectedTypes maps response keys to a type tag: string, int or float.
	ExpectedTypes map[string]string `json:"expected_response_types,omitempty" yaml:"expected_response_types,omitempty"`
}

// ParseError reports a suite file that could not be loaded: absent,
// unreadable, or not a valid JSON/YAML array of cases. It is fatal to
// the whole run; the caller decides exit behavior.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing suite %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Load parses the file at path into test cases. JSON is the native
// format; files ending in .yaml/.yml are accepted with the same shape.
// No schema validation happens here: required fields are resolved
// lazily, per case, by the engine.
func Load(path string) ([]TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return loadYAML(path, data)
	default:
		return loadJSON(path, data)
	}
}

func loadJSON(path string, data []byte) ([]TestCase, error) {
	// UseNumber keeps numeric literals as json.Number so the engine can
	// tell 1 from 1.0 when running type checks.
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var cases []TestCase
	if err := dec.Decode(&cases); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if dec.More() {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("trailing data after test array")}
	}
	return cases, nil
}

func loadYAML(path string, data []byte) ([]TestCase, error) {
	var cases []TestCase
	if err := yaml.Unmarshal(data, &cases); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	for i := range cases {
		cases[i].Payload = normalizeYAMLValue(cases[i].Payload)
		for k, v := range cases[i].ExpectedValues {
			cases[i].ExpectedValues[k] = normalizeYAMLValue(v)
		}
	}
	return cases, nil
}

// normalizeYAMLValue rewrites yaml.v3 scalar types into the shapes the
// JSON decoder produces, so the engine sees a single numeric
// representation regardless of the suite format. Whole-valued YAML
// floats (1.0) collapse to their integer literal; the int/float tag
// distinction is only fully preserved in JSON suites.
func normalizeYAMLValue(v any) any {
	switch t := v.(type) {
	case int:
		return json.Number(strconv.Itoa(t))
	case int64:
		return json.Number(strconv.FormatInt(t, 10))
	case uint64:
		return json.Number(strconv.FormatUint(t, 10))
	case float64:
		return json.Number(strconv.FormatFloat(t, 'g', -1, 64))
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeYAMLValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeYAMLValue(val)
		}
		return out
	default:
		return v
	}
}
