package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"pkt.systems/apicheck/internal/suite"
)

const sampleOpenAPI = `{
  "openapi": "3.0.0",
  "info": {"title": "sample", "version": "1.0"},
  "paths": {
    "/users/{id}": {
      "get": {
        "operationId": "getUser",
        "parameters": [
          {"name": "id", "in": "path", "required": true, "example": 1, "schema": {"type": "integer"}}
        ],
        "responses": {
          "200": {
            "description": "ok",
            "content": {
              "application/json": {
                "schema": {
                  "type": "object",
                  "properties": {
                    "id": {"type": "integer"},
                    "login": {"type": "string"},
                    "score": {"type": "number"}
                  }
                }
              }
            }
          }
        }
      }
    },
    "/users": {
      "post": {
        "operationId": "createUser",
        "requestBody": {
          "content": {
            "application/json": {"example": {"login": "octocat"}}
          }
        },
        "responses": {"201": {"description": "created"}}
      },
      "delete": {
        "operationId": "purgeUsers",
        "responses": {"204": {"description": "gone"}}
      }
    }
  }
}`

func importSample(t *testing.T, opts Options) []suite.TestCase {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "openapi.json")
	if err := os.WriteFile(src, []byte(sampleOpenAPI), 0o644); err != nil {
		t.Fatalf("write spec: %v", err)
	}
	out := filepath.Join(dir, "tests.json")
	opts.Source = src
	opts.OutputFile = out
	if err := ImportOpenAPI(context.Background(), opts); err != nil {
		t.Fatalf("import: %v", err)
	}
	cases, err := suite.Load(out)
	if err != nil {
		t.Fatalf("load generated suite: %v", err)
	}
	return cases
}

func TestImportOpenAPIGeneratesCases(t *testing.T) {
	cases := importSample(t, Options{})

	// Routes sorted: /users (post only, delete skipped), /users/{id} (get).
	if len(cases) != 2 {
		t.Fatalf("expected 2 cases (delete skipped), got %d", len(cases))
	}

	post := cases[0]
	if *post.Name != "createUser" || *post.Method != "POST" || *post.URL != "/users" {
		t.Fatalf("unexpected post case %+v", post)
	}
	payload, ok := post.Payload.(map[string]any)
	if !ok || payload["login"] != "octocat" {
		t.Fatalf("expected request example as payload, got %v", post.Payload)
	}

	get := cases[1]
	if *get.Name != "getUser" || *get.Method != "GET" {
		t.Fatalf("unexpected get case %+v", get)
	}
	if *get.URL != "/users/1" {
		t.Fatalf("expected path param substituted from example, got %q", *get.URL)
	}
	want := map[string]string{"id": "int", "login": "string", "score": "float"}
	if len(get.ExpectedTypes) != len(want) {
		t.Fatalf("unexpected type tags %v", get.ExpectedTypes)
	}
	for k, v := range want {
		if get.ExpectedTypes[k] != v {
			t.Fatalf("tag %s: got %q want %q", k, get.ExpectedTypes[k], v)
		}
	}
}

func TestImportOpenAPIIncludePaths(t *testing.T) {
	cases := importSample(t, Options{IncludePaths: []string{"/users/{id}"}})
	if len(cases) != 1 {
		t.Fatalf("expected 1 case after filtering, got %d", len(cases))
	}
	if *cases[0].Name != "getUser" {
		t.Fatalf("unexpected case %+v", cases[0])
	}
}

func TestImportOpenAPIBadSource(t *testing.T) {
	err := ImportOpenAPI(context.Background(), Options{
		Source:     filepath.Join(t.TempDir(), "absent.json"),
		OutputFile: filepath.Join(t.TempDir(), "out.json"),
	})
	if err == nil {
		t.Fatal("expected error for missing source")
	}
}
