package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frankie567/openapi-tools/internal/config"
)

const baseDoc = `
openapi: 3.0.3
info: {title: Shop, version: 1.0.0}
paths:
  /items:
    get:
      tags: [items]
      summary: List items
      responses:
        '200':
          description: ok
          content:
            application/json:
              schema: {$ref: '#/components/schemas/Item'}
components:
  schemas:
    Item:
      type: object
      properties:
        id: {type: string}
        parent: {$ref: '#/components/schemas/Item'}
        maker: {$ref: '#/components/schemas/Maker'}
`

const headDoc = `
openapi: 3.0.3
info: {title: Shop, version: 1.1.0}
paths:
  /items:
    get:
      tags: [items]
      summary: List items
      responses:
        '200':
          description: ok
  /items/{id}:
    delete:
      parameters:
        - {name: id, in: path, required: true, schema: {type: string}}
      responses:
        '204': {description: gone}
components:
  schemas:
    Item:
      type: object
      properties:
        id: {type: string}
`

func writeDoc(t *testing.T, name, doc string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(doc), 0o644))
	return p
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{config.EnvConfig, config.EnvSpec, config.EnvSpecFile, config.EnvSpecURL, config.EnvDebug} {
		t.Setenv(k, "")
	}
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestVersion(t *testing.T) {
	code, out, _ := runCLI(t, "version")
	assert.Equal(t, 0, code)
	assert.Equal(t, "openapi-tools dev\n", out)
}

func TestHelp(t *testing.T) {
	code, out, _ := runCLI(t, "help")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Usage: openapi-tools")
}

func TestList(t *testing.T) {
	clearEnv(t)
	p := writeDoc(t, "shop.yaml", baseDoc)

	code, out, errOut := runCLI(t, "list", p)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Shop 1.0.0")
	assert.Contains(t, out, "GET")
	assert.Contains(t, out, "/items")
	assert.Contains(t, out, "Item (cyclic) (dangling: #/components/schemas/Maker)")
}

func TestList_SpecFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvSpecFile, writeDoc(t, "shop.yaml", baseDoc))

	code, out, errOut := runCLI(t, "list")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Shop 1.0.0")
}

func TestList_Errors(t *testing.T) {
	clearEnv(t)
	bad := writeDoc(t, "bad.yaml", "info: {title: x}\n")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no source", []string{"list"}, "no OpenAPI document given"},
		{"missing file", []string{"list", filepath.Join(t.TempDir(), "nope.yaml")}, "nope.yaml"},
		{"not openapi", []string{"list", bad}, "openapi"},
		{"two sources", []string{"list", bad, bad}, "at most one document"},
		{"bad timeout", []string{"list", "--timeout", "-1s", bad}, "timeout must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := runCLI(t, tt.args...)
			assert.Equal(t, 1, code)
			assert.Contains(t, errOut, tt.want)
		})
	}
}

func TestView_InitialLoadFailure(t *testing.T) {
	clearEnv(t)
	code, _, errOut := runCLI(t, filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Error:")
}

func TestDiff_Markdown(t *testing.T) {
	clearEnv(t)
	base := writeDoc(t, "base.yaml", baseDoc)
	head := writeDoc(t, "head.yaml", headDoc)

	code, out, errOut := runCLI(t, "diff", base, head)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "# API Diff")
	assert.Contains(t, out, "`DELETE /items/{id}` (added)")
	assert.Contains(t, out, "Property `parent` removed")
}

func TestDiff_JSON(t *testing.T) {
	clearEnv(t)
	base := writeDoc(t, "base.yaml", baseDoc)
	head := writeDoc(t, "head.yaml", headDoc)

	code, out, errOut := runCLI(t, "diff", "--format", "json", base, head)
	require.Equal(t, 0, code, errOut)

	var decoded struct {
		OperationChanges []struct {
			Path string `json:"path"`
		} `json:"operation_changes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.NotEmpty(t, decoded.OperationChanges)
}

func TestDiff_Errors(t *testing.T) {
	clearEnv(t)
	base := writeDoc(t, "base.yaml", baseDoc)

	code, _, errOut := runCLI(t, "diff", base)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "base and a head")

	code, _, errOut = runCLI(t, "diff", "--format", "xml", base, base)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, `unknown format "xml"`)

	code, _, errOut = runCLI(t, "diff", base, filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "head:")
}
