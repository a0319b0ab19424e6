package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pvmcdm/internal/view"
)

func decodeSummary(t *testing.T, out string) runSummary {
	t.Helper()
	var resp struct {
		Status string     `json:"status"`
		Data   runSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "ok", resp.Status)
	return resp.Data
}

func TestRun_DefaultConfig(t *testing.T) {
	dir := t.TempDir()
	stream, n := writeFixtureStream(t, dir)
	outDir := t.TempDir()

	stdout, _, err := execute(t, "", "--format", "json", "run", "--output-dir", outDir, stream)
	require.NoError(t, err)

	summary := decodeSummary(t, stdout)
	assert.Equal(t, int64(n), summary.Ingested)
	require.Len(t, summary.Views, 1)
	assert.Equal(t, viewSummary{ID: 0, Type: "CDMView", Handled: int64(n), State: "terminated"}, summary.Views[0])

	info, err := os.Stat(filepath.Join(outDir, "out.cdm"))
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestRun_ConfiguredViews(t *testing.T) {
	dir := t.TempDir()
	stream, _ := writeFixtureStream(t, dir)
	outDir := t.TempDir()
	cfg := writeFile(t, dir, "views.yaml", `
output_dir: `+outDir+`
views:
  - type: CDMView
    params:
      cdm_file: v19.cdm
      cdm_version: 19
  - type: ProcTreeView
    params:
      fmt: dot
      output: tree.dot
  - type: NetworkTrafficView
`)

	stdout, _, err := execute(t, "", "run", "--config", cfg, stream)
	require.NoError(t, err)
	assert.Contains(t, stdout, "ingested")
	assert.Contains(t, stdout, "#0 CDMView")
	assert.Contains(t, stdout, "#1 ProcTreeView")
	assert.Contains(t, stdout, "#2 NetworkTrafficView")

	for _, name := range []string{"v19.cdm", "tree.dot", "network.log"} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, name)
	}

	tree, err := os.ReadFile(filepath.Join(outDir, "tree.dot"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(tree), "digraph {\n"))
	assert.True(t, strings.HasSuffix(string(tree), "}"))
}

func TestRun_Stdin(t *testing.T) {
	dir := t.TempDir()
	stream, n := writeFixtureStream(t, dir)
	data, err := os.ReadFile(stream)
	require.NoError(t, err)

	stdout, _, err := execute(t, string(data), "--format", "json", "run", "--output-dir", t.TempDir(), "-")
	require.NoError(t, err)
	assert.Equal(t, int64(n), decodeSummary(t, stdout).Ingested)
}

func TestRun_YAMLStream(t *testing.T) {
	dir := t.TempDir()
	stream := writeFile(t, dir, "trace.yaml", `
- op: create_node
  entity:
    kind: net
    id: 1
    addr: 10.0.0.1
    port: 80
- op: create_node
  entity:
    kind: path
    id: 2
    path: /etc/passwd
`)

	stdout, _, err := execute(t, "", "--format", "json", "run", "--output-dir", t.TempDir(), stream)
	require.NoError(t, err)
	assert.Equal(t, int64(2), decodeSummary(t, stdout).Ingested)
}

func TestRun_CancelledContextStillDrains(t *testing.T) {
	dir := t.TempDir()
	stream, _ := writeFixtureStream(t, dir)
	outDir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := NewRootCommand()
	var stdout strings.Builder
	cmd.SetOut(&stdout)
	cmd.SetErr(&strings.Builder{})
	cmd.SetArgs([]string{"--format", "json", "run", "--output-dir", outDir, stream})
	require.NoError(t, cmd.ExecuteContext(ctx))

	summary := decodeSummary(t, stdout.String())
	assert.Equal(t, int64(0), summary.Ingested)
	assert.Equal(t, "terminated", summary.Views[0].State)

	// The container holds the host record even though nothing was ingested.
	info, err := os.Stat(filepath.Join(outDir, "out.cdm"))
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	stream, _ := writeFixtureStream(t, dir)

	tests := []struct {
		name string
		cfg  string
		args func(cfg string) []string
		code int
		msg  string
	}{
		{
			name: "missing stream",
			args: func(string) []string { return []string{"run", filepath.Join(dir, "nope.jsonl")} },
			code: ExitCommandError,
			msg:  "failed to open stream",
		},
		{
			name: "missing config",
			args: func(string) []string { return []string{"run", "--config", filepath.Join(dir, "nope.yaml"), stream} },
			code: ExitCommandError,
			msg:  "failed to load configuration",
		},
		{
			name: "invalid config",
			cfg:  "views: []\n",
			args: func(cfg string) []string { return []string{"run", "--config", cfg, stream} },
			code: ExitCommandError,
			msg:  "failed to load configuration",
		},
		{
			name: "unknown view type",
			cfg:  "views:\n  - type: GraphView\n",
			args: func(cfg string) []string { return []string{"run", "--config", cfg, stream} },
			code: ExitCommandError,
			msg:  "failed to create views",
		},
		{
			name: "unopenable output",
			cfg:  "output_dir: " + filepath.Join(dir, "missing") + "\nviews:\n  - type: CDMView\n",
			args: func(cfg string) []string { return []string{"run", "--config", cfg, stream} },
			code: ExitCommandError,
			msg:  "failed to create views",
		},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := ""
			if tt.cfg != "" {
				cfg = writeFile(t, dir, fmt.Sprintf("cfg%d.yaml", i), tt.cfg)
			}
			_, _, err := execute(t, "", tt.args(cfg)...)
			require.Error(t, err)
			assert.Equal(t, tt.code, GetExitCode(err))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestRun_MalformedStream(t *testing.T) {
	dir := t.TempDir()
	stream := writeFile(t, dir, "bad.jsonl", "{\"op\":\"create_node\",\"entity\":{\"kind\":\"path\",\"id\":1,\"path\":\"/a\"}}\nnot json\n")

	_, _, err := execute(t, "", "run", "--output-dir", t.TempDir(), stream)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to read stream")
}

func TestRun_ConfigErrorCode(t *testing.T) {
	dir := t.TempDir()
	stream, _ := writeFixtureStream(t, dir)
	cfg := writeFile(t, dir, "v.yaml", "views:\n  - type: CDMView\n    params:\n      cdm_version: 18\n")

	_, _, err := execute(t, "", "run", "--config", cfg, stream)
	require.Error(t, err)
	assert.True(t, view.IsConfigError(err))
	assert.Equal(t, "CONFIG", ErrorCode(err))
}
