package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/pvmcdm/internal/pvm"
	"github.com/roach88/pvmcdm/internal/testutil"
)

// execute runs the root command with args and returns stdout, stderr and
// the command error.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(bytes.NewBufferString(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// writeFixtureStream writes the fixture graph as JSON Lines and returns the
// file path and transaction count.
func writeFixtureStream(t *testing.T, dir string) (string, int) {
	t.Helper()
	txs := testutil.Fixture().Transactions()
	var buf bytes.Buffer
	enc := pvm.NewStreamEncoder(&buf)
	for _, tr := range txs {
		require.NoError(t, enc.Encode(tr))
	}
	path := filepath.Join(dir, "trace.jsonl")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path, len(txs)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
