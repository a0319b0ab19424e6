package proctree

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pvmcdm/internal/config"
	"github.com/roach88/pvmcdm/internal/pvm"
	"github.com/roach88/pvmcdm/internal/store"
	"github.com/roach88/pvmcdm/internal/testutil"
	"github.com/roach88/pvmcdm/internal/view"
)

// tree builds:
//
//	4 actor cmdline=init
//	5 actor (no cmdline)
//	6 inf 4 -> 5
//	  update 4 with the same cmdline
//	  update 5 cmdline=sh
//	7 inf 5 -> 99 (unknown endpoint)
func tree() *testutil.Graph {
	g := testutil.NewGraph()
	proc := g.DataSchema("Process", pvm.Actor, "pid", "cmdline")
	sys := g.ContextSchema("syscall", "time")
	ctx := g.Context(sys, "1")
	a := g.Data(proc, ctx.ID, "cmdline", "init")
	b := g.Data(proc, ctx.ID)
	g.Inf(a.ID, b.ID, ctx.ID)
	g.SetMeta(a, "cmdline", "init")
	g.SetMeta(b, "cmdline", "sh")
	g.Inf(b.ID, 99, ctx.ID)
	return g
}

func run(t *testing.T, params view.Params, g *testutil.Graph) *view.Instance {
	t.Helper()
	inst, err := New().Create(0, params, nil, g.Stream())
	require.NoError(t, err)
	require.NoError(t, inst.Wait())
	assert.Equal(t, view.Terminated, inst.State())
	return inst
}

func TestJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.json")
	run(t, view.Params{ParamOutput: path}, tree())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"id":4,"label":"init","type":"node"}
{"id":5,"label":"???","type":"node"}
{"dst":5,"src":4,"type":"rel"}
{"id":5,"label":"sh","type":"node"}
`, string(data))
}

func TestDot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.dot")
	run(t, view.Params{ParamOutput: path, ParamFormat: FormatDot}, tree())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `digraph {
"4" [label="init"];
"5" [label="???"];
"4" -> "5";
"5" [label="sh"];
}`, string(data))
}

func TestDot_ClosedAfterEveryWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.dot")
	s, err := newDotSink(path)
	require.NoError(t, err)
	defer s.Close()

	read := func() string {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		return string(data)
	}
	assert.Equal(t, "digraph {\n}", read())

	require.NoError(t, s.WriteNode(1, `say "hi"`))
	assert.Equal(t, "digraph {\n\"1\" [label=\"say \\\"hi\\\"\"];\n}", read())

	require.NoError(t, s.WriteRel(1, 1))
	assert.Equal(t, "digraph {\n\"1\" [label=\"say \\\"hi\\\"\"];\n\"1\" -> \"1\";\n}", read())
}

func TestSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.db")
	run(t, view.Params{ParamOutput: path, ParamFormat: FormatSQLite}, tree())

	st, err := store.Open(path)
	require.NoError(t, err)
	defer st.Close()
	ctx := context.Background()

	nodes, err := st.ReadNodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []store.ProcNode{
		{Seq: 1, ID: 4, Label: "init"},
		{Seq: 2, ID: 5, Label: "???"},
		{Seq: 4, ID: 5, Label: "sh"},
	}, nodes)

	rels, err := st.ReadRels(ctx)
	require.NoError(t, err)
	assert.Equal(t, []store.ProcRel{{Seq: 3, Src: 4, Dst: 5}}, rels)
}

func TestSQLite_ReusedFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.db")
	params := view.Params{ParamOutput: path, ParamFormat: FormatSQLite}
	run(t, params, tree())
	run(t, params, tree())

	st, err := store.Open(path)
	require.NoError(t, err)
	defer st.Close()
	nodes, err := st.ReadNodes(context.Background())
	require.NoError(t, err)
	assert.Len(t, nodes, 3)
}

func TestMetaKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.json")
	run(t, view.Params{ParamOutput: path, ParamMetaKey: "pid"}, testutil.Fixture())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	// The cmdline update does not change the pid label.
	assert.Equal(t, "{\"id\":7,\"label\":\"812\",\"type\":\"node\"}\n", string(data))
}

func TestOutputDirectory(t *testing.T) {
	dir := t.TempDir()
	inst, err := New().Create(0, view.Params{ParamOutput: "tree.json"}, &config.Config{OutputDir: dir}, testutil.Fixture().Stream())
	require.NoError(t, err)
	require.NoError(t, inst.Wait())
	assert.FileExists(t, filepath.Join(dir, "tree.json"))
}

func TestCreate_ConfigErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		params view.Params
	}{
		{"unknown format", view.Params{ParamOutput: filepath.Join(dir, "x"), ParamFormat: "svg"}},
		{"missing directory", view.Params{ParamOutput: filepath.Join(dir, "nope", "x")}},
		{"missing sqlite directory", view.Params{ParamOutput: filepath.Join(dir, "nope", "x.db"), ParamFormat: FormatSQLite}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := make(chan *pvm.Transaction)
			close(ch)
			inst, err := New().Create(0, tt.params, nil, ch)
			assert.True(t, view.IsConfigError(err), "got %v", err)
			assert.Nil(t, inst)
		})
	}
}

type failingSink struct{ err error }

func (s failingSink) WriteNode(pvm.ID, string) error { return s.err }
func (s failingSink) WriteRel(pvm.ID, pvm.ID) error  { return s.err }
func (s failingSink) Close() error                   { return nil }

func TestWorker_WriteFailureIsIOError(t *testing.T) {
	w := newWorker(failingSink{err: os.ErrClosed}, "cmdline")
	err := w.Handle(pvm.CreateNode(&pvm.DataNode{ID: 1, Type: pvm.Actor}))
	assert.True(t, view.IsIOError(err))
	assert.ErrorIs(t, err, os.ErrClosed)
}
