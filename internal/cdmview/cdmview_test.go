package cdmview

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/linkedin/goavro/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pvmcdm/internal/cdm"
	"github.com/roach88/pvmcdm/internal/classify"
	"github.com/roach88/pvmcdm/internal/config"
	"github.com/roach88/pvmcdm/internal/pvm"
	"github.com/roach88/pvmcdm/internal/testutil"
	"github.com/roach88/pvmcdm/internal/view"
)

func readRecords(t *testing.T, path string) []map[string]any {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	r, err := goavro.NewOCFReader(f)
	require.NoError(t, err)
	var out []map[string]any
	for r.Scan() {
		d, err := r.Read()
		require.NoError(t, err)
		out = append(out, d.(map[string]any))
	}
	require.NoError(t, r.Err())
	return out
}

func closed() <-chan *pvm.Transaction {
	ch := make(chan *pvm.Transaction)
	close(ch)
	return ch
}

func TestCreate_WritesHostThenOneRecordPerTransaction(t *testing.T) {
	dir := t.TempDir()
	g := testutil.Fixture()
	txs := g.Transactions()

	inst, err := New().Create(0, view.Params{ParamFile: "out.cdm"}, &config.Config{OutputDir: dir}, g.Stream())
	require.NoError(t, err)
	require.NoError(t, inst.Wait())
	assert.Equal(t, view.Terminated, inst.State())
	assert.Equal(t, int64(len(txs)), inst.Handled())

	recs := readRecords(t, filepath.Join(dir, "out.cdm"))
	require.Len(t, recs, len(txs)+1)

	host := recs[0]["datum"].(map[string]any)[cdm.V20.FullName("Host")].(map[string]any)
	assert.Equal(t, "RECORD_HOST", recs[0]["type"])
	assert.Equal(t, "HOST_OTHER", host["hostType"])
	assert.Equal(t, "", host["hostName"])
	assert.Equal(t, make([]byte, 16), host["uuid"])

	for i, tr := range txs {
		rt := classify.Classify(tr).RecordType()
		assert.Equal(t, string(rt.Symbol()), recs[i+1]["type"], "record %d is out of order", i+1)
		assert.Equal(t, "20", recs[i+1]["CDMVersion"])
	}
}

func TestCreate_EmptyStreamWritesOnlyHost(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.cdm")
	inst, err := New().Create(3, view.Params{ParamFile: path}, nil, closed())
	require.NoError(t, err)
	require.NoError(t, inst.Wait())
	assert.Equal(t, view.Terminated, inst.State())

	recs := readRecords(t, path)
	require.Len(t, recs, 1)
	assert.Equal(t, "RECORD_HOST", recs[0]["type"])
}

func TestCreate_Version19(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v19.cdm")
	params := view.Params{ParamFile: path, ParamVersion: "19"}
	inst, err := New().Create(0, params, nil, testutil.Fixture().Stream())
	require.NoError(t, err)
	require.NoError(t, inst.Wait())

	recs := readRecords(t, path)
	require.NotEmpty(t, recs)
	for _, r := range recs {
		assert.Equal(t, "19", r["CDMVersion"])
		assert.Equal(t, string(cdm.V19.Source), r["source"])
	}
	host := recs[0]["datum"].(map[string]any)[cdm.V19.FullName("Host")].(map[string]any)
	_, has := host["ta1Version"]
	assert.False(t, has)
}

func TestCreate_ConfigErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		params view.Params
	}{
		{"missing directory", view.Params{ParamFile: filepath.Join(dir, "nope", "out.cdm")}},
		{"unknown version", view.Params{ParamFile: filepath.Join(dir, "out.cdm"), ParamVersion: "18"}},
		{"unknown param", view.Params{"cdm_fiel": "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst, err := New().Create(0, tt.params, nil, closed())
			require.Error(t, err)
			assert.True(t, view.IsConfigError(err), "got %v", err)
			assert.Nil(t, inst)
		})
	}
}

func TestView_Metadata(t *testing.T) {
	v := New()
	assert.Equal(t, "CDMView", v.Name())
	assert.NotEmpty(t, v.Desc())

	defaults := map[string]string{}
	for _, p := range v.Params() {
		defaults[p.Name] = p.Default
	}
	assert.Equal(t, map[string]string{ParamFile: "./out.cdm", ParamVersion: "20"}, defaults)
}

type failingWriter struct {
	appendErr error
	closed    int
}

func (w *failingWriter) Append(cdm.Envelope) error { return w.appendErr }
func (w *failingWriter) Count() int                { return 0 }
func (w *failingWriter) Close() error              { w.closed++; return nil }

func TestWorker_ClassifiesFailures(t *testing.T) {
	tr := testutil.Fixture().Transactions()[0]

	w := &worker{out: &failingWriter{appendErr: os.ErrClosed}}
	err := w.Handle(tr)
	assert.True(t, view.IsIOError(err))
	assert.ErrorIs(t, err, os.ErrClosed)

	require.NoError(t, w.Drain())
	assert.Equal(t, 1, w.out.(*failingWriter).closed)
}
