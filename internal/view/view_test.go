package view

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pvmcdm/internal/pvm"
)

type recordingWorker struct {
	mu      sync.Mutex
	seen    []pvm.ID
	drained int
	failAt  pvm.ID
	drain   error
	states  []State
	inst    *Instance
}

func (w *recordingWorker) Handle(tr *pvm.Transaction) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.states = append(w.states, w.inst.State())
	id := tr.Entity().EntityID()
	if w.failAt != 0 && id == w.failAt {
		return NewIOError("test", "disk full", errors.New("ENOSPC"))
	}
	w.seen = append(w.seen, id)
	return nil
}

func (w *recordingWorker) Drain() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.states = append(w.states, w.inst.State())
	w.drained++
	return w.drain
}

func paths(n int) []*pvm.Transaction {
	out := make([]*pvm.Transaction, n)
	for i := range out {
		out[i] = pvm.CreateNode(&pvm.PathNode{ID: pvm.ID(i + 1), Path: fmt.Sprintf("/p%d", i+1)})
	}
	return out
}

func TestInstance_Lifecycle(t *testing.T) {
	inst := NewInstance(0, "test", nil)
	assert.Equal(t, Starting, inst.State())

	w := &recordingWorker{inst: inst}
	stream := make(chan *pvm.Transaction)
	inst.Start(stream, w)
	assert.Equal(t, Running, inst.State())

	for _, tr := range paths(50) {
		stream <- tr
	}
	close(stream)

	require.NoError(t, inst.Wait())
	assert.Equal(t, Terminated, inst.State())
	assert.Equal(t, int64(50), inst.Handled())
	assert.Equal(t, 1, w.drained)

	for i, id := range w.seen {
		assert.Equal(t, pvm.ID(i+1), id, "arrival order must be preserved")
	}
	for _, s := range w.states[:50] {
		assert.Equal(t, Running, s)
	}
	assert.Equal(t, Draining, w.states[50])
}

func TestInstance_EmptyStream(t *testing.T) {
	inst := NewInstance(1, "test", nil)
	w := &recordingWorker{inst: inst}
	stream := make(chan *pvm.Transaction)
	close(stream)

	inst.Start(stream, w)
	require.NoError(t, inst.Wait())
	assert.Equal(t, 1, w.drained)
	assert.Equal(t, []State{Draining}, w.states)
}

func TestInstance_HandleErrorAborts(t *testing.T) {
	inst := NewInstance(2, "test", nil)
	w := &recordingWorker{inst: inst, failAt: 3, drain: errors.New("flush failed")}
	stream := make(chan *pvm.Transaction, 10)
	for _, tr := range paths(10) {
		stream <- tr
	}
	close(stream)

	inst.Start(stream, w)
	err := inst.Wait()
	require.Error(t, err)
	assert.True(t, IsIOError(err))
	assert.ErrorContains(t, err, "flush failed")
	assert.Equal(t, []pvm.ID{1, 2}, w.seen)
	assert.Equal(t, 1, w.drained, "drain runs once even after a failure")

	select {
	case <-inst.Done():
	default:
		t.Fatal("Done must be closed after Wait returns")
	}
}

func TestState_NeverMovesBackwards(t *testing.T) {
	inst := NewInstance(0, "test", nil)
	inst.advance(Draining)
	inst.advance(Running)
	assert.Equal(t, Draining, inst.State())
	assert.Equal(t, "draining", inst.State().String())
}

func TestParams(t *testing.T) {
	specs := []ParamSpec{
		{Name: "output", Desc: "output file", Default: "./out"},
		{Name: "fmt", Desc: "format", Default: "json"},
	}

	got, err := WithDefaults("v", specs, Params{"fmt": "dot"})
	require.NoError(t, err)
	assert.Equal(t, Params{"output": "./out", "fmt": "dot"}, got)

	_, err = WithDefaults("v", specs, Params{"colour": "red"})
	assert.True(t, IsConfigError(err))

	assert.NoError(t, OneOf("v", got, "fmt", "json", "dot"))
	assert.True(t, IsConfigError(OneOf("v", got, "fmt", "json")))

	assert.Equal(t, "x", Params(nil).GetOr("a", "x"))
}

func TestErrorClassification(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("wrapped: %w", NewEncodeError("CDMView", "encode record", cause))

	assert.True(t, IsEncodeError(err))
	assert.False(t, IsConfigError(err))
	assert.False(t, IsIOError(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "ENCODE: CDMView: encode record: boom", errors.Unwrap(err).Error())
	assert.False(t, IsIOError(cause))
}
