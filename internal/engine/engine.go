package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/roach88/pvmcdm/internal/config"
	"github.com/roach88/pvmcdm/internal/pvm"
	"github.com/roach88/pvmcdm/internal/view"
)

// Engine registers view types, instantiates views and fans ingested
// transactions out to every instance.
//
// Thread-safety model:
//   - RegisterViewType, CreateView, Ingest and Shutdown are safe from any
//     goroutine
//   - Ingest calls from one goroutine are delivered in call order
//
// INVARIANTS:
//   - view type IDs are assigned in registration order and never reused
//   - every instance receives the transactions ingested after its creation,
//     in ingestion order, until Shutdown or until the instance fails
type Engine struct {
	cfg *config.Config

	mu        sync.Mutex
	types     []view.View
	byName    map[string]int
	instances []*hosted
	closed    bool

	seq   atomic.Int64 // logical clock, one tick per ingested transaction
	pumps sync.WaitGroup
}

// hosted is one running instance and its delivery queue.
type hosted struct {
	inst   *view.Instance
	queue  *txQueue
	stream chan *pvm.Transaction
}

// New creates an engine. cfg is handed to every view it instantiates and may
// be nil.
func New(cfg *config.Config) *Engine {
	return &Engine{cfg: cfg, byName: make(map[string]int)}
}

// RegisterViewType adds a view type and returns its type ID.
// Registering two types with the same name panics.
func (e *Engine) RegisterViewType(v view.View) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, dup := e.byName[v.Name()]; dup {
		panic(fmt.Sprintf("engine: view type %q registered twice", v.Name()))
	}
	id := len(e.types)
	e.types = append(e.types, v)
	e.byName[v.Name()] = id
	slog.Debug("view type registered", "view", v.Name(), "type_id", id)
	return id
}

// ViewTypes returns the registered view types in registration order.
func (e *Engine) ViewTypes() []view.View {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]view.View, len(e.types))
	copy(out, e.types)
	return out
}

// LookupViewType returns the type ID registered under name.
func (e *Engine) LookupViewType(name string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id, ok := e.byName[name]
	if !ok {
		return 0, unknownViewType(name)
	}
	return id, nil
}

// CreateView instantiates the view type typeID and returns the instance ID.
// Errors from the view's setup are returned unchanged; no instance is added.
func (e *Engine) CreateView(typeID int, params view.Params) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return 0, shutdown("create view")
	}
	if typeID < 0 || typeID >= len(e.types) {
		return 0, unknownViewType(fmt.Sprintf("#%d", typeID))
	}
	v := e.types[typeID]

	id := len(e.instances)
	stream := make(chan *pvm.Transaction)
	inst, err := v.Create(id, params, e.cfg, stream)
	if err != nil {
		return 0, err
	}

	h := &hosted{inst: inst, queue: newTxQueue(), stream: stream}
	e.instances = append(e.instances, h)
	e.pumps.Add(1)
	go e.pump(h)

	slog.Info("view created", "view", v.Name(), "instance", id)
	return id, nil
}

// CreateConfigured instantiates every view listed in cfg, in order. It stops
// at the first failure.
func (e *Engine) CreateConfigured(cfg *config.Config) error {
	for _, vc := range cfg.Views {
		typeID, err := e.LookupViewType(vc.Type)
		if err != nil {
			return err
		}
		if _, err := e.CreateView(typeID, view.Params(vc.Params)); err != nil {
			return err
		}
	}
	return nil
}

// Instances returns every instance created so far.
func (e *Engine) Instances() []*view.Instance {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*view.Instance, len(e.instances))
	for i, h := range e.instances {
		out[i] = h.inst
	}
	return out
}

// Ingest delivers tr to every live instance. It never blocks on a view.
// The transaction is shared by all instances and must not be modified.
func (e *Engine) Ingest(tr *pvm.Transaction) error {
	if err := tr.Validate(); err != nil {
		return &HostError{Code: ErrCodeInvalidTransaction, Message: err.Error()}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return shutdown("ingest")
	}
	seq := e.seq.Add(1)
	for _, h := range e.instances {
		if !h.queue.Enqueue(tr) {
			slog.Debug("view no longer accepting transactions", "view", h.inst.Type, "instance", h.inst.ID, "seq", seq)
		}
	}
	slog.Debug("transaction ingested", "seq", seq, "op", tr.Op)
	return nil
}

// Ingested returns the number of transactions ingested so far.
func (e *Engine) Ingested() int64 {
	return e.seq.Load()
}

// Source yields transactions until it returns io.EOF.
type Source interface {
	Next() (*pvm.Transaction, error)
}

// Run ingests everything src yields until io.EOF or until ctx is cancelled.
// It does not shut the engine down.
func (e *Engine) Run(ctx context.Context, src Source) error {
	for {
		if err := ctx.Err(); err != nil {
			slog.Info("ingestion stopping: context cancelled", "ingested", e.Ingested())
			return err
		}
		tr, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read transaction %d: %w", e.Ingested()+1, err)
		}
		if err := e.Ingest(tr); err != nil {
			return err
		}
	}
}

// Shutdown closes every instance's stream once its queue is delivered and
// waits for all workers to terminate. It returns the joined worker errors.
// Calling Shutdown again returns nil.
func (e *Engine) Shutdown() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	instances := e.instances
	e.mu.Unlock()

	slog.Info("engine shutting down", "instances", len(instances), "ingested", e.Ingested())
	for _, h := range instances {
		h.queue.Close()
	}
	e.pumps.Wait()

	var errs []error
	for _, h := range instances {
		if err := h.inst.Wait(); err != nil {
			errs = append(errs, fmt.Errorf("%s instance %d: %w", h.inst.Type, h.inst.ID, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		slog.Error("engine shut down with errors", "failed", len(errs))
		return err
	}
	slog.Info("engine shut down")
	return nil
}

// pump moves transactions from h's queue into its stream in FIFO order and
// closes the stream once the queue is closed and empty. If the instance
// terminates first the rest of the queue is discarded.
func (e *Engine) pump(h *hosted) {
	defer e.pumps.Done()
	defer close(h.stream)

	for {
		tr, ok := h.queue.TryDequeue()
		if ok {
			select {
			case h.stream <- tr:
				continue
			case <-h.inst.Done():
				e.abandon(h)
				return
			}
		}
		if h.queue.Drained() {
			return
		}

		select {
		case <-h.queue.Wait():
		case <-h.inst.Done():
			e.abandon(h)
			return
		}
	}
}

func (e *Engine) abandon(h *hosted) {
	n := h.queue.Discard()
	slog.Warn("view terminated early, dropping its queue", "view", h.inst.Type, "instance", h.inst.ID, "dropped", n)
}
