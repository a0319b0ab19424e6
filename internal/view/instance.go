package view

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/roach88/pvmcdm/internal/pvm"
)

// State is the lifecycle state of a view instance.
//
//	Starting -> Running -> Draining -> Terminated
//
// Transitions only move forward and Draining is never skipped.
type State int32

const (
	Starting State = iota
	Running
	Draining
	Terminated
)

func (s State) String() string {
	switch s {
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Draining:
		return "draining"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Worker is the per-instance logic a view runs on its stream.
type Worker interface {
	// Handle processes one transaction. An error aborts the worker.
	Handle(tr *pvm.Transaction) error

	// Drain flushes and releases the output. It is called exactly once,
	// after the stream closes or Handle fails.
	Drain() error
}

// Instance is a running view.
type Instance struct {
	ID     int
	Type   string
	Params Params

	state   atomic.Int32
	handled atomic.Int64
	done    chan struct{}
	err     error
}

// NewInstance returns an instance in the Starting state.
func NewInstance(id int, typ string, params Params) *Instance {
	return &Instance{
		ID:     id,
		Type:   typ,
		Params: params,
		done:   make(chan struct{}),
	}
}

// State returns the current lifecycle state.
func (i *Instance) State() State {
	return State(i.state.Load())
}

// Handled returns the number of transactions processed so far.
func (i *Instance) Handled() int64 {
	return i.handled.Load()
}

// Done is closed when the instance reaches Terminated.
func (i *Instance) Done() <-chan struct{} {
	return i.done
}

// Wait blocks until the instance terminates and returns its error.
func (i *Instance) Wait() error {
	<-i.done
	return i.err
}

func (i *Instance) advance(to State) {
	for {
		cur := i.state.Load()
		if State(cur) >= to {
			return
		}
		if i.state.CompareAndSwap(cur, int32(to)) {
			return
		}
	}
}

// Start runs w on stream in a new goroutine. Transactions are handled one at
// a time in arrival order; the only suspension point is the channel receive.
// Start must be called at most once.
func (i *Instance) Start(stream <-chan *pvm.Transaction, w Worker) {
	log := slog.Default().With("view", i.Type, "instance", i.ID)
	i.advance(Running)
	log.Info("view started")

	go func() {
		defer close(i.done)

		var err error
		for tr := range stream {
			if err = w.Handle(tr); err != nil {
				break
			}
			n := i.handled.Add(1)
			log.Debug("transaction handled", "op", tr.Op, "seq", n)
		}

		i.advance(Draining)
		if err != nil {
			log.Error("view aborted", "error", err, "handled", i.Handled())
		} else {
			log.Info("view draining", "handled", i.Handled())
		}
		if derr := w.Drain(); derr != nil {
			err = errors.Join(err, derr)
		}

		i.err = err
		i.advance(Terminated)
		if err != nil {
			log.Error("view terminated", "error", err)
		} else {
			log.Info("view terminated")
		}
	}()
}
