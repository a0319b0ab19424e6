package proctree

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/roach88/pvmcdm/internal/canonical"
	"github.com/roach88/pvmcdm/internal/pvm"
	"github.com/roach88/pvmcdm/internal/store"
)

// sink receives the tree as it grows. Every write is durable before it
// returns, so the output is usable while the stream is still running.
type sink interface {
	WriteNode(id pvm.ID, label string) error
	WriteRel(src, dst pvm.ID) error
	Close() error
}

// jsonSink writes one canonical JSON object per line.
type jsonSink struct {
	f *os.File
}

func newJSONSink(path string) (*jsonSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &jsonSink{f: f}, nil
}

func (s *jsonSink) line(v map[string]any) error {
	b, err := canonical.Marshal(v)
	if err != nil {
		return err
	}
	_, err = s.f.Write(append(b, '\n'))
	return err
}

func (s *jsonSink) WriteNode(id pvm.ID, label string) error {
	return s.line(map[string]any{"type": "node", "id": uint64(id), "label": label})
}

func (s *jsonSink) WriteRel(src, dst pvm.ID) error {
	return s.line(map[string]any{"type": "rel", "src": uint64(src), "dst": uint64(dst)})
}

func (s *jsonSink) Close() error {
	return s.f.Close()
}

// dotSink writes a Graphviz digraph. The closing brace is always the last
// byte of the file; each write replaces it and puts it back.
type dotSink struct {
	f *os.File
}

func newDotSink(path string) (*dotSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(f, "digraph {\n}"); err != nil {
		_ = f.Close()
		return nil, err
	}
	return &dotSink{f: f}, nil
}

func (s *dotSink) stmt(format string, args ...any) error {
	if _, err := s.f.Seek(-1, io.SeekCurrent); err != nil {
		return err
	}
	_, err := fmt.Fprintf(s.f, format+"\n}", args...)
	return err
}

func (s *dotSink) WriteNode(id pvm.ID, label string) error {
	return s.stmt("%q [label=\"%s\"];", fmt.Sprint(uint64(id)), strings.ReplaceAll(label, `"`, `\"`))
}

func (s *dotSink) WriteRel(src, dst pvm.ID) error {
	return s.stmt("%q -> %q;", fmt.Sprint(uint64(src)), fmt.Sprint(uint64(dst)))
}

func (s *dotSink) Close() error {
	return s.f.Close()
}

// sqliteSink appends to the process tree store. Nodes and edges share the
// store's sequence so their interleaving survives.
type sqliteSink struct {
	st *store.Store
}

func newSQLiteSink(path string) (*sqliteSink, error) {
	st, err := store.Create(path)
	if err != nil {
		return nil, err
	}
	return &sqliteSink{st: st}, nil
}

func (s *sqliteSink) WriteNode(id pvm.ID, label string) error {
	_, err := s.st.AppendNode(context.Background(), id, label)
	return err
}

func (s *sqliteSink) WriteRel(src, dst pvm.ID) error {
	_, err := s.st.AppendRel(context.Background(), src, dst)
	return err
}

func (s *sqliteSink) Close() error {
	return s.st.Close()
}
