package codec

import (
	"fmt"
	"io"
	"os"

	"github.com/hamba/avro/v2/ocf"

	"github.com/roach88/pvmcdm/internal/cdm"
)

// Writer appends envelopes to an Avro object container file.
//
// Each envelope is encoded completely before any of it reaches the container,
// so a failed Append leaves the container without a partial record.
type Writer struct {
	enc    *Encoder
	ocf    *ocf.Encoder
	closer io.Closer
	count  int
}

// Create truncates or creates the file at path and writes a container header
// for version v.
func Create(path string, v *cdm.Version) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	w, err := NewWriter(f, v)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	w.closer = f
	return w, nil
}

// NewWriter writes a container header for version v to out.
func NewWriter(out io.Writer, v *cdm.Version) (*Writer, error) {
	enc, err := NewEncoder(v)
	if err != nil {
		return nil, err
	}
	oe, err := ocf.NewEncoder(v.Schema(), out, ocf.WithBlockLength(100))
	if err != nil {
		return nil, fmt.Errorf("open %s container: %w", v, err)
	}
	return &Writer{enc: enc, ocf: oe}, nil
}

// Version returns the schema version of the container.
func (w *Writer) Version() *cdm.Version {
	return w.enc.Version()
}

// Append encodes env and adds it to the current block.
func (w *Writer) Append(env cdm.Envelope) error {
	b, err := w.enc.Encode(env)
	if err != nil {
		return err
	}
	if _, err := w.ocf.Write(b); err != nil {
		return fmt.Errorf("append %s: %w", env.Type(), err)
	}
	w.count++
	return nil
}

// Count returns the number of envelopes appended so far.
func (w *Writer) Count() int {
	return w.count
}

// Flush writes the pending block.
func (w *Writer) Flush() error {
	if err := w.ocf.Flush(); err != nil {
		return fmt.Errorf("flush container: %w", err)
	}
	return nil
}

// Close flushes the pending block and closes the underlying file, if the
// Writer owns one.
func (w *Writer) Close() error {
	err := w.ocf.Close()
	if err != nil {
		err = fmt.Errorf("close container: %w", err)
	}
	if w.closer != nil {
		if cerr := w.closer.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close container file: %w", cerr)
		}
		w.closer = nil
	}
	return err
}
