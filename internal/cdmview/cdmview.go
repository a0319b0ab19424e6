// Package cdmview is the CDM serializer view.
//
// Each instance owns one Avro object container file. Create opens the file
// and writes the leading Host record before the worker starts; the worker
// then appends one envelope per transaction in arrival order and flushes when
// the stream closes.
package cdmview

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/pvmcdm/internal/cdm"
	"github.com/roach88/pvmcdm/internal/classify"
	"github.com/roach88/pvmcdm/internal/codec"
	"github.com/roach88/pvmcdm/internal/config"
	"github.com/roach88/pvmcdm/internal/ident"
	"github.com/roach88/pvmcdm/internal/pvm"
	"github.com/roach88/pvmcdm/internal/view"
)

// Name is the registered view type name.
const Name = "CDMView"

// Parameter names.
const (
	ParamFile    = "cdm_file"
	ParamVersion = "cdm_version"
)

// View is the CDM view type.
type View struct{}

// New returns the CDM view type.
func New() *View {
	return &View{}
}

func (*View) Name() string { return Name }

func (*View) Desc() string { return "View for producing CDM records to an Avro container file." }

func (*View) Params() []view.ParamSpec {
	return []view.ParamSpec{
		{Name: ParamFile, Desc: "CDM file location", Default: "./out.cdm"},
		{Name: ParamVersion, Desc: fmt.Sprintf("CDM schema version %v", cdm.VersionNames()), Default: cdm.DefaultVersion.Name},
	}
}

// Create opens the output and writes the Host record. Any failure here is a
// configuration error and no worker is started.
func (v *View) Create(id int, params view.Params, cfg *config.Config, stream <-chan *pvm.Transaction) (*view.Instance, error) {
	params, err := view.WithDefaults(Name, v.Params(), params)
	if err != nil {
		return nil, err
	}
	version, err := cdm.LookupVersion(params[ParamVersion])
	if err != nil {
		return nil, view.NewConfigError(Name, "select schema version", err)
	}

	path := cfg.Resolve(params[ParamFile])
	w, err := codec.Create(path, version)
	if err != nil {
		return nil, view.NewConfigError(Name, "open output", err)
	}
	if err := w.Append(cdm.Wrap(LeadingHost())); err != nil {
		_ = w.Close()
		return nil, view.NewConfigError(Name, "write host record", err)
	}

	inst := view.NewInstance(id, Name, params)
	slog.Debug("cdm output opened", "instance", id, "path", path, "version", version.Name)
	inst.Start(stream, &worker{out: w})
	return inst, nil
}

// LeadingHost is the synthetic first record of every output stream.
func LeadingHost() *cdm.Host {
	return &cdm.Host{
		UUID:       ident.Nil(),
		HostName:   "",
		TA1Version: "",
		HostType:   cdm.HostOther,
	}
}

// recordWriter is the part of codec.Writer the worker needs.
type recordWriter interface {
	Append(env cdm.Envelope) error
	Count() int
	Close() error
}

type worker struct {
	out recordWriter
}

func (w *worker) Handle(tr *pvm.Transaction) error {
	err := w.out.Append(classify.Envelope(tr))
	if err == nil {
		return nil
	}
	var encErr *codec.EncodeError
	if errors.As(err, &encErr) {
		return view.NewEncodeError(Name, fmt.Sprintf("encode %s", tr.Op), err)
	}
	return view.NewIOError(Name, fmt.Sprintf("append %s", tr.Op), err)
}

func (w *worker) Drain() error {
	if err := w.out.Close(); err != nil {
		return view.NewIOError(Name, "flush output", err)
	}
	slog.Debug("cdm output closed", "records", w.out.Count())
	return nil
}
