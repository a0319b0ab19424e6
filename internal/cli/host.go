package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/pvmcdm/internal/cdmview"
	"github.com/roach88/pvmcdm/internal/config"
	"github.com/roach88/pvmcdm/internal/engine"
	"github.com/roach88/pvmcdm/internal/nettraffic"
	"github.com/roach88/pvmcdm/internal/proctree"
	"github.com/roach88/pvmcdm/internal/pvm"
)

// newEngine returns an engine with every built-in view type registered.
func newEngine(cfg *config.Config) *engine.Engine {
	eng := engine.New(cfg)
	eng.RegisterViewType(cdmview.New())
	eng.RegisterViewType(proctree.New())
	eng.RegisterViewType(nettraffic.New())
	return eng
}

// openStream opens a recorded mutation stream. Files ending in .yaml or
// .yml hold a YAML list; anything else is read as JSON Lines. "-" or an
// empty path reads JSON Lines from stdin.
func openStream(path string, stdin io.Reader) (engine.Source, func() error, error) {
	if path == "" || path == "-" {
		return pvm.NewStreamDecoder(stdin), func() error { return nil }, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open stream: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		defer f.Close()
		txs, err := pvm.ReadYAML(f)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", path, err)
		}
		return pvm.NewSliceSource(txs), func() error { return nil }, nil
	default:
		return pvm.NewStreamDecoder(f), f.Close, nil
	}
}
