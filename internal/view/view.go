// Package view defines the contract between the host and its stream
// consumers ("views").
//
// A view type declares a name, a description and its string parameters.
// The host instantiates it with concrete parameters, the ambient
// configuration and a fresh transaction channel. Create does all fallible
// setup synchronously and then hands the channel to a worker goroutine that
// owns the view's output until the channel is closed.
package view

import (
	"fmt"
	"slices"

	"github.com/roach88/pvmcdm/internal/config"
	"github.com/roach88/pvmcdm/internal/pvm"
)

// ParamSpec declares one string parameter of a view type.
type ParamSpec struct {
	Name    string
	Desc    string
	Default string
}

// Params are the concrete parameters of one view instance.
type Params map[string]string

// GetOr returns the value of name, or def when it is unset.
func (p Params) GetOr(name, def string) string {
	if v, ok := p[name]; ok {
		return v
	}
	return def
}

// View is a registered view type.
type View interface {
	Name() string
	Desc() string
	Params() []ParamSpec

	// Create validates params, acquires the view's output and starts its
	// worker on stream. Errors are returned before the worker starts.
	Create(id int, params Params, cfg *config.Config, stream <-chan *pvm.Transaction) (*Instance, error)
}

// WithDefaults returns params completed with the declared defaults of specs.
// Parameters the view does not declare are rejected.
func WithDefaults(view string, specs []ParamSpec, params Params) (Params, error) {
	out := make(Params, len(specs))
	for _, s := range specs {
		out[s.Name] = params.GetOr(s.Name, s.Default)
	}
	for name := range params {
		if !slices.ContainsFunc(specs, func(s ParamSpec) bool { return s.Name == name }) {
			return nil, NewConfigError(view, fmt.Sprintf("unknown parameter %q", name), nil)
		}
	}
	return out, nil
}

// OneOf checks that the value of param is one of allowed.
func OneOf(view string, params Params, param string, allowed ...string) error {
	v := params[param]
	if !slices.Contains(allowed, v) {
		return NewConfigError(view, fmt.Sprintf("%s must be one of %v, got %q", param, allowed, v), nil)
	}
	return nil
}
