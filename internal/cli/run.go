package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/pvmcdm/internal/config"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Config    string
	OutputDir string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run [stream]",
		Short: "Replay a mutation stream through the configured views",
		Long: `Replay a recorded mutation stream through the views listed in the
configuration file. Without --config a single CDM view with default
parameters is created.

The stream is JSON Lines, or a YAML list when the file ends in .yaml/.yml.
With no argument or "-" the stream is read from stdin.

On SIGINT or SIGTERM reading stops and every view drains what it has
received, so output files are always complete containers.

Example:
  pvmcdm run --config views.yaml trace.jsonl
  pvmcdm run --output-dir /tmp/out < trace.jsonl`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runViews(cmd, opts, path)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "path to the YAML configuration file")
	cmd.Flags().StringVar(&opts.OutputDir, "output-dir", "", "directory for relative output paths (overrides the configuration)")

	return cmd
}

// runSummary is the result of a run.
type runSummary struct {
	Ingested int64         `json:"ingested"`
	Views    []viewSummary `json:"views"`
}

type viewSummary struct {
	ID      int    `json:"id"`
	Type    string `json:"type"`
	Handled int64  `json:"handled"`
	State   string `json:"state"`
}

func (s runSummary) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ingested %d transactions\n", s.Ingested)
	for _, v := range s.Views {
		fmt.Fprintf(&b, "  #%d %s: %d handled (%s)\n", v.ID, v.Type, v.Handled, v.State)
	}
	return b.String()
}

func loadConfig(opts *RunOptions) (*config.Config, error) {
	cfg := config.Default()
	if opts.Config != "" {
		var err error
		if cfg, err = config.Load(opts.Config); err != nil {
			return nil, err
		}
	}
	if opts.OutputDir != "" {
		cfg.OutputDir = opts.OutputDir
	}
	return cfg, nil
}

func runViews(cmd *cobra.Command, opts *RunOptions, path string) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	cfg, err := loadConfig(opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}

	src, closeSrc, err := openStream(path, cmd.InOrStdin())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open stream", err)
	}
	defer func() {
		if err := closeSrc(); err != nil {
			slog.Error("error closing stream", "error", err)
		}
	}()

	eng := newEngine(cfg)
	if err := eng.CreateConfigured(cfg); err != nil {
		if serr := eng.Shutdown(); serr != nil {
			slog.Error("error shutting down views", "error", serr)
		}
		return WrapExitError(ExitCommandError, "failed to create views", err)
	}

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, draining views", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	slog.Info("replaying stream", "stream", path, "views", len(eng.Instances()))
	runErr := eng.Run(ctx, src)
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}
	shutErr := eng.Shutdown()

	if runErr != nil {
		return WrapExitError(ExitCommandError, "failed to read stream", errors.Join(runErr, shutErr))
	}
	if shutErr != nil {
		return WrapExitError(ExitFailure, "view failed", shutErr)
	}

	summary := runSummary{Ingested: eng.Ingested(), Views: []viewSummary{}}
	for _, inst := range eng.Instances() {
		summary.Views = append(summary.Views, viewSummary{
			ID:      inst.ID,
			Type:    inst.Type,
			Handled: inst.Handled(),
			State:   inst.State().String(),
		})
	}
	return out.Success(summary)
}
