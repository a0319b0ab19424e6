package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/pvmcdm/internal/canonical"
	"github.com/roach88/pvmcdm/internal/cdm"
	"github.com/roach88/pvmcdm/internal/classify"
)

// NewClassifyCommand creates the classify command.
func NewClassifyCommand(rootOpts *RootOptions) *cobra.Command {
	var version string

	cmd := &cobra.Command{
		Use:   "classify [stream]",
		Short: "Print the CDM record of every transaction as canonical JSON",
		Long: `Classify every transaction of a recorded stream and print the resulting
CDM record, one canonical JSON object per line. Enum values are printed as
symbols and identifiers as UUID strings. Nothing is written to disk.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := cdm.LookupVersion(version)
			if err != nil {
				return WrapExitError(ExitCommandError, "unknown version", err)
			}
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			src, closeSrc, err := openStream(path, cmd.InOrStdin())
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open stream", err)
			}
			defer closeSrc()

			w := cmd.OutOrStdout()
			for n := 1; ; n++ {
				tr, err := src.Next()
				if errors.Is(err, io.EOF) {
					return nil
				}
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to read stream", err)
				}
				if err := tr.Validate(); err != nil {
					return WrapExitError(ExitCommandError, fmt.Sprintf("transaction %d", n), err)
				}
				b, err := canonical.Marshal(classify.Classify(tr).Datum(v).Plain())
				if err != nil {
					return WrapExitError(ExitFailure, fmt.Sprintf("render transaction %d", n), err)
				}
				if _, err := fmt.Fprintf(w, "%s\n", b); err != nil {
					return err
				}
			}
		},
	}

	cmd.Flags().StringVar(&version, "version", cdm.DefaultVersion.Name, "CDM schema version")
	return cmd
}
