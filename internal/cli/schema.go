package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/pvmcdm/internal/cdm"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	var version string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the Avro schema of a CDM version",
		Long: fmt.Sprintf(`Print the Avro schema the CDM view writes into its container header.

Supported versions: %v`, cdm.VersionNames()),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := cdm.LookupVersion(version)
			if err != nil {
				return WrapExitError(ExitCommandError, "unknown version", err)
			}
			if rootOpts.Format == "json" {
				out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
				return out.Success(map[string]string{"version": v.Name, "namespace": v.Namespace, "schema": v.Schema()})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), v.Schema())
			return err
		},
	}

	cmd.Flags().StringVar(&version, "version", cdm.DefaultVersion.Name, "CDM schema version")
	return cmd
}
