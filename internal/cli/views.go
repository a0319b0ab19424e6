package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewViewsCommand creates the views command.
func NewViewsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "views",
		Short: "List the available view types and their parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return out.Success(listViews())
		},
	}
}

type viewListing []viewType

type viewType struct {
	Name   string      `json:"name"`
	Desc   string      `json:"desc"`
	Params []viewParam `json:"params"`
}

type viewParam struct {
	Name    string `json:"name"`
	Desc    string `json:"desc"`
	Default string `json:"default"`
}

func listViews() viewListing {
	var out viewListing
	for _, v := range newEngine(nil).ViewTypes() {
		vt := viewType{Name: v.Name(), Desc: v.Desc(), Params: []viewParam{}}
		for _, p := range v.Params() {
			vt.Params = append(vt.Params, viewParam{Name: p.Name, Desc: p.Desc, Default: p.Default})
		}
		out = append(out, vt)
	}
	return out
}

func (l viewListing) Text() string {
	var b strings.Builder
	for _, v := range l {
		fmt.Fprintf(&b, "%s\n    %s\n", v.Name, v.Desc)
		for _, p := range v.Params {
			fmt.Fprintf(&b, "    %-12s %s (default %q)\n", p.Name, p.Desc, p.Default)
		}
	}
	return b.String()
}
