// Command pvmcdm replays provenance-graph mutation streams through the
// CDM, process tree and network traffic views.
package main

import (
	"os"

	"github.com/roach88/pvmcdm/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:]))
}
