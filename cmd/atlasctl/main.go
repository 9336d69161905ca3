// Command atlasctl is an operator convenience CLI that talks to a
// running atlas server over its HTTP submission API: submit jobs and
// fetch their current record. It has no access to the store or queue
// directly and therefore cannot change engine semantics.
package main

import (
	"fmt"
	"os"

	"github.com/atlasjobs/atlas/cmd/atlasctl/cmd"
)

func main() {
	if err := cmd.RootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
