package main

import (
	"github.com/wright-cemrc-projects/sync-scripts/cmd"
	"github.com/wright-cemrc-projects/sync-scripts/cmd/util"
)

func main() {
	defer util.HandlePanic()
	cmd.Execute()
}
