package main

import (
	"os"

	"github.com/tsawler/crsheet/cmd/crsheet/commands"
	"github.com/tsawler/crsheet/cmd/crsheet/ui"
)

func main() {
	if err := commands.Execute(); err != nil {
		ui.Error("%v", err)
		os.Exit(commands.ExitCode(err))
	}
}
