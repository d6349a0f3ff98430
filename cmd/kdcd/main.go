// Command kdcd runs dirkdc's Ticket-Granting Service daemon.
package main

import (
	"os"

	"github.com/chemikadze/dirkdc/cmd/kdcd/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		commands.PrintErr("%v", err)
		os.Exit(1)
	}
}
