// Command hawkset runs the GUI-agent training dataset service: the
// annotation API server by default, plus export and consumer subcommands.
package main

import (
	"log"

	"hawkset.claimhawk.org/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
