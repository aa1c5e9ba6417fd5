package main

import (
	"fmt"
	"os"

	"github.com/kgronlund/parallax/cmd"
	"github.com/kgronlund/parallax/internal/askpass"
)

// ssh/scp invoke SSH_ASKPASS as `<SSH_ASKPASS> <prompt>`, with the prompt
// as the program's sole argument - there is no "askpass" subcommand word
// for cobra to dispatch on. Intercept that invocation shape before cobra
// ever sees argv, identified by the askpass socket env var Task.Start sets
// only when a run's Manager actually started an askpass.Server.
func main() {
	if os.Getenv("PARALLAX_ASKPASS_SOCKET") != "" {
		os.Exit(askpass.RunHelper(os.Args[1:], os.Stdout, os.Stderr))
	}

	root := cmd.NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
