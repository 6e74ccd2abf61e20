package main

import (
	"fmt"
	"os"

	"github.com/eups-go/eups/cli"
)

func main() {
	ctx := &cli.Context{
		Env:    cli.EnvironToMap(os.Environ()),
		Home:   os.Getenv("HOME"),
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}

	exitCode, err := cli.Run(ctx, os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	os.Exit(exitCode)
}
