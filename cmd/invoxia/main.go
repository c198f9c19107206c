package main

import (
	"fmt"
	"os"

	"github.com/kbukum/invoxia/cmd/invoxia/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
