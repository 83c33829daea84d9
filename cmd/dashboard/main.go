package main

import (
	"fmt"
	"os"

	"github.com/kendall-kelly/hantverk-dashboard/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
