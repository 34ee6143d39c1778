package main

import (
	"fmt"
	"os"

	"github.com/min1324/mpsc/cmd"
)

func main() {
	if err := cmd.CmdMpscq().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
