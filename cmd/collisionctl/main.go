package main

import (
	"fmt"
	"os"

	"github.com/ChuLiYu/jobsteal-store/internal/cli"
)

func main() {
	if err := cli.BuildCLI().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
