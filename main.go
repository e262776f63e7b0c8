package main

import (
	"os"

	"github.com/zjrosen/dread/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
