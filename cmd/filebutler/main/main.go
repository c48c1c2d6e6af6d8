package main

import (
	"os"

	"github.com/acrellin/filebutler/cmd/filebutler"
)

func main() {
	rootCmd := filebutler.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
