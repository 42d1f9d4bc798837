package main

import (
	"os"

	"github.com/ofxer-dev/ofxer/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
