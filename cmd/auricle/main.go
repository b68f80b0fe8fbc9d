// auricle detects AI-generated speech in audio samples.
//
// It ships a rule-based acoustic pipeline behind two surfaces: an HTTP API
// for services and a CLI for one-off analysis.
//
// Usage:
//
//	auricle serve --addr :8000
//	auricle analyze sample.wav --language tamil --features
package main

import (
	"os"

	"github.com/auricle-labs/auricle/cmd/auricle/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
