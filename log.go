package reel

import (
	"os"

	"github.com/charmbracelet/log"
)

// logger reports action-local problems (skipped actions, unknown types,
// missing targets) and collaborator failures. Simulation control flow never
// depends on it.
var logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "reel"})

// SetLogger replaces the package logger. Passing nil restores the default.
func SetLogger(l *log.Logger) {
	if l == nil {
		l = log.NewWithOptions(os.Stderr, log.Options{Prefix: "reel"})
	}
	logger = l
}
