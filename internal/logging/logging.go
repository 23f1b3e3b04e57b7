// Package logging builds the root logger.
package logging

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

// New returns a logger writing to stderr. verbose enables debug output and
// json switches to one JSON object per line.
func New(name string, verbose, json bool) hclog.Logger {
	return NewWithOutput(name, verbose, json, os.Stderr)
}

// NewWithOutput is New with an explicit destination.
func NewWithOutput(name string, verbose, json bool, w io.Writer) hclog.Logger {
	level := hclog.Info
	if verbose {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      level,
		Output:     w,
		JSONFormat: json,
	})
}
