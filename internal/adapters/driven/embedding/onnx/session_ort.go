//go:build ORT

package onnx

import (
	"runtime"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/options"
)

// newSession creates an ONNX Runtime session.
func newSession(cfg Config) (*hugot.Session, error) {
	opts := []options.WithOption{
		options.WithIntraOpNumThreads(runtime.NumCPU()),
	}
	if cfg.LibraryPath != "" {
		opts = append(opts, options.WithOnnxLibraryPath(cfg.LibraryPath))
	}
	return hugot.NewORTSession(opts...)
}
