//go:build !ORT

package onnx

import "github.com/knights-analytics/hugot"

// newSession creates a pure Go session.
func newSession(_ Config) (*hugot.Session, error) {
	return hugot.NewGoSession()
}
