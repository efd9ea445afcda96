package ui

import "errors"

var (
	// ErrInterrupted occurs when the user aborts an input with Ctrl+C.
	ErrInterrupted = errors.New("input interrupted")
)
