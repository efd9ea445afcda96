package sysinfo

import "errors"

var (
	// ErrUnavailable occurs when a mandatory system query fails.
	ErrUnavailable = errors.New("system information unavailable")
)
