//go:build !darwin

package ringing

import "log/slog"

// NewPlatform creates the platform implementation for the current host.
// Hosts without a native backend get the logging stub.
func NewPlatform(logger *slog.Logger) Platform {
	return NewStubPlatform(DefaultStubMaxVolume/2, logger)
}
