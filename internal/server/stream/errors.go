package stream

import "errors"

var (
	ErrServerClosed         = errors.New("stream server is closed")
	ErrServerNotRunning     = errors.New("stream server is not running")
	ErrServerAlreadyRunning = errors.New("stream server is already running")
	ErrMaxClientsReached    = errors.New("maximum spectators reached")
	ErrClientNotFound       = errors.New("spectator not found")
)
