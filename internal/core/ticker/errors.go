package ticker

import "errors"

var (
	ErrAlreadyRunning = errors.New("ticker is already running")
	ErrNotRunning     = errors.New("ticker is not running")
	ErrCallbackPanic  = errors.New("scheduled callback panicked")
)
