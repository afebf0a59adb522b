package errors

import "fmt"

var (
	ErrSessionClosed   = fmt.Errorf("session closed")
	ErrNotConnected    = fmt.Errorf("transport not connected")
	ErrSendFailure     = fmt.Errorf("send failure")
	ErrInvalidIdentity = fmt.Errorf("invalid identity")
	ErrWorkerPanic     = fmt.Errorf("worker panicked")
)
