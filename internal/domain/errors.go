package domain

import "errors"

// Sentinel errors used throughout the application.
var (
	ErrUnknownDriver = errors.New("unknown database driver: must be mysql or postgres")
	ErrEmptyVersion  = errors.New("server returned an empty version")
	ErrInvalidPort   = errors.New("invalid database port")
)

// ConnectionError reports a failure to establish the database link:
// DNS, TCP refusal or timeout, authentication, unknown database.
// Its detail is for operators only and never reaches end users.
type ConnectionError struct {
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	return "connect " + e.Addr + ": " + e.Err.Error()
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// QueryError reports a failure of the liveness statement on an
// established connection. Its message is shown to end users verbatim.
type QueryError struct {
	Err error
}

func (e *QueryError) Error() string { return e.Err.Error() }

func (e *QueryError) Unwrap() error { return e.Err }
