package session

import "errors"

var (
	// ErrInvalidCredentialsResponse means the authentication service answered
	// but the payload was missing a token or carried a malformed identity.
	ErrInvalidCredentialsResponse = errors.New("invalid credentials response")

	// ErrCorruptedSession marks unparseable or schema-invalid persisted data.
	// It is logged on restore, never returned to callers.
	ErrCorruptedSession = errors.New("corrupted session")

	ErrInvalidRole = errors.New("invalid role")
)

// AuthServiceError is a transport-level failure from the authentication
// service. Message is the server-provided text when there was one.
type AuthServiceError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *AuthServiceError) Error() string {
	return e.Message
}

func (e *AuthServiceError) Unwrap() error {
	return e.Err
}

// serverError is implemented by transport errors that carry the remote
// status and message.
type serverError interface {
	error
	StatusCode() int
	ServerMessage() string
}

func newAuthServiceError(op, fallback string, err error) *AuthServiceError {
	out := &AuthServiceError{Op: op, Message: fallback, Err: err}
	var se serverError
	if errors.As(err, &se) {
		out.Status = se.StatusCode()
		if msg := se.ServerMessage(); msg != "" {
			out.Message = msg
		}
	}
	return out
}
