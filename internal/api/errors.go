package api

import (
	"context"
	"errors"
	"fmt"
)

// TransportKind tells why a call could not be completed.
type TransportKind string

const (
	// KindNetwork covers DNS, connect, TLS, timeout and body read failures.
	KindNetwork TransportKind = "network"
	// KindDecode means the response body could not be interpreted.
	KindDecode TransportKind = "decode"
	// KindEncode means the request could not be built or signed.
	KindEncode TransportKind = "encode"
)

// TransportError is the only error Get and Post return. It means the call
// did not complete, as opposed to completing with an API rejection.
type TransportError struct {
	Kind       TransportKind
	Method     string
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s failed (%s, status %d): %v", e.Method, e.URL, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s failed (%s): %v", e.Method, e.URL, e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was a deadline.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(e.Err, &te) && te.Timeout()
}

// ErrorClass groups envelope codes for callers and exit codes.
type ErrorClass string

const (
	ClassAuthentication ErrorClass = "authentication"
	ClassRateLimit      ErrorClass = "rate_limit"
	ClassNotFound       ErrorClass = "not_found"
	ClassApplication    ErrorClass = "application"
)

// Well-known v1.1 error codes.
const (
	CodeNoUserMatches         = 17
	CodeCouldNotAuthenticate  = 32
	CodePageNotExist          = 34
	CodeUserNotFound          = 50
	CodeRateLimitExceeded     = 88
	CodeInvalidToken          = 89
	CodeCannotFindUser        = 108
	CodeTimestampOutOfBounds  = 135
	CodeBadAuthenticationData = 215
	CodeCredentialsNoAccess   = 220
)

var authenticationCodes = map[int]bool{
	CodeCouldNotAuthenticate:  true,
	CodeInvalidToken:          true,
	CodeTimestampOutOfBounds:  true,
	CodeBadAuthenticationData: true,
	CodeCredentialsNoAccess:   true,
}

var notFoundCodes = map[int]bool{
	CodeNoUserMatches:  true,
	CodePageNotExist:   true,
	CodeUserNotFound:   true,
	CodeCannotFindUser: true,
}

// Class classifies the envelope by its first recognised code.
func (e *ErrorEnvelope) Class() ErrorClass {
	if e == nil {
		return ClassApplication
	}
	for _, item := range e.Errors {
		switch {
		case authenticationCodes[item.Code]:
			return ClassAuthentication
		case item.Code == CodeRateLimitExceeded:
			return ClassRateLimit
		case notFoundCodes[item.Code]:
			return ClassNotFound
		}
	}
	return ClassApplication
}

// IsTransportError reports whether err is (or wraps) a *TransportError.
func IsTransportError(err error) bool {
	var e *TransportError
	return errors.As(err, &e)
}

// AsEnvelope extracts an *ErrorEnvelope from err.
func AsEnvelope(err error) (*ErrorEnvelope, bool) {
	var env *ErrorEnvelope
	if errors.As(err, &env) && env != nil {
		return env, true
	}
	return nil, false
}

// IsAuthError reports whether err is an authentication rejection.
func IsAuthError(err error) bool {
	env, ok := AsEnvelope(err)
	return ok && env.Class() == ClassAuthentication
}

// IsRateLimited reports whether err is a rate-limit rejection.
func IsRateLimited(err error) bool {
	env, ok := AsEnvelope(err)
	return ok && env.Class() == ClassRateLimit
}

// IsNotFound reports whether err says the target does not exist.
func IsNotFound(err error) bool {
	env, ok := AsEnvelope(err)
	return ok && env.Class() == ClassNotFound
}
