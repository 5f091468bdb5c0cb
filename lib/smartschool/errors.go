package smartschool

import (
	"errors"
	"fmt"
)

// Kind classifies a failure. Every error returned by this package carries
// one and matches it with errors.Is, ex. `errors.Is(err, SessionExpired)`.
type Kind string

func (k Kind) Error() string {
	return string(k)
}

const (
	MissingLoginToken    Kind = "missing login token"
	AmbiguousLoginResult Kind = "ambiguous login result"
	InvalidBaseUrl       Kind = "invalid base url"
	InvalidPath          Kind = "invalid path"

	InvalidCredentials Kind = "invalid credentials"
	SessionExpired     Kind = "session expired"

	NotFound         Kind = "not found"
	ApplicationError Kind = "application error"
	Unexpected       Kind = "unexpected response"
)

// TransportError means the platform could not be reached or answered the
// login page with an error status.
type TransportError struct {
	Op     string
	Url    string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: status %d", e.Op, e.Url, e.Status)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Url, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProtocolError means the platform answered with something this client does
// not understand, usually because the login page changed.
type ProtocolError struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *ProtocolError) Error() string {
	msg := string(e.Kind)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

func (e *ProtocolError) Is(target error) bool {
	return e.Kind == target
}

type AuthError struct {
	Kind    Kind
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AuthError) Is(target error) bool {
	return e.Kind == target
}

// ApiError is a failure reported by the platform for an authenticated call,
// either through the http status or inside a 2xx envelope.
type ApiError struct {
	Kind    Kind
	Path    string
	Status  int
	Code    string
	Message string
	Body    []byte
}

func (e *ApiError) Error() string {
	switch e.Kind {
	case ApplicationError:
		if e.Code != "" {
			return fmt.Sprintf("%s %s: [%s] %s", e.Kind, e.Path, e.Code, e.Message)
		}
		return fmt.Sprintf("%s %s: %s", e.Kind, e.Path, e.Message)
	case NotFound:
		return fmt.Sprintf("%s: %s", e.Kind, e.Path)
	default:
		return fmt.Sprintf("%s %s: status %d", e.Kind, e.Path, e.Status)
	}
}

func (e *ApiError) Is(target error) bool {
	return e.Kind == target
}

// DecodeError means the platform answered successfully but the body did not
// have the expected shape. Body is the raw response body.
type DecodeError struct {
	Path string
	Err  error
	Body []byte
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response of %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func IsSessionExpired(err error) bool {
	return errors.Is(err, SessionExpired)
}

func IsInvalidCredentials(err error) bool {
	return errors.Is(err, InvalidCredentials)
}

func IsNotFound(err error) bool {
	return errors.Is(err, NotFound)
}
