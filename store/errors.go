package store

import (
	"errors"
)

var (
	// ErrUnknownKind is returned when a kind name is not one of the supported kinds.
	ErrUnknownKind = errors.New("unknown value kind")

	// ErrInvalidValue is returned when the zero Value is marshaled.
	ErrInvalidValue = errors.New("invalid value")

	// ErrMalformedPayload is returned when a persisted value can not be decoded.
	ErrMalformedPayload = errors.New("malformed stored value")

	// ErrEmptyKey is returned by backends when asked to persist an empty key.
	ErrEmptyKey = errors.New("key can not be empty")

	// ErrBackendClosed is returned by backends after Close.
	ErrBackendClosed = errors.New("backend is closed")
)
