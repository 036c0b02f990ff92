package config

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingKey is returned when a required testbed key is absent.
	ErrMissingKey = errors.New("missing required key")
	// ErrUnknownHardfork is returned for hardfork names not known to Hardfork.
	ErrUnknownHardfork = errors.New("unknown hardfork name")
	// ErrInvalidKey is returned for malformed account private keys.
	ErrInvalidKey = errors.New("invalid private key")
	// ErrInvalidValue is returned when a testbed value has a wrong type or
	// is out of range.
	ErrInvalidValue = errors.New("invalid value")
)

// ConfigurationError describes a malformed or incomplete testbed document.
// File is empty for documents that were not read from disk, Key is empty
// for errors not related to any particular key (like parsing failures).
type ConfigurationError struct {
	File string
	Key  string
	Err  error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	var prefix = "testbed"
	if e.File != "" {
		prefix = fmt.Sprintf("testbed %s", e.File)
	}
	if e.Key != "" {
		return fmt.Sprintf("%s: key %q: %s", prefix, e.Key, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func keyError(key string, err error) *ConfigurationError {
	return &ConfigurationError{Key: key, Err: err}
}

// withFile attaches file name to ConfigurationError (wrapping err into one
// if needed).
func withFile(file string, err error) error {
	var cErr *ConfigurationError
	if errors.As(err, &cErr) {
		res := *cErr
		res.File = file
		return &res
	}
	return &ConfigurationError{File: file, Err: err}
}
