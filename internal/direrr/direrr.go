// Package direrr defines the engine's error kinds and their mapping to
// the boundary error-code prefixes surfaced across the foreign-language
// bridge.
package direrr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindConfig Kind = iota
	KindInit
	KindScan
	KindParse
	KindCallGraph
	KindStorage
	KindRuntimeNotInitialized
	KindAlreadyInitialized
)

// Code returns the boundary error-code prefix for the kind, per spec §6.
func (k Kind) Code() string {
	switch k {
	case KindConfig:
		return "CONFIG_ERROR"
	case KindInit:
		return "INIT_ERROR"
	case KindScan:
		return "SCAN_ERROR"
	case KindParse:
		return "PARSE_ERROR"
	case KindCallGraph:
		return "CALL_GRAPH_ERROR"
	case KindStorage:
		return "STORAGE_ERROR"
	case KindRuntimeNotInitialized:
		return "RUNTIME_NOT_INITIALIZED"
	case KindAlreadyInitialized:
		return "ALREADY_INITIALIZED"
	default:
		return "UNKNOWN_ERROR"
	}
}

// Error is the engine's single error type. Path is set for per-file
// errors (ParseError, some ScanErrors).
type Error struct {
	Kind Kind
	Path string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s (%s)", e.Kind.Code(), e.Path, e.Msg, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind.Code(), e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind.Code(), e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func new(kind Kind, path, msg string, cause error) *Error {
	return &Error{Kind: kind, Path: path, Msg: msg, Err: cause}
}

func NewConfigError(msg string, cause error) *Error  { return new(KindConfig, "", msg, cause) }
func NewInitError(msg string, cause error) *Error    { return new(KindInit, "", msg, cause) }
func NewScanError(path, msg string, cause error) *Error {
	return new(KindScan, path, msg, cause)
}
func NewParseError(path, msg string, cause error) *Error {
	return new(KindParse, path, msg, cause)
}
func NewCallGraphError(msg string, cause error) *Error {
	return new(KindCallGraph, "", msg, cause)
}
func NewStorageError(msg string, cause error) *Error { return new(KindStorage, "", msg, cause) }

var ErrNotInitialized = &Error{Kind: KindRuntimeNotInitialized, Msg: "runtime not initialized"}
var ErrAlreadyInitialized = &Error{Kind: KindAlreadyInitialized, Msg: "runtime already initialized"}

// KindOf extracts the Kind from err if it (or a wrapped cause) is an
// *Error, and reports whether one was found.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
