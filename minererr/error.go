// Package minererr defines the single error type shared by every package in
// this module, following the typed-error-code idiom used throughout
// btcwallet's own subsystems.
package minererr

import "fmt"

// Code identifies a kind of error that can occur anywhere in the mining
// pipeline, from address parsing through PSBT assembly.
type Code int

// These constants enumerate every error kind the mining pipeline can
// produce.
const (
	// ErrInvalidInput indicates a caller supplied a malformed or
	// out-of-range request (e.g. targetZeros out of [1,32], empty nonce
	// range, a second concurrent Mine call).
	ErrInvalidInput Code = iota

	// ErrInvalidAddress indicates an address string failed bech32 or
	// bech32m decoding.
	ErrInvalidAddress

	// ErrUnsupportedAddressType indicates a decoded address is neither
	// P2WPKH nor P2TR.
	ErrUnsupportedAddressType

	// ErrNetworkMismatch indicates a decoded address's HRP does not
	// match the network the caller requested.
	ErrNetworkMismatch

	// ErrMultipleChangeOutputs indicates more than one output in a
	// request was marked as change.
	ErrMultipleChangeOutputs

	// ErrInsufficientFunds indicates total inputs do not cover total
	// outputs plus fee.
	ErrInsufficientFunds

	// ErrDustOutput indicates a non-change output's value is below the
	// dust limit for its address type. A change output below its dust
	// limit is not an error: the planner drops it and folds the amount
	// into the fee instead.
	ErrDustOutput

	// ErrGPUUnavailable indicates no usable OpenCL platform/device was
	// found, or kernel compilation failed.
	ErrGPUUnavailable

	// ErrWorkerError indicates a worker goroutine or GPU dispatch failed
	// for a reason other than GPU unavailability.
	ErrWorkerError

	// ErrMiningAborted indicates the caller's context was canceled
	// before a match was found.
	ErrMiningAborted

	// ErrNoMatchingNonce indicates the entire requested nonce range was
	// exhausted without a match.
	ErrNoMatchingNonce
)

var codeStrings = map[Code]string{
	ErrInvalidInput:           "ErrInvalidInput",
	ErrInvalidAddress:         "ErrInvalidAddress",
	ErrUnsupportedAddressType: "ErrUnsupportedAddressType",
	ErrNetworkMismatch:        "ErrNetworkMismatch",
	ErrMultipleChangeOutputs:  "ErrMultipleChangeOutputs",
	ErrInsufficientFunds:      "ErrInsufficientFunds",
	ErrDustOutput:             "ErrDustOutput",
	ErrGPUUnavailable:         "ErrGPUUnavailable",
	ErrWorkerError:            "ErrWorkerError",
	ErrMiningAborted:          "ErrMiningAborted",
	ErrNoMatchingNonce:        "ErrNoMatchingNonce",
}

// String returns the Code as a human-readable name.
func (c Code) String() string {
	if s := codeStrings[c]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown Code (%d)", int(c))
}

// Error is the single error type returned by every package in this module.
type Error struct {
	Code        Code
	Description string
	Err         error
}

// Error satisfies the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return e.Description + ": " + e.Err.Error()
	}
	return e.Description
}

// Unwrap allows errors.Is/errors.As to see through to the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an *Error given a code, description and optional wrapped
// error.
func New(c Code, desc string, err error) *Error {
	return &Error{Code: c, Description: desc, Err: err}
}
