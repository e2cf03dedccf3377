// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package nerr defines the unified error taxonomy shared by every ninres
// parser. A single Kind-tagged type lets callers use errors.Is/errors.As
// across the SARC, BFRES and BNTX decoders instead of sniffing error
// strings.
package nerr

import "fmt"

// Kind identifies the category of failure that occurred while decoding a
// ninres container.
type Kind int

const (
	// TypeUnknown means the dispatcher saw no recognized magic.
	TypeUnknown Kind = iota
	// ByteOrderInvalid means a byte-order-mark word was neither 0xFEFF
	// nor 0xFFFE.
	ByteOrderInvalid
	// CorruptData means a structural invariant was violated: a bad
	// sub-magic, an unknown texture format code, an out of range
	// block-height shift, or a missing string table entry.
	CorruptData
	// Io means a read ran past the end of the buffer.
	Io
	// Utf8 means a name or path was not valid UTF-8.
	Utf8
	// TryFromSlice means a fixed-width array conversion failed; treated
	// as equivalent to CorruptData by callers.
	TryFromSlice
	// Zstd means the external ZSTD decoder rejected a frame.
	Zstd
)

func (k Kind) String() string {
	switch k {
	case TypeUnknown:
		return "type unknown"
	case ByteOrderInvalid:
		return "byte order invalid"
	case CorruptData:
		return "corrupt data"
	case Io:
		return "io"
	case Utf8:
		return "utf8"
	case TryFromSlice:
		return "try from slice"
	case Zstd:
		return "zstd"
	default:
		return "unknown kind"
	}
}

// Error is the concrete error type returned by every ninres parser.
type Error struct {
	Kind Kind
	// Magic holds the rejected leading bytes when Kind == TypeUnknown.
	Magic [4]byte
	// Msg is a short, human readable description of the failure.
	Msg string
	// Err is the underlying cause, if any (e.g. the error returned by
	// the ZSTD decoder).
	Err error
}

func (e *Error) Error() string {
	if e.Kind == TypeUnknown {
		return fmt.Sprintf("ninres: type unknown or not implemented, magic number: %v", e.Magic)
	}
	if e.Msg == "" && e.Err != nil {
		return fmt.Sprintf("ninres: %s: %v", e.Kind, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("ninres: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("ninres: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Kind, allowing
// errors.Is(err, nerr.New(nerr.CorruptData, "")) style checks.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New creates an Error of the given Kind with a descriptive message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf is New with fmt.Sprintf-style formatting.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error of the given Kind that wraps a lower level cause.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Unknown creates the TypeUnknown error for the given magic bytes.
func Unknown(magic [4]byte) *Error {
	return &Error{Kind: TypeUnknown, Magic: magic}
}
