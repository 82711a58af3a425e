// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"errors"
	"fmt"
	"reflect"

	"codello.dev/x690"
)

var (
	errNilValue         = errors.New("cannot encode nil value")
	errInvalidString    = errors.New("string contains invalid characters")
	errNotMinimal       = errors.New("integer is not minimally encoded")
	errIntegerOverflow  = errors.New("integer value out of range")
	errBitPadding       = errors.New("invalid bit string padding")
	errNotEnoughValues  = errors.New("not enough values")
	errTooManyValues    = errors.New("too many values")
	errExplicitContents = errors.New("explicit tag must contain exactly one value")
	errImplicitChoice   = errors.New("a tag on a choice type must be explicit")
	errVariantKind      = errors.New("choice variants must be pointer types")
	errVariantCount     = errors.New("exactly one choice variant must be set")
	errTrailingData     = errors.New("trailing data after data value encoding")
)

// An IncorrectTypeError indicates that the identifier of a data value encoding
// does not match the identifier required by the decoding target.
type IncorrectTypeError struct {
	Expected x690.Identifier
	Actual   x690.Identifier
}

func (e *IncorrectTypeError) Error() string {
	return fmt.Sprintf("der: cannot decode %v as %v", e.Actual, e.Expected)
}

// An IncorrectLengthError indicates that the number of contents octets of a
// data value encoding is invalid for its type.
type IncorrectLengthError struct {
	Identifier x690.Identifier
	Length     int
}

func (e *IncorrectLengthError) Error() string {
	return fmt.Sprintf("der: invalid contents length %d for %v", e.Length, e.Identifier)
}

// An OverflowError indicates that a decoded integer value does not fit into
// the target Go type.
type OverflowError struct {
	Identifier x690.Identifier
	Type       reflect.Type
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("der: cannot decode %v: integer value out of range for %s", e.Identifier, e.Type)
}

// A NoVariantError indicates that the identifier of a data value encoding
// selects none of the variants of a CHOICE type, or that a decoded ENUMERATED
// value is rejected by the IsValid method of its Go type.
type NoVariantError struct {
	Type       reflect.Type
	Identifier x690.Identifier
}

func (e *NoVariantError) Error() string {
	return fmt.Sprintf("der: no variant of %s matches %v", e.Type, e.Identifier)
}

// An EncodingError indicates that the contents octets of a data value encoding
// are malformed for their type, for example an OBJECT IDENTIFIER with a
// truncated arc or a string containing characters outside of its alphabet.
type EncodingError struct {
	Identifier x690.Identifier
	Err        error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("der: invalid %v encoding: %v", e.Identifier, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// A StructuralError indicates that the encoded data is syntactically valid but
// the Go type is unsuitable for it, for example a SEQUENCE with more values
// than the target struct has fields.
//
// See also [IncorrectTypeError].
type StructuralError struct {
	Type reflect.Type
	Err  error
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("der: cannot use type %s: %v", e.Type, e.Err)
}

func (e *StructuralError) Unwrap() error {
	return e.Err
}

// An UnsupportedTypeError indicates that a Go type does not correspond to an
// ASN.1 type known to this package.
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	if e.Type == nil {
		return "der: unsupported value: nil"
	}
	return "der: unsupported type: " + e.Type.String()
}

// An InvalidDecodeError indicates that an invalid value was passed to
// [Unmarshal] or [Decode]. The target must be a non-nil pointer.
type InvalidDecodeError struct {
	Type reflect.Type
}

func (e *InvalidDecodeError) Error() string {
	if e.Type == nil {
		return "der: invalid decode target: nil"
	}
	if e.Type.Kind() != reflect.Pointer {
		return "der: invalid decode target: non-pointer type " + e.Type.String()
	}
	return "der: invalid decode target: nil " + e.Type.String()
}
